package monitor

import (
	"fmt"
	"io"
	"strings"

	"github.com/gloworm-vision/loadlight/flash"
)

const barWidth = 50

// renderLine writes the single-line console status, returning to the start
// of the line first so it overwrites the previous one.
func renderLine(w io.Writer, load float64, cmd flash.Command) error {
	filled := int(load / 2)
	if filled < 0 {
		filled = 0
	}
	if filled > barWidth {
		filled = barWidth
	}

	marker := " "
	if cmd == flash.Active {
		marker = "*"
	}

	_, err := fmt.Fprintf(w, "\rCPU: %5.1f%% %s [%s%s]",
		load, marker, strings.Repeat("#", filled), strings.Repeat("-", barWidth-filled))
	return err
}

// banner describes the wiring once at startup.
func banner(w io.Writer, c Config) {
	fmt.Fprintln(w, "System activity monitor started")
	fmt.Fprintf(w, "LED pins: GPIO %d (red) and GPIO %d (green)\n", c.Hardware.IdlePin, c.Hardware.ActivePin)
	fmt.Fprintln(w, "Red = idle, green flickers = CPU activity")
	fmt.Fprintf(w, "Polling every %s at nice %d\n", c.Interval, c.Nice)
	fmt.Fprintln(w, "Press Ctrl+C to exit")
	fmt.Fprintln(w)
}
