package monitor

import (
	"fmt"
	"time"

	"github.com/gloworm-vision/loadlight/cpu"
	"github.com/gloworm-vision/loadlight/flash"
	"github.com/gloworm-vision/loadlight/hardware"
)

// Config is everything the monitor needs at startup. Nothing in it changes
// while the monitor runs.
type Config struct {
	// Interval is the delay between the end of one tick and the start of the next.
	Interval time.Duration `json:"interval"`
	// Background disables the console status line and banner.
	Background bool `json:"background"`
	// Nice is the scheduling priority to run at, 19 being the lowest.
	Nice int `json:"nice"`
	// Seed seeds the flash randomness; 0 picks a seed from the clock.
	Seed int64 `json:"seed"`
	// StatusAddr serves read-only status over HTTP when set.
	StatusAddr string `json:"statusAddr,omitempty"`

	CPU      cpu.Config      `json:"cpu"`
	Flash    flash.Config    `json:"flash"`
	Hardware hardware.Config `json:"hardware"`
}

// DefaultConfig returns the settings tuned for a Raspberry Pi with a bi-color
// LED on GPIO 16 and 26.
func DefaultConfig() Config {
	return Config{
		Interval: 25 * time.Millisecond,
		Nice:     19,
		CPU:      cpu.DefaultConfig(),
		Flash:    flash.DefaultConfig(),
		Hardware: hardware.DefaultConfig(),
	}
}

// Validate checks every section of the config.
func (c Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", c.Interval)
	}
	if c.Nice < -20 || c.Nice > 19 {
		return fmt.Errorf("nice must be in [-20, 19], got %d", c.Nice)
	}
	if err := c.CPU.Validate(); err != nil {
		return fmt.Errorf("invalid cpu config: %w", err)
	}
	if err := c.Flash.Validate(); err != nil {
		return fmt.Errorf("invalid flash config: %w", err)
	}
	if err := c.Hardware.Validate(); err != nil {
		return fmt.Errorf("invalid hardware config: %w", err)
	}

	return nil
}
