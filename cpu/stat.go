package cpu

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Snapshot holds the cumulative time-in-state counters of the aggregate CPU,
// in USER_HZ ticks, in the order the kernel reports them.
type Snapshot struct {
	User    uint64 `json:"user"`
	Nice    uint64 `json:"nice"`
	System  uint64 `json:"system"`
	Idle    uint64 `json:"idle"`
	IOWait  uint64 `json:"iowait"`
	IRQ     uint64 `json:"irq"`
	SoftIRQ uint64 `json:"softirq"`
}

// Total is the sum of all seven counters.
func (s Snapshot) Total() uint64 {
	return s.User + s.Nice + s.System + s.Idle + s.IOWait + s.IRQ + s.SoftIRQ
}

// IdleTotal is the time spent doing nothing, including waiting on I/O.
func (s Snapshot) IdleTotal() uint64 {
	return s.Idle + s.IOWait
}

// Source describes anything that can produce a fresh CPU snapshot.
type Source interface {
	Read() (Snapshot, error)
}

// DefaultStatPath is where Linux exposes CPU accounting.
const DefaultStatPath = "/proc/stat"

// ProcStat reads snapshots from a /proc/stat formatted file.
type ProcStat struct {
	// Path defaults to DefaultStatPath when empty.
	Path string
}

// compile-time check for whether ProcStat satisfies the Source interface
var _ Source = ProcStat{}

// Read opens the stat file and parses its aggregate cpu line.
func (p ProcStat) Read() (Snapshot, error) {
	path := p.Path
	if path == "" {
		path = DefaultStatPath
	}

	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("unable to open %q: %w", path, err)
	}
	defer f.Close()

	return ParseStat(f)
}

// ParseStat scans r for the aggregate "cpu" line and returns its first seven
// counters. Per-core lines ("cpu0", "cpu1", ...) are ignored.
func ParseStat(r io.Reader) (Snapshot, error) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || fields[0] != "cpu" {
			continue
		}
		if len(fields) < 8 {
			return Snapshot{}, ErrShortCPULine
		}

		var vals [7]uint64
		for i := range vals {
			v, err := strconv.ParseUint(fields[i+1], 10, 64)
			if err != nil {
				return Snapshot{}, fmt.Errorf("unable to parse counter %d of cpu line: %w", i, err)
			}
			vals[i] = v
		}

		return Snapshot{
			User:    vals[0],
			Nice:    vals[1],
			System:  vals[2],
			Idle:    vals[3],
			IOWait:  vals[4],
			IRQ:     vals[5],
			SoftIRQ: vals[6],
		}, nil
	}
	if err := sc.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("unable to scan stat: %w", err)
	}

	return Snapshot{}, ErrNoCPULine
}
