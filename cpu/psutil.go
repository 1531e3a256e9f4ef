package cpu

import (
	"context"
	"fmt"
	"math"

	psutil "github.com/shirou/gopsutil/cpu"
)

// UserHZ is the tick rate the kernel uses for /proc/stat counters on every
// architecture Linux currently supports.
const UserHZ = 100

// PSUtil reads snapshots through gopsutil, which reports CPU times in seconds.
// The seconds are converted back to USER_HZ ticks so both sources produce
// comparable counters.
type PSUtil struct {
	// Ctx bounds the underlying read, context.Background() if nil.
	Ctx context.Context
}

var _ Source = PSUtil{}

// Read returns the aggregate CPU times.
func (p PSUtil) Read() (Snapshot, error) {
	ctx := p.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	times, err := psutil.TimesWithContext(ctx, false)
	if err != nil {
		return Snapshot{}, fmt.Errorf("unable to read cpu times: %w", err)
	}
	if len(times) == 0 {
		return Snapshot{}, ErrNoTimes
	}

	return fromTimes(times[0]), nil
}

func fromTimes(t psutil.TimesStat) Snapshot {
	return Snapshot{
		User:    ticks(t.User),
		Nice:    ticks(t.Nice),
		System:  ticks(t.System),
		Idle:    ticks(t.Idle),
		IOWait:  ticks(t.Iowait),
		IRQ:     ticks(t.Irq),
		SoftIRQ: ticks(t.Softirq),
	}
}

func ticks(seconds float64) uint64 {
	if seconds <= 0 || math.IsNaN(seconds) {
		return 0
	}
	return uint64(math.Round(seconds * UserHZ))
}
