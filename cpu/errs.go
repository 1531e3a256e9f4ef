package cpu

import "errors"

var (
	// ErrNoCPULine indicates that the stat source had no aggregate "cpu" line.
	ErrNoCPULine = errors.New("cpu: no aggregate cpu line")

	// ErrShortCPULine indicates that the aggregate line had fewer than seven counters.
	ErrShortCPULine = errors.New("cpu: short cpu line")

	// ErrNoTimes indicates that gopsutil returned no aggregate CPU times.
	ErrNoTimes = errors.New("cpu: no cpu times")
)
