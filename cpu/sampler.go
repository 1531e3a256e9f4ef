package cpu

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// DefaultSmoothing favors responsiveness: half of every new reading is kept.
const DefaultSmoothing = 0.5

// Config holds the sampler tunables.
type Config struct {
	// Source selects the counter feed, "procfs" or "gopsutil".
	Source string `json:"source"`
	// StatPath overrides /proc/stat for the procfs source.
	StatPath string `json:"statPath,omitempty"`
	// Smoothing is the weight of the previous smoothed value, in [0, 1).
	Smoothing float64 `json:"smoothing"`
}

const (
	SourceProcFS   = "procfs"
	SourceGopsutil = "gopsutil"
)

// DefaultConfig returns the sampler defaults.
func DefaultConfig() Config {
	return Config{
		Source:    SourceProcFS,
		Smoothing: DefaultSmoothing,
	}
}

// Validate reports whether the config can build a sampler.
func (c Config) Validate() error {
	if c.Smoothing < 0 || c.Smoothing >= 1 {
		return fmt.Errorf("smoothing must be in [0, 1), got %v", c.Smoothing)
	}

	switch c.Source {
	case SourceProcFS, SourceGopsutil:
	default:
		return fmt.Errorf("unknown cpu source %q", c.Source)
	}

	return nil
}

// NewSource builds the counter feed named by the config.
func (c Config) NewSource() (Source, error) {
	switch c.Source {
	case SourceProcFS, "":
		return ProcStat{Path: c.StatPath}, nil
	case SourceGopsutil:
		return PSUtil{}, nil
	default:
		return nil, fmt.Errorf("unknown cpu source %q", c.Source)
	}
}

// Sampler turns successive counter snapshots into an exponentially smoothed
// load percentage. It is not safe for concurrent use.
type Sampler struct {
	source    Source
	smoothing float64
	logger    logrus.FieldLogger

	last     Snapshot
	baseline bool
	load     float64
}

// NewSampler creates a sampler reading from source. A nil logger discards
// read failures silently.
func NewSampler(source Source, smoothing float64, logger logrus.FieldLogger) *Sampler {
	return &Sampler{
		source:    source,
		smoothing: smoothing,
		logger:    logger,
	}
}

// Sample reads a fresh snapshot and returns the smoothed load in [0, 100].
//
// A failed read returns the previous value. The first successful read only
// establishes a baseline and returns 0.
func (s *Sampler) Sample() float64 {
	current, err := s.source.Read()
	if err != nil {
		if s.logger != nil {
			s.logger.WithError(err).Debug("cpu read failed, keeping last load")
		}
		return s.load
	}

	if !s.baseline {
		s.baseline = true
		s.last = current
		return 0
	}

	previous := s.last
	s.last = current

	// A counter moving backwards means the source was reset; start over
	// from the new snapshot rather than diffing across the reset.
	if !monotonic(previous, current) {
		return s.load
	}

	totalDelta := current.Total() - previous.Total()
	if totalDelta == 0 {
		return s.load
	}
	idleDelta := current.IdleTotal() - previous.IdleTotal()

	instant := 100 * (1 - float64(idleDelta)/float64(totalDelta))
	s.load = s.load*s.smoothing + instant*(1-s.smoothing)

	return s.load
}

func monotonic(prev, cur Snapshot) bool {
	return cur.User >= prev.User &&
		cur.Nice >= prev.Nice &&
		cur.System >= prev.System &&
		cur.Idle >= prev.Idle &&
		cur.IOWait >= prev.IOWait &&
		cur.IRQ >= prev.IRQ &&
		cur.SoftIRQ >= prev.SoftIRQ
}
