package monitor

import (
	"sync"
	"time"
)

// Status is a point-in-time view of the monitor, safe to hand to other goroutines.
type Status struct {
	Load           float64       `json:"load"`
	State          string        `json:"state"`
	Flashes        uint64        `json:"flashes"`
	TargetDuration time.Duration `json:"targetDuration"`
	Ticks          uint64        `json:"ticks"`
	UpdatedAt      time.Time     `json:"updatedAt"`
	Running        bool          `json:"running"`
}

// statusHolder synchronizes access to the latest status. The control loop is
// the only writer.
type statusHolder struct {
	status Status
	mu     sync.RWMutex
}

func (s *statusHolder) set(status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = status
}

func (s *statusHolder) get() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.status
}
