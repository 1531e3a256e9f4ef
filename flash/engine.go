// Package flash decides, tick by tick, whether the activity LED should be
// showing a green flash or resting on red.
package flash

import (
	"math"
	"time"
)

// State is the engine's current phase.
type State int

const (
	// Idle shows red and waits for activity.
	Idle State = iota
	// Active shows a green flash until its target duration runs out.
	Active
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Active:
		return "active"
	default:
		return "unknown"
	}
}

// Command is what the output driver should show after a tick. It mirrors
// State so callers never need to look inside the engine.
type Command = State

// Rand is the random source the engine draws from. *rand.Rand satisfies it.
type Rand interface {
	// Float64 returns a uniform value in [0, 1).
	Float64() float64
}

// Engine is the flash state machine. It is not safe for concurrent use.
type Engine struct {
	config Config
	rand   Rand

	state        State
	activeStart  time.Time
	lastFlashEnd time.Time
	target       time.Duration
	flashes      uint64
}

// New creates an engine in the Idle state. The pause before the first flash
// is measured from start.
func New(config Config, rand Rand, start time.Time) *Engine {
	return &Engine{
		config:       config,
		rand:         rand,
		state:        Idle,
		lastFlashEnd: start,
		target:       config.MinFlash,
	}
}

// Tick advances the state machine to now using the current load percentage
// and returns the command to apply.
func (e *Engine) Tick(load float64, now time.Time) Command {
	switch e.state {
	case Active:
		if now.Sub(e.activeStart) >= e.target {
			e.state = Idle
			e.lastFlashEnd = now
		}
	case Idle:
		if load <= e.config.ActivityThreshold || now.Sub(e.lastFlashEnd) < e.config.MinPause {
			break
		}

		randomFactor := 0.5 + e.rand.Float64()*e.config.FlashVariation
		probability := e.config.BaseFlashChance * (load * e.config.CPUScaling) * randomFactor

		if e.rand.Float64() < probability {
			e.target = e.duration(load)
			e.state = Active
			e.activeStart = now
			e.flashes++
		}
	}

	return e.state
}

// duration picks a flash length that grows with load, jittered symmetrically
// around the load-derived value and clamped to [MinFlash, MaxFlash].
func (e *Engine) duration(load float64) time.Duration {
	span := float64(e.config.MaxFlash - e.config.MinFlash)
	cpuFactor := math.Min(1, load/100)

	base := float64(e.config.MinFlash) + span*cpuFactor
	width := span * e.config.JitterFraction
	jitter := width*e.rand.Float64() - width/2

	d := time.Duration(math.Round(base + jitter))
	if d < e.config.MinFlash {
		return e.config.MinFlash
	}
	if d > e.config.MaxFlash {
		return e.config.MaxFlash
	}

	return d
}

// State returns the current phase.
func (e *Engine) State() State { return e.state }

// TargetDuration returns the length of the current (or last) flash.
func (e *Engine) TargetDuration() time.Duration { return e.target }

// Flashes returns how many flashes have started since creation.
func (e *Engine) Flashes() uint64 { return e.flashes }
