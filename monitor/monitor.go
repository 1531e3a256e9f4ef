// Package monitor ties CPU sampling, the flash policy and the LED together in
// a fixed-delay polling loop.
package monitor

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/gloworm-vision/loadlight/cpu"
	"github.com/gloworm-vision/loadlight/flash"
	"github.com/gloworm-vision/loadlight/hardware"
	"github.com/sirupsen/logrus"
)

// Sampler produces the smoothed CPU load, in percent, each time it is called.
type Sampler interface {
	Sample() float64
}

var _ Sampler = &cpu.Sampler{}

type Monitor struct {
	Config Config

	Sampler Sampler
	Engine  *flash.Engine
	LED     hardware.Indicator

	// Console receives the banner and status line unless Config.Background is set.
	Console io.Writer
	Logger  *logrus.Logger

	// Clock returns the current time, time.Now when nil. The engine's first
	// pause is measured from it, so replace both together.
	Clock func() time.Time

	status statusHolder
	ticks  uint64
}

// New builds a monitor from config around an already acquired LED. clock may
// be nil for the wall clock.
func New(config Config, led hardware.Indicator, console io.Writer, logger *logrus.Logger, clock func() time.Time) (*Monitor, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	source, err := config.CPU.NewSource()
	if err != nil {
		return nil, fmt.Errorf("unable to create cpu source: %w", err)
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.WithField("seed", seed).Debug("seeded flash randomness")

	m := &Monitor{
		Config:  config,
		Sampler: cpu.NewSampler(source, config.CPU.Smoothing, logger.WithField("component", "sampler")),
		LED:     led,
		Console: console,
		Logger:  logger,
		Clock:   clock,
	}
	m.Engine = flash.New(config.Flash, rand.New(rand.NewSource(seed)), m.now())

	return m, nil
}

// Run polls until ctx is done. However it returns, including by a panic in
// a tick, the LED is turned off and released before Run returns.
func (m *Monitor) Run(ctx context.Context) (err error) {
	defer m.shutdown()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("control loop panicked: %v", r)
		}
	}()

	console := m.Console
	if m.Config.Background {
		console = nil
	}
	if console != nil {
		banner(console, m.Config)
	}

	m.LED.Idle()
	m.Logger.WithField("interval", m.Config.Interval).Info("starting control loop")

	timer := time.NewTimer(m.Config.Interval)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		m.tick(console)

		timer.Reset(m.Config.Interval)
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
	}
}

func (m *Monitor) tick(console io.Writer) {
	load := m.Sampler.Sample()
	now := m.now()

	cmd := m.Engine.Tick(load, now)
	m.LED.Apply(cmd)

	m.ticks++
	m.status.set(Status{
		Load:           load,
		State:          cmd.String(),
		Flashes:        m.Engine.Flashes(),
		TargetDuration: m.Engine.TargetDuration(),
		Ticks:          m.ticks,
		UpdatedAt:      now,
		Running:        true,
	})

	if console != nil {
		if err := renderLine(console, load, cmd); err != nil {
			m.Logger.WithError(err).Debug("unable to render status line")
		}
	}
}

// shutdown forces the LED off and releases it. The LED's Close only acts
// once, so a signal racing a failure cannot release it twice.
func (m *Monitor) shutdown() {
	m.Logger.Info("shutting down, turning LED off")

	if err := m.LED.Close(); err != nil {
		m.Logger.WithError(err).Warn("unable to release LED")
	}

	status := m.status.get()
	status.State = "off"
	status.Running = false
	m.status.set(status)

	if m.Console != nil && !m.Config.Background {
		fmt.Fprintln(m.Console)
	}
}

func (m *Monitor) now() time.Time {
	if m.Clock != nil {
		return m.Clock()
	}
	return time.Now()
}

// Status returns the latest tick's view of the monitor. It is safe to call
// from any goroutine.
func (m *Monitor) Status() Status {
	return m.status.get()
}
