package hardware

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gloworm-vision/loadlight/flash"
	"github.com/gloworm-vision/loadlight/hardware/gpio"
	"github.com/sirupsen/logrus"
)

// BicolorLED drives a two-lead bi-color LED: one plain output for red and one
// PWM output for green. The two halves are never lit together.
type BicolorLED struct {
	gpio       gpio.GPIO
	idlePin    int
	activePin  int
	brightness int
	logger     logrus.FieldLogger

	faults    atomic.Uint64
	closeOnce sync.Once
	closeErr  error
}

var _ Indicator = &BicolorLED{}

// NewBicolorLED configures both pins as outputs and the active pin's PWM, then
// leaves the LED off. The GPIO is owned by the returned LED from here on.
func NewBicolorLED(g gpio.GPIO, config Config, logger logrus.FieldLogger) (*BicolorLED, error) {
	if err := g.SetMode(config.IdlePin, gpio.Output); err != nil {
		return nil, fmt.Errorf("can't set idle pin %d as output: %w", config.IdlePin, err)
	}
	if err := g.SetMode(config.ActivePin, gpio.Output); err != nil {
		return nil, fmt.Errorf("can't set active pin %d as output: %w", config.ActivePin, err)
	}
	if err := g.SetPWMFrequency(config.ActivePin, config.PWMFrequency); err != nil {
		return nil, fmt.Errorf("can't set active pin PWM frequency: %w", err)
	}
	if err := g.SetPWMRange(config.ActivePin, config.PWMRange); err != nil {
		return nil, fmt.Errorf("can't set active pin PWM range: %w", err)
	}

	if logger == nil {
		logger = logrus.StandardLogger()
	}

	led := &BicolorLED{
		gpio:       g,
		idlePin:    config.IdlePin,
		activePin:  config.ActivePin,
		brightness: config.Brightness,
		logger:     logger.WithField("component", "led"),
	}
	led.Off()

	return led, nil
}

// Idle turns green off and red on. Green is switched off first so both are
// never lit at the same time.
func (l *BicolorLED) Idle() {
	l.check("active pwm", l.gpio.PWM(l.activePin, 0))
	l.check("active level", l.gpio.Write(l.activePin, gpio.Low))
	l.check("idle level", l.gpio.Write(l.idlePin, gpio.High))
}

// Active turns red off and green on at the configured brightness.
func (l *BicolorLED) Active() {
	l.check("idle level", l.gpio.Write(l.idlePin, gpio.Low))
	l.check("active pwm", l.gpio.PWM(l.activePin, l.brightness))
}

// Off turns both halves off.
func (l *BicolorLED) Off() {
	l.check("idle level", l.gpio.Write(l.idlePin, gpio.Low))
	l.check("active pwm", l.gpio.PWM(l.activePin, 0))
}

// Apply shows the color for cmd.
func (l *BicolorLED) Apply(cmd flash.Command) {
	switch cmd {
	case flash.Active:
		l.Active()
	default:
		l.Idle()
	}
}

// Close forces the LED off and releases the GPIO. It only does so once;
// later calls return the first call's result.
func (l *BicolorLED) Close() error {
	l.closeOnce.Do(func() {
		l.Off()
		if err := l.gpio.Close(); err != nil {
			l.closeErr = fmt.Errorf("unable to release gpio: %w", err)
		}
	})

	return l.closeErr
}

// Faults counts failed GPIO writes since creation.
func (l *BicolorLED) Faults() uint64 {
	return l.faults.Load()
}

func (l *BicolorLED) check(what string, err error) {
	if err == nil {
		return
	}

	l.faults.Add(1)
	l.logger.WithError(err).Debugf("can't set %s", what)
}
