package hardware

import (
	"fmt"
	"time"

	"github.com/gloworm-vision/loadlight/flash"
	"github.com/gloworm-vision/loadlight/hardware/gpio"
	"github.com/sirupsen/logrus"
)

// Indicator describes hardware that can show the activity monitor's states.
//
// Every method must be idempotent: the control loop re-applies the current
// state on each tick. None of them report errors, since a failed write
// cannot be handled better than by trying again on the next tick.
type Indicator interface {
	// Idle shows the resting color (red).
	Idle()
	// Active shows the activity color (green).
	Active()
	// Off turns every channel off.
	Off()
	// Apply shows the color for a flash command.
	Apply(cmd flash.Command)
	// Close turns the indicator off and releases the hardware. Calls after
	// the first are no-ops.
	Close() error
}

// Config describes the LED wiring and how to reach the GPIO driver.
type Config struct {
	// PigpioAddr is the pigpio socket interface address, normally localhost:8888.
	PigpioAddr  string        `json:"pigpioAddr"`
	DialTimeout time.Duration `json:"dialTimeout"`
	// DryRun keeps pin state in memory instead of talking to pigpio.
	DryRun bool `json:"dryRun"`

	// IdlePin drives the red half of the LED (channel A).
	IdlePin int `json:"idlePin"`
	// ActivePin drives the green half of the LED with PWM (channel B).
	ActivePin int `json:"activePin"`

	Brightness   int `json:"brightness"`
	PWMFrequency int `json:"pwmFrequency"`
	PWMRange     int `json:"pwmRange"`
}

// DefaultConfig returns the wiring for a bi-color LED on GPIO 16 and 26.
func DefaultConfig() Config {
	return Config{
		PigpioAddr:   "localhost:8888",
		DialTimeout:  3 * time.Second,
		IdlePin:      16,
		ActivePin:    26,
		Brightness:   32,
		PWMFrequency: 1000,
		PWMRange:     255,
	}
}

// Validate reports whether the wiring makes sense.
func (c Config) Validate() error {
	if c.IdlePin < 0 || c.IdlePin > 53 {
		return fmt.Errorf("idle pin %d is not a valid GPIO", c.IdlePin)
	}
	if c.ActivePin < 0 || c.ActivePin > 53 {
		return fmt.Errorf("active pin %d is not a valid GPIO", c.ActivePin)
	}
	if c.IdlePin == c.ActivePin {
		return fmt.Errorf("idle and active pins must differ, both are %d", c.IdlePin)
	}
	if c.PWMRange < 25 || c.PWMRange > 40000 {
		return fmt.Errorf("pwm range must be in [25, 40000], got %d", c.PWMRange)
	}
	if c.Brightness < 0 || c.Brightness > c.PWMRange {
		return fmt.Errorf("brightness must be in [0, %d], got %d", c.PWMRange, c.Brightness)
	}
	if c.PWMFrequency <= 0 {
		return fmt.Errorf("pwm frequency must be positive, got %d", c.PWMFrequency)
	}

	return nil
}

// ErrInit wraps any failure to acquire or set up the GPIO hardware.
type ErrInit struct {
	error
}

func (err ErrInit) Is(target error) bool {
	_, ok := target.(ErrInit)
	return ok
}

func (err ErrInit) Unwrap() error {
	return err.error
}

// New acquires the GPIO driver named by config and sets up the LED pins.
func New(config Config, logger logrus.FieldLogger) (*BicolorLED, error) {
	if err := config.Validate(); err != nil {
		return nil, ErrInit{fmt.Errorf("invalid hardware config: %w", err)}
	}

	var g gpio.GPIO
	if config.DryRun {
		g = gpio.NewMemory()
	} else {
		p, err := gpio.DialPigpio(config.PigpioAddr, config.DialTimeout)
		if err != nil {
			return nil, ErrInit{fmt.Errorf("unable to dial pigpio to setup gpio: %w", err)}
		}
		g = p
	}

	led, err := NewBicolorLED(g, config, logger)
	if err != nil {
		_ = g.Close()
		return nil, ErrInit{err}
	}

	return led, nil
}
