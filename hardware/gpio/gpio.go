package gpio

import (
	"errors"
	"io"
)

// Level describes the binary state of a GPIO pin: either LOW or HIGH.
type Level bool

const (
	Low  Level = false
	High Level = true
)

// Mode is the direction a pin is configured for.
type Mode uint32

const (
	Input  Mode = 0
	Output Mode = 1
)

// ErrClosed is returned by any call made after Close.
var ErrClosed = errors.New("gpio: closed")

type GPIO interface {
	// SetMode configures a pin as an input or an output
	SetMode(pin int, mode Mode) error

	// Write sets a pin to LOW or HIGH
	Write(pin int, level Level) error

	// PWM starts software PWM on a pin with a duty cycle between 0 and the
	// pin's PWM range (255 unless changed with SetPWMRange). 0 turns PWM off.
	PWM(pin int, duty int) error

	// SetPWMFrequency sets the PWM frequency in Hz for a pin. The driver picks
	// the closest frequency it supports.
	SetPWMFrequency(pin int, hz int) error

	// SetPWMRange sets the duty cycle value that means fully on.
	SetPWMRange(pin int, max int) error

	// Close releases access to the GPIO hardware
	io.Closer
}
