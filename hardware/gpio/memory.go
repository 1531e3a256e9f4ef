package gpio

import (
	"fmt"
	"sync"
)

// Pin is the last state written to a pin of a Memory GPIO.
type Pin struct {
	Mode      Mode  `json:"mode"`
	Level     Level `json:"level"`
	Duty      int   `json:"duty"`
	Frequency int   `json:"frequency"`
	Range     int   `json:"range"`
}

// Memory is a GPIO that only remembers what it was told. It backs dry runs on
// machines without pigpio and the tests.
type Memory struct {
	mu     sync.Mutex
	pins   map[int]Pin
	writes int
	closed bool
}

var _ GPIO = &Memory{}

// NewMemory returns an open in-memory GPIO with every pin low.
func NewMemory() *Memory {
	return &Memory{pins: make(map[int]Pin)}
}

func (m *Memory) update(pin int, fn func(p *Pin)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("pin %d: %w", pin, ErrClosed)
	}

	p, ok := m.pins[pin]
	if !ok {
		p.Range = 255
	}
	fn(&p)
	m.pins[pin] = p
	m.writes++

	return nil
}

func (m *Memory) SetMode(pin int, mode Mode) error {
	return m.update(pin, func(p *Pin) { p.Mode = mode })
}

func (m *Memory) Write(pin int, level Level) error {
	return m.update(pin, func(p *Pin) {
		p.Level = level
		p.Duty = 0
	})
}

func (m *Memory) PWM(pin int, duty int) error {
	if duty < 0 {
		return fmt.Errorf("duty cycle must not be negative, got %d", duty)
	}

	return m.update(pin, func(p *Pin) {
		if duty > p.Range {
			duty = p.Range
		}
		p.Duty = duty
		p.Level = duty > 0
	})
}

func (m *Memory) SetPWMFrequency(pin int, hz int) error {
	return m.update(pin, func(p *Pin) { p.Frequency = hz })
}

func (m *Memory) SetPWMRange(pin int, max int) error {
	return m.update(pin, func(p *Pin) { p.Range = max })
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.closed = true

	return nil
}

// Pin returns the state of a pin.
func (m *Memory) Pin(pin int) Pin {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.pins[pin]
	if !ok {
		p.Range = 255
	}
	return p
}

// Writes counts the successful calls made so far.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.writes
}

// Closed reports whether Close has been called.
func (m *Memory) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.closed
}
