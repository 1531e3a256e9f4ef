package gpio

import (
	"encoding/binary"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// Pigpio is used for controlling GPIO over the pigpio socket interface
type Pigpio struct {
	conn    net.Conn
	timeout time.Duration

	// mu serializes request/response pairs. Close does not take it, so a
	// stalled daemon can't keep the connection from being released.
	mu     sync.Mutex
	closed atomic.Bool
	broken atomic.Bool

	releaseOnce sync.Once
	releaseErr  error
}

// compile-time check for whether Pigpio satisfies the GPIO interface
var _ GPIO = &Pigpio{}

// DialPigpio dials into the pigpio socket interface (normally running on port 8888)
func DialPigpio(addr string, timeout time.Duration) (*Pigpio, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("couldn't dial into pigpio socket: %w", err)
	}

	return NewPigpio(conn, timeout), nil
}

// NewPigpio wraps an already established connection to the pigpio socket
// interface. Each command must be answered within timeout; zero waits forever.
func NewPigpio(conn net.Conn, timeout time.Duration) *Pigpio {
	return &Pigpio{conn: conn, timeout: timeout}
}

// Close closes the underlying pigpio socket interface connection, failing any
// command still waiting on the daemon.
func (p *Pigpio) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return fmt.Errorf("connection is already closed: %w", ErrClosed)
	}

	return p.release()
}

// release closes the connection once, whether Close or a failed exchange
// gets there first.
func (p *Pigpio) release() error {
	p.releaseOnce.Do(func() {
		p.releaseErr = p.conn.Close()
	})
	return p.releaseErr
}

// SetMode sets a GPIO pin as input or output.
func (p *Pigpio) SetMode(pin int, mode Mode) error {
	return p.command(modes, uint32(pin), uint32(mode))
}

// Write sets a GPIO pin to LOW or HIGH.
func (p *Pigpio) Write(pin int, level Level) error {
	var rawLevel uint32
	if level {
		rawLevel = 1
	}

	return p.command(write, uint32(pin), rawLevel)
}

// PWM sets the software PWM duty cycle on the given pin.
func (p *Pigpio) PWM(pin int, duty int) error {
	if duty < 0 {
		return fmt.Errorf("duty cycle must not be negative, got %d", duty)
	}

	return p.command(pwm, uint32(pin), uint32(duty))
}

// SetPWMFrequency sets the software PWM frequency on the given pin.
func (p *Pigpio) SetPWMFrequency(pin int, hz int) error {
	if hz <= 0 {
		return fmt.Errorf("pwm frequency must be positive, got %d", hz)
	}

	return p.command(pfs, uint32(pin), uint32(hz))
}

// SetPWMRange sets the software PWM range (25-40000) on the given pin.
func (p *Pigpio) SetPWMRange(pin int, max int) error {
	if max < 25 || max > 40000 {
		return fmt.Errorf("pwm range must be in [25, 40000], got %d", max)
	}

	return p.command(prs, uint32(pin), uint32(max))
}

type cmd struct {
	Cmd uint32
	P1  uint32
	P2  uint32
	P3  uint32
}

const (
	modes uint32 = 0
	write uint32 = 4
	pwm   uint32 = 5
	prs   uint32 = 6
	pfs   uint32 = 7
)

// PigpioError is a negative status returned by the pigpio daemon.
type PigpioError struct {
	Cmd  uint32
	Code int32
}

func (err PigpioError) Error() string {
	return fmt.Sprintf("pigpio command %d failed with status %d", err.Cmd, err.Code)
}

// command sends a request without extension bytes and checks the status the
// daemon echoes back in P3.
func (p *Pigpio) command(c, p1, p2 uint32) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed.Load() {
		return fmt.Errorf("not connected to pigpio socket interface: %w", ErrClosed)
	}
	if p.broken.Load() {
		return fmt.Errorf("connection dropped after an earlier failure: %w", ErrClosed)
	}

	if p.timeout > 0 {
		if err := p.conn.SetDeadline(time.Now().Add(p.timeout)); err != nil {
			return p.fail(fmt.Errorf("unable to set socket deadline: %w", err))
		}
	}

	request := cmd{
		Cmd: c,
		P1:  p1,
		P2:  p2,
	}

	if err := binary.Write(p.conn, binary.LittleEndian, request); err != nil {
		return p.fail(fmt.Errorf("unable to write request to socket: %w", err))
	}

	var response cmd
	if err := binary.Read(p.conn, binary.LittleEndian, &response); err != nil {
		return p.fail(fmt.Errorf("unable to read response from socket: %w", err))
	}

	// PWM frequency replies with the frequency chosen, every other command
	// replies with 0 on success
	if status := int32(response.P3); status < 0 {
		return PigpioError{Cmd: c, Code: status}
	}

	return nil
}

// fail drops the connection after a broken exchange: a late reply would
// otherwise be read as the answer to the next request.
func (p *Pigpio) fail(err error) error {
	if p.closed.Load() {
		return fmt.Errorf("%w: %w", err, ErrClosed)
	}

	p.broken.Store(true)
	p.release()
	return err
}
