package eyes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/mdouchement/logger"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
	"golang.org/x/time/rate"
)

var (
	ErrNotFound         = errors.New("device not found/plugged")
	ErrInvalidAck       = errors.New("acknowledgment is not valid UTF-8")
	ErrUnknownAnimation = errors.New("unknown animation")
)

// An OpenError is returned when the serial port cannot be opened.
type OpenError struct {
	Port string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("could not open serial port %s: %v", strconv.Quote(e.Port), e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// A HandshakeError is returned when the display does not greet with ReadySignal.
type HandshakeError struct {
	Got string
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("did not receive %s signal, got %q", ReadySignal, e.Got)
}

// Port is the part of serial.Port used by the Controller.
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
	ResetOutputBuffer() error
}

type Options struct {
	BaudRate    int
	ReadTimeout time.Duration
	Acknowledge bool          // Read one line back after each command
	MinInterval time.Duration // Minimum delay between two frames, 0 means no limit
	VID         string        // Used by OpenAuto
	PID         string        // Used by OpenAuto
}

type Controller struct {
	sync    sync.Mutex
	pname   string
	port    Port
	ack     bool
	limiter *rate.Limiter
	log     logger.Logger
	rbuf    []byte
	pending []byte
}

func OpenAuto(opts Options) (*Controller, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, err
	}

	var port *enumerator.PortDetails
	for _, p := range ports {
		if !p.IsUSB {
			continue
		}
		if opts.VID != "" && !strings.EqualFold(p.VID, opts.VID) {
			continue
		}
		if opts.PID != "" && !strings.EqualFold(p.PID, opts.PID) {
			continue
		}

		port = p
		break
	}
	if port == nil {
		return nil, ErrNotFound
	}

	return Open(port.Name, opts)
}

func Open(port string, opts Options) (*Controller, error) {
	if opts.BaudRate == 0 {
		opts.BaudRate = DefaultBaudRate
	}

	p, err := serial.Open(port, &serial.Mode{
		BaudRate: opts.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, &OpenError{Port: port, Err: err}
	}

	return open(port, p, opts)
}

// open takes ownership of p: it is closed when the controller cannot be set up.
func open(name string, p Port, opts Options) (*Controller, error) {
	c, err := NewController(name, p, opts)
	if err != nil {
		p.Close()
		return nil, &OpenError{Port: name, Err: err}
	}

	return c, nil
}

// NewController wraps an already opened port.
func NewController(name string, port Port, opts Options) (*Controller, error) {
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}

	c := &Controller{
		pname: name,
		port:  port,
		ack:   opts.Acknowledge,
		rbuf:  make([]byte, CommRxBufferLen),
	}
	if opts.MinInterval > 0 {
		c.limiter = rate.NewLimiter(rate.Every(opts.MinInterval), 1)
	}

	if err := c.port.SetReadTimeout(opts.ReadTimeout); err != nil {
		return nil, err
	}

	if err := c.port.ResetInputBuffer(); err != nil {
		return nil, err
	}

	if err := c.port.ResetOutputBuffer(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Controller) SetLogger(l logger.Logger) {
	c.log = l
}

// Close always closes the port, even if the buffers could not be reset.
func (c *Controller) Close() error {
	return errors.Join(
		c.port.ResetInputBuffer(),
		c.port.ResetOutputBuffer(),
		c.port.Close(),
	)
}

func (c *Controller) Port() string {
	return c.pname
}

// Handshake waits for the display to send ReadySignal.
// Anything else, including nothing before the read timeout, is a HandshakeError.
func (c *Controller) Handshake() error {
	c.sync.Lock()
	defer c.sync.Unlock()

	line, err := c.readLine()
	if err != nil {
		return fmt.Errorf("handshake: %w", err)
	}

	got := strings.TrimRightFunc(string(line), unicode.IsSpace)
	if got != ReadySignal {
		return &HandshakeError{Got: got}
	}

	return nil
}

// Send writes the frame of a and, when acknowledgments are enabled, returns the line sent back by the display.
// An empty acknowledgment means nothing was received before the read timeout.
func (c *Controller) Send(ctx context.Context, a Animation) (string, error) {
	c.sync.Lock()
	defer c.sync.Unlock()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%s: %w", a, err)
		}
	}

	frame := a.Frame()
	if c.log != nil {
		c.log.Debugf("Writing %s %q", a, frame)
	}

	n, err := c.port.Write(frame)
	if err != nil {
		return "", fmt.Errorf("%s: write: %w", a, err)
	}
	if n != len(frame) && c.log != nil {
		c.log.Warnf("Invalid write: %d of %d", n, len(frame))
	}

	if !c.ack {
		return "", nil
	}

	line, err := c.readLine()
	if err != nil {
		return "", fmt.Errorf("%s: %w", a, err)
	}
	if !utf8.Valid(line) {
		return "", fmt.Errorf("%s: %q: %w", a, line, ErrInvalidAck)
	}

	return strings.TrimSpace(string(line)), nil
}

// readLine returns the next line sent by the display without its line ending.
// It returns what has been received so far, possibly nothing, when the read timeout is reached
// or when maxPending bytes arrived without a line ending.
// The caller must hold c.sync.
func (c *Controller) readLine() ([]byte, error) {
	for {
		if i := bytes.IndexByte(c.pending, CommEndCharacter); i >= 0 {
			line := bytes.TrimRight(c.pending[:i], "\r")
			copied := make([]byte, len(line))
			copy(copied, line)

			c.pending = c.pending[i+1:]
			c.debug(copied)
			return copied, nil
		}

		n, err := c.port.Read(c.rbuf)
		if err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
		if n == 0 {
			// Read timeout
			line := c.pending
			c.pending = nil
			c.debug(line)
			return line, nil
		}

		c.pending = append(c.pending, c.rbuf[:n]...)
		if len(c.pending) >= maxPending && bytes.IndexByte(c.pending, CommEndCharacter) < 0 {
			line := c.pending[:maxPending:maxPending]
			c.pending = bytes.Clone(c.pending[maxPending:])
			c.debug(line)
			return line, nil
		}
	}
}

func (c *Controller) debug(line []byte) {
	if c.log == nil {
		return
	}

	if len(line) == 0 {
		c.log.Debug("Nothing received before read timeout")
		return
	}
	c.log.Debugf("Received %q", line)
}
