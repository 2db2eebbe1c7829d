package serialstream

import (
	"context"
	"errors"
	"io"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultReceiveSize is the buffer size Receive uses when maxBytes is not positive.
const DefaultReceiveSize = 4096

// Port is the byte-stream surface of an open serial device.
type Port interface {
	io.ReadWriteCloser

	Receive(ctx context.Context, maxBytes int) ([]byte, error)
	SendAll(ctx context.Context, data []byte) error

	DiscardInput() error
	DiscardOutput() error
	SendBreak(ctx context.Context, d time.Duration) error
	InWaiting() (int, error)

	// Modem lines
	ModemSignals() (ModemSignals, error)
	RTS() (bool, error)
	SetRTS(state bool) error
	SetDTR(state bool) error
	CTS() (bool, error)
	HangupOnClose() bool
	SetHangupOnClose(hangup bool) error
}

// ModemSignals represents modem control signal states
type ModemSignals struct {
	CTS bool // Clear To Send
	DSR bool // Data Set Ready
	RI  bool // Ring Indicator
	DCD bool // Data Carrier Detect
	RTS bool // Request To Send
	DTR bool // Data Terminal Ready
}

// rawIO is a single non-blocking transfer that waits for readiness first.
type rawIO interface {
	receive(ctx context.Context, p []byte) (int, error)
	send(ctx context.Context, p []byte) (int, error)
}

// Stream is an asynchronous serial port. One Receive and one SendAll may run
// at the same time; a second call in the same direction fails with
// ErrConcurrentAccess instead of waiting.
//
// Changing the configuration while I/O is in flight is serialized against
// other configuration calls but not against the I/O itself.
type Stream struct {
	mu  sync.RWMutex
	cfg Config
	dev *device // nil while closed

	recvGuard guard
	sendGuard guard

	raw   rawIO
	yield func()
	log   logrus.FieldLogger
}

// Ensure Stream implements Port interface at compile time
var _ Port = (*Stream)(nil)

// New returns a closed stream for port. Call Open to acquire the device.
func New(port string, opts ...Option) (*Stream, error) {
	cfg := DefaultConfig()
	cfg.Port = port
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, &PortError{Op: "new", Port: port, Err: err}
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, &PortError{Op: "new", Port: port, Err: err}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &Stream{
		cfg:   cfg,
		yield: runtime.Gosched,
		log:   logger.WithField("port", port),
	}
	s.raw = s
	return s, nil
}

// Open creates a stream for port and opens it.
func Open(port string, opts ...Option) (*Stream, error) {
	s, err := New(port, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.Open(); err != nil {
		return nil, err
	}
	return s, nil
}

// Open acquires and configures the device. It fails with ErrAlreadyOpen if
// the stream already holds a descriptor.
func (s *Stream) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openLocked()
}

// Close releases the device. Closing a closed stream is a no-op. A Receive or
// SendAll parked on the device is woken and fails with ErrClosed.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeLocked()
}

// Port returns the device path.
func (s *Stream) Port() string {
	return s.cfg.Port
}

// Config returns a copy of the current configuration.
func (s *Stream) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// IsOpen reports whether the stream holds a descriptor.
func (s *Stream) IsOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dev != nil
}

// Receive waits until the device is readable and returns at most maxBytes
// bytes. An empty slice with a nil error means the device reported end of
// stream, typically a hung up line; the caller decides whether to retry.
func (s *Stream) Receive(ctx context.Context, maxBytes int) ([]byte, error) {
	release, err := s.recvGuard.acquire()
	if err != nil {
		return nil, s.wrap("receive", err)
	}
	defer release()

	if maxBytes <= 0 {
		maxBytes = DefaultReceiveSize
	}
	buf := make([]byte, maxBytes)
	n, err := s.raw.receive(ctx, buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// SendAll writes data, resuming after short writes until every byte has been
// accepted by the device. An empty send yields once and returns.
func (s *Stream) SendAll(ctx context.Context, data []byte) error {
	_, err := s.sendAll(ctx, data)
	return err
}

func (s *Stream) sendAll(ctx context.Context, data []byte) (int, error) {
	release, err := s.sendGuard.acquire()
	if err != nil {
		return 0, s.wrap("send", err)
	}
	defer release()

	if len(data) == 0 {
		s.yield()
		return 0, ctx.Err()
	}

	sent := 0
	for sent < len(data) {
		n, err := s.raw.send(ctx, data[sent:])
		sent += n
		if err != nil {
			return sent, err
		}
	}
	return sent, nil
}

// Read implements io.Reader on top of the guarded receive path.
func (s *Stream) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	release, err := s.recvGuard.acquire()
	if err != nil {
		return 0, s.wrap("receive", err)
	}
	defer release()

	n, err := s.raw.receive(context.Background(), p)
	if errors.Is(err, ErrClosed) || (err == nil && n == 0) {
		return n, io.EOF
	}
	return n, err
}

// Write implements io.Writer; it returns only once all of p is written.
func (s *Stream) Write(p []byte) (int, error) {
	return s.sendAll(context.Background(), p)
}

// HangupOnClose reports whether the modem lines drop when the device closes.
func (s *Stream) HangupOnClose() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.HangupOnClose
}

// SetHangupOnClose updates HUPCL. On an open stream the new value is applied
// to the device immediately; if that fails the previous value is kept.
func (s *Stream) SetHangupOnClose(hangup bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.cfg.HangupOnClose
	s.cfg.HangupOnClose = hangup
	if s.dev == nil {
		return nil
	}
	if err := s.configureLocked(false); err != nil {
		s.cfg.HangupOnClose = prev
		return err
	}
	return nil
}

// device returns the open device without holding the lock during I/O, so
// Close can run while a transfer is parked.
func (s *Stream) device() (*device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dev == nil {
		return nil, ErrClosed
	}
	return s.dev, nil
}

func (s *Stream) wrap(op string, err error) error {
	var pe *PortError
	if errors.As(err, &pe) {
		return err
	}
	return &PortError{Op: op, Port: s.cfg.Port, Err: err}
}

// watchContext arms setDeadline with an expired deadline when ctx is done.
// The returned func disarms the watch and, if it fired, clears the deadline
// again before returning.
func watchContext(ctx context.Context, setDeadline func(time.Time) error) (release func()) {
	if ctx.Done() == nil {
		return func() {}
	}
	fired := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		defer close(fired)
		_ = setDeadline(time.Unix(1, 0))
	})
	return func() {
		if stop() {
			return
		}
		<-fired
		_ = setDeadline(time.Time{})
	}
}

// ioError maps the poller's view of a failed transfer back to what the
// caller asked for.
func ioError(ctx context.Context, closed bool, err error) error {
	switch {
	case closed:
		return ErrClosed
	case ctx.Err() != nil && errors.Is(err, os.ErrDeadlineExceeded):
		return ctx.Err()
	case errors.Is(err, os.ErrClosed):
		return ErrClosed
	}
	return err
}
