package serialstream

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Parity represents the parity mode
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
	ParityMark  // requires stick parity support
	ParitySpace // requires stick parity support
)

func (p Parity) String() string {
	switch p {
	case ParityNone:
		return "none"
	case ParityOdd:
		return "odd"
	case ParityEven:
		return "even"
	case ParityMark:
		return "mark"
	case ParitySpace:
		return "space"
	default:
		return fmt.Sprintf("Parity(%d)", int(p))
	}
}

// ParseParity accepts the long names ("none", "odd", ...) and the one-letter
// forms used in "8N1" notation.
func ParseParity(s string) (Parity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "n", "":
		return ParityNone, nil
	case "odd", "o":
		return ParityOdd, nil
	case "even", "e":
		return ParityEven, nil
	case "mark", "m":
		return ParityMark, nil
	case "space", "s":
		return ParitySpace, nil
	}
	return ParityNone, fmt.Errorf("%w: unknown parity %q", ErrInvalidConfig, s)
}

func (p *Parity) UnmarshalText(text []byte) error {
	v, err := ParseParity(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// StopBits represents the number of stop bits
type StopBits int

const (
	StopBitsOne StopBits = iota
	StopBitsOnePointFive
	StopBitsTwo
)

func (s StopBits) String() string {
	switch s {
	case StopBitsOne:
		return "1"
	case StopBitsOnePointFive:
		return "1.5"
	case StopBitsTwo:
		return "2"
	default:
		return fmt.Sprintf("StopBits(%d)", int(s))
	}
}

// ParseStopBits accepts "1", "1.5" and "2".
func ParseStopBits(s string) (StopBits, error) {
	switch strings.TrimSpace(s) {
	case "1", "":
		return StopBitsOne, nil
	case "1.5":
		return StopBitsOnePointFive, nil
	case "2":
		return StopBitsTwo, nil
	}
	return StopBitsOne, fmt.Errorf("%w: unknown stop bits %q", ErrInvalidConfig, s)
}

func (s *StopBits) UnmarshalText(text []byte) error {
	v, err := ParseStopBits(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// FlowControl represents the flow control mode
type FlowControl int

const (
	FlowControlNone    FlowControl = iota
	FlowControlXonXoff             // software flow control
	FlowControlRTSCTS              // hardware flow control
	FlowControlDTRDSR              // not implemented, rejected at configure time
)

func (f FlowControl) String() string {
	switch f {
	case FlowControlNone:
		return "none"
	case FlowControlXonXoff:
		return "xonxoff"
	case FlowControlRTSCTS:
		return "rtscts"
	case FlowControlDTRDSR:
		return "dtrdsr"
	default:
		return fmt.Sprintf("FlowControl(%d)", int(f))
	}
}

// ParseFlowControl accepts "none", "xonxoff" (or "software"), "rtscts" (or
// "hardware") and "dtrdsr".
func ParseFlowControl(s string) (FlowControl, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return FlowControlNone, nil
	case "xonxoff", "xon/xoff", "software":
		return FlowControlXonXoff, nil
	case "rtscts", "rts/cts", "hardware":
		return FlowControlRTSCTS, nil
	case "dtrdsr", "dtr/dsr":
		return FlowControlDTRDSR, nil
	}
	return FlowControlNone, fmt.Errorf("%w: unknown flow control %q", ErrInvalidConfig, s)
}

func (f *FlowControl) UnmarshalText(text []byte) error {
	v, err := ParseFlowControl(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Config holds the configuration for a serial port
type Config struct {
	Port          string // device path, e.g. /dev/ttyUSB0
	BaudRate      int
	Exclusive     bool // take a non-blocking flock on the descriptor
	ByteSize      int  // 5..8
	Parity        Parity
	StopBits      StopBits
	FlowControl   FlowControl
	HangupOnClose bool // HUPCL, may be toggled after open

	Logger logrus.FieldLogger
}

// Option is a functional option for configuring a serial port
type Option func(*Config) error

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		BaudRate:      115200,
		Exclusive:     false,
		ByteSize:      8,
		Parity:        ParityNone,
		StopBits:      StopBitsOne,
		FlowControl:   FlowControlNone,
		HangupOnClose: true,
	}
}

// Validate checks the fields that can be checked without a device. Platform
// capabilities (stick parity, custom baud rates) are only known at configure
// time.
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("%w: empty port path", ErrInvalidConfig)
	}
	if c.BaudRate <= 0 {
		return fmt.Errorf("%w: baud rate %d", ErrInvalidConfig, c.BaudRate)
	}
	if c.ByteSize < 5 || c.ByteSize > 8 {
		return fmt.Errorf("%w: %d", ErrInvalidByteSize, c.ByteSize)
	}
	if c.Parity < ParityNone || c.Parity > ParitySpace {
		return fmt.Errorf("%w: %v", ErrInvalidParity, c.Parity)
	}
	if c.StopBits < StopBitsOne || c.StopBits > StopBitsTwo {
		return fmt.Errorf("%w: %v", ErrUnsupportedStopBits, c.StopBits)
	}
	if c.FlowControl < FlowControlNone || c.FlowControl > FlowControlDTRDSR {
		return fmt.Errorf("%w: %v", ErrUnsupportedFlowControl, c.FlowControl)
	}
	return nil
}

// WithBaudRate sets the baud rate
func WithBaudRate(rate int) Option {
	return func(c *Config) error {
		if rate <= 0 {
			return ErrInvalidConfig
		}
		c.BaudRate = rate
		return nil
	}
}

// WithExclusive requests an exclusive advisory lock on the port
func WithExclusive(exclusive bool) Option {
	return func(c *Config) error {
		c.Exclusive = exclusive
		return nil
	}
}

// WithByteSize sets the number of data bits (5, 6, 7, or 8)
func WithByteSize(bits int) Option {
	return func(c *Config) error {
		if bits < 5 || bits > 8 {
			return ErrInvalidByteSize
		}
		c.ByteSize = bits
		return nil
	}
}

// WithParity sets the parity mode
func WithParity(parity Parity) Option {
	return func(c *Config) error {
		if parity < ParityNone || parity > ParitySpace {
			return ErrInvalidParity
		}
		c.Parity = parity
		return nil
	}
}

// WithStopBits sets the number of stop bits
func WithStopBits(bits StopBits) Option {
	return func(c *Config) error {
		if bits < StopBitsOne || bits > StopBitsTwo {
			return ErrUnsupportedStopBits
		}
		c.StopBits = bits
		return nil
	}
}

// WithFlowControl sets the flow control mode
func WithFlowControl(fc FlowControl) Option {
	return func(c *Config) error {
		c.FlowControl = fc
		return nil
	}
}

// WithHangupOnClose controls whether modem lines are dropped when the port closes
func WithHangupOnClose(hangup bool) Option {
	return func(c *Config) error {
		c.HangupOnClose = hangup
		return nil
	}
}

// WithLogger routes the stream's diagnostics to logger
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Config) error {
		c.Logger = logger
		return nil
	}
}

// WithConfig replaces every field except Port with the values from cfg.
func WithConfig(cfg Config) Option {
	return func(c *Config) error {
		port := c.Port
		*c = cfg
		c.Port = port
		return nil
	}
}
