package serialstream

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.BaudRate != 115200 {
		t.Errorf("Expected BaudRate 115200, got %d", config.BaudRate)
	}
	if config.ByteSize != 8 {
		t.Errorf("Expected ByteSize 8, got %d", config.ByteSize)
	}
	if config.StopBits != StopBitsOne {
		t.Errorf("Expected StopBits 1, got %v", config.StopBits)
	}
	if config.Parity != ParityNone {
		t.Errorf("Expected Parity None, got %v", config.Parity)
	}
	if config.FlowControl != FlowControlNone {
		t.Errorf("Expected FlowControl None, got %v", config.FlowControl)
	}
	if !config.HangupOnClose {
		t.Error("Expected HangupOnClose to default to true")
	}
	if config.Exclusive {
		t.Error("Expected Exclusive to default to false")
	}
}

func TestFunctionalOptions(t *testing.T) {
	config := DefaultConfig()
	logger := logrus.New()

	opts := []Option{
		WithBaudRate(9600),
		WithByteSize(7),
		WithStopBits(StopBitsTwo),
		WithParity(ParityEven),
		WithFlowControl(FlowControlRTSCTS),
		WithExclusive(true),
		WithHangupOnClose(false),
		WithLogger(logger),
	}
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			t.Fatalf("option failed: %v", err)
		}
	}

	if config.BaudRate != 9600 {
		t.Errorf("Expected BaudRate 9600, got %d", config.BaudRate)
	}
	if config.ByteSize != 7 {
		t.Errorf("Expected ByteSize 7, got %d", config.ByteSize)
	}
	if config.StopBits != StopBitsTwo {
		t.Errorf("Expected StopBits 2, got %v", config.StopBits)
	}
	if config.Parity != ParityEven {
		t.Errorf("Expected Parity Even, got %v", config.Parity)
	}
	if config.FlowControl != FlowControlRTSCTS {
		t.Errorf("Expected FlowControl RTSCTS, got %v", config.FlowControl)
	}
	if !config.Exclusive {
		t.Error("Expected Exclusive true")
	}
	if config.HangupOnClose {
		t.Error("Expected HangupOnClose false")
	}
	if config.Logger != logger {
		t.Error("Expected logger to be set")
	}
}

func TestInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
		want error
	}{
		{"zero baud rate", WithBaudRate(0), ErrInvalidConfig},
		{"negative baud rate", WithBaudRate(-9600), ErrInvalidConfig},
		{"byte size 4", WithByteSize(4), ErrInvalidByteSize},
		{"byte size 9", WithByteSize(9), ErrInvalidByteSize},
		{"stop bits 3", WithStopBits(StopBits(3)), ErrUnsupportedStopBits},
		{"parity 7", WithParity(Parity(7)), ErrInvalidParity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			if err := tt.opt(&config); !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestWithConfigKeepsPort(t *testing.T) {
	config := DefaultConfig()
	config.Port = "/dev/ttyUSB0"

	other := DefaultConfig()
	other.Port = "/dev/ttyS9"
	other.BaudRate = 4800

	if err := WithConfig(other)(&config); err != nil {
		t.Fatal(err)
	}
	if config.Port != "/dev/ttyUSB0" {
		t.Errorf("Port overwritten: %s", config.Port)
	}
	if config.BaudRate != 4800 {
		t.Errorf("Expected BaudRate 4800, got %d", config.BaudRate)
	}
}

func TestValidate(t *testing.T) {
	valid := DefaultConfig()
	valid.Port = "/dev/ttyUSB0"

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"valid", func(*Config) {}, nil},
		{"empty port", func(c *Config) { c.Port = "" }, ErrInvalidConfig},
		{"zero baud", func(c *Config) { c.BaudRate = 0 }, ErrInvalidConfig},
		{"byte size", func(c *Config) { c.ByteSize = 9 }, ErrInvalidByteSize},
		{"parity", func(c *Config) { c.Parity = Parity(-1) }, ErrInvalidParity},
		{"stop bits", func(c *Config) { c.StopBits = StopBits(5) }, ErrUnsupportedStopBits},
		{"flow control", func(c *Config) { c.FlowControl = FlowControl(9) }, ErrUnsupportedFlowControl},
		// DTR/DSR passes validation and is rejected when the device is configured
		{"dtr/dsr", func(c *Config) { c.FlowControl = FlowControlDTRDSR }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParseEnums(t *testing.T) {
	parities := map[string]Parity{
		"none": ParityNone, "N": ParityNone, "odd": ParityOdd, "E": ParityEven,
		"mark": ParityMark, "space": ParitySpace,
	}
	for in, want := range parities {
		got, err := ParseParity(in)
		if err != nil || got != want {
			t.Errorf("ParseParity(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseParity("sideways"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("ParseParity accepted bad input: %v", err)
	}

	stops := map[string]StopBits{"1": StopBitsOne, "1.5": StopBitsOnePointFive, "2": StopBitsTwo}
	for in, want := range stops {
		got, err := ParseStopBits(in)
		if err != nil || got != want {
			t.Errorf("ParseStopBits(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseStopBits("3"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("ParseStopBits accepted bad input: %v", err)
	}

	flows := map[string]FlowControl{
		"none": FlowControlNone, "software": FlowControlXonXoff, "rtscts": FlowControlRTSCTS,
		"hardware": FlowControlRTSCTS, "dtrdsr": FlowControlDTRDSR,
	}
	for in, want := range flows {
		got, err := ParseFlowControl(in)
		if err != nil || got != want {
			t.Errorf("ParseFlowControl(%q) = %v, %v; want %v", in, got, err, want)
		}
	}

	var p Parity
	if err := p.UnmarshalText([]byte("odd")); err != nil || p != ParityOdd {
		t.Errorf("UnmarshalText(odd) = %v, %v", p, err)
	}
}
