package serialstream

import (
	"errors"
	"fmt"
)

// Predefined error types for robust error handling
var (
	ErrAlreadyOpen         = errors.New("serial port is already open")
	ErrClosed              = errors.New("serial port is closed")
	ErrOpenFailed          = errors.New("failed to open serial port")
	ErrPortBusy            = errors.New("serial port is locked by another process")
	ErrConfigurationFailed = errors.New("failed to configure serial port")
	ErrInvalidConfig       = errors.New("invalid serial configuration")
	ErrDeviceNotFound      = errors.New("serial device not found")

	// Termios translation errors
	ErrInvalidByteSize        = errors.New("invalid byte size")
	ErrUnsupportedStopBits    = errors.New("unsupported stop bits")
	ErrInvalidParity          = errors.New("invalid parity")
	ErrUnsupportedFlowControl = errors.New("unsupported flow control")

	// Custom baud rate errors
	ErrUnsupportedCustomBaud      = errors.New("custom baud rates are not supported on this platform")
	ErrBaudRateVerificationFailed = errors.New("baud rate verification failed")

	// Stream usage errors
	ErrConcurrentAccess    = errors.New("another goroutine is already using this direction of the serial port")
	ErrUnsupportedPlatform = errors.New("serial ports are not supported on this platform")
)

// PortError records a failed operation on a serial port.
type PortError struct {
	Op   string
	Port string
	Err  error
}

func (e *PortError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Port, e.Err)
}

func (e *PortError) Unwrap() error { return e.Err }

// osError tags an OS-level failure with the sentinel describing the step that failed.
// Both stay reachable through errors.Is.
func osError(kind, err error) error {
	return fmt.Errorf("%w: %w", kind, err)
}
