// Package serialstream provides an asynchronous byte stream over a serial
// (tty) device on Linux, macOS and the BSDs.
//
// The device is opened non-blocking and registered with the Go runtime
// poller, so a Receive or SendAll parks its goroutine instead of a thread and
// honours context cancellation.
//
// # Basic Usage
//
// Open a serial port with default configuration (115200 8N1, no flow control):
//
//	s, err := serialstream.Open("/dev/ttyUSB0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	err = s.SendAll(ctx, []byte("AT\r"))
//	reply, err := s.Receive(ctx, 256)
//
// Stream also implements io.ReadWriteCloser for use with bufio and friends.
//
// # Configuration Options
//
// Use functional options for custom configuration:
//
//	s, err := serialstream.Open("/dev/ttyUSB0",
//	    serialstream.WithBaudRate(250000),
//	    serialstream.WithParity(serialstream.ParityEven),
//	    serialstream.WithFlowControl(serialstream.FlowControlRTSCTS),
//	    serialstream.WithExclusive(true),
//	)
//
// Rates without a named B* constant are set through the platform escape:
// termios2 (BOTHER) on Linux and IOSSIOSPEED on macOS. The FreeBSD, NetBSD
// and OpenBSD drivers take the rate directly.
//
// # Concurrency
//
// One Receive and one SendAll may be in flight at the same time. A second
// call in the same direction fails immediately with ErrConcurrentAccess.
// Close from another goroutine wakes parked calls, which then return
// ErrClosed.
//
// # Error Handling
//
// Failures are returned as *PortError and wrap one of the package sentinels
// together with the OS error, so both can be matched with errors.Is:
//
//	if errors.Is(err, serialstream.ErrPortBusy) {
//	    // another process holds the exclusive lock
//	}
//
// # Default Configuration
//
//   - BaudRate: 115200
//   - ByteSize: 8
//   - StopBits: 1
//   - Parity: None
//   - FlowControl: None
//   - HangupOnClose: true
//   - Exclusive: false
package serialstream
