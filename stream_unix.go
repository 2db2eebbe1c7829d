//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package serialstream

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"go.uber.org/atomic"
	"golang.org/x/sys/unix"
)

// device is an open tty registered with the runtime poller.
type device struct {
	f      *os.File
	rc     syscall.RawConn
	closed atomic.Bool
}

// control runs fn with the raw descriptor. The fd is never taken through
// os.File.Fd, which would put it back into blocking mode.
func (d *device) control(fn func(fd int) error) error {
	var opErr error
	if err := d.rc.Control(func(fd uintptr) { opErr = fn(int(fd)) }); err != nil {
		if d.closed.Load() {
			return ErrClosed
		}
		return err
	}
	return opErr
}

// applyAttributes writes a configured attribute block and applySpecialBaud
// sets a rate outside the speed tables. Tests wrap them to observe device
// writes.
var (
	applyAttributes  = setAttributes
	applySpecialBaud = setSpecialBaudRate
)

func (s *Stream) openLocked() error {
	if s.dev != nil {
		return s.wrap("open", ErrAlreadyOpen)
	}

	fd, err := unix.Open(s.cfg.Port, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return s.wrap("open", osError(ErrOpenFailed, err))
	}
	f := os.NewFile(uintptr(fd), s.cfg.Port)
	rc, err := f.SyscallConn()
	if err != nil {
		f.Close()
		return s.wrap("open", osError(ErrOpenFailed, err))
	}
	s.dev = &device{f: f, rc: rc}

	if err := s.configureLocked(false); err != nil {
		if cerr := s.closeLocked(); cerr != nil {
			s.log.WithError(cerr).Warn("close after failed configure")
		}
		return err
	}
	s.log.WithField("baudrate", s.cfg.BaudRate).Debug("serial port opened")
	return nil
}

func (s *Stream) closeLocked() error {
	d := s.dev
	if d == nil {
		return nil
	}
	s.dev = nil
	d.closed.Store(true)

	if err := d.f.Close(); err != nil {
		s.log.WithError(err).Warn("closing serial port")
		return s.wrap("close", err)
	}
	s.log.Debug("serial port closed")
	return nil
}

// configureLocked brings the device in line with s.cfg. Attributes are only
// written when they differ from what the device reports, unless force is set.
func (s *Stream) configureLocked(force bool) error {
	d := s.dev
	if d == nil {
		return s.wrap("configure", ErrClosed)
	}

	err := d.control(func(fd int) error {
		if err := lockDevice(fd, s.cfg.Exclusive); err != nil {
			return err
		}

		orig, err := getAttributes(fd)
		if err != nil {
			return osError(ErrConfigurationFailed, err)
		}
		next := orig
		custom, err := hostFlags.translate(&next, s.cfg)
		if err != nil {
			return err
		}
		if force || next != orig {
			if err := applyAttributes(fd, &next); err != nil {
				return osError(ErrConfigurationFailed, err)
			}
			s.log.Debug("terminal attributes applied")
		}

		if custom {
			s.log.WithField("baudrate", s.cfg.BaudRate).Debug("setting custom baud rate")
			return applySpecialBaud(fd, s.cfg.BaudRate)
		}
		return nil
	})
	if err != nil {
		return s.wrap("configure", err)
	}
	return nil
}

func lockDevice(fd int, exclusive bool) error {
	how := unix.LOCK_UN
	if exclusive {
		how = unix.LOCK_EX | unix.LOCK_NB
	}
	err := unix.Flock(fd, how)
	switch {
	case err == nil:
		return nil
	case exclusive && errors.Is(err, unix.EWOULDBLOCK):
		return osError(ErrPortBusy, err)
	default:
		return osError(ErrConfigurationFailed, err)
	}
}

func (s *Stream) receive(ctx context.Context, p []byte) (int, error) {
	d, err := s.device()
	if err != nil {
		return 0, s.wrap("receive", err)
	}
	if err := ctx.Err(); err != nil {
		return 0, s.wrap("receive", err)
	}
	release := watchContext(ctx, d.f.SetReadDeadline)
	defer release()

	var n int
	var opErr error
	woken := false
	err = d.rc.Read(func(fd uintptr) bool {
		n, opErr = ignoringEINTR(func() (int, error) { return unix.Read(int(fd), p) })
		if opErr == nil && n == 0 {
			// VMIN=0 reads return 0 instead of EAGAIN on an empty queue, so
			// an empty read only ends the wait once the poller has fired or
			// the line is hung up.
			ready := woken || hungUp(int(fd))
			woken = true
			return ready
		}
		woken = true
		return opErr != unix.EAGAIN
	})
	if err == nil {
		err = opErr
	}
	if err != nil {
		return 0, s.wrap("receive", ioError(ctx, d.closed.Load(), err))
	}
	return n, nil
}

// hungUp reports whether the descriptor signals hangup or error without
// blocking.
func hungUp(fd int) bool {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, 0)
	if err != nil || n == 0 {
		return false
	}
	return fds[0].Revents&(unix.POLLHUP|unix.POLLERR|unix.POLLNVAL) != 0
}

func (s *Stream) send(ctx context.Context, p []byte) (int, error) {
	d, err := s.device()
	if err != nil {
		return 0, s.wrap("send", err)
	}
	if err := ctx.Err(); err != nil {
		return 0, s.wrap("send", err)
	}
	release := watchContext(ctx, d.f.SetWriteDeadline)
	defer release()

	var n int
	var opErr error
	err = d.rc.Write(func(fd uintptr) bool {
		n, opErr = ignoringEINTR(func() (int, error) { return unix.Write(int(fd), p) })
		if opErr == nil && n == 0 {
			// nothing accepted, wait for writability again
			return false
		}
		return opErr != unix.EAGAIN
	})
	if err == nil {
		err = opErr
	}
	if err != nil {
		return 0, s.wrap("send", ioError(ctx, d.closed.Load(), err))
	}
	return n, nil
}

func ignoringEINTR(fn func() (int, error)) (int, error) {
	for {
		n, err := fn()
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, err
		}
		return n, nil
	}
}

func (s *Stream) control(op string, fn func(fd int) error) error {
	d, err := s.device()
	if err != nil {
		return s.wrap(op, err)
	}
	if err := d.control(fn); err != nil {
		return s.wrap(op, err)
	}
	return nil
}

func (s *Stream) modemStatus() (int, error) {
	var status int
	err := s.control("modem status", func(fd int) error {
		var err error
		status, err = unix.IoctlGetInt(fd, unix.TIOCMGET)
		return err
	})
	return status, err
}

func (s *Stream) setModemBit(op string, bit int, on bool) error {
	var req uint = unix.TIOCMBIC
	if on {
		req = unix.TIOCMBIS
	}
	return s.control(op, func(fd int) error {
		return unix.IoctlSetPointerInt(fd, req, bit)
	})
}

// ModemSignals returns current state of all modem control signals
func (s *Stream) ModemSignals() (ModemSignals, error) {
	status, err := s.modemStatus()
	if err != nil {
		return ModemSignals{}, err
	}
	return ModemSignals{
		CTS: status&unix.TIOCM_CTS != 0,
		DSR: status&unix.TIOCM_DSR != 0,
		RI:  status&unix.TIOCM_RI != 0,
		DCD: status&unix.TIOCM_CAR != 0,
		RTS: status&unix.TIOCM_RTS != 0,
		DTR: status&unix.TIOCM_DTR != 0,
	}, nil
}

// RTS returns current RTS signal state
func (s *Stream) RTS() (bool, error) {
	status, err := s.modemStatus()
	if err != nil {
		return false, err
	}
	return status&unix.TIOCM_RTS != 0, nil
}

// SetRTS asserts or clears RTS.
func (s *Stream) SetRTS(state bool) error {
	return s.setModemBit("set rts", unix.TIOCM_RTS, state)
}

// SetDTR asserts or clears DTR.
func (s *Stream) SetDTR(state bool) error {
	return s.setModemBit("set dtr", unix.TIOCM_DTR, state)
}

// CTS returns the Clear To Send line driven by the remote end.
func (s *Stream) CTS() (bool, error) {
	status, err := s.modemStatus()
	if err != nil {
		return false, err
	}
	return status&unix.TIOCM_CTS != 0, nil
}

// DiscardInput drops data received but not yet read.
func (s *Stream) DiscardInput() error {
	return s.control("discard input", func(fd int) error {
		return flushQueue(fd, true)
	})
}

// DiscardOutput drops data written but not yet transmitted.
func (s *Stream) DiscardOutput() error {
	return s.control("discard output", func(fd int) error {
		return flushQueue(fd, false)
	})
}

// InWaiting returns the number of bytes queued in the input buffer.
func (s *Stream) InWaiting() (int, error) {
	var n int
	err := s.control("in waiting", func(fd int) error {
		var err error
		n, err = unix.IoctlGetInt(fd, ioctlInputQueue)
		return err
	})
	return n, err
}

// SendBreak holds the line in the break condition for d, or until ctx is done.
func (s *Stream) SendBreak(ctx context.Context, d time.Duration) error {
	if err := s.control("break", func(fd int) error {
		return unix.IoctlSetInt(fd, unix.TIOCSBRK, 0)
	}); err != nil {
		return err
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	var waitErr error
	select {
	case <-timer.C:
	case <-ctx.Done():
		waitErr = ctx.Err()
	}

	if err := s.control("break", func(fd int) error {
		return unix.IoctlSetInt(fd, unix.TIOCCBRK, 0)
	}); err != nil {
		return err
	}
	if waitErr != nil {
		return s.wrap("break", waitErr)
	}
	return nil
}

// Reconfigure re-applies the current configuration, writing the attributes
// even when the device already matches.
func (s *Stream) Reconfigure() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.configureLocked(true)
}

func errUnsupportedCustomBaud(rate int) error {
	return fmt.Errorf("%w: %d", ErrUnsupportedCustomBaud, rate)
}
