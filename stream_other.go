//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package serialstream

import (
	"context"
	"time"
)

type device struct{}

func (s *Stream) openLocked() error {
	return s.wrap("open", ErrUnsupportedPlatform)
}

func (s *Stream) closeLocked() error { return nil }

func (s *Stream) configureLocked(bool) error {
	return s.wrap("configure", ErrUnsupportedPlatform)
}

func (s *Stream) receive(context.Context, []byte) (int, error) {
	return 0, s.wrap("receive", ErrUnsupportedPlatform)
}

func (s *Stream) send(context.Context, []byte) (int, error) {
	return 0, s.wrap("send", ErrUnsupportedPlatform)
}

func (s *Stream) ModemSignals() (ModemSignals, error) {
	return ModemSignals{}, s.wrap("modem status", ErrUnsupportedPlatform)
}

func (s *Stream) RTS() (bool, error) { return false, s.wrap("modem status", ErrUnsupportedPlatform) }

func (s *Stream) SetRTS(bool) error { return s.wrap("set rts", ErrUnsupportedPlatform) }

func (s *Stream) SetDTR(bool) error { return s.wrap("set dtr", ErrUnsupportedPlatform) }

func (s *Stream) CTS() (bool, error) { return false, s.wrap("modem status", ErrUnsupportedPlatform) }

func (s *Stream) DiscardInput() error { return s.wrap("discard input", ErrUnsupportedPlatform) }

func (s *Stream) DiscardOutput() error { return s.wrap("discard output", ErrUnsupportedPlatform) }

func (s *Stream) InWaiting() (int, error) { return 0, s.wrap("in waiting", ErrUnsupportedPlatform) }

func (s *Stream) SendBreak(context.Context, time.Duration) error {
	return s.wrap("break", ErrUnsupportedPlatform)
}

func (s *Stream) Reconfigure() error { return s.wrap("configure", ErrUnsupportedPlatform) }
