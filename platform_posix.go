//go:build dragonfly

package serialstream

import "golang.org/x/sys/unix"

// Plain POSIX: only the named speeds are known.
var platformSpeeds = speedResolver{
	named:    posixSpeeds,
	fallback: unix.B38400,
}

func setSpecialBaudRate(fd int, rate int) error {
	return errUnsupportedCustomBaud(rate)
}
