//go:build linux && !ppc64 && !ppc64le

package serialstream

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// setSpecialBaudRate programs an arbitrary rate with TCSETS2 and reads it
// back, failing if the driver settled on something else.
func setSpecialBaudRate(fd int, rate int) error {
	t, err := unix.IoctlGetTermios(fd, unix.TCGETS2)
	if err != nil {
		return osError(ErrConfigurationFailed, err)
	}
	t.Cflag &^= unix.CBAUD
	t.Cflag |= unix.BOTHER
	t.Ispeed = uint32(rate)
	t.Ospeed = uint32(rate)
	if err := unix.IoctlSetTermios(fd, unix.TCSETS2, t); err != nil {
		return osError(ErrConfigurationFailed, err)
	}

	t, err = unix.IoctlGetTermios(fd, unix.TCGETS2)
	if err != nil {
		return osError(ErrConfigurationFailed, err)
	}
	if t.Ispeed != uint32(rate) || t.Ospeed != uint32(rate) {
		return fmt.Errorf("%w: requested %d, device reports %d/%d",
			ErrBaudRateVerificationFailed, rate, t.Ispeed, t.Ospeed)
	}
	return nil
}
