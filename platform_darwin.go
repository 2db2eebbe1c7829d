package serialstream

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sys/unix"
)

// _IOW('T', 2, speed_t) from IOKit/serial/ioss.h
const ioctlIOSSIOSPEED = 0x80045402

// Rates without a B* constant are opened at B38400 and then switched with
// IOSSIOSPEED.
var platformSpeeds = speedResolver{
	named:    posixSpeeds,
	fallback: unix.B38400,
}

// kernelMajor is the Darwin kernel major version, 0 if it cannot be read.
var kernelMajor = sync.OnceValue(func() int {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return 0
	}
	release := unix.ByteSliceToString(u.Release[:])
	major, err := strconv.Atoi(strings.SplitN(release, ".", 2)[0])
	if err != nil {
		return 0
	}
	return major
})

func setSpecialBaudRate(fd int, rate int) error {
	// IOSSIOSPEED appeared with Darwin 8 (Mac OS X 10.4).
	if kernelMajor() < 8 {
		return errUnsupportedCustomBaud(rate)
	}
	if err := unix.IoctlSetPointerInt(fd, ioctlIOSSIOSPEED, rate); err != nil {
		return osError(ErrConfigurationFailed, fmt.Errorf("IOSSIOSPEED %d: %w", rate, err))
	}
	return nil
}
