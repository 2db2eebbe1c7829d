//go:build linux && (ppc64 || ppc64le)

package serialstream

// No termios2 ioctls on powerpc.
func setSpecialBaudRate(fd int, rate int) error {
	return errUnsupportedCustomBaud(rate)
}
