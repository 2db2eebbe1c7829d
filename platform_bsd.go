//go:build freebsd || netbsd || openbsd

package serialstream

// The speed word is the rate itself, so every positive rate resolves.
var platformSpeeds = speedResolver{
	named: posixSpeeds,
	table: func(rate int) (uint64, bool) {
		return uint64(rate), true
	},
}

func setSpecialBaudRate(fd int, rate int) error {
	return errUnsupportedCustomBaud(rate)
}
