package serialstream

import "golang.org/x/sys/unix"

// linuxSpeeds are the rates above 230400 that the kernel names as B* values.
var linuxSpeeds = map[int]uint64{
	460800:  unix.B460800,
	500000:  unix.B500000,
	576000:  unix.B576000,
	921600:  unix.B921600,
	1000000: unix.B1000000,
	1152000: unix.B1152000,
	1500000: unix.B1500000,
	2000000: unix.B2000000,
	2500000: unix.B2500000,
	3000000: unix.B3000000,
	3500000: unix.B3500000,
	4000000: unix.B4000000,
}

// Anything else is written as BOTHER and set through termios2.
var platformSpeeds = speedResolver{
	named: posixSpeeds,
	table: func(rate int) (uint64, bool) {
		v, ok := linuxSpeeds[rate]
		return v, ok
	},
	escape: unix.BOTHER,
}
