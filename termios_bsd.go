//go:build darwin || freebsd || netbsd || openbsd || dragonfly

package serialstream

import "golang.org/x/sys/unix"

// The BSD family shares the 4.4BSD termios layout: no CBAUD field, the speed
// lives in Ispeed/Ospeed and equals the rate, and there is no stick parity.
var hostFlags = &flagSet{
	Clocal:  unix.CLOCAL,
	Cread:   unix.CREAD,
	Csize:   unix.CSIZE,
	Cstopb:  unix.CSTOPB,
	Parenb:  unix.PARENB,
	Parodd:  unix.PARODD,
	Crtscts: unix.CRTSCTS,
	Hupcl:   unix.HUPCL,

	Icanon:  unix.ICANON,
	Echo:    unix.ECHO,
	Echoe:   unix.ECHOE,
	Echok:   unix.ECHOK,
	Echonl:  unix.ECHONL,
	Echoctl: unix.ECHOCTL,
	Echoke:  unix.ECHOKE,
	Isig:    unix.ISIG,
	Iexten:  unix.IEXTEN,

	Opost: unix.OPOST,
	Onlcr: unix.ONLCR,
	Ocrnl: unix.OCRNL,

	Inlcr:  unix.INLCR,
	Igncr:  unix.IGNCR,
	Icrnl:  unix.ICRNL,
	Ignbrk: unix.IGNBRK,
	Parmrk: unix.PARMRK,
	Inpck:  unix.INPCK,
	Istrip: unix.ISTRIP,
	Ixon:   unix.IXON,
	Ixoff:  unix.IXOFF,
	Ixany:  unix.IXANY,

	byteSizes: map[int]uint64{5: unix.CS5, 6: unix.CS6, 7: unix.CS7, 8: unix.CS8},
	speeds:    platformSpeeds,
}

const ioctlInputQueue = 0x4004667f // FIONREAD, _IOR('f', 127, int)

// FREAD and FWRITE from sys/fcntl.h, the TIOCFLUSH queue selectors.
const (
	flushRead  = 0x1
	flushWrite = 0x2
)

// termios field widths differ between the BSDs (uint32, uint64, int32).
func setWord[T ~uint32 | ~uint64 | ~int32 | ~int64](dst *T, v uint64) {
	*dst = T(v)
}

func getAttributes(fd int) (attributes, error) {
	t, err := unix.IoctlGetTermios(fd, unix.TIOCGETA)
	if err != nil {
		return attributes{}, err
	}
	return attributes{
		Iflag:  uint64(t.Iflag),
		Oflag:  uint64(t.Oflag),
		Cflag:  uint64(t.Cflag),
		Lflag:  uint64(t.Lflag),
		Ispeed: uint64(t.Ispeed),
		Ospeed: uint64(t.Ospeed),
		cc:     string(t.Cc[:]),
	}, nil
}

func setAttributes(fd int, a *attributes) error {
	var t unix.Termios
	setWord(&t.Iflag, a.Iflag)
	setWord(&t.Oflag, a.Oflag)
	setWord(&t.Cflag, a.Cflag)
	setWord(&t.Lflag, a.Lflag)
	setWord(&t.Ispeed, a.Ispeed)
	setWord(&t.Ospeed, a.Ospeed)
	copy(t.Cc[:], a.cc)
	return unix.IoctlSetTermios(fd, unix.TIOCSETA, &t)
}

func flushQueue(fd int, input bool) error {
	which := flushWrite
	if input {
		which = flushRead
	}
	return unix.IoctlSetPointerInt(fd, unix.TIOCFLUSH, which)
}
