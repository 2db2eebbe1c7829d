package serialstream

import "golang.org/x/sys/unix"

var hostFlags = &flagSet{
	Clocal:  unix.CLOCAL,
	Cread:   unix.CREAD,
	Csize:   unix.CSIZE,
	Cstopb:  unix.CSTOPB,
	Parenb:  unix.PARENB,
	Parodd:  unix.PARODD,
	Cmspar:  unix.CMSPAR,
	Crtscts: unix.CRTSCTS,
	Hupcl:   unix.HUPCL,
	Cbaud:   unix.CBAUD,

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
	Iuclc:  unix.IUCLC,
	Parmrk: unix.PARMRK,
	Inpck:  unix.INPCK,
	Istrip: unix.ISTRIP,
	Ixon:   unix.IXON,
	Ixoff:  unix.IXOFF,
	Ixany:  unix.IXANY,

	byteSizes: map[int]uint64{5: unix.CS5, 6: unix.CS6, 7: unix.CS7, 8: unix.CS8},
	speeds:    platformSpeeds,
}

const ioctlInputQueue = unix.TIOCINQ

// getAttributes reads the attribute block. The speed fields are taken from
// the CBAUD bits, which is where TCSETS actually stores the rate.
func getAttributes(fd int) (attributes, error) {
	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return attributes{}, err
	}
	speed := uint64(t.Cflag & unix.CBAUD)
	return attributes{
		Iflag:  uint64(t.Iflag),
		Oflag:  uint64(t.Oflag),
		Cflag:  uint64(t.Cflag),
		Lflag:  uint64(t.Lflag),
		Ispeed: speed,
		Ospeed: speed,
		line:   t.Line,
		cc:     string(t.Cc[:]),
	}, nil
}

func setAttributes(fd int, a *attributes) error {
	t := unix.Termios{
		Iflag:  uint32(a.Iflag),
		Oflag:  uint32(a.Oflag),
		Cflag:  uint32(a.Cflag),
		Lflag:  uint32(a.Lflag),
		Line:   a.line,
		Ispeed: uint32(a.Ispeed),
		Ospeed: uint32(a.Ospeed),
	}
	copy(t.Cc[:], a.cc)
	return unix.IoctlSetTermios(fd, unix.TCSETS, &t)
}

func flushQueue(fd int, input bool) error {
	which := unix.TCOFLUSH
	if input {
		which = unix.TCIFLUSH
	}
	return unix.IoctlSetInt(fd, unix.TCFLSH, which)
}
