package serialstream

import "fmt"

// attributes is the platform-neutral view of a terminal attribute block. The
// per-platform termios files convert unix.Termios to and from it. It is
// comparable, so "did configure change anything" is a plain ==.
type attributes struct {
	Iflag  uint64
	Oflag  uint64
	Cflag  uint64
	Lflag  uint64
	Ispeed uint64
	Ospeed uint64

	line uint8  // Linux line discipline, zero elsewhere
	cc   string // control characters, carried through untouched
}

// flagSet holds the OS constants the termios translation needs. A zero value
// means the platform does not have that bit.
type flagSet struct {
	// control flags
	Clocal, Cread  uint64
	Csize          uint64
	Cstopb         uint64
	Parenb, Parodd uint64
	Cmspar         uint64 // stick parity
	Crtscts        uint64
	CnewRtscts     uint64 // legacy alias used when Crtscts is absent
	Hupcl          uint64
	Cbaud          uint64 // speed bits inside Cflag (Linux)

	// local flags
	Icanon, Echo, Echoe, Echok, Echonl, Echoctl, Echoke, Isig, Iexten uint64

	// output flags
	Opost, Onlcr, Ocrnl uint64

	// input flags
	Inlcr, Igncr, Icrnl, Ignbrk, Iuclc, Parmrk uint64
	Inpck, Istrip                              uint64
	Ixon, Ixoff, Ixany                         uint64

	byteSizes map[int]uint64

	speeds speedResolver
}

// speedResolver maps an integer baud rate to the value stored in the speed
// fields. Lookup order: named constant, platform table, escape.
type speedResolver struct {
	named map[int]uint64
	table func(rate int) (uint64, bool)

	// escape is written when nothing else matches and the real rate goes
	// through the special baud rate hook. Zero means the platform has none and
	// fallback is used instead.
	escape   uint64
	fallback uint64
}

// resolve returns the speed value for rate and whether the special baud rate
// hook must be invoked afterwards.
func (r speedResolver) resolve(rate int) (speed uint64, custom bool) {
	if v, ok := r.named[rate]; ok {
		return v, false
	}
	if r.table != nil {
		if v, ok := r.table(rate); ok {
			return v, false
		}
	}
	if r.escape != 0 {
		return r.escape, true
	}
	return r.fallback, true
}

// translate applies cfg to a. On error a is left exactly as it was.
func (fs *flagSet) translate(a *attributes, cfg Config) (customBaud bool, err error) {
	t := *a

	t.Cflag |= fs.Clocal | fs.Cread
	t.Lflag &^= fs.Icanon | fs.Echo | fs.Echoe | fs.Echok | fs.Echonl |
		fs.Echoctl | fs.Echoke | fs.Isig | fs.Iexten

	t.Oflag &^= fs.Opost | fs.Onlcr | fs.Ocrnl
	t.Iflag &^= fs.Inlcr | fs.Igncr | fs.Icrnl | fs.Ignbrk | fs.Iuclc | fs.Parmrk

	speed, customBaud := fs.speeds.resolve(cfg.BaudRate)
	t.Ispeed, t.Ospeed = speed, speed
	if fs.Cbaud != 0 {
		t.Cflag = t.Cflag&^fs.Cbaud | speed
	}

	cs, ok := fs.byteSizes[cfg.ByteSize]
	if !ok {
		return false, fmt.Errorf("%w: %d", ErrInvalidByteSize, cfg.ByteSize)
	}
	t.Cflag = t.Cflag&^fs.Csize | cs

	switch cfg.StopBits {
	case StopBitsOne:
		t.Cflag &^= fs.Cstopb
	case StopBitsTwo, StopBitsOnePointFive:
		// POSIX has no 1.5 setting; with CS5 most UARTs emit 1.5 bits for CSTOPB.
		t.Cflag |= fs.Cstopb
	default:
		return false, fmt.Errorf("%w: %v", ErrUnsupportedStopBits, cfg.StopBits)
	}

	t.Iflag &^= fs.Inpck | fs.Istrip
	switch {
	case cfg.Parity == ParityNone:
		t.Cflag &^= fs.Parenb | fs.Parodd | fs.Cmspar
	case cfg.Parity == ParityOdd:
		t.Cflag &^= fs.Cmspar
		t.Cflag |= fs.Parenb | fs.Parodd
	case cfg.Parity == ParityEven:
		t.Cflag &^= fs.Parodd | fs.Cmspar
		t.Cflag |= fs.Parenb
	case cfg.Parity == ParityMark && fs.Cmspar != 0:
		t.Cflag |= fs.Parenb | fs.Cmspar | fs.Parodd
	case cfg.Parity == ParitySpace && fs.Cmspar != 0:
		t.Cflag |= fs.Parenb | fs.Cmspar
		t.Cflag &^= fs.Parodd
	default:
		return false, fmt.Errorf("%w: %v", ErrInvalidParity, cfg.Parity)
	}

	switch cfg.FlowControl {
	case FlowControlNone, FlowControlXonXoff, FlowControlRTSCTS:
	default:
		return false, fmt.Errorf("%w: %v", ErrUnsupportedFlowControl, cfg.FlowControl)
	}

	if cfg.FlowControl == FlowControlXonXoff {
		t.Iflag |= fs.Ixon | fs.Ixoff
	} else {
		t.Iflag &^= fs.Ixon | fs.Ixoff | fs.Ixany
	}

	rtscts := fs.Crtscts
	if rtscts == 0 {
		rtscts = fs.CnewRtscts
	}
	if cfg.FlowControl == FlowControlRTSCTS {
		t.Cflag |= rtscts
	} else {
		t.Cflag &^= rtscts
	}

	if cfg.HangupOnClose {
		t.Cflag |= fs.Hupcl
	} else {
		t.Cflag &^= fs.Hupcl
	}

	*a = t
	return customBaud, nil
}
