package serialstream

import (
	"errors"
	"testing"
)

// testFlags gives every flag its own bit so translations are easy to inspect.
func testFlags() *flagSet {
	return &flagSet{
		Clocal: 1 << 0, Cread: 1 << 1, Csize: 3 << 2, Cstopb: 1 << 4,
		Parenb: 1 << 5, Parodd: 1 << 6, Cmspar: 1 << 7, Crtscts: 1 << 8,
		Hupcl: 1 << 9, Cbaud: 0xf << 16,

		Icanon: 1 << 0, Echo: 1 << 1, Echoe: 1 << 2, Echok: 1 << 3, Echonl: 1 << 4,
		Echoctl: 1 << 5, Echoke: 1 << 6, Isig: 1 << 7, Iexten: 1 << 8,

		Opost: 1 << 0, Onlcr: 1 << 1, Ocrnl: 1 << 2,

		Inlcr: 1 << 0, Igncr: 1 << 1, Icrnl: 1 << 2, Ignbrk: 1 << 3, Iuclc: 1 << 4,
		Parmrk: 1 << 5, Inpck: 1 << 6, Istrip: 1 << 7, Ixon: 1 << 8, Ixoff: 1 << 9,
		Ixany: 1 << 10,

		byteSizes: map[int]uint64{5: 0 << 2, 6: 1 << 2, 7: 2 << 2, 8: 3 << 2},
		speeds: speedResolver{
			named: map[int]uint64{9600: 0x1 << 16, 115200: 0x2 << 16},
			table: func(rate int) (uint64, bool) {
				if rate == 460800 {
					return 0x3 << 16, true
				}
				return 0, false
			},
			escape: 0xf << 16,
		},
	}
}

// cookedAttributes looks like a terminal fresh out of a login shell.
func cookedAttributes() attributes {
	return attributes{
		Iflag: ^uint64(0),
		Oflag: ^uint64(0),
		Cflag: 0,
		Lflag: ^uint64(0),
		line:  3,
		cc:    "\x03\x1c\x7f\x15\x04\x00\x01",
	}
}

func testConfig() Config {
	c := DefaultConfig()
	c.Port = "/dev/ttyTEST"
	return c
}

func TestTranslateRawMode(t *testing.T) {
	fs := testFlags()
	a := cookedAttributes()

	if _, err := fs.translate(&a, testConfig()); err != nil {
		t.Fatalf("translate failed: %v", err)
	}

	lflags := fs.Icanon | fs.Echo | fs.Echoe | fs.Echok | fs.Echonl | fs.Echoctl | fs.Echoke | fs.Isig | fs.Iexten
	if a.Lflag&lflags != 0 {
		t.Errorf("local flags not cleared: %#x", a.Lflag&lflags)
	}
	if a.Oflag&(fs.Opost|fs.Onlcr|fs.Ocrnl) != 0 {
		t.Errorf("output processing not cleared: %#x", a.Oflag)
	}
	iflags := fs.Inlcr | fs.Igncr | fs.Icrnl | fs.Ignbrk | fs.Iuclc | fs.Parmrk | fs.Inpck | fs.Istrip | fs.Ixon | fs.Ixoff | fs.Ixany
	if a.Iflag&iflags != 0 {
		t.Errorf("input processing not cleared: %#x", a.Iflag&iflags)
	}
	if a.Cflag&(fs.Clocal|fs.Cread) != fs.Clocal|fs.Cread {
		t.Errorf("CLOCAL|CREAD not set: %#x", a.Cflag)
	}
	if a.line != 3 || a.cc != cookedAttributes().cc {
		t.Error("line discipline or control characters modified")
	}
}

func TestTranslateDeterministicAndIdempotent(t *testing.T) {
	fs := testFlags()
	cfg := testConfig()
	cfg.Parity = ParityOdd
	cfg.FlowControl = FlowControlRTSCTS

	a, b := cookedAttributes(), cookedAttributes()
	if _, err := fs.translate(&a, cfg); err != nil {
		t.Fatal(err)
	}
	if _, err := fs.translate(&b, cfg); err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("same input produced different output:\n%+v\n%+v", a, b)
	}

	again := a
	if _, err := fs.translate(&again, cfg); err != nil {
		t.Fatal(err)
	}
	if again != a {
		t.Errorf("second translate changed attributes:\n%+v\n%+v", a, again)
	}
}

func TestTranslateSpeed(t *testing.T) {
	tests := []struct {
		name   string
		rate   int
		speeds speedResolver
		want   uint64
		custom bool
	}{
		{"named", 9600, testFlags().speeds, 0x1 << 16, false},
		{"table", 460800, testFlags().speeds, 0x3 << 16, false},
		{"escape", 250000, testFlags().speeds, 0xf << 16, true},
		{"fallback", 250000, speedResolver{named: map[int]uint64{38400: 0x4 << 16}, fallback: 0x4 << 16}, 0x4 << 16, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := testFlags()
			fs.speeds = tt.speeds
			cfg := testConfig()
			cfg.BaudRate = tt.rate
			a := cookedAttributes()

			custom, err := fs.translate(&a, cfg)
			if err != nil {
				t.Fatal(err)
			}
			if custom != tt.custom {
				t.Errorf("custom = %v, want %v", custom, tt.custom)
			}
			if a.Ispeed != tt.want || a.Ospeed != tt.want {
				t.Errorf("speed = %#x/%#x, want %#x", a.Ispeed, a.Ospeed, tt.want)
			}
			if a.Cflag&fs.Cbaud != tt.want {
				t.Errorf("CBAUD bits = %#x, want %#x", a.Cflag&fs.Cbaud, tt.want)
			}
		})
	}
}

func TestTranslateSpeedWithoutCbaud(t *testing.T) {
	fs := testFlags()
	fs.Cbaud = 0
	fs.speeds = speedResolver{table: func(rate int) (uint64, bool) { return uint64(rate), true }}
	cfg := testConfig()
	cfg.BaudRate = 250000
	a := cookedAttributes()

	custom, err := fs.translate(&a, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if custom {
		t.Error("identity table should never need the custom baud hook")
	}
	if a.Ispeed != 250000 {
		t.Errorf("Ispeed = %d, want 250000", a.Ispeed)
	}
	if a.Cflag&(0xf<<16) != 0 {
		t.Errorf("speed leaked into Cflag: %#x", a.Cflag)
	}
}

func TestTranslateByteSize(t *testing.T) {
	fs := testFlags()
	for size, bits := range fs.byteSizes {
		cfg := testConfig()
		cfg.ByteSize = size
		a := cookedAttributes()
		a.Cflag = fs.Csize
		if _, err := fs.translate(&a, cfg); err != nil {
			t.Fatalf("size %d: %v", size, err)
		}
		if a.Cflag&fs.Csize != bits {
			t.Errorf("size %d: CSIZE bits = %#x, want %#x", size, a.Cflag&fs.Csize, bits)
		}
	}

	cfg := testConfig()
	cfg.ByteSize = 9
	a := cookedAttributes()
	before := a
	if _, err := fs.translate(&a, cfg); !errors.Is(err, ErrInvalidByteSize) {
		t.Errorf("expected ErrInvalidByteSize, got %v", err)
	}
	if a != before {
		t.Error("attributes modified on error")
	}
}

func TestTranslateStopBits(t *testing.T) {
	fs := testFlags()
	tests := []struct {
		stop  StopBits
		cstop bool
	}{
		{StopBitsOne, false},
		{StopBitsOnePointFive, true},
		{StopBitsTwo, true},
	}
	for _, tt := range tests {
		cfg := testConfig()
		cfg.StopBits = tt.stop
		a := cookedAttributes()
		a.Cflag = fs.Cstopb
		if _, err := fs.translate(&a, cfg); err != nil {
			t.Fatalf("%v: %v", tt.stop, err)
		}
		if got := a.Cflag&fs.Cstopb != 0; got != tt.cstop {
			t.Errorf("%v: CSTOPB = %v, want %v", tt.stop, got, tt.cstop)
		}
	}

	cfg := testConfig()
	cfg.StopBits = StopBits(9)
	a := cookedAttributes()
	if _, err := fs.translate(&a, cfg); !errors.Is(err, ErrUnsupportedStopBits) {
		t.Errorf("expected ErrUnsupportedStopBits, got %v", err)
	}
}

func TestTranslateParity(t *testing.T) {
	fs := testFlags()
	mask := fs.Parenb | fs.Parodd | fs.Cmspar
	tests := []struct {
		parity Parity
		want   uint64
	}{
		{ParityNone, 0},
		{ParityOdd, fs.Parenb | fs.Parodd},
		{ParityEven, fs.Parenb},
		{ParityMark, fs.Parenb | fs.Parodd | fs.Cmspar},
		{ParitySpace, fs.Parenb | fs.Cmspar},
	}
	for _, tt := range tests {
		for _, start := range []uint64{0, mask} {
			cfg := testConfig()
			cfg.Parity = tt.parity
			a := cookedAttributes()
			a.Cflag = start
			if _, err := fs.translate(&a, cfg); err != nil {
				t.Fatalf("%v: %v", tt.parity, err)
			}
			if got := a.Cflag & mask; got != tt.want {
				t.Errorf("%v from %#x: parity bits = %#x, want %#x", tt.parity, start, got, tt.want)
			}
		}
	}
}

func TestTranslateStickParityUnsupported(t *testing.T) {
	fs := testFlags()
	fs.Cmspar = 0

	for _, parity := range []Parity{ParityMark, ParitySpace} {
		cfg := testConfig()
		cfg.Parity = parity
		a := cookedAttributes()
		before := a
		if _, err := fs.translate(&a, cfg); !errors.Is(err, ErrInvalidParity) {
			t.Errorf("%v: expected ErrInvalidParity, got %v", parity, err)
		}
		if a != before {
			t.Errorf("%v: attributes modified on error", parity)
		}
	}
}

func TestTranslateFlowControl(t *testing.T) {
	fs := testFlags()

	tests := []struct {
		flow      FlowControl
		wantIflag uint64
		wantCflag uint64
	}{
		{FlowControlNone, 0, 0},
		{FlowControlXonXoff, fs.Ixon | fs.Ixoff | fs.Ixany, 0}, // IXANY from the cooked input survives
		{FlowControlRTSCTS, 0, fs.Crtscts},
	}
	for _, tt := range tests {
		cfg := testConfig()
		cfg.FlowControl = tt.flow
		a := cookedAttributes()
		a.Cflag = fs.Crtscts
		if _, err := fs.translate(&a, cfg); err != nil {
			t.Fatalf("%v: %v", tt.flow, err)
		}
		if got := a.Iflag & (fs.Ixon | fs.Ixoff | fs.Ixany); got != tt.wantIflag {
			t.Errorf("%v: software flow bits = %#x, want %#x", tt.flow, got, tt.wantIflag)
		}
		if got := a.Cflag & fs.Crtscts; got != tt.wantCflag {
			t.Errorf("%v: CRTSCTS = %#x, want %#x", tt.flow, got, tt.wantCflag)
		}
	}

	cfg := testConfig()
	cfg.FlowControl = FlowControlDTRDSR
	a := cookedAttributes()
	before := a
	if _, err := fs.translate(&a, cfg); !errors.Is(err, ErrUnsupportedFlowControl) {
		t.Errorf("expected ErrUnsupportedFlowControl, got %v", err)
	}
	if a != before {
		t.Error("attributes modified on error")
	}
}

func TestTranslateLegacyRtscts(t *testing.T) {
	fs := testFlags()
	fs.Crtscts = 0
	fs.CnewRtscts = 1 << 12

	cfg := testConfig()
	cfg.FlowControl = FlowControlRTSCTS
	a := cookedAttributes()
	if _, err := fs.translate(&a, cfg); err != nil {
		t.Fatal(err)
	}
	if a.Cflag&fs.CnewRtscts == 0 {
		t.Error("legacy RTS/CTS bit not set")
	}
}

func TestTranslateHangupOnClose(t *testing.T) {
	fs := testFlags()
	for _, hangup := range []bool{true, false} {
		cfg := testConfig()
		cfg.HangupOnClose = hangup
		a := cookedAttributes()
		if !hangup {
			a.Cflag = fs.Hupcl
		}
		if _, err := fs.translate(&a, cfg); err != nil {
			t.Fatal(err)
		}
		if got := a.Cflag&fs.Hupcl != 0; got != hangup {
			t.Errorf("HUPCL = %v, want %v", got, hangup)
		}
	}
}

func TestTranslateOnlyTouchesItsBits(t *testing.T) {
	fs := testFlags()
	const foreign = 1 << 40
	a := cookedAttributes()
	a.Cflag |= foreign

	if _, err := fs.translate(&a, testConfig()); err != nil {
		t.Fatal(err)
	}
	if a.Cflag&foreign == 0 {
		t.Error("unrelated control bit cleared")
	}
	if a.Iflag&(1<<20) == 0 {
		t.Error("unrelated input bit cleared")
	}
}
