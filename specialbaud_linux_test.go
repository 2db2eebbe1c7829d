//go:build linux && (amd64 || arm64 || 386 || arm)

package serialstream

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestLinuxSpeedResolution(t *testing.T) {
	tests := []struct {
		rate   int
		want   uint64
		custom bool
	}{
		{9600, unix.B9600, false},
		{115200, unix.B115200, false},
		{921600, unix.B921600, false},
		{4000000, unix.B4000000, false},
		{250000, unix.BOTHER, true},
		{31250, unix.BOTHER, true},
	}
	for _, tt := range tests {
		got, custom := hostFlags.speeds.resolve(tt.rate)
		require.EqualValues(t, tt.want, got, "rate %d", tt.rate)
		require.Equal(t, tt.custom, custom, "rate %d", tt.rate)
	}
}

func TestCustomBaudOnPty(t *testing.T) {
	_, path := openPair(t)
	s := openStream(t, path, WithBaudRate(250000))

	f, err := s.device()
	require.NoError(t, err)
	err = f.control(func(fd int) error {
		t2, err := unix.IoctlGetTermios(fd, unix.TCGETS2)
		if err != nil {
			return err
		}
		require.EqualValues(t, unix.BOTHER, t2.Cflag&unix.CBAUD)
		require.EqualValues(t, 250000, t2.Ospeed)
		return nil
	})
	require.NoError(t, err)
}

func TestConfigureCustomBaudHook(t *testing.T) {
	var rates []int
	applySpecialBaud = func(fd int, rate int) error {
		rates = append(rates, rate)
		return setSpecialBaudRate(fd, rate)
	}
	writes := 0
	applyAttributes = func(fd int, a *attributes) error {
		writes++
		return setAttributes(fd, a)
	}
	t.Cleanup(func() {
		applySpecialBaud = setSpecialBaudRate
		applyAttributes = setAttributes
	})

	_, path := openPair(t)
	s := openStream(t, path, WithBaudRate(12345))
	require.Equal(t, []int{12345}, rates)
	first := writes

	s.mu.Lock()
	err := s.configureLocked(false)
	s.mu.Unlock()
	require.NoError(t, err)
	require.Equal(t, []int{12345, 12345}, rates)
	require.Equal(t, first, writes, "custom rate rewrote unchanged attributes")
}
