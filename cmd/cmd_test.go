package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/allbin/go-serialstream"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSignalState(t *testing.T) {
	for _, in := range []string{"high", "ON", "true", "1"} {
		v, err := parseSignalState(in)
		require.NoError(t, err, in)
		assert.True(t, v, in)
	}
	for _, in := range []string{"low", "Off", "false", "0"} {
		v, err := parseSignalState(in)
		require.NoError(t, err, in)
		assert.False(t, v, in)
	}
	_, err := parseSignalState("maybe")
	assert.Error(t, err)
}

func TestParseHexString(t *testing.T) {
	got, err := parseHexString("48 65 0x6c 6C 6f")
	require.NoError(t, err)
	assert.Equal(t, "Hello", got)

	_, err = parseHexString("abc")
	assert.Error(t, err)
	_, err = parseHexString("zz")
	assert.Error(t, err)
}

func TestPreviewData(t *testing.T) {
	assert.Equal(t, "AT·", previewData("AT\r", 50))
	assert.Equal(t, "abc...", previewData("abcdef", 3))
}

func TestPortCategory(t *testing.T) {
	cases := map[string]string{
		"ttyUSB0":         "usb",
		"ttyACM1":         "usb",
		"cu.usbserial-10": "usb",
		"cuaU0":           "usb",
		"dtyU1":           "usb",
		"ttyAMA0":         "arm",
		"ttyS3":           "standard",
		"cuau0":           "standard",
		"cua00":           "standard",
		"ttymxc0":         "other",
	}
	for name, want := range cases {
		assert.Equal(t, want, portCategory(name), name)
	}
	assert.Equal(t, "BSD USB Serial", getPortType("cuaU0"))
	assert.Equal(t, "BSD Call-Out", getPortType("cuau0"))
}

func TestParseSignalMask(t *testing.T) {
	m, err := parseSignalMask(nil)
	require.NoError(t, err)
	assert.Equal(t, signalCTS|signalDSR|signalRI|signalDCD, m)

	m, err = parseSignalMask([]string{"cts", " DCD"})
	require.NoError(t, err)
	assert.Equal(t, signalCTS|signalDCD, m)

	_, err = parseSignalMask([]string{"rts"})
	assert.Error(t, err)
}

func TestDiffSignals(t *testing.T) {
	a := serialstream.ModemSignals{CTS: true, RTS: true}
	b := serialstream.ModemSignals{DSR: true}
	// output lines are not monitored
	assert.Equal(t, signalCTS|signalDSR, diffSignals(a, b))
	assert.Zero(t, diffSignals(a, a))
}

func TestPortConfig(t *testing.T) {
	v := viper.New()
	v.Set("baud", 9600)
	v.Set("byte-size", 7)
	v.Set("parity", "E")
	v.Set("stop-bits", "2")
	v.Set("flow-control", "hardware")
	v.Set("exclusive", true)
	v.Set("hangup-on-close", false)

	cfg, err := portConfig(v, "/dev/ttyUSB0")
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", cfg.Port)
	assert.Equal(t, 9600, cfg.BaudRate)
	assert.Equal(t, 7, cfg.ByteSize)
	assert.Equal(t, serialstream.ParityEven, cfg.Parity)
	assert.Equal(t, serialstream.StopBitsTwo, cfg.StopBits)
	assert.Equal(t, serialstream.FlowControlRTSCTS, cfg.FlowControl)
	assert.True(t, cfg.Exclusive)
	assert.False(t, cfg.HangupOnClose)
	assert.Equal(t, "7E2", formatFraming(cfg))
}

func TestPortConfigInvalid(t *testing.T) {
	v := viper.New()
	v.Set("baud", 115200)
	v.Set("byte-size", 8)
	v.Set("parity", "sideways")

	_, err := portConfig(v, "/dev/ttyUSB0")
	assert.ErrorIs(t, err, serialstream.ErrInvalidConfig)

	v.Set("parity", "none")
	v.Set("byte-size", 9)
	_, err = portConfig(v, "/dev/ttyUSB0")
	assert.ErrorIs(t, err, serialstream.ErrInvalidByteSize)
}

type chunkReceiver struct {
	chunks [][]byte
	err    error
}

func (r *chunkReceiver) Receive(ctx context.Context, maxBytes int) ([]byte, error) {
	if len(r.chunks) == 0 {
		return nil, r.err
	}
	c := r.chunks[0]
	r.chunks = r.chunks[1:]
	return c, nil
}

func TestRunCaptureStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &chunkReceiver{chunks: [][]byte{[]byte("abc"), []byte("de")}, err: ctx.Err()}

	var out bytes.Buffer
	n, err := runCapture(ctx, r, &out, 16)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)
	assert.Equal(t, "abcde", out.String())
}

func TestRunCaptureReportsReceiveError(t *testing.T) {
	boom := errors.New("boom")
	r := &chunkReceiver{chunks: [][]byte{[]byte("x")}, err: boom}

	var out bytes.Buffer
	n, err := runCapture(context.Background(), r, &out, 16)
	assert.ErrorIs(t, err, boom)
	assert.EqualValues(t, 1, n)
}

func TestRunCaptureEndsOnHangup(t *testing.T) {
	r := &chunkReceiver{chunks: [][]byte{[]byte("tail"), {}}, err: errors.New("read past hangup")}

	var out bytes.Buffer
	n, err := runCapture(context.Background(), r, &out, 16)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
	assert.Equal(t, "tail", out.String())
}
