package components

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/allbin/go-serialstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ts = time.Date(2025, 3, 1, 12, 30, 45, 123_000_000, time.UTC)

func TestFormatPayload(t *testing.T) {
	df := NewDataFormatter(FormatOptions{Hex: true, ASCII: true})
	line := df.Format(Chunk{Timestamp: ts, Data: []byte("Hi\r\n")})
	assert.Equal(t, "HEX: 48 69 0D 0A  ASCII: Hi..", line)

	df.ToggleHex()
	df.ToggleASCII()
	assert.Equal(t, "BYTES: 4", df.Format(Chunk{Timestamp: ts, Data: []byte("Hi\r\n")}))
}

func TestFormatPrefix(t *testing.T) {
	df := NewDataFormatter(DefaultFormatOptions())
	line := df.Format(Chunk{Timestamp: ts, Direction: DirectionTX, Data: []byte{0x02}, Status: TxWritten})
	assert.Contains(t, line, "12:30:45.123")
	assert.Contains(t, line, "TX ✓")
	assert.Contains(t, line, "HEX: 02")

	df.ToggleTimestamps()
	df.ToggleIndicators()
	assert.False(t, strings.Contains(df.Format(Chunk{Timestamp: ts}), "12:30"))
}

func TestFormatFailedSend(t *testing.T) {
	df := NewDataFormatter(FormatOptions{ASCII: true})
	line := df.Format(Chunk{Direction: DirectionTX, Data: []byte("x"), Status: TxFailed, Err: errors.New("timeout")})
	assert.Contains(t, line, "ASCII: x")
	assert.Contains(t, line, "timeout")
}

func TestTerminalUpdateTx(t *testing.T) {
	term := NewTerminal(40, 5, FormatOptions{ASCII: true, Indicators: true})
	term.Add(Chunk{ID: 1, Direction: DirectionTX, Data: []byte("a")})
	term.Add(Chunk{Direction: DirectionRX, Data: []byte("b")})

	require.True(t, term.UpdateTx(1, TxWritten, nil))
	assert.Equal(t, TxWritten, term.Chunks()[0].Status)
	assert.Contains(t, term.View(), "TX ✓")
	assert.False(t, term.UpdateTx(7, TxWritten, nil))

	term.Clear()
	assert.Empty(t, term.Chunks())
}

func TestTerminalBounded(t *testing.T) {
	term := NewTerminal(40, 5, FormatOptions{})
	for i := 0; i < maxChunks+10; i++ {
		term.Add(Chunk{ID: i, Direction: DirectionRX})
	}
	require.Len(t, term.Chunks(), maxChunks)
	assert.Equal(t, 10, term.Chunks()[0].ID)
}

func TestTerminalFollow(t *testing.T) {
	term := NewTerminal(40, 2, FormatOptions{ASCII: true})
	for i := 0; i < 10; i++ {
		term.Add(Chunk{Data: []byte{'0' + byte(i)}})
	}
	assert.True(t, term.Following())
	term.ScrollUp(3)
	assert.False(t, term.Following())
	term.SetFollow(true)
	assert.True(t, term.Following())
	assert.Contains(t, term.View(), "ASCII: 9")
}

func TestParseHex(t *testing.T) {
	b, err := ParseHex("02 06 00 03")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02, 0x06, 0x00, 0x03}, b)

	b, err = ParseHex("48656c6C6F")
	require.NoError(t, err)
	assert.Equal(t, []byte("Hello"), b)

	for _, bad := range []string{"", "   ", "123", "0g"} {
		_, err := ParseHex(bad)
		assert.Error(t, err, bad)
	}
}

func TestInputPayload(t *testing.T) {
	in := NewInput(SendingModeASCII, "\r\n")
	in.SetValue("AT")
	b, err := in.Payload()
	require.NoError(t, err)
	assert.Equal(t, []byte("AT\r\n"), b)

	in.ToggleSendingMode()
	assert.Equal(t, SendingModeHex, in.SendingMode())
	in.SetValue("0D0A")
	b, err = in.Payload()
	require.NoError(t, err)
	assert.Equal(t, []byte("\r\n"), b)
}

func TestInputHistory(t *testing.T) {
	in := NewInput(SendingModeASCII, "")
	in.AddToHistory("one")
	in.AddToHistory("two")
	in.AddToHistory("two")
	in.AddToHistory("  ")

	in.SetValue("draft")
	in.NavigateHistoryUp()
	assert.Equal(t, "two", in.Value())
	in.NavigateHistoryUp()
	in.NavigateHistoryUp()
	assert.Equal(t, "one", in.Value())
	in.NavigateHistoryDown()
	assert.Equal(t, "two", in.Value())
	in.NavigateHistoryDown()
	assert.Equal(t, "draft", in.Value())
}

func TestFraming(t *testing.T) {
	cfg := serialstream.DefaultConfig()
	assert.Equal(t, "115200 8N1 none", Framing(cfg))

	cfg.BaudRate, cfg.ByteSize, cfg.Parity, cfg.StopBits = 250000, 7, serialstream.ParityMark, serialstream.StopBitsOnePointFive
	cfg.FlowControl = serialstream.FlowControlRTSCTS
	assert.Equal(t, "250000 7M1.5 rtscts", Framing(cfg))
}

func TestStatusBarView(t *testing.T) {
	cfg := serialstream.DefaultConfig()
	cfg.Port = "/dev/ttyUSB0"
	sb := NewStatusBar(cfg)
	sb.SetWidth(120)
	sb.SetConnected(cfg)
	sb.SetLines(LineState{Signals: serialstream.ModemSignals{CTS: true}, Hangup: true, Valid: true})

	view := sb.View("NORMAL", "ASCII", "12:00:00")
	assert.Contains(t, view, "/dev/ttyUSB0")
	assert.Contains(t, view, "115200 8N1")
	assert.Contains(t, view, "CTS")
	assert.Contains(t, view, "HUP")

	sb.SetDisconnected(errors.New("gone"))
	assert.Contains(t, sb.View("NORMAL", "ASCII", "12:00:00"), "gone")
}
