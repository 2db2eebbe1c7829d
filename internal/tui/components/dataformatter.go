package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/allbin/go-serialstream/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

// Direction tells where a chunk came from.
type Direction int

const (
	DirectionRX Direction = iota
	DirectionTX
	DirectionEvent // local notices: line changes, breaks, errors
)

// TxStatus tracks a SendAll from submission to completion.
type TxStatus int

const (
	TxPending TxStatus = iota
	TxWritten
	TxFailed
)

// Chunk is one entry in the session log.
type Chunk struct {
	ID        int
	Timestamp time.Time
	Direction Direction
	Data      []byte
	Status    TxStatus // TX only
	Err       error    // TX failures and error events
}

// FormatOptions selects what a formatted line contains.
type FormatOptions struct {
	Hex        bool
	ASCII      bool
	Timestamps bool
	Indicators bool
}

// DefaultFormatOptions shows everything.
func DefaultFormatOptions() FormatOptions {
	return FormatOptions{Hex: true, ASCII: true, Timestamps: true, Indicators: true}
}

type DataFormatter struct {
	opts FormatOptions
}

func NewDataFormatter(opts FormatOptions) *DataFormatter {
	return &DataFormatter{opts: opts}
}

func (df *DataFormatter) Options() FormatOptions {
	return df.opts
}

func (df *DataFormatter) SetOptions(opts FormatOptions) {
	df.opts = opts
}

func (df *DataFormatter) ToggleHex() { df.opts.Hex = !df.opts.Hex }
func (df *DataFormatter) ToggleASCII() { df.opts.ASCII = !df.opts.ASCII }
func (df *DataFormatter) ToggleTimestamps() { df.opts.Timestamps = !df.opts.Timestamps }
func (df *DataFormatter) ToggleIndicators() { df.opts.Indicators = !df.opts.Indicators }

func (df *DataFormatter) Format(c Chunk) string {
	var prefix []string
	if df.opts.Timestamps {
		prefix = append(prefix, styles.TimestampStyle.Render(fmt.Sprintf("[%s]", c.Timestamp.Format("15:04:05.000"))))
	}
	if df.opts.Indicators {
		prefix = append(prefix, indicator(c))
	}

	var body string
	if c.Direction == DirectionEvent {
		body = styles.EventStyle.Render(string(c.Data))
		if c.Err != nil {
			body = styles.ErrorStyle.Render(fmt.Sprintf("%s: %v", c.Data, c.Err))
		}
	} else {
		body = df.payload(c.Data)
		if c.Direction == DirectionTX && c.Status == TxFailed && c.Err != nil {
			body += "  " + styles.ErrorStyle.Render(c.Err.Error())
		}
	}

	if len(prefix) == 0 {
		return body
	}
	return strings.Join(prefix, " ") + ": " + body
}

func (df *DataFormatter) payload(data []byte) string {
	var parts []string
	if df.opts.Hex {
		parts = append(parts, fmt.Sprintf("HEX: % X", data))
	}
	if df.opts.ASCII {
		parts = append(parts, "ASCII: "+printable(data))
	}
	if len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("BYTES: %d", len(data)))
	}
	return strings.Join(parts, "  ")
}

// printable replaces everything outside printable ASCII with a dot so that
// received control sequences cannot reach the terminal.
func printable(data []byte) string {
	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		if c >= 32 && c <= 126 {
			b.WriteByte(c)
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}

func indicator(c Chunk) string {
	switch c.Direction {
	case DirectionTX:
		var color lipgloss.Color
		var text string
		switch c.Status {
		case TxPending:
			color, text = styles.Yellow, "TX ○"
		case TxWritten:
			color, text = styles.Green, "TX ✓"
		case TxFailed:
			color, text = styles.Red, "TX ✗"
		}
		return lipgloss.NewStyle().Foreground(color).Bold(true).Render("↗ " + text)
	case DirectionEvent:
		return lipgloss.NewStyle().Foreground(styles.Teal).Bold(true).Render("• --")
	default:
		return lipgloss.NewStyle().Foreground(styles.Sky).Bold(true).Render("↙ RX")
	}
}
