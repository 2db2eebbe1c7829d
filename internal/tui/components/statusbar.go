package components

import (
	"fmt"
	"strings"

	"github.com/allbin/go-serialstream"
	"github.com/allbin/go-serialstream/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

// LineState is the last sampled state of the modem lines plus HUPCL.
type LineState struct {
	Signals serialstream.ModemSignals
	Hangup  bool
	Valid   bool // false until the first successful sample
}

type connState int

const (
	stateConnecting connState = iota
	stateConnected
	stateDisconnected
	stateFailed
)

type StatusBar struct {
	portPath string
	config   serialstream.Config
	lines    LineState
	state    connState
	err      error
	width    int
}

func NewStatusBar(cfg serialstream.Config) *StatusBar {
	return &StatusBar{portPath: cfg.Port, config: cfg}
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

func (sb *StatusBar) SetLines(lines LineState) {
	sb.lines = lines
}

func (sb *StatusBar) Lines() LineState {
	return sb.lines
}

func (sb *StatusBar) SetConnecting() {
	sb.state, sb.err = stateConnecting, nil
}

func (sb *StatusBar) SetConnected(cfg serialstream.Config) {
	sb.state, sb.err = stateConnected, nil
	sb.config = cfg
}

// SetDisconnected marks the port closed; err is nil for an orderly close.
func (sb *StatusBar) SetDisconnected(err error) {
	if err != nil {
		sb.state, sb.err = stateFailed, err
		return
	}
	sb.state, sb.err = stateDisconnected, nil
}

func (sb *StatusBar) Err() error {
	return sb.err
}

// Framing renders the line settings the usual way, e.g. "115200 8N1 rtscts".
func Framing(cfg serialstream.Config) string {
	parity := "?"
	switch cfg.Parity {
	case serialstream.ParityNone:
		parity = "N"
	case serialstream.ParityOdd:
		parity = "O"
	case serialstream.ParityEven:
		parity = "E"
	case serialstream.ParityMark:
		parity = "M"
	case serialstream.ParitySpace:
		parity = "S"
	}
	return fmt.Sprintf("%d %d%s%s %s", cfg.BaudRate, cfg.ByteSize, parity, cfg.StopBits, cfg.FlowControl)
}

// View renders the single status line.
func (sb *StatusBar) View(mode, sendingMode, timestamp string) string {
	width := sb.width
	if width <= 0 {
		width = 80
	}

	insert := strings.HasPrefix(mode, "INSERT")
	modeColor := styles.Blue
	if insert {
		modeColor = styles.Green
	}
	modeView := lipgloss.NewStyle().
		Foreground(styles.Base).
		Background(modeColor).
		Bold(true).
		Padding(0, 1).
		Render(mode)

	port := lipgloss.NewStyle().Foreground(styles.Mauve).Bold(true).Padding(0, 1).Render(sb.portPath)

	var indicator string
	switch sb.state {
	case stateConnected:
		indicator = lipgloss.NewStyle().Foreground(styles.Green).Render("●")
	case stateConnecting:
		indicator = lipgloss.NewStyle().Foreground(styles.Yellow).Render("○")
	case stateFailed:
		indicator = lipgloss.NewStyle().Foreground(styles.Red).Render("✗")
	default:
		indicator = lipgloss.NewStyle().Foreground(styles.Red).Render("○")
	}

	divider := lipgloss.NewStyle().Foreground(styles.Surface2).Padding(0, 1).Render("│")

	left := []string{modeView, port, indicator}
	if insert {
		left = append(left, lipgloss.NewStyle().
			Foreground(styles.Peach).
			Bold(true).
			Padding(0, 1).
			Render(fmt.Sprintf("[%s] Tab to toggle", sendingMode)))
	}
	left = append(left, divider)
	leftSide := lipgloss.JoinHorizontal(lipgloss.Left, left...)

	details := "⚡ " + Framing(sb.config)
	if sb.err != nil {
		details = "✗ " + sb.err.Error()
	}
	right := []string{lipgloss.NewStyle().Foreground(styles.Subtext0).Padding(0, 1).Render(details)}
	if sb.lines.Valid {
		right = append(right, divider, sb.linesView())
	}
	right = append(right, divider, lipgloss.NewStyle().Foreground(styles.Subtext1).Padding(0, 1).Render(timestamp))
	rightSide := lipgloss.JoinHorizontal(lipgloss.Left, right...)

	spacer := width - lipgloss.Width(leftSide) - lipgloss.Width(rightSide)
	if spacer < 1 {
		spacer = 1
	}

	return lipgloss.NewStyle().
		Foreground(styles.Text).
		Background(styles.Surface0).
		Width(width).
		Render(lipgloss.JoinHorizontal(lipgloss.Left, leftSide, strings.Repeat(" ", spacer), rightSide))
}

func (sb *StatusBar) linesView() string {
	s := sb.lines.Signals
	parts := []string{
		styles.Line("CTS", s.CTS),
		styles.Line("DSR", s.DSR),
		styles.Line("DCD", s.DCD),
		styles.Line("RTS", s.RTS),
		styles.Line("DTR", s.DTR),
	}
	if sb.lines.Hangup {
		parts = append(parts, lipgloss.NewStyle().Foreground(styles.Peach).Render("HUP"))
	}
	return strings.Join(parts, " ")
}
