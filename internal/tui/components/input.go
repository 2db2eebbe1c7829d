package components

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/allbin/go-serialstream/internal/tui/styles"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type SendingMode int

const (
	SendingModeASCII SendingMode = iota
	SendingModeHex
)

func (s SendingMode) String() string {
	switch s {
	case SendingModeHex:
		return "HEX"
	default:
		return "ASCII"
	}
}

const historyLimit = 100

const (
	placeholderASCII = "Type message and press Enter to send..."
	placeholderHex   = "Enter hex (e.g. 48656C6C6F or 48 65 6C 6C 6F)..."
)

type Input struct {
	textInput     textinput.Model
	sendingMode   SendingMode
	lineEnding    string // appended to ASCII payloads
	history       []string
	historyIndex  int
	currentInput  string // input being edited before history navigation started
	terminalWidth int
}

func NewInput(mode SendingMode, lineEnding string) *Input {
	ti := textinput.New()
	ti.CharLimit = 1024
	ti.Prompt = ""

	i := &Input{
		textInput:    ti,
		lineEnding:   lineEnding,
		historyIndex: -1,
	}
	i.setMode(mode)
	return i
}

func (i *Input) SetWidth(width int) {
	i.terminalWidth = width
	// border(2) + padding(2) + prompt(1) + space(1)
	usable := width - 6
	if usable < 20 {
		usable = 20
	}
	i.textInput.Width = usable
}

func (i *Input) Focus() { i.textInput.Focus() }
func (i *Input) Blur() { i.textInput.Blur() }
func (i *Input) Value() string { return i.textInput.Value() }
func (i *Input) SetValue(v string) { i.textInput.SetValue(v) }
func (i *Input) SendingMode() SendingMode { return i.sendingMode }

func (i *Input) ToggleSendingMode() {
	if i.sendingMode == SendingModeASCII {
		i.setMode(SendingModeHex)
	} else {
		i.setMode(SendingModeASCII)
	}
}

func (i *Input) setMode(mode SendingMode) {
	i.sendingMode = mode
	if mode == SendingModeHex {
		i.textInput.Placeholder = placeholderHex
	} else {
		i.textInput.Placeholder = placeholderASCII
	}
}

// Payload converts the current value to the bytes to transmit. ASCII input
// gets the configured line ending; hex input is sent exactly as typed.
func (i *Input) Payload() ([]byte, error) {
	v := i.textInput.Value()
	if i.sendingMode == SendingModeHex {
		return ParseHex(v)
	}
	return []byte(v + i.lineEnding), nil
}

// ParseHex converts "48 65 6C" or "48656C" to bytes.
func ParseHex(s string) ([]byte, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if clean == "" {
		return nil, fmt.Errorf("empty input")
	}
	if len(clean)%2 != 0 {
		return nil, fmt.Errorf("hex string must have even number of digits (got %d)", len(clean))
	}

	out := make([]byte, 0, len(clean)/2)
	for n := 0; n < len(clean); n += 2 {
		b, err := strconv.ParseUint(clean[n:n+2], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid hex byte '%s'", clean[n:n+2])
		}
		out = append(out, byte(b))
	}
	return out, nil
}

func (i *Input) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	i.textInput, cmd = i.textInput.Update(msg)
	return cmd
}

func (i *Input) View(insert bool) string {
	symbol, color := ">", styles.Green
	if i.sendingMode == SendingModeHex {
		symbol, color = "#", styles.Yellow
	}
	prompt := lipgloss.NewStyle().Foreground(color).Bold(true).Render(symbol)

	var content string
	if insert {
		content = lipgloss.JoinHorizontal(lipgloss.Left, prompt, " ", i.textInput.View())
	} else {
		hint := lipgloss.NewStyle().Foreground(styles.Overlay0).Render("Press 'i' to enter insert mode")
		content = lipgloss.JoinHorizontal(lipgloss.Left, prompt, " ", hint)
	}

	// rounded border and horizontal padding take four columns
	width := i.terminalWidth - 4
	if width < 10 {
		width = 10
	}
	style := styles.InputStyle.Width(width).AlignHorizontal(lipgloss.Left)
	if insert {
		style = style.BorderForeground(styles.Green)
	}
	return style.Render(content)
}

// AddToHistory records a sent line unless it is blank or repeats the last one.
func (i *Input) AddToHistory(line string) {
	i.historyIndex = -1
	i.currentInput = ""

	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if len(i.history) > 0 && i.history[len(i.history)-1] == line {
		return
	}
	i.history = append(i.history, line)
	if len(i.history) > historyLimit {
		i.history = i.history[1:]
	}
}

func (i *Input) NavigateHistoryUp() {
	if len(i.history) == 0 {
		return
	}
	if i.historyIndex == -1 {
		i.currentInput = i.textInput.Value()
		i.historyIndex = len(i.history) - 1
	} else if i.historyIndex > 0 {
		i.historyIndex--
	}
	i.textInput.SetValue(i.history[i.historyIndex])
}

func (i *Input) NavigateHistoryDown() {
	if len(i.history) == 0 || i.historyIndex == -1 {
		return
	}
	if i.historyIndex < len(i.history)-1 {
		i.historyIndex++
		i.textInput.SetValue(i.history[i.historyIndex])
		return
	}
	i.historyIndex = -1
	i.textInput.SetValue(i.currentInput)
	i.currentInput = ""
}
