package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/allbin/go-serialstream"
	"github.com/allbin/go-serialstream/internal/tui/components"
	"github.com/allbin/go-serialstream/internal/tui/keys"
	"github.com/allbin/go-serialstream/internal/tui/styles"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
)

// InputMode represents the current input mode (vim-like)
type InputMode int

const (
	InputModeNormal InputMode = iota
	InputModeInsert
)

func (m InputMode) String() string {
	if m == InputModeInsert {
		return "INSERT"
	}
	return "NORMAL"
}

// Port is what a session drives. *serialstream.Stream implements it.
type Port interface {
	serialstream.Port
	Config() serialstream.Config
}

// Opener acquires the port once the program is running.
type Opener func() (Port, error)

type Options struct {
	Interactive   bool
	Format        components.FormatOptions
	SendingMode   components.SendingMode
	LineEnding    string
	ReceiveSize   int
	SendTimeout   time.Duration
	PollInterval  time.Duration // modem line sampling, 0 disables it
	BreakDuration time.Duration
	Logger        logrus.FieldLogger
}

// retryDelay spaces out receive attempts after a transient error.
const retryDelay = 100 * time.Millisecond

type (
	connectedMsg struct {
		port Port
		err  error
	}
	receivedMsg struct {
		data []byte
		err  error
	}
	sentMsg struct {
		id  int
		err error
	}
	linesMsg struct {
		lines   components.LineState
		err     error
		oneShot bool // sampled after a control, not part of the polling loop
	}
	controlMsg struct {
		text string
		err  error
	}
	retryReceiveMsg struct{}
)

// Session is the bubbletea model behind the listen and connect commands.
// It reads with Receive in a loop of commands and writes each input line
// with SendAll.
type Session struct {
	open Opener
	opts Options
	log  logrus.FieldLogger

	port      Port
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
	ready     bool
	mode      InputMode
	nextID    int

	terminal  *components.Terminal
	statusBar *components.StatusBar
	input     *components.Input
	help      help.Model
	keys      keys.SessionKeys

	now func() time.Time
}

func NewSession(cfg serialstream.Config, open Opener, opts Options) *Session {
	if opts.ReceiveSize <= 0 {
		opts.ReceiveSize = serialstream.DefaultReceiveSize
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 5 * time.Second
	}
	if opts.BreakDuration <= 0 {
		opts.BreakDuration = 250 * time.Millisecond
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		open:      open,
		opts:      opts,
		log:       log.WithField("port", cfg.Port),
		ctx:       ctx,
		cancel:    cancel,
		terminal:  components.NewTerminal(80, 20, opts.Format),
		statusBar: components.NewStatusBar(cfg),
		input:     components.NewInput(opts.SendingMode, opts.LineEnding),
		help:      help.New(),
		keys:      keys.NewSessionKeys(opts.Interactive),
		now:       time.Now,
	}
	s.statusBar.SetConnecting()
	return s
}

func (s *Session) Init() tea.Cmd {
	open := s.open
	return func() tea.Msg {
		port, err := open()
		return connectedMsg{port: port, err: err}
	}
}

// Close stops the background commands and releases the port.
func (s *Session) Close() error {
	s.cancel()
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	s.connected = false
	return err
}

func (s *Session) Connected() bool {
	return s.connected
}

func (s *Session) Mode() InputMode {
	return s.mode
}

func (s *Session) Terminal() *components.Terminal {
	return s.terminal
}

func (s *Session) receive() tea.Cmd {
	port, ctx, size := s.port, s.ctx, s.opts.ReceiveSize
	return func() tea.Msg {
		data, err := port.Receive(ctx, size)
		return receivedMsg{data: data, err: err}
	}
}

// sampleLines reads the modem lines once. Unless oneShot is set the result
// schedules the next sample.
func (s *Session) sampleLines(after time.Duration, oneShot bool) tea.Cmd {
	port := s.port
	if port == nil || (!oneShot && s.opts.PollInterval <= 0) {
		return nil
	}
	sample := func(time.Time) tea.Msg {
		signals, err := port.ModemSignals()
		if err != nil {
			return linesMsg{err: err, oneShot: oneShot}
		}
		return linesMsg{lines: components.LineState{
			Signals: signals,
			Hangup:  port.HangupOnClose(),
			Valid:   true,
		}, oneShot: oneShot}
	}
	if after <= 0 {
		return func() tea.Msg { return sample(time.Time{}) }
	}
	return tea.Tick(after, sample)
}

func (s *Session) event(text string, err error) {
	s.terminal.Add(components.Chunk{
		Timestamp: s.now(),
		Direction: components.DirectionEvent,
		Data:      []byte(text),
		Err:       err,
	})
}

// control runs a blocking port operation off the update loop.
func (s *Session) control(what string, fn func(Port) error) tea.Cmd {
	port := s.port
	if port == nil {
		return nil
	}
	return func() tea.Msg {
		return controlMsg{text: what, err: fn(port)}
	}
}

func (s *Session) send() tea.Cmd {
	if s.port == nil || s.input.Value() == "" {
		return nil
	}
	line := s.input.Value()
	data, err := s.input.Payload()
	if err != nil {
		s.event("Invalid hex input", err)
		return nil
	}

	s.nextID++
	id := s.nextID
	s.terminal.Add(components.Chunk{
		ID:        id,
		Timestamp: s.now(),
		Direction: components.DirectionTX,
		Data:      data,
		Status:    components.TxPending,
	})
	s.input.AddToHistory(line)
	s.input.SetValue("")

	port, parent, timeout := s.port, s.ctx, s.opts.SendTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		return sentMsg{id: id, err: port.SendAll(ctx, data)}
	}
}

func (s *Session) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// status bar is one line, the input box three
		reserved := 2
		if s.opts.Interactive {
			reserved += 3
		}
		s.terminal.SetSize(msg.Width, msg.Height-reserved)
		s.input.SetWidth(msg.Width)
		s.statusBar.SetWidth(msg.Width)
		s.help.Width = msg.Width
		s.ready = true
		return s, s.terminal.Update(msg)

	case tea.MouseMsg:
		return s, s.terminal.Update(msg)

	case connectedMsg:
		if msg.err != nil {
			s.statusBar.SetDisconnected(msg.err)
			s.event("Open failed", msg.err)
			return s, nil
		}
		if s.ctx.Err() != nil {
			// quit before the open finished
			msg.port.Close()
			return s, nil
		}
		s.port = msg.port
		s.connected = true
		s.statusBar.SetConnected(msg.port.Config())
		s.log.Debug("session connected")
		return s, tea.Batch(s.receive(), s.sampleLines(0, false))

	case receivedMsg:
		return s, s.handleReceived(msg)

	case retryReceiveMsg:
		if s.port == nil {
			return s, nil
		}
		return s, s.receive()

	case sentMsg:
		status := components.TxWritten
		if msg.err != nil {
			status = components.TxFailed
			s.log.WithError(msg.err).Debug("send failed")
		}
		s.terminal.UpdateTx(msg.id, status, msg.err)
		return s, nil

	case linesMsg:
		if msg.err != nil {
			// a failed sample ends the polling loop
			if s.port != nil && !errors.Is(msg.err, serialstream.ErrClosed) {
				s.event("Reading modem lines", msg.err)
			}
			return s, nil
		}
		prev := s.statusBar.Lines()
		s.statusBar.SetLines(msg.lines)
		if prev.Valid && prev.Signals.CTS != msg.lines.Signals.CTS {
			s.event(fmt.Sprintf("CTS: %s", onOff(msg.lines.Signals.CTS)), nil)
		}
		if msg.oneShot {
			return s, nil
		}
		return s, s.sampleLines(s.opts.PollInterval, false)

	case controlMsg:
		s.event(msg.text, msg.err)
		return s, s.sampleLines(0, true)

	case tea.KeyMsg:
		return s, s.handleKey(msg)
	}

	if s.mode == InputModeInsert {
		return s, s.input.Update(msg)
	}
	return s, nil
}

func (s *Session) handleReceived(msg receivedMsg) tea.Cmd {
	if msg.err == nil && len(msg.data) == 0 {
		s.connected = false
		s.statusBar.SetDisconnected(nil)
		s.event("Port hung up", nil)
		return nil
	}
	if msg.err == nil {
		s.terminal.Add(components.Chunk{
			Timestamp: s.now(),
			Direction: components.DirectionRX,
			Data:      msg.data,
		})
		return s.receive()
	}

	switch {
	case s.ctx.Err() != nil:
		return nil
	case errors.Is(msg.err, serialstream.ErrClosed):
		s.connected = false
		s.statusBar.SetDisconnected(nil)
		s.event("Port closed", nil)
		return nil
	}
	s.event("Receive failed", msg.err)
	return tea.Tick(retryDelay, func(time.Time) tea.Msg { return retryReceiveMsg{} })
}

func (s *Session) handleKey(msg tea.KeyMsg) tea.Cmd {
	if s.mode == InputModeInsert {
		switch {
		case key.Matches(msg, s.keys.Escape):
			s.mode = InputModeNormal
			s.input.Blur()
			return nil
		case key.Matches(msg, s.keys.Enter):
			return s.send()
		case key.Matches(msg, s.keys.HistoryUp):
			s.input.NavigateHistoryUp()
			return nil
		case key.Matches(msg, s.keys.HistoryDown):
			s.input.NavigateHistoryDown()
			return nil
		case key.Matches(msg, s.keys.ToggleSendMode):
			s.input.ToggleSendingMode()
			return nil
		}
		return s.input.Update(msg)
	}

	switch {
	case key.Matches(msg, s.keys.Quit):
		if err := s.Close(); err != nil {
			s.log.WithError(err).Warn("closing port")
		}
		return tea.Quit
	case key.Matches(msg, s.keys.InsertMode):
		s.mode = InputModeInsert
		s.input.Focus()
	case key.Matches(msg, s.keys.Help):
		s.help.ShowAll = !s.help.ShowAll
	case key.Matches(msg, s.keys.Clear):
		s.terminal.Clear()
	case key.Matches(msg, s.keys.ToggleHex):
		s.terminal.Formatter().ToggleHex()
		s.terminal.Refresh()
	case key.Matches(msg, s.keys.ToggleASCII):
		s.terminal.Formatter().ToggleASCII()
		s.terminal.Refresh()
	case key.Matches(msg, s.keys.ToggleTimestamps):
		s.terminal.Formatter().ToggleTimestamps()
		s.terminal.Refresh()
	case key.Matches(msg, s.keys.ToggleIndicators):
		s.terminal.Formatter().ToggleIndicators()
		s.terminal.Refresh()
	case key.Matches(msg, s.keys.ScrollUp):
		s.terminal.ScrollUp(1)
	case key.Matches(msg, s.keys.ScrollDown):
		s.terminal.ScrollDown(1)
	case key.Matches(msg, s.keys.GotoTop):
		s.terminal.GotoTop()
	case key.Matches(msg, s.keys.GotoBottom):
		s.terminal.SetFollow(true)
	case key.Matches(msg, s.keys.ToggleRTS):
		want := !s.statusBar.Lines().Signals.RTS
		return s.control("RTS "+onOff(want), func(p Port) error { return p.SetRTS(want) })
	case key.Matches(msg, s.keys.ToggleDTR):
		want := !s.statusBar.Lines().Signals.DTR
		return s.control("DTR "+onOff(want), func(p Port) error { return p.SetDTR(want) })
	case key.Matches(msg, s.keys.ToggleHangup):
		if s.port == nil {
			return nil
		}
		want := !s.port.HangupOnClose()
		return s.control("Hangup on close "+onOff(want), func(p Port) error { return p.SetHangupOnClose(want) })
	case key.Matches(msg, s.keys.Break):
		ctx, d := s.ctx, s.opts.BreakDuration
		return s.control(fmt.Sprintf("Break %v", d), func(p Port) error { return p.SendBreak(ctx, d) })
	case key.Matches(msg, s.keys.Flush):
		return s.control("Discarded queued input and output", func(p Port) error {
			return errors.Join(p.DiscardInput(), p.DiscardOutput())
		})
	}
	return nil
}

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}

func (s *Session) View() string {
	content := "Initializing..."
	if s.ready {
		content = s.terminal.View()
	}

	sections := []string{styles.ContentBorderStyle.Render(content)}
	if s.help.ShowAll {
		sections = append(sections, styles.HelpStyle.Render(s.help.View(s.keys)))
	}
	if s.opts.Interactive {
		sections = append(sections, s.input.View(s.mode == InputModeInsert))
	}

	mode := s.mode.String()
	if !s.opts.Interactive {
		mode = "LISTEN"
	}
	if !s.terminal.Following() {
		mode += " ⏸"
	}
	sections = append(sections, s.statusBar.View(mode, s.input.SendingMode().String(), s.now().Format("15:04:05")))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
