package keys

import "github.com/charmbracelet/bubbles/key"

// SessionKeys are the bindings of the listen and connect views. Interactive
// sessions additionally get the insert mode bindings.
type SessionKeys struct {
	Interactive bool

	Quit       key.Binding
	Help       key.Binding
	InsertMode key.Binding
	Escape     key.Binding
	Enter      key.Binding

	ToggleSendMode key.Binding
	HistoryUp      key.Binding
	HistoryDown    key.Binding

	Clear            key.Binding
	ToggleHex        key.Binding
	ToggleASCII      key.Binding
	ToggleTimestamps key.Binding
	ToggleIndicators key.Binding

	ScrollUp   key.Binding
	ScrollDown key.Binding
	GotoTop    key.Binding
	GotoBottom key.Binding

	ToggleRTS    key.Binding
	ToggleDTR    key.Binding
	ToggleHangup key.Binding
	Break        key.Binding
	Flush        key.Binding
}

func NewSessionKeys(interactive bool) SessionKeys {
	k := SessionKeys{
		Interactive: interactive,
		Quit: key.NewBinding(
			key.WithKeys("q", "Q", "ctrl+c"),
			key.WithHelp("q/ctrl+c", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		InsertMode: key.NewBinding(
			key.WithKeys("i", "I"),
			key.WithHelp("i", "insert mode"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "normal mode"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send message"),
		),
		ToggleSendMode: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "ascii/hex input"),
		),
		HistoryUp: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "previous message"),
		),
		HistoryDown: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "next message"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear buffer"),
		),
		ToggleHex: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "toggle hex"),
		),
		ToggleASCII: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "toggle ascii"),
		),
		ToggleTimestamps: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle timestamps"),
		),
		ToggleIndicators: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "toggle rx/tx markers"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
		GotoTop: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "goto top"),
		),
		GotoBottom: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "follow"),
		),
		ToggleRTS: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "toggle RTS"),
		),
		ToggleDTR: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "toggle DTR"),
		),
		ToggleHangup: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "toggle hangup on close"),
		),
		Break: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "send break"),
		),
		Flush: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "discard queues"),
		),
	}
	if !interactive {
		for _, b := range []*key.Binding{&k.InsertMode, &k.Escape, &k.Enter, &k.ToggleSendMode, &k.HistoryUp, &k.HistoryDown} {
			b.SetEnabled(false)
		}
	}
	return k
}

func (k SessionKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.InsertMode, k.Clear, k.Quit}
}

func (k SessionKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.InsertMode, k.Escape, k.Enter, k.ToggleSendMode},
		{k.Clear, k.ToggleHex, k.ToggleASCII, k.ToggleTimestamps, k.ToggleIndicators},
		{k.ScrollUp, k.ScrollDown, k.GotoTop, k.GotoBottom},
		{k.ToggleRTS, k.ToggleDTR, k.ToggleHangup, k.Break, k.Flush},
		{k.Help, k.Quit},
	}
}
