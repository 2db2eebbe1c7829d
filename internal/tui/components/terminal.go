package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// maxChunks bounds the session log; older chunks are dropped first.
const maxChunks = 5000

// Terminal is a scrolling log of chunks. It keeps the raw chunks so the
// whole view can be re-rendered when the format options change.
type Terminal struct {
	viewport  viewport.Model
	formatter *DataFormatter
	chunks    []Chunk
	lines     []string
	follow    bool
}

func NewTerminal(width, height int, opts FormatOptions) *Terminal {
	return &Terminal{
		viewport:  viewport.New(width, height),
		formatter: NewDataFormatter(opts),
		follow:    true,
	}
}

func (t *Terminal) SetSize(width, height int) {
	if height < 1 {
		height = 1
	}
	t.viewport.Width = width
	t.viewport.Height = height
	t.render()
}

func (t *Terminal) Width() int {
	return t.viewport.Width
}

func (t *Terminal) Formatter() *DataFormatter {
	return t.formatter
}

// Add appends c to the log.
func (t *Terminal) Add(c Chunk) {
	t.chunks = append(t.chunks, c)
	if len(t.chunks) > maxChunks {
		drop := len(t.chunks) - maxChunks
		t.chunks = append(t.chunks[:0:0], t.chunks[drop:]...)
		t.Refresh()
		return
	}
	t.lines = append(t.lines, t.formatter.Format(c))
	t.render()
}

// UpdateTx sets the status of the transmitted chunk with the given id.
func (t *Terminal) UpdateTx(id int, status TxStatus, err error) bool {
	for i := len(t.chunks) - 1; i >= 0; i-- {
		c := &t.chunks[i]
		if c.Direction == DirectionTX && c.ID == id {
			c.Status = status
			c.Err = err
			t.lines[i] = t.formatter.Format(*c)
			t.render()
			return true
		}
	}
	return false
}

// Chunks returns the logged chunks, oldest first.
func (t *Terminal) Chunks() []Chunk {
	return t.chunks
}

// Refresh re-renders every chunk with the current format options.
func (t *Terminal) Refresh() {
	t.lines = make([]string, len(t.chunks))
	for i, c := range t.chunks {
		t.lines[i] = t.formatter.Format(c)
	}
	t.render()
}

func (t *Terminal) Clear() {
	t.chunks = nil
	t.lines = nil
	t.render()
}

// SetFollow pins the view to the newest line.
func (t *Terminal) SetFollow(follow bool) {
	t.follow = follow
	if follow {
		t.viewport.GotoBottom()
	}
}

func (t *Terminal) Following() bool {
	return t.follow
}

func (t *Terminal) ScrollUp(n int) {
	t.follow = false
	t.viewport.LineUp(n)
}

func (t *Terminal) ScrollDown(n int) {
	t.viewport.LineDown(n)
	if t.viewport.AtBottom() {
		t.follow = true
	}
}

func (t *Terminal) GotoTop() {
	t.follow = false
	t.viewport.GotoTop()
}

func (t *Terminal) render() {
	t.viewport.SetContent(strings.Join(t.lines, "\n"))
	if t.follow {
		t.viewport.GotoBottom()
	}
}

func (t *Terminal) Update(msg tea.Msg) tea.Cmd {
	// only resize and mouse messages reach the viewport, keys are bound by the session
	switch msg.(type) {
	case tea.WindowSizeMsg, tea.MouseMsg:
		var cmd tea.Cmd
		t.viewport, cmd = t.viewport.Update(msg)
		t.follow = t.viewport.AtBottom()
		return cmd
	}
	return nil
}

func (t *Terminal) View() string {
	return t.viewport.View()
}
