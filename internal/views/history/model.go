// Package history lists visited pages with the current position marked.
package history

import (
	"slices"

	"charm.land/bubbles/v2/table"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/olivoil/nymview/internal/browser"
	"github.com/olivoil/nymview/internal/ui"
)

// Model is the history panel.
type Model struct {
	table   table.Model
	entries []browser.Entry
	cursor  int
	width   int
	height  int
	focused bool
}

// New creates a new history view model.
func New() Model {
	cols := []table.Column{
		{Title: " ", Width: 2},
		{Title: "time", Width: 10},
		{Title: "address", Width: 40},
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithFocused(false),
		table.WithHeight(5),
	)

	m := Model{table: t}
	m.RefreshStyles()
	return m
}

// RefreshStyles reapplies theme colors to the table (called on theme change).
func (m *Model) RefreshStyles() {
	s := table.DefaultStyles()
	s.Header = s.Header.
		Bold(true).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ui.ColorBorder)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color(ui.T.Accent)).
		Bold(true)
	m.table.SetStyles(s)
}

// SetEntries updates the history rows. Newest entries are listed first and
// the current position is marked.
func (m *Model) SetEntries(entries []browser.Entry, cursor int) {
	if cursor == m.cursor && slices.Equal(entries, m.entries) {
		return
	}
	m.entries = entries
	m.cursor = cursor

	rows := make([]table.Row, len(entries))
	for i, e := range entries {
		mark := " "
		if i == cursor {
			mark = "▶"
		}
		rows[len(entries)-1-i] = table.Row{
			mark,
			ui.FormatTime(e.CreatedAt),
			e.URL(),
		}
	}
	m.table.SetRows(rows)
	m.table.SetCursor(m.row(cursor))
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.table.SetWidth(w)
	m.table.SetHeight(h)

	cols := m.table.Columns()
	if len(cols) == 3 {
		cols[2].Width = max(w-2-10-6, 10)
		m.table.SetColumns(cols)
	}
}

// Selected returns the history index of the selected row.
func (m *Model) Selected() (int, bool) {
	if len(m.entries) == 0 {
		return 0, false
	}
	return m.row(m.table.Cursor()), true
}

// row converts between history index and table row; the mapping is its own
// inverse.
func (m *Model) row(i int) int {
	return len(m.entries) - 1 - i
}

// Focus sets focus on the history table.
func (m *Model) Focus() {
	m.focused = true
	m.table.Focus()
}

// Blur removes focus from the history table.
func (m *Model) Blur() {
	m.focused = false
	m.table.Blur()
}

// Update handles messages for the history view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the history view.
func (m Model) View() string {
	if len(m.entries) == 0 {
		return ui.StyleDim.Render("(no history yet)")
	}
	return m.table.View()
}
