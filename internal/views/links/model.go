// Package links lists the nym:// links found in the current page.
package links

import (
	"slices"
	"strconv"

	"charm.land/bubbles/v2/table"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/olivoil/nymview/internal/address"
	"github.com/olivoil/nymview/internal/ui"
)

// Model is the links panel.
type Model struct {
	table   table.Model
	links   []address.Link
	width   int
	height  int
	focused bool
}

// New creates a new links view model.
func New() Model {
	cols := []table.Column{
		{Title: "#", Width: 3},
		{Title: "kind", Width: 8},
		{Title: "target", Width: 40},
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
		Foreground(lipgloss.Color(ui.T.Background)).
		Background(ui.ColorAccent).
		Bold(true)
	m.table.SetStyles(s)
}

// SetLinks replaces the listed links. The selection is kept when the list
// did not change.
func (m *Model) SetLinks(hrefs []string) {
	if slices.EqualFunc(hrefs, m.links, func(h string, l address.Link) bool { return h == l.Href }) {
		return
	}
	m.links = make([]address.Link, len(hrefs))
	rows := make([]table.Row, len(hrefs))
	for i, h := range hrefs {
		l := address.ClassifyLink(h)
		m.links[i] = l
		rows[i] = table.Row{strconv.Itoa(i + 1), l.Kind.String(), h}
	}
	m.table.SetRows(rows)
	m.table.SetCursor(0)
}

// Len returns the number of links listed.
func (m *Model) Len() int { return len(m.links) }

// SetSize updates the view dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.table.SetWidth(w)
	m.table.SetHeight(h)

	cols := m.table.Columns()
	if len(cols) == 3 {
		cols[2].Width = max(w-3-8-6, 10)
		m.table.SetColumns(cols)
	}
}

// Selected returns the selected link target.
func (m *Model) Selected() (string, bool) {
	idx := m.table.Cursor()
	if idx >= 0 && idx < len(m.links) {
		return m.links[idx].Href, true
	}
	return "", false
}

// Focus sets focus on the links table.
func (m *Model) Focus() {
	m.focused = true
	m.table.Focus()
}

// Blur removes focus from the links table.
func (m *Model) Blur() {
	m.focused = false
	m.table.Blur()
}

// Update handles messages for the links view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the links view.
func (m Model) View() string {
	if len(m.links) == 0 {
		return ui.StyleDim.Render("(no links on this page)")
	}
	return m.table.View()
}
