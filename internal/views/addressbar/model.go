// Package addressbar is the address input with completion from visited pages.
package addressbar

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/olivoil/nymview/internal/ui"
)

const maxShown = 8

// SubmitMsg is sent when the user presses enter on a non-empty address.
type SubmitMsg struct {
	Text string
}

// CancelMsg is sent when the user leaves the address bar with esc.
type CancelMsg struct{}

// Model is the address line + completion menu.
type Model struct {
	input     textinput.Model
	completer *Completer
	focused   bool
	width     int

	// Inline completion menu.
	candidates []Candidate
	selected   int // index into candidates, -1 = none
}

// New creates a new address bar model.
func New() Model {
	ti := textinput.New()
	ti.Prompt = "nym> "
	ti.Placeholder = "nym://server/page"
	ti.CharLimit = 512

	return Model{
		input:     ti,
		completer: NewCompleter(),
		selected:  -1,
	}
}

// SetSize updates dimensions.
func (m *Model) SetSize(w int) {
	m.width = w
	m.input.SetWidth(w - 8)
}

// SetVisited updates completion from the visited URLs.
func (m *Model) SetVisited(urls []string) {
	m.completer.SetVisited(urls)
}

// SetValue replaces the text unless the user is editing it.
func (m *Model) SetValue(s string) {
	if m.focused {
		return
	}
	m.input.SetValue(s)
}

// Value returns the current text.
func (m Model) Value() string {
	return m.input.Value()
}

// Focus activates the input with the whole address ready to edit.
func (m *Model) Focus() tea.Cmd {
	m.focused = true
	m.input.CursorEnd()
	m.updateCandidates()
	return m.input.Focus()
}

// Blur deactivates the input.
func (m *Model) Blur() {
	m.focused = false
	m.candidates = nil
	m.selected = -1
	m.input.Blur()
}

// Focused returns whether the address bar has focus.
func (m *Model) Focused() bool {
	return m.focused
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	if keyMsg, ok := msg.(tea.KeyPressMsg); ok {
		key := keyMsg.String()

		// Navigate completion menu.
		if len(m.candidates) > 0 {
			switch key {
			case "down":
				m.selected++
				if m.selected >= len(m.shown()) {
					m.selected = 0
				}
				return m, nil
			case "up":
				m.selected--
				if m.selected < 0 {
					m.selected = len(m.shown()) - 1
				}
				return m, nil
			case "tab":
				idx := max(m.selected, 0)
				m.accept(idx)
				m.updateCandidates()
				return m, nil
			}
		}

		switch key {
		case "enter":
			if m.selected >= 0 && m.selected < len(m.candidates) {
				m.accept(m.selected)
			}
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.Blur()
			return m, func() tea.Msg { return SubmitMsg{Text: text} }

		case "esc":
			m.Blur()
			return m, func() tea.Msg { return CancelMsg{} }
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.updateCandidates()
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) accept(idx int) {
	if idx < 0 || idx >= len(m.candidates) {
		return
	}
	m.input.SetValue(m.candidates[idx].Value)
	m.input.CursorEnd()
	m.selected = -1
}

func (m *Model) updateCandidates() {
	m.candidates = m.completer.Complete(m.input.Value())
	m.selected = -1
}

func (m Model) shown() []Candidate {
	if len(m.candidates) > maxShown {
		return m.candidates[:maxShown]
	}
	return m.candidates
}

// MenuHeight returns the number of lines the completion menu occupies,
// including its border.
func (m Model) MenuHeight() int {
	if !m.focused || len(m.candidates) == 0 {
		return 0
	}
	return len(m.shown()) + 2
}

// View renders the input line.
func (m Model) View() string {
	return m.input.View()
}

// ViewMenu renders the completion menu, or nothing.
func (m Model) ViewMenu() string {
	if m.MenuHeight() == 0 {
		return ""
	}

	shown := m.shown()
	maxValue := 0
	for _, c := range shown {
		maxValue = max(maxValue, lipgloss.Width(c.Value))
	}

	menuPanel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorBorder).
		PaddingLeft(1).
		PaddingRight(1)
	normal := lipgloss.NewStyle().Foreground(ui.ColorWhite)

	var rows strings.Builder
	for i, c := range shown {
		if i > 0 {
			rows.WriteByte('\n')
		}
		value := fmt.Sprintf("%-*s", maxValue, c.Value)
		desc := ""
		if c.Desc != "" {
			desc = "  " + c.Desc
		}
		if i == m.selected {
			rows.WriteString(ui.StyleSelected.Bold(true).Render(value + desc))
		} else {
			rows.WriteString(normal.Render(value))
			rows.WriteString(ui.StyleDim.Render(desc))
		}
	}

	return menuPanel.Width(max(m.width-4, 40)).Render(rows.String())
}
