package app

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/olivoil/nymview/internal/ui"
)

const (
	headerLines = 2
	// panelLines is the height of the links and history row, borders and
	// title included.
	panelLines = 8
	// minHeightForPanels hides the links and history row on short terminals.
	minHeightForPanels = 24
)

func (m model) View() tea.View {
	var v tea.View
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	v.WindowTitle = AppName
	if url := m.state.URL(); url != "" {
		v.WindowTitle = AppName + " - " + url
	}

	if !m.ready {
		v.SetContent("Loading...")
		return v
	}

	// Help overlay.
	if m.showHelp {
		v.SetContent(m.renderHelpOverlay())
		return v
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteByte('\n')

	b.WriteString(m.addressBar.View())
	b.WriteByte('\n')
	if menu := m.addressBar.ViewMenu(); menu != "" {
		b.WriteString(menu)
		b.WriteByte('\n')
	}

	b.WriteString(m.renderStatusLine())
	b.WriteByte('\n')

	page := lipgloss.NewStyle().Height(m.pageHeight).MaxHeight(m.pageHeight).Render(m.pageView.View())
	b.WriteString(page)
	b.WriteByte('\n')

	if m.showPanels() {
		b.WriteString(m.renderPanels())
		b.WriteByte('\n')
	}

	b.WriteString(m.renderHelpLine())

	v.SetContent(b.String())
	return v
}

func (m *model) showPanels() bool {
	return m.height >= minHeightForPanels
}

// layoutViews sizes every view from the window size. The address bar menu
// takes lines from the page, so it runs again whenever the menu changes.
func (m *model) layoutViews() {
	menu := m.addressBar.MenuHeight()
	panels := 0
	if m.showPanels() {
		panels = panelLines
	}

	m.pageTop = headerLines + 1 + menu + 1
	m.pageHeight = max(m.height-m.pageTop-panels-1, 3)

	m.addressBar.SetSize(m.width)
	m.pageView.SetSize(m.width, m.pageHeight)

	half := m.width / 2
	frame := ui.StylePanel.GetHorizontalFrameSize()
	m.linksView.SetSize(half-frame, panelLines-3)
	m.historyView.SetSize(m.width-half-frame, panelLines-3)
}

func (m *model) renderHeader() string {
	title := ui.StyleHeader.Render(fmt.Sprintf(" %s ", AppName))

	status := m.state.Status()
	statusStr := ui.StatusIcon(status.State) + " " + ui.StatusStyle(status.State).Render(status.String())

	sep := ui.StyleDim.Render("   ")
	parts := []string{title, sep, statusStr}
	if addr := m.state.ClientAddress(); addr != "" {
		parts = append(parts, sep, ui.StyleDim.Render("you: ")+shortAddress(addr))
	}
	if entries, cursor := m.state.History(); len(entries) > 0 {
		parts = append(parts, sep, ui.StyleDim.Render(fmt.Sprintf("page %d/%d", cursor+1, len(entries))))
	}
	header := lipgloss.JoinHorizontal(lipgloss.Center, parts...)

	bar := strings.Repeat("━", max(m.width, 0))
	return header + "\n" + ui.StyleDim.Render(bar)
}

func (m *model) renderStatusLine() string {
	switch {
	case m.state.Err() != nil:
		return ui.StyleError.Render(" " + m.state.Err().Error())
	case m.notice != "":
		return ui.StyleWarn.Render(" " + m.notice)
	case m.state.PageLoading():
		elapsed := m.now().Sub(m.state.LoadStarted())
		return " " + m.spinner.View() + ui.StyleAccent.Render(" Loading via Mixnet... ") +
			ui.StyleDim.Render(ui.FormatElapsed(elapsed))
	case m.state.Loading():
		return " " + m.spinner.View() + ui.StyleWarn.Render(" Connecting to Mixnet...")
	}
	return ""
}

func (m *model) renderPanels() string {
	half := m.width / 2

	linksTitle := m.panelTitle(fmt.Sprintf("Links (%d)", m.linksView.Len()), panelLinks)
	historyTitle := m.panelTitle("History", panelHistory)

	left := m.panelBox(panelLinks, half).Render(linksTitle + "\n" + m.linksView.View())
	right := m.panelBox(panelHistory, m.width-half).Render(historyTitle + "\n" + m.historyView.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

// panelBox is the bordered box of a panel, highlighted when focused.
func (m *model) panelBox(p panel, width int) lipgloss.Style {
	st := ui.StylePanel
	if m.focus == p {
		st = ui.StylePanelFocused
	}
	return st.Width(width - st.GetHorizontalBorderSize()).Height(panelLines - st.GetVerticalBorderSize())
}

func (m *model) panelTitle(title string, p panel) string {
	if m.focus == p {
		return ui.StyleAccent.Bold(true).Render("▍" + title)
	}
	return ui.StyleDim.Render(" " + title)
}

func (m *model) renderHelpLine() string {
	var parts []string
	switch {
	case m.addressBar.Focused():
		parts = []string{"enter go", "↑↓ history", "tab complete", "esc cancel"}
	case m.focus == panelLinks:
		parts = []string{"↑↓ select", "enter follow", "tab next panel", "esc page", "q quit"}
	case m.focus == panelHistory:
		parts = []string{"↑↓ select", "enter jump", "tab next panel", "esc page", "q quit"}
	default:
		parts = []string{"/ address", "b back", "f forward", "r reload", "tab links", "? help", "q quit"}
	}
	return ui.StyleDim.Render(" " + strings.Join(parts, "  │  "))
}

func (m *model) renderHelpOverlay() string {
	title := ui.StyleHeader.Render(fmt.Sprintf(" %s help ", AppName))
	help := `
  Address
    /, ctrl+l       Edit the address
    enter           Go (nym://server/page, or a page on this server)
    ↑/↓, tab        Pick a visited address
    esc             Cancel

  Navigation
    b, alt+←        Back
    f, alt+→        Forward
    r, ctrl+r       Reload
    h               Home page
    click           Follow the first link on the page

  Panels
    tab             Page → links → history
    ↑/↓, j/k        Scroll or select
    enter           Follow link / jump to history entry
    esc             Back to the page

  Other
    ?               Toggle this help
    q, ctrl+c       Quit
`
	if m.configPath != "" {
		help += "\n  " + ui.StyleDim.Render("Config: "+m.configPath) + "\n"
	}
	help += "\n  " + ui.StyleDim.Render("Press ? to close")
	return title + "\n" + help
}

// shortAddress keeps both ends of a long mixnet address.
func shortAddress(addr string) string {
	if len(addr) <= 24 {
		return addr
	}
	return addr[:10] + "…" + addr[len(addr)-10:]
}
