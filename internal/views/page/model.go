// Package page renders the current page in a scrollable viewport.
package page

import (
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/glamour"

	"github.com/olivoil/nymview/internal/address"
	"github.com/olivoil/nymview/internal/backend"
	"github.com/olivoil/nymview/internal/ui"
)

// maxCached bounds the render cache. Back and forward usually revisit a
// handful of pages, so a small cache covers them.
const maxCached = 16

const welcome = `# NymView for Nym Mixnet

Welcome! Enter a nym:// address to begin.

## Features
- **Secure** communication via Nym Mixnet
- **Markdown** support
- **Private** navigation

### Example content
- ` + "`nym://server/`" + ` - Homepage
- ` + "`nym://server/about`" + ` - About us
- ` + "`nym://server/help`" + ` - Help

*Press / to enter an address*
`

type cacheKey struct {
	width   int
	content string
}

// Model is the page view.
type Model struct {
	viewport viewport.Model
	width    int
	height   int

	page     backend.Response
	rendered bool

	renderer      *glamour.TermRenderer
	rendererWidth int
	cache         map[cacheKey]string
}

// New creates a new page view model.
func New() Model {
	vp := viewport.New(viewport.WithWidth(80), viewport.WithHeight(24))
	return Model{
		viewport: vp,
		cache:    make(map[cacheKey]string),
	}
}

// SetSize updates the view dimensions and re-renders for the new width.
func (m *Model) SetSize(w, h int) {
	resized := w != m.width
	m.width = w
	m.height = h
	m.viewport.SetWidth(w)
	m.viewport.SetHeight(h)
	if resized && m.rendered {
		m.render()
	}
}

// SetPage shows a decoded response, scrolling to the top when it changed.
// An empty page shows the welcome page.
func (m *Model) SetPage(page backend.Response) {
	if m.rendered && page == m.page {
		return
	}
	m.page = page
	m.rendered = true
	m.render()
	m.viewport.GotoTop()
}

// Refresh drops cached renders, for example after a theme change.
func (m *Model) Refresh() {
	clear(m.cache)
	m.renderer = nil
	if m.rendered {
		m.render()
	}
}

// Update handles scrolling.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the page.
func (m Model) View() string {
	return m.viewport.View()
}

func (m *Model) render() {
	m.viewport.SetContent(m.renderContent(m.page))
}

func (m *Model) renderContent(page backend.Response) string {
	if page.Kind == backend.ResponseError {
		return ui.StyleError.Render(page.Body)
	}
	content := page.Body
	if strings.TrimSpace(content) == "" {
		content = welcome
	} else {
		content = address.NeutralizeLinks(content)
	}

	key := cacheKey{width: m.width, content: content}
	if out, ok := m.cache[key]; ok {
		return out
	}

	out, err := m.markdown(content)
	if err != nil {
		out = content
	}
	if len(m.cache) >= maxCached {
		clear(m.cache)
	}
	m.cache[key] = out
	return out
}

func (m *Model) markdown(content string) (string, error) {
	wrap := m.width - 2
	if wrap < 20 {
		wrap = 20
	}
	if m.renderer == nil || m.rendererWidth != wrap {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(wrap),
		)
		if err != nil {
			return "", err
		}
		m.renderer = r
		m.rendererWidth = wrap
	}
	return m.renderer.Render(content)
}
