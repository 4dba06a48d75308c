package app

import (
	"errors"
	"time"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/olivoil/nymview/internal/address"
	"github.com/olivoil/nymview/internal/backend"
	"github.com/olivoil/nymview/internal/browser"
	"github.com/olivoil/nymview/internal/config"
	"github.com/olivoil/nymview/internal/ui"
	"github.com/olivoil/nymview/internal/views/addressbar"
	"github.com/olivoil/nymview/internal/views/history"
	"github.com/olivoil/nymview/internal/views/links"
	"github.com/olivoil/nymview/internal/views/page"
)

// AppName is shown in the header and window title.
const AppName = "NymView"

// Session is the part of the session manager the UI drives.
type Session interface {
	Init()
}

// Options configures Run.
type Options struct {
	Config     *config.Config
	ConfigPath string
	// StartURL is opened once connected, instead of the configured home.
	StartURL string
	Manager  *backend.Manager
	Log      *zap.Logger
}

// Run starts the TUI application and blocks until it exits.
func Run(opts Options) error {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	mgr := opts.Manager
	state := browser.New(mgr.Requests(), mgr.Inbox(), browser.WithLogger(log.Named("browser")))

	m := newModel(opts.Config, mgr, state, log)
	m.configPath = opts.ConfigPath
	if opts.StartURL != "" {
		m.startURL = opts.StartURL
	}

	p := tea.NewProgram(m)
	mgr.SetSender(p)
	defer mgr.Close()

	if opts.ConfigPath != "" {
		w, err := backend.NewWatcher(opts.ConfigPath, p, log.Named("watcher"))
		if err != nil {
			log.Warn("config watcher disabled", zap.Error(err))
		} else {
			defer w.Close()
		}
	}

	_, err := p.Run()
	return err
}

// panel identifies which panel has keyboard focus.
type panel int

const (
	panelPage panel = iota
	panelLinks
	panelHistory
	panelCount
)

// model is the root application model. It owns the browser state; every
// read and write of it happens in Update.
type model struct {
	width    int
	height   int
	ready    bool
	showHelp bool
	focus    panel
	keys     KeyMap

	cfg        *config.Config
	configPath string
	log        *zap.Logger

	session Session
	state   *browser.State
	now     func() time.Time

	// startURL is submitted once the client is connected.
	startURL string
	// pendingClick is a link chosen by a mouse click, followed at the start
	// of the next frame.
	pendingClick string
	// notice is a transient message for refused actions.
	notice string

	pageTop    int
	pageHeight int

	spinner     spinner.Model
	addressBar  addressbar.Model
	pageView    page.Model
	linksView   links.Model
	historyView history.Model
}

func newModel(cfg *config.Config, session Session, state *browser.State, log *zap.Logger) model {
	if cfg == nil {
		cfg = config.Default()
	}
	ui.Apply(ui.LoadTheme(cfg.Theme))
	return model{
		keys:        DefaultKeyMap(),
		cfg:         cfg,
		log:         log,
		session:     session,
		state:       state,
		now:         time.Now,
		startURL:    cfg.Browser.Home,
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		addressBar:  addressbar.New(),
		pageView:    page.New(),
		linksView:   links.New(),
		historyView: history.New(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.tickFrame(),
		m.spinner.Tick,
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layoutViews()
		return m, nil

	case FrameMsg:
		m.onFrame(msg.Time)
		return m, m.tickFrame()

	case backend.EventsReadyMsg:
		m.onFrame(m.now())
		return m, nil

	case backend.ConfigChangedMsg:
		m.reloadConfig(msg.Path)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case addressbar.SubmitMsg:
		m.submit(msg.Text)
		m.layoutViews()
		return m, nil

	case addressbar.CancelMsg:
		m.addressBar.SetValue(m.state.URL())
		m.layoutViews()
		return m, nil

	case tea.MouseClickMsg:
		m.handleClick(msg.Mouse())
		return m, nil

	case tea.KeyPressMsg:
		// If the address bar has focus, let it handle keys first.
		if m.addressBar.Focused() {
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			var cmd tea.Cmd
			m.addressBar, cmd = m.addressBar.Update(msg)
			m.layoutViews()
			return m, cmd
		}
		return m.handleKey(msg)
	}

	return m.updateActiveView(msg)
}

// onFrame is the per-frame step: start the session, apply a pending click,
// drain session events into the state, then redraw from it.
func (m *model) onFrame(now time.Time) {
	m.session.Init()

	if href := m.pendingClick; href != "" {
		m.pendingClick = ""
		m.follow(href)
	}

	if n := m.state.Tick(now); n > 0 {
		m.log.Debug("applied session events", zap.Int("count", n))
	}

	if m.startURL != "" && m.state.ClientAddress() != "" && m.state.CanNavigate() {
		url := m.startURL
		m.startURL = ""
		m.submit(url)
	}

	m.syncViews()
}

// syncViews copies the browser state into the views.
func (m *model) syncViews() {
	m.addressBar.SetValue(m.state.URL())

	page := m.state.Page()
	m.pageView.SetPage(page)
	m.linksView.SetLinks(address.ExtractLinks(page.Body))

	entries, cursor := m.state.History()
	m.historyView.SetEntries(entries, cursor)
	urls := make([]string, len(entries))
	for i, e := range entries {
		urls[i] = e.URL()
	}
	m.addressBar.SetVisited(urls)
}

func (m model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		switch msg.String() {
		case "?", "esc", "q":
			m.showHelp = false
		case "ctrl+c":
			return m, tea.Quit
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Address):
		m.notice = ""
		cmd := m.addressBar.Focus()
		m.layoutViews()
		return m, cmd

	case key.Matches(msg, m.keys.Tab):
		m.setFocus((m.focus + 1) % panelCount)
		return m, nil

	case key.Matches(msg, m.keys.Back):
		m.notice = ""
		if m.state.GoBack() {
			m.syncViews()
		}
		return m, nil

	case key.Matches(msg, m.keys.Forward):
		m.notice = ""
		if m.state.GoForward() {
			m.syncViews()
		}
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		if m.canNavigate() {
			m.report(m.state.Reload())
		}
		return m, nil

	case key.Matches(msg, m.keys.Home):
		if home := m.cfg.Browser.Home; home != "" {
			m.submit(home)
		} else {
			m.notice = "No home page configured"
		}
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		return m.handleEnter()

	case msg.String() == "esc":
		m.setFocus(panelPage)
		return m, nil
	}

	return m.updateActiveView(msg)
}

func (m model) handleEnter() (tea.Model, tea.Cmd) {
	switch m.focus {
	case panelLinks:
		if href, ok := m.linksView.Selected(); ok {
			m.follow(href)
		}
	case panelHistory:
		if i, ok := m.historyView.Selected(); ok {
			if m.state.GoTo(i) {
				m.syncViews()
			}
		}
	}
	return m, nil
}

func (m *model) handleClick(mouse tea.Mouse) {
	if mouse.Button != tea.MouseLeft {
		return
	}
	if mouse.Y < m.pageTop || mouse.Y >= m.pageTop+m.pageHeight {
		return
	}
	if found := address.ExtractLinks(m.state.Content()); len(found) > 0 {
		m.pendingClick = found[0]
	}
}

func (m model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case panelPage:
		m.pageView, cmd = m.pageView.Update(msg)
	case panelLinks:
		m.linksView, cmd = m.linksView.Update(msg)
	case panelHistory:
		m.historyView, cmd = m.historyView.Update(msg)
	}
	return m, cmd
}

func (m *model) setFocus(p panel) {
	m.focus = p
	m.linksView.Blur()
	m.historyView.Blur()
	switch p {
	case panelLinks:
		m.linksView.Focus()
	case panelHistory:
		m.historyView.Focus()
	}
}

// submit navigates to text typed in the address bar.
func (m *model) submit(text string) {
	if !m.canNavigate() {
		return
	}
	m.report(m.state.SubmitAddress(text))
	m.syncViews()
}

// follow navigates to a link from the page.
func (m *model) follow(href string) {
	if m.state.Loading() {
		m.notice = "Still connecting to the mixnet"
		return
	}
	m.notice = ""
	m.report(m.state.HandleLinkClick(href))
	m.syncViews()
}

// canNavigate reports whether a navigation may start, leaving a notice when
// it may not.
func (m *model) canNavigate() bool {
	m.notice = ""
	switch {
	case m.state.Loading():
		m.notice = "Still connecting to the mixnet"
	case m.state.PageLoading():
		m.notice = "A page is still loading"
	}
	return m.notice == ""
}

// report turns a navigation result into a notice. Errors the user should see
// are already held by the browser state.
func (m *model) report(err error) {
	if errors.Is(err, browser.ErrLoadInProgress) {
		m.notice = "A page is still loading"
	}
}

func (m *model) reloadConfig(path string) {
	cfg, err := config.Load(path)
	if err != nil {
		m.log.Warn("config reload failed", zap.Error(err))
		m.notice = "Config not reloaded: " + err.Error()
		return
	}
	m.cfg.Theme = cfg.Theme
	m.cfg.Browser.Home = cfg.Browser.Home

	ui.Apply(ui.LoadTheme(cfg.Theme))
	m.linksView.RefreshStyles()
	m.historyView.RefreshStyles()
	m.pageView.Refresh()
	m.notice = "Config reloaded"
	m.log.Info("config reloaded", zap.String("path", path))
}

func (m *model) tickFrame() tea.Cmd {
	return tea.Tick(m.cfg.Browser.FrameInterval.Std(), func(t time.Time) tea.Msg {
		return FrameMsg{Time: t}
	})
}
