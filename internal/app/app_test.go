package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/olivoil/nymview/internal/backend"
	"github.com/olivoil/nymview/internal/browser"
	"github.com/olivoil/nymview/internal/config"
	"github.com/olivoil/nymview/internal/ui"
)

const (
	server = "srv.key@gateway"
	local  = "me.key@gateway"
)

type fakeSession struct {
	inits int
	inbox *backend.Queue[backend.SessionEvent]
}

func (f *fakeSession) Init() {
	f.inits++
	if f.inits == 1 {
		_ = f.inbox.Push(backend.StatusChanged{Status: backend.ConnectionStatus{State: backend.Connecting}})
	}
}

type fakeDispatcher struct {
	reqs []backend.NavigationRequest
}

func (f *fakeDispatcher) Dispatch(req backend.NavigationRequest) (uint64, error) {
	f.reqs = append(f.reqs, req)
	return uint64(len(f.reqs)), nil
}

type harness struct {
	t       *testing.T
	m       model
	session *fakeSession
	disp    *fakeDispatcher
	inbox   *backend.Queue[backend.SessionEvent]
	now     time.Time
}

func newHarness(t *testing.T, cfg *config.Config) *harness {
	t.Helper()
	t.Cleanup(func() { ui.Apply(ui.LoadTheme(config.ThemeConfig{})) })

	h := &harness{
		t:     t,
		disp:  &fakeDispatcher{},
		inbox: backend.NewQueue[backend.SessionEvent](),
		now:   time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC),
	}
	h.session = &fakeSession{inbox: h.inbox}
	log := zaptest.NewLogger(t)
	state := browser.New(h.disp, h.inbox,
		browser.WithClock(func() time.Time { return h.now }),
		browser.WithLogger(log))
	h.m = newModel(cfg, h.session, state, log)
	h.m.now = func() time.Time { return h.now }
	h.update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return h
}

func (h *harness) update(msg tea.Msg) tea.Cmd {
	h.t.Helper()
	next, cmd := h.m.Update(msg)
	h.m = next.(model)
	return cmd
}

func (h *harness) frame() {
	h.t.Helper()
	h.update(FrameMsg{Time: h.now})
}

func (h *harness) connect() {
	h.t.Helper()
	h.frame()
	_ = h.inbox.Push(backend.StatusChanged{
		Status:       backend.ConnectionStatus{State: backend.Connected},
		LocalAddress: local,
	})
	h.update(backend.EventsReadyMsg{})
}

func (h *harness) respond(body string) {
	h.t.Helper()
	_ = h.inbox.Push(backend.ContentReceived{Raw: "OK\n" + body})
	h.update(backend.EventsReadyMsg{})
}

func (h *harness) key(s string) tea.Cmd {
	h.t.Helper()
	var msg tea.KeyPressMsg
	switch s {
	case "enter":
		msg = tea.KeyPressMsg{Code: tea.KeyEnter}
	case "tab":
		msg = tea.KeyPressMsg{Code: tea.KeyTab}
	case "esc":
		msg = tea.KeyPressMsg{Code: tea.KeyEscape}
	case "ctrl+c":
		msg = tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl}
	default:
		msg = tea.KeyPressMsg{Code: []rune(s)[0], Text: s}
	}
	return h.update(msg)
}

func (h *harness) typeText(s string) {
	h.t.Helper()
	for _, r := range s {
		h.update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

// submit types text over the address bar and feeds the address bar's
// command result back, as the program would.
func (h *harness) submit(text string) {
	h.t.Helper()
	h.key("/")
	h.update(tea.KeyPressMsg{Code: 'u', Mod: tea.ModCtrl})
	h.typeText(text)
	cmd := h.key("enter")
	require.NotNil(h.t, cmd)
	h.update(cmd())
}

func TestFirstFrameStartsSession(t *testing.T) {
	h := newHarness(t, nil)
	assert.Zero(t, h.session.inits)

	h.frame()
	h.frame()
	assert.Equal(t, 2, h.session.inits)
	assert.True(t, h.m.state.Loading())
	assert.Contains(t, h.m.renderStatusLine(), "Connecting to Mixnet")
}

func TestConnectedShowsAddress(t *testing.T) {
	h := newHarness(t, nil)
	h.connect()

	assert.Equal(t, local, h.m.state.ClientAddress())
	assert.Contains(t, h.m.renderHeader(), "Connected")
	assert.Contains(t, h.m.renderHeader(), local)
}

func TestHomeOpensOnceConnected(t *testing.T) {
	cfg := config.Default()
	cfg.Browser.Home = "nym://" + server + "/index"
	h := newHarness(t, cfg)

	h.frame()
	assert.Empty(t, h.disp.reqs, "not connected yet")

	h.connect()
	require.Len(t, h.disp.reqs, 1)
	assert.Equal(t, "GET /index FROM "+local, h.disp.reqs[0].Line)

	h.frame()
	assert.Len(t, h.disp.reqs, 1, "home is opened only once")
}

func TestSubmitAddressNavigates(t *testing.T) {
	h := newHarness(t, nil)
	h.connect()

	h.submit("nym://" + server + "/about")
	require.Len(t, h.disp.reqs, 1)
	assert.Equal(t, server, h.disp.reqs[0].Recipient)
	assert.True(t, h.m.state.PageLoading())
	assert.Contains(t, h.m.renderStatusLine(), "Loading via Mixnet")

	h.respond("# About\n\nsee nym://team")
	assert.Equal(t, "# About\n\nsee nym://team", h.m.state.Content())
	assert.Equal(t, 1, h.m.linksView.Len())
	assert.Equal(t, "nym://"+server+"/about", h.m.addressBar.Value())
}

func TestSubmitRefusedWhileConnecting(t *testing.T) {
	h := newHarness(t, nil)
	h.frame()

	h.submit("nym://" + server + "/")
	assert.Empty(t, h.disp.reqs)
	assert.Contains(t, h.m.renderStatusLine(), "Still connecting")
}

func TestSubmitRefusedWhilePageLoads(t *testing.T) {
	h := newHarness(t, nil)
	h.connect()
	h.submit("nym://" + server + "/a")

	h.submit("b")
	assert.Len(t, h.disp.reqs, 1)
	assert.Contains(t, h.m.renderStatusLine(), "still loading")
}

func TestBackAndForwardKeys(t *testing.T) {
	h := newHarness(t, nil)
	h.connect()
	h.submit("nym://" + server + "/a")
	h.respond("page A")
	h.submit("b")
	h.respond("page B")

	h.key("b")
	assert.Equal(t, "page A", h.m.state.Content())
	assert.Equal(t, "nym://"+server+"/a", h.m.addressBar.Value())

	h.key("f")
	assert.Equal(t, "page B", h.m.state.Content())
	assert.Len(t, h.disp.reqs, 2)
}

func TestReloadKey(t *testing.T) {
	h := newHarness(t, nil)
	h.connect()
	h.submit("nym://" + server + "/news")
	h.respond("old")

	h.key("r")
	require.Len(t, h.disp.reqs, 2)
	assert.Equal(t, "GET /news FROM "+local, h.disp.reqs[1].Line)
}

func TestClickFollowsFirstLinkNextFrame(t *testing.T) {
	h := newHarness(t, nil)
	h.connect()
	h.submit("nym://" + server + "/")
	h.respond("go to nym://first or nym://second")

	h.update(tea.MouseClickMsg{X: 5, Y: h.m.pageTop + 1, Button: tea.MouseLeft})
	assert.Len(t, h.disp.reqs, 1, "the click is applied on the next frame")

	h.frame()
	require.Len(t, h.disp.reqs, 2)
	assert.Equal(t, "GET /first FROM "+local, h.disp.reqs[1].Line)
}

func TestClickOutsidePageIsIgnored(t *testing.T) {
	h := newHarness(t, nil)
	h.connect()
	h.submit("nym://" + server + "/")
	h.respond("go to nym://first")

	h.update(tea.MouseClickMsg{X: 5, Y: 0, Button: tea.MouseLeft})
	h.frame()
	assert.Len(t, h.disp.reqs, 1)
}

func TestLinksPanelFollowsSelection(t *testing.T) {
	h := newHarness(t, nil)
	h.connect()
	h.submit("nym://" + server + "/")
	h.respond("nym://one and https://example.com")

	h.key("tab")
	require.Equal(t, panelLinks, h.m.focus)
	h.key("enter")
	require.Len(t, h.disp.reqs, 2)
	assert.Equal(t, "GET /one FROM "+local, h.disp.reqs[1].Line)
}

func TestUnsupportedLinkShowsError(t *testing.T) {
	h := newHarness(t, nil)
	h.connect()
	h.submit("nym://" + server + "/")
	h.respond("see https://example.com")

	h.m.follow("https://example.com")
	assert.Len(t, h.disp.reqs, 1)
	assert.Contains(t, h.m.renderStatusLine(), "External web links not supported")
}

func TestHistoryPanelJumps(t *testing.T) {
	h := newHarness(t, nil)
	h.connect()
	h.submit("nym://" + server + "/a")
	h.respond("A")
	h.submit("b")
	h.respond("B")

	h.key("tab")
	h.key("tab")
	require.Equal(t, panelHistory, h.m.focus)
	h.update(tea.KeyPressMsg{Code: tea.KeyDown})
	h.key("enter")
	assert.Equal(t, "A", h.m.state.Content())

	h.key("esc")
	assert.Equal(t, panelPage, h.m.focus)
}

func TestQuit(t *testing.T) {
	h := newHarness(t, nil)
	cmd := h.key("q")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestHelpOverlay(t *testing.T) {
	h := newHarness(t, nil)
	h.key("?")
	assert.True(t, h.m.showHelp)
	assert.Nil(t, h.key("q"), "q closes help instead of quitting")
	assert.False(t, h.m.showHelp)
}

func TestConfigReloadAppliesTheme(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[theme]\naccent = \"#112233\"\n[browser]\nhome = \"nym://h.k@g/\"\n"), 0o644))

	h := newHarness(t, nil)
	h.update(backend.ConfigChangedMsg{Path: path})

	assert.Equal(t, "#112233", ui.T.Accent)
	assert.Equal(t, "nym://h.k@g/", h.m.cfg.Browser.Home)
	assert.Contains(t, h.m.renderStatusLine(), "Config reloaded")
}

func TestBrokenConfigIsReported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[theme\n"), 0o644))

	h := newHarness(t, nil)
	h.update(backend.ConfigChangedMsg{Path: path})
	assert.Contains(t, h.m.renderStatusLine(), "Config not reloaded")
}

func TestViewRenders(t *testing.T) {
	h := newHarness(t, nil)
	h.connect()
	v := h.m.View()
	assert.True(t, v.AltScreen)
	assert.Equal(t, tea.MouseModeCellMotion, v.MouseMode)
}

func TestPanelsAreBoxed(t *testing.T) {
	h := newHarness(t, nil)
	h.connect()
	require.True(t, h.m.showPanels())

	panels := h.m.renderPanels()
	assert.Contains(t, panels, "╭")
	assert.Contains(t, panels, "Links (0)")
	assert.Contains(t, panels, "History")
}

func TestShortAddress(t *testing.T) {
	assert.Equal(t, "abc", shortAddress("abc"))
	assert.Equal(t, "0123456789…qrstuvwxyz", shortAddress("0123456789abcdefghijklmnopqrstuvwxyz"))
}
