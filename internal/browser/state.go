// Package browser holds the navigation state machine: what page is shown,
// what is loading, the history and the connection status as the user sees
// it. A State is owned by the UI goroutine and never blocks; requests leave
// through a Dispatcher and session events arrive through an Inbox drained
// once per frame by Tick.
package browser

import (
	"time"

	"go.uber.org/zap"

	"github.com/olivoil/nymview/internal/backend"
)

// PageTimeout is how long a page load may take before it is failed.
const PageTimeout = 30 * time.Second

// Dispatcher queues a request for the network without blocking.
type Dispatcher interface {
	Dispatch(req backend.NavigationRequest) (uint64, error)
}

// Inbox hands over the session events received since the last call.
type Inbox interface {
	Drain() []backend.SessionEvent
}

// State is the browser's navigation state.
type State struct {
	addressBar string
	server     string
	client     string
	content    string
	kind       backend.ResponseKind

	status      backend.ConnectionStatus
	loading     bool
	pageLoading bool
	loadStarted time.Time
	err         error

	history History
	// abandoned counts loads given up by a timeout or a history move whose
	// responses may still arrive. It is reset by every new request, so late
	// responses are only dropped while nothing is loading.
	abandoned int

	dispatch Dispatcher
	inbox    Inbox
	now      func() time.Time
	log      *zap.Logger
}

// Option configures a State.
type Option func(*State)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *State) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *State) { s.log = log }
}

// New creates the state for a fresh session: nothing loaded, connecting.
func New(dispatch Dispatcher, inbox Inbox, opts ...Option) *State {
	s := &State{
		dispatch: dispatch,
		inbox:    inbox,
		loading:  true,
		status:   backend.ConnectionStatus{State: backend.Connecting},
		now:      time.Now,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddressBar returns the committed address bar text (the page part).
func (s *State) AddressBar() string { return s.addressBar }

// Server returns the address of the server pages are requested from.
func (s *State) Server() string { return s.server }

// ClientAddress returns our own mixnet address, empty until connected.
func (s *State) ClientAddress() string { return s.client }

// Content returns the displayed page content.
func (s *State) Content() string { return s.content }

// Page returns the displayed content with the kind it was decoded as.
func (s *State) Page() backend.Response {
	return backend.Response{Kind: s.kind, Body: s.content}
}

// Status returns the connection status.
func (s *State) Status() backend.ConnectionStatus { return s.status }

// Loading reports whether the session is still connecting.
func (s *State) Loading() bool { return s.loading }

// PageLoading reports whether a page request is outstanding.
func (s *State) PageLoading() bool { return s.pageLoading }

// LoadStarted returns when the outstanding page request was sent.
func (s *State) LoadStarted() time.Time { return s.loadStarted }

// Err returns the error shown to the user, or nil.
func (s *State) Err() error { return s.err }

// History returns the visited pages, oldest first, and the cursor.
func (s *State) History() ([]Entry, int) {
	return s.history.Entries(), s.history.Cursor()
}

// URL returns the current address as a nym:// URL.
func (s *State) URL() string {
	if s.server == "" && s.addressBar == "" {
		return ""
	}
	return (Entry{Server: s.server, Page: s.addressBar}).URL()
}

// CanNavigate reports whether the UI should accept a new navigation.
func (s *State) CanNavigate() bool { return !s.loading && !s.pageLoading }

// CanGoBack reports whether GoBack would move.
func (s *State) CanGoBack() bool { return s.history.CanBack() }

// CanGoForward reports whether GoForward would move.
func (s *State) CanGoForward() bool { return s.history.CanForward() }

// Tick runs once per frame. It applies every queued session event in arrival
// order, then fails a page load that is still waiting after PageTimeout. A
// response queued before the frame therefore wins over the timeout. It
// returns the number of events applied.
func (s *State) Tick(now time.Time) int {
	events := s.inbox.Drain()
	for _, ev := range events {
		s.apply(ev)
	}

	if s.pageLoading && now.Sub(s.loadStarted) > PageTimeout {
		s.log.Warn("page load timed out",
			zap.String("server", s.server),
			zap.String("page", s.addressBar),
			zap.Duration("waited", now.Sub(s.loadStarted)))
		s.err = ErrTimeout
		s.stopLoading()
		s.abandoned++
	}
	return len(events)
}

func (s *State) apply(ev backend.SessionEvent) {
	switch ev := ev.(type) {
	case backend.StatusChanged:
		if s.status.State == backend.Connected && ev.Status.State != backend.Connected {
			return
		}
		s.status = ev.Status
		s.loading = ev.Status.State == backend.Connecting
		if s.client == "" && ev.LocalAddress != "" {
			s.client = ev.LocalAddress
		}

	case backend.ContentReceived:
		if !s.pageLoading && s.abandoned > 0 {
			s.abandoned--
			s.log.Info("dropping late response", zap.Int("bytes", len(ev.Raw)))
			return
		}
		resp := backend.DecodeResponse(ev.Raw)
		s.content = resp.Body
		s.kind = resp.Kind
		s.history.SetResponse(resp)
		s.stopLoading()
		s.err = nil
	}
}

func (s *State) stopLoading() {
	s.pageLoading = false
	s.loadStarted = time.Time{}
}
