package browser

import (
	"strings"

	"go.uber.org/zap"

	"github.com/olivoil/nymview/internal/address"
	"github.com/olivoil/nymview/internal/backend"
)

// Navigate requests page from the current server. On success the page is
// loading and a new history entry is committed, replacing any entries ahead
// of the cursor. On failure history is untouched and the error is shown.
func (s *State) Navigate(page string) error {
	if s.pageLoading {
		return ErrLoadInProgress
	}
	return s.navigate(page)
}

// SubmitAddress handles text entered in the address bar. A nym:// URL
// switches to its server; anything else is a page on the current server.
func (s *State) SubmitAddress(text string) error {
	if s.pageLoading {
		return ErrLoadInProgress
	}
	text = strings.TrimSpace(text)
	if server, page, ok := address.ParseNymURL(text); ok {
		return s.navigateServer(strings.TrimSpace(server), page)
	}
	return s.navigate(text)
}

// HandleLinkClick follows a link from page content.
func (s *State) HandleLinkClick(href string) error {
	link := address.ClassifyLink(href)
	if link.Kind == address.UnsupportedScheme {
		s.log.Info("refusing link", zap.String("href", href))
		s.err = ErrUnsupportedScheme
		return ErrUnsupportedScheme
	}
	if s.pageLoading {
		return ErrLoadInProgress
	}

	switch link.Kind {
	case address.ExternalMixAddress:
		return s.navigateServer(link.Server, link.Path)
	default:
		return s.navigate(link.Path)
	}
}

// Reload requests the current page again without a new history entry.
func (s *State) Reload() error {
	if s.pageLoading {
		return ErrLoadInProgress
	}
	s.err = nil
	if err := s.send(s.addressBar); err != nil {
		s.fail(err)
		return err
	}
	return nil
}

// GoBack shows the previous history entry. It never contacts the network.
func (s *State) GoBack() bool { return s.GoTo(s.history.Cursor() - 1) }

// GoForward shows the next history entry. It never contacts the network.
func (s *State) GoForward() bool { return s.GoTo(s.history.Cursor() + 1) }

// GoTo shows history entry i from its snapshot. A pending load is abandoned.
func (s *State) GoTo(i int) bool {
	e, ok := s.history.MoveTo(i)
	if !ok {
		return false
	}
	if s.pageLoading {
		s.abandoned++
	}
	s.server = e.Server
	s.addressBar = e.Page
	s.content = e.Content
	s.kind = e.Kind
	s.err = nil
	s.stopLoading()
	return true
}

func (s *State) navigate(page string) error {
	s.err = nil
	if err := s.send(page); err != nil {
		s.fail(err)
		return err
	}
	s.history.Push(Entry{Server: s.server, Page: page, CreatedAt: s.now()})
	s.addressBar = page
	return nil
}

// navigateServer switches to server and navigates; the previous server is
// restored if the request cannot be sent.
func (s *State) navigateServer(server, page string) error {
	prev := s.server
	s.server = server
	if err := s.navigate(page); err != nil {
		s.server = prev
		return err
	}
	return nil
}

// send checks that a request can be made, dispatches it and starts the
// page load timer.
func (s *State) send(page string) error {
	server := strings.TrimSpace(s.server)
	if server == "" {
		return ErrNoServer
	}
	client := strings.TrimSpace(s.client)
	if client == "" {
		return ErrNotConnected
	}

	path := address.RequestPath(page)
	seq, err := s.dispatch.Dispatch(backend.NewNavigationRequest(server, path, client))
	if err != nil {
		return err
	}
	s.pageLoading = true
	s.loadStarted = s.now()
	s.abandoned = 0
	s.log.Debug("page requested",
		zap.Uint64("seq", seq),
		zap.String("server", server),
		zap.String("path", path))
	return nil
}

func (s *State) fail(err error) {
	s.log.Info("navigation failed", zap.Error(err))
	s.err = err
	s.stopLoading()
}
