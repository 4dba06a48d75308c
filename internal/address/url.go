// Package address parses nym:// addresses and classifies link targets.
// Everything here is pure; no function keeps state between calls.
package address

import "strings"

// Scheme is the prefix of every mixnet page address.
const Scheme = "nym://"

// ParseNymURL splits a nym:// URL into server and path.
// The server is everything up to the first "/" after the scheme; the path is
// the remainder after that slash and may be empty. ok is false when url does
// not start with the scheme.
func ParseNymURL(url string) (server, path string, ok bool) {
	rest, found := strings.CutPrefix(url, Scheme)
	if !found {
		return "", "", false
	}
	server, path, _ = strings.Cut(rest, "/")
	return server, path, true
}

// RequestPath turns the page text shown in the address bar into the path sent
// on the wire. Empty text is the root page; a missing leading slash is added.
func RequestPath(page string) string {
	page = strings.TrimSpace(page)
	if page == "" {
		return "/"
	}
	if !strings.HasPrefix(page, "/") {
		return "/" + page
	}
	return page
}

// FormatURL renders server and page back into a nym:// URL for display.
func FormatURL(server, page string) string {
	if server == "" {
		return page
	}
	return Scheme + server + "/" + strings.TrimPrefix(page, "/")
}
