package addressbar

import (
	"slices"
	"strings"

	"github.com/olivoil/nymview/internal/address"
)

// Candidate is a completion option with a description.
type Candidate struct {
	Value string // the text to insert
	Desc  string // short description
}

// Completer suggests previously visited addresses.
type Completer struct {
	visited []string
}

// NewCompleter creates a completer.
func NewCompleter() *Completer {
	return &Completer{}
}

// SetVisited replaces the visited URLs, most recent last. Duplicates are
// collapsed onto their latest visit.
func (c *Completer) SetVisited(urls []string) {
	c.visited = c.visited[:0]
	seen := make(map[string]bool, len(urls))
	for _, u := range slices.Backward(urls) {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		c.visited = append(c.visited, u)
	}
}

// Complete returns visited addresses matching input, most recent first. A
// bare page name also matches the path part of a visited URL.
func (c *Completer) Complete(input string) []Candidate {
	input = strings.TrimSpace(input)
	var result []Candidate
	for _, u := range c.visited {
		if u == input {
			continue
		}
		if input == "" || strings.HasPrefix(u, input) || matchesPath(u, input) {
			result = append(result, Candidate{Value: u, Desc: describe(u)})
		}
	}
	return result
}

func matchesPath(url, input string) bool {
	_, path, ok := address.ParseNymURL(url)
	return ok && strings.HasPrefix(path, strings.TrimPrefix(input, "/"))
}

func describe(url string) string {
	server, _, ok := address.ParseNymURL(url)
	if !ok {
		return ""
	}
	if address.IsPeerAddress(server) && len(server) > 12 {
		return "peer " + server[:12] + "…"
	}
	return "peer " + server
}
