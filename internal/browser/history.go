package browser

import (
	"slices"
	"time"

	"github.com/olivoil/nymview/internal/address"
	"github.com/olivoil/nymview/internal/backend"
)

// Entry is one visited page.
type Entry struct {
	Server    string
	Page      string
	Content   string
	Kind      backend.ResponseKind
	CreatedAt time.Time
}

// URL renders the entry as a nym:// address.
func (e Entry) URL() string {
	return address.FormatURL(e.Server, e.Page)
}

func (e Entry) withResponse(resp backend.Response) Entry {
	e.Content = resp.Body
	e.Kind = resp.Kind
	return e
}

// History is a list of visited pages with a cursor. New pages are appended
// after the cursor, dropping any entries that were ahead of it.
type History struct {
	entries []Entry
	cursor  int
}

// Push drops the entries after the cursor, appends e and moves the cursor
// onto it.
func (h *History) Push(e Entry) {
	if len(h.entries) > 0 {
		h.entries = h.entries[:h.cursor+1]
	}
	h.entries = append(h.entries, e)
	h.cursor = len(h.entries) - 1
}

// MoveTo moves the cursor to i and returns the entry there. It reports false
// when i is out of range or already the cursor.
func (h *History) MoveTo(i int) (Entry, bool) {
	if i < 0 || i >= len(h.entries) || i == h.cursor {
		return Entry{}, false
	}
	h.cursor = i
	return h.entries[i], true
}

// SetResponse replaces the entry under the cursor with a copy that carries
// resp as its snapshot.
func (h *History) SetResponse(resp backend.Response) {
	if len(h.entries) == 0 {
		return
	}
	h.entries[h.cursor] = h.entries[h.cursor].withResponse(resp)
}

// Entries returns a copy of all entries, oldest first.
func (h *History) Entries() []Entry { return slices.Clone(h.entries) }

// Len returns the number of entries.
func (h *History) Len() int { return len(h.entries) }

// Cursor returns the current index; 0 when empty.
func (h *History) Cursor() int { return h.cursor }

// CanBack reports whether there is an entry before the cursor.
func (h *History) CanBack() bool { return h.cursor > 0 }

// CanForward reports whether there is an entry after the cursor.
func (h *History) CanForward() bool { return h.cursor < len(h.entries)-1 }
