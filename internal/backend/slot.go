package backend

import (
	"fmt"
	"sync/atomic"
)

// RequestSlot holds the outbound request queue of the active session.
// It is empty until the session is connected; after that every dispatch
// goes to the installed queue.
type RequestSlot struct {
	queue atomic.Pointer[Queue[NavigationRequest]]
	seq   atomic.Uint64
}

// Set installs the outbound queue of a ready session.
func (s *RequestSlot) Set(q *Queue[NavigationRequest]) {
	s.queue.Store(q)
}

// ready reports whether a session queue is installed.
func (s *RequestSlot) ready() bool {
	return s.queue.Load() != nil
}

// Dispatch numbers req and enqueues it for the network. It never blocks.
func (s *RequestSlot) Dispatch(req NavigationRequest) (uint64, error) {
	q := s.queue.Load()
	if q == nil {
		return 0, ErrNotConnected
	}
	req.Seq = s.seq.Add(1)
	if err := q.Push(req); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrNotConnected, err)
	}
	return req.Seq, nil
}
