package backend

import "errors"

var (
	// ErrNotConnected means no session is ready to take requests yet.
	ErrNotConnected = errors.New("Not connected to Mixnet")
	// ErrQueueClosed means the queue was shut down.
	ErrQueueClosed = errors.New("queue closed")
)
