package browser

import "errors"

// Errors shown in the error line. Their text is what the user reads.
var (
	ErrNoServer          = errors.New("No server address specified")
	ErrNotConnected      = errors.New("Not connected yet - waiting for client address")
	ErrTimeout           = errors.New("Request timed out after 30s")
	ErrUnsupportedScheme = errors.New("External web links not supported")

	// ErrLoadInProgress refuses a navigation while a page is loading. It is
	// returned to the caller but never shown.
	ErrLoadInProgress = errors.New("a page is already loading")
)
