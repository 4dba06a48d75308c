package backend

import "fmt"

// ConnState is the lifecycle phase of the mixnet session.
type ConnState int

const (
	Connecting ConnState = iota
	Connected
	Failed
)

// ConnectionStatus is the session lifecycle as shown to the user.
// Reason is set only for Failed.
type ConnectionStatus struct {
	State  ConnState
	Reason string
}

// String returns the status line text.
func (s ConnectionStatus) String() string {
	switch s.State {
	case Connecting:
		return "Connecting to Mixnet..."
	case Connected:
		return "Connected"
	case Failed:
		return "Connection failed: " + s.Reason
	}
	return fmt.Sprintf("unknown state %d", s.State)
}

// SessionEvent is produced by the backend and consumed by the browser state.
// It is one of StatusChanged or ContentReceived.
type SessionEvent interface {
	sessionEvent()
}

// StatusChanged reports a connection lifecycle transition. LocalAddress is
// empty until the session is connected.
type StatusChanged struct {
	Status       ConnectionStatus
	LocalAddress string
}

// ContentReceived carries one inbound payload, undecoded.
type ContentReceived struct {
	Raw string
}

func (StatusChanged) sessionEvent()   {}
func (ContentReceived) sessionEvent() {}

// NavigationRequest is one outbound page request.
type NavigationRequest struct {
	// Seq numbers requests in dispatch order; it is not sent on the wire.
	Seq       uint64
	Recipient string
	Line      string
}

// NewNavigationRequest builds the request line "GET <path> FROM <local>".
func NewNavigationRequest(recipient, path, local string) NavigationRequest {
	return NavigationRequest{
		Recipient: recipient,
		Line:      fmt.Sprintf("GET %s FROM %s", path, local),
	}
}
