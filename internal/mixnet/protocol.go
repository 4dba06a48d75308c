// Package mixnet talks to a local nym-client over its websocket API.
//
// The nym-client process owns the mixnet connection, the keys and the
// gateway. This package only speaks the client's JSON text protocol: ask for
// the self address, send plain messages to recipients, and read what arrives.
package mixnet

// Message types of the nym-client websocket API.
const (
	typeSelfAddress = "selfAddress"
	typeSend        = "send"
	typeReceived    = "received"
	typeError       = "error"
)

// request is an outbound frame.
type request struct {
	Type      string `json:"type"`
	Recipient string `json:"recipient,omitempty"`
	Message   string `json:"message,omitempty"`
}

// response is an inbound frame. Only the fields for the message types this
// package handles are decoded.
type response struct {
	Type      string `json:"type"`
	Address   string `json:"address,omitempty"`
	Message   string `json:"message,omitempty"`
	SenderTag string `json:"senderTag,omitempty"`
}
