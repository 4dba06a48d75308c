package backend

import "strings"

// okMarker prefixes every successful page response.
const okMarker = "OK\n"

// errorMarker prefixes failures reported as content, by the bridge or by a
// server.
const errorMarker = "ERROR:"

// ResponseKind tells how an inbound payload should be read.
type ResponseKind int

const (
	// ResponsePage is a page body; the OK marker has been removed.
	ResponsePage ResponseKind = iota
	// ResponseError is a failure message, kept verbatim.
	ResponseError
	// ResponseRaw is anything else, kept verbatim.
	ResponseRaw
)

// Response is an inbound payload decoded once at the boundary.
type Response struct {
	Kind ResponseKind
	Body string
}

// DecodeResponse classifies a raw payload. Only the OK marker is stripped;
// error and unmarked payloads are displayed as they arrived.
func DecodeResponse(raw string) Response {
	if body, ok := strings.CutPrefix(raw, okMarker); ok {
		return Response{Kind: ResponsePage, Body: body}
	}
	if strings.HasPrefix(raw, errorMarker) {
		return Response{Kind: ResponseError, Body: raw}
	}
	return Response{Kind: ResponseRaw, Body: raw}
}
