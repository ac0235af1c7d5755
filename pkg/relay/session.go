package relay

import (
	"context"
	"errors"
)

// ErrSessionClosed is returned by Session.Receive once the provider stream
// has ended normally.
var ErrSessionClosed = errors.New("provider session closed")

// ToolResult reports one dispatched tool call back into the session.
type ToolResult struct {
	ID       string
	Name     string
	Response map[string]any
}

// Session is the upstream provider's stateful streaming connection. One
// session serves exactly one client connection and is closed with it.
//
// Send calls and Receive may be used from different goroutines; the inbound
// loop sends while the outbound loop receives.
type Session interface {
	// SendTurn forwards user text and closes the user's turn, prompting a
	// response.
	SendTurn(ctx context.Context, text string) error

	// SendMedia streams one media chunk (audio/pcm, image/jpeg) without
	// closing the turn.
	SendMedia(ctx context.Context, mimeType string, data []byte) error

	// SendToolResponse returns tool results so the provider can continue
	// reasoning within the current turn.
	SendToolResponse(ctx context.Context, results ...ToolResult) error

	// Receive blocks until the next provider event. It returns
	// ErrSessionClosed after a normal end of stream.
	Receive(ctx context.Context) (Event, error)

	// Close releases the session. Safe to call more than once.
	Close() error
}
