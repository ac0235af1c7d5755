package relay

import "github.com/omochi-ai/realtime-gateway/pkg/tools"

// Event is one provider-originated response event. The variants form a
// closed set so the outbound loop can switch exhaustively instead of
// presence-checking optional fields.
type Event interface {
	eventType() string
}

// TextDelta is a streamed fragment of assistant text for the current turn.
type TextDelta struct {
	Text string
}

func (TextDelta) eventType() string { return "text_delta" }

// InlineAudio is provider-synthesized audio emitted inline with the turn.
type InlineAudio struct {
	MIMEType string
	Data     []byte
}

func (InlineAudio) eventType() string { return "inline_audio" }

// ToolCall asks the gateway to run one or more registered functions and
// report their results back into the session.
type ToolCall struct {
	Calls []tools.Call
}

func (ToolCall) eventType() string { return "tool_call" }

// ToolCancellation withdraws previously issued tool calls by ID.
type ToolCancellation struct {
	IDs []string
}

func (ToolCancellation) eventType() string { return "tool_cancellation" }

// TurnComplete marks the end of the assistant's turn.
type TurnComplete struct{}

func (TurnComplete) eventType() string { return "turn_complete" }

// Unhandled is a provider message carrying nothing the relay knows how to
// forward. It is logged and skipped.
type Unhandled struct {
	Reason string
}

func (Unhandled) eventType() string { return "unhandled" }
