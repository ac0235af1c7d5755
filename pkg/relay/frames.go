package relay

import "encoding/json"

// Client-originated frame shapes. A frame that parses as JSON but matches
// none of the known keys, or does not parse at all, is relayed as raw text.
type MediaChunk struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"` // base64
}

type realtimeInput struct {
	MediaChunks []MediaChunk `json:"mediaChunks"`
}

type inboundFrame struct {
	Setup         *SetupFrame    `json:"setup"`
	InputText     *string        `json:"inputText"`
	RealtimeInput *realtimeInput `json:"realtimeInput"`
}

// SetupFrame is the optional leading configuration frame.
type SetupFrame struct {
	Model string `json:"model"`
}

type inboundKind int

const (
	inboundRaw inboundKind = iota
	inboundText
	inboundMedia
)

type inbound struct {
	kind   inboundKind
	text   string
	chunks []MediaChunk
}

// classifyInbound decides how a client frame is forwarded. Parse failure is
// a fallback, not an error.
func classifyInbound(raw []byte) inbound {
	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return inbound{kind: inboundRaw, text: string(raw)}
	}
	if frame.InputText != nil {
		return inbound{kind: inboundText, text: *frame.InputText}
	}
	if frame.RealtimeInput != nil {
		return inbound{kind: inboundMedia, chunks: frame.RealtimeInput.MediaChunks}
	}
	return inbound{kind: inboundRaw, text: string(raw)}
}

// ParseSetup reports whether a frame is a leading {"setup": ...} frame.
func ParseSetup(raw []byte) (SetupFrame, bool) {
	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return SetupFrame{}, false
	}
	if frame.Setup == nil {
		return SetupFrame{}, false
	}
	return *frame.Setup, true
}

// Server-originated frame shapes.
type textFrame struct {
	Text string `json:"text"`
}

type audioFrame struct {
	Audio string `json:"audio"` // base64 or URL
}

type endOfTurnFrame struct {
	EndOfTurn bool `json:"endOfTurn"`
}
