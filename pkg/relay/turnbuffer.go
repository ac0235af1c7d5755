package relay

import "strings"

// TurnBuffer accumulates assistant text deltas for the current turn so the
// whole turn can be synthesized as one TTS script. It is owned by the
// outbound loop alone and therefore needs no locking; keep it that way.
type TurnBuffer struct {
	text strings.Builder
}

// Append adds a delta in emission order.
func (b *TurnBuffer) Append(delta string) {
	b.text.WriteString(delta)
}

// Len reports the buffered byte count.
func (b *TurnBuffer) Len() int {
	return b.text.Len()
}

// Flush returns the accumulated text and resets the buffer. Called at most
// once per turn, on the turn-complete marker.
func (b *TurnBuffer) Flush() string {
	out := b.text.String()
	b.text.Reset()
	return out
}
