// Package tts synthesizes speech for one assistant turn at a time.
package tts

import (
	"context"

	"github.com/omochi-ai/realtime-gateway/pkg/relay"
)

// Provider is a speech synthesis backend. Implementations satisfy
// relay.SpeechSynthesizer.
type Provider interface {
	Name() string
	Synthesize(ctx context.Context, script string) (relay.Speech, error)
}
