// Package relay implements the duplex WebSocket relay between one client
// connection and one provider session: an inbound loop forwarding client
// frames upstream and an outbound loop forwarding provider events back,
// buffering each assistant turn's text for speech synthesis.
package relay

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/omochi-ai/realtime-gateway/pkg/tools"
)

// ErrClientClosed is returned by ClientConn reads once the client is gone.
var ErrClientClosed = errors.New("client connection closed")

// ClientConn is the client side of the relay: text frames in, JSON frames
// out. Reads and writes may happen from different goroutines.
type ClientConn interface {
	// ReadText blocks for the next client text frame. Returns an error
	// wrapping ErrClientClosed once the connection is gone.
	ReadText() ([]byte, error)
	WriteJSON(v any) error
	Close() error
}

// Speech is the product of one synthesis call: either provider-hosted (URL)
// or inline base64 audio.
type Speech struct {
	Base64Audio string
	URL         string
	Format      string
}

// SpeechSynthesizer turns one turn's text into audio.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, script string) (Speech, error)
}

// AudioStore re-hosts synthesized audio and returns a fetchable URL.
type AudioStore interface {
	Store(ctx context.Context, audio []byte, format string) (string, error)
}

// Config carries the relay's collaborators. TTS and Store are optional.
type Config struct {
	Logger *slog.Logger
	Tools  *tools.Registry
	TTS    SpeechSynthesizer
	Store  AudioStore

	// InitialFrame is a client frame read before the provider session was
	// opened (the optional setup handshake); it is relayed first.
	InitialFrame []byte
}

type relay struct {
	client  ClientConn
	session Session
	cfg     Config
	logger  *slog.Logger
	buffer  TurnBuffer
}

// Run drives both loops until the client disconnects or the provider
// session fails. Both loops are joined before Run returns; the caller owns
// closing the client connection and the session.
func Run(ctx context.Context, client ClientConn, session Session, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := &relay{client: client, session: session, cfg: cfg, logger: logger}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Either loop ending tears down the shared handles so the sibling's
	// blocking read unblocks.
	teardownDone := make(chan struct{})
	go func() {
		defer close(teardownDone)
		<-ctx.Done()
		_ = client.Close()
		_ = session.Close()
	}()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return r.inbound(ctx)
	})
	g.Go(func() error {
		defer cancel()
		return r.outbound(ctx)
	})

	err := g.Wait()
	cancel()
	<-teardownDone
	return err
}

// inbound relays client frames into the provider session. A malformed frame
// falls back to raw-text forwarding; a failed forward is logged and the loop
// continues. Client disconnect ends the loop cleanly.
func (r *relay) inbound(ctx context.Context) error {
	if len(r.cfg.InitialFrame) > 0 {
		if err := r.forward(ctx, r.cfg.InitialFrame); err != nil {
			r.logger.Error("forward initial frame", "error", err)
		}
	}

	for {
		raw, err := r.client.ReadText()
		if err != nil {
			if errors.Is(err, ErrClientClosed) || ctx.Err() != nil {
				r.logger.Info("client disconnected (inbound)")
				return nil
			}
			r.logger.Error("client read", "error", err)
			return nil
		}

		if err := r.forward(ctx, raw); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			r.logger.Error("forward to provider", "error", err)
		}
	}
}

func (r *relay) forward(ctx context.Context, raw []byte) error {
	in := classifyInbound(raw)
	switch in.kind {
	case inboundText:
		return r.session.SendTurn(ctx, in.text)
	case inboundMedia:
		for _, chunk := range in.chunks {
			data, err := base64.StdEncoding.DecodeString(chunk.Data)
			if err != nil {
				return fmt.Errorf("decode %s chunk: %w", chunk.MimeType, err)
			}
			if err := r.session.SendMedia(ctx, chunk.MimeType, data); err != nil {
				return err
			}
		}
		return nil
	default:
		return r.session.SendTurn(ctx, in.text)
	}
}

// outbound relays provider events to the client. Provider stream failure is
// fatal to the connection; TTS failure is isolated to the affected turn.
func (r *relay) outbound(ctx context.Context) error {
	for {
		ev, err := r.session.Receive(ctx)
		if err != nil {
			if errors.Is(err, ErrSessionClosed) || errors.Is(err, context.Canceled) || ctx.Err() != nil {
				r.logger.Info("provider session ended (outbound)")
				return nil
			}
			r.logger.Error("provider receive", "error", err)
			return fmt.Errorf("provider receive: %w", err)
		}

		switch ev := ev.(type) {
		case ToolCall:
			r.dispatchToolCalls(ctx, ev.Calls)
		case ToolCancellation:
			for _, id := range ev.IDs {
				// Stubs have no side effects to compensate; log only.
				r.logger.Info("tool call cancelled", "id", id)
			}
		case Unhandled:
			r.logger.Warn("unhandled provider message", "reason", ev.Reason)
		case TextDelta:
			r.buffer.Append(ev.Text)
			if err := r.writeClient(textFrame{Text: ev.Text}); err != nil {
				return r.clientWriteResult(err)
			}
		case InlineAudio:
			frame := audioFrame{Audio: base64.StdEncoding.EncodeToString(ev.Data)}
			if err := r.writeClient(frame); err != nil {
				return r.clientWriteResult(err)
			}
		case TurnComplete:
			if err := r.finishTurn(ctx); err != nil {
				return r.clientWriteResult(err)
			}
		default:
			r.logger.Warn("unknown event variant", "type", fmt.Sprintf("%T", ev))
		}
	}
}

// finishTurn flushes the turn buffer through TTS (and optionally storage)
// and always emits the end-of-turn marker, even when synthesis fails or
// there was no text.
func (r *relay) finishTurn(ctx context.Context) error {
	if script := r.buffer.Flush(); script != "" && r.cfg.TTS != nil {
		if frame, err := r.synthesize(ctx, script); err != nil {
			r.logger.Error("speech synthesis", "error", err)
		} else if err := r.writeClient(frame); err != nil {
			return err
		}
	}
	return r.writeClient(endOfTurnFrame{EndOfTurn: true})
}

func (r *relay) synthesize(ctx context.Context, script string) (audioFrame, error) {
	speech, err := r.cfg.TTS.Synthesize(ctx, script)
	if err != nil {
		return audioFrame{}, err
	}

	// Provider-hosted audio needs no re-hosting.
	if speech.URL != "" {
		return audioFrame{Audio: speech.URL}, nil
	}
	if speech.Base64Audio == "" {
		return audioFrame{}, errors.New("synthesis returned no audio")
	}
	if r.cfg.Store == nil {
		return audioFrame{Audio: speech.Base64Audio}, nil
	}

	data, err := base64.StdEncoding.DecodeString(speech.Base64Audio)
	if err != nil {
		return audioFrame{}, fmt.Errorf("decode synthesized audio: %w", err)
	}
	url, err := r.cfg.Store.Store(ctx, data, speech.Format)
	if err != nil {
		// Upload failure degrades to inline audio rather than losing the turn.
		r.logger.Error("audio upload", "error", err)
		return audioFrame{Audio: speech.Base64Audio}, nil
	}
	return audioFrame{Audio: url}, nil
}

// dispatchToolCalls runs each call through the registry. Unknown tools and
// invalid arguments skip that call; results of successful calls go back into
// the session with end-of-turn semantics so the provider continues.
func (r *relay) dispatchToolCalls(ctx context.Context, calls []tools.Call) {
	for _, call := range calls {
		result, err := r.cfg.Tools.Dispatch(ctx, call)
		if err != nil {
			switch {
			case errors.Is(err, tools.ErrUnknownTool):
				r.logger.Error("unknown tool requested", "name", call.Name, "id", call.ID)
			case errors.Is(err, tools.ErrMissingArgument):
				r.logger.Error("tool arguments incomplete", "name", call.Name, "id", call.ID, "error", err)
			default:
				r.logger.Error("tool dispatch failed", "name", call.Name, "id", call.ID, "error", err)
			}
			continue
		}

		r.logger.Info("tool call dispatched", "name", call.Name, "id", call.ID, "result", lazyJSON(result))

		if err := r.session.SendToolResponse(ctx, ToolResult{ID: call.ID, Name: call.Name, Response: result}); err != nil {
			r.logger.Error("send tool response", "name", call.Name, "id", call.ID, "error", err)
		}
	}
}

func (r *relay) writeClient(v any) error {
	return r.client.WriteJSON(v)
}

// clientWriteResult maps a failed client write to the loop outcome: a gone
// client is a clean exit, anything else is surfaced.
func (r *relay) clientWriteResult(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrClientClosed) {
		r.logger.Info("client disconnected (outbound)")
		return nil
	}
	r.logger.Error("client write", "error", err)
	return nil
}

// lazyJSON defers marshaling to log time.
type lazyJSON map[string]any

func (l lazyJSON) String() string {
	b, err := json.Marshal(map[string]any(l))
	if err != nil {
		return fmt.Sprintf("%v", map[string]any(l))
	}
	return string(b)
}
