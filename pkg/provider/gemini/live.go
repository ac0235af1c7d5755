// Package gemini adapts the Gemini Live API to the relay session contract.
// All genai types stay inside this package.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/omochi-ai/realtime-gateway/pkg/relay"
	"github.com/omochi-ai/realtime-gateway/pkg/tools"
)

// Options configures one live session.
type Options struct {
	APIKey     string
	Model      string
	APIVersion string

	// SystemInstruction is the persona prompt sent at session setup.
	SystemInstruction string

	// Tools exposes the registry's functions to the model, alongside the
	// built-in search and code execution tools.
	Tools *tools.Registry
}

// LiveSession is a relay.Session backed by one Gemini Live connection.
type LiveSession struct {
	sess *genai.Session

	// pending holds events mapped from the last server message that have
	// not been handed out yet. Receive is called from one goroutine only.
	pending []relay.Event

	closeOnce sync.Once
	closeErr  error
}

// Connect opens a live session against the Gemini API.
func Connect(ctx context.Context, opts Options) (*LiveSession, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	apiVersion := opts.APIVersion
	if apiVersion == "" {
		apiVersion = "v1alpha"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      opts.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: apiVersion},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	config := &genai.LiveConnectConfig{}
	if opts.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(opts.SystemInstruction, genai.RoleUser)
	}
	config.Tools = buildTools(opts.Tools)

	sess, err := client.Live.Connect(ctx, opts.Model, config)
	if err != nil {
		return nil, fmt.Errorf("gemini: connect %s: %w", opts.Model, err)
	}
	return &LiveSession{sess: sess}, nil
}

// buildTools converts registry declarations and appends the model-side
// search and code execution tools.
func buildTools(reg *tools.Registry) []*genai.Tool {
	out := make([]*genai.Tool, 0, 3)

	if reg != nil {
		var decls []*genai.FunctionDeclaration
		for _, h := range reg.Handlers() {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:        h.Name(),
				Description: h.Description(),
				Parameters:  convertSchema(h.Parameters()),
			})
		}
		if len(decls) > 0 {
			out = append(out, &genai.Tool{FunctionDeclarations: decls})
		}
	}

	out = append(out,
		&genai.Tool{GoogleSearch: &genai.GoogleSearch{}},
		&genai.Tool{CodeExecution: &genai.ToolCodeExecution{}},
	)
	return out
}

func convertSchema(s *tools.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        convertType(s.Type),
		Description: s.Description,
		Required:    s.Required,
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = convertSchema(prop)
		}
	}
	return out
}

func convertType(t string) genai.Type {
	switch strings.ToLower(t) {
	case "object":
		return genai.TypeObject
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	default:
		return genai.TypeUnspecified
	}
}

// SendTurn submits a complete user turn.
func (s *LiveSession) SendTurn(ctx context.Context, text string) error {
	content := genai.NewContentFromText(text, genai.RoleUser)
	err := s.sess.SendClientContent(genai.LiveClientContentInput{
		Turns:        []*genai.Content{content},
		TurnComplete: genai.Ptr(true),
	})
	if err != nil {
		return fmt.Errorf("gemini: send turn: %w", err)
	}
	return nil
}

// SendMedia streams one decoded media chunk.
func (s *LiveSession) SendMedia(ctx context.Context, mimeType string, data []byte) error {
	err := s.sess.SendRealtimeInput(genai.LiveRealtimeInput{
		Media: &genai.Blob{MIMEType: mimeType, Data: data},
	})
	if err != nil {
		return fmt.Errorf("gemini: send media %s: %w", mimeType, err)
	}
	return nil
}

// SendToolResponse returns tool results to the model.
func (s *LiveSession) SendToolResponse(ctx context.Context, results ...relay.ToolResult) error {
	responses := make([]*genai.FunctionResponse, 0, len(results))
	for _, r := range results {
		responses = append(responses, &genai.FunctionResponse{
			ID:       r.ID,
			Name:     r.Name,
			Response: r.Response,
		})
	}
	err := s.sess.SendToolResponse(genai.LiveToolResponseInput{FunctionResponses: responses})
	if err != nil {
		return fmt.Errorf("gemini: send tool response: %w", err)
	}
	return nil
}

// Receive returns the next mapped event. One server message can map to
// several events; leftovers are queued and drained before the next read.
// The underlying read is unblocked by Close rather than ctx.
func (s *LiveSession) Receive(ctx context.Context) (relay.Event, error) {
	for {
		if len(s.pending) > 0 {
			ev := s.pending[0]
			s.pending = s.pending[1:]
			return ev, nil
		}

		msg, err := s.sess.Receive()
		if err != nil {
			if ctx.Err() != nil {
				return nil, relay.ErrSessionClosed
			}
			return nil, fmt.Errorf("%w: %v", relay.ErrSessionClosed, err)
		}
		s.pending = mapServerMessage(msg)
	}
}

func (s *LiveSession) Close() error {
	s.closeOnce.Do(func() { s.closeErr = s.sess.Close() })
	return s.closeErr
}

// mapServerMessage flattens one server message into ordered relay events:
// tool traffic first, then model content, then the turn-complete marker. A
// message carrying nothing usable maps to a single Unhandled event.
func mapServerMessage(msg *genai.LiveServerMessage) []relay.Event {
	if msg == nil {
		return []relay.Event{relay.Unhandled{Reason: "empty message"}}
	}

	var events []relay.Event

	if tc := msg.ToolCall; tc != nil && len(tc.FunctionCalls) > 0 {
		calls := make([]tools.Call, 0, len(tc.FunctionCalls))
		for _, fc := range tc.FunctionCalls {
			calls = append(calls, tools.Call{ID: fc.ID, Name: fc.Name, Args: fc.Args})
		}
		events = append(events, relay.ToolCall{Calls: calls})
	}

	if cancel := msg.ToolCallCancellation; cancel != nil && len(cancel.IDs) > 0 {
		events = append(events, relay.ToolCancellation{IDs: cancel.IDs})
	}

	if sc := msg.ServerContent; sc != nil {
		if sc.ModelTurn != nil {
			for _, part := range sc.ModelTurn.Parts {
				if part == nil {
					continue
				}
				if part.Text != "" {
					events = append(events, relay.TextDelta{Text: part.Text})
				}
				if part.InlineData != nil && len(part.InlineData.Data) > 0 {
					events = append(events, relay.InlineAudio{
						MIMEType: part.InlineData.MIMEType,
						Data:     part.InlineData.Data,
					})
				}
			}
		}
		if sc.TurnComplete {
			events = append(events, relay.TurnComplete{})
		}
	}

	if len(events) == 0 {
		events = append(events, relay.Unhandled{Reason: "no actionable content"})
	}
	return events
}
