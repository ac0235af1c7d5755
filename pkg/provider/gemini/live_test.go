package gemini

import (
	"reflect"
	"testing"

	"google.golang.org/genai"

	"github.com/omochi-ai/realtime-gateway/pkg/relay"
	"github.com/omochi-ai/realtime-gateway/pkg/tools"
)

func TestMapServerMessageTextDeltas(t *testing.T) {
	msg := &genai.LiveServerMessage{
		ServerContent: &genai.LiveServerContent{
			ModelTurn: &genai.Content{Parts: []*genai.Part{
				{Text: "こん"},
				{Text: "にちは"},
			}},
		},
	}
	events := mapServerMessage(msg)
	want := []relay.Event{relay.TextDelta{Text: "こん"}, relay.TextDelta{Text: "にちは"}}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %#v", events)
	}
}

func TestMapServerMessageTurnComplete(t *testing.T) {
	msg := &genai.LiveServerMessage{
		ServerContent: &genai.LiveServerContent{
			ModelTurn:    &genai.Content{Parts: []*genai.Part{{Text: "done"}}},
			TurnComplete: true,
		},
	}
	events := mapServerMessage(msg)
	if len(events) != 2 {
		t.Fatalf("events = %#v", events)
	}
	if _, ok := events[1].(relay.TurnComplete); !ok {
		t.Errorf("last event = %#v, want TurnComplete", events[1])
	}
}

func TestMapServerMessageInlineAudio(t *testing.T) {
	msg := &genai.LiveServerMessage{
		ServerContent: &genai.LiveServerContent{
			ModelTurn: &genai.Content{Parts: []*genai.Part{
				{InlineData: &genai.Blob{MIMEType: "audio/pcm", Data: []byte{1, 2}}},
			}},
		},
	}
	events := mapServerMessage(msg)
	if len(events) != 1 {
		t.Fatalf("events = %#v", events)
	}
	audio, ok := events[0].(relay.InlineAudio)
	if !ok || audio.MIMEType != "audio/pcm" || len(audio.Data) != 2 {
		t.Errorf("event = %#v", events[0])
	}
}

func TestMapServerMessageToolCallPrecedesContent(t *testing.T) {
	msg := &genai.LiveServerMessage{
		ToolCall: &genai.LiveServerToolCall{
			FunctionCalls: []*genai.FunctionCall{
				{ID: "function-call-1", Name: "send_email", Args: map[string]any{"dto": map[string]any{}}},
			},
		},
		ServerContent: &genai.LiveServerContent{
			ModelTurn: &genai.Content{Parts: []*genai.Part{{Text: "sending"}}},
		},
	}
	events := mapServerMessage(msg)
	if len(events) != 2 {
		t.Fatalf("events = %#v", events)
	}
	call, ok := events[0].(relay.ToolCall)
	if !ok {
		t.Fatalf("events[0] = %#v, want ToolCall first", events[0])
	}
	if len(call.Calls) != 1 || call.Calls[0].Name != "send_email" || call.Calls[0].ID != "function-call-1" {
		t.Errorf("calls = %#v", call.Calls)
	}
}

func TestMapServerMessageCancellation(t *testing.T) {
	msg := &genai.LiveServerMessage{
		ToolCallCancellation: &genai.LiveServerToolCallCancellation{IDs: []string{"function-call-7"}},
	}
	events := mapServerMessage(msg)
	want := []relay.Event{relay.ToolCancellation{IDs: []string{"function-call-7"}}}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %#v", events)
	}
}

func TestMapServerMessageEmpty(t *testing.T) {
	for _, msg := range []*genai.LiveServerMessage{nil, {}, {ServerContent: &genai.LiveServerContent{}}} {
		events := mapServerMessage(msg)
		if len(events) != 1 {
			t.Fatalf("events = %#v", events)
		}
		if _, ok := events[0].(relay.Unhandled); !ok {
			t.Errorf("event = %#v, want Unhandled", events[0])
		}
	}
}

func TestConvertSchema(t *testing.T) {
	in := &tools.Schema{
		Type: "object",
		Properties: map[string]*tools.Schema{
			"dto": {
				Type: "object",
				Properties: map[string]*tools.Schema{
					"to_email": {Type: "string", Description: "recipient"},
				},
				Required: []string{"to_email"},
			},
		},
		Required: []string{"dto"},
	}
	out := convertSchema(in)
	if out.Type != genai.TypeObject {
		t.Errorf("Type = %v", out.Type)
	}
	dto := out.Properties["dto"]
	if dto == nil || dto.Type != genai.TypeObject {
		t.Fatalf("dto schema = %#v", dto)
	}
	if dto.Properties["to_email"].Type != genai.TypeString {
		t.Errorf("to_email type = %v", dto.Properties["to_email"].Type)
	}
	if len(dto.Required) != 1 || dto.Required[0] != "to_email" {
		t.Errorf("dto required = %v", dto.Required)
	}
}

func TestBuildToolsIncludesBuiltins(t *testing.T) {
	reg, err := tools.DefaultRegistry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	built := buildTools(reg)
	if len(built) != 3 {
		t.Fatalf("tools = %d, want function declarations plus two builtins", len(built))
	}
	if len(built[0].FunctionDeclarations) != 2 {
		t.Errorf("declarations = %d", len(built[0].FunctionDeclarations))
	}
	if built[1].GoogleSearch == nil || built[2].CodeExecution == nil {
		t.Errorf("builtin tools missing: %#v", built[1:])
	}
}

func TestConnectRequiresAPIKey(t *testing.T) {
	if _, err := Connect(t.Context(), Options{Model: "gemini-2.0-flash-exp"}); err == nil {
		t.Fatal("want error without api key")
	}
}
