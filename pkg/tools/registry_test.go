package tools

import (
	"context"
	"errors"
	"testing"
)

func TestDefaultRegistryNames(t *testing.T) {
	r, err := DefaultRegistry()
	if err != nil {
		t.Fatalf("DefaultRegistry: %v", err)
	}
	names := r.Names()
	want := []string{"create_google_calendar_event", "send_email"}
	if len(names) != len(want) {
		t.Fatalf("names = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestDispatchSendEmail(t *testing.T) {
	r, _ := DefaultRegistry()
	result, err := r.Dispatch(context.Background(), Call{
		ID:   "function-call-1",
		Name: "send_email",
		Args: map[string]any{
			"dto": map[string]any{
				"to_email": "neko@example.com",
				"subject":  "にゃん",
				"body":     "ちゅーるください",
			},
		},
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if result["result"] != true {
		t.Errorf("result = %v", result)
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	r, _ := DefaultRegistry()
	_, err := r.Dispatch(context.Background(), Call{Name: "delete_everything"})
	if !errors.Is(err, ErrUnknownTool) {
		t.Fatalf("err = %v, want ErrUnknownTool", err)
	}
}

func TestDispatchMissingArguments(t *testing.T) {
	r, _ := DefaultRegistry()

	tests := []struct {
		name string
		args map[string]any
	}{
		{"no dto", map[string]any{}},
		{"dto not object", map[string]any{"dto": "nope"}},
		{"dto missing subject", map[string]any{
			"dto": map[string]any{"to_email": "a@example.com", "body": "b"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Dispatch(context.Background(), Call{Name: "send_email", Args: tt.args})
			if !errors.Is(err, ErrMissingArgument) {
				t.Fatalf("err = %v, want ErrMissingArgument", err)
			}
		})
	}
}

func TestDispatchCalendarEvent(t *testing.T) {
	r, _ := DefaultRegistry()
	result, err := r.Dispatch(context.Background(), Call{
		Name: "create_google_calendar_event",
		Args: map[string]any{
			"dto": map[string]any{"email": "a@example.com", "title": "通院"},
		},
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if result["result"] != true {
		t.Errorf("result = %v", result)
	}
}

type badHandler struct{}

func (badHandler) Name() string        { return "bad" }
func (badHandler) Description() string { return "" }
func (badHandler) Parameters() *Schema {
	return &Schema{
		Type:       "object",
		Properties: map[string]*Schema{},
		Required:   []string{"ghost"},
	}
}
func (badHandler) Invoke(ctx context.Context, args map[string]any) (map[string]any, error) {
	return nil, nil
}

func TestNewRegistryRejectsUndeclaredRequired(t *testing.T) {
	if _, err := NewRegistry(badHandler{}); err == nil {
		t.Fatalf("registration should fail for required-but-undeclared property")
	}
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	if _, err := NewRegistry(SendEmail{}, SendEmail{}); err == nil {
		t.Fatalf("registration should fail for duplicate names")
	}
}
