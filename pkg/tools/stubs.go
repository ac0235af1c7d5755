package tools

import "context"

// The handlers below are verification stubs: they declare the real schemas
// the assistant reasons about but perform no side effects, always reporting
// success. Genuine integrations would replace Invoke.

type SendEmail struct{}

func (SendEmail) Name() string { return "send_email" }

func (SendEmail) Description() string { return "メールアドレスにメールを送信する関数" }

func (SendEmail) Parameters() *Schema {
	return &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"dto": {
				Type:        "object",
				Description: "送信するメールの詳細",
				Properties: map[string]*Schema{
					"to_email": {Type: "string", Description: "送信先のメールアドレス"},
					"subject":  {Type: "string", Description: "メールの件名"},
					"body":     {Type: "string", Description: "メールの本文"},
				},
				Required: []string{"to_email", "subject", "body"},
			},
		},
		Required: []string{"dto"},
	}
}

func (SendEmail) Invoke(ctx context.Context, args map[string]any) (map[string]any, error) {
	return map[string]any{"result": true}, nil
}

type CreateCalendarEvent struct{}

func (CreateCalendarEvent) Name() string { return "create_google_calendar_event" }

func (CreateCalendarEvent) Description() string { return "Googleカレンダーに予定を登録する関数" }

func (CreateCalendarEvent) Parameters() *Schema {
	return &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"dto": {
				Type:        "object",
				Description: "Googleカレンダーに登録する予定の詳細",
				Properties: map[string]*Schema{
					"email": {Type: "string", Description: "Googleカレンダーの持ち主のメールアドレスを指定する"},
					"title": {Type: "string", Description: "登録する予定のタイトル"},
				},
				Required: []string{"email", "title"},
			},
		},
		Required: []string{"dto"},
	}
}

func (CreateCalendarEvent) Invoke(ctx context.Context, args map[string]any) (map[string]any, error) {
	return map[string]any{"result": true}, nil
}

// DefaultRegistry builds the registry with the stock verification stubs.
func DefaultRegistry() (*Registry, error) {
	return NewRegistry(SendEmail{}, CreateCalendarEvent{})
}
