package openai

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateEphemeralToken(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"client_secret": map[string]any{"value": "ek_abc123", "expires_at": 1735689600},
		})
	}))
	defer srv.Close()

	c := NewRealtime("sk-test", WithBaseURL(srv.URL))
	token, err := c.CreateEphemeralToken(t.Context(), "gpt-4o-realtime-preview-2024-12-17", "be helpful")
	if err != nil {
		t.Fatalf("CreateEphemeralToken: %v", err)
	}

	if token != "ek_abc123" {
		t.Errorf("token = %q", token)
	}
	if gotPath != "/v1/realtime/sessions" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotBody["model"] != "gpt-4o-realtime-preview-2024-12-17" {
		t.Errorf("model = %v", gotBody["model"])
	}
	if gotBody["tool_choice"] != "auto" {
		t.Errorf("tool_choice = %v", gotBody["tool_choice"])
	}
	modalities, _ := gotBody["modalities"].([]any)
	if len(modalities) != 1 || modalities[0] != "text" {
		t.Errorf("modalities = %v", gotBody["modalities"])
	}
	if gotBody["instructions"] != "be helpful" {
		t.Errorf("instructions = %v", gotBody["instructions"])
	}
}

func TestCreateEphemeralTokenUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "invalid key"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewRealtime("sk-bad", WithBaseURL(srv.URL))
	if _, err := c.CreateEphemeralToken(t.Context(), "gpt-4o-realtime-preview-2024-12-17", ""); err == nil {
		t.Fatal("want error on 401")
	}
}

func TestCreateEphemeralTokenEmptySecret(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"client_secret": map[string]any{}})
	}))
	defer srv.Close()

	c := NewRealtime("sk-test", WithBaseURL(srv.URL))
	if _, err := c.CreateEphemeralToken(t.Context(), "m", ""); err == nil {
		t.Fatal("want error when secret missing")
	}
}
