// Package openai mints ephemeral client secrets for the OpenAI Realtime API
// so browsers can connect to it without ever seeing the server key.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.openai.com"

// Realtime creates short-lived realtime sessions.
type Realtime struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures the client.
type Option func(*Realtime)

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(r *Realtime) {
		if baseURL != "" {
			r.baseURL = baseURL
		}
	}
}

// WithHTTPClient overrides the HTTP client, including its timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Realtime) {
		if client != nil {
			r.httpClient = client
		}
	}
}

// NewRealtime builds a client. The API key is required; callers that lack
// one must fail the request before getting here.
func NewRealtime(apiKey string, opts ...Option) *Realtime {
	r := &Realtime{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type sessionRequest struct {
	Model        string   `json:"model"`
	Modalities   []string `json:"modalities"`
	Instructions string   `json:"instructions"`
	ToolChoice   string   `json:"tool_choice"`
}

type sessionResponse struct {
	ClientSecret struct {
		Value     string `json:"value"`
		ExpiresAt int64  `json:"expires_at"`
	} `json:"client_secret"`
}

// CreateEphemeralToken registers a text-modality realtime session for the
// given model and returns its client secret.
func (r *Realtime) CreateEphemeralToken(ctx context.Context, model, instructions string) (string, error) {
	body, err := json.Marshal(sessionRequest{
		Model:        model,
		Modalities:   []string{"text"},
		Instructions: instructions,
		ToolChoice:   "auto",
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimRight(r.baseURL, "/") + "/v1/realtime/sessions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("openai: status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var out sessionResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.ClientSecret.Value == "" {
		return "", fmt.Errorf("openai: response carried no client secret")
	}
	return out.ClientSecret.Value, nil
}
