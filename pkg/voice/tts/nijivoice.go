package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/omochi-ai/realtime-gateway/pkg/relay"
)

const defaultNijivoiceBaseURL = "https://api.nijivoice.com/api/platform/v1"

// Nijivoice generates voice audio through the Nijivoice platform API.
type Nijivoice struct {
	baseURL    string
	apiKey     string
	actorID    string
	format     string
	speed      string
	httpClient *http.Client
}

// NijivoiceOption configures the client.
type NijivoiceOption func(*Nijivoice)

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) NijivoiceOption {
	return func(n *Nijivoice) {
		if baseURL != "" {
			n.baseURL = baseURL
		}
	}
}

// WithFormat sets the audio container format ("wav" or "mp3").
func WithFormat(format string) NijivoiceOption {
	return func(n *Nijivoice) {
		if format != "" {
			n.format = format
		}
	}
}

// WithSpeed sets the speaking speed. The API takes it as a decimal string.
func WithSpeed(speed string) NijivoiceOption {
	return func(n *Nijivoice) {
		if speed != "" {
			n.speed = speed
		}
	}
}

// WithHTTPClient overrides the HTTP client, including its timeout.
func WithHTTPClient(client *http.Client) NijivoiceOption {
	return func(n *Nijivoice) {
		if client != nil {
			n.httpClient = client
		}
	}
}

// NewNijivoice builds a client bound to one voice actor.
func NewNijivoice(apiKey, actorID string, opts ...NijivoiceOption) *Nijivoice {
	n := &Nijivoice{
		baseURL:    defaultNijivoiceBaseURL,
		apiKey:     apiKey,
		actorID:    actorID,
		format:     "wav",
		speed:      "0.8",
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Nijivoice) Name() string { return "nijivoice" }

type generateVoiceRequest struct {
	Script string `json:"script"`
	Format string `json:"format"`
	Speed  string `json:"speed"`
}

type generateVoiceResponse struct {
	GeneratedVoice struct {
		Base64Audio  string `json:"base64Audio"`
		AudioFileURL string `json:"audioFileUrl"`
		Duration     int    `json:"duration"`
	} `json:"generatedVoice"`
}

// Synthesize posts the script to the voice actor's generation endpoint and
// returns the audio. A hosted URL in the response is preferred over the
// inline payload.
func (n *Nijivoice) Synthesize(ctx context.Context, script string) (relay.Speech, error) {
	body, err := json.Marshal(generateVoiceRequest{Script: script, Format: n.format, Speed: n.speed})
	if err != nil {
		return relay.Speech{}, fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimRight(n.baseURL, "/") + "/voice-actors/" + n.actorID + "/generate-encoded-voice"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return relay.Speech{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-api-key", n.apiKey)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return relay.Speech{}, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return relay.Speech{}, fmt.Errorf("nijivoice: status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return relay.Speech{}, fmt.Errorf("read response: %w", err)
	}

	var out generateVoiceResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return relay.Speech{}, fmt.Errorf("decode response: %w", err)
	}
	if out.GeneratedVoice.AudioFileURL == "" && out.GeneratedVoice.Base64Audio == "" {
		return relay.Speech{}, fmt.Errorf("nijivoice: response carried no audio")
	}

	return relay.Speech{
		Base64Audio: out.GeneratedVoice.Base64Audio,
		URL:         out.GeneratedVoice.AudioFileURL,
		Format:      n.format,
	}, nil
}
