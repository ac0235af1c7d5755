package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/omochi-ai/realtime-gateway/pkg/gateway/config"
)

type HealthHandler struct{}

func (h HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

type ReadyHandler struct {
	Config config.Config
}

func (h ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	type readyResp struct {
		OK             bool     `json:"ok"`
		GeminiEnabled  bool     `json:"gemini_enabled"`
		IssuerEnabled  bool     `json:"issuer_enabled"`
		TTSEnabled     bool     `json:"tts_enabled"`
		StorageEnabled bool     `json:"storage_enabled"`
		Issues         []string `json:"issues,omitempty"`
	}

	issues := make([]string, 0, 4)

	if h.Config.GeminiAPIKey == "" {
		issues = append(issues, "GEMINI_API_KEY not set; video-chat relay disabled")
	}
	if h.Config.OpenAIAPIKey == "" {
		issues = append(issues, "OPENAI_API_KEY not set; voice-chat session issuance disabled")
	}
	if h.Config.NijivoiceAPIKey == "" {
		issues = append(issues, "NIJIVOICE_API_KEY not set; speech synthesis disabled")
	}
	if h.Config.WSWriteTimeout <= 0 || h.Config.TTSRequestTimeout <= 0 || h.Config.IssuerTimeout <= 0 {
		issues = append(issues, "timeouts must be > 0")
	}
	if h.Config.Storage.Enabled() && (h.Config.Storage.AccessKey == "" || h.Config.Storage.SecretKey == "") {
		issues = append(issues, "storage bucket set without credentials")
	}

	// Missing provider keys degrade single endpoints but keep the process
	// serviceable, so readiness stays 200 as long as config is coherent.
	ok := true
	for _, issue := range issues {
		if issue == "timeouts must be > 0" || issue == "storage bucket set without credentials" {
			ok = false
		}
	}
	status := http.StatusOK
	if !ok {
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(readyResp{
		OK:             ok,
		GeminiEnabled:  h.Config.GeminiAPIKey != "",
		IssuerEnabled:  h.Config.OpenAIAPIKey != "",
		TTSEnabled:     h.Config.NijivoiceAPIKey != "",
		StorageEnabled: h.Config.Storage.Enabled(),
		Issues:         issues,
	})
}
