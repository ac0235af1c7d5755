package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/omochi-ai/realtime-gateway/pkg/gateway/apierror"
	"github.com/omochi-ai/realtime-gateway/pkg/gateway/config"
	"github.com/omochi-ai/realtime-gateway/pkg/gateway/mw"
	"github.com/omochi-ai/realtime-gateway/pkg/persona"
)

// TokenIssuer mints an ephemeral client secret for a realtime session.
type TokenIssuer interface {
	CreateEphemeralToken(ctx context.Context, model, instructions string) (string, error)
}

// VoiceChatSessionHandler creates a realtime session upstream and hands the
// short-lived token to the browser. The server key never leaves the process.
type VoiceChatSessionHandler struct {
	Config config.Config
	Logger *slog.Logger
	Issuer TokenIssuer
}

type ephemeralTokenResp struct {
	EphemeralToken string `json:"ephemeralToken"`
}

func (h VoiceChatSessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reqID, _ := mw.RequestIDFrom(r.Context())

	if h.Config.OpenAIAPIKey == "" || h.Issuer == nil {
		logger.Error("voice-chat session requested without issuer configured", "request_id", reqID)
		apierror.Write(w, http.StatusInternalServerError, apierror.Unexpected())
		return
	}

	ctx := r.Context()
	if h.Config.IssuerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Config.IssuerTimeout)
		defer cancel()
	}

	token, err := h.Issuer.CreateEphemeralToken(ctx, h.Config.RealtimeModel, persona.Instruction)
	if err != nil {
		logger.Error("create ephemeral token", "request_id", reqID, "error", err)
		apierror.Write(w, http.StatusInternalServerError, apierror.Unexpected())
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(ephemeralTokenResp{EphemeralToken: token})
}
