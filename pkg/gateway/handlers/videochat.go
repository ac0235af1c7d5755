package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/omochi-ai/realtime-gateway/pkg/gateway/apierror"
	"github.com/omochi-ai/realtime-gateway/pkg/gateway/config"
	"github.com/omochi-ai/realtime-gateway/pkg/gateway/mw"
	"github.com/omochi-ai/realtime-gateway/pkg/gateway/ratelimit"
	"github.com/omochi-ai/realtime-gateway/pkg/relay"
	"github.com/omochi-ai/realtime-gateway/pkg/tools"
)

// SessionDialer opens a provider session for one WebSocket connection.
type SessionDialer func(ctx context.Context, model string) (relay.Session, error)

// VideoChatHandler upgrades the client to a WebSocket and relays it against
// a live model session, with turn-buffered speech synthesis on the way back.
type VideoChatHandler struct {
	Config  config.Config
	Logger  *slog.Logger
	Limiter *ratelimit.Limiter
	Dial    SessionDialer
	Tools   *tools.Registry
	TTS     relay.SpeechSynthesizer
	Store   relay.AudioStore
}

func (h VideoChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reqID, _ := mw.RequestIDFrom(r.Context())
	logger = logger.With("request_id", reqID, "client", mw.ClientKey(r))

	if h.Config.GeminiAPIKey == "" || h.Dial == nil {
		logger.Error("video-chat requested but relay is not configured")
		apierror.Write(w, http.StatusInternalServerError, apierror.Unexpected())
		return
	}

	d := h.Limiter.AcquireSession(mw.ClientKey(r), time.Now())
	if !d.Allowed {
		w.Header().Set("Retry-After", "1")
		apierror.Write(w, http.StatusTooManyRequests, apierror.RateLimited())
		return
	}
	defer d.Permit.Release()

	ws, err := upgrader(h.Config).Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		logger.Error("websocket upgrade", "error", err)
		return
	}
	conn := relay.NewWSConn(ws, h.Config.WSWriteTimeout)
	defer conn.Close()

	model, initial, err := readLeadingSetup(conn, h.Config.GeminiModel)
	if err != nil {
		logger.Info("client left before speaking")
		return
	}

	session, err := h.Dial(r.Context(), model)
	if err != nil {
		logger.Error("open provider session", "error", err)
		return
	}
	defer session.Close()

	logger.Info("video-chat session opened", "model", model)
	err = relay.Run(r.Context(), conn, session, relay.Config{
		Logger:       logger,
		Tools:        h.Tools,
		TTS:          h.TTS,
		Store:        h.Store,
		InitialFrame: initial,
	})
	if err != nil {
		logger.Error("video-chat session failed", "error", err)
		return
	}
	logger.Info("video-chat session closed")
}

// readLeadingSetup consumes the client's first frame before the provider
// session opens. A {"setup": ...} frame may override the model; any other
// frame is returned for normal forwarding so no traffic is lost.
func readLeadingSetup(conn *relay.WSConn, defaultModel string) (model string, initial []byte, err error) {
	model = defaultModel
	raw, err := conn.ReadText()
	if err != nil {
		return "", nil, err
	}
	if setup, ok := relay.ParseSetup(raw); ok {
		if setup.Model != "" {
			model = setup.Model
		}
		return model, nil, nil
	}
	return model, raw, nil
}

// upgrader honors the CORS origin allowlist; with no allowlist configured
// any origin may connect, matching the HTTP surface.
func upgrader(cfg config.Config) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if len(cfg.CORSAllowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			_, ok := cfg.CORSAllowedOrigins[origin]
			return ok
		},
	}
}
