package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/omochi-ai/realtime-gateway/pkg/gateway/apierror"
	"github.com/omochi-ai/realtime-gateway/pkg/gateway/config"
	"github.com/omochi-ai/realtime-gateway/pkg/gateway/mw"
	"github.com/omochi-ai/realtime-gateway/pkg/gateway/ratelimit"
	"github.com/omochi-ai/realtime-gateway/pkg/relay"
	"github.com/omochi-ai/realtime-gateway/pkg/tools"
)

// GeminiHandler is the plain relay endpoint: no speech synthesis, no audio
// re-hosting. The client may lead with a {"setup": ...} frame to pick the
// model; any other first frame is relayed as-is.
type GeminiHandler struct {
	Config  config.Config
	Logger  *slog.Logger
	Limiter *ratelimit.Limiter
	Dial    SessionDialer
	Tools   *tools.Registry
}

func (h GeminiHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reqID, _ := mw.RequestIDFrom(r.Context())
	logger = logger.With("request_id", reqID, "client", mw.ClientKey(r))

	if h.Config.GeminiAPIKey == "" || h.Dial == nil {
		logger.Error("gemini relay requested but not configured")
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
		logger.Error("websocket upgrade", "error", err)
		return
	}
	conn := relay.NewWSConn(ws, h.Config.WSWriteTimeout)
	defer conn.Close()

	model, initial, err := readLeadingSetup(conn, h.Config.GeminiModel)
	if err != nil {
		logger.Info("client left before setup")
		return
	}

	session, err := h.Dial(r.Context(), model)
	if err != nil {
		logger.Error("open provider session", "error", err)
		return
	}
	defer session.Close()

	logger.Info("gemini relay opened", "model", model)
	err = relay.Run(r.Context(), conn, session, relay.Config{
		Logger:       logger,
		Tools:        h.Tools,
		InitialFrame: initial,
	})
	if err != nil {
		logger.Error("gemini relay failed", "error", err)
		return
	}
	logger.Info("gemini relay closed")
}
