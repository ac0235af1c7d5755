// Package server assembles the gateway's HTTP surface: routing, middleware,
// and the provider clients behind each endpoint.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/omochi-ai/realtime-gateway/pkg/gateway/config"
	"github.com/omochi-ai/realtime-gateway/pkg/gateway/handlers"
	"github.com/omochi-ai/realtime-gateway/pkg/gateway/mw"
	"github.com/omochi-ai/realtime-gateway/pkg/gateway/ratelimit"
	"github.com/omochi-ai/realtime-gateway/pkg/persona"
	"github.com/omochi-ai/realtime-gateway/pkg/provider/gemini"
	"github.com/omochi-ai/realtime-gateway/pkg/provider/openai"
	"github.com/omochi-ai/realtime-gateway/pkg/relay"
	"github.com/omochi-ai/realtime-gateway/pkg/storage"
	"github.com/omochi-ai/realtime-gateway/pkg/tools"
	"github.com/omochi-ai/realtime-gateway/pkg/voice/tts"
)

type Server struct {
	cfg    config.Config
	logger *slog.Logger
	mux    *http.ServeMux

	limiter  *ratelimit.Limiter
	registry *tools.Registry
	dial     handlers.SessionDialer
	issuer   handlers.TokenIssuer
	tts      relay.SpeechSynthesizer
	store    relay.AudioStore
}

// New wires the provider clients from config. Endpoints whose provider key
// is missing stay routable and fail per-request, matching /readyz reporting.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	registry, err := tools.DefaultRegistry()
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		mux:      http.NewServeMux(),
		registry: registry,
		limiter: ratelimit.New(ratelimit.Config{
			RPS:                   cfg.LimitRPS,
			Burst:                 cfg.LimitBurst,
			MaxConcurrentSessions: cfg.MaxConcurrentSessions,
		}),
	}

	if cfg.GeminiAPIKey != "" {
		s.dial = func(ctx context.Context, model string) (relay.Session, error) {
			return gemini.Connect(ctx, gemini.Options{
				APIKey:            cfg.GeminiAPIKey,
				Model:             model,
				SystemInstruction: persona.InstructionWithTools,
				Tools:             registry,
			})
		}
	}
	if cfg.OpenAIAPIKey != "" {
		s.issuer = openai.NewRealtime(cfg.OpenAIAPIKey,
			openai.WithBaseURL(cfg.OpenAIBaseURL),
			openai.WithHTTPClient(&http.Client{Timeout: cfg.IssuerTimeout}),
		)
	}
	if cfg.NijivoiceAPIKey != "" {
		s.tts = tts.NewNijivoice(cfg.NijivoiceAPIKey, cfg.VoiceActorID,
			tts.WithBaseURL(cfg.NijivoiceBaseURL),
			tts.WithFormat(cfg.TTSFormat),
			tts.WithSpeed(cfg.TTSSpeed),
			tts.WithHTTPClient(&http.Client{Timeout: cfg.TTSRequestTimeout}),
		)
	}
	if cfg.Storage.Enabled() {
		store, err := storage.New(ctx, storage.Options{
			Region:     cfg.Storage.Region,
			Bucket:     cfg.Storage.Bucket,
			Endpoint:   cfg.Storage.Endpoint,
			AccessKey:  cfg.Storage.AccessKey,
			SecretKey:  cfg.Storage.SecretKey,
			PresignTTL: cfg.Storage.PresignTTL,
			KeyPrefix:  "voice",
		})
		if err != nil {
			return nil, err
		}
		s.store = store
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.mux.Handle("/healthz", handlers.HealthHandler{})
	s.mux.Handle("/readyz", handlers.ReadyHandler{Config: s.cfg})

	s.mux.Handle("/realtime-apis/video-chat", handlers.VideoChatHandler{
		Config:  s.cfg,
		Logger:  s.logger,
		Limiter: s.limiter,
		Dial:    s.dial,
		Tools:   s.registry,
		TTS:     s.tts,
		Store:   s.store,
	})
	s.mux.Handle("/realtime-apis/gemini", handlers.GeminiHandler{
		Config:  s.cfg,
		Logger:  s.logger,
		Limiter: s.limiter,
		Dial:    s.dial,
		Tools:   s.registry,
	})
	s.mux.Handle("/realtime-apis/voice-chat/sessions", handlers.VoiceChatSessionHandler{
		Config: s.cfg,
		Logger: s.logger,
		Issuer: s.issuer,
	})

	s.mux.Handle("/", handlers.NotFoundHandler{})
}

func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = mw.RateLimit(s.limiter, h)
	h = mw.CORS(s.cfg.CORSAllowedOrigins, h)
	h = mw.Recover(s.logger, h)
	h = mw.AccessLog(s.logger, h)
	h = mw.RequestID(h)
	return h
}

// ListenAndServe runs the HTTP server until ctx is cancelled, then drains
// within the configured grace period.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		ReadTimeout:       s.cfg.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	grace := s.cfg.ShutdownGracePeriod
	if grace <= 0 {
		grace = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
