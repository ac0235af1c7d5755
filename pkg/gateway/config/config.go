package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultGeminiModel      = "gemini-2.0-flash-exp"
	defaultNijivoiceBaseURL = "https://api.nijivoice.com/api/platform/v1"
	defaultOpenAIBaseURL    = "https://api.openai.com"
	defaultRealtimeModel    = "gpt-4o-realtime-preview-2024-12-17"
)

type Storage struct {
	Endpoint   string
	Region     string
	Bucket     string
	AccessKey  string
	SecretKey  string
	PresignTTL time.Duration
}

// Enabled reports whether TTS audio should be re-hosted through object
// storage instead of being inlined as base64.
func (s Storage) Enabled() bool {
	return s.Bucket != ""
}

type Config struct {
	Addr string

	// CORS allowlist; empty disables cross-origin access.
	CORSAllowedOrigins map[string]struct{}

	// Gemini Live (video-chat relay).
	GeminiAPIKey string
	GeminiModel  string

	// OpenAI Realtime (ephemeral session issuance).
	OpenAIAPIKey  string
	OpenAIBaseURL string
	RealtimeModel string

	// nijivoice TTS.
	NijivoiceAPIKey  string
	NijivoiceBaseURL string
	VoiceActorID     string
	TTSFormat        string
	TTSSpeed         string

	Storage Storage

	// In-memory limits (per client address).
	LimitRPS              float64
	LimitBurst            int
	MaxConcurrentSessions int

	// Operational defaults.
	ReadHeaderTimeout   time.Duration
	ReadTimeout         time.Duration
	ShutdownGracePeriod time.Duration
	WSWriteTimeout      time.Duration
	TTSRequestTimeout   time.Duration
	IssuerTimeout       time.Duration
}

func LoadFromEnv() (Config, error) {
	cfg := Config{
		Addr:               envOr("RTGW_ADDR", ":8000"),
		CORSAllowedOrigins: make(map[string]struct{}),

		GeminiAPIKey: strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:  envOr("RTGW_GEMINI_MODEL", defaultGeminiModel),

		OpenAIAPIKey:  strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIBaseURL: envOr("RTGW_OPENAI_BASE_URL", defaultOpenAIBaseURL),
		RealtimeModel: envOr("RTGW_REALTIME_MODEL", defaultRealtimeModel),

		NijivoiceAPIKey:  strings.TrimSpace(os.Getenv("NIJIVOICE_API_KEY")),
		NijivoiceBaseURL: envOr("RTGW_NIJIVOICE_BASE_URL", defaultNijivoiceBaseURL),
		VoiceActorID:     envOr("RTGW_NIJIVOICE_VOICE_ACTOR_ID", "16e979a8-cd0f-49d4-a4c4-7a25aa42e184"),
		TTSFormat:        envOr("RTGW_TTS_FORMAT", "wav"),
		TTSSpeed:         envOr("RTGW_TTS_SPEED", "0.8"),

		Storage: Storage{
			Endpoint:   envOr("RTGW_STORAGE_ENDPOINT", ""),
			Region:     envOr("RTGW_STORAGE_REGION", "auto"),
			Bucket:     envOr("RTGW_STORAGE_BUCKET", ""),
			AccessKey:  envOr("RTGW_STORAGE_ACCESS_KEY", ""),
			SecretKey:  envOr("RTGW_STORAGE_SECRET_KEY", ""),
			PresignTTL: envDurationOr("RTGW_STORAGE_PRESIGN_TTL", 15*time.Minute),
		},

		LimitRPS:              envFloat64Or("RTGW_RATE_LIMIT_RPS", 2.0),
		LimitBurst:            envIntOr("RTGW_RATE_LIMIT_BURST", 4),
		MaxConcurrentSessions: envIntOr("RTGW_MAX_CONCURRENT_SESSIONS", 4),

		ReadHeaderTimeout:   envDurationOr("RTGW_READ_HEADER_TIMEOUT", 10*time.Second),
		ReadTimeout:         envDurationOr("RTGW_READ_TIMEOUT", 0),
		ShutdownGracePeriod: envDurationOr("RTGW_SHUTDOWN_GRACE_PERIOD", 30*time.Second),
		WSWriteTimeout:      envDurationOr("RTGW_WS_WRITE_TIMEOUT", 5*time.Second),
		TTSRequestTimeout:   envDurationOr("RTGW_TTS_REQUEST_TIMEOUT", 30*time.Second),
		IssuerTimeout:       envDurationOr("RTGW_ISSUER_TIMEOUT", 15*time.Second),
	}

	for _, origin := range splitCSV(os.Getenv("RTGW_CORS_ORIGINS")) {
		cfg.CORSAllowedOrigins[origin] = struct{}{}
	}

	if strings.TrimSpace(cfg.GeminiModel) == "" {
		return Config{}, fmt.Errorf("RTGW_GEMINI_MODEL must not be empty")
	}
	if strings.TrimSpace(cfg.OpenAIBaseURL) == "" {
		return Config{}, fmt.Errorf("RTGW_OPENAI_BASE_URL must not be empty")
	}
	if strings.TrimSpace(cfg.NijivoiceBaseURL) == "" {
		return Config{}, fmt.Errorf("RTGW_NIJIVOICE_BASE_URL must not be empty")
	}
	if strings.TrimSpace(cfg.VoiceActorID) == "" {
		return Config{}, fmt.Errorf("RTGW_NIJIVOICE_VOICE_ACTOR_ID must not be empty")
	}
	if cfg.Storage.Enabled() {
		if cfg.Storage.AccessKey == "" || cfg.Storage.SecretKey == "" {
			return Config{}, fmt.Errorf("RTGW_STORAGE_ACCESS_KEY and RTGW_STORAGE_SECRET_KEY must be set when RTGW_STORAGE_BUCKET is set")
		}
		if cfg.Storage.PresignTTL <= 0 {
			return Config{}, fmt.Errorf("RTGW_STORAGE_PRESIGN_TTL must be > 0")
		}
	}
	if cfg.LimitRPS < 0 {
		return Config{}, fmt.Errorf("RTGW_RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.LimitBurst < 0 {
		return Config{}, fmt.Errorf("RTGW_RATE_LIMIT_BURST must be >= 0")
	}
	if cfg.MaxConcurrentSessions < 0 {
		return Config{}, fmt.Errorf("RTGW_MAX_CONCURRENT_SESSIONS must be >= 0")
	}
	if cfg.ReadHeaderTimeout <= 0 {
		return Config{}, fmt.Errorf("RTGW_READ_HEADER_TIMEOUT must be > 0")
	}
	if cfg.ReadTimeout < 0 {
		return Config{}, fmt.Errorf("RTGW_READ_TIMEOUT must be >= 0")
	}
	if cfg.ShutdownGracePeriod <= 0 {
		return Config{}, fmt.Errorf("RTGW_SHUTDOWN_GRACE_PERIOD must be > 0")
	}
	if cfg.WSWriteTimeout <= 0 {
		return Config{}, fmt.Errorf("RTGW_WS_WRITE_TIMEOUT must be > 0")
	}
	if cfg.TTSRequestTimeout <= 0 {
		return Config{}, fmt.Errorf("RTGW_TTS_REQUEST_TIMEOUT must be > 0")
	}
	if cfg.IssuerTimeout <= 0 {
		return Config{}, fmt.Errorf("RTGW_ISSUER_TIMEOUT must be > 0")
	}

	return cfg, nil
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envIntOr(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func envFloat64Or(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return n
}

func envDurationOr(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}

func splitCSV(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
