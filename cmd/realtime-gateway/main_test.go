package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/omochi-ai/realtime-gateway/pkg/gateway/config"
	gatewayserver "github.com/omochi-ai/realtime-gateway/pkg/gateway/server"
)

func TestRunMain_ReturnsNonZeroWhenConfigLoadFails(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	exitCode := runMain(context.Background(), &stderr, gatewayDeps{
		loadConfig: func() (config.Config, error) {
			return config.Config{}, errors.New("boom")
		},
		newGateway: func(ctx context.Context, cfg config.Config, logger *slog.Logger) (*gatewayserver.Server, error) {
			t.Fatalf("newGateway should not be called when config load fails")
			return nil, nil
		},
		signalNotify: func(c chan<- os.Signal, sig ...os.Signal) {},
		signalStop:   func(c chan<- os.Signal) {},
	})

	if exitCode != 1 {
		t.Fatalf("exitCode=%d, want 1", exitCode)
	}
	if got := stderr.String(); got == "" {
		t.Fatalf("expected stderr output for startup error")
	}
}

func TestRunGateway_MissingDeps(t *testing.T) {
	t.Parallel()

	err := runGateway(context.Background(), nil, gatewayDeps{})
	if err == nil {
		t.Fatal("want error for empty deps")
	}
}

func TestRunGateway_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	deps := gatewayDeps{
		loadConfig: func() (config.Config, error) {
			return config.Config{
				Addr:                "127.0.0.1:0",
				GeminiModel:         "gemini-2.0-flash-exp",
				RealtimeModel:       "gpt-4o-realtime-preview-2024-12-17",
				ReadHeaderTimeout:   time.Second,
				ShutdownGracePeriod: time.Second,
				WSWriteTimeout:      time.Second,
				TTSRequestTimeout:   time.Second,
				IssuerTimeout:       time.Second,
			}, nil
		},
		newGateway:   gatewayserver.New,
		signalNotify: func(c chan<- os.Signal, sig ...os.Signal) {},
		signalStop:   func(c chan<- os.Signal) {},
	}

	done := make(chan error, 1)
	go func() {
		done <- runGateway(ctx, slog.New(slog.NewJSONHandler(bytes.NewBuffer(nil), nil)), deps)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runGateway: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runGateway did not stop")
	}
}
