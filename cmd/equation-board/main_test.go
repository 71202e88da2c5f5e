package main

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ironsheep/equation-board/internal/config"
	"github.com/ironsheep/equation-board/internal/imaging"
	"github.com/ironsheep/equation-board/internal/pipeline"
	"github.com/ironsheep/equation-board/internal/sampler"
	"github.com/ironsheep/equation-board/internal/server"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewBackend_Local(t *testing.T) {
	cfg := config.Default()

	backend, name, format := newBackend(cfg, quietLogger())
	if _, ok := backend.(*pipeline.Local); !ok {
		t.Fatalf("backend: got %T, want *pipeline.Local", backend)
	}
	if name != config.RecognizerVision {
		t.Errorf("recognizer name: got %q, want %q", name, config.RecognizerVision)
	}
	if format != imaging.JPEG {
		t.Errorf("snapshot format: got %v, want JPEG", format)
	}
}

func TestNewBackend_Remote(t *testing.T) {
	upstream := httptest.NewServer(server.New(
		pipeline.NewLocal(nil, sampler.DefaultSteps, sampler.DefaultRange),
		server.WithLogger(quietLogger()),
	).Handler())
	defer upstream.Close()

	cfg := config.Default()
	cfg.Backend.URL = upstream.URL
	cfg.Backend.Timeout = config.Duration{Duration: 5 * time.Second}

	backend, name, _ := newBackend(cfg, quietLogger())
	if _, ok := backend.(*pipeline.Remote); !ok {
		t.Fatalf("backend: got %T, want *pipeline.Remote", backend)
	}
	if name != "remote" {
		t.Errorf("recognizer name: got %q, want remote", name)
	}

	result, err := backend.Solve(context.Background(), "y = 2 + 3", nil)
	if err != nil {
		t.Fatalf("Solve through the remote back end failed: %v", err)
	}
	if result != 5 {
		t.Errorf("result: got %v, want 5", result)
	}
}
