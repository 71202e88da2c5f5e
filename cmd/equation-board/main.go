package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/equation-board/internal/config"
	"github.com/ironsheep/equation-board/internal/imaging"
	"github.com/ironsheep/equation-board/internal/ocr"
	"github.com/ironsheep/equation-board/internal/pipeline"
	"github.com/ironsheep/equation-board/internal/recognition"
	"github.com/ironsheep/equation-board/internal/server"
	"github.com/ironsheep/equation-board/internal/voice"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("equation-board %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			fmt.Printf("  Local OCR:  %t\n", ocr.Enabled)
			return
		case "--help", "-h", "help":
			fmt.Println("equation-board - capture, solve and graph handwritten equations")
			fmt.Println()
			fmt.Println("Usage: equation-board [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  EQBOARD_CONFIG=board.yaml       Config file (.yaml, .yml or .toml)")
			fmt.Println("  EQBOARD_ADDR=:3000              Listen address (PORT=3000 also works)")
			fmt.Println("  EQBOARD_LOG_LEVEL=debug         Log level: debug, info, warn, error")
			fmt.Println("  EQBOARD_RECOGNIZER=vision       Recognizer: vision or ocr")
			fmt.Println("  EQBOARD_STATIC_DIR=public       Directory with the board client")
			fmt.Println("  EQBOARD_BACKEND_URL=http://...  Forward extract, solve and graph to another server")
			fmt.Println("  OPENAI_API_KEY=...              API key for the vision recognizer")
			fmt.Println()
			fmt.Println("The ocr recognizer needs a build with -tags ocr and Tesseract installed.")
			return
		}
	}

	if err := run(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Logs go to stderr; Validate has already checked the level.
	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	logger.Info("equation board starting",
		"version", Version, "built", BuildTime, "commit", GitCommit, "config", cfg)

	lexicon, err := voice.ForLanguage(cfg.Voice.Language)
	if err != nil {
		return err
	}
	interpreter := voice.New(voice.WithLexicon(lexicon), voice.WithFuzzyThreshold(cfg.Voice.FuzzyThreshold))

	backend, recognizerName, format := newBackend(cfg, logger)
	srv := server.New(backend,
		server.WithLogger(logger),
		server.WithVersion(Version),
		server.WithRecognizerName(recognizerName),
		server.WithMaxBodyBytes(cfg.MaxBodyBytes),
		server.WithStaticDir(cfg.StaticDir),
		server.WithInterpreter(interpreter),
		server.WithSnapshotFormat(format),
	)

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
	}
	if cfg.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, cfg.MaxConnections)
	}

	httpSrv := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.ReadTimeout.Duration,
		WriteTimeout:      cfg.WriteTimeout.Duration,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("listening", "addr", ln.Addr().String())
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout.Duration)
		defer cancel()
		err := httpSrv.Shutdown(shutdownCtx)
		srv.Close()
		if err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// newBackend forwards to the configured remote server, or runs recognition
// and sampling in process.
func newBackend(cfg *config.Config, logger *slog.Logger) (pipeline.Backend, string, imaging.Format) {
	if cfg.Backend.URL != "" {
		logger.Info("forwarding to remote back end", "url", cfg.Backend.URL)
		client := &http.Client{Timeout: cfg.Backend.Timeout.Duration}
		return pipeline.NewRemote(cfg.Backend.URL, client), "remote", imaging.JPEG
	}
	recognizer, format := newRecognizer(cfg, logger)
	return pipeline.NewLocal(recognizer, cfg.Steps, cfg.DefaultRange), cfg.Recognizer, format
}

// newRecognizer builds the configured recognizer and the snapshot encoding
// it reads best.
func newRecognizer(cfg *config.Config, logger *slog.Logger) (recognition.Recognizer, imaging.Format) {
	if cfg.Recognizer == config.RecognizerOCR {
		if !ocr.Enabled {
			logger.Warn("ocr recognizer selected but this build has no OCR support; rebuild with -tags ocr")
		}
		return ocr.New(
			ocr.WithLanguage(cfg.OCR.Language),
			ocr.WithInkLevel(uint8(cfg.OCR.InkLevel)),
			ocr.WithRange(cfg.DefaultRange),
		), imaging.PNG
	}

	if cfg.Vision.APIKey == "" {
		logger.Warn("no API key configured for the vision recognizer", "env", config.EnvOpenAIKey)
	}
	return recognition.NewVisionClient(recognition.VisionConfig{
		BaseURL:   cfg.Vision.BaseURL,
		Model:     cfg.Vision.Model,
		APIKey:    cfg.Vision.APIKey,
		MaxTokens: cfg.Vision.MaxTokens,
		Timeout:   cfg.Vision.Timeout.Duration,
	}, recognition.WithLogger(logger)), imaging.JPEG
}
