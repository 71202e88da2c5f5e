// Package config loads server settings from an optional YAML or TOML file
// and the environment.
//
// Precedence, lowest first: built-in defaults, the file, environment
// variables. A missing file is not an error.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/equation-board/internal/sampler"
	"github.com/ironsheep/equation-board/internal/voice"
)

// Environment variables.
const (
	EnvConfigPath   = "EQBOARD_CONFIG"
	EnvAddr         = "EQBOARD_ADDR"
	EnvPort         = "PORT"
	EnvLogLevel     = "EQBOARD_LOG_LEVEL"
	EnvRecognizer   = "EQBOARD_RECOGNIZER"
	EnvStaticDir    = "EQBOARD_STATIC_DIR"
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvVisionAPIKey = "EQBOARD_VISION_API_KEY"
	EnvBackendURL   = "EQBOARD_BACKEND_URL"
)

// Recognizer back ends.
const (
	RecognizerVision = "vision"
	RecognizerOCR    = "ocr"
)

// Duration is a time.Duration written as "30s" or "1m30s".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// VisionConfig configures the hosted vision back end. BaseURL is the root of
// an OpenAI-compatible API, without /chat/completions.
type VisionConfig struct {
	BaseURL   string   `yaml:"base_url" toml:"base_url"`
	Model     string   `yaml:"model" toml:"model"`
	APIKey    string   `yaml:"api_key" toml:"api_key"`
	MaxTokens int      `yaml:"max_tokens" toml:"max_tokens"`
	Timeout   Duration `yaml:"timeout" toml:"timeout"`
}

// BackendConfig points the server at another deployment's HTTP API. When
// URL is set, extraction, solving and graphing are forwarded there and no
// local recognizer is built.
type BackendConfig struct {
	URL     string   `yaml:"url" toml:"url"`
	Timeout Duration `yaml:"timeout" toml:"timeout"`
}

// OCRConfig configures the local Tesseract back end.
type OCRConfig struct {
	Language string `yaml:"language" toml:"language"`
	InkLevel int    `yaml:"ink_level" toml:"ink_level"`
}

// VoiceConfig configures command classification.
type VoiceConfig struct {
	Language       string  `yaml:"language" toml:"language"`
	FuzzyThreshold float64 `yaml:"fuzzy_threshold" toml:"fuzzy_threshold"`
}

// Config holds all server settings.
type Config struct {
	Addr            string   `yaml:"addr" toml:"addr"`
	StaticDir       string   `yaml:"static_dir" toml:"static_dir"`
	MaxBodyBytes    int64    `yaml:"max_body_bytes" toml:"max_body_bytes"`
	MaxConnections  int      `yaml:"max_connections" toml:"max_connections"`
	ReadTimeout     Duration `yaml:"read_timeout" toml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout" toml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
	LogLevel        string   `yaml:"log_level" toml:"log_level"`

	Steps        int           `yaml:"steps" toml:"steps"`
	DefaultRange sampler.Range `yaml:"default_range" toml:"default_range"`
	Recognizer   string        `yaml:"recognizer" toml:"recognizer"`

	Backend BackendConfig `yaml:"backend" toml:"backend"`
	Vision  VisionConfig  `yaml:"vision" toml:"vision"`
	OCR     OCRConfig     `yaml:"ocr" toml:"ocr"`
	Voice   VoiceConfig   `yaml:"voice" toml:"voice"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Addr:            ":3000",
		StaticDir:       "public",
		MaxBodyBytes:    10 << 20,
		MaxConnections:  64,
		ReadTimeout:     Duration{30 * time.Second},
		WriteTimeout:    Duration{90 * time.Second},
		ShutdownTimeout: Duration{10 * time.Second},
		LogLevel:        "info",
		Steps:           sampler.DefaultSteps,
		DefaultRange:    sampler.DefaultRange,
		Recognizer:      RecognizerVision,
		Vision: VisionConfig{
			BaseURL:   "https://api.openai.com/v1",
			Model:     "gpt-4o",
			MaxTokens: 300,
			Timeout:   Duration{60 * time.Second},
		},
		Backend: BackendConfig{
			Timeout: Duration{90 * time.Second},
		},
		OCR: OCRConfig{
			Language: "eng",
			InkLevel: 160,
		},
		Voice: VoiceConfig{
			Language: "all",
		},
	}
}

// Load reads the file at path over the defaults and applies environment
// overrides from os.Getenv. An empty path uses $EQBOARD_CONFIG; a leading ~
// is expanded to the home directory.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.Getenv)
}

// LoadWithEnv is Load with an explicit environment lookup.
func LoadWithEnv(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getenv(EnvConfigPath)
	}
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv(getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("failed to expand config path %q: %w", path, err)
	}

	data, err := os.ReadFile(expanded)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(expanded)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to parse %s: %w", expanded, err)
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(c); err != nil {
			return fmt.Errorf("failed to parse %s: %w", expanded, err)
		}
	default:
		return fmt.Errorf("unsupported config format %q (want .yaml, .yml or .toml)", ext)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if port := getenv(EnvPort); port != "" {
		c.Addr = ":" + port
	}
	if addr := getenv(EnvAddr); addr != "" {
		c.Addr = addr
	}
	if level := getenv(EnvLogLevel); level != "" {
		c.LogLevel = level
	}
	if r := getenv(EnvRecognizer); r != "" {
		c.Recognizer = r
	}
	if dir := getenv(EnvStaticDir); dir != "" {
		c.StaticDir = dir
	}
	if key := getenv(EnvOpenAIKey); key != "" {
		c.Vision.APIKey = key
	}
	if key := getenv(EnvVisionAPIKey); key != "" {
		c.Vision.APIKey = key
	}
	if u := getenv(EnvBackendURL); u != "" {
		c.Backend.URL = u
	}
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("max_body_bytes must be positive, got %d", c.MaxBodyBytes))
	}
	if c.MaxConnections < 0 {
		errs = append(errs, fmt.Errorf("max_connections must not be negative, got %d", c.MaxConnections))
	}
	if c.Steps < 1 {
		errs = append(errs, fmt.Errorf("steps must be at least 1, got %d", c.Steps))
	}
	if err := c.DefaultRange.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("default_range: %w", err))
	}
	switch c.Recognizer {
	case RecognizerVision, RecognizerOCR:
	default:
		errs = append(errs, fmt.Errorf("recognizer must be %q or %q, got %q", RecognizerVision, RecognizerOCR, c.Recognizer))
	}
	if c.Backend.URL != "" {
		if err := checkHTTPURL(c.Backend.URL); err != nil {
			errs = append(errs, fmt.Errorf("backend.url: %w", err))
		}
		if c.Backend.Timeout.Duration <= 0 {
			errs = append(errs, fmt.Errorf("backend.timeout must be positive, got %s", c.Backend.Timeout.Duration))
		}
	}
	if c.Recognizer == RecognizerVision && c.Vision.BaseURL != "" {
		if err := checkHTTPURL(c.Vision.BaseURL); err != nil {
			errs = append(errs, fmt.Errorf("vision.base_url: %w", err))
		}
	}
	if c.OCR.InkLevel < 0 || c.OCR.InkLevel > 255 {
		errs = append(errs, fmt.Errorf("ocr.ink_level must be within 0-255, got %d", c.OCR.InkLevel))
	}
	if _, err := voice.ForLanguage(c.Voice.Language); err != nil {
		errs = append(errs, fmt.Errorf("voice.language: %w", err))
	}
	if c.Voice.FuzzyThreshold < 0 || c.Voice.FuzzyThreshold > 1 {
		errs = append(errs, fmt.Errorf("voice.fuzzy_threshold must be within 0-1, got %v", c.Voice.FuzzyThreshold))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func checkHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("want an http or https URL, got %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// LogValue reports the settings with the API key redacted.
func (c *Config) LogValue() slog.Value {
	key := ""
	if c.Vision.APIKey != "" {
		key = "[redacted]"
	}
	return slog.GroupValue(
		slog.String("addr", c.Addr),
		slog.String("static_dir", c.StaticDir),
		slog.Int64("max_body_bytes", c.MaxBodyBytes),
		slog.Int("max_connections", c.MaxConnections),
		slog.String("recognizer", c.Recognizer),
		slog.String("backend_url", c.Backend.URL),
		slog.Int("steps", c.Steps),
		slog.Any("default_range", c.DefaultRange),
		slog.String("vision_base_url", c.Vision.BaseURL),
		slog.String("vision_model", c.Vision.Model),
		slog.String("vision_api_key", key),
		slog.String("voice_language", c.Voice.Language),
	)
}
