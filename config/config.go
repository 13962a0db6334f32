// Package config assembles the immutable runtime configuration from
// defaults, an ini file, the environment and caller overrides, in that
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pontos-detect/pontos/artifact"
	"github.com/pontos-detect/pontos/internal/validate"
)

// Model defaults: the marine-vessel YOLO11s weights trained on
// Sentinel-2 true colour imagery.
const (
	DefaultModelURL    = "https://huggingface.co/mayrajeo/marine-vessel-yolo/resolve/main/yolo11s_tci.pt"
	DefaultModelPath   = "models/yolo11s_tci.pt"
	DefaultModelSHA256 = "81E5B661B880CEFA304A149FB7AE603FA4ECA7DF7226BEF54952D30862ED910B"
)

// DefaultFile is the ini file read from the home directory when no
// file is named explicitly.
const DefaultFile = ".pontos.ini"

var (
	// ErrInvalidConfig is returned by Load when a value cannot be parsed
	// or fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrSentinelCredentials is returned by RequireSentinel when either
	// Sentinel Hub credential is missing.
	ErrSentinelCredentials = errors.New("sentinel hub credentials not configured")
)

// Config holds every tunable of the pontos tools. Build it with Load.
type Config struct {
	ModelURL    string `ini:"model_url" validate:"required,http_url"`
	ModelPath   string `ini:"model_path" validate:"required"`
	ModelSHA256 string `ini:"model_sha256" validate:"omitempty,len=64,hexadecimal"`

	DataDir   string `ini:"data_dir" validate:"required"`
	OutputDir string `ini:"output_dir" validate:"required"`

	SentinelClientID     string `ini:"sentinel_client_id"`
	SentinelClientSecret string `ini:"sentinel_client_secret"`

	ConfidenceThreshold float64 `ini:"confidence_threshold" validate:"gte=0,lte=1"`
	PatchSize           int     `ini:"patch_size" validate:"gt=0"`
	PatchOverlap        float64 `ini:"patch_overlap" validate:"gte=0,lt=1"`
	Device              string  `ini:"device"`
	MaxWorkers          int     `ini:"max_workers" validate:"gte=1"`
	BatchSize           int     `ini:"batch_size" validate:"gte=1"`

	HTTPTimeout    time.Duration `ini:"http_timeout" validate:"gte=0"`
	UserAgent      string        `ini:"user_agent"`
	RateLimitRPS   int           `ini:"rate_limit_rps" validate:"gte=0"`
	RateLimitBurst int           `ini:"rate_limit_burst" validate:"gte=0"`
	MaxRetries     int           `ini:"max_retries" validate:"gte=0"`

	LogLevel string `ini:"log_level" validate:"oneof=debug info warn error"`
	Progress string `ini:"progress" validate:"oneof=bar log none"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ModelURL:            DefaultModelURL,
		ModelPath:           DefaultModelPath,
		ModelSHA256:         DefaultModelSHA256,
		DataDir:             "data",
		OutputDir:           "runs",
		ConfidenceThreshold: 0.05,
		PatchSize:           320,
		PatchOverlap:        0.5,
		Device:              "0",
		MaxWorkers:          4,
		BatchSize:           8,
		HTTPTimeout:         10 * time.Minute,
		UserAgent:           "pontos-model/1.0",
		MaxRetries:          2,
		LogLevel:            "info",
		Progress:            "bar",
	}
}

// Validate reports every field that holds an unusable value.
func (c Config) Validate() error {
	if err := validate.Check(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}

// ModelDescriptor describes the detection model artifact.
func (c Config) ModelDescriptor() artifact.Descriptor {
	return artifact.Descriptor{
		SourceURL: c.ModelURL,
		Path:      c.ModelPath,
		Digest:    c.ModelSHA256,
	}
}

// RequireSentinel returns ErrSentinelCredentials unless both Sentinel
// Hub credentials are set.
func (c Config) RequireSentinel() error {
	var missing []string
	if strings.TrimSpace(c.SentinelClientID) == "" {
		missing = append(missing, "sentinel_client_id")
	}
	if strings.TrimSpace(c.SentinelClientSecret) == "" {
		missing = append(missing, "sentinel_client_secret")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrSentinelCredentials, strings.Join(missing, ", "))
	}

	return nil
}

// SlogLevel maps LogLevel onto a slog level.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// RateLimited reports whether outgoing requests are throttled.
func (c Config) RateLimited() bool {
	return c.RateLimitRPS > 0
}

// String renders c with the Sentinel secret redacted.
func (c Config) String() string {
	if c.SentinelClientSecret != "" {
		c.SentinelClientSecret = "REDACTED"
	}

	type plain Config
	return fmt.Sprintf("%+v", plain(c))
}
