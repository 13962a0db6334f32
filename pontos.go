// Package pontos wires configuration into the model artifact
// acquisition stack.
package pontos

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/pontos-detect/pontos/artifact"
	"github.com/pontos-detect/pontos/client"
	"github.com/pontos-detect/pontos/config"
)

// Retry backoff bounds used for config-driven clients.
const (
	RetryMinDelay = 500 * time.Millisecond
	RetryMaxDelay = 30 * time.Second
)

// NewClient instantiates a *client.Client configured from cfg. opts are
// applied after the configured ones and take precedence.
func NewClient(cfg config.Config, logger *slog.Logger, opts ...client.Option) (*client.Client, error) {
	base := []client.Option{
		client.WithTimeout(cfg.HTTPTimeout),
		client.WithRetry(cfg.MaxRetries, RetryMinDelay, RetryMaxDelay),
	}
	if cfg.UserAgent != "" {
		base = append(base, client.WithUserAgent(cfg.UserAgent))
	}
	if cfg.RateLimited() {
		base = append(base, client.WithThrottle(cfg.RateLimitRPS, cfg.RateLimitBurst))
	}
	if logger != nil {
		base = append(base, client.WithLogger(logger))
	}

	return client.Build(append(base, opts...)...)
}

// NewAcquirer returns a Fetcher downloading through a client built
// from cfg. Acquire it with cfg.ModelDescriptor() to get the model.
func NewAcquirer(cfg config.Config, logger *slog.Logger, opts ...artifact.Option) (*artifact.Fetcher, error) {
	c, err := NewClient(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("building client: %w", err)
	}

	if logger != nil {
		opts = append([]artifact.Option{artifact.WithLogger(logger)}, opts...)
	}

	return artifact.NewFetcher(c, opts...)
}
