package client

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/pontos-detect/pontos/client/throttle"
)

// Option is a functional option for configuring a [Client] via [Build].
type Option func(*options) error
type options struct {
	client    *http.Client
	rt        http.RoundTripper
	timeout   *time.Duration
	userAgent string
	throttle  *throttle.Config
	retry     *retryPolicy
	headers   map[string][]string
	logger    *slog.Logger
	tracer    trace.Tracer
}

// WithClient replaces the default [http.Client] used by the [Client].
func WithClient(hc *http.Client) Option {
	return func(c *options) error {
		if hc == nil {
			return errors.New("client must not be nil")
		}
		c.client = hc
		return nil
	}
}

// WithTransport sets a custom [http.RoundTripper] as the base transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *options) error {
		if rt == nil {
			return errors.New("transport must not be nil")
		}
		c.rt = rt
		return nil
	}
}

// WithTimeout sets the overall request timeout on the underlying [http.Client].
// The timeout covers reading the whole body, so it must allow for the
// largest artifact. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *options) error {
		if d < 0 {
			return errors.New("timeout must not be negative")
		}
		c.timeout = &d
		return nil
	}
}

// WithUserAgent adds a persistent User-Agent header to all outgoing requests.
func WithUserAgent(header string) Option {
	return func(c *options) error {
		c.userAgent = header
		return nil
	}
}

// WithThrottle enables token-bucket rate limiting with the given requests per second and burst capacity.
func WithThrottle(rps, burst int) Option {
	return func(c *options) error {
		cfg := throttle.Config{RPS: rps, Burst: burst}
		if err := cfg.Validate(); err != nil {
			return err
		}
		c.throttle = &cfg
		return nil
	}
}

// WithRetry re-sends a request up to maxRetries times when it fails with a
// transport error, 429 or 5xx, waiting a jittered exponential backoff
// starting at minDelay and capped at maxDelay.
func WithRetry(maxRetries int, minDelay, maxDelay time.Duration) Option {
	return func(c *options) error {
		if maxRetries < 0 {
			return fmt.Errorf("max retries[%d] must not be negative", maxRetries)
		}
		if minDelay <= 0 || maxDelay < minDelay {
			return fmt.Errorf("retry delays min[%s] max[%s] are invalid", minDelay, maxDelay)
		}
		c.retry = &retryPolicy{max: maxRetries, min: minDelay, cap: maxDelay}
		return nil
	}
}

// WithHeaders adds headers to every request, e.g. an Authorization
// token for gated model repositories.
func WithHeaders(headers map[string][]string) Option {
	return func(c *options) error {
		c.headers = headers
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Client].
func WithLogger(logger *slog.Logger) Option {
	return func(c *options) error {
		c.logger = logger
		return nil
	}
}

// WithTracer records every fetch as a span on t.
func WithTracer(t trace.Tracer) Option {
	return func(c *options) error {
		if t == nil {
			return errors.New("tracer must not be nil")
		}
		c.tracer = t
		return nil
	}
}

// userAgent is an http.RoundTripper, enabling the persistent User-Agent header.
type userAgent struct {
	value string
	base  http.RoundTripper
}

func (ua userAgent) RoundTrip(r *http.Request) (*http.Response, error) {
	cpy := r.Clone(r.Context())
	cpy.Header.Set("User-Agent", ua.value)
	return ua.base.RoundTrip(cpy)
}

// RequestOption is a functional option for [Request].
type RequestOption func(options *requestOpts) error

type requestOpts struct {
	headers map[string][]string
}

// WithRequestHeaders adds custom headers to the outgoing request.
func WithRequestHeaders(headers map[string][]string) RequestOption {
	return func(opts *requestOpts) error {
		opts.headers = headers

		return nil
	}
}
