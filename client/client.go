package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/pontos-detect/pontos/client/throttle"
)

// Client wraps the std-lib *http.Client.
// It sets a default *http.Client and *http.Transport, which
// can be customized via optional funcs.
type Client struct {
	c       *http.Client
	logger  *slog.Logger
	tracer  trace.Tracer
	retry   retryPolicy
	headers map[string][]string
}

// Build creates a Client from the given options.
func Build(optFns ...Option) (*Client, error) {
	client := &Client{
		c:      &http.Client{},
		logger: slog.Default(),
		tracer: noop.NewTracerProvider().Tracer("no-op tracer"),
		retry:  defaultRetryPolicy(),
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	if opts.client != nil {
		client.c = opts.client
	}

	if opts.logger != nil {
		client.logger = opts.logger
	}

	if opts.tracer != nil {
		client.tracer = opts.tracer
	}

	if opts.retry != nil {
		client.retry = *opts.retry
	}

	if len(opts.headers) > 0 {
		client.headers = opts.headers
	}

	if opts.timeout != nil {
		client.c.Timeout = *opts.timeout
	}

	var transport http.RoundTripper
	switch {
	case opts.rt != nil:
		transport = opts.rt
	case opts.client != nil && opts.client.Transport != nil:
		transport = opts.client.Transport
	default:
		transport = http.DefaultTransport
	}
	if opts.userAgent != "" {
		transport = userAgent{value: opts.userAgent, base: transport}
	}
	if opts.throttle != nil {
		rt, err := throttle.NewRoundTripper(*opts.throttle, func() *slog.Logger { return client.logger }, transport)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		transport = rt
	}
	client.c.Transport = transport

	return client, nil
}

// Fetch issues a GET for rawURL and, on a 2xx response, hands the body
// and its advertised length (-1 if unknown) to fn. Transport errors, 429
// and 5xx responses are retried per the client's retry policy before
// any body is handed out; once fn runs, its error is returned as is.
func (c *Client) Fetch(ctx context.Context, rawURL string, fn func(body io.Reader, size int64) error) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parsing url: %w", err)
	}

	ctx, span := c.tracer.Start(ctx, "client.Fetch", trace.WithAttributes(attribute.String("http.url", u.Redacted())))
	defer span.End()

	resp, err := c.do(ctx, u)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	return c.handle(resp, func(resp *http.Response) error {
		return fn(resp.Body, resp.ContentLength)
	})
}

// Request instantiates a GET *http.Request for reqURL, bound to ctx.
func Request(ctx context.Context, reqURL *url.URL, opts ...RequestOption) (*http.Request, error) {
	var settings requestOpts
	for _, opt := range opts {
		if err := opt(&settings); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("instantiating request: %w", err)
	}

	req.Header.Set("Accept", "application/octet-stream")
	for k, v := range settings.headers {
		for _, element := range v {
			req.Header.Add(k, element)
		}
	}

	return req, nil
}

// do sends the request, retrying retryable failures. A returned response
// always carries a 2xx status.
func (c *Client) do(ctx context.Context, u *url.URL) (*http.Response, error) {
	b := c.retry.backoff()

	for attempt := 0; ; attempt++ {
		req, err := Request(ctx, u, WithRequestHeaders(c.headers))
		if err != nil {
			return nil, err
		}

		resp, err := c.c.Do(req)
		if err != nil {
			err = fmt.Errorf("exec http do: %w", err)
		} else if resp.StatusCode < 200 || resp.StatusCode > 299 {
			err = c.statusError(resp)
		}

		if err == nil {
			return resp, nil
		}

		if attempt >= c.retry.max || !retryable(ctx, resp, err) {
			return nil, err
		}

		d := b.Duration()
		c.logger.Warn("retrying request", "url", u.Redacted(), "attempt", attempt+1, "delay", d.String(), "error", err)
		incrRetry()

		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("waiting to retry: %w: %w", ctx.Err(), err)
		case <-timer.C:
		}
	}
}

// handle runs fn on a successful response, then drains and closes
// the body.
func (c *Client) handle(resp *http.Response, fn execFn) error {
	discardBody := true
	defer func() {
		if discardBody {
			if _, err := io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainSize)); err != nil {
				c.logger.Error("failed to discard unused body", "error", err)
			}
		}
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("failed to close response body", "error", err)
		}
	}()

	if err := fn(resp); err != nil {
		discardBody = false
		return fmt.Errorf("exec fn: %w", err)
	}

	return nil
}

// statusError reads a bounded part of the body into an
// *UnexpectedStatusError and closes the response.
func (c *Client) statusError(resp *http.Response) error {
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("failed to close response body", "error", err)
		}
	}()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrBodySize))
	if err != nil {
		b = []byte("unable to read body")
	}

	statusErr := &UnexpectedStatusError{
		StatusCode: resp.StatusCode,
		Body:       string(b),
		Err:        ErrUnexpectedStatusCode,
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		statusErr.Err = fmt.Errorf("%w: %w", ErrAuthFailure, ErrUnexpectedStatusCode)
	}

	return statusErr
}
