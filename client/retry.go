package client

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/armon/go-metrics"
	"github.com/jpillora/backoff"
)

// retryPolicy bounds how often and how patiently a failed request is
// re-sent. max is the number of retries after the first attempt.
type retryPolicy struct {
	max int
	min time.Duration
	cap time.Duration
}

func defaultRetryPolicy() retryPolicy {
	return retryPolicy{
		max: 0,
		min: 500 * time.Millisecond,
		cap: 30 * time.Second,
	}
}

func (p retryPolicy) backoff() *backoff.Backoff {
	return &backoff.Backoff{
		Jitter: true,
		Factor: 2,
		Min:    p.min,
		Max:    p.cap,
	}
}

// retryable reports whether a failed attempt is worth repeating:
// transport errors while ctx is still live, 429 and 5xx.
func retryable(ctx context.Context, resp *http.Response, err error) bool {
	if ctx.Err() != nil {
		return false
	}

	var statusErr *UnexpectedStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500
	}

	return resp == nil
}

func incrRetry() {
	metrics.IncrCounter([]string{"client", "retry"}, 1)
}
