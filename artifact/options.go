package artifact

import (
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// Option is a functional option for configuring a [Fetcher] via [NewFetcher].
type Option func(*options) error

type options struct {
	logger   *slog.Logger
	progress ProgressReporter
	observer StateObserver
	tracer   trace.Tracer
}

// WithLogger injects a custom [slog.Logger] into the [Fetcher].
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		o.logger = logger
		return nil
	}
}

// WithProgress reports transfer progress to r. Reporters that also
// implement [Finisher] are told when each transfer ends.
func WithProgress(r ProgressReporter) Option {
	return func(o *options) error {
		if r == nil {
			return errors.New("progress reporter must not be nil")
		}
		o.progress = r
		return nil
	}
}

// WithStateObserver registers fn to be called on every state transition.
func WithStateObserver(fn StateObserver) Option {
	return func(o *options) error {
		o.observer = fn
		return nil
	}
}

// WithTracer records acquisitions and verifications as spans on t.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) error {
		if t == nil {
			return errors.New("tracer must not be nil")
		}
		o.tracer = t
		return nil
	}
}
