package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/armon/go-metrics"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// tempPattern names the staging file written beside the artifact.
const tempPattern = ".pontos-dl-*"

// Transport performs the GET for an artifact. On a 2xx response it
// calls fn with the body and the advertised length (-1 if unknown) and
// returns fn's error; anything else is returned as an error without
// calling fn.
type Transport interface {
	Fetch(ctx context.Context, rawURL string, fn func(body io.Reader, size int64) error) error
}

// Fetcher acquires artifacts: it reuses a verified local copy when one
// exists and otherwise downloads, verifies and installs a fresh one.
type Fetcher struct {
	transport Transport
	verifier  *Verifier
	logger    *slog.Logger
	progress  ProgressReporter
	observer  StateObserver
	tracer    trace.Tracer
}

// NewFetcher builds a Fetcher downloading through transport.
func NewFetcher(transport Transport, optFns ...Option) (*Fetcher, error) {
	if transport == nil {
		return nil, errors.New("transport must not be nil")
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying fetcher option: %w", err)
		}
	}

	if opts.logger == nil {
		opts.logger = slog.Default()
	}
	if opts.tracer == nil {
		opts.tracer = noop.NewTracerProvider().Tracer("no-op tracer")
	}
	if opts.progress == nil {
		opts.progress = discardProgress{}
	}

	return &Fetcher{
		transport: transport,
		verifier:  &Verifier{logger: opts.logger, tracer: opts.tracer},
		logger:    opts.logger,
		progress:  opts.progress,
		observer:  opts.observer,
		tracer:    opts.tracer,
	}, nil
}

// Verifier returns the Verifier the Fetcher checks artifacts with.
func (f *Fetcher) Verifier() *Verifier {
	return f.verifier
}

// Acquire makes desc available at desc.Path and returns that path.
//
// An existing file is reused without network access when force is
// false and it passes verification; a file that fails is deleted and
// downloaded again. With force set any existing file is replaced.
//
// Downloads are staged in a temporary file in the same directory and
// only renamed into place after verification, so a failed call never
// leaves a partial or corrupt artifact at desc.Path. Errors match
// ErrDownloadFailed, ErrIntegrityFailure or ErrInvalidDescriptor.
func (f *Fetcher) Acquire(ctx context.Context, desc Descriptor, force bool) (path string, err error) {
	if err := desc.Validate(); err != nil {
		return "", err
	}

	id := uuid.NewString()
	ctx, span := f.tracer.Start(ctx, "artifact.Acquire", trace.WithAttributes(
		attribute.String("acquisition.id", id),
		attribute.String("artifact.path", desc.Path),
		attribute.String("artifact.url", desc.SourceURL),
		attribute.Bool("artifact.force", force),
	))
	defer span.End()
	defer metrics.MeasureSince([]string{"artifact", "acquire"}, time.Now())

	a := &acquisition{
		desc:     desc,
		logger:   f.logger.With("acquisition", id, "path", desc.Path),
		observer: f.observer,
		span:     span,
	}

	defer func() {
		if err != nil {
			a.to(Failed)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			metrics.IncrCounter([]string{"artifact", "acquire", "failed"}, 1)
		}
	}()

	exists, err := fileExists(desc.Path)
	if err != nil {
		return "", fmt.Errorf("checking artifact: %w", err)
	}

	switch {
	case !exists:
		a.to(NotPresent)

	case !force:
		a.logger.Info("artifact already exists")
		a.to(Verifying)

		res := f.verifier.Verify(ctx, desc.Path, desc.Digest)
		if res.OK() {
			a.to(Ready)
			metrics.IncrCounter([]string{"artifact", "acquire", "cached"}, 1)
			return desc.Path, nil
		}

		a.logger.Warn("existing artifact failed checksum, re-downloading")
		if err := os.Remove(desc.Path); err != nil {
			return "", fmt.Errorf("removing corrupt artifact: %w", err)
		}
		a.to(NotPresent)

	default:
		a.logger.Info("forcing re-download")
		if err := os.Remove(desc.Path); err != nil {
			return "", fmt.Errorf("removing existing artifact: %w", err)
		}
		a.to(NotPresent)
	}

	if err := os.MkdirAll(filepath.Dir(desc.Path), 0o755); err != nil {
		return "", fmt.Errorf("creating artifact directory: %w", err)
	}

	size, err := f.install(ctx, a)
	if err != nil {
		return "", err
	}

	a.to(Ready)
	metrics.IncrCounter([]string{"artifact", "acquire", "downloaded"}, 1)
	a.logger.Info("artifact downloaded", "size_mib", fmt.Sprintf("%.2f", float64(size)/(1<<20)))

	return desc.Path, nil
}

// install downloads into a staging file, verifies it and renames it
// onto the canonical path. The staging file is removed on any failure.
func (f *Fetcher) install(ctx context.Context, a *acquisition) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(a.desc.Path), tempPattern)
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}

	var installed bool
	defer func() {
		if err := tmp.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			a.logger.Error("defer closing temp file", "error", err)
		}
		if !installed {
			if err := os.Remove(tmp.Name()); err != nil && !errors.Is(err, fs.ErrNotExist) {
				a.logger.Error("failed to remove temp file", "file", tmp.Name(), "error", err)
			}
		}
	}()

	a.to(Downloading)
	a.logger.Info("downloading artifact", "url", a.desc.SourceURL)

	n, err := f.download(ctx, a.desc.SourceURL, tmp)
	if err != nil {
		a.logger.Error("download failed", "url", a.desc.SourceURL, "error", err)
		return 0, &DownloadError{URL: a.desc.SourceURL, Err: err}
	}

	if err := tmp.Sync(); err != nil {
		return 0, fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("closing temp file: %w", err)
	}

	a.to(Verifying)

	res := f.verifier.Verify(ctx, tmp.Name(), a.desc.Digest)
	if !res.OK() {
		a.logger.Error("downloaded artifact failed checksum verification")
		return 0, &IntegrityError{Path: a.desc.Path, Expected: res.Expected, Actual: res.Actual, Reason: res.Reason}
	}

	if err := os.Rename(tmp.Name(), a.desc.Path); err != nil {
		return 0, fmt.Errorf("renaming temp file: %w", err)
	}

	installed = true

	return n, nil
}

// download streams the artifact body into w, reporting progress.
func (f *Fetcher) download(ctx context.Context, rawURL string, w io.Writer) (n int64, err error) {
	ctx, span := f.tracer.Start(ctx, "artifact.download")
	defer span.End()

	defer func() { finish(f.progress, err) }()

	err = f.transport.Fetch(ctx, rawURL, func(body io.Reader, size int64) error {
		pw := &progressWriter{w: w, reporter: f.progress, total: size}

		var copyErr error
		n, copyErr = io.Copy(pw, &contextReader{ctx: ctx, r: body})
		metrics.IncrCounter([]string{"artifact", "download", "bytes"}, float32(n))
		if copyErr != nil {
			return fmt.Errorf("copying body: %w", copyErr)
		}

		if size >= 0 && n != size {
			return &Error{
				Err:    ErrContentLengthMismatch,
				Detail: fmt.Sprintf("expected %d bytes, got %d", size, n),
			}
		}

		return nil
	})

	span.SetAttributes(attribute.Int64("artifact.bytes", n))

	return n, err
}

// acquisition carries the per-call state of one Acquire.
type acquisition struct {
	desc     Descriptor
	logger   *slog.Logger
	observer StateObserver
	span     trace.Span
}

func (a *acquisition) to(s State) {
	a.logger.Debug("artifact state", "state", s.String())
	a.span.AddEvent(s.String())
	if a.observer != nil {
		a.observer(a.desc.Path, s)
	}
}

func fileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		if info.IsDir() {
			return false, fmt.Errorf("%s is a directory", path)
		}
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}
