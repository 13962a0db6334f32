package artifact

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/armon/go-metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// chunkSize bounds the memory used while hashing.
const chunkSize = 32 << 10

const skipReason = "no digest configured"

// Status is the outcome of a single verification pass.
type Status int

const (
	Verified Status = iota + 1
	Skipped
	Mismatch
)

func (s Status) String() string {
	switch s {
	case Verified:
		return "verified"
	case Skipped:
		return "skipped"
	case Mismatch:
		return "mismatch"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result is produced once per verification pass. Expected and Actual
// are only populated for Mismatch and Verified.
type Result struct {
	Status   Status
	Path     string
	Reason   string
	Expected string
	Actual   string
}

// OK reports whether the file may be used: it was either verified or
// verification was skipped because no digest is configured.
func (r Result) OK() bool {
	return r.Status == Verified || r.Status == Skipped
}

// Err converts the result into an error. Verified yields nil, Skipped
// yields an error matching ErrConfigurationMissing and Mismatch yields
// an *IntegrityError.
func (r Result) Err() error {
	switch r.Status {
	case Verified:
		return nil
	case Skipped:
		return &Error{Err: ErrConfigurationMissing, Detail: r.Path}
	default:
		return &IntegrityError{Path: r.Path, Expected: r.Expected, Actual: r.Actual, Reason: r.Reason}
	}
}

// Verifier checks files against an expected SHA-256 digest.
type Verifier struct {
	logger *slog.Logger
	tracer trace.Tracer
}

// NewVerifier returns a Verifier logging to logger. A nil logger falls
// back to slog.Default().
func NewVerifier(logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.Default()
	}

	return &Verifier{
		logger: logger,
		tracer: noop.NewTracerProvider().Tracer(""),
	}
}

// Verify hashes the file at path and compares the digest against
// expected, ignoring case. It never fails: unreadable files are
// reported as a Mismatch with an empty Actual digest and the cause in
// Reason.
func (v *Verifier) Verify(ctx context.Context, path, expected string) Result {
	_, span := v.tracer.Start(ctx, "artifact.Verify", trace.WithAttributes(attribute.String("artifact.path", path)))
	defer span.End()

	expected = strings.TrimSpace(expected)
	if expected == "" {
		v.logger.Warn("skipping checksum verification", "path", path, "reason", skipReason)
		metrics.IncrCounter([]string{"artifact", "verify", "skipped"}, 1)
		span.SetAttributes(attribute.String("artifact.verify", Skipped.String()))

		return Result{Status: Skipped, Path: path, Reason: skipReason}
	}

	defer metrics.MeasureSince([]string{"artifact", "verify"}, time.Now())

	actual, err := Digest(path)
	if err != nil {
		v.logger.Error("reading artifact for checksum", "path", path, "error", err)
		metrics.IncrCounter([]string{"artifact", "verify", "mismatch"}, 1)
		span.SetAttributes(attribute.String("artifact.verify", Mismatch.String()))

		return Result{Status: Mismatch, Path: path, Reason: err.Error(), Expected: expected}
	}

	if !strings.EqualFold(actual, expected) {
		v.logger.Warn("checksum mismatch", "path", path, "expected", expected, "actual", actual)
		metrics.IncrCounter([]string{"artifact", "verify", "mismatch"}, 1)
		span.SetAttributes(attribute.String("artifact.verify", Mismatch.String()))

		return Result{Status: Mismatch, Path: path, Reason: "checksum mismatch", Expected: expected, Actual: actual}
	}

	v.logger.Info("checksum verified", "path", path, "sha256", actual[:16]+"...")
	metrics.IncrCounter([]string{"artifact", "verify", "verified"}, 1)
	span.SetAttributes(attribute.String("artifact.verify", Verified.String()))

	return Result{Status: Verified, Path: path, Expected: expected, Actual: actual}
}

// Digest returns the lower-case hex SHA-256 of the file at path.
func Digest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return DigestReader(f)
}

// DigestReader returns the lower-case hex SHA-256 of everything read
// from r.
func DigestReader(r io.Reader) (string, error) {
	h := sha256.New()

	// Hide any WriterTo so the copy honours the fixed buffer.
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(h, struct{ io.Reader }{r}, buf); err != nil {
		return "", fmt.Errorf("hashing: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
