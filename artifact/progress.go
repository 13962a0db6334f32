package artifact

import (
	"context"
	"io"
)

// Progress is a snapshot of a running transfer. Total is -1 when the
// length is unknown.
type Progress struct {
	Transferred int64
	Total       int64
}

// Fraction returns the completed share in [0, 1] and whether it is
// known at all.
func (p Progress) Fraction() (float64, bool) {
	if p.Total <= 0 {
		return 0, false
	}

	return min(float64(p.Transferred)/float64(p.Total), 1), true
}

// ProgressReporter receives the running byte count of a transfer after
// every chunk written to disk. total is -1 when the server did not
// advertise a length. Implementations must return quickly; they run on
// the transfer path.
type ProgressReporter interface {
	OnProgress(done, total int64)
}

// Finisher is implemented by reporters that hold resources (a console
// bar, a timer) until the transfer ends. Finish is called exactly once
// per transfer with the transfer's error, if any.
type Finisher interface {
	Finish(err error)
}

// ProgressFunc adapts a plain function to ProgressReporter.
type ProgressFunc func(done, total int64)

func (f ProgressFunc) OnProgress(done, total int64) { f(done, total) }

type discardProgress struct{}

func (discardProgress) OnProgress(int64, int64) {}

func finish(r ProgressReporter, err error) {
	if f, ok := r.(Finisher); ok {
		f.Finish(err)
	}
}

// progressWriter is an io.Writer reporting the running byte count.
type progressWriter struct {
	w           io.Writer
	reporter    ProgressReporter
	transferred int64
	total       int64
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.w.Write(p)
	pw.transferred += int64(n)
	pw.reporter.OnProgress(pw.transferred, pw.total)

	return n, err
}

// contextReader stops a copy as soon as ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}

	return cr.r.Read(p)
}
