// Package progress renders artifact transfer progress either as
// structured log lines or as a console bar.
package progress

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/pontos-detect/pontos/artifact"
)

// Mode selects how progress is rendered.
type Mode string

const (
	ModeBar  Mode = "bar"
	ModeLog  Mode = "log"
	ModeNone Mode = "none"
)

// ForMode returns the reporter for mode. Bars are drawn on out, log
// lines go to logger.
func ForMode(mode Mode, logger *slog.Logger, out io.Writer, name string) (artifact.ProgressReporter, error) {
	switch mode {
	case ModeBar:
		return NewBarReporter(out, name), nil
	case ModeLog:
		return NewLogReporter(logger, DefaultInterval), nil
	case ModeNone, "":
		return artifact.ProgressFunc(func(int64, int64) {}), nil
	default:
		return nil, fmt.Errorf("unknown progress mode %q", mode)
	}
}
