package progress

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/vbauerster/mpb/v5"
	"github.com/vbauerster/mpb/v5/decor"
)

// BarReporter draws a console progress bar per transfer. The bar is
// created on the first update so that the advertised length is known.
type BarReporter struct {
	out  io.Writer
	name string

	mu      sync.Mutex
	p       *mpb.Progress
	bar     *mpb.Bar
	current int64
}

// NewBarReporter returns a BarReporter drawing on out, or os.Stderr if
// out is nil. name labels the bar.
func NewBarReporter(out io.Writer, name string) *BarReporter {
	if out == nil {
		out = os.Stderr
	}

	return &BarReporter{out: out, name: name}
}

func (r *BarReporter) OnProgress(done, total int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar == nil {
		r.p = mpb.New(mpb.WithOutput(r.out), mpb.WithWidth(40))
		r.bar = r.p.AddBar(max(total, 0),
			mpb.PrependDecorators(
				decor.Name(r.name, decor.WC{W: len(r.name) + 1, C: decor.DidentRight}),
			),
			mpb.AppendDecorators(
				decor.CountersKibiByte("% .1f / % .1f"),
				decor.Name(" "),
				decor.Percentage(),
			),
		)
	}

	if delta := done - r.current; delta > 0 {
		r.bar.IncrBy(int(delta))
		r.current = done
	}
}

// Finish completes the bar, or aborts it when err is set, and waits
// for the final render. An aborted transfer always ends with a line
// naming the cause.
func (r *BarReporter) Finish(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar == nil {
		return
	}

	if err != nil {
		r.bar.Abort(false)
	} else {
		// The advertised length may be missing or wrong.
		r.bar.SetTotal(r.current, true)
	}
	r.p.Wait()

	// mpb drops a bar aborted before its first refresh without a frame.
	if err != nil {
		fmt.Fprintf(r.out, "%s: aborted after %d bytes: %v\n", r.name, r.current, err)
	}

	r.p, r.bar, r.current = nil, nil, 0
}
