package artifact_test

import (
	"bytes"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pontos-detect/pontos/artifact"
	"github.com/pontos-detect/pontos/client"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func bufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func randomBytes(n int) []byte {
	rng := rand.New(rand.NewPCG(7, 11))
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(rng.UintN(256))
	}
	return b
}

// modelServer serves payload on every GET and counts requests.
type modelServer struct {
	*httptest.Server
	calls atomic.Int32
}

func newModelServer(t *testing.T, payload []byte) *modelServer {
	t.Helper()

	ms := &modelServer{}
	ms.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ms.calls.Add(1)
		http.ServeContent(w, r, "model.pt", time.Time{}, bytes.NewReader(payload))
	}))
	t.Cleanup(ms.Close)

	return ms
}

func (ms *modelServer) modelURL() string {
	return ms.URL + "/models/model.pt"
}

// stateRecorder collects every state an acquisition enters.
type stateRecorder struct {
	mu     sync.Mutex
	states []artifact.State
}

func (sr *stateRecorder) observe(_ string, s artifact.State) {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	sr.states = append(sr.states, s)
}

func (sr *stateRecorder) reset() {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	sr.states = nil
}

func (sr *stateRecorder) got() []artifact.State {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	return append([]artifact.State(nil), sr.states...)
}

// settled fails t unless the recorded sequence ends in its only
// terminal state.
func (sr *stateRecorder) settled(t *testing.T) {
	t.Helper()

	states := sr.got()
	for i, s := range states {
		if last := i == len(states)-1; s.Terminal() != last {
			t.Errorf("state %d of %v: %s terminal=%v", i, states, s, s.Terminal())
		}
	}
}

// progressRecorder records progress updates and Finish calls.
type progressRecorder struct {
	mu       sync.Mutex
	updates  []artifact.Progress
	finished []error
}

func (pr *progressRecorder) OnProgress(done, total int64) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.updates = append(pr.updates, artifact.Progress{Transferred: done, Total: total})
}

func (pr *progressRecorder) Finish(err error) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.finished = append(pr.finished, err)
}

func newFetcher(t *testing.T, opts ...artifact.Option) *artifact.Fetcher {
	t.Helper()

	c, err := client.Build(client.WithLogger(discardLogger()))
	if err != nil {
		t.Fatalf("building client: %v", err)
	}

	f, err := artifact.NewFetcher(c, append([]artifact.Option{artifact.WithLogger(discardLogger())}, opts...)...)
	if err != nil {
		t.Fatalf("building fetcher: %v", err)
	}

	return f
}

// tempFiles lists staging files left in dir.
func tempFiles(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("reading %s: %v", dir, err)
	}

	var names []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".pontos-dl-") {
			names = append(names, filepath.Join(dir, e.Name()))
		}
	}
	return names
}
