package artifact_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	"github.com/pontos-detect/pontos/artifact"
	"github.com/pontos-detect/pontos/client"
)

func ExampleFetcher_Acquire() {
	weights := []byte("yolo weights")
	h := sha256.Sum256(weights)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(weights)
	}))
	defer ts.Close()

	dir, err := os.MkdirTemp("", "pontos-example")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer os.RemoveAll(dir)

	c, err := client.Build()
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	f, err := artifact.NewFetcher(c,
		artifact.WithLogger(slog.New(slog.DiscardHandler)),
		artifact.WithStateObserver(func(_ string, s artifact.State) { fmt.Println(s) }),
	)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	path, err := f.Acquire(context.Background(), artifact.Descriptor{
		SourceURL: ts.URL + "/yolo11s_tci.pt",
		Path:      filepath.Join(dir, "models", "yolo11s_tci.pt"),
		Digest:    hex.EncodeToString(h[:]),
	}, false)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(filepath.Base(path))
	// Output:
	// not-present
	// downloading
	// verifying
	// ready
	// yolo11s_tci.pt
}

func ExampleVerifier_Verify() {
	f, err := os.CreateTemp("", "model-*.pt")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer os.Remove(f.Name())
	_, _ = f.WriteString("abc")
	_ = f.Close()

	v := artifact.NewVerifier(slog.New(slog.DiscardHandler))

	res := v.Verify(context.Background(), f.Name(), "BA7816BF8F01CFEA414140DE5DAE2223B00361A396177A9CB410FF61F20015AD")
	fmt.Println(res.Status, res.OK())

	res = v.Verify(context.Background(), f.Name(), "")
	fmt.Println(res.Status, res.Reason)
	// Output:
	// verified true
	// skipped no digest configured
}
