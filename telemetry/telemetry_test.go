package telemetry_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/armon/go-metrics"

	"github.com/pontos-detect/pontos/telemetry"
)

func TestDump(t *testing.T) {
	sink := metrics.NewInmemSink(time.Minute, 5*time.Minute)

	m, err := metrics.New(telemetry.Config("pontos"), sink)
	if err != nil {
		t.Fatal(err)
	}

	m.IncrCounter([]string{"artifact", "acquire", "downloaded"}, 1)
	m.IncrCounter([]string{"artifact", "download", "bytes"}, 2048)
	m.SetGauge([]string{"pipeline", "detections"}, 10)
	m.AddSampleWithLabels([]string{"artifact", "verify"}, 12.5, []metrics.Label{{Name: "status", Value: "verified ok"}})

	var buf bytes.Buffer
	if err := telemetry.Dump(&buf, sink); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"[C] 'pontos.artifact.acquire.downloaded': Count: 1",
		"[C] 'pontos.artifact.download.bytes': Count: 1",
		"[G] 'pontos.pipeline.detections': 10.000",
		"[S] 'pontos.artifact.verify.verified_ok': Count: 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in dump:\n%s", want, out)
		}
	}
}

func TestDump_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := telemetry.Dump(&buf, metrics.NewInmemSink(time.Minute, time.Minute)); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected empty dump, got:\n%s", buf.String())
	}
}
