package detect_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pontos-detect/pontos/detect"
)

func TestTopConfidences(t *testing.T) {
	dets := []detect.Detection{
		{Confidence: 0.2}, {Confidence: 0.9}, {Confidence: 0.05}, {Confidence: 0.6},
	}

	testCases := []struct {
		n    int
		want []float64
	}{
		{n: 2, want: []float64{0.9, 0.6}},
		{n: 10, want: []float64{0.9, 0.6, 0.2, 0.05}},
		{n: 0, want: []float64{}},
	}

	for _, tc := range testCases {
		if diff := cmp.Diff(tc.want, detect.TopConfidences(dets, tc.n)); diff != "" {
			t.Errorf("n=%d (-want +got):\n%s", tc.n, diff)
		}
	}
}

func TestBox_Center(t *testing.T) {
	x, y := detect.Box{X1: 10, Y1: 20, X2: 30, Y2: 60}.Center()
	if x != 20 || y != 40 {
		t.Errorf("got (%v, %v), want (20, 40)", x, y)
	}
}
