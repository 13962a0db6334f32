// Package detect is the boundary to the vessel detection model.
package detect

import (
	"cmp"
	"context"
	"slices"
)

// Box is a detection rectangle in pixel space, (X1, Y1) top-left.
type Box struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Center returns the midpoint of b.
func (b Box) Center() (x, y float64) {
	return (b.X1 + b.X2) / 2, (b.Y1 + b.Y2) / 2
}

// Detection is one vessel found in a scene.
type Detection struct {
	Confidence float64 `json:"confidence"`
	Box        Box     `json:"bbox"`
}

// Detector runs the model at modelPath over the image at imagePath and
// returns every detection scoring at least threshold.
type Detector interface {
	Detect(ctx context.Context, modelPath, imagePath string, threshold float64) ([]Detection, error)
}

// TopConfidences returns up to n confidences in descending order.
func TopConfidences(dets []Detection, n int) []float64 {
	out := make([]float64, 0, len(dets))
	for _, d := range dets {
		out = append(out, d.Confidence)
	}
	slices.SortFunc(out, func(a, b float64) int { return cmp.Compare(b, a) })

	return out[:min(n, len(out))]
}
