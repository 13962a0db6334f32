// Package geo is the boundary to the vector export of detections.
package geo

import (
	"context"

	"github.com/pontos-detect/pontos/detect"
	"github.com/pontos-detect/pontos/scene"
)

// Exporter writes dets, found in a width x height raster covering bbox,
// to outPath as geographic features and returns the path written.
type Exporter interface {
	Export(ctx context.Context, dets []detect.Detection, bbox scene.BBox, width, height int, outPath string) (string, error)
}

// ExporterFunc adapts a function to Exporter.
type ExporterFunc func(ctx context.Context, dets []detect.Detection, bbox scene.BBox, width, height int, outPath string) (string, error)

func (f ExporterFunc) Export(ctx context.Context, dets []detect.Detection, bbox scene.BBox, width, height int, outPath string) (string, error) {
	return f(ctx, dets, bbox, width, height, outPath)
}
