// Package pipeline runs the ship-detection demo end to end: acquire the
// model, fetch a scene, detect vessels and export them.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/armon/go-metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/pontos-detect/pontos/artifact"
	"github.com/pontos-detect/pontos/config"
	"github.com/pontos-detect/pontos/detect"
	"github.com/pontos-detect/pontos/geo"
	"github.com/pontos-detect/pontos/scene"
)

// TopN is the number of confidences reported in a Summary.
const TopN = 5

// Acquirer makes a model artifact available locally.
// *artifact.Fetcher implements it.
type Acquirer interface {
	Acquire(ctx context.Context, desc artifact.Descriptor, force bool) (string, error)
}

// Deps are the collaborators of a run. Logger and Tracer are optional.
type Deps struct {
	Acquirer Acquirer
	Source   scene.Source
	Detector detect.Detector
	Exporter geo.Exporter
	Logger   *slog.Logger
	Tracer   trace.Tracer
}

func (d Deps) check() error {
	var errs []error
	if d.Acquirer == nil {
		errs = append(errs, errors.New("acquirer must not be nil"))
	}
	if d.Source == nil {
		errs = append(errs, errors.New("scene source must not be nil"))
	}
	if d.Detector == nil {
		errs = append(errs, errors.New("detector must not be nil"))
	}
	if d.Exporter == nil {
		errs = append(errs, errors.New("exporter must not be nil"))
	}
	return errors.Join(errs...)
}

// Request describes one run.
type Request struct {
	Model      artifact.Descriptor
	Force      bool
	Area       scene.Area
	Threshold  float64
	ScenePath  string
	ExportPath string
}

// NewRequest builds the Request for area from cfg. Scenes are stored
// under the data directory and exports under the output directory.
// It fails when the Sentinel Hub credentials the scene source needs
// are missing.
func NewRequest(cfg config.Config, area scene.Area) (Request, error) {
	if err := cfg.RequireSentinel(); err != nil {
		return Request{}, err
	}
	if err := area.Validate(); err != nil {
		return Request{}, err
	}

	return Request{
		Model:      cfg.ModelDescriptor(),
		Area:       area,
		Threshold:  cfg.ConfidenceThreshold,
		ScenePath:  filepath.Join(cfg.DataDir, area.Name+"_sentinel2.png"),
		ExportPath: filepath.Join(cfg.OutputDir, area.Name, "vessels.geojson"),
	}, nil
}

// Summary reports what a run produced.
type Summary struct {
	ModelPath      string
	ScenePath      string
	Detections     int
	TopConfidences []float64
	ExportPath     string
	Elapsed        time.Duration
}

// StageError reports which step of a run failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Run executes req. Each step runs only when the previous one
// succeeded; a failure is returned as *StageError.
func Run(ctx context.Context, deps Deps, req Request) (Summary, error) {
	if err := deps.check(); err != nil {
		return Summary{}, fmt.Errorf("invalid pipeline dependencies: %w", err)
	}

	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	tracer := deps.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("no-op tracer")
	}

	start := time.Now()
	ctx, span := tracer.Start(ctx, "pipeline.Run", trace.WithAttributes(
		attribute.String("area", req.Area.Name),
		attribute.String("bbox", req.Area.BBox.String()),
	))
	defer span.End()

	fail := func(stage string, err error) (Summary, error) {
		err = &StageError{Stage: stage, Err: err}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.IncrCounter([]string{"pipeline", "failed"}, 1)
		return Summary{}, err
	}

	log = log.With("area", req.Area.Name)

	log.Info("acquiring model")
	modelPath, err := deps.Acquirer.Acquire(ctx, req.Model, req.Force)
	if err != nil {
		return fail("acquire model", err)
	}

	log.Info("fetching scene", "bbox", req.Area.BBox.String(), "window", req.Area.TimeRange.String())
	scenePath, err := deps.Source.Scene(ctx, req.Area.BBox, req.Area.TimeRange, req.ScenePath)
	if err != nil {
		return fail("fetch scene", err)
	}
	log.Info("scene saved", "path", scenePath)

	dets, err := deps.Detector.Detect(ctx, modelPath, scenePath, req.Threshold)
	if err != nil {
		return fail("detect", err)
	}
	log.Info("vessels detected", "count", len(dets), "threshold", req.Threshold)
	metrics.SetGauge([]string{"pipeline", "detections"}, float32(len(dets)))

	exportPath, err := deps.Exporter.Export(ctx, dets, req.Area.BBox, req.Area.Width, req.Area.Height, req.ExportPath)
	if err != nil {
		return fail("export", err)
	}
	log.Info("detections exported", "path", exportPath)

	sum := Summary{
		ModelPath:      modelPath,
		ScenePath:      scenePath,
		Detections:     len(dets),
		TopConfidences: detect.TopConfidences(dets, TopN),
		ExportPath:     exportPath,
		Elapsed:        time.Since(start),
	}
	span.SetAttributes(attribute.Int("detections", sum.Detections))

	return sum, nil
}
