// Package pipeline orchestrates a full silence-removal run: detection,
// speech inversion, timeline construction, plan emission and rendering.
// All presentation belongs to the caller; the service only logs progress.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/silentcut/silentcut/internal/config"
	"github.com/silentcut/silentcut/internal/detect"
	"github.com/silentcut/silentcut/internal/interval"
	"github.com/silentcut/silentcut/internal/plan"
	"github.com/silentcut/silentcut/internal/render"
	"github.com/silentcut/silentcut/internal/storage"
	"github.com/silentcut/silentcut/internal/timeline"
)

// Request describes a single processing run.
type Request struct {
	// Input is the media file to process.
	Input string
	// Output is the file to write. Ignored under DryRun.
	Output string
	// DryRun performs detection and planning but skips rendering.
	DryRun bool
}

// Result summarizes a completed run.
type Result struct {
	// ThresholdDB is the detection threshold actually used, after any
	// auto-calibration.
	ThresholdDB float64
	// Silences is the number of silence intervals reported by the detector.
	Silences int
	// Speech holds the padded speech intervals that were retained.
	Speech []interval.Interval
	// TotalDuration is the source media length in seconds.
	TotalDuration float64
	// KeptDuration is the source time retained at normal speed.
	KeptDuration float64
	// OutputDuration is the expected rendered length.
	OutputDuration float64
	// Empty is true when the whole file is silence and nothing was rendered.
	Empty bool
	// Rendered is true when an output file was written.
	Rendered bool
	// UploadURL is the S3 URL when delivery is configured and rendering ran.
	UploadURL string
}

// RemovedDuration returns the source time that does not play at normal
// speed: dropped in removal mode, compressed in acceleration mode.
func (r *Result) RemovedDuration() float64 {
	return r.TotalDuration - r.KeptDuration
}

// Service wires the pipeline stages together.
type Service struct {
	cfg      *config.Config
	detector detect.Detector
	prober   detect.Prober
	renderer render.Renderer
	uploader storage.Uploader
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithUploader enables S3 delivery of rendered output.
func WithUploader(u storage.Uploader) Option {
	return func(s *Service) {
		s.uploader = u
	}
}

// New creates a pipeline Service. The config must already be validated.
func New(cfg *config.Config, detector detect.Detector, prober detect.Prober, renderer render.Renderer, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		cfg:      cfg,
		detector: detector,
		prober:   prober,
		renderer: renderer,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process runs the full pipeline for one file.
func (s *Service) Process(ctx context.Context, req Request) (*Result, error) {
	threshold, err := s.resolveThreshold(ctx, req.Input)
	if err != nil {
		return nil, err
	}

	// Detection and duration probing are independent external-tool passes;
	// run them concurrently.
	var (
		silences      []interval.Interval
		totalDuration float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		silences, err = s.detector.Detect(gctx, req.Input, detect.Options{
			ThresholdDB: threshold,
			MinSilence:  s.cfg.MinSilence,
		})
		if err != nil {
			return fmt.Errorf("detect silences: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		totalDuration, err = s.prober.ProbeDuration(gctx, req.Input)
		if err != nil {
			return fmt.Errorf("probe duration: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Info("silence detection complete",
		slog.Int("silences", len(silences)),
		slog.Float64("total_duration", totalDuration),
		slog.Float64("threshold_db", threshold),
	)

	speech, err := timeline.SpeechIntervals(silences, totalDuration, s.cfg.Padding)
	if err != nil {
		return nil, fmt.Errorf("invert silences: %w", err)
	}

	result := &Result{
		ThresholdDB:   threshold,
		Silences:      len(silences),
		Speech:        speech,
		TotalDuration: totalDuration,
	}

	if len(speech) == 0 {
		s.logger.Warn("no speech intervals remain, skipping render")
		result.Empty = true
		return result, nil
	}

	result.KeptDuration = timeline.BuildSelection(speech).KeptDuration()

	if s.cfg.Accelerate() {
		return s.processAccelerate(ctx, req, speech, result)
	}
	return s.processRemove(ctx, req, speech, result)
}

// processRemove emits and renders the removal-mode plan.
func (s *Service) processRemove(ctx context.Context, req Request, speech []interval.Interval, result *Result) (*Result, error) {
	cutPlan := plan.NewCutPlan(timeline.BuildSelection(speech))
	result.OutputDuration = cutPlan.OutputDuration

	s.logger.Info("cut plan emitted",
		slog.Int("ranges", len(cutPlan.Ranges)),
		slog.Float64("output_duration", cutPlan.OutputDuration),
	)

	if req.DryRun {
		return result, nil
	}
	if err := s.renderer.Cut(ctx, req.Input, req.Output, cutPlan); err != nil {
		return nil, fmt.Errorf("render cut plan: %w", err)
	}
	result.Rendered = true
	s.verifyOutput(ctx, req.Output, cutPlan.OutputDuration)

	return s.deliver(ctx, req, result)
}

// processAccelerate builds, annotates, emits and renders the
// acceleration-mode timeline.
func (s *Service) processAccelerate(ctx context.Context, req Request, speech []interval.Interval, result *Result) (*Result, error) {
	tl, err := timeline.Build(speech, result.TotalDuration, s.cfg.Acceleration)
	if err != nil {
		return nil, fmt.Errorf("build timeline: %w", err)
	}
	tl = timeline.Annotate(tl, s.cfg.Acceleration, s.cfg.FluidTransitions)

	speedPlan := plan.NewSpeedPlan(tl)
	result.OutputDuration = speedPlan.OutputDuration

	s.logger.Info("speed plan emitted",
		slog.Int("segments", len(speedPlan.Segments)),
		slog.Float64("output_duration", speedPlan.OutputDuration),
	)

	if req.DryRun {
		return result, nil
	}
	if err := s.renderer.Accelerate(ctx, req.Input, req.Output, speedPlan); err != nil {
		return nil, fmt.Errorf("render speed plan: %w", err)
	}
	result.Rendered = true
	s.verifyOutput(ctx, req.Output, speedPlan.OutputDuration)

	return s.deliver(ctx, req, result)
}

// durationTolerance is the acceptable gap in seconds between a plan's
// expected output duration and the rendered file's probed duration. Encoder
// priming and frame rounding account for a fraction of a second.
const durationTolerance = 0.5

// verifyOutput probes the rendered file and warns when its duration strays
// from the plan's expectation. The run itself is not failed: the output
// exists and may still be usable.
func (s *Service) verifyOutput(ctx context.Context, output string, expected float64) {
	actual, err := s.prober.ProbeDuration(ctx, output)
	if err != nil {
		s.logger.Warn("could not probe rendered output",
			slog.String("output", output),
			slog.String("error", err.Error()),
		)
		return
	}
	if math.Abs(actual-expected) > durationTolerance {
		s.logger.Warn("rendered duration drifts from plan",
			slog.String("output", output),
			slog.Float64("expected", expected),
			slog.Float64("actual", actual),
		)
	}
}

// deliver uploads the rendered output when an uploader is configured.
func (s *Service) deliver(ctx context.Context, req Request, result *Result) (*Result, error) {
	if s.uploader == nil {
		return result, nil
	}

	f, err := os.Open(req.Output) // #nosec G304 - path is provided by the operator
	if err != nil {
		return nil, fmt.Errorf("open rendered output: %w", err)
	}
	defer func() { _ = f.Close() }()

	key := filepath.Base(req.Output)
	url, err := s.uploader.Upload(ctx, key, f)
	if err != nil {
		return nil, fmt.Errorf("upload output: %w", err)
	}
	result.UploadURL = url

	s.logger.Info("output uploaded", slog.String("url", url))
	return result, nil
}

// resolveThreshold returns the configured threshold, or one calibrated from
// the file's noise floor when auto thresholding is enabled.
func (s *Service) resolveThreshold(ctx context.Context, input string) (float64, error) {
	if !s.cfg.AutoThreshold {
		return s.cfg.ThresholdDB, nil
	}

	mean, err := s.prober.MeanVolume(ctx, input)
	if err != nil {
		return 0, fmt.Errorf("measure noise floor: %w", err)
	}
	threshold := detect.AutoThreshold(mean)

	s.logger.Info("auto threshold resolved",
		slog.Float64("mean_volume_db", mean),
		slog.Float64("threshold_db", threshold),
	)
	return threshold, nil
}
