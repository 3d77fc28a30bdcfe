// Package detect provides silence detection for media files. The Detector
// interface is the extension point for alternative analysis backends; the
// shipped implementation shells out to ffmpeg's silencedetect filter.
package detect

import (
	"context"

	"github.com/silentcut/silentcut/internal/interval"
)

// Options configures a detection pass.
type Options struct {
	// ThresholdDB is the loudness below which audio counts as silence.
	// Always negative (dBFS).
	ThresholdDB float64
	// MinSilence is the shortest silence reported, in seconds.
	MinSilence float64
}

// Detector analyzes a media file's audio track and reports silence
// intervals in ascending, non-overlapping order.
type Detector interface {
	Detect(ctx context.Context, path string, opts Options) ([]interval.Interval, error)
}

// Prober reads media metadata needed before detection.
type Prober interface {
	// ProbeDuration returns the media duration in seconds.
	ProbeDuration(ctx context.Context, path string) (float64, error)
	// MeanVolume returns the mean loudness of the audio track in dB,
	// used as the noise floor estimate for auto thresholding.
	MeanVolume(ctx context.Context, path string) (float64, error)
}

// AutoThreshold derives a detection threshold from a measured noise floor.
// Silence sits around the mean volume while speech is well above it, so a
// small margin over the mean separates the two. The result is clamped below
// zero since thresholds are always negative dB.
func AutoThreshold(meanVolumeDB float64) float64 {
	threshold := meanVolumeDB + 2.0
	if threshold >= 0 {
		threshold = -1.0
	}
	return threshold
}
