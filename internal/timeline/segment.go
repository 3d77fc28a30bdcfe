// Package timeline converts detected silence intervals into render-ready
// segment sequences. It hosts the silence-to-speech inverter, the timeline
// builder and the ramp/blend annotator. The package is pure computation:
// it performs no I/O and never logs.
package timeline

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/silentcut/silentcut/internal/interval"
)

// Static errors for timeline construction.
var (
	// ErrNonPositiveDuration is returned when the total media duration is not positive.
	ErrNonPositiveDuration = errors.New("timeline: total duration must be positive")
	// ErrNegativePadding is returned when speech padding is negative.
	ErrNegativePadding = errors.New("timeline: padding must not be negative")
	// ErrInvalidSpeedFactor is returned when an acceleration factor is not greater than 1.
	ErrInvalidSpeedFactor = errors.New("timeline: acceleration factor must be greater than 1")
	// ErrInconsistentTimeline is returned when a constructed timeline has a gap
	// or overlap. This indicates a defect in the construction inputs and is
	// never repaired silently.
	ErrInconsistentTimeline = errors.New("timeline: segments do not form a contiguous cover")
)

// Role identifies what a segment carries and how it is treated downstream.
type Role string

const (
	// RoleSpeech marks retained speech played at normal speed.
	RoleSpeech Role = "speech"
	// RoleSilence marks a silence span, either dropped or accelerated.
	RoleSilence Role = "silence"
	// RoleRamp marks a short transitional span between speeds.
	RoleRamp Role = "ramp"
)

// Segment is an atomic unit of the render plan: one source interval played
// back at one speed. Timestamps are on the source timeline; the renderer
// maps them to output time via Speed.
type Segment struct {
	Source interval.Interval
	// Speed is the output-to-source compression ratio. 1.0 is unmodified
	// playback; values above 1.0 accelerate. Deceleration is never emitted.
	Speed float64
	Role  Role
	// BlendEligible requests temporal frame blending during render to mask
	// visual stutter. Only set on accelerated non-speech segments.
	BlendEligible bool
}

// Duration returns the segment's source-timeline length in seconds.
func (s Segment) Duration() float64 {
	return s.Source.Duration()
}

// OutputDuration returns the segment's length on the output timeline.
func (s Segment) OutputDuration() float64 {
	return s.Source.Duration() / s.Speed
}

// Selection is the removal-mode result: the retained speech segments in
// ascending source order. Unlike Timeline it is deliberately sparse, the
// dropped silence between entries never appears.
type Selection []Segment

// KeptDuration returns the total source time retained by the selection.
func (sel Selection) KeptDuration() float64 {
	return lo.SumBy(sel, Segment.Duration)
}

// Timeline is the acceleration-mode result: an ordered segment sequence
// covering the full source duration with no gaps and no overlaps.
type Timeline []Segment

// Validate checks the contiguous-cover invariant: the sequence starts at 0,
// each segment begins exactly where the previous one ends, and the last
// segment ends at totalDuration. Violations return ErrInconsistentTimeline.
func (t Timeline) Validate(totalDuration float64) error {
	if len(t) == 0 {
		return fmt.Errorf("%w: empty timeline", ErrInconsistentTimeline)
	}
	if diff := t[0].Source.Start; diff > interval.Epsilon {
		return fmt.Errorf("%w: first segment starts at %.6f, want 0", ErrInconsistentTimeline, diff)
	}
	for i, seg := range t {
		if seg.Duration() <= 0 {
			return fmt.Errorf("%w: segment %d %s has non-positive duration", ErrInconsistentTimeline, i, seg.Source)
		}
		if seg.Speed <= 0 {
			return fmt.Errorf("%w: segment %d has speed %.3f", ErrInconsistentTimeline, i, seg.Speed)
		}
		if i == 0 {
			continue
		}
		prev := t[i-1].Source.End
		if diff := seg.Source.Start - prev; diff > interval.Epsilon || diff < -interval.Epsilon {
			return fmt.Errorf("%w: segment %d starts at %.6f, previous ends at %.6f", ErrInconsistentTimeline, i, seg.Source.Start, prev)
		}
	}
	last := t[len(t)-1].Source.End
	if diff := last - totalDuration; diff > interval.Epsilon || diff < -interval.Epsilon {
		return fmt.Errorf("%w: last segment ends at %.6f, want %.6f", ErrInconsistentTimeline, last, totalDuration)
	}
	return nil
}

// SourceDuration returns the total source time covered by the timeline.
func (t Timeline) SourceDuration() float64 {
	return lo.SumBy(t, Segment.Duration)
}

// OutputDuration returns the rendered length of the timeline.
func (t Timeline) OutputDuration() float64 {
	return lo.SumBy(t, Segment.OutputDuration)
}
