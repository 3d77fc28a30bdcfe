// Package plan serializes segment sequences into the description the
// external renderer consumes. The emitted plans are the single source of
// truth for per-segment output timing: audio and video transformations both
// read the same numbers, so the two tracks cannot drift apart.
package plan

import (
	"github.com/samber/lo"

	"github.com/silentcut/silentcut/internal/interval"
	"github.com/silentcut/silentcut/internal/timeline"
)

// CutPlan is the removal-mode render plan: ordered source ranges to extract
// and concatenate, plus the expected output length used to sanity-check the
// external tool's result.
type CutPlan struct {
	// Ranges are the retained [start, end) source ranges in ascending order.
	Ranges []interval.Interval
	// OutputDuration is the sum of the range durations.
	OutputDuration float64
}

// NewCutPlan emits the removal-mode plan from a sparse speech selection.
func NewCutPlan(sel timeline.Selection) CutPlan {
	ranges := lo.Map(sel, func(seg timeline.Segment, _ int) interval.Interval {
		return seg.Source
	})
	return CutPlan{
		Ranges:         ranges,
		OutputDuration: sel.KeptDuration(),
	}
}

// Empty reports whether the plan retains nothing.
func (p CutPlan) Empty() bool {
	return len(p.Ranges) == 0
}

// SpeedSegment is one acceleration-mode render instruction: a source range,
// the speed to play it at, whether to frame-blend it, and where it lands on
// the output timeline.
type SpeedSegment struct {
	Source        interval.Interval
	Speed         float64
	Role          timeline.Role
	BlendEligible bool
	// Output is the segment's position on the rendered timeline, computed by
	// accumulating source duration divided by speed across prior segments.
	Output interval.Interval
}

// SpeedPlan is the acceleration-mode render plan: every source instant
// mapped to an output position, in ascending source order.
type SpeedPlan struct {
	Segments []SpeedSegment
	// OutputDuration is the rendered length, equal to the last segment's
	// output end.
	OutputDuration float64
}

// NewSpeedPlan emits the acceleration-mode plan from a validated timeline.
// Output boundaries are accumulated in order, so consecutive segments share
// their boundary timestamp exactly.
func NewSpeedPlan(t timeline.Timeline) SpeedPlan {
	segments := make([]SpeedSegment, 0, len(t))
	cursor := 0.0
	for _, seg := range t {
		outEnd := cursor + seg.Source.Duration()/seg.Speed
		segments = append(segments, SpeedSegment{
			Source:        seg.Source,
			Speed:         seg.Speed,
			Role:          seg.Role,
			BlendEligible: seg.BlendEligible,
			Output:        interval.Interval{Start: cursor, End: outEnd},
		})
		cursor = outEnd
	}
	return SpeedPlan{Segments: segments, OutputDuration: cursor}
}
