package timeline

import "github.com/silentcut/silentcut/internal/interval"

const (
	// rampDuration is the fixed length of each transitional ramp segment.
	rampDuration = 0.1
	// minSplitDuration is the smallest silence that gets ramps. Below this
	// the accelerated core would be no longer than a ramp itself, so the
	// segment is left unsplit.
	minSplitDuration = 3 * rampDuration
	// blendThreshold is the speed above which frame blending is worth the
	// processing cost. Closer to normal speed the effect is imperceptible.
	blendThreshold = 1.05
)

// Annotate post-processes an acceleration-mode timeline: when fluid is set,
// silence segments long enough are split into ramp/core/ramp sub-segments
// easing between normal speed and the acceleration factor, and every
// accelerated non-speech segment fast enough is flagged for temporal frame
// blending. Speech segments pass through untouched. Only the ramp split is
// gated on fluid; blend eligibility depends on speed and role alone and is
// assigned either way.
//
// Splitting preserves the contiguous cover exactly: the core's boundaries
// are derived from the original segment's endpoints, never by summing
// independently computed ramp widths.
func Annotate(t Timeline, factor float64, fluid bool) Timeline {
	midSpeed := (1.0 + factor) / 2.0

	out := make(Timeline, 0, len(t))
	for _, seg := range t {
		if seg.Role == RoleSpeech {
			out = append(out, seg)
			continue
		}
		if !fluid || seg.Duration() <= minSplitDuration+interval.Epsilon {
			seg.BlendEligible = seg.Speed > blendThreshold
			out = append(out, seg)
			continue
		}

		lead := Segment{
			Source: interval.Interval{Start: seg.Source.Start, End: seg.Source.Start + rampDuration},
			Speed:  midSpeed,
			Role:   RoleRamp,
		}
		core := Segment{
			Source: interval.Interval{Start: lead.Source.End, End: seg.Source.End - rampDuration},
			Speed:  seg.Speed,
			Role:   RoleSilence,
		}
		tail := Segment{
			Source: interval.Interval{Start: core.Source.End, End: seg.Source.End},
			Speed:  midSpeed,
			Role:   RoleRamp,
		}
		lead.BlendEligible = lead.Speed > blendThreshold
		core.BlendEligible = core.Speed > blendThreshold
		tail.BlendEligible = tail.Speed > blendThreshold
		out = append(out, lead, core, tail)
	}
	return out
}
