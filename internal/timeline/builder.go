package timeline

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/silentcut/silentcut/internal/interval"
)

// BuildSelection produces the removal-mode result: each speech interval
// becomes a speech segment at normal speed, and the silence between them is
// dropped entirely. The returned selection is sparse and spans only the
// retained speech.
func BuildSelection(speech []interval.Interval) Selection {
	return lo.Map(speech, func(sp interval.Interval, _ int) Segment {
		return Segment{Source: sp, Speed: 1.0, Role: RoleSpeech}
	})
}

// Build produces the acceleration-mode timeline: an ordered, gapless
// alternation of speech segments at normal speed and silence segments at
// the given factor, covering [0, totalDuration) exactly. Every source
// instant is retained; silence is only compressed, never dropped.
//
// The speech intervals must be sorted, non-overlapping and inside the media
// bounds, as produced by SpeechIntervals. Any gap or overlap in the merge is
// an internal contract violation and fails with ErrInconsistentTimeline.
func Build(speech []interval.Interval, totalDuration, factor float64) (Timeline, error) {
	if totalDuration <= 0 {
		return nil, fmt.Errorf("%w: got %.6f", ErrNonPositiveDuration, totalDuration)
	}
	if factor <= 1 {
		return nil, fmt.Errorf("%w: got %.6f", ErrInvalidSpeedFactor, factor)
	}

	var segments Timeline
	cursor := 0.0
	for i, sp := range speech {
		if sp.Start < cursor-interval.Epsilon {
			return nil, fmt.Errorf("%w: speech interval %d %s overlaps previous segment ending at %.6f",
				ErrInconsistentTimeline, i, sp, cursor)
		}
		if sp.End > totalDuration+interval.Epsilon {
			return nil, fmt.Errorf("%w: speech interval %d %s exceeds total duration %.6f",
				ErrInconsistentTimeline, i, sp, totalDuration)
		}
		// Gap before this speech is silence, kept at the acceleration factor.
		// Boundaries come from the running cursor so the sequence is gapless
		// by construction; sub-epsilon gaps are absorbed into the speech.
		start := cursor
		if sp.Start-cursor > interval.Epsilon {
			segments = append(segments, Segment{
				Source: interval.Interval{Start: cursor, End: sp.Start},
				Speed:  factor,
				Role:   RoleSilence,
			})
			start = sp.Start
		}
		segments = append(segments, Segment{
			Source: interval.Interval{Start: start, End: sp.End},
			Speed:  1.0,
			Role:   RoleSpeech,
		})
		cursor = sp.End
	}
	if totalDuration-cursor > interval.Epsilon {
		segments = append(segments, Segment{
			Source: interval.Interval{Start: cursor, End: totalDuration},
			Speed:  factor,
			Role:   RoleSilence,
		})
	}

	if err := segments.Validate(totalDuration); err != nil {
		return nil, err
	}
	return segments, nil
}
