package timeline

import (
	"fmt"

	"github.com/silentcut/silentcut/internal/interval"
)

// SpeechIntervals inverts a silence report into the complementary speech
// intervals over [0, totalDuration), expanding each speech interval outward
// by padding seconds on both sides (clamped to the media bounds).
//
// The silence report is defensively sorted and coalesced first; detector
// output is not trusted to be well formed. Expanded speech neighbors that
// touch or cross after padding are merged. Speech gaps that collapse to
// zero width are dropped rather than emitted as degenerate intervals.
//
// An empty result means the whole file is silence. That is a valid outcome
// the caller must handle, not an error.
func SpeechIntervals(silences []interval.Interval, totalDuration, padding float64) ([]interval.Interval, error) {
	if totalDuration <= 0 {
		return nil, fmt.Errorf("%w: got %.6f", ErrNonPositiveDuration, totalDuration)
	}
	if padding < 0 {
		return nil, fmt.Errorf("%w: got %.6f", ErrNegativePadding, padding)
	}

	clamped := clampToMedia(silences, totalDuration)
	merged := interval.SortAndCoalesce(clamped)

	var speech []interval.Interval
	cursor := 0.0
	for _, sil := range merged {
		if sil.Start-cursor > interval.Epsilon {
			speech = append(speech, interval.Interval{Start: cursor, End: sil.Start})
		}
		cursor = sil.End
	}
	if totalDuration-cursor > interval.Epsilon {
		speech = append(speech, interval.Interval{Start: cursor, End: totalDuration})
	}

	if padding > 0 {
		for i, sp := range speech {
			start := sp.Start - padding
			if start < 0 {
				start = 0
			}
			end := sp.End + padding
			if end > totalDuration {
				end = totalDuration
			}
			speech[i] = interval.Interval{Start: start, End: end}
		}
		speech = interval.SortAndCoalesce(speech)
	}

	// Padding clamps can still leave degenerate slivers at the media edges.
	kept := speech[:0]
	for _, sp := range speech {
		if sp.Duration() > interval.Epsilon {
			kept = append(kept, sp)
		}
	}
	if len(kept) == 0 {
		return nil, nil
	}
	return kept, nil
}

// clampToMedia trims silence intervals to [0, totalDuration] and discards
// intervals lying entirely outside the media or reduced to zero width.
func clampToMedia(silences []interval.Interval, totalDuration float64) []interval.Interval {
	var out []interval.Interval
	for _, sil := range silences {
		start := sil.Start
		if start < 0 {
			start = 0
		}
		end := sil.End
		if end > totalDuration {
			end = totalDuration
		}
		if end-start > interval.Epsilon {
			out = append(out, interval.Interval{Start: start, End: end})
		}
	}
	return out
}
