// Package interval provides the immutable time interval value type used
// throughout the silence-removal pipeline. Intervals are half-open
// [Start, End) ranges expressed in seconds on the source timeline.
package interval

import (
	"errors"
	"fmt"
	"sort"
)

// Epsilon is the tolerance used for all equality and ordering comparisons
// on interval boundaries. Boundary arithmetic (padding clamps, ramp splits)
// accumulates floating-point error well below this.
const Epsilon = 1e-6

// ErrInvalidInterval is returned when constructing an interval whose end
// does not lie strictly after its start, or whose start is negative.
var ErrInvalidInterval = errors.New("interval: end must be greater than start")

// Interval is a half-open [Start, End) time range in seconds.
// Values are immutable: all transformations return new intervals.
type Interval struct {
	Start float64
	End   float64
}

// New constructs an Interval, rejecting zero or negative durations and
// negative start times.
func New(start, end float64) (Interval, error) {
	if start < 0 {
		return Interval{}, fmt.Errorf("%w: start %.6f is negative", ErrInvalidInterval, start)
	}
	if end <= start {
		return Interval{}, fmt.Errorf("%w: got [%.6f, %.6f)", ErrInvalidInterval, start, end)
	}
	return Interval{Start: start, End: end}, nil
}

// Duration returns the interval length in seconds.
func (iv Interval) Duration() float64 {
	return iv.End - iv.Start
}

// Overlaps reports whether the two half-open intervals share any instant.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start < other.End-Epsilon && other.Start < iv.End-Epsilon
}

// Intersect returns the overlapping portion of the two intervals.
// The second return value is false when they do not overlap.
func (iv Interval) Intersect(other Interval) (Interval, bool) {
	if !iv.Overlaps(other) {
		return Interval{}, false
	}
	start := iv.Start
	if other.Start > start {
		start = other.Start
	}
	end := iv.End
	if other.End < end {
		end = other.End
	}
	return Interval{Start: start, End: end}, true
}

// SortAndCoalesce returns a copy of the given intervals sorted by start time
// with overlapping and touching neighbors merged. The input slice is not
// modified. Upstream producers promise non-overlapping input, but that
// promise is not trusted here.
func SortAndCoalesce(intervals []Interval) []Interval {
	if len(intervals) == 0 {
		return nil
	}

	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	merged := sorted[:1]
	for _, iv := range sorted[1:] {
		last := &merged[len(merged)-1]
		if iv.Start <= last.End+Epsilon {
			if iv.End > last.End {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// String formats the interval for logs and error messages.
func (iv Interval) String() string {
	return fmt.Sprintf("[%.3f, %.3f)", iv.Start, iv.End)
}
