package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silentcut/silentcut/internal/interval"
)

func TestAnnotate_SplitsLongSilence(t *testing.T) {
	speech := []interval.Interval{{Start: 0, End: 2.0}, {Start: 3.0, End: 6.0}}
	tl, err := Build(speech, 6.0, 3.0)
	require.NoError(t, err)

	got := Annotate(tl, 3.0, true)
	require.Len(t, got, 5)

	// midSpeed = (1 + 3) / 2 = 2.0
	assert.Equal(t, RoleSpeech, got[0].Role)
	assert.Equal(t, interval.Interval{Start: 0, End: 2.0}, got[0].Source)

	assert.Equal(t, RoleRamp, got[1].Role)
	assert.InDelta(t, 2.0, got[1].Source.Start, interval.Epsilon)
	assert.InDelta(t, 2.1, got[1].Source.End, interval.Epsilon)
	assert.Equal(t, 2.0, got[1].Speed)

	assert.Equal(t, RoleSilence, got[2].Role)
	assert.InDelta(t, 2.1, got[2].Source.Start, interval.Epsilon)
	assert.InDelta(t, 2.9, got[2].Source.End, interval.Epsilon)
	assert.Equal(t, 3.0, got[2].Speed)

	assert.Equal(t, RoleRamp, got[3].Role)
	assert.InDelta(t, 2.9, got[3].Source.Start, interval.Epsilon)
	assert.InDelta(t, 3.0, got[3].Source.End, interval.Epsilon)
	assert.Equal(t, 2.0, got[3].Speed)

	assert.Equal(t, RoleSpeech, got[4].Role)
	assert.Equal(t, interval.Interval{Start: 3.0, End: 6.0}, got[4].Source)

	require.NoError(t, got.Validate(6.0))
}

func TestAnnotate_ShortSilenceLeftUnsplit(t *testing.T) {
	speech := []interval.Interval{{Start: 0, End: 2.0}, {Start: 2.3, End: 6.0}}
	tl, err := Build(speech, 6.0, 3.0)
	require.NoError(t, err)

	got := Annotate(tl, 3.0, true)
	require.Len(t, got, 3)

	assert.Equal(t, RoleSpeech, got[0].Role)
	assert.Equal(t, RoleSilence, got[1].Role)
	assert.Equal(t, interval.Interval{Start: 2.0, End: 2.3}, got[1].Source)
	assert.Equal(t, 3.0, got[1].Speed)
	assert.Equal(t, RoleSpeech, got[2].Role)

	require.NoError(t, got.Validate(6.0))
}

func TestAnnotate_FluidDisabledKeepsShape(t *testing.T) {
	speech := []interval.Interval{{Start: 0, End: 2.0}, {Start: 3.0, End: 6.0}}
	tl, err := Build(speech, 6.0, 3.0)
	require.NoError(t, err)

	got := Annotate(tl, 3.0, false)
	require.Len(t, got, 3)
	assert.Equal(t, RoleSilence, got[1].Role)
	assert.True(t, got[1].BlendEligible)
}

func TestAnnotate_SplitPreservesDuration(t *testing.T) {
	durations := []float64{0.31, 0.5, 1.0, 2.7, 13.37}

	for _, d := range durations {
		seg := Segment{
			Source: interval.Interval{Start: 5.0, End: 5.0 + d},
			Speed:  4.0,
			Role:   RoleSilence,
		}
		got := Annotate(Timeline{seg}, 4.0, true)
		require.Len(t, got, 3)

		sum := got[0].Duration() + got[1].Duration() + got[2].Duration()
		assert.InDelta(t, d, sum, interval.Epsilon)
		// Boundaries are shared exactly, not re-derived per part.
		assert.Equal(t, got[0].Source.End, got[1].Source.Start)
		assert.Equal(t, got[1].Source.End, got[2].Source.Start)
		assert.Equal(t, seg.Source.Start, got[0].Source.Start)
		assert.Equal(t, seg.Source.End, got[2].Source.End)
	}
}

func TestAnnotate_BlendEligibility(t *testing.T) {
	tests := []struct {
		name   string
		factor float64
		blend  bool
	}{
		{"well above threshold", 3.0, true},
		{"just above threshold", 1.06, true},
		{"at threshold", 1.05, false},
		{"barely accelerated", 1.01, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg := Segment{
				Source: interval.Interval{Start: 0, End: 0.2},
				Speed:  tt.factor,
				Role:   RoleSilence,
			}
			got := Annotate(Timeline{seg}, tt.factor, true)
			require.Len(t, got, 1)
			assert.Equal(t, tt.blend, got[0].BlendEligible)
		})
	}
}

func TestAnnotate_RampsBlendWhenMidSpeedHighEnough(t *testing.T) {
	seg := Segment{
		Source: interval.Interval{Start: 0, End: 2.0},
		Speed:  3.0,
		Role:   RoleSilence,
	}
	got := Annotate(Timeline{seg}, 3.0, true)
	require.Len(t, got, 3)
	// midSpeed 2.0 is fast enough to blend the ramps too.
	assert.True(t, got[0].BlendEligible)
	assert.True(t, got[1].BlendEligible)
	assert.True(t, got[2].BlendEligible)
}

func TestAnnotate_SpeechNeverBlended(t *testing.T) {
	speech := []interval.Interval{{Start: 0, End: 3.0}}
	tl, err := Build(speech, 6.0, 10.0)
	require.NoError(t, err)

	got := Annotate(tl, 10.0, true)
	for _, seg := range got {
		if seg.Role == RoleSpeech {
			assert.False(t, seg.BlendEligible)
		}
	}
}

func TestAnnotate_Idempotent(t *testing.T) {
	speech := []interval.Interval{{Start: 0, End: 2.0}, {Start: 3.0, End: 6.0}}
	tl, err := Build(speech, 6.0, 3.0)
	require.NoError(t, err)

	a := Annotate(tl, 3.0, true)
	b := Annotate(tl, 3.0, true)
	assert.Equal(t, a, b)
}
