package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silentcut/silentcut/internal/interval"
	"github.com/silentcut/silentcut/internal/timeline"
)

func TestNewCutPlan(t *testing.T) {
	sel := timeline.BuildSelection([]interval.Interval{
		{Start: 0, End: 2.0},
		{Start: 4.0, End: 6.0},
	})

	p := NewCutPlan(sel)
	assert.Equal(t, []interval.Interval{{Start: 0, End: 2.0}, {Start: 4.0, End: 6.0}}, p.Ranges)
	assert.InDelta(t, 4.0, p.OutputDuration, interval.Epsilon)
	assert.False(t, p.Empty())
}

func TestNewCutPlan_Empty(t *testing.T) {
	p := NewCutPlan(nil)
	assert.True(t, p.Empty())
	assert.Zero(t, p.OutputDuration)
}

func TestNewSpeedPlan_OutputTiming(t *testing.T) {
	speech := []interval.Interval{{Start: 0, End: 2.0}, {Start: 4.0, End: 6.0}}
	tl, err := timeline.Build(speech, 6.0, 4.0)
	require.NoError(t, err)

	p := NewSpeedPlan(tl)
	require.Len(t, p.Segments, 3)

	// Speech plays 1:1, the 2s silence compresses to 0.5s.
	assert.InDelta(t, 0.0, p.Segments[0].Output.Start, interval.Epsilon)
	assert.InDelta(t, 2.0, p.Segments[0].Output.End, interval.Epsilon)
	assert.InDelta(t, 2.0, p.Segments[1].Output.Start, interval.Epsilon)
	assert.InDelta(t, 2.5, p.Segments[1].Output.End, interval.Epsilon)
	assert.InDelta(t, 2.5, p.Segments[2].Output.Start, interval.Epsilon)
	assert.InDelta(t, 4.5, p.Segments[2].Output.End, interval.Epsilon)
	assert.InDelta(t, 4.5, p.OutputDuration, interval.Epsilon)
}

func TestNewSpeedPlan_OutputBoundariesShared(t *testing.T) {
	speech := []interval.Interval{{Start: 1.0, End: 2.5}, {Start: 5.0, End: 7.5}}
	tl, err := timeline.Build(speech, 9.0, 3.0)
	require.NoError(t, err)
	tl = timeline.Annotate(tl, 3.0, true)

	p := NewSpeedPlan(tl)
	for i := 1; i < len(p.Segments); i++ {
		// A segment's output start is the previous segment's output end,
		// bit for bit. Audio and video rendered from the same plan land on
		// identical timestamps.
		assert.Equal(t, p.Segments[i-1].Output.End, p.Segments[i].Output.Start)
	}
	assert.Equal(t, p.Segments[len(p.Segments)-1].Output.End, p.OutputDuration)
}

func TestNewSpeedPlan_PreservesSegmentAttributes(t *testing.T) {
	speech := []interval.Interval{{Start: 0, End: 2.0}}
	tl, err := timeline.Build(speech, 4.0, 3.0)
	require.NoError(t, err)
	tl = timeline.Annotate(tl, 3.0, true)

	p := NewSpeedPlan(tl)
	require.Len(t, p.Segments, len(tl))
	for i, seg := range p.Segments {
		assert.Equal(t, tl[i].Source, seg.Source)
		assert.Equal(t, tl[i].Speed, seg.Speed)
		assert.Equal(t, tl[i].Role, seg.Role)
		assert.Equal(t, tl[i].BlendEligible, seg.BlendEligible)
	}
}

func TestNewSpeedPlan_Deterministic(t *testing.T) {
	speech := []interval.Interval{{Start: 0.5, End: 2.0}, {Start: 4.0, End: 5.5}}
	tl, err := timeline.Build(speech, 6.0, 2.5)
	require.NoError(t, err)

	a := NewSpeedPlan(tl)
	b := NewSpeedPlan(tl)
	assert.Equal(t, a, b)
}
