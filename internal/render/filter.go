package render

import (
	"fmt"
	"strings"

	"github.com/silentcut/silentcut/internal/plan"
)

// cutFilter builds the removal-mode filter graph: per-range trim/atrim with
// timestamp reset, then a single concat of all pairs.
func cutFilter(p plan.CutPlan) string {
	var b strings.Builder
	for i, rng := range p.Ranges {
		fmt.Fprintf(&b, "[0:v]trim=start=%.6f:end=%.6f,setpts=PTS-STARTPTS[v%d];", rng.Start, rng.End, i)
	}
	for i, rng := range p.Ranges {
		fmt.Fprintf(&b, "[0:a]atrim=start=%.6f:end=%.6f,asetpts=PTS-STARTPTS[a%d];", rng.Start, rng.End, i)
	}
	for i := range p.Ranges {
		fmt.Fprintf(&b, "[v%d][a%d]", i, i)
	}
	fmt.Fprintf(&b, "concat=n=%d:v=1:a=1[outv][outa]", len(p.Ranges))
	return b.String()
}

// speedFilter builds the acceleration-mode filter graph. Video segments are
// re-timed by dividing their presentation timestamps by the speed factor;
// audio uses atempo so pitch is preserved. Blend-eligible segments get a
// tblend pass to mask visual stutter at high factors.
func speedFilter(p plan.SpeedPlan) string {
	var b strings.Builder
	for i, seg := range p.Segments {
		fmt.Fprintf(&b, "[0:v]trim=start=%.6f:end=%.6f,setpts=(PTS-STARTPTS)/%.6f", seg.Source.Start, seg.Source.End, seg.Speed)
		if seg.BlendEligible {
			b.WriteString(",tblend=all_mode=average")
		}
		fmt.Fprintf(&b, "[v%d];", i)
	}
	for i, seg := range p.Segments {
		fmt.Fprintf(&b, "[0:a]atrim=start=%.6f:end=%.6f,asetpts=PTS-STARTPTS,%s[a%d];",
			seg.Source.Start, seg.Source.End, atempoChain(seg.Speed), i)
	}
	for i := range p.Segments {
		fmt.Fprintf(&b, "[v%d][a%d]", i, i)
	}
	fmt.Fprintf(&b, "concat=n=%d:v=1:a=1[outv][outa]", len(p.Segments))
	return b.String()
}

// atempoChain expresses a tempo factor as a chain of atempo filters.
// A single atempo instance only accepts factors up to 2.0, so larger
// factors are decomposed into repeated doublings plus a remainder.
func atempoChain(factor float64) string {
	if factor <= 2.0 {
		return fmt.Sprintf("atempo=%.6f", factor)
	}
	var parts []string
	for factor > 2.0 {
		parts = append(parts, "atempo=2.0")
		factor /= 2.0
	}
	parts = append(parts, fmt.Sprintf("atempo=%.6f", factor))
	return strings.Join(parts, ",")
}
