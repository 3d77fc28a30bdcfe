package render

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silentcut/silentcut/internal/interval"
	"github.com/silentcut/silentcut/internal/plan"
	"github.com/silentcut/silentcut/internal/timeline"
)

// skipIfNoFFmpeg skips the test when the ffmpeg tools are not installed.
func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH, skipping test")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not found in PATH, skipping test")
	}
}

// createTestClip renders a solid color video with a tone audio track.
func createTestClip(t *testing.T, path string, duration float64) {
	t.Helper()

	cmd := exec.Command("ffmpeg",
		"-y",
		"-f", "lavfi",
		"-i", fmt.Sprintf("color=c=red:s=64x64:r=10:d=%.1f", duration),
		"-f", "lavfi",
		"-i", fmt.Sprintf("sine=frequency=440:duration=%.1f", duration),
		"-c:v", "libx264",
		"-preset", "ultrafast",
		"-c:a", "aac",
		"-shortest",
		path,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("failed to create test clip: %v\noutput: %s", err, out)
	}
}

func probeDuration(t *testing.T, path string) float64 {
	t.Helper()

	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("ffprobe failed: %v", err)
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		t.Fatalf("failed to parse duration from ffprobe output: %s", out)
	}
	return d
}

func TestFFmpegRenderer_Cut(t *testing.T) {
	skipIfNoFFmpeg(t)

	tmp := t.TempDir()
	src := filepath.Join(tmp, "src.mp4")
	out := filepath.Join(tmp, "cut.mp4")
	createTestClip(t, src, 3.0)

	p := plan.NewCutPlan(timeline.BuildSelection([]interval.Interval{
		{Start: 0, End: 1.0},
		{Start: 2.0, End: 3.0},
	}))

	r := NewFFmpegRenderer("")
	require.NoError(t, r.Cut(context.Background(), src, out, p))

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
	assert.InDelta(t, p.OutputDuration, probeDuration(t, out), 0.3)
}

func TestFFmpegRenderer_Accelerate(t *testing.T) {
	skipIfNoFFmpeg(t)

	tmp := t.TempDir()
	src := filepath.Join(tmp, "src.mp4")
	out := filepath.Join(tmp, "fast.mp4")
	createTestClip(t, src, 3.0)

	tl, err := timeline.Build([]interval.Interval{
		{Start: 0, End: 1.0},
		{Start: 2.0, End: 3.0},
	}, 3.0, 4.0)
	require.NoError(t, err)
	p := plan.NewSpeedPlan(timeline.Annotate(tl, 4.0, true))

	r := NewFFmpegRenderer("")
	require.NoError(t, r.Accelerate(context.Background(), src, out, p))

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
	assert.InDelta(t, p.OutputDuration, probeDuration(t, out), 0.3)
}

func TestFFmpegRenderer_NonexistentInput(t *testing.T) {
	skipIfNoFFmpeg(t)

	p := plan.NewCutPlan(timeline.BuildSelection([]interval.Interval{{Start: 0, End: 1.0}}))

	r := NewFFmpegRenderer("")
	err := r.Cut(context.Background(), "/nonexistent/clip.mp4", filepath.Join(t.TempDir(), "out.mp4"), p)

	var ffErr *FFmpegError
	require.ErrorAs(t, err, &ffErr)
	assert.NotEmpty(t, ffErr.Stderr)
}

func TestFFmpegRenderer_ContextCancellation(t *testing.T) {
	skipIfNoFFmpeg(t)

	tmp := t.TempDir()
	src := filepath.Join(tmp, "src.mp4")
	createTestClip(t, src, 1.0)

	p := plan.NewCutPlan(timeline.BuildSelection([]interval.Interval{{Start: 0, End: 1.0}}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewFFmpegRenderer("")
	err := r.Cut(ctx, src, filepath.Join(tmp, "out.mp4"), p)
	assert.ErrorIs(t, err, context.Canceled)
}
