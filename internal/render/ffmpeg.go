// Package render executes render plans against the source media using the
// ffmpeg CLI. It builds filter_complex graphs that slice, speed up, blend
// and concatenate segments, keeping audio and video on the plan's shared
// output timestamps.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/silentcut/silentcut/internal/plan"
)

// Static errors for rendering.
var (
	// ErrEmptyPlan is returned when a plan retains no segments.
	ErrEmptyPlan = errors.New("render: plan contains no segments")
)

// Renderer turns an emitted plan into an output file.
type Renderer interface {
	// Cut extracts the plan's source ranges and concatenates them,
	// dropping everything in between.
	Cut(ctx context.Context, input, output string, p plan.CutPlan) error
	// Accelerate re-times each plan segment at its speed factor and
	// concatenates the results.
	Accelerate(ctx context.Context, input, output string, p plan.SpeedPlan) error
}

// FFmpegRenderer implements Renderer using the ffmpeg CLI.
type FFmpegRenderer struct {
	ffmpegPath string
}

// NewFFmpegRenderer creates a new FFmpegRenderer. An empty path defaults to
// "ffmpeg" resolved via PATH.
func NewFFmpegRenderer(ffmpegPath string) *FFmpegRenderer {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpegRenderer{ffmpegPath: ffmpegPath}
}

// Cut renders a removal-mode plan with a trim/atrim + concat filter graph.
// Trimming both streams from the same source ranges and re-stamping their
// timestamps keeps audio and video exactly aligned at every joint.
func (r *FFmpegRenderer) Cut(ctx context.Context, input, output string, p plan.CutPlan) error {
	if p.Empty() {
		return ErrEmptyPlan
	}
	return r.run(ctx, input, output, cutFilter(p))
}

// Accelerate renders an acceleration-mode plan. Each segment is trimmed,
// re-timed via setpts (video) and atempo (audio) at its speed factor, frame
// blended when the plan asks for it, and the pieces are concatenated.
func (r *FFmpegRenderer) Accelerate(ctx context.Context, input, output string, p plan.SpeedPlan) error {
	if len(p.Segments) == 0 {
		return ErrEmptyPlan
	}
	return r.run(ctx, input, output, speedFilter(p))
}

// run invokes ffmpeg with the given filter graph, re-encoding with settings
// that favor speed while keeping quality above the codec default.
func (r *FFmpegRenderer) run(ctx context.Context, input, output, filterComplex string) error {
	args := []string{
		"-y",
		"-i", input,
		"-filter_complex", filterComplex,
		"-map", "[outv]",
		"-map", "[outa]",
		"-c:v", "libx264",
		"-preset", "ultrafast",
		"-crf", "20",
		"-c:a", "aac",
		"-b:a", "192k",
		output,
	}

	// #nosec G204 - ffmpegPath is set by the application, not user input
	cmd := exec.CommandContext(ctx, r.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("ffmpeg cancelled: %w", ctx.Err())
		}
		return &FFmpegError{Args: args, Stderr: stderr.String(), Err: err}
	}
	return nil
}

// FFmpegError represents a failed ffmpeg invocation including its stderr.
type FFmpegError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *FFmpegError) Error() string {
	return fmt.Sprintf("ffmpeg error: %v\nargs: %v\nstderr: %s", e.Err, e.Args, e.Stderr)
}

func (e *FFmpegError) Unwrap() error {
	return e.Err
}

var _ Renderer = (*FFmpegRenderer)(nil)
