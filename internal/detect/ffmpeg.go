package detect

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/silentcut/silentcut/internal/interval"
)

// Static errors for ffmpeg-backed detection.
var (
	// ErrFFmpegNotFound is returned when the ffmpeg binary is not available.
	ErrFFmpegNotFound = errors.New("detect: ffmpeg not found in PATH")
	// ErrFFprobeExecution is returned when ffprobe fails to run.
	ErrFFprobeExecution = errors.New("detect: ffprobe execution failed")
	// ErrNoMeanVolume is returned when volumedetect output has no mean_volume line.
	ErrNoMeanVolume = errors.New("detect: mean volume not found in ffmpeg output")
)

// FFmpegDetector implements Detector and Prober using the ffmpeg and
// ffprobe CLIs.
type FFmpegDetector struct {
	ffmpegPath  string
	ffprobePath string
}

// NewFFmpegDetector creates a new FFmpegDetector. Empty paths default to
// "ffmpeg" and "ffprobe" resolved via PATH.
func NewFFmpegDetector(ffmpegPath, ffprobePath string) *FFmpegDetector {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &FFmpegDetector{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}
}

// Available verifies the ffmpeg binary can be executed. Called once at
// startup so a missing installation fails before any work is done.
func (d *FFmpegDetector) Available(ctx context.Context) error {
	// #nosec G204 - ffmpegPath is set by the application, not user input
	cmd := exec.CommandContext(ctx, d.ffmpegPath, "-version")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %w", ErrFFmpegNotFound, err)
	}
	return nil
}

// Detect runs the silencedetect filter over the file's audio track and
// parses the reported silence intervals from ffmpeg's stderr logging.
func (d *FFmpegDetector) Detect(ctx context.Context, path string, opts Options) ([]interval.Interval, error) {
	filter := fmt.Sprintf("silencedetect=noise=%.1fdB:d=%.3f", opts.ThresholdDB, opts.MinSilence)

	// #nosec G204 - ffmpegPath is set by the application, not user input
	cmd := exec.CommandContext(ctx, d.ffmpegPath,
		"-hide_banner",
		"-i", path,
		"-af", filter,
		"-f", "null",
		"-",
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("silence detection cancelled: %w", ctx.Err())
		}
		return nil, &FFmpegError{Args: cmd.Args[1:], Stderr: stderr.String(), Err: err}
	}

	return parseSilenceOutput(stderr.String())
}

var (
	silenceStartRe = regexp.MustCompile(`silence_start:\s*(-?[\d.]+)`)
	silenceEndRe   = regexp.MustCompile(`silence_end:\s*(-?[\d.]+)`)
	meanVolumeRe   = regexp.MustCompile(`mean_volume:\s*(-?[\d.]+)\s*dB`)
)

// parseSilenceOutput extracts silence_start/silence_end pairs from ffmpeg
// silencedetect stderr logging. A trailing silence_start without a matching
// end (a file that ends silent) is ignored; only closed intervals are
// reported.
func parseSilenceOutput(output string) ([]interval.Interval, error) {
	var intervals []interval.Interval

	currentStart := 0.0
	hasStart := false

	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "silencedetect") {
			continue
		}
		if m := silenceStartRe.FindStringSubmatch(line); len(m) > 1 {
			val, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			currentStart = val
			hasStart = true
			continue
		}
		if m := silenceEndRe.FindStringSubmatch(line); len(m) > 1 && hasStart {
			val, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			iv, err := interval.New(max(currentStart, 0), val)
			if err != nil {
				// silencedetect can log a start slightly after its end for
				// pathological inputs. Skip the pair rather than fail the run.
				hasStart = false
				continue
			}
			intervals = append(intervals, iv)
			hasStart = false
		}
	}

	return intervals, nil
}

// MeanVolume measures the mean loudness of the audio track in dB using the
// volumedetect filter.
func (d *FFmpegDetector) MeanVolume(ctx context.Context, path string) (float64, error) {
	// #nosec G204 - ffmpegPath is set by the application, not user input
	cmd := exec.CommandContext(ctx, d.ffmpegPath,
		"-hide_banner",
		"-i", path,
		"-af", "volumedetect",
		"-f", "null",
		"-",
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return 0, fmt.Errorf("volume detection cancelled: %w", ctx.Err())
		}
		return 0, &FFmpegError{Args: cmd.Args[1:], Stderr: stderr.String(), Err: err}
	}

	return parseMeanVolume(stderr.String())
}

func parseMeanVolume(output string) (float64, error) {
	m := meanVolumeRe.FindStringSubmatch(output)
	if len(m) < 2 {
		return 0, ErrNoMeanVolume
	}
	val, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrNoMeanVolume, err)
	}
	return val, nil
}

// ProbeDuration returns the media duration in seconds using ffprobe's
// format metadata.
func (d *FFmpegDetector) ProbeDuration(ctx context.Context, path string) (float64, error) {
	// #nosec G204 - ffprobePath is set by the application, not user input
	cmd := exec.CommandContext(ctx, d.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return 0, fmt.Errorf("ffprobe cancelled: %w", ctx.Err())
		}
		return 0, fmt.Errorf("%w: %w, stderr: %s", ErrFFprobeExecution, err, stderr.String())
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(stdout.String()), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}
	return duration, nil
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

// Compile-time interface checks.
var (
	_ Detector = (*FFmpegDetector)(nil)
	_ Prober   = (*FFmpegDetector)(nil)
)
