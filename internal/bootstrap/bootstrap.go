// Package bootstrap provides dependency initialization for the silentcut CLI.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/silentcut/silentcut/internal/config"
	"github.com/silentcut/silentcut/internal/detect"
	"github.com/silentcut/silentcut/internal/pipeline"
	"github.com/silentcut/silentcut/internal/render"
	"github.com/silentcut/silentcut/internal/storage"
)

// NewService creates and wires all pipeline dependencies from the
// configuration. It verifies the ffmpeg installation before returning so a
// broken environment fails before any processing starts.
func NewService(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pipeline.Service, error) {
	detector := detect.NewFFmpegDetector(cfg.FFmpegPath, cfg.FFprobePath)
	if err := detector.Available(ctx); err != nil {
		return nil, fmt.Errorf("check ffmpeg: %w", err)
	}

	renderer := render.NewFFmpegRenderer(cfg.FFmpegPath)

	var opts []pipeline.Option
	if cfg.S3Enabled() {
		uploader, err := storage.NewS3Uploader(ctx, storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		if err != nil {
			return nil, fmt.Errorf("create S3 uploader: %w", err)
		}
		opts = append(opts, pipeline.WithUploader(uploader))
	}

	return pipeline.New(cfg, detector, detector, renderer, logger, opts...), nil
}
