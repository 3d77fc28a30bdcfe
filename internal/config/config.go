// Package config provides validated, immutable run configuration loaded
// from environment variables and an optional YAML file.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

// Static errors for configuration validation.
var (
	// ErrThresholdNotNegative is returned when the silence threshold is not below 0 dB.
	ErrThresholdNotNegative = errors.New("config: threshold must be negative (dB)")
	// ErrMinSilenceNotPositive is returned when the minimum silence duration is not positive.
	ErrMinSilenceNotPositive = errors.New("config: min silence duration must be positive")
	// ErrNegativePadding is returned when padding is negative.
	ErrNegativePadding = errors.New("config: padding must not be negative")
	// ErrAccelerationTooLow is returned when an acceleration factor is set but not above 1.
	ErrAccelerationTooLow = errors.New("config: acceleration factor must be greater than 1")
)

// Config holds all configuration for a run. It is constructed once at
// process start, validated eagerly, and read-only thereafter.
type Config struct {
	// Detection settings
	ThresholdDB   float64 `env:"SILENTCUT_THRESHOLD, default=-40" yaml:"threshold" validate:"lt=0"`
	MinSilence    float64 `env:"SILENTCUT_MIN_SILENCE, default=0.5" yaml:"min_silence" validate:"gt=0"`
	Padding       float64 `env:"SILENTCUT_PADDING, default=0.1" yaml:"padding" validate:"gte=0"`
	AutoThreshold bool    `env:"SILENTCUT_AUTO_THRESHOLD" yaml:"auto_threshold"`

	// Acceleration settings. Zero means removal mode: silence is cut out
	// entirely. Any other value keeps silence, sped up by that factor.
	Acceleration     float64 `env:"SILENTCUT_ACCELERATION" yaml:"acceleration" validate:"omitempty,gt=1"`
	FluidTransitions bool    `env:"SILENTCUT_FLUID" yaml:"fluid_transitions"`

	// External tool settings
	FFmpegPath  string `env:"SILENTCUT_FFMPEG" yaml:"ffmpeg_path"`
	FFprobePath string `env:"SILENTCUT_FFPROBE" yaml:"ffprobe_path"`

	// Optional S3 delivery settings
	S3Bucket           string `env:"SILENTCUT_S3_BUCKET" yaml:"s3_bucket"`
	S3Region           string `env:"SILENTCUT_S3_REGION" yaml:"s3_region"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" yaml:"-"`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" yaml:"-"`

	// Logging settings
	LogFormat string `env:"SILENTCUT_LOG_FORMAT, default=text" yaml:"log_format"` // "json" or "text"
	LogLevel  string `env:"SILENTCUT_LOG_LEVEL, default=info" yaml:"log_level"`   // "debug", "info", "warn", "error"
}

// Accelerate reports whether the run compresses silence instead of
// removing it.
func (c *Config) Accelerate() bool {
	return c.Acceleration != 0
}

// S3Enabled returns true if S3 delivery configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// Load reads configuration from environment variables using go-envconfig.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// ApplyFile overlays values from a YAML configuration file onto the config.
// Fields absent from the file keep their current values.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path) // #nosec G304 - path is provided by the operator
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// Validate checks all constraints eagerly, before any external tool is
// invoked. Validation failures map to the package's sentinel errors.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config: %w", err)
	}

	first := verrs[0]
	switch first.StructField() {
	case "ThresholdDB":
		return fmt.Errorf("%w: got %.1f", ErrThresholdNotNegative, c.ThresholdDB)
	case "MinSilence":
		return fmt.Errorf("%w: got %.3f", ErrMinSilenceNotPositive, c.MinSilence)
	case "Padding":
		return fmt.Errorf("%w: got %.3f", ErrNegativePadding, c.Padding)
	case "Acceleration":
		return fmt.Errorf("%w: got %.3f", ErrAccelerationTooLow, c.Acceleration)
	default:
		return fmt.Errorf("config: field %s failed %s validation", first.StructField(), first.Tag())
	}
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for machine
// consumption. Otherwise, it outputs human-readable text logs. Logs go to
// stderr so stdout stays clean for the run summary.
func (c *Config) NewLogger() *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}

// String returns a string representation of the config with credentials
// masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{ThresholdDB: %.1f, MinSilence: %.3f, Padding: %.3f, AutoThreshold: %t, Acceleration: %.3f, FluidTransitions: %t, S3Bucket: %s, S3Region: %s, LogFormat: %s, LogLevel: %s}",
		c.ThresholdDB,
		c.MinSilence,
		c.Padding,
		c.AutoThreshold,
		c.Acceleration,
		c.FluidTransitions,
		c.S3Bucket,
		c.S3Region,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
