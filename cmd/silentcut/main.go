// Package main provides the silentcut command line tool: it detects silent
// intervals in a media file and renders a copy with the silence removed or
// sped up, keeping audio and video in sync.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/silentcut/silentcut/internal/bootstrap"
	"github.com/silentcut/silentcut/internal/config"
	"github.com/silentcut/silentcut/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		input      string
		output     string
		configFile string
		threshold  float64
		minSilence float64
		padding    float64
		accelerate float64
		fluid      bool
		auto       bool
		dryRun     bool
		verbose    bool
	)

	flag.StringVar(&input, "i", "", "input media file to process (required)")
	flag.StringVar(&output, "o", "", "output file path (default: <input>_no_silence<ext>)")
	flag.StringVar(&configFile, "config", "", "optional YAML configuration file")
	flag.Float64Var(&threshold, "t", -40.0, "silence threshold in dB")
	flag.Float64Var(&minSilence, "d", 0.5, "minimum silence duration in seconds")
	flag.Float64Var(&padding, "p", 0.1, "padding kept around speech in seconds")
	flag.Float64Var(&accelerate, "x", 0, "speed up silence by this factor instead of cutting it")
	flag.BoolVar(&fluid, "fluid", false, "ease in and out of accelerated silence")
	flag.BoolVar(&auto, "auto", false, "calibrate the threshold from the file's noise floor")
	flag.BoolVar(&dryRun, "dry-run", false, "detect and plan only, do not write output")
	flag.BoolVar(&verbose, "v", false, "show per-interval detail")
	flag.Parse()

	if input == "" {
		flag.Usage()
		return fmt.Errorf("input file is required")
	}
	if output == "" {
		output = defaultOutput(input)
	}

	cfg, err := resolveConfig(configFile, threshold, minSilence, padding, accelerate, fluid, auto, verbose)
	if err != nil {
		return err
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := bootstrap.NewService(ctx, cfg, logger)
	if err != nil {
		return err
	}

	result, err := svc.Process(ctx, pipeline.Request{
		Input:  input,
		Output: output,
		DryRun: dryRun,
	})
	if err != nil {
		return err
	}

	printSummary(result, output, dryRun, verbose)
	return nil
}

// resolveConfig layers configuration sources: env defaults, then the
// optional YAML file, then explicitly set command line flags.
func resolveConfig(configFile string, threshold, minSilence, padding, accelerate float64, fluid, auto, verbose bool) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if configFile != "" {
		if err := cfg.ApplyFile(configFile); err != nil {
			return nil, err
		}
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["t"] {
		cfg.ThresholdDB = threshold
	}
	if set["d"] {
		cfg.MinSilence = minSilence
	}
	if set["p"] {
		cfg.Padding = padding
	}
	if set["x"] {
		cfg.Acceleration = accelerate
	}
	if set["fluid"] {
		cfg.FluidTransitions = fluid
	}
	if set["auto"] {
		cfg.AutoThreshold = auto
	}
	if verbose && cfg.LogLevel == "info" {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// defaultOutput derives the output path from the input file name.
func defaultOutput(input string) string {
	ext := filepath.Ext(input)
	stem := strings.TrimSuffix(input, ext)
	return stem + "_no_silence" + ext
}

func printSummary(result *pipeline.Result, output string, dryRun, verbose bool) {
	if result.Empty {
		fmt.Println("No speech intervals found; nothing to do.")
		return
	}

	if verbose {
		fmt.Println("Speech intervals:")
		for i, sp := range result.Speech {
			fmt.Printf("  %d: %s -> %s (%s)\n", i+1, formatTime(sp.Start), formatTime(sp.End), formatTime(sp.Duration()))
		}
	}

	switch {
	case dryRun:
		fmt.Println("Dry run complete.")
		fmt.Printf("Would remove %s of silence. Expected output duration: %s.\n",
			formatTime(result.RemovedDuration()), formatTime(result.OutputDuration))
	default:
		fmt.Printf("Output written to %s\n", output)
		fmt.Printf("Removed %s of silence. Output duration: %s.\n",
			formatTime(result.RemovedDuration()), formatTime(result.OutputDuration))
		if info, err := os.Stat(output); err == nil {
			fmt.Printf("Output size: %.2f MB\n", float64(info.Size())/(1024*1024))
		}
		if result.UploadURL != "" {
			fmt.Printf("Uploaded to %s\n", result.UploadURL)
		}
	}
}

// formatTime formats seconds as HH:MM:SS.mmm, rounding to whole milliseconds
// before splitting so the seconds field never reaches 60.
func formatTime(seconds float64) string {
	ms := int64(math.Round(seconds * 1000))
	h := ms / 3600000
	m := ms % 3600000 / 60000
	s := float64(ms%60000) / 1000.0
	return fmt.Sprintf("%02d:%02d:%06.3f", h, m, s)
}
