package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/thatrtxdude/tarkov-texture-converter/internal/config"
	"github.com/thatrtxdude/tarkov-texture-converter/internal/gltf"
	"github.com/thatrtxdude/tarkov-texture-converter/internal/history"
	"github.com/thatrtxdude/tarkov-texture-converter/internal/imaging"
	"github.com/thatrtxdude/tarkov-texture-converter/internal/logging"
	"github.com/thatrtxdude/tarkov-texture-converter/internal/pipeline"
	"github.com/thatrtxdude/tarkov-texture-converter/internal/scan"
	"github.com/thatrtxdude/tarkov-texture-converter/internal/texture"
)

type convertFlags struct {
	specGlos   bool
	optimize   bool
	workers    int
	noGltf     bool
	configPath string
	logLevel   string
	logFormat  string
}

// loadConfig resolves configuration and applies CLI overrides on top.
func (f *convertFlags) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, _, _, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	if cmd != nil {
		if cmd.Flags().Changed("specglos") {
			cfg.Processing.SpecGlosMode = f.specGlos
		}
		if cmd.Flags().Changed("optimize") {
			cfg.Processing.OptimizePNG = f.optimize
		}
		if cmd.Flags().Changed("workers") {
			cfg.Processing.Workers = f.workers
		}
		if cmd.Flags().Changed("no-gltf") {
			cfg.Processing.UpdateGltf = !f.noGltf
		}
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	if f.logFormat != "" {
		cfg.Logging.Format = f.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (f *convertFlags) newLogger(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	opts := logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: os.Stderr}
	if cfg.Logging.LogDir != "" {
		return logging.NewFileLogger(opts, cfg.Logging.LogDir, "ttc.log")
	}
	logger, err := logging.New(opts)
	return logger, nil, err
}

func runConvert(cmd *cobra.Command, inputDir string, flags *convertFlags) error {
	cfg, err := flags.loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, logCloser, err := flags.newLogger(cfg)
	if err != nil {
		return err
	}
	if logCloser != nil {
		defer logCloser.Close()
	}

	inputDir, err = filepath.Abs(inputDir)
	if err != nil {
		return fmt.Errorf("resolve input folder: %w", err)
	}
	info, err := os.Stat(inputDir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("input folder not found: %s", inputDir)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// One converter per input folder: concurrent runs would race on output
	// folder naming and on the glTF update pass.
	lock := flock.New(filepath.Join(inputDir, ".ttc.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire folder lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another converter is already processing %s", inputDir)
	}
	defer func() { _ = lock.Unlock() }()

	mode := texture.ModeStandard
	if cfg.Processing.SpecGlosMode {
		mode = texture.ModeSpecGlos
	}
	workers := cfg.Processing.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	compression := imaging.CompressionDefault
	if cfg.Processing.OptimizePNG {
		compression = imaging.CompressionOptimized
	}

	candidates, err := scan.CandidateFiles(inputDir)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		logger.Warn("no supported image files found", logging.String("input", inputDir))
		return nil
	}

	outputDir, err := scan.UniqueOutputDir(inputDir, cfg.Processing.OutputSubfolder)
	if err != nil {
		return err
	}

	logger.Info("starting conversion",
		logging.String("input", inputDir),
		logging.String("output", outputDir),
		logging.String("mode", string(mode)),
		logging.Int("candidates", len(candidates)),
		logging.Int("workers", workers),
		logging.Bool("optimize_png", cfg.Processing.OptimizePNG))

	renderer := newProgressRenderer(os.Stdout)
	start := time.Now()
	proc := pipeline.New(pipeline.Options{
		Mode:        mode,
		Workers:     workers,
		Compression: compression,
		OutputDir:   outputDir,
		Logger:      logger,
		Progress:    renderer.update,
	})
	summary := proc.Run(ctx, candidates)
	renderer.stop()

	var gltfStats gltf.Stats
	if mode == texture.ModeSpecGlos && cfg.Processing.UpdateGltf && ctx.Err() == nil {
		rewriter := gltf.New(inputDir, outputDir, workers, logger)
		gltfStats, err = rewriter.RewriteAll(ctx)
		if err != nil {
			logger.Error("gltf update failed", logging.Error(err))
		}
	}
	elapsed := time.Since(start)

	if cfg.History.Enabled {
		recordRun(logger, cfg, inputDir, outputDir, mode, summary, gltfStats, elapsed)
	}

	printSummary(cmd.OutOrStdout(), inputDir, outputDir, summary, gltfStats, elapsed)
	if ctx.Err() != nil {
		logger.Warn("run cancelled before completion")
	}
	return nil
}

func recordRun(logger *slog.Logger, cfg *config.Config, inputDir, outputDir string, mode texture.Mode, summary pipeline.Summary, gltfStats gltf.Stats, elapsed time.Duration) {
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		logger.Warn("history unavailable", logging.Error(err))
		return
	}
	defer store.Close()

	run := &history.Run{
		InputFolder:  inputDir,
		OutputFolder: outputDir,
		Mode:         string(mode),
		Succeeded:    summary.Succeeded,
		Failed:       summary.Failed,
		Skipped:      summary.Skipped,
		SavedUnits:   summary.SavedUnits,
		FailedUnits:  summary.FailedUnits,
		GltfUpdated:  gltfStats.Updated,
		Duration:     elapsed,
	}
	if err := store.RecordRun(context.Background(), run); err != nil {
		logger.Warn("failed to record run", logging.Error(err))
		return
	}
	logger.Debug("run recorded", logging.String(logging.FieldRunID, run.ID))
}

func printSummary(out io.Writer, inputDir, outputDir string, summary pipeline.Summary, gltfStats gltf.Stats, elapsed time.Duration) {
	rows := [][2]string{
		{"Input folder", inputDir},
		{"Output folder", outputDir},
		{"Successful", strconv.Itoa(summary.Succeeded)},
		{"Failed", strconv.Itoa(summary.Failed)},
		{"Skipped", strconv.Itoa(summary.Skipped)},
		{"Maps written", strconv.Itoa(summary.SavedUnits)},
	}
	if summary.FailedUnits > 0 {
		rows = append(rows, [2]string{"Maps failed", strconv.Itoa(summary.FailedUnits)})
	}
	if gltfStats.Found > 0 {
		rows = append(rows, [2]string{"glTF updated", fmt.Sprintf("%d of %d", gltfStats.Updated, gltfStats.Found)})
	}
	rows = append(rows, [2]string{"Total time", formatElapsed(elapsed)})
	fmt.Fprintln(out, renderKVTable("Conversion Summary", rows))
}
