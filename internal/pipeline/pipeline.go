package pipeline

import (
	"log/slog"
	"runtime"

	"github.com/thatrtxdude/tarkov-texture-converter/internal/imaging"
	"github.com/thatrtxdude/tarkov-texture-converter/internal/logging"
	"github.com/thatrtxdude/tarkov-texture-converter/internal/texture"
)

// Stage names used in progress reporting and logs.
type Stage string

const (
	StageProcess Stage = "process"
	StageSave    Stage = "save"
)

// ProgressFunc receives a (completed, total) pair after each unit finishes in
// either stage. Delivery may be bursty and out of order across workers.
type ProgressFunc func(stage Stage, completed, total int)

// Options configures a Processor.
type Options struct {
	Mode        texture.Mode
	Workers     int
	Compression imaging.CompressionLevel
	OutputDir   string
	Logger      *slog.Logger
	Progress    ProgressFunc
}

// Summary is the aggregate result of one run. The file-level counts come from
// stage one; save failures are tracked separately and never reclassify a file
// that already processed successfully.
type Summary struct {
	Succeeded int
	Failed    int
	Skipped   int

	SavedUnits  int
	FailedUnits int
}

// Total returns the number of files that reached a terminal classification.
func (s Summary) Total() int {
	return s.Succeeded + s.Failed + s.Skipped
}

// Processor orchestrates the two bounded-parallel stages: decode+transform
// across candidate files, then encode+save across every produced map.
type Processor struct {
	mode        texture.Mode
	workers     int
	compression imaging.CompressionLevel
	outputDir   string
	logger      *slog.Logger
	progress    ProgressFunc
}

// New builds a Processor. Worker counts below one fall back to the host CPU
// count.
func New(opts Options) *Processor {
	workers := opts.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	progress := opts.Progress
	if progress == nil {
		progress = func(Stage, int, int) {}
	}
	return &Processor{
		mode:        opts.Mode,
		workers:     workers,
		compression: opts.Compression,
		outputDir:   opts.OutputDir,
		logger:      logging.NewComponentLogger(opts.Logger, "pipeline"),
		progress:    progress,
	}
}
