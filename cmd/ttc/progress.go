package main

import (
	"os"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/mattn/go-isatty"

	"github.com/thatrtxdude/tarkov-texture-converter/internal/pipeline"
)

// progressRenderer drives a terminal progress display across both pipeline
// stages. On non-TTY output it stays silent and lets the logger speak.
type progressRenderer struct {
	mu       sync.Mutex
	writer   progress.Writer
	trackers map[pipeline.Stage]*progress.Tracker
}

func newProgressRenderer(out *os.File) *progressRenderer {
	if out == nil || !isTerminal(out) {
		return &progressRenderer{}
	}

	pw := progress.NewWriter()
	pw.SetOutputWriter(out)
	pw.SetAutoStop(false)
	pw.SetTrackerLength(30)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	pw.SetStyle(progress.StyleBlocks)
	pw.Style().Visibility.ETA = false
	pw.Style().Visibility.Speed = false
	go pw.Render()

	return &progressRenderer{
		writer:   pw,
		trackers: make(map[pipeline.Stage]*progress.Tracker),
	}
}

// update satisfies pipeline.ProgressFunc. Trackers spawn lazily the first
// time a stage reports; workers call this concurrently.
func (r *progressRenderer) update(stage pipeline.Stage, completed, total int) {
	if r.writer == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	tracker, ok := r.trackers[stage]
	if !ok {
		tracker = &progress.Tracker{
			Message: stageMessage(stage),
			Total:   int64(total),
			Units:   progress.UnitsDefault,
		}
		r.writer.AppendTracker(tracker)
		r.trackers[stage] = tracker
	}
	tracker.SetValue(int64(completed))
	if completed >= total {
		tracker.MarkAsDone()
	}
}

func (r *progressRenderer) stop() {
	if r.writer == nil {
		return
	}
	r.mu.Lock()
	for _, tracker := range r.trackers {
		if !tracker.IsDone() {
			tracker.MarkAsDone()
		}
	}
	r.mu.Unlock()
	r.writer.Stop()
	for r.writer.IsRenderInProgress() {
		time.Sleep(10 * time.Millisecond)
	}
}

func stageMessage(stage pipeline.Stage) string {
	switch stage {
	case pipeline.StageSave:
		return "Saving textures"
	default:
		return "Processing textures"
	}
}

func isTerminal(file *os.File) bool {
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
