package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/thatrtxdude/tarkov-texture-converter/internal/faults"
	"github.com/thatrtxdude/tarkov-texture-converter/internal/imaging"
	"github.com/thatrtxdude/tarkov-texture-converter/internal/logging"
	"github.com/thatrtxdude/tarkov-texture-converter/internal/texture"
)

// Run processes every candidate file through both stages and returns the
// aggregate counts. A failure in one file never aborts the others; ctx
// cancellation is checked between units and stops new work while letting
// in-flight units finish.
func (p *Processor) Run(ctx context.Context, candidates []string) Summary {
	var summary Summary
	if len(candidates) == 0 {
		p.logger.Info("no candidate files to process")
		return summary
	}

	outcomes := p.processAll(ctx, candidates)

	var units []saveUnit
	for i := range outcomes {
		oc := &outcomes[i]
		switch oc.status {
		case statusSuccess:
			summary.Succeeded++
			units = append(units, p.saveUnits(oc)...)
		case statusFailed:
			summary.Failed++
			p.logger.Error("processing failed",
				logging.String(logging.FieldFile, oc.base),
				logging.Error(oc.err))
			oc.release()
		case statusSkipped:
			summary.Skipped++
			p.logger.Info("skipped",
				logging.String(logging.FieldFile, oc.base),
				logging.String("reason", oc.reason))
			oc.release()
		}
	}
	p.logger.Info("processing stage complete",
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("failed", summary.Failed),
		logging.Int("skipped", summary.Skipped))

	if summary.Succeeded == 0 || ctx.Err() != nil {
		releaseUnits(units)
		return summary
	}

	saved, failed := p.saveAll(ctx, units)
	summary.SavedUnits = saved
	summary.FailedUnits = failed
	p.logger.Info("save stage complete",
		logging.Int("saved", saved),
		logging.Int("failed", failed))
	return summary
}

// processAll runs stage one: a bounded pool of workers decoding, classifying,
// and transforming candidate files. Outcomes are aggregated unordered.
func (p *Processor) processAll(ctx context.Context, candidates []string) []outcome {
	total := len(candidates)
	paths := make(chan string)
	results := make(chan outcome, total)
	var completed atomic.Int64

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range paths {
				results <- p.processOne(path)
				p.progress(StageProcess, int(completed.Add(1)), total)
			}
		}()
	}

feed:
	for _, path := range candidates {
		if ctx.Err() != nil {
			break
		}
		select {
		case paths <- path:
		case <-ctx.Done():
			break feed
		}
	}
	close(paths)
	wg.Wait()
	close(results)

	outcomes := make([]outcome, 0, total)
	for oc := range results {
		outcomes = append(outcomes, oc)
	}
	return outcomes
}

// processOne takes a single file through load, classify, and transform. Each
// call owns its buffers exclusively until the returned outcome is handed to
// the aggregation step.
func (p *Processor) processOne(path string) outcome {
	filename := filepath.Base(path)
	base := strings.TrimSuffix(filename, filepath.Ext(filename))

	data, err := os.ReadFile(path)
	if err != nil {
		return outcome{base: base, status: statusFailed,
			err: faults.Wrap(faults.ErrDecode, "pipeline", "load", filename, err)}
	}
	buf, err := imaging.Decode(filename, data)
	if err != nil {
		return outcome{base: base, status: statusFailed,
			err: faults.Wrap(faults.ErrDecode, "pipeline", "load", filename, err)}
	}

	role, ok := texture.Classify(filename, p.mode)
	if !ok {
		return outcome{base: base, status: statusSkipped, reason: "no relevant suffix for mode"}
	}

	outputs, err := texture.Transform(buf, role, p.mode)
	if err != nil {
		return outcome{base: base, status: statusFailed,
			err: faults.Wrap(faults.ErrTransform, "pipeline", "transform", filename, err)}
	}
	return outcome{base: base, status: statusSuccess, outputs: outputs}
}
