package pipeline

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/thatrtxdude/tarkov-texture-converter/internal/faults"
	"github.com/thatrtxdude/tarkov-texture-converter/internal/fileutil"
	"github.com/thatrtxdude/tarkov-texture-converter/internal/imaging"
	"github.com/thatrtxdude/tarkov-texture-converter/internal/logging"
	"github.com/thatrtxdude/tarkov-texture-converter/internal/texture"
)

// saveUnit is one (buffer, destination) pair scheduled in the save stage.
// Ownership of the buffer moves into the unit; the save stage releases it
// exactly once after the write attempt.
type saveUnit struct {
	base string
	key  texture.OutputKey
	buf  *texture.Buffer
}

// saveUnits flattens a success outcome into independent save units, moving
// buffer ownership out of the outcome.
func (p *Processor) saveUnits(oc *outcome) []saveUnit {
	units := make([]saveUnit, 0, len(oc.outputs))
	for key, buf := range oc.outputs {
		units = append(units, saveUnit{base: oc.base, key: key, buf: buf})
	}
	oc.outputs = nil
	return units
}

func releaseUnits(units []saveUnit) {
	for i := range units {
		units[i].buf = nil
	}
}

// saveAll runs stage two under the same worker bound as stage one, using a
// counting admission gate. Every unit's buffer is released after its save
// attempt regardless of the result, including on the cancellation path.
func (p *Processor) saveAll(ctx context.Context, units []saveUnit) (saved, failed int) {
	total := len(units)
	if total == 0 {
		return 0, 0
	}

	gate := make(chan struct{}, p.workers)
	var wg sync.WaitGroup
	var completed, savedCount, failedCount atomic.Int64

	for i := range units {
		if ctx.Err() != nil {
			releaseUnits(units[i:])
			break
		}
		gate <- struct{}{}
		wg.Add(1)
		go func(unit *saveUnit) {
			defer wg.Done()
			defer func() { <-gate }()

			err := p.saveOne(unit)
			unit.buf = nil
			if err != nil {
				failedCount.Add(1)
				p.logger.Error("save failed",
					logging.String(logging.FieldFile, unit.base),
					logging.String("map", string(unit.key)),
					logging.Error(err))
			} else {
				savedCount.Add(1)
			}
			p.progress(StageSave, int(completed.Add(1)), total)
		}(&units[i])
	}
	wg.Wait()
	return int(savedCount.Load()), int(failedCount.Load())
}

// saveOne encodes a unit's buffer and writes it with an exclusive create.
// A name collision gets one retry under a short random disambiguator; any
// other write error is a hard failure for this unit only.
func (p *Processor) saveOne(unit *saveUnit) error {
	if err := unit.buf.Validate(); err != nil {
		return faults.Wrap(faults.ErrEncode, "pipeline", "save", unit.base, err)
	}
	data, err := imaging.EncodePNG(unit.buf, p.compression)
	if err != nil {
		return faults.Wrap(faults.ErrEncode, "pipeline", "save", unit.base, err)
	}

	name := fileutil.InsertSuffix(unit.base+".png", unit.key.Suffix())
	path := filepath.Join(p.outputDir, name)
	err = fileutil.WriteExclusive(path, data)
	if err == nil {
		return nil
	}
	if !fileutil.IsExist(err) {
		return faults.Wrap(faults.ErrWrite, "pipeline", "save", name, err)
	}

	alt := fileutil.InsertSuffix(name, "_"+uuid.NewString()[:8])
	p.logger.Warn("output name collision, retrying",
		logging.String(logging.FieldFile, name),
		logging.String("retry", alt))
	if err := fileutil.WriteExclusive(filepath.Join(p.outputDir, alt), data); err != nil {
		return faults.Wrap(faults.ErrWrite, "pipeline", "save", alt, err)
	}
	return nil
}
