package gltf

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/thatrtxdude/tarkov-texture-converter/internal/faults"
	"github.com/thatrtxdude/tarkov-texture-converter/internal/logging"
	"github.com/thatrtxdude/tarkov-texture-converter/internal/texture"
)

const (
	// specGlossExtension is the material extension being migrated away from.
	specGlossExtension = "KHR_materials_pbrSpecularGlossiness"
	// outputMarker tags rewritten documents so later runs skip them.
	outputMarker = "_converted"
)

// Rewriter updates glTF scene documents after a SPECGLOS-mode conversion so
// their materials reference the newly produced textures.
type Rewriter struct {
	inputDir   string
	outputBase string
	workers    int
	logger     *slog.Logger
}

// Stats summarizes one rewrite pass.
type Stats struct {
	Found   int
	Updated int
	Failed  int
}

// New builds a Rewriter. outputDir may be absolute; only its base name ends
// up in rewritten URIs. Worker counts below one run single-threaded.
func New(inputDir, outputDir string, workers int, logger *slog.Logger) *Rewriter {
	if workers < 1 {
		workers = 1
	}
	return &Rewriter{
		inputDir:   inputDir,
		outputBase: filepath.Base(outputDir),
		workers:    workers,
		logger:     logging.NewComponentLogger(logger, "gltf"),
	}
}

// RewriteAll processes every .gltf document directly inside the input folder,
// in parallel across documents. Documents already carrying the output marker
// are skipped so the rewriter never reprocesses its own output.
func (r *Rewriter) RewriteAll(ctx context.Context) (Stats, error) {
	entries, err := os.ReadDir(r.inputDir)
	if err != nil {
		return Stats{}, fmt.Errorf("scan for gltf documents: %w", err)
	}

	var docs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.EqualFold(filepath.Ext(name), ".gltf") {
			continue
		}
		base := strings.TrimSuffix(name, filepath.Ext(name))
		if strings.HasSuffix(base, outputMarker) {
			continue
		}
		docs = append(docs, filepath.Join(r.inputDir, name))
	}

	stats := Stats{Found: len(docs)}
	if len(docs) == 0 {
		r.logger.Info("no gltf documents found")
		return stats, nil
	}

	paths := make(chan string)
	var updated, failed atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for docPath := range paths {
				changed, err := r.RewriteDocument(docPath)
				switch {
				case err != nil:
					failed.Add(1)
					r.logger.Error("document rewrite failed",
						logging.String(logging.FieldDocument, filepath.Base(docPath)),
						logging.Error(err))
				case changed:
					updated.Add(1)
				default:
					r.logger.Info("no relevant changes",
						logging.String(logging.FieldDocument, filepath.Base(docPath)))
				}
			}
		}()
	}

feed:
	for _, docPath := range docs {
		if ctx.Err() != nil {
			break
		}
		select {
		case paths <- docPath:
		case <-ctx.Done():
			break feed
		}
	}
	close(paths)
	wg.Wait()

	stats.Updated = int(updated.Load())
	stats.Failed = int(failed.Load())
	r.logger.Info("gltf update complete",
		logging.Int("found", stats.Found),
		logging.Int("updated", stats.Updated),
		logging.Int("failed", stats.Failed))
	return stats, nil
}

// RewriteDocument rewrites a single scene document. When anything changed the
// result is written alongside the original with the output marker in its
// name; an untouched document produces no write at all.
func (r *Rewriter) RewriteDocument(docPath string) (bool, error) {
	raw, err := os.ReadFile(docPath)
	if err != nil {
		return false, faults.Wrap(faults.ErrParse, "gltf", "read", filepath.Base(docPath), err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return false, faults.Wrap(faults.ErrParse, "gltf", "parse", filepath.Base(docPath), err)
	}

	images, imagesOK := asSlice(doc["images"])
	textures, texturesOK := asSlice(doc["textures"])
	if !imagesOK || !texturesOK {
		return false, faults.Wrap(faults.ErrParse, "gltf", "parse", filepath.Base(docPath)+": missing images or textures array", nil)
	}

	touched := r.rewriteImageURIs(images)
	modified := len(touched) > 0

	removedSpecGloss := false
	affectedMaterials := 0
	if modified {
		materials, _ := asSlice(doc["materials"])
		for _, entry := range materials {
			material, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			if removed := migrateMaterial(material, textures, touched); removed {
				removedSpecGloss = true
				affectedMaterials++
			} else if referencesTouched(material, textures, touched) {
				// Plain PBR materials need no content change; the URI rewrite
				// already happened on the image entries they reference.
				affectedMaterials++
			}
		}
	}

	if removedSpecGloss {
		stripExtensionDeclaration(doc, "extensionsUsed")
		stripExtensionDeclaration(doc, "extensionsRequired")
	}

	if !modified {
		return false, nil
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return false, faults.Wrap(faults.ErrWrite, "gltf", "encode", filepath.Base(docPath), err)
	}
	outPath := markedOutputPath(docPath)
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return false, faults.Wrap(faults.ErrWrite, "gltf", "write", filepath.Base(outPath), err)
	}
	r.logger.Info("document rewritten",
		logging.String(logging.FieldDocument, filepath.Base(docPath)),
		logging.String("output", filepath.Base(outPath)),
		logging.Int("touched_images", len(touched)),
		logging.Int("materials", affectedMaterials))
	return true, nil
}

// rewriteImageURIs updates every rewritable image URI in place and returns
// the set of touched image indices. Embedded data URIs have no filename and
// are left alone.
func (r *Rewriter) rewriteImageURIs(images []any) map[int]struct{} {
	touched := make(map[int]struct{})
	for index, entry := range images {
		img, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		uri, _ := img["uri"].(string)
		if uri == "" || strings.HasPrefix(uri, "data:") {
			continue
		}

		filename := path.Base(strings.ReplaceAll(uri, "\\", "/"))
		role, ok := texture.Classify(filename, texture.ModeSpecGlos)
		if !ok {
			continue
		}
		var key texture.OutputKey
		switch role {
		case texture.RoleDiffuse:
			key = texture.KeyColor
		case texture.RoleSpecGlos:
			key = texture.KeyRoughness
		case texture.RoleNormal:
			key = texture.KeyConverted
		default:
			// SPECGLOS conversions never emit gloss outputs, so gloss images
			// have nothing to point at.
			continue
		}

		base := strings.TrimSuffix(filename, path.Ext(filename))
		newURI := r.outputBase + "/" + base + key.Suffix() + ".png"
		if uri == newURI {
			continue
		}
		img["uri"] = newURI
		touched[index] = struct{}{}
	}
	return touched
}

func markedOutputPath(docPath string) string {
	ext := filepath.Ext(docPath)
	return strings.TrimSuffix(docPath, ext) + outputMarker + ext
}

// stripExtensionDeclaration removes the specular-glossiness entry from a
// top-level extension name array, dropping the array entirely when it ends
// up empty.
func stripExtensionDeclaration(doc map[string]any, field string) {
	declared, ok := asSlice(doc[field])
	if !ok {
		return
	}
	kept := make([]any, 0, len(declared))
	for _, entry := range declared {
		if name, _ := entry.(string); name == specGlossExtension {
			continue
		}
		kept = append(kept, entry)
	}
	if len(kept) == len(declared) {
		return
	}
	if len(kept) == 0 {
		delete(doc, field)
		return
	}
	doc[field] = kept
}

func asSlice(value any) ([]any, bool) {
	s, ok := value.([]any)
	return s, ok
}
