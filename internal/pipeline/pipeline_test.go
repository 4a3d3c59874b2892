package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/thatrtxdude/tarkov-texture-converter/internal/imaging"
	"github.com/thatrtxdude/tarkov-texture-converter/internal/logging"
	"github.com/thatrtxdude/tarkov-texture-converter/internal/scan"
	"github.com/thatrtxdude/tarkov-texture-converter/internal/texture"
)

func writePNG(t *testing.T, path string, pixels ...color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, len(pixels), 1))
	for i, px := range pixels {
		img.SetNRGBA(i, 0, px)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestProcessor(t *testing.T, outputDir string, mode texture.Mode, progress ProgressFunc) *Processor {
	t.Helper()
	return New(Options{
		Mode:      mode,
		Workers:   2,
		OutputDir: outputDir,
		Logger:    logging.NewNop(),
		Progress:  progress,
	})
}

func TestRunStandardMode(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "converted_textures")
	if err := os.Mkdir(out, 0o755); err != nil {
		t.Fatal(err)
	}

	writePNG(t, filepath.Join(dir, "wall_n.png"), color.NRGBA{R: 1, G: 2, B: 3, A: 4})
	writePNG(t, filepath.Join(dir, "crate_d.png"),
		color.NRGBA{R: 10, G: 20, B: 30, A: 255},
		color.NRGBA{R: 40, G: 50, B: 60, A: 128})
	writePNG(t, filepath.Join(dir, "barrel_gloss.png"), color.NRGBA{R: 100, G: 0, B: 0, A: 255})
	if err := os.WriteFile(filepath.Join(dir, "broken_d.png"), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	candidates, err := scan.CandidateFiles(dir)
	if err != nil {
		t.Fatal(err)
	}

	p := newTestProcessor(t, out, texture.ModeStandard, nil)
	summary := p.Run(context.Background(), candidates)

	if summary.Succeeded != 3 || summary.Failed != 1 || summary.Skipped != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.Total() != len(candidates) {
		t.Fatalf("counts must cover every candidate: %+v vs %d", summary, len(candidates))
	}

	// wall_n -> converted; crate_d -> color + alpha (transparency present);
	// barrel_gloss -> roughness.
	for _, name := range []string{
		"wall_n_converted.png",
		"crate_d_color.png",
		"crate_d_alpha.png",
		"barrel_gloss_roughness.png",
	} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("expected output %s: %v", name, err)
		}
	}
	if summary.SavedUnits != 4 || summary.FailedUnits != 0 {
		t.Fatalf("unexpected save counts %+v", summary)
	}
}

func TestRunSpecGlosMode(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	if err := os.Mkdir(out, 0o755); err != nil {
		t.Fatal(err)
	}

	writePNG(t, filepath.Join(dir, "rifle_sg.png"), color.NRGBA{R: 5, G: 6, B: 7, A: 55})
	writePNG(t, filepath.Join(dir, "rifle_d.png"), color.NRGBA{R: 8, G: 9, B: 10, A: 100})
	writePNG(t, filepath.Join(dir, "unsuffixed.png"), color.NRGBA{A: 255})

	candidates, err := scan.CandidateFiles(dir)
	if err != nil {
		t.Fatal(err)
	}

	p := newTestProcessor(t, out, texture.ModeSpecGlos, nil)
	summary := p.Run(context.Background(), candidates)

	if summary.Succeeded != 2 || summary.Failed != 0 || summary.Skipped != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	specPath := filepath.Join(out, "rifle_sg_spec.png")
	roughPath := filepath.Join(out, "rifle_sg_roughness.png")
	colorPath := filepath.Join(out, "rifle_d_color.png")
	for _, path := range []string{specPath, roughPath, colorPath} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected output %s: %v", path, err)
		}
	}
	// SPECGLOS mode never emits a diffuse alpha map even with transparency.
	if _, err := os.Stat(filepath.Join(out, "rifle_d_alpha.png")); err == nil {
		t.Fatal("alpha map must not exist in specglos mode")
	}

	data, err := os.ReadFile(roughPath)
	if err != nil {
		t.Fatal(err)
	}
	buf, err := imaging.Decode("rifle_sg_roughness.png", data)
	if err != nil {
		t.Fatal(err)
	}
	// Roughness = complement of the source alpha (255-55), replicated.
	want := uint8(200)
	if buf.Pix[0] != want || buf.Pix[1] != want || buf.Pix[2] != want {
		t.Fatalf("roughness pixel = %v, want %d replicated", buf.Pix[:4], want)
	}
}

func TestSaveCollisionRetriesOnce(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	if err := os.Mkdir(out, 0o755); err != nil {
		t.Fatal(err)
	}
	writePNG(t, filepath.Join(dir, "wall_n.png"), color.NRGBA{R: 1, G: 2, B: 3, A: 255})

	// Occupy the deterministic destination so the exclusive create collides.
	blocked := filepath.Join(out, "wall_n_converted.png")
	if err := os.WriteFile(blocked, []byte("occupied"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := newTestProcessor(t, out, texture.ModeStandard, nil)
	summary := p.Run(context.Background(), []string{filepath.Join(dir, "wall_n.png")})
	if summary.SavedUnits != 1 || summary.FailedUnits != 0 {
		t.Fatalf("expected retry to succeed: %+v", summary)
	}

	// Blocked file untouched, one disambiguated sibling present.
	got, err := os.ReadFile(blocked)
	if err != nil || string(got) != "occupied" {
		t.Fatalf("pre-existing file must be untouched: %q %v", got, err)
	}
	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatal(err)
	}
	var retried int
	for _, entry := range entries {
		name := entry.Name()
		if name != "wall_n_converted.png" && strings.HasPrefix(name, "wall_n_converted_") {
			retried++
		}
	}
	if retried != 1 {
		t.Fatalf("expected exactly one disambiguated output, got %d", retried)
	}
}

func TestRunProgressReachesTotals(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	if err := os.Mkdir(out, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"a_n.png", "b_d.png", "c_gloss.png"} {
		writePNG(t, filepath.Join(dir, name), color.NRGBA{R: 9, A: 255})
	}
	candidates, err := scan.CandidateFiles(dir)
	if err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	maxCompleted := map[Stage]int{}
	totals := map[Stage]int{}
	progress := func(stage Stage, completed, total int) {
		mu.Lock()
		defer mu.Unlock()
		if completed > maxCompleted[stage] {
			maxCompleted[stage] = completed
		}
		totals[stage] = total
	}

	p := newTestProcessor(t, out, texture.ModeStandard, progress)
	summary := p.Run(context.Background(), candidates)
	if summary.Succeeded != 3 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	mu.Lock()
	defer mu.Unlock()
	if maxCompleted[StageProcess] != 3 || totals[StageProcess] != 3 {
		t.Fatalf("process progress incomplete: %v / %v", maxCompleted, totals)
	}
	if maxCompleted[StageSave] != totals[StageSave] || totals[StageSave] == 0 {
		t.Fatalf("save progress incomplete: %v / %v", maxCompleted, totals)
	}
}

func TestRunCancelledBeforeStart(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	if err := os.Mkdir(out, 0o755); err != nil {
		t.Fatal(err)
	}
	writePNG(t, filepath.Join(dir, "a_n.png"), color.NRGBA{A: 255})
	writePNG(t, filepath.Join(dir, "b_n.png"), color.NRGBA{A: 255})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newTestProcessor(t, out, texture.ModeStandard, nil)
	summary := p.Run(ctx, []string{filepath.Join(dir, "a_n.png"), filepath.Join(dir, "b_n.png")})

	if summary.Total() > 2 {
		t.Fatalf("terminal classifications exceed candidates: %+v", summary)
	}
	if summary.SavedUnits != 0 {
		t.Fatalf("cancelled run must not enter the save stage: %+v", summary)
	}
	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("no outputs expected after pre-run cancellation, got %d", len(entries))
	}
}

func TestRunEmptyCandidates(t *testing.T) {
	p := newTestProcessor(t, t.TempDir(), texture.ModeStandard, nil)
	summary := p.Run(context.Background(), nil)
	if summary != (Summary{}) {
		t.Fatalf("expected zero summary, got %+v", summary)
	}
}
