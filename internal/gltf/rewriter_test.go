package gltf

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/thatrtxdude/tarkov-texture-converter/internal/logging"
)

func writeDoc(t *testing.T, path string, doc map[string]any) {
	t.Helper()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func readDoc(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	return doc
}

// specGlosScene is the migration scenario: one SPECGLOS image, one texture
// referencing it, one material using it through the specular-glossiness
// extension.
func specGlosScene() map[string]any {
	return map[string]any{
		"asset": map[string]any{"version": "2.0"},
		"images": []any{
			map[string]any{"uri": "tex_sg.png"},
		},
		"textures": []any{
			map[string]any{"source": float64(0)},
		},
		"materials": []any{
			map[string]any{
				"name": "gun_metal",
				"extensions": map[string]any{
					specGlossExtension: map[string]any{
						"diffuseFactor":             []any{1.0, 1.0, 1.0, 1.0},
						"specularGlossinessTexture": map[string]any{"index": float64(0)},
					},
				},
			},
		},
		"extensionsUsed":     []any{specGlossExtension},
		"extensionsRequired": []any{specGlossExtension},
	}
}

func TestMigratesSpecularGlossinessMaterial(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "scene.gltf")
	writeDoc(t, docPath, specGlosScene())

	r := New(dir, filepath.Join(dir, "converted_textures"), 2, logging.NewNop())
	changed, err := r.RewriteDocument(docPath)
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Fatal("expected document to change")
	}

	out := readDoc(t, filepath.Join(dir, "scene_converted.gltf"))

	images := out["images"].([]any)
	uri := images[0].(map[string]any)["uri"]
	if uri != "converted_textures/tex_sg_roughness.png" {
		t.Fatalf("unexpected rewritten uri %v", uri)
	}

	material := out["materials"].([]any)[0].(map[string]any)
	if _, ok := material["extensions"]; ok {
		t.Fatal("specular-glossiness extension block should be removed")
	}
	pbr, ok := material["pbrMetallicRoughness"].(map[string]any)
	if !ok {
		t.Fatal("expected pbrMetallicRoughness block")
	}
	if _, ok := pbr["metallicRoughnessTexture"]; !ok {
		t.Fatal("expected metallicRoughnessTexture migration")
	}
	if pbr["metallicFactor"] != 0.0 {
		t.Fatalf("metallicFactor = %v, want 0", pbr["metallicFactor"])
	}
	if pbr["roughnessFactor"] != 1.0 {
		t.Fatalf("roughnessFactor = %v, want 1", pbr["roughnessFactor"])
	}
	if _, ok := pbr["baseColorFactor"]; !ok {
		t.Fatal("diffuseFactor should migrate to baseColorFactor")
	}

	if _, ok := out["extensionsUsed"]; ok {
		t.Fatal("extensionsUsed should be dropped once empty")
	}
	if _, ok := out["extensionsRequired"]; ok {
		t.Fatal("extensionsRequired should be dropped once empty")
	}

	// The original document is never overwritten.
	original := readDoc(t, docPath)
	if original["images"].([]any)[0].(map[string]any)["uri"] != "tex_sg.png" {
		t.Fatal("original document must be untouched")
	}
}

func TestKeepsOtherExtensionDeclarations(t *testing.T) {
	dir := t.TempDir()
	doc := specGlosScene()
	doc["extensionsUsed"] = []any{"KHR_lights_punctual", specGlossExtension}
	delete(doc, "extensionsRequired")
	docPath := filepath.Join(dir, "scene.gltf")
	writeDoc(t, docPath, doc)

	r := New(dir, "converted_textures", 1, logging.NewNop())
	if _, err := r.RewriteDocument(docPath); err != nil {
		t.Fatal(err)
	}

	out := readDoc(t, filepath.Join(dir, "scene_converted.gltf"))
	used, ok := out["extensionsUsed"].([]any)
	if !ok || len(used) != 1 || used[0] != "KHR_lights_punctual" {
		t.Fatalf("unexpected extensionsUsed %v", out["extensionsUsed"])
	}
}

func TestNormalAndDiffuseURIRewrite(t *testing.T) {
	dir := t.TempDir()
	doc := map[string]any{
		"images": []any{
			map[string]any{"uri": "textures\\wall_n.tga"},
			map[string]any{"uri": "crate_d.jpg"},
			map[string]any{"uri": "data:image/png;base64,AAAA"},
			map[string]any{"uri": "barrel_gloss.png"},
			map[string]any{},
		},
		"textures": []any{},
	}
	docPath := filepath.Join(dir, "scene.gltf")
	writeDoc(t, docPath, doc)

	r := New(dir, "/abs/path/converted_textures", 1, logging.NewNop())
	changed, err := r.RewriteDocument(docPath)
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Fatal("expected change")
	}

	out := readDoc(t, filepath.Join(dir, "scene_converted.gltf"))
	images := out["images"].([]any)
	if uri := images[0].(map[string]any)["uri"]; uri != "converted_textures/wall_n_converted.png" {
		t.Fatalf("normal uri = %v", uri)
	}
	if uri := images[1].(map[string]any)["uri"]; uri != "converted_textures/crate_d_color.png" {
		t.Fatalf("diffuse uri = %v", uri)
	}
	if uri := images[2].(map[string]any)["uri"]; uri != "data:image/png;base64,AAAA" {
		t.Fatalf("data uri must be skipped, got %v", uri)
	}
	// Gloss images never participate: SPECGLOS conversions emit no gloss maps.
	if uri := images[3].(map[string]any)["uri"]; uri != "barrel_gloss.png" {
		t.Fatalf("gloss uri must be untouched, got %v", uri)
	}
}

func TestNoOpDocumentProducesNoOutput(t *testing.T) {
	dir := t.TempDir()
	doc := map[string]any{
		"images":   []any{map[string]any{"uri": "unrelated.png"}},
		"textures": []any{map[string]any{"source": float64(0)}},
		"materials": []any{
			map[string]any{"name": "plain"},
		},
	}
	docPath := filepath.Join(dir, "scene.gltf")
	writeDoc(t, docPath, doc)

	r := New(dir, "converted_textures", 1, logging.NewNop())
	changed, err := r.RewriteDocument(docPath)
	if err != nil {
		t.Fatal(err)
	}
	if changed {
		t.Fatal("document without relevant references must not change")
	}
	if _, err := os.Stat(filepath.Join(dir, "scene_converted.gltf")); err == nil {
		t.Fatal("no output file expected for a no-op document")
	}
}

func TestMissingArraysIsParseFailure(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "scene.gltf")
	writeDoc(t, docPath, map[string]any{"asset": map[string]any{"version": "2.0"}})

	r := New(dir, "converted_textures", 1, logging.NewNop())
	if _, err := r.RewriteDocument(docPath); err == nil {
		t.Fatal("expected parse failure for document without images/textures")
	}
}

func TestOutOfRangeTextureIndexIsIgnored(t *testing.T) {
	dir := t.TempDir()
	doc := specGlosScene()
	doc["materials"].([]any)[0].(map[string]any)["extensions"].(map[string]any)[specGlossExtension].(map[string]any)["specularGlossinessTexture"] = map[string]any{"index": float64(99)}
	docPath := filepath.Join(dir, "scene.gltf")
	writeDoc(t, docPath, doc)

	r := New(dir, "converted_textures", 1, logging.NewNop())
	changed, err := r.RewriteDocument(docPath)
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Fatal("uri rewrite alone still changes the document")
	}

	out := readDoc(t, filepath.Join(dir, "scene_converted.gltf"))
	pbr := out["materials"].([]any)[0].(map[string]any)["pbrMetallicRoughness"].(map[string]any)
	if _, ok := pbr["metallicRoughnessTexture"]; ok {
		t.Fatal("out-of-range texture reference must not migrate")
	}
}

func TestRewriteIdempotence(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "scene.gltf")
	writeDoc(t, docPath, specGlosScene())

	r := New(dir, "converted_textures", 1, logging.NewNop())
	if _, err := r.RewriteDocument(docPath); err != nil {
		t.Fatal(err)
	}
	first, err := os.ReadFile(filepath.Join(dir, "scene_converted.gltf"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := r.RewriteDocument(docPath); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(filepath.Join(dir, "scene_converted.gltf"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("rewriting the same original twice must be byte-identical")
	}
}

func TestRewriteAllSkipsOwnOutput(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, filepath.Join(dir, "a.gltf"), specGlosScene())
	writeDoc(t, filepath.Join(dir, "b.gltf"), specGlosScene())
	// A leftover from a previous run must not be reprocessed.
	writeDoc(t, filepath.Join(dir, "a_converted.gltf"), specGlosScene())
	// Malformed documents fail in isolation.
	if err := os.WriteFile(filepath.Join(dir, "broken.gltf"), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := New(dir, "converted_textures", 4, logging.NewNop())
	stats, err := r.RewriteAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Found != 3 || stats.Updated != 2 || stats.Failed != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if _, err := os.Stat(filepath.Join(dir, "a_converted_converted.gltf")); err == nil {
		t.Fatal("marker-suffixed documents must be skipped")
	}
}
