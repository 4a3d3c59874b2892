package scan

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCandidateFilesFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b_n.png"))
	touch(t, filepath.Join(dir, "a_d.TGA"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, ".hidden.png"))
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	touch(t, filepath.Join(dir, "sub", "nested_d.png"))

	files, err := CandidateFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 candidates, got %v", files)
	}
	if filepath.Base(files[0]) != "a_d.TGA" || filepath.Base(files[1]) != "b_n.png" {
		t.Fatalf("unexpected order %v", files)
	}
	for _, f := range files {
		if !filepath.IsAbs(f) {
			t.Fatalf("expected absolute path, got %s", f)
		}
	}
}

func TestCandidateFilesMissingDir(t *testing.T) {
	if _, err := CandidateFiles(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestUniqueOutputDir(t *testing.T) {
	dir := t.TempDir()

	first, err := UniqueOutputDir(dir, "converted_textures")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(first) != "converted_textures" {
		t.Fatalf("unexpected first dir %s", first)
	}

	second, err := UniqueOutputDir(dir, "converted_textures")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(second) != "converted_textures_1" {
		t.Fatalf("unexpected second dir %s", second)
	}

	third, err := UniqueOutputDir(dir, "converted_textures")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(third) != "converted_textures_2" {
		t.Fatalf("unexpected third dir %s", third)
	}

	for _, d := range []string{first, second, third} {
		info, err := os.Stat(d)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory at %s", d)
		}
	}
}
