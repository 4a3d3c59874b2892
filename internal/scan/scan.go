// Package scan enumerates candidate texture files and allocates the unique
// output folder a run writes into.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/thatrtxdude/tarkov-texture-converter/internal/imaging"
)

// CandidateFiles returns the absolute paths of every supported image file
// directly inside dir. Dotfiles and subdirectories are ignored. The result is
// sorted for deterministic run ordering; the pipeline itself makes no
// ordering promises.
func CandidateFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan input folder: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := imaging.SupportedExtensions[ext]; !ok {
			continue
		}
		abs, err := filepath.Abs(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", entry.Name(), err)
		}
		files = append(files, abs)
	}
	sort.Strings(files)
	return files, nil
}

// UniqueOutputDir creates and returns a fresh output directory inside dir.
// The first unused of base, base_1, base_2, … is taken.
func UniqueOutputDir(dir, base string) (string, error) {
	candidate := filepath.Join(dir, base)
	for counter := 1; ; counter++ {
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			break
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d", base, counter))
	}
	if err := os.MkdirAll(candidate, 0o755); err != nil {
		return "", fmt.Errorf("create output directory %s: %w", candidate, err)
	}
	return candidate, nil
}
