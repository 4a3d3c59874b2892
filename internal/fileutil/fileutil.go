// Package fileutil provides small filesystem helpers shared by the pipeline
// and the glTF rewriter.
package fileutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// InsertSuffix inserts a suffix into a filename directly before its
// extension: InsertSuffix("wall_sg.png", "_roughness") == "wall_sg_roughness.png".
// A missing leading underscore is added.
func InsertSuffix(filename, suffix string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	if base != "" && suffix != "" && !strings.HasPrefix(suffix, "_") {
		suffix = "_" + suffix
	}
	return base + suffix + ext
}

// WriteExclusive writes data to path, failing with fs.ErrExist when the
// destination already exists. The exclusive create keeps concurrent save
// units from silently clobbering each other's output.
func WriteExclusive(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}

// IsExist reports whether err indicates an exclusive-create collision.
func IsExist(err error) bool {
	return errors.Is(err, fs.ErrExist)
}
