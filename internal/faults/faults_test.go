package faults_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/thatrtxdude/tarkov-texture-converter/internal/faults"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := faults.Wrap(faults.ErrDecode, "pipeline", "load", "unreadable image", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, faults.ErrDecode) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"pipeline", "load", "unreadable image"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapNilMarkerDefaultsToWrite(t *testing.T) {
	err := faults.Wrap(nil, "pipeline", "save", "disk full", nil)
	if !errors.Is(err, faults.ErrWrite) {
		t.Fatalf("expected write marker fallback, got %v", err)
	}
}

func TestIsFileLevel(t *testing.T) {
	if !faults.IsFileLevel(faults.Wrap(faults.ErrTransform, "texture", "remap", "bad channels", nil)) {
		t.Fatal("transform failures are file level")
	}
	if faults.IsFileLevel(faults.Wrap(faults.ErrWrite, "pipeline", "save", "collision", nil)) {
		t.Fatal("write failures are save-unit level")
	}
	if faults.IsFileLevel(nil) {
		t.Fatal("nil is not file level")
	}
}
