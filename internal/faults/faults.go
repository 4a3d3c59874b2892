package faults

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDecode        = errors.New("decode failure")
	ErrTransform     = errors.New("transform failure")
	ErrEncode        = errors.New("encode failure")
	ErrWrite         = errors.New("write failure")
	ErrParse         = errors.New("document parse failure")
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that carries component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrWrite
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFileLevel reports whether the error belongs to the per-file taxonomy
// (decode/transform) as opposed to a save-unit or document failure.
func IsFileLevel(err error) bool {
	return errors.Is(err, ErrDecode) || errors.Is(err, ErrTransform)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "conversion failure"
	}
	return strings.Join(parts, ": ")
}
