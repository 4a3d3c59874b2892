// Package texture holds the pure core of the converter: texture role
// classification from filename suffixes and the per-role channel transforms
// that reinterpret pixel data between rendering pipeline conventions.
//
// Nothing in this package performs I/O. Transforms take one decoded buffer
// and return freshly allocated output buffers keyed by output role, so the
// pipeline can hand results across stages without aliasing.
package texture
