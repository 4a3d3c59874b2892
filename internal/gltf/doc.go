// Package gltf rewrites glTF scene documents after a SPECGLOS-mode texture
// conversion.
//
// Documents are loaded whole into an untyped JSON tree so unknown fields
// (meshes, accessors, animations) round-trip untouched. The rewriter mutates
// only scalar URI fields, material extension sub-objects, and the top-level
// extension declaration arrays; array entries are never removed or reordered
// so index-based cross-references stay valid. Each changed document is
// written to a sibling file carrying the _converted marker; originals are
// never overwritten.
package gltf
