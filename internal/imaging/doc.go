// Package imaging is the codec boundary of the converter: it decodes input
// file bytes into pixel buffers and encodes buffers back into PNG bytes.
// The pipeline treats both directions as fallible, synchronous, and free of
// side effects.
package imaging
