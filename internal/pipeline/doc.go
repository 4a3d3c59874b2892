// Package pipeline orchestrates texture conversion across two independent
// bounded-parallel stages.
//
// Stage one decodes, classifies, and transforms every candidate file with a
// worker pool; each file reaches exactly one terminal outcome (success,
// failed, skipped) and a failure in one file never aborts another. Stage two
// flattens the successful output sets into independent save units and
// encodes/writes them under the same worker bound.
//
// Buffers move through the stages with exclusive ownership: a stage that
// terminates a unit (skip, failure, cancellation) drops the buffers it still
// holds, and the save stage releases each buffer exactly once after its write
// attempt. Cancellation is cooperative and checked between units; in-flight
// units finish naturally.
package pipeline
