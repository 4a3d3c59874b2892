// Package faults defines the error taxonomy shared by the texture pipeline
// and the glTF rewriter.
//
// Every failure in the converter is attributable to exactly one input file,
// save unit, or scene document. The sentinel errors here tag failures with
// their category so callers can classify them with errors.Is without parsing
// messages, and Wrap builds consistently shaped error strings that name the
// component and operation that produced them.
package faults
