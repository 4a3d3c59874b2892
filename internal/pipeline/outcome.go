package pipeline

import "github.com/thatrtxdude/tarkov-texture-converter/internal/texture"

type status int

const (
	statusSuccess status = iota
	statusFailed
	statusSkipped
)

// outcome is the terminal classification of one input file after stage one.
// A success outcome owns its output buffers until the save stage consumes
// them; failed and skipped outcomes carry none.
type outcome struct {
	base    string
	status  status
	outputs map[texture.OutputKey]*texture.Buffer
	err     error
	reason  string
}

// release drops every buffer the outcome still owns. Called for non-success
// outcomes after stage-one aggregation and for success outcomes that never
// reach the save stage (cancellation path).
func (o *outcome) release() {
	o.outputs = nil
}
