package memory

import "github.com/cadkit/kcl-core/internal/value"

// PipeInfo carries the "previous pipeline result" consulted when a
// pipeline-substitution token (`%`) appears (spec.md §4.3). It is reset
// to absent at the start of each pipeline and updated after each stage.
type PipeInfo struct {
	previousResult value.Value
	active         bool
}

// NewPipeInfo returns a fresh, inactive pipe state.
func NewPipeInfo() *PipeInfo {
	return &PipeInfo{}
}

// Begin resets the carried result to absent, marking a new pipeline in
// progress.
func (p *PipeInfo) Begin() {
	p.previousResult = nil
	p.active = true
}

// End marks the pipeline finished; the carried result becomes
// unavailable to any subsequent, unrelated `%` reference.
func (p *PipeInfo) End() {
	p.active = false
	p.previousResult = nil
}

// Update records stage's result as the value the next stage's `%` sees.
func (p *PipeInfo) Update(stage value.Value) {
	p.previousResult = stage
}

// Previous returns the carried result and whether one is available
// (false both before the first stage and outside any pipeline).
func (p *PipeInfo) Previous() (value.Value, bool) {
	if !p.active || p.previousResult == nil {
		return nil, false
	}
	return p.previousResult, true
}
