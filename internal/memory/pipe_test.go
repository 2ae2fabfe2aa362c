package memory

import (
	"testing"

	"github.com/cadkit/kcl-core/internal/value"
)

func TestPipeInfoLifecycle(t *testing.T) {
	p := NewPipeInfo()
	if _, ok := p.Previous(); ok {
		t.Fatal("expected no previous result before Begin")
	}
	p.Begin()
	if _, ok := p.Previous(); ok {
		t.Fatal("expected no previous result at the start of a pipeline")
	}
	stage1 := &value.UserVal{JSON: 1.0}
	p.Update(stage1)
	got, ok := p.Previous()
	if !ok || got != value.Value(stage1) {
		t.Fatalf("expected stage1 to be the previous result, got %v ok=%v", got, ok)
	}
	p.End()
	if _, ok := p.Previous(); ok {
		t.Fatal("expected no previous result once the pipeline ends")
	}
}
