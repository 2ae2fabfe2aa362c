package value

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/cadkit/kcl-core/internal/kclast"
)

func TestUserValRoundTrip(t *testing.T) {
	uv := &UserVal{JSON: map[string]any{"a": 1.0, "b": []any{1.0, 2.0, "x"}}}
	raw, err := ToJSON(uv)
	if err != nil {
		t.Fatal(err)
	}
	var out any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatal(err)
	}
	m, ok := out.(map[string]any)
	if !ok || m["a"] != 1.0 {
		t.Fatalf("round trip mismatch: %#v", out)
	}
}

func TestKclNoneSentinel(t *testing.T) {
	n := None(Metadata{Range: kclast.SourceRange{Start: 1, End: 2}})
	if !IsNone(n) {
		t.Fatal("expected None() to report IsNone")
	}
	if IsNone(&UserVal{JSON: 5.0}) {
		t.Fatal("expected a plain number not to report IsNone")
	}
}

func TestFromJSONOptAbsent(t *testing.T) {
	var dst float64
	present, err := FromJSONOpt(None(), &dst)
	if err != nil {
		t.Fatal(err)
	}
	if present {
		t.Fatal("expected present=false for KclNone")
	}
}

func TestFromJSONOptPresent(t *testing.T) {
	var dst float64
	present, err := FromJSONOpt(&UserVal{JSON: 7.5}, &dst)
	if err != nil {
		t.Fatal(err)
	}
	if !present || dst != 7.5 {
		t.Fatalf("expected present=true dst=7.5, got present=%v dst=%v", present, dst)
	}
}

func TestPlaneJSONHasTypeDiscriminant(t *testing.T) {
	id := uuid.New()
	p := &Plane{ID: id, Kind: PlaneXY}
	raw, err := ToJSON(p)
	if err != nil {
		t.Fatal(err)
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatal(err)
	}
	if out["type"] != "Plane" {
		t.Fatalf("expected type discriminant Plane, got %v", out["type"])
	}
	if out["id"] != id.String() {
		t.Fatalf("expected id %s, got %v", id, out["id"])
	}
}

func TestSourceRangesFlattensCollections(t *testing.T) {
	sg1 := &SketchGroup{Meta: []Metadata{{Range: kclast.SourceRange{Start: 1, End: 2}}}}
	sg2 := &SketchGroup{Meta: []Metadata{{Range: kclast.SourceRange{Start: 3, End: 4}}}}
	sgs := &SketchGroups{Value: []*SketchGroup{sg1, sg2}}
	ranges := SourceRanges(sgs)
	if len(ranges) != 2 {
		t.Fatalf("expected 2 ranges, got %d: %v", len(ranges), ranges)
	}
}
