package value

import (
	"os"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/google/uuid"
)

func TestMain(m *testing.M) {
	v := m.Run()
	snaps.Clean(m)
	os.Exit(v)
}

// TestCanonicalJSONSnapshots locks down the shape of the tagged JSON form
// for the composite variants (spec.md §4.1, §6), the same "assert a
// serialized shape" use go-snaps gets in the teacher's fixture suite.
// UUIDs are fixed rather than minted so the snapshot is reproducible.
func TestCanonicalJSONSnapshots(t *testing.T) {
	planeID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	plane := &Plane{
		ID:     planeID,
		Kind:   PlaneXY,
		XAxis:  Point3{X: 1},
		YAxis:  Point3{Y: 1},
		ZAxis:  Point3{Z: 1},
	}
	raw, err := ToJSON(plane)
	if err != nil {
		t.Fatal(err)
	}
	snaps.MatchJSON(t, raw)
}

func TestSketchGroupJSONSnapshot(t *testing.T) {
	sgID := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	segID := uuid.MustParse("33333333-3333-3333-3333-333333333333")
	sg := &SketchGroup{
		ID: sgID,
		Start: BasePath{
			To:      [2]float64{0, 0},
			GeoMeta: GeoMeta{ID: uuid.MustParse("44444444-4444-4444-4444-444444444444")},
		},
		Value: []Path{
			{
				Kind: PathToPoint,
				Base: BasePath{
					From:    [2]float64{0, 0},
					To:      [2]float64{2, 2},
					Name:    "yo",
					GeoMeta: GeoMeta{ID: segID},
				},
			},
		},
	}
	raw, err := ToJSON(sg)
	if err != nil {
		t.Fatal(err)
	}
	snaps.MatchJSON(t, raw)
}
