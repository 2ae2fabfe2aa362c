package memory

import (
	"testing"

	"github.com/cadkit/kcl-core/internal/kclast"
	"github.com/cadkit/kcl-core/internal/kclerrors"
	"github.com/cadkit/kcl-core/internal/value"
)

func TestNewHasReservedConstants(t *testing.T) {
	m := New()
	for _, name := range []string{"ZERO", "QUARTER_TURN", "HALF_TURN", "THREE_QUARTER_TURN"} {
		if _, err := m.Get(name, kclast.SourceRange{}); err != nil {
			t.Fatalf("expected reserved constant %s to be bound: %v", name, err)
		}
	}
}

func TestAddRejectsDuplicate(t *testing.T) {
	m := New()
	v := &value.UserVal{JSON: 5.0}
	if err := m.Add("x", v, kclast.SourceRange{}); err != nil {
		t.Fatalf("unexpected error on first add: %v", err)
	}
	err := m.Add("x", v, kclast.SourceRange{})
	if err == nil {
		t.Fatal("expected ValueAlreadyDefined error on duplicate add")
	}
	kerr, ok := err.(*kclerrors.Error)
	if !ok || kerr.Kind != kclerrors.ValueAlreadyDefined {
		t.Fatalf("expected ValueAlreadyDefined, got %v", err)
	}
}

func TestGetUnboundIsUndefinedValue(t *testing.T) {
	m := New()
	_, err := m.Get("nope", kclast.SourceRange{})
	kerr, ok := err.(*kclerrors.Error)
	if !ok || kerr.Kind != kclerrors.UndefinedValue {
		t.Fatalf("expected UndefinedValue, got %v", err)
	}
}

func TestCloneDoesNotLeakMutations(t *testing.T) {
	m := New()
	clone := m.Clone()
	if err := clone.Add("onlyInClone", &value.UserVal{JSON: 1.0}, kclast.SourceRange{}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Get("onlyInClone", kclast.SourceRange{}); err == nil {
		t.Fatal("expected parent memory to be unaffected by clone mutation")
	}
}

func TestCloneCarriesReturnSlot(t *testing.T) {
	m := New()
	m.SetReturn(&value.UserVal{JSON: 42.0})
	clone := m.Clone()
	if clone.Return.Kind != ReturnValue {
		t.Fatalf("expected clone to carry return slot, got kind %v", clone.Return.Kind)
	}
}

func TestSortedKeysNaturalOrder(t *testing.T) {
	m := New()
	_ = m.Add("var2", &value.UserVal{JSON: 2.0}, kclast.SourceRange{})
	_ = m.Add("var10", &value.UserVal{JSON: 10.0}, kclast.SourceRange{})
	keys := m.SortedKeys()
	idx2, idx10 := -1, -1
	for i, k := range keys {
		if k == "var2" {
			idx2 = i
		}
		if k == "var10" {
			idx10 = i
		}
	}
	if idx2 == -1 || idx10 == -1 || idx2 > idx10 {
		t.Fatalf("expected var2 before var10 in natural order, got %v", keys)
	}
}
