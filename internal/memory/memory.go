// Package memory implements Program Memory (C2) and Pipe State (C3)
// from spec.md §4.2–§4.3: the name→Value mapping with insertion-once
// semantics, the out-of-band return slot, and the pipeline-substitution
// carrier consulted by `%`.
package memory

import (
	"github.com/cadkit/kcl-core/internal/kclast"
	"github.com/cadkit/kcl-core/internal/kclerrors"
	"github.com/cadkit/kcl-core/internal/value"
)

// ReturnKind discriminates the ProgramReturn sum (SPEC_FULL.md §5:
// preserved as a two-armed sum rather than a plain Option<Value>).
type ReturnKind int

const (
	ReturnNone ReturnKind = iota
	ReturnArguments
	ReturnValue
)

// ReturnSlot is the evaluator's out-of-band result channel
// (spec.md §9 "return slot as out-of-band channel").
type ReturnSlot struct {
	Kind  ReturnKind
	Value value.Value
}

// Memory is the name→Value mapping plus its return slot
// (spec.md §4.2). Insertion order is not semantically significant; key
// uniqueness is (spec.md §3), so the backing store is a plain map.
type Memory struct {
	bindings map[string]value.Value
	Return   ReturnSlot
}

// reservedConstants are pre-bound in every fresh memory (spec.md §3, §6,
// §9 "global seed constants").
var reservedConstants = map[string]float64{
	"ZERO":              0,
	"QUARTER_TURN":      90,
	"HALF_TURN":         180,
	"THREE_QUARTER_TURN": 270,
}

// New returns a fresh memory pre-populated with the four reserved
// numeric constants.
func New() *Memory {
	m := &Memory{bindings: make(map[string]value.Value, len(reservedConstants))}
	for name, n := range reservedConstants {
		m.bindings[name] = &value.UserVal{JSON: n}
	}
	return m
}

// Add rejects duplicate keys with ValueAlreadyDefined (spec.md §4.2).
func (m *Memory) Add(key string, v value.Value, rng kclast.SourceRange) error {
	if _, exists := m.bindings[key]; exists {
		return kclerrors.New(kclerrors.ValueAlreadyDefined, "cannot redefine "+key, rng)
	}
	m.bindings[key] = v
	return nil
}

// Get reports UndefinedValue for an unbound name (spec.md §4.2).
func (m *Memory) Get(key string, rng kclast.SourceRange) (value.Value, error) {
	v, ok := m.bindings[key]
	if !ok {
		return nil, kclerrors.New(kclerrors.UndefinedValue, "name "+key+" is not defined", rng)
	}
	return v, nil
}

// SetReturn sets the return slot to Value(v).
func (m *Memory) SetReturn(v value.Value) {
	m.Return = ReturnSlot{Kind: ReturnValue, Value: v}
}

// SetArgumentsSentinel sets the return slot to the Arguments arm
// (SPEC_FULL.md §5: the function-scope sentinel not yet realized as a
// concrete value).
func (m *Memory) SetArgumentsSentinel() {
	m.Return = ReturnSlot{Kind: ReturnArguments}
}

// Clone copies the bindings into a new map, so names added to the clone
// do not appear in m. The bound values themselves are not copied: m and
// the clone share the same Value pointers. The return slot is copied,
// not cleared — user-function invocation clones the caller's memory
// precisely to observe the callee's return afterward (spec.md §4.2).
func (m *Memory) Clone() *Memory {
	clone := &Memory{bindings: make(map[string]value.Value, len(m.bindings)), Return: m.Return}
	for k, v := range m.bindings {
		clone.bindings[k] = v
	}
	return clone
}

// Keys returns the bound names in no particular order; callers wanting a
// deterministic listing (e.g. pkg/kcl's --dump-memory) sort the result
// themselves.
func (m *Memory) Keys() []string {
	keys := make([]string, 0, len(m.bindings))
	for k := range m.bindings {
		keys = append(keys, k)
	}
	return keys
}

// Len reports the number of bound names.
func (m *Memory) Len() int { return len(m.bindings) }
