package memory

import "github.com/maruel/natural"

// SortedKeys returns the bound names in natural sort order (var2 before
// var10), for deterministic diagnostic listings such as pkg/kcl's
// --dump-memory output.
func (m *Memory) SortedKeys() []string {
	keys := m.Keys()
	natural.Sort(keys)
	return keys
}
