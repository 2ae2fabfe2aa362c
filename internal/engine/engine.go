// Package engine implements the Engine Driver (C7, spec.md §4.7): a
// thin facade over an asynchronous modeling-command channel. The
// transport itself (WebSocket-backed, per spec.md §1) is out of scope;
// this package specifies only the capabilities the evaluator requires,
// plus a mock used by tests and by default CLI runs without a live
// engine.
package engine

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/cadkit/kcl-core/internal/kclast"
	"github.com/cadkit/kcl-core/internal/kclerrors"
)

// Command is an opaque modeling command payload; concrete command
// construction belongs to out-of-scope built-ins (spec.md §6), except
// for the two pre-execution commands this package issues itself.
type Command interface {
	commandKind() string
}

// SetSceneUnits configures the engine's working unit system before
// evaluation begins (spec.md §4.7).
type SetSceneUnits struct {
	Units string
}

func (SetSceneUnits) commandKind() string { return "set_scene_units" }

// EdgeLinesVisible toggles highlighted-edge rendering (spec.md §4.7).
type EdgeLinesVisible struct {
	Visible bool
}

func (EdgeLinesVisible) commandKind() string { return "edge_lines_visible" }

// GeometryCommand is the command geometry-producing built-ins issue
// (spec.md §2 "All geometry-producing built-ins issue commands through
// C7"). The concrete modeling-command vocabulary (StartPath,
// ExtrudeSurface, ...) is out of scope (spec.md §6: "other commands are
// issued by out-of-scope built-ins"), so this carries just enough shape
// — a kind tag and the entity id it concerns — for a mock or future
// real transport to record and acknowledge.
type GeometryCommand struct {
	Kind     string
	EntityID uuid.UUID
}

func (GeometryCommand) commandKind() string { return "geometry" }

// Manager is the interface the evaluator consumes (spec.md §4.7,
// §5 "shared resources": reference-counted, internally serializing
// writes). Implementations must apply commands from a single evaluation
// in submission order.
type Manager interface {
	// SendModelingCmd asynchronously submits one modeling command
	// correlated by id and attributed to range.
	SendModelingCmd(ctx context.Context, id uuid.UUID, rng kclast.SourceRange, cmd Command) error
	// FlushBatch waits until every command submitted so far has been
	// acknowledged.
	FlushBatch(ctx context.Context, rng kclast.SourceRange) error
}

// Mock is a no-op Manager used by tests and by default CLI runs
// (spec.md §4.7 "a mock mode substitutes a no-op engine, used by
// tests"). It records submitted commands for assertions without
// performing any I/O.
type Mock struct {
	mu       sync.Mutex
	commands []recordedCmd
	flushes  int
}

type recordedCmd struct {
	ID    uuid.UUID
	Range kclast.SourceRange
	Cmd   Command
}

// NewMock returns a fresh no-op engine manager.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) SendModelingCmd(_ context.Context, id uuid.UUID, rng kclast.SourceRange, cmd Command) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands = append(m.commands, recordedCmd{ID: id, Range: rng, Cmd: cmd})
	return nil
}

func (m *Mock) FlushBatch(_ context.Context, _ kclast.SourceRange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushes++
	return nil
}

// Commands returns the commands submitted so far, in submission order.
func (m *Mock) Commands() []Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Command, len(m.commands))
	for i, c := range m.commands {
		out[i] = c.Cmd
	}
	return out
}

// Flushes reports how many times FlushBatch has been called.
func (m *Mock) Flushes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flushes
}

// WrapTransportError maps a live transport failure to the Engine error
// category (spec.md §7 "the engine driver's transport errors are mapped
// to Semantic or to a dedicated Engine category"). Real transport
// implementations (out of scope here) should call this rather than
// surfacing a raw transport error.
func WrapTransportError(rng kclast.SourceRange, err error) error {
	return kclerrors.New(kclerrors.Engine, err.Error(), rng)
}

// Prepare issues the two pre-execution commands required before
// evaluation begins (spec.md §4.7): SetSceneUnits with the configured
// units and EdgeLinesVisible(!highlightEdges).
func Prepare(ctx context.Context, mgr Manager, units string, highlightEdges bool) error {
	id := uuid.New()
	if err := mgr.SendModelingCmd(ctx, id, kclast.SourceRange{}, SetSceneUnits{Units: units}); err != nil {
		return err
	}
	id = uuid.New()
	return mgr.SendModelingCmd(ctx, id, kclast.SourceRange{}, EdgeLinesVisible{Visible: !highlightEdges})
}
