package graph

import (
	"errors"
	"log/slog"
	"sort"
	"sync"

	"timeline-compositor/internal/timeline"
)

var (
	// ErrAlreadyLinked is returned when linking a pair that is already linked.
	ErrAlreadyLinked = errors.New("already linked")

	// ErrNotLinked is returned when unlinking a pair that is not linked.
	ErrNotLinked = errors.New("not linked")
)

// Edge is a link from an upstream object to a downstream object.
type Edge struct {
	Upstream   timeline.ObjectID `json:"upstream"`
	Downstream timeline.ObjectID `json:"downstream"`
}

// Memory is an in-memory media graph. It keeps the topology a composition
// asks for and logs every change, which is enough to drive and inspect
// compositions without a real pipeline behind them.
type Memory struct {
	mu      sync.RWMutex
	edges   map[Edge]struct{}
	active  map[timeline.ObjectID]bool
	outputs map[timeline.ObjectID]timeline.ObjectID
	log     *slog.Logger
}

// NewMemory returns an empty graph. log may be nil.
func NewMemory(log *slog.Logger) *Memory {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Memory{
		edges:   make(map[Edge]struct{}),
		active:  make(map[timeline.ObjectID]bool),
		outputs: make(map[timeline.ObjectID]timeline.ObjectID),
		log:     log,
	}
}

// Link implements timeline.Graph.
func (m *Memory) Link(upstream, downstream timeline.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := Edge{Upstream: upstream, Downstream: downstream}
	if _, ok := m.edges[e]; ok {
		return ErrAlreadyLinked
	}
	m.edges[e] = struct{}{}
	m.log.Debug("link",
		slog.String("upstream", string(upstream)),
		slog.String("downstream", string(downstream)))
	return nil
}

// Unlink implements timeline.Graph.
func (m *Memory) Unlink(upstream, downstream timeline.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := Edge{Upstream: upstream, Downstream: downstream}
	if _, ok := m.edges[e]; !ok {
		return ErrNotLinked
	}
	delete(m.edges, e)
	m.log.Debug("unlink",
		slog.String("upstream", string(upstream)),
		slog.String("downstream", string(downstream)))
	return nil
}

// Activate implements timeline.Graph.
func (m *Memory) Activate(id timeline.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active[id] = true
	m.log.Debug("activate", slog.String("object_id", string(id)))
	return nil
}

// Deactivate implements timeline.Graph. Edges touching id are kept; the
// composition unlinks them explicitly.
func (m *Memory) Deactivate(id timeline.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.active, id)
	m.log.Debug("deactivate", slog.String("object_id", string(id)))
	return nil
}

// SetOutput implements timeline.Graph.
func (m *Memory) SetOutput(composition, target timeline.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if target == "" {
		delete(m.outputs, composition)
	} else {
		m.outputs[composition] = target
	}
	m.log.Debug("output",
		slog.String("composition_id", string(composition)),
		slog.String("target", string(target)))
	return nil
}

// Links returns every edge, sorted by upstream then downstream.
func (m *Memory) Links() []Edge {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Edge, 0, len(m.edges))
	for e := range m.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Upstream != out[j].Upstream {
			return out[i].Upstream < out[j].Upstream
		}
		return out[i].Downstream < out[j].Downstream
	})
	return out
}

// Output returns the object linked to a composition's output, or "".
func (m *Memory) Output(composition timeline.ObjectID) timeline.ObjectID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.outputs[composition]
}

// IsActive reports whether id is active.
func (m *Memory) IsActive(id timeline.ObjectID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active[id]
}
