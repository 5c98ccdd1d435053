package graph

import "fmt"

// ErrDisconnectedShortcut is returned when two edges passed to
// CreateShortcut do not share a midpoint.
var ErrDisconnectedShortcut = fmt.Errorf("graph: edges are not connected")

// Registry is the process-wide, append-only edge store. All EdgeIds are
// indices into a Registry. It is owned by the caller (Contractor) and
// passed by reference to LevelDriver; workers never mutate it directly —
// they return shortcut Edge values which the driver administers on the
// main thread between levels.
type Registry struct {
	edges []Edge
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Administer appends edges and returns their assigned ids, in order.
// Monotonic, append-only within a process.
func (r *Registry) Administer(edges []Edge) []EdgeId {
	ids := make([]EdgeId, len(edges))
	for i, e := range edges {
		ids[i] = EdgeId(len(r.edges))
		r.edges = append(r.edges, e)
	}
	return ids
}

// Edge returns the edge stored at id.
func (r *Registry) Edge(id EdgeId) Edge {
	return r.edges[id]
}

// Len returns the number of edges administered so far.
func (r *Registry) Len() int { return len(r.edges) }

// All returns a snapshot slice of every edge ever administered, in id
// order (so that index == EdgeId).
func (r *Registry) All() []Edge {
	out := make([]Edge, len(r.edges))
	copy(out, r.edges)
	return out
}

// CreateShortcut builds the shortcut edge for child edges identified by
// id1 (u->v) and id2 (v->w). It does not administer the result; callers
// call Administer separately once a batch of shortcuts has been
// deduplicated.
func (r *Registry) CreateShortcut(id1, id2 EdgeId) (Edge, error) {
	e1 := r.edges[id1]
	e2 := r.edges[id2]
	if e1.Dst != e2.Src {
		return Edge{}, fmt.Errorf("graph: edges %d and %d are not connected: %w", id1, id2, ErrDisconnectedShortcut)
	}
	return NewShortcutEdge(e1, e2, id1, id2), nil
}
