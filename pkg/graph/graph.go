// Package graph holds the vector-cost graph representation consumed by
// the contraction engine: opaque node/edge handles, CSR adjacency, and
// the append-only edge registry shared across contraction levels.
package graph

import "multich/pkg/costvec"

// NodeId is a stable handle for a node, unaffected by contraction level.
type NodeId uint32

// NodePos is a graph-local dense index into the CSR adjacency arrays of
// a particular level's snapshot. It is only meaningful relative to the
// Graph that produced it.
type NodePos uint32

// EdgeId is an index into a Registry. Monotonically assigned, append-only.
type EdgeId uint32

// NoEdge is the sentinel for "no child edge" (original edges have
// neither child set).
const NoEdge = EdgeId(^uint32(0))

// Edge is either an original edge (Child1/Child2 unset) or a shortcut
// (both set) remembering the two edges it replaces.
type Edge struct {
	Src, Dst       NodeId
	Cost           costvec.CostVec
	Child1, Child2 EdgeId
}

// IsShortcut reports whether e was produced by contraction.
func (e Edge) IsShortcut() bool {
	return e.Child1 != NoEdge && e.Child2 != NoEdge
}

// NewOriginalEdge builds a non-shortcut edge.
func NewOriginalEdge(src, dst NodeId, cost costvec.CostVec) Edge {
	return Edge{Src: src, Dst: dst, Cost: cost, Child1: NoEdge, Child2: NoEdge}
}

// NewShortcutEdge builds a shortcut edge (u,w) from two contiguous child
// edges e1=(u,v) and e2=(v,w), identified by id1 and id2 in a Registry.
// The caller (Registry.CreateShortcut) enforces e1.Dst==e2.Src.
func NewShortcutEdge(e1, e2 Edge, id1, id2 EdgeId) Edge {
	return Edge{
		Src:    e1.Src,
		Dst:    e2.Dst,
		Cost:   e1.Cost.Add(e2.Cost),
		Child1: id1,
		Child2: id2,
	}
}

// Node is a graph node with its contraction level. Level 0 means
// uncontracted; it is assigned exactly once, when the node leaves the
// residual graph.
type Node struct {
	Id    NodeId
	Level uint32
}

// HalfEdge is a view of an edge from one endpoint's perspective.
// For an outgoing view Begin is the tail and End is the head; for an
// incoming view Begin is the head and End is the tail. Worker code
// treats in.Begin == out.Begin as "both halves meet at the contracted
// node".
type HalfEdge struct {
	Begin, End NodePos
	Id         EdgeId
	Cost       costvec.CostVec
}

// EdgePair is a candidate contraction pair sharing a midpoint: in.Begin
// == out.Begin == the node being contracted, and edge(in.Id).Dst ==
// edge(out.Id).Src.
type EdgePair struct {
	In, Out HalfEdge
}

// Graph is an immutable per-level snapshot: nodes plus CSR-style
// adjacency (forward and reverse) over NodePos, read-only for the
// workers of a level and replaced wholesale at the next level.
type Graph struct {
	nodes []Node
	// pos maps NodeId -> NodePos for this snapshot.
	pos map[NodeId]NodePos

	outFirst []uint32
	outEdges []HalfEdge
	inFirst  []uint32
	inEdges  []HalfEdge
}

// NodeCount returns the number of nodes in this snapshot.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of directed half-edges in this snapshot
// (equal to the number of original+shortcut edges whose endpoints are
// both present in the snapshot).
func (g *Graph) EdgeCount() int { return len(g.outEdges) }

// Node returns the Node at the given position.
func (g *Graph) Node(p NodePos) Node { return g.nodes[p] }

// PosOf returns the NodePos for a stable NodeId within this snapshot.
func (g *Graph) PosOf(id NodeId) (NodePos, bool) {
	p, ok := g.pos[id]
	return p, ok
}

// OutEdges returns the outgoing HalfEdge views of p.
func (g *Graph) OutEdges(p NodePos) []HalfEdge {
	return g.outEdges[g.outFirst[p]:g.outFirst[p+1]]
}

// InEdges returns the incoming HalfEdge views of p.
func (g *Graph) InEdges(p NodePos) []HalfEdge {
	return g.inEdges[g.inFirst[p]:g.inFirst[p+1]]
}

// rawEdge is an (from,to) pair used while building CSR arrays.
type rawEdge struct {
	from, to NodePos
	id       EdgeId
	cost     costvec.CostVec
}

// Builder assembles a Graph snapshot from a node set and a registry,
// used by LevelDriver to publish the residual graph for the next level.
type Builder struct {
	nodes    []Node
	pos      map[NodeId]NodePos
	outgoing []rawEdge
	incoming []rawEdge
}

// NewBuilder creates a Builder for the given residual node set.
func NewBuilder(nodes []Node) *Builder {
	pos := make(map[NodeId]NodePos, len(nodes))
	for i, n := range nodes {
		pos[n.Id] = NodePos(i)
	}
	return &Builder{nodes: nodes, pos: pos}
}

// PosOf returns the NodePos assigned to a NodeId by this builder.
func (b *Builder) PosOf(id NodeId) (NodePos, bool) {
	p, ok := b.pos[id]
	return p, ok
}

// AddEdge registers an edge (by its Registry id) between two nodes that
// are both present in this builder's node set. Edges with an endpoint
// outside the set (e.g. into a just-contracted node) are silently
// dropped, since the residual graph only keeps edges between two
// surviving (non-independent-set) endpoints.
func (b *Builder) AddEdge(id EdgeId, e Edge) {
	from, ok1 := b.pos[e.Src]
	to, ok2 := b.pos[e.Dst]
	if !ok1 || !ok2 {
		return
	}
	b.outgoing = append(b.outgoing, rawEdge{from: from, to: to, id: id, cost: e.Cost})
	b.incoming = append(b.incoming, rawEdge{from: to, to: from, id: id, cost: e.Cost})
}

// Build finalizes the CSR adjacency arrays.
func (b *Builder) Build() *Graph {
	n := uint32(len(b.nodes))

	outFirst := csrFirst(n, b.outgoing)
	outEdges := csrPlace(n, outFirst, b.outgoing)

	inFirst := csrFirst(n, b.incoming)
	inEdges := csrPlace(n, inFirst, b.incoming)

	return &Graph{
		nodes:    b.nodes,
		pos:      b.pos,
		outFirst: outFirst,
		outEdges: outEdges,
		inFirst:  inFirst,
		inEdges:  inEdges,
	}
}

func csrFirst(n uint32, edges []rawEdge) []uint32 {
	first := make([]uint32, n+1)
	for _, e := range edges {
		first[e.from+1]++
	}
	for i := uint32(1); i <= n; i++ {
		first[i] += first[i-1]
	}
	return first
}

func csrPlace(n uint32, first []uint32, edges []rawEdge) []HalfEdge {
	out := make([]HalfEdge, len(edges))
	pos := make([]uint32, n)
	copy(pos, first[:n])
	for _, e := range edges {
		idx := pos[e.from]
		out[idx] = HalfEdge{Begin: e.from, End: e.to, Id: e.id, Cost: e.cost}
		pos[e.from]++
	}
	return out
}
