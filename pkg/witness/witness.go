// Package witness implements the pareto-aware shortest path search that
// ContractingWorker uses to test whether a candidate shortcut has a
// witness under a given weighting.
package witness

import (
	"math"

	"multich/pkg/costvec"
	"multich/pkg/graph"
)

// maxEnumeratedPaths bounds worst-case co-optimal path counting and
// enumeration on pathological graphs with many tied predecessors.
const maxEnumeratedPaths = 1 << 16

// distEps absorbs floating point noise when comparing scalar
// projections during relaxation.
const distEps = 1e-9

// Route is the result of a witness search: a shortest path under the
// search's weighting, its vector cost, the number of co-optimal
// alternatives (same vector cost, capped at maxEnumeratedPaths), and the
// DAG that Enumerate walks to list them.
type Route struct {
	Cost      costvec.CostVec
	Edges     []graph.EdgeId  // src->dst edge ids, in path order
	Nodes     []graph.NodePos // src..dst positions visited, len(Edges)+1; nil for enumerated alternates
	PathCount uint64
	dag       *dag
}

// Enumerate returns an iterator over every co-optimal alternative to r,
// i.e. every src->dst walk in the underlying shortest-path DAG whose
// vector cost equals r.Cost exactly. All such walks (up to
// maxEnumeratedPaths) are collected when Enumerate is called; the
// iterator then hands them out one at a time.
func (r *Route) Enumerate() *RouteIterator {
	if r.dag == nil {
		return &RouteIterator{}
	}
	var paths [][]graph.EdgeId
	var walk func(node graph.NodePos, acc costvec.CostVec, edges []graph.EdgeId)
	walk = func(node graph.NodePos, acc costvec.CostVec, edges []graph.EdgeId) {
		if len(paths) >= maxEnumeratedPaths {
			return
		}
		if node == r.dag.src {
			if acc.Equal(r.dag.targetCost) {
				rev := make([]graph.EdgeId, len(edges))
				for i, id := range edges {
					rev[len(edges)-1-i] = id
				}
				paths = append(paths, rev)
			}
			return
		}
		for _, e := range r.dag.preds[node] {
			next := make([]graph.EdgeId, len(edges)+1)
			copy(next, edges)
			next[len(edges)] = e.Id
			walk(e.Begin, acc.Add(e.Cost), next)
			if len(paths) >= maxEnumeratedPaths {
				return
			}
		}
	}
	walk(r.dag.dst, costvec.Zero(), nil)
	return &RouteIterator{paths: paths, cost: r.Cost}
}

// RouteIterator is a pull-based iterator over co-optimal Routes that
// Enumerate has already computed; it does not search on demand.
type RouteIterator struct {
	paths [][]graph.EdgeId
	cost  costvec.CostVec
	idx   int
}

// Next returns the next co-optimal Route, or ok=false once exhausted.
func (it *RouteIterator) Next() (*Route, bool) {
	if it.idx >= len(it.paths) {
		return nil, false
	}
	edges := it.paths[it.idx]
	it.idx++
	return &Route{Cost: it.cost, Edges: edges, PathCount: uint64(len(it.paths))}, true
}

// dag is the shortest-path DAG rooted at src, built from the tied
// predecessor edges discovered while searching to dst, used to count
// and enumerate co-optimal alternatives to the best route.
type dag struct {
	src, dst   graph.NodePos
	preds      map[graph.NodePos][]graph.HalfEdge
	targetCost costvec.CostVec
}

func (d *dag) countCoOptimalPaths() uint64 {
	var count uint64
	var walk func(node graph.NodePos, acc costvec.CostVec) bool
	walk = func(node graph.NodePos, acc costvec.CostVec) bool {
		if node == d.src {
			if acc.Equal(d.targetCost) {
				count++
			}
			return count < maxEnumeratedPaths
		}
		for _, e := range d.preds[node] {
			if !walk(e.Begin, acc.Add(e.Cost)) {
				return false
			}
		}
		return true
	}
	walk(d.dst, costvec.Zero())
	return count
}

// WitnessSearch is the external shortest-path collaborator:
// weighted shortest path src->dst with enumeration of all co-optimal
// paths.
type WitnessSearch interface {
	FindBestRoute(src, dst graph.NodePos, w costvec.Weighting) (*Route, bool)
}

// ParetoDijkstra is a label-setting Dijkstra scalarized by the current
// weighting: each costvec.CostVec edge cost is projected to a float64
// priority through CostVec.Dot(w), reusing the same touched-list reset pattern
// and binary heap across pairs. One instance is owned by exactly one
// ContractingWorker.
type ParetoDijkstra struct {
	g        *graph.Graph
	dist     []float64
	predEdge [][]graph.HalfEdge
	touched  []graph.NodePos
	heap     minHeap
}

// NewParetoDijkstra creates a reusable search over g.
func NewParetoDijkstra(g *graph.Graph) *ParetoDijkstra {
	n := g.NodeCount()
	dist := make([]float64, n)
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	return &ParetoDijkstra{
		g:        g,
		dist:     dist,
		predEdge: make([][]graph.HalfEdge, n),
	}
}

func (p *ParetoDijkstra) reset() {
	for _, n := range p.touched {
		p.dist[n] = math.Inf(1)
		p.predEdge[n] = nil
	}
	p.touched = p.touched[:0]
	p.heap.reset()
}

// FindBestRoute runs a scalarized Dijkstra from src to dst under w and,
// if dst is reachable, returns its vector cost plus the count of
// co-optimal (equal vector cost) alternative paths discovered along the
// way. Ties in the scalar projection are tracked as additional
// predecessor edges as they are discovered; since edge costs are
// non-negative, a node's predecessor set is final once it is popped
// from the heap with its settled distance (standard Dijkstra
// correctness argument), so later relaxations can only add further
// ties, never invalidate earlier ones.
func (p *ParetoDijkstra) FindBestRoute(src, dst graph.NodePos, w costvec.Weighting) (*Route, bool) {
	p.reset()

	p.dist[src] = 0
	p.touched = append(p.touched, src)
	p.heap.push(src, 0)

	for p.heap.len() > 0 {
		cur := p.heap.pop()
		if cur.dist > p.dist[cur.node]+distEps {
			continue // stale heap entry
		}

		for _, e := range p.g.OutEdges(cur.node) {
			nd := cur.dist + e.Cost.Dot(w)
			switch {
			case nd < p.dist[e.End]-distEps:
				if math.IsInf(p.dist[e.End], 1) {
					p.touched = append(p.touched, e.End)
				}
				p.dist[e.End] = nd
				p.predEdge[e.End] = []graph.HalfEdge{e}
				p.heap.push(e.End, nd)
			case math.Abs(nd-p.dist[e.End]) <= distEps:
				p.predEdge[e.End] = append(p.predEdge[e.End], e)
			}
		}
	}

	if math.IsInf(p.dist[dst], 1) {
		return nil, false
	}

	// Reconstruct one concrete path by always following the first
	// recorded predecessor, then reverse to src->dst order.
	var edgeIds []graph.EdgeId
	nodes := []graph.NodePos{dst}
	cost := costvec.Zero()
	cur := dst
	for cur != src {
		e := p.predEdge[cur][0]
		edgeIds = append(edgeIds, e.Id)
		cost = cost.Add(e.Cost)
		cur = e.Begin
		nodes = append(nodes, cur)
	}
	for i, j := 0, len(edgeIds)-1; i < j; i, j = i+1, j-1 {
		edgeIds[i], edgeIds[j] = edgeIds[j], edgeIds[i]
	}
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}

	d := &dag{src: src, dst: dst, targetCost: cost, preds: make(map[graph.NodePos][]graph.HalfEdge, len(p.touched))}
	for _, n := range p.touched {
		if len(p.predEdge[n]) > 0 {
			cp := make([]graph.HalfEdge, len(p.predEdge[n]))
			copy(cp, p.predEdge[n])
			d.preds[n] = cp
		}
	}

	count := d.countCoOptimalPaths()

	return &Route{Cost: cost, Edges: edgeIds, Nodes: nodes, PathCount: count, dag: d}, true
}
