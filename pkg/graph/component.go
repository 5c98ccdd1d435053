package graph

// unionFind is a disjoint-set structure over NodePos, used to compute
// weakly connected components of a Graph snapshot.
type unionFind struct {
	parent []uint32
	rank   []byte
	size   []uint32
}

func newUnionFind(n uint32) *unionFind {
	parent := make([]uint32, n)
	size := make([]uint32, n)
	for i := range parent {
		parent[i] = uint32(i)
		size[i] = 1
	}
	return &unionFind{parent: parent, rank: make([]byte, n), size: size}
}

func (uf *unionFind) find(x uint32) uint32 {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(x, y uint32) {
	rx, ry := uf.find(x), uf.find(y)
	if rx == ry {
		return
	}
	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
}

// LargestComponent returns the stable NodeIds belonging to g's largest
// weakly connected component, treating every directed edge as
// undirected. Used to drop disconnected OSM fragments (parking lots,
// unlinked islands) before contraction so the contraction loop never
// has to reason about unreachable pairs.
func LargestComponent(g *Graph) []NodeId {
	n := uint32(g.NodeCount())
	if n == 0 {
		return nil
	}

	uf := newUnionFind(n)
	for p := uint32(0); p < n; p++ {
		for _, e := range g.OutEdges(NodePos(p)) {
			uf.union(p, uint32(e.End))
		}
	}

	bestRoot, bestSize := uint32(0), uint32(0)
	for p := uint32(0); p < n; p++ {
		root := uf.find(p)
		if uf.size[root] > bestSize {
			bestRoot, bestSize = root, uf.size[root]
		}
	}

	ids := make([]NodeId, 0, bestSize)
	for p := uint32(0); p < n; p++ {
		if uf.find(p) == bestRoot {
			ids = append(ids, g.Node(NodePos(p)).Id)
		}
	}
	return ids
}

// FilterToComponent rebuilds a Graph containing only the given node ids
// and the registry edges whose endpoints are both among them.
func FilterToComponent(registry *Registry, ids []NodeId) *Graph {
	nodes := make([]Node, len(ids))
	for i, id := range ids {
		nodes[i] = Node{Id: id}
	}

	builder := NewBuilder(nodes)
	for i, e := range registry.All() {
		builder.AddEdge(EdgeId(i), e)
	}
	return builder.Build()
}
