package witness

import (
	"testing"

	"multich/pkg/costvec"
	"multich/pkg/graph"
)

func init() {
	costvec.SetDim(2)
}

func buildGraph(t *testing.T, names []string, edges []struct {
	from, to string
	cost     costvec.CostVec
}) (*graph.Graph, map[string]graph.NodePos) {
	t.Helper()
	nodes := make([]graph.Node, len(names))
	pos := make(map[string]graph.NodePos, len(names))
	for i, n := range names {
		nodes[i] = graph.Node{Id: graph.NodeId(i)}
		pos[n] = graph.NodePos(i)
	}
	builder := graph.NewBuilder(nodes)
	registry := graph.NewRegistry()
	for _, e := range edges {
		edge := graph.NewOriginalEdge(graph.NodeId(pos[e.from]), graph.NodeId(pos[e.to]), e.cost)
		ids := registry.Administer([]graph.Edge{edge})
		builder.AddEdge(ids[0], edge)
	}
	return builder.Build(), pos
}

func TestFindBestRouteUnreachable(t *testing.T) {
	g, pos := buildGraph(t, []string{"A", "B"}, nil)
	search := NewParetoDijkstra(g)
	_, ok := search.FindBestRoute(pos["A"], pos["B"], costvec.UniformWeighting())
	if ok {
		t.Fatal("expected unreachable B to return ok=false")
	}
}

func TestFindBestRouteSamePoint(t *testing.T) {
	g, pos := buildGraph(t, []string{"A", "B"}, []struct {
		from, to string
		cost     costvec.CostVec
	}{{"A", "B", costvec.New(1, 0)}})
	search := NewParetoDijkstra(g)
	route, ok := search.FindBestRoute(pos["A"], pos["A"], costvec.UniformWeighting())
	if !ok {
		t.Fatal("a node should always have a zero-cost route to itself")
	}
	if !route.Cost.Equal(costvec.Zero()) {
		t.Errorf("cost = %v, want zero", route.Cost.Values())
	}
}

func TestFindBestRouteSingleUniquePath(t *testing.T) {
	g, pos := buildGraph(t, []string{"A", "B", "C"}, []struct {
		from, to string
		cost     costvec.CostVec
	}{
		{"A", "B", costvec.New(1, 0)},
		{"B", "C", costvec.New(2, 0)},
	})
	search := NewParetoDijkstra(g)
	route, ok := search.FindBestRoute(pos["A"], pos["C"], costvec.UniformWeighting())
	if !ok {
		t.Fatal("expected A->C reachable via B")
	}
	if !route.Cost.Equal(costvec.New(3, 0)) {
		t.Errorf("cost = %v, want [3 0]", route.Cost.Values())
	}
	if route.PathCount != 1 {
		t.Errorf("PathCount = %d, want 1 (single path)", route.PathCount)
	}
}

// Two disjoint A->C paths tie in scalar projection under a uniform
// weighting ([1,1] and [2,0] both dot to 1), but their vector costs
// differ. Only one can equal whichever the search settles on as the
// reconstructed path's cost, so PathCount must stay at 1 even though
// Dijkstra records both as predecessors during relaxation.
func TestFindBestRouteScalarTieDifferentVectors(t *testing.T) {
	g, pos := buildGraph(t, []string{"A", "B", "C"}, []struct {
		from, to string
		cost     costvec.CostVec
	}{
		{"A", "B", costvec.New(0.5, 0.5)},
		{"B", "C", costvec.New(0.5, 0.5)},
		{"A", "C", costvec.New(2, 0)},
	})
	search := NewParetoDijkstra(g)
	route, ok := search.FindBestRoute(pos["A"], pos["C"], costvec.UniformWeighting())
	if !ok {
		t.Fatal("expected A->C reachable")
	}
	if route.PathCount != 1 {
		t.Errorf("PathCount = %d, want 1 (vector costs differ despite equal scalar projection)", route.PathCount)
	}
}

// Two parallel two-edge paths with identical vector cost are genuinely
// co-optimal and both count.
func TestFindBestRouteVectorTie(t *testing.T) {
	g, pos := buildGraph(t, []string{"A", "B", "C", "D"}, []struct {
		from, to string
		cost     costvec.CostVec
	}{
		{"A", "B", costvec.New(1, 0)},
		{"B", "D", costvec.New(1, 0)},
		{"A", "C", costvec.New(1, 0)},
		{"C", "D", costvec.New(1, 0)},
	})
	search := NewParetoDijkstra(g)
	route, ok := search.FindBestRoute(pos["A"], pos["D"], costvec.UniformWeighting())
	if !ok {
		t.Fatal("expected A->D reachable")
	}
	if !route.Cost.Equal(costvec.New(2, 0)) {
		t.Errorf("cost = %v, want [2 0]", route.Cost.Values())
	}
	if route.PathCount != 2 {
		t.Errorf("PathCount = %d, want 2 (A-B-D and A-C-D tie exactly)", route.PathCount)
	}
}

func TestRouteEnumerateMatchesPathCount(t *testing.T) {
	g, pos := buildGraph(t, []string{"A", "B", "C", "D"}, []struct {
		from, to string
		cost     costvec.CostVec
	}{
		{"A", "B", costvec.New(1, 0)},
		{"B", "D", costvec.New(1, 0)},
		{"A", "C", costvec.New(1, 0)},
		{"C", "D", costvec.New(1, 0)},
	})
	search := NewParetoDijkstra(g)
	route, ok := search.FindBestRoute(pos["A"], pos["D"], costvec.UniformWeighting())
	if !ok {
		t.Fatal("expected A->D reachable")
	}

	it := route.Enumerate()
	count := 0
	for {
		r, ok := it.Next()
		if !ok {
			break
		}
		if !r.Cost.Equal(route.Cost) {
			t.Errorf("enumerated route cost %v, want %v", r.Cost.Values(), route.Cost.Values())
		}
		count++
	}
	if uint64(count) != route.PathCount {
		t.Errorf("Enumerate produced %d routes, PathCount reported %d", count, route.PathCount)
	}
}

// A search instance is reused across pairs; a prior search's touched
// state must not leak into the next one's distances.
func TestFindBestRouteReusableAcrossCalls(t *testing.T) {
	g, pos := buildGraph(t, []string{"A", "B", "C"}, []struct {
		from, to string
		cost     costvec.CostVec
	}{
		{"A", "B", costvec.New(1, 0)},
		{"B", "C", costvec.New(1, 0)},
	})
	search := NewParetoDijkstra(g)

	if _, ok := search.FindBestRoute(pos["A"], pos["C"], costvec.UniformWeighting()); !ok {
		t.Fatal("first search: expected reachable")
	}
	route, ok := search.FindBestRoute(pos["A"], pos["B"], costvec.UniformWeighting())
	if !ok {
		t.Fatal("second search: expected reachable")
	}
	if !route.Cost.Equal(costvec.New(1, 0)) {
		t.Errorf("second search cost = %v, want [1 0] (no leakage from the first search's longer distance)", route.Cost.Values())
	}
}
