package graph

import (
	"testing"

	"github.com/paulmach/osm"

	"multich/pkg/costvec"
	osmparser "multich/pkg/osm"
)

func TestLargestComponent(t *testing.T) {
	// Component 1: 10 <-> 20 <-> 30 (3 nodes). Component 2: 40 <-> 50.
	result := &osmparser.ParseResult{
		Edges: []osmparser.RawEdge{
			{FromNodeID: 10, ToNodeID: 20, Cost: costvec.New(100, 0, 100)},
			{FromNodeID: 20, ToNodeID: 10, Cost: costvec.New(100, 0, 100)},
			{FromNodeID: 20, ToNodeID: 30, Cost: costvec.New(200, 0, 200)},
			{FromNodeID: 30, ToNodeID: 20, Cost: costvec.New(200, 0, 200)},
			{FromNodeID: 40, ToNodeID: 50, Cost: costvec.New(300, 0, 300)},
			{FromNodeID: 50, ToNodeID: 40, Cost: costvec.New(300, 0, 300)},
		},
		NodeLat: map[osm.NodeID]float64{10: 1.0, 20: 1.1, 30: 1.2, 40: 2.0, 50: 2.1},
		NodeLon: map[osm.NodeID]float64{10: 103.0, 20: 103.1, 30: 103.2, 40: 104.0, 50: 104.1},
	}

	g, _ := FromParseResult(result)
	ids := LargestComponent(g)
	if len(ids) != 3 {
		t.Fatalf("LargestComponent has %d nodes, want 3", len(ids))
	}
}

func TestFilterToComponent(t *testing.T) {
	result := &osmparser.ParseResult{
		Edges: []osmparser.RawEdge{
			{FromNodeID: 10, ToNodeID: 20, Cost: costvec.New(100, 0, 100)},
			{FromNodeID: 20, ToNodeID: 30, Cost: costvec.New(200, 0, 200)},
			{FromNodeID: 30, ToNodeID: 10, Cost: costvec.New(300, 0, 300)},
			{FromNodeID: 40, ToNodeID: 50, Cost: costvec.New(400, 0, 400)},
		},
		NodeLat: map[osm.NodeID]float64{10: 1.0, 20: 1.1, 30: 1.2, 40: 2.0, 50: 2.1},
		NodeLon: map[osm.NodeID]float64{10: 103.0, 20: 103.1, 30: 103.2, 40: 104.0, 50: 104.1},
	}

	g, registry := FromParseResult(result)
	ids := LargestComponent(g)
	filtered := FilterToComponent(registry, ids)

	if filtered.NodeCount() != 3 {
		t.Fatalf("filtered NodeCount() = %d, want 3", filtered.NodeCount())
	}
	if filtered.EdgeCount() != 3 {
		t.Fatalf("filtered EdgeCount() = %d, want 3", filtered.EdgeCount())
	}

	var total float64
	for p := 0; p < filtered.NodeCount(); p++ {
		for _, e := range filtered.OutEdges(NodePos(p)) {
			total += e.Cost.At(0)
		}
	}
	if total != 600 {
		t.Errorf("total distance = %v, want 600", total)
	}
}

func TestLargestComponentEmptyGraph(t *testing.T) {
	g := &Graph{}
	ids := LargestComponent(g)
	if ids != nil {
		t.Errorf("expected nil for empty graph, got %v", ids)
	}
}
