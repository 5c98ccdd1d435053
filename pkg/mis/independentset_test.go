package mis

import (
	"testing"

	"multich/pkg/costvec"
	"multich/pkg/graph"
)

func init() {
	costvec.SetDim(1)
}

func buildChain(names []string, edges [][2]string) *graph.Graph {
	nodes := make([]graph.Node, len(names))
	pos := make(map[string]graph.NodePos, len(names))
	for i := range names {
		nodes[i] = graph.Node{Id: graph.NodeId(i)}
		pos[names[i]] = graph.NodePos(i)
	}
	builder := graph.NewBuilder(nodes)
	registry := graph.NewRegistry()
	for i, e := range edges {
		edge := graph.NewOriginalEdge(graph.NodeId(pos[e[0]]), graph.NodeId(pos[e[1]]), costvec.New(1))
		ids := registry.Administer([]graph.Edge{edge})
		builder.AddEdge(ids[0], edge)
		_ = i
	}
	return builder.Build()
}

// A 5-node chain A-B-C-D-E has scores 0,1,1,1,0 for A,B,C,D,E. The
// greedy sweep takes A and E first (score 0), which rules out B and D
// as their neighbors, leaving only C eligible among the score-1 tier.
func TestSelectChain(t *testing.T) {
	g := buildChain([]string{"A", "B", "C", "D", "E"}, [][2]string{
		{"A", "B"}, {"B", "C"}, {"C", "D"}, {"D", "E"},
	})

	set := Select(g)

	got := map[graph.NodePos]bool{}
	for _, p := range set {
		got[p] = true
	}
	if !got[0] || !got[2] || !got[4] {
		t.Errorf("Select(chain) = %v, want {A(0), C(2), E(4)} present", set)
	}
	if got[1] || got[3] {
		t.Errorf("Select(chain) = %v, want B(1) and D(3) excluded (neighbors of A, E)", set)
	}
}

// An isolated node (score 0, no neighbors to exclude) is always picked.
func TestSelectIsolatedNode(t *testing.T) {
	g := buildChain([]string{"Solo", "A", "B"}, [][2]string{{"A", "B"}})

	set := Select(g)
	found := false
	for _, p := range set {
		if p == 0 {
			found = true
		}
	}
	if !found {
		t.Errorf("Select = %v, want isolated node 0 present", set)
	}
}

// reduce keeps only the lowest-score quartile once the candidate set
// reaches 4 or more members, bounding per-level LP work.
func TestReduceKeepsLowestQuartile(t *testing.T) {
	names := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	// A chain of 8 nodes: endpoints score 0, all interior nodes score 1.
	g := buildChain(names, [][2]string{
		{"A", "B"}, {"B", "C"}, {"C", "D"}, {"D", "E"},
		{"E", "F"}, {"F", "G"}, {"G", "H"},
	})

	greedySet := greedy(g)
	reduced := reduce(g, greedySet)

	if len(reduced) > len(greedySet) {
		t.Fatalf("reduce grew the set from %d to %d", len(greedySet), len(reduced))
	}
	if len(greedySet) >= 4 && len(reduced) != len(greedySet)/4 {
		t.Errorf("reduce(size=%d) = %d, want %d (size/4)", len(greedySet), len(reduced), len(greedySet)/4)
	}
}

func TestReduceSmallSetKeepsAll(t *testing.T) {
	g := buildChain([]string{"A", "B", "C"}, [][2]string{{"A", "B"}})
	small := []graph.NodePos{0, 1, 2}
	reduced := reduce(g, small)
	if len(reduced) != len(small) {
		t.Errorf("reduce(size=%d < 4) = %d, want all %d kept", len(small), len(reduced), len(small))
	}
}
