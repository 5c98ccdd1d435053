// Package mis implements the greedy independent-set selection heuristic
// LevelDriver uses to decide which nodes to contract in a level.
package mis

import (
	"sort"

	"multich/pkg/graph"
)

// scored pairs a NodePos with its (|in|*|out|) score, the upper bound on
// edge pairs contracting it would create.
type scored struct {
	score int
	pos   graph.NodePos
}

func score(g *graph.Graph, p graph.NodePos) int {
	return len(g.InEdges(p)) * len(g.OutEdges(p))
}

// Select computes the greedy independent set over g and reduces it to
// the lowest-quartile by score.
func Select(g *graph.Graph) []graph.NodePos {
	return reduce(g, greedy(g))
}

// greedy sorts nodes ascending by score and sweeps: a node still
// eligible is taken and its in/out neighbors are marked ineligible.
func greedy(g *graph.Graph) []graph.NodePos {
	n := g.NodeCount()
	nodes := make([]scored, n)
	for p := 0; p < n; p++ {
		pos := graph.NodePos(p)
		nodes[p] = scored{score: score(g, pos), pos: pos}
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].score < nodes[j].score })

	eligible := make([]bool, n)
	for i := range eligible {
		eligible[i] = true
	}

	var set []graph.NodePos
	for _, s := range nodes {
		if !eligible[s.pos] {
			continue
		}
		set = append(set, s.pos)
		for _, e := range g.InEdges(s.pos) {
			eligible[e.End] = false
		}
		for _, e := range g.OutEdges(s.pos) {
			eligible[e.End] = false
		}
	}
	return set
}

// reduce keeps only the lowest-quartile by score among the selected
// set (size/4, except when size < 4, where all are kept). Preferring
// low-score nodes first bounds the number of LP calls per level.
func reduce(g *graph.Graph, set []graph.NodePos) []graph.NodePos {
	metric := make([]scored, len(set))
	for i, p := range set {
		metric[i] = scored{score: score(g, p), pos: p}
	}
	sort.Slice(metric, func(i, j int) bool { return metric[i].score < metric[j].score })

	cut := len(metric)
	const divider = 4
	if len(metric) >= divider {
		cut = len(metric) / divider
	}

	result := make([]graph.NodePos, cut)
	for i := 0; i < cut; i++ {
		result[i] = metric[i].pos
	}
	return result
}
