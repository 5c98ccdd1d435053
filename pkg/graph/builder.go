package graph

import (
	"github.com/paulmach/osm"

	osmparser "multich/pkg/osm"
)

// NodeOrder assigns each osm.NodeID referenced by an edge a NodeId equal
// to its position of first appearance among result.Edges, the same
// ordering FromParseResult uses to build its Graph. Callers that need to
// go back from a NodeId to source coordinates (e.g. a debug spatial
// index) index this slice with the NodeId.
func NodeOrder(result *osmparser.ParseResult) []osm.NodeID {
	nodeSet := make(map[osm.NodeID]NodeId)
	var order []osm.NodeID
	for _, e := range result.Edges {
		for _, id := range [2]osm.NodeID{e.FromNodeID, e.ToNodeID} {
			if _, ok := nodeSet[id]; !ok {
				nodeSet[id] = NodeId(len(order))
				order = append(order, id)
			}
		}
	}
	return order
}

// FromParseResult builds the initial (level-0) Graph and its seed edge
// Registry from a parsed OSM extract: every node referenced by an edge
// becomes a NodeId equal to its position of first appearance, and every
// RawEdge becomes an original (non-shortcut) Edge administered into a
// freshly created Registry.
func FromParseResult(result *osmparser.ParseResult) (*Graph, *Registry) {
	order := NodeOrder(result)
	nodeSet := make(map[osm.NodeID]NodeId, len(order))
	for i, id := range order {
		nodeSet[id] = NodeId(i)
	}

	registry := NewRegistry()
	nodes := make([]Node, len(order))
	for i := range order {
		nodes[i] = Node{Id: NodeId(i)}
	}

	builder := NewBuilder(nodes)
	for _, e := range result.Edges {
		src := nodeSet[e.FromNodeID]
		dst := nodeSet[e.ToNodeID]
		edge := NewOriginalEdge(src, dst, e.Cost)
		ids := registry.Administer([]Edge{edge})
		builder.AddEdge(ids[0], edge)
	}

	return builder.Build(), registry
}
