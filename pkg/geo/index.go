package geo

import (
	"math"

	"github.com/tidwall/rtree"
)

// NodeIndex is a 2D spatial index over graph node positions, keyed by
// lon/lat, used by debug and sampling tooling to pick random
// origin/destination pairs near a given point without scanning every
// node.
type NodeIndex[T any] struct {
	tr rtree.RTreeG[T]
}

// NewNodeIndex creates an empty index.
func NewNodeIndex[T any]() *NodeIndex[T] {
	return &NodeIndex[T]{}
}

// Insert adds a point at (lat, lon) carrying value v.
func (idx *NodeIndex[T]) Insert(lat, lon float64, v T) {
	point := [2]float64{lon, lat}
	idx.tr.Insert(point, point, v)
}

// Len returns the number of points in the index.
func (idx *NodeIndex[T]) Len() int {
	return idx.tr.Len()
}

// Nearest returns the value closest to (lat, lon) by Haversine distance,
// searching expanding boxes around the query point until a candidate is
// found or the search radius exceeds maxMeters.
func (idx *NodeIndex[T]) Nearest(lat, lon, maxMeters float64) (T, float64, bool) {
	var best T
	bestDist := math.Inf(1)
	found := false

	for radiusMeters := 50.0; radiusMeters <= maxMeters; radiusMeters *= 4 {
		dLat := radiusMeters / earthRadiusMeters * 180 / math.Pi
		dLon := dLat / math.Max(math.Cos(lat*math.Pi/180), 0.01)

		min := [2]float64{lon - dLon, lat - dLat}
		max := [2]float64{lon + dLon, lat + dLat}

		idx.tr.Search(min, max, func(bmin, bmax [2]float64, v T) bool {
			candLon, candLat := bmin[0], bmin[1]
			d := Haversine(lat, lon, candLat, candLon)
			if d < bestDist {
				bestDist = d
				best = v
				found = true
			}
			return true
		})

		if found {
			return best, bestDist, true
		}
	}

	return best, bestDist, false
}
