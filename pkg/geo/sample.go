package geo

import "math/rand"

// SampleRadiusMeters bounds how far a sampled destination may be from
// its origin, keeping smoke-test OD pairs within a plausible bicycle
// trip distance.
const SampleRadiusMeters = 20_000.0

// SamplePairs draws n random (origin, destination) index pairs from
// points, biased toward nearby destinations via idx, for quick
// witness-search smoke tests on a freshly parsed graph. Points outside
// SampleRadiusMeters of the chosen origin are skipped in favor of a
// fallback uniform-random destination, so sampling still terminates on
// sparse point sets.
func SamplePairs[T any](points []Point[T], idx *NodeIndex[T], n int, rng *rand.Rand) []Pair[T] {
	if len(points) == 0 {
		return nil
	}
	pairs := make([]Pair[T], 0, n)
	for i := 0; i < n; i++ {
		origin := points[rng.Intn(len(points))]

		dest, _, ok := idx.Nearest(origin.Lat, origin.Lon, SampleRadiusMeters)
		if !ok {
			dest = points[rng.Intn(len(points))].Value
		}

		pairs = append(pairs, Pair[T]{From: origin.Value, To: dest})
	}
	return pairs
}

// Point pairs a coordinate with an arbitrary payload (e.g. a graph.NodePos).
type Point[T any] struct {
	Lat, Lon float64
	Value    T
}

// Pair is a sampled origin/destination pair.
type Pair[T any] struct {
	From, To T
}
