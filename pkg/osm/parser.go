// Package osm parses OSM PBF extracts into directed edges carrying a
// three-criterion bicycle cost vector: distance, ascent, and a
// bicycle-unsuitability penalty derived from way tags.
package osm

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"

	"multich/pkg/costvec"
	"multich/pkg/geo"
)

// CriterionCount is the fixed dimension this parser produces:
// distance, ascent, unsuitability, in that order.
const CriterionCount = 3

const (
	criterionDistance      = 0
	criterionAscent        = 1
	criterionUnsuitability = 2
)

// RawEdge is a directed edge parsed from OSM data, carrying the
// process-wide cost vector already assembled.
type RawEdge struct {
	FromNodeID osm.NodeID
	ToNodeID   osm.NodeID
	Cost       costvec.CostVec
}

// ParseResult holds the output of parsing an OSM PBF file.
type ParseResult struct {
	Edges   []RawEdge
	NodeLat map[osm.NodeID]float64
	NodeLon map[osm.NodeID]float64
}

// bikeHighways lists highway tag values passable by bicycle at all,
// mapped to a base unsuitability multiplier: 1.0 is a purpose-built
// cycleway, higher values discourage routing onto faster car roads.
var bikeHighways = map[string]float64{
	"cycleway":      1.0,
	"path":          1.2,
	"track":         1.4,
	"living_street": 1.3,
	"residential":   1.5,
	"unclassified":  1.6,
	"tertiary":      2.0,
	"tertiary_link": 2.0,
	"secondary":     3.0,
	"secondary_link": 3.0,
	"primary":       5.0,
	"primary_link":  5.0,
	"service":       1.5,
	"trunk":         8.0,
	"trunk_link":    8.0,
}

// surfacePenalty scales unsuitability by surface quality; unlisted
// surfaces (including unset) are treated as "paved" (1.0).
var surfacePenalty = map[string]float64{
	"paved":       1.0,
	"asphalt":     1.0,
	"concrete":    1.0,
	"paving_stones": 1.1,
	"gravel":      1.6,
	"unpaved":     1.8,
	"ground":      2.0,
	"dirt":        2.2,
	"sand":        3.0,
	"cobblestone": 1.5,
}

// isBikeAccessible reports whether a way may be ridden at all.
func isBikeAccessible(tags osm.Tags) bool {
	bicycle := tags.Find("bicycle")
	if bicycle == "no" || bicycle == "private" {
		return false
	}
	if bicycle == "yes" || bicycle == "designated" || bicycle == "permissive" {
		return true
	}

	hw := tags.Find("highway")
	if _, ok := bikeHighways[hw]; !ok {
		return false
	}
	if tags.Find("access") == "no" || tags.Find("access") == "private" {
		return false
	}
	return true
}

// directionFlags returns (forward, backward) based on highway type,
// dedicated cycle infrastructure, and oneway/oneway:bicycle tags.
func directionFlags(tags osm.Tags) (forward, backward bool) {
	forward, backward = true, true

	hw := tags.Find("highway")
	if hw == "motorway" || hw == "motorway_link" || tags.Find("junction") == "roundabout" {
		backward = false
	}

	switch tags.Find("oneway") {
	case "yes", "true", "1":
		forward, backward = true, false
	case "-1", "reverse":
		forward, backward = false, true
	case "no":
		forward, backward = true, true
	}

	// oneway:bicycle overrides oneway for cyclists, e.g. contraflow lanes.
	switch tags.Find("oneway:bicycle") {
	case "no":
		forward, backward = true, true
	case "yes":
		forward, backward = true, false
	case "-1":
		forward, backward = false, true
	}

	return forward, backward
}

// unsuitability returns the per-metre penalty multiplier for a way,
// combining highway class and surface quality.
func unsuitability(tags osm.Tags) float64 {
	base, ok := bikeHighways[tags.Find("highway")]
	if !ok {
		base = 2.0
	}
	if cn := tags.Find("cycleway"); cn != "" && cn != "no" {
		base = math.Min(base, 1.2)
	}
	surf := surfacePenalty[tags.Find("surface")]
	if surf == 0 {
		surf = 1.0
	}
	return base * surf
}

// wayInfo holds parsed way data collected during Pass 1.
type wayInfo struct {
	NodeIDs         []osm.NodeID
	Forward         bool
	Backward        bool
	Unsuitability   float64
}

// BBox defines a geographic bounding box for filtering.
type BBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// IsZero returns true if the bbox is unset.
func (b BBox) IsZero() bool {
	return b.MinLat == 0 && b.MaxLat == 0 && b.MinLng == 0 && b.MaxLng == 0
}

// Contains returns true if the point is inside the bounding box.
func (b BBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// ParseOptions configures the OSM parser.
type ParseOptions struct {
	BBox BBox
}

// Parse reads an OSM PBF file and returns directed bicycle edges with a
// three-criterion cost vector. The reader is consumed twice (seeks back
// to start for the second pass), so it must implement io.ReadSeeker.
// Callers must call costvec.SetDim(osm.CriterionCount) before calling
// Parse, since it builds each RawEdge's Cost with costvec.New.
func Parse(ctx context.Context, rs io.ReadSeeker, opts ...ParseOptions) (*ParseResult, error) {
	var opt ParseOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	useBBox := !opt.BBox.IsZero()

	referencedNodes := make(map[osm.NodeID]struct{})
	var ways []wayInfo

	scanner := osmpbf.New(ctx, rs, 1)
	scanner.SkipNodes = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}
		if !isBikeAccessible(w.Tags) || len(w.Nodes) < 2 {
			continue
		}
		fwd, bwd := directionFlags(w.Tags)
		if !fwd && !bwd {
			continue
		}

		nodeIDs := make([]osm.NodeID, len(w.Nodes))
		for i, wn := range w.Nodes {
			nodeIDs[i] = wn.ID
			referencedNodes[wn.ID] = struct{}{}
		}

		ways = append(ways, wayInfo{
			NodeIDs:       nodeIDs,
			Forward:       fwd,
			Backward:      bwd,
			Unsuitability: unsuitability(w.Tags),
		})
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 1 (ways): %w", err)
	}
	scanner.Close()

	log.Printf("pass 1 complete: %d ways, %d referenced nodes", len(ways), len(referencedNodes))

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek for pass 2: %w", err)
	}

	nodeLat := make(map[osm.NodeID]float64, len(referencedNodes))
	nodeLon := make(map[osm.NodeID]float64, len(referencedNodes))
	nodeEle := make(map[osm.NodeID]float64, len(referencedNodes))

	scanner = osmpbf.New(ctx, rs, 1)
	scanner.SkipWays = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, needed := referencedNodes[n.ID]; !needed {
			continue
		}
		nodeLat[n.ID] = n.Lat
		nodeLon[n.ID] = n.Lon
		if ele := n.Tags.Find("ele"); ele != "" {
			if v, err := parseElevation(ele); err == nil {
				nodeEle[n.ID] = v
			}
		}
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 2 (nodes): %w", err)
	}
	scanner.Close()

	log.Printf("pass 2 complete: %d node coordinates collected", len(nodeLat))

	var edges []RawEdge
	var skippedEdges, bboxFiltered int

	for _, w := range ways {
		for i := 0; i < len(w.NodeIDs)-1; i++ {
			fromID, toID := w.NodeIDs[i], w.NodeIDs[i+1]

			fromLat, fromOk := nodeLat[fromID]
			fromLon := nodeLon[fromID]
			toLat, toOk := nodeLat[toID]
			toLon := nodeLon[toID]
			if !fromOk || !toOk {
				skippedEdges++
				continue
			}

			if useBBox && (!opt.BBox.Contains(fromLat, fromLon) || !opt.BBox.Contains(toLat, toLon)) {
				bboxFiltered++
				continue
			}

			dist := geo.Haversine(fromLat, fromLon, toLat, toLon)
			if dist <= 0 {
				dist = 1e-3
			}
			rise := nodeEle[toID] - nodeEle[fromID]

			if w.Forward {
				ascent := math.Max(0, rise)
				edges = append(edges, RawEdge{
					FromNodeID: fromID,
					ToNodeID:   toID,
					Cost:       costvec.New(dist, ascent, dist*w.Unsuitability),
				})
			}
			if w.Backward {
				ascent := math.Max(0, -rise)
				edges = append(edges, RawEdge{
					FromNodeID: toID,
					ToNodeID:   fromID,
					Cost:       costvec.New(dist, ascent, dist*w.Unsuitability),
				})
			}
		}
	}

	if skippedEdges > 0 {
		log.Printf("warning: skipped %d edges with missing node coordinates", skippedEdges)
	}
	if bboxFiltered > 0 {
		log.Printf("filtered %d edges outside bounding box", bboxFiltered)
	}
	log.Printf("built %d directed edges", len(edges))

	return &ParseResult{Edges: edges, NodeLat: nodeLat, NodeLon: nodeLon}, nil
}

func parseElevation(s string) (float64, error) {
	var v float64
	_, err := fmt.Sscanf(s, "%g", &v)
	return v, err
}
