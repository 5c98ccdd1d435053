package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/prometheus/common/expfmt"

	"multich/pkg/ch"
	"multich/pkg/costvec"
	"multich/pkg/geo"
	"multich/pkg/graph"
	osmparser "multich/pkg/osm"
	"multich/pkg/witness"
)

func main() {
	input := flag.String("input", "", "Path to .osm.pbf file")
	output := flag.String("output", "graph.bin", "Output binary hierarchy file path")
	bbox := flag.String("bbox", "", "Bounding box filter: minLat,minLng,maxLat,maxLng")
	threads := flag.Int("threads", 4, "Number of ContractingWorker goroutines per level")
	rest := flag.Float64("rest", 0.5, "Stop contracting once the residual node fraction drops to this percentage")
	stats := flag.Bool("stats", false, "Print per-level and per-worker statistics")
	metricsFile := flag.String("metrics-file", "", "If set, write a Prometheus text-format dump of run metrics here")
	samplePairs := flag.Int("sample-pairs", 0, "If >0, skip contraction and instead sample this many random OD pairs and smoke-test the witness search against them")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: contract --input <file.osm.pbf> [--output graph.bin] [--bbox minLat,minLng,maxLat,maxLng] [--threads N] [--rest pct]")
		os.Exit(1)
	}

	var opts osmparser.ParseOptions
	if *bbox != "" {
		var minLat, minLng, maxLat, maxLng float64
		if _, err := fmt.Sscanf(*bbox, "%f,%f,%f,%f", &minLat, &minLng, &maxLat, &maxLng); err != nil {
			log.Fatalf("invalid bbox format (expected minLat,minLng,maxLat,maxLng): %v", err)
		}
		opts.BBox = osmparser.BBox{MinLat: minLat, MaxLat: maxLat, MinLng: minLng, MaxLng: maxLng}
		log.Printf("using bounding box filter: lat [%.4f, %.4f], lng [%.4f, %.4f]", minLat, maxLat, minLng, maxLng)
	}

	costvec.SetDim(osmparser.CriterionCount)

	start := time.Now()

	log.Println("opening OSM file...")
	f, err := os.Open(*input)
	if err != nil {
		log.Fatalf("failed to open input file: %v", err)
	}
	defer f.Close()

	log.Println("parsing OSM data (distance, ascent, unsuitability)...")
	parseResult, err := osmparser.Parse(context.Background(), f, opts)
	if err != nil {
		log.Fatalf("failed to parse OSM data: %v", err)
	}
	log.Printf("parsed %d edges, %d nodes", len(parseResult.Edges), len(parseResult.NodeLat))

	log.Println("building graph...")
	g, registry := graph.FromParseResult(parseResult)
	log.Printf("graph: %d nodes, %d edges", g.NodeCount(), g.EdgeCount())

	log.Println("extracting largest connected component...")
	componentNodes := graph.LargestComponent(g)
	log.Printf("largest component: %d nodes (%.1f%%)", len(componentNodes), float64(len(componentNodes))/float64(g.NodeCount())*100)
	g = graph.FilterToComponent(registry, componentNodes)
	log.Printf("filtered graph: %d nodes, %d edges", g.NodeCount(), g.EdgeCount())

	if *samplePairs > 0 {
		runSamplePairs(g, parseResult, *samplePairs)
		return
	}

	metrics := ch.NewMetrics()

	log.Println("running contraction...")
	contractor := ch.NewContractor(*threads, *stats, metrics)
	result, err := contractor.Contract(g, registry, *rest)
	if err != nil {
		log.Fatalf("contraction failed: %v", err)
	}
	log.Printf("contraction complete: %d edges total (original + shortcuts)", len(result.Edges))

	if *metricsFile != "" {
		if err := writeMetrics(*metricsFile, metrics); err != nil {
			log.Printf("warning: failed to write metrics file: %v", err)
		}
	}

	hierarchy := toHierarchy(result)
	log.Printf("writing binary to %s...", *output)
	if err := graph.WriteBinary(*output, hierarchy); err != nil {
		log.Fatalf("failed to write binary: %v", err)
	}

	info, _ := os.Stat(*output)
	elapsed := time.Since(start)
	log.Printf("done in %s. output: %s (%.1f MB)", elapsed.Round(time.Second), *output, float64(info.Size())/(1024*1024))
}

// toHierarchy flattens a Contract Result's level map into the parallel
// NodeIDs/Levels arrays WriteBinary expects.
func toHierarchy(result *ch.Result) *graph.Hierarchy {
	h := &graph.Hierarchy{
		NodeIDs: make([]graph.NodeId, 0, len(result.Levels)),
		Levels:  make([]uint32, 0, len(result.Levels)),
		Edges:   result.Edges,
	}
	for id, level := range result.Levels {
		h.NodeIDs = append(h.NodeIDs, id)
		h.Levels = append(h.Levels, level)
	}
	return h
}

// writeMetrics dumps the run's Prometheus registry in text exposition
// format, for offline inspection without standing up an HTTP server.
func writeMetrics(path string, m *ch.Metrics) error {
	families, err := m.Registry().Gather()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := expfmt.NewEncoder(f, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}

// runSamplePairs builds a spatial index over the filtered graph's nodes,
// draws n random OD pairs biased toward nearby destinations, and runs
// one witness search per pair so a large extract can be smoke-tested
// before committing to a full, possibly hours-long contraction run.
func runSamplePairs(g *graph.Graph, parseResult *osmparser.ParseResult, n int) {
	order := graph.NodeOrder(parseResult)

	idx := geo.NewNodeIndex[graph.NodePos]()
	points := make([]geo.Point[graph.NodePos], 0, g.NodeCount())

	for p := 0; p < g.NodeCount(); p++ {
		osmID := order[g.Node(graph.NodePos(p)).Id]
		lat, ok := parseResult.NodeLat[osmID]
		if !ok {
			continue
		}
		lon := parseResult.NodeLon[osmID]
		points = append(points, geo.Point[graph.NodePos]{Lat: lat, Lon: lon, Value: graph.NodePos(p)})
		idx.Insert(lat, lon, graph.NodePos(p))
	}

	rng := rand.New(rand.NewSource(1))
	pairs := geo.SamplePairs(points, idx, n, rng)

	search := witness.NewParetoDijkstra(g)
	reached := 0
	for _, pair := range pairs {
		if _, ok := search.FindBestRoute(pair.From, pair.To, costvec.UniformWeighting()); ok {
			reached++
		}
	}
	log.Printf("sampled %d OD pairs, %d reachable under uniform weighting", len(pairs), reached)
}
