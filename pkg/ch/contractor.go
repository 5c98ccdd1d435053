// Package ch implements the multi-criteria contraction hierarchy
// preprocessor: per-pair LP-separation shortcut decisions
// (ContractingWorker), parallel fan-out over an independent set
// (LevelDriver), and the outer level-by-level loop (Contractor).
package ch

import (
	"log"
	"time"

	"multich/pkg/graph"
	"multich/pkg/lp"
	"multich/pkg/witness"
)

// Contractor runs the outer contraction loop: repeatedly select and
// contract an independent set with a LevelDriver until the residual
// node percentage drops to rest, the residual graph is empty, or a level
// fails to shrink it, at which point whatever remains forms the
// uncontracted core.
type Contractor struct {
	driver          *LevelDriver
	printStatistics bool
	maxThreads      int
	metrics         *Metrics
}

// NewContractor builds a Contractor that runs maxThreads workers per
// level using gonum-backed LP solvers and Dijkstra-based witness
// searches. metrics may be nil, in which case Contract runs without
// publishing to Prometheus.
func NewContractor(maxThreads int, printStatistics bool, metrics *Metrics) *Contractor {
	newSolver := func() lp.SeparationLP { return lp.NewGonumSimplex() }
	newSearch := func(g *graph.Graph) witness.WitnessSearch { return witness.NewParetoDijkstra(g) }
	return &Contractor{
		driver:          NewLevelDriver(maxThreads, newSolver, newSearch, printStatistics),
		printStatistics: printStatistics,
		maxThreads:      maxThreads,
		metrics:         metrics,
	}
}

// Result is the hierarchy produced by contracting a graph completely:
// the final node levels (1 for nodes contracted in the first level) and
// every edge, original and shortcut, in registry-id order.
type Result struct {
	Levels map[graph.NodeId]uint32
	Edges  []graph.Edge
}

// Contract runs contractCompletely over the initial graph g: it iterates
// LevelDriver until the residual node fraction |V_k|/|V_0|*100 drops to
// or below rest, then merges the remaining residual nodes into the
// level map at the next level number and returns the full edge set ever
// administered into registry.
func (c *Contractor) Contract(g *graph.Graph, registry *graph.Registry, rest float64) (*Result, error) {
	runStart := time.Now()
	runID := NewRunID()
	if c.printStatistics {
		logRunStart(runID, g.NodeCount(), registry.Len(), c.maxThreads)
	}

	levels := make(map[graph.NodeId]uint32)

	total := g.NodeCount()
	current := g
	var level uint32 = 1
	for current.NodeCount() > 0 {
		if total > 0 && float64(current.NodeCount())/float64(total)*100 <= rest {
			break
		}

		before := current.NodeCount()

		levelStart := time.Now()
		result, err := c.driver.Run(current, registry)
		if err != nil {
			return nil, err
		}

		for _, id := range result.Contracted {
			levels[id] = level
		}

		if c.printStatistics {
			log.Printf("level %d: contracted %d nodes, %d remain", level, len(result.Contracted), result.Residual.NodeCount())
		}
		if c.metrics != nil {
			c.metrics.observeLevel(len(result.Contracted), result.Residual.NodeCount(), result.Stats, time.Since(levelStart).Seconds())
		}

		if result.Residual.NodeCount() == before {
			// Stuck: the independent set was empty, so no node left the
			// residual graph. What remains becomes the uncontracted core
			// at the next level.
			break
		}

		current = result.Residual
		level++
	}

	for p := 0; p < current.NodeCount(); p++ {
		n := current.Node(graph.NodePos(p))
		levels[n.Id] = level
	}

	if c.printStatistics {
		logRunDone(runID, level, time.Since(runStart).Seconds())
	}

	return &Result{Levels: levels, Edges: registry.All()}, nil
}
