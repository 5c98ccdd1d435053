package ch

import (
	"fmt"
	"sort"
	"sync"

	"multich/pkg/costvec"
	"multich/pkg/graph"
	"multich/pkg/lp"
	"multich/pkg/mis"
	"multich/pkg/queue"
	"multich/pkg/witness"
)

// batchMultiplier is the per-thread batch size LevelDriver sends to the
// work queue at a time, chosen so a worker rarely idles waiting on the
// next batch.
const batchMultiplier = 30

// queueCapacityBatches bounds how many batches may sit in the queue
// ahead of the workers, so LevelDriver's producer loop does not race
// arbitrarily far ahead of consumption.
const queueCapacityBatches = 4

// SolverFactory and SearchFactory let LevelDriver hand each worker its
// own LP solver and witness search instance, since neither is safe to
// share across goroutines.
type SolverFactory func() lp.SeparationLP
type SearchFactory func(g *graph.Graph) witness.WitnessSearch

// LevelDriver runs one contraction level end to end: select an
// independent set, fan candidate pairs out to a pool of
// ContractingWorkers, collect their shortcuts, and build the residual
// graph for the next level. The worker pool itself (channel-fed
// workers joined by a WaitGroup) follows thunur-osm's
// computeNodeContractionParallel shape.
type LevelDriver struct {
	threads    int
	newSolver  SolverFactory
	newSearch  SearchFactory
	printStats bool
}

// NewLevelDriver creates a driver that runs threads workers per level.
func NewLevelDriver(threads int, newSolver SolverFactory, newSearch SearchFactory, printStats bool) *LevelDriver {
	return &LevelDriver{threads: threads, newSolver: newSolver, newSearch: newSearch, printStats: printStats}
}

// LevelResult is what one call to Run produces: the residual graph for
// the next level, the stable ids of the nodes contracted this level (for
// the caller to stamp with the level number), and the merged worker
// statistics.
type LevelResult struct {
	Residual   *graph.Graph
	Contracted []graph.NodeId
	Stats      WorkerStats
}

// Run executes a single level over g, administering any accepted
// shortcuts into registry and returning the residual graph built over
// every node not in this level's independent set.
func (d *LevelDriver) Run(g *graph.Graph, registry *graph.Registry) (*LevelResult, error) {
	isSlice := mis.Select(g)
	if len(isSlice) == 0 {
		return &LevelResult{Residual: g}, nil
	}

	isSet := make(map[graph.NodePos]bool, len(isSlice))
	for _, p := range isSlice {
		isSet[p] = true
	}

	q := queue.NewWorkQueue(d.threads * batchMultiplier * queueCapacityBatches)

	workers := make([]*ContractingWorker, d.threads)
	for i := range workers {
		workers[i] = NewContractingWorker(i, q, g, isSet, d.newSolver(), d.newSearch(g), d.printStats)
	}

	type workerOutcome struct {
		shortcuts []pendingShortcut
		stats     WorkerStats
		err       error
	}
	outcomes := make([]workerOutcome, d.threads)

	var wg sync.WaitGroup
	wg.Add(d.threads)
	for i, w := range workers {
		go func(i int, w *ContractingWorker) {
			defer wg.Done()
			shortcuts, stats, err := w.Run()
			outcomes[i] = workerOutcome{shortcuts: shortcuts, stats: stats, err: err}
		}(i, w)
	}

	if d.printStats {
		printStatsHeader()
	}

	batch := make([]graph.EdgePair, 0, d.threads*batchMultiplier)
	for _, p := range isSlice {
		for _, in := range g.InEdges(p) {
			if in.End == p {
				continue // self-loop, never a contraction candidate
			}
			for _, out := range g.OutEdges(p) {
				if out.End == p || out.End == in.End {
					continue
				}
				batch = append(batch, graph.EdgePair{In: in, Out: out})
				if len(batch) == cap(batch) {
					q.Send(batch)
					batch = batch[:0]
				}
			}
		}
	}
	if len(batch) > 0 {
		q.Send(batch)
	}
	q.Close()

	wg.Wait()

	var merged WorkerStats
	var allShortcuts []pendingShortcut
	for _, o := range outcomes {
		if o.err != nil {
			return nil, fmt.Errorf("ch: level failed: %w", o.err)
		}
		merged.Add(o.stats)
		allShortcuts = append(allShortcuts, o.shortcuts...)
	}

	edges, err := dedupeShortcuts(registry, allShortcuts)
	if err != nil {
		return nil, err
	}
	registry.Administer(edges)

	residualNodes := make([]graph.Node, 0, g.NodeCount()-len(isSlice))
	contracted := make([]graph.NodeId, 0, len(isSlice))
	for p := 0; p < g.NodeCount(); p++ {
		n := g.Node(graph.NodePos(p))
		if isSet[graph.NodePos(p)] {
			contracted = append(contracted, n.Id)
			continue
		}
		residualNodes = append(residualNodes, n)
	}

	builder := graph.NewBuilder(residualNodes)
	for id, e := range registry.All() {
		builder.AddEdge(graph.EdgeId(id), e)
	}

	return &LevelResult{Residual: builder.Build(), Contracted: contracted, Stats: merged}, nil
}

// dedupeShortcuts builds the Edge for each pendingShortcut and removes
// duplicates that differ only by which worker happened to discover them
// (same src, dst and cost within CostAccuracy).
func dedupeShortcuts(registry *graph.Registry, pending []pendingShortcut) ([]graph.Edge, error) {
	type keyed struct {
		edge graph.Edge
		key  costvec.CostVec
	}
	built := make([]keyed, 0, len(pending))
	for _, ps := range pending {
		e, err := registry.CreateShortcut(ps.child1, ps.child2)
		if err != nil {
			return nil, fmt.Errorf("ch: %w", err)
		}
		built = append(built, keyed{edge: e, key: e.Cost})
	}

	sort.Slice(built, func(i, j int) bool {
		if built[i].edge.Src != built[j].edge.Src {
			return built[i].edge.Src < built[j].edge.Src
		}
		if built[i].edge.Dst != built[j].edge.Dst {
			return built[i].edge.Dst < built[j].edge.Dst
		}
		return built[i].key.Less(built[j].key)
	})

	out := make([]graph.Edge, 0, len(built))
	for i, k := range built {
		if i > 0 {
			prev := built[i-1]
			if prev.edge.Src == k.edge.Src && prev.edge.Dst == k.edge.Dst && prev.key.EqualEps(k.key, CostAccuracy) {
				continue
			}
		}
		out = append(out, k.edge)
	}
	return out, nil
}
