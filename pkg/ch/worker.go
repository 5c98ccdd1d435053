package ch

import (
	"errors"
	"fmt"
	"sort"

	"multich/pkg/costvec"
	"multich/pkg/graph"
	"multich/pkg/lp"
	"multich/pkg/queue"
	"multich/pkg/witness"
)

// CostAccuracy is the numerical tolerance used for LP fixed-point
// detection and cost vector equality.
const CostAccuracy = 1e-7

// receiveBatchSize is how many pairs ContractingWorker drains from the
// queue per ReceiveSome call.
const receiveBatchSize = 20

// ErrMalformedPair is returned when a pulled EdgePair violates the
// in.Begin==out.Begin / in.Dst==out.Src invariant. Fatal: surfaces as an
// unrecoverable error that aborts the worker.
var ErrMalformedPair = errors.New("ch: in/out half-edges do not share a midpoint")

// pendingShortcut is a shortcut a worker decided to emit, named only by
// the registry ids of its two children; the worker never mutates the
// registry itself — LevelDriver administers the emitted shortcuts on
// the main thread between levels.
type pendingShortcut struct {
	child1, child2 graph.EdgeId
	reason         ShortcutReason
}

// ContractingWorker runs the per-pair LP-separation loop: probe a
// weighting, run a witness search, add the witness as a constraint,
// repeat until the LP is infeasible or reaches a fixed point. It owns
// exactly one SeparationLP and one WitnessSearch, both reused across
// pairs, and is driven by exactly one goroutine.
type ContractingWorker struct {
	id         int
	queue      *queue.WorkQueue
	g          *graph.Graph
	isSet      map[graph.NodePos]bool
	solver     lp.SeparationLP
	search     witness.WitnessSearch
	printStats bool

	// warm-start state, retained across pairs sharing both endpoints.
	hasWarm     bool
	warmIn      graph.NodePos
	warmOut     graph.NodePos
	constraints []costvec.CostVec

	shortcuts []pendingShortcut
	stats     WorkerStats
}

// NewContractingWorker builds a worker over a published (read-only for
// the lifetime of the level) graph snapshot and independent set.
// printStats mirrors LevelDriver.printStats (the --stats flag) and
// gates whether this worker's final counters are logged at all.
func NewContractingWorker(id int, q *queue.WorkQueue, g *graph.Graph, isSet map[graph.NodePos]bool, solver lp.SeparationLP, search witness.WitnessSearch, printStats bool) *ContractingWorker {
	return &ContractingWorker{
		id:         id,
		queue:      q,
		g:          g,
		isSet:      isSet,
		solver:     solver,
		search:     search,
		printStats: printStats,
	}
}

// Run drains the queue until it is empty and closed, processing each
// pair in turn, and returns the shortcuts it decided to emit plus its
// final statistics. A malformed pair aborts the worker immediately.
func (w *ContractingWorker) Run() ([]pendingShortcut, WorkerStats, error) {
	for {
		batch, n := w.queue.ReceiveSome(receiveBatchSize)
		if n == 0 {
			if w.printStats {
				printWorkerStats(w.id, w.stats)
			}
			return w.shortcuts, w.stats, nil
		}
		for _, pair := range batch {
			if err := w.processPair(pair); err != nil {
				return w.shortcuts, w.stats, fmt.Errorf("worker %d: %w", w.id, err)
			}
		}
	}
}

// testResult is the outcome of one testConfig call.
type testResult struct {
	decided bool
	emit    bool
	reason  ShortcutReason
	cost    costvec.CostVec
}

// testConfig runs the witness search under weighting cfg and classifies
// the outcome: no witness (decided, no emission), an exact cost match
// (decided; emit if the witness is the only co-optimal path or routes
// through the independent set), dominance (decided, no
// emission), or neither (undecided, caller should keep separating).
func (w *ContractingWorker) testConfig(in, out graph.HalfEdge, shortcutCost costvec.CostVec, cfg costvec.Weighting) testResult {
	route, ok := w.search.FindBestRoute(in.End, out.End, cfg)
	if !ok {
		// No witness exists at all. By construction the pair is
		// reachable via the contracted node, so this cannot happen for
		// the candidate's own two edges, but a malformed or partially
		// published graph could still trigger it; treat as decided
		// with no emission.
		w.stats.recordMaxValues(0, len(w.constraints))
		return testResult{decided: true}
	}

	w.constraints = append(w.constraints, route.Cost)

	if route.Cost.Equal(shortcutCost) {
		throughIS := false
		for _, n := range route.Nodes[1 : len(route.Nodes)-1] {
			if w.isSet[n] {
				throughIS = true
				break
			}
		}
		if route.PathCount == 1 || throughIS {
			return testResult{decided: true, emit: true, reason: ReasonShortestPath, cost: route.Cost}
		}
		return testResult{decided: true, cost: route.Cost}
	}

	if route.Cost.Dominates(shortcutCost) {
		return testResult{decided: true, cost: route.Cost}
	}

	return testResult{decided: false, cost: route.Cost}
}

// dedupeConstraints sorts lexicographically and removes exact
// duplicates.
func dedupeConstraints(cs []costvec.CostVec) []costvec.CostVec {
	sort.Slice(cs, func(i, j int) bool { return cs[i].Less(cs[j]) })
	out := cs[:0]
	for i, c := range cs {
		if i == 0 || !out[len(out)-1].Equal(c) {
			out = append(out, c)
		}
	}
	return out
}

// processPair runs the full per-pair state machine: axis probes, LP
// separation, warm-start reuse across pairs sharing both endpoints.
func (w *ContractingWorker) processPair(pair graph.EdgePair) error {
	in, out := pair.In, pair.Out
	if in.Begin != out.Begin {
		return fmt.Errorf("%w: in.Begin=%d out.Begin=%d", ErrMalformedPair, in.Begin, out.Begin)
	}

	warm := w.hasWarm && w.warmIn == in.End && w.warmOut == out.End
	if !warm {
		w.constraints = w.constraints[:0]
	}
	w.warmIn, w.warmOut, w.hasWarm = in.End, out.End, true

	shortcutCost := in.Cost.Add(out.Cost)

	var result testResult

	if !warm {
		decided := false
		for i := 0; i < costvec.Dim(); i++ {
			result = w.testConfig(in, out, shortcutCost, costvec.AxisWeighting(i))
			if result.decided {
				decided = true
				break
			}
		}
		if decided {
			w.emit(in, out, result)
			return nil
		}
	}

	cfg := costvec.UniformWeighting()
	lpCalls := 0
	for {
		result = w.testConfig(in, out, shortcutCost, cfg)
		if result.decided {
			break
		}

		w.constraints = dedupeConstraints(w.constraints)

		w.solver.Reset()
		for _, c := range w.constraints {
			w.solver.AddConstraint(c.Sub(shortcutCost))
		}

		lpCalls++
		next, ok := w.solver.Solve()
		w.stats.recordMaxValues(lpCalls, len(w.constraints))
		if !ok {
			// LP infeasible: the pair is dominated under every
			// admissible weighting. Discard.
			result = testResult{decided: true}
			break
		}

		if next.Equal(cfg) {
			if result.cost.Dot(cfg) >= shortcutCost.Dot(cfg)-CostAccuracy {
				result = testResult{decided: true, emit: true, reason: ReasonRepeatingConfig, cost: result.cost}
			} else {
				result = testResult{decided: true, emit: true, reason: ReasonUnknownReason, cost: result.cost}
			}
			break
		}
		cfg = next
	}

	w.emit(in, out, result)
	return nil
}

func (w *ContractingWorker) emit(in, out graph.HalfEdge, result testResult) {
	if !result.emit {
		return
	}
	w.stats.countShortcut(result.reason)
	w.shortcuts = append(w.shortcuts, pendingShortcut{child1: in.Id, child2: out.Id, reason: result.reason})
}
