package ch

import (
	"log"

	"github.com/google/uuid"
)

// RunID tags one Contractor.Contract invocation end to end, so that log
// lines and any metrics pushed from a single run can be correlated after
// the fact even when several contraction runs' output is interleaved
// (e.g. piped through a shared log aggregator).
type RunID uuid.UUID

// NewRunID mints a fresh run identifier.
func NewRunID() RunID {
	return RunID(uuid.New())
}

func (id RunID) String() string {
	return uuid.UUID(id).String()
}

// logRunStart is the one log line every run opens with, giving every
// subsequent "level N: ..." line in this process a run id to key off of
// when logs from multiple invocations are interleaved.
func logRunStart(id RunID, nodeCount, edgeCount int, threads int) {
	log.Printf("run %s: starting contraction (%d nodes, %d edges, %d threads)", id, nodeCount, edgeCount, threads)
}

// logRunDone closes out a run's log line with the final level count and
// elapsed wall time.
func logRunDone(id RunID, finalLevel uint32, elapsedSeconds float64) {
	log.Printf("run %s: done, %d levels, %.1fs", id, finalLevel, elapsedSeconds)
}
