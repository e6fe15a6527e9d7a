package analysis

import (
	"github.com/Dimanteo/KodJIT/internal/graphwalk"
	"github.com/Dimanteo/KodJIT/internal/ssa"
)

// Doms computes, for every reachable block N, its full set of dominators
// and its immediate dominator. It uses the algorithm spelled out for
// method-sized CFGs: D dominates N exactly when a forward DFS from entry
// that avoids D fails to reach N. Checking that for every (D, N) pair is
// quadratic but avoids the bookkeeping of Lengauer-Tarjan or
// Cooper-Harvey-Kennedy for graphs this small.
type Doms struct {
	ready      bool
	entry      ssa.BlockID
	dominators map[ssa.BlockID]map[ssa.BlockID]bool
	idom       map[ssa.BlockID]ssa.BlockID
}

func (d *Doms) Ready() bool { return d.ready }

func (d *Doms) Run(g *ssa.Graph) {
	entry := g.Entry().ID()
	d.entry = entry

	blocks := g.Blocks()
	reachable := map[ssa.BlockID]bool{entry: true}
	for id := range reachableAvoiding(g, entry, ssa.NilBlockID) {
		reachable[id] = true
	}

	d.dominators = make(map[ssa.BlockID]map[ssa.BlockID]bool, len(blocks))
	for id := range reachable {
		d.dominators[id] = map[ssa.BlockID]bool{id: true}
	}

	for _, cand := range blocks {
		did := cand.ID()
		if !reachable[did] {
			continue
		}
		reachedWithoutD := reachableAvoiding(g, entry, did)
		for n := range reachable {
			if n == did {
				continue
			}
			if !reachedWithoutD[n] {
				d.dominators[n][did] = true
			}
		}
	}

	d.idom = make(map[ssa.BlockID]ssa.BlockID, len(blocks))
	for id := range reachable {
		if id == entry {
			continue
		}
		d.idom[id] = immediateDominator(d.dominators, id)
	}
	d.ready = true
}

func reachableAvoiding(g *ssa.Graph, entry, avoid ssa.BlockID) map[ssa.BlockID]bool {
	reached := make(map[ssa.BlockID]bool)
	graphwalk.VisitDFSConditional[ssa.BlockID](g, graphwalk.Forward, entry, func(n ssa.BlockID) bool {
		if n == avoid {
			return false
		}
		reached[n] = true
		return true
	}, nil)
	return reached
}

// immediateDominator picks, among N's strict dominators, the one that is
// itself dominated by every other strict dominator of N.
func immediateDominator(dominators map[ssa.BlockID]map[ssa.BlockID]bool, n ssa.BlockID) ssa.BlockID {
	domsN := dominators[n]
	for d := range domsN {
		if d == n {
			continue
		}
		isIdom := true
		for d2 := range domsN {
			if d2 == n || d2 == d {
				continue
			}
			if !dominators[d][d2] {
				isIdom = false
				break
			}
		}
		if isIdom {
			return d
		}
	}
	errorf("no immediate dominator found for reachable block %d", n)
	return ssa.NilBlockID
}

// Dominators returns the set of blocks that dominate id (including id
// itself).
func (d *Doms) Dominators(id ssa.BlockID) map[ssa.BlockID]bool { return d.dominators[id] }

// Dominates reports whether a dominates b.
func (d *Doms) Dominates(a, b ssa.BlockID) bool { return d.dominators[b][a] }

// Idom returns id's immediate dominator, or false if id is the entry or
// unreachable.
func (d *Doms) Idom(id ssa.BlockID) (ssa.BlockID, bool) {
	idom, ok := d.idom[id]
	return idom, ok
}

func (d *Doms) Entry() ssa.BlockID { return d.entry }
