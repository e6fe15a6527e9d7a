// Package analysis implements the derived-analysis pipeline over an
// ssa.Graph: reverse postorder, dominators, the loop tree, linear block
// order, liveness, and linear-scan register allocation. Each analysis
// follows the same ready/Run(...) shape so compiler.Context can cache it.
package analysis

import (
	"github.com/Dimanteo/KodJIT/internal/graphwalk"
	"github.com/Dimanteo/KodJIT/internal/ssa"
)

// RPO computes reverse postorder over the CFG reachable from the entry
// block.
type RPO struct {
	ready bool
	order []ssa.BlockID
}

func (r *RPO) Ready() bool { return r.ready }

func (r *RPO) Run(g *ssa.Graph) {
	r.order = graphwalk.VisitRPO[ssa.BlockID](g, graphwalk.Forward, g.Entry().ID())
	r.ready = true
}

// Order returns the reachable blocks in reverse postorder.
func (r *RPO) Order() []ssa.BlockID { return r.order }

// IndexOf returns id's position in Order, or -1 if unreachable.
func (r *RPO) IndexOf(id ssa.BlockID) int {
	for i, b := range r.order {
		if b == id {
			return i
		}
	}
	return -1
}
