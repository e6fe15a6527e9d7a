package analysis

import "github.com/Dimanteo/KodJIT/internal/ssa"

// LinearOrder produces a single linear ordering of blocks for layout and
// liveness numbering: blocks appear in reverse-postorder, except that every
// reducible loop's member list is emitted as a contiguous run (recursing
// into nested loops at the point their header is encountered).
type LinearOrder struct {
	ready bool
	order []ssa.BlockID
}

func (lo *LinearOrder) Ready() bool { return lo.ready }

func (lo *LinearOrder) Run(rpo *RPO, lt *LoopTree) {
	emitted := make(map[ssa.BlockID]bool)
	var order []ssa.BlockID

	var emitLoop func(header ssa.BlockID)
	emitLoop = func(header ssa.BlockID) {
		li, ok := lt.Get(header)
		if !ok {
			return
		}
		for _, m := range li.Members {
			if emitted[m] {
				continue
			}
			if child, isLoop := lt.loops[m]; isLoop && m != header && child.Reducible {
				emitLoop(m)
				continue
			}
			emitted[m] = true
			order = append(order, m)
		}
	}

	for _, b := range rpo.Order() {
		if emitted[b] {
			continue
		}
		if li, ok := lt.Get(b); ok && li.Header == b && li.Reducible {
			emitLoop(b)
		} else {
			emitted[b] = true
			order = append(order, b)
		}
	}

	lo.order = order
	lo.ready = true
}

func (lo *LinearOrder) Order() []ssa.BlockID { return lo.order }

func (lo *LinearOrder) IndexOf(id ssa.BlockID) int {
	for i, b := range lo.order {
		if b == id {
			return i
		}
	}
	return -1
}
