package analysis

import "github.com/Dimanteo/KodJIT/internal/ssa"

type liveRange struct {
	begin, end int
}

// Liveness computes a half-open live range per instruction on a dense
// "live number" scale: phis share their block's bb_begin slot, every other
// instruction advances the counter by 2. Ranges are a sound
// over-approximation of true liveness — a single backward pass over the
// linear order, with loop headers conservatively extending any value still
// live at bb_begin out to the end of the loop, rather than an iterative
// fixpoint.
type Liveness struct {
	ready bool

	blockBegin  map[ssa.BlockID]int
	blockEnd    map[ssa.BlockID]int
	instrNumber map[ssa.InstrID]int
	ranges      map[ssa.InstrID]*liveRange
}

func (lv *Liveness) Ready() bool { return lv.ready }

func (lv *Liveness) Run(g *ssa.Graph, order *LinearOrder, lt *LoopTree) {
	lv.blockBegin = make(map[ssa.BlockID]int)
	lv.blockEnd = make(map[ssa.BlockID]int)
	lv.instrNumber = make(map[ssa.InstrID]int)
	lv.ranges = make(map[ssa.InstrID]*liveRange)

	lv.number(g, order)
	lv.computeRanges(g, order, lt)

	for _, instr := range g.AllInstructions() {
		if _, ok := lv.ranges[instr.ID()]; !ok {
			lv.ranges[instr.ID()] = &liveRange{0, 0}
		}
	}
	lv.ready = true
}

func (lv *Liveness) number(g *ssa.Graph, order *LinearOrder) {
	n := 0
	for _, id := range order.Order() {
		blk := g.Block(id)
		lv.blockBegin[id] = n
		for instr := blk.FirstInstr(); instr != nil; instr = instr.Next() {
			if instr.Opcode() == ssa.OpPhi {
				lv.instrNumber[instr.ID()] = n
				continue
			}
			n += 2
			lv.instrNumber[instr.ID()] = n
		}
		n += 2
		lv.blockEnd[id] = n
	}
}

func (lv *Liveness) extend(id ssa.InstrID, lo, hi int) {
	r, ok := lv.ranges[id]
	if !ok {
		lv.ranges[id] = &liveRange{begin: lo, end: hi}
		return
	}
	if lo < r.begin {
		r.begin = lo
	}
	if hi > r.end {
		r.end = hi
	}
}

func (lv *Liveness) computeRanges(g *ssa.Graph, order *LinearOrder, lt *LoopTree) {
	liveIn := make(map[ssa.BlockID]map[ssa.InstrID]bool)

	ord := order.Order()
	for i := len(ord) - 1; i >= 0; i-- {
		id := ord[i]
		blk := g.Block(id)
		bbBegin, bbEnd := lv.blockBegin[id], lv.blockEnd[id]

		live := make(map[ssa.InstrID]bool)
		for _, succ := range blk.Successors() {
			for instrID := range liveIn[succ.ID()] {
				live[instrID] = true
			}
			for instr := succ.FirstInstr(); instr != nil && instr.Opcode() == ssa.OpPhi; instr = instr.Next() {
				for _, entry := range instr.PhiIncoming() {
					if entry.Block == id {
						live[entry.Value.ID()] = true
					}
				}
			}
		}
		for instrID := range live {
			lv.extend(instrID, bbBegin, bbEnd)
		}

		for instr := blk.LastInstr(); instr != nil; instr = instr.Prev() {
			if instr.Opcode() == ssa.OpPhi {
				continue
			}
			defID := instr.ID()
			if r, ok := lv.ranges[defID]; ok {
				r.begin = lv.instrNumber[defID]
			}
			delete(live, defID)

			for _, in := range instr.Inputs() {
				live[in.ID()] = true
				lv.extend(in.ID(), bbBegin, lv.instrNumber[defID])
			}
		}

		if li, ok := lt.Get(id); ok && li.Header == id && li.Reducible {
			loopEnd := bbEnd
			for _, m := range li.Members {
				if e := lv.blockEnd[m]; e > loopEnd {
					loopEnd = e
				}
			}
			for instrID := range live {
				lv.extend(instrID, bbBegin, loopEnd)
			}
		}

		liveIn[id] = live
	}
}

// Range returns instr's computed [begin, end) live range.
func (lv *Liveness) Range(id ssa.InstrID) (begin, end int) {
	r := lv.ranges[id]
	return r.begin, r.end
}

// LiveNumber returns the dense live-number position assigned to instr.
func (lv *Liveness) LiveNumber(id ssa.InstrID) int { return lv.instrNumber[id] }

// BlockBounds returns [bb_begin, bb_end) for a block.
func (lv *Liveness) BlockBounds(id ssa.BlockID) (begin, end int) {
	return lv.blockBegin[id], lv.blockEnd[id]
}
