package analysis

import (
	"sort"

	"github.com/Dimanteo/KodJIT/internal/ssa"
)

// LocationKind distinguishes an unallocated value, a physical register, and
// a spill slot.
type LocationKind uint8

const (
	LocNone LocationKind = iota
	LocRegister
	LocStack
)

// Location is where linear-scan placed one instruction's result.
type Location struct {
	Kind LocationKind
	Reg  int
	Slot int
}

type interval struct {
	id         ssa.InstrID
	begin, end int
}

// RegAlloc is linear-scan register allocation over Liveness's ranges:
// intervals are processed in (end, begin, id) order, with a free-register
// pool and an active set; when no register is free, the active interval
// with the farthest end is spilled if it extends further than the interval
// being allocated, otherwise the new interval spills.
type RegAlloc struct {
	ready     bool
	numRegs   int
	locations map[ssa.InstrID]Location
	numSpills int
}

func (ra *RegAlloc) Ready() bool { return ra.ready }

func (ra *RegAlloc) Run(g *ssa.Graph, live *Liveness, numRegs int) {
	ra.numRegs = numRegs
	ra.locations = make(map[ssa.InstrID]Location)
	ra.numSpills = 0

	var intervals []interval
	for _, instr := range g.AllInstructions() {
		b, e := live.Range(instr.ID())
		if b == 0 && e == 0 {
			ra.locations[instr.ID()] = Location{Kind: LocNone}
			continue
		}
		intervals = append(intervals, interval{id: instr.ID(), begin: b, end: e})
	}
	sort.Slice(intervals, func(i, j int) bool {
		a, b := intervals[i], intervals[j]
		if a.end != b.end {
			return a.end < b.end
		}
		if a.begin != b.begin {
			return a.begin < b.begin
		}
		return a.id < b.id
	})

	var active []interval
	free := make([]int, numRegs)
	for i := range free {
		free[i] = i
	}
	nextSlot := 0

	expireOld := func(cur interval) {
		n := 0
		for _, a := range active {
			if a.end <= cur.begin {
				free = append(free, ra.locations[a.id].Reg)
			} else {
				active[n] = a
				n++
			}
		}
		active = active[:n]
		sort.Ints(free)
	}

	for _, cur := range intervals {
		expireOld(cur)
		if len(free) > 0 {
			reg := free[0]
			free = free[1:]
			ra.locations[cur.id] = Location{Kind: LocRegister, Reg: reg}
			active = insertSortedByEnd(active, cur)
			continue
		}

		spill := active[len(active)-1]
		if spill.end > cur.end {
			reg := ra.locations[spill.id].Reg
			ra.locations[spill.id] = Location{Kind: LocStack, Slot: nextSlot}
			nextSlot++
			ra.locations[cur.id] = Location{Kind: LocRegister, Reg: reg}
			active = insertSortedByEnd(active[:len(active)-1], cur)
		} else {
			ra.locations[cur.id] = Location{Kind: LocStack, Slot: nextSlot}
			nextSlot++
		}
	}
	ra.numSpills = nextSlot
	ra.ready = true
}

func insertSortedByEnd(active []interval, v interval) []interval {
	active = append(active, v)
	sort.Slice(active, func(i, j int) bool { return active[i].end < active[j].end })
	return active
}

// Location returns where instr's result was placed.
func (ra *RegAlloc) Location(id ssa.InstrID) Location { return ra.locations[id] }

// NumSpillSlots returns how many stack slots were assigned.
func (ra *RegAlloc) NumSpillSlots() int { return ra.numSpills }
