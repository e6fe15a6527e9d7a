package analysis

import (
	"math"

	"github.com/Dimanteo/KodJIT/internal/graphwalk"
	"github.com/Dimanteo/KodJIT/internal/ktree"
	"github.com/Dimanteo/KodJIT/internal/ssa"
)

// RootLoopID is the sentinel header id of the loop tree's root, the
// synthetic loop containing every block not claimed by a real loop.
const RootLoopID ssa.BlockID = ssa.BlockID(math.MaxUint32)

// LoopInfo describes one natural loop (or the synthetic root).
type LoopInfo struct {
	Header    ssa.BlockID
	Latches   []ssa.BlockID
	Members   []ssa.BlockID // in DFS order, header first; nested headers appear as boundary entries
	Reducible bool
	depth     int

	hasParent    bool
	parentHeader ssa.BlockID
}

// Depth returns the loop's nesting level; the root is 0, top-level loops
// are 1.
func (li *LoopInfo) Depth() int { return li.depth }

type backEdge struct{ latch, header ssa.BlockID }

// LoopTree builds the natural-loop nesting structure of a CFG in three
// phases: back-edge collection, loop creation with reducibility
// classification, and population with nesting via backward DFS from each
// loop's latches.
type LoopTree struct {
	ready     bool
	tree      *ktree.Tree[ssa.BlockID, *LoopInfo]
	loops     map[ssa.BlockID]*LoopInfo
	blockLoop map[ssa.BlockID]ssa.BlockID
}

func (lt *LoopTree) Ready() bool { return lt.ready }

func (lt *LoopTree) Run(g *ssa.Graph, doms *Doms) {
	entry := g.Entry().ID()

	backEdges := collectBackEdges(g, entry)

	loops := make(map[ssa.BlockID]*LoopInfo)
	blockLoop := make(map[ssa.BlockID]ssa.BlockID)
	for _, e := range backEdges {
		li, ok := loops[e.header]
		if !ok {
			li = &LoopInfo{Header: e.header, Reducible: true}
			loops[e.header] = li
		}
		li.Latches = append(li.Latches, e.latch)
		if !doms.Dominators(e.latch)[e.header] {
			li.Reducible = false
		}
		blockLoop[e.header] = e.header
		blockLoop[e.latch] = e.header
	}

	postorder := graphwalk.VisitPostorder[ssa.BlockID](g, graphwalk.Forward, entry)

	for _, h := range postorder {
		li, isLoop := loops[h]
		if !isLoop || !li.Reducible {
			continue
		}
		populateLoop(g, li, blockLoop, loops)
	}

	tree := ktree.New[ssa.BlockID, *LoopInfo]()
	rootInfo := &LoopInfo{Header: RootLoopID, Reducible: false, depth: 0}
	tree.SetRoot(RootLoopID, rootInfo)
	added := map[ssa.BlockID]bool{RootLoopID: true}

	// Attach every loop under its parent. Parent links were recorded while
	// the outer loops populated; walking the headers in reverse postorder
	// adds an outer loop to the tree before the loops nested inside it.
	for i := len(postorder) - 1; i >= 0; i-- {
		h := postorder[i]
		li, isLoop := loops[h]
		if !isLoop {
			continue
		}
		parent := RootLoopID
		if li.hasParent {
			parent = li.parentHeader
		}
		if !added[parent] {
			parent = RootLoopID
		}
		tree.AddChild(parent, h, li)
		added[h] = true
	}

	var rootMembers []ssa.BlockID
	for _, b := range g.Blocks() {
		id := b.ID()
		if _, ok := blockLoop[id]; !ok {
			rootMembers = append(rootMembers, id)
			blockLoop[id] = RootLoopID
		}
		b.SetLoopHeader(owningHeader(blockLoop, id))
	}
	rootInfo.Members = rootMembers

	var setDepth func(key ssa.BlockID, depth int)
	setDepth = func(key ssa.BlockID, depth int) {
		if key != RootLoopID {
			tree.Value(key).depth = depth
		}
		for _, c := range tree.Children(key) {
			setDepth(c, depth+1)
		}
	}
	setDepth(RootLoopID, 0)

	lt.tree = tree
	lt.loops = loops
	lt.blockLoop = blockLoop
	lt.ready = true
}

func owningHeader(blockLoop map[ssa.BlockID]ssa.BlockID, id ssa.BlockID) ssa.BlockID {
	if h, ok := blockLoop[id]; ok && h != RootLoopID {
		return h
	}
	return ssa.NilBlockID
}

func collectBackEdges(g *ssa.Graph, entry ssa.BlockID) []backEdge {
	onPath := make(map[ssa.BlockID]bool)
	visited := make(map[ssa.BlockID]bool)
	var edges []backEdge

	var dfs func(ssa.BlockID)
	dfs = func(n ssa.BlockID) {
		onPath[n] = true
		visited[n] = true
		for _, s := range g.Successors(n) {
			if onPath[s] {
				edges = append(edges, backEdge{latch: n, header: s})
				continue
			}
			if !visited[s] {
				dfs(s)
			}
		}
		onPath[n] = false
	}
	dfs(entry)
	return edges
}

// populateLoop runs the backward-DFS membership claim from each of li's
// latches, records nesting links on children found along the way, and then
// a forward DFS from the header to record the in-order member list. The
// forward DFS passes through nested loops without listing their interior
// blocks, so a claimed block reached only via a nested loop is still listed.
func populateLoop(g *ssa.Graph, li *LoopInfo, blockLoop map[ssa.BlockID]ssa.BlockID, loops map[ssa.BlockID]*LoopInfo) {
	h := li.Header
	claimed := map[ssa.BlockID]bool{h: true}
	nestedHeaders := map[ssa.BlockID]bool{}

	var bdfs func(ssa.BlockID)
	bdfs = func(n ssa.BlockID) {
		if claimed[n] {
			return
		}
		if owner, ok := blockLoop[n]; ok && owner != h {
			if child, isLoop := loops[owner]; isLoop {
				if !child.hasParent {
					child.parentHeader = h
					child.hasParent = true
				}
				nestedHeaders[owner] = true
			}
			return
		}
		claimed[n] = true
		blockLoop[n] = h
		for _, p := range g.Predecessors(n) {
			bdfs(p)
		}
	}
	for _, latch := range li.Latches {
		bdfs(latch)
	}

	insideNested := func(n ssa.BlockID) bool {
		for l := loops[blockLoop[n]]; l != nil && l.hasParent; l = loops[l.parentHeader] {
			if l.parentHeader == h {
				return true
			}
		}
		return false
	}
	var members []ssa.BlockID
	graphwalk.VisitDFSConditional[ssa.BlockID](g, graphwalk.Forward, h, func(n ssa.BlockID) bool {
		switch {
		case claimed[n]:
			members = append(members, n)
			return true
		case nestedHeaders[n]:
			members = append(members, n)
			return true
		default:
			return insideNested(n)
		}
	}, nil)
	li.Members = members
}

// Tree exposes the underlying keyed tree for callers that want to walk it
// generically (e.g. via graphwalk).
func (lt *LoopTree) Tree() *ktree.Tree[ssa.BlockID, *LoopInfo] { return lt.tree }

// Get returns the LoopInfo for a loop header (RootLoopID included).
func (lt *LoopTree) Get(header ssa.BlockID) (*LoopInfo, bool) {
	if header == RootLoopID {
		return lt.tree.Value(RootLoopID), true
	}
	li, ok := lt.loops[header]
	return li, ok
}

// LoopOf returns the innermost loop header owning id, or RootLoopID if id
// belongs to no loop.
func (lt *LoopTree) LoopOf(id ssa.BlockID) ssa.BlockID {
	if h, ok := lt.blockLoop[id]; ok {
		return h
	}
	return RootLoopID
}

// Loops returns every real (non-root) loop, in no particular order.
func (lt *LoopTree) Loops() []*LoopInfo {
	out := make([]*LoopInfo, 0, len(lt.loops))
	for _, li := range lt.loops {
		out = append(out, li)
	}
	return out
}
