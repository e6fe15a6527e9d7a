package analysis_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Dimanteo/KodJIT/internal/ssa"
	"github.com/Dimanteo/KodJIT/internal/ssa/analysis"
)

// buildGraph wires up a synthetic CFG from an edge map, using CreateBranch
// for single-successor blocks and a dummy CreateCondBranch for two-successor
// ones — every case here respects the two-successor-slot invariant, unlike
// a couple of the teacher's own dominator fixtures which briefly fan out to
// three (dropped here, see DESIGN.md).
func buildGraph(t *testing.T, numBlocks int, edges map[int][]int) (*ssa.Graph, map[int]*ssa.BasicBlock) {
	t.Helper()
	g := ssa.NewGraph()
	b := ssa.NewBuilder(g)
	blocks := make(map[int]*ssa.BasicBlock, numBlocks)
	for i := 0; i < numBlocks; i++ {
		blocks[i] = g.CreateBlock()
	}
	g.SetEntry(blocks[0])
	pIdx := g.AddParam(ssa.TypeInteger)

	froms := make([]int, 0, len(edges))
	for from := range edges {
		froms = append(froms, from)
	}
	sort.Ints(froms)

	for _, from := range froms {
		tos := edges[from]
		b.SetInsertionPoint(blocks[from])
		switch len(tos) {
		case 1:
			b.CreateBranch(blocks[tos[0]])
		case 2:
			p, err := b.CreateParamLoad(pIdx)
			require.NoError(t, err)
			zero := b.CreateIntConstant(0)
			_, err = b.CreateCondBranch(ssa.CmpEQ, p, zero, blocks[tos[0]], blocks[tos[1]])
			require.NoError(t, err)
		default:
			t.Fatalf("block %d has %d successors, only 1 or 2 supported", from, len(tos))
		}
	}
	return g, blocks
}

func TestDoms(t *testing.T) {
	for _, tc := range []struct {
		name     string
		numBlks  int
		edges    map[int][]int
		expIdoms map[int]int
	}{
		{
			name:    "linear",
			numBlks: 5,
			edges:   map[int][]int{0: {1}, 1: {2}, 2: {3}, 3: {4}},
			expIdoms: map[int]int{1: 0, 2: 1, 3: 2, 4: 3},
		},
		{
			name:    "diamond",
			numBlks: 4,
			edges:   map[int][]int{0: {1, 2}, 1: {3}, 2: {3}},
			expIdoms: map[int]int{1: 0, 2: 0, 3: 0},
		},
		{
			name:    "branch",
			numBlks: 3,
			edges:   map[int][]int{0: {1, 2}},
			expIdoms: map[int]int{1: 0, 2: 0},
		},
		{
			name:    "loop",
			numBlks: 4,
			edges:   map[int][]int{0: {1}, 1: {2}, 2: {3}, 3: {0}},
			expIdoms: map[int]int{1: 0, 2: 1, 3: 2},
		},
		{
			name:    "two independent branches",
			numBlks: 5,
			edges:   map[int][]int{0: {1, 2}, 1: {3}, 2: {4}},
			expIdoms: map[int]int{1: 0, 2: 0, 3: 1, 4: 2},
		},
		{
			name:    "loop with branch",
			numBlks: 5,
			edges:   map[int][]int{0: {1}, 1: {2, 3}, 2: {4}, 4: {3}},
			expIdoms: map[int]int{1: 0, 2: 1, 3: 1, 4: 2},
		},
		{
			name:    "nested loops",
			numBlks: 5,
			edges:   map[int][]int{0: {1, 2}, 1: {2}, 2: {3, 1}, 3: {4}, 4: {1}},
			expIdoms: map[int]int{1: 0, 2: 0, 3: 2, 4: 3},
		},
		{
			name:    "two intersecting loops",
			numBlks: 7,
			edges: map[int][]int{
				0: {1}, 1: {2, 4}, 2: {3, 5}, 3: {6}, 4: {1}, 5: {4}, 6: {5},
			},
			expIdoms: map[int]int{1: 0, 2: 1, 3: 2, 4: 1, 5: 2, 6: 3},
		},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			g, blocks := buildGraph(t, tc.numBlks, tc.edges)

			var doms analysis.Doms
			doms.Run(g)

			for blockID, expIdomID := range tc.expIdoms {
				idom, ok := doms.Idom(blocks[blockID].ID())
				require.True(t, ok, "block %d has no idom", blockID)
				require.Equal(t, blocks[expIdomID].ID(), idom, "block %d", blockID)
			}
		})
	}
}

func TestDoms_Dominates(t *testing.T) {
	g, blocks := buildGraph(t, 4, map[int][]int{0: {1}, 1: {2}, 2: {3}})
	var doms analysis.Doms
	doms.Run(g)

	require.True(t, doms.Dominates(blocks[0].ID(), blocks[3].ID()))
	require.False(t, doms.Dominates(blocks[3].ID(), blocks[0].ID()))
	require.True(t, doms.Ready())
}
