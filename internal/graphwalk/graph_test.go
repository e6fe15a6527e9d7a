package graphwalk_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Dimanteo/KodJIT/internal/graphwalk"
)

// diamond is the classic if/else-join CFG: 0 -> {1,2} -> 3.
type diamond map[int][]int

func (d diamond) Successors(n int) []int { return d[n] }
func (d diamond) Predecessors(n int) []int {
	var preds []int
	for from, tos := range d {
		for _, to := range tos {
			if to == n {
				preds = append(preds, from)
			}
		}
	}
	return preds
}

func TestVisitRPO_Diamond(t *testing.T) {
	g := diamond{0: {1, 2}, 1: {3}, 2: {3}, 3: nil}
	order := graphwalk.VisitRPO[int](g, graphwalk.Forward, 0)
	require.Equal(t, 0, order[0])
	require.Equal(t, 3, order[len(order)-1])
	require.Len(t, order, 4)
}

func TestVisitDFSConditional_Pruning(t *testing.T) {
	// 3 is reachable only through 1, so pruning at 1 must keep it unvisited.
	g := diamond{0: {1, 2}, 1: {3}, 2: nil, 3: nil}
	var visited []int
	graphwalk.VisitDFSConditional[int](g, graphwalk.Forward, 0, func(n int) bool {
		visited = append(visited, n)
		return n != 1
	}, nil)
	require.Contains(t, visited, 0)
	require.Contains(t, visited, 1)
	require.NotContains(t, visited, 3)
}

func TestVisitDFS_Cycle(t *testing.T) {
	g := diamond{0: {1}, 1: {0}}
	var post []int
	graphwalk.VisitDFS[int](g, graphwalk.Forward, 0, func(n int) { post = append(post, n) })
	require.ElementsMatch(t, []int{0, 1}, post)
}
