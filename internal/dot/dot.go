// Package dot renders an ssa.Graph as Graphviz DOT source for debugging, and
// provides an idempotence check (via go-cmp) for tests that dump a graph
// before and after a pass and expect identical output when nothing changed.
package dot

import (
	"fmt"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/Dimanteo/KodJIT/internal/ssa"
	"github.com/Dimanteo/KodJIT/internal/ssa/analysis"
)

// Dump renders g as a plain digraph: one record-shaped node per block
// (labelled with its pseudo-assembly listing) and one edge per CFG edge.
func Dump(g *ssa.Graph) string {
	var sb strings.Builder
	sb.WriteString("digraph ssa {\n  node [shape=record];\n")
	for _, blk := range g.Blocks() {
		fmt.Fprintf(&sb, "  blk%d [label=%q];\n", blk.ID(), ssa.FormatBlock(blk))
	}
	for _, blk := range g.Blocks() {
		for _, succ := range blk.Successors() {
			fmt.Fprintf(&sb, "  blk%d -> blk%d;\n", blk.ID(), succ.ID())
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}

// DumpWithLoops is Dump plus one subgraph cluster per natural loop, wrapping
// its member blocks and labelled with the header and its reducibility.
func DumpWithLoops(g *ssa.Graph, lt *analysis.LoopTree) string {
	var sb strings.Builder
	sb.WriteString("digraph ssa {\n  node [shape=record];\n")

	clustered := make(map[ssa.BlockID]bool)
	for i, li := range lt.Loops() {
		fmt.Fprintf(&sb, "  subgraph cluster_%d {\n", i)
		label := fmt.Sprintf("loop@blk%d", li.Header)
		if !li.Reducible {
			label += " (irreducible)"
		}
		fmt.Fprintf(&sb, "    label=%q;\n", label)
		for _, m := range li.Members {
			if lt.LoopOf(m) != li.Header {
				continue // nested loop header: boundary entry, drawn in its own cluster
			}
			fmt.Fprintf(&sb, "    blk%d [label=%q];\n", m, ssa.FormatBlock(g.Block(m)))
			clustered[m] = true
		}
		sb.WriteString("  }\n")
	}
	for _, blk := range g.Blocks() {
		if clustered[blk.ID()] {
			continue
		}
		fmt.Fprintf(&sb, "  blk%d [label=%q];\n", blk.ID(), ssa.FormatBlock(blk))
	}
	for _, blk := range g.Blocks() {
		for _, succ := range blk.Successors() {
			fmt.Fprintf(&sb, "  blk%d -> blk%d;\n", blk.ID(), succ.ID())
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}

// Equal reports whether two dumps are identical, returning a unified diff
// when they aren't so a failing idempotence check pinpoints the change.
func Equal(a, b string) (diff string, ok bool) {
	d := cmp.Diff(a, b)
	return d, d == ""
}
