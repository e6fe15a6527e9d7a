// Package compiler wires the ssa analyses and passes together: a Context
// caches each analysis until Invalidate is called, and each built-in pass
// wrapper calls Invalidate when its pass reports that it changed the graph.
package compiler

import (
	"github.com/Dimanteo/KodJIT/internal/ssa"
	"github.com/Dimanteo/KodJIT/internal/ssa/analysis"
	"github.com/Dimanteo/KodJIT/internal/ssa/pass"
)

// Config holds the knobs a Context needs beyond the graph itself.
type Config struct {
	// NumRegisters is the physical register count linear scan allocates
	// into before spilling to the stack.
	NumRegisters int
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{NumRegisters: 30}
}

// Pass is a single graph-mutating rewrite a Context can sequence.
type Pass interface {
	Name() string
	Run(ctx *Context) bool
}

// Context owns one Graph's Builder and lazily computed, cached analyses.
// Any call that mutates the graph (a Pass, or direct Builder use followed by
// Invalidate) must invalidate the cache so the next analysis access
// recomputes from the current IR.
type Context struct {
	cfg Config
	g   *ssa.Graph
	b   *ssa.Builder

	rpo    *analysis.RPO
	doms   *analysis.Doms
	loops  *analysis.LoopTree
	order  *analysis.LinearOrder
	live   *analysis.Liveness
	regs   *analysis.RegAlloc

	passes []Pass
}

// NewContext wraps an existing graph for analysis and optimization.
func NewContext(g *ssa.Graph, cfg Config) *Context {
	return &Context{cfg: cfg, g: g, b: ssa.NewBuilder(g)}
}

func (c *Context) Graph() *ssa.Graph     { return c.g }
func (c *Context) Builder() *ssa.Builder { return c.b }
func (c *Context) Config() Config        { return c.cfg }

// Invalidate drops every cached analysis. Call it after any change to the
// graph's instructions or control flow.
func (c *Context) Invalidate() {
	c.rpo = nil
	c.doms = nil
	c.loops = nil
	c.order = nil
	c.live = nil
	c.regs = nil
}

func (c *Context) RPO() *analysis.RPO {
	if c.rpo == nil || !c.rpo.Ready() {
		c.rpo = &analysis.RPO{}
		c.rpo.Run(c.g)
	}
	return c.rpo
}

func (c *Context) Doms() *analysis.Doms {
	if c.doms == nil || !c.doms.Ready() {
		c.doms = &analysis.Doms{}
		c.doms.Run(c.g)
	}
	return c.doms
}

func (c *Context) LoopTree() *analysis.LoopTree {
	if c.loops == nil || !c.loops.Ready() {
		c.loops = &analysis.LoopTree{}
		c.loops.Run(c.g, c.Doms())
	}
	return c.loops
}

func (c *Context) LinearOrder() *analysis.LinearOrder {
	if c.order == nil || !c.order.Ready() {
		c.order = &analysis.LinearOrder{}
		c.order.Run(c.RPO(), c.LoopTree())
	}
	return c.order
}

func (c *Context) Liveness() *analysis.Liveness {
	if c.live == nil || !c.live.Ready() {
		c.live = &analysis.Liveness{}
		c.live.Run(c.g, c.LinearOrder(), c.LoopTree())
	}
	return c.live
}

func (c *Context) RegAlloc() *analysis.RegAlloc {
	if c.regs == nil || !c.regs.Ready() {
		c.regs = &analysis.RegAlloc{}
		c.regs.Run(c.g, c.Liveness(), c.cfg.NumRegisters)
	}
	return c.regs
}

// RegisterPass appends p to the set RunAllPasses sequences through.
func (c *Context) RegisterPass(p Pass) {
	c.passes = append(c.passes, p)
}

// RunAllPasses runs every registered pass once, in registration order,
// reporting whether any of them changed the graph.
func (c *Context) RunAllPasses() bool {
	changed := false
	for _, p := range c.passes {
		if p.Run(c) {
			changed = true
		}
	}
	return changed
}

// ConstantFoldingPass wraps pass.ConstantFold.
type ConstantFoldingPass struct{}

func (ConstantFoldingPass) Name() string { return "constant-fold" }
func (ConstantFoldingPass) Run(ctx *Context) bool {
	changed := pass.ConstantFold(ctx.Builder(), ctx.RPO().Order())
	if changed {
		ctx.Invalidate()
	}
	return changed
}

// PeepholePass wraps pass.Peephole.
type PeepholePass struct{}

func (PeepholePass) Name() string { return "peephole" }
func (PeepholePass) Run(ctx *Context) bool {
	changed := pass.Peephole(ctx.Builder(), ctx.RPO().Order())
	if changed {
		ctx.Invalidate()
	}
	return changed
}

// RemoveUnusedPass wraps pass.RemoveUnused.
type RemoveUnusedPass struct{}

func (RemoveUnusedPass) Name() string { return "remove-unused" }
func (RemoveUnusedPass) Run(ctx *Context) bool {
	changed := pass.RemoveUnused(ctx.Builder())
	if changed {
		ctx.Invalidate()
	}
	return changed
}
