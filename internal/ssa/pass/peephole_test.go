package pass_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Dimanteo/KodJIT/internal/ssa"
	"github.com/Dimanteo/KodJIT/internal/ssa/pass"
)

func newTestParam(t *testing.T, b *ssa.Builder, g *ssa.Graph) *ssa.Instruction {
	t.Helper()
	idx := g.AddParam(ssa.TypeInteger)
	p, err := b.CreateParamLoad(idx)
	require.NoError(t, err)
	return p
}

func TestPeephole_AndSelf(t *testing.T) {
	g := ssa.NewGraph()
	b := ssa.NewBuilder(g)
	blk := g.CreateBlock()
	g.SetEntry(blk)
	b.SetInsertionPoint(blk)

	p := newTestParam(t, b, g)
	z, err := b.CreateAnd(p, p)
	require.NoError(t, err)
	b.CreateReturn(z)

	require.Equal(t, "blk0:\n  v0 = param 0\n  v1 = and v0, v0\n  return v1\n", ssa.Format(g))
	require.True(t, pass.Peephole(b, []ssa.BlockID{blk.ID()}))
	require.Equal(t, "blk0:\n  v0 = param 0\n  return v0\n", ssa.Format(g))
}

func TestPeephole_AndZero(t *testing.T) {
	g := ssa.NewGraph()
	b := ssa.NewBuilder(g)
	blk := g.CreateBlock()
	g.SetEntry(blk)
	b.SetInsertionPoint(blk)

	p := newTestParam(t, b, g)
	zero := b.CreateIntConstant(0)
	z, err := b.CreateAnd(p, zero)
	require.NoError(t, err)
	b.CreateReturn(z)

	require.True(t, pass.Peephole(b, []ssa.BlockID{blk.ID()}))
	require.Equal(t, "blk0:\n  v0 = param 0\n  v1 = const 0\n  return v1\n", ssa.Format(g))
}

func TestPeephole_SubSelf(t *testing.T) {
	g := ssa.NewGraph()
	b := ssa.NewBuilder(g)
	blk := g.CreateBlock()
	g.SetEntry(blk)
	b.SetInsertionPoint(blk)

	p := newTestParam(t, b, g)
	z, err := b.CreateISub(p, p)
	require.NoError(t, err)
	b.CreateReturn(z)

	require.True(t, pass.Peephole(b, []ssa.BlockID{blk.ID()}))
	require.Equal(t, "blk0:\n  v0 = param 0\n  v3 = const 0\n  return v3\n", ssa.Format(g))
}

func TestPeephole_SubZero(t *testing.T) {
	g := ssa.NewGraph()
	b := ssa.NewBuilder(g)
	blk := g.CreateBlock()
	g.SetEntry(blk)
	b.SetInsertionPoint(blk)

	p := newTestParam(t, b, g)
	zero := b.CreateIntConstant(0)
	z, err := b.CreateISub(p, zero)
	require.NoError(t, err)
	b.CreateReturn(z)

	require.True(t, pass.Peephole(b, []ssa.BlockID{blk.ID()}))
	require.Equal(t, "blk0:\n  v0 = param 0\n  v1 = const 0\n  return v0\n", ssa.Format(g))
}

func TestPeephole_DivPowerOfTwo(t *testing.T) {
	g := ssa.NewGraph()
	b := ssa.NewBuilder(g)
	blk := g.CreateBlock()
	g.SetEntry(blk)
	b.SetInsertionPoint(blk)

	p := newTestParam(t, b, g)
	four := b.CreateIntConstant(4)
	z, err := b.CreateIDiv(p, four)
	require.NoError(t, err)
	b.CreateReturn(z)

	require.True(t, pass.Peephole(b, []ssa.BlockID{blk.ID()}))
	require.Equal(t,
		"blk0:\n  v0 = param 0\n  v1 = const 4\n  v4 = const 2\n  v5 = shr v0, v4\n  return v5\n",
		ssa.Format(g))
}

func TestPeephole_CombineShiftChain(t *testing.T) {
	g := ssa.NewGraph()
	b := ssa.NewBuilder(g)
	blk := g.CreateBlock()
	g.SetEntry(blk)
	b.SetInsertionPoint(blk)

	p := newTestParam(t, b, g)
	c1 := b.CreateIntConstant(1)
	inner, err := b.CreateShr(p, c1)
	require.NoError(t, err)
	c2 := b.CreateIntConstant(2)
	outer, err := b.CreateShr(inner, c2)
	require.NoError(t, err)
	b.CreateReturn(outer)

	require.True(t, pass.Peephole(b, []ssa.BlockID{blk.ID()}))
	require.Equal(t,
		"blk0:\n  v0 = param 0\n  v1 = const 1\n  v2 = shr v0, v1\n  v3 = const 2\n  v6 = const 3\n  v7 = shr v0, v6\n  return v7\n",
		ssa.Format(g))
}

func TestPeephole_NoChangeOnUnmatchedShape(t *testing.T) {
	g := ssa.NewGraph()
	b := ssa.NewBuilder(g)
	blk := g.CreateBlock()
	g.SetEntry(blk)
	b.SetInsertionPoint(blk)

	p := newTestParam(t, b, g)
	q := newTestParam(t, b, g)
	z, err := b.CreateAnd(p, q)
	require.NoError(t, err)
	b.CreateReturn(z)

	before := ssa.Format(g)
	require.False(t, pass.Peephole(b, []ssa.BlockID{blk.ID()}))
	require.Equal(t, before, ssa.Format(g))
}
