package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Dimanteo/KodJIT/internal/ssa/analysis"
)

func TestRegAlloc_SpillsLongerLivedInterval(t *testing.T) {
	g, instr, _ := buildLiveLoopGraph(t)
	live := runLiveness(t, g)

	var ra analysis.RegAlloc
	ra.Run(g, live, 1)

	require.True(t, ra.Ready())

	xLoc := ra.Location(instr["x"].ID())
	zeroLoc := ra.Location(instr["zero"].ID())

	// x outlives zero, so when both compete for the single register, the
	// allocator must spill x and keep the shorter-lived zero in a register.
	require.Equal(t, analysis.LocStack, xLoc.Kind)
	require.Equal(t, analysis.LocRegister, zeroLoc.Kind)
	require.Equal(t, 1, ra.NumSpillSlots())
}

func TestRegAlloc_EnoughRegistersMeansNoSpill(t *testing.T) {
	g, instr, _ := buildLiveLoopGraph(t)
	live := runLiveness(t, g)

	var ra analysis.RegAlloc
	ra.Run(g, live, 2)

	require.Equal(t, analysis.LocRegister, ra.Location(instr["x"].ID()).Kind)
	require.Equal(t, analysis.LocRegister, ra.Location(instr["zero"].ID()).Kind)
	require.Equal(t, 0, ra.NumSpillSlots())
}

func TestRegAlloc_UnusedValueGetsNoLocation(t *testing.T) {
	g, instr, _ := buildLiveLoopGraph(t)
	live := runLiveness(t, g)

	var ra analysis.RegAlloc
	ra.Run(g, live, 4)

	require.Equal(t, analysis.LocNone, ra.Location(instr["y"].ID()).Kind)
}
