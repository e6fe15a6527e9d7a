package pass

import "github.com/Dimanteo/KodJIT/internal/ssa"

// RemoveUnused deletes every non-terminator instruction with no users,
// repeating until a full sweep removes nothing further: dropping one dead
// instruction can make its own inputs dead in turn.
func RemoveUnused(b *ssa.Builder) bool {
	changed := false
	for {
		removedAny := false
		for _, blk := range b.Graph().Blocks() {
			for instr := blk.FirstInstr(); instr != nil; {
				next := instr.Next()
				if !instr.IsTerminator() && len(instr.Users()) == 0 {
					b.RemoveInstruction(instr)
					removedAny = true
				}
				instr = next
			}
		}
		if !removedAny {
			break
		}
		changed = true
	}
	return changed
}
