package pass

import "github.com/Dimanteo/KodJIT/internal/ssa"

// Peephole applies a fixed set of local simplification rules that constant
// folding can't express because at least one operand isn't a Const:
//
//	x & x   -> x
//	x & 0   -> 0
//	x & -1  -> x
//	x - x   -> 0
//	x - 0   -> x
//	(x >> c1) >> c2 -> x >> ((c1+c2) mod 64)
//	x / c   -> x >> log2(c)   (c a positive power of two)
//
// Blocks are walked in the order given, which must be a reverse postorder of
// the graph. Within a block, a successful rewrite restarts the scan at the
// instruction it returns rather than skipping to what was originally next,
// so a value the rewrite just synthesized (e.g. a SHR produced from a DIV)
// gets a chance to combine further in the same pass.
func Peephole(b *ssa.Builder, order []ssa.BlockID) bool {
	changed := false
	g := b.Graph()
	for _, id := range order {
		blk := g.Block(id)
		instr := blk.FirstInstr()
		for instr != nil {
			if resume, ok := rewriteOne(b, instr); ok {
				changed = true
				instr = resume
				continue
			}
			instr = instr.Next()
		}
	}
	return changed
}

func isConst(i *ssa.Instruction, v int64) bool {
	return i.Opcode() == ssa.OpConst && i.ImmValue() == v
}

// alias makes every user of instr read replacement instead, then deletes
// instr. Used when the rewrite's result is an operand that's already placed
// in the graph, as opposed to Replace which splices in a brand-new value.
// Returns replacement, the instruction rewriteOne's caller should resume at.
func alias(b *ssa.Builder, instr, replacement *ssa.Instruction) *ssa.Instruction {
	b.MoveUsers(instr, replacement)
	b.RemoveInstruction(instr)
	return replacement
}

// rewriteOne tries each rule against instr in order. On success it returns
// the instruction the caller should resume scanning from and true.
func rewriteOne(b *ssa.Builder, instr *ssa.Instruction) (*ssa.Instruction, bool) {
	switch instr.Opcode() {
	case ssa.OpAnd:
		in := instr.Inputs()
		lhs, rhs := in[0], in[1]
		switch {
		case lhs == rhs:
			return alias(b, instr, lhs), true
		case isConst(rhs, 0):
			return alias(b, instr, rhs), true
		case isConst(lhs, 0):
			return alias(b, instr, lhs), true
		case isConst(rhs, -1):
			return alias(b, instr, lhs), true
		case isConst(lhs, -1):
			return alias(b, instr, rhs), true
		}
	case ssa.OpSub:
		in := instr.Inputs()
		lhs, rhs := in[0], in[1]
		if lhs == rhs {
			return b.Replace(instr, b.MakeIntConstant(0)), true
		}
		if isConst(rhs, 0) {
			return alias(b, instr, lhs), true
		}
	case ssa.OpShr:
		in := instr.Inputs()
		lhs, rhs := in[0], in[1]
		if lhs.Opcode() == ssa.OpShr && rhs.Opcode() == ssa.OpConst {
			innerIn := lhs.Inputs()
			x, c1 := innerIn[0], innerIn[1]
			if c1.Opcode() == ssa.OpConst {
				sum := (c1.ImmValue() + rhs.ImmValue()) % 64
				c := b.MakeIntConstant(sum)
				b.InsertBefore(c, instr)
				shr, err := b.MakeBinop(ssa.OpShr, x, c)
				if err != nil {
					panic(err)
				}
				b.InsertBefore(shr, instr)
				return alias(b, instr, shr), true
			}
		}
	case ssa.OpDiv:
		in := instr.Inputs()
		lhs, rhs := in[0], in[1]
		if rhs.Opcode() == ssa.OpConst {
			if shift, ok := log2PowerOfTwo(rhs.ImmValue()); ok {
				c := b.MakeIntConstant(shift)
				b.InsertBefore(c, instr)
				shr, err := b.MakeBinop(ssa.OpShr, lhs, c)
				if err != nil {
					panic(err)
				}
				b.InsertBefore(shr, instr)
				return alias(b, instr, shr), true
			}
		}
	}
	return nil, false
}

// log2PowerOfTwo returns log2(v) and true if v is a positive power of two.
func log2PowerOfTwo(v int64) (int64, bool) {
	if v <= 0 || v&(v-1) != 0 {
		return 0, false
	}
	shift := int64(0)
	for v > 1 {
		v >>= 1
		shift++
	}
	return shift, true
}
