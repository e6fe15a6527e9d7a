// Package pass implements local rewrites over an ssa.Graph through its
// ssa.Builder: constant folding, peephole simplification, and dead
// instruction removal.
package pass

import "github.com/Dimanteo/KodJIT/internal/ssa"

// ConstantFold replaces any arithmetic or bitwise instruction whose operands
// are all Const with a single Const holding the computed result. Division by
// zero is left unfolded so it still traps at runtime instead of at compile
// time. Mod is intentionally excluded: its sign semantics are runtime-defined
// and not safe to fold here.
//
// Blocks are walked in the order given, which must be a reverse postorder of
// the graph: a def folded in an earlier block must be visible in time for a
// later block's use to fold in the same pass.
func ConstantFold(b *ssa.Builder, order []ssa.BlockID) bool {
	changed := false
	g := b.Graph()
	for _, id := range order {
		blk := g.Block(id)
		for instr := blk.FirstInstr(); instr != nil; {
			next := instr.Next()
			if folded, ok := foldOne(b, instr); ok {
				b.Replace(instr, folded)
				changed = true
			}
			instr = next
		}
	}
	return changed
}

func foldOne(b *ssa.Builder, instr *ssa.Instruction) (*ssa.Instruction, bool) {
	switch instr.Opcode() {
	case ssa.OpAdd, ssa.OpSub, ssa.OpMul, ssa.OpDiv, ssa.OpAnd, ssa.OpOr, ssa.OpXor, ssa.OpShl, ssa.OpShr:
		in := instr.Inputs()
		lhs, rhs := in[0], in[1]
		if lhs.Opcode() != ssa.OpConst || rhs.Opcode() != ssa.OpConst {
			return nil, false
		}
		v, ok := foldBinop(instr.Opcode(), lhs.ImmValue(), rhs.ImmValue())
		if !ok {
			return nil, false
		}
		return b.MakeIntConstant(v), true
	case ssa.OpNot:
		x := instr.Inputs()[0]
		if x.Opcode() != ssa.OpConst {
			return nil, false
		}
		return b.MakeIntConstant(^x.ImmValue()), true
	default:
		return nil, false
	}
}

func foldBinop(op ssa.Opcode, l, r int64) (int64, bool) {
	switch op {
	case ssa.OpAdd:
		return l + r, true
	case ssa.OpSub:
		return l - r, true
	case ssa.OpMul:
		return l * r, true
	case ssa.OpDiv:
		if r == 0 {
			return 0, false
		}
		return l / r, true
	case ssa.OpAnd:
		return l & r, true
	case ssa.OpOr:
		return l | r, true
	case ssa.OpXor:
		return l ^ r, true
	case ssa.OpShl:
		return l << uint64(r&63), true
	case ssa.OpShr:
		return int64(uint64(l) >> uint64(r&63)), true
	default:
		return 0, false
	}
}
