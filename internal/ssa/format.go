package ssa

import (
	"fmt"
	"strings"
)

// Format renders g as an indented pseudo-assembly listing. It is primarily
// used by pass tests to assert before/after graph shape without a real
// assembler or serializer.
func Format(g *Graph) string {
	var sb strings.Builder
	for _, blk := range g.blocks {
		sb.WriteString(FormatBlock(blk))
	}
	return sb.String()
}

// FormatBlock renders a single block, including its predecessor list, in
// the same notation Format uses.
func FormatBlock(blk *BasicBlock) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "blk%d:", blk.id)
	if len(blk.preds) > 0 {
		preds := make([]string, len(blk.preds))
		for i, p := range blk.preds {
			preds[i] = fmt.Sprintf("blk%d", p.id)
		}
		fmt.Fprintf(&sb, " <-- (%s)", strings.Join(preds, ","))
	}
	sb.WriteString("\n")
	for instr := blk.list.Head(); instr != nil; instr = instr.Next() {
		sb.WriteString("  ")
		sb.WriteString(formatInstr(instr))
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatInstr(i *Instruction) string {
	switch i.opcode {
	case OpConst:
		return fmt.Sprintf("v%d = const %d", i.id, i.imm)
	case OpParam:
		return fmt.Sprintf("v%d = param %d", i.id, i.paramIdx)
	case OpBranch:
		return fmt.Sprintf("branch blk%d", i.block.succs[0].id)
	case OpCondBranch:
		return fmt.Sprintf("condbranch.%s v%d, v%d, blk%d, blk%d",
			i.cmp, i.inputs[0].id, i.inputs[1].id, i.block.succs[0].id, i.block.succs[1].id)
	case OpPhi:
		parts := make([]string, len(i.inputs))
		for idx, in := range i.inputs {
			parts[idx] = fmt.Sprintf("(blk%d, v%d)", i.phiBlocks[idx], in.id)
		}
		return fmt.Sprintf("v%d = phi %s", i.id, strings.Join(parts, ", "))
	case OpReturn:
		if len(i.inputs) == 0 {
			return "return"
		}
		return fmt.Sprintf("return v%d", i.inputs[0].id)
	case OpNot:
		return fmt.Sprintf("v%d = not v%d", i.id, i.inputs[0].id)
	default:
		if len(i.inputs) == 2 {
			return fmt.Sprintf("v%d = %s v%d, v%d", i.id, i.opcode, i.inputs[0].id, i.inputs[1].id)
		}
		return fmt.Sprintf("v%d = %s", i.id, i.opcode)
	}
}
