package ssa

import "github.com/Dimanteo/KodJIT/internal/ilist"

// Instruction is a single flattened struct covering every IR opcode: the
// same handful of fields is reinterpreted depending on Opcode, avoiding a
// tagged-union type Go doesn't have. Edges (inputs/users) are direct
// pointers for cheap traversal; Graph-arena insertion order gives every
// instruction a stable id for side-table keying by analyses.
type Instruction struct {
	id     InstrID
	opcode Opcode
	typ    Type
	block  *BasicBlock

	inputs []*Instruction // ordered operands
	users  []*Instruction // unordered uses; in def/use symmetry with inputs

	isTerminator bool

	imm       int64    // OpConst
	paramIdx  int      // OpParam
	cmp       CmpFlag  // OpCondBranch
	phiBlocks []BlockID // OpPhi, parallel to inputs

	srcPos uint64

	link ilist.Node[Instruction]
}

func (i *Instruction) Link() *ilist.Node[Instruction] { return &i.link }

func (i *Instruction) ID() InstrID          { return i.id }
func (i *Instruction) Opcode() Opcode       { return i.opcode }
func (i *Instruction) Type() Type           { return i.typ }
func (i *Instruction) Block() *BasicBlock   { return i.block }
func (i *Instruction) Inputs() []*Instruction { return i.inputs }
func (i *Instruction) Users() []*Instruction  { return i.users }
func (i *Instruction) IsTerminator() bool   { return i.isTerminator }
func (i *Instruction) Next() *Instruction    { return i.link.Next() }
func (i *Instruction) Prev() *Instruction    { return i.link.Prev() }

func (i *Instruction) ImmValue() int64  { return i.imm }
func (i *Instruction) ParamIndex() int  { return i.paramIdx }
func (i *Instruction) Cmp() CmpFlag     { return i.cmp }

func (i *Instruction) SourcePos() uint64     { return i.srcPos }
func (i *Instruction) SetSourcePos(p uint64) { i.srcPos = p }

// PhiEntry is one (incoming block, value) pair of a Phi.
type PhiEntry struct {
	Block BlockID
	Value *Instruction
}

// PhiIncoming returns the Phi's incoming entries in insertion order. It
// panics if called on a non-Phi instruction.
func (i *Instruction) PhiIncoming() []PhiEntry {
	if i.opcode != OpPhi {
		errorf("PhiIncoming called on non-phi instruction %d (%s)", i.id, i.opcode)
	}
	out := make([]PhiEntry, len(i.inputs))
	for idx, v := range i.inputs {
		out[idx] = PhiEntry{Block: i.phiBlocks[idx], Value: v}
	}
	return out
}

func (i *Instruction) String() string { return formatInstr(i) }
