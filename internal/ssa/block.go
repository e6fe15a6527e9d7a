package ssa

import "github.com/Dimanteo/KodJIT/internal/ilist"

// NilBlockID marks the absence of a block id (e.g. "no owning loop header").
const NilBlockID BlockID = ^BlockID(0)

// BasicBlock is a CFG node: an intrusive list of instructions plus up to two
// successor slots. Slot 0 is the fallthrough/unconditional target, slot 1
// (only present for a CondBranch terminator) is the taken-on-true target.
type BasicBlock struct {
	id    BlockID
	graph *Graph

	preds []*BasicBlock
	succs []*BasicBlock

	list ilist.List[Instruction, *Instruction]

	loopHeader BlockID // NilBlockID if not inside any loop
}

func (b *BasicBlock) ID() BlockID       { return b.id }
func (b *BasicBlock) Graph() *Graph     { return b.graph }
func (b *BasicBlock) Predecessors() []*BasicBlock { return b.preds }
func (b *BasicBlock) Successors() []*BasicBlock   { return b.succs }

func (b *BasicBlock) FirstInstr() *Instruction { return b.list.Head() }
func (b *BasicBlock) LastInstr() *Instruction  { return b.list.Tail() }
func (b *BasicBlock) Empty() bool              { return b.list.Empty() }

func (b *BasicBlock) LoopHeader() BlockID    { return b.loopHeader }
func (b *BasicBlock) SetLoopHeader(h BlockID) { b.loopHeader = h }
func (b *BasicBlock) IsLoopHeader() bool     { return b.loopHeader == b.id }

// SuccessorIDs is a convenience accessor used by analyses that key purely
// on BlockID.
func (b *BasicBlock) SuccessorIDs() []BlockID {
	ids := make([]BlockID, len(b.succs))
	for i, s := range b.succs {
		ids[i] = s.id
	}
	return ids
}

func (b *BasicBlock) PredecessorIDs() []BlockID {
	ids := make([]BlockID, len(b.preds))
	for i, p := range b.preds {
		ids[i] = p.id
	}
	return ids
}
