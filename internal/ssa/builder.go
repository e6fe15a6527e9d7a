package ssa

// Builder appends instructions to a Graph at a movable insertion point and
// provides the rewriting primitives (move_users, replace, insert_before/
// after) used by optimization passes. It holds no state beyond the insertion
// point: the Graph itself is the only owner of IR data.
type Builder struct {
	g   *Graph
	cur *BasicBlock
}

func NewBuilder(g *Graph) *Builder { return &Builder{g: g} }

func (b *Builder) Graph() *Graph { return b.g }

func (b *Builder) SetInsertionPoint(blk *BasicBlock) { b.cur = blk }
func (b *Builder) InsertionPoint() *BasicBlock       { return b.cur }

func (b *Builder) newInstr(op Opcode) *Instruction { return b.g.newInstruction(op) }

func (b *Builder) insert(instr *Instruction) {
	instr.block = b.cur
	b.cur.list.InsertTail(instr)
}

func registerUse(user *Instruction, inputs ...*Instruction) {
	user.inputs = append(user.inputs, inputs...)
	for _, in := range inputs {
		in.users = append(in.users, user)
	}
}

// --- value construction -----------------------------------------------

func (b *Builder) CreateParamLoad(idx int) (*Instruction, error) {
	if idx < 0 || idx >= len(b.g.params) {
		return nil, newInvalidArgument("param index out of range")
	}
	instr := b.newInstr(OpParam)
	instr.paramIdx = idx
	instr.typ = b.g.params[idx].Type
	b.insert(instr)
	return instr, nil
}

// CreateIntConstant appends a Const instruction at the insertion point.
func (b *Builder) CreateIntConstant(v int64) *Instruction {
	instr := b.MakeIntConstant(v)
	b.insert(instr)
	return instr
}

// MakeIntConstant creates a detached Const instruction, used by rewriting
// passes that place it explicitly via InsertBefore/InsertAfter or hand it to
// Replace.
func (b *Builder) MakeIntConstant(v int64) *Instruction {
	instr := b.newInstr(OpConst)
	instr.imm = v
	instr.typ = TypeInteger
	return instr
}

func (b *Builder) requireInteger(vals ...*Instruction) error {
	for _, v := range vals {
		if v.typ != TypeInteger {
			got := make([]Type, len(vals))
			exp := make([]Type, len(vals))
			for i, vv := range vals {
				got[i] = vv.typ
				exp[i] = TypeInteger
			}
			return newOperandTypeMismatch(got, exp)
		}
	}
	return nil
}

func (b *Builder) makeBinop(op Opcode, lhs, rhs *Instruction) (*Instruction, error) {
	if err := b.requireInteger(lhs, rhs); err != nil {
		return nil, err
	}
	instr := b.newInstr(op)
	instr.typ = TypeInteger
	registerUse(instr, lhs, rhs)
	return instr, nil
}

func (b *Builder) createBinop(op Opcode, lhs, rhs *Instruction) (*Instruction, error) {
	instr, err := b.makeBinop(op, lhs, rhs)
	if err != nil {
		return nil, err
	}
	b.insert(instr)
	return instr, nil
}

func (b *Builder) CreateIAdd(l, r *Instruction) (*Instruction, error) { return b.createBinop(OpAdd, l, r) }
func (b *Builder) CreateISub(l, r *Instruction) (*Instruction, error) { return b.createBinop(OpSub, l, r) }
func (b *Builder) CreateIMul(l, r *Instruction) (*Instruction, error) { return b.createBinop(OpMul, l, r) }
func (b *Builder) CreateIDiv(l, r *Instruction) (*Instruction, error) { return b.createBinop(OpDiv, l, r) }
func (b *Builder) CreateIMod(l, r *Instruction) (*Instruction, error) { return b.createBinop(OpMod, l, r) }
func (b *Builder) CreateAnd(l, r *Instruction) (*Instruction, error)  { return b.createBinop(OpAnd, l, r) }
func (b *Builder) CreateOr(l, r *Instruction) (*Instruction, error)   { return b.createBinop(OpOr, l, r) }
func (b *Builder) CreateXor(l, r *Instruction) (*Instruction, error)  { return b.createBinop(OpXor, l, r) }
func (b *Builder) CreateShl(l, r *Instruction) (*Instruction, error)  { return b.createBinop(OpShl, l, r) }
func (b *Builder) CreateShr(l, r *Instruction) (*Instruction, error)  { return b.createBinop(OpShr, l, r) }

// MakeBinop is the detached counterpart of the Create* binops, used by
// passes that synthesize a new instruction before splicing it in.
func (b *Builder) MakeBinop(op Opcode, lhs, rhs *Instruction) (*Instruction, error) {
	return b.makeBinop(op, lhs, rhs)
}

func (b *Builder) CreateNot(x *Instruction) (*Instruction, error) {
	if err := b.requireInteger(x); err != nil {
		return nil, err
	}
	instr := b.newInstr(OpNot)
	instr.typ = TypeInteger
	registerUse(instr, x)
	b.insert(instr)
	return instr, nil
}

// --- control flow --------------------------------------------------------

// CreateBranch appends an unconditional terminator and wires the current
// block's single successor slot.
func (b *Builder) CreateBranch(target *BasicBlock) *Instruction {
	cur := b.cur
	instr := b.newInstr(OpBranch)
	instr.isTerminator = true
	cur.succs = []*BasicBlock{target}
	target.preds = append(target.preds, cur)
	b.insert(instr)
	return instr
}

// CreateCondBranch appends a two-way terminator. falseBB occupies successor
// slot 0, trueBB occupies slot 1.
func (b *Builder) CreateCondBranch(flag CmpFlag, lhs, rhs *Instruction, falseBB, trueBB *BasicBlock) (*Instruction, error) {
	if err := b.requireInteger(lhs, rhs); err != nil {
		return nil, err
	}
	cur := b.cur
	instr := b.newInstr(OpCondBranch)
	instr.isTerminator = true
	instr.cmp = flag
	registerUse(instr, lhs, rhs)
	cur.succs = []*BasicBlock{falseBB, trueBB}
	falseBB.preds = append(falseBB.preds, cur)
	trueBB.preds = append(trueBB.preds, cur)
	b.insert(instr)
	return instr, nil
}

// CreatePhi appends an empty Phi at the insertion point; options are added
// with AddPhiOption.
func (b *Builder) CreatePhi(t Type) *Instruction {
	instr := b.newInstr(OpPhi)
	instr.typ = t
	b.insert(instr)
	return instr
}

func (b *Builder) AddPhiOption(phi *Instruction, incoming BlockID, value *Instruction) error {
	if value.typ != phi.typ {
		return newOperandTypeMismatch([]Type{value.typ}, []Type{phi.typ})
	}
	phi.inputs = append(phi.inputs, value)
	phi.phiBlocks = append(phi.phiBlocks, incoming)
	value.users = append(value.users, phi)
	return nil
}

// CreateReturn appends a terminator returning value, or a bare return if
// value is nil.
func (b *Builder) CreateReturn(value *Instruction) *Instruction {
	instr := b.newInstr(OpReturn)
	instr.isTerminator = true
	if value != nil {
		registerUse(instr, value)
	}
	b.insert(instr)
	return instr
}

// --- rewriting primitives --------------------------------------------------

func removeFromUsers(s []*Instruction, v *Instruction) []*Instruction {
	out := s[:0]
	for _, e := range s {
		if e != v {
			out = append(out, e)
		}
	}
	return out
}

// MoveUsers rewrites every user of from to use to instead, including Phi
// incoming values (which are stored in the same inputs slice), and clears
// from's users slice so that from can then be passed to RemoveInstruction.
func (b *Builder) MoveUsers(from, to *Instruction) {
	for _, u := range from.users {
		for i, in := range u.inputs {
			if in == from {
				u.inputs[i] = to
			}
		}
		to.users = append(to.users, u)
	}
	from.users = nil
}

// RemoveInstruction detaches instr from its block's instruction list and
// unregisters it from its own inputs' user lists. It panics if instr still
// has users: callers must MoveUsers or otherwise clear them first, rather
// than being left with a dangling operand slot (see DESIGN.md's Open
// Question on this precondition).
func (b *Builder) RemoveInstruction(instr *Instruction) *Instruction {
	if len(instr.users) != 0 {
		errorf("RemoveInstruction: instruction %d still has %d users", instr.id, len(instr.users))
	}
	for _, in := range instr.inputs {
		in.users = removeFromUsers(in.users, instr)
	}
	blk := instr.block
	next := blk.list.Remove(instr)
	instr.block = nil
	return next
}

// Replace splices new immediately after old, moves old's users onto new,
// unregisters old from its own inputs, and detaches old.
func (b *Builder) Replace(old, newInstr *Instruction) *Instruction {
	blk := old.block
	blk.list.InsertAfter(old, newInstr)
	newInstr.block = blk
	b.MoveUsers(old, newInstr)
	for _, in := range old.inputs {
		in.users = removeFromUsers(in.users, old)
	}
	blk.list.Remove(old)
	old.block = nil
	return newInstr
}

// InsertBefore and InsertAfter are placement hooks used when Replace is
// inadequate, e.g. a rewrite that needs to splice in more than one new
// instruction.
func (b *Builder) InsertBefore(instr, point *Instruction) {
	point.block.list.InsertBefore(point, instr)
	instr.block = point.block
}

func (b *Builder) InsertAfter(instr, point *Instruction) {
	point.block.list.InsertAfter(point, instr)
	instr.block = point.block
}
