package ir

import "fmt"

// Builder emits instructions at a current insertion point. One
// builder is re-aimed across blocks as codegen proceeds; all state
// lives on the blocks and functions themselves.
type Builder struct {
	blk *Block
}

// NewBuilder returns a builder with no insertion point.
func NewBuilder() *Builder {
	return &Builder{}
}

// AtEnd aims the builder at the end of the given block.
func (b *Builder) AtEnd(blk *Block) {
	b.blk = blk
}

// Block returns the current insertion block.
func (b *Builder) Block() *Block {
	return b.blk
}

// Terminated reports whether the current block already ends in a
// terminator, i.e. control has left it unconditionally.
func (b *Builder) Terminated() bool {
	return b.blk.Terminated()
}

func (b *Builder) emit(ins Instruction) {
	if b.blk == nil {
		panic("ir: builder has no insertion point")
	}
	if b.blk.Terminated() {
		panic(fmt.Sprintf("ir: emit into terminated block %q", b.blk.Name()))
	}
	b.blk.Instrs = append(b.blk.Instrs, ins)
}

func (b *Builder) terminate(term Terminator) {
	if b.blk == nil {
		panic("ir: builder has no insertion point")
	}
	if b.blk.Terminated() {
		panic(fmt.Sprintf("ir: block %q terminated twice", b.blk.Name()))
	}
	b.blk.Term = term
}

// AllocaEntry reserves a named stack slot in the function's entry
// block, regardless of the current insertion point. Slots allocated
// lazily mid-function still dominate all uses this way.
func (b *Builder) AllocaEntry(fn *Func, elem Type, name string) *Alloca {
	if len(fn.Blocks) == 0 {
		panic(fmt.Sprintf("ir: alloca in function %q before its entry block exists", fn.Name()))
	}
	a := &Alloca{name: fn.uniqueName(name), Elem: elem}
	entry := fn.Blocks[0]
	entry.Instrs = append([]Instruction{a}, entry.Instrs...)
	return a
}

// Load reads through src, which must have pointer type.
func (b *Builder) Load(src Value) *Load {
	if _, ok := src.Type().(PointerType); !ok {
		panic(fmt.Sprintf("ir: load from non-pointer %s", src.Type()))
	}
	l := &Load{name: b.blk.Parent.nextTmp(), Src: src}
	b.emit(l)
	return l
}

// Store writes val through dst.
func (b *Builder) Store(val, dst Value) {
	b.emit(&Store{Val: val, Dst: dst})
}

// Bitcast reinterprets v at type to. A cast to the value's own type
// is a no-op and returns v unchanged.
func (b *Builder) Bitcast(v Value, to Type) Value {
	if v.Type().String() == to.String() {
		return v
	}
	c := &Bitcast{name: b.blk.Parent.nextTmp(), From: v, To: to}
	b.emit(c)
	return c
}

// ICmpEQ compares x and y for equality.
func (b *Builder) ICmpEQ(x, y Value) *ICmpEQ {
	c := &ICmpEQ{name: b.blk.Parent.nextTmp(), X: x, Y: y}
	b.emit(c)
	return c
}

// Call emits a call with no unwind edge.
func (b *Builder) Call(callee *Func, args ...Value) *Call {
	c := &Call{Callee: callee, Args: args}
	if _, void := callee.Sig.Ret.(VoidType); !void {
		c.name = b.blk.Parent.nextTmp()
	}
	b.emit(c)
	return c
}

// Br terminates the current block with an unconditional branch.
func (b *Builder) Br(target *Block) {
	b.terminate(&Br{Target: target})
}

// CondBr terminates the current block with a conditional branch.
func (b *Builder) CondBr(cond Value, then, els *Block) {
	b.terminate(&CondBr{Cond: cond, Then: then, Else: els})
}

// Invoke terminates the current block with a call that unwinds to the
// given landing pad if the callee raises.
func (b *Builder) Invoke(callee *Func, args []Value, normal, unwind *Block) *Invoke {
	v := &Invoke{Callee: callee, Args: args, Normal: normal, Unwind: unwind}
	if _, void := callee.Sig.Ret.(VoidType); !void {
		v.name = b.blk.Parent.nextTmp()
	}
	b.terminate(v)
	return v
}

// Ret terminates the current block with a return. Pass nil for void.
func (b *Builder) Ret(val Value) {
	b.terminate(&Ret{Val: val})
}

// Unreachable terminates the current block as never reached.
func (b *Builder) Unreachable() {
	b.terminate(&Unreachable{})
}
