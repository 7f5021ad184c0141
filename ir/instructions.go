package ir

import "strings"

// Instruction is a non-terminator instruction inside a basic block.
type Instruction interface {
	String() string
	instrNode()
}

// Terminator ends a basic block and transfers control.
type Terminator interface {
	String() string
	termNode()
}

// Alloca reserves a stack slot of the element type. Allocas are
// emitted into the function entry block.
type Alloca struct {
	name string
	Elem Type
}

func (*Alloca) instrNode()       {}
func (a *Alloca) Type() Type     { return Ptr(a.Elem) }
func (a *Alloca) Ident() string  { return "%" + a.name }
func (a *Alloca) String() string { return a.Ident() + " = alloca " + a.Elem.String() }

// Load reads the value a pointer refers to.
type Load struct {
	name string
	Src  Value
}

func (*Load) instrNode() {}

func (l *Load) Type() Type {
	return l.Src.Type().(PointerType).Elem
}

func (l *Load) Ident() string { return "%" + l.name }

func (l *Load) String() string {
	return l.Ident() + " = load " + l.Src.Type().String() + " " + l.Src.Ident()
}

// Store writes a value through a pointer.
type Store struct {
	Val Value
	Dst Value
}

func (*Store) instrNode() {}

func (s *Store) String() string {
	return "store " + s.Val.Type().String() + " " + s.Val.Ident() +
		", " + s.Dst.Type().String() + " " + s.Dst.Ident()
}

// Bitcast reinterprets a value at another type of the same size.
type Bitcast struct {
	name string
	From Value
	To   Type
}

func (*Bitcast) instrNode()      {}
func (b *Bitcast) Type() Type    { return b.To }
func (b *Bitcast) Ident() string { return "%" + b.name }

func (b *Bitcast) String() string {
	return b.Ident() + " = bitcast " + b.From.Type().String() + " " +
		b.From.Ident() + " to " + b.To.String()
}

// ICmpEQ compares two values for equality, yielding an i1.
type ICmpEQ struct {
	name string
	X, Y Value
}

func (*ICmpEQ) instrNode()      {}
func (c *ICmpEQ) Type() Type    { return I1 }
func (c *ICmpEQ) Ident() string { return "%" + c.name }

func (c *ICmpEQ) String() string {
	return c.Ident() + " = icmp eq " + c.X.Type().String() + " " +
		c.X.Ident() + ", " + c.Y.Ident()
}

// Call invokes a function with no unwind edge. Exceptions thrown by
// the callee propagate past the caller's frame untouched.
type Call struct {
	name   string
	Callee *Func
	Args   []Value
}

func (*Call) instrNode()      {}
func (c *Call) Type() Type    { return c.Callee.Sig.Ret }
func (c *Call) Ident() string { return "%" + c.name }

func (c *Call) String() string {
	s := "call " + callSig(c.Callee, c.Args)
	if _, ok := c.Callee.Sig.Ret.(VoidType); ok {
		return s
	}
	return c.Ident() + " = " + s
}

// Br branches unconditionally.
type Br struct {
	Target *Block
}

func (*Br) termNode()        {}
func (b *Br) String() string { return "br label " + b.Target.Ident() }

// CondBr branches on an i1 condition.
type CondBr struct {
	Cond Value
	Then *Block
	Else *Block
}

func (*CondBr) termNode() {}

func (b *CondBr) String() string {
	return "br i1 " + b.Cond.Ident() + ", label " + b.Then.Ident() +
		", label " + b.Else.Ident()
}

// Invoke calls a function with an unwind edge: control resumes at
// Normal on ordinary return and at Unwind (a landing pad) when the
// callee raises an exception.
type Invoke struct {
	name   string
	Callee *Func
	Args   []Value
	Normal *Block
	Unwind *Block
}

func (*Invoke) termNode()       {}
func (v *Invoke) Type() Type    { return v.Callee.Sig.Ret }
func (v *Invoke) Ident() string { return "%" + v.name }

func (v *Invoke) String() string {
	s := "invoke " + callSig(v.Callee, v.Args) +
		" to label " + v.Normal.Ident() + " unwind label " + v.Unwind.Ident()
	if _, ok := v.Callee.Sig.Ret.(VoidType); ok {
		return s
	}
	return v.Ident() + " = " + s
}

// Ret returns from the function. Val is nil for void returns.
type Ret struct {
	Val Value
}

func (*Ret) termNode() {}

func (r *Ret) String() string {
	if r.Val == nil {
		return "ret void"
	}
	return "ret " + r.Val.Type().String() + " " + r.Val.Ident()
}

// Unreachable marks a point control can never reach.
type Unreachable struct{}

func (*Unreachable) termNode()      {}
func (*Unreachable) String() string { return "unreachable" }

func callSig(callee *Func, args []Value) string {
	var out strings.Builder
	out.WriteString(callee.Sig.Ret.String())
	out.WriteString(" ")
	out.WriteString(callee.Ident())
	out.WriteString("(")
	for i, a := range args {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(a.Type().String())
		out.WriteString(" ")
		out.WriteString(a.Ident())
	}
	out.WriteString(")")
	return out.String()
}
