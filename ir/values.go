package ir

import "strconv"

// Value is anything that can appear as an instruction operand.
type Value interface {
	// Type returns the type of the value.
	Type() Type

	// Ident returns the value's rendering as an operand: "%t0" for
	// instruction results, "@name" for globals, a literal for
	// constants.
	Ident() string
}

// ConstInt is an integer constant.
type ConstInt struct {
	Typ   IntType
	Value int64
}

// NewConstInt returns an integer constant of the given type.
func NewConstInt(typ IntType, value int64) *ConstInt {
	return &ConstInt{Typ: typ, Value: value}
}

func (c *ConstInt) Type() Type    { return c.Typ }
func (c *ConstInt) Ident() string { return strconv.FormatInt(c.Value, 10) }

// Null is the null pointer constant of a given pointer type.
type Null struct {
	Typ PointerType
}

func (n *Null) Type() Type    { return n.Typ }
func (n *Null) Ident() string { return "null" }

// Global is a module-level symbol. Contents has the pointee type; the
// value of a Global is its address, so Type reports a pointer.
// Constant globals render as read-only symbols.
type Global struct {
	GlobalName string
	Contents   Type
	Constant   bool
	External   bool
}

func (g *Global) Type() Type    { return Ptr(g.Contents) }
func (g *Global) Ident() string { return "@" + g.GlobalName }

func (g *Global) define() string {
	kind := "global"
	if g.Constant {
		kind = "constant"
	}
	if g.External {
		return g.Ident() + " = external " + kind + " " + g.Contents.String()
	}
	return g.Ident() + " = " + kind + " " + g.Contents.String() + " zeroinitializer"
}

// Param is a function parameter.
type Param struct {
	ParamName string
	Typ       Type
}

func (p *Param) Type() Type    { return p.Typ }
func (p *Param) Ident() string { return "%" + p.ParamName }
