package ir

import (
	"fmt"
	"strings"
)

// Type is the type of a Value.
type Type interface {
	String() string
	typeNode()
}

// VoidType is the absence of a value. Only valid as a return type.
type VoidType struct{}

func (VoidType) typeNode()      {}
func (VoidType) String() string { return "void" }

// IntType is an integer of a fixed bit width.
type IntType struct {
	Bits int
}

func (IntType) typeNode()        {}
func (t IntType) String() string { return fmt.Sprintf("i%d", t.Bits) }

// PointerType points to a value of the element type.
type PointerType struct {
	Elem Type
}

func (PointerType) typeNode()        {}
func (t PointerType) String() string { return t.Elem.String() + "*" }

// ClassType is a named, opaque aggregate type. The backend never
// inspects class layout; classes exist to give exception objects and
// their runtime type information distinct pointer types.
type ClassType struct {
	Name string
}

func (ClassType) typeNode()        {}
func (t ClassType) String() string { return "%" + t.Name }

// FuncType describes a function signature.
type FuncType struct {
	Params   []Type
	Ret      Type
	Variadic bool
}

func (FuncType) typeNode() {}

func (t FuncType) String() string {
	var out strings.Builder
	out.WriteString(t.Ret.String())
	out.WriteString(" (")
	for i, p := range t.Params {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(p.String())
	}
	if t.Variadic {
		if len(t.Params) > 0 {
			out.WriteString(", ")
		}
		out.WriteString("...")
	}
	out.WriteString(")")
	return out.String()
}

// Common types.
var (
	Void = VoidType{}
	I1   = IntType{Bits: 1}
	I8   = IntType{Bits: 8}
	I32  = IntType{Bits: 32}
	I64  = IntType{Bits: 64}
)

// I8Ptr is the untyped byte pointer used across the unwinder ABI.
var I8Ptr = Ptr(I8)

// Ptr returns the pointer type to elem.
func Ptr(elem Type) PointerType {
	return PointerType{Elem: elem}
}
