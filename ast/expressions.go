package ast

import (
	"strconv"
	"strings"
)

// Ident references a catch-bound variable by name.
type Ident struct {
	Name string `json:"name"`
}

func (e *Ident) exprNode() {}

func (e *Ident) String() string { return e.Name }

// IntLit is an integer literal.
type IntLit struct {
	Value int64 `json:"value"`
}

func (e *IntLit) exprNode() {}

func (e *IntLit) String() string { return strconv.FormatInt(e.Value, 10) }

// CallExpr calls a function by name. Calls are potentially throwing:
// while a landing pad is current they lower to invokes that unwind to
// it.
type CallExpr struct {
	Callee string `json:"callee"`
	Args   []Expr `json:"args,omitempty"`
}

func (e *CallExpr) exprNode() {}

func (e *CallExpr) String() string {
	var out strings.Builder
	out.WriteString(e.Callee)
	out.WriteString("(")
	for i, a := range e.Args {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(a.String())
	}
	out.WriteString(")")
	return out.String()
}

// NewExpr allocates an instance of the named class, typically as the
// operand of a throw. Allocation is potentially throwing.
type NewExpr struct {
	Class string `json:"class"`
}

func (e *NewExpr) exprNode() {}

func (e *NewExpr) String() string { return "new " + e.Class }
