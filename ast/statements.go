package ast

import "strings"

// Block is a brace-delimited statement list.
type Block struct {
	Stmts []Stmt `json:"stmts"`
}

func (b *Block) stmtNode() {}

func (b *Block) String() string {
	var out strings.Builder
	out.WriteString("{ ")
	for i, s := range b.Stmts {
		if i > 0 {
			out.WriteString("; ")
		}
		out.WriteString(s.String())
	}
	out.WriteString(" }")
	return out.String()
}

// ExprStmt is an expression evaluated for its side effects.
type ExprStmt struct {
	X Expr `json:"x"`
}

func (s *ExprStmt) stmtNode() {}

func (s *ExprStmt) String() string { return s.X.String() }

// Return exits the enclosing function. Any finally bodies between the
// return and the function boundary still run.
type Return struct{}

func (s *Return) stmtNode() {}

func (s *Return) String() string { return "return" }

// Throw raises the exception object produced by X.
type Throw struct {
	X Expr `json:"x"`
}

func (s *Throw) stmtNode() {}

func (s *Throw) String() string { return "throw " + s.X.String() }

// Try is a try/catch/finally statement. Catches appear in declaration
// order. A Try may carry catches, a finally, or both; with both, the
// finally protects the catches as well as the body.
type Try struct {
	Body    *Block         `json:"body"`
	Catches []*CatchClause `json:"catches,omitempty"`
	Finally *Block         `json:"finally,omitempty"`
}

func (s *Try) stmtNode() {}

func (s *Try) String() string {
	var out strings.Builder
	out.WriteString("try ")
	out.WriteString(s.Body.String())
	for _, c := range s.Catches {
		out.WriteString(" ")
		out.WriteString(c.String())
	}
	if s.Finally != nil {
		out.WriteString(" finally ")
		out.WriteString(s.Finally.String())
	}
	return out.String()
}

// CatchClause handles exceptions of exactly the named class. Var is
// nil for `catch (Foo) { }` with no binding.
type CatchClause struct {
	Var   *VarDecl `json:"var,omitempty"`
	Class string   `json:"class"`
	Body  *Block   `json:"body"`
}

func (c *CatchClause) String() string {
	var out strings.Builder
	out.WriteString("catch (")
	out.WriteString(c.Class)
	if c.Var != nil {
		out.WriteString(" ")
		out.WriteString(c.Var.String())
	}
	out.WriteString(") ")
	out.WriteString(c.Body.String())
	return out.String()
}
