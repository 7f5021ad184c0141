// Package ast defines the abstract syntax tree that the Ember backend
// consumes. The tree is the contract with the frontend: by the time a
// Program reaches codegen, parsing and semantic analysis are complete,
// names are resolved, and catch clause types are known to be valid
// class references.
package ast

import "strings"

// Node represents a portion of the syntax tree.
type Node interface {
	// String returns a human friendly representation of the Node. This should
	// be similar to the original source code, but not necessarily identical.
	String() string
}

// Stmt represents a statement node. Statements cause side effects but
// do not evaluate to a value.
type Stmt interface {
	Node
	stmtNode()
}

// Expr represents an expression node. Expressions evaluate to a value
// and may be embedded within other expressions.
type Expr interface {
	Node
	exprNode()
}

// Program is the root of the tree: the classes and functions of one
// compilation unit, in declaration order.
type Program struct {
	Classes []*ClassDecl `json:"classes,omitempty"`
	Funcs   []*FuncDecl  `json:"funcs,omitempty"`
}

func (p *Program) String() string {
	var out strings.Builder
	for _, c := range p.Classes {
		out.WriteString(c.String())
		out.WriteString("\n")
	}
	for _, f := range p.Funcs {
		out.WriteString(f.String())
		out.WriteString("\n")
	}
	return out.String()
}

// ClassDecl declares an exception class. Classes exist only so that
// catch clauses and new-expressions have something to name; their
// runtime type information is materialized by the backend.
type ClassDecl struct {
	Name string `json:"name"`
}

func (c *ClassDecl) String() string { return "class " + c.Name }

// FuncDecl declares a function with a statement body. All functions
// take no parameters and return nothing: the backend's concern is
// control flow, not data flow.
type FuncDecl struct {
	Name string `json:"name"`
	Body *Block `json:"body"`
}

func (f *FuncDecl) String() string {
	return "func " + f.Name + "() " + f.Body.String()
}

// VarDecl declares a catch-bound variable, typed by the enclosing
// catch clause. NestedRefs is the escape resolver's verdict: the
// number of references to the variable from nested closures. Zero
// means the variable may alias the shared exception slot directly.
type VarDecl struct {
	Name       string `json:"name"`
	NestedRefs int    `json:"nested_refs,omitempty"`
}

func (v *VarDecl) String() string { return v.Name }
