package main

import "github.com/deepnoodle-ai/ember/ast"

// A sample is a prebuilt program exercising one shape of the
// exception-handling lowering. The backend's input boundary is the
// AST, so samples are constructed directly.
type sample struct {
	Name        string
	Description string
	Program     *ast.Program
}

func call(name string) ast.Stmt {
	return &ast.ExprStmt{X: &ast.CallExpr{Callee: name}}
}

func block(stmts ...ast.Stmt) *ast.Block {
	return &ast.Block{Stmts: stmts}
}

var samples = []sample{
	{
		Name:        "catch",
		Description: "one try with a single typed catch",
		Program: &ast.Program{
			Classes: []*ast.ClassDecl{{Name: "Foo"}},
			Funcs: []*ast.FuncDecl{{
				Name: "main",
				Body: block(&ast.Try{
					Body: block(call("T")),
					Catches: []*ast.CatchClause{{
						Var:   &ast.VarDecl{Name: "f"},
						Class: "Foo",
						Body:  block(call("A")),
					}},
				}),
			}},
		},
	},
	{
		Name:        "finally",
		Description: "inner finally protected by an outer catch",
		Program: &ast.Program{
			Classes: []*ast.ClassDecl{{Name: "Bar"}},
			Funcs: []*ast.FuncDecl{{
				Name: "main",
				Body: block(&ast.Try{
					Body: block(&ast.Try{
						Body:    block(call("T")),
						Finally: block(call("F")),
					}),
					Catches: []*ast.CatchClause{{
						Var:   &ast.VarDecl{Name: "b"},
						Class: "Bar",
						Body:  block(call("B")),
					}},
				}),
			}},
		},
	},
	{
		Name:        "catch-order",
		Description: "two catches on one try; the later declared one is tested first",
		Program: &ast.Program{
			Classes: []*ast.ClassDecl{{Name: "Foo"}, {Name: "Bar"}},
			Funcs: []*ast.FuncDecl{{
				Name: "main",
				Body: block(&ast.Try{
					Body: block(call("T")),
					Catches: []*ast.CatchClause{
						{Class: "Foo", Body: block(call("A"))},
						{Class: "Bar", Body: block(call("B"))},
					},
				}),
			}},
		},
	},
	{
		Name:        "nested",
		Description: "catch / finally / catch nesting; the finally runs on every unwind path through it",
		Program: &ast.Program{
			Classes: []*ast.ClassDecl{{Name: "Foo"}, {Name: "Bar"}},
			Funcs: []*ast.FuncDecl{{
				Name: "main",
				Body: block(&ast.Try{
					Body: block(&ast.Try{
						Body: block(&ast.Try{
							Body: block(call("T")),
							Catches: []*ast.CatchClause{{
								Var:   &ast.VarDecl{Name: "f"},
								Class: "Foo",
								Body:  block(call("A")),
							}},
						}),
						Finally: block(call("F")),
					}),
					Catches: []*ast.CatchClause{{
						Var:   &ast.VarDecl{Name: "b"},
						Class: "Bar",
						Body:  block(call("B")),
					}},
				}),
			}},
		},
	},
	{
		Name:        "escape",
		Description: "caught variable referenced from a nested closure gets dedicated storage",
		Program: &ast.Program{
			Classes: []*ast.ClassDecl{{Name: "Foo"}},
			Funcs: []*ast.FuncDecl{{
				Name: "main",
				Body: block(&ast.Try{
					Body: block(call("T")),
					Catches: []*ast.CatchClause{{
						Var:   &ast.VarDecl{Name: "f", NestedRefs: 1},
						Class: "Foo",
						Body:  block(call("A")),
					}},
				}),
			}},
		},
	},
	{
		Name:        "throw",
		Description: "throw a newly allocated exception from inside a try",
		Program: &ast.Program{
			Classes: []*ast.ClassDecl{{Name: "Foo"}},
			Funcs: []*ast.FuncDecl{{
				Name: "main",
				Body: block(&ast.Try{
					Body: block(&ast.Throw{X: &ast.NewExpr{Class: "Foo"}}),
					Catches: []*ast.CatchClause{{
						Var:   &ast.VarDecl{Name: "f"},
						Class: "Foo",
						Body:  block(call("A")),
					}},
				}),
			}},
		},
	},
}

func findSample(name string) *sample {
	for i := range samples {
		if samples[i].Name == name {
			return &samples[i]
		}
	}
	return nil
}
