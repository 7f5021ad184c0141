package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/ember/ast"
	"github.com/deepnoodle-ai/ember/errz"
	"github.com/deepnoodle-ai/ember/ir"
)

func call(name string) ast.Stmt {
	return &ast.ExprStmt{X: &ast.CallExpr{Callee: name}}
}

func block(stmts ...ast.Stmt) *ast.Block {
	return &ast.Block{Stmts: stmts}
}

func program(classes []string, body *ast.Block) *ast.Program {
	p := &ast.Program{
		Funcs: []*ast.FuncDecl{{Name: "main", Body: body}},
	}
	for _, c := range classes {
		p.Classes = append(p.Classes, &ast.ClassDecl{Name: c})
	}
	return p
}

func compileMain(t *testing.T, p *ast.Program) *ir.Func {
	t.Helper()
	mod, err := Compile(p, nil)
	require.Nil(t, err)
	fn := mod.Func("main")
	require.NotNil(t, fn)
	return fn
}

func blockByName(t *testing.T, fn *ir.Func, name string) *ir.Block {
	t.Helper()
	for _, b := range fn.Blocks {
		if b.Name() == name {
			return b
		}
	}
	t.Fatalf("no block %q in function %q", name, fn.Name())
	return nil
}

// blockTextFrom returns the function's text from the given label on.
func blockTextFrom(t *testing.T, fn *ir.Func, label string) string {
	t.Helper()
	text := fn.String()
	idx := strings.Index(text, label+":")
	require.GreaterOrEqual(t, idx, 0)
	return text[idx:]
}

func TestSingleCatchDispatch(t *testing.T) {
	p := program([]string{"Foo"}, block(&ast.Try{
		Body: block(call("T")),
		Catches: []*ast.CatchClause{{
			Var:   &ast.VarDecl{Name: "f"},
			Class: "Foo",
			Body:  block(call("A")),
		}},
	}))
	fn := compileMain(t, p)
	text := fn.String()

	// The body's call attaches the pad as its unwind target.
	require.Contains(t, text,
		"invoke void @T() to label %invoke.cont unwind label %landingpad")

	pad := blockByName(t, fn, "landingpad").String()
	require.Contains(t, pad, "call i8* @llvm.eh.exception()")
	require.Regexp(t,
		`call i32 @llvm\.eh\.selector\(i8\* %t\d+, i8\* %t\d+, %object\.ClassInfo\* @Foo\.classinfo\)`,
		pad)

	// The exception is stored into the shared cell before any handler
	// can observe it.
	require.Contains(t, pad, "store %object.Object* ")
	require.Contains(t, pad, ", %object.Object** %catchvar")

	// One exact type-id comparison, branching to the handler.
	require.Equal(t, 1, strings.Count(text, "@llvm.eh.typeid.for"))
	require.Contains(t, pad, "icmp eq i32 ")
	require.Contains(t, pad, "label %catch, label %eh.next")

	// On mismatch the unwind resumes and the path never returns.
	next := blockByName(t, fn, "eh.next").String()
	require.Contains(t, next, "call void @_ember_eh_resume_unwind(i8* ")
	require.Contains(t, next, "unreachable")

	// The handler falls through to the try's exit.
	catch := blockByName(t, fn, "catch").String()
	require.Contains(t, catch, "call void @A()")
	require.Contains(t, catch, "br label %try.end")
}

func TestCatchOrderLastDeclaredFirst(t *testing.T) {
	p := program([]string{"Foo", "Bar"}, block(&ast.Try{
		Body: block(call("T")),
		Catches: []*ast.CatchClause{
			{Class: "Foo", Body: block(call("A"))},
			{Class: "Bar", Body: block(call("B"))},
		},
	}))
	fn := compileMain(t, p)
	pad := blockByName(t, fn, "landingpad").String()

	// Bar is declared later, so its handle leads the selector list.
	require.Regexp(t,
		`llvm\.eh\.selector\(.*@Bar\.classinfo, %object\.ClassInfo\* @Foo\.classinfo\)`,
		pad)

	// Bar is also the first type tested: its comparison sits on the
	// pad itself, Foo's on the fall-through chain.
	require.Contains(t, pad, "@Bar.classinfo to i8*")
	text := fn.String()
	barTest := strings.Index(text, "@Bar.classinfo to i8*")
	fooTest := strings.Index(text, "@Foo.classinfo to i8*")
	require.GreaterOrEqual(t, barTest, 0)
	require.GreaterOrEqual(t, fooTest, 0)
	require.Less(t, barTest, fooTest)
}

func TestFinallyUnderCatch(t *testing.T) {
	p := program([]string{"Bar"}, block(&ast.Try{
		Body: block(&ast.Try{
			Body:    block(call("T")),
			Finally: block(call("F")),
		}),
		Catches: []*ast.CatchClause{{
			Var:   &ast.VarDecl{Name: "b"},
			Class: "Bar",
			Body:  block(call("B")),
		}},
	}))
	fn := compileMain(t, p)
	text := fn.String()

	// The inner pad's selector asks for Bar and carries the match-all
	// sentinel for the finally.
	inner := blockTextFrom(t, fn, "landingpad1")
	require.Regexp(t,
		`llvm\.eh\.selector\(i8\* %t\d+, i8\* %t\d+, %object\.ClassInfo\* @Bar\.classinfo, i32 0\)`,
		inner)

	// The finally body is spliced in before the Bar test, and the
	// resume fallback comes after both.
	finallyAt := strings.Index(inner, "invoke void @F()")
	testAt := strings.Index(inner, "@llvm.eh.typeid.for")
	resumeAt := strings.Index(inner, "@_ember_eh_resume_unwind")
	require.GreaterOrEqual(t, finallyAt, 0)
	require.GreaterOrEqual(t, testAt, 0)
	require.GreaterOrEqual(t, resumeAt, 0)
	require.Less(t, finallyAt, testAt)
	require.Less(t, testAt, resumeAt)

	// An exception raised by the finally body itself unwinds to the
	// outer pad, not back into its own region.
	require.Contains(t, inner, "invoke void @F() to label ")
	require.Contains(t, inner, " unwind label %landingpad\n")

	// One finally copy on the unwind chain, one on the fall-through
	// path.
	require.Equal(t, 2, strings.Count(text, "invoke void @F()"))
}

func TestFinallyWithoutCatches(t *testing.T) {
	p := program(nil, block(&ast.Try{
		Body:    block(call("T")),
		Finally: block(call("F")),
	}))
	fn := compileMain(t, p)
	pad := blockByName(t, fn, "landingpad").String()

	// No catch handles: just the sentinel, and no exception store.
	require.Regexp(t,
		`call i32 @llvm\.eh\.selector\(i8\* %t\d+, i8\* %t\d+, i32 0\)`,
		pad)
	require.NotContains(t, fn.String(), "%catchvar")

	// The finally still runs once before the unwind resumes.
	text := blockTextFrom(t, fn, "landingpad")
	require.Less(t,
		strings.Index(text, "call void @F()"),
		strings.Index(text, "@_ember_eh_resume_unwind"))
}

func TestFinallyBetweenCatchLevels(t *testing.T) {
	// catch(Foo) inside finally inside catch(Bar): the finally must be
	// emitted on the middle pad's unwind chain and on the innermost
	// pad's chain above the Bar test.
	p := program([]string{"Foo", "Bar"}, block(&ast.Try{
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
	}))
	fn := compileMain(t, p)

	// Innermost pad: Foo tested first, then the finally runs, then the
	// Bar test, then resume.
	inner := blockTextFrom(t, fn, "landingpad2")
	fooAt := strings.Index(inner, "@Foo.classinfo to i8*")
	finAt := strings.Index(inner, "invoke void @F()")
	barAt := strings.Index(inner, "@Bar.classinfo to i8*")
	resumeAt := strings.Index(inner, "@_ember_eh_resume_unwind")
	require.GreaterOrEqual(t, fooAt, 0)
	require.GreaterOrEqual(t, finAt, 0)
	require.GreaterOrEqual(t, barAt, 0)
	require.GreaterOrEqual(t, resumeAt, 0)
	require.Less(t, fooAt, finAt)
	require.Less(t, finAt, barAt)
	require.Less(t, barAt, resumeAt)

	// Innermost selector carries both handles and the sentinel, with
	// the innermost clause first.
	require.Regexp(t,
		`llvm\.eh\.selector\(i8\* %t\d+, i8\* %t\d+, %object\.ClassInfo\* @Foo\.classinfo, %object\.ClassInfo\* @Bar\.classinfo, i32 0\)`,
		inner)
}

func TestFinallyThatThrowsReplacesUnwind(t *testing.T) {
	p := program([]string{"Bar"}, block(&ast.Try{
		Body:    block(call("T")),
		Finally: block(&ast.Throw{X: &ast.NewExpr{Class: "Bar"}}),
	}))
	fn := compileMain(t, p)

	// The unwind chain ends at the throw; nothing resumes the original
	// exception.
	pad := blockTextFrom(t, fn, "landingpad")
	require.Contains(t, pad, "call void @_ember_throw(")
	require.Contains(t, pad, "unreachable")
	require.NotContains(t, fn.String(), "@_ember_eh_resume_unwind")
}

func TestFinallyThatReturnsEndsUnwind(t *testing.T) {
	p := program(nil, block(&ast.Try{
		Body:    block(call("T")),
		Finally: block(&ast.Return{}),
	}))
	fn := compileMain(t, p)
	pad := blockByName(t, fn, "landingpad").String()
	require.Contains(t, pad, "ret void")
	require.NotContains(t, fn.String(), "@_ember_eh_resume_unwind")
}

func TestThrowingFinallyUnwindsToEnclosingPad(t *testing.T) {
	// catch(Foo) outside a finally that throws: the replacement
	// exception unwinds to the outer pad, and the inner chain never
	// reaches the Foo test.
	p := program([]string{"Foo", "Bar"}, block(&ast.Try{
		Body: block(&ast.Try{
			Body:    block(call("T")),
			Finally: block(&ast.Throw{X: &ast.NewExpr{Class: "Bar"}}),
		}),
		Catches: []*ast.CatchClause{{
			Var:   &ast.VarDecl{Name: "f"},
			Class: "Foo",
			Body:  block(call("A")),
		}},
	}))
	fn := compileMain(t, p)
	text := fn.String()

	require.Regexp(t,
		`invoke void @_ember_throw\(%object\.Object\* %t\d+\) to label %invoke\.cont\d* unwind label %landingpad\n`,
		text)

	// Exactly one Foo test, on the outer pad's chain.
	require.Equal(t, 1, strings.Count(text, "@llvm.eh.typeid.for"))
	inner := blockTextFrom(t, fn, "landingpad1")
	require.NotContains(t, inner, "@llvm.eh.typeid.for")
	require.NotContains(t, inner, "@_ember_eh_resume_unwind")
}

func TestExceptionStorageIdempotent(t *testing.T) {
	cg := New(nil)
	fn := cg.mod.NewFunc("t", ir.FuncType{Ret: ir.Void})
	entry := fn.NewBlock("entry")
	cg.fs = &funcState{fn: fn, entry: entry, vars: map[string]ir.Value{}}
	cg.fs.regions = newRegionStack(cg, fn)
	cg.b.AtEnd(entry)

	s1 := cg.fs.regions.ExceptionStorage()
	s2 := cg.fs.regions.ExceptionStorage()
	require.Same(t, s1, s2)

	// One slot, allocated in the entry block.
	require.Equal(t, 1, strings.Count(entry.String(), "alloca"))
}

func TestCatchVariableSharesStorage(t *testing.T) {
	// No nested refs: the variable views the shared slot directly.
	p := program([]string{"Foo"}, block(&ast.Try{
		Body: block(call("T")),
		Catches: []*ast.CatchClause{{
			Var:   &ast.VarDecl{Name: "f"},
			Class: "Foo",
			Body:  block(call("A")),
		}},
	}))
	fn := compileMain(t, p)
	catch := blockByName(t, fn, "catch").String()
	require.Contains(t, catch, "bitcast %object.Object** %catchvar to %Foo**")
	require.NotContains(t, catch, "load")
	require.NotContains(t, fn.String(), "alloca %Foo*")
}

func TestCatchVariableEscapesToClosure(t *testing.T) {
	// Nested refs: dedicated storage, with a copy on handler entry.
	p := program([]string{"Foo"}, block(&ast.Try{
		Body: block(call("T")),
		Catches: []*ast.CatchClause{{
			Var:   &ast.VarDecl{Name: "f", NestedRefs: 1},
			Class: "Foo",
			Body:  block(call("A")),
		}},
	}))
	fn := compileMain(t, p)
	require.Contains(t, fn.String(), "%f = alloca %Foo*")
	catch := blockByName(t, fn, "catch").String()
	require.Contains(t, catch, "load %object.Object** %catchvar")
	require.Contains(t, catch, ", %Foo** %f")
}

func TestLeaveWithoutEnter(t *testing.T) {
	cg := New(nil)
	fn := cg.mod.NewFunc("t", ir.FuncType{Ret: ir.Void})
	fn.NewBlock("entry")
	rs := newRegionStack(cg, fn)
	require.PanicsWithError(t,
		`internal error: region-nesting: Leave without matching Enter in function "t"`,
		func() { rs.Leave() })
}

func TestUnresolvedCatchTypeIsFatal(t *testing.T) {
	// The class is never declared: the frontend contract is broken, so
	// this must abort rather than surface as a user error.
	p := program(nil, block(&ast.Try{
		Body: block(call("T")),
		Catches: []*ast.CatchClause{{
			Class: "Nope",
			Body:  block(call("A")),
		}},
	}))
	defer func() {
		r := recover()
		require.NotNil(t, r)
		ice, ok := r.(*errz.InternalError)
		require.True(t, ok)
		require.Equal(t, "catch-type-resolved", ice.Invariant)
	}()
	Compile(p, nil)
	t.Fatal("expected a panic")
}

func TestCurrentTargetTracksNesting(t *testing.T) {
	cg := New(nil)
	fn := cg.mod.NewFunc("t", ir.FuncType{Ret: ir.Void})
	entry := fn.NewBlock("entry")
	cg.fs = &funcState{fn: fn, entry: entry, vars: map[string]ir.Value{}}
	rs := newRegionStack(cg, fn)
	cg.fs.regions = rs
	cg.b.AtEnd(entry)

	require.Nil(t, rs.Current())

	pad1 := fn.NewBlock("pad1")
	rs.AddFinally(block())
	require.Nil(t, rs.Enter(pad1))
	require.Same(t, pad1, rs.Current())

	pad2 := fn.NewBlock("pad2")
	rs.AddFinally(block())
	require.Nil(t, rs.Enter(pad2))
	require.Same(t, pad2, rs.Current())

	rs.Leave()
	require.Same(t, pad1, rs.Current())
	rs.Leave()
	require.Nil(t, rs.Current())
	rs.checkBalanced()
}
