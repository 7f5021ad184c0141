package codegen

import (
	"github.com/deepnoodle-ai/ember/ast"
	"github.com/deepnoodle-ai/ember/errz"
	"github.com/deepnoodle-ai/ember/ir"
)

// compileBlock compiles each statement in order. Statements after a
// terminator are unreachable and dropped.
func (cg *Codegen) compileBlock(node *ast.Block) error {
	for _, stmt := range node.Stmts {
		if cg.b.Terminated() {
			break
		}
		if err := cg.compile(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (cg *Codegen) compileExprStmt(node *ast.ExprStmt) error {
	_, err := cg.compileExpr(node.X)
	return err
}

// compileReturn leaves the function. Finally bodies of every open
// region still run, innermost first, before control exits. Each body
// is compiled with the nesting popped to its enclosing level, so a
// throw inside it unwinds past its own pad instead of re-entering it.
func (cg *Codegen) compileReturn(_ *ast.Return) error {
	rs := cg.fs.regions
	active := rs.active
	checkpoints := rs.checkpoints
	pads := rs.pads
	defer func() {
		rs.active = active
		rs.checkpoints = checkpoints
		rs.pads = pads
	}()

	for i := len(active) - 1; i >= 0; i-- {
		ri := active[i]
		if !ri.isFinally() {
			continue
		}
		for len(rs.checkpoints) > 0 && rs.checkpoints[len(rs.checkpoints)-1] > i {
			rs.Leave()
		}
		if len(rs.checkpoints) > 0 {
			rs.Leave()
		}
		if err := cg.compileBlock(ri.finallyBody); err != nil {
			return err
		}
		if cg.b.Terminated() {
			return nil
		}
	}
	cg.b.Ret(nil)
	return nil
}

// compileThrow raises the exception object produced by the operand.
func (cg *Codegen) compileThrow(node *ast.Throw) error {
	v, err := cg.compileExpr(node.X)
	if err != nil {
		return err
	}
	obj := cg.b.Bitcast(v, ir.Ptr(objectType))
	cg.emitCall(cg.rt.throwFn, obj)
	if !cg.b.Terminated() {
		cg.b.Unreachable()
	}
	return nil
}

// compileTry lowers a try statement. A try carrying both catches and
// a finally is split into a catch-only try protected by a
// finally-only one, so each committed region level is homogeneous.
func (cg *Codegen) compileTry(node *ast.Try) error {
	if node.Finally != nil && len(node.Catches) > 0 {
		inner := &ast.Try{Body: node.Body, Catches: node.Catches}
		outer := &ast.Try{
			Body:    &ast.Block{Stmts: []ast.Stmt{inner}},
			Finally: node.Finally,
		}
		return cg.compileTry(outer)
	}

	fs := cg.fs
	end := fs.fn.NewBlock("try.end")

	// Queue the clauses in declaration order. Catch handlers are
	// compiled here, before the try body: clause registration owns
	// handler construction.
	if node.Finally != nil {
		fs.regions.AddFinally(node.Finally)
	} else {
		for _, c := range node.Catches {
			if err := fs.regions.AddCatch(c, end); err != nil {
				return err
			}
		}
	}

	// Commit the clauses and materialize dispatch at a fresh landing
	// pad, which becomes the unwind target for the body.
	pad := fs.fn.NewBlockBefore("landingpad", end)
	if err := fs.regions.Enter(pad); err != nil {
		return err
	}
	if err := cg.compileBlock(node.Body); err != nil {
		return err
	}
	fs.regions.Leave()

	// The unwind paths got their finally copies during dispatch
	// construction; the fall-through path needs its own.
	if node.Finally != nil && !cg.b.Terminated() {
		if err := cg.compileBlock(node.Finally); err != nil {
			return err
		}
	}

	if !cg.b.Terminated() {
		cg.b.Br(end)
	}
	cg.b.AtEnd(end)
	return nil
}

// compileExpr compiles an expression and returns its value.
func (cg *Codegen) compileExpr(node ast.Expr) (ir.Value, error) {
	switch node := node.(type) {
	case *ast.IntLit:
		return ir.NewConstInt(ir.I64, node.Value), nil
	case *ast.Ident:
		return cg.compileIdent(node)
	case *ast.CallExpr:
		return cg.compileCall(node)
	case *ast.NewExpr:
		return cg.compileNew(node)
	default:
		errz.ICE("known-expression", "unknown ast node type: %T", node)
		return nil, nil
	}
}

func (cg *Codegen) compileIdent(node *ast.Ident) (ir.Value, error) {
	slot, found := cg.fs.vars[node.Name]
	if !found {
		return nil, errz.Compilef("undefined variable %q", node.Name)
	}
	return cg.b.Load(slot), nil
}

func (cg *Codegen) compileCall(node *ast.CallExpr) (ir.Value, error) {
	args := make([]ir.Value, 0, len(node.Args))
	argTypes := make([]ir.Type, 0, len(node.Args))
	for _, a := range node.Args {
		v, err := cg.compileExpr(a)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
		argTypes = append(argTypes, v.Type())
	}
	callee := cg.mod.Func(node.Callee)
	if callee == nil {
		callee = cg.mod.Declare(node.Callee, ir.FuncType{Params: argTypes, Ret: ir.Void})
	}
	return cg.emitCall(callee, args...), nil
}

func (cg *Codegen) compileNew(node *ast.NewExpr) (ir.Value, error) {
	info := cg.classes[node.Class]
	if info == nil {
		return nil, errz.Compilef("undefined class %q", node.Class)
	}
	obj := cg.emitCall(cg.rt.allocClass, info)
	return cg.b.Bitcast(obj, classPtr(node.Class)), nil
}

// emitCall emits a call to the given function. While a landing pad is
// current the call becomes an invoke unwinding to it, with a fresh
// continuation block for the normal edge.
func (cg *Codegen) emitCall(callee *ir.Func, args ...ir.Value) ir.Value {
	if pad := cg.fs.regions.Current(); pad != nil {
		normal := cg.fs.fn.NewBlock("invoke.cont")
		inv := cg.b.Invoke(callee, args, normal, pad)
		cg.b.AtEnd(normal)
		return inv
	}
	return cg.b.Call(callee, args...)
}
