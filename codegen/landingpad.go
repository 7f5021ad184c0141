package codegen

import (
	"github.com/deepnoodle-ai/ember/ast"
	"github.com/deepnoodle-ai/ember/errz"
	"github.com/deepnoodle-ai/ember/ir"
)

// RegionInfo is the immutable record of one committed exception
// handling clause: either a catch, with a handler block and its
// resolved runtime type handle, or a finally, with the statements to
// splice onto every unwind path that crosses it.
type RegionInfo struct {
	// Catch: handler entry block. Nil for finally regions.
	target *ir.Block

	// Catch: the class-info symbol the selector value is matched
	// against. Never nil for catch regions.
	catchType *ir.Global

	// Finally: statements to recompile on each unwind path. Nil for
	// catch regions. Finally code is multi-target, so nothing is
	// compiled until dispatch construction places each copy.
	finallyBody *ast.Block
}

func (ri *RegionInfo) isFinally() bool { return ri.finallyBody != nil }

// RegionStack tracks the exception-handling region nesting of one
// function under compilation. Clauses of a try being opened gather in
// the pending list; Enter commits them onto the active sequence,
// materializes dispatch code at the landing pad, and makes the pad
// the unwind target for everything compiled until the matching Leave.
//
// The active sequence is one ordered list read in two directions:
// appended in lexical entry order, walked in reverse during dispatch
// so the innermost region's last-declared clause is tested first.
type RegionStack struct {
	cg *Codegen
	fn *ir.Func

	// Clauses queued for the try currently being opened, in
	// declaration order.
	pending []*RegionInfo

	// Committed regions of every enclosing try, in entry order.
	active []*RegionInfo

	// Active-sequence length at each Enter, used by Leave to restore
	// the enclosing nesting exactly.
	checkpoints []int

	// Landing pads of the enclosing trys; the top is the current
	// unwind target.
	pads []*ir.Block

	// The function's shared exception slot, allocated on first use.
	storage *ir.Alloca
}

func newRegionStack(cg *Codegen, fn *ir.Func) *RegionStack {
	return &RegionStack{cg: cg, fn: fn}
}

// AddCatch queues a catch clause for the try being opened and
// compiles its handler: storage for the bound variable, the handler
// body, and a branch to the try's exit when the body falls through.
func (rs *RegionStack) AddCatch(c *ast.CatchClause, end *ir.Block) error {
	ri, err := rs.newCatchRegion(c, end)
	if err != nil {
		return err
	}
	rs.pending = append(rs.pending, ri)
	return nil
}

// AddFinally queues a finally clause for the try being opened. The
// body is only referenced here; each of its copies is compiled later,
// once per unwind path it lies on.
func (rs *RegionStack) AddFinally(body *ast.Block) {
	rs.pending = append(rs.pending, &RegionInfo{finallyBody: body})
}

// Enter commits the queued clauses onto the active sequence, builds
// the dispatch code at pad, and pushes pad as the current unwind
// target. Every Enter must be matched by exactly one Leave, in LIFO
// order.
func (rs *RegionStack) Enter(pad *ir.Block) error {
	rs.checkpoints = append(rs.checkpoints, len(rs.active))
	rs.active = append(rs.active, rs.pending...)
	rs.pending = nil
	if err := rs.constructDispatch(pad); err != nil {
		return err
	}
	rs.pads = append(rs.pads, pad)
	return nil
}

// Leave pops the current unwind target and discards the regions the
// matching Enter committed.
func (rs *RegionStack) Leave() {
	if len(rs.pads) == 0 || len(rs.checkpoints) == 0 {
		errz.ICE("region-nesting",
			"Leave without matching Enter in function %q", rs.fn.Name())
	}
	rs.pads = rs.pads[:len(rs.pads)-1]
	n := rs.checkpoints[len(rs.checkpoints)-1]
	rs.checkpoints = rs.checkpoints[:len(rs.checkpoints)-1]
	rs.active = rs.active[:n]
}

// Current returns the landing pad that throwing operations must
// unwind to, or nil when exceptions propagate on the default path.
func (rs *RegionStack) Current() *ir.Block {
	if len(rs.pads) == 0 {
		return nil
	}
	return rs.pads[len(rs.pads)-1]
}

// ExceptionStorage returns the function's shared exception slot,
// allocating it in the entry block on first use. All catches of the
// function share this one slot; dispatch stores the live exception
// into it before any handler can observe it.
func (rs *RegionStack) ExceptionStorage() *ir.Alloca {
	if rs.storage == nil {
		rs.cg.log.Debug().Str("function", rs.fn.Name()).Msg("allocating exception storage")
		rs.storage = rs.cg.b.AllocaEntry(rs.fn, ir.Ptr(objectType), "catchvar")
	}
	return rs.storage
}

// checkBalanced verifies that every Enter was matched by a Leave.
func (rs *RegionStack) checkBalanced() {
	if len(rs.pads) != 0 || len(rs.checkpoints) != 0 || len(rs.active) != 0 {
		errz.ICE("region-nesting",
			"unbalanced Enter/Leave at end of function %q", rs.fn.Name())
	}
}

// newCatchRegion builds the handler for one catch clause in a fresh
// block placed before the try's exit block.
func (rs *RegionStack) newCatchRegion(c *ast.CatchClause, end *ir.Block) (*RegionInfo, error) {
	cg := rs.cg
	fs := cg.fs
	target := fs.fn.NewBlockBefore("catch", end)
	saved := cg.b.Block()
	cg.b.AtEnd(target)

	if c.Var != nil {
		prev, shadowed := fs.vars[c.Var.Name]
		if c.Var.NestedRefs == 0 {
			// The variable never escapes into a nested closure: view
			// the shared slot through the declared type, no copy.
			cell := rs.ExceptionStorage()
			fs.vars[c.Var.Name] = cg.b.Bitcast(cell, ir.Ptr(classPtr(c.Class)))
		} else {
			// The variable is referenced from nested closures, so it
			// needs its own storage. Copy the stored exception over on
			// entry to the handler.
			slot := cg.b.AllocaEntry(fs.fn, classPtr(c.Class), c.Var.Name)
			exc := cg.b.Load(rs.ExceptionStorage())
			cg.b.Store(cg.b.Bitcast(exc, classPtr(c.Class)), slot)
			fs.vars[c.Var.Name] = slot
		}
		defer func() {
			if shadowed {
				fs.vars[c.Var.Name] = prev
			} else {
				delete(fs.vars, c.Var.Name)
			}
		}()
	}

	if err := cg.compileBlock(c.Body); err != nil {
		return nil, err
	}
	if !cg.b.Terminated() {
		cg.b.Br(end)
	}

	handle := cg.resolveCatchType(c.Class)
	cg.b.AtEnd(saved)
	return &RegionInfo{target: target, catchType: handle}, nil
}

// constructDispatch materializes the classification code at the
// landing pad: fetch the in-flight exception, ask the personality
// routine to classify it against the active catch types, then walk
// the regions innermost first, splicing finally bodies inline and
// chaining exact type-id comparisons, falling through to resuming the
// unwind when nothing matches. The caller's insertion point is
// restored on completion.
func (rs *RegionStack) constructDispatch(pad *ir.Block) error {
	cg := rs.cg
	saved := cg.b.Block()
	cg.b.AtEnd(pad)

	ehptr := cg.b.Call(cg.rt.ehException)

	// Selector arguments: the catch type handles, prepended so later
	// declared and more deeply nested clauses come first; then, if any
	// finally is active, one match-all sentinel, because a finally
	// must run even when no catch matches.
	var args []ir.Value
	hasCatch := false
	hasFinally := false
	for _, ri := range rs.active {
		if ri.isFinally() {
			hasFinally = true
			continue
		}
		hasCatch = true
		if ri.catchType == nil {
			errz.ICE("catch-type-resolved",
				"catch region without runtime type handle in function %q", rs.fn.Name())
		}
		args = append([]ir.Value{ri.catchType}, args...)
	}
	if hasFinally {
		args = append(args, ir.NewConstInt(ir.I32, 0))
	}

	// The exception pointer and the personality routine lead the
	// argument list. The unwinder fixes this encoding; it must be
	// reproduced exactly.
	person := cg.b.Bitcast(cg.rt.personality, ir.I8Ptr)
	args = append([]ir.Value{ehptr, person}, args...)

	sel := cg.b.Call(cg.rt.ehSelector, args...)

	// Catch handlers observe the exception only through the shared
	// slot; refresh it before any of them can run.
	if hasCatch && rs.storage != nil {
		obj := cg.b.Bitcast(ehptr, ir.Ptr(objectType))
		cg.b.Store(obj, rs.storage)
	}

	// Walk the active sequence innermost first over a snapshot: while
	// a finally body is compiled, the sequence is truncated to the
	// enclosing level so the body's own throwing operations unwind
	// past it, not into it.
	active := append([]*RegionInfo(nil), rs.active...)
	checkpoints := append([]int(nil), rs.checkpoints...)
	terminated := false
	for i := len(active) - 1; i >= 0; i-- {
		ri := active[i]
		if ri.isFinally() {
			n := rs.checkpoints[len(rs.checkpoints)-1]
			rs.checkpoints = rs.checkpoints[:len(rs.checkpoints)-1]
			rs.active = rs.active[:n]
			if err := cg.compileBlock(ri.finallyBody); err != nil {
				return err
			}
			// A body that throws or returns ends this chain. The
			// remaining tests are unreachable.
			if cg.b.Terminated() {
				terminated = true
				break
			}
			continue
		}
		next := rs.fn.NewBlock("eh.next")
		info := cg.b.Bitcast(ri.catchType, ir.I8Ptr)
		id := cg.b.Call(cg.rt.ehTypeidFor, info)
		cg.b.CondBr(cg.b.ICmpEQ(sel, id), ri.target, next)
		cg.b.AtEnd(next)
	}
	rs.active = active
	rs.checkpoints = checkpoints

	// No catch matched and every finally ran through: resume the unwind.
	if !terminated {
		cg.b.Call(cg.rt.resumeUnwind, ehptr)
		cg.b.Unreachable()
	}

	cg.b.AtEnd(saved)
	return nil
}
