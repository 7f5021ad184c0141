// Package codegen lowers an Ember AST into LLVM-style IR, with
// zero-cost Itanium-model exception handling as its central concern.
//
// # Lowering model
//
// Each function is compiled independently: a Codegen walks the
// statement tree with a compile(node) dispatch switch and emits
// instructions through an ir.Builder. All mutable per-function state
// hangs off a funcState, including the RegionStack that tracks
// exception-handling nesting, so independent functions can be lowered
// concurrently by independent Codegen instances without coordination.
//
// # Exception handling
//
// A try statement registers its clauses on the RegionStack, commits
// them with Enter at a fresh landing-pad block, and compiles its body
// while that pad is the current unwind target. Potentially-throwing
// operations compiled in that window lower to invokes that unwind to
// the pad. Leave pops the nesting on the way out. The dispatch code
// materialized at each pad classifies the in-flight exception via the
// personality routine and branches to the matching handler, splicing
// finally bodies along every unwind path that crosses them; when
// nothing matches, it resumes unwinding into the caller.
package codegen

import (
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/deepnoodle-ai/ember/ast"
	"github.com/deepnoodle-ai/ember/errz"
	"github.com/deepnoodle-ai/ember/ir"
)

// Config holds codegen configuration options.
type Config struct {
	// ModuleName names the emitted IR module. Defaults to "main".
	ModuleName string

	// Logger receives debug-level diagnostics. Defaults to a nop
	// logger.
	Logger *zerolog.Logger
}

// Codegen lowers one program into one ir.Module.
type Codegen struct {
	mod     *ir.Module
	rt      *runtimeDecls
	classes map[string]*ir.Global
	b       *ir.Builder
	log     zerolog.Logger

	// State for the function currently being compiled. Nil between
	// functions.
	fs *funcState
}

// funcState is the mutable state of one function's compilation. The
// RegionStack lives here, not on the Codegen, so that nothing about
// exception-handling nesting is shared across functions.
type funcState struct {
	fn      *ir.Func
	entry   *ir.Block
	regions *RegionStack
	vars    map[string]ir.Value // name -> stack slot
}

// Compile lowers the given program and returns the IR module. Pass
// nil for cfg to use default settings. Failures in distinct functions
// are accumulated and reported together.
func Compile(program *ast.Program, cfg *Config) (*ir.Module, error) {
	cg := New(cfg)
	return cg.CompileProgram(program)
}

// New creates and returns a new Codegen. Pass nil for cfg to use
// defaults.
func New(cfg *Config) *Codegen {
	name := "main"
	log := zerolog.Nop()
	if cfg != nil {
		if cfg.ModuleName != "" {
			name = cfg.ModuleName
		}
		if cfg.Logger != nil {
			log = *cfg.Logger
		}
	}
	mod := ir.NewModule(name)
	return &Codegen{
		mod:     mod,
		rt:      newRuntimeDecls(mod),
		classes: map[string]*ir.Global{},
		b:       ir.NewBuilder(),
		log:     log,
	}
}

// Module returns the IR module being compiled into.
func (cg *Codegen) Module() *ir.Module {
	return cg.mod
}

// CompileProgram lowers every class and function declaration of the
// program into the module.
func (cg *Codegen) CompileProgram(program *ast.Program) (*ir.Module, error) {
	var result error
	for _, cd := range program.Classes {
		if err := cg.declareClass(cd); err != nil {
			result = multierror.Append(result, err)
		}
	}
	for _, fd := range program.Funcs {
		if err := cg.compileFunc(fd); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if result != nil {
		return nil, result
	}
	return cg.mod, nil
}

// compileFunc lowers one function body.
func (cg *Codegen) compileFunc(fd *ast.FuncDecl) error {
	fn := cg.mod.NewFunc(fd.Name, ir.FuncType{Ret: ir.Void})
	cg.log.Debug().Str("function", fd.Name).Str("id", fn.ID()).Msg("compiling function")
	fs := &funcState{
		fn:   fn,
		vars: map[string]ir.Value{},
	}
	fs.entry = fn.NewBlock("entry")
	fs.regions = newRegionStack(cg, fn)
	cg.fs = fs
	defer func() { cg.fs = nil }()

	cg.b.AtEnd(fs.entry)
	if err := cg.compileBlock(fd.Body); err != nil {
		if ce, ok := err.(*errz.CompileError); ok {
			return ce.InFunc(fd.Name)
		}
		return err
	}
	if !cg.b.Terminated() {
		cg.b.Ret(nil)
	}
	// Every Enter must have been matched by a Leave by now.
	fs.regions.checkBalanced()
	return nil
}

// compile the given statement node.
func (cg *Codegen) compile(node ast.Stmt) error {
	switch node := node.(type) {
	case *ast.Block:
		return cg.compileBlock(node)
	case *ast.ExprStmt:
		return cg.compileExprStmt(node)
	case *ast.Return:
		return cg.compileReturn(node)
	case *ast.Throw:
		return cg.compileThrow(node)
	case *ast.Try:
		return cg.compileTry(node)
	default:
		errz.ICE("known-statement", "unknown ast node type: %T", node)
		return nil
	}
}
