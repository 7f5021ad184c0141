package codegen

import "github.com/deepnoodle-ai/ember/ir"

// Runtime symbol names. The llvm.eh intrinsics and the argument
// encoding of the selector call are fixed by the target's unwind
// model; the _ember_* functions are the language runtime's side of
// the same contract.
const (
	ehExceptionName  = "llvm.eh.exception"
	ehSelectorName   = "llvm.eh.selector"
	ehTypeidForName  = "llvm.eh.typeid.for"
	personalityName  = "_ember_eh_personality"
	resumeUnwindName = "_ember_eh_resume_unwind"
	throwName        = "_ember_throw"
	allocClassName   = "_ember_allocclass"
)

// runtimeDecls holds the module's external declarations for the
// unwinder contract and the language runtime.
type runtimeDecls struct {
	// i8* llvm.eh.exception(): the raw in-flight exception pointer.
	ehException *ir.Func

	// i32 llvm.eh.selector(i8*, i8*, ...): classify the exception
	// against a personality routine and a list of type handles and
	// sentinels; yields the selector.
	ehSelector *ir.Func

	// i32 llvm.eh.typeid.for(i8*): the selector value a given type
	// handle would produce.
	ehTypeidFor *ir.Func

	// The personality routine consulted by the unwinder. Only its
	// address is taken.
	personality *ir.Func

	// void _ember_eh_resume_unwind(i8*): continue propagation of an
	// unhandled exception. Never returns.
	resumeUnwind *ir.Func

	// void _ember_throw(%object.Object*): raise an exception object.
	// Never returns.
	throwFn *ir.Func

	// %object.Object* _ember_allocclass(%object.ClassInfo*): allocate
	// an instance of a class.
	allocClass *ir.Func
}

func newRuntimeDecls(m *ir.Module) *runtimeDecls {
	return &runtimeDecls{
		ehException: m.Declare(ehExceptionName, ir.FuncType{
			Ret: ir.I8Ptr,
		}),
		ehSelector: m.Declare(ehSelectorName, ir.FuncType{
			Params:   []ir.Type{ir.I8Ptr, ir.I8Ptr},
			Ret:      ir.I32,
			Variadic: true,
		}),
		ehTypeidFor: m.Declare(ehTypeidForName, ir.FuncType{
			Params: []ir.Type{ir.I8Ptr},
			Ret:    ir.I32,
		}),
		personality: m.Declare(personalityName, ir.FuncType{
			Ret:      ir.I32,
			Variadic: true,
		}),
		resumeUnwind: m.Declare(resumeUnwindName, ir.FuncType{
			Params: []ir.Type{ir.I8Ptr},
			Ret:    ir.Void,
		}),
		throwFn: m.Declare(throwName, ir.FuncType{
			Params: []ir.Type{ir.Ptr(objectType)},
			Ret:    ir.Void,
		}),
		allocClass: m.Declare(allocClassName, ir.FuncType{
			Params: []ir.Type{ir.Ptr(classInfoType)},
			Ret:    ir.Ptr(objectType),
		}),
	}
}
