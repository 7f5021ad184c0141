package codegen

import (
	"github.com/deepnoodle-ai/ember/ast"
	"github.com/deepnoodle-ai/ember/errz"
	"github.com/deepnoodle-ai/ember/ir"
)

// The base object and class-info types. Class layout is opaque to the
// backend; these exist to give exception objects and runtime type
// handles distinct pointer types.
var (
	objectType    = ir.ClassType{Name: "object.Object"}
	classInfoType = ir.ClassType{Name: "object.ClassInfo"}
)

// classPtr returns the pointer type for instances of the named class.
func classPtr(name string) ir.PointerType {
	return ir.Ptr(ir.ClassType{Name: name})
}

// declareClass materializes the class's runtime type handle: a
// read-only module symbol the unwinder compares exception types
// against.
func (cg *Codegen) declareClass(cd *ast.ClassDecl) error {
	if _, exists := cg.classes[cd.Name]; exists {
		return errz.Compilef("class %q redefined", cd.Name)
	}
	info := cg.mod.NewGlobal(cd.Name+".classinfo", classInfoType, true)
	cg.classes[cd.Name] = info
	return nil
}

// resolveCatchType returns the runtime type handle for a catch
// clause's class. The frontend guarantees resolvability; a miss here
// is a bug in an earlier pass, never a user error.
func (cg *Codegen) resolveCatchType(name string) *ir.Global {
	info := cg.classes[name]
	if info == nil {
		errz.ICE("catch-type-resolved",
			"catch clause names unresolved class %q", name)
	}
	return info
}
