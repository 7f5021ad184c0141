package ir

import (
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
)

// Func is a function definition or external declaration. A declared
// function has no blocks.
type Func struct {
	id     string
	name   string
	Sig    FuncType
	Params []*Param
	Blocks []*Block

	// Per-function name allocation for values and blocks.
	tmpCount int
	names    map[string]int
}

func newFunc(name string, sig FuncType) *Func {
	fn := &Func{
		id:    uuid.Must(uuid.NewV4()).String(),
		name:  name,
		Sig:   sig,
		names: map[string]int{},
	}
	for i, p := range sig.Params {
		fn.Params = append(fn.Params, &Param{
			ParamName: fmt.Sprintf("arg%d", i),
			Typ:       p,
		})
	}
	return fn
}

// ID returns the unique identifier assigned to this function.
func (f *Func) ID() string { return f.id }

// Name returns the function's symbol name.
func (f *Func) Name() string { return f.name }

// Type returns the type of the function symbol: a pointer to its
// signature, which is what taking the function's address yields.
func (f *Func) Type() Type { return Ptr(f.Sig) }

// Ident returns the function's rendering as an operand.
func (f *Func) Ident() string { return "@" + f.name }

// Declared reports whether this is an external declaration with no
// body.
func (f *Func) Declared() bool { return len(f.Blocks) == 0 }

// NewBlock appends a new block with a unique label derived from name.
func (f *Func) NewBlock(name string) *Block {
	b := &Block{name: f.uniqueName(name), Parent: f}
	f.Blocks = append(f.Blocks, b)
	return b
}

// NewBlockBefore inserts a new block immediately before another one,
// keeping handler and dispatch blocks textually ahead of the region's
// exit block.
func (f *Func) NewBlockBefore(name string, before *Block) *Block {
	b := &Block{name: f.uniqueName(name), Parent: f}
	for i, blk := range f.Blocks {
		if blk == before {
			f.Blocks = append(f.Blocks[:i], append([]*Block{b}, f.Blocks[i:]...)...)
			return b
		}
	}
	panic(fmt.Sprintf("ir: block %q is not in function %q", before.Name(), f.name))
}

// nextTmp allocates the next temporary value name.
func (f *Func) nextTmp() string {
	name := fmt.Sprintf("t%d", f.tmpCount)
	f.tmpCount++
	return name
}

// uniqueName returns base, suffixed with a counter if base was used
// before in this function.
func (f *Func) uniqueName(base string) string {
	n := f.names[base]
	f.names[base] = n + 1
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s%d", base, n)
}

func (f *Func) header() string {
	var out strings.Builder
	out.WriteString(f.Sig.Ret.String())
	out.WriteString(" ")
	out.WriteString(f.Ident())
	out.WriteString("(")
	for i, p := range f.Params {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(p.Typ.String())
		out.WriteString(" ")
		out.WriteString(p.Ident())
	}
	if f.Sig.Variadic {
		if len(f.Params) > 0 {
			out.WriteString(", ")
		}
		out.WriteString("...")
	}
	out.WriteString(")")
	return out.String()
}

func (f *Func) String() string {
	if f.Declared() {
		return "declare " + f.header() + "\n"
	}
	var out strings.Builder
	out.WriteString("define ")
	out.WriteString(f.header())
	out.WriteString(" {\n")
	for i, b := range f.Blocks {
		if i > 0 {
			out.WriteString("\n")
		}
		out.WriteString(b.String())
	}
	out.WriteString("}\n")
	return out.String()
}
