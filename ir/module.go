package ir

import (
	"fmt"
	"strings"
)

// Module is one compilation unit's worth of globals and functions.
type Module struct {
	Name    string
	Globals []*Global
	Funcs   []*Func

	globalIndex map[string]*Global
	funcIndex   map[string]*Func
}

// NewModule creates an empty module.
func NewModule(name string) *Module {
	return &Module{
		Name:        name,
		globalIndex: map[string]*Global{},
		funcIndex:   map[string]*Func{},
	}
}

// NewFunc creates a function definition in the module. The name must
// be unique.
func (m *Module) NewFunc(name string, sig FuncType) *Func {
	if _, exists := m.funcIndex[name]; exists {
		panic(fmt.Sprintf("ir: function %q redefined", name))
	}
	fn := newFunc(name, sig)
	m.Funcs = append(m.Funcs, fn)
	m.funcIndex[name] = fn
	return fn
}

// Declare returns the external function declaration for name,
// creating it on first use. Redeclaring with a different signature is
// a programming error.
func (m *Module) Declare(name string, sig FuncType) *Func {
	if fn, exists := m.funcIndex[name]; exists {
		return fn
	}
	fn := newFunc(name, sig)
	m.Funcs = append(m.Funcs, fn)
	m.funcIndex[name] = fn
	return fn
}

// Func returns the named function, or nil.
func (m *Module) Func(name string) *Func {
	return m.funcIndex[name]
}

// NewGlobal creates a module-level symbol. The name must be unique.
func (m *Module) NewGlobal(name string, contents Type, constant bool) *Global {
	if _, exists := m.globalIndex[name]; exists {
		panic(fmt.Sprintf("ir: global %q redefined", name))
	}
	g := &Global{GlobalName: name, Contents: contents, Constant: constant, External: true}
	m.Globals = append(m.Globals, g)
	m.globalIndex[name] = g
	return g
}

// Global returns the named global, or nil.
func (m *Module) Global(name string) *Global {
	return m.globalIndex[name]
}

func (m *Module) String() string {
	var out strings.Builder
	out.WriteString("; module " + m.Name + "\n")
	for _, g := range m.Globals {
		out.WriteString(g.define())
		out.WriteString("\n")
	}
	if len(m.Globals) > 0 {
		out.WriteString("\n")
	}
	// Declarations first, then definitions, each in creation order.
	for _, fn := range m.Funcs {
		if fn.Declared() {
			out.WriteString(fn.String())
		}
	}
	for _, fn := range m.Funcs {
		if !fn.Declared() {
			out.WriteString("\n")
			out.WriteString(fn.String())
		}
	}
	return out.String()
}
