// Package ir defines the intermediate representation that codegen
// lowers into: a module of functions and globals, functions made of
// basic blocks, blocks made of instructions ending in a single
// terminator. The shape and the textual rendering follow the LLVM
// assembly model, including invoke terminators with explicit unwind
// destinations, which is what the exception-handling lowering is
// built around.
//
// Values are immutable once emitted. Construction happens through
// Builder, which tracks a current insertion block and assigns names
// to instruction results. Everything here is plain in-memory graph
// building: no passes, no verification beyond basic structural
// checks, no serialization other than String.
package ir
