// Package errz defines the backend's two error tiers. CompileError is
// the recoverable tier: boundary misuse a caller can act on, returned
// as an ordinary error. InternalError is the fatal tier: a violated
// invariant means a bug in an earlier pass or in the backend itself,
// so it is raised as a panic and never handled locally.
package errz

import "fmt"

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// ErrCompile indicates invalid input at the frontend boundary.
	ErrCompile ErrorKind = iota
	// ErrInternal indicates an internal consistency failure.
	ErrInternal
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrCompile:
		return "compile error"
	case ErrInternal:
		return "internal error"
	default:
		return "error"
	}
}

// CompileError is an error in the input handed to the backend: a
// reference to a class or function the compilation unit never
// declared, and similar. A correct frontend never produces these.
type CompileError struct {
	Message string
	Func    string // enclosing function, if known
	Cause   error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Func == "" {
		return fmt.Sprintf("%s: %s", ErrCompile, e.Message)
	}
	return fmt.Sprintf("%s: %s (in function %q)", ErrCompile, e.Message, e.Func)
}

// Unwrap returns the underlying cause of the error.
func (e *CompileError) Unwrap() error {
	return e.Cause
}

// Compilef creates a CompileError with a formatted message.
func Compilef(format string, args ...any) *CompileError {
	return &CompileError{Message: fmt.Sprintf(format, args...)}
}

// InFunc annotates the error with the enclosing function's name.
func (e *CompileError) InFunc(name string) *CompileError {
	e.Func = name
	return e
}

// InternalError names a violated invariant. It is created only via
// ICE, which panics; the type exists so tests and the CLI's top level
// can recognize the failure and name the invariant in diagnostics.
type InternalError struct {
	Invariant string
	Message   string
}

// Error implements the error interface.
func (e *InternalError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInternal, e.Invariant, e.Message)
}

// ICE reports an internal consistency failure and aborts by panicking
// with an *InternalError. The invariant argument is a short stable
// name for what was violated; the format arguments describe the
// specific occurrence.
func ICE(invariant string, format string, args ...any) {
	panic(&InternalError{
		Invariant: invariant,
		Message:   fmt.Sprintf(format, args...),
	})
}
