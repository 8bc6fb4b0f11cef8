// Package interpreter evaluates resolved klox programs by walking the AST.
package interpreter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"klox/interpreter-go/pkg/ast"
	"klox/interpreter-go/pkg/runtime"
	"klox/interpreter-go/pkg/stdlib"
)

// RuntimeError stops evaluation of the current run.
type RuntimeError struct {
	Line    int
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Interpreter drives evaluation of klox statements. The global environment
// outlives a single Interpret call so REPL lines can build on each other.
type Interpreter struct {
	global *runtime.Environment
	native *runtime.NativeCallContext
	debug  io.Writer
	depth  int
}

const maxCallDepth = 10000

// Option configures an interpreter.
type Option func(*Interpreter)

// WithStdout redirects print.
func WithStdout(w io.Writer) Option {
	return func(i *Interpreter) { i.native.Stdout = w }
}

// WithStdin sets the source read by input.
func WithStdin(r io.Reader) Option {
	return func(i *Interpreter) { i.native.Stdin = bufio.NewReader(r) }
}

// WithDebugWriter sets where debug statements dump the environment chain.
func WithDebugWriter(w io.Writer) Option {
	return func(i *Interpreter) { i.debug = w }
}

// WithClock replaces the wall clock used by clock().
func WithClock(now func() time.Time) Option {
	return func(i *Interpreter) { i.native.Now = now }
}

// WithSleep replaces the pause used by sleep().
func WithSleep(sleep func(time.Duration)) Option {
	return func(i *Interpreter) { i.native.Sleep = sleep }
}

// New returns an interpreter whose global environment holds the builtins.
func New(opts ...Option) *Interpreter {
	i := &Interpreter{
		global: runtime.NewEnvironment(nil),
		native: &runtime.NativeCallContext{
			Stdout: os.Stdout,
			Stdin:  bufio.NewReader(os.Stdin),
			Now:    time.Now,
			Sleep:  time.Sleep,
		},
		debug: os.Stderr,
	}
	for _, opt := range opts {
		opt(i)
	}
	stdlib.Install(i.global)
	return i
}

// GlobalEnvironment returns the interpreter's global environment.
func (i *Interpreter) GlobalEnvironment() *runtime.Environment {
	return i.global
}

// Interpret executes stmts in order and stops at the first runtime error.
func (i *Interpreter) Interpret(stmts []ast.Statement) error {
	i.depth = 0
	for _, stmt := range stmts {
		if _, err := i.execute(stmt, i.global); err != nil {
			return err
		}
	}
	return nil
}

func runtimeErrorf(node ast.Node, format string, args ...any) *RuntimeError {
	return &RuntimeError{Line: node.Line(), Message: fmt.Sprintf(format, args...)}
}
