// Package resolver assigns lexical addresses to variable references and
// enforces declaration rules before a program is type checked or run.
package resolver

import (
	"fmt"

	"klox/interpreter-go/pkg/ast"
	"klox/interpreter-go/pkg/stdlib"
)

// ResolveError is a static scoping error.
type ResolveError struct {
	Line    int
	Message string
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Warning never blocks execution.
type Warning struct {
	Line    int
	Message string
}

func (w *Warning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Message)
}

type Result struct {
	Statements []ast.Statement
	Errors     []*ResolveError
	Warnings   []*Warning
}

// Resolver walks a program once, annotating Variable and Assign nodes with
// their lexical address and every declaration with its slot. Slots come from
// a single counter so each declaration is unique across the program.
//
// A Resolver keeps its global scope between calls to Resolve, which lets a
// REPL resolve one line at a time.
type Resolver struct {
	scopes   []*scope
	nextSlot int
	// impureReads counts references to impure symbols, so a const can tell
	// whether its initializer read one.
	impureReads int
	errors   []*ResolveError
	warnings []*Warning
}

// New returns a resolver whose global scope already holds the builtins.
func New() *Resolver {
	global := newScope(false)
	for _, b := range stdlib.Builtins {
		global.add(&symbol{
			name:        b.Name,
			slot:        b.Slot,
			kind:        SymbolNative,
			pure:        b.Pure,
			defined:     true,
			initialized: true,
		})
	}
	return &Resolver{scopes: []*scope{global}, nextSlot: stdlib.FirstUserSlot}
}

// Resolve annotates stmts in place. When errors are reported, globals
// declared by stmts are forgotten again.
func (r *Resolver) Resolve(stmts []ast.Statement) Result {
	r.errors = nil
	r.warnings = nil
	cp := r.Checkpoint()

	for i, stmt := range stmts {
		stmts[i] = r.statement(stmt)
	}
	r.reportUnused(r.scopes[0].order[cp.globals:])

	if len(r.errors) > 0 {
		r.Rollback(cp)
	}
	return Result{Statements: stmts, Errors: r.errors, Warnings: r.warnings}
}

// Checkpoint marks the global scope and slot counter.
type Checkpoint struct {
	globals  int
	nextSlot int
}

// Checkpoint records the current global state for a later Rollback.
func (r *Resolver) Checkpoint() Checkpoint {
	return Checkpoint{globals: len(r.scopes[0].order), nextSlot: r.nextSlot}
}

// Rollback forgets every global declared since cp. Used when a batch that
// resolved cleanly fails a later phase.
func (r *Resolver) Rollback(cp Checkpoint) {
	r.scopes[0].truncate(cp.globals)
	r.nextSlot = cp.nextSlot
}

// Forget keeps the first kept globals declared since cp and drops the rest.
// Unlike Rollback it leaves the slot counter alone, so code that already ran
// never sees a dropped slot handed out again.
func (r *Resolver) Forget(cp Checkpoint, kept int) {
	r.scopes[0].truncate(cp.globals + kept)
}

func (r *Resolver) current() *scope { return r.scopes[len(r.scopes)-1] }

func (r *Resolver) beginScope(pure bool) {
	r.scopes = append(r.scopes, newScope(pure || r.current().pure))
}

func (r *Resolver) endScope() {
	closing := r.current()
	r.scopes = r.scopes[:len(r.scopes)-1]
	r.reportUnused(closing.order)
}

func (r *Resolver) error(line int, format string, args ...any) {
	r.errors = append(r.errors, &ResolveError{Line: line, Message: fmt.Sprintf(format, args...)})
}

func (r *Resolver) warn(line int, format string, args ...any) {
	r.warnings = append(r.warnings, &Warning{Line: line, Message: fmt.Sprintf(format, args...)})
}

// declare reserves a slot for name in the current scope, not yet defined.
func (r *Resolver) declare(name string, kind SymbolKind, pure bool, line int) *symbol {
	sym := &symbol{name: name, slot: r.nextSlot, kind: kind, pure: pure, line: line}
	r.nextSlot++
	current := r.current()
	if _, exists := current.lookup(name); exists {
		r.error(line, "'%s' is already declared in this scope", name)
		return sym
	}
	current.add(sym)
	return sym
}

func (r *Resolver) define(sym *symbol) { sym.defined = true }

// lookup walks from the innermost scope outward.
func (r *Resolver) lookup(name string) (*symbol, int, bool) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if sym, ok := r.scopes[i].lookup(name); ok {
			return sym, len(r.scopes) - 1 - i, true
		}
	}
	return nil, 0, false
}

func (r *Resolver) reportUnused(symbols []*symbol) {
	for _, sym := range symbols {
		switch {
		case sym.kind == SymbolNative:
		case sym.accessed == 0:
			r.warn(sym.line, "%s '%s' is never used", sym.kind, sym.name)
		case sym.kind == SymbolVar && sym.assigned == 0 && sym.initialized:
			r.warn(sym.line, "variable '%s' is never reassigned and can be const", sym.name)
		}
	}
}
