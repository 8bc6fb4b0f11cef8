// Package typechecker infers types for resolved klox programs by generating
// equality constraints and solving them with unification.
package typechecker

import (
	"fmt"
	"maps"

	"klox/interpreter-go/pkg/ast"
	"klox/interpreter-go/pkg/stdlib"
	"klox/interpreter-go/pkg/types"
)

// TypeError reports a constraint that could not be satisfied.
type TypeError struct {
	Line    int
	Message string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Checker holds the inference state threaded through each pass. Like the
// resolver it keeps its symbol table and substitution between calls so a
// REPL session can be checked incrementally.
type Checker struct {
	nextVar     int
	symbols     map[string]types.Type
	natives     map[int]stdlib.Builtin
	subst       Substitution
	constraints []Constraint
	frames      []*functionFrame
	errors      []*TypeError
}

// Result carries the annotated statements. Symbols maps name_slot keys to
// the fully resolved type of each declaration.
type Result struct {
	Statements []ast.Statement
	Errors     []*TypeError
	Symbols    map[string]types.Type
}

// New returns a checker instance.
func New() *Checker {
	natives := make(map[int]stdlib.Builtin, len(stdlib.Builtins))
	for _, b := range stdlib.Builtins {
		natives[b.Slot] = b
	}
	return &Checker{
		symbols: make(map[string]types.Type),
		natives: natives,
		subst:   make(Substitution),
	}
}

// SymbolKey is the symbol table key for a declaration.
func SymbolKey(name string, slot int) string {
	return fmt.Sprintf("%s_%d", name, slot)
}

// Infer stamps, constrains and solves stmts, leaving every expression and
// declaration annotated with its resolved type. On errors the checker's
// persistent state is restored to what it was before the call.
func (c *Checker) Infer(stmts []ast.Statement) Result {
	savedSymbols, savedSubst, savedNext := maps.Clone(c.symbols), maps.Clone(c.subst), c.nextVar
	c.errors = nil
	c.constraints = nil
	c.frames = nil

	c.assignTypes(stmts)
	c.constrainStatements(stmts)
	for _, con := range c.constraints {
		if err := Unify(con.Left, con.Right, c.subst); err != nil {
			c.errors = append(c.errors, &TypeError{Line: con.Line, Message: err.Error()})
		}
	}
	c.applySubstitution(stmts)

	resolved := make(map[string]types.Type, len(c.symbols))
	for key, t := range c.symbols {
		resolved[key] = c.subst.Apply(t)
	}
	errs := c.errors
	if len(errs) > 0 {
		c.symbols, c.subst, c.nextVar = savedSymbols, savedSubst, savedNext
	}
	return Result{Statements: stmts, Errors: errs, Symbols: resolved}
}

func (c *Checker) fresh() types.TypeVar {
	v := types.TypeVar{Label: fmt.Sprintf("t%d", c.nextVar)}
	c.nextVar++
	return v
}

func (c *Checker) constrain(left, right types.Type, line int) {
	c.constraints = append(c.constraints, Constraint{Left: left, Right: right, Line: line})
}

// instantiate replaces a builtin's generic variables with fresh ones.
func (c *Checker) instantiate(b stdlib.Builtin) types.Type {
	if len(b.Generic) == 0 {
		return b.Type
	}
	mapping := make(Substitution, len(b.Generic))
	for _, g := range b.Generic {
		mapping[g.Label] = c.fresh()
	}
	return mapping.Apply(b.Type)
}
