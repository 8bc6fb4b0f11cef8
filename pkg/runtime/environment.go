package runtime

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

type binding struct {
	name  string
	value Value
}

// Environment stores the bindings of one scope, keyed by resolver slot. The
// parent is the lexically enclosing environment, which for a call is the
// closure's captured environment rather than the caller's.
type Environment struct {
	values map[int]*binding
	parent *Environment
}

// NewEnvironment creates a new environment, optionally nested under a parent.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[int]*binding),
		parent: parent,
	}
}

// Define inserts or replaces the binding at slot in this scope.
func (e *Environment) Define(slot int, name string, value Value) {
	e.values[slot] = &binding{name: name, value: value}
}

// Ancestor walks distance parent links.
func (e *Environment) Ancestor(distance int) (*Environment, error) {
	env := e
	for i := 0; i < distance; i++ {
		if env.parent == nil {
			return nil, fmt.Errorf("environment depth %d exceeds chain length %d", distance, i)
		}
		env = env.parent
	}
	return env, nil
}

// Get reads the value at a lexical address.
func (e *Environment) Get(distance, slot int) (Value, error) {
	env, err := e.Ancestor(distance)
	if err != nil {
		return nil, err
	}
	b, ok := env.values[slot]
	if !ok {
		return nil, fmt.Errorf("no binding for slot %d at distance %d", slot, distance)
	}
	return b.value, nil
}

// Assign overwrites the value at a lexical address.
func (e *Environment) Assign(distance, slot int, value Value) error {
	env, err := e.Ancestor(distance)
	if err != nil {
		return err
	}
	b, ok := env.values[slot]
	if !ok {
		return fmt.Errorf("no binding for slot %d at distance %d", slot, distance)
	}
	b.value = value
	return nil
}

// Slots returns the slots bound in this scope in ascending order.
func (e *Environment) Slots() []int {
	slots := make([]int, 0, len(e.values))
	for slot := range e.values {
		slots = append(slots, slot)
	}
	sort.Ints(slots)
	return slots
}

// Name returns the declared name bound at slot in this scope.
func (e *Environment) Name(slot int) (string, bool) {
	b, ok := e.values[slot]
	if !ok {
		return "", false
	}
	return b.name, true
}

// Dump writes every scope from e outward, innermost first.
func (e *Environment) Dump(w io.Writer) {
	for env := e; env != nil; env = env.parent {
		if env != e {
			fmt.Fprintln(w, strings.Repeat("-", 30))
		}
		for _, slot := range env.Slots() {
			b := env.values[slot]
			fmt.Fprintf(w, "%d: %s = %s\n", slot, b.name, Format(b.value))
		}
	}
}
