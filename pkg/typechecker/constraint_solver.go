package typechecker

import (
	"fmt"

	"klox/interpreter-go/pkg/types"
)

// Constraint states that two types must be equal. Line attributes a failure.
type Constraint struct {
	Left  types.Type
	Right types.Type
	Line  int
}

// Substitution maps type variable names to the types bound to them. Bindings
// may refer to other bound variables; Apply follows them.
type Substitution map[string]types.Type

// Apply resolves t through the substitution as far as possible.
func (s Substitution) Apply(t types.Type) types.Type {
	switch tt := t.(type) {
	case types.TypeVar:
		if bound, ok := s[tt.Label]; ok {
			return s.Apply(bound)
		}
		return tt
	case types.FunctionType:
		params := make([]types.Type, len(tt.Params))
		for i, p := range tt.Params {
			params[i] = s.Apply(p)
		}
		return types.FunctionType{Params: params, Return: s.Apply(tt.Return)}
	default:
		return t
	}
}

// Solve unifies constraints in order into a fresh substitution. Failures are
// collected and solving continues.
func Solve(constraints []Constraint) (Substitution, []*TypeError) {
	s := make(Substitution)
	var errs []*TypeError
	for _, c := range constraints {
		if err := Unify(c.Left, c.Right, s); err != nil {
			errs = append(errs, &TypeError{Line: c.Line, Message: err.Error()})
		}
	}
	return s, errs
}

// Unify extends s so that a and b become equal.
func Unify(a, b types.Type, s Substitution) error {
	if types.Equal(a, b) {
		return nil
	}
	if v, ok := a.(types.TypeVar); ok {
		return unifyVariable(v, b, s)
	}
	if v, ok := b.(types.TypeVar); ok {
		return unifyVariable(v, a, s)
	}
	af, aFn := a.(types.FunctionType)
	bf, bFn := b.(types.FunctionType)
	if aFn && bFn {
		if len(af.Params) != len(bf.Params) {
			return fmt.Errorf("function arity mismatch: %d vs %d parameters", len(af.Params), len(bf.Params))
		}
		if err := Unify(af.Return, bf.Return, s); err != nil {
			return err
		}
		for i := range af.Params {
			if err := Unify(af.Params[i], bf.Params[i], s); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("cannot unify %s with %s", s.Apply(a).Name(), s.Apply(b).Name())
}

func unifyVariable(v types.TypeVar, t types.Type, s Substitution) error {
	if bound, ok := s[v.Label]; ok {
		return Unify(bound, t, s)
	}
	if tv, ok := t.(types.TypeVar); ok {
		if bound, ok := s[tv.Label]; ok {
			return Unify(v, bound, s)
		}
	}
	if types.Contains(s.Apply(t), v) {
		return fmt.Errorf("infinite type: %s occurs in %s", v.Name(), s.Apply(t).Name())
	}
	s[v.Label] = t
	return nil
}
