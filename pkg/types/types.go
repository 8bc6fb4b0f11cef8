// Package types defines the closed set of static types inferred for klox
// programs.
package types

import "strings"

// Type is a static type understood by the checker.
type Type interface {
	Name() string
	isType()
}

type PrimitiveKind string

const (
	PrimitiveNumber PrimitiveKind = "Number"
	PrimitiveBool   PrimitiveKind = "Bool"
	PrimitiveString PrimitiveKind = "String"
	PrimitiveNil    PrimitiveKind = "Nil"
)

type PrimitiveType struct {
	Kind PrimitiveKind
}

func (p PrimitiveType) Name() string   { return string(p.Kind) }
func (p PrimitiveType) String() string { return p.Name() }
func (PrimitiveType) isType()          {}

var (
	Number = PrimitiveType{Kind: PrimitiveNumber}
	Bool   = PrimitiveType{Kind: PrimitiveBool}
	String = PrimitiveType{Kind: PrimitiveString}
	Nil    = PrimitiveType{Kind: PrimitiveNil}
)

// FunctionType is the type of a callable. Two function types are equal when
// their arities match and every component is equal.
type FunctionType struct {
	Params []Type
	Return Type
}

// Name renders (A -> R) for one parameter and ((A, B) -> R) otherwise.
func (f FunctionType) Name() string {
	var b strings.Builder
	b.WriteString("(")
	if len(f.Params) == 1 {
		b.WriteString(nameOf(f.Params[0]))
	} else {
		b.WriteString("(")
		for i, p := range f.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(nameOf(p))
		}
		b.WriteString(")")
	}
	b.WriteString(" -> ")
	b.WriteString(nameOf(f.Return))
	b.WriteString(")")
	return b.String()
}

func (f FunctionType) String() string { return f.Name() }
func (FunctionType) isType()          {}

// TypeVar is a unification placeholder.
type TypeVar struct {
	Label string
}

func (v TypeVar) Name() string   { return v.Label }
func (v TypeVar) String() string { return v.Name() }
func (TypeVar) isType()          {}

func Func(ret Type, params ...Type) FunctionType {
	return FunctionType{Params: params, Return: ret}
}

func nameOf(t Type) string {
	if t == nil {
		return "<unknown>"
	}
	return t.Name()
}

// Equal reports structural equality.
func Equal(a, b Type) bool {
	switch at := a.(type) {
	case PrimitiveType:
		bt, ok := b.(PrimitiveType)
		return ok && at.Kind == bt.Kind
	case TypeVar:
		bt, ok := b.(TypeVar)
		return ok && at.Label == bt.Label
	case FunctionType:
		bt, ok := b.(FunctionType)
		if !ok || len(at.Params) != len(bt.Params) {
			return false
		}
		for i := range at.Params {
			if !Equal(at.Params[i], bt.Params[i]) {
				return false
			}
		}
		return Equal(at.Return, bt.Return)
	case nil:
		return b == nil
	default:
		return false
	}
}

// FromAnnotation maps an annotation name to its primitive type.
func FromAnnotation(name string) (Type, bool) {
	switch name {
	case "Number":
		return Number, true
	case "Bool":
		return Bool, true
	case "String":
		return String, true
	case "nil", "Nil":
		return Nil, true
	default:
		return nil, false
	}
}

// Contains reports whether the type variable occurs anywhere in t.
func Contains(t Type, v TypeVar) bool {
	switch tt := t.(type) {
	case TypeVar:
		return tt.Label == v.Label
	case FunctionType:
		for _, p := range tt.Params {
			if Contains(p, v) {
				return true
			}
		}
		return Contains(tt.Return, v)
	default:
		return false
	}
}
