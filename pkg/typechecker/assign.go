package typechecker

import (
	"klox/interpreter-go/pkg/ast"
	"klox/interpreter-go/pkg/types"
)

// assignTypes stamps every expression and declaration with a fresh type
// variable and records declarations in the symbol table. Literals get their
// concrete type directly.
func (c *Checker) assignTypes(stmts []ast.Statement) {
	visitor{
		statement: func(stmt ast.Statement) {
			switch s := stmt.(type) {
			case *ast.Var:
				s.Inferred = c.fresh()
				c.symbols[SymbolKey(s.Name, s.Slot)] = s.Inferred
			case *ast.Const:
				s.Inferred = c.fresh()
				c.symbols[SymbolKey(s.Name, s.Slot)] = s.Inferred
			case *ast.Function:
				s.Inferred = c.fresh()
				s.ReturnType = c.fresh()
				s.ParamTypes = make([]types.Type, len(s.Params))
				for i, p := range s.Params {
					s.ParamTypes[i] = c.fresh()
					c.symbols[SymbolKey(p.Name, p.Slot)] = s.ParamTypes[i]
				}
				c.symbols[SymbolKey(s.Name, s.Slot)] = s.Inferred
			}
		},
		expression: func(expr ast.Expression) {
			if lit, ok := expr.(*ast.Literal); ok {
				lit.SetType(literalType(lit.Value))
				return
			}
			expr.SetType(c.fresh())
		},
	}.statements(stmts)
}

func literalType(v any) types.Type {
	switch v.(type) {
	case float64:
		return types.Number
	case string:
		return types.String
	case bool:
		return types.Bool
	default:
		return types.Nil
	}
}

// applySubstitution replaces every stamped variable with its resolved type.
func (c *Checker) applySubstitution(stmts []ast.Statement) {
	visitor{
		statement: func(stmt ast.Statement) {
			switch s := stmt.(type) {
			case *ast.Var:
				s.Inferred = c.subst.Apply(s.Inferred)
			case *ast.Const:
				s.Inferred = c.subst.Apply(s.Inferred)
			case *ast.Function:
				s.Inferred = c.subst.Apply(s.Inferred)
				s.ReturnType = c.subst.Apply(s.ReturnType)
				for i, p := range s.ParamTypes {
					s.ParamTypes[i] = c.subst.Apply(p)
				}
			}
		},
		expression: func(expr ast.Expression) {
			expr.SetType(c.subst.Apply(expr.Type()))
		},
	}.statements(stmts)
}
