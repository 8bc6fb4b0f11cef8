package typechecker

import "klox/interpreter-go/pkg/ast"

// visitor receives every node of a tree in pre-order.
type visitor struct {
	statement  func(ast.Statement)
	expression func(ast.Expression)
}

func (v visitor) statements(stmts []ast.Statement) {
	for _, s := range stmts {
		v.stmt(s)
	}
}

func (v visitor) stmt(stmt ast.Statement) {
	if stmt == nil {
		return
	}
	if v.statement != nil {
		v.statement(stmt)
	}
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		v.expr(s.Expression)
	case *ast.Block:
		v.statements(s.Statements)
	case *ast.If:
		v.expr(s.Condition)
		v.stmt(s.Then)
		v.stmt(s.Else)
	case *ast.While:
		v.expr(s.Condition)
		v.stmt(s.Body)
		v.expr(s.Increment)
	case *ast.Var:
		v.expr(s.Initializer)
	case *ast.Const:
		v.expr(s.Initializer)
	case *ast.Function:
		v.statements(s.Body)
	case *ast.Return:
		v.expr(s.Value)
	}
}

func (v visitor) expr(expr ast.Expression) {
	if expr == nil {
		return
	}
	if v.expression != nil {
		v.expression(expr)
	}
	switch e := expr.(type) {
	case *ast.Assign:
		v.expr(e.Value)
	case *ast.Unary:
		v.expr(e.Operand)
	case *ast.Binary:
		v.expr(e.Left)
		v.expr(e.Right)
	case *ast.Logical:
		v.expr(e.Left)
		v.expr(e.Right)
	case *ast.Ternary:
		v.expr(e.Left)
		v.expr(e.Middle)
		v.expr(e.Right)
	case *ast.Grouping:
		v.expr(e.Inner)
	case *ast.Call:
		v.expr(e.Callee)
		for _, arg := range e.Arguments {
			v.expr(arg)
		}
	}
}
