package ast

import (
	"fmt"
	"strings"
)

// Sexpr renders the operator and literal structure of a program as
// s-expressions. Addresses, slots and types are left out. With groupings
// false, parenthesized expressions render as their inner expression.
func Sexpr(stmts []Statement, groupings bool) string {
	s := sexpr{groupings: groupings}
	parts := make([]string, len(stmts))
	for i, stmt := range stmts {
		parts[i] = s.statement(stmt)
	}
	return strings.Join(parts, "\n")
}

type sexpr struct {
	groupings bool
}

func (s sexpr) statement(stmt Statement) string {
	switch n := stmt.(type) {
	case *ExpressionStatement:
		return "(expr " + s.expression(n.Expression) + ")"
	case *Block:
		return "(block" + s.statements(n.Statements) + ")"
	case *If:
		out := "(if " + s.expression(n.Condition) + " " + s.statement(n.Then)
		if n.Else != nil {
			out += " " + s.statement(n.Else)
		}
		return out + ")"
	case *While:
		out := "(while " + s.expression(n.Condition) + " " + s.statement(n.Body)
		if n.Increment != nil {
			out += " " + s.expression(n.Increment)
		}
		return out + ")"
	case *Break:
		return "(break)"
	case *Continue:
		return "(continue)"
	case *Var:
		if n.Initializer == nil {
			return "(var " + n.Name + ")"
		}
		return "(var " + n.Name + " " + s.expression(n.Initializer) + ")"
	case *Const:
		return "(const " + n.Name + " " + s.expression(n.Initializer) + ")"
	case *Function:
		names := make([]string, len(n.Params))
		for i, p := range n.Params {
			names[i] = p.Name
		}
		kind := "fun"
		if n.Pure {
			kind = "pure-fun"
		}
		return fmt.Sprintf("(%s %s (%s)%s)", kind, n.Name, strings.Join(names, " "), s.statements(n.Body))
	case *Return:
		return "(return " + s.expression(n.Value) + ")"
	case *Debug:
		return "(debug)"
	case *EmptyStatement:
		return "(empty)"
	default:
		return fmt.Sprintf("(unknown %T)", stmt)
	}
}

func (s sexpr) statements(stmts []Statement) string {
	var b strings.Builder
	for _, stmt := range stmts {
		b.WriteString(" ")
		b.WriteString(s.statement(stmt))
	}
	return b.String()
}

func (s sexpr) expression(expr Expression) string {
	switch e := expr.(type) {
	case *Literal:
		return FormatLiteral(e.Value)
	case *Variable:
		return e.Name
	case *Assign:
		return "(= " + e.Name + " " + s.expression(e.Value) + ")"
	case *Unary:
		return "(" + e.Operator + " " + s.expression(e.Operand) + ")"
	case *Binary:
		return "(" + e.Operator + " " + s.expression(e.Left) + " " + s.expression(e.Right) + ")"
	case *Logical:
		return "(" + e.Operator + " " + s.expression(e.Left) + " " + s.expression(e.Right) + ")"
	case *Ternary:
		return fmt.Sprintf("(%s%s %s %s %s)", e.FirstOperator, e.SecondOperator,
			s.expression(e.Left), s.expression(e.Middle), s.expression(e.Right))
	case *Grouping:
		if !s.groupings {
			return s.expression(e.Inner)
		}
		return "(group " + s.expression(e.Inner) + ")"
	case *Call:
		var b strings.Builder
		b.WriteString("(call ")
		b.WriteString(s.expression(e.Callee))
		for _, arg := range e.Arguments {
			b.WriteString(" ")
			b.WriteString(s.expression(arg))
		}
		b.WriteString(")")
		return b.String()
	case *EmptyExpression:
		return "<empty>"
	default:
		return fmt.Sprintf("<unknown %T>", expr)
	}
}
