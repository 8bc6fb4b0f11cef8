package ast

import (
	"fmt"
	"strconv"
	"strings"

	"klox/interpreter-go/pkg/types"
)

const (
	precAssignment = iota + 1
	precTernary
	precCoalesce
	precOr
	precAnd
	precEquality
	precComparison
	precAdditive
	precMultiplicative
	precUnary
	precCall
	precPrimary
)

// Print renders statements back to source text that parses to the same tree.
// Parentheses are added only where precedence requires them.
func Print(stmts []Statement) string {
	p := &printer{}
	for _, stmt := range stmts {
		p.statement(stmt)
	}
	return p.b.String()
}

// PrintExpression renders a single expression.
func PrintExpression(expr Expression) string {
	p := &printer{}
	p.expression(expr, precAssignment)
	return p.b.String()
}

type printer struct {
	b      strings.Builder
	indent int
}

func (p *printer) line(format string, args ...any) {
	p.b.WriteString(strings.Repeat("  ", p.indent))
	fmt.Fprintf(&p.b, format, args...)
	p.b.WriteString("\n")
}

func (p *printer) statement(stmt Statement) {
	switch s := stmt.(type) {
	case *ExpressionStatement:
		p.line("%s;", PrintExpression(s.Expression))
	case *Block:
		p.line("{")
		p.body(s.Statements)
		p.line("}")
	case *If:
		p.line("if (%s)", PrintExpression(s.Condition))
		p.nested(s.Then)
		if s.Else != nil {
			p.line("else")
			p.nested(s.Else)
		}
	case *While:
		if s.Increment != nil {
			p.line("for (; %s; %s)", PrintExpression(s.Condition), PrintExpression(s.Increment))
		} else {
			p.line("while (%s)", PrintExpression(s.Condition))
		}
		p.nested(s.Body)
	case *Break:
		p.line("break;")
	case *Continue:
		p.line("continue;")
	case *Var:
		p.line("var %s%s%s;", s.Name, annotation(s.Annotation), initializer(s.Initializer))
	case *Const:
		p.line("const %s%s%s;", s.Name, annotation(s.Annotation), initializer(s.Initializer))
	case *Function:
		prefix := "fun"
		if s.Pure {
			prefix = "pure fun"
		}
		params := make([]string, len(s.Params))
		for i, param := range s.Params {
			params[i] = param.Name + annotation(param.Annotation)
		}
		p.line("%s %s(%s)%s {", prefix, s.Name, strings.Join(params, ", "), annotation(s.ReturnAnnotation))
		p.body(s.Body)
		p.line("}")
	case *Return:
		p.line("return %s;", PrintExpression(s.Value))
	case *Debug:
		p.line("debug;")
	case *EmptyStatement:
		p.line("// <empty>")
	default:
		p.line("// <unknown %T>", stmt)
	}
}

func (p *printer) body(stmts []Statement) {
	p.indent++
	for _, stmt := range stmts {
		p.statement(stmt)
	}
	p.indent--
}

func (p *printer) nested(stmt Statement) {
	if _, ok := stmt.(*Block); ok {
		p.statement(stmt)
		return
	}
	p.indent++
	p.statement(stmt)
	p.indent--
}

func annotation(t types.Type) string {
	if t == nil {
		return ""
	}
	if prim, ok := t.(types.PrimitiveType); ok && prim.Kind == types.PrimitiveNil {
		return ": nil"
	}
	return ": " + t.Name()
}

func initializer(expr Expression) string {
	if expr == nil {
		return ""
	}
	return " = " + PrintExpression(expr)
}

func (p *printer) expression(expr Expression, min int) {
	prec := precedenceOf(expr)
	if prec < min {
		p.b.WriteString("(")
		defer p.b.WriteString(")")
	}
	switch e := expr.(type) {
	case *Literal:
		p.b.WriteString(FormatLiteral(e.Value))
	case *Variable:
		p.b.WriteString(e.Name)
	case *Assign:
		p.b.WriteString(e.Name)
		p.b.WriteString(" = ")
		p.expression(e.Value, precAssignment)
	case *Unary:
		p.b.WriteString(e.Operator)
		p.expression(e.Operand, precUnary)
	case *Binary:
		p.expression(e.Left, prec)
		p.b.WriteString(" " + e.Operator + " ")
		p.expression(e.Right, prec+1)
	case *Logical:
		p.expression(e.Left, prec)
		p.b.WriteString(" " + e.Operator + " ")
		p.expression(e.Right, prec+1)
	case *Ternary:
		p.expression(e.Left, precCoalesce)
		p.b.WriteString(" " + e.FirstOperator + " ")
		p.expression(e.Middle, precCoalesce)
		p.b.WriteString(" " + e.SecondOperator + " ")
		p.expression(e.Right, precCoalesce)
	case *Grouping:
		p.b.WriteString("(")
		p.expression(e.Inner, precAssignment)
		p.b.WriteString(")")
	case *Call:
		p.expression(e.Callee, precCall)
		p.b.WriteString("(")
		for i, arg := range e.Arguments {
			if i > 0 {
				p.b.WriteString(", ")
			}
			p.expression(arg, precAssignment)
		}
		p.b.WriteString(")")
	case *EmptyExpression:
		p.b.WriteString("nil")
	default:
		fmt.Fprintf(&p.b, "<unknown %T>", expr)
	}
}

func precedenceOf(expr Expression) int {
	switch e := expr.(type) {
	case *Assign:
		return precAssignment
	case *Ternary:
		return precTernary
	case *Logical:
		switch e.Operator {
		case "??":
			return precCoalesce
		case "||":
			return precOr
		default:
			return precAnd
		}
	case *Binary:
		switch e.Operator {
		case "==", "!=":
			return precEquality
		case "<", "<=", ">", ">=":
			return precComparison
		case "+", "-":
			return precAdditive
		default:
			return precMultiplicative
		}
	case *Unary:
		return precUnary
	case *Call:
		return precCall
	default:
		return precPrimary
	}
}

// FormatLiteral renders a literal value the way it is written in source.
func FormatLiteral(value any) string {
	switch v := value.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return `"` + v + `"`
	default:
		return fmt.Sprintf("%v", v)
	}
}
