package ast

import (
	"strings"
	"testing"

	"klox/interpreter-go/pkg/types"
)

func TestPrintExpressionPrecedence(t *testing.T) {
	cases := []struct {
		expr Expression
		want string
	}{
		{Bin("+", Num(1), Bin("*", Num(2), Num(3))), "1 + 2 * 3"},
		{Bin("*", Bin("+", Num(1), Num(2)), Num(3)), "(1 + 2) * 3"},
		{Bin("-", Num(1), Bin("-", Num(2), Num(3))), "1 - (2 - 3)"},
		{Bin("*", Group(Bin("+", Num(1), Num(2))), Num(3)), "(1 + 2) * 3"},
		{Log("??", ID("x"), Cond(ID("a"), ID("b"), ID("c"))), "x ?? (a ? b : c)"},
		{Range(ID("x"), Num(1), Num(10)), "x between 1 and 10"},
		{Set("x", Bin("+", ID("x"), Num(2))), "x = x + 2"},
		{CallExpr(ID("f"), Str("a"), Un("-", Num(1.5))), `f("a", -1.5)`},
		{Un("!", Log("&&", Bool(true), Nil())), "!(true && nil)"},
	}
	for _, tc := range cases {
		if got := PrintExpression(tc.expr); got != tc.want {
			t.Fatalf("PrintExpression = %q, want %q", got, tc.want)
		}
	}
}

func TestPrintStatements(t *testing.T) {
	fn := PureFn("add", []string{"a", "b"}, Ret(Bin("+", ID("a"), ID("b"))))
	fn.Params[0].Annotation = types.Number
	decl := NewVar("n", Num(0), types.Number, 1)
	out := Print([]Statement{
		fn,
		decl,
		NewWhile(Bin("<", ID("n"), Num(3)), Blk(Expr(CallExpr(ID("print"), ID("n")))), Set("n", Bin("+", ID("n"), Num(1))), 1),
		IfStmt(ID("n"), Expr(ID("n")), nil),
		NewDebug(1),
	})
	for _, want := range []string{
		"pure fun add(a: Number, b) {",
		"  return a + b;",
		"var n: Number = 0;",
		"for (; n < 3; n = n + 1)",
		"  print(n);",
		"if (n)\n  n;",
		"debug;",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("printed program missing %q:\n%s", want, out)
		}
	}
}

func TestSexprGroupings(t *testing.T) {
	stmts := []Statement{Expr(Bin("*", Group(Bin("+", Num(1), Num(2))), Num(3)))}
	if got := Sexpr(stmts, true); got != "(expr (* (group (+ 1 2)) 3))" {
		t.Fatalf("Sexpr with groupings = %q", got)
	}
	if got := Sexpr(stmts, false); got != "(expr (* (+ 1 2) 3))" {
		t.Fatalf("Sexpr without groupings = %q", got)
	}
}
