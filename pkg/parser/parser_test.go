package parser

import (
	"strings"
	"testing"

	"klox/interpreter-go/pkg/ast"
	"klox/interpreter-go/pkg/types"
)

func mustParse(t *testing.T, src string) []ast.Statement {
	t.Helper()
	stmts, scanErrs, parseErrs := ParseSource(src)
	if len(scanErrs) != 0 {
		t.Fatalf("unexpected scan errors: %v", scanErrs)
	}
	if len(parseErrs) != 0 {
		t.Fatalf("unexpected parse errors: %v", parseErrs)
	}
	return stmts
}

func parseErrors(t *testing.T, src string) ([]ast.Statement, []*ParseError) {
	t.Helper()
	stmts, scanErrs, parseErrs := ParseSource(src)
	if len(scanErrs) != 0 {
		t.Fatalf("unexpected scan errors: %v", scanErrs)
	}
	return stmts, parseErrs
}

func TestParseExpressionPrecedence(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"1 + 2 * 3;", "(expr (+ 1 (* 2 3)))"},
		{"(1 + 2) * 3;", "(expr (* (group (+ 1 2)) 3))"},
		{"1 - 2 - 3;", "(expr (- (- 1 2) 3))"},
		{"-a * !b;", "(expr (* (- a) (! b)))"},
		{"a < b == c >= d;", "(expr (== (< a b) (>= c d)))"},
		{"a || b && c;", "(expr (|| a (&& b c)))"},
		{"a ?? b || c;", "(expr (?? a (|| b c)))"},
		{"a ? b : c;", "(expr (?: a b c))"},
		{"x between 1 and 10;", "(expr (betweenand x 1 10))"},
		{"x = y = 3;", "(expr (= x (= y 3)))"},
		{"f(1)(2, 3);", "(expr (call (call f 1) 2 3))"},
		{"a % 2 == 0 ? \"even\" : \"odd\";", `(expr (?: (== (% a 2) 0) "even" "odd"))`},
	}
	for _, tc := range cases {
		stmts := mustParse(t, tc.src)
		if got := ast.Sexpr(stmts, true); got != tc.want {
			t.Fatalf("parse %q = %s, want %s", tc.src, got, tc.want)
		}
	}
}

func TestParseCompoundAssignmentDesugars(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"x += 2;", "(expr (= x (+ x 2)))"},
		{"x -= 2;", "(expr (= x (- x 2)))"},
		{"x *= 2;", "(expr (= x (* x 2)))"},
		{"x /= 2;", "(expr (= x (/ x 2)))"},
		{"x %= 2;", "(expr (= x (% x 2)))"},
		{"x ??= 2;", "(expr (= x (?? x 2)))"},
	}
	for _, tc := range cases {
		stmts := mustParse(t, tc.src)
		if got := ast.Sexpr(stmts, true); got != tc.want {
			t.Fatalf("parse %q = %s, want %s", tc.src, got, tc.want)
		}
	}
}

func TestParseStatements(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"var x;", "(var x)"},
		{"var x = 1;", "(var x 1)"},
		{"const c = 1;", "(const c 1)"},
		{"if (a) b; else c;", "(if a (expr b) (expr c))"},
		{"while (a) { b; }", "(while a (block (expr b)))"},
		{"loop { break; }", "(while true (block (break)))"},
		{"for (var i = 0; i < 3; i += 1) print(i);",
			"(block (var i 0) (while (< i 3) (expr (call print i)) (= i (+ i 1))))"},
		{"for (;;) { continue; }", "(while true (block (continue)))"},
		{"fun f(a, b) { return a; }", "(fun f (a b) (return a))"},
		{"fun f() { return; }", "(fun f () (return nil))"},
		{"pure fun g(x) { return x; }", "(pure-fun g (x) (return x))"},
		{"debug;", "(debug)"},
	}
	for _, tc := range cases {
		stmts := mustParse(t, tc.src)
		if got := ast.Sexpr(stmts, true); got != tc.want {
			t.Fatalf("parse %q = %s, want %s", tc.src, got, tc.want)
		}
	}
}

func TestParseAnnotations(t *testing.T) {
	stmts := mustParse(t, "var n: Number = 1; fun f(s: String, b): Bool { return true; }")
	decl := stmts[0].(*ast.Var)
	if !types.Equal(decl.Annotation, types.Number) {
		t.Fatalf("var annotation = %v", decl.Annotation)
	}
	fn := stmts[1].(*ast.Function)
	if !types.Equal(fn.Params[0].Annotation, types.String) || fn.Params[1].Annotation != nil {
		t.Fatalf("param annotations = %v, %v", fn.Params[0].Annotation, fn.Params[1].Annotation)
	}
	if !types.Equal(fn.ReturnAnnotation, types.Bool) {
		t.Fatalf("return annotation = %v", fn.ReturnAnnotation)
	}
}

func TestUnmatchedParenReportsOneErrorAtEnd(t *testing.T) {
	stmts, errs := parseErrors(t, "(1 + 2")
	if len(errs) != 1 {
		t.Fatalf("expected exactly one parse error, got %v", errs)
	}
	if errs[0].Where != "at end" || errs[0].Message != "expected ')' after expression" {
		t.Fatalf("unexpected error %+v", errs[0])
	}
	if len(stmts) != 1 || stmts[0].NodeType() != ast.NodeEmptyStatement {
		t.Fatalf("expected a single empty statement, got %s", ast.Sexpr(stmts, true))
	}
}

func TestParserRecoversAndReportsEachStatement(t *testing.T) {
	src := `
var = 1;
print(1);
x + ;
var ok = 2;
`
	stmts, errs := parseErrors(t, src)
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(errs), errs)
	}
	if errs[0].Line != 2 || errs[1].Line != 4 {
		t.Fatalf("error lines = %d, %d", errs[0].Line, errs[1].Line)
	}
	got := ast.Sexpr(stmts, true)
	want := "(empty)\n(expr (call print 1))\n(empty)\n(var ok 2)"
	if got != want {
		t.Fatalf("recovered tree = %s, want %s", got, want)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		src     string
		message string
	}{
		{"1 = 2;", "invalid assignment target"},
		{"const c;", "const declaration requires an initializer"},
		{"break;", "'break' used outside of a loop"},
		{"continue;", "'continue' used outside of a loop"},
		{"return 1;", "cannot return from top-level code"},
		{"while (true) { fun f() { break; } }", "'break' used outside of a loop"},
		{"a ? b : c ? d : e;", "conditional expressions cannot be chained"},
		{"x between 1 and 2 between 3 and 4;", "between expressions cannot be chained"},
		{"class Foo {}", "classes are not supported"},
		{"this;", "'this' is reserved"},
		{"var x: Float = 1;", "expected type name after ':'"},
		{"pure var x = 1;", "expected 'fun' after 'pure'"},
	}
	for _, tc := range cases {
		_, errs := parseErrors(t, tc.src)
		if len(errs) == 0 {
			t.Fatalf("expected error for %q", tc.src)
		}
		if errs[0].Message != tc.message {
			t.Fatalf("parse %q error = %q, want %q", tc.src, errs[0].Message, tc.message)
		}
	}
}

func TestRoundTripThroughPrinter(t *testing.T) {
	src := `
var total = 0;
const limit: Number = 10;
pure fun square(n: Number): Number { return n * n; }
fun describe(x) {
  if (x between 1 and limit) return "small"; else return x > limit ? "big" : "tiny";
}
for (var i = 0; i < 3; i += 1) {
  if (i == 1) continue;
  total = total + square(i) * (2 - i);
}
var name;
name ??= "anon" + "ymous";
loop { if (!(total != 0) || total >= 5 && true) break; total -= -1; }
print(describe(total) ?? nil);
debug;
`
	first := mustParse(t, src)
	printed := ast.Print(first)
	second := mustParse(t, printed)
	if a, b := ast.Sexpr(first, false), ast.Sexpr(second, false); a != b {
		t.Fatalf("round trip changed structure:\n%s\n---\n%s\nprinted:\n%s", a, b, printed)
	}
	if !strings.Contains(printed, "pure fun square(n: Number): Number {") {
		t.Fatalf("printed program lost annotations:\n%s", printed)
	}
}
