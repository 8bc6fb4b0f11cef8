package resolver

import (
	"fmt"
	"strings"
	"testing"

	"klox/interpreter-go/pkg/ast"
	"klox/interpreter-go/pkg/parser"
)

func parse(t *testing.T, src string) []ast.Statement {
	t.Helper()
	stmts, scanErrs, parseErrs := parser.ParseSource(src)
	if len(scanErrs) != 0 || len(parseErrs) != 0 {
		t.Fatalf("unexpected syntax errors: %v %v", scanErrs, parseErrs)
	}
	return stmts
}

func resolveClean(t *testing.T, src string) Result {
	t.Helper()
	res := New().Resolve(parse(t, src))
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected resolve errors: %v", res.Errors)
	}
	return res
}

// addresses lists every reference as name@distance:slot in tree order.
func addresses(stmts []ast.Statement) []string {
	var out []string
	var expr func(ast.Expression)
	var stmt func(ast.Statement)
	expr = func(e ast.Expression) {
		switch n := e.(type) {
		case *ast.Variable:
			out = append(out, fmt.Sprintf("%s@%d:%d", n.Name, n.Address.Distance, n.Address.Slot))
		case *ast.Assign:
			expr(n.Value)
			out = append(out, fmt.Sprintf("%s=@%d:%d", n.Name, n.Address.Distance, n.Address.Slot))
		case *ast.Unary:
			expr(n.Operand)
		case *ast.Binary:
			expr(n.Left)
			expr(n.Right)
		case *ast.Logical:
			expr(n.Left)
			expr(n.Right)
		case *ast.Ternary:
			expr(n.Left)
			expr(n.Middle)
			expr(n.Right)
		case *ast.Grouping:
			expr(n.Inner)
		case *ast.Call:
			expr(n.Callee)
			for _, a := range n.Arguments {
				expr(a)
			}
		}
	}
	stmt = func(s ast.Statement) {
		switch n := s.(type) {
		case *ast.ExpressionStatement:
			expr(n.Expression)
		case *ast.Block:
			for _, inner := range n.Statements {
				stmt(inner)
			}
		case *ast.If:
			expr(n.Condition)
			stmt(n.Then)
			if n.Else != nil {
				stmt(n.Else)
			}
		case *ast.While:
			expr(n.Condition)
			stmt(n.Body)
			if n.Increment != nil {
				expr(n.Increment)
			}
		case *ast.Var:
			out = append(out, fmt.Sprintf("var %s#%d", n.Name, n.Slot))
			if n.Initializer != nil {
				expr(n.Initializer)
			}
		case *ast.Const:
			out = append(out, fmt.Sprintf("const %s#%d", n.Name, n.Slot))
			expr(n.Initializer)
		case *ast.Function:
			out = append(out, fmt.Sprintf("fun %s#%d%v", n.Name, n.Slot, n.ParamSlots()))
			for _, inner := range n.Body {
				stmt(inner)
			}
		case *ast.Return:
			expr(n.Value)
		}
	}
	for _, s := range stmts {
		stmt(s)
	}
	return out
}

func TestResolveLexicalAddresses(t *testing.T) {
	res := resolveClean(t, `
var a = 1;
{
  var b = a;
  {
    print(a + b);
  }
}
fun f(x, y) {
  var z = x;
  return z + y + a;
}
print(f(1, 2));
`)
	got := strings.Join(addresses(res.Statements), " ")
	want := "var a#5 var b#6 a@1:5 print@2:1 a@2:5 b@1:6 " +
		"fun f#7[8 9] var z#10 x@0:8 z@0:10 y@0:9 a@1:5 " +
		"print@0:1 f@0:7"
	if got != want {
		t.Fatalf("addresses:\n got %s\nwant %s", got, want)
	}
}

func TestResolveClosureDistances(t *testing.T) {
	res := resolveClean(t, `
fun outer() {
  var n = 0;
  fun inc() { n += 1; return n; }
  return inc;
}
print(outer);
`)
	got := strings.Join(addresses(res.Statements), " ")
	want := "fun outer#5[] var n#6 fun inc#7[] n@1:6 n=@1:6 n@1:6 inc@0:7 print@0:1 outer@0:5"
	if got != want {
		t.Fatalf("addresses:\n got %s\nwant %s", got, want)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	src := `
var total = 0;
fun add(a, b) { var s = a + b; return s; }
for (var i = 0; i < 3; i += 1) { total = add(total, i); }
{ var total = 1; print(total); }
print(total);
`
	stmts := parse(t, src)
	first := New().Resolve(stmts)
	if len(first.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", first.Errors)
	}
	before := addresses(first.Statements)
	second := New().Resolve(first.Statements)
	if len(second.Errors) != 0 {
		t.Fatalf("unexpected errors on second pass: %v", second.Errors)
	}
	after := addresses(second.Statements)
	if strings.Join(before, " ") != strings.Join(after, " ") {
		t.Fatalf("resolution not idempotent:\n%v\n%v", before, after)
	}
}

func TestResolveErrors(t *testing.T) {
	cases := []struct {
		src     string
		message string
	}{
		{"const c = 5; c = 6;", "cannot reassign to const 'c'"},
		{"var a = 1; var a = 2;", "'a' is already declared in this scope"},
		{"{ var a = a; }", "cannot read local variable 'a' in its own initializer"},
		{"print(missing);", "undefined variable 'missing'"},
		{"missing = 1;", "cannot assign to undeclared variable 'missing'"},
		{"fun f(a, a) { return a; }", "'a' is already declared in this scope"},
		{"var g = 1; pure fun f() { return g; }", "pure function cannot read impure variable 'g'"},
		{"pure fun f() { print(1); }", "pure function cannot call impure function 'print'"},
		{"var g = 1; pure fun f() { g = 2; }", "pure function cannot assign to impure variable 'g'"},
		{"fun h() {} pure fun f() { { h(); } }", "pure function cannot call impure function 'h'"},
		{"clock = 5;", "cannot reassign to native function 'clock'"},
		{"const t = clock(); pure fun p() { return t; }", "pure function cannot read impure variable 't'"},
		{"var g = 1; const c = g + 1; pure fun p() { return c; }", "pure function cannot read impure variable 'c'"},
	}
	for _, tc := range cases {
		res := New().Resolve(parse(t, tc.src))
		if len(res.Errors) != 1 {
			t.Fatalf("%q: expected one error, got %v", tc.src, res.Errors)
		}
		if res.Errors[0].Message != tc.message {
			t.Fatalf("%q: error = %q, want %q", tc.src, res.Errors[0].Message, tc.message)
		}
	}
}

func TestUndefinedReferenceBecomesEmpty(t *testing.T) {
	res := New().Resolve(parse(t, "missing + 1;"))
	bin := res.Statements[0].(*ast.ExpressionStatement).Expression.(*ast.Binary)
	if bin.Left.NodeType() != ast.NodeEmptyExpression {
		t.Fatalf("undefined reference left as %s", bin.Left.NodeType())
	}
}

func TestPureFunctionsMayUsePureSymbols(t *testing.T) {
	res := resolveClean(t, `
const k = 2;
const first = substr("ab", 0, 1);
pure fun initial() { return first; }
pure fun double(n) { var local = n * k; local = local + 0; return substr("ab", 0, 1) ?? local; }
pure fun twice(n) { fun helper(m) { return double(m); } return helper(n); }
print(twice(3));
`)
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
}

func TestWarnings(t *testing.T) {
	res := resolveClean(t, `
var unused = 1;
const alsoUnused = 2;
var once = 3;
var changed = 4;
changed = 5;
fun f(p) { return 1; }
print(once + changed);
`)
	var got []string
	for _, w := range res.Warnings {
		got = append(got, fmt.Sprintf("%d:%s", w.Line, w.Message))
	}
	want := []string{
		"7:parameter 'p' is never used",
		"2:variable 'unused' is never used",
		"3:constant 'alsoUnused' is never used",
		"4:variable 'once' is never reassigned and can be const",
		"7:function 'f' is never used",
	}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Fatalf("warnings:\n%s\nwant:\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestResolverRollsBackFailedBatches(t *testing.T) {
	r := New()
	if res := r.Resolve(parse(t, "var a = 1;")); len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if res := r.Resolve(parse(t, "var b = 2; nope;")); len(res.Errors) != 1 {
		t.Fatalf("expected one error, got %v", res.Errors)
	}
	res := r.Resolve(parse(t, "print(b);"))
	if len(res.Errors) != 1 || res.Errors[0].Message != "undefined variable 'b'" {
		t.Fatalf("b should have been rolled back, got %v", res.Errors)
	}
	res = r.Resolve(parse(t, "var c = a;"))
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if got := addresses(res.Statements); strings.Join(got, " ") != "var c#6 a@0:5" {
		t.Fatalf("addresses after rollback = %v", got)
	}
}

func TestRollbackToCheckpoint(t *testing.T) {
	r := New()
	resolveWith := func(src string) Result {
		t.Helper()
		return r.Resolve(parse(t, src))
	}
	resolveWith("var a = 1;")
	cp := r.Checkpoint()
	if res := resolveWith("var b = a;"); len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	r.Rollback(cp)
	res := resolveWith("var b = 2; print(a + b);")
	if len(res.Errors) != 0 {
		t.Fatalf("b should be declarable again, got %v", res.Errors)
	}
	if got := strings.Join(addresses(res.Statements), " "); got != "var b#6 print@0:1 a@0:5 b@0:6" {
		t.Fatalf("addresses = %s", got)
	}
}

func TestForgetDropsUnreachedGlobals(t *testing.T) {
	r := New()
	cp := r.Checkpoint()
	if res := r.Resolve(parse(t, "var a = 1; var b = 2; fun c() { return b; }")); len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	r.Forget(cp, 1)

	res := r.Resolve(parse(t, "var b = a; fun c() { return b; }"))
	if len(res.Errors) != 0 {
		t.Fatalf("b and c should be declarable again, got %v", res.Errors)
	}
	if got := strings.Join(addresses(res.Statements), " "); got != "var b#8 a@0:5 fun c#9[] b@1:8" {
		t.Fatalf("addresses = %s", got)
	}
}
