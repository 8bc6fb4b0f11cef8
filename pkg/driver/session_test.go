package driver

import (
	"bytes"
	"strings"
	"testing"

	"klox/interpreter-go/pkg/ast"
	"klox/interpreter-go/pkg/parser"
)

func newTestSession(opts Options) (*Session, *bytes.Buffer, *CollectingReporter) {
	var out bytes.Buffer
	reporter := &CollectingReporter{}
	opts.Stdout = &out
	opts.Reporter = reporter
	if opts.Debug == nil {
		opts.Debug = &out
	}
	if opts.Stdin == nil {
		opts.Stdin = strings.NewReader("")
	}
	opts.SuppressWarnings = true
	return NewSession(opts), &out, reporter
}

func TestSessionScenarios(t *testing.T) {
	cases := []struct {
		name   string
		src    string
		result RunResult
		stdout string
		diags  []string
	}{
		{
			name:   "recursion",
			src:    "fun f(n) { if (n <= 1) return 1; return n * f(n-1); } print(f(5));",
			result: Success,
			stdout: "120\n",
		},
		{
			name:   "const reassignment",
			src:    "print(0); const c = 5; c = 6;",
			result: StaticError,
			diags:  []string{"[ResolveError] line 1: cannot reassign to const 'c'"},
		},
		{
			name:   "unmatched paren",
			src:    "(1 + 2",
			result: StaticError,
			diags:  []string{"[ParseError] line 1 at end: expected ')' after expression"},
		},
		{
			name:   "mixed addition",
			src:    `"a" + 1;`,
			result: RuntimeError,
			diags:  []string{"[RuntimeError] line 1: cannot add values of different types"},
		},
		{
			name:   "runtime error stops the run",
			src:    "print(1);\nsubstr(\"ab\", 0, 5);\nprint(2);",
			result: RuntimeError,
			stdout: "1\n",
			diags:  []string{"[RuntimeError] line 2: string indexes are out of bounds (start 0, end 5, length 2)"},
		},
		{
			name:   "multiple parse errors",
			src:    "var = 1;\nprint(1);\nvar b = ;\n",
			result: StaticError,
			diags: []string{
				"[ParseError] line 1 at '=': expected variable name",
				"[ParseError] line 3 at ';': expected expression",
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			session, out, reporter := newTestSession(Options{})
			if got := session.Run(tc.src); got != tc.result {
				t.Fatalf("result = %s, want %s (diagnostics %v)", got, tc.result, reporter.Lines())
			}
			if out.String() != tc.stdout {
				t.Fatalf("stdout = %q, want %q", out.String(), tc.stdout)
			}
			if strings.Join(reporter.Lines(), "\n") != strings.Join(tc.diags, "\n") {
				t.Fatalf("diagnostics = %q, want %q", reporter.Lines(), tc.diags)
			}
		})
	}
}

func TestSessionPersistsAcrossRuns(t *testing.T) {
	session, out, reporter := newTestSession(Options{})
	lines := []struct {
		src    string
		result RunResult
	}{
		{"var total = 1;", Success},
		{"fun add(n) { total = total + n; return total; }", Success},
		{`var broken = total < "x";`, StaticError},
		{"print(broken);", StaticError},
		{"print(add(4));", Success},
		{"var broken = 2; print(broken);", Success},
	}
	for _, line := range lines {
		if got := session.Run(line.src); got != line.result {
			t.Fatalf("%q: result = %s, want %s (diagnostics %v)", line.src, got, line.result, reporter.Lines())
		}
	}
	if out.String() != "5\n2\n" {
		t.Fatalf("stdout = %q", out.String())
	}
}

func TestRuntimeFailureForgetsUnboundGlobals(t *testing.T) {
	session, out, reporter := newTestSession(Options{})
	lines := []struct {
		src    string
		result RunResult
	}{
		{`var a = 1; var x = "a" + 1; var y = 3;`, RuntimeError},
		{"print(a);", Success},
		{"print(x);", StaticError},
		{"var x = 2; var y = x + a; print(y);", Success},
	}
	for _, line := range lines {
		if got := session.Run(line.src); got != line.result {
			t.Fatalf("%q: result = %s, want %s (diagnostics %v)", line.src, got, line.result, reporter.Lines())
		}
	}
	if out.String() != "1\n3\n" {
		t.Fatalf("stdout = %q", out.String())
	}
	want := []string{
		"[RuntimeError] line 1: cannot add values of different types",
		"[ResolveError] line 1: undefined variable 'x'",
	}
	if strings.Join(reporter.Lines(), "\n") != strings.Join(want, "\n") {
		t.Fatalf("diagnostics = %q", reporter.Lines())
	}
}

func TestTypecheckModes(t *testing.T) {
	src := `var x = 1 < "a";`
	for _, tc := range []struct {
		mode   TypecheckMode
		result RunResult
		kinds  []DiagnosticKind
	}{
		{TypecheckStrict, StaticError, []DiagnosticKind{KindTypeError}},
		{TypecheckWarn, RuntimeError, []DiagnosticKind{KindWarning, KindRuntimeError}},
		{TypecheckOff, RuntimeError, []DiagnosticKind{KindRuntimeError}},
	} {
		session, _, reporter := newTestSession(Options{Typecheck: tc.mode})
		if got := session.Run(src); got != tc.result {
			t.Fatalf("%s: result = %s, want %s", tc.mode, got, tc.result)
		}
		var kinds []DiagnosticKind
		for _, d := range reporter.Diagnostics {
			kinds = append(kinds, d.Kind)
		}
		if len(kinds) != len(tc.kinds) {
			t.Fatalf("%s: kinds = %v, want %v", tc.mode, kinds, tc.kinds)
		}
		for i := range kinds {
			if kinds[i] != tc.kinds[i] {
				t.Fatalf("%s: kinds = %v, want %v", tc.mode, kinds, tc.kinds)
			}
		}
	}
}

func TestConsoleReporterFormat(t *testing.T) {
	var buf bytes.Buffer
	r := &ConsoleReporter{Out: &buf}
	r.Report(Diagnostic{Kind: KindScanError, Line: 3, Message: "unexpected character '#'"})
	r.Report(Diagnostic{Kind: KindParseError, Line: 1, Where: "at end", Message: "expected ')' after expression"})
	want := "[ScanError] line 3: unexpected character '#'\n[ParseError] line 1 at end: expected ')' after expression\n"
	if buf.String() != want {
		t.Fatalf("output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestCheckedProgramRoundTrips(t *testing.T) {
	src := `
var total: Number = 0;
const label = "sum";
fun add(a: Number, b): Number { return a + b; }
for (var i = 0; i < 3; i += 1) {
  if (i == 1) continue;
  total = add(total, i * 2 - -1);
}
var ok = (total between 1 and 10) ? !false : nil ?? true;
var fallback;
fallback ??= label;
loop { break; }
print((total + 1) % 4 / 2);
print(ok && fallback != nil || false);
`
	session, _, reporter := newTestSession(Options{})
	stmts, ok := session.Check(src)
	if !ok {
		t.Fatalf("unexpected diagnostics: %v", reporter.Lines())
	}
	printed := ast.Print(stmts)
	reparsed, scanErrs, parseErrs := parser.ParseSource(printed)
	if len(scanErrs) != 0 || len(parseErrs) != 0 {
		t.Fatalf("printed program does not parse: %v %v\n%s", scanErrs, parseErrs, printed)
	}
	if got, want := ast.Sexpr(reparsed, false), ast.Sexpr(stmts, false); got != want {
		t.Fatalf("round trip mismatch:\n got %s\nwant %s\nprinted:\n%s", got, want, printed)
	}
}
