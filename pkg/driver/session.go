// Package driver ties the klox phases together and hosts the project-level
// plumbing around them: manifests, lockfiles, fetched scripts and fixtures.
package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"klox/interpreter-go/pkg/ast"
	"klox/interpreter-go/pkg/interpreter"
	"klox/interpreter-go/pkg/parser"
	"klox/interpreter-go/pkg/resolver"
	"klox/interpreter-go/pkg/typechecker"
)

// RunResult is the outcome of one Run call.
type RunResult int

const (
	Success RunResult = iota
	StaticError
	RuntimeError
)

func (r RunResult) String() string {
	switch r {
	case Success:
		return "success"
	case StaticError:
		return "static_error"
	case RuntimeError:
		return "runtime_error"
	default:
		return fmt.Sprintf("unknown_result_%d", int(r))
	}
}

// ParseRunResult is the inverse of RunResult.String.
func ParseRunResult(s string) (RunResult, error) {
	switch strings.TrimSpace(s) {
	case "success", "":
		return Success, nil
	case "static_error":
		return StaticError, nil
	case "runtime_error":
		return RuntimeError, nil
	default:
		return Success, fmt.Errorf("unknown run result %q", s)
	}
}

// TypecheckMode controls how type errors affect a run.
type TypecheckMode string

const (
	TypecheckStrict TypecheckMode = "strict"
	TypecheckWarn   TypecheckMode = "warn"
	TypecheckOff    TypecheckMode = "off"
)

// IsValid reports whether the mode is recognised.
func (m TypecheckMode) IsValid() bool {
	switch m {
	case TypecheckStrict, TypecheckWarn, TypecheckOff:
		return true
	default:
		return false
	}
}

// Options configures a Session. Zero values select process stdio, a
// discarding reporter and strict type checking.
type Options struct {
	Stdout    io.Writer
	Stdin     io.Reader
	Debug     io.Writer
	Reporter  Reporter
	Typecheck TypecheckMode
	// SuppressWarnings drops resolver warnings instead of reporting them.
	SuppressWarnings bool
	Now              func() time.Time
	Sleep            func(time.Duration)
}

// Session runs source text through every phase. Its resolver, checker and
// interpreter persist across Run calls so later input sees earlier globals.
type Session struct {
	resolver *resolver.Resolver
	checker  *typechecker.Checker
	interp   *interpreter.Interpreter
	reporter Reporter
	mode     TypecheckMode
	warnings bool
}

// NewSession builds a session from opts.
func NewSession(opts Options) *Session {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Debug == nil {
		opts.Debug = os.Stderr
	}
	if opts.Reporter == nil {
		opts.Reporter = discardReporter{}
	}
	if opts.Typecheck == "" {
		opts.Typecheck = TypecheckStrict
	}
	interpOpts := []interpreter.Option{
		interpreter.WithStdout(opts.Stdout),
		interpreter.WithStdin(opts.Stdin),
		interpreter.WithDebugWriter(opts.Debug),
	}
	if opts.Now != nil {
		interpOpts = append(interpOpts, interpreter.WithClock(opts.Now))
	}
	if opts.Sleep != nil {
		interpOpts = append(interpOpts, interpreter.WithSleep(opts.Sleep))
	}
	return &Session{
		resolver: resolver.New(),
		checker:  typechecker.New(),
		interp:   interpreter.New(interpOpts...),
		reporter: opts.Reporter,
		mode:     opts.Typecheck,
		warnings: !opts.SuppressWarnings,
	}
}

// Run checks source and, if no static errors were found, interprets it.
func (s *Session) Run(source string) RunResult {
	stmts, checkpoint, ok := s.check(source)
	if !ok {
		return StaticError
	}
	if err := s.interp.Interpret(stmts); err != nil {
		s.forgetUnbound(stmts, checkpoint)
		var rt *interpreter.RuntimeError
		if errors.As(err, &rt) {
			s.report(KindRuntimeError, rt.Line, "", rt.Message)
		} else {
			s.report(KindRuntimeError, 0, "", err.Error())
		}
		return RuntimeError
	}
	return Success
}

// Check runs the static phases only. The returned statements are resolved
// and, unless type checking is off, annotated with inferred types.
func (s *Session) Check(source string) ([]ast.Statement, bool) {
	stmts, _, ok := s.check(source)
	return stmts, ok
}

func (s *Session) check(source string) ([]ast.Statement, resolver.Checkpoint, bool) {
	checkpoint := s.resolver.Checkpoint()
	stmts, scanErrs, parseErrs := parser.ParseSource(source)
	for _, e := range scanErrs {
		s.report(KindScanError, e.Line, "", e.Message)
	}
	for _, e := range parseErrs {
		s.report(KindParseError, e.Line, e.Where, e.Message)
	}
	if len(scanErrs) > 0 || len(parseErrs) > 0 {
		return stmts, checkpoint, false
	}

	resolved := s.resolver.Resolve(stmts)
	for _, e := range resolved.Errors {
		s.report(KindResolveError, e.Line, "", e.Message)
	}
	if s.warnings {
		for _, w := range resolved.Warnings {
			s.report(KindWarning, w.Line, "", w.Message)
		}
	}
	if len(resolved.Errors) > 0 {
		return resolved.Statements, checkpoint, false
	}

	if s.mode == TypecheckOff {
		return resolved.Statements, checkpoint, true
	}
	typed := s.checker.Infer(resolved.Statements)
	for _, e := range typed.Errors {
		if s.mode == TypecheckWarn {
			s.report(KindWarning, e.Line, "", e.Message)
		} else {
			s.report(KindTypeError, e.Line, "", e.Message)
		}
	}
	if len(typed.Errors) > 0 && s.mode == TypecheckStrict {
		s.resolver.Rollback(checkpoint)
		return typed.Statements, checkpoint, false
	}
	return typed.Statements, checkpoint, true
}

// forgetUnbound drops the top-level declarations a failed run never bound,
// so later input can declare those names again.
func (s *Session) forgetUnbound(stmts []ast.Statement, checkpoint resolver.Checkpoint) {
	global := s.interp.GlobalEnvironment()
	kept := 0
	for _, stmt := range stmts {
		slot, ok := declaredSlot(stmt)
		if !ok {
			continue
		}
		if _, bound := global.Name(slot); !bound {
			break
		}
		kept++
	}
	s.resolver.Forget(checkpoint, kept)
}

func declaredSlot(stmt ast.Statement) (int, bool) {
	switch d := stmt.(type) {
	case *ast.Var:
		return d.Slot, true
	case *ast.Const:
		return d.Slot, true
	case *ast.Function:
		return d.Slot, true
	default:
		return 0, false
	}
}

func (s *Session) report(kind DiagnosticKind, line int, where, message string) {
	s.reporter.Report(Diagnostic{Kind: kind, Line: line, Where: where, Message: message})
}

// RunFile reads path and runs it in a fresh session.
func RunFile(path string, opts Options) (RunResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return StaticError, fmt.Errorf("read %s: %w", path, err)
	}
	return NewSession(opts).Run(string(data)), nil
}
