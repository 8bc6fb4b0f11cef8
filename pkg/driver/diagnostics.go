package driver

import (
	"fmt"
	"io"
)

// DiagnosticKind tags the phase a diagnostic came from.
type DiagnosticKind string

const (
	KindScanError    DiagnosticKind = "ScanError"
	KindParseError   DiagnosticKind = "ParseError"
	KindResolveError DiagnosticKind = "ResolveError"
	KindTypeError    DiagnosticKind = "TypeError"
	KindRuntimeError DiagnosticKind = "RuntimeError"
	KindWarning      DiagnosticKind = "Warning"
)

// Diagnostic is one reported problem. Where is only set for parse errors.
type Diagnostic struct {
	Kind    DiagnosticKind `yaml:"kind"`
	Line    int            `yaml:"line"`
	Where   string         `yaml:"where,omitempty"`
	Message string         `yaml:"message"`
}

func (d Diagnostic) String() string {
	if d.Where != "" {
		return fmt.Sprintf("[%s] line %d %s: %s", d.Kind, d.Line, d.Where, d.Message)
	}
	return fmt.Sprintf("[%s] line %d: %s", d.Kind, d.Line, d.Message)
}

// Reporter receives every diagnostic a session produces.
type Reporter interface {
	Report(Diagnostic)
}

// ConsoleReporter writes one line per diagnostic.
type ConsoleReporter struct {
	Out io.Writer
}

func (r *ConsoleReporter) Report(d Diagnostic) {
	fmt.Fprintln(r.Out, d.String())
}

// CollectingReporter keeps diagnostics in memory.
type CollectingReporter struct {
	Diagnostics []Diagnostic
}

func (r *CollectingReporter) Report(d Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, d)
}

// Lines renders the collected diagnostics the way ConsoleReporter would.
func (r *CollectingReporter) Lines() []string {
	out := make([]string, len(r.Diagnostics))
	for i, d := range r.Diagnostics {
		out[i] = d.String()
	}
	return out
}

type discardReporter struct{}

func (discardReporter) Report(Diagnostic) {}
