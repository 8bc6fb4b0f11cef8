package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"klox/interpreter-go/pkg/driver"
	"klox/interpreter-go/pkg/lexer"
)

const (
	historyFile = "repl_history"
	promptMain  = "> "
	promptCont  = ". "
)

// prompter is the part of liner.State the read loop needs.
type prompter interface {
	Prompt(prompt string) (string, error)
}

func runRepl(args []string) int {
	flags, rest, err := parseRunFlags(args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	if len(rest) > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(rest, " "))
		return exitUsage
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if histPath := replHistoryPath(); histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	fmt.Fprintf(stdout, "%s REPL. Ctrl+C cancels input, Ctrl+D exits.\n", cliToolVersion)
	replLoop(ln, newReplSession(flags), ln.AppendHistory)
	return exitOK
}

func newReplSession(flags runFlags) *driver.Session {
	opts := driver.Options{
		Stdout:           stdout,
		Stdin:            stdin,
		Debug:            stdout,
		Reporter:         &driver.ConsoleReporter{Out: stderr},
		SuppressWarnings: true,
	}
	flags.apply(&opts)
	return driver.NewSession(opts)
}

// replLoop runs each complete input in session until the prompter reports
// EOF. Errors leave the session usable for the next input.
func replLoop(p prompter, session *driver.Session, remember func(string)) {
	for {
		src, ok := readInput(p)
		if !ok {
			fmt.Fprintln(stdout)
			return
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		if remember != nil {
			remember(src)
		}
		session.Run(src)
	}
}

// readInput keeps prompting while braces or parentheses are open. Ctrl+C
// discards the pending input; ok is false on EOF.
func readInput(p prompter) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := p.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			fmt.Fprintln(stderr, err)
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if src := b.String(); !needsMore(src) {
			return src, true
		}
	}
}

// needsMore reports whether src has unclosed braces or parentheses.
func needsMore(src string) bool {
	tokens, _ := lexer.Scan(src)
	depth := 0
	for _, tok := range tokens {
		switch tok.Type {
		case lexer.LeftBrace, lexer.LeftParen:
			depth++
		case lexer.RightBrace, lexer.RightParen:
			depth--
		}
	}
	return depth > 0
}

func replHistoryPath() string {
	dir, err := driver.DefaultCacheDir()
	if err != nil {
		return ""
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ""
	}
	return filepath.Join(dir, historyFile)
}
