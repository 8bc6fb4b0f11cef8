package main

import (
	"fmt"
	"io"
)

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  klox                          start the REPL")
	fmt.Fprintln(w, "  klox <file.klox>")
	fmt.Fprintln(w, "  klox run [flags] [script|file.klox]")
	fmt.Fprintln(w, "  klox check [flags] [script|file.klox]")
	fmt.Fprintln(w, "  klox tokens <file.klox>")
	fmt.Fprintln(w, "  klox ast <file.klox>")
	fmt.Fprintln(w, "  klox repl [--typecheck mode]")
	fmt.Fprintln(w, "  klox fetch [--update]")
	fmt.Fprintln(w, "  klox test [fixture-dir]")
	fmt.Fprintln(w, "  klox version")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  --typecheck strict|warn|off   how type errors affect a run")
	fmt.Fprintln(w, "  --no-warnings                 suppress resolver warnings")
}
