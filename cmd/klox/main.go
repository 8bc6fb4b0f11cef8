package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"klox/interpreter-go/pkg/ast"
	"klox/interpreter-go/pkg/driver"
	"klox/interpreter-go/pkg/lexer"
	"klox/interpreter-go/pkg/parser"
)

const cliToolVersion = "klox 0.1.0-dev"

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 64
	exitStatic  = 65
	exitRuntime = 70
)

var errManifestNotFound = errors.New(driver.ManifestFileName + " not found")

// Swapped by tests.
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		return runRepl(nil)
	}

	switch args[0] {
	case "--help", "-h", "help":
		printUsage(stdout)
		return exitOK
	case "--version", "-V", "version":
		fmt.Fprintln(stdout, cliToolVersion)
		return exitOK
	case "run":
		return runScript(args[1:])
	case "check":
		return runCheck(args[1:])
	case "tokens":
		return runTokens(args[1:])
	case "ast":
		return runAST(args[1:])
	case "repl":
		return runRepl(args[1:])
	case "fetch":
		return runFetch(args[1:])
	case "test":
		return runTests(args[1:])
	default:
		if len(args) == 1 && looksLikePathCandidate(args[0]) {
			return runScript(args)
		}
		fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		printUsage(stderr)
		return exitUsage
	}
}

// runFlags are the options shared by run, check and repl.
type runFlags struct {
	typecheck  driver.TypecheckMode
	noWarnings bool
}

func parseRunFlags(args []string) (runFlags, []string, error) {
	var flags runFlags
	var rest []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--no-warnings":
			flags.noWarnings = true
		case arg == "--typecheck":
			if i+1 >= len(args) {
				return flags, nil, fmt.Errorf("--typecheck requires a value")
			}
			i++
			flags.typecheck = driver.TypecheckMode(args[i])
		case strings.HasPrefix(arg, "--typecheck="):
			flags.typecheck = driver.TypecheckMode(strings.TrimPrefix(arg, "--typecheck="))
		case strings.HasPrefix(arg, "-") && arg != "-":
			return flags, nil, fmt.Errorf("unknown flag %s", arg)
		default:
			rest = append(rest, arg)
		}
	}
	if flags.typecheck != "" && !flags.typecheck.IsValid() {
		return flags, nil, fmt.Errorf("unsupported --typecheck value %q", flags.typecheck)
	}
	return flags, rest, nil
}

func (f runFlags) apply(opts *driver.Options) {
	if f.typecheck != "" {
		opts.Typecheck = f.typecheck
	}
	if f.noWarnings {
		opts.SuppressWarnings = true
	}
}

func runScript(args []string) int {
	path, opts, code := resolveEntry(args, "run")
	if code != exitOK {
		return code
	}
	result, err := driver.RunFile(path, opts)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}
	return exitCodeFor(result)
}

func runCheck(args []string) int {
	path, opts, code := resolveEntry(args, "check")
	if code != exitOK {
		return code
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "read %s: %v\n", path, err)
		return exitFailure
	}
	if _, ok := driver.NewSession(opts).Check(string(data)); !ok {
		return exitStatic
	}
	return exitOK
}

// resolveEntry picks the script for run/check: a file argument, a script
// named in klox.yml, or the manifest entry when no argument is given.
func resolveEntry(args []string, command string) (string, driver.Options, int) {
	flags, rest, err := parseRunFlags(args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return "", driver.Options{}, exitUsage
	}
	if len(rest) > 1 {
		fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(rest[1:], " "))
		return "", driver.Options{}, exitUsage
	}

	manifest, err := loadManifestFrom(".")
	if err != nil && !errors.Is(err, errManifestNotFound) {
		fmt.Fprintf(stderr, "failed to load manifest: %v\n", err)
		return "", driver.Options{}, exitFailure
	}

	var path string
	switch {
	case len(rest) == 0:
		if manifest == nil {
			fmt.Fprintf(stderr, "%s requires a script or source file (%s not found)\n", command, driver.ManifestFileName)
			return "", driver.Options{}, exitUsage
		}
		path, err = manifest.EntryPath()
		if err != nil {
			fmt.Fprintf(stderr, "manifest error: %v\n", err)
			return "", driver.Options{}, exitFailure
		}
	case manifest != nil && !looksLikePathCandidate(rest[0]):
		spec, ok := manifest.FindScript(rest[0])
		if !ok {
			fmt.Fprintf(stderr, "script %q is not defined in %s\n", rest[0], manifest.Path)
			return "", driver.Options{}, exitUsage
		}
		path, err = resolveManifestScript(manifest, spec)
		if err != nil {
			fmt.Fprintf(stderr, "failed to resolve script %q: %v\n", rest[0], err)
			return "", driver.Options{}, exitFailure
		}
	default:
		path = rest[0]
	}

	opts := driver.Options{Stdout: stdout, Stdin: stdin, Debug: stderr}
	if manifest != nil {
		opts = manifest.Options.SessionOptions(stdout, stderr)
		opts.Stdin = stdin
	}
	opts.Reporter = &driver.ConsoleReporter{Out: stderr}
	flags.apply(&opts)
	return path, opts, exitOK
}

func resolveManifestScript(manifest *driver.Manifest, spec *driver.ScriptSpec) (string, error) {
	if !spec.IsGit() {
		path, _, err := driver.ResolveScript(manifest, spec, nil, nil)
		return path, err
	}
	lock, err := loadLockfileForManifest(manifest)
	if err != nil {
		return "", err
	}
	fetcher, err := newFetcher()
	if err != nil {
		return "", err
	}
	path, changed, err := driver.ResolveScript(manifest, spec, lock, fetcher)
	if err != nil {
		return "", err
	}
	if changed {
		if err := driver.WriteLockfile(lock, lockfilePath(manifest)); err != nil {
			return "", err
		}
	}
	return path, nil
}

func runTokens(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "tokens requires exactly one source file")
		return exitUsage
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(stderr, "read %s: %v\n", args[0], err)
		return exitFailure
	}
	tokens, errs := lexer.Scan(string(data))
	for _, tok := range tokens {
		fmt.Fprintln(stdout, tok.String())
	}
	reporter := &driver.ConsoleReporter{Out: stderr}
	for _, e := range errs {
		reporter.Report(driver.Diagnostic{Kind: driver.KindScanError, Line: e.Line, Message: e.Message})
	}
	if len(errs) > 0 {
		return exitStatic
	}
	return exitOK
}

func runAST(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "ast requires exactly one source file")
		return exitUsage
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(stderr, "read %s: %v\n", args[0], err)
		return exitFailure
	}
	stmts, scanErrs, parseErrs := parser.ParseSource(string(data))
	reporter := &driver.ConsoleReporter{Out: stderr}
	for _, e := range scanErrs {
		reporter.Report(driver.Diagnostic{Kind: driver.KindScanError, Line: e.Line, Message: e.Message})
	}
	for _, e := range parseErrs {
		reporter.Report(driver.Diagnostic{Kind: driver.KindParseError, Line: e.Line, Where: e.Where, Message: e.Message})
	}
	if len(scanErrs) > 0 || len(parseErrs) > 0 {
		return exitStatic
	}
	fmt.Fprint(stdout, ast.Print(stmts))
	return exitOK
}

// runFetch clones every git script in klox.yml and records it in klox.lock.
// With --update, existing pins are ignored.
func runFetch(args []string) int {
	update := false
	for _, arg := range args {
		if arg != "--update" {
			fmt.Fprintf(stderr, "unexpected argument %s\n", arg)
			return exitUsage
		}
		update = true
	}

	manifest, err := loadManifestFrom(".")
	if err != nil {
		fmt.Fprintf(stderr, "failed to load manifest: %v\n", err)
		return exitFailure
	}
	lock := driver.NewLockfile(manifest.Name, cliToolVersion)
	if !update {
		if lock, err = loadLockfileForManifest(manifest); err != nil {
			fmt.Fprintln(stderr, err)
			return exitFailure
		}
	}
	fetcher, err := newFetcher()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}

	fetched := 0
	for _, name := range manifest.ScriptOrder {
		spec := manifest.Scripts[name]
		if !spec.IsGit() {
			continue
		}
		if _, _, err := driver.ResolveScript(manifest, spec, lock, fetcher); err != nil {
			fmt.Fprintf(stderr, "fetch %s: %v\n", name, err)
			return exitFailure
		}
		entry, _ := lock.Find(name)
		fmt.Fprintf(stdout, "fetched %s %s\n", entry.Name, entry.Version)
		fetched++
	}
	if err := driver.WriteLockfile(lock, lockfilePath(manifest)); err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}
	if fetched == 0 {
		fmt.Fprintln(stdout, "no git scripts to fetch")
	}
	return exitOK
}

func runTests(args []string) int {
	if len(args) > 1 {
		fmt.Fprintln(stderr, "test accepts at most one fixture directory")
		return exitUsage
	}
	dir := "fixtures"
	if len(args) == 1 {
		dir = args[0]
	}
	outcomes, err := driver.RunFixtures(dir)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}
	failed := 0
	for _, outcome := range outcomes {
		if outcome.Passed() {
			fmt.Fprintf(stdout, "PASS %s\n", outcome.Fixture.Name)
			continue
		}
		failed++
		fmt.Fprintf(stdout, "FAIL %s\n", outcome.Fixture.Name)
		for _, failure := range outcome.Failures {
			fmt.Fprintf(stdout, "    %s\n", failure)
		}
	}
	fmt.Fprintf(stdout, "%d passed, %d failed\n", len(outcomes)-failed, failed)
	if failed > 0 {
		return exitFailure
	}
	return exitOK
}

func exitCodeFor(result driver.RunResult) int {
	switch result {
	case driver.StaticError:
		return exitStatic
	case driver.RuntimeError:
		return exitRuntime
	default:
		return exitOK
	}
}

func loadManifestFrom(dir string) (*driver.Manifest, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	path, ok := driver.FindManifest(abs)
	if !ok {
		return nil, errManifestNotFound
	}
	return driver.LoadManifest(path)
}

func lockfilePath(manifest *driver.Manifest) string {
	return filepath.Join(manifest.Dir(), driver.LockfileName)
}

// loadLockfileForManifest returns a fresh lockfile when klox.lock does not
// exist yet.
func loadLockfileForManifest(manifest *driver.Manifest) (*driver.Lockfile, error) {
	lock, err := driver.LoadLockfile(lockfilePath(manifest))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return driver.NewLockfile(manifest.Name, cliToolVersion), nil
		}
		return nil, fmt.Errorf("failed to read lockfile: %w", err)
	}
	lock.Tool = cliToolVersion
	return lock, nil
}

func newFetcher() (*driver.GitFetcher, error) {
	cacheDir, err := driver.DefaultCacheDir()
	if err != nil {
		return nil, err
	}
	return driver.NewGitFetcher(cacheDir), nil
}

func looksLikePathCandidate(arg string) bool {
	return strings.HasSuffix(arg, ".klox") || strings.ContainsRune(arg, filepath.Separator) || strings.HasPrefix(arg, ".")
}
