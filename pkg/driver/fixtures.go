package driver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Fixture is a golden test case: a program and everything it should produce.
type Fixture struct {
	Path        string   `yaml:"-"`
	Name        string   `yaml:"name"`
	Source      string   `yaml:"source"`
	Stdin       string   `yaml:"stdin"`
	Stdout      string   `yaml:"stdout"`
	Result      string   `yaml:"result"`
	Diagnostics []string `yaml:"diagnostics"`
	Typecheck   string   `yaml:"typecheck"`
	Warnings    bool     `yaml:"warnings"`
}

// FixtureOutcome records how one fixture fared.
type FixtureOutcome struct {
	Fixture  *Fixture
	Failures []string
}

// Passed reports whether every expectation held.
func (o FixtureOutcome) Passed() bool { return len(o.Failures) == 0 }

// LoadFixture decodes one fixture file.
func LoadFixture(path string) (*Fixture, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fixture: open %s: %w", path, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	var fx Fixture
	if err := decoder.Decode(&fx); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("fixture: %s is empty", path)
		}
		return nil, fmt.Errorf("fixture: parse %s: %w", path, err)
	}
	fx.Path = path
	if fx.Name == "" {
		fx.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if _, err := ParseRunResult(fx.Result); err != nil {
		return nil, fmt.Errorf("fixture: %s: %w", path, err)
	}
	if fx.Typecheck != "" && !TypecheckMode(fx.Typecheck).IsValid() {
		return nil, fmt.Errorf("fixture: %s: unsupported typecheck mode %q", path, fx.Typecheck)
	}
	return &fx, nil
}

// LoadFixtures decodes every .yml and .yaml file in dir, sorted by name.
func LoadFixtures(dir string) ([]*Fixture, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("fixture: read %s: %w", dir, err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".yml", ".yaml":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	fixtures := make([]*Fixture, 0, len(paths))
	for _, path := range paths {
		fx, err := LoadFixture(path)
		if err != nil {
			return nil, err
		}
		fixtures = append(fixtures, fx)
	}
	return fixtures, nil
}

// RunFixture executes fx in a fresh session with a frozen clock and
// compares stdout, the run result and the diagnostics.
func RunFixture(fx *Fixture) FixtureOutcome {
	var stdout bytes.Buffer
	reporter := &CollectingReporter{}
	session := NewSession(Options{
		Stdout:           &stdout,
		Stdin:            strings.NewReader(fx.Stdin),
		Debug:            &stdout,
		Reporter:         reporter,
		Typecheck:        TypecheckMode(fx.Typecheck),
		SuppressWarnings: !fx.Warnings,
		Now:              func() time.Time { return time.UnixMilli(0) },
		Sleep:            func(time.Duration) {},
	})
	result := session.Run(fx.Source)

	outcome := FixtureOutcome{Fixture: fx}
	want, _ := ParseRunResult(fx.Result)
	if result != want {
		outcome.Failures = append(outcome.Failures, fmt.Sprintf("result = %s, want %s", result, want))
	}
	if stdout.String() != fx.Stdout {
		outcome.Failures = append(outcome.Failures, fmt.Sprintf("stdout = %q, want %q", stdout.String(), fx.Stdout))
	}
	got := reporter.Lines()
	if strings.Join(got, "\n") != strings.Join(fx.Diagnostics, "\n") {
		outcome.Failures = append(outcome.Failures, fmt.Sprintf("diagnostics = %q, want %q", got, fx.Diagnostics))
	}
	return outcome
}

// RunFixtures loads and runs every fixture in dir.
func RunFixtures(dir string) ([]FixtureOutcome, error) {
	fixtures, err := LoadFixtures(dir)
	if err != nil {
		return nil, err
	}
	outcomes := make([]FixtureOutcome, 0, len(fixtures))
	for _, fx := range fixtures {
		outcomes = append(outcomes, RunFixture(fx))
	}
	return outcomes, nil
}
