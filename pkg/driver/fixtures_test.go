package driver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGoldenFixtures(t *testing.T) {
	outcomes, err := RunFixtures(filepath.Join("testdata", "fixtures"))
	if err != nil {
		t.Fatalf("RunFixtures: %v", err)
	}
	if len(outcomes) == 0 {
		t.Fatalf("no fixtures found")
	}
	for _, outcome := range outcomes {
		outcome := outcome
		t.Run(outcome.Fixture.Name, func(t *testing.T) {
			if !outcome.Passed() {
				t.Fatalf("%s:\n%s", outcome.Fixture.Path, strings.Join(outcome.Failures, "\n"))
			}
		})
	}
}

func TestFixtureReportsMismatches(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wrong.yml")
	content := "source: |\n  print(1);\nstdout: |\n  2\nresult: runtime_error\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	outcomes, err := RunFixtures(dir)
	if err != nil {
		t.Fatalf("RunFixtures: %v", err)
	}
	if len(outcomes) != 1 || outcomes[0].Passed() {
		t.Fatalf("expected one failing fixture, got %+v", outcomes)
	}
	if outcomes[0].Fixture.Name != "wrong" {
		t.Fatalf("fixture name defaulted to %q", outcomes[0].Fixture.Name)
	}
	if len(outcomes[0].Failures) != 2 {
		t.Fatalf("failures = %v", outcomes[0].Failures)
	}
}

func TestLoadFixtureRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yml")
	if err := os.WriteFile(path, []byte("source: \"1;\"\nexpect: 1\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadFixture(path); err == nil {
		t.Fatalf("expected unknown field error")
	}
	if err := os.WriteFile(path, []byte("source: \"1;\"\nresult: maybe\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadFixture(path); err == nil || !strings.Contains(err.Error(), "unknown run result") {
		t.Fatalf("expected result error, got %v", err)
	}
}
