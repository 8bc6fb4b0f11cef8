package driver

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// initScriptRepo creates a local repository holding one script and tags
// the commit v1.
func initScriptRepo(t *testing.T, file, content string) (string, plumbing.Hash) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init repo: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, file), []byte(content), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}
	if _, err := wt.Add(file); err != nil {
		t.Fatalf("add: %v", err)
	}
	hash, err := wt.Commit("init", &git.CommitOptions{
		Author: &object.Signature{Name: "klox", Email: "klox@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if _, err := repo.CreateTag("v1", hash, nil); err != nil {
		t.Fatalf("tag: %v", err)
	}
	return dir, hash
}

func TestGitFetcherClonesTaggedScript(t *testing.T) {
	repoDir, hash := initScriptRepo(t, "greet.klox", `print("hello from git");`)
	fetcher := NewGitFetcher(t.TempDir())
	spec := &ScriptSpec{Name: "greet", Git: repoDir, Tag: "v1", File: "greet.klox"}

	entry, path, err := fetcher.Fetch(spec)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if entry.Version != "v1@"+hash.String() {
		t.Fatalf("version = %q", entry.Version)
	}
	if entry.Source != "git+"+repoDir+"@"+hash.String() || entry.Checksum == "" {
		t.Fatalf("entry = %+v", entry)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(path), ".git")); !os.IsNotExist(err) {
		t.Fatalf("checkout should not keep .git: %v", err)
	}

	var out bytes.Buffer
	result, err := RunFile(path, Options{Stdout: &out})
	if err != nil || result != Success {
		t.Fatalf("RunFile = %s, %v", result, err)
	}
	if out.String() != "hello from git\n" {
		t.Fatalf("stdout = %q", out.String())
	}

	located, ok, err := fetcher.Locate(entry)
	if err != nil || !ok || located != path {
		t.Fatalf("Locate = %q, %v, %v", located, ok, err)
	}
	if err := os.WriteFile(path, []byte("print(1);"), 0o644); err != nil {
		t.Fatalf("tamper: %v", err)
	}
	if _, _, err := fetcher.Locate(entry); !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected checksum mismatch, got %v", err)
	}
}

func TestResolveScriptRecordsLock(t *testing.T) {
	repoDir, hash := initScriptRepo(t, "lib.klox", "print(42);")
	projectDir := t.TempDir()
	m, err := LoadManifest(writeManifest(t, projectDir, `
name: proj
scripts:
  local: local.klox
  lib:
    git: `+repoDir+`
    branch: master
    file: lib.klox
`))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	lock := NewLockfile(m.Name, "klox")
	fetcher := NewGitFetcher(t.TempDir())

	local, _ := m.FindScript("local")
	path, changed, err := ResolveScript(m, local, lock, fetcher)
	if err != nil || changed || path != filepath.Join(projectDir, "local.klox") {
		t.Fatalf("local = %q, %v, %v", path, changed, err)
	}

	lib, _ := m.FindScript("lib")
	first, changed, err := ResolveScript(m, lib, lock, fetcher)
	if err != nil || !changed {
		t.Fatalf("first resolve = %q, %v, %v", first, changed, err)
	}
	entry, ok := lock.Find("lib")
	if !ok || lockedCommit(entry.Source) != hash.String() {
		t.Fatalf("lock entry = %+v", entry)
	}
	second, changed, err := ResolveScript(m, lib, lock, fetcher)
	if err != nil || changed || second != first {
		t.Fatalf("second resolve = %q, %v, %v", second, changed, err)
	}
}
