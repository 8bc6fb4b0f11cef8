package driver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLockfileWriteAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, LockfileName)
	lock := NewLockfile("Demo", "klox test")
	lock.Upsert(&LockedScript{Name: "zeta", Version: "main@abc", Source: "git+https://example.com/z.git@abc", File: "z.klox", Checksum: "11"})
	lock.Upsert(&LockedScript{Name: "alpha", Version: "v1@def", Source: "git+https://example.com/a.git@def", File: "a.klox", Checksum: "22"})
	lock.Upsert(&LockedScript{Name: "zeta", Version: "main@fff", Source: "git+https://example.com/z.git@fff", File: "z.klox", Checksum: "33"})
	if err := WriteLockfile(lock, path); err != nil {
		t.Fatalf("WriteLockfile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "root: demo\n") || !strings.Contains(string(data), "- name: alpha\n") {
		t.Fatalf("unexpected lockfile:\n%s", data)
	}

	loaded, err := LoadLockfile(path)
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	if loaded.Tool != "klox test" || len(loaded.Scripts) != 2 {
		t.Fatalf("loaded = %+v", loaded)
	}
	if loaded.Scripts[0].Name != "alpha" || loaded.Scripts[1].Name != "zeta" {
		t.Fatalf("scripts not sorted: %s, %s", loaded.Scripts[0].Name, loaded.Scripts[1].Name)
	}
	zeta, ok := loaded.Find("zeta")
	if !ok || zeta.Checksum != "33" || zeta.Version != "main@fff" {
		t.Fatalf("zeta = %+v", zeta)
	}
}

func TestLoadLockfileRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), LockfileName)
	if err := os.WriteFile(path, []byte("root: x\npackages: []\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadLockfile(path); err == nil || !strings.Contains(err.Error(), "lockfile: parse") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestLockedCommit(t *testing.T) {
	if got := lockedCommit("git+git@example.com:me/repo.git@0123abc"); got != "0123abc" {
		t.Fatalf("lockedCommit = %q", got)
	}
	if got := lockedCommit("path+./x"); got != "" {
		t.Fatalf("lockedCommit = %q", got)
	}
}
