package driver

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ResolveScript returns the file to run for spec. Local scripts resolve
// against the manifest directory. Git scripts come from the cache when lock
// pins them, and are fetched otherwise; changed reports whether lock was
// updated and needs writing.
func ResolveScript(m *Manifest, spec *ScriptSpec, lock *Lockfile, fetcher *GitFetcher) (path string, changed bool, err error) {
	if spec == nil {
		return "", false, fmt.Errorf("resolve script: nil spec")
	}
	if !spec.IsGit() {
		if filepath.IsAbs(spec.Path) {
			return spec.Path, false, nil
		}
		return filepath.Join(m.Dir(), filepath.FromSlash(spec.Path)), false, nil
	}

	pinned := *spec
	if entry, ok := lock.Find(spec.Name); ok && entry.File == spec.File {
		path, cached, err := fetcher.Locate(entry)
		if err != nil {
			return "", false, err
		}
		if cached {
			return path, false, nil
		}
		if commit := lockedCommit(entry.Source); commit != "" {
			pinned.Rev, pinned.Tag, pinned.Branch = commit, "", ""
		}
	}

	entry, path, err := fetcher.Fetch(&pinned)
	if err != nil {
		return "", false, fmt.Errorf("fetch %s: %w", spec.Name, err)
	}
	lock.Upsert(entry)
	return path, true, nil
}

// lockedCommit extracts the commit from a git+url@commit source.
func lockedCommit(source string) string {
	if !strings.HasPrefix(source, "git+") {
		return ""
	}
	idx := strings.LastIndex(source, "@")
	if idx < 0 {
		return ""
	}
	return source[idx+1:]
}
