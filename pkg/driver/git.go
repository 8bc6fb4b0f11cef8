package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ErrChecksumMismatch reports a cached checkout that no longer matches the
// checksum recorded in klox.lock.
var ErrChecksumMismatch = errors.New("fetch: checksum mismatch")

// DefaultCacheDir is $KLOX_HOME, or ~/.klox when unset.
func DefaultCacheDir() (string, error) {
	if home := strings.TrimSpace(os.Getenv("KLOX_HOME")); home != "" {
		return home, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("fetch: locate home directory: %w", err)
	}
	return filepath.Join(userHome, ".klox"), nil
}

// GitFetcher clones script repositories into a cache directory, one
// checkout per pinned version.
type GitFetcher struct {
	CacheDir string
}

// NewGitFetcher returns nil when cacheDir is empty.
func NewGitFetcher(cacheDir string) *GitFetcher {
	if cacheDir == "" {
		return nil
	}
	return &GitFetcher{CacheDir: cacheDir}
}

// Fetch clones spec.Git, checks out the requested revision and returns the
// lock entry plus the absolute path of the script file.
func (g *GitFetcher) Fetch(spec *ScriptSpec) (*LockedScript, string, error) {
	if g == nil {
		return nil, "", errors.New("git fetcher unavailable")
	}
	if !spec.IsGit() {
		return nil, "", fmt.Errorf("script %q: git URL required", spec.Name)
	}

	baseDir := g.scriptDir(spec.Name)
	version, commit, err := ensureGitCheckout(baseDir, spec)
	if err != nil {
		return nil, "", err
	}

	checkoutDir := filepath.Join(baseDir, sanitizePathSegment(version))
	checksum, err := dirChecksum(checkoutDir)
	if err != nil {
		return nil, "", err
	}
	entry := &LockedScript{
		Name:     sanitizeSegment(spec.Name),
		Version:  version,
		Source:   fmt.Sprintf("git+%s@%s", spec.Git, commit),
		File:     spec.File,
		Checksum: checksum,
	}
	return entry, filepath.Join(checkoutDir, filepath.FromSlash(spec.File)), nil
}

// Locate returns the script path for a locked entry whose checkout is
// already cached, verifying its checksum. ok is false when nothing is cached.
func (g *GitFetcher) Locate(entry *LockedScript) (path string, ok bool, err error) {
	if g == nil || entry == nil {
		return "", false, nil
	}
	checkoutDir := filepath.Join(g.scriptDir(entry.Name), sanitizePathSegment(entry.Version))
	if _, statErr := os.Stat(checkoutDir); statErr != nil {
		return "", false, nil
	}
	checksum, err := dirChecksum(checkoutDir)
	if err != nil {
		return "", false, err
	}
	if checksum != entry.Checksum {
		return "", false, fmt.Errorf("%w: %s has %s, lockfile has %s", ErrChecksumMismatch, entry.Name, checksum, entry.Checksum)
	}
	return filepath.Join(checkoutDir, filepath.FromSlash(entry.File)), true, nil
}

func (g *GitFetcher) scriptDir(name string) string {
	return filepath.Join(g.CacheDir, "scripts", sanitizeSegment(name))
}

func ensureGitCheckout(baseDir string, spec *ScriptSpec) (string, string, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", "", err
	}

	revision, descriptor, err := gitRevisionFromSpec(spec)
	if err != nil {
		return "", "", err
	}

	if spec.Rev != "" {
		existing := filepath.Join(baseDir, sanitizePathSegment(spec.Rev))
		if _, err := os.Stat(existing); err == nil {
			return spec.Rev, spec.Rev, nil
		}
	}

	tmpDir, err := os.MkdirTemp(baseDir, "git-fetch-*")
	if err != nil {
		return "", "", err
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		return "", "", err
	}

	repo, err := git.PlainClone(tmpDir, false, &git.CloneOptions{
		URL:               spec.Git,
		RecurseSubmodules: git.DefaultSubmoduleRecursionDepth,
	})
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git clone %s: %w", spec.Git, err)
	}

	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("resolve revision %s: %w", revision, err)
	}

	version := gitPinnedVersion(descriptor, hash.String())
	targetDir := filepath.Join(baseDir, sanitizePathSegment(version))
	if _, err := os.Stat(targetDir); err == nil {
		_ = os.RemoveAll(tmpDir)
		return version, hash.String(), nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{
		Hash:  *hash,
		Force: true,
	}); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git checkout %s: %w", revision, err)
	}
	// The checksum covers the working tree only.
	if err := os.RemoveAll(filepath.Join(tmpDir, git.GitDirName)); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}

	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	return version, hash.String(), nil
}

func gitPinnedVersion(descriptor, commit string) string {
	if commit == "" {
		return descriptor
	}
	if descriptor == "" || descriptor == commit {
		return commit
	}
	return fmt.Sprintf("%s@%s", descriptor, commit)
}

func gitRevisionFromSpec(spec *ScriptSpec) (plumbing.Revision, string, error) {
	if spec.Rev != "" {
		return plumbing.Revision(spec.Rev), spec.Rev, nil
	}
	if spec.Tag != "" {
		return plumbing.Revision("refs/tags/" + spec.Tag), spec.Tag, nil
	}
	if spec.Branch != "" {
		return plumbing.Revision("refs/heads/" + spec.Branch), spec.Branch, nil
	}
	return "", "", fmt.Errorf("git scripts require rev, tag, or branch")
}

func dirChecksum(path string) (string, error) {
	h := sha256.New()
	err := filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		h.Write([]byte(filepath.ToSlash(rel)))
		h.Write(data)
		return nil
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func sanitizePathSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return "head"
	}
	var b strings.Builder
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
