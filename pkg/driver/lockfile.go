package driver

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LockfileName sits next to klox.yml.
const LockfileName = "klox.lock"

// Lockfile models the klox.lock contents.
type Lockfile struct {
	Path      string
	Root      string
	Generated string
	Tool      string
	Scripts   []*LockedScript
}

// LockedScript pins a fetched script to a commit and content checksum.
type LockedScript struct {
	Name     string
	Version  string
	Source   string
	File     string
	Checksum string
}

// NewLockfile constructs a lockfile with metadata seeded for root.
func NewLockfile(root, tool string) *Lockfile {
	return &Lockfile{
		Root:      sanitizeSegment(root),
		Generated: time.Now().UTC().Format(time.RFC3339),
		Tool:      strings.TrimSpace(tool),
		Scripts:   []*LockedScript{},
	}
}

// Find returns the entry for name.
func (l *Lockfile) Find(name string) (*LockedScript, bool) {
	if l == nil {
		return nil, false
	}
	name = sanitizeSegment(name)
	for _, s := range l.Scripts {
		if s != nil && s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// Upsert replaces the entry with the same name or appends a new one.
func (l *Lockfile) Upsert(entry *LockedScript) {
	if entry == nil {
		return
	}
	for i, s := range l.Scripts {
		if s != nil && s.Name == entry.Name {
			l.Scripts[i] = entry
			return
		}
	}
	l.Scripts = append(l.Scripts, entry)
}

// LoadLockfile parses klox.lock from disk.
func LoadLockfile(path string) (*Lockfile, error) {
	if path == "" {
		return nil, fmt.Errorf("lockfile: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var raw lockfileDisk
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("lockfile: parse %s: %w", abs, err)
	}

	lock := raw.toLockfile()
	lock.Path = abs
	return lock, nil
}

// WriteLockfile serialises the lockfile back to disk, refreshing metadata.
func WriteLockfile(lock *Lockfile, path string) error {
	if lock == nil {
		return fmt.Errorf("lockfile: nil lockfile")
	}
	if path == "" {
		if lock.Path == "" {
			return fmt.Errorf("lockfile: missing path")
		}
		path = lock.Path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}

	if lock.Generated == "" {
		lock.Generated = time.Now().UTC().Format(time.RFC3339)
	}
	lock.Path = abs
	lock.normalize()

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(lock.toDisk()); err != nil {
		return fmt.Errorf("lockfile: marshal %s: %w", abs, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("lockfile: encoder close: %w", err)
	}
	if err := os.WriteFile(abs, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("lockfile: write %s: %w", abs, err)
	}
	return nil
}

func (l *Lockfile) normalize() {
	l.Root = sanitizeSegment(l.Root)
	l.Tool = strings.TrimSpace(l.Tool)
	kept := l.Scripts[:0]
	for _, s := range l.Scripts {
		if s == nil {
			continue
		}
		s.Name = sanitizeSegment(s.Name)
		s.Version = strings.TrimSpace(s.Version)
		s.Source = strings.TrimSpace(s.Source)
		s.File = strings.TrimSpace(s.File)
		s.Checksum = strings.TrimSpace(s.Checksum)
		kept = append(kept, s)
	}
	l.Scripts = kept
	sort.SliceStable(l.Scripts, func(i, j int) bool {
		return l.Scripts[i].Name < l.Scripts[j].Name
	})
}

func (l *Lockfile) toDisk() lockfileDisk {
	scripts := make([]lockfileScript, 0, len(l.Scripts))
	for _, s := range l.Scripts {
		scripts = append(scripts, lockfileScript{
			Name:     s.Name,
			Version:  s.Version,
			Source:   s.Source,
			File:     s.File,
			Checksum: s.Checksum,
		})
	}
	return lockfileDisk{
		Root:      l.Root,
		Generated: l.Generated,
		Tool:      l.Tool,
		Scripts:   scripts,
	}
}

type lockfileDisk struct {
	Root      string           `yaml:"root"`
	Generated string           `yaml:"generated"`
	Tool      string           `yaml:"tool"`
	Scripts   []lockfileScript `yaml:"scripts"`
}

type lockfileScript struct {
	Name     string `yaml:"name"`
	Version  string `yaml:"version"`
	Source   string `yaml:"source"`
	File     string `yaml:"file"`
	Checksum string `yaml:"checksum"`
}

func (d lockfileDisk) toLockfile() *Lockfile {
	lock := &Lockfile{
		Root:      d.Root,
		Generated: strings.TrimSpace(d.Generated),
		Tool:      d.Tool,
		Scripts:   make([]*LockedScript, 0, len(d.Scripts)),
	}
	for _, s := range d.Scripts {
		lock.Scripts = append(lock.Scripts, &LockedScript{
			Name:     s.Name,
			Version:  s.Version,
			Source:   s.Source,
			File:     s.File,
			Checksum: s.Checksum,
		})
	}
	lock.normalize()
	return lock
}
