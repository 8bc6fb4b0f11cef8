package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestFileName is the project file looked up by the CLI.
const ManifestFileName = "klox.yml"

// Manifest represents the parsed contents of klox.yml.
type Manifest struct {
	Path        string
	Name        string
	Version     string
	Entry       string
	Options     ProjectOptions
	Scripts     map[string]*ScriptSpec
	ScriptOrder []string
}

// ProjectOptions are the session settings a project pins.
type ProjectOptions struct {
	Typecheck   TypecheckMode
	Warnings    bool
	DebugOutput string
}

// ScriptSpec names a script either on disk or inside a git repository.
type ScriptSpec struct {
	Name   string
	Path   string
	Git    string
	Rev    string
	Tag    string
	Branch string
	File   string
}

// IsGit reports whether the script is fetched rather than read locally.
func (s *ScriptSpec) IsGit() bool { return s != nil && s.Git != "" }

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

var ErrNoEntry = errors.New("manifest: no entry script defined")

// LoadManifest parses klox.yml from disk, returning a validated manifest.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", absPath)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", absPath, err)
	}

	manifest := raw.toManifest(absPath)
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

// FindManifest walks upward from dir looking for klox.yml.
func FindManifest(dir string) (string, bool) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(abs, ManifestFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", false
		}
		abs = parent
	}
}

// Dir is the directory holding the manifest.
func (m *Manifest) Dir() string {
	return filepath.Dir(m.Path)
}

// EntryPath resolves the entry script relative to the manifest.
func (m *Manifest) EntryPath() (string, error) {
	if m == nil || m.Entry == "" {
		return "", ErrNoEntry
	}
	if filepath.IsAbs(m.Entry) {
		return m.Entry, nil
	}
	return filepath.Join(m.Dir(), m.Entry), nil
}

// FindScript looks up a script by sanitized or original name.
func (m *Manifest) FindScript(name string) (*ScriptSpec, bool) {
	if m == nil {
		return nil, false
	}
	if spec, ok := m.Scripts[sanitizeSegment(strings.TrimSpace(name))]; ok {
		return spec, true
	}
	return nil, false
}

// SessionOptions maps the project options onto session options.
func (o ProjectOptions) SessionOptions(stdout, stderr io.Writer) Options {
	opts := Options{
		Stdout:           stdout,
		Typecheck:        o.Typecheck,
		SuppressWarnings: !o.Warnings,
	}
	switch o.DebugOutput {
	case "stdout":
		opts.Debug = stdout
	case "off":
		opts.Debug = io.Discard
	default:
		opts.Debug = stderr
	}
	return opts
}

func (m *Manifest) validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	if !m.Options.Typecheck.IsValid() {
		errs.Issues = append(errs.Issues, fmt.Sprintf("options.typecheck has unsupported value %q", m.Options.Typecheck))
	}
	switch m.Options.DebugOutput {
	case "stderr", "stdout", "off":
	default:
		errs.Issues = append(errs.Issues, fmt.Sprintf("options.debug_output has unsupported value %q", m.Options.DebugOutput))
	}
	for _, name := range m.ScriptOrder {
		for _, issue := range m.Scripts[name].validate() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("scripts.%s: %s", name, issue))
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

func (s *ScriptSpec) validate() []string {
	var errs []string
	if s.Path != "" && s.Git != "" {
		errs = append(errs, "path scripts cannot also specify git")
	}
	if s.Path == "" && s.Git == "" {
		errs = append(errs, "must specify path or git")
	}
	refs := 0
	for _, ref := range []string{s.Rev, s.Tag, s.Branch} {
		if ref != "" {
			refs++
		}
	}
	if s.Git != "" {
		if refs != 1 {
			errs = append(errs, "git scripts require exactly one of rev, tag, or branch")
		}
		if s.File == "" {
			errs = append(errs, "git scripts require file")
		}
	} else if refs > 0 || s.File != "" {
		errs = append(errs, "rev, tag, branch and file apply only to git scripts")
	}
	return errs
}

type manifestFile struct {
	Name    string      `yaml:"name"`
	Version string      `yaml:"version"`
	Entry   string      `yaml:"entry"`
	Options optionsYAML `yaml:"options"`
	Scripts scriptMap   `yaml:"scripts"`
}

type optionsYAML struct {
	Typecheck   string `yaml:"typecheck"`
	Warnings    *bool  `yaml:"warnings"`
	DebugOutput string `yaml:"debug_output"`
}

type scriptMap struct {
	items []*ScriptSpec
}

// UnmarshalYAML keeps scripts in file order. A scalar value is shorthand
// for a local path.
func (sm *scriptMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == 0 || (value.Kind == yaml.ScalarNode && value.Tag == "!!null") {
		sm.items = nil
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("manifest: scripts must be a mapping")
	}
	items := make([]*ScriptSpec, 0, len(value.Content)/2)
	for i := 0; i < len(value.Content); i += 2 {
		var key string
		if err := value.Content[i].Decode(&key); err != nil {
			return err
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("manifest: script names must be non-empty")
		}
		spec := &ScriptSpec{Name: key}
		if err := spec.unmarshalYAML(value.Content[i+1]); err != nil {
			return fmt.Errorf("manifest: script %q: %w", key, err)
		}
		items = append(items, spec)
	}
	sm.items = items
	return nil
}

func (s *ScriptSpec) unmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		s.Path = strings.TrimSpace(value.Value)
		return nil
	case yaml.MappingNode:
		var raw struct {
			Path   string `yaml:"path"`
			Git    string `yaml:"git"`
			Rev    string `yaml:"rev"`
			Tag    string `yaml:"tag"`
			Branch string `yaml:"branch"`
			File   string `yaml:"file"`
		}
		if err := value.Decode(&raw); err != nil {
			return err
		}
		s.Path = strings.TrimSpace(raw.Path)
		s.Git = strings.TrimSpace(raw.Git)
		s.Rev = strings.TrimSpace(raw.Rev)
		s.Tag = strings.TrimSpace(raw.Tag)
		s.Branch = strings.TrimSpace(raw.Branch)
		s.File = strings.TrimSpace(raw.File)
		return nil
	case yaml.AliasNode:
		return s.unmarshalYAML(value.Alias)
	default:
		return fmt.Errorf("expected path string or mapping but found %s", value.ShortTag())
	}
}

func (mf manifestFile) toManifest(path string) *Manifest {
	result := &Manifest{
		Path:    path,
		Name:    sanitizeSegment(strings.TrimSpace(mf.Name)),
		Version: strings.TrimSpace(mf.Version),
		Entry:   strings.TrimSpace(mf.Entry),
		Options: ProjectOptions{
			Typecheck:   TypecheckMode(strings.TrimSpace(mf.Options.Typecheck)),
			Warnings:    true,
			DebugOutput: strings.TrimSpace(mf.Options.DebugOutput),
		},
		Scripts: make(map[string]*ScriptSpec, len(mf.Scripts.items)),
	}
	if result.Options.Typecheck == "" {
		result.Options.Typecheck = TypecheckStrict
	}
	if mf.Options.Warnings != nil {
		result.Options.Warnings = *mf.Options.Warnings
	}
	if result.Options.DebugOutput == "" {
		result.Options.DebugOutput = "stderr"
	}
	for _, spec := range mf.Scripts.items {
		key := sanitizeSegment(spec.Name)
		if _, exists := result.Scripts[key]; exists {
			continue
		}
		spec.Name = key
		result.Scripts[key] = spec
		result.ScriptOrder = append(result.ScriptOrder, key)
	}
	return result
}

// ScriptNames lists script names alphabetically.
func (m *Manifest) ScriptNames() []string {
	names := append([]string(nil), m.ScriptOrder...)
	sort.Strings(names)
	return names
}

// sanitizeSegment lowercases a name and replaces anything outside
// [a-z0-9_] with '_'.
func sanitizeSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return ""
	}
	var b strings.Builder
	for _, r := range strings.ToLower(segment) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
