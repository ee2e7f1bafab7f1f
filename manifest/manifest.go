// Package manifest declares native imports in TOML or YAML files.
//
//	[atoms]
//	wayland = true
//
//	[libraries.minifb]
//	candidates = ["libminifb-wayland", "libminifb"]
//	search = ["application", "default"]
//	on_load_failure = "next"
//	on_symbol_failure = "continue"
//
//	[[imports]]
//	library = "minifb"
//	symbol = "mfb_open_with_icons"
//	when = "windows || linux"
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ZenLiuCN/fn"
	"github.com/ZenLiuCN/native"
	"gopkg.in/yaml.v3"
)

type (
	// Manifest is the decoded form of a manifest file.
	Manifest struct {
		Atoms     map[string]bool     `toml:"atoms" yaml:"atoms"`
		Libraries map[string]*Library `toml:"libraries" yaml:"libraries"`
		Imports   []Import            `toml:"imports" yaml:"imports"`
	}
	Library struct {
		Candidates      []string `toml:"candidates" yaml:"candidates"`
		Search          []string `toml:"search" yaml:"search"`
		Mode            int      `toml:"mode" yaml:"mode"`
		OnLoadFailure   string   `toml:"on_load_failure" yaml:"on_load_failure"`
		OnSymbolFailure string   `toml:"on_symbol_failure" yaml:"on_symbol_failure"`
		Debug           bool     `toml:"debug" yaml:"debug"`
	}
	Import struct {
		Library string `toml:"library" yaml:"library"`
		Symbol  string `toml:"symbol" yaml:"symbol"`
		Kind    string `toml:"kind" yaml:"kind"`
		When    string `toml:"when" yaml:"when"`
	}

	// Set is a manifest bound to live libraries.
	Set struct {
		Requests   []native.ImportRequest
		Libraries  map[string]*native.Library
		Candidates map[string]*native.Candidates //candidate chain of each library
	}
)

var (
	ErrFormat         = errors.New("unknown manifest format")
	ErrUnknownKey     = errors.New("unknown manifest key")
	ErrUnknownLibrary = errors.New("unknown library")
	ErrPolicy         = errors.New("unknown failure policy")
)

// Load decodes the manifest at path, the format follows the extension: .toml, .yaml or .yml.
func Load(path string) (m *Manifest, err error) {
	var b []byte
	if b, err = os.ReadFile(path); err != nil {
		return
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		m, err = DecodeTOML(bytes.NewReader(b))
	case ".yaml", ".yml":
		m, err = DecodeYAML(bytes.NewReader(b))
	default:
		return nil, fmt.Errorf("%w: %s", ErrFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("load manifest %s: %w", path, err)
	}
	return
}

// DecodeTOML decodes a TOML manifest, rejecting unknown keys.
func DecodeTOML(r io.Reader) (*Manifest, error) {
	m := new(Manifest)
	meta, err := toml.NewDecoder(r).Decode(m)
	if err != nil {
		return nil, err
	}
	if keys := meta.Undecoded(); len(keys) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, keys[0])
	}
	return m, nil
}

// DecodeYAML decodes a YAML manifest, rejecting unknown keys.
func DecodeYAML(r io.Reader) (*Manifest, error) {
	m := new(Manifest)
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	if err := d.Decode(m); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return m, nil
}

// Names of the declared libraries, sorted.
func (m *Manifest) Names() []string {
	n := fn.MapKeys(m.Libraries)
	sort.Strings(n)
	return n
}

// Build binds the manifest to libraries loaded through loader, nil uses native.System.
// Each library gets its own candidate chain; the manifest atoms overlay native.Platform.
func (m *Manifest) Build(loader native.Loader) (s *Set, err error) {
	s = &Set{
		Libraries:  make(map[string]*native.Library, len(m.Libraries)),
		Candidates: make(map[string]*native.Candidates, len(m.Libraries)),
	}
	var atoms native.AtomEvaluator
	if len(m.Atoms) > 0 {
		atoms = native.Overlay(native.Platform, m.Atoms)
	}
	for _, name := range m.Names() {
		var lib *native.Library
		var c *native.Candidates
		if lib, c, err = m.Libraries[name].bind(name); err != nil {
			return nil, fmt.Errorf("library %s: %w", name, err)
		}
		lib.Loader = loader
		lib.Atoms = atoms
		s.Libraries[name] = lib
		s.Candidates[name] = c
	}
	s.Requests = make([]native.ImportRequest, 0, len(m.Imports))
	for i, imp := range m.Imports {
		var r native.ImportRequest
		if r, err = imp.request(s.Libraries); err != nil {
			return nil, fmt.Errorf("import #%d (%s!%s): %w", i, imp.Library, imp.Symbol, err)
		}
		r.Meta = i
		s.Requests = append(s.Requests, r)
	}
	return
}

func (l *Library) bind(name string) (lib *native.Library, c *native.Candidates, err error) {
	if l == nil {
		l = new(Library)
	}
	policy := native.DefaultPolicy
	policy.Mode = l.Mode
	if len(l.Search) > 0 {
		if policy.Search, err = native.ParseSearchPath(l.Search...); err != nil {
			return
		}
	}
	names := l.Candidates
	if len(names) == 0 {
		names = []string{name}
	}
	c = native.NewCandidates(policy, names...)
	lib = &native.Library{Name: name, Names: c.Next, Debug: l.Debug}
	switch strings.ToLower(strings.TrimSpace(l.OnLoadFailure)) {
	case "", "next":
		lib.OnLoadFailure = c.Retry
	case "abort":
		lib.OnLoadFailure = func(string, native.LoadPolicy, error) bool { return false }
	case "raise":
		lib.OnLoadFailure = native.Raise(c.Retry)
	default:
		return nil, nil, fmt.Errorf("%w: on_load_failure %q", ErrPolicy, l.OnLoadFailure)
	}
	switch strings.ToLower(strings.TrimSpace(l.OnSymbolFailure)) {
	case "", "continue":
		lib.OnSymbolFailure = native.ContinueOnMissing
	case "abort":
		lib.OnSymbolFailure = native.AbortOnMissing
	case "raise":
		lib.OnSymbolFailure = native.RaiseOnMissing
	default:
		return nil, nil, fmt.Errorf("%w: on_symbol_failure %q", ErrPolicy, l.OnSymbolFailure)
	}
	return
}

func (i Import) request(libs map[string]*native.Library) (r native.ImportRequest, err error) {
	lib, ok := libs[i.Library]
	if !ok {
		err = fmt.Errorf("%w: %q", ErrUnknownLibrary, i.Library)
		return
	}
	r = native.ImportRequest{Symbol: i.Symbol, Library: lib}
	if r.Kind, err = native.ParseKind(i.Kind); err != nil {
		return
	}
	if strings.TrimSpace(i.When) != "" {
		r.Condition, err = native.ParseCondition(i.When)
	}
	return
}
