package protect

import (
	"fmt"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"go.yaml.in/yaml/v3"
)

// Kind says how a Rule matches.
type Kind string

const (
	KindGlob      Kind = "glob"
	KindExtension Kind = "extension"
)

// Rule is one protection entry.
type Rule struct {
	Kind  Kind
	Value string
}

func (r Rule) String() string {
	return string(r.Kind) + " " + r.Value
}

func (r Rule) matches(p string) bool {
	switch r.Kind {
	case KindGlob:
		ok, _ := doublestar.Match(r.Value, p)
		return ok
	case KindExtension:
		ext := path.Ext(p)
		return ext != "" && strings.EqualFold(ext, r.Value)
	}
	return false
}

// Guard holds the protection rules plus allow globs that carve exceptions
// out of them. Safe for concurrent use.
type Guard struct {
	mu    sync.RWMutex
	rules []Rule
	allow []string
}

// New creates a guard with the default rules.
func New() *Guard {
	return &Guard{rules: DefaultRules()}
}

// Check returns the rule that protects p, if any. Allow globs win over rules.
func (g *Guard) Check(p string) (Rule, bool) {
	p = normalize(p)
	if p == "" {
		return Rule{}, false
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, a := range g.allow {
		if ok, _ := doublestar.Match(a, p); ok {
			return Rule{}, false
		}
	}
	for _, r := range g.rules {
		if r.matches(p) {
			return r, true
		}
	}
	return Rule{}, false
}

// IsProtected reports whether any rule protects p.
func (g *Guard) IsProtected(p string) bool {
	_, ok := g.Check(p)
	return ok
}

// Rules returns a copy of the active rules.
func (g *Guard) Rules() []Rule {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]Rule(nil), g.rules...)
}

// AddPattern adds a glob rule. A leading "!" adds an allow glob instead.
func (g *Guard) AddPattern(pattern string) error {
	allow := strings.HasPrefix(pattern, "!")
	glob := strings.TrimPrefix(pattern, "!")
	if !doublestar.ValidatePattern(glob) {
		return fmt.Errorf("invalid protected pattern %q", pattern)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if allow {
		g.allow = append(g.allow, glob)
	} else {
		g.rules = append(g.rules, Rule{Kind: KindGlob, Value: glob})
	}
	return nil
}

// AddExtension protects every file with ext; the leading dot is optional.
func (g *Guard) AddExtension(ext string) {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rules = append(g.rules, Rule{Kind: KindExtension, Value: ext})
}

type projectFile struct {
	ProtectedPaths struct {
		Patterns   []string `yaml:"patterns"`
		Extensions []string `yaml:"file_types"`
	} `yaml:"protected_paths"`
}

// LoadConfig merges the protected_paths block of a project YAML file.
// A missing file is not an error.
func (g *Guard) LoadConfig(file string) error {
	data, err := os.ReadFile(file)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var pf projectFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return fmt.Errorf("parse %s: %w", file, err)
	}
	for _, p := range pf.ProtectedPaths.Patterns {
		if err := g.AddPattern(p); err != nil {
			return err
		}
	}
	for _, ext := range pf.ProtectedPaths.Extensions {
		g.AddExtension(ext)
	}
	return nil
}

// normalize converts an artifact target path to clean, slash-separated,
// repository-relative form.
func normalize(p string) string {
	p = strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
	p = strings.TrimLeft(strings.TrimPrefix(p, "./"), "/")
	if p == "" {
		return ""
	}
	return path.Clean(p)
}
