package extract

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"github.com/mvp-joe/rbx-ripper/internal/document"
)

// scriptClasses are the classes removed by Settings.ExcludeScripts.
var scriptClasses = map[string]bool{
	"Script":       true,
	"LocalScript":  true,
	"ModuleScript": true,
}

// Filters is the user-facing filter configuration.
type Filters struct {
	ExcludeWorkspace bool
	ExcludeScripts   bool
	ExcludeClasses   []string // entries may themselves be comma separated
	ExcludePatterns  []string // glob patterns over class names
}

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Settings is the immutable filter state for one run. It is built once and
// shared by reference across every worker.
type Settings struct {
	ExcludeWorkspace bool
	ExcludeScripts   bool
	ExcludeClasses   map[string]struct{}

	patterns []compiledPattern
}

// NewSettings normalizes f into Settings. Class names are trimmed and
// lower-cased, empty entries are dropped. Patterns are matched
// case-insensitively.
func NewSettings(f Filters) (*Settings, error) {
	s := &Settings{
		ExcludeWorkspace: f.ExcludeWorkspace,
		ExcludeScripts:   f.ExcludeScripts,
		ExcludeClasses:   make(map[string]struct{}),
	}

	for _, entry := range f.ExcludeClasses {
		for _, class := range ParseClassList(entry) {
			s.ExcludeClasses[class] = struct{}{}
		}
	}

	for _, p := range f.ExcludePatterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		s.patterns = append(s.patterns, compiledPattern{pattern: p, glob: g})
	}

	return s, nil
}

// ParseClassList splits a comma-separated class list, trimming and
// lower-casing each entry and dropping empty ones.
func ParseClassList(list string) []string {
	var classes []string
	for _, part := range strings.Split(list, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			classes = append(classes, part)
		}
	}
	return classes
}

// Patterns returns the normalized exclude patterns.
func (s *Settings) Patterns() []string {
	out := make([]string, len(s.patterns))
	for i, cp := range s.patterns {
		out[i] = cp.pattern
	}
	return out
}

func (s *Settings) excludesClass(class string) bool {
	lower := strings.ToLower(class)
	if _, ok := s.ExcludeClasses[lower]; ok {
		return true
	}
	for _, cp := range s.patterns {
		if cp.glob.Match(lower) {
			return true
		}
	}
	return false
}

// ShouldExclude reports whether n, and with it its whole subtree, is left
// out of counting and extraction. Rules are checked in order: excluded
// class, script class, Workspace by name. It has no side effects.
func ShouldExclude(n *document.Node, s *Settings) bool {
	if s == nil {
		return false
	}

	class := n.ClassName()
	if s.excludesClass(class) {
		return true
	}

	if s.ExcludeScripts && scriptClasses[class] {
		return true
	}

	if s.ExcludeWorkspace {
		if props := n.Properties(); props != nil {
			for _, p := range props.Children {
				name, ok := p.Attr("name")
				if !ok || name != "Name" {
					continue
				}
				if text, ok := p.Text(); ok && text == "Workspace" {
					return true
				}
			}
		}
	}

	return false
}
