// Package ignore decides which diagnostics are dropped before matching:
// gitignore-like path rules plus "check:" rules naming suppressed checks.
package ignore

import (
	"path/filepath"
	"regexp"
	"strings"
)

const checkPrefix = "check:"

type rule struct {
	pattern  *regexp.Regexp
	literal  string
	negated  bool
	dirOnly  bool
	anchored bool
	check    bool
}

// Matcher applies rules with "last rule wins" behavior.
type Matcher struct {
	rules []rule
}

// DefaultRules exclude generated and third-party trees, whose diagnostics
// move with the generator rather than with the code under review.
var DefaultRules = []string{
	".git/",
	"node_modules/",
	"vendor/",
	"build/",
	"target/",
	"generated/",
	"generated-sources/",
}

// NewMatcher builds a matcher from .sigtrackignore lines and config entries.
// Default excludes come first and can be overridden by negated user rules.
func NewMatcher(userRules []string) *Matcher {
	all := make([]string, 0, len(DefaultRules)+len(userRules))
	all = append(all, DefaultRules...)
	all = append(all, userRules...)

	rules := make([]rule, 0, len(all))
	for _, line := range all {
		if parsed, ok := parseRule(line); ok {
			rules = append(rules, parsed)
		}
	}
	return &Matcher{rules: rules}
}

// ShouldIgnore returns true when relPath should be excluded.
func (m *Matcher) ShouldIgnore(relPath string, isDir bool) bool {
	relPath = normalizePath(relPath)
	ignored := false
	for _, r := range m.rules {
		if !r.check && r.matchesPath(relPath, isDir) {
			ignored = !r.negated
		}
	}
	return ignored
}

// Suppresses reports whether a diagnostic of check in file should be dropped.
// Path and check rules share one ordering, so a later rule overrides an
// earlier one of either kind.
func (m *Matcher) Suppresses(file, check string) bool {
	file = normalizePath(file)
	suppressed := false
	for _, r := range m.rules {
		var hit bool
		if r.check {
			hit = r.pattern.MatchString(check)
		} else {
			hit = r.matchesPath(file, false)
		}
		if hit {
			suppressed = !r.negated
		}
	}
	return suppressed
}

func parseRule(line string) (rule, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return rule{}, false
	}

	parsed := rule{}
	if strings.HasPrefix(line, "!") {
		parsed.negated = true
		line = strings.TrimPrefix(line, "!")
	}
	if name, ok := strings.CutPrefix(line, checkPrefix); ok {
		name = strings.TrimSpace(name)
		if name == "" {
			return rule{}, false
		}
		parsed.check = true
		parsed.literal = name
		parsed.pattern = compileGlob(name)
		return parsed, true
	}
	if strings.HasPrefix(line, "/") {
		parsed.anchored = true
		line = strings.TrimPrefix(line, "/")
	}
	if strings.HasSuffix(line, "/") {
		parsed.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}

	line = normalizePath(line)
	if line == "" {
		return rule{}, false
	}
	parsed.literal = line
	parsed.pattern = compileGlob(line)
	return parsed, true
}

func (r rule) matchesPath(relPath string, isDir bool) bool {
	if r.dirOnly {
		if r.matchesDirectory(relPath) {
			return true
		}
		return isDir && r.pattern.MatchString(filepath.Base(relPath))
	}

	if r.anchored {
		return r.pattern.MatchString(relPath)
	}

	parts := strings.Split(relPath, "/")
	if strings.Contains(r.literal, "/") {
		for i := range parts {
			if r.pattern.MatchString(strings.Join(parts[i:], "/")) {
				return true
			}
		}
		return false
	}

	for _, segment := range parts {
		if r.pattern.MatchString(segment) {
			return true
		}
	}
	return false
}

// matchesDirectory is true when relPath lies under a directory the rule names.
func (r rule) matchesDirectory(relPath string) bool {
	parts := strings.Split(relPath, "/")
	if r.anchored {
		for i := range parts {
			if r.pattern.MatchString(strings.Join(parts[:i+1], "/")) {
				return true
			}
		}
		return false
	}
	for i := range parts {
		for j := i; j < len(parts); j++ {
			if r.pattern.MatchString(strings.Join(parts[i:j+1], "/")) {
				return true
			}
		}
	}
	return false
}

func compileGlob(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteByte('^')
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		switch {
		case ch == '*' && i+1 < len(pattern) && pattern[i+1] == '*':
			b.WriteString(".*")
			i++
		case ch == '*':
			b.WriteString("[^/]*")
		case ch == '?':
			b.WriteString("[^/]")
		default:
			b.WriteString(regexp.QuoteMeta(string(ch)))
		}
	}
	b.WriteByte('$')
	return regexp.MustCompile(b.String())
}

func normalizePath(path string) string {
	path = filepath.ToSlash(path)
	path = strings.TrimPrefix(path, "./")
	path = strings.TrimPrefix(path, "/")
	return path
}
