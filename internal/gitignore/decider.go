package gitignore

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of compiled .gitignore files a Decider keeps.
const DefaultCacheSize = 256

// Built-in rule names reported in Verdict.BuiltIn.
const (
	RuleGitDir = "git-dir"
	RuleHidden = "hidden"
	RuleTmpDir = "tmp-dir"
)

// Policy switches the built-in exclusions. Built-in rules win over every
// pattern, negations included.
type Policy struct {
	// ExcludeGitDir ignores any path with a ".git" segment.
	ExcludeGitDir bool
	// ExcludeHidden ignores entries whose name starts with ".".
	ExcludeHidden bool
	// ExcludeTmpDirs ignores any path with a "tmp" or "temp" segment.
	ExcludeTmpDirs bool
}

// DefaultPolicy enables every built-in rule.
func DefaultPolicy() Policy {
	return Policy{
		ExcludeGitDir:  true,
		ExcludeHidden:  true,
		ExcludeTmpDirs: true,
	}
}

// GitOnlyPolicy enables only the ".git" rule.
func GitOnlyPolicy() Policy {
	return Policy{ExcludeGitDir: true}
}

// Verdict is the outcome of an ignore decision and the rule behind it.
type Verdict struct {
	Ignored bool
	// BuiltIn names the built-in rule that decided, if any.
	BuiltIn string
	// Source is the .gitignore holding the last matching pattern.
	Source string
	// Pattern is the raw text of the last matching pattern.
	Pattern string
	// Line is the line number of Pattern within Source.
	Line int
}

// Matched reports whether any rule matched.
func (v Verdict) Matched() bool {
	return v.BuiltIn != "" || v.Pattern != ""
}

// String describes the deciding rule.
func (v Verdict) String() string {
	switch {
	case v.BuiltIn != "":
		return "built-in:" + v.BuiltIn
	case v.Pattern != "":
		return fmt.Sprintf("%s:%d:%s", v.Source, v.Line, v.Pattern)
	default:
		return ""
	}
}

type compiledFile struct {
	content  string
	patterns []*Pattern
}

// Decider applies the built-in rules and the layered .gitignore patterns.
// It is safe for concurrent use.
type Decider struct {
	policy Policy
	// root scopes the tmp/temp rule to segments below it. Empty means the
	// whole path is inspected.
	root  string
	cache *lru.Cache[string, *compiledFile]
}

// NewDecider creates a Decider with the given policy.
func NewDecider(policy Policy) *Decider {
	cache, err := lru.New[string, *compiledFile](DefaultCacheSize)
	if err != nil {
		slog.Warn("gitignore: pattern cache disabled", slog.String("error", err.Error()))
		cache = nil
	}
	return &Decider{policy: policy, cache: cache}
}

// WithRoot returns a Decider sharing d's policy and cache whose tmp/temp rule
// only looks at path segments below root.
func (d *Decider) WithRoot(root string) *Decider {
	c := *d
	if abs, err := filepath.Abs(root); err == nil {
		c.root = abs
	} else {
		c.root = filepath.Clean(root)
	}
	return &c
}

// Policy returns the decider's policy.
func (d *Decider) Policy() Policy {
	return d.policy
}

// Purge drops every cached compiled file.
func (d *Decider) Purge() {
	if d.cache != nil {
		d.cache.Purge()
	}
}

// IsIgnored reports whether path is ignored given the ordered .gitignore files.
// isDir must be true when path names a directory.
func (d *Decider) IsIgnored(path string, files []File, isDir bool) bool {
	return d.Explain(path, files, isDir).Ignored
}

// Explain is IsIgnored with the deciding rule attached.
func (d *Decider) Explain(path string, files []File, isDir bool) Verdict {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}

	if rule := d.builtIn(abs); rule != "" {
		return Verdict{Ignored: true, BuiltIn: rule}
	}

	var v Verdict
	for _, f := range files {
		target, ok := relativeTarget(f.Dir, abs, isDir)
		if !ok {
			continue
		}
		for _, p := range d.patterns(f) {
			if !p.Match(target) {
				continue
			}
			v.Ignored = !p.Negated
			v.Source = f.Path()
			v.Pattern = p.Raw
			v.Line = p.Line
		}
	}
	return v
}

// builtIn returns the name of the built-in rule that ignores abs, or "".
func (d *Decider) builtIn(abs string) string {
	segments := strings.Split(filepath.ToSlash(abs), "/")

	if d.policy.ExcludeGitDir && slices.Contains(segments, ".git") {
		return RuleGitDir
	}

	if d.policy.ExcludeHidden {
		base := filepath.Base(abs)
		if strings.HasPrefix(base, ".") && base != "." && base != ".." {
			return RuleHidden
		}
	}

	if d.policy.ExcludeTmpDirs {
		if d.root != "" {
			if rel, err := filepath.Rel(d.root, abs); err == nil && !escapes(rel) {
				segments = strings.Split(filepath.ToSlash(rel), "/")
			}
		}
		for _, s := range segments {
			if s == "tmp" || s == "temp" {
				return RuleTmpDir
			}
		}
	}

	return ""
}

// patterns returns f's compiled patterns, reusing the cache when the content
// is unchanged.
func (d *Decider) patterns(f File) []*Pattern {
	if d.cache == nil {
		return f.Patterns()
	}
	if c, ok := d.cache.Get(f.Dir); ok && c.content == f.Content {
		return c.patterns
	}
	ps := f.Patterns()
	d.cache.Add(f.Dir, &compiledFile{content: f.Content, patterns: ps})
	return ps
}

// relativeTarget computes the string a pattern from dir is tested against:
// abs relative to dir, slash-separated, "." for dir itself, with a trailing
// "/" for directories. ok is false when abs is outside dir.
func relativeTarget(dir, abs string, isDir bool) (target string, ok bool) {
	base, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil || escapes(rel) {
		return "", false
	}

	target = filepath.ToSlash(rel)
	if isDir && !strings.HasSuffix(target, "/") {
		target += "/"
	}
	return target, true
}

func escapes(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

var defaultDecider = NewDecider(DefaultPolicy())

// IsIgnored decides with DefaultPolicy and no root scoping.
func IsIgnored(path string, files []File, isDir bool) bool {
	return defaultDecider.IsIgnored(path, files, isDir)
}
