// Package scanner enumerates the source files of a directory tree.
// It prunes subtrees excluded by .gitignore rules and built-in exclusions,
// then keeps files whose extension is allowlisted and whose size is capped.
package scanner

import (
	"encoding/json"
	"path/filepath"
	"slices"
	"strings"
)

// MaxSourceFileSize is the largest file, in bytes, considered source (5 MiB).
const MaxSourceFileSize int64 = 5 * 1024 * 1024

// DefaultMaxDepth is how many directory levels below the root are descended.
const DefaultMaxDepth = 256

// SourceExtensions is the allowlist of source file extensions, lowercase and
// without the leading dot.
var SourceExtensions = []string{
	// TypeScript / JavaScript
	"ts", "tsx", "js", "jsx", "mjs", "cjs",
	// Web / config
	"json", "html", "css", "scss", "sass", "less",
	"yml", "yaml", "toml",
	// Common languages
	"py", "rb", "go", "rs", "java", "kt", "cs", "php", "swift",
	"scala", "sh", "bash", "zsh",
	// Query / schema
	"sql", "graphql", "gql",
	// Markdown
	"md", "markdown",
}

// PathRecord is a discovered file: the base directory of the search and the
// file's path relative to it. It is immutable.
type PathRecord struct {
	base string
	rel  string
}

// NewPathRecord creates a record for relPath under basePath.
func NewPathRecord(basePath, relPath string) PathRecord {
	return PathRecord{base: basePath, rel: relPath}
}

// BasePath returns the directory the search started from.
func (r PathRecord) BasePath() string {
	return r.base
}

// RelPath returns the path relative to BasePath.
func (r PathRecord) RelPath() string {
	return r.rel
}

// AbsPath returns BasePath joined with RelPath.
func (r PathRecord) AbsPath() string {
	return filepath.Join(r.base, r.rel)
}

// Language returns the language detected from the file's extension.
func (r PathRecord) Language() string {
	return DetectLanguage(r.rel)
}

type pathRecordJSON struct {
	Path     string `json:"path"`
	AbsPath  string `json:"abs_path"`
	Language string `json:"language,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (r PathRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(pathRecordJSON{
		Path:     filepath.ToSlash(r.rel),
		AbsPath:  r.AbsPath(),
		Language: r.Language(),
	})
}

// languageMap maps allowlisted extensions to language names.
var languageMap = map[string]string{
	"go": "go",

	"js":  "javascript",
	"jsx": "javascript",
	"mjs": "javascript",
	"cjs": "javascript",
	"ts":  "typescript",
	"tsx": "typescript",

	"py": "python",
	"rb": "ruby",
	"rs": "rust",

	"java":  "java",
	"kt":    "kotlin",
	"cs":    "csharp",
	"php":   "php",
	"swift": "swift",
	"scala": "scala",

	"html": "html",
	"css":  "css",
	"scss": "scss",
	"sass": "sass",
	"less": "less",

	"json": "json",
	"yaml": "yaml",
	"yml":  "yaml",
	"toml": "toml",

	"sh":   "shell",
	"bash": "shell",
	"zsh":  "shell",

	"sql":     "sql",
	"graphql": "graphql",
	"gql":     "graphql",

	"md":       "markdown",
	"markdown": "markdown",
}

// DetectLanguage detects the language of a path from its extension.
// Returns "" when the extension is unknown.
func DetectLanguage(path string) string {
	return languageMap[Extension(path)]
}

// Extension returns the lowercased extension of path without the dot, or ""
// when the final path element has no ".".
func Extension(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filepath.Base(path)), "."))
}

// IsSourceExtension reports whether ext (without the dot, any case) is in
// SourceExtensions.
func IsSourceExtension(ext string) bool {
	return slices.Contains(SourceExtensions, strings.ToLower(ext))
}
