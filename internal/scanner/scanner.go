package scanner

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Aman-CERP/srcfind/internal/gitignore"
)

// Options configures a Scanner.
type Options struct {
	Policy   gitignore.Policy
	Filter   FilterOptions
	MaxDepth int
	Workers  int
	// Nested applies .gitignore files of subdirectories during descent.
	Nested bool
}

// DefaultOptions returns the options used by FindSourceFiles: every built-in
// rule enabled, only the root .gitignore and its ancestors consulted, the
// default allowlist and size cap, sequential walking.
func DefaultOptions() Options {
	return Options{
		Policy:   gitignore.DefaultPolicy(),
		MaxDepth: DefaultMaxDepth,
	}
}

// Scanner discovers source files in a project directory.
type Scanner struct {
	walker *Walker
	filter *Filter
}

// New creates a new Scanner instance.
func New(opts Options) *Scanner {
	return &Scanner{
		walker: NewWalker(WalkOptions{
			Policy:   opts.Policy,
			MaxDepth: opts.MaxDepth,
			Workers:  opts.Workers,
			Nested:   opts.Nested,
		}),
		filter: NewFilter(opts.Filter),
	}
}

// Walker returns the scanner's walker.
func (s *Scanner) Walker() *Walker {
	return s.walker
}

// Find enumerates basePath, keeps the source files and returns them relative
// to basePath. A missing basePath yields nil.
func (s *Scanner) Find(ctx context.Context, basePath string) []PathRecord {
	start := time.Now()

	absBase, err := filepath.Abs(basePath)
	if err != nil {
		return nil
	}

	paths := s.walker.Enumerate(ctx, absBase)

	records := make([]PathRecord, 0, len(paths))
	for _, p := range paths {
		if !s.filter.IsSourceFile(p) {
			continue
		}
		rel, err := filepath.Rel(absBase, p)
		if err != nil {
			continue
		}
		records = append(records, NewPathRecord(absBase, rel))
	}

	slog.Debug("scan complete",
		slog.String("base", absBase),
		slog.Int("enumerated", len(paths)),
		slog.Int("source_files", len(records)),
		slog.Duration("duration", time.Since(start)))

	return records
}

// FindSourceFiles returns the source files under basePath using the default
// options.
func FindSourceFiles(basePath string) []PathRecord {
	return New(DefaultOptions()).Find(context.Background(), basePath)
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
