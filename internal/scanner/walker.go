package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/srcfind/internal/gitignore"
)

// WalkOptions configures a Walker.
type WalkOptions struct {
	// Policy selects the built-in exclusion rules.
	Policy gitignore.Policy

	// MaxDepth limits how many directory levels below the root are descended
	// (0 = DefaultMaxDepth).
	MaxDepth int

	// Workers bounds concurrent subdirectory walks. Values <= 1 walk sequentially.
	Workers int

	// Nested also applies the .gitignore files found in subdirectories while
	// descending. Without it only the root and its ancestors are consulted.
	Nested bool
}

// Walker enumerates the non-ignored regular files below a root, pruning
// ignored directories without visiting their contents.
type Walker struct {
	decider  *gitignore.Decider
	maxDepth int
	workers  int
	nested   bool
}

// NewWalker creates a Walker from opts.
func NewWalker(opts WalkOptions) *Walker {
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Walker{
		decider:  gitignore.NewDecider(opts.Policy),
		maxDepth: maxDepth,
		workers:  opts.Workers,
		nested:   opts.Nested,
	}
}

// Decider returns the decider used for ignore decisions.
func (w *Walker) Decider() *gitignore.Decider {
	return w.decider
}

// walk holds the state of one Enumerate call.
type walk struct {
	w       *Walker
	decider *gitignore.Decider
	sem     chan struct{}
}

// Enumerate returns the absolute paths of all non-ignored regular files under
// root, in directory listing order. A missing root yields nil. A regular file
// root yields itself unless ignored. Cancelling ctx stops the walk and returns
// what was found so far.
func (w *Walker) Enumerate(ctx context.Context, root string) []string {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		slog.Debug("cannot resolve root", slog.String("root", root), slog.String("error", err.Error()))
		return nil
	}

	// The root itself may be a symlink; entries below it are never followed.
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil
	}

	switch {
	case info.Mode().IsRegular():
		parent := filepath.Dir(absRoot)
		files := gitignore.Load(parent)
		if w.decider.WithRoot(parent).IsIgnored(absRoot, files, false) {
			return nil
		}
		return []string{absRoot}

	case info.IsDir():
		wk := &walk{
			w:       w,
			decider: w.decider.WithRoot(absRoot),
		}
		if w.workers > 1 {
			wk.sem = make(chan struct{}, w.workers-1)
		}
		return wk.dir(ctx, absRoot, gitignore.Load(absRoot), 0)

	default:
		return nil
	}
}

// Explain reports how a walk from root treats path. If a directory between
// root and path is pruned, its verdict is returned; otherwise the verdict for
// path itself. isDir must be true when path names a directory.
func (w *Walker) Explain(root, path string, isDir bool) (gitignore.Verdict, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return gitignore.Verdict{}, fmt.Errorf("resolve root: %w", err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return gitignore.Verdict{}, fmt.Errorf("resolve path: %w", err)
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return gitignore.Verdict{}, fmt.Errorf("%s is outside %s", absPath, absRoot)
	}
	if rel == "." {
		return gitignore.Verdict{}, nil
	}

	decider := w.decider.WithRoot(absRoot)
	files := gitignore.Load(absRoot)
	parts := strings.Split(rel, string(filepath.Separator))

	dir := absRoot
	var v gitignore.Verdict
	for i, part := range parts {
		p := filepath.Join(dir, part)
		last := i == len(parts)-1
		v = decider.Explain(p, files, !last || isDir)
		if v.Ignored {
			return v, nil
		}
		if !last {
			files = childFiles(w.nested, files, p)
		}
		dir = p
	}
	return v, nil
}

// dir lists one directory and returns the files found beneath it. files is
// the gitignore set in effect for dir's entries and is never modified.
func (wk *walk) dir(ctx context.Context, dir string, files []gitignore.File, depth int) []string {
	if ctx.Err() != nil {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Debug("skipping unreadable directory",
			slog.String("dir", dir),
			slog.String("error", err.Error()))
		return nil
	}

	// One slot per entry keeps the output in listing order when
	// subdirectories complete out of order.
	slots := make([][]string, len(entries))
	var g errgroup.Group

	for i, entry := range entries {
		if ctx.Err() != nil {
			break
		}

		path := filepath.Join(dir, entry.Name())
		mode := entry.Type()

		switch {
		case mode.IsDir():
			if wk.decider.IsIgnored(path, files, true) {
				continue
			}
			if depth+1 > wk.w.maxDepth {
				slog.Warn("max depth reached, not descending",
					slog.String("dir", path),
					slog.Int("max_depth", wk.w.maxDepth))
				continue
			}
			childFiles := wk.childFiles(files, path)
			if wk.tryAcquire() {
				g.Go(func() error {
					defer wk.release()
					slots[i] = wk.dir(ctx, path, childFiles, depth+1)
					return nil
				})
				continue
			}
			slots[i] = wk.dir(ctx, path, childFiles, depth+1)

		case mode.IsRegular():
			if wk.decider.IsIgnored(path, files, false) {
				continue
			}
			slots[i] = []string{path}

		default:
			// symlinks, sockets, devices, pipes
		}
	}

	_ = g.Wait()

	var out []string
	for _, s := range slots {
		out = append(out, s...)
	}
	return out
}

// childFiles returns the gitignore set for entries of dir.
func (wk *walk) childFiles(files []gitignore.File, dir string) []gitignore.File {
	return childFiles(wk.w.nested, files, dir)
}

// childFiles adds dir's own .gitignore to files when nested is set. Sets are
// shared between siblings, so the result goes into a fresh slice.
func childFiles(nested bool, files []gitignore.File, dir string) []gitignore.File {
	if !nested {
		return files
	}
	f, ok := gitignore.ReadDir(dir)
	if !ok {
		return files
	}
	return append(slices.Clip(files), f)
}

// tryAcquire reserves a worker slot without blocking. Callers that get no
// slot walk the subdirectory inline, so nested walks never wait on each other.
func (wk *walk) tryAcquire() bool {
	if wk.sem == nil {
		return false
	}
	select {
	case wk.sem <- struct{}{}:
		return true
	default:
		return false
	}
}

func (wk *walk) release() {
	<-wk.sem
}
