package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/srcfind/internal/config"
	srcerrors "github.com/Aman-CERP/srcfind/internal/errors"
	"github.com/Aman-CERP/srcfind/internal/output"
	"github.com/Aman-CERP/srcfind/internal/scanner"
	"github.com/Aman-CERP/srcfind/internal/watcher"
)

// change is one line of watch output.
type change struct {
	Op   string `json:"op"`
	Path string `json:"path"`
}

func newWatchCmd() *cobra.Command {
	var (
		debounce   time.Duration
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Print source files as they are added, changed or removed",
		Long: `Watch a project and print one line per change to its source file list:

  + path   a source file appeared (or stopped being ignored)
  - path   a source file went away (or became ignored)
  ~ path   a listed source file was modified

Editing a .gitignore or .srcfind.yaml re-evaluates the whole tree.
Status messages go to stderr so stdout can be piped.`,
		Example: `  # Watch the current project
  srcfind watch

  # Machine-readable changes with a longer quiet period
  srcfind watch ./web --json --debounce 1s`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, pathArg(args), debounce, jsonOutput)
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", 0, "Quiet period before reporting (default: watch.debounce)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print changes as JSON lines")

	return cmd
}

func runWatch(cmd *cobra.Command, path string, debounce time.Duration, jsonOutput bool) error {
	info, err := os.Stat(path)
	if err != nil {
		return srcerrors.PathError(path, err)
	}
	if !info.IsDir() {
		return srcerrors.New(srcerrors.ErrCodeInvalidPath, fmt.Sprintf("%s is not a directory", path), nil)
	}
	root, err := filepath.Abs(path)
	if err != nil {
		return srcerrors.PathError(path, err)
	}

	cfg, err := loadConfig(root, true)
	if err != nil {
		return err
	}
	applyLogLevel(cmd, cfg.Log.Level)
	if debounce <= 0 {
		debounce = cfg.DebounceDuration()
	}

	opts := watcher.DefaultOptions()
	opts.DebounceWindow = debounce
	opts.Policy = policyFor(cfg)
	opts.Nested = cfg.Ignore.Nested
	opts.ConfigFiles = []string{config.ProjectConfigFile, config.ProjectConfigFileAlt}

	w, err := watcher.New(opts)
	if err != nil {
		return srcerrors.New(srcerrors.ErrCodeWatchFailed, "cannot start file watcher", err)
	}
	defer func() { _ = w.Stop() }()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	startErr := make(chan error, 1)
	go func() { startErr <- w.Start(ctx, root) }()

	select {
	case <-w.Ready():
	case err := <-startErr:
		return srcerrors.New(srcerrors.ErrCodeWatchFailed, "cannot watch "+root, err)
	}

	status := output.New(cmd.ErrOrStderr())
	p := &printer{out: cmd.OutOrStdout(), json: jsonOutput}

	known := listSet(ctx, cfg, root)
	status.Statusf("👀", "Watching %s (%d source files)", root, len(known))

	events, errs := w.Events(), w.Errors()
	for {
		select {
		case <-ctx.Done():
			return nil

		case err := <-startErr:
			if err != nil && !errors.Is(err, context.Canceled) {
				return srcerrors.New(srcerrors.ErrCodeWatchFailed, "file watcher stopped", err)
			}
			return nil

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			slog.Warn("watcher error", slog.String("error", err.Error()))

		case batch, ok := <-events:
			if !ok {
				return nil
			}
			if reloadNeeded(batch) {
				if fresh, err := loadConfig(root, true); err == nil {
					cfg = fresh
				} else {
					status.Warningf("keeping previous configuration: %v", err)
				}
			}
			current := listSet(ctx, cfg, root)
			if err := p.diff(known, current, batch); err != nil {
				return err
			}
			known = current
		}
	}
}

// listSet lists root and returns the relative slash paths found.
func listSet(ctx context.Context, cfg *config.Config, root string) map[string]bool {
	records := scanner.New(scannerOptions(cfg)).Find(ctx, root)
	set := make(map[string]bool, len(records))
	for _, r := range records {
		set[filepath.ToSlash(r.RelPath())] = true
	}
	return set
}

func reloadNeeded(batch []watcher.FileEvent) bool {
	for _, ev := range batch {
		if ev.Operation == watcher.OpConfigChange {
			return true
		}
	}
	return false
}

// printer writes watch output.
type printer struct {
	out  io.Writer
	json bool
}

// diff prints the files added to and removed from the listing, each sorted,
// then the listed files the batch modified.
func (p *printer) diff(before, after map[string]bool, batch []watcher.FileEvent) error {
	var changes []change
	for _, path := range slices.Sorted(maps.Keys(after)) {
		if !before[path] {
			changes = append(changes, change{"+", path})
		}
	}
	for _, path := range slices.Sorted(maps.Keys(before)) {
		if !after[path] {
			changes = append(changes, change{"-", path})
		}
	}
	for _, ev := range batch {
		path := filepath.ToSlash(ev.Path)
		if ev.Operation == watcher.OpModify && before[path] && after[path] {
			changes = append(changes, change{"~", path})
		}
	}

	for _, c := range changes {
		var err error
		if p.json {
			err = json.NewEncoder(p.out).Encode(c)
		} else {
			_, err = fmt.Fprintf(p.out, "%s %s\n", c.Op, c.Path)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
