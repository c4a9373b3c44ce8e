package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/srcfind/internal/config"
	srcerrors "github.com/Aman-CERP/srcfind/internal/errors"
	"github.com/Aman-CERP/srcfind/internal/gitignore"
	"github.com/Aman-CERP/srcfind/internal/output"
	"github.com/Aman-CERP/srcfind/internal/scanner"
)

func newCheckIgnoreCmd() *cobra.Command {
	var (
		verbose      bool
		nonMatching  bool
		root         string
		showPatterns bool
	)

	cmd := &cobra.Command{
		Use:   "check-ignore <path>...",
		Short: "Show which paths are ignored and why",
		Long: `For each path, report whether a listing would skip it.

A path is ignored when a built-in rule or a .gitignore pattern excludes it
or any directory above it. With --verbose the deciding rule is printed as
"source:line:pattern" or "built-in:rule".`,
		Example: `  # Is the build output ignored?
  srcfind check-ignore dist/app.js

  # Why is this file missing from the listing?
  srcfind check-ignore -v src/gen/api.ts

  # Show the patterns loaded for the project
  srcfind check-ignore --show-patterns .`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckIgnore(cmd, args, root, verbose, nonMatching, showPatterns)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print the rule that decided each path")
	cmd.Flags().BoolVarP(&nonMatching, "non-matching", "n", false, "Also print paths that are not ignored")
	cmd.Flags().StringVar(&root, "root", "", "Walk root the paths are checked against (default: project root)")
	cmd.Flags().BoolVar(&showPatterns, "show-patterns", false, "Print the .gitignore files and patterns in effect at the root")

	return cmd
}

func runCheckIgnore(cmd *cobra.Command, paths []string, root string, verbose, nonMatching, showPatterns bool) error {
	first := paths[0]
	info, statErr := os.Stat(first)
	cfg, err := loadConfig(first, statErr == nil && info.IsDir())
	if err != nil {
		return err
	}
	applyLogLevel(cmd, cfg.Log.Level)

	if root == "" {
		dir := first
		if statErr != nil || !info.IsDir() {
			dir = filepath.Dir(first)
		}
		if root, err = config.FindProjectRoot(dir); err != nil {
			return srcerrors.New(srcerrors.ErrCodeInvalidPath, err.Error(), err)
		}
	}

	out := output.New(cmd.OutOrStdout())
	if showPatterns {
		printPatterns(out, gitignore.Load(root))
		return nil
	}

	walker := scanner.NewWalker(scanner.WalkOptions{
		Policy: policyFor(cfg),
		Nested: cfg.Ignore.Nested,
	})

	for _, p := range paths {
		isDir := false
		if fi, err := os.Stat(p); err == nil {
			isDir = fi.IsDir()
		}

		v, err := walker.Explain(root, p, isDir)
		if err != nil {
			return srcerrors.New(srcerrors.ErrCodeInvalidPath, err.Error(), err).
				WithSuggestion("Pass --root to check paths outside the project")
		}

		if !v.Ignored && !nonMatching {
			continue
		}
		switch {
		case verbose && v.Matched():
			out.Line(fmt.Sprintf("%s\t%s", v, p))
		case verbose:
			out.Line(fmt.Sprintf("::\t%s", p))
		default:
			out.Line(p)
		}
	}
	return nil
}

// printPatterns prints each loaded .gitignore and its patterns in order.
func printPatterns(out *output.Writer, files []gitignore.File) {
	if len(files) == 0 {
		out.Dim("no .gitignore files in effect")
		return
	}
	for _, f := range files {
		out.Header(f.Path())
		patterns := gitignore.ParsePatterns(f.Content)
		if len(patterns) == 0 {
			out.Dim("  (no patterns)")
			continue
		}
		for _, p := range patterns {
			out.Line("  " + p)
		}
	}
}
