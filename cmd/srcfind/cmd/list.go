package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/srcfind/internal/config"
	srcerrors "github.com/Aman-CERP/srcfind/internal/errors"
	"github.com/Aman-CERP/srcfind/internal/output"
	"github.com/Aman-CERP/srcfind/internal/scanner"
)

// listOptions holds the flags shared by the root command and list.
type listOptions struct {
	jsonOutput bool
	absolute   bool
	count      bool

	workers    int
	maxDepth   int
	maxSize    int64
	extensions []string
	skipBinary bool

	noGitRule    bool
	noHiddenRule bool
	noTmpRule    bool
	nested       bool
}

func addListFlags(cmd *cobra.Command, opts *listOptions) {
	f := cmd.Flags()
	f.BoolVar(&opts.jsonOutput, "json", false, "Output records as JSON")
	f.BoolVar(&opts.absolute, "abs", false, "Print absolute paths")
	f.BoolVarP(&opts.count, "count", "c", false, "Print only the number of files")

	f.IntVarP(&opts.workers, "workers", "w", 1, "Directories walked concurrently")
	f.IntVar(&opts.maxDepth, "max-depth", config.DefaultMaxDepth, "Maximum directory depth below the root")
	f.Int64Var(&opts.maxSize, "max-size", config.DefaultMaxFileSize, "Maximum file size in bytes")
	f.StringSliceVarP(&opts.extensions, "ext", "e", nil, "Extensions to list instead of the built-in set (repeatable, comma-separated)")
	f.BoolVar(&opts.skipBinary, "skip-binary", false, "Also skip files whose content looks binary")

	f.BoolVar(&opts.noGitRule, "no-git-rule", false, "Do not skip .git directories")
	f.BoolVar(&opts.noHiddenRule, "no-hidden-rule", false, "Do not skip hidden files and directories")
	f.BoolVar(&opts.noTmpRule, "no-tmp-rule", false, "Do not skip tmp and temp directories")
	f.BoolVar(&opts.nested, "nested", false, "Also honor .gitignore files in subdirectories")

	cmd.MarkFlagsMutuallyExclusive("json", "count")
}

// apply overrides cfg with the flags given on the command line.
func (o *listOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("workers") {
		cfg.Walk.Workers = o.workers
	}
	if f.Changed("max-depth") {
		cfg.Walk.MaxDepth = o.maxDepth
	}
	if f.Changed("max-size") {
		cfg.Filter.MaxFileSize = o.maxSize
	}
	if f.Changed("ext") {
		cfg.Filter.Extensions = o.extensions
	}
	if o.skipBinary {
		cfg.Filter.SkipBinary = true
	}
	if o.noGitRule {
		cfg.Ignore.ExcludeGitDir = false
	}
	if o.noHiddenRule {
		cfg.Ignore.ExcludeHidden = false
	}
	if o.noTmpRule {
		cfg.Ignore.ExcludeTmpDirs = false
	}
	if o.nested {
		cfg.Ignore.Nested = true
	}
}

func newListCmd() *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list [path]",
		Short: "List the source files under path",
		Long: `List every non-ignored source file under path (default ".").

Paths are printed relative to path, one per line, in directory listing
order. A file path lists that file if it is a source file.`,
		Example: `  # List the current project
  srcfind list

  # Only Go and Python files, as JSON
  srcfind list ./services -e go,py --json

  # Count files using 8 walkers
  srcfind list -c -w 8`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, pathArg(args), opts)
		},
	}

	addListFlags(cmd, opts)
	return cmd
}

func runList(cmd *cobra.Command, path string, opts *listOptions) error {
	info, err := os.Stat(path)
	if err != nil {
		return srcerrors.PathError(path, err)
	}

	cfg, err := loadConfig(path, info.IsDir())
	if err != nil {
		return err
	}
	opts.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return srcerrors.ValidationError(err.Error(), err)
	}
	applyLogLevel(cmd, cfg.Log.Level)

	records := scanner.New(scannerOptions(cfg)).Find(cmd.Context(), path)

	out := cmd.OutOrStdout()
	switch {
	case opts.jsonOutput:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case opts.count:
		_, err := fmt.Fprintln(out, len(records))
		return err
	}

	if len(records) == 0 {
		return srcerrors.New(srcerrors.ErrCodeNoSourceFiles,
			fmt.Sprintf("no source files found in %s", path), nil).
			WithDetail("path", path).
			WithSuggestion("Supported extensions: " + strings.Join(extensionsFor(cfg), ", "))
	}

	w := output.New(out)
	for _, r := range records {
		if opts.absolute {
			w.Line(r.AbsPath())
		} else {
			w.Line(filepath.ToSlash(r.RelPath()))
		}
	}
	return nil
}
