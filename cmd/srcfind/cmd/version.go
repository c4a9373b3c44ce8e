package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/srcfind/internal/output"
	"github.com/Aman-CERP/srcfind/internal/scanner"
	"github.com/Aman-CERP/srcfind/pkg/version"
)

type versionOptions struct {
	json    bool
	short   bool
	verbose bool
}

func newVersionCmd() *cobra.Command {
	opts := &versionOptions{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print the srcfind version with its commit, build date and Go toolchain.

--verbose also lists the built-in limits every listing starts from.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVersion(cmd.OutOrStdout(), opts)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.json, "json", false, "Output version info as JSON")
	f.BoolVar(&opts.short, "short", false, "Output only the version number")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Also print build details and built-in limits")
	cmd.MarkFlagsMutuallyExclusive("json", "short", "verbose")

	return cmd
}

func runVersion(w io.Writer, opts *versionOptions) error {
	switch {
	case opts.short:
		_, err := fmt.Fprintln(w, version.Short())
		return err
	case opts.json:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(version.GetInfo())
	case opts.verbose:
		info := version.GetInfo()
		out := output.New(w)
		out.Header("srcfind " + info.Version)
		out.KeyValue("commit", info.Commit)
		out.KeyValue("built", info.Date)
		out.KeyValue("go", info.GoVersion)
		out.KeyValue("platform", info.OS+"/"+info.Arch)
		out.KeyValue("extensions", strconv.Itoa(len(scanner.SourceExtensions)))
		out.KeyValue("max file size", strconv.FormatInt(scanner.MaxSourceFileSize, 10))
		out.KeyValue("max depth", strconv.Itoa(scanner.DefaultMaxDepth))
		return nil
	}
	_, err := fmt.Fprintln(w, version.String())
	return err
}
