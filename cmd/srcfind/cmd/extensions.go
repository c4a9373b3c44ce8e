package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/srcfind/internal/output"
	"github.com/Aman-CERP/srcfind/internal/scanner"
)

type extensionInfo struct {
	Extension string `json:"extension"`
	Language  string `json:"language,omitempty"`
}

func newExtensionsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "extensions",
		Short: "Print the built-in source extension allowlist",
		Long: `Print the extensions a file must have to be listed, with the language
reported for each. Matching is case-insensitive. Override the set with
filter.extensions in .srcfind.yaml or --ext.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			infos := make([]extensionInfo, 0, len(scanner.SourceExtensions))
			for _, ext := range scanner.SourceExtensions {
				infos = append(infos, extensionInfo{
					Extension: ext,
					Language:  scanner.DetectLanguage("file." + ext),
				})
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}

			out := output.New(cmd.OutOrStdout())
			for _, info := range infos {
				out.Line(strings.TrimRight(fmt.Sprintf("%-10s %s", info.Extension, info.Language), " "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
