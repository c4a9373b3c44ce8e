package cmd

import (
	"fmt"
	"regexp"

	"github.com/spf13/cobra"

	srcerrors "github.com/Aman-CERP/srcfind/internal/errors"
	"github.com/Aman-CERP/srcfind/internal/logging"
	"github.com/Aman-CERP/srcfind/internal/output"
)

type logsOptions struct {
	lines   int
	level   string
	filter  string
	noColor bool
	logFile string
}

func newLogsCmd() *cobra.Command {
	opts := logsOptions{}

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "View the debug log",
		Long: `Print the last entries of the log written by --debug
(~/.srcfind/logs/srcfind.log).`,
		Example: `  srcfind logs                  # Last 50 entries
  srcfind logs -n 200           # Last 200 entries
  srcfind logs --level warn     # Warnings and errors only
  srcfind logs --filter depth   # Entries matching a regex`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogs(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.lines, "lines", "n", 50, "Number of entries to show (0 = all)")
	cmd.Flags().StringVar(&opts.level, "level", "", "Minimum log level (debug|info|warn|error)")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "Only entries matching this regex")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().StringVar(&opts.logFile, "file", "", "Path to log file")

	return cmd
}

func runLogs(cmd *cobra.Command, opts logsOptions) error {
	path, err := logging.FindLogFile(opts.logFile)
	if err != nil {
		return srcerrors.New(srcerrors.ErrCodeLogNotFound, err.Error(), err).
			WithSuggestion("Run a command with --debug to start logging")
	}

	var pattern *regexp.Regexp
	if opts.filter != "" {
		pattern, err = regexp.Compile(opts.filter)
		if err != nil {
			return srcerrors.New(srcerrors.ErrCodeInvalidPattern,
				fmt.Sprintf("invalid filter pattern %q", opts.filter), err)
		}
	}

	noColor := opts.noColor || !output.UseColor(cmd.OutOrStdout())
	viewer := logging.NewViewer(logging.ViewerConfig{
		Level:   opts.level,
		Pattern: pattern,
		NoColor: noColor,
	}, cmd.OutOrStdout())

	entries, err := viewer.Tail(path, opts.lines)
	if err != nil {
		return srcerrors.New(srcerrors.ErrCodeReadFailed, "failed to read log file", err).
			WithDetail("path", path)
	}

	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Log file: %s\n---\n", path)
	viewer.Print(entries)
	return nil
}
