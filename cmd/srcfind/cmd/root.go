// Package cmd provides the CLI commands for srcfind.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	srcerrors "github.com/Aman-CERP/srcfind/internal/errors"
	"github.com/Aman-CERP/srcfind/internal/logging"
	"github.com/Aman-CERP/srcfind/internal/profiling"
	"github.com/Aman-CERP/srcfind/pkg/version"
)

// Profiling flags
var (
	profileCPU     string
	profileMem     string
	profileTrace   string
	profileSession *profiling.Session
)

// Debug logging flag
var (
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the srcfind CLI.
func NewRootCmd() *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "srcfind [path]",
		Short: "List the source files of a project, honoring .gitignore",
		Long: `srcfind walks a project directory and prints every source file that
is not ignored.

Directories matched by .gitignore rules are pruned without being read.
The .git directory, hidden entries and tmp/temp directories are skipped
by default. Files larger than 5 MiB or without a known source extension
are left out.

Running 'srcfind' with no subcommand is the same as 'srcfind list'.`,
		Version:       version.Short(),
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, pathArg(args), opts)
		},
	}

	cmd.SetVersionTemplate("srcfind version {{.Version}}\n")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return srcerrors.ValidationError(err.Error(), err).
			WithSuggestion("Run 'srcfind --help' for usage")
	})

	addListFlags(cmd, opts)

	cmd.PersistentFlags().StringVar(&profileCPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&profileMem, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&profileTrace, "profile-trace", "", "Write execution trace to file")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.srcfind/logs/")

	cmd.PersistentPreRunE = startProfilingAndLogging
	cmd.PersistentPostRunE = stopProfilingAndLogging

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newCheckIgnoreCmd())
	cmd.AddCommand(newExtensionsCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startProfilingAndLogging sets up logging and starts profiling if flags are set.
func startProfilingAndLogging(cmd *cobra.Command, _ []string) error {
	if debugMode {
		logger, cleanup, err := logging.Setup(logging.DebugConfig())
		if err != nil {
			return srcerrors.New(srcerrors.ErrCodeWriteFailed, "failed to setup debug logging", err)
		}
		loggingCleanup = cleanup
		slog.SetDefault(logger)
		slog.Info("debug logging enabled",
			slog.String("log_file", logging.DefaultLogPath()),
			slog.String("version", version.Short()),
			slog.String("command", cmd.CommandPath()))
	} else {
		slog.SetDefault(logging.NewConsoleLogger(cmd.ErrOrStderr(), "warn"))
	}

	popts := profiling.Options{CPUPath: profileCPU, MemPath: profileMem, TracePath: profileTrace}
	if popts.Enabled() {
		session, err := profiling.Start(popts)
		if err != nil {
			return srcerrors.New(srcerrors.ErrCodeProfiling, "failed to start profiling", err)
		}
		profileSession = session
	}

	return nil
}

// stopProfilingAndLogging flushes profiles and closes the log file.
// It runs again from Execute, so it must tolerate being called twice.
func stopProfilingAndLogging(_ *cobra.Command, _ []string) error {
	var err error
	if profileSession != nil {
		slog.Debug("writing profiles",
			slog.String("heap_alloc", profiling.FormatBytes(profiling.HeapAlloc())))
		if stopErr := profileSession.Stop(); stopErr != nil {
			err = srcerrors.New(srcerrors.ErrCodeProfiling, "failed to write profiles", stopErr)
		}
		profileSession = nil
	}

	if loggingCleanup != nil {
		slog.Info("debug logging stopped")
		loggingCleanup()
		loggingCleanup = nil
	}

	return err
}

// applyLogLevel switches the console logger to the configured level.
// --debug file logging is left alone.
func applyLogLevel(cmd *cobra.Command, level string) {
	if debugMode || level == "" {
		return
	}
	slog.SetDefault(logging.NewConsoleLogger(cmd.ErrOrStderr(), level))
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	root.SetContext(ctx)
	return execute(root, os.Stderr)
}

func execute(root *cobra.Command, stderr io.Writer) int {
	err := root.Execute()
	if err != nil {
		slog.Debug("command failed", attrsToAny(srcerrors.FormatForLog(err))...)
	}
	if stopErr := stopProfilingAndLogging(nil, nil); err == nil {
		err = stopErr
	}
	if err == nil {
		return 0
	}

	_, _ = fmt.Fprint(stderr, srcerrors.FormatForCLI(err))
	return 1
}

func attrsToAny(attrs []slog.Attr) []any {
	out := make([]any, len(attrs))
	for i, a := range attrs {
		out[i] = a
	}
	return out
}

// pathArg returns the optional path argument, defaulting to ".".
func pathArg(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}
