package cmd

import (
	"path/filepath"

	"github.com/Aman-CERP/srcfind/internal/config"
	srcerrors "github.com/Aman-CERP/srcfind/internal/errors"
	"github.com/Aman-CERP/srcfind/internal/gitignore"
	"github.com/Aman-CERP/srcfind/internal/scanner"
)

// loadConfig loads the configuration that applies to path. The project
// config is looked up from the project root containing path.
func loadConfig(path string, isDir bool) (*config.Config, error) {
	dir := path
	if !isDir {
		dir = filepath.Dir(path)
	}

	root, err := config.FindProjectRoot(dir)
	if err != nil {
		return nil, srcerrors.New(srcerrors.ErrCodeInvalidPath, err.Error(), err)
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, srcerrors.ConfigError("failed to load configuration", err).
			WithSuggestion("Run 'srcfind config show' to inspect the merged configuration")
	}
	return cfg, nil
}

// policyFor returns the built-in rules selected by cfg.
func policyFor(cfg *config.Config) gitignore.Policy {
	return gitignore.Policy{
		ExcludeGitDir:  cfg.Ignore.ExcludeGitDir,
		ExcludeHidden:  cfg.Ignore.ExcludeHidden,
		ExcludeTmpDirs: cfg.Ignore.ExcludeTmpDirs,
	}
}

// scannerOptions maps cfg onto scanner options.
func scannerOptions(cfg *config.Config) scanner.Options {
	return scanner.Options{
		Policy: policyFor(cfg),
		Filter: scanner.FilterOptions{
			MaxFileSize: cfg.Filter.MaxFileSize,
			Extensions:  cfg.Filter.Extensions,
			SkipBinary:  cfg.Filter.SkipBinary,
		},
		MaxDepth: cfg.Walk.MaxDepth,
		Workers:  cfg.Walk.Workers,
		Nested:   cfg.Ignore.Nested,
	}
}

// extensionsFor returns the allowlist in effect for cfg.
func extensionsFor(cfg *config.Config) []string {
	if len(cfg.Filter.Extensions) > 0 {
		return cfg.Filter.Extensions
	}
	return scanner.SourceExtensions
}
