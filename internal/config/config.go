package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// ProjectConfigFile is the project-level config file name.
	ProjectConfigFile = ".srcfind.yaml"
	// ProjectConfigFileAlt is the alternate project-level config file name.
	ProjectConfigFileAlt = ".srcfind.yml"

	// DefaultMaxFileSize is the size cap for source files (5 MiB).
	DefaultMaxFileSize int64 = 5 * 1024 * 1024
	// DefaultMaxDepth is how many directory levels are descended by default.
	DefaultMaxDepth = 256
	// DefaultWatchDebounce is the default quiet period before re-listing.
	DefaultWatchDebounce = "300ms"
)

// Config represents the complete srcfind configuration.
type Config struct {
	Version int          `yaml:"version" json:"version"`
	Ignore  IgnoreConfig `yaml:"ignore" json:"ignore"`
	Filter  FilterConfig `yaml:"filter" json:"filter"`
	Walk    WalkConfig   `yaml:"walk" json:"walk"`
	Watch   WatchConfig  `yaml:"watch" json:"watch"`
	Log     LogConfig    `yaml:"log" json:"log"`

	// Sources lists the files and env vars that contributed, in load order.
	Sources []string `yaml:"-" json:"-"`
}

// IgnoreConfig selects the built-in exclusion rules. Each rule is applied
// before .gitignore patterns and cannot be negated by them.
type IgnoreConfig struct {
	// ExcludeGitDir ignores any path with a ".git" segment.
	ExcludeGitDir bool `yaml:"exclude_git_dir" json:"exclude_git_dir"`
	// ExcludeHidden ignores entries whose name starts with ".".
	ExcludeHidden bool `yaml:"exclude_hidden" json:"exclude_hidden"`
	// ExcludeTmpDirs ignores "tmp" and "temp" directories below the root.
	ExcludeTmpDirs bool `yaml:"exclude_tmp_dirs" json:"exclude_tmp_dirs"`
	// Nested applies .gitignore files found in subdirectories.
	Nested bool `yaml:"nested" json:"nested"`
}

// FilterConfig configures which enumerated files count as source.
type FilterConfig struct {
	MaxFileSize int64    `yaml:"max_file_size" json:"max_file_size"`
	Extensions  []string `yaml:"extensions" json:"extensions"`
	SkipBinary  bool     `yaml:"skip_binary" json:"skip_binary"`
}

// WalkConfig configures directory traversal.
type WalkConfig struct {
	MaxDepth int `yaml:"max_depth" json:"max_depth"`
	// Workers bounds concurrent subdirectory walks (0 or 1 = sequential).
	Workers int `yaml:"workers" json:"workers"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	Debounce string `yaml:"debounce" json:"debounce"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

// NewConfig returns a Config with all defaults applied.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Ignore: IgnoreConfig{
			ExcludeGitDir:  true,
			ExcludeHidden:  true,
			ExcludeTmpDirs: true,
			Nested:         false,
		},
		Filter: FilterConfig{
			MaxFileSize: DefaultMaxFileSize,
			Extensions:  nil, // nil = built-in allowlist
			SkipBinary:  false,
		},
		Walk: WalkConfig{
			MaxDepth: DefaultMaxDepth,
			Workers:  1,
		},
		Watch: WatchConfig{
			Debounce: DefaultWatchDebounce,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// GetUserConfigPath returns the path to the user configuration file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/srcfind/config.yaml
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "srcfind", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "srcfind", "config.yaml")
	}
	return filepath.Join(home, ".config", "srcfind", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user config.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists reports whether the user config file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// Load loads configuration for dir.
// Precedence (lowest to highest):
//  1. Hardcoded defaults
//  2. User config (~/.config/srcfind/config.yaml)
//  3. Project config (.srcfind.yaml or .srcfind.yml in dir)
//  4. SRCFIND_* environment variables
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if path := GetUserConfigPath(); fileExists(path) {
		if err := cfg.loadYAML(path); err != nil {
			return nil, fmt.Errorf("failed to load user config: %w", err)
		}
	}

	if path := ProjectConfigPath(dir); path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// ProjectConfigPath returns the project config file in dir, or "" if none.
func ProjectConfigPath(dir string) string {
	for _, name := range []string{ProjectConfigFile, ProjectConfigFileAlt} {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// loadYAML decodes path on top of the current values. Keys absent from the
// file keep their value, so an explicit false still overrides a true default.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	sources := c.Sources
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	c.Sources = append(sources, path)
	return nil
}

// envVar names an environment override.
type envVar struct {
	name  string
	apply func(c *Config, v string) error
}

var envVars = []envVar{
	{"SRCFIND_EXCLUDE_GIT_DIR", func(c *Config, v string) error { return setBool(&c.Ignore.ExcludeGitDir, v) }},
	{"SRCFIND_EXCLUDE_HIDDEN", func(c *Config, v string) error { return setBool(&c.Ignore.ExcludeHidden, v) }},
	{"SRCFIND_EXCLUDE_TMP_DIRS", func(c *Config, v string) error { return setBool(&c.Ignore.ExcludeTmpDirs, v) }},
	{"SRCFIND_NESTED_GITIGNORE", func(c *Config, v string) error { return setBool(&c.Ignore.Nested, v) }},
	{"SRCFIND_SKIP_BINARY", func(c *Config, v string) error { return setBool(&c.Filter.SkipBinary, v) }},
	{"SRCFIND_MAX_FILE_SIZE", func(c *Config, v string) error {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return err
		}
		c.Filter.MaxFileSize = n
		return nil
	}},
	{"SRCFIND_EXTENSIONS", func(c *Config, v string) error {
		c.Filter.Extensions = splitList(v)
		return nil
	}},
	{"SRCFIND_MAX_DEPTH", func(c *Config, v string) error { return setInt(&c.Walk.MaxDepth, v) }},
	{"SRCFIND_WORKERS", func(c *Config, v string) error { return setInt(&c.Walk.Workers, v) }},
	{"SRCFIND_WATCH_DEBOUNCE", func(c *Config, v string) error {
		c.Watch.Debounce = strings.TrimSpace(v)
		return nil
	}},
	{"SRCFIND_LOG_LEVEL", func(c *Config, v string) error {
		c.Log.Level = strings.TrimSpace(v)
		return nil
	}},
}

// applyEnvOverrides applies SRCFIND_* environment variables.
func (c *Config) applyEnvOverrides() error {
	for _, ev := range envVars {
		v, ok := os.LookupEnv(ev.name)
		if !ok || v == "" {
			continue
		}
		if err := ev.apply(c, v); err != nil {
			return fmt.Errorf("invalid %s=%q: %w", ev.name, v, err)
		}
		c.Sources = append(c.Sources, "env:"+ev.name)
	}
	return nil
}

func setBool(dst *bool, v string) error {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return err
	}
	*dst = b
	return nil
}

func setInt(dst *int, v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// DebounceDuration returns Watch.Debounce as a duration.
func (c *Config) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		d, _ = time.ParseDuration(DefaultWatchDebounce)
	}
	return d
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.Filter.MaxFileSize <= 0 {
		return fmt.Errorf("filter.max_file_size must be positive, got %d", c.Filter.MaxFileSize)
	}
	for _, ext := range c.Filter.Extensions {
		e := strings.TrimPrefix(ext, ".")
		if e == "" || strings.ContainsAny(e, `/\.`) {
			return fmt.Errorf("filter.extensions: invalid extension %q", ext)
		}
	}

	if c.Walk.MaxDepth <= 0 {
		return fmt.Errorf("walk.max_depth must be positive, got %d", c.Walk.MaxDepth)
	}
	if c.Walk.Workers < 0 {
		return fmt.Errorf("walk.workers must be non-negative, got %d", c.Walk.Workers)
	}

	if d, err := time.ParseDuration(c.Watch.Debounce); err != nil {
		return fmt.Errorf("watch.debounce: %w", err)
	} else if d < 0 {
		return fmt.Errorf("watch.debounce must be non-negative, got %s", c.Watch.Debounce)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("log.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Log.Level)
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file, creating parent
// directories as needed.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// FindProjectRoot finds the project root directory.
// It looks for a .git directory or .srcfind.yaml/.yml file by walking up the
// directory tree, and falls back to startDir.
func FindProjectRoot(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	currentDir := absDir
	for {
		if dirExists(filepath.Join(currentDir, ".git")) {
			return currentDir, nil
		}

		if ProjectConfigPath(currentDir) != "" {
			return currentDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return absDir, nil
		}
		currentDir = parentDir
	}
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// dirExists checks if a directory exists.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
