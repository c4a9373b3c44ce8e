package cmd

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateEnv points HOME and XDG_CONFIG_HOME at a temp dir and clears
// SRCFIND_* overrides so the developer's own configuration never leaks in.
func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for _, name := range []string{
		"SRCFIND_EXCLUDE_GIT_DIR", "SRCFIND_EXCLUDE_HIDDEN", "SRCFIND_EXCLUDE_TMP_DIRS",
		"SRCFIND_NESTED_GITIGNORE", "SRCFIND_SKIP_BINARY", "SRCFIND_MAX_FILE_SIZE",
		"SRCFIND_EXTENSIONS", "SRCFIND_MAX_DEPTH", "SRCFIND_WORKERS",
		"SRCFIND_WATCH_DEBOUNCE", "SRCFIND_LOG_LEVEL",
	} {
		t.Setenv(name, "")
	}
	return home
}

// run executes the CLI with args and returns stdout, stderr and the exit code.
func run(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	code := execute(root, &stderr)
	return stdout.String(), stderr.String(), code
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// newProject creates a small repository:
//
//	.git/HEAD           built-in .git rule
//	.gitignore          dist/ and *.log
//	.eslintrc.json      hidden
//	README.md app.ts    listed
//	image.png           not a source extension
//	dist/bundle.js      pruned by .gitignore
//	src/.gitignore      gen.ts
//	src/gen.ts          listed, ignored only with --nested
//	src/main.go         listed
//	tmp/scratch.js      built-in tmp rule
func newProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		".git/HEAD":      "ref: refs/heads/main\n",
		".gitignore":     "dist/\n*.log\n",
		".eslintrc.json": "{}\n",
		"README.md":      "# x\n",
		"app.ts":         "console.log(1)\n",
		"image.png":      "\x89PNG",
		"dist/bundle.js": "var a\n",
		"src/.gitignore": "gen.ts\n",
		"src/gen.ts":     "export {}\n",
		"src/main.go":    "package main\n",
		"src/debug.log":  "boom\n",
		"tmp/scratch.js": "1\n",
	})
	return root
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

// =============================================================================
// Root command
// =============================================================================

func TestRootCmd_HasSubcommands(t *testing.T) {
	root := NewRootCmd()

	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"list", "check-ignore", "extensions", "watch", "config", "logs", "version"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestRootCmd_ListsWithoutSubcommand(t *testing.T) {
	isolateEnv(t)
	root := newProject(t)

	// When running the bare command on a project
	stdout, stderr, code := run(t, root)

	// Then it behaves like list
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, []string{"README.md", "app.ts", "src/gen.ts", "src/main.go"}, lines(stdout))
}

func TestRootCmd_VersionFlag(t *testing.T) {
	stdout, _, code := run(t, "--version")

	assert.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(stdout, "srcfind version "))
}

func TestRootCmd_UnknownFlagIsValidationError(t *testing.T) {
	_, stderr, code := run(t, "--bogus")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "ERR_401_INVALID_INPUT")
	assert.Contains(t, stderr, "srcfind --help")
}

func TestRootCmd_ProfileMemWritesHeapProfile(t *testing.T) {
	isolateEnv(t)
	root := newProject(t)
	memPath := filepath.Join(t.TempDir(), "mem.prof")
	t.Cleanup(func() { profileMem = "" })

	_, stderr, code := run(t, "list", root, "--profile-mem", memPath)

	require.Equal(t, 0, code, stderr)
	info, err := os.Stat(memPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestRootCmd_DebugWritesLogFile(t *testing.T) {
	home := isolateEnv(t)
	root := newProject(t)
	prev := slog.Default()
	t.Cleanup(func() {
		debugMode = false
		slog.SetDefault(prev)
	})

	_, stderr, code := run(t, "--debug", "list", root)

	require.Equal(t, 0, code, stderr)
	data, err := os.ReadFile(filepath.Join(home, ".srcfind", "logs", "srcfind.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "debug logging enabled")
	assert.Contains(t, string(data), "debug logging stopped")
	assert.Nil(t, loggingCleanup)
}

// =============================================================================
// list
// =============================================================================

func TestListCmd_Flags(t *testing.T) {
	isolateEnv(t)
	root := newProject(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"defaults", nil, []string{"README.md", "app.ts", "src/gen.ts", "src/main.go"}},
		{"no hidden rule", []string{"--no-hidden-rule"}, []string{".eslintrc.json", "README.md", "app.ts", "src/gen.ts", "src/main.go"}},
		{"no tmp rule", []string{"--no-tmp-rule"}, []string{"README.md", "app.ts", "src/gen.ts", "src/main.go", "tmp/scratch.js"}},
		{"nested gitignores", []string{"--nested"}, []string{"README.md", "app.ts", "src/main.go"}},
		{"extension override", []string{"-e", "go,ts"}, []string{"app.ts", "src/gen.ts", "src/main.go"}},
		{"size cap", []string{"--max-size", "5"}, []string{"README.md"}},
		{"parallel walk keeps order", []string{"-w", "4"}, []string{"README.md", "app.ts", "src/gen.ts", "src/main.go"}},
		{"parallel nested walk keeps order", []string{"-w", "4", "--nested"}, []string{"README.md", "app.ts", "src/main.go"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"list", root}, tt.args...)
			stdout, stderr, code := run(t, args...)

			require.Equal(t, 0, code, stderr)
			assert.Equal(t, tt.want, lines(stdout))
		})
	}
}

func TestListCmd_Count(t *testing.T) {
	isolateEnv(t)
	root := newProject(t)

	stdout, _, code := run(t, "list", root, "-c")

	assert.Equal(t, 0, code)
	assert.Equal(t, "4\n", stdout)
}

func TestListCmd_Absolute(t *testing.T) {
	isolateEnv(t)
	root := newProject(t)

	stdout, _, code := run(t, "list", root, "--abs", "-e", "go")

	assert.Equal(t, 0, code)
	assert.Equal(t, filepath.Join(root, "src", "main.go")+"\n", stdout)
}

func TestListCmd_JSON(t *testing.T) {
	isolateEnv(t)
	root := newProject(t)

	stdout, _, code := run(t, "list", root, "--json")
	require.Equal(t, 0, code)

	var records []struct {
		Path     string `json:"path"`
		AbsPath  string `json:"abs_path"`
		Language string `json:"language"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &records))
	require.Len(t, records, 4)

	assert.Equal(t, "README.md", records[0].Path)
	assert.Equal(t, "markdown", records[0].Language)
	assert.Equal(t, "src/main.go", records[3].Path)
	assert.Equal(t, filepath.Join(root, "src", "main.go"), records[3].AbsPath)
	assert.Equal(t, "go", records[3].Language)
}

func TestListCmd_JSONAndCountAreExclusive(t *testing.T) {
	isolateEnv(t)
	root := newProject(t)

	_, stderr, code := run(t, "list", root, "--json", "--count")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "none of the others can be")
}

func TestListCmd_SingleFile(t *testing.T) {
	isolateEnv(t)
	root := newProject(t)

	stdout, _, code := run(t, "list", filepath.Join(root, "app.ts"))

	assert.Equal(t, 0, code)
	assert.Equal(t, ".\n", stdout)
}

func TestListCmd_SymlinkedProject(t *testing.T) {
	isolateEnv(t)
	root := newProject(t)
	link := filepath.Join(t.TempDir(), "proj")
	require.NoError(t, os.Symlink(root, link))

	stdout, stderr, code := run(t, "list", link)

	require.Equal(t, 0, code, stderr)
	assert.Equal(t, []string{"README.md", "app.ts", "src/gen.ts", "src/main.go"}, lines(stdout))
}

func TestListCmd_EmptyResult(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"notes.txt": "hi\n"})

	t.Run("text reports no source files", func(t *testing.T) {
		stdout, stderr, code := run(t, "list", dir)

		assert.Equal(t, 1, code)
		assert.Empty(t, stdout)
		assert.Contains(t, stderr, "ERR_207_NO_SOURCE_FILES")
		assert.Contains(t, stderr, "Supported extensions: ts, tsx, js")
	})

	t.Run("json prints an empty array", func(t *testing.T) {
		stdout, _, code := run(t, "list", dir, "--json")

		assert.Equal(t, 0, code)
		assert.JSONEq(t, "[]", stdout)
	})

	t.Run("count prints zero", func(t *testing.T) {
		stdout, _, code := run(t, "list", dir, "-c")

		assert.Equal(t, 0, code)
		assert.Equal(t, "0\n", stdout)
	})
}

func TestListCmd_MissingPath(t *testing.T) {
	isolateEnv(t)

	_, stderr, code := run(t, "list", filepath.Join(t.TempDir(), "nope"))

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "ERR_201_PATH_NOT_FOUND")
}

func TestListCmd_InvalidFlagValue(t *testing.T) {
	isolateEnv(t)
	root := newProject(t)

	_, stderr, code := run(t, "list", root, "--max-depth", "0")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "ERR_401_INVALID_INPUT")
	assert.Contains(t, stderr, "walk.max_depth")
}

func TestListCmd_ConfigPrecedence(t *testing.T) {
	isolateEnv(t)
	root := newProject(t)
	writeFiles(t, root, map[string]string{
		".srcfind.yaml": "filter:\n  extensions: [go]\n",
	})

	t.Run("project config", func(t *testing.T) {
		stdout, _, code := run(t, "list", root)
		assert.Equal(t, 0, code)
		assert.Equal(t, "src/main.go\n", stdout)
	})

	t.Run("environment beats project config", func(t *testing.T) {
		t.Setenv("SRCFIND_EXTENSIONS", "md")
		stdout, _, code := run(t, "list", root)
		assert.Equal(t, 0, code)
		assert.Equal(t, "README.md\n", stdout)
	})

	t.Run("flag beats environment", func(t *testing.T) {
		t.Setenv("SRCFIND_EXTENSIONS", "md")
		stdout, _, code := run(t, "list", root, "-e", "ts")
		assert.Equal(t, 0, code)
		assert.Equal(t, "app.ts\n", stdout)
	})
}

func TestListCmd_BrokenProjectConfig(t *testing.T) {
	isolateEnv(t)
	root := newProject(t)
	writeFiles(t, root, map[string]string{".srcfind.yaml": "walk: [unclosed\n"})

	_, stderr, code := run(t, "list", root)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "ERR_102_CONFIG_INVALID")
}
