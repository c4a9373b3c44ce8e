package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/srcfind/configs"
	"github.com/Aman-CERP/srcfind/internal/config"
)

func TestConfigInitCmd(t *testing.T) {
	home := isolateEnv(t)
	userPath := filepath.Join(home, ".config", "srcfind", "config.yaml")

	// Given no user config
	// When running config init
	stdout, stderr, code := run(t, "config", "init")

	// Then the defaults are written
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Wrote default configuration")
	assert.Contains(t, stdout, userPath)
	_, err := os.Stat(userPath)
	require.NoError(t, err)

	// When running it again without --force
	require.NoError(t, os.WriteFile(userPath, []byte("walk:\n  workers: 4\n"), 0o644))
	stdout, _, code = run(t, "config", "init")

	// Then the file is left alone
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Configuration already exists")
	data, err := os.ReadFile(userPath)
	require.NoError(t, err)
	assert.Equal(t, "walk:\n  workers: 4\n", string(data))

	// When forcing
	stdout, _, code = run(t, "config", "init", "--force")

	// Then the old file is backed up and replaced
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Backup:")
	backups, err := config.ListBackups(userPath)
	require.NoError(t, err)
	require.Len(t, backups, 1)
	old, err := os.ReadFile(backups[0])
	require.NoError(t, err)
	assert.Equal(t, "walk:\n  workers: 4\n", string(old))
	data, err = os.ReadFile(userPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "max_file_size: 5242880")
}

func TestConfigInitCmd_Project(t *testing.T) {
	isolateEnv(t)
	root := newProject(t)
	t.Chdir(filepath.Join(root, "src"))

	_, stderr, code := run(t, "config", "init", "--project")

	require.Equal(t, 0, code, stderr)
	data, err := os.ReadFile(filepath.Join(root, config.ProjectConfigFile))
	require.NoError(t, err)
	assert.Equal(t, configs.ProjectConfigTemplate, string(data))

	// And the listing still works with the template in place
	stdout, _, code := run(t, "list", root)
	require.Equal(t, 0, code)
	assert.Equal(t, []string{"README.md", "app.ts", "src/gen.ts", "src/main.go"}, lines(stdout))
}

func TestConfigShowCmd(t *testing.T) {
	isolateEnv(t)
	root := newProject(t)
	projectFile := filepath.Join(root, config.ProjectConfigFile)
	writeFiles(t, root, map[string]string{
		config.ProjectConfigFile: "walk:\n  workers: 8\n",
	})

	t.Run("json merges the project config", func(t *testing.T) {
		stdout, stderr, code := run(t, "config", "show", root, "--json")
		require.Equal(t, 0, code, stderr)

		var cfg config.Config
		require.NoError(t, json.Unmarshal([]byte(stdout), &cfg))
		assert.Equal(t, 8, cfg.Walk.Workers)
		assert.False(t, cfg.Ignore.Nested)
		assert.Equal(t, int64(5242880), cfg.Filter.MaxFileSize)
	})

	t.Run("text lists the sources", func(t *testing.T) {
		t.Setenv("SRCFIND_LOG_LEVEL", "error")
		stdout, _, code := run(t, "config", "show", root)
		require.Equal(t, 0, code)

		assert.Contains(t, stdout, "Configuration sources")
		assert.Contains(t, stdout, projectFile)
		assert.Contains(t, stdout, "env:SRCFIND_LOG_LEVEL")
		assert.Contains(t, stdout, "workers: 8")
		assert.Contains(t, stdout, "level: error")
	})

	t.Run("defaults ignore the project config", func(t *testing.T) {
		stdout, _, code := run(t, "config", "show", root, "--defaults", "--json")
		require.Equal(t, 0, code)

		var cfg config.Config
		require.NoError(t, json.Unmarshal([]byte(stdout), &cfg))
		assert.Equal(t, config.NewConfig().Walk.Workers, cfg.Walk.Workers)
	})

	t.Run("missing path", func(t *testing.T) {
		_, stderr, code := run(t, "config", "show", filepath.Join(root, "nope"))
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr, "ERR_201_PATH_NOT_FOUND")
	})
}

func TestConfigPathCmd(t *testing.T) {
	home := isolateEnv(t)

	stdout, _, code := run(t, "config", "path")

	assert.Equal(t, 0, code)
	assert.Equal(t, filepath.Join(home, ".config", "srcfind", "config.yaml")+"\n", stdout)
}
