package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupFile(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		path, err := BackupFile(filepath.Join(t.TempDir(), ".srcfind.yaml"))
		require.NoError(t, err)
		assert.Empty(t, path)
	})

	t.Run("copies content", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".srcfind.yaml")
		require.NoError(t, os.WriteFile(path, []byte("walk:\n  workers: 2\n"), 0o644))

		backup, err := BackupFile(path)

		require.NoError(t, err)
		assert.Contains(t, filepath.Base(backup), ".srcfind.yaml.bak.")
		data, err := os.ReadFile(backup)
		require.NoError(t, err)
		assert.Equal(t, "walk:\n  workers: 2\n", string(data))
	})
}

func TestBackupFile_KeepsNewest(t *testing.T) {
	// Given: more backups than the limit
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0o644))

	var made []string
	for i := 0; i < MaxBackups+2; i++ {
		b, err := BackupFile(path)
		require.NoError(t, err)
		made = append(made, b)
	}

	// Then: only the newest MaxBackups remain, newest first
	backups, err := ListBackups(path)
	require.NoError(t, err)
	require.Len(t, backups, MaxBackups)
	assert.Equal(t, made[len(made)-1], backups[0])
	assert.NotContains(t, backups, made[0])
}

func TestListBackups_MissingDir(t *testing.T) {
	backups, err := ListBackups(filepath.Join(t.TempDir(), "missing", "config.yaml"))

	require.NoError(t, err)
	assert.Empty(t, backups)
}
