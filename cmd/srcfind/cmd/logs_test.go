package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLog = `{"time":"2026-01-02T10:00:00.000Z","level":"DEBUG","msg":"scan complete","source_files":3}
{"time":"2026-01-02T10:00:01.000Z","level":"WARN","msg":"max depth reached, not descending","max_depth":256}
not json
{"time":"2026-01-02T10:00:02.000Z","level":"ERROR","msg":"command failed","error_code":"ERR_201_PATH_NOT_FOUND"}
`

func writeSampleLog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "srcfind.log")
	require.NoError(t, os.WriteFile(path, []byte(sampleLog), 0o644))
	return path
}

func TestLogsCmd(t *testing.T) {
	isolateEnv(t)
	path := writeSampleLog(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "all entries",
			args: nil,
			want: []string{
				"10:00:00.000 DEBUG scan complete source_files=3",
				"10:00:01.000 WARN  max depth reached, not descending max_depth=256",
				"not json",
				"10:00:02.000 ERROR command failed error_code=ERR_201_PATH_NOT_FOUND",
			},
		},
		{
			name: "last entry",
			args: []string{"-n", "1"},
			want: []string{"10:00:02.000 ERROR command failed error_code=ERR_201_PATH_NOT_FOUND"},
		},
		{
			name: "level filter keeps unparsed lines",
			args: []string{"--level", "warn"},
			want: []string{
				"10:00:01.000 WARN  max depth reached, not descending max_depth=256",
				"not json",
				"10:00:02.000 ERROR command failed error_code=ERR_201_PATH_NOT_FOUND",
			},
		},
		{
			name: "regex filter",
			args: []string{"--filter", "depth"},
			want: []string{"10:00:01.000 WARN  max depth reached, not descending max_depth=256"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"logs", "--file", path, "--no-color"}, tt.args...)
			stdout, stderr, code := run(t, args...)

			require.Equal(t, 0, code, stderr)
			assert.Equal(t, tt.want, lines(stdout))
			assert.Contains(t, stderr, "Log file: "+path)
		})
	}
}

func TestLogsCmd_Errors(t *testing.T) {
	isolateEnv(t)
	path := writeSampleLog(t)

	t.Run("missing file", func(t *testing.T) {
		_, stderr, code := run(t, "logs", "--file", filepath.Join(t.TempDir(), "none.log"))
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr, "ERR_206_LOG_NOT_FOUND")
		assert.Contains(t, stderr, "--debug")
	})

	t.Run("no default log yet", func(t *testing.T) {
		_, stderr, code := run(t, "logs")
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr, "ERR_206_LOG_NOT_FOUND")
	})

	t.Run("bad filter", func(t *testing.T) {
		_, stderr, code := run(t, "logs", "--file", path, "--filter", "(")
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr, "ERR_402_INVALID_PATTERN")
	})
}
