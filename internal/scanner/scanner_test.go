package scanner

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/srcfind/internal/gitignore"
)

func TestFindSourceFiles_EndToEnd(t *testing.T) {
	// Given: the classic node_modules + logs layout
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":        "node_modules/\n*.log",
		"node_modules/x.js": "module.exports = 1",
		"app.ts":            "export {}",
		"debug.log":         "trace",
	})

	// When: finding source files
	records := FindSourceFiles(root)

	// Then: only app.ts survives
	require.Len(t, records, 1)
	assert.Equal(t, "app.ts", records[0].RelPath())
	assert.Equal(t, root, records[0].BasePath())
	assert.Equal(t, filepath.Join(root, "app.ts"), records[0].AbsPath())
}

func TestFindSourceFiles_EmptyAndMissing(t *testing.T) {
	assert.Empty(t, FindSourceFiles(t.TempDir()))
	assert.Empty(t, FindSourceFiles(filepath.Join(t.TempDir(), "missing")))
}

func TestFindSourceFiles_AppliesFilter(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/main.go":       "package main",
		"src/UPPER.TSX":     "",
		"docs/guide.md":     "# Guide",
		"assets/logo.svg":   "<svg/>",
		"LICENSE":           "MIT",
		".eslintrc.json":    "{}",
		"temp/scratch.py":   "",
		"pkg/tmp/cache.rs":  "",
		"web/styles.scss":   "",
		"scripts/deploy.sh": "",
	})
	require.NoError(t, os.Truncate(filepath.Join(root, "docs", "guide.md"), MaxSourceFileSize+1))

	records := FindSourceFiles(root)

	assert.Equal(t, []string{"scripts/deploy.sh", "src/UPPER.TSX", "src/main.go", "web/styles.scss"}, recordPaths(records))
}

func TestFindSourceFiles_SubdirectoryGitignoreNotConsulted(t *testing.T) {
	// Given: a .gitignore that lives below the root
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"sub/.gitignore": "*.ts\n",
		"sub/x.ts":       "export {}",
	})

	// When: finding with the defaults
	records := FindSourceFiles(root)

	// Then: only the root .gitignore and its ancestors apply
	assert.Equal(t, []string{"sub/x.ts"}, recordPaths(records))

	// And: opting in to nested files hides it
	opts := DefaultOptions()
	opts.Nested = true
	assert.Empty(t, New(opts).Find(context.Background(), root))
}

func TestFindSourceFiles_FileRoot(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"main.go": "package main"})
	file := filepath.Join(root, "main.go")

	records := FindSourceFiles(file)

	require.Len(t, records, 1)
	assert.Equal(t, ".", records[0].RelPath())
	assert.Equal(t, file, records[0].AbsPath())
}

func TestFindSourceFiles_RelativeBase(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a/b.go": ""})
	t.Chdir(root)

	records := FindSourceFiles("a")

	require.Len(t, records, 1)
	assert.Equal(t, "b.go", records[0].RelPath())
	assert.True(t, filepath.IsAbs(records[0].BasePath()))
}

func TestScanner_Find_Options(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.go":       "package a",
		".hidden.go": "package a",
		"tmp/b.go":   "package b",
		"c.go":       "",
	})
	require.NoError(t, os.WriteFile(filepath.Join(root, "c.go"), []byte{0, 1, 2, 3}, 0o644))

	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{
			name: "defaults",
			opts: DefaultOptions(),
			want: []string{"a.go", "c.go"},
		},
		{
			name: "git only policy",
			opts: Options{Policy: gitignore.GitOnlyPolicy()},
			want: []string{".hidden.go", "a.go", "c.go", "tmp/b.go"},
		},
		{
			name: "skip binary",
			opts: Options{Policy: gitignore.DefaultPolicy(), Filter: FilterOptions{SkipBinary: true}},
			want: []string{"a.go"},
		},
		{
			name: "parallel",
			opts: Options{Policy: gitignore.DefaultPolicy(), Workers: 4},
			want: []string{"a.go", "c.go"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := New(tt.opts).Find(context.Background(), root)
			assert.Equal(t, tt.want, recordPaths(records))
		})
	}
}

func TestPathRecord(t *testing.T) {
	base := filepath.Join(string(filepath.Separator), "work", "proj")
	r := NewPathRecord(base, filepath.Join("src", "app.ts"))

	assert.Equal(t, base, r.BasePath())
	assert.Equal(t, filepath.Join("src", "app.ts"), r.RelPath())
	assert.Equal(t, filepath.Join(base, "src", "app.ts"), r.AbsPath())
	assert.Equal(t, "typescript", r.Language())

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "src/app.ts", decoded["path"])
	assert.Equal(t, filepath.Join(base, "src", "app.ts"), decoded["abs_path"])
	assert.Equal(t, "typescript", decoded["language"])
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		wantLang string
	}{
		{name: "go file", path: "main.go", wantLang: "go"},
		{name: "go in directory", path: "pkg/lib/utils.go", wantLang: "go"},
		{name: "javascript", path: "app.js", wantLang: "javascript"},
		{name: "commonjs", path: "config.cjs", wantLang: "javascript"},
		{name: "typescript", path: "app.ts", wantLang: "typescript"},
		{name: "tsx upper case", path: "Component.TSX", wantLang: "typescript"},
		{name: "python", path: "script.py", wantLang: "python"},
		{name: "yml", path: "ci.yml", wantLang: "yaml"},
		{name: "graphql short", path: "schema.gql", wantLang: "graphql"},
		{name: "zsh", path: "init.zsh", wantLang: "shell"},
		{name: "markdown long", path: "README.markdown", wantLang: "markdown"},
		{name: "unknown extension", path: "file.xyz", wantLang: ""},
		{name: "no extension", path: "LICENSE", wantLang: ""},
		{name: "dot in directory only", path: "v1.2/LICENSE", wantLang: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantLang, DetectLanguage(tt.path))
		})
	}
}

func TestExtension(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "simple", path: "app.ts", want: "ts"},
		{name: "lowercased", path: "APP.TS", want: "ts"},
		{name: "last dot wins", path: "bundle.min.js", want: "js"},
		{name: "trailing dot", path: "notes.", want: ""},
		{name: "no dot", path: "Makefile", want: ""},
		{name: "dot in directory only", path: filepath.Join("v1.2", "LICENSE"), want: ""},
		{name: "hidden file", path: ".ts", want: "ts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extension(tt.path))
		})
	}
}

func TestExtension_BackslashOnlySeparatesOnWindows(t *testing.T) {
	got := Extension(`x.ts\y`)

	if runtime.GOOS == "windows" {
		assert.Empty(t, got)
		return
	}
	// A backslash is an ordinary file name byte elsewhere.
	assert.Equal(t, `ts\y`, got)
	assert.Equal(t, "ts", Extension(`a\b.ts`))
}

func TestSourceExtensions_EveryEntryHasALanguage(t *testing.T) {
	for _, ext := range SourceExtensions {
		assert.NotEmpty(t, languageMap[ext], ext)
		assert.True(t, IsSourceExtension(ext))
	}
	assert.Len(t, SourceExtensions, 33)
	assert.False(t, IsSourceExtension("png"))
	assert.True(t, IsSourceExtension("MD"))
}

// =============================================================================
// Benchmarks
// =============================================================================

// benchTree writes dirs directories of files source files each, with a
// gitignored node_modules beside every tenth directory.
func benchTree(b *testing.B, dirs, files int) string {
	b.Helper()
	root := b.TempDir()
	tree := map[string]string{".gitignore": "node_modules/\n*.log\n"}
	for d := 0; d < dirs; d++ {
		for f := 0; f < files; f++ {
			tree[fmt.Sprintf("pkg%d/sub/file%d.go", d, f)] = "package p\n"
			tree[fmt.Sprintf("pkg%d/sub/file%d.log", d, f)] = "log\n"
		}
		if d%10 == 0 {
			tree[fmt.Sprintf("pkg%d/node_modules/dep/index.js", d)] = "x\n"
		}
	}
	writeTree(b, root, tree)
	return root
}

func BenchmarkScanner_Find(b *testing.B) {
	root := benchTree(b, 100, 20)

	for _, workers := range []int{1, 8} {
		b.Run(fmt.Sprintf("workers=%d", workers), func(b *testing.B) {
			opts := DefaultOptions()
			opts.Workers = workers
			s := New(opts)
			b.ReportAllocs()
			for b.Loop() {
				if n := len(s.Find(context.Background(), root)); n != 2000 {
					b.Fatalf("found %d files, want 2000", n)
				}
			}
		})
	}
}
