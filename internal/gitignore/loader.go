package gitignore

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"
)

// FileName is the name of the files Load collects.
const FileName = ".gitignore"

// File is one located .gitignore: the directory holding it and its raw text.
type File struct {
	Dir     string
	Content string
}

// Path returns the path of the .gitignore file itself.
func (f File) Path() string {
	return filepath.Join(f.Dir, FileName)
}

// Patterns compiles the file's lines in file order.
func (f File) Patterns() []*Pattern {
	return compileContent(f.Content)
}

// Load collects the .gitignore files of startDir and each of its ancestors,
// stopping below the filesystem root. The result is ordered furthest ancestor
// first, so later entries take precedence when applied in order.
// Missing or unreadable files are skipped.
func Load(startDir string) []File {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		slog.Debug("gitignore: cannot resolve start directory",
			slog.String("dir", startDir),
			slog.String("error", err.Error()))
		return nil
	}

	root := filepath.VolumeName(dir) + string(filepath.Separator)

	var files []File
	for dir != root && dir != filepath.Dir(dir) {
		if f, ok := ReadDir(dir); ok {
			files = append(files, f)
		}
		dir = filepath.Dir(dir)
	}

	slices.Reverse(files)
	return files
}

// ReadDir reads the .gitignore directly inside dir. ok is false when the file
// is missing or unreadable.
func ReadDir(dir string) (f File, ok bool) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Debug("gitignore: skipping unreadable file",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
		return File{}, false
	}
	return File{Dir: dir, Content: string(data)}, true
}
