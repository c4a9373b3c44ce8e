package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gofrs/flock"
)

// RotatingWriter implements io.Writer with size-based rotation.
// Several srcfind processes may share one log file; rotation is serialized
// across them with a lock file next to the log.
type RotatingWriter struct {
	path     string
	maxSize  int64
	maxFiles int
	lock     *flock.Flock

	mu      sync.Mutex
	file    *os.File
	written int64
}

// NewRotatingWriter creates a new rotating log writer.
// maxSizeMB is the maximum size in megabytes before rotation.
// maxFiles is the maximum number of rotated files to keep.
func NewRotatingWriter(path string, maxSizeMB, maxFiles int) (*RotatingWriter, error) {
	return newRotatingWriter(path, int64(maxSizeMB)*1024*1024, maxFiles)
}

func newRotatingWriter(path string, maxSize int64, maxFiles int) (*RotatingWriter, error) {
	w := &RotatingWriter{
		path:     path,
		maxSize:  maxSize,
		maxFiles: maxFiles,
		lock:     flock.New(path + ".lock"),
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	if err := w.openFile(); err != nil {
		return nil, err
	}

	return w, nil
}

// Write implements io.Writer with automatic rotation.
func (w *RotatingWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.written+int64(len(p)) > w.maxSize {
		if err := w.rotateLocked(); err != nil {
			// Keep writing to the current file
			_, _ = fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
			if w.file == nil {
				_ = w.openFile()
			}
		}
	}

	if w.file == nil {
		return 0, fmt.Errorf("log file %s is closed", w.path)
	}

	n, err = w.file.Write(p)
	w.written += int64(n)
	return n, err
}

// Close closes the underlying file.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// Sync flushes the file to disk.
func (w *RotatingWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file != nil {
		return w.file.Sync()
	}
	return nil
}

// openFile opens or creates the log file.
func (w *RotatingWriter) openFile() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}

	w.file = f
	w.written = info.Size()
	return nil
}

// rotateLocked rotates under the cross-process lock. If another process
// already rotated, the writer only reopens the fresh file.
func (w *RotatingWriter) rotateLocked() error {
	if err := w.lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock log for rotation: %w", err)
	}
	defer func() { _ = w.lock.Unlock() }()

	if w.rotatedElsewhere() {
		if w.file != nil {
			_ = w.file.Close()
			w.file = nil
		}
		return w.openFile()
	}
	return w.rotate()
}

// rotatedElsewhere reports whether the file at path is no longer the one
// this writer holds open.
func (w *RotatingWriter) rotatedElsewhere() bool {
	if w.file == nil {
		return false
	}
	onDisk, err := os.Stat(w.path)
	if err != nil {
		return false
	}
	held, err := w.file.Stat()
	if err != nil {
		return false
	}
	return !os.SameFile(onDisk, held)
}

// rotate performs log rotation.
// srcfind.log -> srcfind.log.1 -> srcfind.log.2 -> ... -> delete oldest
func (w *RotatingWriter) rotate() error {
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			return fmt.Errorf("failed to close log file: %w", err)
		}
		w.file = nil
	}

	base := filepath.Base(w.path)
	matches, err := filepath.Glob(filepath.Join(filepath.Dir(w.path), base+".*"))
	if err != nil {
		return fmt.Errorf("failed to find rotated files: %w", err)
	}

	type rotatedFile struct {
		path string
		num  int
	}
	var files []rotatedFile
	for _, m := range matches {
		num, err := strconv.Atoi(strings.TrimPrefix(filepath.Base(m), base+"."))
		if err != nil {
			continue // the lock file and anything else
		}
		files = append(files, rotatedFile{path: m, num: num})
	}

	// Highest first so renames never overwrite
	sort.Slice(files, func(i, j int) bool {
		return files[i].num > files[j].num
	})

	for _, f := range files {
		if f.num >= w.maxFiles {
			_ = os.Remove(f.path)
			continue
		}
		_ = os.Rename(f.path, fmt.Sprintf("%s.%d", w.path, f.num+1))
	}

	if _, err := os.Stat(w.path); err == nil {
		if err := os.Rename(w.path, w.path+".1"); err != nil {
			return fmt.Errorf("failed to rotate log file: %w", err)
		}
	}

	w.written = 0
	return w.openFile()
}
