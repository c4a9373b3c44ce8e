package scanner

import (
	"errors"
	"io"
	"os"
	"strings"
)

const (
	// binarySniffSize is how many leading bytes LooksBinary inspects.
	binarySniffSize = 4096
	// binaryControlRatio is the share of control bytes at which content is binary.
	binaryControlRatio = 0.30
)

// FilterOptions configures a Filter. Zero values select the defaults.
type FilterOptions struct {
	// MaxFileSize caps file size in bytes (0 = MaxSourceFileSize).
	MaxFileSize int64
	// Extensions replaces the allowlist (empty = SourceExtensions).
	Extensions []string
	// SkipBinary additionally rejects files that look binary.
	SkipBinary bool
}

// Filter decides which enumerated files are source files.
type Filter struct {
	maxFileSize int64
	extensions  map[string]bool
	skipBinary  bool
}

// NewFilter creates a Filter from opts.
func NewFilter(opts FilterOptions) *Filter {
	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = MaxSourceFileSize
	}

	exts := opts.Extensions
	if len(exts) == 0 {
		exts = SourceExtensions
	}
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		set[strings.ToLower(strings.TrimPrefix(e, "."))] = true
	}

	return &Filter{
		maxFileSize: maxSize,
		extensions:  set,
		skipBinary:  opts.SkipBinary,
	}
}

var defaultFilter = NewFilter(FilterOptions{})

// IsSourceFile reports whether path is a regular file within the size cap
// whose extension is allowlisted.
func (f *Filter) IsSourceFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	if info.Size() > f.maxFileSize {
		return false
	}

	ext := Extension(path)
	if ext == "" || !f.extensions[ext] {
		return false
	}

	if f.skipBinary && IsBinaryFile(path) {
		return false
	}
	return true
}

// IsSourceFile applies the default filter: SourceExtensions and
// MaxSourceFileSize, without binary sniffing.
func IsSourceFile(path string) bool {
	return defaultFilter.IsSourceFile(path)
}

// IsBinaryFile reports whether the first bytes of the file look binary.
// Files that cannot be read are reported as not binary.
func IsBinaryFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, binarySniffSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false
	}
	return LooksBinary(buf[:n])
}

// LooksBinary inspects at most the first 4096 bytes of data. Any NUL byte
// means binary; otherwise content is binary when at least 30% of the bytes
// are C0 control characters (below 0x20) other than tab, LF and CR. DEL and
// bytes of 0x80 and above are not counted.
func LooksBinary(data []byte) bool {
	if len(data) > binarySniffSize {
		data = data[:binarySniffSize]
	}
	if len(data) == 0 {
		return false
	}

	control := 0
	for _, b := range data {
		switch {
		case b == 0:
			return true
		case b == '\t' || b == '\n' || b == '\r':
		case b < 0x20:
			control++
		}
	}
	return float64(control)/float64(len(data)) >= binaryControlRatio
}
