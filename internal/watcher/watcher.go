package watcher

import (
	"fmt"
	"time"

	"github.com/Aman-CERP/srcfind/internal/gitignore"
)

// Operation represents a file system operation type.
type Operation int

const (
	// OpCreate indicates a new file or directory was created.
	OpCreate Operation = iota
	// OpModify indicates an existing file was modified.
	OpModify
	// OpDelete indicates a file or directory was deleted.
	OpDelete
	// OpRename indicates a file or directory was renamed away.
	OpRename
	// OpGitignoreChange indicates a .gitignore file changed. Which files are
	// ignored may have changed anywhere below it.
	OpGitignoreChange
	// OpConfigChange indicates the project .srcfind.yaml changed.
	OpConfigChange
)

// String returns a human-readable representation of the operation.
func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpModify:
		return "MODIFY"
	case OpDelete:
		return "DELETE"
	case OpRename:
		return "RENAME"
	case OpGitignoreChange:
		return "GITIGNORE_CHANGE"
	case OpConfigChange:
		return "CONFIG_CHANGE"
	default:
		return "UNKNOWN"
	}
}

// FileEvent represents a file system event.
type FileEvent struct {
	// Path is relative to the watched root, in OS form.
	Path string

	// Operation is the type of file system operation.
	Operation Operation

	// IsDir indicates if the event is for a directory.
	IsDir bool

	// Timestamp is when the event was detected.
	Timestamp time.Time
}

// Options configures the watcher behavior.
type Options struct {
	// DebounceWindow is the time to wait before emitting coalesced events.
	// Default: 300ms
	DebounceWindow time.Duration

	// EventBufferSize is the number of batches buffered for the reader.
	// Default: 100
	EventBufferSize int

	// Policy selects the built-in exclusion rules.
	Policy gitignore.Policy

	// Nested also applies .gitignore files found in subdirectories.
	Nested bool

	// ConfigFiles are base names reported as OpConfigChange.
	ConfigFiles []string
}

// DefaultOptions returns the default watcher options.
func DefaultOptions() Options {
	return Options{
		DebounceWindow:  300 * time.Millisecond,
		EventBufferSize: 100,
		Policy:          gitignore.DefaultPolicy(),
		ConfigFiles:     []string{".srcfind.yaml", ".srcfind.yml"},
	}
}

// Validate validates the options and returns an error if invalid.
func (o Options) Validate() error {
	if o.DebounceWindow < 0 {
		return fmt.Errorf("debounce window must not be negative, got %s", o.DebounceWindow)
	}
	if o.EventBufferSize < 0 {
		return fmt.Errorf("event buffer size must not be negative, got %d", o.EventBufferSize)
	}
	return nil
}

// WithDefaults returns options with defaults applied for zero values.
func (o Options) WithDefaults() Options {
	defaults := DefaultOptions()
	if o.DebounceWindow == 0 {
		o.DebounceWindow = defaults.DebounceWindow
	}
	if o.EventBufferSize == 0 {
		o.EventBufferSize = defaults.EventBufferSize
	}
	return o
}
