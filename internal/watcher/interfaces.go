package watcher

import (
	"context"
	"time"
)

// DefaultDebounce is the quiet period after the last change before a batch fires.
const DefaultDebounce = 300 * time.Millisecond

// SourceWatcher reports batches of changed Rust source files.
type SourceWatcher interface {
	// Start begins watching. onChange receives the sorted, de-duplicated set of
	// paths that changed during one debounce window.
	Start(ctx context.Context, onChange func(paths []string)) error

	// Stop releases the underlying watcher. Safe to call more than once.
	Stop() error

	// Pause holds batches back while still collecting changes, so a running
	// generation does not retrigger itself.
	Pause()

	// Resume releases batches. Changes collected while paused fire immediately.
	Resume()
}

// Options configures a SourceWatcher.
type Options struct {
	// Dirs are watched recursively.
	Dirs []string
	// Extensions filters events by file extension, including the dot.
	Extensions []string
	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration
}
