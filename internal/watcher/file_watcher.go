package watcher

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// fsWatcher implements SourceWatcher on top of fsnotify.
type fsWatcher struct {
	watcher    *fsnotify.Watcher
	extensions map[string]bool
	debounce   time.Duration
	onChange   func(paths []string)
	cancel     context.CancelFunc

	mu      sync.Mutex
	paused  bool
	pending map[string]bool
	timer   *time.Timer

	stopOnce sync.Once
	doneCh   chan struct{}
}

// New creates a watcher over opts.Dirs. Every directory must exist.
func New(opts Options) (SourceWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw := &fsWatcher{
		watcher:    w,
		extensions: make(map[string]bool, len(opts.Extensions)),
		debounce:   debounce,
		pending:    make(map[string]bool),
		doneCh:     make(chan struct{}),
	}
	for _, ext := range opts.Extensions {
		fw.extensions[ext] = true
	}

	for _, dir := range opts.Dirs {
		if err := fw.addTree(dir); err != nil {
			w.Close()
			return nil, err
		}
	}
	return fw, nil
}

// Start begins watching for source changes.
func (fw *fsWatcher) Start(ctx context.Context, onChange func(paths []string)) error {
	if onChange == nil {
		return nil
	}
	fw.onChange = onChange

	loopCtx, cancel := context.WithCancel(ctx)
	fw.cancel = cancel
	go fw.loop(loopCtx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (fw *fsWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		if fw.cancel != nil {
			fw.cancel()
			<-fw.doneCh
		} else {
			close(fw.doneCh)
		}
		err = fw.watcher.Close()
	})
	return err
}

// Pause holds batches back but keeps collecting changes.
func (fw *fsWatcher) Pause() {
	fw.mu.Lock()
	fw.paused = true
	fw.mu.Unlock()
}

// Resume releases batches. Changes collected while paused fire immediately.
func (fw *fsWatcher) Resume() {
	fw.mu.Lock()
	wasPaused := fw.paused
	fw.paused = false
	fw.mu.Unlock()

	if wasPaused {
		fw.flush()
	}
}

func (fw *fsWatcher) loop(ctx context.Context) {
	defer close(fw.doneCh)

	fire := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			fw.mu.Lock()
			if fw.timer != nil {
				fw.timer.Stop()
				fw.timer = nil
			}
			fw.mu.Unlock()
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := fw.addTree(event.Name); err != nil {
						log.Printf("Warning: failed to watch new directory %s: %v", event.Name, err)
					}
					continue
				}
			}
			if !fw.relevant(event) {
				continue
			}
			fw.record(event.Name, fire)

		case <-fire:
			fw.mu.Lock()
			paused := fw.paused
			fw.mu.Unlock()
			if !paused {
				fw.flush()
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Warning: file watcher error: %v", err)
		}
	}
}

// record adds path to the pending batch and restarts the debounce window.
func (fw *fsWatcher) record(path string, fire chan<- struct{}) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	fw.pending[path] = true
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(fw.debounce, func() {
		select {
		case fire <- struct{}{}:
		default:
		}
	})
}

// flush hands the pending batch to onChange, if there is one.
func (fw *fsWatcher) flush() {
	fw.mu.Lock()
	if len(fw.pending) == 0 {
		fw.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(fw.pending))
	for p := range fw.pending {
		paths = append(paths, p)
	}
	fw.pending = make(map[string]bool)
	fw.mu.Unlock()

	sort.Strings(paths)
	if fw.onChange != nil {
		fw.onChange(paths)
	}
}

func (fw *fsWatcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	return fw.extensions[filepath.Ext(event.Name)]
}

// addTree watches root and every directory below it.
func (fw *fsWatcher) addTree(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			log.Printf("Warning: error accessing %s: %v", path, err)
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if err := fw.watcher.Add(path); err != nil {
			log.Printf("Warning: failed to watch directory %s: %v", path, err)
		}
		return nil
	})
}
