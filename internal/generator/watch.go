package generator

import (
	"context"
	"fmt"
	"log"

	"github.com/mvp-joe/rustport/internal/watcher"
)

// Watch regenerates whenever a source file changes, until ctx is cancelled.
// onRun is called after every run, including the initial one. A failed run
// does not stop watching.
func (g *Generator) Watch(ctx context.Context, opts watcher.Options, onRun func(*Stats, error)) error {
	if onRun == nil {
		onRun = func(*Stats, error) {}
	}

	onRun(g.Run(ctx))

	if len(opts.Dirs) == 0 {
		opts.Dirs = []string{g.config.Layout.SourcePath()}
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = []string{".rs"}
	}

	w, err := watcher.New(opts)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Stop()

	err = w.Start(ctx, func(paths []string) {
		if ctx.Err() != nil {
			return
		}
		log.Printf("Detected changes in %d file(s), regenerating...\n", len(paths))

		w.Pause()
		defer w.Resume()
		onRun(g.Run(ctx))
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	<-ctx.Done()
	return nil
}
