package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mvp-joe/rustport/internal/config"
	"github.com/mvp-joe/rustport/internal/extract"
	"github.com/spf13/cobra"
)

// projectDir resolves the directory argument of a command, falling back to def.
func projectDir(args []string, def string) (string, error) {
	dir := def
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	return abs, nil
}

// loadProjectConfig loads <dir>/.rustport/config.yml with env overrides.
func loadProjectConfig(dir string) (*config.Config, error) {
	cfg, err := config.LoadConfigFromDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// signalContext is cancelled on Ctrl+C or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// commandContext returns the command's context, or Background when run outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// closeParser releases cache resources held by p, if any.
func closeParser(p extract.Parser) {
	if cp, ok := p.(*extract.CachingParser); ok {
		cp.Close()
	}
}
