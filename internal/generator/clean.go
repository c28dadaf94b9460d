package generator

import (
	"fmt"
	"os"
)

// Clean removes the modules dir, the binaries dir and the index file.
// Missing paths are skipped, so cleaning twice is a no-op. It returns the
// paths that existed and were removed. Layouts failing CheckOutputs are
// refused before anything is deleted.
func Clean(l Layout) ([]string, error) {
	if err := l.CheckOutputs(); err != nil {
		return nil, err
	}

	var removed []string
	for _, p := range []string{l.ModulesPath(), l.BinPath(), l.IndexPath()} {
		if _, err := os.Lstat(p); os.IsNotExist(err) {
			continue
		}
		if err := os.RemoveAll(p); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", p, err)
		}
		removed = append(removed, p)
	}
	return removed, nil
}
