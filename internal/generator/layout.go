package generator

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var (
	// ErrProjectNotFound indicates the project directory does not exist.
	ErrProjectNotFound = errors.New("project directory not found")

	// ErrSourceDirNotFound indicates the project has no Rust source directory.
	ErrSourceDirNotFound = errors.New("source directory not found")

	// ErrUnsafeOutput indicates an output path that leaves the project or
	// would overwrite or delete the Rust sources.
	ErrUnsafeOutput = errors.New("unsafe output path")
)

// Default directory names inside a project.
const (
	DefaultSourceDir  = "rs"
	DefaultModulesDir = "mod"
	DefaultBinDir     = "bin"
	DefaultIndexFile  = "index.ts"
)

// Layout locates inputs and outputs of one project. All fields except
// ProjectDir are slash-separated paths relative to ProjectDir.
type Layout struct {
	ProjectDir string
	SourceDir  string
	ModulesDir string
	BinDir     string
	IndexFile  string
}

// DefaultLayout returns the conventional layout rooted at projectDir.
func DefaultLayout(projectDir string) Layout {
	return Layout{
		ProjectDir: projectDir,
		SourceDir:  DefaultSourceDir,
		ModulesDir: DefaultModulesDir,
		BinDir:     DefaultBinDir,
		IndexFile:  DefaultIndexFile,
	}
}

func (l Layout) join(rel string) string {
	return filepath.Join(l.ProjectDir, filepath.FromSlash(rel))
}

// SourcePath is the absolute Rust source directory.
func (l Layout) SourcePath() string { return l.join(l.SourceDir) }

// ModulesPath is the absolute directory receiving binding modules.
func (l Layout) ModulesPath() string { return l.join(l.ModulesDir) }

// BinPath is the absolute directory receiving shared libraries.
func (l Layout) BinPath() string { return l.join(l.BinDir) }

// IndexPath is the absolute path of the aggregated entry point.
func (l Layout) IndexPath() string { return l.join(l.IndexFile) }

// ModuleFilePath is where the binding for src is written.
func (l Layout) ModuleFilePath(src Source) string {
	return l.join(path.Join(l.ModulesDir, src.RelPath+".ts"))
}

// ImportPath is how the index file imports the binding for src, e.g. "./mod/geo/point".
func (l Layout) ImportPath(src Source) string {
	target := path.Join(l.ModulesDir, src.RelPath)
	rel, err := filepath.Rel(filepath.FromSlash(path.Dir(l.IndexFile)), filepath.FromSlash(target))
	if err != nil {
		rel = target
	}
	rel = filepath.ToSlash(rel)
	if !strings.HasPrefix(rel, "../") {
		rel = "./" + rel
	}
	return rel
}

// DisplayPath is src relative to the project, used in headers and messages.
func (l Layout) DisplayPath(src Source) string {
	return path.Join(l.SourceDir, src.RelPath+src.Ext)
}

// Validate checks that the project and its source directory exist.
func (l Layout) Validate() error {
	if info, err := os.Stat(l.ProjectDir); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, l.ProjectDir)
	}
	if info, err := os.Stat(l.SourcePath()); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s (put your Rust files in the %s/ subdirectory)", ErrSourceDirNotFound, l.SourcePath(), l.SourceDir)
	}
	return nil
}

// CheckOutputs rejects output paths that are absolute, resolve to the project
// itself or outside it, or equal or contain the source directory. Clean removes
// these paths recursively.
func (l Layout) CheckOutputs() error {
	source := path.Clean(filepath.ToSlash(l.SourceDir))

	var errs []error
	for _, out := range []struct{ name, value string }{
		{"modules", l.ModulesDir},
		{"bin", l.BinDir},
		{"index", l.IndexFile},
	} {
		if reason := outputProblem(source, out.value); reason != "" {
			errs = append(errs, fmt.Errorf("%w: %s path %q %s", ErrUnsafeOutput, out.name, out.value, reason))
		}
	}
	return errors.Join(errs...)
}

func outputProblem(source, out string) string {
	slashed := filepath.ToSlash(out)
	if filepath.IsAbs(out) || path.IsAbs(slashed) {
		return "must be relative to the project"
	}
	clean := path.Clean(slashed)
	switch {
	case clean == ".":
		return "must not be the project directory"
	case clean == ".." || strings.HasPrefix(clean, "../"):
		return "must stay inside the project"
	case clean == source:
		return "must not be the source directory"
	case strings.HasPrefix(source+"/", clean+"/"):
		return "must not contain the source directory"
	}
	return ""
}
