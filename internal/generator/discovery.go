package generator

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// Source is one discovered Rust file.
type Source struct {
	// Path is the absolute file path.
	Path string
	// RelPath is slash-separated, relative to the source dir, without extension.
	RelPath string
	// Ext is the file extension including the dot.
	Ext string
}

// compiledPattern holds both the pattern string and compiled glob.
// rootGlob is set for "**/" patterns so they also match files directly in the root.
type compiledPattern struct {
	pattern  string
	glob     glob.Glob
	rootGlob glob.Glob
}

// Discovery finds source files below a directory using include and ignore globs.
type Discovery struct {
	rootDir        string
	includePattern []compiledPattern
	ignorePatterns []compiledPattern
}

// NewDiscovery compiles the glob patterns, which are matched against
// slash-separated paths relative to rootDir.
func NewDiscovery(rootDir string, include, ignore []string) (*Discovery, error) {
	d := &Discovery{rootDir: rootDir}

	var err error
	if d.includePattern, err = compilePatterns(include); err != nil {
		return nil, err
	}
	if d.ignorePatterns, err = compilePatterns(ignore); err != nil {
		return nil, err
	}
	return d, nil
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		cp := compiledPattern{pattern: pattern, glob: g}
		if simplified, ok := strings.CutPrefix(pattern, "**/"); ok {
			if cp.rootGlob, err = glob.Compile(simplified, '/'); err != nil {
				return nil, err
			}
		}
		compiled = append(compiled, cp)
	}
	return compiled, nil
}

// Discover walks the tree in lexical order and returns matching files.
func (d *Discovery) Discover() ([]Source, error) {
	sources := []Source{}

	err := filepath.Walk(d.rootDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(d.rootDir, p)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if info.IsDir() {
			if relPath != "." && d.shouldIgnore(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.shouldIgnore(relPath) || !matchesAny(relPath, d.includePattern) {
			return nil
		}

		ext := filepath.Ext(relPath)
		sources = append(sources, Source{
			Path:    p,
			RelPath: strings.TrimSuffix(relPath, ext),
			Ext:     ext,
		})
		return nil
	})

	return sources, err
}

// shouldIgnore checks if a path matches any ignore pattern.
func (d *Discovery) shouldIgnore(relPath string) bool {
	if matchesAny(relPath, d.ignorePatterns) {
		return true
	}
	// "target" should match pattern "target/**"
	return matchesAny(relPath+"/**", d.ignorePatterns)
}

// matchesAny checks a path against patterns. Paths in the root (no slash) are
// also tried against "**/" patterns with the prefix removed, so "**/*.rs"
// matches both "math.rs" and "geo/point.rs".
func matchesAny(relPath string, patterns []compiledPattern) bool {
	inRoot := !strings.Contains(relPath, "/")
	for _, cp := range patterns {
		if cp.glob.Match(relPath) {
			return true
		}
		if inRoot && cp.rootGlob != nil && cp.rootGlob.Match(relPath) {
			return true
		}
	}
	return false
}
