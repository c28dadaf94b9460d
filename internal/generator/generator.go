package generator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/mvp-joe/rustport/internal/extract"
	"github.com/mvp-joe/rustport/internal/ffi"
)

// DuplicatePolicy decides what happens when an exported name appears twice,
// either within one file or across modules.
type DuplicatePolicy string

const (
	// DuplicatesWarn keeps the first declaration within a file, drops the rest
	// and logs a warning. Cross-module duplicates are only warned about.
	DuplicatesWarn DuplicatePolicy = "warn"
	// DuplicatesError fails the run.
	DuplicatesError DuplicatePolicy = "error"
)

// ErrDuplicateFunction is returned under DuplicatesError.
var ErrDuplicateFunction = errors.New("duplicate exported function")

// Config holds everything a Generator needs. Zero-valued collaborators get defaults.
type Config struct {
	Layout     Layout
	Include    []string
	Ignore     []string
	Parser     extract.Parser
	Compiler   Compiler
	Emitter    ffi.EmitterOptions
	Duplicates DuplicatePolicy
}

// Stats summarizes one generation run.
type Stats struct {
	FilesDiscovered int           `json:"files_discovered"`
	ModulesWritten  int           `json:"modules_written"`
	FilesSkipped    int           `json:"files_skipped"`
	Functions       int           `json:"functions"`
	Artifacts       []string      `json:"artifacts"`
	Modules         []string      `json:"modules"`
	Warnings        []string      `json:"warnings"`
	IndexPath       string        `json:"index_path"`
	Duration        time.Duration `json:"duration"`
}

// Generator runs the scan -> compile -> extract -> emit -> index pipeline.
// Runs are sequential; two generators over one project race at the filesystem
// level and the last writer wins.
type Generator struct {
	config    Config
	discovery *Discovery
	parser    extract.Parser
	compiler  Compiler
	emitter   *ffi.Emitter
	progress  ProgressReporter
}

// New creates a generator. A nil progress reporter disables progress output.
func New(config Config, progress ProgressReporter) (*Generator, error) {
	if len(config.Include) == 0 {
		config.Include = []string{"**/*.rs"}
	}
	if config.Duplicates == "" {
		config.Duplicates = DuplicatesWarn
	}
	if config.Parser == nil {
		config.Parser = extract.NewRegexParser()
	}
	if config.Compiler == nil {
		config.Compiler = NewRustcCompiler(config.Layout.BinPath())
	}
	if progress == nil {
		progress = &NoOpProgressReporter{}
	}

	discovery, err := NewDiscovery(config.Layout.SourcePath(), config.Include, config.Ignore)
	if err != nil {
		return nil, fmt.Errorf("invalid source patterns: %w", err)
	}

	emitterOpts := config.Emitter
	emitterOpts.ModulesDir = config.Layout.ModulesDir
	emitterOpts.BinDir = config.Layout.BinDir

	return &Generator{
		config:    config,
		discovery: discovery,
		parser:    config.Parser,
		compiler:  config.Compiler,
		emitter:   ffi.NewEmitter(emitterOpts),
		progress:  progress,
	}, nil
}

// Layout returns the project layout this generator writes into.
func (g *Generator) Layout() Layout {
	return g.config.Layout
}

// Run performs one full generation. The index file is rewritten from scratch
// every time; module files are overwritten in place.
func (g *Generator) Run(ctx context.Context) (*Stats, error) {
	start := time.Now()
	layout := g.config.Layout

	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if err := layout.CheckOutputs(); err != nil {
		return nil, err
	}

	sources, err := g.discovery.Discover()
	if err != nil {
		return nil, fmt.Errorf("failed to discover source files: %w", err)
	}
	g.progress.OnDiscoveryComplete(len(sources))

	stats := &Stats{
		FilesDiscovered: len(sources),
		Artifacts:       []string{},
		Modules:         []string{},
		Warnings:        []string{},
		IndexPath:       layout.IndexPath(),
	}

	g.progress.OnCompileStart(len(sources))
	compileStart := time.Now()
	artifacts, err := g.compiler.Compile(ctx, sources)
	if err != nil {
		return nil, fmt.Errorf("compilation failed (run clean before retrying): %w", err)
	}
	stats.Artifacts = append(stats.Artifacts, artifacts...)
	g.progress.OnCompileComplete(len(artifacts), time.Since(compileStart))

	if err := os.MkdirAll(layout.ModulesPath(), 0755); err != nil {
		return nil, fmt.Errorf("failed to create modules directory: %w", err)
	}

	index := ffi.NewIndex()
	g.progress.OnFileProcessingStart(len(sources))
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, err := g.processSource(ctx, src, index, stats)
		if err != nil {
			return nil, err
		}
		g.progress.OnFileProcessed(src.RelPath, n)
	}

	if err := writeFileReplacing(layout.IndexPath(), index.Render()); err != nil {
		return nil, fmt.Errorf("failed to write index: %w", err)
	}

	stats.Duration = time.Since(start)
	g.progress.OnComplete(stats)
	return stats, nil
}

// processSource extracts, emits and writes one binding module, recording it in
// index. It returns the number of functions bound.
func (g *Generator) processSource(ctx context.Context, src Source, index *ffi.Index, stats *Stats) (int, error) {
	layout := g.config.Layout
	display := layout.DisplayPath(src)

	sigs, err := extract.ParseFile(ctx, g.parser, src.Path)
	if err != nil {
		return 0, err
	}

	if len(sigs) == 0 {
		g.warn(stats, "No exported functions found in %s", display)
		stats.FilesSkipped++
		return 0, nil
	}

	sigs, dropped := ffi.Dedupe(sigs)
	for _, name := range dropped {
		if g.config.Duplicates == DuplicatesError {
			return 0, fmt.Errorf("%w: %s declared more than once in %s", ErrDuplicateFunction, name, display)
		}
		g.warn(stats, "Duplicate function %s in %s; keeping the first declaration", name, display)
	}

	for _, sig := range sigs {
		for _, token := range g.config.Emitter.Mapper.Fallbacks(sig) {
			g.warn(stats, "Unrecognized type %q in %s (%s); using %s", token, sig.Name, display, ffi.Fallback)
		}
	}

	module := ffi.Module{
		SourcePath: display,
		RelPath:    src.RelPath,
		Signatures: sigs,
	}

	content, err := g.emitter.Emit(module)
	if err != nil {
		return 0, fmt.Errorf("failed to generate binding for %s: %w", display, err)
	}

	outPath := layout.ModuleFilePath(src)
	if err := writeFileReplacing(outPath, content); err != nil {
		return 0, err
	}

	importPath := layout.ImportPath(src)
	for _, c := range index.Add(importPath, module.Names()) {
		if g.config.Duplicates == DuplicatesError {
			return 0, fmt.Errorf("%w: %s", ErrDuplicateFunction, c)
		}
		g.warn(stats, "%s; the index exports %s from %s", c, c.Name, c.First)
	}

	stats.ModulesWritten++
	stats.Functions += len(sigs)
	stats.Modules = append(stats.Modules, outPath)
	return len(sigs), nil
}

func (g *Generator) warn(stats *Stats, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	stats.Warnings = append(stats.Warnings, msg)
	log.Printf("Warning: %s\n", msg)
}
