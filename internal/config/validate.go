package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mvp-joe/rustport/internal/extract"
	"github.com/mvp-joe/rustport/internal/ffi"
	"github.com/mvp-joe/rustport/internal/generator"
)

var (
	// ErrInvalidParser indicates an unsupported parser backend
	ErrInvalidParser = errors.New("invalid parser backend")

	// ErrInvalidPolicy indicates an unsupported duplicate policy
	ErrInvalidPolicy = errors.New("invalid duplicate policy")

	// ErrInvalidTimeout indicates a non-positive compile timeout
	ErrInvalidTimeout = errors.New("invalid compile timeout")

	// ErrInvalidAlias indicates a type alias with an empty token or unknown target
	ErrInvalidAlias = errors.New("invalid type alias")

	// ErrEmptyPath indicates a missing required path
	ErrEmptyPath = errors.New("empty path")

	// ErrInvalidPath indicates an output path outside the project or overlapping the sources
	ErrInvalidPath = errors.New("invalid path")

	// ErrEmptyCommand indicates compilation is enabled without a compiler command
	ErrEmptyCommand = errors.New("empty compiler command")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validatePaths(&cfg.Paths); err != nil {
		errs = append(errs, err)
	}
	if err := validateParser(&cfg.Parser); err != nil {
		errs = append(errs, err)
	}
	if err := validateCompiler(&cfg.Compiler); err != nil {
		errs = append(errs, err)
	}
	if err := validateEmit(&cfg.Emit); err != nil {
		errs = append(errs, err)
	}
	if err := validateTypes(&cfg.Types); err != nil {
		errs = append(errs, err)
	}

	return joinErrors(errs)
}

func validatePaths(cfg *PathsConfig) error {
	var errs []error
	for _, p := range []struct{ name, value string }{
		{"source", cfg.Source},
		{"modules", cfg.Modules},
		{"bin", cfg.Bin},
		{"index", cfg.Index},
	} {
		if strings.TrimSpace(p.value) == "" {
			errs = append(errs, fmt.Errorf("%w: paths.%s is required", ErrEmptyPath, p.name))
		}
	}
	if len(cfg.Include) == 0 {
		errs = append(errs, fmt.Errorf("%w: paths.include needs at least one pattern", ErrEmptyPath))
	}
	if len(errs) > 0 {
		return joinErrors(errs)
	}

	layout := generator.Layout{
		SourceDir:  cfg.Source,
		ModulesDir: cfg.Modules,
		BinDir:     cfg.Bin,
		IndexFile:  cfg.Index,
	}
	if err := layout.CheckOutputs(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPath, err)
	}
	return nil
}

func validateParser(cfg *ParserConfig) error {
	switch strings.ToLower(cfg.Backend) {
	case extract.BackendRegex, extract.BackendTreeSitter:
	default:
		return fmt.Errorf("%w: must be '%s' or '%s', got '%s'",
			ErrInvalidParser, extract.BackendRegex, extract.BackendTreeSitter, cfg.Backend)
	}
	if cfg.CacheSize < 0 {
		return fmt.Errorf("%w: cache_size must not be negative, got %d", ErrInvalidParser, cfg.CacheSize)
	}
	return nil
}

func validateCompiler(cfg *CompilerConfig) error {
	if !cfg.Enabled {
		return nil
	}

	var errs []error
	if strings.TrimSpace(cfg.Command) == "" {
		errs = append(errs, fmt.Errorf("%w: compiler.command is required when compilation is enabled", ErrEmptyCommand))
	}
	if cfg.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: must be positive, got %s", ErrInvalidTimeout, cfg.Timeout))
	}
	return joinErrors(errs)
}

func validateEmit(cfg *EmitConfig) error {
	switch generator.DuplicatePolicy(cfg.Duplicates) {
	case generator.DuplicatesWarn, generator.DuplicatesError:
		return nil
	}
	return fmt.Errorf("%w: must be '%s' or '%s', got '%s'",
		ErrInvalidPolicy, generator.DuplicatesWarn, generator.DuplicatesError, cfg.Duplicates)
}

func validateTypes(cfg *TypesConfig) error {
	var errs []error
	for i, a := range cfg.Aliases {
		if strings.TrimSpace(a.Token) == "" {
			errs = append(errs, fmt.Errorf("%w: aliases[%d] has no token", ErrInvalidAlias, i))
			continue
		}
		if !ffi.IsKnown(ffi.Type(strings.TrimSpace(a.FFI))) {
			errs = append(errs, fmt.Errorf("%w: %q maps to unknown FFI type %q (known: %s)",
				ErrInvalidAlias, a.Token, a.FFI, strings.Join(ffi.KnownTypes(), ", ")))
		}
	}
	return joinErrors(errs)
}

// joinErrors keeps every error reachable through errors.Is while printing one per line.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return &validationError{errs: errs, msg: "validation failed:\n  - " + strings.Join(msgs, "\n  - ")}
}

type validationError struct {
	errs []error
	msg  string
}

func (e *validationError) Error() string   { return e.msg }
func (e *validationError) Unwrap() []error { return e.errs }
