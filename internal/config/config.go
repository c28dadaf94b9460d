package config

import (
	"time"

	"github.com/mvp-joe/rustport/internal/extract"
	"github.com/mvp-joe/rustport/internal/ffi"
	"github.com/mvp-joe/rustport/internal/generator"
)

// Config represents the complete rustport configuration.
// It can be loaded from .rustport/config.yml with environment variable overrides.
type Config struct {
	Paths    PathsConfig    `yaml:"paths" mapstructure:"paths"`
	Parser   ParserConfig   `yaml:"parser" mapstructure:"parser"`
	Compiler CompilerConfig `yaml:"compiler" mapstructure:"compiler"`
	Emit     EmitConfig     `yaml:"emit" mapstructure:"emit"`
	Types    TypesConfig    `yaml:"types" mapstructure:"types"`
}

// PathsConfig locates inputs and outputs relative to the project directory.
type PathsConfig struct {
	Source  string   `yaml:"source" mapstructure:"source"`   // Rust sources, e.g. "rs"
	Modules string   `yaml:"modules" mapstructure:"modules"` // generated binding modules
	Bin     string   `yaml:"bin" mapstructure:"bin"`         // compiled shared libraries
	Index   string   `yaml:"index" mapstructure:"index"`     // aggregated entry point
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns below Source
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to skip
}

// ParserConfig selects the signature extractor.
type ParserConfig struct {
	Backend   string `yaml:"backend" mapstructure:"backend"`       // "regex" or "treesitter"
	CacheSize int    `yaml:"cache_size" mapstructure:"cache_size"` // parsed files kept in memory, 0 disables
}

// CompilerConfig controls how shared libraries are built.
type CompilerConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Command   string        `yaml:"command" mapstructure:"command"`
	CrateType string        `yaml:"crate_type" mapstructure:"crate_type"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"` // per source file
	Args      []string      `yaml:"args" mapstructure:"args"`       // extra flags, e.g. ["-C", "opt-level=3"]
}

// EmitConfig controls the generated TypeScript.
type EmitConfig struct {
	LoaderModule string `yaml:"loader_module" mapstructure:"loader_module"`
	Duplicates   string `yaml:"duplicates" mapstructure:"duplicates"` // "warn" or "error"
}

// TypesConfig extends the fixed type table.
type TypesConfig struct {
	Aliases []AliasConfig `yaml:"aliases" mapstructure:"aliases"`
}

// AliasConfig maps a Rust type token to an FFI type name.
// Kept as a list so tokens like "*const c_char" survive key normalization.
type AliasConfig struct {
	Token string `yaml:"token" mapstructure:"token"`
	FFI   string `yaml:"ffi" mapstructure:"ffi"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Source:  generator.DefaultSourceDir,
			Modules: generator.DefaultModulesDir,
			Bin:     generator.DefaultBinDir,
			Index:   generator.DefaultIndexFile,
			Include: []string{"**/*.rs"},
			Ignore: []string{
				"target/**",
				".git/**",
			},
		},
		Parser: ParserConfig{
			Backend:   extract.BackendRegex,
			CacheSize: extract.DefaultCacheCapacity,
		},
		Compiler: CompilerConfig{
			Enabled:   true,
			Command:   "rustc",
			CrateType: "cdylib",
			Timeout:   generator.DefaultCompileTimeout,
			Args:      []string{},
		},
		Emit: EmitConfig{
			LoaderModule: ffi.DefaultLoaderModule,
			Duplicates:   string(generator.DuplicatesWarn),
		},
		Types: TypesConfig{
			Aliases: []AliasConfig{},
		},
	}
}

// AliasMap flattens the alias list. Later entries win.
func (c *Config) AliasMap() map[string]string {
	m := make(map[string]string, len(c.Types.Aliases))
	for _, a := range c.Types.Aliases {
		m[a.Token] = a.FFI
	}
	return m
}

// Layout returns the generator layout for projectDir.
func (c *Config) Layout(projectDir string) generator.Layout {
	return generator.Layout{
		ProjectDir: projectDir,
		SourceDir:  c.Paths.Source,
		ModulesDir: c.Paths.Modules,
		BinDir:     c.Paths.Bin,
		IndexFile:  c.Paths.Index,
	}
}

// NewParser builds the configured extractor, wrapped in a cache when CacheSize > 0.
func (c *Config) NewParser() (extract.Parser, error) {
	p, err := extract.New(c.Parser.Backend)
	if err != nil {
		return nil, err
	}
	if c.Parser.CacheSize <= 0 {
		return p, nil
	}
	cached, err := extract.NewCachingParser(p, c.Parser.CacheSize)
	if err != nil {
		return nil, err
	}
	return cached, nil
}

// ToGeneratorConfig converts a Config to a generator.Config for projectDir.
func (c *Config) ToGeneratorConfig(projectDir string) (generator.Config, error) {
	layout := c.Layout(projectDir)

	parser, err := c.NewParser()
	if err != nil {
		return generator.Config{}, err
	}

	mapper, err := ffi.NewMapper(c.AliasMap())
	if err != nil {
		return generator.Config{}, err
	}

	var compiler generator.Compiler = generator.NoopCompiler{}
	if c.Compiler.Enabled {
		rc := generator.NewRustcCompiler(layout.BinPath())
		rc.Command = c.Compiler.Command
		rc.CrateType = c.Compiler.CrateType
		rc.Timeout = c.Compiler.Timeout
		rc.Args = c.Compiler.Args
		compiler = rc
	}

	return generator.Config{
		Layout:   layout,
		Include:  c.Paths.Include,
		Ignore:   c.Paths.Ignore,
		Parser:   parser,
		Compiler: compiler,
		Emitter: ffi.EmitterOptions{
			LoaderModule: c.Emit.LoaderModule,
			Mapper:       mapper,
		},
		Duplicates: generator.DuplicatePolicy(c.Emit.Duplicates),
	}, nil
}
