package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DirName is the per-project directory holding config.yml.
const DirName = ".rustport"

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	projectDir string
}

// NewLoader creates a new configuration loader for the given project directory.
func NewLoader(projectDir string) Loader {
	return &loader{
		projectDir: projectDir,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (RUSTPORT_*)
// 2. Config file (.rustport/config.yml or .rustport/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(l.projectDir, DirName))

	// RUSTPORT_PARSER_BACKEND -> parser.backend
	v.SetEnvPrefix("RUSTPORT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Unmarshal only sees env values for keys viper already knows about.
	for _, key := range []string{
		"paths.source",
		"paths.modules",
		"paths.bin",
		"paths.index",
		"paths.include",
		"paths.ignore",
		"parser.backend",
		"parser.cache_size",
		"compiler.enabled",
		"compiler.command",
		"compiler.crate_type",
		"compiler.timeout",
		"compiler.args",
		"emit.loader_module",
		"emit.duplicates",
	} {
		v.BindEnv(key)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// No config file is fine: defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("paths.source", defaults.Paths.Source)
	v.SetDefault("paths.modules", defaults.Paths.Modules)
	v.SetDefault("paths.bin", defaults.Paths.Bin)
	v.SetDefault("paths.index", defaults.Paths.Index)
	v.SetDefault("paths.include", defaults.Paths.Include)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)

	v.SetDefault("parser.backend", defaults.Parser.Backend)
	v.SetDefault("parser.cache_size", defaults.Parser.CacheSize)

	v.SetDefault("compiler.enabled", defaults.Compiler.Enabled)
	v.SetDefault("compiler.command", defaults.Compiler.Command)
	v.SetDefault("compiler.crate_type", defaults.Compiler.CrateType)
	v.SetDefault("compiler.timeout", defaults.Compiler.Timeout)
	v.SetDefault("compiler.args", defaults.Compiler.Args)

	v.SetDefault("emit.loader_module", defaults.Emit.LoaderModule)
	v.SetDefault("emit.duplicates", defaults.Emit.Duplicates)

	v.SetDefault("types.aliases", defaults.Types.Aliases)
}

// LoadConfigFromDir loads configuration for the project at projectDir.
func LoadConfigFromDir(projectDir string) (*Config, error) {
	return NewLoader(projectDir).Load()
}

// LoadConfig loads configuration using the current working directory as the project.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}
