package cli

import (
	"fmt"
	"log"

	"github.com/mvp-joe/rustport/internal/config"
	"github.com/mvp-joe/rustport/internal/generator"
	"github.com/mvp-joe/rustport/internal/watcher"
	"github.com/spf13/cobra"
)

var (
	generateQuiet     bool
	generateWatch     bool
	generateNoCompile bool
	generateParser    string
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate <dir>",
	Short: "Compile Rust sources and generate Bun FFI bindings",
	Long: `Generate compiles every Rust file under <dir>/rs into a shared library in
<dir>/bin, writes one binding module per file to <dir>/mod and re-exports all
of them from <dir>/index.ts.

Files without exported functions are skipped with a warning. Output is
deterministic: running twice on the same sources yields identical files.

Settings are read from <dir>/.rustport/config.yml and RUSTPORT_* variables.

Examples:
  # Generate bindings for the project in ./lib
  rustport generate lib

  # Regenerate whenever a source file changes
  rustport generate lib --watch

  # Libraries are built elsewhere; only regenerate the TypeScript
  rustport generate lib --no-compile
`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().BoolVarP(&generateQuiet, "quiet", "q", false, "Disable progress bars and non-error output")
	generateCmd.Flags().BoolVarP(&generateWatch, "watch", "w", false, "Watch for source changes and regenerate")
	generateCmd.Flags().BoolVar(&generateNoCompile, "no-compile", false, "Skip compiling shared libraries")
	generateCmd.Flags().StringVar(&generateParser, "parser", "", "Signature extractor: regex or treesitter (overrides config)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	dir, err := projectDir(args, ".")
	if err != nil {
		return err
	}

	cfg, err := loadProjectConfig(dir)
	if err != nil {
		return err
	}
	if generateParser != "" {
		cfg.Parser.Backend = generateParser
	}
	if generateNoCompile {
		cfg.Compiler.Enabled = false
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	genCfg, err := cfg.ToGeneratorConfig(dir)
	if err != nil {
		return err
	}
	defer closeParser(genCfg.Parser)

	g, err := generator.New(genCfg, NewCLIProgressReporter(cmd.OutOrStdout(), generateQuiet))
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}

	if !generateWatch {
		_, err := g.Run(ctx)
		return err
	}

	if !generateQuiet {
		log.Printf("Watching %s for changes (Ctrl+C to stop)...\n", genCfg.Layout.SourcePath())
	}
	return g.Watch(ctx, watcher.Options{}, func(stats *generator.Stats, err error) {
		if err != nil && ctx.Err() == nil {
			log.Printf("Error: %v\n", err)
		}
	})
}
