package cli

import (
	"fmt"

	"github.com/mvp-joe/rustport/internal/generator"
	"github.com/spf13/cobra"
)

// DefaultCleanDir is cleaned when no directory is given.
const DefaultCleanDir = "lib"

var cleanQuiet bool

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean [dir]",
	Short: "Remove generated bindings, libraries and index",
	Long: `Clean deletes everything generate produced in [dir]: the binding modules,
the compiled shared libraries and the index file. Rust sources and the
configuration are left untouched. Cleaning an already clean directory is a no-op.

Run clean after a failed compilation so stale outputs are not mistaken for
current ones.

Examples:
  # Clean ./lib
  rustport clean

  # Clean another project
  rustport clean path/to/project
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().BoolVarP(&cleanQuiet, "quiet", "q", false, "Suppress output messages")
}

func runClean(cmd *cobra.Command, args []string) error {
	dir, err := projectDir(args, DefaultCleanDir)
	if err != nil {
		return err
	}

	cfg, err := loadProjectConfig(dir)
	if err != nil {
		return err
	}

	removed, err := generator.Clean(cfg.Layout(dir))
	if err != nil {
		return err
	}

	if cleanQuiet {
		return nil
	}
	out := cmd.OutOrStdout()
	if len(removed) == 0 {
		fmt.Fprintln(out, "Nothing to clean")
		return nil
	}
	for _, p := range removed {
		fmt.Fprintf(out, "✓ Removed %s\n", p)
	}
	return nil
}
