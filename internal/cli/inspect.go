package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mvp-joe/rustport/internal/extract"
	"github.com/mvp-joe/rustport/internal/ffi"
	"github.com/spf13/cobra"
)

var (
	inspectJSON   bool
	inspectParser string
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <file.rs>",
	Short: "Show the exported functions of a Rust file and their FFI types",
	Long: `Inspect runs the signature extractor over one file and prints each exported
function with the bun:ffi types its parameters and return value map to.
Nothing is compiled or written.

Type aliases from .rustport/config.yml in the current directory are applied.

Examples:
  rustport inspect lib/rs/math.rs
  rustport inspect lib/rs/math.rs --json
  rustport inspect lib/rs/math.rs --parser treesitter
`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "Print JSON instead of text")
	inspectCmd.Flags().StringVar(&inspectParser, "parser", "", "Signature extractor: regex or treesitter (overrides config)")
}

func runInspect(cmd *cobra.Command, args []string) error {
	cwd, err := projectDir(nil, ".")
	if err != nil {
		return err
	}
	cfg, err := loadProjectConfig(cwd)
	if err != nil {
		return err
	}

	backend := cfg.Parser.Backend
	if inspectParser != "" {
		backend = inspectParser
	}
	parser, err := extract.New(backend)
	if err != nil {
		return err
	}

	mapper, err := ffi.NewMapper(cfg.AliasMap())
	if err != nil {
		return err
	}

	sigs, err := extract.ParseFile(commandContext(cmd), parser, args[0])
	if err != nil {
		return err
	}

	bindings := ffi.DescribeAll(sigs, mapper)
	if inspectJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(bindings)
	}
	printBindings(cmd.OutOrStdout(), args[0], bindings)
	return nil
}

func printBindings(out io.Writer, path string, bindings []ffi.Binding) {
	if len(bindings) == 0 {
		fmt.Fprintf(out, "%s: no exported functions\n", path)
		return
	}

	fmt.Fprintf(out, "%s: %d exported function(s)\n", path, len(bindings))
	for _, b := range bindings {
		args := make([]string, len(b.Params))
		for i, p := range b.Params {
			args[i] = string(p.FFI)
		}
		fmt.Fprintf(out, "\n  %s\n", b.Signature)
		fmt.Fprintf(out, "    args:    [%s]\n", strings.Join(args, ", "))
		fmt.Fprintf(out, "    returns: %s\n", b.Returns)
		if len(b.Fallbacks) > 0 {
			fmt.Fprintf(out, "    unrecognized: %s (mapped to %s)\n", strings.Join(b.Fallbacks, ", "), ffi.Fallback)
		}
	}
}
