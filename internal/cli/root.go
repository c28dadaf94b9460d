package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rustport",
	Short: "rustport - generate Bun FFI bindings for Rust libraries",
	Long: `rustport compiles the Rust sources of a project into shared libraries and
generates TypeScript modules that load them through bun:ffi.

Every function declared as

  #[no_mangle]
  pub extern "C" fn name(arg: type, ...) -> type

becomes an export of a generated module, and all modules are re-exported
from a single index file.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initLogging lets RUSTPORT_VERBOSE turn on timestamps and file locations.
func initLogging() {
	viper.SetEnvPrefix("RUSTPORT")
	viper.BindEnv("verbose")

	if viper.GetBool("verbose") {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
		return
	}
	log.SetFlags(0)
}
