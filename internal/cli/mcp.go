package cli

import (
	"fmt"
	"os"

	"github.com/mvp-joe/rustport/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp [dir]",
	Short: "Start the MCP server for a project",
	Long: `Start a Model Context Protocol (MCP) server over stdio so coding assistants
can inspect and regenerate the project's bindings.

Tools:
  rustport_extract   show exported functions and their FFI types
  rustport_generate  compile and regenerate bindings

Example:
  rustport mcp lib`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	dir, err := projectDir(args, ".")
	if err != nil {
		return err
	}

	cfg, err := loadProjectConfig(dir)
	if err != nil {
		return err
	}

	// stdout carries the protocol
	fmt.Fprintf(os.Stderr, "rustport MCP server %s\n", Version)
	fmt.Fprintf(os.Stderr, "Project: %s\n\n", dir)

	s, err := mcp.NewServer(dir, cfg, Version)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer s.Close()

	return s.Serve(commandContext(cmd))
}
