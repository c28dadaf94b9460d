package mcp

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/mvp-joe/rustport/internal/config"
	"github.com/mvp-joe/rustport/internal/extract"
	"github.com/mvp-joe/rustport/internal/generator"
)

// ServerName is reported to MCP clients.
const ServerName = "rustport-mcp"

// Server exposes extraction and generation for one project over MCP.
type Server struct {
	projectDir string
	genConfig  generator.Config
	mcp        *server.MCPServer
}

// NewServer creates a server for projectDir. A nil cfg uses defaults.
func NewServer(projectDir string, cfg *config.Config, version string) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	genConfig, err := cfg.ToGeneratorConfig(projectDir)
	if err != nil {
		return nil, fmt.Errorf("failed to configure generator: %w", err)
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
	)

	AddExtractTool(mcpServer, projectDir, cfg)
	AddGenerateTool(mcpServer, genConfig)

	return &Server{
		projectDir: projectDir,
		genConfig:  genConfig,
		mcp:        mcpServer,
	}, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting MCP server on stdio for %s...", s.projectDir)
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	select {
	case <-sigCh:
		log.Printf("Received shutdown signal, stopping gracefully...")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the parser cache, if any.
func (s *Server) Close() error {
	if cp, ok := s.genConfig.Parser.(*extract.CachingParser); ok {
		cp.Close()
	}
	return nil
}
