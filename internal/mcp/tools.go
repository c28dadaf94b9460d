package mcp

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mvp-joe/rustport/internal/config"
	"github.com/mvp-joe/rustport/internal/extract"
	"github.com/mvp-joe/rustport/internal/ffi"
	"github.com/mvp-joe/rustport/internal/generator"
	mcputils "github.com/mvp-joe/rustport/internal/mcp-utils"
)

// ExtractRequest is the argument set of rustport_extract.
type ExtractRequest struct {
	Source  string `json:"source,omitempty"`
	Path    string `json:"path,omitempty"`
	Backend string `json:"backend,omitempty"`
}

// ExtractResponse is the result of rustport_extract.
type ExtractResponse struct {
	Backend   string        `json:"backend"`
	Functions []ffi.Binding `json:"functions"`
	Total     int           `json:"total"`
}

// GenerateRequest is the argument set of rustport_generate.
type GenerateRequest struct {
	NoCompile bool `json:"no_compile,omitempty"`
	Clean     bool `json:"clean,omitempty"`
}

// GenerateResponse is the result of rustport_generate.
type GenerateResponse struct {
	*generator.Stats
	Removed []string `json:"removed,omitempty"`
}

// AddExtractTool registers the rustport_extract tool with an MCP server.
func AddExtractTool(s *server.MCPServer, projectDir string, cfg *config.Config) {
	tool := mcp.NewTool(
		"rustport_extract",
		mcp.WithDescription("Extract the exported C-ABI functions (#[no_mangle] pub extern \"C\" fn) from Rust source and show the bun:ffi types each parameter and return value maps to. Pass either inline source or a path relative to the project."),
		mcp.WithString("source",
			mcp.Description("Rust source text to analyze")),
		mcp.WithString("path",
			mcp.Description("Rust file relative to the project directory, e.g. 'rs/math.rs'")),
		mcp.WithString("backend",
			mcp.Description("Extractor backend: 'regex' (default) or 'treesitter'")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createExtractHandler(projectDir, cfg))
}

func createExtractHandler(projectDir string, cfg *config.Config) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if _, ok := request.GetRawArguments().(map[string]interface{}); !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		var req ExtractRequest
		if err := mcputils.BindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}
		if (req.Source == "") == (req.Path == "") {
			return mcp.NewToolResultError("exactly one of source or path is required"), nil
		}

		backend := req.Backend
		if backend == "" {
			backend = cfg.Parser.Backend
		}
		parser, err := extract.New(backend)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		mapper, err := ffi.NewMapper(cfg.AliasMap())
		if err != nil {
			return nil, err
		}

		source := []byte(req.Source)
		if req.Path != "" {
			full, err := resolveProjectPath(projectDir, req.Path)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if source, err = os.ReadFile(full); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("failed to read %s: %v", req.Path, err)), nil
			}
		}

		sigs, err := parser.Parse(ctx, source)
		if err != nil {
			return nil, err
		}

		return marshalToolResponse(buildExtractResponse(backend, sigs, mapper))
	}
}

func buildExtractResponse(backend string, sigs []extract.Signature, mapper *ffi.Mapper) *ExtractResponse {
	return &ExtractResponse{
		Backend:   backend,
		Functions: ffi.DescribeAll(sigs, mapper),
		Total:     len(sigs),
	}
}

// AddGenerateTool registers the rustport_generate tool with an MCP server.
// Calls are serialized; the generator does not support concurrent runs.
func AddGenerateTool(s *server.MCPServer, genCfg generator.Config) {
	tool := mcp.NewTool(
		"rustport_generate",
		mcp.WithDescription("Compile the project's Rust sources and regenerate the bun:ffi binding modules and index.ts. Returns run statistics and warnings."),
		mcp.WithBoolean("no_compile",
			mcp.Description("Skip rustc and only regenerate bindings")),
		mcp.WithBoolean("clean",
			mcp.Description("Remove generated modules, libraries and index before generating")),
		mcp.WithDestructiveHintAnnotation(true),
	)

	s.AddTool(tool, createGenerateHandler(genCfg, &sync.Mutex{}))
}

func createGenerateHandler(genCfg generator.Config, mu *sync.Mutex) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req GenerateRequest
		if err := mcputils.BindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}

		runCfg := genCfg
		if req.NoCompile {
			runCfg.Compiler = generator.NoopCompiler{}
		}

		g, err := generator.New(runCfg, nil)
		if err != nil {
			return nil, err
		}

		mu.Lock()
		defer mu.Unlock()

		resp := &GenerateResponse{}
		if req.Clean {
			if resp.Removed, err = generator.Clean(g.Layout()); err != nil {
				return nil, err
			}
		}

		resp.Stats, err = g.Run(ctx)
		if err != nil {
			if isUserError(err) {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return nil, err
		}
		return marshalToolResponse(resp)
	}
}
