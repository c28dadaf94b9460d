package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mvp-joe/rustport/internal/config"
	"github.com/mvp-joe/rustport/internal/extract"
	"github.com/mvp-joe/rustport/internal/generator"
)

// ErrOutsideProject is returned for paths that escape the project directory.
var ErrOutsideProject = errors.New("path is outside project root")

// marshalToolResponse marshals a response object to JSON and returns it as an MCP tool result.
func marshalToolResponse(response interface{}) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// resolveProjectPath joins rel onto projectDir and rejects anything that escapes it.
func resolveProjectPath(projectDir, rel string) (string, error) {
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("%w: %s", ErrOutsideProject, rel)
	}
	full := filepath.Join(projectDir, filepath.FromSlash(rel))
	back, err := filepath.Rel(projectDir, full)
	if err != nil || back == ".." || strings.HasPrefix(back, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideProject, rel)
	}
	return full, nil
}

// isUserError reports whether err should be shown to the caller as a tool error
// rather than failing the request.
func isUserError(err error) bool {
	var compileErr *generator.CompileError
	switch {
	case err == nil:
		return false
	case errors.As(err, &compileErr),
		errors.Is(err, ErrOutsideProject),
		errors.Is(err, generator.ErrProjectNotFound),
		errors.Is(err, generator.ErrSourceDirNotFound),
		errors.Is(err, generator.ErrUnsafeOutput),
		errors.Is(err, generator.ErrDuplicateFunction),
		errors.Is(err, config.ErrInvalidParser),
		errors.Is(err, extract.ErrUnknownBackend):
		return true
	}
	return false
}
