package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"
)

// DefaultCompileTimeout bounds a single rustc invocation.
const DefaultCompileTimeout = 2 * time.Minute

// Compiler turns source files into shared libraries. The generator only needs
// the artifact paths back; tests substitute a fake.
type Compiler interface {
	Compile(ctx context.Context, sources []Source) ([]string, error)
}

// CompileError carries the compiler's diagnostic output for a failed source.
type CompileError struct {
	Source string
	Output string
	Err    error
}

func (e *CompileError) Error() string {
	msg := fmt.Sprintf("failed to compile %s: %v", e.Source, e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += "\n" + out
	}
	return msg
}

func (e *CompileError) Unwrap() error { return e.Err }

// LibrarySuffix returns the shared-library extension for goos, matching what
// bun:ffi's `suffix` resolves to at load time.
func LibrarySuffix(goos string) string {
	switch goos {
	case "darwin", "ios":
		return "dylib"
	case "windows":
		return "dll"
	default:
		return "so"
	}
}

// RustcCompiler builds each source as a cdylib with rustc. Artifacts are written
// to BinDir mirroring the source tree and named after the source file.
type RustcCompiler struct {
	Command   string
	CrateType string
	Args      []string
	Timeout   time.Duration
	BinDir    string
	GOOS      string
}

// NewRustcCompiler creates a compiler writing into binDir for the host platform.
func NewRustcCompiler(binDir string) *RustcCompiler {
	return &RustcCompiler{
		Command:   "rustc",
		CrateType: "cdylib",
		Timeout:   DefaultCompileTimeout,
		BinDir:    binDir,
		GOOS:      runtime.GOOS,
	}
}

// ArtifactPath is where src's library is written.
func (c *RustcCompiler) ArtifactPath(src Source) string {
	return filepath.Join(c.BinDir, filepath.FromSlash(src.RelPath)+"."+LibrarySuffix(c.GOOS))
}

// Compile runs the compiler once per source, stopping at the first failure.
func (c *RustcCompiler) Compile(ctx context.Context, sources []Source) ([]string, error) {
	if _, err := exec.LookPath(c.Command); err != nil {
		return nil, fmt.Errorf("compiler %q not available: %w", c.Command, err)
	}

	artifacts := make([]string, 0, len(sources))
	for _, src := range sources {
		out := c.ArtifactPath(src)
		if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
			return artifacts, fmt.Errorf("failed to create binaries directory: %w", err)
		}
		if err := c.compileOne(ctx, src, out); err != nil {
			return artifacts, err
		}
		artifacts = append(artifacts, out)
	}
	return artifacts, nil
}

func (c *RustcCompiler) compileOne(ctx context.Context, src Source, out string) error {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultCompileTimeout
	}
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{
		"--crate-type", c.CrateType,
		"--crate-name", crateName(src.RelPath),
		"-o", out,
	}
	args = append(args, c.Args...)
	args = append(args, src.Path)

	cmd := exec.CommandContext(execCtx, c.Command, args...)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s", timeout)
		}
		return &CompileError{Source: src.Path, Output: output.String(), Err: err}
	}
	return nil
}

var nonIdent = regexp.MustCompile(`[^A-Za-z0-9_]`)

// crateName derives a valid crate name from the file's base name.
func crateName(relPath string) string {
	name := nonIdent.ReplaceAllString(filepath.Base(filepath.FromSlash(relPath)), "_")
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		name = "_" + name
	}
	return name
}

// NoopCompiler skips compilation, for projects whose libraries are built elsewhere.
type NoopCompiler struct{}

// Compile returns no artifacts.
func (NoopCompiler) Compile(ctx context.Context, sources []Source) ([]string, error) {
	return nil, nil
}
