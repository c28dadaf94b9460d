package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mvp-joe/rustport/internal/ffi"
	"github.com/mvp-joe/rustport/internal/generator"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for CLI commands:
// - Root registers generate, clean, inspect, mcp and version
// - generate writes modules and index and prints a summary
// - generate fails for a missing project or source directory
// - generate rejects an unknown --parser value
// - clean removes outputs, reports them and is a no-op on a clean project
// - inspect prints signatures with FFI types, as text and as JSON
// - version prints the build information
// - The progress reporter is silent when quiet

// Package-level flag variables are shared, so these tests do not run in parallel.

const addSource = `#[no_mangle]
pub extern "C" fn add(a: i32, b: i32) -> i32 {
    a + b
}
`

func newTestCommand() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	return cmd, &buf
}

func resetFlags(t *testing.T) {
	t.Helper()
	reset := func() {
		generateQuiet, generateWatch, generateNoCompile, generateParser = false, false, false, ""
		cleanQuiet = false
		inspectJSON, inspectParser = false, ""
	}
	reset()
	t.Cleanup(reset)
}

func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "rs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rs", "math.rs"), []byte(addSource), 0644))
	return dir
}

func TestRootCommand_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"generate", "clean", "inspect", "mcp", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestRunGenerate(t *testing.T) {
	resetFlags(t)
	generateNoCompile = true

	dir := writeProject(t)
	cmd, out := newTestCommand()

	require.NoError(t, runGenerate(cmd, []string{dir}))

	assert.FileExists(t, filepath.Join(dir, "mod", "math.ts"))
	index, err := os.ReadFile(filepath.Join(dir, "index.ts"))
	require.NoError(t, err)
	assert.Contains(t, string(index), `export * from "./mod/math";`)
	assert.Contains(t, out.String(), "✓ Generated 1 module(s) with 1 function(s)")
}

func TestRunGenerate_Quiet(t *testing.T) {
	resetFlags(t)
	generateNoCompile = true
	generateQuiet = true
	generateParser = "treesitter"

	dir := writeProject(t)
	cmd, out := newTestCommand()

	require.NoError(t, runGenerate(cmd, []string{dir}))
	assert.Empty(t, out.String())
	assert.FileExists(t, filepath.Join(dir, "mod", "math.ts"))
}

func TestRunGenerate_MissingDirectories(t *testing.T) {
	resetFlags(t)
	generateNoCompile = true
	generateQuiet = true

	cmd, _ := newTestCommand()
	err := runGenerate(cmd, []string{filepath.Join(t.TempDir(), "missing")})
	assert.ErrorIs(t, err, generator.ErrProjectNotFound)

	err = runGenerate(cmd, []string{t.TempDir()})
	assert.ErrorIs(t, err, generator.ErrSourceDirNotFound)
}

func TestRunGenerate_InvalidParser(t *testing.T) {
	resetFlags(t)
	generateNoCompile = true
	generateParser = "syn"

	cmd, _ := newTestCommand()
	err := runGenerate(cmd, []string{writeProject(t)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid options")
}

func TestRunClean(t *testing.T) {
	resetFlags(t)
	generateNoCompile = true
	generateQuiet = true

	dir := writeProject(t)
	cmd, out := newTestCommand()
	require.NoError(t, runGenerate(cmd, []string{dir}))

	require.NoError(t, runClean(cmd, []string{dir}))
	assert.Contains(t, out.String(), "✓ Removed "+filepath.Join(dir, "mod"))
	assert.Contains(t, out.String(), "✓ Removed "+filepath.Join(dir, "index.ts"))
	assert.NoFileExists(t, filepath.Join(dir, "index.ts"))
	assert.FileExists(t, filepath.Join(dir, "rs", "math.rs"))

	out.Reset()
	require.NoError(t, runClean(cmd, []string{dir}))
	assert.Equal(t, "Nothing to clean\n", out.String())
}

func TestRunClean_FreshDirectory(t *testing.T) {
	resetFlags(t)

	cmd, out := newTestCommand()
	require.NoError(t, runClean(cmd, []string{t.TempDir()}))
	assert.Equal(t, "Nothing to clean\n", out.String())
}

func TestRunInspect_Text(t *testing.T) {
	resetFlags(t)

	cmd, out := newTestCommand()
	path := filepath.Join("..", "..", "testdata", "rust", "math.rs")
	require.NoError(t, runInspect(cmd, []string{path}))

	text := out.String()
	assert.Contains(t, text, "4 exported function(s)")
	assert.Contains(t, text, "add(a: i32, b: i32) -> i32")
	assert.Contains(t, text, "args:    [i32, i32]")
	assert.Contains(t, text, "returns: void")
	assert.Contains(t, text, "unrecognized: *const c_char (mapped to u64)")
	assert.NotContains(t, text, "internal_helper")
}

func TestRunInspect_JSON(t *testing.T) {
	resetFlags(t)
	inspectJSON = true
	inspectParser = "treesitter"

	cmd, out := newTestCommand()
	path := filepath.Join("..", "..", "testdata", "rust", "math.rs")
	require.NoError(t, runInspect(cmd, []string{path}))

	var bindings []ffi.Binding
	require.NoError(t, json.Unmarshal(out.Bytes(), &bindings))
	require.Len(t, bindings, 4)
	assert.Equal(t, "add", bindings[0].Name)
	assert.Equal(t, ffi.F64, bindings[1].Returns)
	assert.Equal(t, ffi.Void, bindings[2].Returns)
}

func TestRunInspect_NoExports(t *testing.T) {
	resetFlags(t)

	cmd, out := newTestCommand()
	path := filepath.Join("..", "..", "testdata", "rust", "empty.rs")
	require.NoError(t, runInspect(cmd, []string{path}))
	assert.Contains(t, out.String(), "no exported functions")
}

func TestVersionCommand(t *testing.T) {
	cmd, out := newTestCommand()
	versionCmd.Run(cmd, nil)
	assert.Contains(t, out.String(), "rustport dev")
}

func TestCLIProgressReporter(t *testing.T) {
	stats := &generator.Stats{
		ModulesWritten: 2,
		Functions:      5,
		FilesSkipped:   1,
		Warnings:       []string{"w"},
		IndexPath:      "/proj/index.ts",
		Duration:       1500 * time.Millisecond,
	}

	var quiet bytes.Buffer
	q := NewCLIProgressReporter(&quiet, true)
	q.OnFileProcessingStart(3)
	q.OnFileProcessed("math", 2)
	q.OnComplete(stats)
	assert.Empty(t, quiet.String())

	var loud bytes.Buffer
	r := NewCLIProgressReporter(&loud, false)
	r.OnComplete(stats)
	assert.Contains(t, loud.String(), "✓ Generated 2 module(s) with 5 function(s) in 1.5s")
	assert.Contains(t, loud.String(), "Skipped:  1 file(s) without exports")
	assert.Contains(t, loud.String(), "Index:    /proj/index.ts")
}
