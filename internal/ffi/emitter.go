package ffi

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/mvp-joe/rustport/internal/extract"
)

// DefaultLoaderModule is the module providing dlopen, FFIType and suffix.
const DefaultLoaderModule = "bun:ffi"

// ErrNoSignatures is returned when asked to emit a module with nothing to bind.
var ErrNoSignatures = errors.New("module has no signatures")

// Module describes one source file that produces one binding module.
type Module struct {
	// SourcePath is the file as shown in the generated header, e.g. "rs/geo/point.rs".
	SourcePath string
	// RelPath is the slash-separated path below the source dir without extension,
	// e.g. "geo/point". It names both the binding module and the shared library.
	RelPath    string
	Signatures []extract.Signature
}

// Name is the module's base name.
func (m Module) Name() string {
	return path.Base(m.RelPath)
}

// ModuleFile is the binding file path relative to the modules dir.
func (m Module) ModuleFile() string {
	return m.RelPath + ".ts"
}

// Names lists the exported function names in emission order.
func (m Module) Names() []string {
	names := make([]string, len(m.Signatures))
	for i, s := range m.Signatures {
		names[i] = s.Name
	}
	return names
}

// EmitterOptions controls the parts of the binding text that depend on layout.
type EmitterOptions struct {
	LoaderModule string // defaults to DefaultLoaderModule
	ModulesDir   string // slash path of the binding tree relative to the project, e.g. "mod"
	BinDir       string // slash path of the shared libraries relative to the project, e.g. "bin"
	Mapper       *Mapper
}

// Emitter renders binding modules. Output is a pure function of its input.
type Emitter struct {
	opts EmitterOptions
}

// NewEmitter creates an emitter, filling in defaults.
func NewEmitter(opts EmitterOptions) *Emitter {
	if opts.LoaderModule == "" {
		opts.LoaderModule = DefaultLoaderModule
	}
	if opts.ModulesDir == "" {
		opts.ModulesDir = "mod"
	}
	if opts.BinDir == "" {
		opts.BinDir = "bin"
	}
	return &Emitter{opts: opts}
}

// Emit renders the binding source for m.
func (e *Emitter) Emit(m Module) ([]byte, error) {
	if len(m.Signatures) == 0 {
		return nil, fmt.Errorf("%s: %w", m.SourcePath, ErrNoSignatures)
	}

	baseDir, err := e.baseDir(m)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "// Code generated by rustport from %s. DO NOT EDIT.\n\n", m.SourcePath)
	fmt.Fprintf(&b, "import { dlopen, FFIType, suffix } from %q;\n\n", e.opts.LoaderModule)
	fmt.Fprintf(&b, "const BASE_DIR = `${import.meta.dir}/%s`;\n\n", baseDir)

	b.WriteString("const lib = dlopen(`${BASE_DIR}/" + m.RelPath + ".${suffix}`, {\n")
	for _, sig := range m.Signatures {
		args := make([]string, len(sig.Params))
		for i, p := range sig.Params {
			args[i] = "FFIType." + string(e.opts.Mapper.Map(p.Type))
		}
		fmt.Fprintf(&b, "  // %s\n", strings.Join(strings.Fields(sig.String()), " "))
		fmt.Fprintf(&b, "  %s: {\n", sig.Name)
		fmt.Fprintf(&b, "    args: [%s],\n", strings.Join(args, ", "))
		fmt.Fprintf(&b, "    returns: FFIType.%s,\n", e.opts.Mapper.Map(sig.ReturnType))
		b.WriteString("  },\n")
	}
	b.WriteString("});\n\n")

	taken := make(map[string]bool, len(m.Signatures)+len(moduleBindings))
	for name := range moduleBindings {
		taken[name] = true
	}
	for _, sig := range m.Signatures {
		taken[sig.Name] = true
	}
	for _, sig := range m.Signatures {
		if !needsAlias(sig.Name) {
			fmt.Fprintf(&b, "export const %s = lib.symbols.%s;\n", sig.Name, sig.Name)
			continue
		}
		// the export name may differ from the binding name, so reserved words
		// and names of the module's own bindings are declared under a prefix
		local := "_" + sig.Name
		for taken[local] {
			local = "_" + local
		}
		taken[local] = true
		fmt.Fprintf(&b, "const %s = lib.symbols.%s;\n", local, sig.Name)
		fmt.Fprintf(&b, "export { %s as %s };\n", local, sig.Name)
	}

	return []byte(b.String()), nil
}

// baseDir is the binaries dir relative to the directory holding m's binding file.
func (e *Emitter) baseDir(m Module) (string, error) {
	from := filepath.FromSlash(path.Join(e.opts.ModulesDir, path.Dir(m.RelPath)))
	rel, err := filepath.Rel(from, filepath.FromSlash(e.opts.BinDir))
	if err != nil {
		return "", fmt.Errorf("failed to resolve library dir for %s: %w", m.SourcePath, err)
	}
	return filepath.ToSlash(rel), nil
}

// reservedWords cannot name a const binding in a TypeScript module.
var reservedWords = map[string]bool{
	"arguments": true, "await": true, "break": true, "case": true, "catch": true,
	"class": true, "const": true, "continue": true, "debugger": true, "default": true,
	"delete": true, "do": true, "else": true, "enum": true, "eval": true,
	"export": true, "extends": true, "false": true, "finally": true, "for": true,
	"function": true, "if": true, "implements": true, "import": true, "in": true,
	"instanceof": true, "interface": true, "let": true, "new": true, "null": true,
	"package": true, "private": true, "protected": true, "public": true, "return": true,
	"static": true, "super": true, "switch": true, "this": true, "throw": true,
	"true": true, "try": true, "typeof": true, "var": true, "void": true,
	"while": true, "with": true, "yield": true,
}

// moduleBindings are declared by every generated module.
var moduleBindings = map[string]bool{
	"dlopen": true, "FFIType": true, "suffix": true, "BASE_DIR": true, "lib": true,
}

// IsReservedWord reports whether name cannot be declared as a TypeScript binding.
func IsReservedWord(name string) bool {
	return reservedWords[name]
}

func needsAlias(name string) bool {
	return reservedWords[name] || moduleBindings[name]
}

// Dedupe keeps the first signature for each name and returns the names it dropped,
// in order of appearance.
func Dedupe(sigs []extract.Signature) (unique []extract.Signature, dropped []string) {
	seen := make(map[string]bool, len(sigs))
	unique = make([]extract.Signature, 0, len(sigs))
	for _, s := range sigs {
		if seen[s.Name] {
			dropped = append(dropped, s.Name)
			continue
		}
		seen[s.Name] = true
		unique = append(unique, s)
	}
	return unique, dropped
}
