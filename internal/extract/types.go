package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// VoidType is the return type recorded when a declaration has no "->" clause.
const VoidType = "void"

// Backend names accepted by New.
const (
	BackendRegex      = "regex"
	BackendTreeSitter = "treesitter"
)

// ErrUnknownBackend is returned by New for unsupported backend names.
var ErrUnknownBackend = errors.New("unknown parser backend")

// Param is one `name: type` pair from a declaration's parameter list.
type Param struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Signature is an exported function declaration as it appears in the source text.
// Values are never modified after extraction.
type Signature struct {
	Name       string  `json:"name"`
	Params     []Param `json:"params"`
	ReturnType string  `json:"return_type"`
}

// String renders the signature the way it would read in Rust, minus the marker.
func (s Signature) String() string {
	parts := make([]string, len(s.Params))
	for i, p := range s.Params {
		parts[i] = fmt.Sprintf("%s: %s", p.Name, p.Type)
	}
	out := fmt.Sprintf("%s(%s)", s.Name, strings.Join(parts, ", "))
	if s.ReturnType != VoidType {
		out += " -> " + s.ReturnType
	}
	return out
}

// Parser extracts exported function signatures from a Rust source file.
// Implementations return signatures in source order and an empty slice,
// not an error, when nothing matches.
type Parser interface {
	Parse(ctx context.Context, source []byte) ([]Signature, error)
}

// New returns the parser for the named backend.
func New(backend string) (Parser, error) {
	switch strings.ToLower(backend) {
	case "", BackendRegex:
		return NewRegexParser(), nil
	case BackendTreeSitter:
		return NewTreeSitterParser(), nil
	default:
		return nil, fmt.Errorf("%w %q (supported: %s, %s)", ErrUnknownBackend, backend, BackendRegex, BackendTreeSitter)
	}
}

// ParseFile reads path and runs p over its contents.
func ParseFile(ctx context.Context, p Parser, path string) ([]Signature, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	sigs, err := p.Parse(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return sigs, nil
}
