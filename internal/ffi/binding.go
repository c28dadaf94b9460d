package ffi

import "github.com/mvp-joe/rustport/internal/extract"

// ParamBinding is a parameter with its resolved FFI type.
type ParamBinding struct {
	Name string `json:"name"`
	Type string `json:"type"`
	FFI  Type   `json:"ffi"`
}

// Binding is one extracted function with every type resolved.
type Binding struct {
	Name       string         `json:"name"`
	Signature  string         `json:"signature"`
	Params     []ParamBinding `json:"params"`
	ReturnType string         `json:"return_type"`
	Returns    Type           `json:"returns"`
	Fallbacks  []string       `json:"fallbacks,omitempty"`
}

// Describe resolves sig through m. A nil Mapper uses the fixed table.
func Describe(sig extract.Signature, m *Mapper) Binding {
	b := Binding{
		Name:       sig.Name,
		Signature:  sig.String(),
		Params:     make([]ParamBinding, 0, len(sig.Params)),
		ReturnType: sig.ReturnType,
		Returns:    m.Map(sig.ReturnType),
		Fallbacks:  m.Fallbacks(sig),
	}
	for _, p := range sig.Params {
		b.Params = append(b.Params, ParamBinding{Name: p.Name, Type: p.Type, FFI: m.Map(p.Type)})
	}
	return b
}

// DescribeAll resolves every signature in order.
func DescribeAll(sigs []extract.Signature, m *Mapper) []Binding {
	out := make([]Binding, 0, len(sigs))
	for _, sig := range sigs {
		out = append(out, Describe(sig, m))
	}
	return out
}
