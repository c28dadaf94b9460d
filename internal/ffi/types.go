package ffi

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mvp-joe/rustport/internal/extract"
)

// Type is a member of Bun's FFIType enumeration.
type Type string

const (
	U8      Type = "u8"
	U16     Type = "u16"
	U32     Type = "u32"
	U64     Type = "u64"
	I8      Type = "i8"
	I16     Type = "i16"
	I32     Type = "i32"
	I64     Type = "i64"
	F32     Type = "f32"
	F64     Type = "f64"
	Bool    Type = "bool"
	Char    Type = "char"
	Ptr     Type = "ptr"
	CString Type = "cstring"
	Void    Type = "void"
)

// Fallback is used for any token missing from the table. Unknown and composite
// types become an opaque 64-bit value; callers re-cast at the call site.
const Fallback = U64

// typeTable maps source tokens one-to-one onto identically named FFI types.
var typeTable = map[string]Type{
	"u8":      U8,
	"u16":     U16,
	"u32":     U32,
	"u64":     U64,
	"i8":      I8,
	"i16":     I16,
	"i32":     I32,
	"i64":     I64,
	"f32":     F32,
	"f64":     F64,
	"bool":    Bool,
	"char":    Char,
	"ptr":     Ptr,
	"cstring": CString,
	"void":    Void,
}

// MapType resolves a type token through the fixed table. It is total.
func MapType(token string) Type {
	if t, ok := typeTable[token]; ok {
		return t
	}
	return Fallback
}

// IsKnown reports whether t is a member of the FFIType enumeration.
func IsKnown(t Type) bool {
	_, ok := typeTable[string(t)]
	return ok
}

// KnownTypes lists the enumeration in sorted order.
func KnownTypes() []string {
	names := make([]string, 0, len(typeTable))
	for name := range typeTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Mapper is MapType plus user-configured aliases, which are consulted first.
type Mapper struct {
	aliases map[string]Type
}

// NewMapper validates aliases (token -> FFI type name) and builds a Mapper.
func NewMapper(aliases map[string]string) (*Mapper, error) {
	m := &Mapper{aliases: make(map[string]Type, len(aliases))}
	for token, target := range aliases {
		t := Type(strings.TrimSpace(target))
		if !IsKnown(t) {
			return nil, fmt.Errorf("alias %q targets unknown FFI type %q", token, target)
		}
		m.aliases[strings.TrimSpace(token)] = t
	}
	return m, nil
}

// Map resolves token. A nil Mapper behaves like MapType.
func (m *Mapper) Map(token string) Type {
	token = strings.TrimSpace(token)
	if m != nil {
		if t, ok := m.aliases[token]; ok {
			return t
		}
	}
	return MapType(token)
}

// resolves reports whether token hits an alias or the table.
func (m *Mapper) resolves(token string) bool {
	token = strings.TrimSpace(token)
	if m != nil {
		if _, ok := m.aliases[token]; ok {
			return true
		}
	}
	_, ok := typeTable[token]
	return ok
}

// Fallbacks returns the distinct tokens of sig that resolve to Fallback only
// because they are unrecognized, in order of first appearance.
func (m *Mapper) Fallbacks(sig extract.Signature) []string {
	var out []string
	seen := make(map[string]bool)
	check := func(token string) {
		if m.resolves(token) || seen[token] {
			return
		}
		seen[token] = true
		out = append(out, token)
	}
	for _, p := range sig.Params {
		check(p.Type)
	}
	check(sig.ReturnType)
	return out
}
