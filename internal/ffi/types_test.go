package ffi

import (
	"testing"

	"github.com/mvp-joe/rustport/internal/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for type mapping:
// - Every table entry maps to the identically named FFI type
// - Unknown, empty and composite tokens fall back to u64
// - Aliases are consulted before the table and must target known types
// - A nil Mapper behaves like MapType
// - Fallbacks lists unrecognized tokens once, in order

func TestMapType_Table(t *testing.T) {
	t.Parallel()

	for _, name := range []string{
		"u8", "u16", "u32", "u64", "i8", "i16", "i32", "i64",
		"f32", "f64", "bool", "char", "ptr", "cstring", "void",
	} {
		assert.Equal(t, Type(name), MapType(name), name)
	}
	assert.Len(t, KnownTypes(), 15)
}

func TestMapType_Fallback(t *testing.T) {
	t.Parallel()

	for _, token := range []string{"", "usize", "*const u8", "*mut Point", "String", "I32", " i32 "} {
		assert.Equal(t, Fallback, MapType(token), "token %q", token)
	}
}

func TestMapper_Aliases(t *testing.T) {
	t.Parallel()

	m, err := NewMapper(map[string]string{
		"usize":         "u64",
		"*const c_char": "cstring",
		"i32":           "i64",
	})
	require.NoError(t, err)

	assert.Equal(t, U64, m.Map("usize"))
	assert.Equal(t, CString, m.Map(" *const c_char "))
	assert.Equal(t, I64, m.Map("i32"), "alias wins over table")
	assert.Equal(t, F32, m.Map("f32"))
	assert.Equal(t, Fallback, m.Map("Box<T>"))
}

func TestNewMapper_RejectsUnknownTarget(t *testing.T) {
	t.Parallel()

	_, err := NewMapper(map[string]string{"usize": "size_t"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "size_t")
}

func TestMapper_Nil(t *testing.T) {
	t.Parallel()

	var m *Mapper
	assert.Equal(t, I32, m.Map("i32"))
	assert.Equal(t, Fallback, m.Map("isize"))
}

func TestMapper_Fallbacks(t *testing.T) {
	t.Parallel()

	m, err := NewMapper(map[string]string{"usize": "u64"})
	require.NoError(t, err)

	sig := extract.Signature{
		Name: "f",
		Params: []extract.Param{
			{Name: "a", Type: "*const u8"},
			{Name: "b", Type: "usize"},
			{Name: "c", Type: "*const u8"},
			{Name: "d", Type: "i32"},
		},
		ReturnType: "Handle",
	}
	assert.Equal(t, []string{"*const u8", "Handle"}, m.Fallbacks(sig))
}
