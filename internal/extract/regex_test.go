package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for RegexParser:
// - Extracts a single exported function with typed parameters and return type
// - Omitted return clause yields "void"
// - Zero-parameter declaration yields an empty, non-nil parameter list
// - Multiple declarations come back in source order
// - Functions without the marker, without pub or without extern "C" are ignored
// - Duplicate names are kept
// - Pointer types and whitespace variations are preserved and trimmed
// - Trailing comma in the parameter list is tolerated
// - A parameter without a colon keeps an empty type
// - A file with no declarations returns an empty result and no error
// - Cancelled context returns an error
// - ParseFile reads from disk and reports missing files

func TestRegexParser_SingleFunction(t *testing.T) {
	t.Parallel()

	src := `#[no_mangle]
pub extern "C" fn add(a: i32, b: i32) -> i32 {
    a + b
}`

	sigs, err := NewRegexParser().Parse(context.Background(), []byte(src))
	require.NoError(t, err)
	require.Len(t, sigs, 1)

	assert.Equal(t, "add", sigs[0].Name)
	assert.Equal(t, []Param{{Name: "a", Type: "i32"}, {Name: "b", Type: "i32"}}, sigs[0].Params)
	assert.Equal(t, "i32", sigs[0].ReturnType)
}

func TestRegexParser_VoidReturn(t *testing.T) {
	t.Parallel()

	src := `#[no_mangle]
pub extern "C" fn log_value(v: u32) {
}`

	sigs, err := NewRegexParser().Parse(context.Background(), []byte(src))
	require.NoError(t, err)
	require.Len(t, sigs, 1)
	assert.Equal(t, VoidType, sigs[0].ReturnType)
}

func TestRegexParser_NoParams(t *testing.T) {
	t.Parallel()

	src := `#[no_mangle] pub extern "C" fn tick() -> u64 { 0 }`

	sigs, err := NewRegexParser().Parse(context.Background(), []byte(src))
	require.NoError(t, err)
	require.Len(t, sigs, 1)

	assert.NotNil(t, sigs[0].Params)
	assert.Empty(t, sigs[0].Params)
	assert.Equal(t, "u64", sigs[0].ReturnType)
}

func TestRegexParser_SourceOrderAndFiltering(t *testing.T) {
	t.Parallel()

	src := `
#[no_mangle]
pub extern "C" fn second(x: u8) -> u8 { x }

pub extern "C" fn unmarked(x: u8) -> u8 { x }

#[no_mangle]
extern "C" fn private_one() {}

#[no_mangle]
pub fn not_extern() {}

#[no_mangle]
pub extern "C" fn first() {}
`

	sigs, err := NewRegexParser().Parse(context.Background(), []byte(src))
	require.NoError(t, err)
	require.Len(t, sigs, 2)
	assert.Equal(t, "second", sigs[0].Name)
	assert.Equal(t, "first", sigs[1].Name)
}

func TestRegexParser_DuplicatesKept(t *testing.T) {
	t.Parallel()

	src := `
#[no_mangle]
pub extern "C" fn dup(a: i32) -> i32 { a }
#[no_mangle]
pub extern "C" fn dup(a: i64) -> i64 { a }
`

	sigs, err := NewRegexParser().Parse(context.Background(), []byte(src))
	require.NoError(t, err)
	require.Len(t, sigs, 2)
	assert.Equal(t, "i32", sigs[0].ReturnType)
	assert.Equal(t, "i64", sigs[1].ReturnType)
}

func TestRegexParser_WhitespaceAndPointers(t *testing.T) {
	t.Parallel()

	src := "#[no_mangle]\npub   extern \"C\"   fn  copy_into ( dst :*mut u8 ,src: *const u8,len:usize )->  bool\n{\n}"

	sigs, err := NewRegexParser().Parse(context.Background(), []byte(src))
	require.NoError(t, err)
	require.Len(t, sigs, 1)

	assert.Equal(t, "copy_into", sigs[0].Name)
	assert.Equal(t, []Param{
		{Name: "dst", Type: "*mut u8"},
		{Name: "src", Type: "*const u8"},
		{Name: "len", Type: "usize"},
	}, sigs[0].Params)
	assert.Equal(t, "bool", sigs[0].ReturnType)
}

func TestRegexParser_TrailingComma(t *testing.T) {
	t.Parallel()

	src := `#[no_mangle]
pub extern "C" fn pair(
    a: f32,
    b: f32,
) -> f32 { a }`

	sigs, err := NewRegexParser().Parse(context.Background(), []byte(src))
	require.NoError(t, err)
	require.Len(t, sigs, 1)
	assert.Equal(t, []Param{{Name: "a", Type: "f32"}, {Name: "b", Type: "f32"}}, sigs[0].Params)
}

func TestParseParams_MissingColon(t *testing.T) {
	t.Parallel()

	params := parseParams("a: i32, weird")
	require.Len(t, params, 2)
	assert.Equal(t, Param{Name: "weird", Type: ""}, params[1])
}

func TestParseParams_SplitsOnFirstColon(t *testing.T) {
	t.Parallel()

	params := parseParams("p: std::ffi::c_void")
	require.Len(t, params, 1)
	assert.Equal(t, Param{Name: "p", Type: "std::ffi::c_void"}, params[0])
}

func TestRegexParser_NoMatches(t *testing.T) {
	t.Parallel()

	sigs, err := NewRegexParser().Parse(context.Background(), []byte("fn main() {}\n"))
	require.NoError(t, err)
	assert.Empty(t, sigs)
}

func TestRegexParser_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRegexParser().Parse(ctx, []byte(`#[no_mangle] pub extern "C" fn a() {}`))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseFile_Testdata(t *testing.T) {
	t.Parallel()

	sigs, err := ParseFile(context.Background(), NewRegexParser(), "../../testdata/rust/math.rs")
	require.NoError(t, err)
	require.Len(t, sigs, 4)

	names := make([]string, len(sigs))
	for i, s := range sigs {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"add", "scale", "reset", "greeting"}, names)
	assert.Equal(t, "*const c_char", sigs[3].ReturnType)
}

func TestParseFile_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := ParseFile(context.Background(), NewRegexParser(), "../../testdata/rust/nope.rs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestSignature_String(t *testing.T) {
	t.Parallel()

	sig := Signature{Name: "add", Params: []Param{{"a", "i32"}, {"b", "i32"}}, ReturnType: "i32"}
	assert.Equal(t, "add(a: i32, b: i32) -> i32", sig.String())

	void := Signature{Name: "reset", Params: []Param{}, ReturnType: VoidType}
	assert.Equal(t, "reset()", void.String())
}

func TestNew_Backends(t *testing.T) {
	t.Parallel()

	p, err := New("")
	require.NoError(t, err)
	assert.IsType(t, &RegexParser{}, p)

	p, err = New("TreeSitter")
	require.NoError(t, err)
	assert.IsType(t, &TreeSitterParser{}, p)

	_, err = New("antlr")
	assert.ErrorIs(t, err, ErrUnknownBackend)
}
