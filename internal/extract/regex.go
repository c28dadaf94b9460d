package extract

import (
	"context"
	"regexp"
	"strings"
)

// exportedFnPattern matches `#[no_mangle] pub extern "C" fn name(args) -> ret {`.
// The argument list cannot contain ')' and the return clause runs up to the body brace.
var exportedFnPattern = regexp.MustCompile(
	`#\[no_mangle\]\s+pub\s+extern\s+"C"\s+fn\s+(\w+)\s*\(([^)]*)\)\s*(?:->\s*([^{]+))?\s*\{`,
)

// RegexParser finds exported functions with a single pattern scan over the raw text.
// It does not understand comments, macros or nested parentheses in parameter types.
type RegexParser struct{}

// NewRegexParser creates the default parser.
func NewRegexParser() *RegexParser {
	return &RegexParser{}
}

// Parse scans source top to bottom and returns every match, duplicates included.
func (p *RegexParser) Parse(ctx context.Context, source []byte) ([]Signature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matches := exportedFnPattern.FindAllSubmatch(source, -1)
	sigs := make([]Signature, 0, len(matches))
	for _, m := range matches {
		ret := strings.TrimSpace(string(m[3]))
		if ret == "" {
			ret = VoidType
		}
		sigs = append(sigs, Signature{
			Name:       string(m[1]),
			Params:     parseParams(string(m[2])),
			ReturnType: ret,
		})
	}
	return sigs, nil
}

// parseParams splits "a: i32, b: *const u8" into ordered pairs.
// Each part is split on its first colon; a part with no colon keeps an empty type.
func parseParams(list string) []Param {
	list = strings.TrimSpace(list)
	if list == "" {
		return []Param{}
	}

	parts := strings.Split(list, ",")
	params := make([]Param, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			// trailing comma
			continue
		}
		name, typ, _ := strings.Cut(part, ":")
		params = append(params, Param{
			Name: strings.TrimSpace(name),
			Type: strings.TrimSpace(typ),
		})
	}
	return params
}
