package extract

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
)

// TreeSitterParser recognizes the same exported-function idiom as RegexParser,
// but from the Rust syntax tree. Comments, nested parentheses in types and
// declarations split across lines are handled; macro-generated functions are not.
type TreeSitterParser struct {
	language *sitter.Language
}

// NewTreeSitterParser creates a structural Rust parser.
func NewTreeSitterParser() *TreeSitterParser {
	return &TreeSitterParser{
		language: sitter.NewLanguage(rust.Language()),
	}
}

// Parse walks every function_item in source order.
func (p *TreeSitterParser) Parse(ctx context.Context, source []byte) ([]Signature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(p.language); err != nil {
		return nil, fmt.Errorf("failed to set rust language: %w", err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse rust source")
	}
	defer tree.Close()

	sigs := []Signature{}
	walkTree(tree.RootNode(), func(n *sitter.Node) bool {
		if n.Kind() != "function_item" {
			return true
		}
		if sig, ok := p.exportedSignature(n, source); ok {
			sigs = append(sigs, sig)
		}
		// nested items inside a body are still visited
		return true
	})

	return sigs, nil
}

// exportedSignature returns the signature of fn if it is `pub extern "C"` and
// carries a no_mangle attribute.
func (p *TreeSitterParser) exportedSignature(fn *sitter.Node, source []byte) (Signature, bool) {
	vis := findChildByType(fn, "visibility_modifier")
	if vis == nil || extractNodeText(vis, source) != "pub" {
		return Signature{}, false
	}

	mods := findChildByType(fn, "function_modifiers")
	if mods == nil {
		return Signature{}, false
	}
	ext := findChildByType(mods, "extern_modifier")
	if ext == nil || !strings.Contains(extractNodeText(ext, source), `"C"`) {
		return Signature{}, false
	}

	if !hasNoMangle(fn, source) {
		return Signature{}, false
	}

	nameNode := fn.ChildByFieldName("name")
	if nameNode == nil {
		return Signature{}, false
	}

	sig := Signature{
		Name:       extractNodeText(nameNode, source),
		Params:     []Param{},
		ReturnType: VoidType,
	}

	if params := fn.ChildByFieldName("parameters"); params != nil {
		for _, param := range findChildrenByType(params, "parameter") {
			sig.Params = append(sig.Params, Param{
				Name: collapseSpace(extractNodeText(param.ChildByFieldName("pattern"), source)),
				Type: collapseSpace(extractNodeText(param.ChildByFieldName("type"), source)),
			})
		}
	}

	if ret := fn.ChildByFieldName("return_type"); ret != nil {
		sig.ReturnType = collapseSpace(extractNodeText(ret, source))
	}

	return sig, true
}

// hasNoMangle looks at the attributes and comments directly above fn.
func hasNoMangle(fn *sitter.Node, source []byte) bool {
	for prev := fn.PrevSibling(); prev != nil; prev = prev.PrevSibling() {
		switch prev.Kind() {
		case "attribute_item":
			text := strings.Join(strings.Fields(extractNodeText(prev, source)), "")
			if text == "#[no_mangle]" || text == "#[unsafe(no_mangle)]" {
				return true
			}
		case "line_comment", "block_comment":
		default:
			return false
		}
	}
	return false
}

// collapseSpace normalizes multi-line type text like "*const\n    u8".
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// extractNodeText extracts the text content of a tree-sitter node.
func extractNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// walkTree recursively walks a tree-sitter tree and calls the visitor for each node.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}

	if !visitor(node) {
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		walkTree(node.Child(uint(i)), visitor)
	}
}

// findChildByType finds the first child node with the given type.
func findChildByType(node *sitter.Node, nodeType string) *sitter.Node {
	if node == nil {
		return nil
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() == nodeType {
			return child
		}
	}
	return nil
}

// findChildrenByType finds all child nodes with the given type.
func findChildrenByType(node *sitter.Node, nodeType string) []*sitter.Node {
	var results []*sitter.Node
	if node == nil {
		return results
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() == nodeType {
			results = append(results, child)
		}
	}
	return results
}
