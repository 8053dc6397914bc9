package extract

import (
	"strings"

	"github.com/sevenseconds/vibescout/internal/types"
	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
)

var cDeclKinds = map[string]types.BlockType{
	"function_definition": types.BlockFunction,
	"struct_specifier":    types.BlockTypeDecl,
}

// NewCStrategy parses .c/.h/.cpp/.cc/.hpp files with the C grammar, grounded
// on internal/indexer/parsers/c.go. The teacher's own stack has no separate
// C++ grammar binding, so .cpp/.hpp files are parsed with the C grammar as
// well — sufficient for declaration-level extraction, per spec.md's C/C++
// Non-goal on exact-grammar fidelity.
func NewCStrategy() Strategy {
	lang := sitter.NewLanguage(c.Language())
	base := newTreeSitterStrategy(lang, "c", cDeclKinds, nil)
	return &genericStrategy{base: base, imports: cImports}
}

func cImports(root *sitter.Node, source []byte) []types.ImportEdge {
	var edges []types.ImportEdge
	walkTree(root, func(n *sitter.Node) bool {
		if n.Kind() != "preproc_include" {
			return true
		}
		pathNode := n.ChildByFieldName("path")
		if pathNode == nil {
			return true
		}
		spec := strings.Trim(extractNodeText(pathNode, source), `"<>`)
		edges = append(edges, types.ImportEdge{Source: spec, Symbols: map[string]struct{}{}})
		return true
	})
	return dedupImports(edges)
}
