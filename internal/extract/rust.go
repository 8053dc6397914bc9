package extract

import (
	"github.com/sevenseconds/vibescout/internal/types"
	sitter "github.com/tree-sitter/go-tree-sitter"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
)

var rustDeclKinds = map[string]types.BlockType{
	"struct_item":   types.BlockTypeDecl,
	"trait_item":    types.BlockInterface,
	"enum_item":     types.BlockTypeDecl,
	"function_item": types.BlockFunction,
}

var rustMethodPromote = map[string]bool{
	"function_item": true,
}

// NewRustStrategy parses .rs files, grounded on
// internal/indexer/parsers/rust.go. Methods live inside impl_item blocks,
// which classKinds recognizes alongside struct/trait bodies.
func NewRustStrategy() Strategy {
	lang := sitter.NewLanguage(rust.Language())
	base := newTreeSitterStrategy(lang, "rust", rustDeclKinds, rustMethodPromote)
	return &genericStrategy{base: base, imports: rustImports}
}

func rustImports(root *sitter.Node, source []byte) []types.ImportEdge {
	var edges []types.ImportEdge
	walkTree(root, func(n *sitter.Node) bool {
		if n.Kind() != "use_declaration" {
			return true
		}
		text := extractNodeText(n, source)
		edges = append(edges, types.ImportEdge{Source: text, Symbols: map[string]struct{}{}})
		return false
	})
	return dedupImports(edges)
}
