package extract

import (
	"strings"

	"github.com/sevenseconds/vibescout/internal/types"
	sitter "github.com/tree-sitter/go-tree-sitter"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
)

var phpDeclKinds = map[string]types.BlockType{
	"class_declaration":     types.BlockClass,
	"interface_declaration": types.BlockInterface,
	"trait_declaration":     types.BlockClass,
	"method_declaration":    types.BlockMethod,
	"function_definition":   types.BlockFunction,
	"property_declaration":  types.BlockProperty,
}

// NewPHPStrategy parses .php files, grounded on
// internal/indexer/parsers/php.go.
func NewPHPStrategy() Strategy {
	lang := sitter.NewLanguage(php.LanguagePHP())
	base := newTreeSitterStrategy(lang, "php", phpDeclKinds, nil)
	return &genericStrategy{base: base, imports: phpImports}
}

func phpImports(root *sitter.Node, source []byte) []types.ImportEdge {
	var edges []types.ImportEdge
	walkTree(root, func(n *sitter.Node) bool {
		if n.Kind() != "namespace_use_declaration" {
			return true
		}
		walkTree(n, func(c *sitter.Node) bool {
			if c.Kind() == "namespace_use_clause" || c.Kind() == "qualified_name" {
				text := strings.TrimPrefix(extractNodeText(c, source), "\\")
				edges = append(edges, types.ImportEdge{Source: text, Symbols: map[string]struct{}{}})
			}
			return true
		})
		return false
	})
	return dedupImports(edges)
}
