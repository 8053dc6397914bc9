package extract

import (
	"github.com/sevenseconds/vibescout/internal/types"
	sitter "github.com/tree-sitter/go-tree-sitter"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
)

var javaDeclKinds = map[string]types.BlockType{
	"class_declaration":     types.BlockClass,
	"interface_declaration": types.BlockInterface,
	"method_declaration":    types.BlockMethod,
	"constructor_declaration": types.BlockConstructor,
	"field_declaration":     types.BlockProperty,
}

// NewJavaStrategy parses .java files, grounded on
// internal/indexer/parsers/java.go. Java methods are always nested inside
// a class/interface body, so no separate method-promotion table is needed.
func NewJavaStrategy() Strategy {
	lang := sitter.NewLanguage(java.Language())
	base := newTreeSitterStrategy(lang, "java", javaDeclKinds, nil)
	return &genericStrategy{base: base, imports: javaImports}
}

func javaImports(root *sitter.Node, source []byte) []types.ImportEdge {
	var edges []types.ImportEdge
	walkTree(root, func(n *sitter.Node) bool {
		if n.Kind() != "import_declaration" {
			return true
		}
		text := extractNodeText(n, source)
		edges = append(edges, types.ImportEdge{Source: text, Symbols: map[string]struct{}{}})
		return true
	})
	return dedupImports(edges)
}
