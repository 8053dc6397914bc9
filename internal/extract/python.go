package extract

import (
	"github.com/sevenseconds/vibescout/internal/types"
	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

var pyDeclKinds = map[string]types.BlockType{
	"class_definition":    types.BlockClass,
	"function_definition": types.BlockFunction,
}

var pyMethodPromote = map[string]bool{
	"function_definition": true,
}

// NewPythonStrategy parses .py files, grounded on
// internal/indexer/parsers/python.go.
func NewPythonStrategy() Strategy {
	lang := sitter.NewLanguage(python.Language())
	base := newTreeSitterStrategy(lang, "python", pyDeclKinds, pyMethodPromote)
	return &genericStrategy{base: base, imports: pythonImports}
}

func pythonImports(root *sitter.Node, source []byte) []types.ImportEdge {
	var edges []types.ImportEdge
	walkTree(root, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "import_statement":
			walkTree(n, func(c *sitter.Node) bool {
				if c.Kind() == "dotted_name" && c.Parent() == n {
					edges = append(edges, types.ImportEdge{
						Source:  extractNodeText(c, source),
						Symbols: map[string]struct{}{"*": {}},
					})
				}
				return true
			})
		case "import_from_statement":
			moduleNode := n.ChildByFieldName("module_name")
			if moduleNode == nil {
				return true
			}
			edge := types.ImportEdge{Source: extractNodeText(moduleNode, source), Symbols: map[string]struct{}{}}
			walkTree(n, func(c *sitter.Node) bool {
				if c.Kind() == "dotted_name" && c != moduleNode {
					edge.Symbols[extractNodeText(c, source)] = struct{}{}
				}
				if c.Kind() == "wildcard_import" {
					edge.Symbols["*"] = struct{}{}
				}
				return true
			})
			edges = append(edges, edge)
		}
		return true
	})
	return dedupImports(edges)
}
