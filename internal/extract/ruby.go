package extract

import (
	"github.com/sevenseconds/vibescout/internal/types"
	sitter "github.com/tree-sitter/go-tree-sitter"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
)

var rubyDeclKinds = map[string]types.BlockType{
	"class":  types.BlockClass,
	"module": types.BlockClass,
	"method": types.BlockMethod,
}

var rubyMethodPromote = map[string]bool{
	"method": true,
}

// NewRubyStrategy parses .rb files, grounded on
// internal/indexer/parsers/ruby.go.
func NewRubyStrategy() Strategy {
	lang := sitter.NewLanguage(ruby.Language())
	base := newTreeSitterStrategy(lang, "ruby", rubyDeclKinds, rubyMethodPromote)
	return &genericStrategy{base: base, imports: rubyImports}
}

// rubyImports recognizes require/require_relative method calls, since Ruby
// has no dedicated import grammar node.
func rubyImports(root *sitter.Node, source []byte) []types.ImportEdge {
	var edges []types.ImportEdge
	walkTree(root, func(n *sitter.Node) bool {
		if n.Kind() != "call" {
			return true
		}
		methodNode := n.ChildByFieldName("method")
		if methodNode == nil {
			return true
		}
		name := extractNodeText(methodNode, source)
		if name != "require" && name != "require_relative" {
			return true
		}
		argsNode := n.ChildByFieldName("arguments")
		if argsNode == nil {
			return true
		}
		spec := trimQuotes(extractNodeText(argsNode, source))
		edges = append(edges, types.ImportEdge{Source: spec, Symbols: map[string]struct{}{}})
		return true
	})
	return dedupImports(edges)
}
