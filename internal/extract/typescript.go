package extract

import (
	"regexp"
	"strings"

	"github.com/sevenseconds/vibescout/internal/types"
	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// tsDeclKinds maps TypeScript/JavaScript declaration node kinds to Block
// types, grounded on internal/indexer/parsers/typescript.go.
var tsDeclKinds = map[string]types.BlockType{
	"class_declaration":            types.BlockClass,
	"interface_declaration":        types.BlockInterface,
	"type_alias_declaration":       types.BlockTypeDecl,
	"function_declaration":         types.BlockFunction,
	"method_definition":            types.BlockMethod,
	"public_field_definition":      types.BlockProperty,
	"abstract_method_signature":    types.BlockMethod,
	"generator_function_declaration": types.BlockFunction,
}

var tsMethodPromote = map[string]bool{
	"function_declaration": true,
}

// NewTypeScriptStrategy parses .ts/.tsx files with the TypeScript grammar.
func NewTypeScriptStrategy() Strategy {
	lang := sitter.NewLanguage(typescript.LanguageTypescript())
	base := newTreeSitterStrategy(lang, "typescript", tsDeclKinds, tsMethodPromote)
	return &jsFamilyStrategy{base: base, language: "typescript"}
}

// NewJavaScriptStrategy parses .js/.jsx files, reusing the TypeScript
// grammar, which is a superset, per internal/indexer/parsers/typescript.go's
// javaScriptParser.
func NewJavaScriptStrategy() Strategy {
	lang := sitter.NewLanguage(typescript.LanguageTypescript())
	base := newTreeSitterStrategy(lang, "javascript", tsDeclKinds, tsMethodPromote)
	return &jsFamilyStrategy{base: base, language: "javascript"}
}

// jsFamilyStrategy wraps treeSitterStrategy to add TS/JS-specific import,
// export, and runtime-registry-import extraction (spec.md §4.1 items 4-6),
// none of which the generic tree-sitter walker can express.
type jsFamilyStrategy struct {
	base     *treeSitterStrategy
	language string
}

func (s *jsFamilyStrategy) Extract(filePath string, contents []byte) ([]types.Block, Metadata, error) {
	blocks, _, err := s.base.Extract(filePath, contents)
	if err != nil {
		return nil, Metadata{}, err
	}

	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(s.base.language); err != nil {
		return blocks, Metadata{}, nil
	}
	tree := parser.Parse(contents, nil)
	if tree == nil {
		return blocks, Metadata{}, nil
	}
	defer tree.Close()

	meta := Metadata{}
	runtimeImports := map[string]*types.ImportEdge{}

	walkTree(tree.RootNode(), func(n *sitter.Node) bool {
		switch n.Kind() {
		case "import_statement":
			if edge, ok := parseImportStatement(n, contents); ok {
				meta.Imports = append(meta.Imports, edge)
			}
		case "export_statement":
			meta.Exports = append(meta.Exports, exportedNames(n, contents)...)
		case "member_expression":
			if edge, ok := runtimeRegistryImport(n, contents); ok {
				if existing, seen := runtimeImports[edge.Source]; seen {
					for sym := range edge.Symbols {
						existing.Symbols[sym] = struct{}{}
					}
				} else {
					runtimeImports[edge.Source] = &edge
				}
				return false // only the outermost app.* chain is recorded
			}
		}
		return true
	})

	for _, edge := range runtimeImports {
		meta.Imports = append(meta.Imports, *edge)
	}

	return blocks, meta, nil
}

func parseImportStatement(n *sitter.Node, source []byte) (types.ImportEdge, bool) {
	sourceNode := n.ChildByFieldName("source")
	if sourceNode == nil {
		return types.ImportEdge{}, false
	}
	spec := strings.Trim(extractNodeText(sourceNode, source), `"'`)
	edge := types.ImportEdge{Source: spec, Symbols: map[string]struct{}{}}

	walkTree(n, func(c *sitter.Node) bool {
		switch c.Kind() {
		case "import_specifier":
			if name := c.ChildByFieldName("alias"); name != nil {
				edge.Symbols[extractNodeText(name, source)] = struct{}{}
			} else if name := c.ChildByFieldName("name"); name != nil {
				edge.Symbols[extractNodeText(name, source)] = struct{}{}
			}
		case "namespace_import":
			edge.Symbols["*"] = struct{}{}
		case "identifier":
			if c.Parent() != nil && c.Parent().Kind() == "import_clause" {
				edge.Symbols[extractNodeText(c, source)] = struct{}{}
			}
		}
		return true
	})
	return edge, true
}

// exportedNames collects the declared or re-exported names of an
// export_statement: the name of its wrapped declaration (class/function/
// interface/type alias), each variable_declarator name for exported
// var/let/const groups, and each `export { a, b as c }` specifier.
func exportedNames(n *sitter.Node, source []byte) []string {
	var names []string

	if decl := n.ChildByFieldName("declaration"); decl != nil {
		if name := decl.ChildByFieldName("name"); name != nil {
			names = append(names, extractNodeText(name, source))
		}
		walkTree(decl, func(c *sitter.Node) bool {
			if c.Kind() == "variable_declarator" {
				if name := c.ChildByFieldName("name"); name != nil {
					names = append(names, extractNodeText(name, source))
				}
			}
			return true
		})
	}

	walkTree(n, func(c *sitter.Node) bool {
		if c.Kind() != "export_specifier" {
			return true
		}
		if alias := c.ChildByFieldName("alias"); alias != nil {
			names = append(names, extractNodeText(alias, source))
		} else if name := c.ChildByFieldName("name"); name != nil {
			names = append(names, extractNodeText(name, source))
		}
		return true
	})

	return names
}

var appChainPrefix = regexp.MustCompile(`^app\.`)

// runtimeRegistryImport recognizes a chained member expression starting
// with "app." that has at least 3 trailing segments, per spec.md §4.1 item
// 6, and synthesizes a runtime ImportEdge for it.
func runtimeRegistryImport(n *sitter.Node, source []byte) (types.ImportEdge, bool) {
	text := extractNodeText(n, source)
	if !appChainPrefix.MatchString(text) {
		return types.ImportEdge{}, false
	}
	// Only the outermost chain counts: a parent that is itself a matching
	// member_expression means this node is an inner link, not the root.
	if p := n.Parent(); p != nil && p.Kind() == "member_expression" && appChainPrefix.MatchString(extractNodeText(p, source)) {
		return types.ImportEdge{}, false
	}

	segments := strings.Split(text, ".")
	// Trailing call-parens or arguments may be attached to the last
	// segment; keep only the identifier-shaped prefix.
	if idx := strings.IndexAny(segments[len(segments)-1], "( "); idx >= 0 {
		segments[len(segments)-1] = segments[len(segments)-1][:idx]
	}
	if len(segments) < 4 { // "app" + >=3 trailing segments
		return types.ImportEdge{}, false
	}

	return types.ImportEdge{
		Source:  strings.Join(segments[1:len(segments)-1], "."),
		Symbols: map[string]struct{}{segments[len(segments)-1]: {}},
		Runtime: true,
	}, true
}
