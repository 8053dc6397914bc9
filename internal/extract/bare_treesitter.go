package extract

import (
	"context"
	"fmt"
	"strings"

	forest "github.com/alexaandru/go-sitter-forest"
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/sevenseconds/vibescout/internal/types"
)

// bareTreeSitterStrategy covers grammars absent from the official
// tree-sitter/go-tree-sitter bindings (Kotlin, Dart) via
// alexaandru/go-sitter-forest + alexaandru/go-tree-sitter-bare. It runs the
// same named-declaration/chunk algorithm as treeSitterStrategy against a
// smaller per-language node-kind table, and does not attempt comment or
// import extraction — those grammars' node shapes were not worth
// hand-mapping for two secondary languages. Exports are the names of the
// emitted top-level declaration blocks.
type bareTreeSitterStrategy struct {
	lang      string
	language  *sitter.Language
	declKinds map[string]types.BlockType
}

func newBareTreeSitterStrategy(langName string, declKinds map[string]types.BlockType) *bareTreeSitterStrategy {
	return &bareTreeSitterStrategy{lang: langName, language: forest.GetLanguage(langName), declKinds: declKinds}
}

func (s *bareTreeSitterStrategy) Extract(filePath string, contents []byte) ([]types.Block, Metadata, error) {
	if s.language == nil {
		return nil, Metadata{}, fmt.Errorf("extract: %s grammar unavailable", s.lang)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(s.language)

	tree, err := parser.ParseString(context.Background(), nil, contents)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("extract: failed to parse %s file %s: %w", s.lang, filePath, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.IsNull() {
		return nil, Metadata{}, fmt.Errorf("extract: empty parse tree for %s", filePath)
	}

	lines := strings.Split(string(contents), "\n")
	var blocks []types.Block
	s.walk(root, contents, lines, filePath, &blocks)

	return blocks, Metadata{Exports: topLevelNames(blocks)}, nil
}

func (s *bareTreeSitterStrategy) walk(n sitter.Node, source []byte, lines []string, filePath string, blocks *[]types.Block) {
	if blockType, ok := s.declKinds[n.Type()]; ok {
		b := s.buildBlock(n, blockType, source, lines, filePath)
		*blocks = append(*blocks, b)
		if body, first := bodyLinesOf(lines, b.StartLine, b.EndLine); body != nil {
			*blocks = append(*blocks, chunkParentBody(b, body, first)...)
		}
	}
	for idx := range n.NamedChildCount() {
		s.walk(n.NamedChild(idx), source, lines, filePath, blocks)
	}
}

func (s *bareTreeSitterStrategy) buildBlock(n sitter.Node, blockType types.BlockType, source []byte, lines []string, filePath string) types.Block {
	name := ""
	if nameNode := n.ChildByFieldName("name"); !nameNode.IsNull() {
		name = string(source[nameNode.StartByte():nameNode.EndByte()])
	}
	startLine := int(n.StartPoint().Row) + 1
	endLine := int(n.EndPoint().Row) + 1

	return types.Block{
		Name:      name,
		Type:      blockType,
		Category:  types.CategoryCode,
		StartLine: startLine,
		EndLine:   endLine,
		Content:   extractLines(lines, startLine, endLine),
		FilePath:  filePath,
	}
}

var kotlinDeclKinds = map[string]types.BlockType{
	"class_declaration":    types.BlockClass,
	"object_declaration":   types.BlockClass,
	"function_declaration": types.BlockFunction,
	"property_declaration": types.BlockProperty,
}

// NewKotlinStrategy parses .kt/.kts files via go-sitter-forest's bundled
// Kotlin grammar.
func NewKotlinStrategy() Strategy {
	return newBareTreeSitterStrategy("kotlin", kotlinDeclKinds)
}

var dartDeclKinds = map[string]types.BlockType{
	"class_definition":    types.BlockClass,
	"mixin_declaration":   types.BlockClass,
	"function_signature":  types.BlockFunction,
	"method_signature":    types.BlockMethod,
}

// NewDartStrategy parses .dart files via go-sitter-forest's bundled Dart
// grammar.
func NewDartStrategy() Strategy {
	return newBareTreeSitterStrategy("dart", dartDeclKinds)
}
