package extract

import (
	"fmt"
	"strings"

	"github.com/sevenseconds/vibescout/internal/types"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// classKinds are node kinds that make a nested function/method-shaped
// declaration a method rather than a free function, per spec.md §4.1 item 1
// ("a declaration qualifies as a method iff it is lexically nested inside a
// class body").
var classKinds = map[string]bool{
	"class_declaration":     true,
	"class_definition":      true,
	"class_body":            true,
	"struct_item":           true,
	"impl_item":             true,
	"trait_item":            true,
	"interface_declaration": true,
}

// treeSitterStrategy is the shared machinery behind every tree-sitter-backed
// Strategy: parse with the given language, walk the tree for a table of
// named-declaration node kinds, and emit parent/chunk Blocks uniformly.
// Grounded on internal/indexer/parsers/treesitter.go and typescript.go.
type treeSitterStrategy struct {
	language *sitter.Language
	lang     string
	// declKinds maps a tree-sitter node kind to the Block type it produces
	// when the declaration is NOT nested in a class body.
	declKinds map[string]types.BlockType
	// methodPromote lists declKinds entries promoted to BlockMethod when
	// lexically nested inside a classKinds ancestor.
	methodPromote map[string]bool
	// commentKinds are the node kinds treated as a "comment" sibling for
	// preceding-comment accumulation.
	commentKinds map[string]bool
}

func newTreeSitterStrategy(language *sitter.Language, lang string, declKinds map[string]types.BlockType, methodPromote map[string]bool) *treeSitterStrategy {
	return &treeSitterStrategy{
		language:      language,
		lang:          lang,
		declKinds:     declKinds,
		methodPromote: methodPromote,
		commentKinds:  map[string]bool{"comment": true, "line_comment": true, "block_comment": true},
	}
}

func (s *treeSitterStrategy) Extract(filePath string, contents []byte) ([]types.Block, Metadata, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(s.language); err != nil {
		return nil, Metadata{}, fmt.Errorf("extract: set language %s: %w", s.lang, err)
	}

	tree := parser.Parse(contents, nil)
	if tree == nil {
		return nil, Metadata{}, fmt.Errorf("extract: failed to parse %s file %s", s.lang, filePath)
	}
	defer tree.Close()

	root := tree.RootNode()
	lines := strings.Split(string(contents), "\n")

	var blocks []types.Block
	walkTree(root, func(n *sitter.Node) bool {
		blockType, ok := s.declKinds[n.Kind()]
		if !ok {
			return true
		}
		if s.methodPromote[n.Kind()] && s.nestedInClass(n) {
			blockType = types.BlockMethod
		}
		b := s.buildBlock(n, blockType, contents, lines, filePath)
		blocks = append(blocks, b)
		if body, first := bodyLinesOf(lines, b.StartLine, b.EndLine); body != nil {
			blocks = append(blocks, chunkParentBody(b, body, first)...)
		}
		return true
	})

	return blocks, Metadata{}, nil
}

// nestedInClass reports whether any ancestor of n is a class-shaped node.
func (s *treeSitterStrategy) nestedInClass(n *sitter.Node) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if classKinds[p.Kind()] {
			return true
		}
	}
	return false
}

func (s *treeSitterStrategy) buildBlock(n *sitter.Node, blockType types.BlockType, source []byte, lines []string, filePath string) types.Block {
	name := declName(n, source)
	startLine := int(n.StartPosition().Row) + 1
	endLine := int(n.EndPosition().Row) + 1

	return types.Block{
		Name:      name,
		Type:      blockType,
		Category:  types.CategoryCode,
		StartLine: startLine,
		EndLine:   endLine,
		Comments:  s.precedingComments(n, source),
		Content:   extractLines(lines, startLine, endLine),
		FilePath:  filePath,
	}
}

// precedingComments walks previous siblings accumulating consecutive
// comment nodes (reverse chronological in source order is restored before
// returning), per spec.md §4.1 item 2. If n's parent is an export wrapper,
// comments attached to the wrapper count instead.
func (s *treeSitterStrategy) precedingComments(n *sitter.Node, source []byte) string {
	target := n
	if p := n.Parent(); p != nil && strings.Contains(p.Kind(), "export") {
		target = p
	}

	var reversed []string
	for sib := target.PrevSibling(); sib != nil; sib = sib.PrevSibling() {
		if !s.commentKinds[sib.Kind()] {
			break
		}
		reversed = append(reversed, extractNodeText(sib, source))
	}
	if len(reversed) == 0 {
		return ""
	}
	out := make([]string, len(reversed))
	for i, c := range reversed {
		out[len(reversed)-1-i] = c
	}
	return strings.Join(out, "\n")
}

// declName extracts a declaration's name via the conventional "name" field,
// falling back to the empty string when the grammar has no such field.
func declName(n *sitter.Node, source []byte) string {
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		return extractNodeText(nameNode, source)
	}
	return ""
}

func extractNodeText(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	return string(source[n.StartByte():n.EndByte()])
}

func extractLines(lines []string, startLine, endLine int) string {
	if startLine < 1 || endLine < 1 || startLine > len(lines) {
		return ""
	}
	start := startLine - 1
	end := endLine
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start:end], "\n")
}

func walkTree(n *sitter.Node, visit func(*sitter.Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		walkTree(n.Child(i), visit)
	}
}
