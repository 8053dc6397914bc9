package extract

import (
	"strings"

	"github.com/sevenseconds/vibescout/internal/types"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// importFunc walks a parsed root node and returns the ImportEdges it finds.
// Each non-JS tree-sitter strategy supplies its own, since import syntax is
// not uniform across grammars.
type importFunc func(root *sitter.Node, source []byte) []types.ImportEdge

// genericStrategy pairs the shared declaration/chunk walker with a
// language-specific import extractor, and derives Exports as the set of
// named parent blocks — a reasonable stand-in for "declared names" in
// languages without an explicit export keyword (spec.md §4.1 item 5).
type genericStrategy struct {
	base    *treeSitterStrategy
	imports importFunc
}

func (g *genericStrategy) Extract(filePath string, contents []byte) ([]types.Block, Metadata, error) {
	blocks, _, err := g.base.Extract(filePath, contents)
	if err != nil {
		return nil, Metadata{}, err
	}

	meta := Metadata{Exports: topLevelNames(blocks)}

	if g.imports != nil {
		parser := sitter.NewParser()
		defer parser.Close()
		if err := parser.SetLanguage(g.base.language); err == nil {
			if tree := parser.Parse(contents, nil); tree != nil {
				defer tree.Close()
				meta.Imports = g.imports(tree.RootNode(), contents)
			}
		}
	}

	return blocks, meta, nil
}

func topLevelNames(blocks []types.Block) []string {
	var names []string
	for _, b := range blocks {
		if b.Type != types.BlockChunk && b.Name != "" {
			names = append(names, b.Name)
		}
	}
	return names
}

// dedupImports merges edges with identical (source, runtime), unioning
// their symbol sets, per the ImportEdge uniqueness invariant in §3.
func dedupImports(edges []types.ImportEdge) []types.ImportEdge {
	type key struct {
		source  string
		runtime bool
	}
	index := map[key]*types.ImportEdge{}
	var order []key
	for _, e := range edges {
		k := key{e.Source, e.Runtime}
		if existing, ok := index[k]; ok {
			for sym := range e.Symbols {
				existing.Symbols[sym] = struct{}{}
			}
			continue
		}
		copy := e
		if copy.Symbols == nil {
			copy.Symbols = map[string]struct{}{}
		}
		index[k] = &copy
		order = append(order, k)
	}
	out := make([]types.ImportEdge, 0, len(order))
	for _, k := range order {
		out = append(out, *index[k])
	}
	return out
}

func trimQuotes(s string) string {
	return strings.Trim(s, `"'`)
}
