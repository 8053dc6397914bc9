package extract

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strings"

	"github.com/sevenseconds/vibescout/internal/types"
)

// goStrategy parses .go files with the standard library's own parser
// instead of tree-sitter, generalizing internal/graph/extractor.go from
// graph-node emission to spec Block emission.
type goStrategy struct{}

// NewGoStrategy returns the Go-language extractor Strategy.
func NewGoStrategy() Strategy {
	return &goStrategy{}
}

func (goStrategy) Extract(filePath string, contents []byte) ([]types.Block, Metadata, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filePath, contents, parser.ParseComments)
	if err != nil {
		return nil, Metadata{}, err
	}

	lines := strings.Split(string(contents), "\n")
	var blocks []types.Block
	meta := Metadata{}

	for _, imp := range file.Imports {
		spec := strings.Trim(imp.Path.Value, `"`)
		symbols := map[string]struct{}{}
		if imp.Name != nil {
			symbols[imp.Name.Name] = struct{}{}
		}
		meta.Imports = append(meta.Imports, types.ImportEdge{Source: spec, Symbols: symbols})
	}
	meta.Imports = dedupImports(meta.Imports)

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			blocks = append(blocks, goGenDeclBlocks(d, fset, lines, filePath)...)
		case *ast.FuncDecl:
			if b, ok := goFuncBlock(d, fset, lines, filePath); ok {
				blocks = append(blocks, b)
				if body, first := bodyLinesOf(lines, b.StartLine, b.EndLine); body != nil {
					blocks = append(blocks, chunkParentBody(b, body, first)...)
				}
			}
		}
	}

	meta.Exports = topLevelNames(blocks)
	return blocks, meta, nil
}

func goGenDeclBlocks(d *ast.GenDecl, fset *token.FileSet, lines []string, filePath string) []types.Block {
	var blocks []types.Block
	for _, spec := range d.Specs {
		ts, ok := spec.(*ast.TypeSpec)
		if !ok {
			continue
		}
		blockType := types.BlockTypeDecl
		switch ts.Type.(type) {
		case *ast.StructType:
			blockType = types.BlockTypeDecl
		case *ast.InterfaceType:
			blockType = types.BlockInterface
		}

		startLine := fset.Position(spec.Pos()).Line
		endLine := fset.Position(spec.End()).Line
		b := types.Block{
			Name:      ts.Name.Name,
			Type:      blockType,
			Category:  types.CategoryCode,
			StartLine: startLine,
			EndLine:   endLine,
			Comments:  docText(d.Doc, ts.Doc),
			Content:   extractLines(lines, startLine, endLine),
			FilePath:  filePath,
		}
		blocks = append(blocks, b)
		if body, first := bodyLinesOf(lines, b.StartLine, b.EndLine); body != nil {
			blocks = append(blocks, chunkParentBody(b, body, first)...)
		}
	}
	return blocks
}

func goFuncBlock(d *ast.FuncDecl, fset *token.FileSet, lines []string, filePath string) (types.Block, bool) {
	if d.Name == nil {
		return types.Block{}, false
	}
	blockType := types.BlockFunction
	if d.Recv != nil && len(d.Recv.List) > 0 {
		blockType = types.BlockMethod
	}

	startLine := fset.Position(d.Pos()).Line
	endLine := fset.Position(d.End()).Line
	return types.Block{
		Name:      d.Name.Name,
		Type:      blockType,
		Category:  types.CategoryCode,
		StartLine: startLine,
		EndLine:   endLine,
		Comments:  docText(d.Doc, nil),
		Content:   extractLines(lines, startLine, endLine),
		FilePath:  filePath,
	}, true
}

func docText(groups ...*ast.CommentGroup) string {
	for _, g := range groups {
		if g != nil {
			return strings.TrimSpace(g.Text())
		}
	}
	return ""
}
