package extract

import (
	"bytes"
	"encoding/xml"
	"sort"
	"strings"

	"github.com/sevenseconds/vibescout/internal/types"
)

// xmlStrategy emits a root documentation block plus one tag block per
// distinct top-level tag name. There is no XML parsing library anywhere in
// the retrieval pack, so this is the one stdlib-justified strategy — see
// DESIGN.md.
type xmlStrategy struct{}

// NewXMLStrategy returns the Strategy for .xml files.
func NewXMLStrategy() Strategy {
	return &xmlStrategy{}
}

func (xmlStrategy) Extract(filePath string, contents []byte) ([]types.Block, Metadata, error) {
	lines := strings.Split(string(contents), "\n")
	root := types.Block{
		Type:      types.BlockDocumentation,
		Category:  types.CategoryDocumentation,
		StartLine: 1,
		EndLine:   len(lines),
		Content:   string(contents),
		FilePath:  filePath,
	}
	blocks := []types.Block{root}

	seen := map[string]struct{}{}
	decoder := xml.NewDecoder(bytes.NewReader(contents))
	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		seen[start.Name.Local] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		blocks = append(blocks, types.Block{
			Name:      name,
			Type:      types.BlockTag,
			Category:  types.CategoryDocumentation,
			StartLine: 1,
			EndLine:   1,
			FilePath:  filePath,
		})
	}

	return blocks, Metadata{}, nil
}
