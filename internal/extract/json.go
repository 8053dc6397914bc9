package extract

import (
	"strings"

	"github.com/buger/jsonparser"
	"github.com/sevenseconds/vibescout/internal/types"
)

// jsonStrategy emits a root documentation block plus one key_pair block per
// deduplicated top-level key, per spec.md §4.1 item 8. It walks the raw
// bytes with jsonparser.ObjectEach instead of unmarshalling into a generic
// map, avoiding an allocation proportional to the whole document just to
// learn the top-level key names.
type jsonStrategy struct{}

// NewJSONStrategy returns the Strategy for .json files.
func NewJSONStrategy() Strategy {
	return &jsonStrategy{}
}

func (jsonStrategy) Extract(filePath string, contents []byte) ([]types.Block, Metadata, error) {
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
	_ = jsonparser.ObjectEach(contents, func(key, value []byte, dataType jsonparser.ValueType, offset int) error {
		name := string(key)
		if _, ok := seen[name]; ok {
			return nil
		}
		seen[name] = struct{}{}
		blocks = append(blocks, types.Block{
			Name:      name,
			Type:      types.BlockKeyPair,
			Category:  types.CategoryDocumentation,
			StartLine: 1,
			EndLine:   1,
			Content:   string(value),
			FilePath:  filePath,
		})
		return nil
	})

	return blocks, Metadata{}, nil
}
