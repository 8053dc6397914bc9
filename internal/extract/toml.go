package extract

import (
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/sevenseconds/vibescout/internal/types"
)

// tomlStrategy emits a root documentation block plus one table block per
// top-level TOML table, grounded on go-toml/v2's Unmarshal-to-map usage in
// internal/config/build_artifact_detector.go (standardbeagle-lci).
type tomlStrategy struct{}

// NewTOMLStrategy returns the Strategy for .toml files.
func NewTOMLStrategy() Strategy {
	return &tomlStrategy{}
}

func (tomlStrategy) Extract(filePath string, contents []byte) ([]types.Block, Metadata, error) {
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

	var doc map[string]any
	if err := toml.Unmarshal(contents, &doc); err != nil {
		return blocks, Metadata{}, nil
	}

	names := make([]string, 0, len(doc))
	for name, value := range doc {
		if _, isTable := value.(map[string]any); isTable {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		blocks = append(blocks, types.Block{
			Name:      name,
			Type:      types.BlockTable,
			Category:  types.CategoryDocumentation,
			StartLine: 1,
			EndLine:   1,
			FilePath:  filePath,
		})
	}

	return blocks, Metadata{}, nil
}
