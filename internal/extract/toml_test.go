package extract

import (
	"testing"

	"github.com/sevenseconds/vibescout/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTOML = `
title = "vibescout"

[package]
name = "vibescout"

[dependencies]
otter = "1.2.4"
`

func TestTOMLStrategy_EmitsRootAndTopLevelTables(t *testing.T) {
	t.Parallel()

	blocks, _, err := NewTOMLStrategy().Extract("Cargo.toml", []byte(sampleTOML))
	require.NoError(t, err)
	require.Len(t, blocks, 3)
	assert.Equal(t, types.BlockDocumentation, blocks[0].Type)
	assert.Equal(t, "dependencies", blocks[1].Name)
	assert.Equal(t, "package", blocks[2].Name)
	assert.Equal(t, types.BlockTable, blocks[1].Type)
}
