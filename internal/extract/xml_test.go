package extract

import (
	"testing"

	"github.com/sevenseconds/vibescout/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleXML = `<?xml version="1.0"?>
<project>
	<dependencies>
		<dependency>a</dependency>
		<dependency>b</dependency>
	</dependencies>
</project>
`

func TestXMLStrategy_EmitsRootAndDistinctTags(t *testing.T) {
	t.Parallel()

	blocks, _, err := NewXMLStrategy().Extract("pom.xml", []byte(sampleXML))
	require.NoError(t, err)
	require.Len(t, blocks, 4)
	assert.Equal(t, types.BlockDocumentation, blocks[0].Type)

	names := map[string]bool{}
	for _, b := range blocks[1:] {
		names[b.Name] = true
		assert.Equal(t, types.BlockTag, b.Type)
	}
	assert.True(t, names["project"])
	assert.True(t, names["dependencies"])
	assert.True(t, names["dependency"])
}
