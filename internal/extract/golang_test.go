package extract

import (
	"testing"

	"github.com/sevenseconds/vibescout/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleGoSource = `package sample

import (
	"fmt"
	alias "strings"
)

// Greeter says hello.
type Greeter struct {
	Name string
}

// Greet returns a greeting.
func (g *Greeter) Greet() string {
	return fmt.Sprintf("hello %s", g.Name)
}

func Standalone() int {
	return 1
}
`

func TestGoStrategy_ExtractsTypesAndFunctions(t *testing.T) {
	t.Parallel()

	blocks, meta, err := NewGoStrategy().Extract("sample.go", []byte(sampleGoSource))
	require.NoError(t, err)

	var greeter, greet, standalone *types.Block
	for i := range blocks {
		switch blocks[i].Name {
		case "Greeter":
			greeter = &blocks[i]
		case "Greet":
			greet = &blocks[i]
		case "Standalone":
			standalone = &blocks[i]
		}
	}

	require.NotNil(t, greeter)
	assert.Equal(t, types.BlockTypeDecl, greeter.Type)

	require.NotNil(t, greet)
	assert.Equal(t, types.BlockMethod, greet.Type)
	assert.Equal(t, "Greet returns a greeting.", greet.Comments)

	require.NotNil(t, standalone)
	assert.Equal(t, types.BlockFunction, standalone.Type)

	require.Len(t, meta.Imports, 2)
	var sawAlias bool
	for _, imp := range meta.Imports {
		if imp.Source == "strings" {
			_, sawAlias = imp.Symbols["alias"]
		}
	}
	assert.True(t, sawAlias)
}

func TestGoStrategy_InvalidSyntaxReturnsError(t *testing.T) {
	t.Parallel()

	_, _, err := NewGoStrategy().Extract("broken.go", []byte("package sample\nfunc ( {"))
	assert.Error(t, err)
}
