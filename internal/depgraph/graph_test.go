package depgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sevenseconds/vibescout/internal/types"
)

func TestGraph_FindUsagesDirectImport(t *testing.T) {
	t.Parallel()
	g := New()

	g.Record(types.DependencyRecord{
		FilePath: "a.go",
		Imports: []types.ImportEdge{
			{Source: "fmt", Symbols: map[string]struct{}{"Println": {}}},
		},
	})

	usages := g.FindUsages("Println")
	assert.Equal(t, []string{"a.go"}, usages)
}

func TestGraph_FindUsagesTransitiveDependent(t *testing.T) {
	t.Parallel()
	g := New()

	g.Record(types.DependencyRecord{FilePath: "lib.go", Exports: []string{"Helper"}})
	g.Record(types.DependencyRecord{
		FilePath: "mid.go",
		Imports:  []types.ImportEdge{{Source: "lib.go"}},
	})
	g.Record(types.DependencyRecord{
		FilePath: "top.go",
		Imports:  []types.ImportEdge{{Source: "mid.go"}},
	})

	usages := g.FindUsages("Helper")
	assert.ElementsMatch(t, []string{"mid.go", "top.go"}, usages)
}

func TestGraph_FileDependencies(t *testing.T) {
	t.Parallel()
	g := New()

	g.Record(types.DependencyRecord{FilePath: "lib.go"})
	g.Record(types.DependencyRecord{
		FilePath: "a.go",
		Imports:  []types.ImportEdge{{Source: "lib.go"}},
	})

	dependsOn, dependents := g.FileDependencies("a.go")
	assert.Equal(t, []string{"lib.go"}, dependsOn)
	assert.Empty(t, dependents)

	_, libDependents := g.FileDependencies("lib.go")
	assert.Equal(t, []string{"a.go"}, libDependents)
}

func TestGraph_RemoveDropsEdgesAndExports(t *testing.T) {
	t.Parallel()
	g := New()

	g.Record(types.DependencyRecord{FilePath: "lib.go", Exports: []string{"Helper"}})
	g.Record(types.DependencyRecord{
		FilePath: "a.go",
		Imports:  []types.ImportEdge{{Source: "lib.go", Symbols: map[string]struct{}{"Helper": {}}}},
	})

	g.Remove("a.go")

	assert.Empty(t, g.FindUsages("Helper"))
	_, libDependents := g.FileDependencies("lib.go")
	assert.Empty(t, libDependents)
}

func TestGraph_RecordReplacesPriorEdgesForSameFile(t *testing.T) {
	t.Parallel()
	g := New()

	g.Record(types.DependencyRecord{
		FilePath: "a.go",
		Imports:  []types.ImportEdge{{Source: "old.go"}},
	})
	g.Record(types.DependencyRecord{
		FilePath: "a.go",
		Imports:  []types.ImportEdge{{Source: "new.go"}},
	})

	dependsOn, _ := g.FileDependencies("a.go")
	assert.Equal(t, []string{"new.go"}, dependsOn)
}
