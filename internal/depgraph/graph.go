// Package depgraph answers the RPC surface's find_symbol_usages and
// get_file_dependencies queries (spec.md §6) by maintaining an in-memory
// directed graph of import edges as DependencyRecords are written. Not part
// of spec.md's distilled scope — original_source for this system had no
// retrievable files, so this is reconstructed directly from the RPC surface
// spec.md names, grounded on internal/graph/searcher.go's use of
// dominikbraun/graph plus its parallel reverse-index maps.
package depgraph

import (
	"sort"
	"sync"

	"github.com/dominikbraun/graph"

	"github.com/sevenseconds/vibescout/internal/types"
)

// Graph tracks, per project, which files import which, which symbols each
// file exports, and which files reference a symbol by name.
type Graph interface {
	// Record updates the graph for dep.FilePath: its import edges (including
	// runtime registry edges, per C1 item 6) and exported symbol names.
	// Replaces any prior record for the same file.
	Record(dep types.DependencyRecord)

	// Remove drops filePath and every edge touching it, e.g. on file delete.
	Remove(filePath string)

	// FindUsages returns every file that references symbolName, either by
	// directly importing it or by depending (transitively) on a file that
	// exports it.
	FindUsages(symbolName string) []string

	// FileDependencies returns filePath's direct import sources and the
	// files that directly depend on it.
	FileDependencies(filePath string) (dependsOn []string, dependents []string)
}

type fileNode struct {
	path    string
	exports []string
}

type depGraph struct {
	mu sync.RWMutex

	g graph.Graph[string, *fileNode]

	// dependsOn/dependents are the reverse-index maps searcher.go keeps
	// alongside its graph.Graph for O(1) traversal, rather than walking
	// graph.Graph's adjacency structure directly.
	dependsOn  map[string]map[string]struct{} // file -> import sources
	dependents map[string]map[string]struct{} // import source -> dependent files

	exportedBy      map[string]map[string]struct{} // symbol -> exporting files
	directImporters map[string]map[string]struct{} // symbol -> files referencing it directly
}

// New builds an empty dependency graph.
func New() Graph {
	return &depGraph{
		g:               graph.New(func(n *fileNode) string { return n.path }, graph.Directed()),
		dependsOn:       make(map[string]map[string]struct{}),
		dependents:      make(map[string]map[string]struct{}),
		exportedBy:      make(map[string]map[string]struct{}),
		directImporters: make(map[string]map[string]struct{}),
	}
}

func (dg *depGraph) ensureVertex(path string) {
	if _, err := dg.g.Vertex(path); err != nil {
		_ = dg.g.AddVertex(&fileNode{path: path})
	}
}

func (dg *depGraph) Record(dep types.DependencyRecord) {
	dg.mu.Lock()
	defer dg.mu.Unlock()

	dg.removeLocked(dep.FilePath)

	dg.ensureVertex(dep.FilePath)
	dg.dependsOn[dep.FilePath] = make(map[string]struct{})

	for _, imp := range dep.Imports {
		dg.ensureVertex(imp.Source)
		_ = dg.g.AddEdge(dep.FilePath, imp.Source)

		dg.dependsOn[dep.FilePath][imp.Source] = struct{}{}
		if dg.dependents[imp.Source] == nil {
			dg.dependents[imp.Source] = make(map[string]struct{})
		}
		dg.dependents[imp.Source][dep.FilePath] = struct{}{}

		for symbol := range imp.Symbols {
			if dg.directImporters[symbol] == nil {
				dg.directImporters[symbol] = make(map[string]struct{})
			}
			dg.directImporters[symbol][dep.FilePath] = struct{}{}
		}
	}

	if len(dep.Exports) > 0 {
		if node, err := dg.g.Vertex(dep.FilePath); err == nil {
			node.exports = dep.Exports
		}
		for _, symbol := range dep.Exports {
			if dg.exportedBy[symbol] == nil {
				dg.exportedBy[symbol] = make(map[string]struct{})
			}
			dg.exportedBy[symbol][dep.FilePath] = struct{}{}
		}
	}
}

func (dg *depGraph) Remove(filePath string) {
	dg.mu.Lock()
	defer dg.mu.Unlock()
	dg.removeLocked(filePath)
}

func (dg *depGraph) removeLocked(filePath string) {
	for source := range dg.dependsOn[filePath] {
		delete(dg.dependents[source], filePath)
		_ = dg.g.RemoveEdge(filePath, source)
	}
	delete(dg.dependsOn, filePath)

	for symbol, importers := range dg.directImporters {
		delete(importers, filePath)
		if len(importers) == 0 {
			delete(dg.directImporters, symbol)
		}
	}
	for symbol, exporters := range dg.exportedBy {
		delete(exporters, filePath)
		if len(exporters) == 0 {
			delete(dg.exportedBy, symbol)
		}
	}
	_ = dg.g.RemoveVertex(filePath)
}

// FindUsages returns the union of direct-reference importers and every file
// that transitively depends on a file exporting symbolName, found via a
// breadth-first walk over dg.dependents (the reverse-edge map).
func (dg *depGraph) FindUsages(symbolName string) []string {
	dg.mu.RLock()
	defer dg.mu.RUnlock()

	seen := make(map[string]struct{})
	for f := range dg.directImporters[symbolName] {
		seen[f] = struct{}{}
	}

	var queue []string
	for f := range dg.exportedBy[symbolName] {
		queue = append(queue, f)
	}
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		for dependent := range dg.dependents[f] {
			if _, ok := seen[dependent]; ok {
				continue
			}
			seen[dependent] = struct{}{}
			queue = append(queue, dependent)
		}
	}

	out := make([]string, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func (dg *depGraph) FileDependencies(filePath string) ([]string, []string) {
	dg.mu.RLock()
	defer dg.mu.RUnlock()

	dependsOn := make([]string, 0, len(dg.dependsOn[filePath]))
	for s := range dg.dependsOn[filePath] {
		dependsOn = append(dependsOn, s)
	}
	sort.Strings(dependsOn)

	dependents := make([]string, 0, len(dg.dependents[filePath]))
	for d := range dg.dependents[filePath] {
		dependents = append(dependents, d)
	}
	sort.Strings(dependents)

	return dependsOn, dependents
}
