// Package extract dispatches source files to per-language strategies that
// turn raw file contents into a uniform set of Blocks plus an import/export
// metadata record.
package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sevenseconds/vibescout/internal/types"
)

// Metadata is the import/export record a Strategy produces alongside Blocks.
type Metadata struct {
	Imports []types.ImportEdge
	Exports []string
}

// Strategy turns one file's contents into Blocks plus Metadata. A Strategy
// must not mutate contents.
type Strategy interface {
	Extract(filePath string, contents []byte) ([]types.Block, Metadata, error)
}

// Registry dispatches a file to the Strategy registered for its lowercased
// extension, falling back to a whole-file Block when no strategy claims the
// extension or the claimed strategy fails.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry returns an empty Registry. Strategies are added with Register.
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]Strategy)}
}

// Register claims a set of lowercased extensions (including the leading
// dot, e.g. ".ts") for a Strategy. A later Register for an already-claimed
// extension overwrites the earlier one.
func (r *Registry) Register(exts []string, s Strategy) {
	for _, ext := range exts {
		r.strategies[strings.ToLower(ext)] = s
	}
}

// Extract dispatches filePath to its claimed strategy. A strategy error or
// panic, or an unclaimed extension, yields the whole-file fallback Block and
// an empty Metadata record — extraction never aborts the pipeline for one
// file.
func (r *Registry) Extract(filePath string, contents []byte) (blocks []types.Block, meta Metadata) {
	ext := strings.ToLower(filepath.Ext(filePath))
	s, ok := r.strategies[ext]
	if !ok {
		return wholeFileBlock(filePath, contents), Metadata{}
	}

	blocks, meta, err := runStrategy(s, filePath, contents)
	if err != nil {
		return wholeFileBlock(filePath, contents), Metadata{}
	}
	return blocks, meta
}

func runStrategy(s Strategy, filePath string, contents []byte) (blocks []types.Block, meta Metadata, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("extract: strategy panicked on %s: %v", filePath, p)
		}
	}()
	return s.Extract(filePath, contents)
}

// wholeFileBlock is the universal fallback: a single Block spanning the
// entire file with no parsed structure.
func wholeFileBlock(filePath string, contents []byte) []types.Block {
	content := string(contents)
	lines := strings.Split(content, "\n")
	return []types.Block{{
		Name:      filepath.Base(filePath),
		Type:      types.BlockFile,
		Category:  types.CategoryCode,
		StartLine: 1,
		EndLine:   len(lines),
		Content:   content,
		FilePath:  filePath,
	}}
}
