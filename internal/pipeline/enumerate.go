package pipeline

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sevenseconds/vibescout/internal/config"
	"github.com/sevenseconds/vibescout/internal/ignore"
)

// defaultMaxEnumerateDepth is spec.md §4.7's "bounded-depth glob (depth ≈
// 30)" limit on file enumeration.
const defaultMaxEnumerateDepth = 30

// enumerateFiles walks root to depth maxDepth, returning every file whose
// lowercased extension is in allowedExt and that ig does not ignore. Paths
// are absolute, per spec.md §9's path-normalization design note.
func enumerateFiles(root string, ig *ignore.Engine, allowedExt map[string]struct{}, maxDepth int) ([]string, error) {
	if maxDepth <= 0 {
		maxDepth = defaultMaxEnumerateDepth
	}

	var out []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		if rel == "." {
			return nil
		}
		if depthOf(rel) > maxDepth {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ig.Ignores(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := allowedExt[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func depthOf(rel string) int {
	return strings.Count(filepath.ToSlash(rel), "/") + 1
}

// allowedExtensions unions config.DefaultIndexableExtensions with every
// extension named by a configured fileTypes entry, so custom file-type
// groups extend rather than replace the known-indexable set.
func allowedExtensions(cfg config.IndexingConfig) map[string]struct{} {
	out := make(map[string]struct{}, len(config.DefaultIndexableExtensions))
	for _, ext := range config.DefaultIndexableExtensions {
		out[strings.ToLower(ext)] = struct{}{}
	}
	for _, ft := range cfg.FileTypes {
		for _, ext := range ft.Extensions {
			out[strings.ToLower(ext)] = struct{}{}
		}
	}
	return out
}
