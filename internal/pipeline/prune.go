package pipeline

import (
	"context"
	"path/filepath"
	"strings"
)

// isUnderRoot reports whether path is root itself or nested under it,
// compared as clean absolute paths.
func isUnderRoot(path, root string) bool {
	path = filepath.Clean(path)
	root = filepath.Clean(root)
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}

// pruneMissing implements spec.md §4.7's pruning pass: every fingerprinted
// path under root that is absent from onDisk gets deleteFileData, per the
// "getProjectFiles is project-scoped" resolution in spec.md §9's open
// question (a) — the Hash Store itself stays global; this scoping happens
// at the pipeline layer.
func (p *Pipeline) pruneMissing(ctx context.Context, root string, onDisk map[string]struct{}) (int, error) {
	keys, err := p.hashes.Keys()
	if err != nil {
		return 0, err
	}

	pruned := 0
	for _, k := range keys {
		if !isUnderRoot(k, root) {
			continue
		}
		if _, present := onDisk[k]; present {
			continue
		}
		if err := p.DeleteFileData(ctx, k); err != nil {
			return pruned, err
		}
		pruned++
	}
	return pruned, nil
}

// wipeProject clears every stored vector/dependency row for projectName and
// every fingerprint under root, used by force reindex (spec.md §4.7
// precondition 3) so a forced run re-embeds every file rather than skipping
// on unchanged fingerprints.
func (p *Pipeline) wipeProject(ctx context.Context, projectName, root string) error {
	if err := p.deleteProject(ctx, projectName); err != nil {
		return err
	}

	keys, err := p.hashes.Keys()
	if err != nil {
		return err
	}
	for _, k := range keys {
		if !isUnderRoot(k, root) {
			continue
		}
		if err := p.DeleteFileData(ctx, k); err != nil {
			return err
		}
	}
	return nil
}
