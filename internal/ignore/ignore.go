// Package ignore composes gitignore-style matchers from multiple well-known
// ignore files and produces both a matcher and a set of glob traversal
// patterns that can prune filesystem walks cheaply.
package ignore

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// recognizedIgnoreFiles lists the ignore files loaded, in order, from a
// project root, per spec.md §4.12.
var recognizedIgnoreFiles = []string{
	".gitignore",
	".vibeignore",
	".vibescoutignore",
	".cursorignore",
	".aiderignore",
	".codeiumignore",
	".clineignore",
}

// defaultPatterns are always active, independent of any ignore file.
var defaultPatterns = []string{
	".git", "node_modules", "dist", "build", ".vibescout", ".lancedb",
	"package-lock.json", "yarn.lock", "pnpm-lock.yaml",
}

// Engine is the composed matcher + traversal pattern list for one project root.
type Engine struct {
	root     string
	patterns []string // raw, gitignore-syntax patterns in load order
	matchers []glob.Glob
}

// Load builds an Engine for the given project root, reading every recognized
// ignore file that exists there, per spec.md §4.12.
func Load(root string) (*Engine, error) {
	e := &Engine{root: root}

	for _, p := range defaultPatterns {
		if err := e.add(p); err != nil {
			return nil, err
		}
	}

	for _, name := range recognizedIgnoreFiles {
		path := filepath.Join(root, name)
		lines, err := readLines(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		for _, line := range lines {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			if err := e.add(line); err != nil {
				// A malformed pattern is skipped rather than aborting the
				// whole load; the rest of the file still composes.
				continue
			}
		}
	}

	return e, nil
}

func (e *Engine) add(pattern string) error {
	g, err := glob.Compile(toMatchGlob(pattern), '/')
	if err != nil {
		return err
	}
	e.patterns = append(e.patterns, pattern)
	e.matchers = append(e.matchers, g)
	return nil
}

// toMatchGlob adapts a gitignore-syntax line into a gobwas/glob pattern
// matched against a file's path relative to the project root.
func toMatchGlob(pattern string) string {
	trimmed := strings.TrimSuffix(pattern, "/")
	if strings.Contains(trimmed, "/") || strings.Contains(trimmed, "*") {
		if !strings.HasPrefix(trimmed, "**/") && !strings.HasPrefix(trimmed, "/") {
			return "**/" + trimmed + "{,/**}"
		}
		return strings.TrimPrefix(trimmed, "/") + "{,/**}"
	}
	return "**/" + trimmed + "{,/**}"
}

// Ignores reports whether relPath (slash-separated, relative to the project
// root) matches any composed ignore pattern.
func (e *Engine) Ignores(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	// "**/name" patterns need a "/" before the name, so each matcher is also
	// tried against "/"+relPath to catch entries at the project root.
	rooted := "/" + relPath
	for _, m := range e.matchers {
		if m.Match(relPath) || m.Match(rooted) {
			return true
		}
	}
	return false
}

// TraversalPatterns returns glob patterns suitable for pruning a filesystem
// walk before a full ignore-match check, per spec.md §4.12's translation
// rules: a bare name becomes "**/name" (plus "**/name/**" when it has no
// wildcard or extension); a pattern with "/" becomes "**/pattern" (plus
// "/**" for directory-shaped patterns); an already-prefixed "**/" pattern is
// left as-is.
func (e *Engine) TraversalPatterns() []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	for _, raw := range e.patterns {
		p := strings.TrimSuffix(raw, "/")
		isDirShaped := strings.HasSuffix(raw, "/") || looksLikeDotDir(p)

		switch {
		case strings.HasPrefix(p, "**/"):
			add(p)
			if isDirShaped {
				add(p + "/**")
			}
		case strings.Contains(p, "/"):
			add("**/" + p)
			if isDirShaped {
				add("**/" + p + "/**")
			}
		default:
			add("**/" + p)
			if !strings.ContainsAny(p, "*?[") && filepath.Ext(p) == "" {
				add("**/" + p + "/**")
			}
			if isDirShaped {
				add("**/" + p + "/**")
			}
		}
	}
	return out
}

func looksLikeDotDir(p string) bool {
	base := filepath.Base(p)
	return strings.HasPrefix(base, ".") && filepath.Ext(base) == ""
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}
