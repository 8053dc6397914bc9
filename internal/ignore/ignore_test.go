package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeIgnoreFile(t *testing.T, root, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(body), 0o644))
}

func TestLoad_GitignorePattern(t *testing.T) {
	root := t.TempDir()
	writeIgnoreFile(t, root, ".gitignore", "ignored.ts\n")

	eng, err := Load(root)
	require.NoError(t, err)

	assert.True(t, eng.Ignores("ignored.ts"))
	assert.False(t, eng.Ignores("included.ts"))
}

func TestLoad_VibeignorePattern(t *testing.T) {
	root := t.TempDir()
	writeIgnoreFile(t, root, ".vibeignore", "ignored.ts\n")

	eng, err := Load(root)
	require.NoError(t, err)

	assert.True(t, eng.Ignores("ignored.ts"))
}

func TestLoad_VibescoutignorePattern(t *testing.T) {
	root := t.TempDir()
	writeIgnoreFile(t, root, ".vibescoutignore", "ignored.ts\n")

	eng, err := Load(root)
	require.NoError(t, err)

	assert.True(t, eng.Ignores("ignored.ts"))
}

func TestLoad_CursorignorePattern(t *testing.T) {
	root := t.TempDir()
	writeIgnoreFile(t, root, ".cursorignore", "ignored.ts\n")

	eng, err := Load(root)
	require.NoError(t, err)

	assert.True(t, eng.Ignores("ignored.ts"))
}

func TestLoad_DefaultPatternsAlwaysActive(t *testing.T) {
	root := t.TempDir()
	eng, err := Load(root)
	require.NoError(t, err)

	assert.True(t, eng.Ignores("node_modules/pkg/index.js"))
	assert.True(t, eng.Ignores(".git/HEAD"))
}

func TestLoad_SkipsCommentsAndBlankLines(t *testing.T) {
	root := t.TempDir()
	writeIgnoreFile(t, root, ".gitignore", "# comment\n\nignored.ts\n")

	eng, err := Load(root)
	require.NoError(t, err)

	assert.True(t, eng.Ignores("ignored.ts"))
}

func TestLoad_NestedPathPattern(t *testing.T) {
	root := t.TempDir()
	writeIgnoreFile(t, root, ".gitignore", "build/output\n")

	eng, err := Load(root)
	require.NoError(t, err)

	assert.True(t, eng.Ignores("build/output"))
	assert.True(t, eng.Ignores("sub/build/output"))
}

func TestTraversalPatterns_BareNameYieldsBothForms(t *testing.T) {
	root := t.TempDir()
	writeIgnoreFile(t, root, ".gitignore", "vendor\n")

	eng, err := Load(root)
	require.NoError(t, err)

	patterns := eng.TraversalPatterns()
	assert.Contains(t, patterns, "**/vendor")
	assert.Contains(t, patterns, "**/vendor/**")
}

func TestTraversalPatterns_AlreadyPrefixedLeftAsIs(t *testing.T) {
	root := t.TempDir()
	writeIgnoreFile(t, root, ".gitignore", "**/*.log\n")

	eng, err := Load(root)
	require.NoError(t, err)

	assert.Contains(t, eng.TraversalPatterns(), "**/*.log")
}
