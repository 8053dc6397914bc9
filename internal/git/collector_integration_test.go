package git

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevenseconds/vibescout/internal/types"
)

// Integration tests run actual git commands against a scratch repo; no
// t.Parallel(), matching operations_integration_test.go's sequencing note.

func TestCollector_IsGitRepo(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	defer c.Close()

	repo := createTestGitRepo(t)
	assert.True(t, c.IsGitRepo(repo))
	assert.False(t, c.IsGitRepo(t.TempDir()))
}

func TestCollector_CollectSmallSetUsesPerFileStrategy(t *testing.T) {
	repo := createTestGitRepo(t)
	filePath := filepath.Join(repo, "README.md")

	c, err := New()
	require.NoError(t, err)
	defer c.Close()

	got, err := c.Collect(context.Background(), repo, []string{filePath}, 6)
	require.NoError(t, err)
	require.Contains(t, got, filePath)
	assert.Equal(t, "Test User", got[filePath].LastCommitAuthor)
	assert.Equal(t, "test@example.com", got[filePath].LastCommitEmail)
	assert.Equal(t, types.ChurnLow, got[filePath].ChurnLevel)
}

func TestCollector_CollectBulkStrategyOverThreshold(t *testing.T) {
	repo := createTestGitRepo(t)

	var paths []string
	for i := 0; i < bulkStrategyThreshold+1; i++ {
		name := filepath.Join(repo, fmt.Sprintf("file_%d.txt", i))
		require.NoError(t, os.WriteFile(name, []byte("x"), 0644))
		runGitCmd(t, repo, "add", filepath.Base(name))
		paths = append(paths, name)
	}
	runGitCmd(t, repo, "commit", "-m", "add files")

	c, err := New()
	require.NoError(t, err)
	defer c.Close()

	got, err := c.Collect(context.Background(), repo, paths, 6)
	require.NoError(t, err)
	for _, p := range paths {
		assert.Contains(t, got, p)
	}
}

func TestCollector_CollectNonGitRepoReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	c, err := New()
	require.NoError(t, err)
	defer c.Close()

	got, err := c.Collect(context.Background(), dir, []string{filepath.Join(dir, "a.go")}, 6)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestChurnLevelFor(t *testing.T) {
	assert.Equal(t, types.ChurnLow, churnLevelFor(0))
	assert.Equal(t, types.ChurnLow, churnLevelFor(3))
	assert.Equal(t, types.ChurnMedium, churnLevelFor(4))
	assert.Equal(t, types.ChurnMedium, churnLevelFor(10))
	assert.Equal(t, types.ChurnHigh, churnLevelFor(11))
}

func createTestGitRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	cmd := exec.Command("git", "init", "-b", "main")
	cmd.Dir = dir
	require.NoError(t, cmd.Run(), "git init failed")

	runGitCmd(t, dir, "config", "user.email", "test@example.com")
	runGitCmd(t, dir, "config", "user.name", "Test User")

	testFile := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(testFile, []byte("# Test\n"), 0644))
	runGitCmd(t, dir, "add", "README.md")
	runGitCmd(t, dir, "commit", "-m", "Initial commit")

	return dir
}

func runGitCmd(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, string(output))
}
