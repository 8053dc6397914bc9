package git

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sevenseconds/vibescout/internal/types"
)

// perFileCollect implements spec.md §4.6's small-set strategy (and the
// bulk-strategy fallback for files the 2000-commit window never touched):
// `git log -1 --follow` for last-touch metadata, plus a churn-window commit
// count for the same file.
func perFileCollect(ctx context.Context, repoPath, absPath string, churnWindowMonths int) (types.GitInfo, bool, error) {
	relPath, err := filepath.Rel(repoPath, absPath)
	if err != nil {
		relPath = absPath
	}

	cmd := exec.CommandContext(ctx, "git", "log", "-1", "--follow",
		"--pretty=format:"+bulkPrettyFormat, "--", relPath)
	cmd.Dir = repoPath
	out, err := cmd.Output()
	if err != nil || len(bytes.TrimSpace(out)) == 0 {
		return types.GitInfo{}, false, nil // no history for this file; not an error
	}

	commits := parseNameOnlyLog(bytes.NewReader(out))
	if len(commits) == 0 {
		return types.GitInfo{}, false, nil
	}
	c := commits[0]

	count, err := perFileChurnCount(ctx, repoPath, relPath, churnWindowMonths)
	if err != nil {
		return types.GitInfo{}, false, err
	}

	return types.GitInfo{
		LastCommitAuthor:  c.author,
		LastCommitEmail:   c.email,
		LastCommitDate:    c.date,
		LastCommitHash:    c.hash,
		LastCommitMessage: c.message,
		CommitCount6m:     count,
		ChurnLevel:        churnLevelFor(count),
	}, true, nil
}

func perFileChurnCount(ctx context.Context, repoPath, relPath string, churnWindowMonths int) (int, error) {
	since := fmt.Sprintf("%d months ago", churnWindowMonths)
	cmd := exec.CommandContext(ctx, "git", "log", "--follow", "--since="+since,
		"--pretty=format:%H", "--", relPath)
	cmd.Dir = repoPath
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("git: per-file churn count for %s: %w", relPath, err)
	}

	count := 0
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) != "" {
			count++
		}
	}
	return count, nil
}
