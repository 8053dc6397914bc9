package git

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/sevenseconds/vibescout/internal/types"
)

// logRecordSep and logFieldSep delimit git log --pretty=format output so a
// commit's message (which may itself contain '|' or newlines) can't be
// confused with a field boundary. \x1e/\x1f are the ASCII record/unit
// separator control characters — never legitimately present in a commit
// message.
const (
	logRecordSep = "\x1e"
	logFieldSep  = "\x1f"
)

const bulkPrettyFormat = logRecordSep + "%H" + logFieldSep + "%an" + logFieldSep + "%ae" + logFieldSep + "%aI" + logFieldSep + "%s"

// bulkCollect implements spec.md §4.6's bulk strategy: one `git log` over
// the last 2000 commits for last-touch metadata (first occurrence per file
// wins, i.e. newest since git log is reverse-chronological), plus a second
// `git log --since` scan over the churn window to count commits per file.
func bulkCollect(ctx context.Context, repoPath string, churnWindowMonths int) (map[string]types.GitInfo, error) {
	history, err := runNameOnlyLog(ctx, repoPath, "-n", fmt.Sprintf("%d", recentCommitWindow))
	if err != nil {
		return nil, fmt.Errorf("git: bulk log scan: %w", err)
	}

	result := make(map[string]types.GitInfo)
	for _, c := range history {
		for _, relPath := range c.files {
			abs := filepath.Join(repoPath, relPath)
			if _, seen := result[abs]; seen {
				continue // first occurrence (newest commit) wins
			}
			result[abs] = types.GitInfo{
				LastCommitAuthor:  c.author,
				LastCommitEmail:   c.email,
				LastCommitDate:    c.date,
				LastCommitHash:    c.hash,
				LastCommitMessage: c.message,
			}
		}
	}

	churnCounts, err := churnCounts(ctx, repoPath, churnWindowMonths)
	if err != nil {
		return nil, fmt.Errorf("git: churn window scan: %w", err)
	}
	for abs, info := range result {
		count := churnCounts[abs]
		info.CommitCount6m = count
		info.ChurnLevel = churnLevelFor(count)
		result[abs] = info
	}

	return result, nil
}

// churnCounts runs `git log --since=<window> --name-only` and counts, per
// file, how many commits in the window touched it.
func churnCounts(ctx context.Context, repoPath string, churnWindowMonths int) (map[string]int, error) {
	since := fmt.Sprintf("%d months ago", churnWindowMonths)
	commits, err := runNameOnlyLog(ctx, repoPath, "--since="+since)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, c := range commits {
		for _, relPath := range c.files {
			counts[filepath.Join(repoPath, relPath)]++
		}
	}
	return counts, nil
}

// churnLevelFor buckets a commit count per spec.md §4.6: low ≤ 3 < medium ≤
// 10 < high.
func churnLevelFor(count int) types.ChurnLevel {
	switch {
	case count <= 3:
		return types.ChurnLow
	case count <= 10:
		return types.ChurnMedium
	default:
		return types.ChurnHigh
	}
}

type logCommit struct {
	hash    string
	author  string
	email   string
	date    time.Time
	message string
	files   []string
}

// runNameOnlyLog runs `git log --name-only --pretty=format:<bulkPrettyFormat>
// <extraArgs...>` and parses the delimited output into one logCommit per
// commit, with its changed files attached.
func runNameOnlyLog(ctx context.Context, repoPath string, extraArgs ...string) ([]logCommit, error) {
	args := append([]string{"log", "--name-only", "--pretty=format:" + bulkPrettyFormat}, extraArgs...)
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = repoPath

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	commits := parseNameOnlyLog(stdout)

	if err := cmd.Wait(); err != nil {
		// git log on a shallow/empty repo exits nonzero with no useful
		// stderr captured here; treat as "no history" rather than failing
		// the whole collection run.
		return nil, nil
	}
	return commits, nil
}

// parseNameOnlyLog scans the record-separated stream produced by
// bulkPrettyFormat. Each record begins with logRecordSep + the pretty header
// fields; every following non-empty line up to the next record separator is
// a changed file path.
func parseNameOnlyLog(r io.Reader) []logCommit {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var commits []logCommit
	var current *logCommit

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, logRecordSep) {
			if current != nil {
				commits = append(commits, *current)
			}
			header := strings.TrimPrefix(line, logRecordSep)
			fields := strings.SplitN(header, logFieldSep, 5)
			c := logCommit{}
			if len(fields) > 0 {
				c.hash = fields[0]
			}
			if len(fields) > 1 {
				c.author = fields[1]
			}
			if len(fields) > 2 {
				c.email = fields[2]
			}
			if len(fields) > 3 {
				c.date, _ = time.Parse(time.RFC3339, fields[3])
			}
			if len(fields) > 4 {
				c.message = fields[4]
			}
			current = &c
			continue
		}
		if strings.TrimSpace(line) == "" || current == nil {
			continue
		}
		current.files = append(current.files, line)
	}
	if current != nil {
		commits = append(commits, *current)
	}
	return commits
}
