package extract

import (
	"regexp"
	"strings"

	"github.com/sevenseconds/vibescout/internal/types"
)

// MarkdownChunkPolicy selects how a markdown file is split into Blocks, per
// spec.md §4.1 item 7.
type MarkdownChunkPolicy string

const (
	MarkdownChunkNone       MarkdownChunkPolicy = "none"
	MarkdownChunkParagraphs MarkdownChunkPolicy = "paragraphs"
	MarkdownChunkHeadings   MarkdownChunkPolicy = "headings"
)

var headingPattern = regexp.MustCompile(`^#{1,6}\s+(.*)$`)

// markdownStrategy implements the three markdown chunking policies,
// grounded on internal/indexer/chunker.go's header/paragraph splitting.
type markdownStrategy struct {
	policy MarkdownChunkPolicy
}

// NewMarkdownStrategy returns the documentation Strategy for .md/.markdown
// files under the given chunking policy.
func NewMarkdownStrategy(policy MarkdownChunkPolicy) Strategy {
	return &markdownStrategy{policy: policy}
}

func (s *markdownStrategy) Extract(filePath string, contents []byte) ([]types.Block, Metadata, error) {
	content := string(contents)
	lines := strings.Split(content, "\n")

	var blocks []types.Block
	switch s.policy {
	case MarkdownChunkParagraphs:
		blocks = markdownParagraphBlocks(lines, filePath)
	case MarkdownChunkHeadings:
		blocks = markdownHeadingBlocks(lines, filePath)
	default:
		blocks = []types.Block{{
			Name:      "",
			Type:      types.BlockDocumentation,
			Category:  types.CategoryDocumentation,
			StartLine: 1,
			EndLine:   len(lines),
			Content:   content,
			FilePath:  filePath,
		}}
	}

	return blocks, Metadata{}, nil
}

// markdownHeadingBlocks emits one Block per heading, extending to the next
// heading or EOF (the default policy).
func markdownHeadingBlocks(lines []string, filePath string) []types.Block {
	var blocks []types.Block
	start := 0
	name := ""
	flush := func(end int) {
		if end <= start {
			return
		}
		blocks = append(blocks, types.Block{
			Name:      name,
			Type:      types.BlockDocumentation,
			Category:  types.CategoryDocumentation,
			StartLine: start + 1,
			EndLine:   end,
			Content:   strings.Join(lines[start:end], "\n"),
			FilePath:  filePath,
		})
	}

	for i, line := range lines {
		if m := headingPattern.FindStringSubmatch(line); m != nil {
			flush(i)
			start = i
			name = strings.TrimSpace(m[1])
		}
	}
	flush(len(lines))

	if len(blocks) == 0 && len(lines) > 0 {
		blocks = append(blocks, types.Block{
			Type:      types.BlockDocumentation,
			Category:  types.CategoryDocumentation,
			StartLine: 1,
			EndLine:   len(lines),
			Content:   strings.Join(lines, "\n"),
			FilePath:  filePath,
		})
	}
	return blocks
}

// markdownParagraphBlocks splits on blank-line runs.
func markdownParagraphBlocks(lines []string, filePath string) []types.Block {
	var blocks []types.Block
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		blocks = append(blocks, types.Block{
			Type:      types.BlockDocumentation,
			Category:  types.CategoryDocumentation,
			StartLine: start + 1,
			EndLine:   end,
			Content:   strings.Join(lines[start:end], "\n"),
			FilePath:  filePath,
		})
		start = -1
	}

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
		}
	}
	flush(len(lines))
	return blocks
}
