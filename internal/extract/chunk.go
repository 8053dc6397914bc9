package extract

import (
	"regexp"
	"strings"

	"github.com/sevenseconds/vibescout/internal/types"
)

// parentChunkThreshold is the line-count above which a parent's body is
// subdivided into chunks, per the data model's chunk-emission invariant.
const parentChunkThreshold = 50

// chunkMaxLines is the largest number of body lines a single chunk may span
// before it is cut, independent of whether a boundary line was found.
const chunkMaxLines = 20

// boundaryLine recognizes the logical-boundary keywords the chunker prefers
// to cut on, matched against the leading (possibly indented) token of a
// line — shared across the tree-sitter-backed strategies since none of them
// expose the exact boundary node list spec.md enumerates per language.
var boundaryLine = regexp.MustCompile(`^\s*(\}\s*)?(else\s+)?(if|for|while|try|switch|select|when|catch)\b`)

// chunkParentBody splits a parent's body lines (bodyStartLine is the
// 1-based line number of bodyLines[0]) into chunk Blocks once the parent
// spans more than parentChunkThreshold lines. It returns nil when the
// parent is small enough to stand on its own.
func chunkParentBody(parent types.Block, bodyLines []string, bodyStartLine int) []types.Block {
	if parent.EndLine-parent.StartLine+1 <= parentChunkThreshold {
		return nil
	}

	var chunks []types.Block
	i := 0
	for i < len(bodyLines) {
		end := i + chunkMaxLines
		if end > len(bodyLines) {
			end = len(bodyLines)
		}
		cut := end
		for j := i + 1; j < end; j++ {
			if boundaryLine.MatchString(bodyLines[j]) {
				cut = j
				break
			}
		}
		if cut <= i {
			cut = i + 1
		}

		chunks = append(chunks, types.Block{
			Name:       parent.Name,
			Type:       types.BlockChunk,
			Category:   parent.Category,
			StartLine:  bodyStartLine + i,
			EndLine:    bodyStartLine + cut - 1,
			Comments:   parent.Comments,
			Content:    strings.Join(bodyLines[i:cut], "\n"),
			ParentName: parent.Name,
			FilePath:   parent.FilePath,
		})
		i = cut
	}
	return chunks
}

// bodyLinesOf slices the 1-based [startLine, endLine] range out of the
// full-file line slice, returning the slice and the 1-based line number of
// its first element.
func bodyLinesOf(allLines []string, startLine, endLine int) (lines []string, firstLine int) {
	if startLine < 1 {
		startLine = 1
	}
	if endLine > len(allLines) {
		endLine = len(allLines)
	}
	if startLine > endLine {
		return nil, startLine
	}
	return allLines[startLine-1 : endLine], startLine
}
