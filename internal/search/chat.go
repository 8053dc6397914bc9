package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/sevenseconds/vibescout/internal/provider"
)

// Chat implements spec.md §4.10's chat(): reuse Query, format the ranked
// results as a newline-joined context block, and delegate to the
// summarizer's GenerateResponse.
func (s *Search) Chat(ctx context.Context, query string, opts Options, history []provider.Message) (string, error) {
	if s.summarizer == nil {
		return "", fmt.Errorf("search: chat requires a summarizer provider")
	}

	results, err := s.Query(ctx, query, opts)
	if err != nil {
		return "", err
	}

	response, err := s.summarizer.GenerateResponse(ctx, query, formatContext(results), history)
	if err != nil {
		return "", fmt.Errorf("search: generate response: %w", err)
	}
	return response, nil
}

// formatContext renders ranked results as the newline-joined block
// GenerateResponse's {{context}} slot expects.
func formatContext(results []RankedResult) string {
	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "File: %s\n", r.Record.FilePath)
		fmt.Fprintf(&sb, "Name: %s\n", r.Record.Name)
		if r.Record.Summary != "" {
			fmt.Fprintf(&sb, "Summary: %s\n", r.Record.Summary)
		}
		sb.WriteString(r.Record.Content)
	}
	return sb.String()
}
