package pipeline

import (
	"path/filepath"
	"strings"

	"github.com/sevenseconds/vibescout/internal/config"
	"github.com/sevenseconds/vibescout/internal/provider"
	"github.com/sevenseconds/vibescout/internal/types"
)

// resolveFileType finds the configured FileTypeConfig whose Extensions list
// claims filePath's lowercased extension, per spec.md §4.7 step 5. The zero
// value (found=false) means no group claims the extension, which the
// caller treats as "index and summarize, no overrides."
func resolveFileType(cfg config.IndexingConfig, filePath string) (config.FileTypeConfig, bool) {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, ft := range cfg.FileTypes {
		for _, want := range ft.Extensions {
			if strings.ToLower(want) == ext {
				return ft, true
			}
		}
	}
	return config.FileTypeConfig{}, false
}

// indexEnabled reports whether ft opts a file out of vector writes
// (spec.md §4.7 step 5's "if index=false, return without writing vectors").
func indexEnabled(ft config.FileTypeConfig) bool {
	return ft.Index == nil || *ft.Index
}

// summarizeEnabled reports whether ft opts a file out of the summarize
// passes (spec.md §4.7 step 6's "file-type does not opt out").
func summarizeEnabled(ft config.FileTypeConfig) bool {
	return ft.Summarize == nil || *ft.Summarize
}

// truncateForSummarize applies ft.MaxLength, if set, to content before it
// is sent to the summarizer — spec.md §4.7 step 6's "optionally truncating
// content to maxLength for large doc types."
func truncateForSummarize(ft config.FileTypeConfig, content string) string {
	if ft.MaxLength > 0 && len(content) > ft.MaxLength {
		return content[:ft.MaxLength]
	}
	return content
}

// summarizeTemplateFor picks the prompt template body for one block's
// summarize call: a per-file-type override if configured, otherwise the
// category-appropriate default from global prompts configuration.
func summarizeTemplateFor(prompts config.PromptsConfig, ft config.FileTypeConfig, block types.Block, summaryType provider.SummaryType) string {
	if ft.PromptTemplate != "" {
		return ft.PromptTemplate
	}
	if summaryType == provider.SummaryTypeChunk {
		return provider.ResolveSummarizeTemplate(prompts, provider.SummarizeOptions{Type: provider.SummaryTypeChunk})
	}
	if block.Category == types.CategoryDocumentation {
		return provider.ResolveDocTemplate(prompts)
	}
	return provider.ResolveSummarizeTemplate(prompts, provider.SummarizeOptions{Type: provider.SummaryTypeParent})
}
