package provider

import (
	"strings"
	"time"

	"github.com/sevenseconds/vibescout/internal/config"
)

// slots maps each named template slot (spec.md §4.3) to the value it
// should be substituted with. Slots absent from the map are left as-is in
// the rendered output, matching the teacher's "unknown placeholders pass
// through" behavior for hardcoded fallback templates.
type slots map[string]string

// RenderTemplate substitutes every "{{slot}}" occurrence in body with the
// value from values, leaving unrecognized slots untouched.
func RenderTemplate(body string, values slots) string {
	out := body
	for slot, val := range values {
		out = strings.ReplaceAll(out, "{{"+slot+"}}", val)
	}
	return out
}

// ResolveSummarizeTemplate picks the active code summarize template by id
// from configuration, falling back to the hardcoded default when the id is
// missing or unregistered, per spec.md §4.3. For SummaryTypeChunk it returns
// prompts.ChunkSummarize instead. Documentation templates are resolved by
// ResolveDocTemplate.
func ResolveSummarizeTemplate(prompts config.PromptsConfig, opts SummarizeOptions) string {
	var (
		templates []config.PromptTemplate
		activeID  string
		fallback  string
	)
	switch opts.Type {
	case SummaryTypeChunk:
		// Chunks do not look a template up by id: they use the dedicated
		// chunk template string, or the code default when that is empty.
		templates, activeID, fallback = nil, "", prompts.ChunkSummarize
		if fallback == "" {
			fallback = config.DefaultCodeSummarizeTemplate
		}
	default:
		templates, activeID, fallback = prompts.SummarizeTemplates, prompts.ActiveSummarizeID, config.DefaultCodeSummarizeTemplate
	}

	for _, t := range templates {
		if t.ID == activeID {
			return t.Body
		}
	}
	return fallback
}

// ResolveDocTemplate picks the active documentation summarize template.
func ResolveDocTemplate(prompts config.PromptsConfig) string {
	for _, t := range prompts.DocSummarizeTemplates {
		if t.ID == prompts.ActiveDocSummarizeID {
			return t.Body
		}
	}
	return config.DefaultDocSummarizeTemplate
}

// RenderSummarizePrompt fills a summarize template's named slots from the
// text being summarized and its SummarizeOptions.
func RenderSummarizePrompt(template, text string, opts SummarizeOptions) string {
	now := time.Now()
	return RenderTemplate(template, slots{
		"code":        text,
		"content":     text,
		"fileName":    opts.FileName,
		"projectName": opts.ProjectName,
		"parentName":  opts.ParentName,
		"sectionName": opts.SectionName,
		"date":        now.Format("2006-01-02"),
		"time":        now.Format("15:04:05"),
	})
}

// RenderBestQuestionPrompt fills the bestQuestion template.
func RenderBestQuestionPrompt(template, query, searchContext string) string {
	return RenderTemplate(template, slots{"query": query, "context": searchContext})
}

// RenderChatResponsePrompt fills the chatResponse template, including the
// already-truncated, already-formatted history string.
func RenderChatResponsePrompt(template, prompt, searchContext, history string) string {
	now := time.Now()
	return RenderTemplate(template, slots{
		"query":   prompt,
		"context": searchContext,
		"history": history,
		"date":    now.Format("2006-01-02"),
		"time":    now.Format("15:04:05"),
	})
}
