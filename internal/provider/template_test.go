package provider

import (
	"testing"

	"github.com/sevenseconds/vibescout/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestRenderTemplate_SubstitutesKnownSlots(t *testing.T) {
	t.Parallel()

	out := RenderTemplate("Hello {{name}}, today is {{date}}", slots{"name": "world", "date": "2026-07-30"})
	assert.Equal(t, "Hello world, today is 2026-07-30", out)
}

func TestRenderTemplate_LeavesUnknownSlotsUntouched(t *testing.T) {
	t.Parallel()

	out := RenderTemplate("{{known}} and {{unknown}}", slots{"known": "x"})
	assert.Equal(t, "x and {{unknown}}", out)
}

func TestResolveSummarizeTemplate_FallsBackWhenIDMissing(t *testing.T) {
	t.Parallel()

	prompts := config.PromptsConfig{ActiveSummarizeID: "nonexistent"}
	tmpl := ResolveSummarizeTemplate(prompts, SummarizeOptions{Type: SummaryTypeParent})
	assert.Equal(t, config.DefaultCodeSummarizeTemplate, tmpl)
}

func TestResolveSummarizeTemplate_FindsActiveTemplate(t *testing.T) {
	t.Parallel()

	prompts := config.PromptsConfig{
		ActiveSummarizeID: "custom",
		SummarizeTemplates: []config.PromptTemplate{
			{ID: "custom", Body: "custom body {{code}}"},
		},
	}
	tmpl := ResolveSummarizeTemplate(prompts, SummarizeOptions{Type: SummaryTypeParent})
	assert.Equal(t, "custom body {{code}}", tmpl)
}

func TestRenderSummarizePrompt_FillsFileNameAndCode(t *testing.T) {
	t.Parallel()

	out := RenderSummarizePrompt(config.DefaultCodeSummarizeTemplate, "func f() {}", SummarizeOptions{
		FileName:    "a.go",
		ProjectName: "proj",
	})
	assert.Contains(t, out, "a.go")
	assert.Contains(t, out, "proj")
	assert.Contains(t, out, "func f() {}")
}
