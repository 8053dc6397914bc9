package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sevenseconds/vibescout/internal/config"
	"github.com/sevenseconds/vibescout/internal/hashstore"
	"github.com/sevenseconds/vibescout/internal/provider"
	"github.com/sevenseconds/vibescout/internal/types"
)

// embedContentLimit is spec.md §4.7 step 7's "content.substring(0, 500)".
const embedContentLimit = 500

// fileJob carries the context a single file unit needs, shared by the
// folder-wide worker pool and the watcher-driven single-file variant.
type fileJob struct {
	filePath    string
	projectName string
	collection  string
	summarize   bool
	gitInfo     map[string]types.GitInfo // project-wide, pre-collected; may be nil
}

// processFile runs spec.md §4.7's ten-step per-file worker body once
// (retries are the caller's concern, via runWithRetry).
func (p *Pipeline) processFile(ctx context.Context, job fileJob) (skipped bool, err error) {
	// Step 1: read + fingerprint; skip if unchanged.
	contents, err := os.ReadFile(job.filePath)
	if err != nil {
		return false, fmt.Errorf("pipeline: read %s: %w", job.filePath, err)
	}
	fingerprint := hashstore.Fingerprint(contents)

	if stored, ok, hErr := p.hashes.Get(job.filePath); hErr == nil && ok && stored == fingerprint {
		return true, nil
	}

	// Step 2: delete the file's existing vectors. The dependency row is
	// replaced wholesale by step 4's OR REPLACE upsert rather than deleted
	// here, since dependencies.file_path is the table's primary key.
	if err := p.store.DeleteByFile(ctx, job.filePath); err != nil {
		return false, fmt.Errorf("pipeline: delete existing vectors for %s: %w", job.filePath, err)
	}

	// Step 3: extract.
	blocks, meta := p.extractor.Extract(job.filePath, contents)

	// Step 4: write the dependency record.
	dep := types.DependencyRecord{
		FilePath:    job.filePath,
		ProjectName: job.projectName,
		Collection:  job.collection,
		Imports:     meta.Imports,
		Exports:     meta.Exports,
	}
	if err := p.store.UpsertDependency(ctx, dep); err != nil {
		return false, fmt.Errorf("pipeline: upsert dependency for %s: %w", job.filePath, err)
	}
	if p.depgraph != nil {
		p.depgraph.Record(dep)
	}

	// Step 5: resolve file-type config; an index=false group writes deps
	// only, never vectors.
	ft, _ := resolveFileType(p.appCfg.Indexing, job.filePath)
	if !indexEnabled(ft) {
		return false, nil
	}

	// Steps 6-7: summarize (optional) and build embedding inputs.
	records, inputs, err := p.buildRecords(ctx, job, blocks, ft)
	if err != nil {
		return false, err
	}
	if len(records) == 0 {
		if err := p.hashes.PutBatch([]types.FileFingerprint{{FilePath: job.filePath, Hash: fingerprint}}); err != nil {
			return false, fmt.Errorf("pipeline: record fingerprint for %s: %w", job.filePath, err)
		}
		return false, nil
	}

	vectors, err := p.throttledEmbedBatch(ctx, inputs)
	if err != nil {
		return false, fmt.Errorf("pipeline: embed %s: %w", job.filePath, err)
	}
	if len(vectors) != len(records) {
		return false, fmt.Errorf("pipeline: embed %s: got %d vectors for %d blocks", job.filePath, len(vectors), len(records))
	}
	for i := range records {
		records[i].Vector = vectors[i]
	}

	// Step 8: optional git enrichment.
	if job.gitInfo != nil {
		if info, ok := job.gitInfo[job.filePath]; ok {
			for i := range records {
				g := info
				records[i].Git = &g
			}
		}
	}

	// Step 9: upsert + fingerprint.
	modelName := p.embedder.Name()
	if err := p.store.Insert(ctx, modelName, records); err != nil {
		return false, fmt.Errorf("pipeline: insert vectors for %s: %w", job.filePath, err)
	}
	if err := p.hashes.PutBatch([]types.FileFingerprint{{FilePath: job.filePath, Hash: fingerprint}}); err != nil {
		return false, fmt.Errorf("pipeline: record fingerprint for %s: %w", job.filePath, err)
	}

	return false, nil
}

// buildRecords implements spec.md §4.7 steps 6-7: the two summarize passes
// (parents, then chunks) and the newline-joined embedding input per block.
func (p *Pipeline) buildRecords(ctx context.Context, job fileJob, blocks []types.Block, ft config.FileTypeConfig) ([]types.VectorRecord, []string, error) {
	summaries := make(map[string]string, len(blocks))

	doSummarize := job.summarize && summarizeEnabled(ft) && p.summarizer != nil

	if doSummarize {
		for _, b := range blocks {
			if b.Type == types.BlockChunk {
				continue
			}
			content := truncateForSummarize(ft, b.Content)
			template := summarizeTemplateFor(p.appCfg.Prompts, ft, b, provider.SummaryTypeParent)
			summary, err := p.throttledSummarize(ctx, content, provider.SummarizeOptions{
				FileName:       job.filePath,
				ProjectName:    job.projectName,
				Type:           provider.SummaryTypeParent,
				ParentName:     b.Name,
				PromptTemplate: template,
				SectionName:    b.Name,
			})
			if err != nil {
				p.progress.reporter.Logf("pipeline: summarize %s (%s): %v", job.filePath, b.Name, err)
				summary = ""
			}
			summaries[b.Name] = summary
		}
	}

	records := make([]types.VectorRecord, 0, len(blocks))
	inputs := make([]string, 0, len(blocks))

	for _, b := range blocks {
		summary := summaries[b.Name]
		if doSummarize && b.Type == types.BlockChunk {
			template := summarizeTemplateFor(p.appCfg.Prompts, ft, b, provider.SummaryTypeChunk)
			chunkSummary, err := p.throttledSummarize(ctx, truncateForSummarize(ft, b.Content), provider.SummarizeOptions{
				FileName:       job.filePath,
				ProjectName:    job.projectName,
				Type:           provider.SummaryTypeChunk,
				ParentName:     b.ParentName,
				PromptTemplate: template,
				SectionName:    b.Name,
			})
			if err != nil {
				p.progress.reporter.Logf("pipeline: summarize chunk %s (%s): %v", job.filePath, b.Name, err)
				chunkSummary = ""
			}
			summary = chunkSummary
		}

		rec := types.VectorRecord{
			Collection:  job.collection,
			ProjectName: job.projectName,
			Name:        b.Name,
			Type:        b.Type,
			Category:    b.Category,
			FilePath:    job.filePath,
			StartLine:   b.StartLine,
			EndLine:     b.EndLine,
			Comments:    b.Comments,
			Content:     b.Content,
			Summary:     summary,
		}
		records = append(records, rec)
		inputs = append(inputs, buildEmbedInput(rec, summary))
	}

	return records, inputs, nil
}

// buildEmbedInput is spec.md §4.7 step 7's newline-joined embedding record.
func buildEmbedInput(rec types.VectorRecord, summary string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Category: %s\n", rec.Category)
	fmt.Fprintf(&sb, "Collection: %s\n", rec.Collection)
	fmt.Fprintf(&sb, "Project: %s\n", rec.ProjectName)
	fmt.Fprintf(&sb, "File: %s\n", rec.FilePath)
	fmt.Fprintf(&sb, "Type: %s\n", rec.Type)
	fmt.Fprintf(&sb, "Name: %s\n", rec.Name)
	fmt.Fprintf(&sb, "Comments: %s\n", rec.Comments)

	content := rec.Content
	if len(content) > embedContentLimit {
		content = content[:embedContentLimit]
	}

	sb.WriteString("Code: ")
	if summary != "" {
		sb.WriteString("Context: " + summary + "\n\n")
	}
	sb.WriteString(content)
	return sb.String()
}
