package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/kluctl/go-embed-python/python"
	"github.com/sevenseconds/vibescout/internal/config"
)

// Default ports for the three bundled local daemons, grounded on
// internal/embed/local.go's DefaultEmbedServerPort — one port per daemon
// since the embed, summarize, and rerank scripts run as separate processes.
const (
	DefaultEmbedPort     = 8121
	DefaultSummarizePort = 8122
	DefaultRerankPort    = 8123
)

// localDaemon manages one embedded-Python process that serves a single
// capability (embedding, summarization, or reranking) over HTTP on its own
// port, grounded on internal/embed/local.go's start/health-check/shutdown
// lifecycle. The teacher runs a dedicated cortex-embed binary for
// embeddings only; this generalizes the same embedded-runtime story to
// summarization and reranking, with each local provider starting its own
// daemon.
type localDaemon struct {
	mu          sync.Mutex
	port        int
	scriptPath  string
	cmd         *exec.Cmd
	client      *http.Client
	initialized bool
}

func newLocalDaemon(scriptPath string, port int) *localDaemon {
	return &localDaemon{
		port:       port,
		scriptPath: scriptPath,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

func (d *localDaemon) ensureStarted(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.initialized {
		return nil
	}
	if d.isHealthy() {
		d.initialized = true
		return nil
	}

	runtimeDir := filepath.Join(os.TempDir(), "vibescout-embed-runtime")
	ep, err := python.NewEmbeddedPythonWithTmpDir(runtimeDir, true)
	if err != nil {
		return fmt.Errorf("provider: embedded python init: %w", err)
	}

	cmd, err := ep.PythonCmd(d.scriptPath)
	if err != nil {
		return fmt.Errorf("provider: build python command: %w", err)
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("provider: start local daemon: %w", err)
	}
	d.cmd = cmd

	if err := d.waitForHealthy(ctx, 60*time.Second); err != nil {
		_ = cmd.Process.Kill()
		return err
	}
	d.initialized = true
	return nil
}

func (d *localDaemon) isHealthy() bool {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL()+"/", nil)
	if err != nil {
		return false
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (d *localDaemon) waitForHealthy(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("provider: timed out waiting for local daemon")
		case <-ticker.C:
			if d.isHealthy() {
				return nil
			}
		}
	}
}

func (d *localDaemon) baseURL() string {
	return fmt.Sprintf("http://127.0.0.1:%d", d.port)
}

func (d *localDaemon) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL()+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("provider: request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider: %s returned status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// close attempts a graceful SIGTERM shutdown, falling back to SIGKILL after
// five seconds, matching internal/embed/local.go's Close().
func (d *localDaemon) close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cmd == nil || d.cmd.Process == nil {
		return nil
	}
	if err := d.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() { done <- d.cmd.Wait() }()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return d.cmd.Process.Kill()
	}
}

// localEmbedProvider is the bundled EmbeddingProvider backed by localDaemon.
type localEmbedProvider struct {
	daemon     *localDaemon
	dimensions int
}

// NewLocalEmbeddingProvider returns a provider backed by an embedded-Python
// daemon started on first use. scriptPath points at the model-serving
// script the daemon runs.
func NewLocalEmbeddingProvider(scriptPath string, dimensions int) EmbeddingProvider {
	return &localEmbedProvider{daemon: newLocalDaemon(scriptPath, DefaultEmbedPort), dimensions: dimensions}
}

func (p *localEmbedProvider) Name() string { return "local" }

func (p *localEmbedProvider) Embed(ctx context.Context, text string, mode EmbedMode) ([]float32, error) {
	vectors, err := p.EmbedBatch(ctx, []string{text}, mode)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (p *localEmbedProvider) EmbedBatch(ctx context.Context, texts []string, mode EmbedMode) ([][]float32, error) {
	if err := p.daemon.ensureStarted(ctx); err != nil {
		return nil, err
	}
	var resp struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	req := struct {
		Texts []string `json:"texts"`
		Mode  string   `json:"mode"`
	}{Texts: texts, Mode: string(mode)}
	if err := p.daemon.post(ctx, "/embed", req, &resp); err != nil {
		return nil, err
	}
	return resp.Embeddings, nil
}

func (p *localEmbedProvider) Dimensions() int { return p.dimensions }
func (p *localEmbedProvider) Close() error    { return p.daemon.close() }

// localSummarizerProvider is the bundled SummarizerProvider backed by the
// same daemon shape (a distinct script/process from the embedder, since
// summarization and embedding use different model weights).
type localSummarizerProvider struct {
	daemon *localDaemon
}

// NewLocalSummarizerProvider returns a provider backed by an embedded-Python
// daemon started on first use.
func NewLocalSummarizerProvider(scriptPath string) SummarizerProvider {
	return &localSummarizerProvider{daemon: newLocalDaemon(scriptPath, DefaultSummarizePort)}
}

func (p *localSummarizerProvider) Name() string { return "local" }

func (p *localSummarizerProvider) Summarize(ctx context.Context, text string, opts SummarizeOptions) (string, error) {
	if err := p.daemon.ensureStarted(ctx); err != nil {
		return "", err
	}
	prompt := RenderSummarizePrompt(opts.PromptTemplate, text, opts)
	return p.generate(ctx, prompt)
}

func (p *localSummarizerProvider) GenerateBestQuestion(ctx context.Context, query, searchContext string) (string, error) {
	if err := p.daemon.ensureStarted(ctx); err != nil {
		return "", err
	}
	prompt := RenderBestQuestionPrompt(config.DefaultBestQuestionTemplate, query, searchContext)
	return p.generate(ctx, prompt)
}

func (p *localSummarizerProvider) GenerateResponse(ctx context.Context, prompt, searchContext string, history []Message) (string, error) {
	if err := p.daemon.ensureStarted(ctx); err != nil {
		return "", err
	}
	truncated := TruncateHistory(history, 0)
	full := RenderChatResponsePrompt(config.DefaultChatResponseTemplate, prompt, searchContext, FormatHistory(truncated))
	return p.generate(ctx, full)
}

func (p *localSummarizerProvider) generate(ctx context.Context, prompt string) (string, error) {
	var resp struct {
		Text string `json:"text"`
	}
	req := struct {
		Prompt string `json:"prompt"`
	}{Prompt: prompt}
	if err := p.daemon.post(ctx, "/generate", req, &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}

func (p *localSummarizerProvider) Close() error { return p.daemon.close() }

// localRerankerProvider is the bundled RerankerProvider backed by the same
// daemon shape, serving a cross-encoder model (default bge-reranker-base)
// from its own script/process, distinct from the embedder and summarizer.
type localRerankerProvider struct {
	daemon *localDaemon
}

// NewLocalRerankerProvider returns a provider backed by an embedded-Python
// daemon started on first use.
func NewLocalRerankerProvider(scriptPath string) RerankerProvider {
	return &localRerankerProvider{daemon: newLocalDaemon(scriptPath, DefaultRerankPort)}
}

func (p *localRerankerProvider) Name() string { return "local" }

func (p *localRerankerProvider) Rerank(ctx context.Context, query string, candidates []string) ([]float64, error) {
	if err := p.daemon.ensureStarted(ctx); err != nil {
		return nil, err
	}
	var resp struct {
		Scores []float64 `json:"scores"`
	}
	req := struct {
		Query      string   `json:"query"`
		Candidates []string `json:"candidates"`
	}{Query: query, Candidates: candidates}
	if err := p.daemon.post(ctx, "/rerank", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Scores) != len(candidates) {
		return nil, fmt.Errorf("provider: rerank returned %d scores for %d candidates", len(resp.Scores), len(candidates))
	}
	return resp.Scores, nil
}

func (p *localRerankerProvider) Close() error { return p.daemon.close() }
