// Package config loads vibescout's layered configuration: built-in defaults,
// the user config file, and environment variable overrides.
package config

// Config is the complete vibescout configuration.
type Config struct {
	Provider    ProviderConfig    `yaml:"provider" mapstructure:"provider" json:"provider"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server" json:"server"`
	Indexing    IndexingConfig    `yaml:"indexing" mapstructure:"indexing" json:"indexing"`
	Search      SearchConfig      `yaml:"search" mapstructure:"search" json:"search"`
	Git         GitConfig         `yaml:"gitIntegration" mapstructure:"gitIntegration" json:"gitIntegration"`
	Prompts     PromptsConfig     `yaml:"prompts" mapstructure:"prompts" json:"prompts"`
}

// ProviderConfig holds provider selection and credentials.
type ProviderConfig struct {
	Provider                string `mapstructure:"provider" json:"provider"`
	LLMProvider             string `mapstructure:"llmProvider" json:"llmProvider"`
	DBProvider              string `mapstructure:"dbProvider" json:"dbProvider"`
	OllamaURL               string `mapstructure:"ollamaUrl" json:"ollamaUrl"`
	OpenAIKey               string `mapstructure:"openaiKey" json:"openaiKey"`
	OpenAIBaseURL           string `mapstructure:"openaiBaseUrl" json:"openaiBaseUrl"`
	CloudflareAccountID     string `mapstructure:"cloudflareAccountId" json:"cloudflareAccountId"`
	CloudflareToken         string `mapstructure:"cloudflareToken" json:"cloudflareToken"`
	CloudflareVectorizeIdx  string `mapstructure:"cloudflareVectorizeIndex" json:"cloudflareVectorizeIndex"`
	GeminiKey               string `mapstructure:"geminiKey" json:"geminiKey"`
	ZaiKey                  string `mapstructure:"zaiKey" json:"zaiKey"`
	AWSRegion               string `mapstructure:"awsRegion" json:"awsRegion"`
	AWSProfile              string `mapstructure:"awsProfile" json:"awsProfile"`
	EmbeddingModel          string `mapstructure:"embeddingModel" json:"embeddingModel"`
	LLMModel                string `mapstructure:"llmModel" json:"llmModel"`
	ModelsPath              string `mapstructure:"modelsPath" json:"modelsPath"`
}

// ServerConfig holds RPC server settings.
type ServerConfig struct {
	Port int `mapstructure:"port" json:"port"`
}

// FileTypeConfig configures per-extension-group indexing behavior.
type FileTypeConfig struct {
	Extensions     []string `mapstructure:"extensions" json:"extensions"`
	Summarize      *bool    `mapstructure:"summarize" json:"summarize,omitempty"`
	PromptTemplate string   `mapstructure:"promptTemplate" json:"promptTemplate,omitempty"`
	MaxLength      int      `mapstructure:"maxLength" json:"maxLength,omitempty"`
	Index          *bool    `mapstructure:"index" json:"index,omitempty"`
	Description    string   `mapstructure:"description" json:"description,omitempty"`
}

// IndexingConfig controls indexing behavior.
type IndexingConfig struct {
	Summarize        bool                      `mapstructure:"summarize" json:"summarize"`
	Offline          bool                      `mapstructure:"offline" json:"offline"`
	UseReranker      bool                      `mapstructure:"useReranker" json:"useReranker"`
	EmbedFilePath    string                    `mapstructure:"embedFilePath" json:"embedFilePath"` // "full" or "name"
	WatchDirectories []string                  `mapstructure:"watchDirectories" json:"watchDirectories"`
	FileTypes        map[string]FileTypeConfig `mapstructure:"fileTypes" json:"fileTypes"`
	ThrottlingErrors []string                  `mapstructure:"throttlingErrors" json:"throttlingErrors"`
}

// SearchConfig controls search result thresholds.
type SearchConfig struct {
	MinScore float64 `mapstructure:"minScore" json:"minScore"`
}

// GitConfig controls git metadata enrichment.
type GitConfig struct {
	Enabled         bool `mapstructure:"enabled" json:"enabled"`
	EmbedInVector   bool `mapstructure:"embedInVector" json:"embedInVector"`
	StoreAsMetadata bool `mapstructure:"storeAsMetadata" json:"storeAsMetadata"`
	ChurnWindow     int  `mapstructure:"churnWindow" json:"churnWindow"` // months
}

// PromptTemplate is a named, slot-based prompt.
type PromptTemplate struct {
	ID   string `mapstructure:"id" json:"id"`
	Name string `mapstructure:"name" json:"name"`
	Body string `mapstructure:"body" json:"body"`
}

// PromptsConfig holds the prompt template library and active selections.
type PromptsConfig struct {
	SummarizeTemplates    []PromptTemplate `mapstructure:"summarizeTemplates" json:"summarizeTemplates"`
	ActiveSummarizeID     string           `mapstructure:"activeSummarizeId" json:"activeSummarizeId"`
	ChunkSummarize        string           `mapstructure:"chunkSummarize" json:"chunkSummarize"`
	DocSummarizeTemplates []PromptTemplate `mapstructure:"docSummarizeTemplates" json:"docSummarizeTemplates"`
	ActiveDocSummarizeID  string           `mapstructure:"activeDocSummarizeId" json:"activeDocSummarizeId"`
	BestQuestion          string           `mapstructure:"bestQuestion" json:"bestQuestion"`
	ChatResponse          string           `mapstructure:"chatResponse" json:"chatResponse"`
}

// DefaultIndexableExtensions lists the extensions the pipeline enumerates by
// default (spec.md §4.7 "known-indexable extension set").
var DefaultIndexableExtensions = []string{
	".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs",
	".py", ".go", ".java", ".kt", ".kts", ".dart",
	".md", ".markdown", ".json", ".toml", ".xml",
}

// DefaultIgnoreDirs are pruned from traversal regardless of ignore files.
var DefaultIgnoreDirs = []string{
	".git", "node_modules", "dist", "build", ".vibescout", ".lancedb",
	"package-lock.json", "yarn.lock", "pnpm-lock.yaml", "go.sum",
}

// Default returns a configuration with sensible defaults, mirroring the
// teacher's config.Default().
func Default() *Config {
	return &Config{
		Provider: ProviderConfig{
			// "local" and "mock" are the only backends internal/provider's
			// factory constructs (see DESIGN.md's internal/provider entry);
			// the remaining fields below still round-trip through config
			// loading/validation for fidelity with spec.md §6's schema, but
			// nothing yet reads them into a live client.
			Provider:       "local",
			LLMProvider:    "local",
			DBProvider:     "sqlite",
			OllamaURL:      "http://localhost:11434",
			EmbeddingModel: "nomic-embed-text",
			LLMModel:       "llama3.1",
		},
		Server: ServerConfig{Port: 9877},
		Indexing: IndexingConfig{
			Summarize:     true,
			UseReranker:   true,
			EmbedFilePath: "full",
			ThrottlingErrors: []string{
				"429", "Rate limit", "too many requests",
				"1214", "1301", "1302", "并发数过高",
			},
			FileTypes: map[string]FileTypeConfig{
				"code": {Extensions: []string{".go", ".ts", ".tsx", ".js", ".jsx", ".py", ".java", ".kt", ".dart"}},
				"docs": {Extensions: []string{".md", ".markdown"}},
				"data": {Extensions: []string{".json", ".toml", ".xml"}},
			},
		},
		Search: SearchConfig{MinScore: 0.4},
		Git: GitConfig{
			Enabled:       true,
			EmbedInVector: true,
			ChurnWindow:   6,
		},
		Prompts: defaultPrompts(),
	}
}

// defaultPrompts returns the default prompt template wiring; split out only
// to keep Default() readable.
func defaultPrompts() PromptsConfig {
	return PromptsConfig{
		ActiveSummarizeID:    "default-code",
		ChunkSummarize:       "default-chunk",
		ActiveDocSummarizeID: "default-doc",
		SummarizeTemplates: []PromptTemplate{
			{ID: "default-code", Name: "Default code summary", Body: DefaultCodeSummarizeTemplate},
		},
		DocSummarizeTemplates: []PromptTemplate{
			{ID: "default-doc", Name: "Default doc summary", Body: DefaultDocSummarizeTemplate},
		},
		BestQuestion: DefaultBestQuestionTemplate,
		ChatResponse: DefaultChatResponseTemplate,
	}
}

// Hardcoded template fallbacks, used when a referenced template ID is
// missing from configuration (spec.md §4.3).
const (
	DefaultCodeSummarizeTemplate = "Summarize the following {{fileName}} code from project {{projectName}} in one or two sentences:\n\n{{code}}"
	DefaultDocSummarizeTemplate  = "Summarize the following section {{sectionName}} of {{fileName}} in one or two sentences:\n\n{{content}}"
	DefaultBestQuestionTemplate  = "Given the query \"{{query}}\" and context below, phrase the single best question it is asking:\n\n{{context}}"
	DefaultChatResponseTemplate  = "Date: {{date}} {{time}}\n\nContext:\n{{context}}\n\nHistory:\n{{history}}\n\nQuestion: {{query}}"
)
