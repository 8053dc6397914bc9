package config

import "fmt"

// Validate checks a loaded Config for internally-inconsistent values.
// Mirrors the teacher's internal/config/validate.go shape: a flat list of
// independent checks, first failure wins.
func Validate(cfg *Config) error {
	if cfg.Provider.Provider == "" {
		return fmt.Errorf("provider.provider must be set")
	}
	if cfg.Search.MinScore < 0 || cfg.Search.MinScore > 1 {
		return fmt.Errorf("search.minScore must be between 0 and 1, got %f", cfg.Search.MinScore)
	}
	if cfg.Indexing.EmbedFilePath != "" && cfg.Indexing.EmbedFilePath != "full" && cfg.Indexing.EmbedFilePath != "name" {
		return fmt.Errorf("indexing.embedFilePath must be \"full\" or \"name\", got %q", cfg.Indexing.EmbedFilePath)
	}
	if cfg.Git.ChurnWindow < 0 {
		return fmt.Errorf("gitIntegration.churnWindow must be non-negative")
	}
	for name, ft := range cfg.Indexing.FileTypes {
		if len(ft.Extensions) == 0 {
			return fmt.Errorf("indexing.fileTypes.%s must declare at least one extension", name)
		}
	}
	return nil
}
