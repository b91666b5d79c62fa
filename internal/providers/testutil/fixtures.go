package testutil

import (
	"github.com/brandlens/mention-workflows/internal/config"
)

// SampleConfig returns a test configuration with every provider credentialed.
func SampleConfig() *config.Config {
	cfg := config.Load()
	cfg.OpenAIAPIKey = "test-openai-key"
	cfg.AnthropicAPIKey = "test-anthropic-key"
	cfg.DeepSeekAPIKey = "test-deepseek-key"
	cfg.DoubaoAPIKey = "test-doubao-key"
	return cfg
}

// SampleBrands returns a brand list exercising multi-word and substring cases.
func SampleBrands() []string {
	return []string{"Notion", "Obsidian", "Roam Research"}
}

// SampleResponseText returns a response mentioning two of the sample brands.
func SampleResponseText() string {
	return "For team knowledge management, Notion is the most flexible choice. " +
		"Obsidian works better for local-first markdown notes, while dedicated " +
		"wikis remain an option for larger organizations."
}
