package providers_test

import (
	"testing"

	"github.com/brandlens/mention-workflows/internal/config"
	"github.com/brandlens/mention-workflows/internal/providers"
	"github.com/brandlens/mention-workflows/internal/providers/testutil"
)

func TestFactoryCreatesCorrectProvider(t *testing.T) {
	tests := []struct {
		modelName        string
		expectedProvider string
		shouldError      bool
	}{
		{"gpt-4.1", "openai", false},
		{"chatgpt-4o-latest", "openai", false},
		{"GPT-4.1-mini", "openai", false},
		{"claude-sonnet-4-20250514", "anthropic", false},
		{"claude-3-5-haiku", "anthropic", false},
		{"deepseek-chat", "deepseek", false},
		{"deepseek-reasoner", "deepseek", false},
		{"doubao-1-5-lite-32k-250115", "doubao", false},
		{"unsupported-model", "", true},
		{"", "", true},
	}

	cfg := testutil.SampleConfig()
	factory := providers.NewFactory(cfg)

	for _, tt := range tests {
		t.Run(tt.modelName, func(t *testing.T) {
			provider, err := factory.Provider(tt.modelName)

			if tt.shouldError {
				if err == nil {
					t.Errorf("Expected error for model %s, but got none", tt.modelName)
				}
				return
			}

			if err != nil {
				t.Errorf("Unexpected error for model %s: %v", tt.modelName, err)
				return
			}

			if provider == nil {
				t.Errorf("Provider is nil for model %s", tt.modelName)
				return
			}

			if provider.Name() != tt.expectedProvider {
				t.Errorf("Expected provider %s, got %s", tt.expectedProvider, provider.Name())
			}
		})
	}
}

func TestFactoryRejectsMissingCredentials(t *testing.T) {
	tests := []struct {
		name  string
		model string
		strip func(cfg *config.Config)
	}{
		{"openai", "gpt-4.1", func(cfg *config.Config) { cfg.OpenAIAPIKey = "" }},
		{"anthropic", "claude-sonnet-4-20250514", func(cfg *config.Config) { cfg.AnthropicAPIKey = "" }},
		{"deepseek", "deepseek-chat", func(cfg *config.Config) { cfg.DeepSeekAPIKey = "" }},
		{"doubao", "doubao-1-5-lite-32k-250115", func(cfg *config.Config) { cfg.DoubaoAPIKey = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testutil.SampleConfig()
			tt.strip(cfg)

			if _, err := providers.NewFactory(cfg).Provider(tt.model); err == nil {
				t.Errorf("Expected credential error for %s, got none", tt.name)
			}
		})
	}
}

func TestFactoryWithNilConfig(t *testing.T) {
	if _, err := providers.NewFactory(nil).Provider("gpt-4.1"); err == nil {
		t.Error("Expected error for nil config, got none")
	}
}
