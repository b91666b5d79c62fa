package providers

import (
	"fmt"
	"strings"

	"github.com/brandlens/mention-workflows/internal/config"
)

// configFactory routes model names to backends using the credentials in the
// supplied config. All provider selection lives here; the orchestrator only
// ever sees the Provider interface.
type configFactory struct {
	cfg *config.Config
}

// NewFactory creates the production factory around an explicit config. No
// process-wide registry: two factories with different configs are fully
// independent.
func NewFactory(cfg *config.Config) Factory {
	return &configFactory{cfg: cfg}
}

// Provider resolves a model identifier to a configured backend.
func (f *configFactory) Provider(model string) (Provider, error) {
	if f.cfg == nil {
		return nil, fmt.Errorf("provider factory has no config")
	}

	modelLower := strings.ToLower(model)

	switch {
	case strings.Contains(modelLower, "deepseek"):
		if f.cfg.DeepSeekAPIKey == "" {
			return nil, fmt.Errorf("DeepSeek API key is empty in config")
		}
		return NewDeepSeekProvider(f.cfg, model), nil

	case strings.Contains(modelLower, "doubao"):
		if f.cfg.DoubaoAPIKey == "" {
			return nil, fmt.Errorf("Doubao API key is empty in config")
		}
		return NewDoubaoProvider(f.cfg, model), nil

	case strings.Contains(modelLower, "gpt") || strings.Contains(modelLower, "chatgpt"):
		if f.cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is empty in config")
		}
		return NewOpenAIProvider(f.cfg, model), nil

	case strings.Contains(modelLower, "claude") || strings.Contains(modelLower, "sonnet") ||
		strings.Contains(modelLower, "opus") || strings.Contains(modelLower, "haiku"):
		if f.cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key is empty in config")
		}
		return NewAnthropicProvider(f.cfg, model), nil
	}

	return nil, fmt.Errorf("unsupported model: %s", model)
}
