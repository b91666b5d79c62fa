// services/cost_service.go
package services

import "strings"

type costService struct{}

func NewCostService() CostService {
	return &costService{}
}

// Cost per 1M tokens
var costPerToken = map[string]struct{ input, output float64 }{
	"gpt-5":                    {input: 1.25, output: 10.00},
	"gpt-5-mini":               {input: 0.25, output: 2.00},
	"gpt-4.1":                  {input: 3.00, output: 12.00},
	"gpt-4.1-mini":             {input: 0.80, output: 3.20},
	"claude-sonnet-4-20250514": {input: 3.00, output: 15.00},
	"claude-opus-4-20250514":   {input: 15.00, output: 75.00},
	"claude-3-5-haiku-latest":  {input: 0.80, output: 4.00},
	"deepseek-chat":            {input: 0.27, output: 1.10},
	"deepseek-reasoner":        {input: 0.55, output: 2.19},
	"doubao-1-5-pro-32k":       {input: 0.11, output: 0.28},
	"doubao-1-5-lite-32k":      {input: 0.04, output: 0.08},
}

// Per-provider fallbacks when a model has no explicit entry.
var providerDefaults = map[string]struct{ input, output float64 }{
	"openai":    {input: 3.00, output: 12.00},
	"anthropic": {input: 3.00, output: 15.00},
	"deepseek":  {input: 0.27, output: 1.10},
	"doubao":    {input: 0.11, output: 0.28},
}

func (s *costService) CalculateCost(provider string, model string, inputTokens int, outputTokens int) float64 {
	modelCosts, exists := costPerToken[model]
	if !exists {
		// Fall back to the provider's flagship pricing.
		modelCosts = providerDefaults[s.getProviderKey(provider, model)]
	}

	inputCost := (float64(inputTokens) / 1_000_000.0) * modelCosts.input
	outputCost := (float64(outputTokens) / 1_000_000.0) * modelCosts.output
	return inputCost + outputCost
}

func (s *costService) getProviderKey(provider string, model string) string {
	key := strings.ToLower(provider + " " + model)
	if strings.Contains(key, "anthropic") || strings.Contains(key, "claude") {
		return "anthropic"
	}
	if strings.Contains(key, "deepseek") {
		return "deepseek"
	}
	if strings.Contains(key, "doubao") {
		return "doubao"
	}
	return "openai" // default
}
