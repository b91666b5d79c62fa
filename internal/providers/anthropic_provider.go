package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/brandlens/mention-workflows/internal/config"
)

type anthropicProvider struct {
	client *anthropic.Client
	model  string
}

func NewAnthropicProvider(cfg *config.Config, model string) Provider {
	client := anthropic.NewClient(
		option.WithAPIKey(cfg.AnthropicAPIKey),
	)

	return &anthropicProvider{
		client: &client,
		model:  model,
	}
}

func (p *anthropicProvider) Name() string {
	return "anthropic"
}

func (p *anthropicProvider) Call(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   int64(req.MaxTokens),
		Temperature: anthropic.Float(req.Temperature),
	}

	// Anthropic takes system prompts as a top-level field, not a message role.
	for _, m := range req.Messages {
		if m.Role == RoleSystem {
			params.System = append(params.System, anthropic.TextBlockParam{Text: m.Content})
			continue
		}
		params.Messages = append(params.Messages, anthropic.MessageParam{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: m.Content},
			}},
			Role: anthropic.MessageParamRoleUser,
		})
	}

	response, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, classifyAnthropicError(p.Name(), req.Model, err)
	}

	content := extractAnthropicText(*response)
	if content == "" {
		return nil, NewCallError(ErrInvalidResponse, p.Name(), req.Model, fmt.Errorf("no text blocks in message response"))
	}

	inputTokens := int(response.Usage.InputTokens)
	outputTokens := int(response.Usage.OutputTokens)

	return &Response{
		Content: content,
		Usage: Usage{
			PromptTokens:     inputTokens,
			CompletionTokens: outputTokens,
			TotalTokens:      inputTokens + outputTokens,
		},
		Provider: p.Name(),
		Model:    req.Model,
		Latency:  time.Since(start),
	}, nil
}

func extractAnthropicText(response anthropic.Message) string {
	var textParts []string

	for _, block := range response.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			textParts = append(textParts, variant.Text)
		}
	}

	return strings.Join(textParts, "")
}

func classifyAnthropicError(provider, model string, err error) *CallError {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewCallError(ErrTimeout, provider, model, err)
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return NewCallError(ClassifyStatus(apiErr.StatusCode), provider, model, err)
	}

	return NewCallError(ErrProviderUnavailable, provider, model, err)
}
