package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/brandlens/mention-workflows/internal/config"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const deepseekBaseURL = "https://api.deepseek.com"

// deepseekProvider rides the openai-go SDK against DeepSeek's
// OpenAI-compatible endpoint.
type deepseekProvider struct {
	client *openai.Client
	model  string
}

func NewDeepSeekProvider(cfg *config.Config, model string) Provider {
	client := openai.NewClient(
		option.WithAPIKey(cfg.DeepSeekAPIKey),
		option.WithBaseURL(deepseekBaseURL),
	)

	return &deepseekProvider{
		client: &client,
		model:  model,
	}
}

func (p *deepseekProvider) Name() string {
	return "deepseek"
}

func (p *deepseekProvider) Call(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	response, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:    toOpenAIMessages(req.Messages),
		Model:       openai.ChatModel(req.Model),
		Temperature: openai.Float(req.Temperature),
		MaxTokens:   openai.Int(int64(req.MaxTokens)),
	})
	if err != nil {
		return nil, classifyOpenAIError(p.Name(), req.Model, err)
	}

	if len(response.Choices) == 0 {
		return nil, NewCallError(ErrInvalidResponse, p.Name(), req.Model, fmt.Errorf("no response choices returned"))
	}

	content := response.Choices[0].Message.Content
	if content == "" {
		return nil, NewCallError(ErrInvalidResponse, p.Name(), req.Model, fmt.Errorf("empty completion content"))
	}

	return &Response{
		Content: content,
		Usage: Usage{
			PromptTokens:     int(response.Usage.PromptTokens),
			CompletionTokens: int(response.Usage.CompletionTokens),
			TotalTokens:      int(response.Usage.TotalTokens),
		},
		Provider: p.Name(),
		Model:    req.Model,
		Latency:  time.Since(start),
	}, nil
}
