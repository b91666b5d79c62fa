package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brandlens/mention-workflows/internal/config"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type openAIProvider struct {
	client *openai.Client
	model  string
}

func NewOpenAIProvider(cfg *config.Config, model string) Provider {
	client := openai.NewClient(
		option.WithAPIKey(cfg.OpenAIAPIKey),
	)

	return &openAIProvider{
		client: &client,
		model:  model,
	}
}

func (p *openAIProvider) Name() string {
	return "openai"
}

func (p *openAIProvider) Call(ctx context.Context, req Request) (*Response, error) {
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

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

// classifyOpenAIError maps openai-go SDK failures onto the fixed taxonomy. It
// also serves the DeepSeek provider, which speaks the same protocol.
func classifyOpenAIError(provider, model string, err error) *CallError {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewCallError(ErrTimeout, provider, model, err)
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return NewCallError(ClassifyStatus(apiErr.StatusCode), provider, model, err)
	}

	return NewCallError(ErrProviderUnavailable, provider, model, err)
}
