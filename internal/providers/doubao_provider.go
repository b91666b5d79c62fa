package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brandlens/mention-workflows/internal/config"
	"github.com/go-resty/resty/v2"
)

// doubaoProvider talks to the Volcengine Ark chat completions API, which
// follows the OpenAI wire shape but has no official Go SDK.
type doubaoProvider struct {
	client *resty.Client
	model  string
}

type doubaoChatRequest struct {
	Model       string          `json:"model"`
	Messages    []doubaoMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
}

type doubaoMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type doubaoChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewDoubaoProvider(cfg *config.Config, model string) Provider {
	client := resty.New().
		SetBaseURL(cfg.DoubaoBaseURL).
		SetAuthToken(cfg.DoubaoAPIKey).
		SetHeader("Content-Type", "application/json")

	return &doubaoProvider{
		client: client,
		model:  model,
	}
}

func (p *doubaoProvider) Name() string {
	return "doubao"
}

func (p *doubaoProvider) Call(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	body := doubaoChatRequest{
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	for _, m := range req.Messages {
		body.Messages = append(body.Messages, doubaoMessage{Role: string(m.Role), Content: m.Content})
	}

	var parsed doubaoChatResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&parsed).
		Post("/chat/completions")
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return nil, NewCallError(ErrTimeout, p.Name(), req.Model, err)
		}
		return nil, NewCallError(ErrProviderUnavailable, p.Name(), req.Model, err)
	}

	if resp.IsError() {
		return nil, NewCallError(ClassifyStatus(resp.StatusCode()), p.Name(), req.Model,
			fmt.Errorf("ark api returned %s: %s", resp.Status(), resp.String()))
	}

	if parsed.Error != nil {
		return nil, NewCallError(ErrInvalidResponse, p.Name(), req.Model,
			fmt.Errorf("ark api error %s: %s", parsed.Error.Code, parsed.Error.Message))
	}

	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return nil, NewCallError(ErrInvalidResponse, p.Name(), req.Model, fmt.Errorf("no completion content returned"))
	}

	return &Response{
		Content: parsed.Choices[0].Message.Content,
		Usage: Usage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
			TotalTokens:      parsed.Usage.TotalTokens,
		},
		Provider: p.Name(),
		Model:    req.Model,
		Latency:  time.Since(start),
	}, nil
}
