package providers

import (
	"context"
	"time"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is one chat turn sent to a provider.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is the uniform request shape every backend accepts.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// Usage is the normalized token accounting for one call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the normalized outcome of one successful provider call.
type Response struct {
	Content  string        `json:"content"`
	Usage    Usage         `json:"usage"`
	Provider string        `json:"provider"`
	Model    string        `json:"model"`
	Latency  time.Duration `json:"latency"`
}

// Provider is the capability interface over heterogeneous LLM backends. New
// backends are added by implementing it; implementations map their native
// failures onto the CallError taxonomy and never mutate shared state.
type Provider interface {
	Call(ctx context.Context, req Request) (*Response, error)
	Name() string
}

// Factory resolves a model identifier to a configured Provider. It is passed
// into the detection service at construction time so tests can substitute
// their own backends.
type Factory interface {
	Provider(model string) (Provider, error)
}
