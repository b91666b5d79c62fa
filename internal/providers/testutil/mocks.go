package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/brandlens/mention-workflows/internal/providers"
)

// MockProvider is a scriptable Provider implementation for testing.
type MockProvider struct {
	ProviderName string
	CallFunc     func(ctx context.Context, req providers.Request) (*providers.Response, error)

	mu    sync.Mutex
	calls []providers.Request
}

func (m *MockProvider) Name() string {
	if m.ProviderName != "" {
		return m.ProviderName
	}
	return "mock"
}

func (m *MockProvider) Call(ctx context.Context, req providers.Request) (*providers.Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	if m.CallFunc != nil {
		return m.CallFunc(ctx, req)
	}
	return &providers.Response{
		Content:  "mock response",
		Usage:    providers.Usage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30},
		Provider: m.Name(),
		Model:    req.Model,
	}, nil
}

// Calls returns a copy of every request the mock has received.
func (m *MockProvider) Calls() []providers.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]providers.Request, len(m.calls))
	copy(out, m.calls)
	return out
}

// MockFactory resolves every model to a scripted provider. Unknown models fall
// back to Default when set.
type MockFactory struct {
	Providers map[string]providers.Provider
	Default   providers.Provider
	Err       error
}

func (f *MockFactory) Provider(model string) (providers.Provider, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if p, ok := f.Providers[model]; ok {
		return p, nil
	}
	if f.Default != nil {
		return f.Default, nil
	}
	return &MockProvider{}, nil
}

// MockArkServer is a mock HTTP server for the Volcengine Ark chat API.
type MockArkServer struct {
	Server *httptest.Server

	mu         sync.Mutex
	content    string
	statusCode int
}

// NewMockArkServer creates a mock Ark server that answers chat completions
// with the configured content.
func NewMockArkServer() *MockArkServer {
	mock := &MockArkServer{
		content:    "mock doubao answer",
		statusCode: http.StatusOK,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		mock.mu.Lock()
		status := mock.statusCode
		content := mock.content
		mock.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			w.Write([]byte(`{"error":{"code":"mock_error","message":"mock failure"}}`))
			return
		}

		response := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
			"usage": map[string]int{
				"prompt_tokens":     12,
				"completion_tokens": 34,
				"total_tokens":      46,
			},
		}
		json.NewEncoder(w).Encode(response)
	})

	mock.Server = httptest.NewServer(mux)
	return mock
}

// Close closes the mock server.
func (m *MockArkServer) Close() {
	m.Server.Close()
}

// SetContent sets the completion text returned by the mock.
func (m *MockArkServer) SetContent(content string) {
	m.mu.Lock()
	m.content = content
	m.mu.Unlock()
}

// SetStatusCode sets the HTTP status the mock responds with.
func (m *MockArkServer) SetStatusCode(code int) {
	m.mu.Lock()
	m.statusCode = code
	m.mu.Unlock()
}
