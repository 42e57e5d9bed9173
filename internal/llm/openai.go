package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// OpenAIClient talks to the chat/completions API. LM Studio exposes the same
// surface, so the local variant reuses this type with a different base URL
// and a dummy credential.
type OpenAIClient struct {
	apiKey  string
	baseURL string
	model   string
	opts    ChatOptions
	http    *http.Client
	logger  *slog.Logger
}

// NewOpenAIClient builds an OpenAI-backed client.
func NewOpenAIClient(apiKey, baseURL, model string, opts ChatOptions, timeout time.Duration, logger *slog.Logger) *OpenAIClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-4o"
	}
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenAIClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		opts:    opts.withDefaults(),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// NewLMStudioClient builds a client for a locally hosted OpenAI-compatible
// server. No real credential is needed; the server ignores the key.
func NewLMStudioClient(serverURL, model string, opts ChatOptions, timeout time.Duration, logger *slog.Logger) *OpenAIClient {
	if serverURL == "" {
		serverURL = "http://localhost:1234"
	}
	if model == "" {
		model = "local-model"
	}
	return NewOpenAIClient("lm-studio", strings.TrimRight(serverURL, "/")+"/v1", model, opts, timeout, logger)
}

func (c *OpenAIClient) Chat(ctx context.Context, messages []Message) (string, error) {
	body := map[string]any{
		"model":       c.model,
		"messages":    messages,
		"temperature": c.opts.Temperature,
		"max_tokens":  c.opts.MaxTokens,
	}

	headers := map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	}

	raw, err := sendJSON(ctx, c.http, c.baseURL+"/chat/completions", body, headers, c.logger)
	if err != nil {
		return "", fmt.Errorf("chat completions request: %w", err)
	}

	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("decode chat completions response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in chat completions response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) TestConnection(ctx context.Context) bool {
	out, err := c.Chat(ctx, []Message{{Role: RoleUser, Content: "Hello"}})
	if err != nil {
		c.logger.Warn("llm.openai.connection_test_failed", "error", err)
		return false
	}
	return strings.TrimSpace(out) != ""
}
