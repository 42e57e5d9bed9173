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

const (
	claudeBaseURL    = "https://api.anthropic.com/v1"
	claudeAPIVersion = "2023-06-01"
)

// ClaudeClient talks to the Anthropic messages API. The system message is
// carried in the request's "system" field, not in the message list.
type ClaudeClient struct {
	apiKey string
	model  string
	opts   ChatOptions
	http   *http.Client
	logger *slog.Logger
}

// NewClaudeClient builds a Claude-backed client.
func NewClaudeClient(apiKey, model string, opts ChatOptions, timeout time.Duration, logger *slog.Logger) *ClaudeClient {
	if model == "" {
		model = "claude-3-5-sonnet-20241022"
	}
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ClaudeClient{
		apiKey: apiKey,
		model:  model,
		opts:   opts.withDefaults(),
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (c *ClaudeClient) Chat(ctx context.Context, messages []Message) (string, error) {
	system, rest := splitSystem(messages)

	body := map[string]any{
		"model":       c.model,
		"max_tokens":  c.opts.MaxTokens,
		"temperature": c.opts.Temperature,
		"messages":    rest,
	}
	if system != "" {
		body["system"] = system
	}

	headers := map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": claudeAPIVersion,
	}

	raw, err := sendJSON(ctx, c.http, claudeBaseURL+"/messages", body, headers, c.logger)
	if err != nil {
		return "", fmt.Errorf("claude request: %w", err)
	}

	var resp struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("decode claude response: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("no content in claude response")
	}
	return resp.Content[0].Text, nil
}

func (c *ClaudeClient) TestConnection(ctx context.Context) bool {
	out, err := c.Chat(ctx, []Message{{Role: RoleUser, Content: "Hello"}})
	if err != nil {
		c.logger.Warn("llm.claude.connection_test_failed", "error", err)
		return false
	}
	return strings.TrimSpace(out) != ""
}
