package providers

import (
	"context"
	"fmt"
)

const (
	anthropicVersion   = "2023-06-01"
	anthropicMaxTokens = 2048
)

type anthropicClient struct {
	endpoint
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string           `json:"role"`
	Content []anthropicBlock `json:"content"`
}

type anthropicBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func newAnthropicClient(opts ClientOptions) Client {
	return &anthropicClient{newEndpoint(opts, endpointDefaults{
		name:    "anthropic",
		base:    "https://api.anthropic.com",
		model:   "claude-3-opus-20240229",
		setting: "ANTHROPIC_API_KEY",
	})}
}

func (c *anthropicClient) Ask(ctx context.Context, prompt string) (string, error) {
	if err := c.requireKey(); err != nil {
		return "", err
	}

	payload := anthropicRequest{
		Model:       c.model,
		MaxTokens:   anthropicMaxTokens,
		Temperature: c.temperature,
		Messages: []anthropicMessage{{
			Role:    "user",
			Content: []anthropicBlock{{Type: "text", Text: prompt}},
		}},
	}
	auth := map[string]string{"x-api-key": c.apiKey, "anthropic-version": anthropicVersion}

	var resp struct {
		Content []anthropicBlock `json:"content"`
	}
	if err := c.post(ctx, "/v1/messages", auth, payload, &resp); err != nil {
		return "", err
	}

	parts := make([]string, 0, len(resp.Content))
	for _, block := range resp.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	text := joinNonEmpty(parts)
	if text == "" {
		return "", fmt.Errorf("no text content returned by %s", c.name)
	}
	return text, nil
}
