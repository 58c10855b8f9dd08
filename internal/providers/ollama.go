package providers

import (
	"context"
	"fmt"
	"strings"
)

// ollamaClient talks to a local Ollama server's chat API. It needs no key.
type ollamaClient struct {
	endpoint
}

type ollamaRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

func newOllamaClient(opts ClientOptions) Client {
	return &ollamaClient{newEndpoint(opts, endpointDefaults{
		name:  "ollama",
		base:  "http://127.0.0.1:11434",
		model: "llama3.2",
	})}
}

func (c *ollamaClient) Ask(ctx context.Context, prompt string) (string, error) {
	payload := ollamaRequest{Model: c.model, Messages: userMessage(prompt)}
	if c.temperature > 0 {
		payload.Options = map[string]any{"temperature": c.temperature}
	}

	var resp struct {
		Message chatMessage `json:"message"`
	}
	if err := c.post(ctx, "/api/chat", nil, payload, &resp); err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Message.Content) == "" {
		return "", fmt.Errorf("%s response had empty content", c.name)
	}
	return resp.Message.Content, nil
}
