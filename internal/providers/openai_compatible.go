package providers

import (
	"context"
	"fmt"
	"strings"
)

const (
	defaultChatPath   = "/chat/completions"
	defaultAuthHeader = "Authorization"
	defaultAuthPrefix = "Bearer "
)

// openAICompatibleClient serves OpenAI itself, OpenRouter and any custom
// backend speaking the chat completions API.
type openAICompatibleClient struct {
	endpoint
	chatPath      string
	authHeader    string
	authPrefix    string
	requireAPIKey bool
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
}

func newOpenAICompatibleClient(settings OpenAICompatibleSettings, opts ClientOptions) Client {
	c := &openAICompatibleClient{
		endpoint:      newEndpoint(opts, endpointDefaults{name: normalize(settings.Name)}),
		chatPath:      ensureLeadingSlash(settings.ChatPath),
		authHeader:    strings.TrimSpace(settings.AuthHeader),
		authPrefix:    settings.AuthPrefix,
		requireAPIKey: settings.RequireAPIKey,
	}
	if c.chatPath == "" {
		c.chatPath = defaultChatPath
	}
	if c.authHeader == "" {
		c.authHeader = defaultAuthHeader
	}
	if c.authPrefix == "" {
		c.authPrefix = defaultAuthPrefix
	}
	return c
}

func (c *openAICompatibleClient) Ask(ctx context.Context, prompt string) (string, error) {
	if c.requireAPIKey {
		if err := c.requireKey(); err != nil {
			return "", err
		}
	}
	if c.model == "" {
		return "", fmt.Errorf("model is required for %s", c.name)
	}

	var auth map[string]string
	if c.apiKey != "" {
		auth = map[string]string{c.authHeader: c.authPrefix + c.apiKey}
	}
	payload := chatRequest{Model: c.model, Messages: userMessage(prompt), Temperature: c.temperature}

	var resp struct {
		Choices []struct {
			Message struct {
				Content any `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := c.post(ctx, c.chatPath, auth, payload, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned by %s", c.name)
	}

	text, err := messageText(resp.Choices[0].Message.Content)
	if err != nil {
		return "", fmt.Errorf("decode %s response content: %w", c.name, err)
	}
	return text, nil
}

// messageText accepts both a plain string and the array-of-parts content
// some compatible servers return.
func messageText(content any) (string, error) {
	switch value := content.(type) {
	case string:
		return strings.TrimSpace(value), nil
	case []any:
		parts := make([]string, 0, len(value))
		for _, item := range value {
			if obj, ok := item.(map[string]any); ok {
				text, _ := obj["text"].(string)
				parts = append(parts, text)
			}
		}
		text := joinNonEmpty(parts)
		if text == "" {
			return "", fmt.Errorf("array content had no text parts")
		}
		return strings.TrimSpace(text), nil
	default:
		return "", fmt.Errorf("unsupported content type %T", value)
	}
}
