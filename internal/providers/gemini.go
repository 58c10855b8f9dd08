package providers

import (
	"context"
	"fmt"
	"strings"
)

type geminiClient struct {
	endpoint
}

type geminiRequest struct {
	Contents         []geminiContent   `json:"contents"`
	GenerationConfig *geminiGeneration `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGeneration struct {
	Temperature float64 `json:"temperature"`
}

func newGeminiClient(opts ClientOptions) Client {
	ep := newEndpoint(opts, endpointDefaults{
		name:    "gemini",
		base:    "https://generativelanguage.googleapis.com/v1beta",
		model:   "gemini-pro",
		setting: "GEMINI_API_KEY",
	})
	ep.model = strings.TrimPrefix(ep.model, "models/")
	return &geminiClient{ep}
}

func (c *geminiClient) Ask(ctx context.Context, prompt string) (string, error) {
	if err := c.requireKey(); err != nil {
		return "", err
	}

	payload := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
	}
	if c.temperature > 0 {
		payload.GenerationConfig = &geminiGeneration{Temperature: c.temperature}
	}

	var resp struct {
		Candidates []struct {
			Content geminiContent `json:"content"`
		} `json:"candidates"`
	}
	path := fmt.Sprintf("/models/%s:generateContent", c.model)
	if err := c.post(ctx, path, map[string]string{"x-goog-api-key": c.apiKey}, payload, &resp); err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned by %s", c.name)
	}

	parts := resp.Candidates[0].Content.Parts
	texts := make([]string, 0, len(parts))
	for _, part := range parts {
		texts = append(texts, part.Text)
	}
	text := joinNonEmpty(texts)
	if text == "" {
		return "", fmt.Errorf("%s response had no text parts", c.name)
	}
	return text, nil
}
