package providers

import (
	"context"
)

// generateClient posts {prompt, stream:false} to a full endpoint URL and reads
// the "response" field, the shape served by llama.cpp-style and Ollama
// /api/generate servers.
type generateClient struct {
	endpoint
}

type generateRequest struct {
	Prompt      string  `json:"prompt"`
	Stream      bool    `json:"stream"`
	Model       string  `json:"model,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

func newGenerateClient(opts ClientOptions) Client {
	name := clientName(opts, "generate")
	return &generateClient{newEndpoint(opts, endpointDefaults{
		name:    name,
		setting: "endpoint URL for " + name,
	})}
}

func (c *generateClient) Ask(ctx context.Context, prompt string) (string, error) {
	if c.base == "" {
		return "", notSet(c.setting)
	}
	var auth map[string]string
	if c.apiKey != "" {
		auth = map[string]string{"Authorization": "Bearer " + c.apiKey}
	}
	payload := generateRequest{Prompt: prompt, Model: c.model, Temperature: c.temperature}

	var resp struct {
		Response *string `json:"response"`
	}
	if err := c.post(ctx, "", auth, payload, &resp); err != nil {
		return "", err
	}
	if resp.Response == nil {
		return "No response from " + c.name, nil
	}
	return *resp.Response, nil
}
