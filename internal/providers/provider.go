package providers

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Client sends a single prompt to one backend and returns its reply text.
type Client interface {
	Name() string
	Ask(ctx context.Context, prompt string) (string, error)
}

// ClientOptions configures shared client settings for all backend kinds.
type ClientOptions struct {
	// Name overrides the name the client reports; defaults to the kind.
	Name       string
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Headers    map[string]string

	// Setting is the variable reported when the required credential, URL or
	// command is missing, e.g. "LLAMA_API_URL not set".
	Setting string

	// Temperature is sent by kinds that accept one; zero omits it.
	Temperature float64

	// Command and Args drive the process kind.
	Command string
	Args    []string
}

// OpenAICompatibleSettings customizes behavior for OpenAI-compatible APIs.
type OpenAICompatibleSettings struct {
	Name          string
	ChatPath      string
	AuthHeader    string
	AuthPrefix    string
	RequireAPIKey bool
}

// New returns a client for a built-in backend kind.
func New(kind string, opts ClientOptions) (Client, error) {
	kind = normalize(kind)
	if kind == "" {
		return nil, fmt.Errorf("backend kind is required")
	}

	switch kind {
	case "openai":
		return newOpenAIClient(opts), nil
	case "anthropic":
		return newAnthropicClient(opts), nil
	case "gemini":
		return newGeminiClient(opts), nil
	case "ollama":
		return newOllamaClient(opts), nil
	case "openrouter":
		return newOpenRouterClient(opts), nil
	case "generate":
		return newGenerateClient(opts), nil
	case "process":
		return newProcessClient(opts), nil
	default:
		return nil, fmt.Errorf("unsupported backend kind %q", kind)
	}
}

// NewOpenAICompatible returns a client for a custom OpenAI-compatible backend.
func NewOpenAICompatible(settings OpenAICompatibleSettings, opts ClientOptions) (Client, error) {
	settings.Name = normalize(settings.Name)
	if settings.Name == "" {
		return nil, fmt.Errorf("backend name is required")
	}
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if strings.TrimSpace(opts.Model) == "" {
		return nil, fmt.Errorf("model is required")
	}
	return newOpenAICompatibleClient(settings, opts), nil
}

// SupportedKinds returns the built-in backend kinds.
func SupportedKinds() []string {
	kinds := []string{"anthropic", "gemini", "generate", "ollama", "openai", "openrouter", "process"}
	sort.Strings(kinds)
	return kinds
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func clientName(opts ClientOptions, fallback string) string {
	if name := normalize(opts.Name); name != "" {
		return name
	}
	return fallback
}

func settingOr(opts ClientOptions, fallback string) string {
	if s := strings.TrimSpace(opts.Setting); s != "" {
		return s
	}
	return fallback
}

func modelOr(opts ClientOptions, fallback string) string {
	if m := strings.TrimSpace(opts.Model); m != "" {
		return m
	}
	return fallback
}

func copyHeaders(in map[string]string) map[string]string {
	headers := make(map[string]string, len(in))
	for k, v := range in {
		headers[k] = v
	}
	return headers
}

func applyHeaders(req *http.Request, headers map[string]string) {
	for k, v := range headers {
		if strings.TrimSpace(k) == "" || strings.TrimSpace(v) == "" {
			continue
		}
		req.Header.Set(k, v)
	}
}

func notSet(setting string) error {
	return fmt.Errorf("%s not set", setting)
}
