package providers

import (
	"context"
	"net/http"
	"strings"
)

// endpoint holds what every HTTP backend kind shares.
type endpoint struct {
	name        string
	apiKey      string
	base        string
	model       string
	setting     string
	temperature float64
	http        *http.Client
	headers     map[string]string
}

// endpointDefaults fill in whatever ClientOptions leaves empty.
type endpointDefaults struct {
	name    string
	base    string
	model   string
	setting string
}

func newEndpoint(opts ClientOptions, d endpointDefaults) endpoint {
	base := strings.TrimSpace(opts.BaseURL)
	if base == "" {
		base = d.base
	}
	name := clientName(opts, d.name)
	setting := d.setting
	if setting == "" {
		setting = "API key for " + name
	}
	return endpoint{
		name:        name,
		apiKey:      strings.TrimSpace(opts.APIKey),
		base:        strings.TrimRight(base, "/"),
		model:       modelOr(opts, d.model),
		setting:     settingOr(opts, setting),
		temperature: opts.Temperature,
		http:        defaultHTTPClient(opts.HTTPClient),
		headers:     copyHeaders(opts.Headers),
	}
}

func (e endpoint) Name() string { return e.name }

// requireKey reports the missing setting when no API key was resolved.
func (e endpoint) requireKey() error {
	if e.apiKey == "" {
		return notSet(e.setting)
	}
	return nil
}

// post sends payload to path under the base URL. Auth headers go first so
// configured headers can override them.
func (e endpoint) post(ctx context.Context, path string, auth map[string]string, payload, out any) error {
	headers := make(map[string]string, len(auth)+len(e.headers))
	for k, v := range auth {
		headers[http.CanonicalHeaderKey(k)] = v
	}
	for k, v := range e.headers {
		headers[http.CanonicalHeaderKey(k)] = v
	}
	return postJSON(ctx, e.http, joinURL(e.base, path), headers, payload, out)
}

// chatMessage is the role/content pair the OpenAI and Ollama chat APIs share.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func userMessage(prompt string) []chatMessage {
	return []chatMessage{{Role: "user", Content: prompt}}
}

// joinNonEmpty joins the non-blank parts with newlines.
func joinNonEmpty(parts []string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}
