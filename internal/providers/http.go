package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sasanktumpati/polymind/internal/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// DispatchIDHeader tags every backend request with the fan-out it belongs to.
const DispatchIDHeader = "X-Polymind-Dispatch-ID"

const maxErrorBody = 700

func defaultHTTPClient(input *http.Client) *http.Client {
	if input != nil {
		return input
	}
	return &http.Client{Timeout: 120 * time.Second}
}

// doJSON sends req with payload encoded as JSON and decodes a 2xx body into
// out. Error statuses surface the backend's own message when it sends one.
func doJSON(ctx context.Context, client *http.Client, req *http.Request, payload any, out any) error {
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request JSON: %w", err)
		}
		req.Body = io.NopCloser(bytes.NewReader(buf))
		req.ContentLength = int64(len(buf))
		req.Header.Set("Content-Type", "application/json")
	}
	tagRequest(ctx, req)

	start := time.Now()
	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()
	observability.Component("providers.http").Debug(ctx, "backend responded", "host", req.URL.Host, "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("backend returned %s: %s", resp.Status, errorMessage(body))
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response JSON: %w; body=%s", err, truncate(string(body), maxErrorBody))
	}
	return nil
}

func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload any, out any) error {
	req, err := http.NewRequest(http.MethodPost, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	applyHeaders(req, headers)
	return doJSON(ctx, client, req, payload, out)
}

// tagRequest adds the dispatch ID and the active trace context to req.
func tagRequest(ctx context.Context, req *http.Request) {
	if id := observability.DispatchIDFromContext(ctx); id != "" {
		req.Header.Set(DispatchIDHeader, id)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
}

// errorMessage pulls the message out of the error envelopes used by the
// OpenAI, Anthropic and Gemini APIs and falls back to the raw body.
func errorMessage(body []byte) string {
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(envelope.Error, &nested) == nil && strings.TrimSpace(nested.Message) != "" {
			return truncate(strings.TrimSpace(nested.Message), maxErrorBody)
		}
		var plain string
		if json.Unmarshal(envelope.Error, &plain) == nil && strings.TrimSpace(plain) != "" {
			return truncate(strings.TrimSpace(plain), maxErrorBody)
		}
	}
	return truncate(strings.TrimSpace(string(body)), maxErrorBody)
}

// truncate cuts s to at most max bytes on a rune boundary.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func joinURL(base, path string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	path = strings.TrimSpace(path)
	if path == "" {
		return base
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return base + ensureLeadingSlash(path)
}

func ensureLeadingSlash(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "/") {
		return s
	}
	return "/" + s
}
