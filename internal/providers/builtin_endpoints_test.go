package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/sasanktumpati/polymind/internal/observability"
)

func TestSupportedKinds(t *testing.T) {
	got := SupportedKinds()
	want := []string{"anthropic", "gemini", "generate", "ollama", "openai", "openrouter", "process"}
	if len(got) != len(want) {
		t.Fatalf("SupportedKinds len = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SupportedKinds[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNewRejectsUnknownKind(t *testing.T) {
	if _, err := New("telepathy", ClientOptions{}); err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if _, err := New("  ", ClientOptions{}); err == nil {
		t.Fatal("expected error for blank kind")
	}
}

func TestOpenAIEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-openai" {
			t.Errorf("Authorization header = %q", got)
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload["model"] != "gpt-4" {
			t.Errorf("payload.model = %v", payload["model"])
		}
		messages, _ := payload["messages"].([]any)
		if len(messages) != 1 {
			t.Errorf("messages = %v", payload["messages"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message": map[string]any{"content": "  4  "},
			}},
		})
	}))
	defer server.Close()

	client, err := New("openai", ClientOptions{
		Name:    "chatgpt",
		APIKey:  "sk-openai",
		BaseURL: server.URL + "/v1",
	})
	if err != nil {
		t.Fatalf("New(openai) error = %v", err)
	}
	if client.Name() != "chatgpt" {
		t.Fatalf("Name() = %q", client.Name())
	}

	text, err := client.Ask(context.Background(), "2+2?")
	if err != nil {
		t.Fatalf("Ask error = %v", err)
	}
	if text != "4" {
		t.Fatalf("Ask text = %q, want %q", text, "4")
	}
}

func TestOpenAIMissingKeyNamesSetting(t *testing.T) {
	client, err := New("openai", ClientOptions{})
	if err != nil {
		t.Fatalf("New(openai) error = %v", err)
	}
	_, err = client.Ask(context.Background(), "hi")
	if err == nil || err.Error() != "OPENAI_API_KEY not set" {
		t.Fatalf("Ask error = %v, want OPENAI_API_KEY not set", err)
	}
}

func TestOpenRouterEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/chat/completions" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-or" {
			t.Errorf("Authorization header = %q", got)
		}
		if got := r.Header.Get("X-Title"); got != "polymind" {
			t.Errorf("X-Title header = %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message": map[string]any{"content": "routed"},
			}},
		})
	}))
	defer server.Close()

	client, err := New("openrouter", ClientOptions{
		APIKey:  "sk-or",
		BaseURL: server.URL + "/api/v1",
		Model:   "openrouter/model",
	})
	if err != nil {
		t.Fatalf("New(openrouter) error = %v", err)
	}

	text, err := client.Ask(context.Background(), "q")
	if err != nil {
		t.Fatalf("Ask error = %v", err)
	}
	if text != "routed" {
		t.Fatalf("Ask text = %q", text)
	}
}

func TestAnthropicEndpointAndHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if got := r.Header.Get("x-api-key"); got != "ak-test" {
			t.Errorf("x-api-key = %q", got)
		}
		if got := r.Header.Get("anthropic-version"); got != "2023-06-01" {
			t.Errorf("anthropic-version = %q", got)
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload["model"] != "claude-3-opus-20240229" {
			t.Errorf("payload.model = %v", payload["model"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{
				{"type": "text", "text": "first"},
				{"type": "tool_use", "text": "ignored"},
				{"type": "text", "text": "second"},
			},
		})
	}))
	defer server.Close()

	client, err := New("anthropic", ClientOptions{
		Name:    "claude",
		APIKey:  "ak-test",
		BaseURL: server.URL,
	})
	if err != nil {
		t.Fatalf("New(anthropic) error = %v", err)
	}

	text, err := client.Ask(context.Background(), "question")
	if err != nil {
		t.Fatalf("Ask error = %v", err)
	}
	if text != "first\nsecond" {
		t.Fatalf("Ask text = %q", text)
	}
}

func TestAnthropicMissingKeyUsesConfiguredSetting(t *testing.T) {
	client, _ := New("anthropic", ClientOptions{Setting: "CLAUDE_API_KEY"})
	_, err := client.Ask(context.Background(), "q")
	if err == nil || err.Error() != "CLAUDE_API_KEY not set" {
		t.Fatalf("Ask error = %v", err)
	}
}

func TestGeminiEndpointAndHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/gemini-pro:generateContent" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if got := r.Header.Get("x-goog-api-key"); got != "g-test" {
			t.Errorf("x-goog-api-key = %q", got)
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if _, ok := payload["contents"]; !ok {
			t.Errorf("payload missing contents: %v", payload)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]any{{"text": "gemini says hi"}},
				},
			}},
		})
	}))
	defer server.Close()

	client, err := New("gemini", ClientOptions{
		APIKey:  "g-test",
		BaseURL: server.URL + "/v1beta",
	})
	if err != nil {
		t.Fatalf("New(gemini) error = %v", err)
	}

	text, err := client.Ask(context.Background(), "question")
	if err != nil {
		t.Fatalf("Ask error = %v", err)
	}
	if text != "gemini says hi" {
		t.Fatalf("Ask text = %q", text)
	}
}

func TestGeminiNoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer server.Close()

	client, _ := New("gemini", ClientOptions{APIKey: "g", BaseURL: server.URL})
	if _, err := client.Ask(context.Background(), "q"); err == nil {
		t.Fatal("expected error when no candidates are returned")
	}
}

func TestOllamaEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload["model"] != "llama3.2" {
			t.Errorf("payload.model = %v", payload["model"])
		}
		if stream, ok := payload["stream"].(bool); !ok || stream {
			t.Errorf("payload.stream = %v", payload["stream"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]any{"content": "local answer"},
		})
	}))
	defer server.Close()

	client, err := New("ollama", ClientOptions{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New(ollama) error = %v", err)
	}

	text, err := client.Ask(context.Background(), "question")
	if err != nil {
		t.Fatalf("Ask error = %v", err)
	}
	if text != "local answer" {
		t.Fatalf("Ask text = %q", text)
	}
}

func TestHTTPErrorStatusIsReturned(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, _ := New("openai", ClientOptions{APIKey: "k", BaseURL: server.URL})
	_, err := client.Ask(context.Background(), "q")
	if err == nil {
		t.Fatal("expected error for 429 response")
	}
	if !strings.Contains(err.Error(), "429") || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("error = %v", err)
	}
}

func TestErrorEnvelopeMessageIsExtracted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	client, _ := New("openai", ClientOptions{APIKey: "k", BaseURL: server.URL})
	_, err := client.Ask(context.Background(), "q")
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "401") || !strings.Contains(err.Error(), "Incorrect API key provided") {
		t.Fatalf("error = %v", err)
	}
	if strings.Contains(err.Error(), "invalid_request_error") {
		t.Fatalf("error should carry only the message: %v", err)
	}
}

func TestRequestsCarryDispatchID(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get(DispatchIDHeader)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer server.Close()

	client, _ := New("openai", ClientOptions{APIKey: "k", BaseURL: server.URL})
	ctx := observability.WithDispatchID(context.Background(), "dispatch-123")
	if _, err := client.Ask(ctx, "q"); err != nil {
		t.Fatalf("Ask error = %v", err)
	}
	if got != "dispatch-123" {
		t.Fatalf("%s = %q", DispatchIDHeader, got)
	}
}

func TestErrorMessageFallsBackToBody(t *testing.T) {
	cases := map[string]string{
		`{"error":"model not found"}`: "model not found",
		`plain failure`:               "plain failure",
		`{"detail":"nope"}`:           `{"detail":"nope"}`,
	}
	for body, want := range cases {
		if got := errorMessage([]byte(body)); got != want {
			t.Errorf("errorMessage(%q) = %q, want %q", body, got, want)
		}
	}
}

func TestTemperatureReachesEveryKind(t *testing.T) {
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload = nil
		_ = json.NewDecoder(r.Body).Decode(&payload)
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"a"}],"candidates":[{"content":{"parts":[{"text":"g"}]}}],"message":{"content":"o"}}`))
	}))
	defer server.Close()

	anthropic, _ := New("anthropic", ClientOptions{APIKey: "k", BaseURL: server.URL, Temperature: 0.3})
	if _, err := anthropic.Ask(context.Background(), "q"); err != nil {
		t.Fatalf("anthropic Ask error = %v", err)
	}
	if payload["temperature"] != 0.3 {
		t.Errorf("anthropic temperature = %v", payload["temperature"])
	}

	gemini, _ := New("gemini", ClientOptions{APIKey: "k", BaseURL: server.URL, Temperature: 0.3})
	if _, err := gemini.Ask(context.Background(), "q"); err != nil {
		t.Fatalf("gemini Ask error = %v", err)
	}
	generation, _ := payload["generationConfig"].(map[string]any)
	if generation["temperature"] != 0.3 {
		t.Errorf("gemini generationConfig = %v", payload["generationConfig"])
	}

	ollama, _ := New("ollama", ClientOptions{BaseURL: server.URL, Temperature: 0.3})
	if _, err := ollama.Ask(context.Background(), "q"); err != nil {
		t.Fatalf("ollama Ask error = %v", err)
	}
	options, _ := payload["options"].(map[string]any)
	if options["temperature"] != 0.3 {
		t.Errorf("ollama options = %v", payload["options"])
	}

	if _, err := anthropic.Ask(context.Background(), "q"); err != nil {
		t.Fatalf("anthropic Ask error = %v", err)
	}
	plain, _ := New("anthropic", ClientOptions{APIKey: "k", BaseURL: server.URL})
	if _, err := plain.Ask(context.Background(), "q"); err != nil {
		t.Fatalf("anthropic Ask error = %v", err)
	}
	if _, ok := payload["temperature"]; ok {
		t.Errorf("temperature should be omitted, got %v", payload["temperature"])
	}
}

func TestConfiguredHeadersOverrideAuth(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("anthropic-version")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"ok"}]}`))
	}))
	defer server.Close()

	client, _ := New("anthropic", ClientOptions{
		APIKey:  "k",
		BaseURL: server.URL,
		Headers: map[string]string{"anthropic-version": "2024-01-01"},
	})
	if _, err := client.Ask(context.Background(), "q"); err != nil {
		t.Fatalf("Ask error = %v", err)
	}
	if got != "2024-01-01" {
		t.Fatalf("anthropic-version = %q", got)
	}
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{in: "short", max: 10, want: "short"},
		{in: "abcdef", max: 3, want: "abc..."},
		{in: "ab€cd", max: 3, want: "ab..."},
		{in: "ab€cd", max: 5, want: "ab€..."},
		{in: "😀😀", max: 6, want: "😀..."},
	}
	for _, tc := range cases {
		got := truncate(tc.in, tc.max)
		if got != tc.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("truncate(%q, %d) = %q is not valid UTF-8", tc.in, tc.max, got)
		}
	}
}
