package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sasanktumpati/polymind/internal/config"
	"github.com/sasanktumpati/polymind/internal/dispatch"
	"github.com/sasanktumpati/polymind/internal/history"
)

type testApp struct {
	*App
	out   *bytes.Buffer
	errb  *bytes.Buffer
	calls *atomic.Int64
}

func counting(calls *atomic.Int64, text string) dispatch.Adapter {
	return dispatch.AdapterFunc(func(context.Context, string) dispatch.Outcome {
		calls.Add(1)
		return dispatch.Success(text)
	})
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	t.Setenv("POLYMIND_HISTORY", "")
	t.Setenv("POLYMIND_ALIASES", "")

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.json")
	cfg := config.DefaultConfig()
	require.NoError(t, config.Save(cfgPath, cfg))

	out, errb := &bytes.Buffer{}, &bytes.Buffer{}
	calls := &atomic.Int64{}
	adapters := map[string]dispatch.Adapter{
		"echoa": counting(calls, "4"),
		"echob": counting(calls, "four"),
	}
	fake := func(*config.Config) *dispatch.Registry { return dispatch.NewRegistry(adapters) }

	app := newApp(strings.NewReader(""), out, errb, cfgPath, cfg)
	app.newRegistry = fake
	app.registry = fake(cfg)
	app.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return &testApp{App: app, out: out, errb: errb, calls: calls}
}

func (a *testApp) entries(t *testing.T) []history.Entry {
	t.Helper()
	entries, err := a.history.List(0)
	require.NoError(t, err)
	return entries
}

func TestDispatchMarkdownScenario(t *testing.T) {
	app := newTestApp(t)

	require.NoError(t, app.dispatch([]string{"echoA,echoB", "2+2?", "--markdown"}))

	want := "# PolyMind Results\n\n## echoa\n\n```\n4\n```\n\n## echob\n\n```\nfour\n```\n"
	assert.Equal(t, want, app.out.String())

	entries := app.entries(t)
	require.Len(t, entries, 1)
	assert.Equal(t, []string{"echoa", "echob"}, entries[0].Backends)
	assert.Equal(t, "2+2?", entries[0].Prompt)
	assert.Equal(t, map[string]string{"echoa": "4", "echob": "four"}, entries[0].Results)
	assert.Equal(t, "2026-01-02T03:04:05Z", entries[0].Timestamp)
}

func TestDispatchPlainOutputReportsUnknownBackend(t *testing.T) {
	app := newTestApp(t)

	require.NoError(t, app.dispatch([]string{"echoa,nope", "hi"}))

	assert.Equal(t, "[echoa]\n4\n[nope]\nunknown backend: nope\n", app.out.String())
	assert.Equal(t, int64(1), app.calls.Load())
}

func TestDispatchKeepsDashWordsInPrompt(t *testing.T) {
	app := newTestApp(t)

	require.NoError(t, app.dispatch([]string{"echoa", "what", "does", "rm", "-rf", "do", "--jso"}))

	entries := app.entries(t)
	require.Len(t, entries, 1)
	assert.Equal(t, "what does rm -rf do --jso", entries[0].Prompt)
	assert.Equal(t, "warning: --jso is not a flag and was kept in the prompt (did you mean --json?)\n", app.errb.String())
}

func TestDispatchShellSkipsBackends(t *testing.T) {
	app := newTestApp(t)

	require.NoError(t, app.dispatch([]string{"echoa,echob", "it's", "--shell"}))

	assert.Contains(t, app.out.String(), "#!/bin/bash\n")
	assert.Contains(t, app.out.String(), `polymind 'echoa' 'it'\''s'`)
	assert.Zero(t, app.calls.Load())
	assert.Empty(t, app.entries(t))
}

func TestDispatchSaveWritesRenderedOutput(t *testing.T) {
	app := newTestApp(t)
	path := filepath.Join(t.TempDir(), "out", "result.json")

	require.NoError(t, app.dispatch([]string{"echoa,echob", "hi", "--json", "--save", path}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded map[string]string
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, map[string]string{"echoa": "4", "echob": "four"}, decoded)
	assert.Equal(t, string(data), app.out.String())
	assert.Contains(t, app.errb.String(), "output saved to "+path)
}

func TestDispatchNoHistory(t *testing.T) {
	app := newTestApp(t)

	require.NoError(t, app.dispatch([]string{"echoa", "hi", "--no-history"}))

	assert.Empty(t, app.entries(t))
	assert.Equal(t, int64(1), app.calls.Load())
}

func TestHistoryFailureDoesNotBlockOutput(t *testing.T) {
	app := newTestApp(t)
	app.history = history.NewStore(t.TempDir())

	require.NoError(t, app.dispatch([]string{"echoa", "hi"}))

	assert.Equal(t, "[echoa]\n4\n", app.out.String())
	assert.Contains(t, app.errb.String(), "warning: history log error:")
}

func TestAliasSetAndDispatch(t *testing.T) {
	app := newTestApp(t)

	require.NoError(t, app.dispatch([]string{"alias", "set", "Duo", "echoa,echob"}))
	assert.Contains(t, app.out.String(), "alias duo -> echoa,echob")
	app.out.Reset()

	require.NoError(t, app.dispatch([]string{"duo", "hi", "--json"}))
	assert.JSONEq(t, `{"echoa":"4","echob":"four"}`, app.out.String())

	stored, err := config.Load(app.cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "echoa,echob", stored.Aliases["duo"])

	app.out.Reset()
	require.NoError(t, app.dispatch([]string{"alias", "remove", "duo"}))
	require.Error(t, app.dispatch([]string{"alias", "remove", "duo"}))
}

func TestAliasListShowsSource(t *testing.T) {
	app := newTestApp(t)
	t.Setenv("POLYMIND_ALIASES", `{"team":"echoa"}`)
	require.NoError(t, app.cfg.LoadEnvAliases())
	require.NoError(t, app.cfg.SetAlias("solo", []string{"echob"}))

	require.NoError(t, app.dispatch([]string{"alias", "list"}))

	out := app.out.String()
	assert.Contains(t, out, "NAME")
	assert.Regexp(t, `solo\s+echob\s+config`, out)
	assert.Regexp(t, `team\s+echoa\s+env`, out)
}

func TestRetry(t *testing.T) {
	app := newTestApp(t)

	require.NoError(t, app.dispatch([]string{"retry"}))
	assert.Equal(t, "Nothing to retry.\n", app.out.String())

	require.NoError(t, app.dispatch([]string{"echoa,echob", "hi"}))
	app.out.Reset()

	// A fresh session replays the newest history entry.
	fresh := newTestApp(t)
	fresh.history = app.history
	require.NoError(t, fresh.dispatch([]string{"retry", "--json"}))
	assert.JSONEq(t, `{"echoa":"4","echob":"four"}`, fresh.out.String())
	assert.Equal(t, int64(2), fresh.calls.Load())
	assert.Len(t, fresh.entries(t), 2)
}

func TestREPLLines(t *testing.T) {
	app := newTestApp(t)

	done, err := app.handleLine("   ")
	require.NoError(t, err)
	assert.False(t, done)

	_, err = app.handleLine("retry")
	require.NoError(t, err)
	assert.Contains(t, app.out.String(), "Nothing to retry.")

	_, err = app.handleLine("--alias=pair:echoa,echob")
	require.NoError(t, err)
	app.out.Reset()

	_, err = app.handleLine("pair what is 2+2 --json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"echoa":"4","echob":"four"}`, app.out.String())
	assert.Equal(t, "what is 2+2", app.lastPrompt)

	app.out.Reset()
	_, err = app.handleLine("retry")
	require.NoError(t, err)
	assert.Equal(t, "[echoa]\n4\n[echob]\nfour\n", app.out.String())
	assert.Equal(t, int64(4), app.calls.Load())

	app.out.Reset()
	_, err = app.handleLine("view")
	require.NoError(t, err)
	assert.Contains(t, app.out.String(), "what is 2+2")

	_, err = app.handleLine("echoa")
	require.Error(t, err)

	done, err = app.handleLine("EXIT")
	require.NoError(t, err)
	assert.True(t, done)
}

func TestHistoryCommands(t *testing.T) {
	app := newTestApp(t)

	require.NoError(t, app.dispatch([]string{"history"}))
	assert.Equal(t, "No history yet.\n", app.out.String())

	for _, prompt := range []string{"first", "second", "third"} {
		require.NoError(t, app.dispatch([]string{"echoa", prompt}))
	}
	app.out.Reset()

	require.NoError(t, app.dispatch([]string{"history", "show", "--limit", "2"}))
	out := app.out.String()
	assert.NotContains(t, out, "first")
	assert.Contains(t, out, "second")
	assert.Contains(t, out, "third")
	assert.Contains(t, out, "[echoa]\n4")

	app.out.Reset()
	require.NoError(t, app.dispatch([]string{"history", "show", "-n", "1", "--format", "md"}))
	assert.Equal(t, "# PolyMind Results\n\n## echoa\n\n```\n4\n```\n", app.out.String())
	require.Error(t, app.dispatch([]string{"history", "show", "--format", "yaml"}))

	app.out.Reset()
	require.NoError(t, app.dispatch([]string{"markdown", "preview"}))
	assert.Contains(t, app.out.String(), "4")

	exported := filepath.Join(t.TempDir(), "export.json")
	app.out.Reset()
	require.NoError(t, app.dispatch([]string{"history", "export", exported}))
	assert.Equal(t, "History exported to "+exported+"\n", app.out.String())
	var entries []history.Entry
	data, err := os.ReadFile(exported)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &entries))
	assert.Len(t, entries, 3)

	app.out.Reset()
	require.NoError(t, app.dispatch([]string{"history", "clear"}))
	require.NoError(t, app.dispatch([]string{"history", "clear"}))
	require.NoError(t, app.dispatch([]string{"history", "export", exported}))
	assert.Equal(t, "History cleared.\nNo history file to clear.\nNo history to export.\n", app.out.String())

	require.Error(t, app.dispatch([]string{"history", "bogus"}))
}

func TestBackendsListAndShow(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("LLAMA_API_URL", "http://127.0.0.1:8080/generate")
	app := newTestApp(t)

	require.NoError(t, app.dispatch([]string{"backends"}))
	out := app.out.String()
	assert.Regexp(t, `chatgpt\s+openai\s+gpt-4\s+https://api.openai.com/v1\s+missing OPENAI_API_KEY`, out)
	assert.Regexp(t, `llama\s+generate\s+-\s+http://127.0.0.1:8080/generate\s+ready`, out)
	assert.Regexp(t, `ollama\s+ollama\s+llama3.2\s+\S+\s+ready`, out)

	app.out.Reset()
	require.NoError(t, app.dispatch([]string{"backends", "show", "chatgpt"}))
	var view map[string]any
	require.NoError(t, json.Unmarshal(app.out.Bytes(), &view))
	assert.Equal(t, "openai", view["kind"])
	assert.Equal(t, "OPENAI_API_KEY", view["api_key_env"])

	require.Error(t, app.dispatch([]string{"backends", "show", "nope"}))
}

func TestBackendsAddModelRemove(t *testing.T) {
	app := newTestApp(t)

	require.NoError(t, app.dispatch([]string{"backends", "add", "proxy", "--base-url", "http://127.0.0.1:9/v1", "--model", "qwen", "--header", "X-Team=core"}))
	require.True(t, app.cfg.IsCustomBackend("proxy"))
	assert.Equal(t, "core", app.cfg.CustomBackends["proxy"].Headers["X-Team"])

	app.out.Reset()
	require.NoError(t, app.dispatch([]string{"backends", "model", "proxy"}))
	assert.Equal(t, "qwen\n", app.out.String())

	require.NoError(t, app.dispatch([]string{"backends", "model", "proxy", "qwen2"}))
	assert.Equal(t, "qwen2", app.cfg.ResolveModel("proxy"))

	require.Error(t, app.dispatch([]string{"backends", "add", "claude", "--base-url", "http://x", "--model", "m"}))
	require.NoError(t, app.dispatch([]string{"backends", "remove", "proxy"}))
	assert.False(t, app.cfg.BackendExists("proxy"))
}

func TestKeySetShowClear(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	app := newTestApp(t)

	require.NoError(t, app.dispatch([]string{"key", "set", "gemini", "--value", "secret-value-1234"}))
	app.out.Reset()
	require.NoError(t, app.dispatch([]string{"key", "show", "gemini"}))
	out := app.out.String()
	assert.Contains(t, out, "backend=gemini\n")
	assert.Contains(t, out, "api_key=*************1234\n")
	assert.Contains(t, out, "source=config\n")
	assert.Contains(t, out, "api_key_env=GEMINI_API_KEY\n")

	app.out.Reset()
	t.Setenv("GEMINI_API_KEY", "env-key-5678")
	require.NoError(t, app.dispatch([]string{"key", "list"}))
	list := app.out.String()
	assert.Contains(t, list, "BACKEND")
	assert.Regexp(t, `gemini\s+GEMINI_API_KEY\s+\*+5678`, list)
	assert.NotContains(t, list, "local")
	assert.NotContains(t, list, "llama")
	t.Setenv("GEMINI_API_KEY", "")

	require.ErrorContains(t, app.dispatch([]string{"key", "set", "llama", "--value", "x"}), "LLAMA_API_URL")

	require.NoError(t, app.dispatch([]string{"key", "clear", "gemini"}))
	assert.Empty(t, app.cfg.ResolveAPIKey("gemini"))
	require.Error(t, app.dispatch([]string{"key", "show", "nope"}))
}

func TestConfigShowMasksKeys(t *testing.T) {
	app := newTestApp(t)
	app.cfg.SetAPIKey("claude", "sk-ant-abcdef9876")
	require.NoError(t, app.saveConfig())

	require.NoError(t, app.dispatch([]string{"config", "show"}))
	assert.NotContains(t, app.out.String(), "sk-ant-abcdef9876")
	assert.Contains(t, app.out.String(), `"api_key": "*************9876"`)

	app.out.Reset()
	require.NoError(t, app.dispatch([]string{"config", "show", "--raw"}))
	assert.Contains(t, app.out.String(), "sk-ant-abcdef9876")
}

func TestConfigSetAndDefaultToken(t *testing.T) {
	app := newTestApp(t)

	require.NoError(t, app.dispatch([]string{"config", "set", "default_backends", "echoB,echoA"}))
	assert.Equal(t, "default_backends = echoB,echoA\n", app.out.String())
	stored, err := config.Load(app.cfgPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"echob", "echoa"}, stored.DefaultBackends)

	app.out.Reset()
	require.NoError(t, app.dispatch([]string{"default", "hi"}))
	assert.Equal(t, "[echob]\nfour\n[echoa]\n4\n", app.out.String())

	require.NoError(t, app.dispatch([]string{"config", "set", "max_parallel", "2"}))
	assert.Equal(t, 2, app.cfg.MaxParallel)
	require.Error(t, app.dispatch([]string{"config", "set", "max_parallel", "lots"}))
	require.Error(t, app.dispatch([]string{"config", "set", "colour", "blue"}))
	require.Error(t, app.dispatch([]string{"config", "set", "log_level"}))

	historyPath := filepath.Join(t.TempDir(), "elsewhere.jsonl")
	require.NoError(t, app.dispatch([]string{"config", "set", "history_path", historyPath}))
	assert.Equal(t, historyPath, app.history.Path())
}

func TestRegistryReportsMissingSettings(t *testing.T) {
	t.Setenv("LLAMA_API_URL", "")
	t.Setenv("LOCAL_AGENT_CMD", "")
	cfg := config.DefaultConfig()

	result := dispatch.NewEngine(buildRegistry(cfg)).Dispatch(context.Background(), "hi", []string{"llama", "local"})

	assert.Equal(t, "backend unavailable: LLAMA_API_URL not set", result.Text("llama"))
	assert.Equal(t, "backend unavailable: LOCAL_AGENT_CMD not set", result.Text("local"))
}

func TestRunEndToEnd(t *testing.T) {
	t.Setenv("POLYMIND_ALIASES", "")
	t.Setenv("POLYMIND_HISTORY", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	cfgPath := filepath.Join(t.TempDir(), "polymind", "config.json")

	var out, errb bytes.Buffer
	require.NoError(t, Run([]string{"--config", cfgPath, "alias", "set", "x", "claude,gemini"}, strings.NewReader(""), &out, &errb))
	assert.Contains(t, out.String(), "alias x -> claude,gemini")

	stored, err := config.Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "claude,gemini", stored.Aliases["x"])
	assert.FileExists(t, config.TemplatePathForConfig(cfgPath))

	out.Reset()
	require.NoError(t, Run([]string{"--config", cfgPath, "--version"}, strings.NewReader(""), &out, &errb))
	assert.Equal(t, version+"\n", out.String())

	out.Reset()
	require.NoError(t, Run([]string{"--config", cfgPath, "help", "dispatch"}, strings.NewReader(""), &out, &errb))
	assert.Contains(t, out.String(), "--diff")
}
