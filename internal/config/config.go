package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	defaultDirName          = "polymind"
	defaultFileName         = "config.json"
	defaultTemplateFileName = "config.template.json"
	defaultHistoryFileName  = "history.json"
	currentVersion          = 1

	envConfigPath   = "POLYMIND_CONFIG"
	envConfigDir    = "POLYMIND_CONFIG_DIR"
	envHistoryPath  = "POLYMIND_HISTORY"
	envAliases      = "POLYMIND_ALIASES"
	envLogLevel     = "POLYMIND_LOG_LEVEL"
	envLocalCommand = "LOCAL_AGENT_CMD"
	envOTLPEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

var (
	// ErrConfigNotFound indicates the config file does not exist yet.
	ErrConfigNotFound = errors.New("config file not found")
)

// BackendConfig stores per-backend overrides and credentials for built-ins.
type BackendConfig struct {
	APIKey    string `json:"api_key,omitempty"`
	Model     string `json:"model,omitempty"`
	BaseURL   string `json:"base_url,omitempty"`
	APIKeyEnv string `json:"api_key_env,omitempty"`
}

// CustomBackend defines an additional OpenAI-compatible backend.
type CustomBackend struct {
	BaseURL     string            `json:"base_url"`
	APIKey      string            `json:"api_key,omitempty"`
	Model       string            `json:"model"`
	APIKeyEnv   string            `json:"api_key_env,omitempty"`
	ChatPath    string            `json:"chat_path,omitempty"`
	AuthHeader  string            `json:"auth_header,omitempty"`
	AuthPrefix  string            `json:"auth_prefix,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	Temperature float64           `json:"temperature,omitempty"`
}

// Config is the persisted polymind configuration.
type Config struct {
	Version         int                      `json:"version"`
	Backends        map[string]BackendConfig `json:"backends,omitempty"`
	CustomBackends  map[string]CustomBackend `json:"custom_backends,omitempty"`
	Aliases         map[string]string        `json:"aliases,omitempty"`
	DefaultBackends []string                 `json:"default_backends,omitempty"`
	HistoryPath     string                   `json:"history_path,omitempty"`
	LocalCommand    string                   `json:"local_command,omitempty"`
	LocalArgs       []string                 `json:"local_args,omitempty"`
	MaxParallel     int                      `json:"max_parallel,omitempty"`
	RenderMarkdown  bool                     `json:"render_markdown"`
	LogLevel        string                   `json:"log_level,omitempty"`

	// envAliases come from POLYMIND_ALIASES and are never saved.
	envAliases map[string]string
}

// BuiltinDefaults defines immutable defaults for built-in backends.
type BuiltinDefaults struct {
	Kind string
	// BaseURLEnv, when set, names a variable holding the endpoint URL.
	BaseURLEnv   string
	BaseURL      string
	APIKeyEnv    string
	AltAPIKeyEnv string
	Model        string
	Temperature  float64
}

var builtinBackends = map[string]BuiltinDefaults{
	"chatgpt": {
		Kind:      "openai",
		BaseURL:   "https://api.openai.com/v1",
		APIKeyEnv: "OPENAI_API_KEY",
		Model:     "gpt-4",
	},
	"claude": {
		Kind:         "anthropic",
		BaseURL:      "https://api.anthropic.com",
		APIKeyEnv:    "CLAUDE_API_KEY",
		AltAPIKeyEnv: "ANTHROPIC_API_KEY",
		Model:        "claude-3-opus-20240229",
	},
	"gemini": {
		Kind:      "gemini",
		BaseURL:   "https://generativelanguage.googleapis.com/v1beta",
		APIKeyEnv: "GEMINI_API_KEY",
		Model:     "gemini-pro",
	},
	"llama": {
		Kind:       "generate",
		BaseURLEnv: "LLAMA_API_URL",
	},
	"mistral": {
		Kind:        "generate",
		BaseURLEnv:  "MISTRAL_API_URL",
		Temperature: 0.7,
	},
	"ollama": {
		Kind:    "ollama",
		BaseURL: "http://127.0.0.1:11434",
		Model:   "llama3.2",
	},
	"openrouter": {
		Kind:      "openrouter",
		BaseURL:   "https://openrouter.ai/api/v1",
		APIKeyEnv: "OPENROUTER_API_KEY",
		Model:     "openai/gpt-4o-mini",
	},
	"local": {
		Kind: "process",
	},
}

// ResolvePath resolves config file path from CLI override, environment, or default.
func ResolvePath(pathOverride string) (string, error) {
	if path := strings.TrimSpace(pathOverride); path != "" {
		return filepath.Clean(path), nil
	}
	if path := strings.TrimSpace(os.Getenv(envConfigPath)); path != "" {
		return filepath.Clean(path), nil
	}
	return DefaultPath()
}

// DefaultDir returns the default directory where polymind stores its files.
func DefaultDir() (string, error) {
	if custom := strings.TrimSpace(os.Getenv(envConfigDir)); custom != "" {
		return filepath.Clean(custom), nil
	}

	home, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		return "", fmt.Errorf("resolve user home directory: %w", err)
	}
	return filepath.Join(home, "."+defaultDirName), nil
}

// DefaultPath returns the default full path to config.json.
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, defaultFileName), nil
}

// TemplatePathForConfig returns the template path for a given config path.
func TemplatePathForConfig(configPath string) string {
	path := strings.TrimSpace(configPath)
	if path == "" {
		return ""
	}
	return filepath.Join(filepath.Dir(path), defaultTemplateFileName)
}

// BuiltinBackendNames returns built-in backend names sorted alphabetically.
func BuiltinBackendNames() []string {
	names := make([]string, 0, len(builtinBackends))
	for name := range builtinBackends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func IsBuiltinBackend(name string) bool {
	_, ok := builtinBackends[normalizeName(name)]
	return ok
}

func BuiltinBackendDefaults(name string) (BuiltinDefaults, bool) {
	defaults, ok := builtinBackends[normalizeName(name)]
	return defaults, ok
}

// Load reads config from path. When missing, it returns DefaultConfig and ErrConfigNotFound.
func Load(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), ErrConfigNotFound
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(buf, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

// Save persists config to path using normalized and compact representation.
func Save(path string, cfg *Config) error {
	cfg.normalize()
	return writeSecureJSON(path, cfg.compactForSave())
}

// DefaultConfig returns a new default configuration.
func DefaultConfig() *Config {
	cfg := &Config{
		Version:         currentVersion,
		Backends:        map[string]BackendConfig{},
		CustomBackends:  map[string]CustomBackend{},
		Aliases:         map[string]string{},
		DefaultBackends: []string{"chatgpt", "claude"},
		RenderMarkdown:  true,
	}
	cfg.normalize()
	return cfg
}

// TemplateConfig returns the starter template configuration.
func TemplateConfig() *Config {
	cfg := DefaultConfig()
	cfg.Backends = builtinBackendScaffold()
	cfg.CustomBackends = map[string]CustomBackend{
		"myproxy": {
			BaseURL:   "https://llm.example.com/v1",
			Model:     "gpt-4o-mini",
			APIKeyEnv: "MYPROXY_API_KEY",
			Headers: map[string]string{
				"X-Client-Name": "polymind",
			},
		},
	}
	cfg.Aliases = map[string]string{
		"all":   "chatgpt,claude,gemini",
		"local": "ollama,llama",
	}
	cfg.LocalCommand = "/usr/local/bin/my-agent"
	cfg.MaxParallel = 4
	return cfg
}

// EnsureTemplate creates template config file if it does not already exist.
func EnsureTemplate(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("template path is empty")
	}
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat template: %w", err)
	}
	return writeSecureJSON(path, TemplateConfig().compactForSave())
}

func (c *Config) normalize() {
	if c.Version == 0 {
		c.Version = currentVersion
	}
	if c.Backends == nil {
		c.Backends = map[string]BackendConfig{}
	}
	if c.CustomBackends == nil {
		c.CustomBackends = map[string]CustomBackend{}
	}
	aliases := make(map[string]string, len(c.Aliases))
	for name, members := range c.Aliases {
		name = normalizeName(name)
		members = joinBackends(SplitBackends(members))
		if name == "" || members == "" {
			continue
		}
		aliases[name] = members
	}
	c.Aliases = aliases
	c.DefaultBackends = SplitBackends(strings.Join(c.DefaultBackends, ","))
	if c.MaxParallel < 0 {
		c.MaxParallel = 0
	}
	c.HistoryPath = strings.TrimSpace(c.HistoryPath)
	c.LocalCommand = strings.TrimSpace(c.LocalCommand)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
}

// BackendNames returns all backend names (built-in and custom), sorted.
func (c *Config) BackendNames() []string {
	names := BuiltinBackendNames()
	for name := range c.CustomBackends {
		if !IsBuiltinBackend(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// BackendExists reports whether backend is configured or built in.
func (c *Config) BackendExists(name string) bool {
	name = normalizeName(name)
	if IsBuiltinBackend(name) {
		return true
	}
	_, ok := c.CustomBackends[name]
	return ok
}

// IsCustomBackend reports whether name is a custom OpenAI-compatible backend.
func (c *Config) IsCustomBackend(name string) bool {
	_, ok := c.CustomBackends[normalizeName(name)]
	return ok && !IsBuiltinBackend(name)
}

// Kind returns the transport kind serving backend.
func (c *Config) Kind(backend string) string {
	if c.IsCustomBackend(backend) {
		return "openai-compatible"
	}
	if defaults, ok := BuiltinBackendDefaults(backend); ok {
		return defaults.Kind
	}
	return ""
}

// ResolveModel returns the effective model for backend.
func (c *Config) ResolveModel(backend string) string {
	backend = normalizeName(backend)
	if custom, ok := c.CustomBackends[backend]; ok && !IsBuiltinBackend(backend) {
		return strings.TrimSpace(custom.Model)
	}
	if m := strings.TrimSpace(c.Backends[backend].Model); m != "" {
		return m
	}
	defaults, _ := BuiltinBackendDefaults(backend)
	return defaults.Model
}

// SetModel sets the model for backend.
func (c *Config) SetModel(backend, model string) {
	backend = normalizeName(backend)
	c.normalize()
	model = strings.TrimSpace(model)
	if custom, ok := c.CustomBackends[backend]; ok {
		custom.Model = model
		c.CustomBackends[backend] = custom
		return
	}
	bc := c.Backends[backend]
	bc.Model = model
	c.Backends[backend] = bc
}

// ResolveBaseURL returns the effective endpoint for backend. For backends
// whose endpoint comes from the environment, the variable wins over the
// stored value.
func (c *Config) ResolveBaseURL(backend string) string {
	backend = normalizeName(backend)
	if backend == "" {
		return ""
	}

	if custom, ok := c.CustomBackends[backend]; ok && !IsBuiltinBackend(backend) {
		return strings.TrimRight(strings.TrimSpace(custom.BaseURL), "/")
	}

	defaults, _ := BuiltinBackendDefaults(backend)
	if env := defaults.BaseURLEnv; env != "" {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v
		}
	}
	if v := strings.TrimSpace(c.Backends[backend].BaseURL); v != "" {
		return strings.TrimRight(v, "/")
	}
	return strings.TrimRight(defaults.BaseURL, "/")
}

// SetBaseURL sets a backend endpoint.
func (c *Config) SetBaseURL(backend, baseURL string) {
	backend = normalizeName(backend)
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	c.normalize()
	if custom, ok := c.CustomBackends[backend]; ok {
		custom.BaseURL = baseURL
		c.CustomBackends[backend] = custom
		return
	}
	bc := c.Backends[backend]
	bc.BaseURL = baseURL
	c.Backends[backend] = bc
}

// ResolveAPIKey returns effective API key, preferring configured env vars over stored key.
func (c *Config) ResolveAPIKey(backend string) string {
	backend = normalizeName(backend)
	if backend == "" {
		return ""
	}

	if custom, ok := c.CustomBackends[backend]; ok && !IsBuiltinBackend(backend) {
		if v := envValue(custom.APIKeyEnv); v != "" {
			return v
		}
		return strings.TrimSpace(custom.APIKey)
	}

	bc := c.Backends[backend]
	defaults, _ := BuiltinBackendDefaults(backend)
	for _, env := range []string{bc.APIKeyEnv, defaults.APIKeyEnv, defaults.AltAPIKeyEnv} {
		if v := envValue(env); v != "" {
			return v
		}
	}
	return strings.TrimSpace(bc.APIKey)
}

// APIKeyEnv returns the variable consulted first for backend's API key.
func (c *Config) APIKeyEnv(backend string) string {
	backend = normalizeName(backend)
	if custom, ok := c.CustomBackends[backend]; ok && !IsBuiltinBackend(backend) {
		return strings.TrimSpace(custom.APIKeyEnv)
	}
	if env := strings.TrimSpace(c.Backends[backend].APIKeyEnv); env != "" {
		return env
	}
	defaults, _ := BuiltinBackendDefaults(backend)
	return defaults.APIKeyEnv
}

// APIKeySource names where ResolveAPIKey finds backend's key: the
// environment variable that holds it, "config", or "" when there is none.
func (c *Config) APIKeySource(backend string) string {
	backend = normalizeName(backend)
	envs := []string{c.APIKeyEnv(backend)}
	if _, custom := c.CustomBackends[backend]; !custom || IsBuiltinBackend(backend) {
		defaults, _ := BuiltinBackendDefaults(backend)
		envs = append(envs, defaults.APIKeyEnv, defaults.AltAPIKeyEnv)
	}
	for _, env := range envs {
		if envValue(env) != "" {
			return env
		}
	}
	if c.HasStoredAPIKey(backend) {
		return "config"
	}
	return ""
}

// UsesAPIKey reports whether backend authenticates with an API key. Custom
// backends always may; endpoint and process built-ins never do.
func (c *Config) UsesAPIKey(backend string) bool {
	backend = normalizeName(backend)
	defaults, builtin := BuiltinBackendDefaults(backend)
	if !builtin {
		return c.IsCustomBackend(backend)
	}
	return defaults.APIKeyEnv != ""
}

// HasStoredAPIKey reports whether an API key is saved in the config file.
func (c *Config) HasStoredAPIKey(backend string) bool {
	backend = normalizeName(backend)
	if custom, ok := c.CustomBackends[backend]; ok && !IsBuiltinBackend(backend) {
		return strings.TrimSpace(custom.APIKey) != ""
	}
	return strings.TrimSpace(c.Backends[backend].APIKey) != ""
}

// SetAPIKey sets a backend API key in config.
func (c *Config) SetAPIKey(backend string, key string) {
	backend = normalizeName(backend)
	c.normalize()
	if custom, ok := c.CustomBackends[backend]; ok {
		custom.APIKey = strings.TrimSpace(key)
		c.CustomBackends[backend] = custom
		return
	}
	bc := c.Backends[backend]
	bc.APIKey = strings.TrimSpace(key)
	c.Backends[backend] = bc
}

// SetAPIKeyEnv sets a backend API key environment variable name.
func (c *Config) SetAPIKeyEnv(backend, envVar string) {
	backend = normalizeName(backend)
	envVar = strings.TrimSpace(envVar)
	c.normalize()
	if custom, ok := c.CustomBackends[backend]; ok {
		custom.APIKeyEnv = envVar
		c.CustomBackends[backend] = custom
		return
	}
	bc := c.Backends[backend]
	bc.APIKeyEnv = envVar
	c.Backends[backend] = bc
}

// Setting names the variable a backend reports when its required
// credential, endpoint or command is missing.
func (c *Config) Setting(backend string) string {
	backend = normalizeName(backend)
	defaults, builtin := BuiltinBackendDefaults(backend)
	switch {
	case !builtin:
		if env := c.APIKeyEnv(backend); env != "" {
			return env
		}
		return "API key for " + backend
	case defaults.Kind == "process":
		return envLocalCommand
	case defaults.BaseURLEnv != "":
		return defaults.BaseURLEnv
	default:
		if env := c.APIKeyEnv(backend); env != "" {
			return env
		}
		return "API key for " + backend
	}
}

// ResolveTemperature returns the sampling temperature sent to backend, or
// zero to let the backend choose.
func (c *Config) ResolveTemperature(backend string) float64 {
	backend = normalizeName(backend)
	if custom, ok := c.CustomBackends[backend]; ok && !IsBuiltinBackend(backend) {
		return custom.Temperature
	}
	defaults, _ := BuiltinBackendDefaults(backend)
	return defaults.Temperature
}

// AddCustomBackend adds or updates a custom OpenAI-compatible backend.
func (c *Config) AddCustomBackend(name string, input CustomBackend) error {
	name = normalizeName(name)
	if name == "" {
		return fmt.Errorf("backend name is required")
	}
	if strings.ContainsAny(name, ", \t") {
		return fmt.Errorf("backend name %q must not contain commas or spaces", name)
	}
	if IsBuiltinBackend(name) {
		return fmt.Errorf("%q is a built-in backend", name)
	}
	if strings.TrimSpace(input.BaseURL) == "" {
		return fmt.Errorf("base_url is required")
	}
	if strings.TrimSpace(input.Model) == "" {
		return fmt.Errorf("model is required")
	}

	input.BaseURL = strings.TrimRight(strings.TrimSpace(input.BaseURL), "/")
	input.Model = strings.TrimSpace(input.Model)
	if strings.TrimSpace(input.ChatPath) == "" {
		input.ChatPath = "/chat/completions"
	}
	if strings.TrimSpace(input.AuthHeader) == "" {
		input.AuthHeader = "Authorization"
	}
	if input.AuthPrefix == "" {
		input.AuthPrefix = "Bearer "
	}
	if input.Headers == nil {
		input.Headers = map[string]string{}
	}

	c.normalize()
	c.CustomBackends[name] = input
	return nil
}

// RemoveCustomBackend removes a custom backend from config.
func (c *Config) RemoveCustomBackend(name string) error {
	name = normalizeName(name)
	if name == "" {
		return fmt.Errorf("backend name is required")
	}
	if IsBuiltinBackend(name) {
		return fmt.Errorf("cannot remove built-in backend")
	}
	if _, ok := c.CustomBackends[name]; !ok {
		return fmt.Errorf("backend %q not found", name)
	}
	delete(c.CustomBackends, name)
	return nil
}

// ResolveHistoryPath returns POLYMIND_HISTORY, the configured path, or
// history.json next to the config file, in that order.
func (c *Config) ResolveHistoryPath(configPath string) string {
	if v := envValue(envHistoryPath); v != "" {
		return filepath.Clean(v)
	}
	if c.HistoryPath != "" {
		return filepath.Clean(expandHome(c.HistoryPath))
	}
	return filepath.Join(filepath.Dir(configPath), defaultHistoryFileName)
}

// ResolveLocalCommand returns the local agent command and its leading
// arguments. LOCAL_AGENT_CMD names a single executable and wins over the
// configured command.
func (c *Config) ResolveLocalCommand() (string, []string) {
	if v := envValue(envLocalCommand); v != "" {
		return v, nil
	}
	return c.LocalCommand, append([]string(nil), c.LocalArgs...)
}

// ResolveLogLevel returns POLYMIND_LOG_LEVEL or the configured level.
func (c *Config) ResolveLogLevel() string {
	if v := envValue(envLogLevel); v != "" {
		return strings.ToLower(v)
	}
	return c.LogLevel
}

// TracingEndpoint returns the OTLP endpoint, empty when tracing is off.
func (c *Config) TracingEndpoint() string {
	return envValue(envOTLPEndpoint)
}

func (c *Config) compactForSave() *Config {
	compacted := *c
	compacted.envAliases = nil

	compacted.Backends = nil
	if len(c.Backends) > 0 {
		backends := map[string]BackendConfig{}
		for name, raw := range c.Backends {
			name = normalizeName(name)
			if name == "" {
				continue
			}
			normalized := BackendConfig{
				APIKey:    strings.TrimSpace(raw.APIKey),
				Model:     strings.TrimSpace(raw.Model),
				BaseURL:   strings.TrimRight(strings.TrimSpace(raw.BaseURL), "/"),
				APIKeyEnv: strings.TrimSpace(raw.APIKeyEnv),
			}
			if normalized == (BackendConfig{}) {
				continue
			}
			backends[name] = normalized
		}
		if len(backends) > 0 {
			compacted.Backends = backends
		}
	}

	compacted.CustomBackends = nil
	if len(c.CustomBackends) > 0 {
		customBackends := map[string]CustomBackend{}
		for name, raw := range c.CustomBackends {
			name = normalizeName(name)
			if name == "" {
				continue
			}
			normalized := CustomBackend{
				BaseURL:     strings.TrimRight(strings.TrimSpace(raw.BaseURL), "/"),
				APIKey:      strings.TrimSpace(raw.APIKey),
				Model:       strings.TrimSpace(raw.Model),
				APIKeyEnv:   strings.TrimSpace(raw.APIKeyEnv),
				ChatPath:    strings.TrimSpace(raw.ChatPath),
				AuthHeader:  strings.TrimSpace(raw.AuthHeader),
				AuthPrefix:  raw.AuthPrefix,
				Temperature: raw.Temperature,
			}
			if normalized.BaseURL == "" {
				continue
			}
			if normalized.ChatPath == "/chat/completions" {
				normalized.ChatPath = ""
			}
			if normalized.AuthHeader == "Authorization" {
				normalized.AuthHeader = ""
			}
			if normalized.AuthPrefix == "Bearer " {
				normalized.AuthPrefix = ""
			}

			headers := map[string]string{}
			for key, value := range raw.Headers {
				key = strings.TrimSpace(key)
				value = strings.TrimSpace(value)
				if key == "" || value == "" {
					continue
				}
				headers[key] = value
			}
			if len(headers) > 0 {
				normalized.Headers = headers
			}

			customBackends[name] = normalized
		}
		if len(customBackends) > 0 {
			compacted.CustomBackends = customBackends
		}
	}

	if len(c.Aliases) == 0 {
		compacted.Aliases = nil
	}
	return &compacted
}

// Redacted returns a compacted copy with every stored API key passed through
// mask, ready to print.
func (c *Config) Redacted(mask func(string) string) *Config {
	out := c.compactForSave()
	if out.Backends != nil {
		backends := make(map[string]BackendConfig, len(out.Backends))
		for name, b := range out.Backends {
			if b.APIKey != "" {
				b.APIKey = mask(b.APIKey)
			}
			backends[name] = b
		}
		out.Backends = backends
	}
	if out.CustomBackends != nil {
		custom := make(map[string]CustomBackend, len(out.CustomBackends))
		for name, b := range out.CustomBackends {
			if b.APIKey != "" {
				b.APIKey = mask(b.APIKey)
			}
			custom[name] = b
		}
		out.CustomBackends = custom
	}
	return out
}

func builtinBackendScaffold() map[string]BackendConfig {
	backends := map[string]BackendConfig{}
	for _, name := range BuiltinBackendNames() {
		defaults, _ := BuiltinBackendDefaults(name)
		bc := BackendConfig{
			Model:     defaults.Model,
			APIKeyEnv: defaults.APIKeyEnv,
		}
		if defaults.Kind == "ollama" {
			bc.BaseURL = defaults.BaseURL
		}
		if bc == (BackendConfig{}) {
			continue
		}
		backends[name] = bc
	}
	return backends
}

func writeSecureJSON(path string, payload any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.Chmod(dir, 0o700); err != nil {
		return fmt.Errorf("set config directory permissions: %w", err)
	}

	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, encoded, 0o600); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("set config file permissions: %w", err)
	}
	return nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func envValue(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(name))
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
