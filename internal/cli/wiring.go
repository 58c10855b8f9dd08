package cli

import (
	"github.com/sasanktumpati/polymind/internal/config"
	"github.com/sasanktumpati/polymind/internal/dispatch"
	"github.com/sasanktumpati/polymind/internal/providers"
)

// buildRegistry binds every configured backend to an adapter. A backend
// whose client cannot be built still resolves, so asking it yields a
// "backend unavailable" failure instead of "unknown backend".
func buildRegistry(cfg *config.Config) *dispatch.Registry {
	adapters := map[string]dispatch.Adapter{}
	for _, name := range cfg.BackendNames() {
		client, err := newClient(cfg, name)
		if err != nil {
			adapters[name] = dispatch.Unavailable(err)
			continue
		}
		adapters[name] = dispatch.Wrap(client)
	}
	return dispatch.NewRegistry(adapters)
}

func newClient(cfg *config.Config, name string) (providers.Client, error) {
	opts := providers.ClientOptions{
		Name:        name,
		APIKey:      cfg.ResolveAPIKey(name),
		BaseURL:     cfg.ResolveBaseURL(name),
		Model:       cfg.ResolveModel(name),
		Setting:     cfg.Setting(name),
		Temperature: cfg.ResolveTemperature(name),
	}

	if cfg.IsCustomBackend(name) {
		custom := cfg.CustomBackends[name]
		opts.Headers = custom.Headers
		return providers.NewOpenAICompatible(providers.OpenAICompatibleSettings{
			Name:          name,
			ChatPath:      custom.ChatPath,
			AuthHeader:    custom.AuthHeader,
			AuthPrefix:    custom.AuthPrefix,
			RequireAPIKey: custom.APIKey != "" || custom.APIKeyEnv != "",
		}, opts)
	}

	kind := cfg.Kind(name)
	if kind == "process" {
		opts.Command, opts.Args = cfg.ResolveLocalCommand()
	}
	return providers.New(kind, opts)
}
