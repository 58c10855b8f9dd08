package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/sasanktumpati/polymind/internal/config"
)

func (a *App) runBackends(args []string) error {
	if len(args) == 0 {
		return a.backendList()
	}
	if a.showTopicHelpIfRequested("backends", args, 0) {
		return nil
	}

	sub := strings.ToLower(strings.TrimSpace(args[0]))
	switch sub {
	case "list", "ls":
		return a.backendList()
	case "show", "inspect":
		if a.showTopicHelpIfRequested("backends", args, 1) {
			return nil
		}
		if len(args) < 2 {
			return usageError("polymind backends show <name>")
		}
		return a.backendShow(args[1])
	case "add":
		if a.showTopicHelpIfRequested("backends", args, 1) {
			return nil
		}
		return a.backendAdd(args[1:])
	case "remove", "rm", "delete":
		if a.showTopicHelpIfRequested("backends", args, 1) {
			return nil
		}
		if len(args) < 2 {
			return usageError("polymind backends remove <name>")
		}
		name := strings.ToLower(strings.TrimSpace(args[1]))
		if err := a.cfg.RemoveCustomBackend(name); err != nil {
			return err
		}
		if err := a.saveConfig(); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "removed backend %s\n", name)
		return nil
	case "model":
		if a.showTopicHelpIfRequested("backends", args, 1) {
			return nil
		}
		if len(args) < 2 {
			return usageError("polymind backends model <name> [model]")
		}
		return a.backendSetting(args[1], args[2:], "model", a.cfg.ResolveModel, a.cfg.SetModel)
	case "url":
		if a.showTopicHelpIfRequested("backends", args, 1) {
			return nil
		}
		if len(args) < 2 {
			return usageError("polymind backends url <name> [url]")
		}
		return a.backendSetting(args[1], args[2:], "url", a.cfg.ResolveBaseURL, a.cfg.SetBaseURL)
	default:
		return unknownSubcommand("backends", sub)
	}
}

func (a *App) backendList() error {
	tw := tabwriter.NewWriter(a.stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tMODEL\tENDPOINT\tSTATUS")
	for _, name := range a.cfg.BackendNames() {
		endpoint := a.cfg.ResolveBaseURL(name)
		if a.cfg.Kind(name) == "process" {
			command, _ := a.cfg.ResolveLocalCommand()
			endpoint = command
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			name, a.cfg.Kind(name), dash(a.cfg.ResolveModel(name)), dash(endpoint), a.backendStatus(name))
	}
	return tw.Flush()
}

// backendStatus mirrors the checks a client makes before its first request.
func (a *App) backendStatus(name string) string {
	missing := "missing " + a.cfg.Setting(name)
	switch a.cfg.Kind(name) {
	case "ollama":
		return "ready"
	case "generate":
		if a.cfg.ResolveBaseURL(name) == "" {
			return missing
		}
		return "ready"
	case "process":
		if command, _ := a.cfg.ResolveLocalCommand(); command == "" {
			return missing
		}
		return "ready"
	case "openai-compatible":
		custom := a.cfg.CustomBackends[name]
		if (custom.APIKey != "" || custom.APIKeyEnv != "") && a.cfg.ResolveAPIKey(name) == "" {
			return missing
		}
		return "ready"
	default:
		if a.cfg.ResolveAPIKey(name) == "" {
			return missing
		}
		return "ready"
	}
}

func (a *App) backendShow(name string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return fmt.Errorf("backend name is required")
	}
	if !a.cfg.BackendExists(name) {
		return fmt.Errorf("backend %q is not configured", name)
	}

	type backendView struct {
		Name      string   `json:"name"`
		Kind      string   `json:"kind"`
		Model     string   `json:"model,omitempty"`
		BaseURL   string   `json:"base_url,omitempty"`
		Command   string   `json:"command,omitempty"`
		Args      []string `json:"args,omitempty"`
		APIKeyEnv string   `json:"api_key_env,omitempty"`
		HasAPIKey bool     `json:"has_api_key"`
		Custom    bool     `json:"custom"`
		Status    string   `json:"status"`
		Aliases   []string `json:"aliases,omitempty"`
	}

	view := backendView{
		Name:      name,
		Kind:      a.cfg.Kind(name),
		Model:     a.cfg.ResolveModel(name),
		BaseURL:   a.cfg.ResolveBaseURL(name),
		APIKeyEnv: a.cfg.APIKeyEnv(name),
		HasAPIKey: a.cfg.HasStoredAPIKey(name),
		Custom:    a.cfg.IsCustomBackend(name),
		Status:    a.backendStatus(name),
	}
	if view.Kind == "process" {
		view.Command, view.Args = a.cfg.ResolveLocalCommand()
	}
	for _, alias := range a.cfg.AliasNames() {
		for _, member := range a.cfg.ExpandBackends(alias) {
			if member == name {
				view.Aliases = append(view.Aliases, alias)
				break
			}
		}
	}

	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}

func (a *App) backendAdd(args []string) error {
	if len(args) == 0 {
		return usageError("polymind backends add <name> --base-url <url> --model <id> [options]")
	}
	name := strings.ToLower(strings.TrimSpace(args[0]))
	if name == "" {
		return fmt.Errorf("backend name is required")
	}

	input := config.CustomBackend{Headers: map[string]string{}}

	rest, err := scanOptions(args[1:], []optionSpec{
		{Names: []string{"base-url"}, TakesValue: true, Set: func(v string) error { input.BaseURL = strings.TrimSpace(v); return nil }},
		{Names: []string{"model"}, TakesValue: true, Set: func(v string) error { input.Model = strings.TrimSpace(v); return nil }},
		{Names: []string{"api-key"}, TakesValue: true, Set: func(v string) error { input.APIKey = strings.TrimSpace(v); return nil }},
		{Names: []string{"api-key-env"}, TakesValue: true, Set: func(v string) error { input.APIKeyEnv = strings.TrimSpace(v); return nil }},
		{Names: []string{"chat-path"}, TakesValue: true, Set: func(v string) error { input.ChatPath = strings.TrimSpace(v); return nil }},
		{Names: []string{"auth-header"}, TakesValue: true, Set: func(v string) error { input.AuthHeader = strings.TrimSpace(v); return nil }},
		{Names: []string{"auth-prefix"}, TakesValue: true, Set: func(v string) error { input.AuthPrefix = v; return nil }},
		{Names: []string{"temperature"}, TakesValue: true, Set: func(v string) error {
			t, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil || t < 0 {
				return fmt.Errorf("--temperature: expected a non-negative number")
			}
			input.Temperature = t
			return nil
		}},
		{Names: []string{"header"}, TakesValue: true, Set: func(v string) error {
			k, val, err := parseKV(v)
			if err != nil {
				return fmt.Errorf("--header: %w", err)
			}
			input.Headers[k] = val
			return nil
		}},
	})
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(rest, " "))
	}

	if err := a.cfg.AddCustomBackend(name, input); err != nil {
		return err
	}
	if err := a.saveConfig(); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "added backend %s\n", name)
	return nil
}

// backendSetting prints a backend setting, or stores it when a value is given.
func (a *App) backendSetting(name string, rest []string, label string, get func(string) string, set func(string, string)) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if !a.cfg.BackendExists(name) {
		return fmt.Errorf("backend %q is not configured", name)
	}
	if len(rest) == 0 {
		fmt.Fprintln(a.stdout, dash(get(name)))
		return nil
	}
	if len(rest) > 1 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(rest[1:], " "))
	}
	value := strings.TrimSpace(rest[0])
	set(name, value)
	if err := a.saveConfig(); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "%s for %s set to %s\n", label, name, value)
	return nil
}

func dash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}
