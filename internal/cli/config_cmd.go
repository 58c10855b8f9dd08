package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/sasanktumpati/polymind/internal/config"
	"github.com/sasanktumpati/polymind/internal/history"
)

// configSetters are the scalar settings "config set" may change.
var configSetters = map[string]func(cfg *config.Config, value string) error{
	"default_backends": func(cfg *config.Config, v string) error {
		backends := config.SplitBackends(v)
		if len(backends) == 0 {
			return fmt.Errorf("default_backends needs at least one backend")
		}
		cfg.DefaultBackends = backends
		return nil
	},
	"max_parallel": func(cfg *config.Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("max_parallel: expected a non-negative integer")
		}
		cfg.MaxParallel = n
		return nil
	},
	"render_markdown": func(cfg *config.Config, v string) error {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("render_markdown: expected true or false")
		}
		cfg.RenderMarkdown = on
		return nil
	},
	"log_level": func(cfg *config.Config, v string) error {
		switch strings.ToLower(v) {
		case "debug", "info", "warn", "warning", "error":
			cfg.LogLevel = strings.ToLower(v)
			return nil
		}
		return fmt.Errorf("log_level: expected debug, info, warn or error")
	},
	"history_path": func(cfg *config.Config, v string) error {
		cfg.HistoryPath = v
		return nil
	},
	"local_command": func(cfg *config.Config, v string) error {
		cfg.LocalCommand = v
		return nil
	},
}

func configSetterNames() []string {
	names := make([]string, 0, len(configSetters))
	for name := range configSetters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (a *App) runConfig(args []string) error {
	if len(args) == 0 {
		return a.configShow(false)
	}
	if a.showTopicHelpIfRequested("config", args, 0) {
		return nil
	}

	sub := strings.ToLower(strings.TrimSpace(args[0]))
	if a.showTopicHelpIfRequested("config", args, 1) {
		return nil
	}
	switch sub {
	case "show":
		raw := false
		rest, err := scanOptions(args[1:], []optionSpec{
			{Names: []string{"raw"}, Set: func(string) error { raw = true; return nil }},
		})
		if err != nil {
			return err
		}
		if len(rest) > 0 {
			return usageError("polymind config show [--raw] (unexpected: %s)", strings.Join(rest, " "))
		}
		return a.configShow(raw)
	case "path":
		fmt.Fprintln(a.stdout, a.cfgPath)
		return nil
	case "history":
		fmt.Fprintln(a.stdout, a.history.Path())
		return nil
	case "template":
		fmt.Fprintln(a.stdout, config.TemplatePathForConfig(a.cfgPath))
		return nil
	case "set":
		if len(args) < 3 {
			return usageError("polymind config set <key> <value>")
		}
		return a.configSet(args[1], strings.Join(args[2:], " "))
	default:
		return unknownSubcommand("config", sub)
	}
}

// configShow prints the effective config with stored API keys masked, or the
// file bytes untouched with raw.
func (a *App) configShow(raw bool) error {
	if raw {
		buf, err := os.ReadFile(a.cfgPath)
		if err != nil {
			return err
		}
		if _, err := a.stdout.Write(buf); err != nil {
			return err
		}
		if len(buf) == 0 || buf[len(buf)-1] != '\n' {
			fmt.Fprintln(a.stdout)
		}
		return nil
	}

	buf, err := json.MarshalIndent(a.cfg.Redacted(maskForShow), "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	fmt.Fprintln(a.stdout, string(buf))
	return nil
}

func (a *App) configSet(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)
	set, ok := configSetters[key]
	if !ok {
		return fmt.Errorf("unknown setting %q (settable: %s)", key, strings.Join(configSetterNames(), ", "))
	}
	if value == "" {
		return fmt.Errorf("%s requires a non-empty value", key)
	}
	if err := set(a.cfg, value); err != nil {
		return err
	}
	if err := a.saveConfig(); err != nil {
		return err
	}
	if key == "history_path" {
		a.history = history.NewStore(a.cfg.ResolveHistoryPath(a.cfgPath))
	}
	fmt.Fprintf(a.stdout, "%s = %s\n", key, value)
	return nil
}
