package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"
)

func (a *App) runKeys(args []string) error {
	if len(args) == 0 {
		return a.keyList()
	}
	if a.showTopicHelpIfRequested("key", args, 0) || a.showTopicHelpIfRequested("key", args, 1) {
		return nil
	}

	switch sub := strings.ToLower(strings.TrimSpace(args[0])); sub {
	case "list", "ls":
		return a.keyList()
	case "set":
		return a.keySet(args[1:])
	case "clear":
		return a.keyClear(args[1:])
	case "show":
		return a.keyShow(args[1:])
	default:
		return unknownSubcommand("key", sub)
	}
}

// keyBackend reads the backend argument of a key subcommand and checks that
// it takes an API key at all.
func (a *App) keyBackend(args []string, usage string) (string, error) {
	if len(args) == 0 {
		return "", usageError(usage)
	}
	backend := strings.ToLower(strings.TrimSpace(args[0]))
	if !a.cfg.BackendExists(backend) {
		return "", fmt.Errorf("backend %q is not configured", backend)
	}
	if !a.cfg.UsesAPIKey(backend) {
		return "", fmt.Errorf("backend %q does not use an API key (it needs %s)", backend, a.cfg.Setting(backend))
	}
	return backend, nil
}

// keyList prints one row per key-based backend with where its key comes from.
func (a *App) keyList() error {
	tw := tabwriter.NewWriter(a.stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "BACKEND\tSOURCE\tKEY")
	for _, name := range a.cfg.BackendNames() {
		if !a.cfg.UsesAPIKey(name) {
			continue
		}
		source := a.cfg.APIKeySource(name)
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name, dash(source), maskForShow(a.cfg.ResolveAPIKey(name)))
	}
	return tw.Flush()
}

func (a *App) keySet(args []string) error {
	backend, err := a.keyBackend(args, "polymind key set <backend> [--value <key>] [--env <ENV_VAR>]")
	if err != nil {
		return err
	}

	var value, envVar string
	rest, err := scanOptions(args[1:], []optionSpec{
		{Names: []string{"value"}, TakesValue: true, Set: func(v string) error { value = strings.TrimSpace(v); return nil }},
		{Names: []string{"env"}, TakesValue: true, Set: func(v string) error { envVar = strings.TrimSpace(v); return nil }},
	})
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(rest, " "))
	}

	if value == "" && envVar == "" {
		if value, err = a.readSecret(fmt.Sprintf("%s API key: ", backend)); err != nil {
			return err
		}
		if value == "" {
			return fmt.Errorf("no API key entered")
		}
	}
	if envVar != "" {
		a.cfg.SetAPIKeyEnv(backend, envVar)
	}
	if value != "" {
		a.cfg.SetAPIKey(backend, value)
	}
	if err := a.saveConfig(); err != nil {
		return err
	}

	if envVar != "" {
		fmt.Fprintf(a.stdout, "updated credentials for %s (env=%s)\n", backend, envVar)
	} else {
		fmt.Fprintf(a.stdout, "updated credentials for %s\n", backend)
	}
	return nil
}

func (a *App) keyClear(args []string) error {
	backend, err := a.keyBackend(args, "polymind key clear <backend>")
	if err != nil {
		return err
	}
	a.cfg.SetAPIKey(backend, "")
	a.cfg.SetAPIKeyEnv(backend, "")
	if err := a.saveConfig(); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "cleared credentials for %s\n", backend)
	if source := a.cfg.APIKeySource(backend); source != "" {
		fmt.Fprintf(a.stdout, "note: %s still supplies a key\n", source)
	}
	return nil
}

func (a *App) keyShow(args []string) error {
	backend, err := a.keyBackend(args, "polymind key show <backend>")
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "backend=%s\n", backend)
	fmt.Fprintf(a.stdout, "api_key=%s\n", maskForShow(a.cfg.ResolveAPIKey(backend)))
	fmt.Fprintf(a.stdout, "source=%s\n", dash(a.cfg.APIKeySource(backend)))
	if envVar := a.cfg.APIKeyEnv(backend); envVar != "" {
		fmt.Fprintf(a.stdout, "api_key_env=%s\n", envVar)
	}
	return nil
}

// readSecret reads a line without echo when stdin is a terminal.
func (a *App) readSecret(prompt string) (string, error) {
	if file, ok := a.stdin.(interface{ Fd() uintptr }); ok && term.IsTerminal(int(file.Fd())) {
		fmt.Fprint(a.stdout, prompt)
		secret, err := term.ReadPassword(int(file.Fd()))
		fmt.Fprintln(a.stdout)
		if err != nil {
			return "", fmt.Errorf("read api key: %w", err)
		}
		return strings.TrimSpace(string(secret)), nil
	}
	return readLine(a.stdin, a.stdout, prompt)
}

// maskForShow keeps the last four characters of keys long enough to carry
// them safely.
func maskForShow(v string) string {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		return "<empty>"
	case len(v) <= 6:
		return "******"
	}
	return strings.Repeat("*", len(v)-4) + v[len(v)-4:]
}
