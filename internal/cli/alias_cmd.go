package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

func (a *App) runAlias(args []string) error {
	if len(args) == 0 {
		return a.aliasList()
	}
	if a.showTopicHelpIfRequested("alias", args, 0) {
		return nil
	}

	sub := strings.ToLower(strings.TrimSpace(args[0]))
	switch sub {
	case "list", "ls":
		return a.aliasList()
	case "set", "add":
		if a.showTopicHelpIfRequested("alias", args, 1) {
			return nil
		}
		if len(args) < 3 {
			return usageError("polymind alias set <name> <backend1,backend2>")
		}
		return a.aliasSet(args[1], args[2:])
	case "remove", "rm", "delete":
		if a.showTopicHelpIfRequested("alias", args, 1) {
			return nil
		}
		if len(args) < 2 {
			return usageError("polymind alias remove <name>")
		}
		name := strings.ToLower(strings.TrimSpace(args[1]))
		if !a.cfg.RemoveAlias(name) {
			return fmt.Errorf("alias %q not found", name)
		}
		if err := a.saveConfig(); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "removed alias %s\n", name)
		return nil
	default:
		return unknownSubcommand("alias", sub)
	}
}

func (a *App) aliasList() error {
	names := a.cfg.AliasNames()
	if len(names) == 0 {
		fmt.Fprintln(a.stdout, "No aliases defined.")
		return nil
	}
	table := a.cfg.AliasTable()
	tw := tabwriter.NewWriter(a.stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tBACKENDS\tSOURCE")
	for _, name := range names {
		source := "env"
		if _, ok := a.cfg.Aliases[name]; ok {
			source = "config"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name, table[name], source)
	}
	return tw.Flush()
}

func (a *App) aliasSet(name string, backends []string) error {
	if err := a.cfg.SetAlias(name, backends); err != nil {
		return err
	}
	if err := a.saveConfig(); err != nil {
		return err
	}
	name = strings.ToLower(strings.TrimSpace(name))
	fmt.Fprintf(a.stdout, "alias %s -> %s\n", name, strings.Join(a.cfg.ExpandBackends(name), ","))
	return nil
}

// defineAlias handles the REPL form NAME:b1,b2.
func (a *App) defineAlias(spec string) error {
	name, members, ok := strings.Cut(spec, ":")
	if !ok {
		return usageError("--alias=NAME:backend1,backend2")
	}
	return a.aliasSet(name, []string{members})
}
