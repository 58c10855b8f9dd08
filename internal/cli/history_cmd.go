package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sasanktumpati/polymind/internal/dispatch"
	"github.com/sasanktumpati/polymind/internal/history"
	"github.com/sasanktumpati/polymind/internal/render"
)

const (
	defaultHistoryLimit = 5
	defaultExportPath   = "history_export.json"
)

func (a *App) runHistory(args []string) error {
	if len(args) == 0 {
		return a.historyShow(defaultHistoryLimit, render.FormatPlain)
	}
	if a.showTopicHelpIfRequested("history", args, 0) {
		return nil
	}

	sub := strings.ToLower(strings.TrimSpace(args[0]))
	switch sub {
	case "show", "view", "list":
		if a.showTopicHelpIfAnyFlagRequested("history", args, 1) {
			return nil
		}
		limit, format := defaultHistoryLimit, render.FormatPlain
		rest, err := scanOptions(args[1:], []optionSpec{
			{Names: []string{"format", "f"}, TakesValue: true, Set: func(v string) error {
				f, ok := render.ParseFormat(v)
				if !ok {
					return fmt.Errorf("--format: unknown format %q", v)
				}
				format = f
				return nil
			}},
			{Names: []string{"limit", "n"}, TakesValue: true, Set: func(v string) error {
				n, err := strconv.Atoi(strings.TrimSpace(v))
				if err != nil || n <= 0 {
					return fmt.Errorf("--limit: expected a positive integer")
				}
				limit = n
				return nil
			}},
		})
		if err != nil {
			return err
		}
		if len(rest) > 0 {
			return fmt.Errorf("unexpected arguments: %s", strings.Join(rest, " "))
		}
		return a.historyShow(limit, format)
	case "clear":
		if a.showTopicHelpIfRequested("history", args, 1) {
			return nil
		}
		return a.historyClear()
	case "export":
		if a.showTopicHelpIfRequested("history", args, 1) {
			return nil
		}
		path := defaultExportPath
		if len(args) > 1 {
			path = strings.TrimSpace(args[1])
		}
		return a.historyExport(path)
	case "path":
		fmt.Fprintln(a.stdout, a.history.Path())
		return nil
	default:
		return unknownSubcommand("history", sub)
	}
}

// historyShow prints the newest entries. The plain format adds a header per
// entry; other formats print each entry as its own rendered document.
func (a *App) historyShow(limit int, format render.Format) error {
	entries, err := a.history.List(limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.stdout, "No history yet.")
		return nil
	}
	for i, entry := range entries {
		if i > 0 {
			fmt.Fprintln(a.stdout)
		}
		result := dispatch.FromTexts(entry.Prompt, entry.Backends, entry.Results)
		if format != render.FormatPlain {
			fmt.Fprintln(a.stdout, render.Render(format, result))
			continue
		}
		fmt.Fprintf(a.stdout, "🕓 %s\n", entry.Timestamp)
		fmt.Fprintln(a.stdout, render.Prompt("Backends", strings.Join(entry.Backends, ", ")))
		fmt.Fprintln(a.stdout, render.Prompt("Prompt", entry.Prompt))
		fmt.Fprintln(a.stdout, render.PlainText(result))
	}
	return nil
}

func (a *App) historyClear() error {
	removed, err := a.history.Clear()
	if err != nil {
		return err
	}
	if !removed {
		fmt.Fprintln(a.stdout, "No history file to clear.")
		return nil
	}
	fmt.Fprintln(a.stdout, "History cleared.")
	return nil
}

func (a *App) historyExport(path string) error {
	if path == "" {
		path = defaultExportPath
	}
	if err := a.history.Export(path); err != nil {
		if errors.Is(err, history.ErrNoHistory) {
			fmt.Fprintln(a.stdout, "No history to export.")
			return nil
		}
		return err
	}
	fmt.Fprintf(a.stdout, "History exported to %s\n", path)
	return nil
}
