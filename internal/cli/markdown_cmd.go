package cli

import (
	"fmt"
	"strings"

	"github.com/sasanktumpati/polymind/internal/dispatch"
	"github.com/sasanktumpati/polymind/internal/render"
)

func (a *App) runMarkdown(args []string) error {
	if len(args) == 0 {
		return a.markdownStatus()
	}
	if a.showTopicHelpIfRequested("markdown", args, 0) || a.showTopicHelpIfRequested("markdown", args, 1) {
		return nil
	}

	switch sub := strings.ToLower(strings.TrimSpace(args[0])); sub {
	case "on", "enable":
		return a.setMarkdown(true)
	case "off", "disable":
		return a.setMarkdown(false)
	case "toggle":
		return a.setMarkdown(!a.cfg.RenderMarkdown)
	case "status":
		return a.markdownStatus()
	case "preview":
		return a.markdownPreview()
	default:
		return unknownSubcommand("markdown", sub)
	}
}

func (a *App) setMarkdown(on bool) error {
	a.cfg.RenderMarkdown = on
	if err := a.saveConfig(); err != nil {
		return err
	}
	if on {
		fmt.Fprintln(a.stdout, "terminal output renders through glamour")
	} else {
		fmt.Fprintln(a.stdout, "terminal output uses styled plain text")
	}
	return nil
}

func (a *App) markdownStatus() error {
	status := "off"
	if a.cfg.RenderMarkdown {
		status = "on"
	}
	fmt.Fprintf(a.stdout, "markdown=%s\n", status)
	if !isTerminalWriter(a.stdout) {
		fmt.Fprintln(a.stdout, "note: stdout is not a terminal, plain text is printed")
	}
	return nil
}

// markdownPreview shows the newest history entry the way a terminal would
// display it under the current setting.
func (a *App) markdownPreview() error {
	entry, ok, err := a.history.Last()
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.stdout, "No history yet.")
		return nil
	}
	result := dispatch.FromTexts(entry.Prompt, entry.Backends, entry.Results)
	if a.cfg.RenderMarkdown {
		fmt.Fprintln(a.stdout, render.Terminal(result, terminalWidth(a.stdout)))
		return nil
	}
	fmt.Fprintln(a.stdout, render.Styled(result))
	return nil
}
