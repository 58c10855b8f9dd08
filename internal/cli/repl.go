package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/sasanktumpati/polymind/internal/render"
)

const replPrompt = ">> "

func (a *App) runREPL() error {
	cfg := &readline.Config{
		Prompt:            replPrompt,
		HistoryFile:       filepath.Join(filepath.Dir(a.cfgPath), "repl_history"),
		HistorySearchFold: true,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		Stdout:            a.stdout,
		Stderr:            a.stderr,
	}
	if in, ok := a.stdin.(io.ReadCloser); ok {
		cfg.Stdin = in
	} else if a.stdin != nil {
		cfg.Stdin = io.NopCloser(a.stdin)
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return fmt.Errorf("init prompt: %w", err)
	}
	defer rl.Close()

	fmt.Fprintf(a.stdout, "polymind v%s - type a dispatch line, \"help\" or \"exit\".\n", version)
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if strings.TrimSpace(line) == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		done, err := a.handleLine(line)
		if err != nil {
			fmt.Fprintf(a.stderr, "error: %v\n", err)
		}
		if done {
			return nil
		}
	}
}

// handleLine runs one REPL line and reports whether the session should end.
func (a *App) handleLine(line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	fields := strings.Fields(line)
	command := strings.ToLower(fields[0])

	switch command {
	case "exit", "quit":
		return true, nil
	case "help":
		printHelp(a.stdout, "repl", a.cfgPath)
		return false, nil
	case "view":
		return false, a.historyShow(defaultHistoryLimit, render.FormatPlain)
	case "clear":
		return false, a.historyClear()
	case "export":
		path := defaultExportPath
		if len(fields) > 1 {
			path = fields[1]
		}
		return false, a.historyExport(path)
	case "copy":
		a.copyOutput()
		return false, nil
	case "retry":
		opts, err := parseRetryArgs(fields[1:])
		if errors.Is(err, errShowHelp) {
			printHelp(a.stdout, "retry", a.cfgPath)
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return false, a.retry(opts)
	}

	if strings.HasPrefix(command, "--alias=") {
		return false, a.defineAlias(strings.TrimSpace(line[len("--alias="):]))
	}

	opts, err := parseDispatchArgs(fields)
	if errors.Is(err, errShowHelp) {
		printHelp(a.stdout, "dispatch", a.cfgPath)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return false, a.executeLine(opts)
}
