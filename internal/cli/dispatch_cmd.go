package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/sasanktumpati/polymind/internal/clipboard"
	"github.com/sasanktumpati/polymind/internal/dispatch"
	"github.com/sasanktumpati/polymind/internal/history"
	"github.com/sasanktumpati/polymind/internal/observability"
	"github.com/sasanktumpati/polymind/internal/render"
)

func (a *App) runDispatch(args []string) error {
	opts, err := parseDispatchArgs(args)
	if err != nil {
		if errors.Is(err, errShowHelp) {
			printHelp(a.stdout, "dispatch", a.cfgPath)
			return nil
		}
		return err
	}
	return a.executeLine(opts)
}

// executeLine runs a parsed dispatch line, warning first about any prompt
// word that looks like a mistyped flag.
func (a *App) executeLine(opts dispatchOptions) error {
	for _, hint := range opts.Hints {
		fmt.Fprintf(a.stderr, "warning: %s\n", hint)
	}
	return a.execute(a.cfg.ExpandBackends(opts.Backends), opts.Prompt, opts)
}

func (a *App) runRetry(args []string) error {
	opts, err := parseRetryArgs(args)
	if err != nil {
		if errors.Is(err, errShowHelp) {
			printHelp(a.stdout, "retry", a.cfgPath)
			return nil
		}
		return err
	}
	return a.retry(opts)
}

// retry replays the last request of this session, or the newest history
// entry when the session has none.
func (a *App) retry(opts dispatchOptions) error {
	prompt, backends := a.lastPrompt, a.lastBackends
	if len(backends) == 0 {
		entry, ok, err := a.history.Last()
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(a.stdout, "Nothing to retry.")
			return nil
		}
		prompt, backends = entry.Prompt, entry.Backends
	}
	fmt.Fprintln(a.stderr, render.Prompt("Retrying", fmt.Sprintf("%s %q", strings.Join(backends, ","), prompt)))
	return a.execute(backends, prompt, opts)
}

// execute dispatches prompt to backends, records the result and prints it in
// the requested format.
func (a *App) execute(backends []string, prompt string, opts dispatchOptions) error {
	if len(backends) == 0 {
		return fmt.Errorf("no backends given")
	}
	if opts.Shell {
		script := render.ShellScript(backends, prompt)
		return a.emit(script, script, opts)
	}

	result := a.broadcast(backends, prompt, opts)
	a.lastPrompt, a.lastBackends = prompt, result.Backends()
	if !opts.NoHistory {
		a.record(result)
	}
	saved := render.Render(opts.Format, result)
	return a.emit(a.present(result, opts.Format, saved), saved, opts)
}

func (a *App) broadcast(backends []string, prompt string, opts dispatchOptions) *dispatch.Result {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	ctx = observability.WithDispatchID(ctx, observability.NewDispatchID())

	parallel := a.cfg.MaxParallel
	if opts.Parallel > 0 {
		parallel = opts.Parallel
	}
	names := dispatch.NormalizeBackends(backends)
	bar := startProgress(isTerminalWriter(a.stderr), a.stderr, "Asking "+strings.Join(names, ", "), len(names))
	engine := dispatch.NewEngine(a.registry,
		dispatch.WithMaxParallel(parallel),
		dispatch.WithProgress(func(string, dispatch.Outcome) { bar.Finished() }),
	)
	result := engine.Dispatch(ctx, prompt, backends)
	bar.Stop()

	for _, name := range result.Failures() {
		a.log.Debug(ctx, "backend failed", "backend", name, "reason", result.Text(name))
	}
	return result
}

// record appends result to the history log. A write failure is reported but
// never stops the result from being shown.
func (a *App) record(result *dispatch.Result) {
	entry := history.NewEntry(a.now(), result.Backends(), result.Prompt(), result.Texts())
	if err := a.history.Append(entry); err != nil {
		a.log.Warn(context.Background(), "history append failed", observability.AttrErr(err))
		fmt.Fprintf(a.stderr, "warning: history log error: %v\n", err)
	}
}

// present picks the terminal rendering for plain output; explicit formats
// print as rendered.
func (a *App) present(result *dispatch.Result, format render.Format, rendered string) string {
	if format != render.FormatPlain || !isTerminalWriter(a.stdout) {
		return rendered
	}
	if a.cfg.RenderMarkdown {
		return render.Terminal(result, terminalWidth(a.stdout))
	}
	return render.Styled(result)
}

// emit prints display and hands the unstyled rendering to --copy and --save.
func (a *App) emit(display, saved string, opts dispatchOptions) error {
	fmt.Fprintln(a.stdout, display)
	a.lastOutput = saved
	if opts.Copy {
		a.copyOutput()
	}
	path := opts.SavePath
	if path == "" {
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if !strings.HasSuffix(saved, "\n") {
		saved += "\n"
	}
	if err := os.WriteFile(path, []byte(saved), 0o644); err != nil {
		return fmt.Errorf("save output: %w", err)
	}
	fmt.Fprintf(a.stderr, "output saved to %s\n", path)
	return nil
}

// copyOutput puts the last rendered output on the clipboard. A missing
// clipboard tool is a warning, not an error.
func (a *App) copyOutput() {
	if err := clipboard.Copy(a.lastOutput); err != nil {
		if errors.Is(err, clipboard.ErrEmpty) {
			fmt.Fprintln(a.stdout, "Nothing to copy.")
			return
		}
		fmt.Fprintf(a.stderr, "warning: %v\n", err)
		return
	}
	fmt.Fprintln(a.stderr, "output copied to clipboard")
}
