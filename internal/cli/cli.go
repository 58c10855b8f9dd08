package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sasanktumpati/polymind/internal/config"
	"github.com/sasanktumpati/polymind/internal/dispatch"
	"github.com/sasanktumpati/polymind/internal/history"
	"github.com/sasanktumpati/polymind/internal/observability"

	"golang.org/x/term"
)

var errShowHelp = errors.New("show help")

// App encapsulates CLI runtime dependencies and loaded configuration.
type App struct {
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
	cfgPath  string
	cfg      *config.Config
	registry *dispatch.Registry
	history  *history.Store
	log      *observability.Logger
	now      func() time.Time

	// newRegistry rebuilds registry after the config changes.
	newRegistry func(*config.Config) *dispatch.Registry

	// last request of this session, replayed by the REPL's retry.
	lastPrompt   string
	lastBackends []string
	lastOutput   string
}

// Run executes the polymind CLI with the provided process arguments and streams.
func Run(args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) error {
	if stdin == nil {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	global, rest, err := parseGlobalArgs(args)
	if err != nil {
		return err
	}

	cfgPath, err := config.ResolvePath(global.ConfigPath)
	if err != nil {
		return err
	}
	templatePath := config.TemplatePathForConfig(cfgPath)
	if err := config.EnsureTemplate(templatePath); err != nil {
		return err
	}

	cfg, loadErr := config.Load(cfgPath)
	if loadErr != nil && !errors.Is(loadErr, config.ErrConfigNotFound) {
		return loadErr
	}
	if errors.Is(loadErr, config.ErrConfigNotFound) {
		if err := config.Save(cfgPath, cfg); err != nil {
			return err
		}
	}
	if err := cfg.LoadEnvAliases(); err != nil {
		fmt.Fprintf(stderr, "warning: %v\n", err)
	}

	level := global.LogLevel
	if level == "" {
		level = cfg.ResolveLogLevel()
	}
	observability.Init(observability.LogConfig{Level: level, Verbose: global.Verbose, Output: stderr})

	ctx := context.Background()
	endpoint := cfg.TracingEndpoint()
	shutdown, err := observability.InitOTel(ctx, observability.OTelConfig{
		Endpoint: endpoint,
		Insecure: strings.HasPrefix(endpoint, "http://"),
	})
	if err != nil {
		fmt.Fprintf(stderr, "warning: tracing disabled: %v\n", err)
	} else {
		defer func() { _ = shutdown(ctx) }()
	}

	app := newApp(stdin, stdout, stderr, cfgPath, cfg)
	if global.ShowVersion {
		fmt.Fprintln(app.stdout, version)
		return nil
	}
	if global.ShowHelp {
		helpArgs := append([]string{"help"}, rest...)
		return app.dispatch(helpArgs)
	}
	return app.dispatch(rest)
}

func newApp(stdin io.Reader, stdout, stderr io.Writer, cfgPath string, cfg *config.Config) *App {
	return &App{
		stdin:       stdin,
		stdout:      stdout,
		stderr:      stderr,
		cfgPath:     cfgPath,
		cfg:         cfg,
		registry:    buildRegistry(cfg),
		newRegistry: buildRegistry,
		history:     history.NewStore(cfg.ResolveHistoryPath(cfgPath)),
		log:         observability.Component("cli"),
		now:         time.Now,
	}
}

func (a *App) dispatch(args []string) error {
	if len(args) == 0 {
		return a.runREPL()
	}

	sub := strings.ToLower(strings.TrimSpace(args[0]))
	switch sub {
	case "help":
		topic := ""
		if len(args) > 1 {
			topic = strings.ToLower(strings.TrimSpace(args[1]))
		}
		printHelp(a.stdout, topic, a.cfgPath)
		return nil
	case "-h", "--help":
		printHelp(a.stdout, "", a.cfgPath)
		return nil
	case "version", "--version", "-v":
		fmt.Fprintln(a.stdout, version)
		return nil
	case "retry":
		return a.runRetry(args[1:])
	case "history":
		return a.runHistory(args[1:])
	case "alias", "aliases":
		return a.runAlias(args[1:])
	case "backend", "backends":
		return a.runBackends(args[1:])
	case "key", "keys":
		return a.runKeys(args[1:])
	case "config":
		return a.runConfig(args[1:])
	case "markdown":
		return a.runMarkdown(args[1:])
	default:
		return a.runDispatch(args)
	}
}

// saveConfig persists the config and rebuilds the registry so later
// dispatches in the same session see the change.
func (a *App) saveConfig() error {
	if err := config.Save(a.cfgPath, a.cfg); err != nil {
		return err
	}
	a.registry = a.newRegistry(a.cfg)
	return nil
}

func terminalWidth(w io.Writer) int {
	const fallback = 100
	fdw, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return fallback
	}
	fd := int(fdw.Fd())
	if !term.IsTerminal(fd) {
		return fallback
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}

func readLine(reader io.Reader, writer io.Writer, prompt string) (string, error) {
	fmt.Fprint(writer, prompt)
	buffer := bufio.NewReader(reader)
	line, err := buffer.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func parseKV(input string) (string, string, error) {
	idx := strings.Index(input, "=")
	if idx <= 0 || idx == len(input)-1 {
		return "", "", fmt.Errorf("expected key=value")
	}
	k := strings.TrimSpace(input[:idx])
	v := strings.TrimSpace(input[idx+1:])
	if k == "" || v == "" {
		return "", "", fmt.Errorf("expected key=value")
	}
	return k, v, nil
}
