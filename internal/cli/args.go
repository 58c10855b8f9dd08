package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sasanktumpati/polymind/internal/render"
)

type globalOptions struct {
	ConfigPath  string
	LogLevel    string
	Verbose     bool
	ShowHelp    bool
	ShowVersion bool
}

// dispatchOptions carries one broadcast request and how to present it.
type dispatchOptions struct {
	Backends  string
	Prompt    string
	Format    render.Format
	Shell     bool
	Copy      bool
	SavePath  string
	Timeout   time.Duration
	Parallel  int
	NoHistory bool

	// Hints warn about prompt words that look like mistyped flags.
	Hints []string
}

// formatPriority resolves several format flags on one line: the first match
// in this list wins.
var formatPriority = []render.Format{
	render.FormatHTML,
	render.FormatMarkdown,
	render.FormatDiff,
	render.FormatJSON,
}

func parseGlobalArgs(args []string) (globalOptions, []string, error) {
	opts := globalOptions{}
	i := 0

	for i < len(args) {
		arg := strings.TrimSpace(args[i])
		if arg == "" {
			i++
			continue
		}
		if arg == "--" {
			i++
			break
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			break
		}

		name, value, hasValue := parseOptionToken(arg)
		switch name {
		case "config", "c", "log-level":
			if !hasValue {
				if i+1 >= len(args) {
					return opts, nil, fmt.Errorf("%s requires a value", formatFlagName(name))
				}
				i++
				value = args[i]
			}
			value = strings.TrimSpace(value)
			if value == "" {
				return opts, nil, fmt.Errorf("%s requires a non-empty value", formatFlagName(name))
			}
			if name == "log-level" {
				opts.LogLevel = value
			} else {
				opts.ConfigPath = value
			}
		case "verbose":
			if hasValue {
				return opts, nil, fmt.Errorf("--verbose does not accept a value")
			}
			opts.Verbose = true
		case "help", "h":
			opts.ShowHelp = true
		case "version", "v":
			opts.ShowVersion = true
		default:
			return opts, args[i:], nil
		}
		i++
	}

	return opts, args[i:], nil
}

// outputSpecs are the options shared by dispatch lines and retry.
func outputSpecs(opts *dispatchOptions, showHelp *bool) []optionSpec {
	formats := map[render.Format]bool{}
	pick := func(f render.Format) func(string) error {
		return func(string) error {
			formats[f] = true
			for _, candidate := range formatPriority {
				if formats[candidate] {
					opts.Format = candidate
					break
				}
			}
			return nil
		}
	}

	return []optionSpec{
		{Names: []string{"help", "h"}, Set: func(string) error { *showHelp = true; return nil }},
		{Names: []string{"json"}, Set: pick(render.FormatJSON)},
		{Names: []string{"html"}, Set: pick(render.FormatHTML)},
		{Names: []string{"markdown", "md"}, Set: pick(render.FormatMarkdown)},
		{Names: []string{"diff"}, Set: pick(render.FormatDiff)},
		{Names: []string{"shell"}, Set: func(string) error { opts.Shell = true; return nil }},
		{Names: []string{"copy"}, Set: func(string) error { opts.Copy = true; return nil }},
		{Names: []string{"no-history"}, Set: func(string) error { opts.NoHistory = true; return nil }},
		{Names: []string{"save", "o"}, TakesValue: true, Set: func(v string) error { opts.SavePath = strings.TrimSpace(v); return nil }},
		{Names: []string{"timeout"}, TakesValue: true, Set: func(v string) error {
			d, err := parseDuration(v)
			if err != nil {
				return fmt.Errorf("--timeout: %w", err)
			}
			opts.Timeout = d
			return nil
		}},
		{Names: []string{"parallel", "p"}, TakesValue: true, Set: func(v string) error {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil || n < 0 {
				return fmt.Errorf("--parallel: expected a non-negative integer")
			}
			opts.Parallel = n
			return nil
		}},
	}
}

// parseDispatchArgs reads "<backends|alias> <prompt...>" with output options
// anywhere on the line. After the backends token, dash words that name no
// flag ("rm -rf") are prompt text.
func parseDispatchArgs(args []string) (dispatchOptions, error) {
	opts := dispatchOptions{Format: render.FormatPlain}
	showHelp := false

	specs := outputSpecs(&opts, &showHelp)
	rest, kept, err := scanPrompt(args, specs)
	if err != nil {
		return opts, err
	}
	opts.Hints = flagHints(kept, specs)
	if showHelp {
		return opts, errShowHelp
	}
	if len(rest) == 0 {
		return opts, fmt.Errorf("backends and prompt are required")
	}

	opts.Backends = strings.TrimSpace(rest[0])
	opts.Prompt = strings.TrimSpace(strings.Join(rest[1:], " "))
	if opts.Prompt == "" {
		return opts, fmt.Errorf("prompt is required")
	}
	return opts, nil
}

// parseRetryArgs reads output options for re-running the last request.
func parseRetryArgs(args []string) (dispatchOptions, error) {
	opts := dispatchOptions{Format: render.FormatPlain}
	showHelp := false

	rest, err := scanOptions(args, outputSpecs(&opts, &showHelp))
	if err != nil {
		return opts, err
	}
	if showHelp {
		return opts, errShowHelp
	}
	if len(rest) > 0 {
		return opts, fmt.Errorf("unexpected arguments: %s", strings.Join(rest, " "))
	}
	return opts, nil
}

func parseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("timeout value is empty")
	}
	if strings.ContainsAny(raw, "hms") {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return 0, err
		}
		if d <= 0 {
			return 0, fmt.Errorf("timeout must be positive")
		}
		return d, nil
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return 0, fmt.Errorf("timeout must be a positive integer seconds or duration")
	}
	return time.Duration(seconds) * time.Second, nil
}
