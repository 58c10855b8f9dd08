package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/sasanktumpati/polymind/internal/config"
)

const version = "0.1.0"

func printHelp(w io.Writer, topic string, cfgPath string) {
	switch topic {
	case "", "root":
		printRootHelp(w, cfgPath)
	case "dispatch", "ask":
		printDispatchHelp(w)
	case "retry":
		printRetryHelp(w)
	case "history":
		printHistoryHelp(w)
	case "alias", "aliases":
		printAliasHelp(w)
	case "backend", "backends":
		printBackendsHelp(w)
	case "key", "keys":
		printKeysHelp(w)
	case "config":
		printConfigHelp(w, cfgPath)
	case "markdown":
		printMarkdownHelp(w)
	case "repl":
		printREPLHelp(w)
	default:
		fmt.Fprintf(w, "unknown help topic %q\n\n", topic)
		printRootHelp(w, cfgPath)
	}
}

func printRootHelp(w io.Writer, cfgPath string) {
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintf(tw, "polymind v%s\n", version)
	fmt.Fprintln(tw, "Ask several LLM backends the same prompt at once and compare the answers.")
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "USAGE")
	fmt.Fprintln(tw, "  polymind\tinteractive prompt")
	fmt.Fprintln(tw, "  polymind [global flags] <backends|alias> \"prompt\" [flags]")
	fmt.Fprintln(tw, "  polymind [global flags] <command> [flags]")
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "GLOBAL FLAGS")
	fmt.Fprintln(tw, "  -c, --config <path>\tconfig file path (or POLYMIND_CONFIG)")
	fmt.Fprintln(tw, "  --log-level <level>\tdebug|info|warn|error (or POLYMIND_LOG_LEVEL)")
	fmt.Fprintln(tw, "  --verbose\tdebug logs with source locations unless a level is set")
	fmt.Fprintln(tw, "  -h, --help\tshow help")
	fmt.Fprintln(tw, "  -v, --version\tshow version")
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "COMMANDS")
	fmt.Fprintln(tw, "  retry\tre-run the last request")
	fmt.Fprintln(tw, "  history\tshow/clear/export past requests")
	fmt.Fprintln(tw, "  alias\tlist/set/remove backend aliases")
	fmt.Fprintln(tw, "  backends\tlist/show/add/remove backends, set model or url")
	fmt.Fprintln(tw, "  key\tset/show/clear API keys")
	fmt.Fprintln(tw, "  config\tshow config and paths")
	fmt.Fprintln(tw, "  markdown\ttoggle terminal markdown rendering")
	fmt.Fprintln(tw, "  help [topic]\tshow topic help")
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "BACKENDS")
	fmt.Fprintf(tw, "  built in:\t%s\n", strings.Join(config.BuiltinBackendNames(), ", "))
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "EXAMPLES")
	fmt.Fprintln(tw, "  polymind claude,chatgpt \"explain CRDTs in two sentences\"")
	fmt.Fprintln(tw, "  polymind alias set smart claude,gemini")
	fmt.Fprintln(tw, "  polymind smart \"review this regex: ^a+$\" --diff")
	fmt.Fprintln(tw, "  polymind backends add myproxy --base-url https://llm.example.com/v1 --model qwen")
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "TOPICS")
	fmt.Fprintln(tw, "  polymind help dispatch|retry|history|alias|backends|key|config|markdown|repl")
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "CONFIG")
	fmt.Fprintf(tw, "  File:\t%s\n", cfgPath)
	fmt.Fprintf(tw, "  Template:\t%s\n", config.TemplatePathForConfig(cfgPath))
	fmt.Fprintln(tw, "  POLYMIND_CONFIG_DIR:\tdefault config directory override")
	fmt.Fprintln(tw, "  POLYMIND_HISTORY:\thistory file override")
	fmt.Fprintln(tw, "  POLYMIND_ALIASES:\tJSON object of extra aliases")

	_ = tw.Flush()
}

func printOutputFlags(tw *tabwriter.Writer) {
	fmt.Fprintln(tw, "OUTPUT")
	fmt.Fprintln(tw, "  --json\tJSON object of backend to response")
	fmt.Fprintln(tw, "  --html\tstandalone HTML page")
	fmt.Fprintln(tw, "  --markdown, --md\tMarkdown document")
	fmt.Fprintln(tw, "  --diff\tunified diff of the first response against the others")
	fmt.Fprintln(tw, "  --shell\tprint a bash script that replays the request; nothing is sent")
	fmt.Fprintln(tw, "  -o, --save <file>\talso write the output to file")
	fmt.Fprintln(tw, "  --copy\tcopy the output to the clipboard")
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "REQUEST")
	fmt.Fprintln(tw, "  --timeout <dur|sec>\tdeadline for the whole request (default: none)")
	fmt.Fprintln(tw, "  -p, --parallel <n>\tat most n backends at once (default: all)")
	fmt.Fprintln(tw, "  --no-history\tdo not record the request")
}

func printDispatchHelp(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "USAGE")
	fmt.Fprintln(tw, "  polymind <backend1,backend2|alias> \"prompt\" [options]")
	fmt.Fprintln(tw)
	printOutputFlags(tw)
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "NOTES")
	fmt.Fprintln(tw, "  Backend names are case-insensitive; repeats are asked once")
	fmt.Fprintln(tw, "  Unknown or failing backends are reported in place of their answer")
	fmt.Fprintln(tw, "  With several format flags: html, then markdown, then diff, then json wins")
	fmt.Fprintln(tw, "  Dash words that are not flags stay in the prompt (rm -rf); after -- everything does")
	_ = tw.Flush()
}

func printRetryHelp(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "USAGE")
	fmt.Fprintln(tw, "  polymind retry [options]")
	fmt.Fprintln(tw)
	printOutputFlags(tw)
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "NOTES")
	fmt.Fprintln(tw, "  Re-sends the newest history entry to the same backends")
	_ = tw.Flush()
}

func printHistoryHelp(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "USAGE")
	fmt.Fprintln(tw, "  polymind history [show] [--limit <n>] [--format <f>]\tmost recent entries (default: 5)")
	fmt.Fprintln(tw, "  polymind history clear\tdelete the history file")
	fmt.Fprintf(tw, "  polymind history export [path]\tcopy the history file (default: %s)\n", defaultExportPath)
	fmt.Fprintln(tw, "  polymind history path\tprint the history file path")
	_ = tw.Flush()
}

func printAliasHelp(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "USAGE")
	fmt.Fprintln(tw, "  polymind alias list")
	fmt.Fprintln(tw, "  polymind alias set <name> <backend1,backend2>")
	fmt.Fprintln(tw, "  polymind alias remove <name>")
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "NOTES")
	fmt.Fprintln(tw, "  An alias stands where a backend list would: polymind <alias> \"prompt\"")
	fmt.Fprintln(tw, "  POLYMIND_ALIASES='{\"team\":\"claude,gemini\"}' adds aliases for one run")
	fmt.Fprintln(tw, "  aliases stored in config.json win over POLYMIND_ALIASES")
	_ = tw.Flush()
}

func printBackendsHelp(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "USAGE")
	fmt.Fprintln(tw, "  polymind backends [list]")
	fmt.Fprintln(tw, "  polymind backends show <name>")
	fmt.Fprintln(tw, "  polymind backends model <name> [model]")
	fmt.Fprintln(tw, "  polymind backends url <name> [url]")
	fmt.Fprintln(tw, "  polymind backends add <name> --base-url <url> --model <id> [options]")
	fmt.Fprintln(tw, "  polymind backends remove <name>")
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "ADD OPTIONS")
	fmt.Fprintln(tw, "  --api-key <key>\tstore API key in config")
	fmt.Fprintln(tw, "  --api-key-env <ENV>\tenv var name for API key")
	fmt.Fprintln(tw, "  --chat-path <path>\tdefault: /chat/completions")
	fmt.Fprintln(tw, "  --auth-header <name>\tdefault: Authorization")
	fmt.Fprintln(tw, "  --auth-prefix <text>\tdefault: Bearer ")
	fmt.Fprintln(tw, "  --temperature <t>\tsampling temperature (default: backend decides)")
	fmt.Fprintln(tw, "  --header key=value\tadditional static headers (repeatable)")
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "ENVIRONMENT")
	fmt.Fprintln(tw, "  OPENAI_API_KEY, CLAUDE_API_KEY|ANTHROPIC_API_KEY, GEMINI_API_KEY, OPENROUTER_API_KEY")
	fmt.Fprintln(tw, "  LLAMA_API_URL, MISTRAL_API_URL, LOCAL_AGENT_CMD")
	_ = tw.Flush()
}

func printKeysHelp(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "USAGE")
	fmt.Fprintln(tw, "  polymind key [list]\tkey-based backends and where each key comes from")
	fmt.Fprintln(tw, "  polymind key set <backend> [--value <key>] [--env <ENV_VAR>]")
	fmt.Fprintln(tw, "  polymind key show <backend>")
	fmt.Fprintln(tw, "  polymind key clear <backend>")
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "NOTES")
	fmt.Fprintln(tw, "  key set without --value prompts for secret input")
	fmt.Fprintln(tw, "  or edit backends.<name>.api_key directly in config.json")
	fmt.Fprintln(tw, "  env var values take precedence over config api_key")
	_ = tw.Flush()
}

func printConfigHelp(w io.Writer, cfgPath string) {
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "USAGE")
	fmt.Fprintln(tw, "  polymind config show [--raw]")
	fmt.Fprintln(tw, "  polymind config set <key> <value>")
	fmt.Fprintln(tw, "  polymind config path")
	fmt.Fprintln(tw, "  polymind config history")
	fmt.Fprintln(tw, "  polymind config template")
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "SETTINGS")
	fmt.Fprintf(tw, "  \t%s\n", strings.Join(configSetterNames(), ", "))
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "NOTES")
	fmt.Fprintln(tw, "  show masks stored API keys; --raw prints the file as written")
	fmt.Fprintf(tw, "  the backends token %q expands to default_backends\n", config.DefaultToken)
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "PATHS")
	fmt.Fprintf(tw, "  Config:\t%s\n", cfgPath)
	fmt.Fprintf(tw, "  Template:\t%s\n", config.TemplatePathForConfig(cfgPath))
	_ = tw.Flush()
}

func printMarkdownHelp(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "USAGE")
	fmt.Fprintln(tw, "  polymind markdown on")
	fmt.Fprintln(tw, "  polymind markdown off")
	fmt.Fprintln(tw, "  polymind markdown toggle")
	fmt.Fprintln(tw, "  polymind markdown status")
	fmt.Fprintln(tw, "  polymind markdown preview\tshow the newest history entry as the terminal would")
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "NOTES")
	fmt.Fprintln(tw, "  Only affects plain output on a terminal")
	_ = tw.Flush()
}

func printREPLHelp(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "COMMANDS")
	fmt.Fprintln(tw, "  <backends|alias> prompt [flags]\tdispatch, same flags as the command line")
	fmt.Fprintln(tw, "  --alias=NAME:b1,b2\tdefine an alias")
	fmt.Fprintln(tw, "  retry [flags]\tre-run the last request")
	fmt.Fprintln(tw, "  view\tshow recent history")
	fmt.Fprintln(tw, "  clear\tdelete history")
	fmt.Fprintf(tw, "  export [path]\texport history (default: %s)\n", defaultExportPath)
	fmt.Fprintln(tw, "  copy\tcopy the last output to the clipboard")
	fmt.Fprintln(tw, "  exit\tleave")
	_ = tw.Flush()
}

// showTopicHelpIfRequested prints topic help when args[idx] is a help token.
// It returns true when help was printed.
func (a *App) showTopicHelpIfRequested(topic string, args []string, idx int) bool {
	if idx < 0 || idx >= len(args) {
		return false
	}
	if !isHelpToken(args[idx]) {
		return false
	}
	printHelp(a.stdout, topic, a.cfgPath)
	return true
}

// showTopicHelpIfAnyFlagRequested prints topic help when any token from
// args[start:] is a help flag. It returns true when help was printed.
func (a *App) showTopicHelpIfAnyFlagRequested(topic string, args []string, start int) bool {
	if start < 0 || start >= len(args) {
		return false
	}
	if !containsHelpFlag(args[start:]) {
		return false
	}
	printHelp(a.stdout, topic, a.cfgPath)
	return true
}

func usageError(format string, args ...any) error {
	return fmt.Errorf("usage: "+format, args...)
}

func unknownSubcommand(command string, sub string) error {
	return fmt.Errorf("unknown %s subcommand %q", command, sub)
}
