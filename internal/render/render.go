// Package render turns a dispatch result into the output formats polymind
// prints or saves. Every renderer is total: an empty result renders too.
package render

import (
	"strings"

	"github.com/sasanktumpati/polymind/internal/dispatch"
)

type Format string

const (
	FormatPlain    Format = "plain"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatDiff     Format = "diff"
)

// Formats lists the result formats in the order help output shows them.
func Formats() []Format {
	return []Format{FormatPlain, FormatJSON, FormatHTML, FormatMarkdown, FormatDiff}
}

// ParseFormat maps a format name, with or without a leading "--", to a Format.
func ParseFormat(name string) (Format, bool) {
	name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "--")))
	for _, f := range Formats() {
		if string(f) == name {
			return f, true
		}
	}
	switch name {
	case "text", "":
		return FormatPlain, true
	case "md":
		return FormatMarkdown, true
	}
	return "", false
}

// Render renders r in format f. Unknown formats fall back to plain text.
func Render(f Format, r *dispatch.Result) string {
	switch f {
	case FormatJSON:
		return JSON(r)
	case FormatHTML:
		return HTML(r)
	case FormatMarkdown:
		return Markdown(r)
	case FormatDiff:
		return UnifiedDiff(r)
	default:
		return PlainText(r)
	}
}

type section struct {
	Name   string
	Text   string
	Failed bool
}

// sections walks r in request order.
func sections(r *dispatch.Result) []section {
	names := r.Backends()
	out := make([]section, 0, len(names))
	for _, name := range names {
		outcome, ok := r.Outcome(name)
		if !ok {
			continue
		}
		out = append(out, section{Name: name, Text: outcome.String(), Failed: outcome.Failed()})
	}
	return out
}
