package render

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"

	"github.com/sasanktumpati/polymind/internal/dispatch"
)

const defaultTerminalWidth = 100

// renderers holds one glamour renderer per wrap width.
var renderers sync.Map

// Terminal renders r for an interactive terminal through glamour, wrapped to
// width. Answers are rendered as Markdown in their own right, failures as
// quoted warnings. It falls back to Styled if glamour cannot render.
func Terminal(r *dispatch.Result, width int) string {
	doc := terminalDocument(r)
	if strings.TrimSpace(doc) == "" {
		return Styled(r)
	}
	if width <= 0 {
		width = defaultTerminalWidth
	}

	renderer, err := rendererFor(width)
	if err != nil {
		return Styled(r)
	}
	out, err := renderer.Render(doc)
	if err != nil {
		return Styled(r)
	}
	return strings.TrimRight(out, "\n")
}

// terminalDocument differs from Markdown: backend text is not fenced, so
// headings, lists and code blocks in an answer render natively.
func terminalDocument(r *dispatch.Result) string {
	var b strings.Builder
	for i, s := range sections(r) {
		if i > 0 {
			b.WriteString("\n\n---\n\n")
		}
		b.WriteString("## ")
		b.WriteString(s.Name)
		b.WriteString("\n\n")
		if s.Failed {
			b.WriteString("> ")
			b.WriteString(strings.ReplaceAll(s.Text, "\n", "\n> "))
			continue
		}
		b.WriteString(s.Text)
	}
	return b.String()
}

func rendererFor(width int) (*glamour.TermRenderer, error) {
	if cached, ok := renderers.Load(width); ok {
		return cached.(*glamour.TermRenderer), nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("create markdown renderer: %w", err)
	}
	actual, _ := renderers.LoadOrStore(width, renderer)
	return actual.(*glamour.TermRenderer), nil
}
