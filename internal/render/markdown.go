package render

import (
	"strings"

	"github.com/sasanktumpati/polymind/internal/dispatch"
)

// Markdown renders a "# PolyMind Results" document with a second-level
// heading and fenced block per backend.
func Markdown(r *dispatch.Result) string {
	var b strings.Builder
	b.WriteString("# PolyMind Results")
	for _, s := range sections(r) {
		fence := fenceFor(s.Text)
		b.WriteString("\n\n## ")
		b.WriteString(s.Name)
		b.WriteString("\n\n")
		b.WriteString(fence)
		b.WriteString("\n")
		b.WriteString(s.Text)
		b.WriteString("\n")
		b.WriteString(fence)
	}
	return b.String()
}

// fenceFor returns a backtick fence longer than any backtick run in text.
func fenceFor(text string) string {
	longest, run := 0, 0
	for _, ch := range text {
		if ch == '`' {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	n := 3
	if longest >= n {
		n = longest + 1
	}
	return strings.Repeat("`", n)
}
