package render

import (
	"html/template"
	"strings"

	"github.com/sasanktumpati/polymind/internal/dispatch"
)

var htmlTemplate = template.Must(template.New("results").Parse(
	`<html><head><title>PolyMind Output</title></head><body>
{{range .}}<h2>{{.Name}}</h2><pre>{{.Text}}</pre>
{{end}}</body></html>`))

// HTML renders a standalone document with one heading and preformatted block
// per backend. Names and texts are escaped.
func HTML(r *dispatch.Result) string {
	var b strings.Builder
	if err := htmlTemplate.Execute(&b, sections(r)); err != nil {
		return "<html><head><title>PolyMind Output</title></head><body></body></html>"
	}
	return b.String()
}
