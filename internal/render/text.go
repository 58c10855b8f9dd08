package render

import (
	"encoding/json"
	"strings"

	"github.com/sasanktumpati/polymind/internal/dispatch"
)

// PlainText renders each backend as a "[name]" line followed by its text.
func PlainText(r *dispatch.Result) string {
	parts := make([]string, 0, r.Len())
	for _, s := range sections(r) {
		parts = append(parts, "["+s.Name+"]\n"+s.Text)
	}
	return strings.Join(parts, "\n")
}

// JSON renders the name -> text mapping with a two-space indent.
func JSON(r *dispatch.Result) string {
	data, err := json.MarshalIndent(r.Texts(), "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
