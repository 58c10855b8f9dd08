package render

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/sasanktumpati/polymind/internal/dispatch"
)

const notEnoughToCompare = "Need at least two backends to compare."

// UnifiedDiff compares the first backend's text with every other backend's
// text. Identical pairs contribute nothing, so identical results render as
// an empty string.
func UnifiedDiff(r *dispatch.Result) string {
	all := sections(r)
	if len(all) < 2 {
		return notEnoughToCompare
	}

	base := all[0]
	diffs := make([]string, 0, len(all)-1)
	for _, other := range all[1:] {
		if other.Text == base.Text {
			continue
		}
		out, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(base.Text),
			B:        difflib.SplitLines(other.Text),
			FromFile: base.Name,
			ToFile:   other.Name,
			Context:  3,
		})
		if err != nil || out == "" {
			continue
		}
		diffs = append(diffs, strings.TrimRight(out, "\n"))
	}
	return strings.Join(diffs, "\n")
}
