package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sasanktumpati/polymind/internal/dispatch"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	promptStyle  = lipgloss.NewStyle().Faint(true)
)

// Styled is the plain-text layout with colored headers; failed backends are
// highlighted. Styles degrade to plain text when the output has no colors.
func Styled(r *dispatch.Result) string {
	parts := make([]string, 0, r.Len())
	for _, s := range sections(r) {
		text := s.Text
		if s.Failed {
			text = failureStyle.Render(text)
		}
		parts = append(parts, headerStyle.Render("["+s.Name+"]")+"\n"+text)
	}
	return strings.Join(parts, "\n\n")
}

// Prompt styles a prompt line for history listings.
func Prompt(label, value string) string {
	return promptStyle.Render(label+":") + " " + value
}
