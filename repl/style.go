package repl

import "github.com/charmbracelet/lipgloss"

var (
	userLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	assistantLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("208"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242"))
)

// theme applies styles only when the output is a terminal.
type theme struct {
	styled bool
}

func (t theme) render(style lipgloss.Style, s string) string {
	if !t.styled {
		return s
	}
	return style.Render(s)
}

func (t theme) userPrompt() string {
	return t.render(userLabelStyle, "You:") + " "
}

func (t theme) assistantPrefix() string {
	return t.render(assistantLabelStyle, "Assistant:") + " "
}

func (t theme) errorLine(err error) string {
	return t.render(errorStyle, "error: "+err.Error())
}

func (t theme) dim(s string) string {
	return t.render(dimStyle, s)
}
