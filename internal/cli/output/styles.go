package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles bundles the lipgloss styles shared by all commands.
type Styles struct {
	Header1    lipgloss.Style
	Header2    lipgloss.Style
	Bold       lipgloss.Style
	Muted      lipgloss.Style
	Success    lipgloss.Style
	Warning    lipgloss.Style
	Error      lipgloss.Style
	Info       lipgloss.Style
	Identifier lipgloss.Style

	// StatusSuccess and StatusFailed carry their glyphs; render them
	// with String().
	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
}

func newStyles(lr *lipgloss.Renderer) *Styles {
	return &Styles{
		Header1:       lr.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Header2:       lr.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		Bold:          lr.NewStyle().Bold(true),
		Muted:         lr.NewStyle().Foreground(lipgloss.Color("8")),
		Success:       lr.NewStyle().Foreground(lipgloss.Color("10")),
		Warning:       lr.NewStyle().Foreground(lipgloss.Color("11")),
		Error:         lr.NewStyle().Foreground(lipgloss.Color("9")),
		Info:          lr.NewStyle().Foreground(lipgloss.Color("12")),
		Identifier:    lr.NewStyle().Foreground(lipgloss.Color("6")),
		StatusSuccess: lr.NewStyle().Foreground(lipgloss.Color("10")).SetString("✓"),
		StatusFailed:  lr.NewStyle().Foreground(lipgloss.Color("9")).SetString("✗"),
	}
}

// FormatHeader renders a markdown header at the given level.
func FormatHeader(level int, text string) string {
	return strings.Repeat("#", level) + " " + text
}

// FormatKeyValue renders a markdown key/value bullet.
func FormatKeyValue(key, value string) string {
	return fmt.Sprintf("- **%s**: %s", key, value)
}

// FormatCodeBlock renders a fenced markdown code block.
func FormatCodeBlock(lang, code string) string {
	return fmt.Sprintf("```%s\n%s\n```", lang, strings.TrimRight(code, "\n"))
}
