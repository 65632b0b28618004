package main

import (
	"fmt"
	"strings"
)

// MarkdownWriter accumulates a markdown document.
type MarkdownWriter struct {
	b strings.Builder
}

// NewMarkdownWriter returns an empty writer.
func NewMarkdownWriter() *MarkdownWriter {
	return &MarkdownWriter{}
}

// Frontmatter writes a YAML frontmatter block.
func (w *MarkdownWriter) Frontmatter(title, description string) {
	w.b.WriteString("---\n")
	fmt.Fprintf(&w.b, "title: %s\n", title)
	fmt.Fprintf(&w.b, "description: %s\n", description)
	w.b.WriteString("---\n\n")
}

// GeneratedMarker writes a comment marking the file as generated.
func (w *MarkdownWriter) GeneratedMarker() {
	w.b.WriteString("<!-- Generated by scripts/gendocs. DO NOT EDIT. -->\n\n")
}

// Header writes a header at the given level.
func (w *MarkdownWriter) Header(level int, text string) {
	fmt.Fprintf(&w.b, "%s %s\n\n", strings.Repeat("#", level), text)
}

// Paragraph writes a paragraph followed by a blank line.
func (w *MarkdownWriter) Paragraph(text string) {
	w.b.WriteString(text)
	w.b.WriteString("\n\n")
}

// CodeBlock writes a fenced code block.
func (w *MarkdownWriter) CodeBlock(lang, code string) {
	fmt.Fprintf(&w.b, "```%s\n%s\n```\n\n", lang, code)
}

// BulletList writes a simple bullet list.
func (w *MarkdownWriter) BulletList(items []string) {
	for _, item := range items {
		fmt.Fprintf(&w.b, "- %s\n", item)
	}
	w.b.WriteString("\n")
}

// Table writes a markdown table. Cell content is escaped so pipes and
// newlines do not break the table layout.
func (w *MarkdownWriter) Table(headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}

	w.b.WriteString("| " + strings.Join(headers, " | ") + " |\n")

	sep := make([]string, len(headers))
	for i := range sep {
		sep[i] = "---"
	}
	w.b.WriteString("| " + strings.Join(sep, " | ") + " |\n")

	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = escapeTableCell(cell)
		}
		w.b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	w.b.WriteString("\n")
}

// Bytes returns the accumulated document.
func (w *MarkdownWriter) Bytes() []byte {
	return []byte(w.b.String())
}

// InlineCode wraps s in backticks. Empty strings stay empty so table
// cells don't render stray backtick pairs.
func InlineCode(s string) string {
	if s == "" {
		return ""
	}
	return "`" + s + "`"
}

// cleanDescription flattens a multi-line description into one line.
func cleanDescription(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.Join(strings.Fields(s), " ")
}

func escapeTableCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", "<br>")
}
