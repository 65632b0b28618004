// Package output renders command results for terminals, pipes, and scripts.
//
// A Renderer is constructed once per command invocation and adapts to its
// destination: styled text on an interactive terminal, markdown when piped,
// and machine-readable JSON on request.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Mode selects how command output is rendered.
type Mode string

const (
	// ModeAuto picks text on a terminal and markdown otherwise.
	ModeAuto Mode = "auto"
	// ModeText renders styled human-readable output.
	ModeText Mode = "text"
	// ModeMarkdown renders plain markdown suitable for pipes and docs.
	ModeMarkdown Mode = "markdown"
	// ModeJSON renders machine-readable JSON.
	ModeJSON Mode = "json"
)

// Renderer writes command output in a consistent style.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	isTTY  bool
	styles *Styles
}

// NewRenderer creates a renderer for the given writers. Color support is
// detected from out; non-terminal destinations get plain text.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	return NewRendererWithTTY(out, errOut, isTerminal(out), mode)
}

// NewRendererWithTTY creates a renderer with an explicit terminal state
// instead of detecting it from out. Tests use it to pin mode resolution.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	lr := lipgloss.NewRenderer(out)
	if !isTTY {
		lr.SetColorProfile(termenv.Ascii)
	}
	return &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		isTTY:  isTTY,
		styles: newStyles(lr),
	}
}

// EffectiveMode resolves ModeAuto against the output destination.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// Styles returns the style set matched to the output's color support.
func (r *Renderer) Styles() *Styles {
	return r.styles
}

// Out exposes the standard output writer for table writers and other
// renderers that stream directly.
func (r *Renderer) Out() io.Writer {
	return r.out
}

// ErrOut exposes the error output writer.
func (r *Renderer) ErrOut() io.Writer {
	return r.errOut
}

// Println writes a line to standard output.
func (r *Renderer) Println(a ...any) {
	fmt.Fprintln(r.out, a...)
}

// Printf writes formatted text to standard output.
func (r *Renderer) Printf(format string, a ...any) {
	fmt.Fprintf(r.out, format, a...)
}

// Header writes a section heading for the current mode.
func (r *Renderer) Header(level int, text string) {
	if r.EffectiveMode() == ModeText {
		style := r.styles.Header1
		if level > 1 {
			style = r.styles.Header2
		}
		r.Println(style.Render(text))
		return
	}
	r.Println(FormatHeader(level, text))
}

// StatusLine writes a line prefixed with a status glyph. Status is one of
// "success", "warn", or "failed".
func (r *Renderer) StatusLine(text, status, detail string) {
	var icon string
	switch status {
	case "success":
		icon = r.styles.StatusSuccess.String()
	case "warn":
		icon = r.styles.Warning.Render("!")
	default:
		icon = r.styles.StatusFailed.String()
	}
	line := icon + " " + text
	if detail != "" {
		line += " " + r.styles.Muted.Render(detail)
	}
	r.Println(line)
}

// Success writes a confirmation line.
func (r *Renderer) Success(msg string) {
	if r.EffectiveMode() == ModeText {
		fmt.Fprintf(r.out, "%s %s\n", r.styles.StatusSuccess, msg)
		return
	}
	fmt.Fprintln(r.out, msg)
}

// Warning writes a warning line to the error stream.
func (r *Renderer) Warning(msg string) {
	fmt.Fprintln(r.errOut, r.styles.Warning.Render("! "+msg))
}

// Error writes an error line to the error stream.
func (r *Renderer) Error(msg string) {
	fmt.Fprintf(r.errOut, "%s %s\n", r.styles.StatusFailed, msg)
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
