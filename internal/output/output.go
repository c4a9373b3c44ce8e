// Package output provides consistent CLI output formatting.
//
// Listings stay plain text so they can be piped; status lines, headers and
// key/value tables are styled with lipgloss when writing to a terminal.
package output

import (
	"fmt"
	"io"
	"strings"
)

// Writer provides formatted output for CLI.
type Writer struct {
	out      io.Writer
	styles   Styles
	useColor bool
}

// New creates a Writer that colors output only when out is a terminal
// and NO_COLOR is unset.
func New(out io.Writer) *Writer {
	return NewWithColor(out, UseColor(out))
}

// NewWithColor creates a Writer with color forced on or off.
func NewWithColor(out io.Writer, useColor bool) *Writer {
	styles := NoColorStyles()
	if useColor {
		styles = DefaultStyles()
	}
	return &Writer{out: out, styles: styles, useColor: useColor}
}

// Out returns the underlying writer.
func (w *Writer) Out() io.Writer {
	return w.out
}

// Color reports whether the writer emits styled output.
func (w *Writer) Color() bool {
	return w.useColor
}

// Line prints s unstyled. Used for listings meant to be piped.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Line(s string) {
	_, _ = fmt.Fprintln(w.out, s)
}

// Status prints a status message with an icon.
func (w *Writer) Status(icon, msg string) {
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "   %s\n", msg)
	}
}

// Statusf prints a formatted status message with an icon.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success message with checkmark.
func (w *Writer) Success(msg string) {
	w.Status("✅", w.styles.Success.Render(msg))
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status("⚠️ ", w.styles.Warning.Render(msg))
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	w.Status("❌", w.styles.Error.Render(msg))
}

// Errorf prints a formatted error message.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// Header prints a section title.
func (w *Writer) Header(title string) {
	_, _ = fmt.Fprintln(w.out, w.styles.Header.Render(title))
}

// KeyValue prints an aligned "label: value" row.
func (w *Writer) KeyValue(label, value string) {
	padded := fmt.Sprintf("%-18s", label+":")
	_, _ = fmt.Fprintf(w.out, "  %s %s\n", w.styles.Label.Render(padded), w.styles.Value.Render(value))
}

// Dim prints secondary text.
func (w *Writer) Dim(msg string) {
	_, _ = fmt.Fprintln(w.out, w.styles.Dim.Render(msg))
}

// Code prints a code block with indentation.
func (w *Writer) Code(content string) {
	_, _ = fmt.Fprintln(w.out)
	for _, line := range strings.Split(content, "\n") {
		_, _ = fmt.Fprintf(w.out, "  %s\n", line)
	}
	_, _ = fmt.Fprintln(w.out)
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}
