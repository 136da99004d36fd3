// Package optio is the output sink used by optparse: line writes to stdout
// and stderr, color capability, and terminal width.
package optio

import (
	"fmt"
	stdio "io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// DefaultWidth is used when the terminal width cannot be determined.
const DefaultWidth = 80

// IOManager centralizes output writers and terminal capabilities.
type IOManager struct {
	out stdio.Writer
	err stdio.Writer

	forceColor bool
	noColor    bool
	width      int
}

// New returns a manager bound to process stdout and stderr.
func New() *IOManager {
	return &IOManager{out: os.Stdout, err: os.Stderr}
}

// WithOut sets the standard output writer and returns the manager for chaining.
func (m *IOManager) WithOut(w stdio.Writer) *IOManager { m.out = w; return m }

// WithErr sets the standard error writer and returns the manager for chaining.
func (m *IOManager) WithErr(w stdio.Writer) *IOManager { m.err = w; return m }

// ForceColor forces color output on, regardless of environment.
func (m *IOManager) ForceColor() *IOManager { m.forceColor = true; m.noColor = false; return m }

// NoColor disables color output, regardless of environment.
func (m *IOManager) NoColor() *IOManager { m.noColor = true; m.forceColor = false; return m }

// ColorAuto uses environment heuristics to determine color support.
func (m *IOManager) ColorAuto() *IOManager { m.noColor = false; m.forceColor = false; return m }

// WithWidth pins the width reported by Width. Zero restores detection.
func (m *IOManager) WithWidth(cols int) *IOManager { m.width = cols; return m }

// Out returns the configured standard output writer.
func (m *IOManager) Out() stdio.Writer { return m.out }

// Err returns the configured standard error writer.
func (m *IOManager) Err() stdio.Writer { return m.err }

// WriteLine writes s and a newline to stdout.
func (m *IOManager) WriteLine(s string) { fmt.Fprintln(m.out, s) }

// Write writes s to stdout as is.
func (m *IOManager) Write(s string) { fmt.Fprint(m.out, s) }

// ErrLine writes s and a newline to stderr.
func (m *IOManager) ErrLine(s string) { fmt.Fprintln(m.err, s) }

// isTerminal is replaced in tests.
var isTerminal = term.IsTerminal

// IsTTY reports whether stdout is connected to a terminal.
func (m *IOManager) IsTTY() bool { return isTTY(m.out) }

func isTTY(w stdio.Writer) bool {
	fd, ok := fileDescriptor(w)
	return ok && isTerminal(fd)
}

// Width returns the terminal width: pinned value, then the terminal, then
// $COLUMNS, then DefaultWidth.
func (m *IOManager) Width() int {
	if m.width > 0 {
		return m.width
	}
	if fd, ok := fileDescriptor(m.out); ok {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			return w
		}
	}
	if w, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && w > 0 {
		return w
	}
	return DefaultWidth
}

// SupportsColor decides whether ANSI sequences should be written to stdout.
// NO_COLOR wins over FORCE_COLOR; both win over detection.
func (m *IOManager) SupportsColor() bool { return m.SupportsColorFor(m.out) }

// SupportsColorFor is SupportsColor for text headed to w, so stderr
// redirected to a file stays plain while stdout is a terminal.
func (m *IOManager) SupportsColorFor(w stdio.Writer) bool {
	if m.noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	if m.forceColor || os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	if !isTTY(w) {
		return false
	}
	t := os.Getenv("TERM")
	return t != "dumb"
}

// Paint returns s wrapped in the given attributes when stdout supports
// color; otherwise s unchanged.
func (m *IOManager) Paint(s string, attrs ...color.Attribute) string {
	return m.PaintFor(m.out, s, attrs...)
}

// PaintFor is Paint for text headed to w.
func (m *IOManager) PaintFor(w stdio.Writer, s string, attrs ...color.Attribute) string {
	if len(attrs) == 0 || !m.SupportsColorFor(w) {
		return s
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(s)
}

// Bold returns s in bold when color is supported; otherwise s unchanged.
func (m *IOManager) Bold(s string) string { return m.Paint(s, color.Bold) }

func fileDescriptor(w stdio.Writer) (int, bool) {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return 0, false
	}
	return int(f.Fd()), true
}
