package optio

import (
	stdio "io"
	"runtime"

	"github.com/fatih/color"
)

// Style is a set of SGR attributes applied together.
type Style []color.Attribute

// Sprint renders text with the style through m, for stdout.
func (s Style) Sprint(m *IOManager, text string) string { return m.Paint(text, s...) }

// SprintFor renders text with the style for the writer w.
func (s Style) SprintFor(m *IOManager, w stdio.Writer, text string) string {
	return m.PaintFor(w, text, s...)
}

// Theme provides semantic styles for help and log output.
type Theme struct {
	Heading    Style // section titles such as USAGE and OPTIONS
	Name       Style // option and subcommand names
	Error      Style
	Warning    Style
	Info       Style
	Debug      Style
	Suggestion Style
}

// DefaultTheme returns the stock theme. Plain yellow is hard to read in
// Windows consoles, so headings use the bright variant there.
func DefaultTheme() Theme {
	heading := Style{color.FgYellow}
	if runtime.GOOS == "windows" {
		heading = Style{color.FgHiYellow}
	}
	return Theme{
		Heading:    heading,
		Name:       Style{color.FgGreen},
		Error:      Style{color.FgHiRed},
		Warning:    Style{color.FgHiYellow},
		Info:       Style{color.FgHiCyan},
		Debug:      Style{color.FgHiMagenta},
		Suggestion: Style{color.FgCyan},
	}
}

// PlainTheme returns a theme with no styling at all.
func PlainTheme() Theme { return Theme{} }
