package optparse

import (
	"bytes"
	stdio "io"
	"strings"
	"unicode/utf8"

	optio "github.com/dzonerzy/go-optparse/io"
)

const helpIndent = "\t"

// renderer formats usage and help text for one scope. It never mutates
// the tree.
type renderer struct {
	io    *optio.IOManager
	out   stdio.Writer // where the text ends up; decides coloring
	theme optio.Theme
	width int
}

func (r renderer) heading(b *bytes.Buffer, title string) {
	b.WriteString(r.theme.Heading.SprintFor(r.io, r.out, title))
	b.WriteByte('\n')
}

// usage writes the USAGE block: program names, [OPTIONS], positionals.
func (r renderer) usage(b *bytes.Buffer, s *scope) {
	r.heading(b, "USAGE")
	b.WriteString(helpIndent)
	b.WriteString(strings.Join(s.programNames, " "))
	if s.hasVisibleOptions() {
		b.WriteString(" [OPTIONS]")
	}

	first := true
	for _, idx := range s.positional {
		a := s.descriptors[idx].attrs()
		if a.Hidden {
			continue
		}
		if first {
			b.WriteString(" [--]")
			first = false
		}
		b.WriteByte(' ')
		optional := a.MinNArgs == 0
		if optional {
			b.WriteByte('[')
		}
		switch a.MaxNArgs {
		case 0:
		case 1:
			b.WriteString(a.MetaVar)
		default:
			b.WriteString(a.MetaVar)
			b.WriteString(" ...")
		}
		if optional {
			b.WriteByte(']')
		}
	}
	b.WriteByte('\n')
}

// help writes usage, then the visible subcommands, then the visible options.
func (r renderer) help(b *bytes.Buffer, t *tree, offset int) {
	s := t.at(offset)
	r.usage(b, s)
	b.WriteByte('\n')

	var children []*scope
	for _, off := range s.childList {
		if child := t.at(off); child.sub == nil || !child.sub.hidden {
			children = append(children, child)
		}
	}
	if len(children) > 0 {
		r.heading(b, "SubCommands")
		for _, child := range children {
			desc := ""
			if child.sub != nil {
				desc = child.sub.description
			}
			r.entry(b, joinAliases(child.names, false), desc)
		}
		b.WriteByte('\n')
	}

	r.heading(b, "OPTIONS")
	for _, idx := range s.nonpositional {
		d := &s.descriptors[idx]
		if d.attrs().Hidden || len(d.aliases) == 0 {
			continue
		}
		r.entry(b, joinAliases(d.aliases, true), d.attrs().Description)
	}
}

func (r renderer) entry(b *bytes.Buffer, names, description string) {
	b.WriteString(helpIndent)
	b.WriteString(r.theme.Name.SprintFor(r.io, r.out, names))
	b.WriteByte('\n')
	wrapText(b, helpIndent, 2, r.width, description)
}

// wrapText writes text indented count times, broken greedily at the last
// space that fits in width minus the indent. A word longer than the budget
// gets a line of its own. Every line ends with a newline.
func wrapText(b *bytes.Buffer, indent string, count, width int, text string) {
	budget := max(width-utf8.RuneCountInString(indent)*count, 1)
	prefix := strings.Repeat(indent, count)

	text = strings.TrimLeft(text, " ")
	for text != "" {
		line := text
		if utf8.RuneCountInString(text) > budget {
			line = breakLine(text, budget)
		}
		b.WriteString(prefix)
		b.WriteString(line)
		b.WriteByte('\n')
		text = strings.TrimLeft(text[len(line):], " ")
	}
}

// breakLine returns the longest prefix of text that ends before a space and
// fits in budget runes, or the first word when no such prefix exists.
func breakLine(text string, budget int) string {
	limit := len(text)
	if n := runeOffset(text, budget+1); n < limit {
		limit = n
	}
	if i := strings.LastIndexByte(text[:limit], ' '); i > 0 {
		return strings.TrimRight(text[:i], " ")
	}
	if i := strings.IndexByte(text, ' '); i > 0 {
		return text[:i]
	}
	return text
}

// runeOffset returns the byte offset of the n-th rune of s, or len(s).
func runeOffset(s string, n int) int {
	for i := range s {
		if n == 0 {
			return i
		}
		n--
	}
	return len(s)
}
