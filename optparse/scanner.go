package optparse

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// ParseState is the mode of the token scanner.
type ParseState int

const (
	// StateScanning classifies each token as option, value or positional.
	StateScanning ParseState = iota
	// StateAwaitingValue feeds plain tokens to the pending option.
	StateAwaitingValue
	// StateEscaped treats every token as a positional literal.
	StateEscaped
)

func (s ParseState) String() string {
	switch s {
	case StateScanning:
		return "scanning"
	case StateAwaitingValue:
		return "awaiting-value"
	case StateEscaped:
		return "escaped"
	default:
		return "unknown"
	}
}

// scanner walks one argument vector through the subcommand tree.
// It is single use: build a new one per parse.
type scanner struct {
	tree         *tree
	interspersed bool

	offset         int   // scope being scanned
	chain          []int // root to current scope
	state          ParseState
	pending        *descriptor
	firstNonOption bool
	cursor         int // next positional slot
}

func newScanner(t *tree, interspersed bool) *scanner {
	return &scanner{tree: t, interspersed: interspersed}
}

// scan consumes argv[1:] against the root scope. argv[0] names the program.
// On error, values applied before the failing token stay applied.
func (sc *scanner) scan(programName string, argv []string) error {
	sc.enter(0, []string{programName})
	for i := 1; i < len(argv); i++ {
		if err := sc.next(argv[i]); err != nil {
			return err
		}
	}
	sc.flushPending()
	return nil
}

func (sc *scanner) current() *scope { return sc.tree.at(sc.offset) }

func (sc *scanner) enter(offset int, programNames []string) {
	sc.offset = offset
	sc.chain = append(sc.chain, offset)
	sc.current().programNames = programNames
	sc.state = StateScanning
	sc.pending = nil
	sc.firstNonOption = true
	sc.cursor = 0
}

func (sc *scanner) next(tok string) error {
	if sc.state == StateEscaped || len(tok) < 2 || tok[0] != '-' {
		return sc.parsePlain(tok)
	}

	// a pending option keeps waiting through --, so it can take a
	// dash-leading value; every other option token ends its value run
	if tok == "--" {
		sc.state = StateEscaped
		return nil
	}
	sc.flushPending()

	if tok[1] == '-' {
		return sc.parseLong(tok)
	}
	return sc.parseShort(tok)
}

// parseLong handles --name and --name=value.
func (sc *scanner) parseLong(tok string) error {
	name, value, hasValue := strings.Cut(tok[2:], "=")
	d := sc.current().lookup(name)
	if d == nil {
		return unknownOptionError("--"+name, sc.offset)
	}
	if d.attrs().MaxNArgs == 0 {
		if hasValue {
			return noArgumentError("--"+name, sc.offset)
		}
		d.value.ApplyDefault()
		return nil
	}

	sc.restartIfFull(d)
	if hasValue {
		if _, err := d.consume(value); err != nil {
			return invalidValueError(displayName(d), value, sc.offset, err)
		}
		return nil
	}
	sc.await(d)
	return nil
}

// parseShort handles a cluster such as -abc. Zero-argument letters fire
// immediately; the first value-taking letter takes the rest of the token
// as its first value, or waits for the next token when nothing is left.
func (sc *scanner) parseShort(tok string) error {
	body := tok[1:]
	for i := 0; i < len(body); {
		r, size := utf8.DecodeRuneInString(body[i:])
		alias := body[i : i+size]
		i += size
		if r == utf8.RuneError && size == 1 {
			return unknownOptionError(fmt.Sprintf(`-\x%02x`, alias[0]), sc.offset)
		}
		d := sc.current().lookup(alias)
		if d == nil {
			return unknownOptionError("-"+alias, sc.offset)
		}
		if d.attrs().MaxNArgs == 0 {
			d.value.ApplyDefault()
			continue
		}

		sc.restartIfFull(d)
		rest := body[i:]
		if rest == "" {
			sc.await(d)
			return nil
		}
		more, err := d.consume(rest)
		if err != nil {
			return invalidValueError(displayName(d), rest, sc.offset, err)
		}
		if more {
			sc.await(d)
		}
		return nil
	}
	return nil
}

func (sc *scanner) parsePlain(tok string) error {
	if sc.pending != nil {
		more, err := sc.pending.consume(tok)
		if err != nil {
			return invalidValueError(displayName(sc.pending), tok, sc.offset, err)
		}
		if !more {
			sc.pending = nil
			if sc.state == StateAwaitingValue {
				sc.state = StateScanning
			}
		}
		return nil
	}

	eligible := sc.firstNonOption && sc.state == StateScanning
	sc.firstNonOption = false
	if eligible {
		if child, ok := sc.current().children[tok]; ok {
			sc.dispatch(child, tok)
			return nil
		}
	}
	if !sc.interspersed {
		sc.state = StateEscaped
	}
	return sc.parsePositional(tok)
}

func (sc *scanner) parsePositional(tok string) error {
	s := sc.current()
	for sc.cursor < len(s.positional) {
		d := &s.descriptors[s.positional[sc.cursor]]
		if d.full() {
			sc.cursor++
			continue
		}
		more, err := d.consume(tok)
		if err != nil {
			return invalidValueError(displayName(d), tok, sc.offset, err)
		}
		if !more {
			sc.cursor++
		}
		return nil
	}
	return positionalOverflowError(tok, sc.offset)
}

// dispatch moves the rest of the scan into a child scope.
func (sc *scanner) dispatch(child int, alias string) {
	names := append(slices.Clone(sc.current().programNames), alias)
	if sub := sc.tree.at(child).sub; sub != nil {
		sub.selectScope()
	}
	sc.enter(child, names)
}

func (sc *scanner) await(d *descriptor) {
	sc.pending = d
	sc.state = StateAwaitingValue
}

// restartIfFull lets a repeated option start over, last appearance wins.
func (sc *scanner) restartIfFull(d *descriptor) {
	if d.full() {
		d.value.Reset()
		d.nargs = 0
	}
}

// flushPending closes the value run of the pending option; an option that
// received nothing gets its default.
func (sc *scanner) flushPending() {
	if sc.pending == nil {
		return
	}
	if sc.pending.nargs == 0 {
		sc.pending.value.ApplyDefault()
	}
	sc.pending = nil
	sc.state = StateScanning
}

// displayName is how a descriptor is named in messages: its longest alias
// with dashes, or the metavar of a positional.
func displayName(d *descriptor) string {
	if len(d.aliases) == 0 {
		return d.attrs().MetaVar
	}
	best := d.aliases[0]
	for _, a := range d.aliases[1:] {
		if len(a) > len(best) {
			best = a
		}
	}
	return dashed(best)
}

func dashed(alias string) string {
	if utf8.RuneCountInString(alias) == 1 {
		return "-" + alias
	}
	return "--" + alias
}
