package optparse

import (
	"errors"
	"os"
	"path/filepath"
	"slices"

	"github.com/Masterminds/semver/v3"

	optio "github.com/dzonerzy/go-optparse/io"
	"github.com/dzonerzy/go-optparse/internal/pool"
)

// Outcome is the tri-state result of a parse.
type Outcome int

const (
	// OutcomeProceed means values are bound and the program should run.
	OutcomeProceed Outcome = iota
	// OutcomeStop means help was shown; exit cleanly without running.
	OutcomeStop
	// OutcomeError means the error was already reported; exit with failure.
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeProceed:
		return "proceed"
	case OutcomeStop:
		return "stop"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// osExit is replaced in tests.
var osExit = os.Exit

// Parser builds the subcommand tree and drives a parse over it.
type Parser struct {
	name           string
	version        string
	versionChecked bool

	tree    *tree
	current int   // scope receiving AddOption calls
	stack   []int // parents of current during BeginSubcommand

	versionOpt   *Toggle
	interspersed bool
	helpWidth    int

	io           *optio.IOManager
	theme        optio.Theme
	logger       *optio.Logger
	errorHandler *ErrorHandler
	exitCodes    *ExitCodeManager

	chain []int // scopes entered by the last parse, root first
}

// New creates a parser. An empty name is replaced by the base name of argv[0]
// at parse time.
func New(name string) *Parser {
	p := &Parser{
		name:         name,
		tree:         newTree(),
		versionOpt:   NewToggle("Show version information"),
		interspersed: true,
		helpWidth:    optio.DefaultWidth,
		io:           optio.New(),
		theme:        optio.DefaultTheme(),
		errorHandler: NewErrorHandler(),
	}
	p.logger = optio.NewLogger(p.io).WithTheme(p.theme)
	p.tree.at(0).addBuiltin(p.versionOpt, "v", "version")
	return p
}

// Version sets the version banner. Non-semver strings are kept verbatim;
// the first Parse or ShowVersion after the call warns about them through
// the logger configured at that point.
func (p *Parser) Version(v string) *Parser {
	p.version = v
	p.versionChecked = false
	return p
}

func (p *Parser) checkVersion() {
	if p.versionChecked || p.version == "" {
		return
	}
	p.versionChecked = true
	if _, err := semver.NewVersion(p.version); err != nil {
		p.logger.Warning("version %q is not semantic: %v", p.version, err)
	}
}

// AddOption registers v in the current scope: as an option under aliases,
// or as the next positional when no alias is given. Aliases of one rune are
// short options (-x); longer ones are long options (--name).
func (p *Parser) AddOption(v Value, aliases ...string) *Parser {
	p.tree.at(p.current).addOption(v, aliases...)
	return p
}

// BeginSubcommand adds a child scope reachable under aliases and makes it
// current until the matching EndSubcommand.
func (p *Parser) BeginSubcommand(sc *Subcommand, aliases ...string) *Parser {
	child := p.tree.addChild(p.current, sc, aliases...)
	p.stack = append(p.stack, p.current)
	p.current = child
	return p
}

// EndSubcommand returns to the parent scope.
func (p *Parser) EndSubcommand() *Parser {
	if len(p.stack) == 0 {
		panic("optparse: EndSubcommand without BeginSubcommand")
	}
	p.current = p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	return p
}

// Interspersed controls whether options may follow positionals. When
// disabled, the first positional ends option parsing.
func (p *Parser) Interspersed(enabled bool) *Parser {
	p.interspersed = enabled
	return p
}

// HelpWidth sets the column budget for wrapped descriptions. Zero follows
// the terminal width.
func (p *Parser) HelpWidth(cols int) *Parser {
	p.helpWidth = cols
	return p
}

// WithIO replaces the output sink.
func (p *Parser) WithIO(m *optio.IOManager) *Parser {
	p.io = m
	p.logger = optio.NewLogger(m).WithTheme(p.theme)
	return p
}

// WithTheme replaces the help and error colors.
func (p *Parser) WithTheme(theme optio.Theme) *Parser {
	p.theme = theme
	p.logger.WithTheme(theme)
	return p
}

// IO returns the output sink.
func (p *Parser) IO() *optio.IOManager { return p.io }

// Logger returns the logger used for error reports.
func (p *Parser) Logger() *optio.Logger { return p.logger }

// ErrorHandler returns the parser's error handler for configuration
func (p *Parser) ErrorHandler() *ErrorHandler { return p.errorHandler }

// ExitCodes returns the exit-code manager used by ParseOrExit.
func (p *Parser) ExitCodes() *ExitCodeManager {
	if p.exitCodes == nil {
		p.exitCodes = newExitCodeManager()
	}
	return p.exitCodes
}

// Parse scans argv, where argv[0] is the program name. Every call starts
// from the registration-time state of all values.
//
// Help requested with -h, or a value with fewer tokens than it requires,
// renders help and yields OutcomeStop. A version request yields
// OutcomeProceed and takes priority over missing values. On OutcomeError
// the returned error has already been written to the error sink.
func (p *Parser) Parse(argv []string) (Outcome, error) {
	p.checkVersion()
	p.Reset()

	sc := newScanner(p.tree, p.interspersed)
	err := sc.scan(p.programName(argv), argv)
	p.chain = sc.chain
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			err = p.reportError(perr)
		}
		return OutcomeError, err
	}

	if p.versionOpt.Value() {
		return OutcomeProceed, nil
	}
	if offset, ok := p.helpScope(); ok {
		p.renderHelp(offset)
		return OutcomeStop, nil
	}
	return OutcomeProceed, nil
}

// ParseOrExit parses argv and returns only on OutcomeProceed. A version
// request prints the banner and exits with the success code; other
// outcomes exit with the code chosen by ExitCodes.
func (p *Parser) ParseOrExit(argv []string) {
	outcome, err := p.Parse(argv)
	if outcome == OutcomeProceed {
		if !p.VersionRequested() {
			return
		}
		p.ShowVersion()
		outcome = OutcomeStop
	}
	osExit(p.ExitCodes().Code(outcome, err))
}

// Reset restores every value, count and subcommand selection.
func (p *Parser) Reset() {
	p.tree.reset()
	p.chain = nil
}

// VersionRequested reports whether -v/--version was given.
func (p *Parser) VersionRequested() bool { return p.versionOpt.Value() }

// ShowVersion prints "<name> version <v>".
func (p *Parser) ShowVersion() {
	p.checkVersion()
	v := p.version
	if v == "" {
		v = "(devel)"
	}
	p.io.WriteLine(p.programName(nil) + " version " + v)
}

// Path returns the program name followed by the subcommand aliases
// selected by the last parse.
func (p *Parser) Path() []string {
	if len(p.chain) == 0 {
		return []string{p.programName(nil)}
	}
	return slices.Clone(p.tree.at(p.chain[len(p.chain)-1]).programNames)
}

// Usage prints the root usage line.
func (p *Parser) Usage() {
	b := pool.GetBuffer()
	defer pool.PutBuffer(b)
	p.renderer().usage(b, p.rootForRender())
	p.io.Write(b.String())
}

// Help prints the root help page.
func (p *Parser) Help() {
	p.rootForRender()
	p.renderHelp(0)
}

func (p *Parser) renderer() renderer {
	width := p.helpWidth
	if width <= 0 {
		width = p.io.Width()
	}
	return renderer{io: p.io, out: p.io.Out(), theme: p.theme, width: width}
}

func (p *Parser) renderHelp(offset int) {
	b := pool.GetBuffer()
	defer pool.PutBuffer(b)
	p.renderer().help(b, p.tree, offset)
	p.io.Write(b.String())
}

// rootForRender makes sure the root has a program name outside of a parse.
func (p *Parser) rootForRender() *scope {
	root := p.tree.at(0)
	if len(root.programNames) == 0 {
		root.programNames = []string{p.programName(nil)}
	}
	return root
}

func (p *Parser) programName(argv []string) string {
	switch {
	case p.name != "":
		return p.name
	case len(argv) > 0:
		return filepath.Base(argv[0])
	default:
		return filepath.Base(os.Args[0])
	}
}

// helpScope picks the scope whose help should be shown: the deepest one
// with -h given, otherwise the first one, root first, holding a value
// with fewer tokens than it requires.
func (p *Parser) helpScope() (int, bool) {
	for i := len(p.chain) - 1; i >= 0; i-- {
		if p.tree.at(p.chain[i]).help.Value() {
			return p.chain[i], true
		}
	}
	for _, offset := range p.chain {
		s := p.tree.at(offset)
		for i := range s.descriptors {
			if !s.descriptors[i].satisfied() {
				return offset, true
			}
		}
	}
	return 0, false
}

func (p *Parser) reportError(perr *ParseError) *ParseError {
	perr = p.errorHandler.process(perr, p.tree)
	p.logger.Error("%s", p.errorHandler.format(perr))
	if p.errorHandler.showUsageOnError {
		b := pool.GetBuffer()
		defer pool.PutBuffer(b)
		r := p.renderer()
		r.out = p.io.Err()
		r.usage(b, p.tree.at(perr.scope))
		p.io.ErrLine("")
		_, _ = p.io.Err().Write(b.Bytes())
	}
	return perr
}
