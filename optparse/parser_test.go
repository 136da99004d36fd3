//nolint:testpackage // using package name 'optparse' to access unexported fields for testing
package optparse

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	optio "github.com/dzonerzy/go-optparse/io"
)

func newTestParser(name string) (*Parser, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	p := New(name).WithIO(optio.New().WithOut(&out).WithErr(&errOut).NoColor())
	return p, &out, &errOut
}

func TestLongOptionBindsValue(t *testing.T) {
	p, _, _ := newTestParser("prog")
	name := NewOption[string]("Name to greet")
	p.AddOption(name, "name")

	outcome, err := p.Parse([]string{"prog", "--name", "v"})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if outcome != OutcomeProceed {
		t.Errorf("Expected proceed, got %v", outcome)
	}
	if name.Value() != "v" {
		t.Errorf("Expected name='v', got %q", name.Value())
	}
	if !name.IsSet() {
		t.Error("Expected name to be marked as set")
	}
}

func TestLongOptionEqualsAndSpaceAgree(t *testing.T) {
	for _, argv := range [][]string{
		{"prog", "--out=file.txt"},
		{"prog", "--out", "file.txt"},
	} {
		p, _, _ := newTestParser("prog")
		out := NewOption[string]("Output file")
		p.AddOption(out, "out")

		if _, err := p.Parse(argv); err != nil {
			t.Fatalf("Parse(%q) failed: %v", argv, err)
		}
		if out.Value() != "file.txt" {
			t.Errorf("Parse(%q): expected out='file.txt', got %q", argv, out.Value())
		}
	}
}

func TestShortCluster(t *testing.T) {
	p, _, _ := newTestParser("prog")
	verbose := NewToggle("verbose")
	force := NewToggle("force")
	out := NewOption[string]("out")
	p.AddOption(verbose, "a").AddOption(force, "b").AddOption(out, "c")

	outcome, err := p.Parse([]string{"prog", "-abc", "file.txt"})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if outcome != OutcomeProceed {
		t.Errorf("Expected proceed, got %v", outcome)
	}
	if !verbose.Value() || !force.Value() {
		t.Errorf("Expected verbose and force set, got verbose=%v force=%v", verbose.Value(), force.Value())
	}
	if out.Value() != "file.txt" {
		t.Errorf("Expected out='file.txt', got %q", out.Value())
	}
}

func TestShortClusterTailIsValue(t *testing.T) {
	p, _, _ := newTestParser("prog")
	x := NewToggle("x")
	out := NewOption[string]("out")
	p.AddOption(x, "x").AddOption(out, "o")

	if _, err := p.Parse([]string{"prog", "-xofile"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !x.Value() {
		t.Error("Expected -x to be set")
	}
	if out.Value() != "file" {
		t.Errorf("Expected out='file', got %q", out.Value())
	}
}

func TestEscapeMarker(t *testing.T) {
	p, _, _ := newTestParser("prog")
	rest := NewOption[string]("Anything")
	p.AddOption(rest)

	outcome, err := p.Parse([]string{"prog", "--", "--not-an-option"})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if outcome != OutcomeProceed {
		t.Errorf("Expected proceed, got %v", outcome)
	}
	if rest.Value() != "--not-an-option" {
		t.Errorf("Expected literal '--not-an-option', got %q", rest.Value())
	}
}

func TestPositionalOverflow(t *testing.T) {
	p, _, errOut := newTestParser("prog")

	outcome, err := p.Parse([]string{"prog", "stray"})
	if outcome != OutcomeError {
		t.Errorf("Expected error outcome, got %v", outcome)
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected *ParseError, got %T", err)
	}
	if perr.Type != ErrorTypePositionalOverflow {
		t.Errorf("Expected %s, got %s", ErrorTypePositionalOverflow, perr.Type)
	}
	if got, want := errOut.String(), "Error: unexpected positional argument: \"stray\"\n"; got != want {
		t.Errorf("Expected stderr %q, got %q", want, got)
	}
}

func TestSubcommandDispatch(t *testing.T) {
	p, _, _ := newTestParser("prog")
	rootOpt := NewOption[int]("root opt")
	buildOpt := NewOption[int]("build opt")
	selected := 0
	build := NewSubcommand("Build the project").OnSelect(func() { selected++ })

	p.AddOption(rootOpt, "opt").
		BeginSubcommand(build, "build").
		AddOption(buildOpt, "opt").
		EndSubcommand()

	outcome, err := p.Parse([]string{"prog", "build", "--opt", "1"})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if outcome != OutcomeProceed {
		t.Errorf("Expected proceed, got %v", outcome)
	}
	if selected != 1 || !build.Selected() {
		t.Errorf("Expected build selected once, got callback=%d selected=%v", selected, build.Selected())
	}
	if buildOpt.Value() != 1 {
		t.Errorf("Expected build --opt=1, got %d", buildOpt.Value())
	}
	if rootOpt.IsSet() {
		t.Errorf("Expected root --opt untouched, got %d", rootOpt.Value())
	}
	if diff := cmp.Diff([]string{"prog", "build"}, p.Path()); diff != "" {
		t.Errorf("Path mismatch (-want +got):\n%s", diff)
	}
}

func TestParentOptionsUnreachableAfterDispatch(t *testing.T) {
	p, _, _ := newTestParser("prog")
	debug := NewToggle("debug")
	p.AddOption(debug, "debug").
		BeginSubcommand(NewSubcommand("Build"), "build").
		EndSubcommand()

	_, err := p.Parse([]string{"prog", "build", "--debug"})
	var perr *ParseError
	if !errors.As(err, &perr) || perr.Type != ErrorTypeUnknownOption {
		t.Fatalf("Expected unknown option error, got %v", err)
	}
	if perr.Option != "--debug" {
		t.Errorf("Expected option '--debug', got %q", perr.Option)
	}
}

func TestOnlyFirstNonOptionDispatches(t *testing.T) {
	p, _, _ := newTestParser("prog")
	files := NewList[string]("Files")
	build := NewSubcommand("Build")
	p.AddOption(files).BeginSubcommand(build, "build").EndSubcommand()

	if _, err := p.Parse([]string{"prog", "main.go", "build"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if build.Selected() {
		t.Error("Expected build not to be selected")
	}
	if diff := cmp.Diff([]string{"main.go", "build"}, files.Value()); diff != "" {
		t.Errorf("Positionals mismatch (-want +got):\n%s", diff)
	}
}

func TestEscapedTokenDoesNotDispatch(t *testing.T) {
	p, _, _ := newTestParser("prog")
	files := NewList[string]("Files")
	build := NewSubcommand("Build")
	p.AddOption(files).BeginSubcommand(build, "build").EndSubcommand()

	if _, err := p.Parse([]string{"prog", "--", "build"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if build.Selected() {
		t.Error("Expected build not to be selected after --")
	}
	if diff := cmp.Diff([]string{"build"}, files.Value()); diff != "" {
		t.Errorf("Positionals mismatch (-want +got):\n%s", diff)
	}
}

func TestMissingRequiredShowsHelp(t *testing.T) {
	p, out, errOut := newTestParser("prog")
	target := NewOption[string]("Target").Required()
	p.AddOption(target, "target")

	outcome, err := p.Parse([]string{"prog"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if outcome != OutcomeStop {
		t.Errorf("Expected stop, got %v", outcome)
	}
	if !strings.HasPrefix(out.String(), "USAGE\n\tprog [OPTIONS]\n") {
		t.Errorf("Expected help on stdout, got %q", out.String())
	}
	if errOut.Len() != 0 {
		t.Errorf("Expected nothing on stderr, got %q", errOut.String())
	}
}

func TestVersionBeatsMissingRequired(t *testing.T) {
	p, out, _ := newTestParser("prog")
	target := NewOption[string]("Target").Required()
	p.AddOption(target, "target")

	outcome, err := p.Parse([]string{"prog", "-v"})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if outcome != OutcomeProceed {
		t.Errorf("Expected proceed, got %v", outcome)
	}
	if !p.VersionRequested() {
		t.Error("Expected version to be requested")
	}
	if out.Len() != 0 {
		t.Errorf("Expected no help output, got %q", out.String())
	}
}

func TestMissingRequiredInSubcommandShowsItsHelp(t *testing.T) {
	p, out, _ := newTestParser("prog")
	p.BeginSubcommand(NewSubcommand("Deploy"), "deploy").
		AddOption(NewOption[string]("Environment").Required(), "env").
		EndSubcommand()

	outcome, _ := p.Parse([]string{"prog", "deploy"})
	if outcome != OutcomeStop {
		t.Errorf("Expected stop, got %v", outcome)
	}
	if !strings.HasPrefix(out.String(), "USAGE\n\tprog deploy [OPTIONS]\n") {
		t.Errorf("Expected deploy help, got %q", out.String())
	}
}

func TestExplicitHelpPicksDeepestScope(t *testing.T) {
	p, out, _ := newTestParser("prog")
	p.AddOption(NewOption[string]("Source").MetaVar("SRC").Required()).
		BeginSubcommand(NewSubcommand("Build"), "build").
		AddOption(NewToggle("Optimized build"), "release").
		EndSubcommand()

	outcome, err := p.Parse([]string{"prog", "build", "--help"})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if outcome != OutcomeStop {
		t.Errorf("Expected stop, got %v", outcome)
	}
	want := "USAGE\n" +
		"\tprog build [OPTIONS]\n" +
		"\n" +
		"OPTIONS\n" +
		"\t-h|--help\n" +
		"\t\tShow this help messages\n" +
		"\t--release\n" +
		"\t\tOptimized build\n"
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Errorf("Help mismatch (-want +got):\n%s", diff)
	}
}

func TestParseIsRepeatable(t *testing.T) {
	p, _, _ := newTestParser("prog")
	tags := NewList[string]("Tags")
	level := NewCounter("Verbosity")
	build := NewSubcommand("Build")
	p.AddOption(level, "V").
		BeginSubcommand(build, "build").
		AddOption(tags, "t", "tag").
		EndSubcommand()

	argv := []string{"prog", "-VV", "build", "--tag", "a", "-t", "b"}
	for i := 0; i < 3; i++ {
		if _, err := p.Parse(argv); err != nil {
			t.Fatalf("Parse #%d failed: %v", i, err)
		}
		if diff := cmp.Diff([]string{"a", "b"}, tags.Value()); diff != "" {
			t.Errorf("Parse #%d tags mismatch (-want +got):\n%s", i, diff)
		}
		if level.Value() != 2 {
			t.Errorf("Parse #%d: expected level=2, got %d", i, level.Value())
		}
		if !build.Selected() {
			t.Errorf("Parse #%d: expected build selected", i)
		}
	}

	p.Reset()
	if tags.Len() != 0 || level.Value() != 0 || build.Selected() {
		t.Errorf("Expected Reset to clear state, got tags=%v level=%d build=%v",
			tags.Value(), level.Value(), build.Selected())
	}
}

func TestInterspersed(t *testing.T) {
	tests := []struct {
		name         string
		interspersed bool
		wantX        bool
		wantArgs     []string
	}{
		{name: "default", interspersed: true, wantX: true, wantArgs: []string{"file"}},
		{name: "disabled", interspersed: false, wantX: false, wantArgs: []string{"file", "-x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _, _ := newTestParser("prog")
			x := NewToggle("x")
			args := NewList[string]("Arguments")
			p.Interspersed(tt.interspersed).AddOption(x, "x").AddOption(args)

			if _, err := p.Parse([]string{"prog", "file", "-x"}); err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if x.Value() != tt.wantX {
				t.Errorf("Expected x=%v, got %v", tt.wantX, x.Value())
			}
			if diff := cmp.Diff(tt.wantArgs, args.Value()); diff != "" {
				t.Errorf("Arguments mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUserAliasTakesOverBuiltin(t *testing.T) {
	p, out, _ := newTestParser("prog")
	host := NewOption[string]("Host to connect to")
	p.AddOption(host, "h", "host")

	outcome, err := p.Parse([]string{"prog", "-h", "example.com"})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if outcome != OutcomeProceed {
		t.Errorf("Expected proceed, got %v", outcome)
	}
	if host.Value() != "example.com" {
		t.Errorf("Expected host='example.com', got %q", host.Value())
	}

	out.Reset()
	outcome, _ = p.Parse([]string{"prog", "--help"})
	if outcome != OutcomeStop {
		t.Errorf("Expected --help to still stop, got %v", outcome)
	}
	if !strings.Contains(out.String(), "\t--help\n") {
		t.Errorf("Expected help entry without -h, got %q", out.String())
	}
}

func TestValuesBeforeErrorStayApplied(t *testing.T) {
	p, _, _ := newTestParser("prog")
	x := NewToggle("x")
	p.AddOption(x, "x")

	outcome, err := p.Parse([]string{"prog", "-x", "--bogus"})
	if outcome != OutcomeError || err == nil {
		t.Fatalf("Expected error, got %v %v", outcome, err)
	}
	if !x.Value() {
		t.Error("Expected -x to remain applied")
	}
}

func TestInvalidValue(t *testing.T) {
	p, _, errOut := newTestParser("prog")
	count := NewOption[int]("Count")
	p.AddOption(count, "count")

	_, err := p.Parse([]string{"prog", "--count", "abc"})
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected *ParseError, got %T", err)
	}
	if perr.Type != ErrorTypeInvalidValue {
		t.Errorf("Expected %s, got %s", ErrorTypeInvalidValue, perr.Type)
	}
	if perr.Err == nil || errors.Unwrap(perr) != perr.Err {
		t.Errorf("Expected conversion cause to be wrapped, got %v", perr.Err)
	}
	if got, want := errOut.String(), "Error: --count: \"abc\" is not a valid integer\n"; got != want {
		t.Errorf("Expected stderr %q, got %q", want, got)
	}
}

func TestNegativeNumberNeedsEquals(t *testing.T) {
	p, _, _ := newTestParser("prog")
	offset := NewOption[int]("Offset")
	p.AddOption(offset, "offset")

	if _, err := p.Parse([]string{"prog", "--offset=-5"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if offset.Value() != -5 {
		t.Errorf("Expected offset=-5, got %d", offset.Value())
	}

	_, err := p.Parse([]string{"prog", "--offset", "-5"})
	var perr *ParseError
	if !errors.As(err, &perr) || perr.Type != ErrorTypeUnknownOption {
		t.Fatalf("Expected unknown option for -5, got %v", err)
	}
}

func TestVersionWarning(t *testing.T) {
	p, _, errOut := newTestParser("prog")
	p.Version("1.4.0")
	if _, err := p.Parse([]string{"prog"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if errOut.Len() != 0 {
		t.Errorf("Expected no warning for semver, got %q", errOut.String())
	}

	p.Version("nightly")
	if errOut.Len() != 0 {
		t.Errorf("Expected the warning to wait for Parse, got %q", errOut.String())
	}
	for i := 0; i < 2; i++ {
		if _, err := p.Parse([]string{"prog"}); err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
	}
	if got := strings.Count(errOut.String(), `version "nightly" is not semantic`); got != 1 {
		t.Errorf("Expected one warning for non-semver version, got %q", errOut.String())
	}
}

func TestVersionWarningUsesLaterIO(t *testing.T) {
	var errOut bytes.Buffer
	p := New("prog").Version("nightly").
		WithIO(optio.New().WithOut(&bytes.Buffer{}).WithErr(&errOut).NoColor())
	p.ShowVersion()

	if !strings.Contains(errOut.String(), `version "nightly" is not semantic`) {
		t.Errorf("Expected warning on the configured stderr, got %q", errOut.String())
	}
}

func TestShowVersion(t *testing.T) {
	p, out, _ := newTestParser("prog")
	p.Version("2.0.1").ShowVersion()
	if got := out.String(); got != "prog version 2.0.1\n" {
		t.Errorf("Expected version banner, got %q", got)
	}
}

func TestProgramNameFromArgv(t *testing.T) {
	p, out, _ := newTestParser("")
	p.AddOption(NewOption[string]("Target").Required(), "target")

	if _, err := p.Parse([]string{"/usr/local/bin/tool"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !strings.HasPrefix(out.String(), "USAGE\n\ttool [OPTIONS]\n") {
		t.Errorf("Expected program name from argv[0], got %q", out.String())
	}
}

func TestEndSubcommandAtRootPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic")
		}
	}()
	New("prog").EndSubcommand()
}

func TestParseOrExit(t *testing.T) {
	tests := []struct {
		name     string
		argv     []string
		wantExit bool
		wantCode int
	}{
		{name: "proceed", argv: []string{"prog"}, wantExit: false},
		{name: "help", argv: []string{"prog", "-h"}, wantExit: true, wantCode: 0},
		{name: "version", argv: []string{"prog", "--version"}, wantExit: true, wantCode: 0},
		{name: "unknown option", argv: []string{"prog", "--nope"}, wantExit: true, wantCode: 2},
		{name: "invalid value", argv: []string{"prog", "--jobs", "many"}, wantExit: true, wantCode: 3},
	}

	saved := osExit
	defer func() { osExit = saved }()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exited, code := false, -1
			osExit = func(c int) { exited, code = true, c }

			p, out, _ := newTestParser("prog")
			p.Version("1.0.0").AddOption(NewOption[int]("Parallel jobs"), "jobs")
			p.ParseOrExit(tt.argv)

			if exited != tt.wantExit {
				t.Fatalf("Expected exit=%v, got %v", tt.wantExit, exited)
			}
			if exited && code != tt.wantCode {
				t.Errorf("Expected exit code %d, got %d", tt.wantCode, code)
			}
			if tt.name == "version" && out.String() != "prog version 1.0.0\n" {
				t.Errorf("Expected version banner, got %q", out.String())
			}
		})
	}
}

func TestOutcomeString(t *testing.T) {
	for outcome, want := range map[Outcome]string{
		OutcomeProceed: "proceed",
		OutcomeStop:    "stop",
		OutcomeError:   "error",
		Outcome(42):    "unknown",
	} {
		if got := outcome.String(); got != want {
			t.Errorf("Expected %q, got %q", want, got)
		}
	}
}
