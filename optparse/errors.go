package optparse

import (
	"fmt"
	"strings"

	"github.com/dzonerzy/go-optparse/internal/fuzzy"
	"github.com/dzonerzy/go-optparse/internal/pool"
)

// ErrorType represents the category of a parse failure.
// Categories drive suggestion logic and exit-code mapping (via ExitCodeManager).
type ErrorType string

const (
	ErrorTypeUnknownOption         ErrorType = "unknown_option"
	ErrorTypeOptionTakesNoArgument ErrorType = "option_takes_no_argument"
	ErrorTypePositionalOverflow    ErrorType = "positional_overflow"
	ErrorTypeInvalidValue          ErrorType = "invalid_value"
)

// ParseError is returned for every scanner-level failure.
type ParseError struct {
	Type        ErrorType
	Message     string
	Option      string // option or positional involved, as typed or as its metavar
	Token       string // offending token or value
	Suggestions []string
	Err         error // conversion failure from the option itself

	scope int // tree offset where the error happened
}

func (e *ParseError) Error() string { return e.Message }

func (e *ParseError) Unwrap() error { return e.Err }

func unknownOptionError(option string, scope int) *ParseError {
	return &ParseError{
		Type:    ErrorTypeUnknownOption,
		Message: "unknown option: " + option,
		Option:  option,
		Token:   option,
		scope:   scope,
	}
}

func noArgumentError(option string, scope int) *ParseError {
	return &ParseError{
		Type:    ErrorTypeOptionTakesNoArgument,
		Message: "option " + option + " doesn't need arguments",
		Option:  option,
		scope:   scope,
	}
}

func positionalOverflowError(token string, scope int) *ParseError {
	return &ParseError{
		Type:    ErrorTypePositionalOverflow,
		Message: fmt.Sprintf("unexpected positional argument: %q", token),
		Token:   token,
		scope:   scope,
	}
}

// invalidValueError keeps the converter's message as is.
func invalidValueError(option, token string, scope int, cause error) *ParseError {
	return &ParseError{
		Type:    ErrorTypeInvalidValue,
		Message: cause.Error(),
		Option:  option,
		Token:   token,
		Err:     cause,
		scope:   scope,
	}
}

// ErrorHandler enriches parse errors with suggestions and formats the report.
type ErrorHandler struct {
	suggestOptions   bool
	suggestCommands  bool
	maxDistance      int
	showUsageOnError bool
	customHandlers   map[ErrorType]func(*ParseError) *ParseError
}

// NewErrorHandler creates an error handler with suggestions enabled.
func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{
		suggestOptions:  true,
		suggestCommands: true,
		maxDistance:     2,
		customHandlers:  make(map[ErrorType]func(*ParseError) *ParseError),
	}
}

// SuggestOptions enables/disables "did you mean" hints for unknown options
func (eh *ErrorHandler) SuggestOptions(enabled bool) *ErrorHandler {
	eh.suggestOptions = enabled
	return eh
}

// SuggestCommands enables/disables subcommand hints for stray positionals
func (eh *ErrorHandler) SuggestCommands(enabled bool) *ErrorHandler {
	eh.suggestCommands = enabled
	return eh
}

// MaxDistance sets the maximum edit distance for suggestions
func (eh *ErrorHandler) MaxDistance(distance int) *ErrorHandler {
	eh.maxDistance = distance
	return eh
}

// ShowUsageOnError prints the usage line of the failing scope after the error.
func (eh *ErrorHandler) ShowUsageOnError(enabled bool) *ErrorHandler {
	eh.showUsageOnError = enabled
	return eh
}

// Handle registers a hook that may rewrite errors of one type before display.
func (eh *ErrorHandler) Handle(typ ErrorType, handler func(*ParseError) *ParseError) *ErrorHandler {
	eh.customHandlers[typ] = handler
	return eh
}

// process applies custom hooks and adds suggestions from the failing scope.
func (eh *ErrorHandler) process(err *ParseError, t *tree) *ParseError {
	s := t.at(err.scope)
	switch err.Type {
	case ErrorTypeUnknownOption:
		if eh.suggestOptions {
			if best := fuzzy.FindBestOption(err.Option, typedAliases(s), eh.maxDistance); best != "" {
				err.Suggestions = append(err.Suggestions, fmt.Sprintf("Did you mean '%s'?", best))
			}
		}
	case ErrorTypePositionalOverflow:
		if eh.suggestCommands && len(s.children) > 0 {
			names := make([]string, 0, len(s.children))
			for _, off := range s.childList {
				names = append(names, t.at(off).names...)
			}
			if best := fuzzy.FindBestSubcommand(err.Token, names, eh.maxDistance); best != "" {
				err.Suggestions = append(err.Suggestions, fmt.Sprintf("Did you mean '%s'?", best))
			}
		}
	case ErrorTypeOptionTakesNoArgument, ErrorTypeInvalidValue:
		// nothing to suggest
	}

	if handler, ok := eh.customHandlers[err.Type]; ok {
		if replaced := handler(err); replaced != nil {
			err = replaced
		}
	}
	return err
}

// format builds the report: the message, then one indented line per suggestion.
func (eh *ErrorHandler) format(err *ParseError) string {
	b := pool.GetBuffer()
	defer pool.PutBuffer(b)

	b.WriteString("Error: ")
	if err.Type == ErrorTypeInvalidValue && err.Option != "" {
		b.WriteString(err.Option)
		b.WriteString(": ")
	}
	b.WriteString(err.Message)
	for _, suggestion := range err.Suggestions {
		b.WriteString("\n  ")
		b.WriteString(suggestion)
	}
	return b.String()
}

// typedAliases lists every alias of a scope the way a user would type it.
func typedAliases(s *scope) []string {
	out := make([]string, 0, len(s.byAlias))
	for _, idx := range s.nonpositional {
		for _, alias := range s.descriptors[idx].aliases {
			out = append(out, dashed(alias))
		}
	}
	return out
}

// joinAliases renders aliases separated by '|', as help does.
func joinAliases(aliases []string, dash bool) string {
	parts := make([]string, len(aliases))
	for i, a := range aliases {
		if dash {
			a = dashed(a)
		}
		parts[i] = a
	}
	return strings.Join(parts, "|")
}
