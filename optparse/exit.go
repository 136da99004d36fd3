package optparse

import "errors"

// ExitCodeDefaults holds common default codes.
type ExitCodeDefaults struct {
	Success         int // default: 0
	GeneralError    int // default: 1
	MisusageError   int // default: 2
	ValidationError int // default: 3
}

func defaultExitDefaults() ExitCodeDefaults {
	return ExitCodeDefaults{Success: 0, GeneralError: 1, MisusageError: 2, ValidationError: 3}
}

// ExitCodeManager maps parse outcomes and error categories to process exit codes.
type ExitCodeManager struct {
	codesByType map[ErrorType]int
	defaults    ExitCodeDefaults
}

func newExitCodeManager() *ExitCodeManager {
	m := &ExitCodeManager{
		codesByType: make(map[ErrorType]int),
		defaults:    defaultExitDefaults(),
	}
	m.prewire()
	return m
}

func (e *ExitCodeManager) prewire() {
	e.codesByType[ErrorTypeUnknownOption] = e.defaults.MisusageError
	e.codesByType[ErrorTypeOptionTakesNoArgument] = e.defaults.MisusageError
	e.codesByType[ErrorTypePositionalOverflow] = e.defaults.MisusageError
	e.codesByType[ErrorTypeInvalidValue] = e.defaults.ValidationError
}

// Define overrides the exit code used for one error category.
func (e *ExitCodeManager) Define(typ ErrorType, code int) *ExitCodeManager {
	e.codesByType[typ] = code
	return e
}

// Default replaces the default codes. Categories not overridden with Define
// follow the new defaults.
func (e *ExitCodeManager) Default(d ExitCodeDefaults) *ExitCodeManager {
	custom := make(map[ErrorType]int)
	for typ, code := range e.codesByType {
		if code != e.builtinCode(typ) {
			custom[typ] = code
		}
	}
	e.defaults = d
	e.prewire()
	for typ, code := range custom {
		e.codesByType[typ] = code
	}
	return e
}

func (e *ExitCodeManager) builtinCode(typ ErrorType) int {
	switch typ {
	case ErrorTypeInvalidValue:
		return e.defaults.ValidationError
	case ErrorTypeUnknownOption, ErrorTypeOptionTakesNoArgument, ErrorTypePositionalOverflow:
		return e.defaults.MisusageError
	default:
		return e.defaults.GeneralError
	}
}

// Code converts a parse result into an exit code.
// Precedence:
//  1. OutcomeProceed and OutcomeStop exit with Success
//  2. ParseError category mapping (Define)
//  3. GeneralError
func (e *ExitCodeManager) Code(outcome Outcome, err error) int {
	if outcome != OutcomeError {
		return e.defaults.Success
	}
	var perr *ParseError
	if errors.As(err, &perr) {
		if code, ok := e.codesByType[perr.Type]; ok {
			return code
		}
	}
	return e.defaults.GeneralError
}
