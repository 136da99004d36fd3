package optparse

import (
	"fmt"
	"math"
	"slices"
)

// Unbounded is the MaxNArgs of a value that accepts any number of tokens.
const Unbounded = math.MaxInt

// Attributes is the registration-time metadata of a Value.
type Attributes struct {
	Description string
	MetaVar     string
	MinNArgs    int
	MaxNArgs    int
	Hidden      bool
}

// Value is an externally owned cell the parser feeds tokens into.
// Registering the same Value under several aliases shares one descriptor.
type Value interface {
	Attributes() Attributes
	// Apply converts one token and stores it.
	Apply(token string) error
	// ApplyDefault runs when the option is given without a trailing value.
	ApplyDefault()
	// Reset restores the state the value had when it was built.
	Reset()
}

// Toggle is a zero-argument flag that becomes true when given.
type Toggle struct {
	attrs Attributes
	value bool
}

// NewToggle creates a boolean flag.
func NewToggle(description string) *Toggle {
	return &Toggle{attrs: Attributes{Description: description}}
}

// Hidden excludes the toggle from help output.
func (t *Toggle) Hidden() *Toggle { t.attrs.Hidden = true; return t }

// Value reports whether the flag was given.
func (t *Toggle) Value() bool { return t.value }

func (t *Toggle) Attributes() Attributes { return t.attrs }
func (t *Toggle) Apply(string) error     { t.value = true; return nil }
func (t *Toggle) ApplyDefault()          { t.value = true }
func (t *Toggle) Reset()                 { t.value = false }

// Counter is a zero-argument flag counting its occurrences, e.g. -vvv.
type Counter struct {
	attrs Attributes
	count int
}

// NewCounter creates a counted flag.
func NewCounter(description string) *Counter {
	return &Counter{attrs: Attributes{Description: description}}
}

// Hidden excludes the counter from help output.
func (c *Counter) Hidden() *Counter { c.attrs.Hidden = true; return c }

// Value returns how many times the flag was given.
func (c *Counter) Value() int { return c.count }

func (c *Counter) Attributes() Attributes { return c.attrs }
func (c *Counter) Apply(string) error     { c.count++; return nil }
func (c *Counter) ApplyDefault()          { c.count++ }
func (c *Counter) Reset()                 { c.count = 0 }

// Option holds a single typed value.
type Option[T any] struct {
	attrs      Attributes
	value      T
	def        T
	set        bool
	parse      func(string) (T, error)
	validators []func(T) error
}

// NewOption creates an optional single-valued option. The converter is
// picked from T; types without a built-in converter need ParseWith.
func NewOption[T any](description string) *Option[T] {
	return &Option[T]{
		attrs: Attributes{Description: description, MetaVar: defaultMetaVar[T](), MaxNArgs: 1},
		parse: converterFor[T](),
	}
}

// MetaVar sets the placeholder shown in usage text.
func (o *Option[T]) MetaVar(name string) *Option[T] { o.attrs.MetaVar = name; return o }

// Hidden excludes the option from help output.
func (o *Option[T]) Hidden() *Option[T] { o.attrs.Hidden = true; return o }

// Required makes the parser stop with help when no value was given.
func (o *Option[T]) Required() *Option[T] { o.attrs.MinNArgs = 1; return o }

// Default sets the initial value, also stored when the option is given bare.
func (o *Option[T]) Default(v T) *Option[T] {
	o.def = v
	o.value = v
	return o
}

// ParseWith replaces the converter.
func (o *Option[T]) ParseWith(fn func(string) (T, error)) *Option[T] { o.parse = fn; return o }

// Validate adds a check run after conversion.
func (o *Option[T]) Validate(fn func(T) error) *Option[T] {
	o.validators = append(o.validators, fn)
	return o
}

// Value returns the current value.
func (o *Option[T]) Value() T { return o.value }

// IsSet reports whether a token was applied since the last reset.
func (o *Option[T]) IsSet() bool { return o.set }

func (o *Option[T]) Attributes() Attributes { return o.attrs }

func (o *Option[T]) Apply(token string) error {
	v, err := convert(o.parse, o.validators, token)
	if err != nil {
		return err
	}
	o.value = v
	o.set = true
	return nil
}

func (o *Option[T]) ApplyDefault() { o.value = o.def }

func (o *Option[T]) Reset() {
	o.value = o.def
	o.set = false
}

// List collects repeated typed values in order.
type List[T any] struct {
	attrs      Attributes
	values     []T
	parse      func(string) (T, error)
	validators []func(T) error
}

// NewList creates a list accepting zero or more values.
func NewList[T any](description string) *List[T] {
	return &List[T]{
		attrs: Attributes{Description: description, MetaVar: defaultMetaVar[T](), MaxNArgs: Unbounded},
		parse: converterFor[T](),
	}
}

// MetaVar sets the placeholder shown in usage text.
func (l *List[T]) MetaVar(name string) *List[T] { l.attrs.MetaVar = name; return l }

// Hidden excludes the list from help output.
func (l *List[T]) Hidden() *List[T] { l.attrs.Hidden = true; return l }

// OneOrMore requires at least one value.
func (l *List[T]) OneOrMore() *List[T] { l.attrs.MinNArgs = 1; return l }

// NArgs bounds the number of values. It panics when min > max.
func (l *List[T]) NArgs(minN, maxN int) *List[T] {
	if minN < 0 || minN > maxN {
		panic(fmt.Sprintf("optparse: invalid nargs range [%d, %d]", minN, maxN))
	}
	l.attrs.MinNArgs, l.attrs.MaxNArgs = minN, maxN
	return l
}

// ParseWith replaces the converter.
func (l *List[T]) ParseWith(fn func(string) (T, error)) *List[T] { l.parse = fn; return l }

// Validate adds a check run on every element after conversion.
func (l *List[T]) Validate(fn func(T) error) *List[T] {
	l.validators = append(l.validators, fn)
	return l
}

// Value returns a copy of the collected values.
func (l *List[T]) Value() []T { return slices.Clone(l.values) }

// Len returns the number of collected values.
func (l *List[T]) Len() int { return len(l.values) }

func (l *List[T]) Attributes() Attributes { return l.attrs }

func (l *List[T]) Apply(token string) error {
	v, err := convert(l.parse, l.validators, token)
	if err != nil {
		return err
	}
	l.values = append(l.values, v)
	return nil
}

func (l *List[T]) ApplyDefault() {}

func (l *List[T]) Reset() { l.values = l.values[:0] }

// Choices restricts an option to a fixed set of values.
func Choices[T comparable](values ...T) func(T) error {
	return func(v T) error {
		if slices.Contains(values, v) {
			return nil
		}
		return fmt.Errorf("%v is not one of %v", v, values)
	}
}

func convert[T any](parse func(string) (T, error), validators []func(T) error, token string) (T, error) {
	var zero T
	if parse == nil {
		return zero, fmt.Errorf("no converter for %T values", zero)
	}
	v, err := parse(token)
	if err != nil {
		return zero, err
	}
	for _, validate := range validators {
		if err := validate(v); err != nil {
			return zero, err
		}
	}
	return v, nil
}
