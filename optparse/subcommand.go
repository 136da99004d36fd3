package optparse

// Subcommand is the caller's handle on a nested command scope.
type Subcommand struct {
	description string
	hidden      bool
	selected    bool
	onSelect    func()
}

// NewSubcommand creates a subcommand handle.
func NewSubcommand(description string) *Subcommand {
	return &Subcommand{description: description}
}

// OnSelect sets a callback fired when the parser dispatches into this scope.
func (s *Subcommand) OnSelect(fn func()) *Subcommand {
	s.onSelect = fn
	return s
}

// Hidden omits the subcommand from its parent's help.
func (s *Subcommand) Hidden() *Subcommand {
	s.hidden = true
	return s
}

// Description returns the help text of the subcommand.
func (s *Subcommand) Description() string { return s.description }

// Selected reports whether the last parse dispatched into this subcommand.
func (s *Subcommand) Selected() bool { return s.selected }

func (s *Subcommand) selectScope() {
	s.selected = true
	if s.onSelect != nil {
		s.onSelect()
	}
}
