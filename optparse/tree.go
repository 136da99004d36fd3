package optparse

import (
	"fmt"
	"slices"
)

// descriptor binds one Value to its aliases and the per-parse count.
type descriptor struct {
	value   Value
	aliases []string
	nargs   int
	builtin bool
}

func (d *descriptor) attrs() Attributes { return d.value.Attributes() }

func (d *descriptor) full() bool { return d.nargs >= d.attrs().MaxNArgs }

func (d *descriptor) satisfied() bool { return d.nargs >= d.attrs().MinNArgs }

// consume applies one token and reports whether the descriptor can take more.
func (d *descriptor) consume(token string) (bool, error) {
	if err := d.value.Apply(token); err != nil {
		return false, err
	}
	d.nargs++
	return !d.full(), nil
}

// scope is one node of the subcommand tree.
type scope struct {
	sub   *Subcommand
	names []string // aliases the parent dispatches on

	descriptors   []descriptor
	byValue       map[Value]int
	byAlias       map[string]int
	nonpositional []int
	positional    []int

	children  map[string]int // alias -> offset in tree
	childList []int

	help         *Toggle
	programNames []string
}

func newScope(sub *Subcommand) scope {
	s := scope{
		sub:      sub,
		byValue:  make(map[Value]int),
		byAlias:  make(map[string]int),
		children: make(map[string]int),
		help:     NewToggle("Show this help messages"),
	}
	s.addBuiltin(s.help, "h", "help")
	return s
}

// addBuiltin registers help or version; user options may take over its aliases.
func (s *scope) addBuiltin(v Value, aliases ...string) {
	s.addOption(v, aliases...)
	s.descriptors[s.byValue[v]].builtin = true
}

// addOption registers a nonpositional value under aliases, or the next
// positional when no alias is given. Values are deduplicated by identity.
func (s *scope) addOption(v Value, aliases ...string) {
	for _, alias := range aliases {
		if idx, taken := s.byAlias[alias]; taken {
			if !s.descriptors[idx].builtin {
				panic(fmt.Sprintf("optparse: alias %q registered twice", alias))
			}
			s.releaseAlias(idx, alias)
		}
	}
	idx, seen := s.byValue[v]
	if !seen {
		idx = len(s.descriptors)
		s.byValue[v] = idx
		s.descriptors = append(s.descriptors, descriptor{value: v})
	}
	if len(aliases) == 0 {
		s.positional = append(s.positional, idx)
		return
	}
	d := &s.descriptors[idx]
	if len(d.aliases) == 0 {
		s.nonpositional = append(s.nonpositional, idx)
	}
	for _, alias := range aliases {
		s.byAlias[alias] = idx
	}
	d.aliases = append(d.aliases, aliases...)
}

func (s *scope) releaseAlias(idx int, alias string) {
	delete(s.byAlias, alias)
	d := &s.descriptors[idx]
	d.aliases = slices.DeleteFunc(d.aliases, func(a string) bool { return a == alias })
}

func (s *scope) lookup(alias string) *descriptor {
	idx, ok := s.byAlias[alias]
	if !ok {
		return nil
	}
	return &s.descriptors[idx]
}

func (s *scope) reset() {
	for i := range s.descriptors {
		s.descriptors[i].nargs = 0
		s.descriptors[i].value.Reset()
	}
	if s.sub != nil {
		s.sub.selected = false
	}
	s.programNames = nil
}

func (s *scope) hasVisibleOptions() bool {
	for _, idx := range s.nonpositional {
		if !s.descriptors[idx].attrs().Hidden {
			return true
		}
	}
	return false
}

// tree is a flat arena of scopes; offsets stay valid while it grows.
type tree struct {
	scopes []scope
}

func newTree() *tree {
	return &tree{scopes: []scope{newScope(nil)}}
}

func (t *tree) at(offset int) *scope { return &t.scopes[offset] }

// addChild appends a scope under parent and returns its offset.
func (t *tree) addChild(parent int, sub *Subcommand, aliases ...string) int {
	if len(aliases) == 0 {
		panic("optparse: subcommand needs at least one alias")
	}
	offset := len(t.scopes)
	child := newScope(sub)
	child.names = append(child.names, aliases...)
	t.scopes = append(t.scopes, child)

	p := t.at(parent)
	for _, alias := range aliases {
		if _, taken := p.children[alias]; taken {
			panic(fmt.Sprintf("optparse: subcommand %q registered twice", alias))
		}
		p.children[alias] = offset
	}
	p.childList = append(p.childList, offset)
	return offset
}

func (t *tree) reset() {
	for i := range t.scopes {
		t.scopes[i].reset()
	}
}
