package build

import "frost/internal/graph"

// Scope tracks which value names are visible at a point in a method
// body. Branch bodies get child scopes, so a value assigned inside one
// arm of an if is not visible after the if; arms hand results out
// through yield instead.
type Scope struct {
	values map[string]*graph.Value
	parent *Scope
}

func NewScope(parent *Scope) *Scope {
	return &Scope{
		values: make(map[string]*graph.Value),
		parent: parent,
	}
}

func (s *Scope) Define(name string, v *graph.Value) {
	s.values[name] = v
}

// Lookup resolves a name through the scope chain, nil when unbound.
func (s *Scope) Lookup(name string) *graph.Value {
	if v, ok := s.values[name]; ok {
		return v
	}
	if s.parent != nil {
		return s.parent.Lookup(name)
	}
	return nil
}

// VisibleNames returns every name bound in this scope or an ancestor,
// used for typo suggestions.
func (s *Scope) VisibleNames() []string {
	var names []string
	for sc := s; sc != nil; sc = sc.parent {
		for name := range sc.values {
			names = append(names, name)
		}
	}
	return names
}
