package module

import (
	"frost/internal/graph"
	"frost/internal/rt"
	"frost/internal/types"
)

// Clone deep-copies the hierarchy: fresh records, fresh module types
// (so pruning a clone's type descriptors cannot reach the original),
// fresh attribute storage with deep-copied values, and fresh method
// graphs whose value types and callee references point into the clone.
// Handles keep their numeric values, and type or instance sharing in
// the source stays shared in the clone.
func (h *Hierarchy) Clone() *Hierarchy {
	c := &Hierarchy{root: h.root}

	typeMap := make(map[types.Type]types.Type)
	for _, r := range h.records {
		if _, ok := typeMap[r.typ]; !ok {
			typeMap[r.typ] = types.NewModuleType(r.typ.QualifiedName())
		}
	}
	for _, r := range h.records {
		nt := typeMap[r.typ].(*types.ModuleType)
		if nt.NumAttributes() > 0 {
			continue // shared type already populated
		}
		for _, a := range r.typ.Attributes() {
			nt.AddAttribute(a.Name, remapAttrType(a.Type, typeMap))
		}
	}

	// Allocate every method graph up front so call nodes copied later can
	// be remapped to clone-side callees regardless of method order.
	graphMap := make(map[*graph.Graph]*graph.Graph)
	for _, r := range h.records {
		for _, m := range r.methods {
			if _, ok := graphMap[m.g]; !ok {
				graphMap[m.g] = graph.New()
			}
		}
	}

	opts := graph.CopyOpts{Types: typeMap, Callees: graphMap}
	for _, r := range h.records {
		nr := &record{
			typ:   typeMap[r.typ].(*types.ModuleType),
			slots: make(map[string]rt.Value, len(r.slots)),
		}
		for name, v := range r.slots {
			nr.slots[name] = v.Clone()
		}
		for _, m := range r.methods {
			ng := graphMap[m.g]
			if ng.Block().Empty() && len(ng.Inputs()) == 0 {
				graph.CopyInto(ng, m.g, opts)
			}
			nr.methods = append(nr.methods, NewMethod(m.name, ng))
		}
		c.records = append(c.records, nr)
	}
	return c
}

func remapAttrType(t types.Type, typeMap map[types.Type]types.Type) types.Type {
	if nt, ok := typeMap[t]; ok {
		return nt
	}
	return t
}
