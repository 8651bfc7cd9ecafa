package module

import (
	"frost/internal/graph"
	"frost/internal/rt"
	"frost/internal/types"
)

// A Hierarchy owns an arena of module records. Instances are addressed
// by rt.ModuleRef handles (arena indices), which makes instance identity
// explicit and survives cloning: a clone is fresh storage under the same
// handle values. All attribute and method access goes through the
// hierarchy so nothing outside it ever holds a raw record.

// Method is a named behavior owning one instruction graph
type Method struct {
	name string
	g    *graph.Graph
}

// NewMethod pairs a name with its body.
func NewMethod(name string, g *graph.Graph) *Method {
	return &Method{name: name, g: g}
}

// Name returns the method name.
func (m *Method) Name() string { return m.name }

// Graph returns the method body.
func (m *Method) Graph() *graph.Graph { return m.g }

// record is one module instance
type record struct {
	typ     *types.ModuleType
	slots   map[string]rt.Value
	methods []*Method
}

// Hierarchy is the arena of module records rooted at one entry module
type Hierarchy struct {
	records []*record
	root    rt.ModuleRef
}

// NewHierarchy creates an empty hierarchy.
func NewHierarchy() *Hierarchy {
	return &Hierarchy{}
}

// NewModule allocates a record of the given type and returns its handle.
// The first module allocated becomes the root until SetRoot says
// otherwise.
func (h *Hierarchy) NewModule(typ *types.ModuleType) rt.ModuleRef {
	h.records = append(h.records, &record{typ: typ, slots: make(map[string]rt.Value)})
	ref := rt.ModuleRef(len(h.records))
	if h.root == rt.NoModule {
		h.root = ref
	}
	return ref
}

// SetRoot designates the entry module.
func (h *Hierarchy) SetRoot(ref rt.ModuleRef) { h.root = ref }

// Root returns the entry module's handle.
func (h *Hierarchy) Root() rt.ModuleRef { return h.root }

// NumModules returns the number of records in the arena.
func (h *Hierarchy) NumModules() int { return len(h.records) }

// Valid reports whether ref names a record in this hierarchy.
func (h *Hierarchy) Valid(ref rt.ModuleRef) bool {
	return ref != rt.NoModule && int(ref) <= len(h.records)
}

func (h *Hierarchy) rec(ref rt.ModuleRef) *record {
	return h.records[int(ref)-1]
}

// Type returns the static type of a record.
func (h *Hierarchy) Type(ref rt.ModuleRef) *types.ModuleType {
	return h.rec(ref).typ
}

// DefineAttr declares an attribute on the record's type and stores its
// initial value. It reports false if the name is already declared.
func (h *Hierarchy) DefineAttr(ref rt.ModuleRef, name string, typ types.Type, v rt.Value) bool {
	r := h.rec(ref)
	if !r.typ.AddAttribute(name, typ) {
		return false
	}
	r.slots[name] = v
	return true
}

// HasAttr reports whether the record stores a value for name.
func (h *Hierarchy) HasAttr(ref rt.ModuleRef, name string) bool {
	_, ok := h.rec(ref).slots[name]
	return ok
}

// Attr reads an attribute value.
func (h *Hierarchy) Attr(ref rt.ModuleRef, name string) (rt.Value, bool) {
	v, ok := h.rec(ref).slots[name]
	return v, ok
}

// SetAttr overwrites an existing attribute value. It reports false if
// the attribute does not exist; writes never create attributes.
func (h *Hierarchy) SetAttr(ref rt.ModuleRef, name string, v rt.Value) bool {
	r := h.rec(ref)
	if _, ok := r.slots[name]; !ok {
		return false
	}
	r.slots[name] = v
	return true
}

// RemoveAttr deletes an attribute's storage without touching the type
// descriptor; pruning removes the descriptor separately.
func (h *Hierarchy) RemoveAttr(ref rt.ModuleRef, name string) bool {
	r := h.rec(ref)
	if _, ok := r.slots[name]; !ok {
		return false
	}
	delete(r.slots, name)
	return true
}

// Submodule resolves a module-valued attribute to its handle.
func (h *Hierarchy) Submodule(ref rt.ModuleRef, name string) (rt.ModuleRef, bool) {
	v, ok := h.rec(ref).slots[name]
	if !ok || !v.IsModule() {
		return rt.NoModule, false
	}
	return v.Module(), true
}

// DefineMethod attaches a method to a record. It reports false on a
// duplicate name.
func (h *Hierarchy) DefineMethod(ref rt.ModuleRef, m *Method) bool {
	r := h.rec(ref)
	for _, existing := range r.methods {
		if existing.Name() == m.Name() {
			return false
		}
	}
	r.methods = append(r.methods, m)
	return true
}

// Method looks up a method by name, nil when absent.
func (h *Hierarchy) Method(ref rt.ModuleRef, name string) *Method {
	for _, m := range h.rec(ref).methods {
		if m.Name() == name {
			return m
		}
	}
	return nil
}

// Methods returns the record's methods in declaration order.
func (h *Hierarchy) Methods(ref rt.ModuleRef) []*Method {
	r := h.rec(ref)
	out := make([]*Method, len(r.methods))
	copy(out, r.methods)
	return out
}
