package graph

import "frost/internal/types"

// Value is one SSA-style graph value: produced by exactly one node,
// consumed through tracked uses so rewiring is a local operation.
type Value struct {
	node  Node
	index int // position among the producing node's outputs
	typ   types.Type
	name  string // debug name, unique within the graph, stored without the % sigil
	uses  []Use
}

// Use records one operand slot that consumes a value
type Use struct {
	User  Node
	Index int
}

// Node returns the producing node. Block parameters are produced by the
// block's Param node.
func (v *Value) Node() Node { return v.node }

// Index returns the value's position among its producer's outputs.
func (v *Value) Index() int { return v.index }

// Type returns the static type.
func (v *Value) Type() types.Type { return v.typ }

// DebugName returns the name without the leading %.
func (v *Value) DebugName() string { return v.name }

// SetDebugName renames the value, uniquifying against the graph's other
// names. The final name is returned.
func (v *Value) SetDebugName(name string) string {
	g := v.node.base().graph
	unique := g.claimName(name)
	v.name = unique
	return unique
}

// Uses returns a copy of the use list, safe to iterate while rewiring.
func (v *Value) Uses() []Use {
	out := make([]Use, len(v.uses))
	copy(out, v.uses)
	return out
}

// HasUses reports whether any operand slot still consumes the value.
func (v *Value) HasUses() bool { return len(v.uses) > 0 }

// ReplaceAllUsesWith rewires every consumer of v to consume w instead.
func (v *Value) ReplaceAllUsesWith(w *Value) {
	if v == w {
		return
	}
	for _, u := range v.Uses() {
		u.User.ReplaceInput(u.Index, w)
	}
}

func (v *Value) addUse(user Node, i int) {
	v.uses = append(v.uses, Use{User: user, Index: i})
}

func (v *Value) removeUse(user Node, i int) {
	for k, u := range v.uses {
		if u.User == user && u.Index == i {
			v.uses = append(v.uses[:k], v.uses[k+1:]...)
			return
		}
	}
}
