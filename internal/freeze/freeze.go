package freeze

// Module freezing: prove which attributes of a module hierarchy are
// never reassigned by its entry method, substitute their values into the
// instruction graph as literal constants, and prune the attributes the
// graph no longer reads. The input hierarchy is cloned up front and
// never mutated; the clone is the frozen artifact.
//
// The analysis is syntactic on purpose. An attribute access names its
// target through a chain of getattr instructions rooted at the receiver,
// and the pass folds a read only when that chain resolves exactly. Any
// chain it cannot resolve disables both mutation marking and folding for
// that one access, which keeps the result sound: what cannot be proven
// immutable is simply left alone.

import (
	"fmt"

	"github.com/tliron/commonlog"

	"frost/internal/graph"
	"frost/internal/module"
	"frost/internal/rt"
	"frost/internal/types"
)

// EntryMethod is the method freezing specializes. A hierarchy without it
// cannot be frozen.
const EntryMethod = "forward"

var log = commonlog.GetLogger("frost.freeze")

// Freeze returns a frozen clone of h: the entry method's graph is
// inlined, reads of provably-immutable attributes are folded to
// constants, the graph is simplified, and root attributes nothing reads
// anymore are deleted together with their type descriptors. The input
// hierarchy is left untouched. Freezing fails only when the root module
// has no entry method.
func Freeze(h *module.Hierarchy) (*module.Hierarchy, error) {
	frozen := h.Clone()
	rootName := frozen.Type(frozen.Root()).QualifiedName()

	entry := frozen.Method(frozen.Root(), EntryMethod)
	if entry == nil {
		return nil, fmt.Errorf("cannot freeze %s: module has no %s method", rootName, EntryMethod)
	}
	g := entry.Graph()
	graph.Inline(g)

	p := newPropagator(frozen, g)
	p.propagateAttributes()
	graph.Optimize(g)
	p.cleanupFrozenModule()

	log.Debugf("%s.%s after freezing:\n%s", rootName, EntryMethod, graph.Format(g))
	return frozen, nil
}

// attributePropagator is the per-run pass context. The preserved table
// maps instance handles to attribute names that must not be folded:
// recording adds names proven mutable, collection later adds names still
// read, and entries are only ever added within one run.
type attributePropagator struct {
	h         *module.Hierarchy
	g         *graph.Graph
	root      rt.ModuleRef
	rootType  *types.ModuleType
	preserved map[rt.ModuleRef]map[string]bool
}

func newPropagator(h *module.Hierarchy, g *graph.Graph) *attributePropagator {
	return &attributePropagator{
		h:         h,
		g:         g,
		root:      h.Root(),
		rootType:  h.Type(h.Root()),
		preserved: make(map[rt.ModuleRef]map[string]bool),
	}
}

func (p *attributePropagator) markPreserved(ref rt.ModuleRef, name string) {
	set := p.preserved[ref]
	if set == nil {
		set = make(map[string]bool)
		p.preserved[ref] = set
	}
	set[name] = true
}

func (p *attributePropagator) isPreserved(ref rt.ModuleRef, name string) bool {
	return p.preserved[ref][name]
}

// findConstantAttr resolves the receiver chain feeding an attribute
// access to the concrete instance it denotes. Given
//
//	%b = getattr %self "B"
//	%v = getattr %b "bias"
//
// the resolver for the "bias" read walks producer links backwards,
// stacking attribute names until it reaches a value whose static type is
// the root module's type, then replays the stack descending submodule by
// submodule from the root instance. Either phase can fail, and failure
// is final for this access: the unwind fails on any producer that is
// not a getattr (tuple unpacking and friends are never resolved), and
// the descent fails when a step is missing, is not a module, or crosses
// an attribute already marked mutable, since a reassigned submodule
// slot invalidates everything reached through it. On success the final
// attribute must itself be unmarked on the resolved instance.
func (p *attributePropagator) findConstantAttr(producer graph.Node, name string) (rt.ModuleRef, bool) {
	var path []string
	n := producer
	for {
		if n.NumOutputs() == 0 {
			return rt.NoModule, false
		}
		if p.rootType.Equal(n.Output(0).Type()) {
			break
		}
		ga, ok := n.(*graph.GetAttrNode)
		if !ok {
			return rt.NoModule, false
		}
		path = append(path, ga.Attr())
		n = ga.Receiver().Node()
	}

	attrModule := p.root
	for i := len(path) - 1; i >= 0; i-- {
		step := path[i]
		if p.isPreserved(attrModule, step) {
			return rt.NoModule, false
		}
		sub, ok := p.h.Submodule(attrModule, step)
		if !ok {
			return rt.NoModule, false
		}
		attrModule = sub
	}
	if p.isPreserved(attrModule, name) {
		return rt.NoModule, false
	}
	return attrModule, true
}

// recordMutableAttrs marks the target of every setattr whose receiver
// chain resolves. A setattr whose chain does not resolve is skipped
// without marking anything: the pass cannot tell which instance it
// mutates, but the same resolver refuses to fold reads through that
// chain, so nothing unsound can come of the skip.
func (p *attributePropagator) recordMutableAttrs() {
	blocks := []*graph.Block{p.g.Block()}
	for len(blocks) > 0 {
		b := blocks[len(blocks)-1]
		blocks = blocks[:len(blocks)-1]
		for n := b.First(); n != nil; n = n.Next() {
			blocks = append(blocks, n.Blocks()...)
			sa, ok := n.(*graph.SetAttrNode)
			if !ok {
				continue
			}
			if ref, ok := p.findConstantAttr(sa.Receiver().Node(), sa.Attr()); ok {
				p.markPreserved(ref, sa.Attr())
			}
		}
	}
}

// propagateAttributes records mutable attributes, then rewrites every
// getattr of an immutable, literal-representable attribute into a
// constant.
func (p *attributePropagator) propagateAttributes() {
	p.recordMutableAttrs()
	blocks := []*graph.Block{p.g.Block()}
	for len(blocks) > 0 {
		b := blocks[len(blocks)-1]
		blocks = blocks[:len(blocks)-1]
		n := b.First()
		for n != nil {
			next := n.Next() // folding destroys the current node
			blocks = append(blocks, n.Blocks()...)
			if ga, ok := n.(*graph.GetAttrNode); ok {
				p.foldGetAttr(ga)
			}
			n = next
		}
	}
}

// foldGetAttr substitutes one attribute read, or leaves it untouched
// when the chain does not resolve, the attribute is marked mutable, or
// its value has no literal form.
func (p *attributePropagator) foldGetAttr(n *graph.GetAttrNode) {
	ref, ok := p.findConstantAttr(n.Receiver().Node(), n.Attr())
	if !ok {
		return
	}
	val, ok := p.h.Attr(ref, n.Attr())
	if !ok {
		return
	}
	if val.Kind() == rt.KindTensor {
		// Frozen state is never trained further.
		val.Tensor().SetRequiresGrad(false)
	}
	c, ok := p.tryInsertConstant(n, val)
	if !ok {
		return
	}
	c.Output(0).SetDebugName(p.h.Type(ref).QualifiedName() + "." + n.Attr())
	n.Output(0).ReplaceAllUsesWith(c.Output(0))
	n.RemoveAllInputs()
	n.Destroy()
}

// tryInsertConstant materializes val as a literal before n. Module
// handles and tuples have no literal form; submodule reads stay in the
// graph until dead-code elimination retires the unused ones.
func (p *attributePropagator) tryInsertConstant(n graph.Node, val rt.Value) (*graph.ConstantNode, bool) {
	switch val.Kind() {
	case rt.KindModule, rt.KindTuple:
		return nil, false
	}
	c := p.g.NewConstant(val, n.Output(0).Type())
	c.InsertBefore(n)
	return c, true
}

// collectReferencedAttrs returns the root attributes that must survive
// pruning: every name a remaining getattr still reads, plus the names
// the recorder marked mutable on the root, since a setattr target needs
// its slot even if nothing reads it. The check is shallow: no chain
// resolution, just "does the root store this name".
func (p *attributePropagator) collectReferencedAttrs() map[string]bool {
	blocks := []*graph.Block{p.g.Block()}
	for len(blocks) > 0 {
		b := blocks[len(blocks)-1]
		blocks = blocks[:len(blocks)-1]
		for n := b.First(); n != nil; n = n.Next() {
			blocks = append(blocks, n.Blocks()...)
			if ga, ok := n.(*graph.GetAttrNode); ok {
				if p.h.HasAttr(p.root, ga.Attr()) {
					p.markPreserved(p.root, ga.Attr())
				}
			}
		}
	}
	keep := p.preserved[p.root]
	if keep == nil {
		keep = make(map[string]bool)
	}
	return keep
}

// cleanupFrozenModule deletes every root attribute absent from the
// survive set, removing storage and type descriptor both. Pruning stays
// at the root level: submodule-internal attributes are never pruned
// here, even when every read of them was folded away.
func (p *attributePropagator) cleanupFrozenModule() {
	keep := p.collectReferencedAttrs()
	var remove []string
	for _, a := range p.rootType.Attributes() {
		if !keep[a.Name] {
			remove = append(remove, a.Name)
		}
	}
	for _, name := range remove {
		p.h.RemoveAttr(p.root, name)
		p.rootType.RemoveAttribute(name)
		log.Debugf("pruned %s.%s", p.rootType.QualifiedName(), name)
	}
}
