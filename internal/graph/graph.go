package graph

import (
	"fmt"
	"strconv"

	"frost/internal/types"
)

// The instruction graph: a top-level block of instructions, each of which
// may own nested blocks. Instructions live in doubly-linked lists so a
// traversal can capture its next node before destroying the current one.
// Every block owns a Param node producing its parameters and a Return
// node consuming its results; neither sits in the instruction list.

// Graph is one method body
type Graph struct {
	top    *Block
	names  map[string]bool
	nextID int
}

// Block is an ordered instruction sequence
type Block struct {
	graph *Graph
	owner Node // the node holding this nested block; nil for the top block
	param *ParamNode
	ret   *ReturnNode
	first Node
	last  Node
}

// New creates an empty graph with no inputs.
func New() *Graph {
	g := &Graph{names: make(map[string]bool)}
	g.top = g.newBlock(nil)
	return g
}

// Block returns the top-level block.
func (g *Graph) Block() *Block { return g.top }

// AddInput declares a graph input with the given debug name.
func (g *Graph) AddInput(name string, typ types.Type) *Value {
	v := g.top.AddParam(typ)
	v.SetDebugName(name)
	return v
}

// Inputs returns the graph's input values.
func (g *Graph) Inputs() []*Value { return g.top.Params() }

// Results returns the values the graph returns.
func (g *Graph) Results() []*Value { return g.top.Results() }

// SetResults declares the values the graph returns.
func (g *Graph) SetResults(vals ...*Value) { g.top.SetResults(vals...) }

func (g *Graph) newBlock(owner Node) *Block {
	b := &Block{graph: g, owner: owner}
	p := &ParamNode{}
	g.initNode(&p.node, p, KindParam)
	p.block = b
	r := &ReturnNode{}
	g.initNode(&r.node, r, KindReturn)
	r.block = b
	b.param = p
	b.ret = r
	return b
}

// initNode wires the shared node state, including the self reference the
// linked list and use bookkeeping need to hand out the concrete type.
func (g *Graph) initNode(n *node, self Node, kind Kind) {
	n.kind = kind
	n.graph = g
	n.self = self
}

func (g *Graph) nextName() string {
	name := strconv.Itoa(g.nextID)
	g.nextID++
	return name
}

// claimName reserves name, appending a numeric suffix if it is taken.
func (g *Graph) claimName(name string) string {
	if name == "" {
		name = g.nextName()
	}
	if !g.names[name] {
		g.names[name] = true
		return name
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s.%d", name, i)
		if !g.names[candidate] {
			g.names[candidate] = true
			return candidate
		}
	}
}

// Graph returns the owning graph.
func (b *Block) Graph() *Graph { return b.graph }

// Owner returns the node this block is nested under, nil for the top
// block.
func (b *Block) Owner() Node { return b.owner }

// First returns the first instruction, nil when the block is empty.
func (b *Block) First() Node { return b.first }

// Last returns the last instruction, nil when the block is empty.
func (b *Block) Last() Node { return b.last }

// Param returns the node producing the block's parameters.
func (b *Block) Param() *ParamNode { return b.param }

// Return returns the node consuming the block's results.
func (b *Block) Return() *ReturnNode { return b.ret }

// AddParam appends a block parameter.
func (b *Block) AddParam(typ types.Type) *Value {
	return b.param.addOutput(typ)
}

// Params returns the block's parameter values.
func (b *Block) Params() []*Value { return b.param.Outputs() }

// Results returns the values the block yields.
func (b *Block) Results() []*Value { return b.ret.Inputs() }

// SetResults replaces the block's yielded values.
func (b *Block) SetResults(vals ...*Value) {
	b.ret.RemoveAllInputs()
	for _, v := range vals {
		b.ret.addInput(v)
	}
}

// Append links a detached node at the end of the block.
func (b *Block) Append(n Node) {
	nb := n.base()
	nb.block = b
	nb.prev = b.last
	nb.next = nil
	if b.last != nil {
		b.last.base().next = n
	} else {
		b.first = n
	}
	b.last = n
}

// Prepend moves a node to the head of the block, unlinking it from its
// current position first.
func (b *Block) Prepend(n Node) {
	nb := n.base()
	nb.unlink()
	nb.block = b
	nb.prev = nil
	nb.next = b.first
	if b.first != nil {
		b.first.base().prev = n
	} else {
		b.last = n
	}
	b.first = n
}

// Empty reports whether the block holds no instructions.
func (b *Block) Empty() bool { return b.first == nil }

// destroyContents tears down every instruction in the block, detaching
// uses of values defined outside it.
func (b *Block) destroyContents() {
	b.ret.RemoveAllInputs()
	n := b.first
	for n != nil {
		next := n.Next()
		n.Destroy()
		n = next
	}
}
