package graph

import (
	"fmt"
	"strings"

	"frost/internal/rt"
	"frost/internal/types"
)

// Kind identifies an instruction kind
type Kind string

const (
	KindParam    Kind = "param"
	KindReturn   Kind = "return"
	KindConstant Kind = "const"
	KindGetAttr  Kind = "getattr"
	KindSetAttr  Kind = "setattr"
	KindBinary   Kind = "binary"
	KindTuple    Kind = "tuple"
	KindUnpack   Kind = "unpack"
	KindCall     Kind = "call"
	KindIf       Kind = "if"
)

// Node is the interface implemented by all instructions. Passes mutate
// graphs exclusively through these methods, so the def-use bookkeeping
// can never drift out of sync with the operand lists.
type Node interface {
	Kind() Kind
	Graph() *Graph
	Block() *Block

	Inputs() []*Value
	Input(i int) *Value
	NumInputs() int
	Outputs() []*Value
	Output(i int) *Value
	NumOutputs() int
	Blocks() []*Block

	Prev() Node
	Next() Node

	// ReplaceInput swaps operand i for w, updating use lists on both sides.
	ReplaceInput(i int, w *Value)
	// RemoveAllInputs detaches the node from every operand it consumes.
	RemoveAllInputs()
	// InsertBefore places a detached node immediately before target,
	// which must be part of a block.
	InsertBefore(target Node)
	// Destroy removes the node from its block, detaches its operands and
	// recursively destroys the contents of its nested blocks. Uses of the
	// node's outputs must have been rewired first.
	Destroy()
	IsDestroyed() bool

	String() string

	base() *node
}

// node carries the state shared by every instruction kind
type node struct {
	kind      Kind
	graph     *Graph
	block     *Block
	self      Node
	inputs    []*Value
	outputs   []*Value
	blocks    []*Block
	prev      Node
	next      Node
	destroyed bool
}

func (n *node) base() *node    { return n }
func (n *node) Kind() Kind     { return n.kind }
func (n *node) Graph() *Graph  { return n.graph }
func (n *node) Block() *Block  { return n.block }
func (n *node) Prev() Node     { return n.prev }
func (n *node) Next() Node     { return n.next }
func (n *node) NumInputs() int { return len(n.inputs) }

func (n *node) Inputs() []*Value {
	out := make([]*Value, len(n.inputs))
	copy(out, n.inputs)
	return out
}

func (n *node) Input(i int) *Value { return n.inputs[i] }

func (n *node) Outputs() []*Value {
	out := make([]*Value, len(n.outputs))
	copy(out, n.outputs)
	return out
}

func (n *node) Output(i int) *Value { return n.outputs[i] }
func (n *node) NumOutputs() int     { return len(n.outputs) }

func (n *node) Blocks() []*Block {
	out := make([]*Block, len(n.blocks))
	copy(out, n.blocks)
	return out
}

func (n *node) IsDestroyed() bool { return n.destroyed }

func (n *node) ReplaceInput(i int, w *Value) {
	old := n.inputs[i]
	if old == w {
		return
	}
	old.removeUse(n.self, i)
	n.inputs[i] = w
	w.addUse(n.self, i)
}

func (n *node) RemoveAllInputs() {
	for i, in := range n.inputs {
		in.removeUse(n.self, i)
	}
	n.inputs = nil
}

func (n *node) InsertBefore(target Node) {
	tb := target.base()
	nb := n.self.base()
	nb.block = tb.block
	nb.next = target
	nb.prev = tb.prev
	if tb.prev != nil {
		tb.prev.base().next = n.self
	} else {
		tb.block.first = n.self
	}
	tb.prev = n.self
}

func (n *node) Destroy() {
	if n.destroyed {
		return
	}
	for _, b := range n.blocks {
		b.destroyContents()
	}
	n.self.RemoveAllInputs()
	n.unlink()
	n.destroyed = true
}

// unlink removes the node from its block's instruction list.
func (n *node) unlink() {
	if n.block == nil {
		return
	}
	if n.prev != nil {
		n.prev.base().next = n.next
	} else if n.block.first == n.self {
		n.block.first = n.next
	}
	if n.next != nil {
		n.next.base().prev = n.prev
	} else if n.block.last == n.self {
		n.block.last = n.prev
	}
	n.prev, n.next, n.block = nil, nil, nil
}

// addInput appends an operand with use bookkeeping.
func (n *node) addInput(v *Value) {
	v.addUse(n.self, len(n.inputs))
	n.inputs = append(n.inputs, v)
}

// addOutput creates a fresh value produced by this node.
func (n *node) addOutput(typ types.Type) *Value {
	v := &Value{node: n.self, index: len(n.outputs), typ: typ}
	v.name = n.graph.claimName(n.graph.nextName())
	n.outputs = append(n.outputs, v)
	return v
}

func (n *node) String() string { return renderNode(n.self) }

// ParamNode produces a block's parameters. It lives outside the
// instruction list; the graph's inputs are the top block's parameters.
type ParamNode struct{ node }

// ReturnNode consumes a block's results. It lives outside the
// instruction list; in source syntax it is "return" for the top block
// and "yield" for nested blocks.
type ReturnNode struct{ node }

// ConstantNode materializes a runtime value as a graph literal
type ConstantNode struct {
	node
	value rt.Value
}

// Value returns the literal.
func (n *ConstantNode) Value() rt.Value { return n.value }

// GetAttrNode reads a named attribute from a receiver
type GetAttrNode struct {
	node
	attr string
}

// Attr returns the attribute name being read.
func (n *GetAttrNode) Attr() string { return n.attr }

// Receiver returns the value the attribute is read from.
func (n *GetAttrNode) Receiver() *Value { return n.Input(0) }

// SetAttrNode writes a named attribute on a receiver in place
type SetAttrNode struct {
	node
	attr string
}

// Attr returns the attribute name being written.
func (n *SetAttrNode) Attr() string { return n.attr }

// Receiver returns the value the attribute is written on.
func (n *SetAttrNode) Receiver() *Value { return n.Input(0) }

// BinaryNode applies a binary operator to two operands
type BinaryNode struct {
	node
	op rt.Op
}

// Op returns the operator.
func (n *BinaryNode) Op() rt.Op { return n.op }

// TupleNode packs its operands into a tuple value
type TupleNode struct{ node }

// UnpackNode decomposes a tuple into one output per element
type UnpackNode struct{ node }

// CallMethodNode invokes a named method on a receiver. The callee graph
// is resolved at build time and carried on the node so inlining needs no
// context beyond the graph itself.
type CallMethodNode struct {
	node
	method string
	callee *Graph
}

// Method returns the invoked method name.
func (n *CallMethodNode) Method() string { return n.method }

// Callee returns the invoked method's graph, or nil when resolution
// failed during building.
func (n *CallMethodNode) Callee() *Graph { return n.callee }

// IfNode branches on a boolean input. Block 0 is the then-branch, block
// 1 the else-branch; when the node has outputs, both blocks yield one
// result per output.
type IfNode struct{ node }

// Then returns the branch taken on true.
func (n *IfNode) Then() *Block { return n.blocks[0] }

// Else returns the branch taken on false.
func (n *IfNode) Else() *Block { return n.blocks[1] }

// AddOutput declares one more branch result. The builder uses this after
// both branch bodies exist, once the yielded types are known.
func (n *IfNode) AddOutput(typ types.Type) *Value { return n.addOutput(typ) }

// NewConstant creates a detached constant node.
func (g *Graph) NewConstant(v rt.Value, typ types.Type) *ConstantNode {
	n := &ConstantNode{value: v}
	g.initNode(&n.node, n, KindConstant)
	n.addOutput(typ)
	return n
}

// NewGetAttr creates a detached attribute read.
func (g *Graph) NewGetAttr(recv *Value, attr string, typ types.Type) *GetAttrNode {
	n := &GetAttrNode{attr: attr}
	g.initNode(&n.node, n, KindGetAttr)
	n.addInput(recv)
	n.addOutput(typ)
	return n
}

// NewSetAttr creates a detached attribute write.
func (g *Graph) NewSetAttr(recv *Value, attr string, val *Value) *SetAttrNode {
	n := &SetAttrNode{attr: attr}
	g.initNode(&n.node, n, KindSetAttr)
	n.addInput(recv)
	n.addInput(val)
	return n
}

// NewBinary creates a detached binary operation.
func (g *Graph) NewBinary(op rt.Op, lhs, rhs *Value, typ types.Type) *BinaryNode {
	n := &BinaryNode{op: op}
	g.initNode(&n.node, n, KindBinary)
	n.addInput(lhs)
	n.addInput(rhs)
	n.addOutput(typ)
	return n
}

// NewTuple creates a detached tuple construction.
func (g *Graph) NewTuple(elems []*Value, typ *types.TupleType) *TupleNode {
	n := &TupleNode{}
	g.initNode(&n.node, n, KindTuple)
	for _, e := range elems {
		n.addInput(e)
	}
	n.addOutput(typ)
	return n
}

// NewUnpack creates a detached tuple decomposition with one output per
// element type.
func (g *Graph) NewUnpack(tuple *Value, elemTypes []types.Type) *UnpackNode {
	n := &UnpackNode{}
	g.initNode(&n.node, n, KindUnpack)
	n.addInput(tuple)
	for _, t := range elemTypes {
		n.addOutput(t)
	}
	return n
}

// NewCallMethod creates a detached method call. callee may be nil when
// the builder could not resolve the method.
func (g *Graph) NewCallMethod(method string, callee *Graph, recv *Value, args []*Value, outTypes []types.Type) *CallMethodNode {
	n := &CallMethodNode{method: method, callee: callee}
	g.initNode(&n.node, n, KindCall)
	n.addInput(recv)
	for _, a := range args {
		n.addInput(a)
	}
	for _, t := range outTypes {
		n.addOutput(t)
	}
	return n
}

// NewIf creates a detached branch with two empty blocks and one output
// per result type.
func (g *Graph) NewIf(cond *Value, outTypes []types.Type) *IfNode {
	n := &IfNode{}
	g.initNode(&n.node, n, KindIf)
	n.addInput(cond)
	n.blocks = append(n.blocks, g.newBlock(n), g.newBlock(n))
	for _, t := range outTypes {
		n.addOutput(t)
	}
	return n
}

// renderNode produces the single-line source form of a node. If nodes
// render condensed; the printer expands them properly.
func renderNode(n Node) string {
	var sb strings.Builder
	if n.NumOutputs() > 0 {
		names := make([]string, n.NumOutputs())
		for i, o := range n.Outputs() {
			names[i] = "%" + o.DebugName()
		}
		sb.WriteString(strings.Join(names, ", "))
		sb.WriteString(" = ")
	}
	switch m := n.(type) {
	case *ConstantNode:
		fmt.Fprintf(&sb, "const %s", m.Value())
	case *GetAttrNode:
		fmt.Fprintf(&sb, "getattr %%%s %q", m.Receiver().DebugName(), m.Attr())
	case *SetAttrNode:
		fmt.Fprintf(&sb, "setattr %%%s %q %%%s", m.Receiver().DebugName(), m.Attr(), m.Input(1).DebugName())
	case *BinaryNode:
		fmt.Fprintf(&sb, "%s %%%s %%%s", m.Op(), m.Input(0).DebugName(), m.Input(1).DebugName())
	case *TupleNode:
		sb.WriteString("tuple ")
		parts := make([]string, m.NumInputs())
		for i, in := range m.Inputs() {
			parts[i] = "%" + in.DebugName()
		}
		sb.WriteString(strings.Join(parts, ", "))
	case *UnpackNode:
		fmt.Fprintf(&sb, "unpack %%%s", m.Input(0).DebugName())
	case *CallMethodNode:
		fmt.Fprintf(&sb, "call %%%s %q (", m.Input(0).DebugName(), m.Method())
		args := m.Inputs()[1:]
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = "%" + a.DebugName()
		}
		sb.WriteString(strings.Join(parts, ", "))
		sb.WriteString(")")
	case *IfNode:
		fmt.Fprintf(&sb, "if %%%s { ... }", m.Input(0).DebugName())
	case *ParamNode:
		sb.WriteString("param")
	case *ReturnNode:
		sb.WriteString("return")
		for i, in := range m.Inputs() {
			if i > 0 {
				sb.WriteString(",")
			}
			fmt.Fprintf(&sb, " %%%s", in.DebugName())
		}
	default:
		sb.WriteString(string(n.Kind()))
	}
	return sb.String()
}
