package graph

import (
	"fmt"

	"frost/internal/types"
)

// CopyOpts controls remapping while copying graphs between hierarchies.
// Types substitutes module types on copied values (hierarchy cloning
// gives every clone fresh types); Callees substitutes the method graphs
// carried by call nodes.
type CopyOpts struct {
	Types   map[types.Type]types.Type
	Callees map[*Graph]*Graph
}

func (o CopyOpts) remapType(t types.Type) types.Type {
	if t == nil {
		return nil
	}
	if o.Types != nil {
		if nt, ok := o.Types[t]; ok {
			return nt
		}
	}
	if tt, ok := t.(*types.TupleType); ok {
		changed := false
		elems := make([]types.Type, len(tt.Elems))
		for i, e := range tt.Elems {
			elems[i] = o.remapType(e)
			if elems[i] != e {
				changed = true
			}
		}
		if changed {
			return types.NewTupleType(elems...)
		}
	}
	return t
}

// CopyInto reproduces src inside the empty graph dst, remapping types
// and callees per opts. Destination values keep the source debug names.
func CopyInto(dst, src *Graph, opts CopyOpts) {
	vmap := make(map[*Value]*Value)
	for _, in := range src.Inputs() {
		nv := dst.Block().AddParam(opts.remapType(in.Type()))
		nv.SetDebugName(in.DebugName())
		vmap[in] = nv
	}
	copyBlockContents(dst.Block(), src.Block(), vmap, opts)
}

// copyBlockContents appends copies of src's instructions to dst and
// mirrors its results. vmap accumulates source-to-destination value
// mappings; values absent from it (defined outside src) pass through
// unchanged, which is what call-site inlining relies on.
func copyBlockContents(dst, src *Block, vmap map[*Value]*Value, opts CopyOpts) {
	g := dst.Graph()
	for n := src.First(); n != nil; n = n.Next() {
		nn := copyNode(g, n, vmap, opts)
		dst.Append(nn)
	}
	results := make([]*Value, 0, len(src.Results()))
	for _, r := range src.Results() {
		results = append(results, mappedValue(vmap, r))
	}
	dst.SetResults(results...)
}

func mappedValue(vmap map[*Value]*Value, v *Value) *Value {
	if m, ok := vmap[v]; ok {
		return m
	}
	return v
}

// copyNode clones a single node into g with operands resolved through
// vmap, registering the clone's outputs in vmap.
func copyNode(g *Graph, src Node, vmap map[*Value]*Value, opts CopyOpts) Node {
	in := func(i int) *Value { return mappedValue(vmap, src.Input(i)) }
	ins := func() []*Value {
		out := make([]*Value, src.NumInputs())
		for i := range out {
			out[i] = in(i)
		}
		return out
	}
	outTypes := func() []types.Type {
		out := make([]types.Type, src.NumOutputs())
		for i, o := range src.Outputs() {
			out[i] = opts.remapType(o.Type())
		}
		return out
	}

	var nn Node
	switch m := src.(type) {
	case *ConstantNode:
		nn = g.NewConstant(m.Value().Clone(), opts.remapType(m.Output(0).Type()))
	case *GetAttrNode:
		nn = g.NewGetAttr(in(0), m.Attr(), opts.remapType(m.Output(0).Type()))
	case *SetAttrNode:
		nn = g.NewSetAttr(in(0), m.Attr(), in(1))
	case *BinaryNode:
		nn = g.NewBinary(m.Op(), in(0), in(1), opts.remapType(m.Output(0).Type()))
	case *TupleNode:
		tt, ok := opts.remapType(m.Output(0).Type()).(*types.TupleType)
		if !ok {
			panic(fmt.Sprintf("tuple node with non-tuple output type %s", m.Output(0).Type()))
		}
		nn = g.NewTuple(ins(), tt)
	case *UnpackNode:
		nn = g.NewUnpack(in(0), outTypes())
	case *CallMethodNode:
		callee := m.Callee()
		if opts.Callees != nil {
			if nc, ok := opts.Callees[callee]; ok {
				callee = nc
			}
		}
		args := ins()
		nn = g.NewCallMethod(m.Method(), callee, args[0], args[1:], outTypes())
	case *IfNode:
		ifn := g.NewIf(in(0), outTypes())
		for bi, sb := range m.Blocks() {
			db := ifn.Blocks()[bi]
			for _, p := range sb.Params() {
				np := db.AddParam(opts.remapType(p.Type()))
				np.SetDebugName(p.DebugName())
				vmap[p] = np
			}
			copyBlockContents(db, sb, vmap, opts)
		}
		nn = ifn
	default:
		panic(fmt.Sprintf("cannot copy node of kind %s", src.Kind()))
	}

	for i, o := range src.Outputs() {
		no := nn.Output(i)
		no.SetDebugName(o.DebugName())
		vmap[o] = no
	}
	return nn
}
