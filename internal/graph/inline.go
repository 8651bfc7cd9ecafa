package graph

// Inline expands every resolved method call in g into the flat
// instruction stream by splicing a copy of the callee body at the call
// site: callee parameters map to the call's receiver and arguments, and
// the call's outputs are rewired to the copied body's results. Spliced
// instructions are revisited, so calls inside callee bodies dissolve as
// well. Callee graphs must not form call cycles; the builder rejects
// recursive methods for exactly this reason. Calls whose callee was
// never resolved are left in place.
func Inline(g *Graph) {
	blocks := []*Block{g.Block()}
	for len(blocks) > 0 {
		b := blocks[len(blocks)-1]
		blocks = blocks[:len(blocks)-1]
		n := b.First()
		for n != nil {
			next := n.Next()
			if call, ok := n.(*CallMethodNode); ok && call.Callee() != nil {
				if first := expandCall(call); first != nil {
					next = first
				}
			} else {
				blocks = append(blocks, n.Blocks()...)
			}
			n = next
		}
	}
}

// expandCall splices a copy of the callee in front of call and destroys
// the call node. It returns the first spliced instruction so the caller
// can continue its scan from there, or nil if the callee body was empty.
func expandCall(call *CallMethodNode) Node {
	g := call.Graph()
	callee := call.Callee()

	vmap := make(map[*Value]*Value)
	params := callee.Inputs()
	args := call.Inputs() // receiver first, aligned with the callee's self parameter
	for i, p := range params {
		if i < len(args) {
			vmap[p] = args[i]
		}
	}

	var first Node
	for n := callee.Block().First(); n != nil; n = n.Next() {
		nn := copyNode(g, n, vmap, CopyOpts{})
		nn.InsertBefore(call)
		if first == nil {
			first = nn
		}
	}

	results := callee.Block().Results()
	for i, out := range call.Outputs() {
		if i < len(results) {
			out.ReplaceAllUsesWith(mappedValue(vmap, results[i]))
		}
	}
	call.Destroy()
	return first
}
