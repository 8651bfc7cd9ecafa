package module

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frost/internal/graph"
	"frost/internal/rt"
	"frost/internal/types"
)

// buildScaled assembles the hierarchy for a module M holding a tensor
// weight and a submodule Sub, where M.forward calls Sub.get.
func buildScaled(t *testing.T) *Hierarchy {
	t.Helper()
	h := NewHierarchy()
	rootT := types.NewModuleType("M")
	subT := types.NewModuleType("M.Sub")
	root := h.NewModule(rootT)
	sub := h.NewModule(subT)

	w := rt.NewTensor([]float64{1, 2})
	w.SetRequiresGrad(true)
	require.True(t, h.DefineAttr(root, "w", &types.TensorType{}, rt.TensorValue(w)))
	require.True(t, h.DefineAttr(root, "Sub", subT, rt.Module(sub)))
	require.True(t, h.DefineAttr(sub, "k", &types.IntType{}, rt.Int(4)))

	gg := graph.New()
	gSelf := gg.AddInput("self", subT)
	ga := gg.NewGetAttr(gSelf, "k", &types.IntType{})
	ga.Output(0).SetDebugName("k")
	gg.Block().Append(ga)
	gg.SetResults(ga.Output(0))
	require.True(t, h.DefineMethod(sub, NewMethod("get", gg)))

	fg := graph.New()
	fSelf := fg.AddInput("self", rootT)
	gs := fg.NewGetAttr(fSelf, "Sub", subT)
	gs.Output(0).SetDebugName("s")
	fg.Block().Append(gs)
	call := fg.NewCallMethod("get", gg, gs.Output(0), nil, []types.Type{&types.IntType{}})
	call.Output(0).SetDebugName("r")
	fg.Block().Append(call)
	fg.SetResults(call.Output(0))
	require.True(t, h.DefineMethod(root, NewMethod("forward", fg)))

	return h
}

func TestCloneIsIndependent(t *testing.T) {
	orig := buildScaled(t)
	clone := orig.Clone()

	// Handles keep their numeric identity.
	assert.Equal(t, orig.Root(), clone.Root())
	assert.Equal(t, orig.NumModules(), clone.NumModules())

	// Attribute storage is fresh and values are deep copies.
	cw, ok := clone.Attr(clone.Root(), "w")
	require.True(t, ok)
	cw.Tensor().Elems()[0] = 99
	ow, _ := orig.Attr(orig.Root(), "w")
	assert.Equal(t, 1.0, ow.Tensor().At(0))
	assert.True(t, ow.Tensor().RequiresGrad())

	clone.SetAttr(clone.Root(), "w", rt.Int(0))
	ow, _ = orig.Attr(orig.Root(), "w")
	assert.Equal(t, rt.KindTensor, ow.Kind())

	// Type descriptors are fresh too: pruning one side leaves the other.
	assert.NotSame(t, orig.Type(orig.Root()), clone.Type(clone.Root()))
	assert.True(t, clone.Type(clone.Root()).RemoveAttribute("w"))
	assert.True(t, orig.Type(orig.Root()).HasAttribute("w"))
}

func TestCloneRemapsGraphs(t *testing.T) {
	orig := buildScaled(t)
	clone := orig.Clone()

	of := orig.Method(orig.Root(), "forward").Graph()
	cf := clone.Method(clone.Root(), "forward").Graph()
	require.NotNil(t, cf)
	assert.NotSame(t, of, cf)

	// Graph inputs carry the clone's module type, not the original's.
	assert.Same(t, clone.Type(clone.Root()), cf.Inputs()[0].Type())
	assert.NotSame(t, orig.Type(orig.Root()), cf.Inputs()[0].Type())

	// Call nodes point at the clone-side callee graph.
	var call *graph.CallMethodNode
	for n := cf.Block().First(); n != nil; n = n.Next() {
		if c, ok := n.(*graph.CallMethodNode); ok {
			call = c
		}
	}
	require.NotNil(t, call)
	sub := rt.ModuleRef(2)
	assert.Same(t, clone.Method(sub, "get").Graph(), call.Callee())
	assert.NotSame(t, orig.Method(sub, "get").Graph(), call.Callee())

	// The rendered body is unchanged.
	assert.Equal(t, graph.Format(of), graph.Format(cf))
}

func TestCloneKeepsTypeSharing(t *testing.T) {
	h := NewHierarchy()
	shared := types.NewModuleType("Twin")
	a := h.NewModule(shared)
	b := h.NewModule(shared)
	require.True(t, h.DefineAttr(a, "n", &types.IntType{}, rt.Int(1)))

	clone := h.Clone()
	assert.Same(t, clone.Type(a), clone.Type(b), "instances sharing a type keep sharing it")
	assert.NotSame(t, shared, clone.Type(a))
	assert.True(t, clone.Type(b).HasAttribute("n"))
}
