package freeze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frost/grammar"
	"frost/internal/build"
	"frost/internal/errors"
	"frost/internal/graph"
	"frost/internal/interp"
	"frost/internal/module"
	"frost/internal/rt"
)

func mustBuild(t *testing.T, src string) *module.Hierarchy {
	t.Helper()
	file, err := grammar.ParseSource("test.fst", src)
	require.NoError(t, err)
	h, diags := build.Build(file)
	for _, d := range diags {
		require.NotEqual(t, errors.Error, d.Level, "unexpected diagnostic: %s", d.Message)
	}
	require.NotNil(t, h)
	return h
}

func entryBody(h *module.Hierarchy) string {
	return graph.Format(h.Method(h.Root(), EntryMethod).Graph())
}

// assertNoDanglingNodes walks every reachable block and checks that no
// destroyed node is still linked and no operand comes from one.
func assertNoDanglingNodes(t *testing.T, g *graph.Graph) {
	t.Helper()
	blocks := []*graph.Block{g.Block()}
	for len(blocks) > 0 {
		b := blocks[len(blocks)-1]
		blocks = blocks[:len(blocks)-1]
		for n := b.First(); n != nil; n = n.Next() {
			require.False(t, n.IsDestroyed(), "destroyed node still linked: %s", n)
			for _, in := range n.Inputs() {
				require.False(t, in.Node().IsDestroyed(), "operand produced by a destroyed node: %s", n)
			}
			blocks = append(blocks, n.Blocks()...)
		}
		for _, r := range b.Results() {
			require.False(t, r.Node().IsDestroyed(), "result produced by a destroyed node")
		}
	}
}

const scaledSrc = `
module M {
    attr scale: int = 2

    module B {
        attr bias: int = 5
    }

    method forward() {
        %s = getattr %self "scale"
        %b = getattr %self "B"
        %v = getattr %b "bias"
        %r = add %s %v
        return %r
    }
}
`

func TestFreezeFoldsAndPrunes(t *testing.T) {
	h := mustBuild(t, scaledSrc)
	frozen, err := Freeze(h)
	require.NoError(t, err)

	body := entryBody(frozen)
	assert.NotContains(t, body, "getattr")
	assert.Contains(t, body, "const 7")

	rootType := frozen.Type(frozen.Root())
	assert.False(t, rootType.HasAttribute("scale"))
	assert.False(t, rootType.HasAttribute("B"))
	assert.False(t, frozen.HasAttr(frozen.Root(), "scale"))

	want, err := interp.Run(h, "forward", nil)
	require.NoError(t, err)
	got, err := interp.Run(frozen, "forward", nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, rt.Equal(want[0], got[0]))
	assert.Equal(t, int64(7), got[0].Int())
}

func TestFreezeLeavesInputUntouched(t *testing.T) {
	h := mustBuild(t, scaledSrc)
	before := module.Format(h)
	_, err := Freeze(h)
	require.NoError(t, err)
	assert.Equal(t, before, module.Format(h))
}

const mutatedSrc = `
module M {
    attr scale: int = 2

    module B {
        attr bias: int = 5
    }

    method forward() {
        %s = getattr %self "scale"
        %b = getattr %self "B"
        %v = getattr %b "bias"
        %n = add %v %s
        setattr %b "bias" %n
        %r = getattr %b "bias"
        return %r
    }
}
`

func TestFreezeRetainsMutatedAttribute(t *testing.T) {
	h := mustBuild(t, mutatedSrc)
	frozen, err := Freeze(h)
	require.NoError(t, err)

	body := entryBody(frozen)
	assert.Contains(t, body, "setattr")
	assert.Contains(t, body, `"bias"`, "reads of a mutated attribute stay live")

	rootType := frozen.Type(frozen.Root())
	assert.True(t, rootType.HasAttribute("B"), "a mutated submodule attribute keeps its parent alive")
	assert.False(t, rootType.HasAttribute("scale"), "untouched attributes still fold")
	bref, ok := frozen.Submodule(frozen.Root(), "B")
	require.True(t, ok)
	assert.True(t, frozen.HasAttr(bref, "bias"))

	// The write is still executed: successive runs see the updated bias.
	first, err := interp.Run(frozen, "forward", nil)
	require.NoError(t, err)
	second, err := interp.Run(frozen, "forward", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(7), first[0].Int())
	assert.Equal(t, int64(9), second[0].Int())
}

func TestFreezeBailsOutOnUnsupportedChains(t *testing.T) {
	h := mustBuild(t, `
module M {
    module B {
        attr bias: int = 5
    }

    method forward() {
        %b = getattr %self "B"
        %t = tuple %b
        %u = unpack %t
        %v = getattr %u "bias"
        return %v
    }
}
`)
	frozen, err := Freeze(h)
	require.NoError(t, err)

	body := entryBody(frozen)
	assert.Contains(t, body, `getattr %u "bias"`, "a read through a decomposition chain stays live")
	assert.True(t, frozen.Type(frozen.Root()).HasAttribute("B"))
	bref, ok := frozen.Submodule(frozen.Root(), "B")
	require.True(t, ok)
	bv, ok := frozen.Attr(bref, "bias")
	require.True(t, ok)
	assert.Equal(t, int64(5), bv.Int())

	got, err := interp.Run(frozen, "forward", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got[0].Int())
}

func TestFreezePoisonedSubmoduleChain(t *testing.T) {
	h := mustBuild(t, `
module M {
    module B {
        attr bias: int = 5
    }

    method forward() {
        %b = getattr %self "B"
        setattr %self "B" %b
        %v = getattr %b "bias"
        return %v
    }
}
`)
	frozen, err := Freeze(h)
	require.NoError(t, err)

	// Reassigning the submodule slot poisons every chain through it.
	body := entryBody(frozen)
	assert.Contains(t, body, `"bias"`)
	assert.Contains(t, body, "setattr")
	assert.True(t, frozen.Type(frozen.Root()).HasAttribute("B"))
}

const counterSrc = `
module Counter {
    attr count: int = 0
    attr limit: int = 10
    attr step: int = 2

    method forward() {
        %c = getattr %self "count"
        %s = getattr %self "step"
        %n = add %c %s
        setattr %self "count" %n
        %lim = getattr %self "limit"
        %over = gt %n %lim
        %r = if %over {
            yield %lim
        } else {
            %v = getattr %self "count"
            yield %v
        }
        return %r
    }
}
`

func TestFreezeKeepsRootMutableState(t *testing.T) {
	h := mustBuild(t, counterSrc)
	frozen, err := Freeze(h)
	require.NoError(t, err)

	rootType := frozen.Type(frozen.Root())
	assert.True(t, rootType.HasAttribute("count"), "the reassigned attribute survives freezing")
	assert.False(t, rootType.HasAttribute("step"))
	assert.False(t, rootType.HasAttribute("limit"))
	assertNoDanglingNodes(t, frozen.Method(frozen.Root(), EntryMethod).Graph())

	first, err := interp.Run(frozen, "forward", nil)
	require.NoError(t, err)
	second, err := interp.Run(frozen, "forward", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), first[0].Int())
	assert.Equal(t, int64(4), second[0].Int())

	// The input hierarchy counts independently of its frozen clone.
	w1, err := interp.Run(h, "forward", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), w1[0].Int())
}

func TestFreezeIdempotent(t *testing.T) {
	h := mustBuild(t, counterSrc)
	once, err := Freeze(h)
	require.NoError(t, err)
	twice, err := Freeze(once)
	require.NoError(t, err)
	assert.Equal(t, module.Format(once), module.Format(twice))
}

func TestFreezeClearsGradOnFoldedTensors(t *testing.T) {
	h := mustBuild(t, `
module Scaler {
    attr weight: tensor = tensor([2.0, -1.0], grad=true)

    method forward(%x: tensor) {
        %w = getattr %self "weight"
        %y = mul %x %w
        return %y
    }
}
`)
	frozen, err := Freeze(h)
	require.NoError(t, err)

	body := entryBody(frozen)
	assert.Contains(t, body, "tensor([2, -1])", "folded tensor constants drop the gradient flag")
	assert.NotContains(t, body, "grad=true")
	assert.False(t, frozen.Type(frozen.Root()).HasAttribute("weight"))

	// The unfrozen module keeps tracking gradients.
	ow, ok := h.Attr(h.Root(), "weight")
	require.True(t, ok)
	assert.True(t, ow.Tensor().RequiresGrad())

	arg := []rt.Value{rt.TensorValue(rt.NewTensor([]float64{3, 3}))}
	want, err := interp.Run(h, "forward", arg)
	require.NoError(t, err)
	got, err := interp.Run(frozen, "forward", arg)
	require.NoError(t, err)
	assert.True(t, rt.Equal(want[0], got[0]))
}

const affineSrc = `
module Affine {
    attr weight: tensor = tensor([2.0, -1.0, 0.5], grad=true)

    module Norm {
        attr scale: float = 2.0

        method apply(%t: tensor) {
            %s = getattr %self "scale"
            %y = mul %t %s
            return %y
        }
    }

    method forward(%x: tensor) {
        %w = getattr %self "weight"
        %p = mul %x %w
        %n = getattr %self "Norm"
        %c = call %n "apply" (%p)
        return %c
    }
}
`

func TestFreezeInlinesMethodCalls(t *testing.T) {
	h := mustBuild(t, affineSrc)
	frozen, err := Freeze(h)
	require.NoError(t, err)

	body := entryBody(frozen)
	assert.NotContains(t, body, "call", "calls dissolve during freezing")
	assert.NotContains(t, body, "getattr")
	assertNoDanglingNodes(t, frozen.Method(frozen.Root(), EntryMethod).Graph())

	rootType := frozen.Type(frozen.Root())
	for _, name := range []string{"weight", "Norm"} {
		assert.False(t, rootType.HasAttribute(name), "%s should be pruned", name)
	}

	arg := []rt.Value{rt.TensorValue(rt.NewTensor([]float64{1, 1, 1}))}
	want, err := interp.Run(h, "forward", arg)
	require.NoError(t, err)
	got, err := interp.Run(frozen, "forward", arg)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, rt.Equal(want[0], got[0]), "got %s", got[0])
}

func TestFreezeRequiresEntryMethod(t *testing.T) {
	h := mustBuild(t, `
module Silent {
    attr n: int = 1

    method helper() {
        %v = getattr %self "n"
        return %v
    }
}
`)
	_, err := Freeze(h)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no forward method")
}
