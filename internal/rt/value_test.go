package rt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frost/internal/types"
)

func TestCloneIsDeep(t *testing.T) {
	tensor := NewTensor([]float64{1, 2})
	tensor.SetRequiresGrad(true)
	orig := Tuple(TensorValue(tensor), Int(7))

	clone := orig.Clone()
	clone.Elems()[0].Tensor().Elems()[0] = 99

	assert.Equal(t, 1.0, orig.Elems()[0].Tensor().At(0))
	assert.True(t, clone.Elems()[0].Tensor().RequiresGrad())
}

func TestEqualIgnoresGradFlag(t *testing.T) {
	a := NewTensor([]float64{1, 2})
	b := NewTensor([]float64{1, 2})
	b.SetRequiresGrad(true)
	assert.True(t, Equal(TensorValue(a), TensorValue(b)))

	c := NewTensor([]float64{1, 3})
	assert.False(t, Equal(TensorValue(a), TensorValue(c)))
}

func TestEqualAcrossKinds(t *testing.T) {
	assert.False(t, Equal(Int(1), Float(1)))
	assert.True(t, Equal(None(), None()))
	assert.True(t, Equal(Module(3), Module(3)))
	assert.False(t, Equal(Module(3), Module(4)))
	assert.True(t, Equal(Tuple(Int(1), Str("a")), Tuple(Int(1), Str("a"))))
	assert.False(t, Equal(Tuple(Int(1)), Tuple(Int(1), Int(2))))
}

func TestStringRendersLiterals(t *testing.T) {
	tensor := NewTensor([]float64{2, -1.5})
	tensor.SetRequiresGrad(true)
	cases := []struct {
		v    Value
		want string
	}{
		{None(), "none"},
		{Bool(true), "true"},
		{Int(-3), "-3"},
		{Float(2), "2.0"},
		{Float(0.25), "0.25"},
		{Str("hi"), `"hi"`},
		{TensorValue(tensor), "tensor([2, -1.5], grad=true)"},
		{Tuple(Int(1), Bool(false)), "(1, false)"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.v.String())
	}
}

func TestFormatFloatKeepsDecimalPoint(t *testing.T) {
	assert.Equal(t, "2.0", FormatFloat(2))
	assert.Equal(t, "0.5", FormatFloat(0.5))
	assert.Equal(t, "1e+21", FormatFloat(1e21))
}

func TestTypeOf(t *testing.T) {
	assert.IsType(t, &types.NoneType{}, TypeOf(None()))
	assert.IsType(t, &types.TensorType{}, TypeOf(TensorValue(NewTensor(nil))))

	tt, ok := TypeOf(Tuple(Int(1), Str("a"))).(*types.TupleType)
	require.True(t, ok)
	assert.Equal(t, "(int, string)", tt.String())

	// Module handles have no structural type of their own.
	assert.Nil(t, TypeOf(Module(1)))
}
