package rt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalBinaryInt(t *testing.T) {
	cases := []struct {
		op   Op
		a, b int64
		want Value
	}{
		{OpAdd, 2, 3, Int(5)},
		{OpSub, 2, 3, Int(-1)},
		{OpMul, 4, -3, Int(-12)},
		{OpDiv, 7, 2, Int(3)},
		{OpEq, 2, 2, Bool(true)},
		{OpNe, 2, 2, Bool(false)},
		{OpLt, 1, 2, Bool(true)},
		{OpLe, 2, 2, Bool(true)},
		{OpGt, 1, 2, Bool(false)},
		{OpGe, 2, 3, Bool(false)},
	}
	for _, c := range cases {
		got, err := EvalBinary(c.op, Int(c.a), Int(c.b))
		require.NoError(t, err, "%s %d %d", c.op, c.a, c.b)
		assert.True(t, Equal(c.want, got), "%s %d %d: got %s", c.op, c.a, c.b, got)
	}
}

func TestEvalBinaryIntDivisionByZero(t *testing.T) {
	_, err := EvalBinary(OpDiv, Int(1), Int(0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "division by zero")
}

func TestEvalBinaryFloat(t *testing.T) {
	got, err := EvalBinary(OpMul, Float(1.5), Float(2.0))
	require.NoError(t, err)
	assert.Equal(t, 3.0, got.Float())

	// Float division follows IEEE semantics, so zero divisors do not trap.
	got, err = EvalBinary(OpDiv, Float(1.0), Float(0.0))
	require.NoError(t, err)
	assert.True(t, math.IsInf(got.Float(), 1))

	got, err = EvalBinary(OpLe, Float(2.5), Float(2.5))
	require.NoError(t, err)
	assert.True(t, got.Bool())
}

func TestEvalBinaryBool(t *testing.T) {
	got, err := EvalBinary(OpEq, Bool(true), Bool(false))
	require.NoError(t, err)
	assert.False(t, got.Bool())

	got, err = EvalBinary(OpNe, Bool(true), Bool(false))
	require.NoError(t, err)
	assert.True(t, got.Bool())

	_, err = EvalBinary(OpLt, Bool(true), Bool(false))
	assert.Error(t, err, "bool supports only eq and ne")
}

func TestEvalBinaryString(t *testing.T) {
	got, err := EvalBinary(OpAdd, Str("ab"), Str("cd"))
	require.NoError(t, err)
	assert.Equal(t, "abcd", got.Str())

	got, err = EvalBinary(OpEq, Str("x"), Str("x"))
	require.NoError(t, err)
	assert.True(t, got.Bool())

	_, err = EvalBinary(OpGt, Str("a"), Str("b"))
	assert.Error(t, err, "strings do not order")
}

func TestEvalBinaryTensorElementwise(t *testing.T) {
	a := TensorValue(NewTensor([]float64{1, 2, 3}))
	b := TensorValue(NewTensor([]float64{4, 5, 6}))

	got, err := EvalBinary(OpAdd, a, b)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 7, 9}, got.Tensor().Elems())

	// Results get fresh storage.
	assert.Equal(t, []float64{1, 2, 3}, a.Tensor().Elems())

	_, err = EvalBinary(OpAdd, a, TensorValue(NewTensor([]float64{1})))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "length mismatch")
}

func TestEvalBinaryTensorBroadcast(t *testing.T) {
	tv := TensorValue(NewTensor([]float64{2, 4}))

	got, err := EvalBinary(OpMul, tv, Int(3))
	require.NoError(t, err)
	assert.Equal(t, []float64{6, 12}, got.Tensor().Elems())

	got, err = EvalBinary(OpSub, Float(10), tv)
	require.NoError(t, err)
	assert.Equal(t, []float64{8, 6}, got.Tensor().Elems())

	_, err = EvalBinary(OpAdd, tv, Bool(true))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot broadcast")
}

func TestEvalBinaryTensorComparisonRejected(t *testing.T) {
	tv := TensorValue(NewTensor([]float64{1}))
	_, err := EvalBinary(OpLt, tv, tv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not defined on tensor")
}

func TestEvalBinaryKindMismatch(t *testing.T) {
	_, err := EvalBinary(OpAdd, Int(1), Str("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mismatched operand kinds")
}
