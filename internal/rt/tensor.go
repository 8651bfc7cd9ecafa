package rt

import (
	"strconv"
	"strings"
)

// Tensor is a one-dimensional dense float tensor with a gradient-tracking
// flag. The freezing pass clears the flag when it folds a tensor into a
// constant; nothing else in the system interprets it.
type Tensor struct {
	elems        []float64
	requiresGrad bool
}

// NewTensor creates a tensor over the given elements. The slice is owned
// by the tensor afterwards.
func NewTensor(elems []float64) *Tensor {
	return &Tensor{elems: elems}
}

// Len returns the element count.
func (t *Tensor) Len() int { return len(t.elems) }

// Elems returns the underlying element storage, shared with the tensor.
func (t *Tensor) Elems() []float64 { return t.elems }

// At returns element i.
func (t *Tensor) At(i int) float64 { return t.elems[i] }

// RequiresGrad reports whether gradient tracking is enabled.
func (t *Tensor) RequiresGrad() bool { return t.requiresGrad }

// SetRequiresGrad flips gradient tracking.
func (t *Tensor) SetRequiresGrad(b bool) { t.requiresGrad = b }

// Clone returns a tensor with fresh storage and the same flag.
func (t *Tensor) Clone() *Tensor {
	elems := make([]float64, len(t.elems))
	copy(elems, t.elems)
	return &Tensor{elems: elems, requiresGrad: t.requiresGrad}
}

// EqualElems reports element-wise equality, ignoring the gradient flag.
func (t *Tensor) EqualElems(o *Tensor) bool {
	if t == nil || o == nil {
		return t == o
	}
	if len(t.elems) != len(o.elems) {
		return false
	}
	for i, e := range t.elems {
		if e != o.elems[i] {
			return false
		}
	}
	return true
}

// String renders the tensor in source-literal form.
func (t *Tensor) String() string {
	parts := make([]string, len(t.elems))
	for i, e := range t.elems {
		parts[i] = strconv.FormatFloat(e, 'g', -1, 64)
	}
	s := "tensor([" + strings.Join(parts, ", ") + "]"
	if t.requiresGrad {
		s += ", grad=true"
	}
	return s + ")"
}
