package rt

import (
	"fmt"
	"strconv"
	"strings"

	"frost/internal/types"
)

// Runtime values are what module attributes hold and what graphs evaluate
// to: a small tagged union over scalars, strings, tensors, tuples and
// module handles. Values are cheap to copy; tensors are shared by
// reference on copy, deep-copied only by Clone.

// Kind discriminates the payload of a Value
type Kind int

const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindTensor
	KindTuple
	KindModule
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "str"
	case KindTensor:
		return "tensor"
	case KindTuple:
		return "tuple"
	case KindModule:
		return "module"
	}
	return "unknown"
}

// ModuleRef is a stable handle naming one module record inside a
// hierarchy. Handles are indices into the hierarchy's record arena and
// stay numerically identical across cloning; zero never names a record.
type ModuleRef uint32

// NoModule is the invalid handle.
const NoModule ModuleRef = 0

// Value is one runtime value
type Value struct {
	kind  Kind
	b     bool
	i     int64
	f     float64
	s     string
	t     *Tensor
	elems []Value
	mod   ModuleRef
}

// None returns the none value.
func None() Value { return Value{kind: KindNone} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int wraps a 64-bit integer.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float wraps a 64-bit float.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Str wraps a string.
func Str(s string) Value { return Value{kind: KindString, s: s} }

// TensorValue wraps a tensor. The tensor is shared, not copied.
func TensorValue(t *Tensor) Value { return Value{kind: KindTensor, t: t} }

// Tuple wraps an element list.
func Tuple(elems ...Value) Value { return Value{kind: KindTuple, elems: elems} }

// Module wraps a module handle.
func Module(ref ModuleRef) Value { return Value{kind: KindModule, mod: ref} }

func (v Value) Kind() Kind { return v.kind }

// IsNone reports whether v is the none value.
func (v Value) IsNone() bool { return v.kind == KindNone }

// IsModule reports whether v holds a module handle.
func (v Value) IsModule() bool { return v.kind == KindModule }

// Bool returns the boolean payload; valid only for KindBool.
func (v Value) Bool() bool { return v.b }

// Int returns the integer payload; valid only for KindInt.
func (v Value) Int() int64 { return v.i }

// Float returns the float payload; valid only for KindFloat.
func (v Value) Float() float64 { return v.f }

// Str returns the string payload; valid only for KindString.
func (v Value) Str() string { return v.s }

// Tensor returns the shared tensor payload; valid only for KindTensor.
func (v Value) Tensor() *Tensor { return v.t }

// Elems returns the tuple elements; valid only for KindTuple.
func (v Value) Elems() []Value { return v.elems }

// Module returns the module handle; valid only for KindModule.
func (v Value) Module() ModuleRef { return v.mod }

// Clone returns a deep copy: tensors and tuple elements get fresh
// storage. Module handles are copied as-is, since they are names, not
// storage.
func (v Value) Clone() Value {
	switch v.kind {
	case KindTensor:
		return TensorValue(v.t.Clone())
	case KindTuple:
		elems := make([]Value, len(v.elems))
		for i, e := range v.elems {
			elems[i] = e.Clone()
		}
		return Tuple(elems...)
	default:
		return v
	}
}

// Equal reports deep structural equality. Tensors compare by elements,
// ignoring the gradient flag.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNone:
		return true
	case KindBool:
		return a.b == b.b
	case KindInt:
		return a.i == b.i
	case KindFloat:
		return a.f == b.f
	case KindString:
		return a.s == b.s
	case KindTensor:
		return a.t.EqualElems(b.t)
	case KindTuple:
		if len(a.elems) != len(b.elems) {
			return false
		}
		for i := range a.elems {
			if !Equal(a.elems[i], b.elems[i]) {
				return false
			}
		}
		return true
	case KindModule:
		return a.mod == b.mod
	}
	return false
}

// String renders the value in source-literal form where one exists.
func (v Value) String() string {
	switch v.kind {
	case KindNone:
		return "none"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return FormatFloat(v.f)
	case KindString:
		return strconv.Quote(v.s)
	case KindTensor:
		return v.t.String()
	case KindTuple:
		parts := make([]string, len(v.elems))
		for i, e := range v.elems {
			parts[i] = e.String()
		}
		return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
	case KindModule:
		return fmt.Sprintf("<module %d>", v.mod)
	}
	return "<invalid>"
}

// FormatFloat renders f so it re-reads as a float literal, keeping a
// decimal point even for whole numbers.
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") && !strings.Contains(s, "Inf") && !strings.Contains(s, "NaN") {
		s += ".0"
	}
	return s
}

// TypeOf maps a runtime value to its static type. Module handles cannot
// be typed without the owning hierarchy, so they map to nil.
func TypeOf(v Value) types.Type {
	switch v.kind {
	case KindNone:
		return &types.NoneType{}
	case KindBool:
		return &types.BoolType{}
	case KindInt:
		return &types.IntType{}
	case KindFloat:
		return &types.FloatType{}
	case KindString:
		return &types.StringType{}
	case KindTensor:
		return &types.TensorType{}
	case KindTuple:
		elems := make([]types.Type, len(v.elems))
		for i, e := range v.elems {
			elems[i] = TypeOf(e)
		}
		return types.NewTupleType(elems...)
	}
	return nil
}
