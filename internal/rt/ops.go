package rt

import "fmt"

// Op names a binary operation. The same table serves the interpreter and
// the graph-level constant folder, so the two can never disagree on
// arithmetic.
type Op string

const (
	OpAdd Op = "add"
	OpSub Op = "sub"
	OpMul Op = "mul"
	OpDiv Op = "div"
	OpEq  Op = "eq"
	OpNe  Op = "ne"
	OpLt  Op = "lt"
	OpLe  Op = "le"
	OpGt  Op = "gt"
	OpGe  Op = "ge"
)

// IsComparison reports whether op yields a boolean.
func (op Op) IsComparison() bool {
	switch op {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return true
	}
	return false
}

// IsArithmetic reports whether op yields a value of its operand type.
func (op Op) IsArithmetic() bool {
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv:
		return true
	}
	return false
}

// EvalBinary applies op to two operands of the same kind. Integer
// division by zero is an error; float division follows IEEE semantics.
// Operand kinds must match except for tensor/scalar broadcasting.
func EvalBinary(op Op, a, b Value) (Value, error) {
	switch {
	case a.Kind() == KindInt && b.Kind() == KindInt:
		return evalInt(op, a.Int(), b.Int())
	case a.Kind() == KindFloat && b.Kind() == KindFloat:
		return evalFloat(op, a.Float(), b.Float())
	case a.Kind() == KindBool && b.Kind() == KindBool:
		switch op {
		case OpEq:
			return Bool(a.Bool() == b.Bool()), nil
		case OpNe:
			return Bool(a.Bool() != b.Bool()), nil
		}
		return Value{}, fmt.Errorf("operator %s is not defined on bool", op)
	case a.Kind() == KindString && b.Kind() == KindString:
		switch op {
		case OpAdd:
			return Str(a.Str() + b.Str()), nil
		case OpEq:
			return Bool(a.Str() == b.Str()), nil
		case OpNe:
			return Bool(a.Str() != b.Str()), nil
		}
		return Value{}, fmt.Errorf("operator %s is not defined on str", op)
	case a.Kind() == KindTensor || b.Kind() == KindTensor:
		return evalTensor(op, a, b)
	}
	return Value{}, fmt.Errorf("mismatched operand kinds %s and %s for %s", a.Kind(), b.Kind(), op)
}

func evalInt(op Op, a, b int64) (Value, error) {
	switch op {
	case OpAdd:
		return Int(a + b), nil
	case OpSub:
		return Int(a - b), nil
	case OpMul:
		return Int(a * b), nil
	case OpDiv:
		if b == 0 {
			return Value{}, fmt.Errorf("division by zero")
		}
		return Int(a / b), nil
	case OpEq:
		return Bool(a == b), nil
	case OpNe:
		return Bool(a != b), nil
	case OpLt:
		return Bool(a < b), nil
	case OpLe:
		return Bool(a <= b), nil
	case OpGt:
		return Bool(a > b), nil
	case OpGe:
		return Bool(a >= b), nil
	}
	return Value{}, fmt.Errorf("unknown operator %s", op)
}

func evalFloat(op Op, a, b float64) (Value, error) {
	switch op {
	case OpAdd:
		return Float(a + b), nil
	case OpSub:
		return Float(a - b), nil
	case OpMul:
		return Float(a * b), nil
	case OpDiv:
		return Float(a / b), nil
	case OpEq:
		return Bool(a == b), nil
	case OpNe:
		return Bool(a != b), nil
	case OpLt:
		return Bool(a < b), nil
	case OpLe:
		return Bool(a <= b), nil
	case OpGt:
		return Bool(a > b), nil
	case OpGe:
		return Bool(a >= b), nil
	}
	return Value{}, fmt.Errorf("unknown operator %s", op)
}

// evalTensor handles tensor/tensor element-wise arithmetic and
// tensor/scalar broadcasting. Comparisons on tensors are not defined.
func evalTensor(op Op, a, b Value) (Value, error) {
	if !op.IsArithmetic() {
		return Value{}, fmt.Errorf("operator %s is not defined on tensor", op)
	}
	apply := func(x, y float64) (float64, error) {
		v, err := evalFloat(op, x, y)
		if err != nil {
			return 0, err
		}
		return v.Float(), nil
	}
	switch {
	case a.Kind() == KindTensor && b.Kind() == KindTensor:
		ta, tb := a.Tensor(), b.Tensor()
		if ta.Len() != tb.Len() {
			return Value{}, fmt.Errorf("tensor length mismatch: %d vs %d", ta.Len(), tb.Len())
		}
		out := make([]float64, ta.Len())
		for i := range out {
			e, err := apply(ta.At(i), tb.At(i))
			if err != nil {
				return Value{}, err
			}
			out[i] = e
		}
		return TensorValue(NewTensor(out)), nil
	case a.Kind() == KindTensor:
		s, ok := scalarAsFloat(b)
		if !ok {
			return Value{}, fmt.Errorf("cannot broadcast %s against tensor", b.Kind())
		}
		ta := a.Tensor()
		out := make([]float64, ta.Len())
		for i := range out {
			e, err := apply(ta.At(i), s)
			if err != nil {
				return Value{}, err
			}
			out[i] = e
		}
		return TensorValue(NewTensor(out)), nil
	default:
		s, ok := scalarAsFloat(a)
		if !ok {
			return Value{}, fmt.Errorf("cannot broadcast %s against tensor", a.Kind())
		}
		tb := b.Tensor()
		out := make([]float64, tb.Len())
		for i := range out {
			e, err := apply(s, tb.At(i))
			if err != nil {
				return Value{}, err
			}
			out[i] = e
		}
		return TensorValue(NewTensor(out)), nil
	}
}

func scalarAsFloat(v Value) (float64, bool) {
	switch v.Kind() {
	case KindInt:
		return float64(v.Int()), true
	case KindFloat:
		return v.Float(), true
	}
	return 0, false
}
