package types

import (
	"fmt"
	"strings"
)

// Static types carried by graph values and attribute declarations.
// Scalars compare structurally; module types compare by identity, since
// every module declaration introduces its own type.

// Type is the interface implemented by all static types
type Type interface {
	String() string
	Equal(other Type) bool
}

// IntType represents a 64-bit signed integer
type IntType struct{}

// FloatType represents a 64-bit float
type FloatType struct{}

// BoolType represents a boolean
type BoolType struct{}

// StringType represents an immutable string
type StringType struct{}

// TensorType represents a dense float tensor
type TensorType struct{}

// NoneType represents the absence of a value
type NoneType struct{}

func (t *IntType) String() string    { return "int" }
func (t *FloatType) String() string  { return "float" }
func (t *BoolType) String() string   { return "bool" }
func (t *StringType) String() string { return "string" }
func (t *TensorType) String() string { return "tensor" }
func (t *NoneType) String() string   { return "none" }

func (t *IntType) Equal(other Type) bool {
	_, ok := other.(*IntType)
	return ok
}

func (t *FloatType) Equal(other Type) bool {
	_, ok := other.(*FloatType)
	return ok
}

func (t *BoolType) Equal(other Type) bool {
	_, ok := other.(*BoolType)
	return ok
}

func (t *StringType) Equal(other Type) bool {
	_, ok := other.(*StringType)
	return ok
}

func (t *TensorType) Equal(other Type) bool {
	_, ok := other.(*TensorType)
	return ok
}

func (t *NoneType) Equal(other Type) bool {
	_, ok := other.(*NoneType)
	return ok
}

// TupleType represents a fixed-arity product of element types
type TupleType struct {
	Elems []Type
}

func NewTupleType(elems ...Type) *TupleType {
	return &TupleType{Elems: elems}
}

func (t *TupleType) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
}

func (t *TupleType) Equal(other Type) bool {
	o, ok := other.(*TupleType)
	if !ok || len(o.Elems) != len(t.Elems) {
		return false
	}
	for i, e := range t.Elems {
		if !e.Equal(o.Elems[i]) {
			return false
		}
	}
	return true
}

// Attribute is one name/type descriptor on a module type. Descriptors keep
// their declaration order so enumeration by index is stable.
type Attribute struct {
	Name string
	Type Type
}

// ModuleType is the static type of a module instance. Each module
// declaration gets exactly one ModuleType, so equality is identity.
type ModuleType struct {
	name  string
	attrs []Attribute
}

// NewModuleType creates a module type with the given qualified name,
// e.g. "Classifier.B" for a submodule B of Classifier.
func NewModuleType(qualifiedName string) *ModuleType {
	return &ModuleType{name: qualifiedName}
}

func (t *ModuleType) String() string { return t.name }

// QualifiedName returns the dotted declaration path of the type.
func (t *ModuleType) QualifiedName() string { return t.name }

func (t *ModuleType) Equal(other Type) bool {
	o, ok := other.(*ModuleType)
	return ok && o == t
}

// AddAttribute appends a descriptor. It reports false if the name is
// already declared.
func (t *ModuleType) AddAttribute(name string, typ Type) bool {
	if t.HasAttribute(name) {
		return false
	}
	t.attrs = append(t.attrs, Attribute{Name: name, Type: typ})
	return true
}

// NumAttributes returns the number of declared attributes.
func (t *ModuleType) NumAttributes() int { return len(t.attrs) }

// AttributeAt returns the descriptor at index i in declaration order.
func (t *ModuleType) AttributeAt(i int) Attribute { return t.attrs[i] }

// HasAttribute reports whether name is declared on the type.
func (t *ModuleType) HasAttribute(name string) bool {
	_, ok := t.AttributeType(name)
	return ok
}

// AttributeType returns the declared type of name, if declared.
func (t *ModuleType) AttributeType(name string) (Type, bool) {
	for _, a := range t.attrs {
		if a.Name == name {
			return a.Type, true
		}
	}
	return nil, false
}

// RemoveAttribute deletes the descriptor for name without any liveness
// checking. Callers are expected to have proven the attribute dead.
func (t *ModuleType) RemoveAttribute(name string) bool {
	for i, a := range t.attrs {
		if a.Name == name {
			t.attrs = append(t.attrs[:i], t.attrs[i+1:]...)
			return true
		}
	}
	return false
}

// Attributes returns a copy of the descriptor list in declaration order.
func (t *ModuleType) Attributes() []Attribute {
	out := make([]Attribute, len(t.attrs))
	copy(out, t.attrs)
	return out
}

// IsModule reports whether t is a module type.
func IsModule(t Type) bool {
	_, ok := t.(*ModuleType)
	return ok
}
