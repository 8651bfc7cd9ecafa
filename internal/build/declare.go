package build

import (
	"frost/grammar"
	"frost/internal/errors"
	"frost/internal/rt"
	"frost/internal/types"
)

// declareModule allocates the arena record and module type for one
// declaration, fills in attributes and submodules in source order, and
// registers method declarations for the later build phase. Submodules
// recurse first so the parent's attribute slot can hold the child's
// handle.
func (b *Builder) declareModule(decl *grammar.ModuleDecl, parentQual string) rt.ModuleRef {
	qual := decl.Name.Value
	if parentQual != "" {
		qual = parentQual + "." + decl.Name.Value
	}
	typ := types.NewModuleType(qual)
	ref := b.h.NewModule(typ)

	mi := &moduleInfo{
		ref:     ref,
		typ:     typ,
		decl:    decl,
		methods: make(map[string]*methodState),
	}
	b.infoByType[typ] = mi
	b.moduleOrder = append(b.moduleOrder, mi)

	for _, d := range decl.Decls {
		switch {
		case d.Attr != nil:
			b.declareAttr(mi, d.Attr)

		case d.Module != nil:
			subRef := b.declareModule(d.Module, qual)
			subType := b.h.Type(subRef)
			if !b.h.DefineAttr(ref, d.Module.Name.Value, subType, rt.Module(subRef)) {
				b.report(errors.DuplicateAttribute(decl.Name.Value, d.Module.Name.Value, at(d.Module.Name.Pos)))
			}

		case d.Method != nil:
			name := d.Method.Name.Value
			if _, dup := mi.methods[name]; dup {
				b.report(errors.DuplicateMethod(decl.Name.Value, name, at(d.Method.Name.Pos)))
				continue
			}
			ms := &methodState{decl: d.Method}
			mi.methods[name] = ms
			mi.methodOrder = append(mi.methodOrder, ms)
		}
	}
	return ref
}

func (b *Builder) declareAttr(mi *moduleInfo, attr *grammar.AttrDecl) {
	typ, ok := b.namedType(attr.Type)
	if !ok {
		return
	}
	v, ok := b.literalValue(attr.Value, typ, attr.Type.Value)
	if !ok {
		return
	}
	if !b.h.DefineAttr(mi.ref, attr.Name.Value, typ, v) {
		b.report(errors.DuplicateAttribute(mi.decl.Name.Value, attr.Name.Value, at(attr.Name.Pos)))
	}
}

// literalValue converts an attribute initializer, checking it against
// the declared type. Int literals do not promote to float; the source
// says what it stores.
func (b *Builder) literalValue(lit *grammar.Literal, want types.Type, typeName string) (rt.Value, bool) {
	v, typ := constantValue(lit)
	if !typ.Equal(want) {
		b.report(errors.InvalidLiteral(typeName, at(lit.Pos)))
		return rt.Value{}, false
	}
	return v, true
}

// constantValue converts a literal on its own terms, inferring the type
// from the literal's shape.
func constantValue(lit *grammar.Literal) (rt.Value, types.Type) {
	switch {
	case lit.Tensor != nil:
		t := rt.NewTensor(append([]float64(nil), lit.Tensor.Elems...))
		if lit.Tensor.Grad != nil && *lit.Tensor.Grad == "true" {
			t.SetRequiresGrad(true)
		}
		return rt.TensorValue(t), &types.TensorType{}
	case lit.Float != nil:
		return rt.Float(*lit.Float), &types.FloatType{}
	case lit.Int != nil:
		return rt.Int(*lit.Int), &types.IntType{}
	case lit.Str != nil:
		return rt.Str(*lit.Str), &types.StringType{}
	case lit.True:
		return rt.Bool(true), &types.BoolType{}
	case lit.False:
		return rt.Bool(false), &types.BoolType{}
	default:
		return rt.None(), &types.NoneType{}
	}
}
