// Package build turns a parsed .fst file into a module hierarchy with
// executable method graphs. Building is diagnostic-driven: every finding
// is collected as a CompilerError and building continues wherever
// recovery is cheap, so one run reports as much as possible. A method
// body that referenced a broken value still produces a graph; the broken
// value is bound to a placeholder constant.
package build

import (
	"frost/grammar"
	"frost/internal/errors"
	"frost/internal/graph"
	"frost/internal/module"
	"frost/internal/rt"
	"frost/internal/types"
)

type Builder struct {
	errs        []errors.CompilerError
	h           *module.Hierarchy
	infoByType  map[*types.ModuleType]*moduleInfo
	moduleOrder []*moduleInfo
	buildStack  []string // qualified method names currently being built, for cycle reports
}

// moduleInfo carries the per-declaration state the method builder needs:
// the arena handle, the declared type and the method registry.
type moduleInfo struct {
	ref         rt.ModuleRef
	typ         *types.ModuleType
	decl        *grammar.ModuleDecl
	methods     map[string]*methodState
	methodOrder []*methodState
}

// methodState tracks one declared method through the callee-first build:
// g stays nil until the graph exists, building guards against call
// cycles, and done marks states whose build already ran (possibly
// failing, in which case g remains nil and callers fall back to
// placeholders).
type methodState struct {
	decl     *grammar.MethodDecl
	g        *graph.Graph
	building bool
	done     bool
}

// Build converts a parsed file into a hierarchy. The returned hierarchy
// is usable whenever the root module could be declared, even if some
// diagnostics are errors; callers decide how strict to be.
func Build(file *grammar.File) (*module.Hierarchy, []errors.CompilerError) {
	b := &Builder{
		h:          module.NewHierarchy(),
		infoByType: make(map[*types.ModuleType]*moduleInfo),
	}

	if len(file.Modules) == 0 {
		b.report(errors.NewBuildError(errors.ErrorMultipleModules,
			"source file declares no root module", errors.Position{Line: 1, Column: 1}).
			WithHelp("declare one top-level module per file").
			Build())
		return nil, b.errs
	}
	for _, extra := range file.Modules[1:] {
		b.report(errors.MultipleModules(extra.Name.Value, at(extra.Name.Pos)))
	}

	root := b.declareModule(file.Modules[0], "")
	b.h.SetRoot(root)

	// Method graphs are built callee-first so a call instruction can
	// carry its resolved callee graph; attaching happens afterwards in
	// declaration order so printing stays stable.
	for _, mi := range b.moduleOrder {
		for _, ms := range mi.methodOrder {
			b.ensureMethodBuilt(mi, ms, at(ms.decl.Pos))
		}
	}
	for _, mi := range b.moduleOrder {
		for _, ms := range mi.methodOrder {
			if ms.g != nil {
				b.h.DefineMethod(mi.ref, module.NewMethod(ms.decl.Name.Value, ms.g))
			}
		}
	}

	return b.h, b.errs
}

func (b *Builder) report(err errors.CompilerError) {
	b.errs = append(b.errs, err)
}

// namedType resolves a source type annotation.
func (b *Builder) namedType(name grammar.PosIdent) (types.Type, bool) {
	switch name.Value {
	case "int":
		return &types.IntType{}, true
	case "float":
		return &types.FloatType{}, true
	case "bool":
		return &types.BoolType{}, true
	case "string":
		return &types.StringType{}, true
	case "tensor":
		return &types.TensorType{}, true
	case "none":
		return &types.NoneType{}, true
	}
	b.report(errors.UnknownType(name.Value, at(name.Pos)))
	return nil, false
}
