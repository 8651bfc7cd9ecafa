package build

import (
	"fmt"
	"strings"

	"frost/grammar"
	"frost/internal/errors"
	"frost/internal/graph"
	"frost/internal/rt"
	"frost/internal/types"
)

// ensureMethodBuilt builds a method graph on first demand. Call
// instructions resolve their callee through here, so callees finish
// before callers and a call cycle surfaces as a diagnostic instead of
// unbounded recursion.
func (b *Builder) ensureMethodBuilt(mi *moduleInfo, ms *methodState, pos errors.Position) *graph.Graph {
	qual := mi.typ.QualifiedName() + "." + ms.decl.Name.Value
	if ms.building {
		cycle := append([]string(nil), b.buildStack...)
		cycle = append(cycle, qual)
		for i, q := range cycle {
			if q == qual {
				cycle = cycle[i:]
				break
			}
		}
		b.report(errors.RecursiveMethod(cycle, pos))
		return nil
	}
	if ms.done {
		return ms.g
	}
	ms.building = true
	b.buildStack = append(b.buildStack, qual)
	g := b.buildMethod(mi, ms)
	b.buildStack = b.buildStack[:len(b.buildStack)-1]
	ms.building = false
	ms.done = true
	ms.g = g
	return g
}

// methodBuilder carries the per-method state: the graph under
// construction and the method-wide name ledger enforcing single
// assignment.
type methodBuilder struct {
	b       *Builder
	mi      *moduleInfo
	g       *graph.Graph
	defined map[string]bool
	named   []namedValue // assignment order, for unused-value warnings
}

type namedValue struct {
	name string
	pos  errors.Position
	v    *graph.Value
}

func (b *Builder) buildMethod(mi *moduleInfo, ms *methodState) *graph.Graph {
	g := graph.New()
	mb := &methodBuilder{b: b, mi: mi, g: g, defined: make(map[string]bool)}

	scope := NewScope(nil)
	self := g.AddInput("self", mi.typ)
	scope.Define("self", self)
	mb.defined["self"] = true

	for _, p := range ms.decl.Params {
		name := strings.TrimPrefix(p.Name, "%")
		typ, ok := b.namedType(p.Type)
		if !ok {
			typ = &types.NoneType{}
		}
		if mb.defined[name] {
			b.report(errors.RedefinedValue(name, at(p.Pos)))
			continue
		}
		mb.defined[name] = true
		scope.Define(name, g.AddInput(name, typ))
	}

	mb.buildMethodBody(ms.decl.Body, scope, at(ms.decl.Pos))

	for _, nv := range mb.named {
		if !nv.v.HasUses() {
			b.report(errors.UnusedValue(nv.name, nv.pos))
		}
	}
	return g
}

func (mb *methodBuilder) buildMethodBody(stmts []*grammar.Stmt, scope *Scope, declPos errors.Position) {
	sawReturn := false
	for i, s := range stmts {
		switch {
		case s.Return != nil:
			vals := mb.resolveList(s.Return.Values, scope, at(s.Return.Pos))
			mb.g.SetResults(vals...)
			sawReturn = true
			if i != len(stmts)-1 {
				mb.b.report(errors.ReturnPlacement("return must be the final statement of the method body", at(s.Return.Pos)))
			}
		case s.Yield != nil:
			mb.b.report(errors.ReturnPlacement("yield is only allowed inside if branches", at(s.Yield.Pos)))
		default:
			mb.buildStmt(s, scope, mb.g.Block())
		}
	}
	if !sawReturn {
		mb.b.report(errors.ReturnPlacement("method body must end with a return statement", declPos))
	}
}

// buildBranchBody builds one arm of an if into block and returns the
// values its yield carries. A branch without a yield carries none.
func (mb *methodBuilder) buildBranchBody(stmts []*grammar.Stmt, scope *Scope, block *graph.Block) []*graph.Value {
	var yielded []*graph.Value
	for i, s := range stmts {
		switch {
		case s.Yield != nil:
			yielded = mb.resolveList(s.Yield.Values, scope, at(s.Yield.Pos))
			if i != len(stmts)-1 {
				mb.b.report(errors.ReturnPlacement("yield must be the final statement of a branch", at(s.Yield.Pos)))
			}
		case s.Return != nil:
			mb.b.report(errors.ReturnPlacement("return is only allowed at the end of a method body", at(s.Return.Pos)))
		default:
			mb.buildStmt(s, scope, block)
		}
	}
	block.SetResults(yielded...)
	return yielded
}

func (mb *methodBuilder) buildStmt(s *grammar.Stmt, scope *Scope, block *graph.Block) {
	switch {
	case s.Assign != nil:
		mb.buildAssign(s.Assign, scope, block)
	case s.SetAttr != nil:
		mb.buildSetAttr(s.SetAttr, scope, block)
	case s.If != nil:
		mb.buildIfStmt(s.If, scope, block)
	}
}

func (mb *methodBuilder) buildAssign(a *grammar.AssignStmt, scope *Scope, block *graph.Block) {
	outs, ok := mb.buildInstr(a.Instr, scope, block)
	if ok && len(outs) != len(a.Targets) {
		mb.b.report(errors.ArityMismatch("assignment", len(a.Targets), len(outs), at(a.Pos)))
		ok = false
	}
	for i, t := range a.Targets {
		name := strings.TrimPrefix(t, "%")
		if mb.defined[name] {
			mb.b.report(errors.RedefinedValue(name, at(a.Pos)))
			continue
		}
		mb.defined[name] = true
		var v *graph.Value
		if ok {
			v = outs[i]
			mb.named = append(mb.named, namedValue{name: name, pos: at(a.Pos), v: v})
		} else {
			v = mb.placeholder()
		}
		v.SetDebugName(name)
		scope.Define(name, v)
	}
}

// buildInstr lowers one instruction and returns the values it produces.
// ok is false when a diagnostic was already reported and the caller
// should bind placeholders instead.
func (mb *methodBuilder) buildInstr(in *grammar.Instr, scope *Scope, block *graph.Block) ([]*graph.Value, bool) {
	pos := at(in.Pos)
	switch {
	case in.Const != nil:
		v, typ := constantValue(in.Const.Value)
		n := mb.g.NewConstant(v, typ)
		block.Append(n)
		return n.Outputs(), true

	case in.GetAttr != nil:
		return mb.buildGetAttr(in.GetAttr, scope, block, pos)

	case in.Tuple != nil:
		elems := mb.resolveList(in.Tuple.Elems, scope, pos)
		elemTypes := make([]types.Type, len(elems))
		for i, e := range elems {
			elemTypes[i] = e.Type()
		}
		n := mb.g.NewTuple(elems, types.NewTupleType(elemTypes...))
		block.Append(n)
		return n.Outputs(), true

	case in.Unpack != nil:
		v, ok := mb.resolve(in.Unpack.Tuple, scope, pos)
		if !ok {
			return nil, false
		}
		tt, isTuple := v.Type().(*types.TupleType)
		if !isTuple {
			mb.b.report(errors.TypeMismatch("tuple", v.Type().String(), pos))
			return nil, false
		}
		n := mb.g.NewUnpack(v, tt.Elems)
		block.Append(n)
		return n.Outputs(), true

	case in.Call != nil:
		return mb.buildCall(in.Call, scope, block, pos)

	case in.If != nil:
		return mb.buildIfExpr(in.If, scope, block)

	case in.Binary != nil:
		return mb.buildBinary(in.Binary, scope, block)
	}
	return nil, false
}

func (mb *methodBuilder) buildGetAttr(in *grammar.GetAttrInstr, scope *Scope, block *graph.Block, pos errors.Position) ([]*graph.Value, bool) {
	recv, ok := mb.resolve(in.Recv, scope, pos)
	if !ok {
		return nil, false
	}
	mt, isMod := recv.Type().(*types.ModuleType)
	if !isMod {
		mb.b.report(errors.NonModuleReceiver(recv.DebugName(), recv.Type().String(), pos))
		return nil, false
	}
	attrType, has := mt.AttributeType(in.Attr)
	if !has {
		mb.b.report(errors.UnknownAttribute(mt.QualifiedName(), in.Attr, pos, findSimilarNames(in.Attr, attrNames(mt))))
		return nil, false
	}
	n := mb.g.NewGetAttr(recv, in.Attr, attrType)
	block.Append(n)
	return n.Outputs(), true
}

func (mb *methodBuilder) buildSetAttr(s *grammar.SetAttrStmt, scope *Scope, block *graph.Block) {
	pos := at(s.Pos)
	recv, rok := mb.resolve(s.Recv, scope, pos)
	val, vok := mb.resolve(s.Val, scope, pos)
	if !rok {
		return
	}
	mt, isMod := recv.Type().(*types.ModuleType)
	if !isMod {
		mb.b.report(errors.NonModuleReceiver(recv.DebugName(), recv.Type().String(), pos))
		return
	}
	attrType, has := mt.AttributeType(s.Attr)
	if !has {
		mb.b.report(errors.UnknownAttribute(mt.QualifiedName(), s.Attr, pos, findSimilarNames(s.Attr, attrNames(mt))))
		return
	}
	if vok && !attrType.Equal(val.Type()) {
		mb.b.report(errors.TypeMismatch(attrType.String(), val.Type().String(), pos))
	}
	n := mb.g.NewSetAttr(recv, s.Attr, val)
	block.Append(n)
}

func (mb *methodBuilder) buildCall(in *grammar.CallInstr, scope *Scope, block *graph.Block, pos errors.Position) ([]*graph.Value, bool) {
	recv, rok := mb.resolve(in.Recv, scope, pos)
	args := make([]*graph.Value, len(in.Args))
	argOK := make([]bool, len(in.Args))
	for i, a := range in.Args {
		args[i], argOK[i] = mb.resolve(a, scope, pos)
	}
	if !rok {
		return nil, false
	}
	mt, isMod := recv.Type().(*types.ModuleType)
	if !isMod {
		mb.b.report(errors.NonModuleReceiver(recv.DebugName(), recv.Type().String(), pos))
		return nil, false
	}
	mi := mb.b.infoByType[mt]
	var ms *methodState
	if mi != nil {
		ms = mi.methods[in.Method]
	}
	if ms == nil {
		mb.b.report(errors.UndefinedMethod(mt.QualifiedName(), in.Method, pos))
		return nil, false
	}
	callee := mb.b.ensureMethodBuilt(mi, ms, pos)
	if callee == nil {
		return nil, false
	}
	params := callee.Inputs()[1:] // input 0 is the receiver
	if len(args) != len(params) {
		mb.b.report(errors.ArityMismatch(fmt.Sprintf("method '%s'", in.Method), len(params), len(args), pos))
		return nil, false
	}
	for i := range args {
		if argOK[i] && !params[i].Type().Equal(args[i].Type()) {
			mb.b.report(errors.TypeMismatch(params[i].Type().String(), args[i].Type().String(), pos))
		}
	}
	results := callee.Results()
	outTypes := make([]types.Type, len(results))
	for i, r := range results {
		outTypes[i] = r.Type()
	}
	n := mb.g.NewCallMethod(in.Method, callee, recv, args, outTypes)
	block.Append(n)
	return n.Outputs(), true
}

// buildIfExpr lowers an if in assignment position. Its outputs are
// created after both arms exist, once the yielded types are known.
func (mb *methodBuilder) buildIfExpr(in *grammar.IfInstr, scope *Scope, block *graph.Block) ([]*graph.Value, bool) {
	ifn, thenVals, elseVals := mb.buildIfArms(in, scope, block)
	if len(thenVals) != len(elseVals) {
		mb.b.report(errors.BranchMismatch(len(thenVals), len(elseVals), at(in.Pos)))
		return nil, false
	}
	outs := make([]*graph.Value, len(thenVals))
	for i := range thenVals {
		if !thenVals[i].Type().Equal(elseVals[i].Type()) {
			mb.b.report(errors.TypeMismatch(thenVals[i].Type().String(), elseVals[i].Type().String(), at(in.Pos)))
		}
		outs[i] = ifn.AddOutput(thenVals[i].Type())
	}
	return outs, true
}

// buildIfStmt lowers an if in statement position, where the arms may
// only have effects.
func (mb *methodBuilder) buildIfStmt(in *grammar.IfInstr, scope *Scope, block *graph.Block) {
	_, thenVals, elseVals := mb.buildIfArms(in, scope, block)
	if len(thenVals) > 0 || len(elseVals) > 0 {
		got := len(thenVals)
		if len(elseVals) > got {
			got = len(elseVals)
		}
		mb.b.report(errors.ArityMismatch("if statement", 0, got, at(in.Pos)))
	}
}

func (mb *methodBuilder) buildIfArms(in *grammar.IfInstr, scope *Scope, block *graph.Block) (*graph.IfNode, []*graph.Value, []*graph.Value) {
	pos := at(in.Pos)
	cond, ok := mb.resolve(in.Cond, scope, pos)
	if _, isBool := cond.Type().(*types.BoolType); ok && !isBool {
		mb.b.report(errors.TypeMismatch("bool", cond.Type().String(), pos))
	}
	ifn := mb.g.NewIf(cond, nil)
	block.Append(ifn)
	thenVals := mb.buildBranchBody(in.Then, NewScope(scope), ifn.Then())
	elseVals := mb.buildBranchBody(in.Else, NewScope(scope), ifn.Else())
	return ifn, thenVals, elseVals
}

func (mb *methodBuilder) buildBinary(in *grammar.BinaryInstr, scope *Scope, block *graph.Block) ([]*graph.Value, bool) {
	pos := at(in.Pos)
	op := rt.Op(in.Op)
	lhs, lok := mb.resolve(in.LHS, scope, pos)
	rhs, rok := mb.resolve(in.RHS, scope, pos)
	if !lok || !rok {
		return nil, false
	}
	typ, ok := mb.binaryResultType(op, lhs.Type(), rhs.Type(), pos)
	if !ok {
		return nil, false
	}
	n := mb.g.NewBinary(op, lhs, rhs, typ)
	block.Append(n)
	return n.Outputs(), true
}

// binaryResultType mirrors rt.EvalBinary's operand rules at the type
// level, so the builder rejects exactly what execution would.
func (mb *methodBuilder) binaryResultType(op rt.Op, left, right types.Type, pos errors.Position) (types.Type, bool) {
	_, lTensor := left.(*types.TensorType)
	_, rTensor := right.(*types.TensorType)
	if lTensor || rTensor {
		if !op.IsArithmetic() {
			mb.b.report(errors.InvalidOperation(string(op), "tensor", pos))
			return nil, false
		}
		other := right
		if rTensor {
			other = left
		}
		switch other.(type) {
		case *types.TensorType, *types.IntType, *types.FloatType:
			return &types.TensorType{}, true
		}
		mb.b.report(errors.TypeMismatch("tensor, int or float", other.String(), pos))
		return nil, false
	}
	if !left.Equal(right) {
		mb.b.report(errors.TypeMismatch(left.String(), right.String(), pos))
		return nil, false
	}
	switch left.(type) {
	case *types.IntType, *types.FloatType:
		if op.IsComparison() {
			return &types.BoolType{}, true
		}
		return left, true
	case *types.BoolType:
		if op == rt.OpEq || op == rt.OpNe {
			return &types.BoolType{}, true
		}
	case *types.StringType:
		if op == rt.OpAdd {
			return &types.StringType{}, true
		}
		if op == rt.OpEq || op == rt.OpNe {
			return &types.BoolType{}, true
		}
	}
	mb.b.report(errors.InvalidOperation(string(op), left.String(), pos))
	return nil, false
}

// resolve looks up one %name reference. On failure it reports the use
// and hands back a placeholder constant so building can continue.
func (mb *methodBuilder) resolve(raw string, scope *Scope, pos errors.Position) (*graph.Value, bool) {
	name := strings.TrimPrefix(raw, "%")
	if v := scope.Lookup(name); v != nil {
		return v, true
	}
	mb.b.report(errors.UndefinedValue(name, pos, findSimilarNames(name, scope.VisibleNames())))
	return mb.placeholder(), false
}

func (mb *methodBuilder) resolveList(raws []string, scope *Scope, pos errors.Position) []*graph.Value {
	vals := make([]*graph.Value, len(raws))
	for i, r := range raws {
		vals[i], _ = mb.resolve(r, scope, pos)
	}
	return vals
}

// placeholder materializes a none constant at the top of the graph so a
// diagnosed name still binds to something well formed.
func (mb *methodBuilder) placeholder() *graph.Value {
	c := mb.g.NewConstant(rt.None(), &types.NoneType{})
	mb.g.Block().Prepend(c)
	return c.Output(0)
}

func attrNames(t *types.ModuleType) []string {
	names := make([]string, 0, t.NumAttributes())
	for _, a := range t.Attributes() {
		names = append(names, a.Name)
	}
	return names
}
