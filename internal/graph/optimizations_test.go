package graph

import (
	"testing"

	"frost/internal/rt"
	"frost/internal/types"
)

func TestConstantFoldingFoldsPureOps(t *testing.T) {
	g := New()
	a := intConst(g, 2)
	b := intConst(g, 3)
	add := g.NewBinary(rt.OpAdd, a.Output(0), b.Output(0), &types.IntType{})
	g.Block().Append(add)
	g.SetResults(add.Output(0))

	if !(&ConstantFolding{}).Apply(g) {
		t.Fatal("folding reported no change")
	}

	c, ok := g.Results()[0].Node().(*ConstantNode)
	if !ok {
		t.Fatalf("result is %T, want a constant", g.Results()[0].Node())
	}
	if !rt.Equal(c.Value(), rt.Int(5)) {
		t.Fatalf("folded to %s", c.Value())
	}
	if !add.IsDestroyed() {
		t.Fatal("folded node not destroyed")
	}
}

func TestConstantFoldingSkipsDivisionByZero(t *testing.T) {
	g := New()
	a := intConst(g, 1)
	z := intConst(g, 0)
	div := g.NewBinary(rt.OpDiv, a.Output(0), z.Output(0), &types.IntType{})
	g.Block().Append(div)
	g.SetResults(div.Output(0))

	if (&ConstantFolding{}).Apply(g) {
		t.Fatal("a trapping division must not fold")
	}
	if div.IsDestroyed() {
		t.Fatal("division node destroyed")
	}
}

func TestBranchSimplificationTakesConstantBranch(t *testing.T) {
	g := New()
	cond := g.NewConstant(rt.Bool(true), &types.BoolType{})
	g.Block().Append(cond)
	ifn := g.NewIf(cond.Output(0), []types.Type{&types.IntType{}})
	g.Block().Append(ifn)

	thenC := g.NewConstant(rt.Int(1), &types.IntType{})
	ifn.Then().Append(thenC)
	ifn.Then().SetResults(thenC.Output(0))
	elseC := g.NewConstant(rt.Int(2), &types.IntType{})
	ifn.Else().Append(elseC)
	ifn.Else().SetResults(elseC.Output(0))

	g.SetResults(ifn.Output(0))

	if !(&BranchSimplification{}).Apply(g) {
		t.Fatal("no change reported")
	}

	c, ok := g.Results()[0].Node().(*ConstantNode)
	if !ok || !rt.Equal(c.Value(), rt.Int(1)) {
		t.Fatalf("result should be the then-branch constant, got %v", g.Results()[0].Node())
	}
	if !ifn.IsDestroyed() {
		t.Fatal("if not destroyed")
	}
	if c.Block() != g.Block() {
		t.Fatal("taken branch not spliced into the parent block")
	}
	if !elseC.IsDestroyed() {
		t.Fatal("untaken branch contents should be destroyed")
	}
}

func TestConstantPoolingSharesEqualLiterals(t *testing.T) {
	g := New()
	a := intConst(g, 7)
	b := intConst(g, 7)
	add := g.NewBinary(rt.OpAdd, a.Output(0), b.Output(0), &types.IntType{})
	g.Block().Append(add)
	g.SetResults(add.Output(0))

	if !(&ConstantPooling{}).Apply(g) {
		t.Fatal("no change reported")
	}

	if add.Input(0) != add.Input(1) || add.Input(0) != a.Output(0) {
		t.Fatal("equal constants not merged into the first occurrence")
	}
	if !b.IsDestroyed() {
		t.Fatal("duplicate constant not removed")
	}
}

func TestConstantPoolingKeepsDistinctTypes(t *testing.T) {
	g := New()
	a := intConst(g, 1)
	f := g.NewConstant(rt.Float(1), &types.FloatType{})
	g.Block().Append(f)
	g.SetResults(a.Output(0), f.Output(0))

	if (&ConstantPooling{}).Apply(g) {
		t.Fatal("distinct literals must not merge")
	}
}

func TestConstantPoolingHoistsAcrossBlocks(t *testing.T) {
	g := New()
	x := g.AddInput("x", &types.BoolType{})
	filler := intConst(g, 1)
	nine := intConst(g, 9)
	ifn := g.NewIf(x, []types.Type{&types.IntType{}})
	g.Block().Append(ifn)
	inner := g.NewConstant(rt.Int(9), &types.IntType{})
	ifn.Then().Append(inner)
	ifn.Then().SetResults(inner.Output(0))
	other := g.NewConstant(rt.Int(3), &types.IntType{})
	ifn.Else().Append(other)
	ifn.Else().SetResults(other.Output(0))
	g.SetResults(ifn.Output(0), filler.Output(0))

	if !(&ConstantPooling{}).Apply(g) {
		t.Fatal("no change reported")
	}

	if !inner.IsDestroyed() {
		t.Fatal("duplicate inside the branch not removed")
	}
	if g.Block().First() != Node(nine) {
		t.Fatal("canonical constant not hoisted to the top block head")
	}
	then := ifn.Then()
	if len(then.Results()) != 1 || then.Results()[0] != nine.Output(0) {
		t.Fatal("branch result not rewired to the pooled constant")
	}
}

func TestDeadCodeEliminationDropsUnusedPureNodes(t *testing.T) {
	g := New()
	mt := types.NewModuleType("M")
	mt.AddAttribute("n", &types.IntType{})
	self := g.AddInput("self", mt)

	dead := intConst(g, 1)
	live := intConst(g, 2)
	set := g.NewSetAttr(self, "n", live.Output(0))
	g.Block().Append(set)

	if !(&DeadCodeElimination{}).Apply(g) {
		t.Fatal("no change reported")
	}

	if !dead.IsDestroyed() {
		t.Fatal("unused constant kept")
	}
	if set.IsDestroyed() {
		t.Fatal("setattr removed despite its side effect")
	}
	if live.IsDestroyed() {
		t.Fatal("constant feeding the setattr removed")
	}
}

func TestDeadCodeEliminationRemovesEmptyIf(t *testing.T) {
	g := New()
	cond := g.NewConstant(rt.Bool(true), &types.BoolType{})
	g.Block().Append(cond)
	ifn := g.NewIf(cond.Output(0), nil)
	g.Block().Append(ifn)
	inner := g.NewConstant(rt.Int(5), &types.IntType{})
	ifn.Then().Append(inner)

	if !(&DeadCodeElimination{}).Apply(g) {
		t.Fatal("no change reported")
	}
	if !inner.IsDestroyed() || !ifn.IsDestroyed() || !cond.IsDestroyed() {
		t.Fatal("an if with no observable effects should disappear entirely")
	}
}

func TestHasSideEffects(t *testing.T) {
	g := New()
	mt := types.NewModuleType("M")
	mt.AddAttribute("n", &types.IntType{})
	self := g.AddInput("self", mt)

	c := intConst(g, 1)
	if HasSideEffects(c) {
		t.Fatal("constants are pure")
	}

	set := g.NewSetAttr(self, "n", c.Output(0))
	g.Block().Append(set)
	if !HasSideEffects(set) {
		t.Fatal("setattr must count as effectful")
	}

	call := g.NewCallMethod("m", nil, self, nil, nil)
	g.Block().Append(call)
	if !HasSideEffects(call) {
		t.Fatal("calls must count as effectful until inlined")
	}

	cond := g.NewConstant(rt.Bool(true), &types.BoolType{})
	g.Block().Append(cond)
	ifn := g.NewIf(cond.Output(0), nil)
	g.Block().Append(ifn)
	if HasSideEffects(ifn) {
		t.Fatal("an empty if is pure")
	}
	innerSet := g.NewSetAttr(self, "n", c.Output(0))
	ifn.Else().Append(innerSet)
	if !HasSideEffects(ifn) {
		t.Fatal("an if containing a setattr is effectful")
	}
}

func TestOptimizeReachesFixpoint(t *testing.T) {
	// (2 + 3) behind a constant-false branch: the pipeline folds the add,
	// splices the else arm and sweeps everything but the final constant.
	g := New()
	a := intConst(g, 2)
	b := intConst(g, 3)
	add := g.NewBinary(rt.OpAdd, a.Output(0), b.Output(0), &types.IntType{})
	add.Output(0).SetDebugName("sum")
	g.Block().Append(add)
	cond := g.NewConstant(rt.Bool(false), &types.BoolType{})
	g.Block().Append(cond)
	ifn := g.NewIf(cond.Output(0), []types.Type{&types.IntType{}})
	g.Block().Append(ifn)
	thenC := g.NewConstant(rt.Int(0), &types.IntType{})
	ifn.Then().Append(thenC)
	ifn.Then().SetResults(thenC.Output(0))
	ifn.Else().SetResults(add.Output(0))
	g.SetResults(ifn.Output(0))

	Optimize(g)

	c, ok := g.Results()[0].Node().(*ConstantNode)
	if !ok || !rt.Equal(c.Value(), rt.Int(5)) {
		t.Fatalf("pipeline should leave a single constant 5, got %v", g.Results()[0].Node())
	}
	count := 0
	for n := g.Block().First(); n != nil; n = n.Next() {
		count++
	}
	if count != 1 {
		t.Fatalf("%d instructions remain, want 1", count)
	}
}
