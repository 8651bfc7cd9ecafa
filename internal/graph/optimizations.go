package graph

// Generic graph simplifications run between constant substitution and
// attribute pruning. The pipeline stays small; candidates that did not
// make the cut yet:
//
//	- common-subexpression elimination over pure nodes (needs a stable
//	  operand hash; pooling already covers the constant-heavy case)
//	- getattr/setattr forwarding within a block (alias-free by chain
//	  identity, but subsumed by freezing for the immutable case)
//	- loop constructs, once the instruction set grows them

import (
	"github.com/tliron/commonlog"

	"frost/internal/rt"
)

var optLog = commonlog.GetLogger("frost.optimize")

// OptimizationPass represents a single graph transformation
type OptimizationPass interface {
	Name() string
	Description() string
	// Apply transforms the graph in place and reports whether anything
	// changed.
	Apply(g *Graph) bool
}

// OptimizationPipeline runs passes in order until a fixpoint
type OptimizationPipeline struct {
	passes    []OptimizationPass
	maxRounds int
}

// NewOptimizationPipeline creates the standard pipeline.
func NewOptimizationPipeline() *OptimizationPipeline {
	return &OptimizationPipeline{
		passes: []OptimizationPass{
			&ConstantFolding{},
			&BranchSimplification{},
			&ConstantPooling{},
			&DeadCodeElimination{},
		},
		maxRounds: 4,
	}
}

// Run applies the pipeline to a fixpoint, bounded by maxRounds.
func (p *OptimizationPipeline) Run(g *Graph) {
	for round := 0; round < p.maxRounds; round++ {
		changed := false
		for _, pass := range p.passes {
			if pass.Apply(g) {
				optLog.Debugf("round %d: %s changed the graph", round, pass.Name())
				changed = true
			}
		}
		if !changed {
			return
		}
	}
}

// Optimize runs the standard pipeline over g.
func Optimize(g *Graph) {
	NewOptimizationPipeline().Run(g)
}

// HasSideEffects reports whether executing n can be observed beyond its
// outputs. Method calls count until inlining has dissolved them, since a
// callee may write attributes.
func HasSideEffects(n Node) bool {
	switch n.Kind() {
	case KindSetAttr, KindCall:
		return true
	case KindIf:
		for _, b := range n.Blocks() {
			for m := b.First(); m != nil; m = m.Next() {
				if HasSideEffects(m) {
					return true
				}
			}
		}
		return false
	default:
		return false
	}
}

// ConstantFolding evaluates pure binary operations whose operands are
// both literals
type ConstantFolding struct{}

func (cf *ConstantFolding) Name() string { return "constant-folding" }

func (cf *ConstantFolding) Description() string {
	return "Evaluate binary operations over constant operands at compile time"
}

func (cf *ConstantFolding) Apply(g *Graph) bool {
	changed := false
	blocks := []*Block{g.Block()}
	for len(blocks) > 0 {
		b := blocks[len(blocks)-1]
		blocks = blocks[:len(blocks)-1]
		n := b.First()
		for n != nil {
			next := n.Next()
			blocks = append(blocks, n.Blocks()...)
			if bin, ok := n.(*BinaryNode); ok {
				if folded := cf.fold(bin); folded {
					changed = true
				}
			}
			n = next
		}
	}
	return changed
}

func (cf *ConstantFolding) fold(n *BinaryNode) bool {
	lhs, ok := n.Input(0).Node().(*ConstantNode)
	if !ok {
		return false
	}
	rhs, ok := n.Input(1).Node().(*ConstantNode)
	if !ok {
		return false
	}
	result, err := rt.EvalBinary(n.Op(), lhs.Value(), rhs.Value())
	if err != nil {
		// The operation traps at runtime; folding it away would erase
		// the trap.
		return false
	}
	c := n.Graph().NewConstant(result, n.Output(0).Type())
	c.InsertBefore(n)
	n.Output(0).ReplaceAllUsesWith(c.Output(0))
	n.Destroy()
	return true
}

// BranchSimplification splices the taken branch of an If whose condition
// is a literal into the surrounding block
type BranchSimplification struct{}

func (bs *BranchSimplification) Name() string { return "branch-simplification" }

func (bs *BranchSimplification) Description() string {
	return "Replace branches on constant conditions with the taken block"
}

func (bs *BranchSimplification) Apply(g *Graph) bool {
	changed := false
	blocks := []*Block{g.Block()}
	for len(blocks) > 0 {
		b := blocks[len(blocks)-1]
		blocks = blocks[:len(blocks)-1]
		n := b.First()
		for n != nil {
			next := n.Next()
			ifn, ok := n.(*IfNode)
			if !ok {
				blocks = append(blocks, n.Blocks()...)
				n = next
				continue
			}
			cond, ok := ifn.Input(0).Node().(*ConstantNode)
			if !ok || cond.Value().Kind() != rt.KindBool {
				blocks = append(blocks, n.Blocks()...)
				n = next
				continue
			}
			taken := ifn.Then()
			if !cond.Value().Bool() {
				taken = ifn.Else()
			}
			results := taken.Results()
			// Move the taken block's instructions in front of the If, then
			// rewire the If's outputs to the block's results.
			m := taken.First()
			for m != nil {
				mnext := m.Next()
				m.base().unlink()
				m.InsertBefore(ifn)
				m = mnext
			}
			for i, out := range ifn.Outputs() {
				if i < len(results) {
					out.ReplaceAllUsesWith(results[i])
				}
			}
			ifn.Destroy()
			changed = true
			n = next
		}
	}
	return changed
}

// ConstantPooling deduplicates equal constants, hoisting the canonical
// node to the head of the top block so it dominates every use
type ConstantPooling struct{}

func (cp *ConstantPooling) Name() string { return "constant-pooling" }

func (cp *ConstantPooling) Description() string {
	return "Share one constant node per distinct literal value"
}

func (cp *ConstantPooling) Apply(g *Graph) bool {
	changed := false
	canonical := make(map[string]*ConstantNode)
	blocks := []*Block{g.Block()}
	for len(blocks) > 0 {
		b := blocks[len(blocks)-1]
		blocks = blocks[:len(blocks)-1]
		n := b.First()
		for n != nil {
			next := n.Next()
			blocks = append(blocks, n.Blocks()...)
			if c, ok := n.(*ConstantNode); ok {
				key := c.Value().String() + "|" + c.Output(0).Type().String()
				if seen, ok := canonical[key]; ok {
					if seen.Block() != c.Block() {
						// The canonical node must dominate the merged use
						// sites; the head of the top block always does.
						g.Block().Prepend(seen)
					}
					c.Output(0).ReplaceAllUsesWith(seen.Output(0))
					c.Destroy()
					changed = true
				} else {
					canonical[key] = c
				}
			}
			n = next
		}
	}
	return changed
}

// DeadCodeElimination removes instructions with no side effects whose
// outputs are never consumed
type DeadCodeElimination struct{}

func (dce *DeadCodeElimination) Name() string { return "dead-code-elimination" }

func (dce *DeadCodeElimination) Description() string {
	return "Delete pure instructions whose results are unused"
}

func (dce *DeadCodeElimination) Apply(g *Graph) bool {
	return dce.sweep(g.Block())
}

// sweep walks a block backwards so consumers die before their producers,
// recursing into nested blocks first so an If whose body became empty can
// be removed in the same round.
func (dce *DeadCodeElimination) sweep(b *Block) bool {
	changed := false
	n := b.Last()
	for n != nil {
		prev := n.Prev()
		for _, nb := range n.Blocks() {
			if dce.sweep(nb) {
				changed = true
			}
		}
		if !HasSideEffects(n) && !anyOutputUsed(n) {
			n.Destroy()
			changed = true
		}
		n = prev
	}
	return changed
}

func anyOutputUsed(n Node) bool {
	for _, out := range n.Outputs() {
		if out.HasUses() {
			return true
		}
	}
	return false
}
