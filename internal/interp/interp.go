// Package interp evaluates method graphs directly. It is the reference
// for what a graph means: transformation tests run a method before and
// after a rewrite and compare results. Evaluation is a straight walk of
// the instruction list with an environment mapping values to runtime
// values, and method calls are looked up dynamically on the receiving
// instance.
package interp

import (
	"fmt"

	"frost/internal/graph"
	"frost/internal/module"
	"frost/internal/rt"
)

// maxDepth bounds method call nesting. The builder rejects recursive
// methods, so hitting this limit means a hand-built graph cycle.
const maxDepth = 128

// Run evaluates the named method on the hierarchy's root instance.
func Run(h *module.Hierarchy, method string, args []rt.Value) ([]rt.Value, error) {
	m := h.Method(h.Root(), method)
	if m == nil {
		return nil, fmt.Errorf("module %s has no method %s", h.Type(h.Root()).QualifiedName(), method)
	}
	ev := &evaluator{h: h}
	return ev.call(h.Root(), m.Graph(), args, 0)
}

type evaluator struct {
	h *module.Hierarchy
}

func (ev *evaluator) call(recv rt.ModuleRef, g *graph.Graph, args []rt.Value, depth int) ([]rt.Value, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("call depth exceeded %d levels", maxDepth)
	}
	params := g.Inputs()
	if len(args)+1 != len(params) {
		return nil, fmt.Errorf("method takes %d arguments, got %d", len(params)-1, len(args))
	}
	env := make(map[*graph.Value]rt.Value)
	env[params[0]] = rt.Module(recv)
	for i, arg := range args {
		env[params[i+1]] = arg
	}
	if err := ev.runBlock(g.Block(), env, depth); err != nil {
		return nil, err
	}
	return ev.blockResults(g.Block(), env)
}

func (ev *evaluator) blockResults(b *graph.Block, env map[*graph.Value]rt.Value) ([]rt.Value, error) {
	results := b.Results()
	out := make([]rt.Value, len(results))
	for i, r := range results {
		v, err := ev.lookup(env, r)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (ev *evaluator) runBlock(b *graph.Block, env map[*graph.Value]rt.Value, depth int) error {
	for n := b.First(); n != nil; n = n.Next() {
		if err := ev.runNode(n, env, depth); err != nil {
			return err
		}
	}
	return nil
}

func (ev *evaluator) runNode(n graph.Node, env map[*graph.Value]rt.Value, depth int) error {
	switch n := n.(type) {
	case *graph.ConstantNode:
		env[n.Output(0)] = n.Value()

	case *graph.GetAttrNode:
		ref, err := ev.receiver(env, n.Receiver())
		if err != nil {
			return err
		}
		v, ok := ev.h.Attr(ref, n.Attr())
		if !ok {
			return fmt.Errorf("module %s has no attribute %q", ev.h.Type(ref).QualifiedName(), n.Attr())
		}
		env[n.Output(0)] = v

	case *graph.SetAttrNode:
		ref, err := ev.receiver(env, n.Receiver())
		if err != nil {
			return err
		}
		v, err := ev.lookup(env, n.Input(1))
		if err != nil {
			return err
		}
		if !ev.h.SetAttr(ref, n.Attr(), v) {
			return fmt.Errorf("cannot assign undeclared attribute %q on %s", n.Attr(), ev.h.Type(ref).QualifiedName())
		}

	case *graph.BinaryNode:
		lhs, err := ev.lookup(env, n.Input(0))
		if err != nil {
			return err
		}
		rhs, err := ev.lookup(env, n.Input(1))
		if err != nil {
			return err
		}
		v, err := rt.EvalBinary(n.Op(), lhs, rhs)
		if err != nil {
			return err
		}
		env[n.Output(0)] = v

	case *graph.TupleNode:
		elems := make([]rt.Value, n.NumInputs())
		for i := range elems {
			v, err := ev.lookup(env, n.Input(i))
			if err != nil {
				return err
			}
			elems[i] = v
		}
		env[n.Output(0)] = rt.Tuple(elems...)

	case *graph.UnpackNode:
		v, err := ev.lookup(env, n.Input(0))
		if err != nil {
			return err
		}
		if v.Kind() != rt.KindTuple {
			return fmt.Errorf("cannot unpack %s value", v.Kind())
		}
		elems := v.Elems()
		if len(elems) != n.NumOutputs() {
			return fmt.Errorf("tuple has %d elements, expected %d", len(elems), n.NumOutputs())
		}
		for i, e := range elems {
			env[n.Output(i)] = e
		}

	case *graph.CallMethodNode:
		ref, err := ev.receiver(env, n.Input(0))
		if err != nil {
			return err
		}
		m := ev.h.Method(ref, n.Method())
		if m == nil {
			return fmt.Errorf("module %s has no method %s", ev.h.Type(ref).QualifiedName(), n.Method())
		}
		args := make([]rt.Value, 0, n.NumInputs()-1)
		for i := 1; i < n.NumInputs(); i++ {
			v, err := ev.lookup(env, n.Input(i))
			if err != nil {
				return err
			}
			args = append(args, v)
		}
		rets, err := ev.call(ref, m.Graph(), args, depth+1)
		if err != nil {
			return err
		}
		if len(rets) != n.NumOutputs() {
			return fmt.Errorf("method %s returned %d values, expected %d", n.Method(), len(rets), n.NumOutputs())
		}
		for i, r := range rets {
			env[n.Output(i)] = r
		}

	case *graph.IfNode:
		cond, err := ev.lookup(env, n.Input(0))
		if err != nil {
			return err
		}
		if cond.Kind() != rt.KindBool {
			return fmt.Errorf("branch condition is %s, not bool", cond.Kind())
		}
		taken := n.Then()
		if !cond.Bool() {
			taken = n.Else()
		}
		if err := ev.runBlock(taken, env, depth); err != nil {
			return err
		}
		results, err := ev.blockResults(taken, env)
		if err != nil {
			return err
		}
		if len(results) != n.NumOutputs() {
			return fmt.Errorf("branch yields %d values, expected %d", len(results), n.NumOutputs())
		}
		for i, r := range results {
			env[n.Output(i)] = r
		}

	default:
		return fmt.Errorf("cannot evaluate %s instruction", n.Kind())
	}
	return nil
}

func (ev *evaluator) receiver(env map[*graph.Value]rt.Value, v *graph.Value) (rt.ModuleRef, error) {
	val, err := ev.lookup(env, v)
	if err != nil {
		return rt.NoModule, err
	}
	if !val.IsModule() {
		return rt.NoModule, fmt.Errorf("receiver %%%s is %s, not a module", v.DebugName(), val.Kind())
	}
	return val.Module(), nil
}

func (ev *evaluator) lookup(env map[*graph.Value]rt.Value, v *graph.Value) (rt.Value, error) {
	if val, ok := env[v]; ok {
		return val, nil
	}
	return rt.Value{}, fmt.Errorf("value %%%s used before it is defined", v.DebugName())
}
