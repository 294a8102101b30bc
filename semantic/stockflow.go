package semantic

import (
	"fmt"

	"github.com/sdxlate/vxmile/symbol"
)

// ResolveStockFlows is pass (b): decompose each stock's INTEG active part
// into inflows/outflows, or synthesize a net-flow variable when the
// decomposition fails or disagrees across a subscripted stock's equations
// (spec.md §4.4(b)).
func ResolveStockFlows(ctx *Context) {
	for _, v := range ctx.Variables() {
		if v.Class == symbol.Stock {
			resolveStock(ctx, v)
		}
	}
}

func resolveStock(ctx *Context, v *symbol.Variable) {
	var ins, outs []*symbol.Variable
	have := false
	consistent := true

	for _, eq := range v.Equations() {
		call, ok := eq.RHS.(*symbol.FunctionCallWithMemory)
		if !ok || len(call.Args) == 0 {
			consistent = false
			continue
		}
		eqIns, eqOuts, ok := decomposeFlows(call.Args[0])
		if !ok {
			consistent = false
			continue
		}
		if !have {
			ins, outs = eqIns, eqOuts
			have = true
			continue
		}
		if !sameVarSet(ins, eqIns) || !sameVarSet(outs, eqOuts) {
			consistent = false
		}
	}

	if consistent && have {
		attachFlows(v, ins, outs)
		return
	}
	synthesizeNetFlow(ctx, v)
}

// decomposeFlows walks the unary/binary +/- tree of a stock's active part
// and classifies each leaf VariableRef as an inflow or outflow by the
// parity of the minus signs above it (spec.md §4.4(b)).
func decomposeFlows(e symbol.Expr) (ins, outs []*symbol.Variable, ok bool) {
	ok = true
	seen := make(map[*symbol.Variable]bool)

	var walk func(e symbol.Expr, neg bool)
	walk = func(e symbol.Expr, neg bool) {
		if !ok {
			return
		}
		switch x := e.(type) {
		case *symbol.Paren:
			walk(x.X, neg)
		case *symbol.Unary:
			switch x.Op {
			case symbol.OpAdd:
				walk(x.X, neg)
			case symbol.OpSub:
				walk(x.X, !neg)
			default:
				ok = false
			}
		case *symbol.Binary:
			switch x.Op {
			case symbol.OpAdd:
				walk(x.X, neg)
				walk(x.Y, neg)
			case symbol.OpSub:
				walk(x.X, neg)
				walk(x.Y, !neg)
			default:
				ok = false
			}
		case *symbol.VariableRef:
			if x.Var == nil || seen[x.Var] || x.Var.Class == symbol.Stock {
				ok = false
				return
			}
			seen[x.Var] = true
			if neg {
				outs = append(outs, x.Var)
			} else {
				ins = append(ins, x.Var)
			}
		default:
			ok = false
		}
	}
	walk(e, false)
	if !ok {
		return nil, nil, false
	}
	return ins, outs, true
}

func sameVarSet(a, b []*symbol.Variable) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[*symbol.Variable]bool, len(a))
	for _, v := range a {
		set[v] = true
	}
	for _, v := range b {
		if !set[v] {
			return false
		}
	}
	return true
}

// attachFlows promotes each leaf to Flow and records the upstream/
// downstream direction flags a later stock sharing the same flow needs to
// pick the correct sign (spec.md §4.4(b)).
func attachFlows(v *symbol.Variable, ins, outs []*symbol.Variable) {
	for _, f := range ins {
		f.Class = symbol.Flow
		f.HasDownstream = true
	}
	for _, f := range outs {
		f.Class = symbol.Flow
		f.HasUpstream = true
	}
	v.Inflows = append(v.Inflows, ins...)
	v.Outflows = append(v.Outflows, outs...)
}

// synthesizeNetFlow replaces an undecomposable stock's active part with a
// reference to a single fresh "<stock> net flow" variable carrying the
// original expression (spec.md §4.4(b)).
func synthesizeNetFlow(ctx *Context, v *symbol.Variable) {
	name := uniqueName(ctx, v.Name+" net flow")
	flow := symbol.NewVariable(ctx.NS, name)
	flow.Class = symbol.Flow
	flow.HasDownstream = true

	for _, eq := range v.Equations() {
		call, ok := eq.RHS.(*symbol.FunctionCallWithMemory)
		if !ok || len(call.Args) == 0 {
			continue
		}
		flowEq := &symbol.Equation{
			Pos:   eq.Pos,
			LHS:   symbol.LeftHandSide{Var: flow, Subs: eq.LHS.Subs},
			RHS:   call.Args[0],
			Intro: symbol.IntroAuxFlow,
		}
		flow.AddEquation(flowEq)
		call.Args[0] = &symbol.VariableRef{Var: flow, RefPos: eq.Pos}
	}

	v.Inflows = []*symbol.Variable{flow}
	v.Outflows = nil
}

func uniqueName(ctx *Context, base string) string {
	if ctx.NS.Find(base) == nil {
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s %d", base, i)
		if ctx.NS.Find(candidate) == nil {
			return candidate
		}
	}
}
