package semantic

import (
	"fmt"
	"strings"

	"github.com/sdxlate/vxmile/symbol"
)

// MarkTypes is pass (a): classify every variable by inspecting its
// equations (spec.md §4.4(a)).
func MarkTypes(ctx *Context) {
	for _, v := range ctx.Variables() {
		for _, eq := range v.Equations() {
			switch rhs := eq.RHS.(type) {
			case *symbol.SymbolListExpr:
				v.Class = symbol.Array
				claimArrayElements(v, rhs.List)

			case *symbol.NumberTable:
				if eq.LHS.Subs != nil {
					expandNumberTableEquation(ctx, v, eq, rhs)
				}

			case *symbol.FunctionCallWithMemory:
				if isIntegCall(rhs.Fun.Name) {
					v.Class = symbol.Stock
				}

			case *symbol.FunctionCall:
				if strings.EqualFold(strings.TrimSpace(rhs.Fun.Name), "LOOKUP EXTRAPOLATE") && len(rhs.Args) > 0 {
					propagateExtrapolate(rhs.Args[0])
				}
			}
		}

		if v.Class == symbol.Unknown {
			if hasDelay(v) {
				v.Class = symbol.DelayAux
			} else if v.AsFlow {
				v.Class = symbol.Flow
			} else {
				v.Class = symbol.Aux
			}
		}
	}
}

func isIntegCall(name string) bool {
	name = strings.TrimSpace(name)
	return strings.EqualFold(name, "INTEG") || strings.EqualFold(name, "SINTEG")
}

// claimArrayElements assigns ownership of every bare symbol in list to
// owner, but only where owner's claimed element count exceeds any prior
// owner's (spec.md §4.4(a) "claims ownership ... if the array's element
// count exceeds any prior owner's").
func claimArrayElements(owner *symbol.Variable, list *symbol.SymbolList) {
	leaves := list.Flatten()
	count := len(leaves)
	for _, sym := range leaves {
		elem, ok := sym.Owner.(*symbol.Variable)
		if !ok {
			continue
		}
		if elem.Owner == nil || count > elem.Owner.NElements {
			elem.Owner = owner
			elem.Class = symbol.ArrayElement
		}
	}
	if count > owner.NElements {
		owner.NElements = count
		owner.Subrange = nil
		for _, sym := range leaves {
			if elem, ok := sym.Owner.(*symbol.Variable); ok {
				owner.Subrange = append(owner.Subrange, elem)
			}
		}
	}
}

// cartesianExpand turns a multi-dimensional subscript tuple (each entry
// either a bare element or a dimension family) into the flat list of
// per-element SymbolLists it denotes, in row-major order (spec.md
// §4.4(c) "cartesian expansion").
func cartesianExpand(subs *symbol.SymbolList) []*symbol.SymbolList {
	if subs == nil {
		return nil
	}
	var dims [][]*symbol.Symbol
	for _, e := range subs.Entries {
		if e.Nested != nil {
			dims = append(dims, e.Nested.Flatten())
			continue
		}
		if e.Sym == nil {
			continue
		}
		if v, ok := e.Sym.Owner.(*symbol.Variable); ok && v.Class == symbol.Array && len(v.Subrange) > 0 {
			leaves := make([]*symbol.Symbol, len(v.Subrange))
			for i, elem := range v.Subrange {
				leaves[i] = &elem.Symbol
			}
			dims = append(dims, leaves)
		} else {
			dims = append(dims, []*symbol.Symbol{e.Sym})
		}
	}
	return product(dims)
}

func product(dims [][]*symbol.Symbol) []*symbol.SymbolList {
	if len(dims) == 0 {
		return nil
	}
	out := []*symbol.SymbolList{symbol.NewSymbolList()}
	for _, dim := range dims {
		var next []*symbol.SymbolList
		for _, prefix := range out {
			for _, sym := range dim {
				l := symbol.NewSymbolList()
				l.Entries = append(l.Entries, prefix.Entries...)
				l.Append(sym, false)
				next = append(next, l)
			}
		}
		out = next
	}
	return out
}

// expandNumberTableEquation splits a subscripted TABBED ARRAY equation
// into one scalar equation per subscript tuple (spec.md §4.4(a)).
func expandNumberTableEquation(ctx *Context, v *symbol.Variable, eq *symbol.Equation, table *symbol.NumberTable) {
	tuples := cartesianExpand(eq.LHS.Subs)
	if len(tuples) != len(table.Values) {
		ctx.Errorf("variable %q: tabbed array has %d values but %d subscript cells", v.Name, len(table.Values), len(tuples))
		return
	}
	v.EnsureContent().Equations = nil
	for i, tuple := range tuples {
		scalarEq := &symbol.Equation{
			Pos: eq.Pos,
			LHS: symbol.LeftHandSide{Var: v, Subs: tuple, Interp: eq.LHS.Interp},
			RHS: &symbol.Number{Value: table.Values[i]},
			Intro: eq.Intro,
		}
		v.AddEquation(scalarEq)
	}
}

// propagateExtrapolate marks the Table belonging to the variable e
// references as extrapolating (spec.md §4.4(a) "LOOKUP EXTRAPOLATE
// propagate extrapolate=true").
func propagateExtrapolate(e symbol.Expr) {
	ref, ok := e.(*symbol.VariableRef)
	if !ok {
		return
	}
	for _, eq := range ref.Var.Equations() {
		if t, ok := eq.RHS.(*symbol.Table); ok {
			t.Extrapolate = true
		}
		if l, ok := eq.RHS.(*symbol.Lookup); ok && l.Table != nil {
			l.Table.Extrapolate = true
		}
	}
}

// hasDelay reports whether any function call reachable from v's equations
// carries simulation memory and is time-dependent (spec.md §4.4(a)
// "DelayAux").
func hasDelay(v *symbol.Variable) bool {
	found := false
	for _, eq := range v.Equations() {
		walkCalls(eq.RHS, func(fn *symbol.FunctionDef) {
			if fn.Delay && fn.TimeDependent {
				found = true
			}
		})
	}
	return found
}

// walkCalls visits every FunctionDef reachable from e, through both
// memoryless and memory-carrying calls.
func walkCalls(e symbol.Expr, visit func(*symbol.FunctionDef)) {
	switch x := e.(type) {
	case nil:
	case *symbol.Unary:
		walkCalls(x.X, visit)
	case *symbol.Binary:
		walkCalls(x.X, visit)
		walkCalls(x.Y, visit)
	case *symbol.Logical:
		walkCalls(x.X, visit)
		walkCalls(x.Y, visit)
	case *symbol.Paren:
		walkCalls(x.X, visit)
	case *symbol.FunctionCall:
		visit(x.Fun)
		for _, a := range x.Args {
			walkCalls(a, visit)
		}
	case *symbol.FunctionCallWithMemory:
		visit(x.Fun)
		for _, a := range x.Args {
			walkCalls(a, visit)
		}
	case *symbol.Lookup:
		walkCalls(x.X, visit)
	}
}

// SynthesizePlaceholders walks every equation's RHS and gives each
// non-root FunctionCallWithMemory a stable identity: a fresh anonymous
// variable whose own equation is the memory call, with the original site
// rewritten to reference it (spec.md §4.3 "Placeholder synthesis").
func SynthesizePlaceholders(ctx *Context) {
	counter := 0
	for _, v := range ctx.Variables() {
		for _, eq := range v.Equations() {
			eq.RHS = rewriteMemoryCalls(ctx, eq.RHS, true, &counter)
		}
	}
}

func rewriteMemoryCalls(ctx *Context, e symbol.Expr, isRoot bool, counter *int) symbol.Expr {
	switch x := e.(type) {
	case nil:
		return nil
	case *symbol.Unary:
		x.X = rewriteMemoryCalls(ctx, x.X, false, counter)
		return x
	case *symbol.Binary:
		x.X = rewriteMemoryCalls(ctx, x.X, false, counter)
		x.Y = rewriteMemoryCalls(ctx, x.Y, false, counter)
		return x
	case *symbol.Logical:
		x.X = rewriteMemoryCalls(ctx, x.X, false, counter)
		x.Y = rewriteMemoryCalls(ctx, x.Y, false, counter)
		return x
	case *symbol.Paren:
		x.X = rewriteMemoryCalls(ctx, x.X, false, counter)
		return x
	case *symbol.FunctionCall:
		for i := range x.Args {
			x.Args[i] = rewriteMemoryCalls(ctx, x.Args[i], false, counter)
		}
		return x
	case *symbol.Lookup:
		x.X = rewriteMemoryCalls(ctx, x.X, false, counter)
		return x
	case *symbol.FunctionCallWithMemory:
		for i := range x.Args {
			x.Args[i] = rewriteMemoryCalls(ctx, x.Args[i], false, counter)
		}
		if isRoot {
			return x
		}
		*counter++
		name := fmt.Sprintf("__delay_placeholder_%d", *counter)
		ph := symbol.NewVariable(ctx.NS, name)
		ph.UsesMemory = true
		phEq := &symbol.Equation{LHS: symbol.LeftHandSide{Var: ph}, RHS: x, Intro: symbol.IntroAuxFlow}
		ph.AddEquation(phEq)
		x.Placeholder = ph
		return &symbol.VariableRef{Var: ph}
	default:
		return e
	}
}
