package semantic

import "github.com/sdxlate/vxmile/symbol"

// ExpandSubscripts is pass (c): for every equation whose left-hand side
// carries a subscript tuple, compute the cartesian expansion into
// concrete element combinations, dropping any combination named in an
// :EXCEPT: clause (spec.md §4.4(c)).
func ExpandSubscripts(ctx *Context) {
	for _, v := range ctx.Variables() {
		for _, eq := range v.Equations() {
			if eq.LHS.Subs == nil {
				continue
			}
			cells := cartesianExpand(eq.LHS.Subs)
			if eq.LHS.Except != nil {
				cells = dropExcepted(cells, eq.LHS.Except)
			}
			eq.LHS.Cells = cells
		}
	}
}

func dropExcepted(cells []*symbol.SymbolList, except *symbol.ExceptList) []*symbol.SymbolList {
	var out []*symbol.SymbolList
	for _, cell := range cells {
		excluded := false
		for _, tuple := range except.Tuples {
			if tupleEqual(cell, tuple) {
				excluded = true
				break
			}
		}
		if !excluded {
			out = append(out, cell)
		}
	}
	return out
}

func tupleEqual(a, b *symbol.SymbolList) bool {
	af, bf := a.Flatten(), b.Flatten()
	if len(af) != len(bf) {
		return false
	}
	for i := range af {
		if af[i] != bf[i] {
			return false
		}
	}
	return true
}
