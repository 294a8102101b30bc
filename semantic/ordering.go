package semantic

import "github.com/sdxlate/vxmile/symbol"

// EqClass is the compute-order classification pass (d) assigns to a
// variable's equation (spec.md §4.4(d)).
type EqClass int

const (
	EqUnchanging EqClass = iota // no time-varying input, safe to fold to a constant
	EqInitial                   // feeds a stock's initial value only
	EqActive                    // recomputed every step
	EqRate                      // a stock's integration, or a flow feeding one
)

func (c EqClass) String() string {
	switch c {
	case EqUnchanging:
		return "unchanging"
	case EqInitial:
		return "initial"
	case EqActive:
		return "active"
	case EqRate:
		return "rate"
	default:
		return "?"
	}
}

type visitState int

const (
	unvisited visitState = iota
	visiting
	done
)

// OrderEquations is pass (d), optional: classify every variable by a
// recursive descent over its inputs, keyed by a per-variable compute
// flag that detects algebraic loops. Stocks are treated as terminal:
// descent does not recurse into them (spec.md §4.4(d)). This pass isn't
// needed to emit XMILE and callers may skip it.
func OrderEquations(ctx *Context) {
	state := make(map[*symbol.Variable]visitState)
	ctx.Classes = make(map[*symbol.Variable]EqClass)

	var classify func(v *symbol.Variable) EqClass
	classify = func(v *symbol.Variable) EqClass {
		switch state[v] {
		case done:
			return ctx.Classes[v]
		case visiting:
			ctx.Errorf("simultaneous equations involving %q", v.Name)
			state[v] = done
			ctx.Classes[v] = EqActive
			return EqActive
		}
		state[v] = visiting

		if v.Class == symbol.Stock {
			state[v] = done
			ctx.Classes[v] = EqRate
			return EqRate
		}

		varies := false
		for _, in := range v.InputVars() {
			if in.Class == symbol.Stock {
				varies = true
				continue
			}
			if classify(in) != EqUnchanging {
				varies = true
			}
		}

		var class EqClass
		switch {
		case v.Class == symbol.Flow:
			class = EqRate
		case varies:
			class = EqActive
		default:
			class = EqUnchanging
		}

		state[v] = done
		ctx.Classes[v] = class
		return class
	}

	for _, v := range ctx.Variables() {
		classify(v)
	}
}
