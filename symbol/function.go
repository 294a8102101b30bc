package symbol

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// VariadicArity is the arity sentinel for functions that accept any number
// of arguments (spec.md §9: "Variadic arity is represented as a
// sentinel (-1)").
const VariadicArity = -1

// Renderer formats a function call for XMILE emission. The bool argument
// receives RenderEqn's initial flag (true inside a stock's initial-value
// equation). None of the registered renderers vary their output on it: a
// memory function renders all of its arguments in both contexts, and no
// INIT(...) subset is produced.
type Renderer func(args []string, active bool) string

// FunctionDef is a named built-in's static description: arity, which
// argument positions participate in the active vs. initial sub-expression
// of a memory function, whether it is time-dependent/a delay, and its
// XMILE renderer (spec.md §3 "Function", §9 "Function registry").
//
// Each built-in used to be its own xmutil C++ subclass (Function,
// DFunction, FunctionMemoryBase, UnknownFunction); here they are rows in a
// data table plus a renderer closure, per spec.md §9's explicit guidance
// to replace virtual dispatch with a tagged sum + closures.
type FunctionDef struct {
	Symbol

	Arity          int // VariadicArity for variadic
	ActiveArgMask  *bitset.BitSet
	InitArgMask    *bitset.BitSet
	TimeDependent  bool
	Delay          bool
	Render         Renderer
}

// Memoryless reports whether this function carries no simulation state
// across time steps, i.e. whether it is safe to treat as a pure
// FunctionCall rather than a FunctionCallWithMemory (spec.md §3: "A
// function is memoryless iff memory bitmask is empty and time-independent").
func (f *FunctionDef) Memoryless() bool {
	hasMask := (f.ActiveArgMask != nil && f.ActiveArgMask.Count() > 0) ||
		(f.InitArgMask != nil && f.InitArgMask.Count() > 0)
	return !hasMask && !f.TimeDependent
}

// Registry is a lookup table of built-in Vensim functions.
type Registry struct {
	byName map[string]*FunctionDef
}

// NewRegistry builds the standard built-in function table.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]*FunctionDef)}
	for _, def := range standardFunctions() {
		r.Register(def)
	}
	return r
}

// Register adds or replaces a function definition by (normalized) name.
func (r *Registry) Register(def *FunctionDef) {
	if key, ok := Normalize(def.Name); ok {
		r.byName[key] = def
	}
}

// NewUnknownFunction synthesizes a placeholder definition for a call whose
// name is not in the registry: variadic, memoryless, and rendered
// verbatim so the untranslated call still round-trips into the output
// (spec.md §9 "UnknownFunction preserves source text untranslated").
func NewUnknownFunction(name string) *FunctionDef {
	return &FunctionDef{
		Symbol: Symbol{Name: name, Kind: KindFunction},
		Arity:  VariadicArity,
		Render: memoryRenderer(name),
	}
}

// Lookup finds a function by raw name, or nil if it is not a known
// built-in (the caller should then synthesize an UnknownFunction that
// preserves the source text untranslated, spec.md §9).
func (r *Registry) Lookup(name string) *FunctionDef {
	key, ok := Normalize(name)
	if !ok {
		return nil
	}
	return r.byName[key]
}

// maskOf builds a bitset with bits set at the given 0-based argument
// positions.
func maskOf(positions ...uint) *bitset.BitSet {
	b := bitset.New(8)
	for _, p := range positions {
		b.Set(p)
	}
	return b
}

func joinArgs(args []string, sep string) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += sep
		}
		out += a
	}
	return out
}

func memoryRenderer(name string) Renderer {
	return func(args []string, active bool) string {
		return name + "(" + joinArgs(args, ", ") + ")"
	}
}

// rewriteRenderer returns a Renderer that applies rewrite when called with
// exactly arity arguments (the well-formed case) and otherwise falls back
// to a plain fallbackName(args) passthrough (spec.md §4.5 "RHS formatting").
func rewriteRenderer(fallbackName string, arity int, rewrite func(args []string) string) Renderer {
	return func(args []string, active bool) string {
		if len(args) == arity {
			return rewrite(args)
		}
		return fallbackName + "(" + joinArgs(args, ", ") + ")"
	}
}

// standardFunctions returns the built-in table, grounded on xmutil
// Function/Function.cpp and the rewrite list named in spec.md §4.5.
func standardFunctions() []*FunctionDef {
	fn := func(name string, arity int, render Renderer) *FunctionDef {
		return &FunctionDef{
			Symbol: Symbol{Name: name, Kind: KindFunction},
			Arity:  arity,
			Render: render,
		}
	}
	memFn := func(name string, arity int, active, init []uint, timeDep bool, render Renderer) *FunctionDef {
		if render == nil {
			render = memoryRenderer(name)
		}
		return &FunctionDef{
			Symbol:        Symbol{Name: name, Kind: KindFunction},
			Arity:         arity,
			ActiveArgMask: maskOf(active...),
			InitArgMask:   maskOf(init...),
			TimeDependent: timeDep,
			Delay:         true,
			Render:        render,
		}
	}

	return []*FunctionDef{
		fn("ABS", 1, memoryRenderer("ABS")),
		fn("MIN", 2, memoryRenderer("MIN")),
		fn("MAX", 2, memoryRenderer("MAX")),
		fn("EXP", 1, memoryRenderer("EXP")),
		fn("SQRT", 1, memoryRenderer("SQRT")),
		fn("LN", 1, memoryRenderer("LN")),
		fn("SIN", 1, memoryRenderer("SIN")),
		fn("COS", 1, memoryRenderer("COS")),
		fn("TAN", 1, memoryRenderer("TAN")),
		fn("STEP", 2, func(args []string, active bool) string {
			return "( IF TIME >= (" + args[1] + ") THEN (" + args[0] + ") ELSE 0 )"
		}),
		fn("PULSE", 2, func(args []string, active bool) string {
			return "( IF TIME >= (" + args[0] + ") AND TIME < ((" + args[0] + ") + MAX(DT, " + args[1] + ")) THEN 1 ELSE 0 )"
		}),
		fn("IF THEN ELSE", 3, func(args []string, active bool) string {
			return "( IF " + args[0] + " THEN " + args[1] + " ELSE " + args[2] + " )"
		}),
		fn("PULSE TRAIN", 4, rewriteRenderer("PULSE TRAIN", 4, func(a []string) string {
			return fmt.Sprintf("( IF TIME >= (%s) AND TIME <= (%s) AND (TIME - (%s)) MOD (%s) < (%s) THEN 1 ELSE 0 )", a[0], a[3], a[0], a[2], a[1])
		})),
		fn("SAMPLE IF TRUE", 3, rewriteRenderer("SAMPLE IF TRUE", 3, func(a []string) string {
			return fmt.Sprintf("( IF %s THEN %s ELSE PREVIOUS(SELF, %s) )", a[0], a[1], a[2])
		})),
		fn("QUANTUM", 2, rewriteRenderer("QUANTUM", 2, func(a []string) string {
			return fmt.Sprintf("(%s)*INT((%s)/(%s))", a[1], a[0], a[1])
		})),
		fn("RANDOM NORMAL", 5, rewriteRenderer("RANDOM NORMAL", 5, func(a []string) string {
			return fmt.Sprintf("NORMAL(%s, %s, %s, %s, %s)", a[2], a[3], a[4], a[0], a[1])
		})),
		fn("RANDOM POISSON", 5, func(args []string, active bool) string {
			if len(args) == 6 {
				return fmt.Sprintf("(POISSON((%s)/DT, %s, %s, %s) * %s + %s)", args[2], args[5], args[0], args[1], args[4], args[3])
			}
			return "RANDOM POISSON(" + joinArgs(args, ", ") + ")"
		}),
		fn("TIME BASE", 2, rewriteRenderer("TIME BASE", 2, func(a []string) string {
			return fmt.Sprintf("%s + (%s) * TIME", a[0], a[1])
		})),
		fn("LOOKUP EXTRAPOLATE", 2, memoryRenderer("LOOKUP EXTRAPOLATE")),
		fn("WITH LOOKUP", 2, memoryRenderer("WITH LOOKUP")),
		fn("A FUNCTION OF", VariadicArity, memoryRenderer("A FUNCTION OF")),
		fn("TABBED ARRAY", VariadicArity, memoryRenderer("TABBED ARRAY")),
		fn("GET XLS", VariadicArity, memoryRenderer("GET XLS")),
		fn("GET DIRECT", VariadicArity, memoryRenderer("GET DIRECT")),
		fn("LOG", 2, rewriteRenderer("LOG", 2, func(a []string) string {
			return fmt.Sprintf("(LN(%s) / LN(%s))", a[0], a[1])
		})),

		// memory (stateful) functions: the two masks list the argument
		// positions of the active and of the initial sub-expression.
		memFn("INTEG", 2, []uint{0}, []uint{1}, false, nil),
		memFn("SINTEG", 2, []uint{0}, []uint{1}, false, nil),
		memFn("DELAY1", 2, []uint{0, 1}, []uint{0}, false, nil),
		memFn("DELAY3", 2, []uint{0, 1}, []uint{0}, false, nil),
		memFn("DELAY N", 4, []uint{0, 1}, []uint{0}, false, rewriteRenderer("DELAYN", 4, func(a []string) string {
			return fmt.Sprintf("DELAYN(%s,%s,%s,%s)", a[0], a[1], a[3], a[2])
		})),
		memFn("SMOOTH", 2, []uint{0, 1}, []uint{0}, false, nil),
		memFn("SMOOTH3", 2, []uint{0, 1}, []uint{0}, false, nil),
		memFn("SMOOTH N", 4, []uint{0, 1}, []uint{0}, false, rewriteRenderer("SMOOTHN", 4, func(a []string) string {
			return fmt.Sprintf("SMOOTHN(%s,%s,%s,%s)", a[0], a[1], a[3], a[2])
		})),
		memFn("TREND", 3, []uint{0, 1}, []uint{2}, true, nil),
		memFn("NPV", 4, []uint{0, 1, 2}, []uint{3}, true, nil),
	}
}
