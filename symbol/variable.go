package symbol

// Classification is the XMILE_Type enum from spec.md §3 / the original
// xmutil Variable.h (XMILE_Type_UNKNOWN..XMILE_Type_ARRAY_ELM).
type Classification int

const (
	Unknown Classification = iota
	Aux
	DelayAux
	Stock
	Flow
	Array
	ArrayElement
)

func (c Classification) String() string {
	switch c {
	case Unknown:
		return "unknown"
	case Aux:
		return "aux"
	case DelayAux:
		return "delay_aux"
	case Stock:
		return "stock"
	case Flow:
		return "flow"
	case Array:
		return "array"
	case ArrayElement:
		return "array_element"
	default:
		return "?"
	}
}

// VariableContent is the payload populated once an equation names a
// variable on its LHS: its equations, comment, alternate name, and units.
// It is created lazily (spec.md §3: "payload populated when an equation
// names it on the LHS") rather than at first reference, matching xmutil's
// VariableContentVar lifecycle.
type VariableContent struct {
	Equations     []*Equation
	Comment       string
	AlternateName string
	Units         *UnitExpression
}

// Variable is a namespace entry for a model variable, stock, flow, aux, or
// subscript family/element (spec.md §3).
type Variable struct {
	Symbol

	AlternateName string // derived long name, if any (pass (f))
	Comment       string
	Class         Classification

	Owner     *Variable   // array family this belongs to, if ArrayElement
	Subrange  []*Variable // child elements, if Array
	NElements int         // element count, used by the typing pass's ownership rule

	Inflows  []*Variable // only meaningful for Stock
	Outflows []*Variable

	View *View

	HasUpstream, HasDownstream bool // set during stock-flow resolution
	AsFlow                     bool // sketch decorated this as a flow
	UsesMemory                 bool

	Content *VariableContent
}

// NewVariable creates a bare variable symbol (no content yet) and inserts
// it into ns. Variables are created on first name reference (spec.md §3
// "Lifecycle").
func NewVariable(ns *Namespace, name string) *Variable {
	v := &Variable{Symbol: Symbol{Name: name, Kind: KindVariable}}
	v.Symbol.Owner = v
	ns.Insert(&v.Symbol)
	ns.AddUnconfirmed(&v.Symbol)
	return v
}

// EnsureContent lazily creates the VariableContent payload the first time
// an equation targets this variable.
func (v *Variable) EnsureContent() *VariableContent {
	if v.Content == nil {
		v.Content = &VariableContent{}
	}
	return v.Content
}

// AddEquation appends eq to this variable's equation list, creating the
// content payload if necessary.
func (v *Variable) AddEquation(eq *Equation) {
	c := v.EnsureContent()
	c.Equations = append(c.Equations, eq)
	eq.Owner = v
}

// Equations returns this variable's equation list, or nil if it has none.
func (v *Variable) Equations() []*Equation {
	if v.Content == nil {
		return nil
	}
	return v.Content.Equations
}

// InputVars collects every VariableRef inside this variable's equations'
// right-hand sides, used by semantic pass (e)'s link-completion step.
func (v *Variable) InputVars() []*Variable {
	var out []*Variable
	seen := make(map[*Variable]bool)
	for _, eq := range v.Equations() {
		walkVariableRefs(eq.RHS, func(ref *VariableRef) {
			if ref.Var != nil && ref.Var != v && !seen[ref.Var] {
				seen[ref.Var] = true
				out = append(out, ref.Var)
			}
		})
	}
	return out
}

// walkVariableRefs visits every VariableRef reachable from e.
func walkVariableRefs(e Expr, visit func(*VariableRef)) {
	if e == nil {
		return
	}
	switch x := e.(type) {
	case *VariableRef:
		visit(x)
	case *Unary:
		walkVariableRefs(x.X, visit)
	case *Binary:
		walkVariableRefs(x.X, visit)
		walkVariableRefs(x.Y, visit)
	case *Logical:
		walkVariableRefs(x.X, visit)
		walkVariableRefs(x.Y, visit)
	case *Paren:
		walkVariableRefs(x.X, visit)
	case *FunctionCall:
		for _, a := range x.Args {
			walkVariableRefs(a, visit)
		}
	case *FunctionCallWithMemory:
		for _, a := range x.Args {
			walkVariableRefs(a, visit)
		}
	case *Lookup:
		if x.VarLookup != nil {
			visit(x.VarLookup)
		}
		walkVariableRefs(x.X, visit)
	}
}
