package symbol

import "go/token"

// Introduction records which Vensim syntax form produced an Equation
// (spec.md §3).
type Introduction int

const (
	IntroAuxFlow       Introduction = iota // "="
	IntroSubrangeDef                       // ":"
	IntroLookupTable                       // "("
	IntroDataEquals                        // ":="
	IntroSubscriptAlias                    // "<->", "EQUIV"
	IntroStockInit                         // dt-normalized INTEG initial
)

// InterpMode is the interpolation mode tag on a left-hand side
// (:HOLD BACKWARD:, :LOOK FORWARD:, :INTERPOLATE:, :RAW:).
type InterpMode int

const (
	InterpDefault InterpMode = iota
	InterpHoldBackward
	InterpLookForward
	InterpInterpolate
	InterpRaw
)

// LeftHandSide is a variable reference, optional subscript tuple, optional
// except-list, and interpolation mode (spec.md §3).
type LeftHandSide struct {
	Var    *Variable
	Subs   *SymbolList
	Except *ExceptList
	Interp InterpMode

	// Cells is the cartesian expansion of Subs into one SymbolList per
	// concrete element combination, populated by the subscript-expansion
	// pass and consumed by the XMILE emitter's per-element <element
	// subscript="..."> loop.
	Cells []*SymbolList
}

// Equation is a left-hand side, a right-hand-side expression, and the
// token recording how it was introduced. Equations are owned by a
// Variable (spec.md §3).
type Equation struct {
	Pos     token.Pos
	LHS     LeftHandSide
	RHS     Expr
	Intro   Introduction
	Owner   *Variable
}
