package symbol

import "go/token"

// Expr is implemented by every node in a Vensim right-hand-side expression
// tree. The tagged-variant discipline below mirrors teacher's smile/ast.go
// Node/Expr interfaces (Pos/End plus a private marker method) generalized
// from a small arithmetic-expression grammar to the full shape spec.md §3
// requires: lookups, tables, function calls with and without memory,
// logical operators, and subscripted variable references.
type Expr interface {
	Pos() token.Pos
	End() token.Pos
	exprNode()
}

// Op identifies a unary/binary/logical operator. Using a small int rather
// than re-using go/token.Token keeps this package independent of the exact
// set of Go operators, since Vensim's operator set (^ for exponentiation,
// <> for not-equal, :AND:/:OR:/:NOT:) doesn't line up with Go's.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpPow
	OpEq
	OpNeq
	OpLt
	OpLeq
	OpGt
	OpGeq
	OpAnd
	OpOr
	OpNot
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpPow:
		return "^"
	case OpEq:
		return "="
	case OpNeq:
		return "<>"
	case OpLt:
		return "<"
	case OpLeq:
		return "<="
	case OpGt:
		return ">"
	case OpGeq:
		return ">="
	case OpAnd:
		return ":AND:"
	case OpOr:
		return ":OR:"
	case OpNot:
		return ":NOT:"
	default:
		return "?"
	}
}

// Number is a floating point literal.
type Number struct {
	ValuePos token.Pos
	Value    float64
}

// Literal is a single- or double-quoted string literal appearing in an
// expression (e.g. a :TEST INPUT: label).
type Literal struct {
	ValuePos token.Pos
	Value    string
}

// VariableRef is a reference to a (possibly subscripted) variable.
type VariableRef struct {
	RefPos  token.Pos
	Var     *Variable
	Subs    *SymbolList // nil if unsubscripted
}

// SymbolListExpr is the RHS of a subscript-range definition
// ("Loc: (L1-L3)") or a subscript alias ("equiv").
type SymbolListExpr struct {
	ListPos token.Pos
	List    *SymbolList
	Map     *SymbolList // optional "->" map-range target
}

// NumberTable is a bulk constant-array literal produced by Vensim's
// TABBED ARRAY reader.
type NumberTable struct {
	TablePos token.Pos
	Values   []float64
}

// Unary is a unary +/- expression, or a :NOT: (Op == OpNot) built by the
// parser's NOT level. Per spec.md §4.3, unary +/- applied to
// a literal number folds directly into a Number during parsing, so a Unary
// node only ever wraps a non-literal child.
type Unary struct {
	OpPos token.Pos
	Op    Op
	X     Expr
}

// Binary is an arithmetic or relational binary expression.
type Binary struct {
	X     Expr
	OpPos token.Pos
	Op    Op
	Y     Expr
}

// Logical is an :AND:/:OR: expression (kept distinct from Binary so
// renderers and flow-walks can treat boolean algebra separately from
// arithmetic, per spec.md §3).
type Logical struct {
	X     Expr
	OpPos token.Pos
	Op    Op
	Y     Expr
}

// Paren is a parenthesized sub-expression. Kept as its own node (rather
// than discarded during parsing) so emission can reproduce the original
// grouping, per spec.md §4.3.
type Paren struct {
	Lparen token.Pos
	X      Expr
	Rparen token.Pos
}

// FunctionCall is a memoryless function invocation.
type FunctionCall struct {
	Fun    *FunctionDef
	Lparen token.Pos
	Args   []Expr
	Rparen token.Pos
}

// FunctionCallWithMemory is a function invocation that carries state
// between simulation steps (DELAY, SMOOTH, ...). Placeholder is populated
// by the placeholder-synthesis step (spec.md §4.3) when this call is not
// itself the root of a top-level equation.
type FunctionCallWithMemory struct {
	Fun         *FunctionDef
	Lparen      token.Pos
	Args        []Expr
	Rparen      token.Pos
	Placeholder *Variable
}

// Lookup is either `LOOKUP(table_var, x)` (VarLookup != nil) or the
// `WITH LOOKUP(x, (pairs))` inline form (Table != nil).
type Lookup struct {
	LookupPos token.Pos
	VarLookup *VariableRef
	X         Expr
	Table     *Table
	EndPos    token.Pos
}

// Table is a piecewise-linear (xs,ys) graphical function, with an optional
// bounding range and an extrapolate flag.
type Table struct {
	TablePos    token.Pos
	Xs, Ys      []float64
	Range       *Range2D
	Extrapolate bool
	EndPos      token.Pos
}

// Range2D is the optional "[(x1,y1)-(x2,y2)]" bounding box preceding a
// Table's (x,y) pairs. Vensim records but does not enforce it (spec.md
// §4.3 "Table ranges ... are recorded but not enforced").
type Range2D struct {
	X1, Y1, X2, Y2 float64
}

func (x *Number) Pos() token.Pos                 { return x.ValuePos }
func (x *Literal) Pos() token.Pos                 { return x.ValuePos }
func (x *VariableRef) Pos() token.Pos             { return x.RefPos }
func (x *SymbolListExpr) Pos() token.Pos          { return x.ListPos }
func (x *NumberTable) Pos() token.Pos             { return x.TablePos }
func (x *Unary) Pos() token.Pos                   { return x.OpPos }
func (x *Binary) Pos() token.Pos                  { return x.X.Pos() }
func (x *Logical) Pos() token.Pos                 { return x.X.Pos() }
func (x *Paren) Pos() token.Pos                   { return x.Lparen }
func (x *FunctionCall) Pos() token.Pos            { return x.Lparen }
func (x *FunctionCallWithMemory) Pos() token.Pos  { return x.Lparen }
func (x *Lookup) Pos() token.Pos                  { return x.LookupPos }
func (x *Table) Pos() token.Pos                   { return x.TablePos }

func (x *Number) End() token.Pos                { return x.ValuePos + 1 }
func (x *Literal) End() token.Pos               { return token.Pos(int(x.ValuePos) + len(x.Value)) }
func (x *VariableRef) End() token.Pos           { return token.Pos(int(x.RefPos) + len(x.Var.Name)) }
func (x *SymbolListExpr) End() token.Pos        { return x.ListPos + 1 }
func (x *NumberTable) End() token.Pos           { return x.TablePos + 1 }
func (x *Unary) End() token.Pos                 { return x.X.End() }
func (x *Binary) End() token.Pos                { return x.Y.End() }
func (x *Logical) End() token.Pos               { return x.Y.End() }
func (x *Paren) End() token.Pos                 { return x.Rparen + 1 }
func (x *FunctionCall) End() token.Pos          { return x.Rparen + 1 }
func (x *FunctionCallWithMemory) End() token.Pos { return x.Rparen + 1 }
func (x *Lookup) End() token.Pos                { return x.EndPos }
func (x *Table) End() token.Pos                 { return x.EndPos }

func (*Number) exprNode()                 {}
func (*Literal) exprNode()                {}
func (*VariableRef) exprNode()            {}
func (*SymbolListExpr) exprNode()         {}
func (*NumberTable) exprNode()            {}
func (*Unary) exprNode()                  {}
func (*Binary) exprNode()                 {}
func (*Logical) exprNode()                {}
func (*Paren) exprNode()                  {}
func (*FunctionCall) exprNode()           {}
func (*FunctionCallWithMemory) exprNode() {}
func (*Lookup) exprNode()                 {}
func (*Table) exprNode()                  {}
