package xmile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sdxlate/vxmile/symbol"
)

// RenderEqn walks an expression tree and produces the XMILE eqn string
// the emitter embeds in a <eqn> element. initial selects the
// initial-value rendering used inside a stock's own initialization
// (spec.md §4.5 "RHS formatting").
func RenderEqn(e symbol.Expr, initial bool) string {
	return renderNode(e, initial)
}

func renderNode(e symbol.Expr, initial bool) string {
	switch x := e.(type) {
	case nil:
		return ""
	case *symbol.Number:
		return formatNumber(x.Value)
	case *symbol.Literal:
		return `"` + x.Value + `"`
	case *symbol.VariableRef:
		return renderVarRef(x)
	case *symbol.Unary:
		op := "+"
		switch x.Op {
		case symbol.OpSub:
			op = "-"
		case symbol.OpNot:
			op = "NOT "
		}
		return op + renderNode(x.X, initial)
	case *symbol.Binary:
		return fmt.Sprintf("(%s %s %s)", renderNode(x.X, initial), x.Op.String(), renderNode(x.Y, initial))
	case *symbol.Logical:
		return fmt.Sprintf("(%s %s %s)", renderNode(x.X, initial), logicalWord(x.Op), renderNode(x.Y, initial))
	case *symbol.Paren:
		return "(" + renderNode(x.X, initial) + ")"
	case *symbol.FunctionCall:
		return renderCall(x.Fun, argStrings(x.Args, initial), initial)
	case *symbol.FunctionCallWithMemory:
		if x.Placeholder != nil {
			return xmileName(x.Placeholder.Name)
		}
		return renderCall(x.Fun, argStrings(x.Args, initial), initial)
	case *symbol.Lookup:
		if x.VarLookup != nil {
			return fmt.Sprintf("%s(%s)", xmileName(x.VarLookup.Var.Name), renderNode(x.X, initial))
		}
		// An inline WITH LOOKUP table not at a variable's equation root
		// has no XMILE equivalent; emit just the argument and let the
		// variable's own <gf> (set from the enclosing equation, see
		// emit.go) carry the table.
		return renderNode(x.X, initial)
	default:
		return ""
	}
}

func argStrings(args []symbol.Expr, initial bool) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = renderNode(a, initial)
	}
	return out
}

func logicalWord(op symbol.Op) string {
	switch op {
	case symbol.OpAnd:
		return "AND"
	case symbol.OpOr:
		return "OR"
	default:
		return op.String()
	}
}

// renderCall dispatches to fn's own Renderer (spec.md §9 "Function
// registry"), the single place the Vensim-builtin-to-XMILE rewrite table
// of spec.md §4.5 lives. A nil fn (never produced by symbol.Registry, but
// possible from hand-built ASTs in tests) falls back to a plain
// FUNC(args) pass-through.
func renderCall(fn *symbol.FunctionDef, args []string, initial bool) string {
	if fn != nil && fn.Render != nil {
		return fn.Render(args, initial)
	}
	name := ""
	if fn != nil {
		name = fn.Name
	}
	return fmt.Sprintf("%s(%s)", strings.ToUpper(strings.TrimSpace(name)), strings.Join(args, ", "))
}

func renderVarRef(x *symbol.VariableRef) string {
	name := xmileName(x.Var.Name)
	if x.Subs == nil {
		if x.Var.Class == symbol.ArrayElement && x.Var.Owner != nil {
			return xmileName(x.Var.Owner.Name) + "." + name
		}
		return name
	}
	leaves := x.Subs.Flatten()
	parts := make([]string, len(leaves))
	for i, sym := range leaves {
		parts[i] = subscriptToken(sym)
	}
	return fmt.Sprintf("%s[%s]", name, strings.Join(parts, ", "))
}

// subscriptToken renders a bare subrange family reference with XMILE's
// "*:subrange" wildcard-with-restriction form, and a concrete element by
// its plain name (spec.md §4.5 "Subscript references in RHS").
func subscriptToken(sym *symbol.Symbol) string {
	if v, ok := sym.Owner.(*symbol.Variable); ok && v.Class == symbol.Array {
		return "*:" + xmileName(v.Name)
	}
	return xmileName(sym.Name)
}

func xmileName(s string) string {
	return strings.ReplaceAll(s, " ", "_")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
