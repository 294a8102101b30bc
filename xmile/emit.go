package xmile

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strings"

	"github.com/sdxlate/vxmile/semantic"
	"github.com/sdxlate/vxmile/symbol"
)

// Options configures a single Emit call (spec.md §4.5).
type Options struct {
	Level      int
	ModelName  string
	ModuleMode bool
	SimSpec    SimSpec
}

// Emit walks a fully reconciled semantic.Context and builds the XMILE
// DOM tree an external writer serializes (spec.md §4.5).
func Emit(ctx *semantic.Context, opts Options) *File {
	level := opts.Level
	if level == 0 {
		level = 1
	}
	f := NewFile(level, opts.ModelName)
	f.SimSpec = opts.SimSpec
	f.Dimensions = buildDimensions(ctx)

	if opts.ModuleMode {
		f.Models = emitModuleMode(ctx)
	} else {
		f.Models = []*Model{emitSectorMode(ctx)}
	}
	return f
}

func buildDimensions(ctx *semantic.Context) []*Dimension {
	var dims []*Dimension
	for _, v := range ctx.Variables() {
		if v.Class != symbol.Array {
			continue
		}
		d := &Dimension{Name: xmileName(v.Name)}
		for _, elem := range v.Subrange {
			d.Elems = append(d.Elems, &DimElem{Name: xmileName(elem.Name)})
		}
		dims = append(dims, d)
	}
	sort.Slice(dims, func(i, j int) bool { return dims[i].Name < dims[j].Name })
	return dims
}

// emitSectorMode builds the single-<model> "one <group> per view" shape
// (spec.md §4.5 "Sector mode").
func emitSectorMode(ctx *semantic.Context) *Model {
	m := &Model{}
	placed := make(map[*symbol.Variable]bool)

	for _, view := range ctx.Views {
		grp := &Group{Name: xmileName(view.Title)}
		for _, el := range view.Elements {
			ve, ok := el.(*symbol.VariableElement)
			if !ok || ve.Ghost || ve.Var == nil {
				continue
			}
			v := ve.Var
			if v.Class == symbol.Array || v.Class == symbol.ArrayElement || placed[v] {
				continue
			}
			placed[v] = true
			grp.Variables = append(grp.Variables, emitVariable(v))
		}
		if len(grp.Variables) > 0 {
			m.Groups = append(m.Groups, grp)
		}
	}

	for _, v := range ctx.Variables() {
		if placed[v] || v.Class == symbol.Array || v.Class == symbol.ArrayElement {
			continue
		}
		m.Variables = append(m.Variables, emitVariable(v))
	}

	views := buildViews(ctx.Views)
	m.Views = &views
	return m
}

// emitModuleMode splits each view into its own second-level <model>,
// wired back to the root via <module>/<connect> (spec.md §4.5 "Module
// mode").
func emitModuleMode(ctx *semantic.Context) []*Model {
	root := &Model{Name: "root"}

	ownerOf := make(map[*symbol.Variable]*symbol.View)
	for _, view := range ctx.Views {
		for _, el := range view.Elements {
			if ve, ok := el.(*symbol.VariableElement); ok && !ve.Ghost && ve.Var != nil {
				ownerOf[ve.Var] = view
			}
		}
	}

	placed := make(map[*symbol.Variable]bool)
	var subModels []*Model
	for _, view := range ctx.Views {
		sub := &Model{Name: xmileName(view.Title)}
		var connects []*Connect
		seenInput := make(map[*symbol.Variable]bool)

		for _, el := range view.Elements {
			ve, ok := el.(*symbol.VariableElement)
			if !ok || ve.Ghost || ve.Var == nil {
				continue
			}
			v := ve.Var
			if v.Class == symbol.Array || v.Class == symbol.ArrayElement {
				continue
			}
			placed[v] = true
			sub.Variables = append(sub.Variables, emitVariable(v))

			for _, in := range v.InputVars() {
				owner := ownerOf[in]
				if owner == nil || owner == view || seenInput[in] {
					continue
				}
				seenInput[in] = true
				inputVar := emitVariable(in)
				inputVar.Eqn = ""
				inputVar.Access = "input"
				sub.Variables = append(sub.Variables, inputVar)
				connects = append(connects, &Connect{
					To:   xmileName(in.Name),
					From: fmt.Sprintf("%s.%s", xmileName(owner.Title), xmileName(in.Name)),
				})
			}
		}

		views := []*View{renderView(view)}
		sub.Views = &views
		subModels = append(subModels, sub)
		root.Modules = append(root.Modules, &Module{Name: xmileName(view.Title), Connects: connects})
	}

	// Variables with no view of their own (no sketch at all, or a variable
	// the sketch never placed) stay on the root model rather than vanishing
	// (spec.md §4.5 "Module mode" covers the owned case; this mirrors
	// emitSectorMode's same fallback for the unowned one).
	for _, v := range ctx.Variables() {
		if placed[v] || v.Class == symbol.Array || v.Class == symbol.ArrayElement {
			continue
		}
		root.Variables = append(root.Variables, emitVariable(v))
	}

	return append([]*Model{root}, subModels...)
}

func emitVariable(v *symbol.Variable) *Variable {
	xv := &Variable{
		XMLName: xml.Name{Local: classTag(v.Class)},
		Name:    xmileName(v.Name),
		Doc:     v.Comment,
		Units:   unitsOf(v),
	}
	if v.Class == symbol.DelayAux {
		e := Exister("")
		xv.DelayAux = &e
	}

	eqns := v.Equations()
	if len(eqns) == 0 {
		return xv
	}

	if v.Class == symbol.Stock {
		xv.Eqn = RenderEqn(stockInitExpr(eqns[0].RHS), true)
		for _, in := range v.Inflows {
			xv.Inflows = append(xv.Inflows, xmileName(in.Name))
		}
		for _, out := range v.Outflows {
			xv.Outflows = append(xv.Outflows, xmileName(out.Name))
		}
		return xv
	}

	if len(eqns) > 1 {
		for _, eq := range eqns {
			if isNoEquationSentinel(eq.RHS) {
				continue
			}
			eqnStr, gf := renderRHS(eq.RHS)
			for _, cell := range eq.LHS.Cells {
				xv.Elements = append(xv.Elements, &Element{
					Subscript: subscriptCellLabel(cell),
					Eqn:       eqnStr,
					GF:        gf,
				})
			}
		}
		xv.Dims = dimsOf(eqns[0].LHS.Subs)
		return xv
	}

	eq := eqns[0]
	eqnStr, gf := renderRHS(eq.RHS)
	xv.Eqn = eqnStr
	xv.GF = gf
	if eq.LHS.Subs != nil {
		xv.Dims = dimsOf(eq.LHS.Subs)
	}
	return xv
}

// stockInitExpr extracts a stock's initial-value argument from its
// (possibly net-flow-rewritten) INTEG/SINTEG call.
func stockInitExpr(rhs symbol.Expr) symbol.Expr {
	if call, ok := rhs.(*symbol.FunctionCallWithMemory); ok && len(call.Args) > 1 {
		return call.Args[1]
	}
	return rhs
}

// renderRHS renders an equation's right-hand side, pulling a graphical
// function out into its own return value when the RHS is a WITH-LOOKUP
// call or a bare table literal (spec.md §4.5 "Lookup tables emit <gf>").
// A bare table literal (the `var(range, pairs)` equation form a variable
// used only as a lookup target gets) has no equation body of its own; the
// whole expression becomes the <gf>.
func renderRHS(rhs symbol.Expr) (string, *GF) {
	switch t := rhs.(type) {
	case *symbol.Lookup:
		if t.Table != nil {
			return RenderEqn(t.X, false), buildGF(t.Table)
		}
	case *symbol.Table:
		return "", buildGF(t)
	}
	return RenderEqn(rhs, false), nil
}

func isNoEquationSentinel(rhs symbol.Expr) bool {
	fc, ok := rhs.(*symbol.FunctionCall)
	return ok && strings.EqualFold(strings.TrimSpace(fc.Fun.Name), "A FUNCTION OF")
}

func buildGF(t *symbol.Table) *GF {
	xs := make([]string, len(t.Xs))
	for i, x := range t.Xs {
		xs[i] = formatNumber(x)
	}
	ys := make([]string, len(t.Ys))
	for i, y := range t.Ys {
		ys[i] = formatNumber(y)
	}
	gf := &GF{XPoints: strings.Join(xs, ","), YPoints: strings.Join(ys, ",")}
	if t.Extrapolate {
		gf.Type = "extrapolate"
	}
	yMin, yMax := minMax(t.Ys)
	if yMin == yMax {
		yMax = yMin + 1
	}
	gf.YScale = Scale{Min: yMin, Max: yMax}
	if t.Range != nil {
		gf.XScale = Scale{Min: t.Range.X1, Max: t.Range.X2}
	} else if len(t.Xs) > 0 {
		xMin, xMax := minMax(t.Xs)
		gf.XScale = Scale{Min: xMin, Max: xMax}
	}
	return gf
}

func minMax(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	min, max := xs[0], xs[0]
	for _, v := range xs {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

func subscriptCellLabel(cell *symbol.SymbolList) string {
	leaves := cell.Flatten()
	names := make([]string, len(leaves))
	for i, s := range leaves {
		names[i] = xmileName(s.Name)
	}
	return strings.Join(names, ", ")
}

// dimsOf names, per subscript entry, the entry's own symbol as the
// dimension. It does not search for a smaller enclosing subrange, and an
// element entry is not mapped back to its family.
func dimsOf(subs *symbol.SymbolList) []*VarDim {
	if subs == nil {
		return nil
	}
	var out []*VarDim
	for _, e := range subs.Entries {
		if e.Sym == nil {
			continue
		}
		name := e.Sym.Name
		if v, ok := e.Sym.Owner.(*symbol.Variable); ok {
			name = v.Name
		}
		out = append(out, &VarDim{Name: xmileName(name)})
	}
	return out
}

func classTag(c symbol.Classification) string {
	switch c {
	case symbol.Stock:
		return "stock"
	case symbol.Flow:
		return "flow"
	default:
		return "aux"
	}
}

func unitsOf(v *symbol.Variable) string {
	if v.Content == nil || v.Content.Units == nil {
		return ""
	}
	return symbol.Render(v.Content.Units)
}

func buildViews(svs []*symbol.View) []*View {
	out := make([]*View, 0, len(svs))
	for _, sv := range svs {
		out = append(out, renderView(sv))
	}
	return out
}

func renderView(sv *symbol.View) *View {
	xv := &View{XMLName: xml.Name{Local: "view"}, Name: sv.Title}
	for _, el := range sv.Elements {
		switch e := el.(type) {
		case *symbol.VariableElement:
			if e.Var == nil || e.Ghost {
				continue
			}
			d := &Display{XMLName: xml.Name{Local: classTag(e.Var.Class)}, Name: xmileName(e.Var.Name)}
			d.Point = Point{X: float64(e.Box.X), Y: float64(e.Box.Y)}
			if e.Var.Class == symbol.Stock {
				d.Size = Size{Width: float64(e.Box.Width), Height: float64(e.Box.Height)}
			}
			xv.Ents = append(xv.Ents, d)
		case *symbol.ValveElement:
			d := &Display{XMLName: xml.Name{Local: "flow"}}
			d.Point = Point{X: float64(e.Box.X), Y: float64(e.Box.Y)}
			xv.Ents = append(xv.Ents, d)
		case *symbol.CommentElement:
			d := &Display{XMLName: xml.Name{Local: "text_box"}, Content: e.Text}
			d.Point = Point{X: float64(e.Box.X), Y: float64(e.Box.Y)}
			xv.Ents = append(xv.Ents, d)
		case *symbol.ConnectorElement:
			if e.From == 0 || e.To == 0 {
				continue
			}
			from, to := uidVarName(sv, e.From), uidVarName(sv, e.To)
			if from == "" || to == "" {
				continue
			}
			fromBox, toBox := sv.ByUID[e.From].Bounds(), sv.ByUID[e.To].Bounds()
			angle := angleFromPoints(
				float64(fromBox.X), float64(fromBox.Y),
				float64(e.MidX), float64(e.MidY),
				float64(toBox.X), float64(toBox.Y),
			)
			d := &Display{
				XMLName:  xml.Name{Local: "connector"},
				From:     from,
				To:       to,
				Angle:    angle,
				Polarity: polarityString(e.Polarity),
			}
			xv.Ents = append(xv.Ents, d)
		}
	}
	return xv
}

func uidVarName(sv *symbol.View, uid int) string {
	if el, ok := sv.ByUID[uid]; ok {
		if ve, ok := el.(*symbol.VariableElement); ok && ve.Var != nil {
			return xmileName(ve.Var.Name)
		}
	}
	return ""
}

func polarityString(p byte) string {
	if p == 0 {
		return ""
	}
	return string(p)
}
