package semantic

import "github.com/sdxlate/vxmile/symbol"

// ReconcileViews is pass (e), run once per converted model: ghost
// upgrade, flow attachment, undefined-variable placement, and link
// completion (spec.md §4.4(e)).
func ReconcileViews(ctx *Context) {
	upgradeGhosts(ctx)
	attachFlowsToViews(ctx)
	placeUndefined(ctx)
	completeLinks(ctx)
}

// upgradeGhosts promotes the first ghost element found for a
// still-undefined variable into its real definition.
func upgradeGhosts(ctx *Context) {
outer:
	for _, v := range ctx.Variables() {
		if v.View != nil {
			continue
		}
		for _, view := range ctx.Views {
			for _, el := range view.Elements {
				ve, ok := el.(*symbol.VariableElement)
				if ok && ve.Var == v && ve.Ghost {
					ve.Ghost = false
					v.View = view
					continue outer
				}
			}
		}
	}
}

// attachFlowsToViews places a homeless flow into the view of a stock it
// feeds, offset 60 units from the stock's box.
func attachFlowsToViews(ctx *Context) {
	for _, f := range ctx.Variables() {
		if f.Class != symbol.Flow || f.View != nil {
			continue
		}
		for _, s := range ctx.Variables() {
			if s.Class != symbol.Stock || s.View == nil {
				continue
			}
			if !containsVar(s.Inflows, f) && !containsVar(s.Outflows, f) {
				continue
			}
			x, y, ok := elementPos(s.View, s)
			if !ok {
				continue
			}
			uid := s.View.NextUID()
			s.View.Add(uid, &symbol.VariableElement{
				Box:      symbol.Bounds{X: x + 60, Y: y},
				UID:      uid,
				Var:      f,
				Attached: true,
			})
			f.View = s.View
			break
		}
	}
}

// placeUndefined dumps every variable still without a view at (200, 200)
// on the first view.
func placeUndefined(ctx *Context) {
	if len(ctx.Views) == 0 {
		return
	}
	first := ctx.Views[0]
	for _, v := range ctx.Variables() {
		if v.View == nil {
			first.FindVariable(v, 200, 200)
			v.View = first
		}
	}
}

// completeLinks ensures every input a variable's RHS names has a
// connector in its view, and invalidates connectors that no longer
// correspond to an actual input.
func completeLinks(ctx *Context) {
	for _, v := range ctx.Variables() {
		if v.Class == symbol.Stock || v.View == nil {
			continue
		}
		view := v.View
		vUID := uidOf(view, v)
		if vUID == 0 {
			continue
		}

		wanted := make(map[int]bool)
		for _, in := range v.InputVars() {
			inUID := uidOf(view, in)
			if inUID == 0 {
				continue
			}
			wanted[inUID] = true
			if !connectorExists(view, inUID, vUID) {
				uid := view.NextUID()
				view.Add(uid, &symbol.ConnectorElement{UID: uid, From: inUID, To: vUID})
			}
		}

		for _, el := range view.Elements {
			if c, ok := el.(*symbol.ConnectorElement); ok && c.To == vUID && c.From != 0 && !wanted[c.From] {
				c.Invalidate()
			}
		}
	}
}

func containsVar(list []*symbol.Variable, v *symbol.Variable) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func elementPos(view *symbol.View, v *symbol.Variable) (x, y int, ok bool) {
	for _, el := range view.Elements {
		if ve, isVar := el.(*symbol.VariableElement); isVar && ve.Var == v {
			return ve.Box.X, ve.Box.Y, true
		}
	}
	return 0, 0, false
}

func uidOf(view *symbol.View, v *symbol.Variable) int {
	for uid, el := range view.ByUID {
		if ve, ok := el.(*symbol.VariableElement); ok && ve.Var == v {
			return uid
		}
	}
	return 0
}

func connectorExists(view *symbol.View, from, to int) bool {
	for _, el := range view.Elements {
		if c, ok := el.(*symbol.ConnectorElement); ok && c.From == from && c.To == to {
			return true
		}
	}
	return false
}
