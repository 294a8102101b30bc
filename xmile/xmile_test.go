package xmile_test

import (
	"encoding/xml"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/sdxlate/vxmile/semantic"
	"github.com/sdxlate/vxmile/symbol"
	"github.com/sdxlate/vxmile/xmile"
)

func TestRenderEqnBuiltinRewrites(t *testing.T) {
	reg := symbol.NewRegistry()

	cases := []struct {
		name string
		expr symbol.Expr
		want string
	}{
		{
			name: "binary",
			expr: &symbol.Binary{
				X:  &symbol.VariableRef{Var: &symbol.Variable{Symbol: symbol.Symbol{Name: "population"}}},
				Op: symbol.OpMul,
				Y:  &symbol.Number{Value: 0.07},
			},
			want: "(population * 0.07)",
		},
		{
			name: "pulse rewrite",
			expr: &symbol.FunctionCall{
				Fun:  reg.Lookup("PULSE"),
				Args: []symbol.Expr{&symbol.Number{Value: 5}, &symbol.Number{Value: 1}},
			},
			want: "( IF TIME >= (5) AND TIME < ((5) + MAX(DT, 1)) THEN 1 ELSE 0 )",
		},
		{
			name: "step rewrite",
			expr: &symbol.FunctionCall{
				Fun:  reg.Lookup("STEP"),
				Args: []symbol.Expr{&symbol.Number{Value: 1}, &symbol.Number{Value: 5}},
			},
			want: "( IF TIME >= (5) THEN (1) ELSE 0 )",
		},
		{
			name: "if then else rewrite",
			expr: &symbol.FunctionCall{
				Fun: reg.Lookup("IF THEN ELSE"),
				Args: []symbol.Expr{
					&symbol.VariableRef{Var: &symbol.Variable{Symbol: symbol.Symbol{Name: "switch"}}},
					&symbol.Number{Value: 1},
					&symbol.Number{Value: 0},
				},
			},
			want: "( IF switch THEN 1 ELSE 0 )",
		},
		{
			name: "log rewrite",
			expr: &symbol.FunctionCall{
				Fun:  reg.Lookup("LOG"),
				Args: []symbol.Expr{&symbol.Number{Value: 8}, &symbol.Number{Value: 2}},
			},
			want: "(LN(8) / LN(2))",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, xmile.RenderEqn(tc.expr, false))
		})
	}
}

// buildPopulationModel hand-assembles the symbol graph a parser+semantic
// pipeline would have produced for:
//
//	population(t) = population(t0) + dt*(births - deaths)
//	  INIT population = 100
//	births = population * 0.1
//	deaths = population * 0.07
func buildPopulationModel() *semantic.Context {
	ns := symbol.NewNamespace()
	reg := symbol.NewRegistry()

	population := symbol.NewVariable(ns, "population")
	births := symbol.NewVariable(ns, "births")
	deaths := symbol.NewVariable(ns, "deaths")
	ns.ConfirmAll()

	integ := reg.Lookup("INTEG")
	population.AddEquation(&symbol.Equation{
		RHS: &symbol.FunctionCallWithMemory{
			Fun: integ,
			Args: []symbol.Expr{
				&symbol.Binary{
					X:  &symbol.VariableRef{Var: births},
					Op: symbol.OpSub,
					Y:  &symbol.VariableRef{Var: deaths},
				},
				&symbol.Number{Value: 100},
			},
		},
	})
	births.AddEquation(&symbol.Equation{
		RHS: &symbol.Binary{X: &symbol.VariableRef{Var: population}, Op: symbol.OpMul, Y: &symbol.Number{Value: 0.1}},
	})
	deaths.AddEquation(&symbol.Equation{
		RHS: &symbol.Binary{X: &symbol.VariableRef{Var: population}, Op: symbol.OpMul, Y: &symbol.Number{Value: 0.07}},
	})

	view := symbol.NewView("view 1", 0)
	popUID := view.FindVariable(population, 100, 100)
	birthsUID := view.FindVariable(births, 200, 100)
	view.FindVariable(deaths, 300, 100)

	connUID := view.NextUID()
	view.Add(connUID, &symbol.ConnectorElement{
		UID: connUID, From: birthsUID, To: popUID,
		MidX: 150, MidY: 150,
	})

	ctx := semantic.NewContext(ns, reg, []*symbol.View{view}, nil, logrus.New())
	semantic.Run(ctx, false, false)
	return ctx
}

func TestEmitSectorMode(t *testing.T) {
	ctx := buildPopulationModel()

	f := xmile.Emit(ctx, xmile.Options{ModelName: "population"})
	require.Len(t, f.Models, 1)

	vars := make(map[string]*xmile.Variable)
	m := f.Models[0]
	for _, g := range m.Groups {
		for _, v := range g.Variables {
			vars[v.Name] = v
		}
	}
	for _, v := range m.Variables {
		vars[v.Name] = v
	}

	require.Contains(t, vars, "population")
	pop := vars["population"]
	require.Equal(t, "stock", pop.XMLName.Local)
	require.Equal(t, "100", pop.Eqn)
	require.ElementsMatch(t, []string{"births"}, pop.Inflows)
	require.ElementsMatch(t, []string{"deaths"}, pop.Outflows)

	require.Contains(t, vars, "births")
	require.Equal(t, "flow", vars["births"].XMLName.Local)
	require.Equal(t, "(population * 0.1)", vars["births"].Eqn)
}

func TestEmitSectorModeStockShape(t *testing.T) {
	ctx := buildPopulationModel()
	f := xmile.Emit(ctx, xmile.Options{ModelName: "population"})

	var pop *xmile.Variable
	for _, g := range f.Models[0].Groups {
		for _, v := range g.Variables {
			if v.Name == "population" {
				pop = v
			}
		}
	}
	require.NotNil(t, pop)

	want := &xmile.Variable{
		XMLName:  xml.Name{Local: "stock"},
		Name:     "population",
		Eqn:      "100",
		Inflows:  []string{"births"},
		Outflows: []string{"deaths"},
	}
	if diff := cmp.Diff(want, pop); diff != "" {
		t.Errorf("emitted population stock differs from expected shape (-want +got):\n%s", diff)
	}
}

func TestEmitSectorModeConnectorAngle(t *testing.T) {
	ctx := buildPopulationModel()
	f := xmile.Emit(ctx, xmile.Options{ModelName: "population"})

	require.NotNil(t, f.Models[0].Views)
	views := *f.Models[0].Views
	require.Len(t, views, 1)

	var conn *xmile.Display
	for _, ent := range views[0].Ents {
		if ent.XMLName.Local == "connector" {
			conn = ent
			break
		}
	}
	require.NotNil(t, conn)
	require.Equal(t, "births", conn.From)
	require.Equal(t, "population", conn.To)
	require.InDelta(t, 90, conn.Angle, 0.01)
}

func TestEmitModuleMode(t *testing.T) {
	ctx := buildPopulationModel()

	f := xmile.Emit(ctx, xmile.Options{ModelName: "population", ModuleMode: true})
	require.Equal(t, "root", f.Models[0].Name)
	require.Len(t, f.Models[0].Modules, 1)
	require.Len(t, f.Models, 2)
}
