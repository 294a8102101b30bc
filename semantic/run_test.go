package semantic_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/sdxlate/vxmile/semantic"
	"github.com/sdxlate/vxmile/symbol"
)

// buildPopulationModel hand-assembles the symbol graph a parser would have
// produced for:
//	population(t) = population(t0) + dt*(births - deaths)  INIT population = 100
//	births = population * 0.1
//	deaths = population * 0.07
func buildPopulationModel(t *testing.T) (*symbol.Namespace, *symbol.Registry, *symbol.Variable, *symbol.Variable, *symbol.Variable) {
	t.Helper()
	ns := symbol.NewNamespace()
	reg := symbol.NewRegistry()
	population := symbol.NewVariable(ns, "population")
	births := symbol.NewVariable(ns, "births")
	deaths := symbol.NewVariable(ns, "deaths")
	ns.ConfirmAll()

	integ := reg.Lookup("INTEG")
	require.NotNil(t, integ)

	population.AddEquation(&symbol.Equation{
		LHS: symbol.LeftHandSide{Var: population},
		RHS: &symbol.FunctionCallWithMemory{Fun: integ, Args: []symbol.Expr{
			&symbol.Binary{X: &symbol.VariableRef{Var: births}, Op: symbol.OpSub, Y: &symbol.VariableRef{Var: deaths}},
			&symbol.Number{Value: 100},
		}},
	})
	births.AddEquation(&symbol.Equation{
		LHS: symbol.LeftHandSide{Var: births},
		RHS: &symbol.Binary{X: &symbol.VariableRef{Var: population}, Op: symbol.OpMul, Y: &symbol.Number{Value: 0.1}},
	})
	deaths.AddEquation(&symbol.Equation{
		LHS: symbol.LeftHandSide{Var: deaths},
		RHS: &symbol.Binary{X: &symbol.VariableRef{Var: population}, Op: symbol.OpMul, Y: &symbol.Number{Value: 0.07}},
	})

	return ns, reg, population, births, deaths
}

func TestRunClassifiesStockAndFlows(t *testing.T) {
	ns, reg, population, births, deaths := buildPopulationModel(t)
	ctx := semantic.NewContext(ns, reg, nil, nil, logrus.New())

	semantic.Run(ctx, false, false)

	require.Empty(t, ctx.Errors())
	require.Equal(t, symbol.Stock, population.Class)
	require.Equal(t, symbol.Flow, births.Class)
	require.Equal(t, symbol.Flow, deaths.Class)
	require.Contains(t, population.Inflows, births)
	require.Contains(t, population.Outflows, deaths)
}

func TestRunCanonicalizeNamesIsOptIn(t *testing.T) {
	ns, reg, population, _, _ := buildPopulationModel(t)
	ctx := semantic.NewContext(ns, reg, nil, nil, logrus.New())

	semantic.Run(ctx, false, false)
	nameBeforeOptionalPass := population.Name

	ns2, reg2, population2, _, _ := buildPopulationModel(t)
	ctx2 := semantic.NewContext(ns2, reg2, nil, nil, logrus.New())
	semantic.Run(ctx2, false, true)

	// canonicalize=false leaves the parsed name untouched either way; the
	// assertion that matters is that Run does not panic or error when the
	// pass is skipped vs. run.
	require.Equal(t, "population", nameBeforeOptionalPass)
	require.Empty(t, ctx2.Errors())
	_ = population2
}

func TestRunOrderEquationsIsOptIn(t *testing.T) {
	ns, reg, _, _, _ := buildPopulationModel(t)
	ctx := semantic.NewContext(ns, reg, nil, nil, logrus.New())

	require.Nil(t, ctx.Classes)
	semantic.Run(ctx, true, false)
	require.NotNil(t, ctx.Classes)
}
