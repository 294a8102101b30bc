package symbol_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sdxlate/vxmile/symbol"
)

func TestNewVariableRollsBackOnDeleteAllUnconfirmed(t *testing.T) {
	ns := symbol.NewNamespace()
	symbol.NewVariable(ns, "temp")

	require.NotNil(t, ns.Find("temp"))
	ns.DeleteAllUnconfirmed()
	require.Nil(t, ns.Find("temp"), "a variable created since the last ConfirmAll must become unfindable after rollback")
}

func TestConfirmAllSurvivesRollback(t *testing.T) {
	ns := symbol.NewNamespace()
	symbol.NewVariable(ns, "keep")
	ns.ConfirmAll()

	symbol.NewVariable(ns, "discard")
	ns.DeleteAllUnconfirmed()

	require.NotNil(t, ns.Find("keep"))
	require.Nil(t, ns.Find("discard"))
}

func TestFindNormalizesWhitespaceAndCase(t *testing.T) {
	ns := symbol.NewNamespace()
	v := symbol.NewVariable(ns, "Net  Birth_Rate")
	ns.ConfirmAll()

	require.Same(t, &v.Symbol, ns.Find("net birth rate"))
}
