package vensim_test

import (
	"go/token"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sdxlate/vxmile/symbol"
	"github.com/sdxlate/vxmile/vensim"
)

func newParser(t *testing.T, src string) (*vensim.Parser, *symbol.Namespace) {
	t.Helper()
	fset := token.NewFileSet()
	file := fset.AddFile(t.Name(), fset.Base(), len(src))
	ns := symbol.NewNamespace()
	reg := symbol.NewRegistry()
	lex := vensim.NewLexer(src, file)
	return vensim.NewParser(file, ns, reg, lex), ns
}

func TestParseModelBuildsEquations(t *testing.T) {
	src := `population = INTEG(births-deaths, 100) ~ widgets ~ |
births = population*0.1 ~ widgets/year ~ |
deaths = population*0.07 ~ widgets/year ~ |
`
	parser, ns := newParser(t, src)
	eqs := parser.ParseModel()

	require.Empty(t, parser.Errors())
	require.Len(t, eqs, 3)

	for _, name := range []string{"population", "births", "deaths"} {
		sym := ns.Find(name)
		require.NotNilf(t, sym, "expected %s to be interned", name)
		v, ok := sym.Owner.(*symbol.Variable)
		require.True(t, ok)
		require.Len(t, v.Equations(), 1)
	}
}

func TestParseModelRecoversFromSyntaxError(t *testing.T) {
	src := `broken = * ~~|
good = 1 ~~|
`
	parser, ns := newParser(t, src)
	eqs := parser.ParseModel()

	require.NotEmpty(t, parser.Errors())
	require.Len(t, eqs, 1)

	sym := ns.Find("good")
	require.NotNil(t, sym)
	require.Nil(t, ns.Find("broken"))
}

func TestParseWithLookupCall(t *testing.T) {
	src := `y = WITH LOOKUP(x, ((0,0),(5,5),(10,10))) ~ widgets ~ |
`
	parser, ns := newParser(t, src)
	eqs := parser.ParseModel()

	require.Empty(t, parser.Errors())
	require.Len(t, eqs, 1)

	sym := ns.Find("y")
	require.NotNil(t, sym)
	v, ok := sym.Owner.(*symbol.Variable)
	require.True(t, ok)
	require.Len(t, v.Equations(), 1)

	lk, ok := v.Equations()[0].RHS.(*symbol.Lookup)
	require.True(t, ok)
	require.NotNil(t, lk.X)
	require.Equal(t, []float64{0, 5, 10}, lk.Table.Xs)
	require.Equal(t, []float64{0, 5, 10}, lk.Table.Ys)
}

func TestParseSubrangeDefExpandsNumericRange(t *testing.T) {
	src := `Loc: (L1-L3) ~~|
`
	parser, ns := newParser(t, src)
	eqs := parser.ParseModel()

	require.Empty(t, parser.Errors())
	require.Len(t, eqs, 1)

	loc := ns.Find("Loc")
	require.NotNil(t, loc)
	v, ok := loc.Owner.(*symbol.Variable)
	require.True(t, ok)

	rhs, ok := v.Equations()[0].RHS.(*symbol.SymbolListExpr)
	require.True(t, ok)
	names := make([]string, 0, 3)
	for _, sym := range rhs.List.Flatten() {
		names = append(names, sym.Name)
	}
	require.Equal(t, []string{"L1", "L2", "L3"}, names)
}

func TestParseModelStopsAtSketchSection(t *testing.T) {
	src := "x = 1 ~~|\n\\---///\nsketch content that is not equation syntax\n"
	parser, _ := newParser(t, src)
	eqs := parser.ParseModel()
	require.Empty(t, parser.Errors())
	require.Len(t, eqs, 1)
}
