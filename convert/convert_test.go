package convert_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sdxlate/vxmile/convert"
)

var modelOpenTag = regexp.MustCompile(`<model(\s|>)`)

const populationModel = `population = INTEG(births-deaths, 100) ~ widgets ~ initial population |
births = population*0.1 ~ widgets/year ~ |
deaths = population*0.07 ~ widgets/year ~ |
`

func TestConvertProducesXMILE(t *testing.T) {
	convert.ClearLog()
	doc, ok := convert.Convert([]byte(populationModel), convert.Options{ModelName: "population"})
	require.True(t, ok)
	require.Contains(t, string(doc), `<?xml version="1.0" encoding="utf-8" ?>`)
	require.Contains(t, string(doc), "xmile")
	require.Contains(t, string(doc), "population")
	require.Contains(t, string(doc), "births")
	require.Contains(t, string(doc), "deaths")
}

func TestConvertCompactOmitsIndentation(t *testing.T) {
	convert.ClearLog()
	doc, ok := convert.Convert([]byte(populationModel), convert.Options{ModelName: "population", Compact: true})
	require.True(t, ok)
	require.NotContains(t, string(doc), "\n    <")
}

func TestConvertNoEquationsFails(t *testing.T) {
	convert.ClearLog()
	_, ok := convert.Convert([]byte("\n"), convert.Options{})
	require.False(t, ok)
}

func TestConvertAsSectorsEmitsSingleModel(t *testing.T) {
	convert.ClearLog()
	doc, ok := convert.Convert([]byte(populationModel), convert.Options{ModelName: "population", AsSectors: true})
	require.True(t, ok)
	require.Len(t, modelOpenTag.FindAllString(string(doc), -1), 1)
}

// TestConvertScenarios carries five of spec.md §8's six named end-to-end
// scenarios as table-driven cases over Convert; the sixth (parse-error
// recovery) is TestConvertParseErrorRecoveryLogsBothEntries.
func TestConvertScenarios(t *testing.T) {
	cases := []struct {
		name  string
		src   string
		check func(t *testing.T, doc string)
	}{
		{
			name: "simple INTEG",
			src:  `Stock= INTEG(Inflow - Outflow, 10) ~~|`,
			check: func(t *testing.T, doc string) {
				require.Contains(t, doc, `<stock name="Stock">`)
				require.Contains(t, doc, `<eqn>10</eqn>`)
				require.Contains(t, doc, `<inflow>Inflow</inflow>`)
				require.Contains(t, doc, `<outflow>Outflow</outflow>`)
				require.Contains(t, doc, `<flow name="Inflow">`)
				require.Contains(t, doc, `<flow name="Outflow">`)
			},
		},
		{
			name: "synthetic net flow",
			src:  `S= INTEG(a*b + c, 0) ~~|`,
			check: func(t *testing.T, doc string) {
				require.Contains(t, doc, `<inflow>S_net_flow</inflow>`)
				require.Contains(t, doc, `<flow name="S_net_flow">`)
				require.Contains(t, doc, `<eqn>((a * b) + c)</eqn>`)
			},
		},
		{
			name: "subscript range",
			src:  `Loc: (L1-L3) ~~|`,
			check: func(t *testing.T, doc string) {
				require.Contains(t, doc, `<dim name="Loc">`)
				require.Contains(t, doc, `<elem name="L1"></elem>`)
				require.Contains(t, doc, `<elem name="L2"></elem>`)
				require.Contains(t, doc, `<elem name="L3"></elem>`)
			},
		},
		{
			name: "lookup with extrapolate",
			src: `f= LOOKUP EXTRAPOLATE(g, x) ~~|
g([(0,0)-(10,10)],(0,0),(5,5),(10,10)) ~~|
x= 1 ~~|
`,
			check: func(t *testing.T, doc string) {
				require.Contains(t, doc, `<aux name="g">`)
				require.Contains(t, doc, `<gf type="extrapolate">`)
				require.Contains(t, doc, `<xpts>0,5,10</xpts>`)
				require.Contains(t, doc, `<ypts>0,5,10</ypts>`)
			},
		},
		{
			name: "IF THEN ELSE rewrite",
			src: `y = IF THEN ELSE(x>0, 1, -1) ~~|
x = 1 ~~|
`,
			check: func(t *testing.T, doc string) {
				require.Contains(t, doc, `<eqn>( IF (x &gt; 0) THEN 1 ELSE -1 )</eqn>`)
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			convert.ClearLog()
			doc, ok := convert.Convert([]byte(tc.src), convert.Options{ModelName: "m"})
			require.True(t, ok)
			tc.check(t, string(doc))
		})
	}
}

// TestConvertParseErrorRecoveryLogsBothEntries covers spec.md §8 scenario 6:
// a broken equation followed by a valid one still produces output carrying
// the valid equation, omits the broken one's symbol, and the shared log
// carries both the per-error entry and the partial-success warning.
func TestConvertParseErrorRecoveryLogsBothEntries(t *testing.T) {
	convert.ClearLog()
	src := `broken = * ~~|
good = 1 ~~|
`
	doc, ok := convert.Convert([]byte(src), convert.Options{ModelName: "m"})
	require.True(t, ok)
	require.Contains(t, string(doc), `name="good"`)
	require.NotContains(t, string(doc), `name="broken"`)

	log := convert.GetLog()
	require.Contains(t, log, "1:1 in <mdl>")
	require.Contains(t, log, "writing output file, but we had errors")
}
