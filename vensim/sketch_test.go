package vensim_test

import (
	"go/token"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sdxlate/vxmile/symbol"
	"github.com/sdxlate/vxmile/vensim"
)

func lexSketch(t *testing.T, src string) *vensim.Lexer {
	t.Helper()
	fset := token.NewFileSet()
	file := fset.AddFile(t.Name(), fset.Base(), len(src))
	lex := vensim.NewLexer(src, file)
	require.Equal(t, vensim.SketchOpen, lex.NextToken().Kind)
	return lex
}

func TestParseViewsVariableValveConnector(t *testing.T) {
	ns := symbol.NewNamespace()
	population := symbol.NewVariable(ns, "population")
	ns.ConfirmAll()

	src := "\\---///" + `
V300  Sketch names
*View 1
$192-192-192,0,Times New Roman|12||0-0-0|0-0-0|0-0-255|-1--1--1|-1--1--1|96,96,100,0
10,1,population,100,200,40,20,8,3,0,0,0,0,0,0
11,2,0,150,200,6,8,34,3,0,0,1,0,0,0
1,3,2,1,4,0,0,22,0,0,0,-1--1--1,,1|(150,195)|
///---\
`
	lex := lexSketch(t, src)

	views := vensim.ParseViews(lex, ns)
	require.Len(t, views, 1)
	view := views[0]
	require.Equal(t, "View 1", view.Title)
	require.Len(t, view.Elements, 3)

	varEl, ok := view.ByUID[1].(*symbol.VariableElement)
	require.True(t, ok)
	require.Equal(t, population, varEl.Var)
	require.Equal(t, symbol.Bounds{X: 100, Y: 200, Width: 40, Height: 20}, varEl.Box)
	require.Same(t, view, population.View)

	valveEl, ok := view.ByUID[2].(*symbol.ValveElement)
	require.True(t, ok)
	require.Equal(t, symbol.Bounds{X: 150, Y: 200, Width: 6, Height: 8}, valveEl.Box)

	connEl, ok := view.ByUID[3].(*symbol.ConnectorElement)
	require.True(t, ok)
	require.Equal(t, 2, connEl.From)
	require.Equal(t, 1, connEl.To)
	require.Equal(t, 150, connEl.MidX)
	require.Equal(t, 195, connEl.MidY)
}

func TestParseViewsStopsAtSketchClose(t *testing.T) {
	ns := symbol.NewNamespace()
	src := "\\---///" + `
V300  Sketch names
*View 1

12,1,some comment,10,10,50,20,0,0,0,0,0,0,0,0
///---\
this line belongs to whatever comes after the sketch and must not be parsed
`
	lex := lexSketch(t, src)
	views := vensim.ParseViews(lex, ns)
	require.Len(t, views, 1)
	require.Len(t, views[0].Elements, 1)

	commentEl, ok := views[0].ByUID[1].(*symbol.CommentElement)
	require.True(t, ok)
	require.Equal(t, "some comment", commentEl.Text)
}

func TestParseViewsNoViews(t *testing.T) {
	ns := symbol.NewNamespace()
	lex := lexSketch(t, "\\---///"+"\n///---\\\n")
	views := vensim.ParseViews(lex, ns)
	require.Empty(t, views)
}
