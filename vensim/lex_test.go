package vensim_test

import (
	"go/token"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sdxlate/vxmile/vensim"
)

func lexAll(t *testing.T, src string) []vensim.Token {
	t.Helper()
	fset := token.NewFileSet()
	file := fset.AddFile(t.Name(), fset.Base(), len(src))
	lex := vensim.NewLexer(src, file)
	var toks []vensim.Token
	for {
		tok := lex.NextToken()
		if tok.Kind == vensim.EOF {
			break
		}
		toks = append(toks, tok)
	}
	return toks
}

func kinds(toks []vensim.Token) []vensim.Kind {
	out := make([]vensim.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestLexSimpleEquation(t *testing.T) {
	toks := lexAll(t, "births = population*0.1 ~~|")
	require.Equal(t, []vensim.Kind{
		vensim.Ident, vensim.Op, vensim.Ident, vensim.Op, vensim.Number,
		vensim.EquationEnd,
	}, kinds(toks))
	require.Equal(t, "births", toks[0].Text)
	require.Equal(t, "0.1", toks[4].Text)
}

func TestLexQuotedIdentifierWithEscape(t *testing.T) {
	toks := lexAll(t, `"a \"weird\" name" = 1 ~~|`)
	require.Equal(t, vensim.QuotedIdent, toks[0].Kind)
	require.Equal(t, `a "weird" name`, toks[0].Text)
	require.Equal(t, vensim.EquationEnd, toks[len(toks)-1].Kind)
}

func TestLexGroupMarker(t *testing.T) {
	toks := lexAll(t, "*** Births\n")
	require.Len(t, toks, 1)
	require.Equal(t, vensim.Group, toks[0].Kind)
	require.Equal(t, "3:Births", toks[0].Text)
}

func TestLexKeyword(t *testing.T) {
	toks := lexAll(t, "x = y :AND: z ~~|")
	var sawKeyword bool
	for _, tok := range toks {
		if tok.Kind == vensim.Keyword {
			sawKeyword = true
			require.Equal(t, ":and:", tok.Text)
		}
	}
	require.True(t, sawKeyword)
}

func TestLexOpaqueGetBlock(t *testing.T) {
	toks := lexAll(t, `x = GET XLS('data.xlsx', 'Sheet1', 'B2') ~~|`)
	var sawOpaque bool
	for _, tok := range toks {
		if tok.Kind == vensim.OpaqueCall {
			sawOpaque = true
		}
	}
	require.True(t, sawOpaque)
}

func TestLexBraceCommentIgnored(t *testing.T) {
	toks := lexAll(t, "x = 1 {this is a brace comment, not emitted} ~~|")
	for _, tok := range toks {
		require.NotContains(t, tok.Text, "brace comment")
	}
}

func TestLexSketchDelimiters(t *testing.T) {
	toks := lexAll(t, "x = 1~~|\n\\---///\n")
	require.Equal(t, vensim.SketchOpen, toks[len(toks)-1].Kind)
}

func TestPeekDoesNotConsume(t *testing.T) {
	fset := token.NewFileSet()
	src := "a = 1~~|"
	file := fset.AddFile(t.Name(), fset.Base(), len(src))
	lex := vensim.NewLexer(src, file)

	first := lex.Peek()
	second := lex.Peek()
	require.Equal(t, first, second)
	require.Equal(t, first, lex.NextToken())
	require.NotEqual(t, first.Kind, lex.NextToken().Kind)
}
