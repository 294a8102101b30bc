// Copyright 2013 Bobby Powers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vensim

import (
	"fmt"
	"go/token"
	"strconv"
	"strings"

	"github.com/sdxlate/vxmile/symbol"
)

// Parser drives a Lexer over one model's equation section, building
// Equations and Variables into a Namespace (spec.md §4.3). Productions
// build AST nodes by calling into the namespace so that a syntax error
// mid-equation can be rolled back via DeleteAllUnconfirmed, matching the
// teacher's precedence-climbing parser generalized from a small
// arithmetic grammar to the full Vensim equation grammar.
type Parser struct {
	file *token.File
	lex  *Lexer
	ns   *symbol.Namespace
	reg  *symbol.Registry

	levels []exprFn
	errs   []string

	// GroupStack tracks nested "***name" markers by depth, most recent
	// last (spec.md §4.3 "pushed onto the model's groups stack").
	GroupStack []*symbol.ModelGroup
}

// NewParser returns a parser reading from lex, interning symbols into ns
// and resolving built-ins through reg.
func NewParser(file *token.File, ns *symbol.Namespace, reg *symbol.Registry, lex *Lexer) *Parser {
	p := &Parser{file: file, lex: lex, ns: ns, reg: reg}
	p.levels = []exprFn{
		p.orExpr,
		p.andExpr,
		p.notExpr,
		p.relExpr,
		p.addExpr,
		p.mulExpr,
		p.powExpr,
		p.unaryExpr,
		p.primary,
	}
	return p
}

// Errors returns every error message accumulated so far.
func (p *Parser) Errors() []string { return p.errs }

func (p *Parser) errorf(tok Token, format string, args ...interface{}) {
	pos := p.file.Position(tok.Pos)
	msg := fmt.Sprintf("%d:%d in %s: %s", pos.Line, pos.Column, pos.Filename, fmt.Sprintf(format, args...))
	p.errs = append(p.errs, msg)
}

// ParseModel runs the parser to completion over the whole equation
// section, returning every successfully parsed equation. A syntax error
// in one equation is recovered from by skipping to the next '|' and does
// not abort the remaining parse (spec.md §4.2 "Recovery", §4.3 "Error
// reporting").
func (p *Parser) ParseModel() []*symbol.Equation {
	var eqs []*symbol.Equation
	for {
		tok := p.lex.Peek()
		switch tok.Kind {
		case EOF, SketchOpen:
			return eqs
		case Group:
			p.lex.NextToken()
			p.pushGroup(tok.Text)
			continue
		case Punct:
			if tok.Text == "|" || tok.Text == ";" {
				p.lex.NextToken()
				continue
			}
		case Keyword:
			if tok.Text == ":macro:" {
				p.skipMacro()
				continue
			}
		}

		eq, err := p.parseDefinition()
		if err != nil {
			p.errorf(tok, "%s", err)
			p.ns.DeleteAllUnconfirmed()
			p.lex.FindToken("|")
			continue
		}
		if eq != nil {
			eqs = append(eqs, eq)
		}
		p.ns.ConfirmAll()
	}
}

func (p *Parser) pushGroup(text string) {
	parts := strings.SplitN(text, ":", 2)
	name := text
	if len(parts) == 2 {
		name = parts[1]
	}
	var owner *symbol.ModelGroup
	if len(p.GroupStack) > 0 {
		owner = p.GroupStack[len(p.GroupStack)-1]
	}
	g := symbol.NewModelGroup(name, owner)
	p.GroupStack = append(p.GroupStack, g)
}

// skipMacro consumes a macro header and its body up to ":END OF MACRO:",
// deferring macro-model support (spec.md Open Question: macros are
// recognized but their bodies are not separately re-entered).
func (p *Parser) skipMacro() {
	p.lex.NextToken() // :macro:
	for {
		tok := p.lex.NextToken()
		if tok.Kind == EOF {
			return
		}
		if tok.Kind == Keyword && tok.Text == ":end of macro:" {
			return
		}
	}
}

// parseDefinition parses one '|'-terminated definition: an equation, a
// subscript-range definition, or a subscript alias (spec.md §4.3 grammar).
func (p *Parser) parseDefinition() (*symbol.Equation, error) {
	first := p.lex.Peek()
	if first.Kind != Ident && first.Kind != QuotedIdent {
		return nil, fmt.Errorf("expected identifier, got %s", first)
	}

	lhs, err := p.parseLHS()
	if err != nil {
		return nil, err
	}

	eq := &symbol.Equation{Pos: first.Pos, LHS: *lhs}

	next := p.lex.Peek()
	switch {
	case next.Kind == Op && next.Text == "=":
		p.lex.NextToken()
		rhs, err := p.expr()
		if err != nil {
			return nil, err
		}
		eq.RHS = rhs
		eq.Intro = symbol.IntroAuxFlow

	case next.Kind == Op && next.Text == ":=":
		p.lex.NextToken()
		rhs, err := p.expr()
		if err != nil {
			return nil, err
		}
		eq.RHS = rhs
		eq.Intro = symbol.IntroDataEquals

	case next.Kind == Punct && next.Text == "(":
		table, err := p.parseTableLiteral()
		if err != nil {
			return nil, err
		}
		eq.RHS = table
		eq.Intro = symbol.IntroLookupTable

	case next.Kind == Op && next.Text == "<->":
		p.lex.NextToken()
		other, err := p.parseLHS()
		if err != nil {
			return nil, err
		}
		eq.RHS = &symbol.VariableRef{Var: other.Var}
		eq.Intro = symbol.IntroSubscriptAlias

	case next.Kind == Op && next.Text == ":":
		p.lex.NextToken()
		list, err := p.parseSubrangeDef()
		if err != nil {
			return nil, err
		}
		eq.RHS = &symbol.SymbolListExpr{List: list.List, Map: list.MapRange}
		eq.Intro = symbol.IntroSubrangeDef

	default:
		eq.Intro = symbol.IntroAuxFlow
	}

	if err := p.consumeTilde(); err != nil {
		return nil, err
	}

	lhs.Var.AddEquation(eq)
	p.ns.AddUnconfirmed(eq)
	return eq, nil
}

// consumeTilde consumes the optional "~ units ~ comment" trailer and the
// terminating "|" (or "~~|"), if present.
func (p *Parser) consumeTilde() error {
	tok := p.lex.Peek()
	if tok.Kind == EquationEnd {
		p.lex.NextToken()
		return nil
	}
	if tok.Kind == Punct && tok.Text == "|" {
		p.lex.NextToken()
		return nil
	}
	if tok.Kind != Punct || tok.Text != "~" {
		return fmt.Errorf("expected '~' or '|', got %s", tok)
	}
	p.lex.NextToken()
	_ = p.lex.ReadComment("~") // units text, attached by the caller if needed
	tok = p.lex.Peek()
	if tok.Kind == Punct && tok.Text == "~" {
		p.lex.NextToken()
		_ = p.lex.ReadComment("|")
	}
	tok = p.lex.Peek()
	if tok.Kind == EquationEnd || (tok.Kind == Punct && tok.Text == "|") {
		p.lex.NextToken()
		return nil
	}
	return fmt.Errorf("expected '|' to close definition, got %s", tok)
}

// parseLHS parses `var except_list? interpmode?` (spec.md §4.3).
func (p *Parser) parseLHS() (*symbol.LeftHandSide, error) {
	nameTok := p.lex.NextToken()
	v := p.lookupOrCreateVar(nameTok.Text)

	lhs := &symbol.LeftHandSide{Var: v}

	if tok := p.lex.Peek(); tok.Kind == Punct && tok.Text == "[" {
		subs, err := p.parseSubList()
		if err != nil {
			return nil, err
		}
		lhs.Subs = subs
	}

	for {
		tok := p.lex.Peek()
		if tok.Kind == Keyword && tok.Text == ":except:" {
			p.lex.NextToken()
			except, err := p.parseExceptList()
			if err != nil {
				return nil, err
			}
			lhs.Except = except
			continue
		}
		break
	}

	if tok := p.lex.Peek(); tok.Kind == Keyword {
		switch tok.Text {
		case ":hold backward:":
			lhs.Interp = symbol.InterpHoldBackward
			p.lex.NextToken()
		case ":look forward:":
			lhs.Interp = symbol.InterpLookForward
			p.lex.NextToken()
		case ":interpolate:":
			lhs.Interp = symbol.InterpInterpolate
			p.lex.NextToken()
		case ":raw:":
			lhs.Interp = symbol.InterpRaw
			p.lex.NextToken()
		}
	}

	return lhs, nil
}

func (p *Parser) parseSubList() (*symbol.SymbolList, error) {
	p.lex.NextToken() // '['
	list := symbol.NewSymbolList()
	for {
		tok := p.lex.Peek()
		if tok.Kind != Ident && tok.Kind != QuotedIdent {
			return nil, fmt.Errorf("expected subscript name, got %s", tok)
		}
		p.lex.NextToken()
		sym := p.lookupOrCreateSymbol(tok.Text)
		bang := false
		if b := p.lex.Peek(); b.Kind == Punct && b.Text == "!" {
			p.lex.NextToken()
			bang = true
		}
		list.Append(sym, bang)

		if c := p.lex.Peek(); c.Kind == Punct && c.Text == "," {
			p.lex.NextToken()
			continue
		}
		break
	}
	closing := p.lex.NextToken()
	if closing.Kind != Punct || closing.Text != "]" {
		return nil, fmt.Errorf("expected ']', got %s", closing)
	}
	return list, nil
}

func (p *Parser) parseExceptList() (*symbol.ExceptList, error) {
	ex := &symbol.ExceptList{}
	for {
		tuple, err := p.parseSubList()
		if err != nil {
			return nil, err
		}
		ex.Tuples = append(ex.Tuples, tuple)
		if c := p.lex.Peek(); c.Kind == Punct && c.Text == "," {
			p.lex.NextToken()
			continue
		}
		break
	}
	return ex, nil
}

// parseSubrangeDef parses `SYMBOL | '(' SYMBOL '-' SYMBOL ')'` repeated by
// commas, with an optional "-> maplist" suffix (spec.md §4.3).
func (p *Parser) parseSubrangeDef() (*symbol.SymbolList, error) {
	list := symbol.NewSymbolList()
	for {
		tok := p.lex.Peek()
		if tok.Kind == Punct && tok.Text == "(" {
			p.lex.NextToken()
			lo := p.lex.NextToken()
			dash := p.lex.NextToken()
			if dash.Kind != Op || dash.Text != "-" {
				return nil, fmt.Errorf("expected '-' in range shorthand, got %s", dash)
			}
			hi := p.lex.NextToken()
			closing := p.lex.NextToken()
			if closing.Kind != Punct || closing.Text != ")" {
				return nil, fmt.Errorf("expected ')' in range shorthand, got %s", closing)
			}
			nested, err := p.expandNumericRange(lo.Text, hi.Text)
			if err != nil {
				return nil, err
			}
			list.AppendNested(nested)
		} else if tok.Kind == Ident || tok.Kind == QuotedIdent {
			p.lex.NextToken()
			list.Append(p.lookupOrCreateSymbol(tok.Text), false)
		} else {
			break
		}

		if c := p.lex.Peek(); c.Kind == Punct && c.Text == "," {
			p.lex.NextToken()
			continue
		}
		break
	}

	if arrow := p.lex.Peek(); arrow.Kind == Op && arrow.Text == "->" {
		p.lex.NextToken()
		mapped, err := p.parseSubrangeDef()
		if err != nil {
			return nil, err
		}
		list.MapRange = mapped
	}
	return list, nil
}

// expandNumericRange expands Vensim's "(axx-ayy)" subrange shortcut into
// every element it denotes: a common alphabetic prefix followed by a run
// of consecutive integers from lo's numeric suffix through hi's (spec.md
// §3 "Subrange"). Grounded on VensimParse::SymList's shortcut handling
// (original_source Vensim/VensimParse.cpp), which locates each name's
// numeric suffix by scanning back from the end, requires the two prefixes
// to match, and synthesizes the intervening names by string-concatenating
// the shared prefix with each integer in between.
func (p *Parser) expandNumericRange(lo, hi string) (*symbol.SymbolList, error) {
	loPrefix, loNum, ok := splitNumericSuffix(lo)
	if !ok {
		return nil, fmt.Errorf("bad subscript range specification: %q has no numeric suffix", lo)
	}
	hiPrefix, hiNum, ok := splitNumericSuffix(hi)
	if !ok {
		return nil, fmt.Errorf("bad subscript range specification: %q has no numeric suffix", hi)
	}
	if loPrefix != hiPrefix || loNum >= hiNum {
		return nil, fmt.Errorf("bad subscript range specification: %q-%q", lo, hi)
	}

	nested := symbol.NewSymbolList()
	nested.Append(p.lookupOrCreateSymbol(lo), false)
	for i := loNum + 1; i < hiNum; i++ {
		nested.Append(p.lookupOrCreateSymbol(fmt.Sprintf("%s%d", loPrefix, i)), false)
	}
	nested.Append(p.lookupOrCreateSymbol(hi), false)
	return nested, nil
}

// splitNumericSuffix splits s into its longest trailing run of digits and
// the prefix before it, e.g. "L3" -> ("L", 3, true). Reports false if s
// has no numeric suffix.
func splitNumericSuffix(s string) (prefix string, n int, ok bool) {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	if i == len(s) {
		return "", 0, false
	}
	v, err := strconv.Atoi(s[i:])
	if err != nil {
		return "", 0, false
	}
	return s[:i], v, true
}

// parseTableLiteral parses the `'(' tablepairs_or_ranges ')'` lookup-table
// definition form (spec.md §4.3).
func (p *Parser) parseTableLiteral() (*symbol.Table, error) {
	lparen := p.lex.NextToken() // '('
	t := &symbol.Table{TablePos: lparen.Pos}

	if tok := p.lex.Peek(); tok.Kind == Punct && tok.Text == "[" {
		rng, err := p.parseRange2D()
		if err != nil {
			return nil, err
		}
		t.Range = rng
		if c := p.lex.Peek(); c.Kind == Punct && c.Text == "," {
			p.lex.NextToken()
		}
	}

	for {
		tok := p.lex.Peek()
		if tok.Kind == Punct && tok.Text == ")" {
			break
		}
		x, y, err := p.parsePair()
		if err != nil {
			return nil, err
		}
		t.Xs = append(t.Xs, x)
		t.Ys = append(t.Ys, y)
		if c := p.lex.Peek(); c.Kind == Punct && c.Text == "," {
			p.lex.NextToken()
			continue
		}
		break
	}

	rparen := p.lex.NextToken()
	if rparen.Kind != Punct || rparen.Text != ")" {
		return nil, fmt.Errorf("expected ')' closing table literal, got %s", rparen)
	}
	t.EndPos = rparen.Pos + 1
	return t, nil
}

func (p *Parser) parsePair() (float64, float64, error) {
	lparen := p.lex.NextToken()
	if lparen.Kind != Punct || lparen.Text != "(" {
		return 0, 0, fmt.Errorf("expected '(' in table pair, got %s", lparen)
	}
	x, err := p.parseSignedNumber()
	if err != nil {
		return 0, 0, err
	}
	comma := p.lex.NextToken()
	if comma.Kind != Punct || comma.Text != "," {
		return 0, 0, fmt.Errorf("expected ',' in table pair, got %s", comma)
	}
	y, err := p.parseSignedNumber()
	if err != nil {
		return 0, 0, err
	}
	rparen := p.lex.NextToken()
	if rparen.Kind != Punct || rparen.Text != ")" {
		return 0, 0, fmt.Errorf("expected ')' in table pair, got %s", rparen)
	}
	return x, y, nil
}

func (p *Parser) parseRange2D() (*symbol.Range2D, error) {
	p.lex.NextToken() // '['
	x1, y1, err := p.parsePair()
	if err != nil {
		return nil, err
	}
	dash := p.lex.NextToken()
	if dash.Kind != Op || dash.Text != "-" {
		return nil, fmt.Errorf("expected '-' in table range, got %s", dash)
	}
	x2, y2, err := p.parsePair()
	if err != nil {
		return nil, err
	}
	closing := p.lex.NextToken()
	if closing.Kind != Punct || closing.Text != "]" {
		return nil, fmt.Errorf("expected ']' closing table range, got %s", closing)
	}
	return &symbol.Range2D{X1: x1, Y1: y1, X2: x2, Y2: y2}, nil
}

// parseTabbedArray handles the `TABBED ARRAY(` form by switching the
// lexer into its specialized tab/space-delimited number reader rather
// than tokenizing the body as a normal comma-separated argument list
// (spec.md §4.2 "Tabbed arrays").
func (p *Parser) parseTabbedArray(nameTok Token) (symbol.Expr, error) {
	p.lex.NextToken() // '('
	values := p.lex.ReadNumberTable()
	rparen := p.lex.NextToken()
	if rparen.Kind != Punct || rparen.Text != ")" {
		return nil, fmt.Errorf("expected ')' closing TABBED ARRAY, got %s", rparen)
	}
	return &symbol.NumberTable{TablePos: nameTok.Pos, Values: values}, nil
}

func (p *Parser) parseSignedNumber() (float64, error) {
	neg := false
	if tok := p.lex.Peek(); tok.Kind == Op && (tok.Text == "-" || tok.Text == "+") {
		p.lex.NextToken()
		neg = tok.Text == "-"
	}
	tok := p.lex.NextToken()
	if tok.Kind != Number {
		return 0, fmt.Errorf("expected number, got %s", tok)
	}
	v, _ := strconv.ParseFloat(tok.Text, 64)
	if neg {
		v = -v
	}
	return v, nil
}

// --- expression grammar: OR, AND, NOT, relational, +-, */, ^, unary, primary ---

type exprFn func() (symbol.Expr, error)

func (p *Parser) expr() (symbol.Expr, error) { return p.levels[0]() }

func (p *Parser) orExpr() (symbol.Expr, error) {
	return p.logicalLevel(1, symbol.OpOr, ":or:")
}

func (p *Parser) andExpr() (symbol.Expr, error) {
	return p.logicalLevel(2, symbol.OpAnd, ":and:")
}

func (p *Parser) logicalLevel(next int, op symbol.Op, kw string) (symbol.Expr, error) {
	lhs, err := p.levels[next]()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.lex.Peek()
		if tok.Kind != Keyword || tok.Text != kw {
			return lhs, nil
		}
		p.lex.NextToken()
		rhs, err := p.levels[next]()
		if err != nil {
			return nil, err
		}
		lhs = &symbol.Logical{X: lhs, OpPos: tok.Pos, Op: op, Y: rhs}
	}
}

func (p *Parser) notExpr() (symbol.Expr, error) {
	if tok := p.lex.Peek(); tok.Kind == Keyword && tok.Text == ":not:" {
		p.lex.NextToken()
		x, err := p.notExpr()
		if err != nil {
			return nil, err
		}
		return &symbol.Unary{OpPos: tok.Pos, Op: symbol.OpNot, X: x}, nil
	}
	return p.levels[3]()
}

var relOps = map[string]symbol.Op{
	"=": symbol.OpEq, "<>": symbol.OpNeq,
	"<": symbol.OpLt, "<=": symbol.OpLeq,
	">": symbol.OpGt, ">=": symbol.OpGeq,
}

func (p *Parser) relExpr() (symbol.Expr, error) {
	lhs, err := p.levels[4]()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.lex.Peek()
		op, ok := relOps[tok.Text]
		if tok.Kind != Op || !ok {
			return lhs, nil
		}
		p.lex.NextToken()
		rhs, err := p.levels[4]()
		if err != nil {
			return nil, err
		}
		lhs = &symbol.Binary{X: lhs, OpPos: tok.Pos, Op: op, Y: rhs}
	}
}

func (p *Parser) addExpr() (symbol.Expr, error) {
	return p.binaryLevel(5, map[string]symbol.Op{"+": symbol.OpAdd, "-": symbol.OpSub})
}

func (p *Parser) mulExpr() (symbol.Expr, error) {
	return p.binaryLevel(6, map[string]symbol.Op{"*": symbol.OpMul, "/": symbol.OpDiv})
}

func (p *Parser) powExpr() (symbol.Expr, error) {
	return p.binaryLevel(7, map[string]symbol.Op{"^": symbol.OpPow})
}

func (p *Parser) binaryLevel(next int, ops map[string]symbol.Op) (symbol.Expr, error) {
	lhs, err := p.levels[next]()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.lex.Peek()
		op, ok := ops[tok.Text]
		if tok.Kind != Op || !ok {
			return lhs, nil
		}
		p.lex.NextToken()
		rhs, err := p.levels[next]()
		if err != nil {
			return nil, err
		}
		lhs = &symbol.Binary{X: lhs, OpPos: tok.Pos, Op: op, Y: rhs}
	}
}

func (p *Parser) unaryExpr() (symbol.Expr, error) {
	tok := p.lex.Peek()
	if tok.Kind == Op && (tok.Text == "+" || tok.Text == "-") {
		p.lex.NextToken()
		x, err := p.unaryExpr()
		if err != nil {
			return nil, err
		}
		// Unary +/- on a literal number folds directly into the number
		// (spec.md §4.3).
		if num, ok := x.(*symbol.Number); ok && tok.Text == "-" {
			return &symbol.Number{ValuePos: tok.Pos, Value: -num.Value}, nil
		}
		if tok.Text == "+" {
			return x, nil
		}
		return &symbol.Unary{OpPos: tok.Pos, Op: symbol.OpSub, X: x}, nil
	}
	return p.levels[8]()
}

func (p *Parser) primary() (symbol.Expr, error) {
	tok := p.lex.Peek()
	switch tok.Kind {
	case Number:
		p.lex.NextToken()
		v, _ := strconv.ParseFloat(tok.Text, 64)
		return &symbol.Number{ValuePos: tok.Pos, Value: v}, nil

	case Literal:
		p.lex.NextToken()
		return &symbol.Literal{ValuePos: tok.Pos, Value: tok.Text}, nil

	case OpaqueCall:
		p.lex.NextToken()
		return &symbol.Literal{ValuePos: tok.Pos, Value: tok.Text}, nil

	case Punct:
		if tok.Text == "(" {
			p.lex.NextToken()
			x, err := p.expr()
			if err != nil {
				return nil, err
			}
			rparen := p.lex.NextToken()
			if rparen.Kind != Punct || rparen.Text != ")" {
				return nil, fmt.Errorf("expected ')', got %s", rparen)
			}
			return &symbol.Paren{Lparen: tok.Pos, X: x, Rparen: rparen.Pos}, nil
		}

	case Keyword:
		if tok.Text == ":na:" {
			p.lex.NextToken()
			return &symbol.Literal{ValuePos: tok.Pos, Value: ":NA:"}, nil
		}

	case Ident, QuotedIdent:
		p.lex.NextToken()
		return p.identOrCall(tok)
	}
	return nil, fmt.Errorf("unexpected token %s", tok)
}

// identOrCall resolves an identifier token into a variable reference,
// subscripted reference, or function call (spec.md §3/§4.3).
func (p *Parser) identOrCall(tok Token) (symbol.Expr, error) {
	if paren := p.lex.Peek(); paren.Kind == Punct && paren.Text == "(" {
		if strings.ToUpper(strings.TrimSpace(tok.Text)) == "TABBED ARRAY" {
			return p.parseTabbedArray(tok)
		}
		return p.call(tok)
	}

	v := p.lookupOrCreateVar(tok.Text)
	ref := &symbol.VariableRef{RefPos: tok.Pos, Var: v}
	if sub := p.lex.Peek(); sub.Kind == Punct && sub.Text == "[" {
		subs, err := p.parseSubList()
		if err != nil {
			return nil, err
		}
		ref.Subs = subs
	}
	return ref, nil
}

func (p *Parser) call(nameTok Token) (symbol.Expr, error) {
	p.lex.NextToken() // '('

	if strings.ToUpper(strings.TrimSpace(nameTok.Text)) == "WITH LOOKUP" {
		return p.callWithLookup(nameTok)
	}

	var args []symbol.Expr
	if tok := p.lex.Peek(); !(tok.Kind == Punct && tok.Text == ")") {
		for {
			arg, err := p.expr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if c := p.lex.Peek(); c.Kind == Punct && c.Text == "," {
				p.lex.NextToken()
				continue
			}
			break
		}
	}
	rparen := p.lex.NextToken()
	if rparen.Kind != Punct || rparen.Text != ")" {
		return nil, fmt.Errorf("expected ')' closing call to %s, got %s", nameTok.Text, rparen)
	}

	switch strings.ToUpper(strings.TrimSpace(nameTok.Text)) {
	case "LOOKUP":
		if len(args) != 2 {
			return nil, fmt.Errorf("LOOKUP expects 2 arguments, got %d", len(args))
		}
		ref, ok := args[0].(*symbol.VariableRef)
		if !ok {
			return nil, fmt.Errorf("LOOKUP's first argument must be a variable")
		}
		return &symbol.Lookup{LookupPos: nameTok.Pos, VarLookup: ref, X: args[1], EndPos: rparen.Pos + 1}, nil

	}

	fn := p.reg.Lookup(nameTok.Text)
	if fn == nil {
		fn = symbol.NewUnknownFunction(nameTok.Text)
	}
	if fn.Memoryless() {
		return &symbol.FunctionCall{Fun: fn, Lparen: nameTok.Pos, Args: args, Rparen: rparen.Pos}, nil
	}
	return &symbol.FunctionCallWithMemory{Fun: fn, Lparen: nameTok.Pos, Args: args, Rparen: rparen.Pos}, nil
}

// callWithLookup parses `WITH LOOKUP(expr, (tablepairs))` (spec.md §3
// Lookup(Expression, TableData); §4.3 grammar `'with_lookup' '(' expr ','
// '(' tablepairs ')' ')'`). The second argument is a table literal, not a
// general expression, so it is parsed with parseTableLiteral directly
// rather than through the generic arg loop primary() drives.
func (p *Parser) callWithLookup(nameTok Token) (symbol.Expr, error) {
	x, err := p.expr()
	if err != nil {
		return nil, err
	}
	comma := p.lex.NextToken()
	if comma.Kind != Punct || comma.Text != "," {
		return nil, fmt.Errorf("expected ',' in WITH LOOKUP, got %s", comma)
	}
	table, err := p.parseTableLiteral()
	if err != nil {
		return nil, err
	}
	rparen := p.lex.NextToken()
	if rparen.Kind != Punct || rparen.Text != ")" {
		return nil, fmt.Errorf("expected ')' closing call to %s, got %s", nameTok.Text, rparen)
	}
	return &symbol.Lookup{LookupPos: nameTok.Pos, X: x, Table: table, EndPos: rparen.Pos + 1}, nil
}

func (p *Parser) lookupOrCreateVar(name string) *symbol.Variable {
	sym := p.lookupOrCreateSymbol(name)
	if v, ok := sym.Owner.(*symbol.Variable); ok {
		return v
	}
	return symbol.NewVariable(p.ns, name)
}

func (p *Parser) lookupOrCreateSymbol(name string) *symbol.Symbol {
	if sym := p.ns.Find(name); sym != nil {
		return sym
	}
	v := symbol.NewVariable(p.ns, name)
	return &v.Symbol
}
