// Copyright 2013 Bobby Powers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vensim

import (
	"fmt"
	"go/token"
	"strings"
	"unicode"
	"unicode/utf8"
)

const eof = 0

type stateFn func(*Lexer) stateFn

// Lexer is a single-threaded, pull-based tokenizer for Vensim .mdl source
// (spec.md §4.2), generalized from the teacher's channel+stateFn design to
// cover Vensim's full token set: keywords, quoted/escaped identifiers,
// brace comments, group markers, opaque GET XLS/VDF/DATA/DIRECT blocks,
// and the equation/sketch section delimiters.
type Lexer struct {
	f     *token.File
	s     string
	pos   int
	start int
	width int

	items  chan Token
	state  stateFn
	peeked *Token
	last   Token

	// Mode flags carried across NextToken calls (spec.md §4.2).
	InEquation          bool
	InUnits             bool
	UnitsCommentDepth   int // 0=equation, 1=units, 2=comment, 3=supplementary
	NoSpaceSinceNewline bool
	SawExplicitEqEnd    bool
}

// NewLexer returns a lexer over src, recording positions in file.
func NewLexer(src string, file *token.File) *Lexer {
	l := &Lexer{
		f:     file,
		s:     src,
		items: make(chan Token, 2),
	}
	l.state = (*Lexer).statement
	return l
}

// Peek returns, without consuming, the next token.
func (l *Lexer) Peek() Token {
	if l.peeked == nil {
		t := l.scan()
		l.peeked = &t
	}
	return *l.peeked
}

// NextToken returns and consumes the next token.
func (l *Lexer) NextToken() Token {
	if l.peeked != nil {
		t := *l.peeked
		l.peeked = nil
		return t
	}
	return l.scan()
}

func (l *Lexer) scan() Token {
	for {
		select {
		case item := <-l.items:
			l.last = item
			return item
		default:
			if l.state == nil {
				return Token{Kind: EOF, Pos: l.f.Pos(l.pos)}
			}
			l.state = l.state(l)
		}
	}
}

// CurrentText returns the raw text of the most recently returned token.
func (l *Lexer) CurrentText() string { return l.last.Text }

// Line returns the 1-based line of the most recently returned token.
func (l *Lexer) Line() int { return l.f.Position(l.last.Pos).Line }

// Column returns the 1-based column of the most recently returned token.
func (l *Lexer) Column() int { return l.f.Position(l.last.Pos).Column }

func (l *Lexer) next() rune {
	if l.pos >= len(l.s) {
		return eof
	}
	r, width := utf8.DecodeRuneInString(l.s[l.pos:])
	l.pos += width
	l.width = width
	if r == '\n' {
		l.f.AddLine(l.pos)
	}
	return r
}

func (l *Lexer) backup() {
	l.pos -= l.width
}

func (l *Lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

func (l *Lexer) peekAt(offset int) rune {
	if l.pos+offset >= len(l.s) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(l.s[l.pos+offset:])
	return r
}

func (l *Lexer) ignore() { l.start = l.pos }

func (l *Lexer) accept(valid string) bool {
	if strings.ContainsRune(valid, l.next()) {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptRun(valid string) {
	for strings.ContainsRune(valid, l.next()) {
	}
	l.backup()
}

func (l *Lexer) emit(k Kind) {
	l.items <- Token{Kind: k, Text: l.s[l.start:l.pos], Pos: l.f.Pos(l.start)}
	l.ignore()
}

func (l *Lexer) emitText(k Kind, text string) {
	l.items <- Token{Kind: k, Text: text, Pos: l.f.Pos(l.start)}
	l.ignore()
}

func (l *Lexer) errorf(format string, args ...interface{}) stateFn {
	l.emitText(EOF, fmt.Sprintf(format, args...))
	return nil
}

// ReadLine consumes and returns the remainder of the current line,
// without tokenizing it; used for sketch/options passthrough (spec.md
// §4.2 `read_line`).
func (l *Lexer) ReadLine() string {
	start := l.pos
	for {
		r := l.next()
		if r == '\n' || r == eof {
			if r == '\n' {
				l.backup()
			}
			break
		}
	}
	line := l.s[start:l.pos]
	l.ignore()
	return line
}

// ReadComment reads raw text up to (not including) terminator, honoring
// nested '{'/'}' brace depth so a terminator inside a brace comment does
// not end the read early (spec.md §4.2 `read_comment`).
func (l *Lexer) ReadComment(terminator string) string {
	start := l.pos
	depth := 0
	for {
		if depth == 0 && strings.HasPrefix(l.s[l.pos:], terminator) {
			break
		}
		r := l.next()
		if r == eof {
			break
		}
		switch r {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		}
	}
	text := l.s[start:l.pos]
	l.ignore()
	return text
}

// FindToken skips forward until terminator is found (consuming it),
// reporting whether it was found before EOF. Used for error recovery:
// advance to the next '|' definition boundary (spec.md §4.2, §4.3).
func (l *Lexer) FindToken(terminator string) bool {
	if l.peeked != nil {
		t := *l.peeked
		l.peeked = nil
		if strings.HasSuffix(t.Text, terminator) {
			return true
		}
	}
	for {
		if strings.HasPrefix(l.s[l.pos:], terminator) {
			l.pos += len(terminator)
			l.ignore()
			return true
		}
		if l.next() == eof {
			l.ignore()
			return false
		}
	}
}

func (l *Lexer) statement() stateFn {
	// backslash-newline continuation: swallow the escaped newline and any
	// following whitespace, including further newlines (spec.md §4.2).
	for l.peek() == '\\' && (l.peekAt(1) == '\n' || l.peekAt(1) == '\r') {
		l.next()
		for unicode.IsSpace(l.peek()) {
			l.next()
		}
	}

	switch r := l.next(); {
	case r == eof:
		l.ignore()
		return nil
	case r == '\\' && strings.HasPrefix(l.s[l.pos:], "---///"):
		l.pos += len("---///")
		l.emit(SketchOpen)
		return (*Lexer).statement
	case r == '/' && strings.HasPrefix(l.s[l.pos:], "//---\\"):
		l.pos += len("//---\\")
		l.emit(SketchClose)
		return (*Lexer).statement
	case r == '~' && l.peek() == '~' && l.peekAt(1) == '|':
		l.next()
		l.next()
		l.emit(EquationEnd)
		l.UnitsCommentDepth = 0
		l.SawExplicitEqEnd = true
		return (*Lexer).statement
	case r == '*' && l.peek() == '*' && l.peekAt(1) == '*':
		l.backup()
		return (*Lexer).group
	case r == '{':
		l.skipBraceComment()
		l.ignore()
		return (*Lexer).statement
	case r == ';':
		l.emit(Punct)
		return (*Lexer).statement
	case unicode.IsSpace(r):
		if r == '\n' {
			l.NoSpaceSinceNewline = true
		}
		l.ignore()
		return (*Lexer).statement
	case unicode.IsDigit(r) || r == '.':
		l.backup()
		return (*Lexer).number
	case r == '\'':
		l.backup()
		return (*Lexer).literal
	case r == '"':
		l.backup()
		return (*Lexer).quotedIdent
	case r == ':':
		l.backup()
		return (*Lexer).colon
	case strings.ContainsRune(",()[]!|~?", r):
		l.emit(Punct)
		return (*Lexer).statement
	case strings.ContainsRune("+*/^", r):
		l.emit(Op)
		return (*Lexer).statement
	case r == '=':
		l.emit(Op)
		return (*Lexer).statement
	case r == '<':
		switch l.peek() {
		case '=':
			l.next()
		case '>':
			l.next()
		case '-':
			if l.peekAt(1) == '>' {
				l.next()
				l.next()
			}
		}
		l.emit(Op)
		return (*Lexer).statement
	case r == '>':
		l.accept("=")
		l.emit(Op)
		return (*Lexer).statement
	case r == '-':
		if l.peek() == '>' {
			l.next()
		}
		l.emit(Op)
		return (*Lexer).statement
	default:
		l.backup()
		return (*Lexer).identifier
	}
}

// skipBraceComment consumes a '{'-opened comment with nested-brace
// depth tracking, capped at 1028 characters (spec.md §4.2).
func (l *Lexer) skipBraceComment() {
	depth := 1
	n := 0
	for depth > 0 && n < 1028 {
		r := l.next()
		if r == eof {
			return
		}
		switch r {
		case '{':
			depth++
		case '}':
			depth--
		}
		n++
	}
}

func (l *Lexer) group() stateFn {
	l.acceptRun("*")
	depth := l.pos - l.start
	l.ignore()
	for unicode.IsSpace(l.peek()) {
		l.next()
	}
	l.ignore()
	start := l.pos
	for {
		r := l.peek()
		if r == eof || unicode.IsSpace(r) || r == '}' {
			break
		}
		l.next()
	}
	name := strings.ReplaceAll(l.s[start:l.pos], ".", "-")
	l.ignore()
	l.emitText(Group, fmt.Sprintf("%d:%s", depth, name))
	return (*Lexer).statement
}

func (l *Lexer) colon() stateFn {
	l.next() // consume ':'
	if l.peek() == '=' {
		l.next()
		l.emit(Op)
		return (*Lexer).statement
	}
	if !isIdentStart(l.peek()) {
		l.emit(Op)
		return (*Lexer).statement
	}
	// Greedy keyword scan: consume up to the matching ':', folding
	// internal whitespace/underscore runs to single spaces.
	var b strings.Builder
	b.WriteByte(':')
	for {
		r := l.next()
		if r == eof {
			return l.errorf("unterminated keyword")
		}
		if r == ':' {
			b.WriteByte(':')
			break
		}
		if unicode.IsSpace(r) || r == '_' {
			b.WriteByte(' ')
			for unicode.IsSpace(l.peek()) || l.peek() == '_' {
				l.next()
			}
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	folded := strings.ToLower(b.String())
	if keywords[folded] {
		l.emitText(Keyword, folded)
	} else {
		// Not a recognized keyword: treat this as a subrange colon and
		// back off to just past it, re-lexing the rest as statement()
		// tokens rather than consuming them as part of the keyword scan.
		l.pos = l.start + 1
		l.emit(Op)
	}
	return (*Lexer).statement
}

func (l *Lexer) number() stateFn {
	l.acceptRun("0123456789")
	l.accept(".")
	l.acceptRun("0123456789")
	if l.accept("eE") {
		l.accept("+-")
		l.acceptRun("0123456789")
	}
	l.emit(Number)
	return (*Lexer).statement
}

func (l *Lexer) literal() stateFn {
	l.next() // opening quote
	l.ignore()
	for {
		r := l.next()
		if r == eof {
			return l.errorf("unterminated literal")
		}
		if r == '\'' {
			break
		}
	}
	text := l.s[l.start : l.pos-1]
	l.emitText(Literal, text)
	l.ignore()
	return (*Lexer).statement
}

func (l *Lexer) quotedIdent() stateFn {
	l.next() // opening quote
	l.ignore()
	var b strings.Builder
	for {
		r := l.next()
		if r == eof {
			return l.errorf("unterminated quoted identifier")
		}
		if r == '\\' && (l.peek() == '"' || l.peek() == '\\') {
			b.WriteRune(l.next())
			continue
		}
		if r == '"' {
			break
		}
		b.WriteRune(r)
		if b.Len() > 1024 {
			return l.errorf("quoted identifier too long")
		}
	}
	l.emitText(QuotedIdent, b.String())
	l.ignore()
	return (*Lexer).statement
}

func (l *Lexer) identifier() stateFn {
	for isIdentCont(l.peek()) {
		l.next()
	}
	text := strings.TrimRight(l.s[l.start:l.pos], " \t_")

	if isGetBlockKeyword(text) {
		l.ignore()
		return l.opaqueCall(text)
	}

	l.emitText(Ident, text)
	l.ignore()
	return (*Lexer).statement
}

// opaqueCall captures a GET XLS/VDF/DATA/DIRECT/123 call as a single
// bracketed, parenthesis-balanced passthrough token (spec.md §4.2).
func (l *Lexer) opaqueCall(head string) stateFn {
	for unicode.IsSpace(l.peek()) {
		l.next()
	}
	if l.peek() != '(' {
		l.emitText(Ident, head)
		return (*Lexer).statement
	}
	l.ignore()
	start := l.start
	depth := 0
	for {
		r := l.next()
		if r == eof {
			return l.errorf("unterminated GET block")
		}
		if r == '(' {
			depth++
		} else if r == ')' {
			depth--
			if depth == 0 {
				break
			}
		}
	}
	body := l.s[start:l.pos]
	l.ignore()
	l.emitText(OpaqueCall, "{"+head+body+"}")
	return (*Lexer).statement
}

// ReadNumberTable reads a TABBED ARRAY body: numbers separated by tabs or
// spaces, newlines delimiting rows, stopping before the closing ')'
// (spec.md §4.2).
func (l *Lexer) ReadNumberTable() []float64 {
	var values []float64
	for {
		for l.peek() == ' ' || l.peek() == '\t' || l.peek() == '\n' || l.peek() == '\r' {
			l.next()
		}
		if l.peek() == ')' || l.peek() == eof {
			break
		}
		l.ignore()
		l.acceptRun("0123456789")
		l.accept(".")
		l.acceptRun("0123456789")
		if l.accept("eE") {
			l.accept("+-")
			l.acceptRun("0123456789")
		}
		text := l.s[l.start:l.pos]
		l.ignore()
		if text == "" {
			break
		}
		var v float64
		fmt.Sscanf(text, "%g", &v)
		values = append(values, v)
	}
	return values
}

func isIdentStart(r rune) bool {
	return r != eof && (unicode.IsLetter(r) || r >= utf8.RuneSelf)
}

func isIdentCont(r rune) bool {
	if r == eof {
		return false
	}
	switch r {
	case ',', ';', '(', ')', '[', ']', '{', '}', '=', '<', '>', '^', '+', '-', '*', '/', '~', '|', ':', '\n', '\r':
		return false
	}
	return true
}

// isGetBlockKeyword reports whether ident begins the opaque GET
// XLS/VDF/DATA/DIRECT/123 family (spec.md §4.2, case-insensitive).
func isGetBlockKeyword(ident string) bool {
	up := strings.ToUpper(strings.TrimSpace(ident))
	for _, form := range []string{"GET XLS", "GET VDF", "GET DATA", "GET DIRECT", "GET 123"} {
		if strings.HasPrefix(up, form) {
			return true
		}
	}
	return false
}
