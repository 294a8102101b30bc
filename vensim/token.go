// Copyright 2013 Bobby Powers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vensim

import (
	"fmt"
	"go/token"
)

// Kind classifies a lexed Token (spec.md §4.2 "Token classes").
type Kind int

const (
	EOF Kind = iota
	Ident
	QuotedIdent // "..." quoted identifier
	Number
	Literal     // '...' single-quoted literal
	Keyword     // :MACRO:, :AND:, :EXCEPT:, ...
	OpaqueCall  // {GET XLS ...(...)} passthrough block
	Group       // ***name
	Punct       // single-char punctuation: ( ) [ ] , ; ! | ~ ?
	Op          // := = <= >= <> < > + - * / ^ <-> ->
	EquationEnd // ~~|
	SketchOpen  // \---///
	SketchClose // ///---\
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Ident:
		return "ident"
	case QuotedIdent:
		return "qident"
	case Number:
		return "number"
	case Literal:
		return "literal"
	case Keyword:
		return "keyword"
	case OpaqueCall:
		return "opaque"
	case Group:
		return "group"
	case Punct:
		return "punct"
	case Op:
		return "op"
	case EquationEnd:
		return "eqend"
	case SketchOpen:
		return "sketchopen"
	case SketchClose:
		return "sketchclose"
	default:
		return "?"
	}
}

// Token is one lexed unit: its class, source text, and position.
type Token struct {
	Kind Kind
	Text string
	Pos  token.Pos
}

func (t Token) String() string {
	return fmt.Sprintf("(%s %q)", t.Kind, t.Text)
}

// keywords lists the recognized Vensim keyword tokens (spec.md §4.2).
// Matching is greedy and tolerant of internal space/underscore runs, so
// this table is consulted after folding those runs to a single space.
var keywords = map[string]bool{
	":macro:":          true,
	":end of macro:":   true,
	":and:":            true,
	":or:":             true,
	":not:":            true,
	":na:":             true,
	":hold backward:":  true,
	":look forward:":   true,
	":interpolate:":    true,
	":raw:":            true,
	":except:":         true,
	":test input:":     true,
	":the condition:":  true,
	":implies:":        true,
}
