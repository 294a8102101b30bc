package vensim

import "github.com/sdxlate/vxmile/symbol"

// FrontEnd is the seam a second source-language tokenizer/parser pair
// would implement: consume a buffer, build equations into a shared
// Namespace, and recover from syntax errors the same way Parser does.
// *Parser satisfies it. A Dynamo front-end targeting the same AST is out
// of scope here (excluded up front, not dropped after the fact).
type FrontEnd interface {
	ParseModel() []*symbol.Equation
}

var _ FrontEnd = (*Parser)(nil)
