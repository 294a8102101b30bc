// Package semantic implements the passes that turn a parsed Vensim symbol
// graph into the normalized shape the XMILE emitter expects: variable
// classification, stock/flow decomposition, subscript expansion, optional
// equation ordering, view reconciliation, and name canonicalization
// (spec.md §4.4).
package semantic

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sdxlate/vxmile/symbol"
)

// Context threads the namespace, function registry, and diagnostic log
// through every pass. Passes mutate the graph reachable from ns in place
// rather than returning a new graph (spec.md §4.4 "semantic passes mutate
// the graph in place").
type Context struct {
	NS       *symbol.Namespace
	Registry *symbol.Registry
	Views    []*symbol.View
	Groups   []*symbol.ModelGroup

	Log *logrus.Logger

	errs []error

	// Classes holds the optional pass (d) compute-order classification,
	// keyed by variable. Nil until OrderEquations runs.
	Classes map[*symbol.Variable]EqClass
}

// NewContext returns a pass context over an already-parsed namespace.
func NewContext(ns *symbol.Namespace, reg *symbol.Registry, views []*symbol.View, groups []*symbol.ModelGroup, log *logrus.Logger) *Context {
	if log == nil {
		log = logrus.New()
	}
	return &Context{NS: ns, Registry: reg, Views: views, Groups: groups, Log: log}
}

// Errorf records a non-fatal semantic error: passes keep going (spec.md
// §7 "semantic errors ... degrade gracefully rather than aborting the
// whole translation").
func (c *Context) Errorf(format string, args ...interface{}) {
	err := fmt.Errorf(format, args...)
	c.errs = append(c.errs, err)
	c.Log.WithField("pass", "semantic").Warn(err)
}

// Errors returns every error recorded across all passes run so far.
func (c *Context) Errors() []error { return c.errs }

// Variables returns every Variable currently in the namespace.
func (c *Context) Variables() []*symbol.Variable {
	var out []*symbol.Variable
	c.NS.Iterate(func(s *symbol.Symbol) {
		if v, ok := s.Owner.(*symbol.Variable); ok {
			out = append(out, v)
		}
	})
	return out
}
