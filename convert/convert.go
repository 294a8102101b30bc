// Package convert implements the spec.md §6 external interface: a single
// call that turns a Vensim .mdl document into XMILE, collapsing the
// teacher's separate xmileconv/xmileserv entry points into one library
// function both can call.
package convert

import (
	"encoding/xml"
	"fmt"
	"go/token"

	"github.com/sdxlate/vxmile/compat"
	"github.com/sdxlate/vxmile/semantic"
	"github.com/sdxlate/vxmile/symbol"
	"github.com/sdxlate/vxmile/vensim"
	"github.com/sdxlate/vxmile/xmile"
)

// Options configures a single Convert call (spec.md §6, layered over
// config.Options defaults by the CLI/HTTP collaborators).
type Options struct {
	Compact   bool
	LongNames bool
	AsSectors bool
	ModelName string
	SimSpec   xmile.SimSpec
}

// Convert translates src, a Vensim .mdl document, into an XMILE document.
// ok is false if the source contained no usable equations; partial
// semantic errors are logged but do not fail the conversion (spec.md §7
// "semantic errors ... degrade gracefully").
func Convert(src []byte, opts Options) (xmileDoc []byte, ok bool) {
	fset := token.NewFileSet()
	file := fset.AddFile("<mdl>", fset.Base(), len(src))

	ns := symbol.NewNamespace()
	reg := symbol.NewRegistry()
	lex := vensim.NewLexer(string(src), file)
	parser := vensim.NewParser(file, ns, reg, lex)

	eqs := parser.ParseModel()
	if len(eqs) == 0 {
		for _, msg := range parser.Errors() {
			logger.WithField("pass", "parse").Error(msg)
		}
		return nil, false
	}
	for _, msg := range parser.Errors() {
		logger.WithField("pass", "parse").Warn(msg)
	}

	var views []*symbol.View
	if lex.Peek().Kind == vensim.SketchOpen {
		lex.NextToken()
		views = vensim.ParseViews(lex, ns)
	}

	ctx := semantic.NewContext(ns, reg, views, nil, logger)
	// Pass (d)'s compute-order classification is not required to emit
	// XMILE (spec.md §4.4(d)) and is left for callers that specifically
	// want it; Convert runs only the passes the emitter depends on.
	semantic.Run(ctx, false, opts.LongNames)
	for _, err := range ctx.Errors() {
		logger.WithField("pass", "semantic").Warn(err)
	}

	modelName := opts.ModelName
	if modelName == "" {
		modelName = file.Name()
	}
	emitOpts := xmile.Options{ModelName: modelName, ModuleMode: !opts.AsSectors, SimSpec: opts.SimSpec}
	f := xmile.Emit(ctx, emitOpts)
	if emitOpts.ModuleMode {
		compat.Attach(f)
	}

	indent := "    "
	if opts.Compact {
		indent = ""
	}
	out, err := xml.MarshalIndent(f, "", indent)
	if err != nil {
		logger.WithField("pass", "emit").Errorf("xml.MarshalIndent: %s", err)
		return nil, false
	}

	doc := append([]byte(xmile.XMLDeclaration+"\n"), out...)
	doc = append(doc, '\n')

	if len(parser.Errors()) > 0 || len(ctx.Errors()) > 0 {
		logger.Warn("writing output file, but we had errors")
	}
	return doc, true
}

// Errorf is exposed so the CLI/HTTP collaborators can add their own
// top-level diagnostics to the shared log alongside convert's own.
func Errorf(format string, args ...interface{}) {
	logger.Error(fmt.Sprintf(format, args...))
}
