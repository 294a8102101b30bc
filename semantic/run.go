package semantic

// Run drives every pass in the fixed order spec.md §4.4 mandates. order
// controls whether the optional compute-order pass (d) runs; canonicalize
// controls the optional rename pass (f).
func Run(ctx *Context, order, canonicalize bool) {
	MarkTypes(ctx)
	SynthesizePlaceholders(ctx)
	ResolveStockFlows(ctx)
	ExpandSubscripts(ctx)
	if order {
		OrderEquations(ctx)
	}
	ReconcileViews(ctx)
	if canonicalize {
		CanonicalizeNames(ctx)
	}
}
