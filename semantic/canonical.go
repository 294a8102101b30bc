package semantic

import (
	"strings"
	"unicode"
)

// CanonicalizeNames is pass (f), optional: derive a readable alternate
// name from each variable's comment and rename it in the namespace if
// the result is unique and short enough (spec.md §4.4(f)).
func CanonicalizeNames(ctx *Context) {
	for _, v := range ctx.Variables() {
		if v.Comment == "" {
			continue
		}
		candidate := deriveCanonicalName(v.Comment)
		if candidate == "" || len(candidate) > 80 || candidate == v.Name {
			continue
		}
		if ctx.NS.Find(candidate) != nil {
			continue
		}
		if ctx.NS.Rename(&v.Symbol, candidate) {
			v.AlternateName = candidate
		}
	}
}

func deriveCanonicalName(comment string) string {
	joined := strings.Join(strings.Fields(comment), "_")
	var b strings.Builder
	for _, r := range joined {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
