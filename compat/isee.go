// Package compat supplies the isee Systems namespace plumbing a
// module-mode XMILE export needs to open cleanly in STELLA/iThink: the
// xmlns:isee declaration and the <prefs> block. The dotted Module.Variable
// reference form used by <connect> elements is built by the xmile emitter,
// not here.
package compat

import (
	"regexp"
	"strings"

	"github.com/sdxlate/vxmile/xmile"
)

const ns = "https://www.iseesystems.com/XMILE/v1.0/isee"

// Attach decorates f with the isee preferences block and namespace
// declaration a module-mode file needs. A sector-mode file has no module
// boundaries to annotate and is left untouched by callers.
func Attach(f *xmile.File) {
	f.IseeNS = ns
	f.Prefs = &xmile.IseePrefs{
		Layer:          "model",
		GridWidth:      "10",
		GridHeight:     "10",
		DivByZeroAlert: true,
		ShowModPrefix:  true,
		Window:         &xmile.Window{Size: xmile.Size{Width: 800, Height: 600}},
	}
}

var whitespaceRegexp = regexp.MustCompile(`[ \t\r\n]+`)

// CanonicalName collapses whitespace into a single underscore and trims
// the result, the normalization a module/file title needs before it can
// serve as an XMILE model name.
func CanonicalName(in string) string {
	return whitespaceRegexp.ReplaceAllString(strings.TrimSpace(in), "_")
}
