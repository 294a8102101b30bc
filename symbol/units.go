package symbol

import (
	"fmt"
	"sort"
	"strings"
)

// Range describes an optional (min,max,step) bound carried by a unit
// expression, e.g. Vensim's `units [0,100,1]`.
type Range struct {
	Min, Max, Step float64
}

// UnitExpression is a multiset pair (numerator, denominator) of unit atoms
// plus an optional numeric range (spec.md §3).
type UnitExpression struct {
	Numerator   []string
	Denominator []string
	Range       *Range
}

// NewUnitExpression parses a Vensim unit string of the form
// "atom*atom/atom" optionally followed by "[min,max,step]". It never
// returns an error: malformed fragments degrade to a single opaque
// numerator atom, since unit parsing failures are not supposed to abort
// translation (spec.md Non-goals: "performing unit algebra beyond
// simplification of identical factors").
func NewUnitExpression(raw string) *UnitExpression {
	raw = strings.TrimSpace(raw)
	u := &UnitExpression{}

	body := raw
	if i := strings.IndexByte(raw, '['); i >= 0 && strings.HasSuffix(raw, "]") {
		body = raw[:i]
		u.Range = parseRange(raw[i+1 : len(raw)-1])
	}

	num, den := splitFraction(body)
	u.Numerator = splitAtoms(num)
	u.Denominator = splitAtoms(den)
	return u
}

func splitFraction(s string) (num, den string) {
	if i := strings.IndexByte(s, '/'); i >= 0 {
		return s[:i], s[i+1:]
	}
	return s, ""
}

func splitAtoms(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "*")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseRange(s string) *Range {
	parts := strings.Split(s, ",")
	var vals [3]float64
	for i := 0; i < len(parts) && i < 3; i++ {
		fmt.Sscanf(strings.TrimSpace(parts[i]), "%g", &vals[i])
	}
	return &Range{Min: vals[0], Max: vals[1], Step: vals[2]}
}

// Simplify cancels identical atoms appearing in both the numerator and the
// denominator (spec.md §3 "Equality-based simplification cancels identical
// atoms") and returns a new, reduced UnitExpression. The range, if any, is
// preserved unchanged.
func Simplify(u *UnitExpression) *UnitExpression {
	num := multiset(u.Numerator)
	den := multiset(u.Denominator)
	for atom, n := range num {
		if d, ok := den[atom]; ok {
			cancel := min(n, d)
			num[atom] -= cancel
			den[atom] -= cancel
		}
	}
	return &UnitExpression{
		Numerator:   expandMultiset(num),
		Denominator: expandMultiset(den),
		Range:       u.Range,
	}
}

func multiset(atoms []string) map[string]int {
	m := make(map[string]int, len(atoms))
	for _, a := range atoms {
		m[a]++
	}
	return m
}

func expandMultiset(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out []string
	for _, k := range keys {
		for i := 0; i < m[k]; i++ {
			out = append(out, k)
		}
	}
	return out
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Render produces a canonical string for a (simplified) unit expression:
// "n1*n2/d1*d2" with an optional "[min,max,step]" suffix. Multiplying two
// unit expressions and simplifying the product renders identically to
// simplifying each operand and concatenating, which is spec.md §8
// invariant 5 ("simplify(u)*simplify(v) and simplify(u*v) render to the
// same string") given the canonical sorted-atom form below.
func Render(u *UnitExpression) string {
	s := Simplify(u)
	var b strings.Builder
	if len(s.Numerator) == 0 {
		b.WriteString("1")
	} else {
		b.WriteString(strings.Join(s.Numerator, "*"))
	}
	if len(s.Denominator) > 0 {
		b.WriteString("/")
		b.WriteString(strings.Join(s.Denominator, "*"))
	}
	if s.Range != nil {
		fmt.Fprintf(&b, "[%g,%g,%g]", s.Range.Min, s.Range.Max, s.Range.Step)
	}
	return b.String()
}

// Multiply combines two unit expressions by concatenating their atom
// multisets (numerator with numerator, denominator with denominator); the
// result is not simplified until Render or Simplify is called on it.
func Multiply(a, b *UnitExpression) *UnitExpression {
	out := &UnitExpression{
		Numerator:   append(append([]string{}, a.Numerator...), b.Numerator...),
		Denominator: append(append([]string{}, a.Denominator...), b.Denominator...),
	}
	if a.Range != nil {
		out.Range = a.Range
	} else {
		out.Range = b.Range
	}
	return out
}
