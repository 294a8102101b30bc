package symbol

// ListEntry is one element of a SymbolList: either a bare (possibly
// bang-marked) symbol, or a nested SymbolList used for Vensim's "(a-b)"
// range shorthand and for map lists (spec.md §3).
type ListEntry struct {
	Sym    *Symbol    // nil if Nested != nil
	Bang   bool       // trailing "!" marks iteration over a dimension
	Nested *SymbolList
}

// SymbolList is an ordered sequence of entries used on both the LHS
// (subscript tuples, except-lists) and the RHS (subscript-range
// definitions) of an equation.
type SymbolList struct {
	Entries  []ListEntry
	MapRange *SymbolList // optional "->" target
}

// NewSymbolList returns an empty list.
func NewSymbolList() *SymbolList {
	return &SymbolList{}
}

// Append adds a bare symbol entry.
func (l *SymbolList) Append(sym *Symbol, bang bool) {
	l.Entries = append(l.Entries, ListEntry{Sym: sym, Bang: bang})
}

// AppendNested adds a nested-list entry (range shorthand or map list).
func (l *SymbolList) AppendNested(nested *SymbolList) {
	l.Entries = append(l.Entries, ListEntry{Nested: nested})
}

// Flatten expands range shorthand and nested lists into a flat slice of
// leaf symbols, in order, preserving duplicates (callers that need a set
// should dedupe themselves).
func (l *SymbolList) Flatten() []*Symbol {
	var out []*Symbol
	for _, e := range l.Entries {
		if e.Nested != nil {
			out = append(out, e.Nested.Flatten()...)
			continue
		}
		if e.Sym != nil {
			out = append(out, e.Sym)
		}
	}
	return out
}

// Len returns the number of top-level entries.
func (l *SymbolList) Len() int {
	return len(l.Entries)
}

// ExceptList is a list of subscript tuples excluded from an equation via
// Vensim's :EXCEPT: clause (spec.md §3 "Left-hand side").
type ExceptList struct {
	Tuples []*SymbolList
}
