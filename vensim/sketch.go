package vensim

import (
	"strconv"
	"strings"

	"github.com/sdxlate/vxmile/symbol"
)

// ParseViews reads the raw sketch section that follows a SketchOpen
// token, line by line, and builds one symbol.View per "V300 "/"V364 "
// block. The per-line comma-record shape (type, uid, then type-specific
// fields) is grounded on VensimView::ReadView and the individual
// VensimVariableElement/VensimValveElement/VensimCommentElement/
// VensimConnectorElement constructors (original_source
// Vensim/VensimView.cpp); reading stops at the SketchClose marker line
// (spec.md §4.2 "sketch-section passthrough").
func ParseViews(lex *Lexer, ns *symbol.Namespace) []*symbol.View {
	var views []*symbol.View
	var cur *symbol.View
	uidBase := 0

	for {
		line, ok := nextRawLine(lex)
		if !ok {
			break
		}
		line = strings.TrimRight(line, "\r")
		switch {
		case strings.Contains(line, "///---\\"):
			if cur != nil {
				views = append(views, cur)
				cur = nil
			}
			return views
		case strings.HasPrefix(line, "V300 ") || strings.HasPrefix(line, "V364 "):
			if cur != nil {
				views = append(views, cur)
			}
			cur = symbol.NewView("", uidBase)
			uidBase += 10000
		case strings.HasPrefix(line, "*"):
			if cur != nil && cur.Title == "" {
				cur.Title = strings.TrimPrefix(line, "*")
			}
		case line == "":
			// blank separator line between view header and body
		default:
			if cur != nil {
				parseSketchRecord(cur, line, ns)
			}
		}
	}
	if cur != nil {
		views = append(views, cur)
	}
	return views
}

// nextRawLine reads the remainder of the lexer's current source line,
// consuming the trailing newline so the next call starts on the
// following line (Lexer.ReadLine leaves the newline unconsumed so normal
// tokenizing can still see it).
func nextRawLine(l *Lexer) (string, bool) {
	if l.peek() == eof {
		return "", false
	}
	line := l.ReadLine()
	if l.peek() == '\n' {
		l.next()
	}
	return line, true
}

func parseSketchRecord(view *symbol.View, line string, ns *symbol.Namespace) {
	fields := strings.Split(line, ",")
	if len(fields) < 2 {
		return
	}
	typ, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return
	}
	uid, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return
	}

	switch typ {
	case 10:
		parseVariableRecord(view, uid, fields, ns)
	case 11:
		parseValveRecord(view, uid, fields)
	case 12:
		parseCommentRecord(view, uid, fields)
	case 1:
		parseConnectorRecord(view, uid, fields)
	}
}

func intField(fields []string, i int) int {
	if i >= len(fields) {
		return 0
	}
	v, _ := strconv.Atoi(strings.TrimSpace(fields[i]))
	return v
}

func strField(fields []string, i int) string {
	if i >= len(fields) {
		return ""
	}
	return strings.Trim(fields[i], `" `)
}

func parseVariableRecord(view *symbol.View, uid int, fields []string, ns *symbol.Namespace) {
	name := strField(fields, 2)
	box := symbol.Bounds{
		X:      intField(fields, 3),
		Y:      intField(fields, 4),
		Width:  intField(fields, 5),
		Height: intField(fields, 6),
	}
	shape := intField(fields, 7)
	bits := intField(fields, 8)

	attached := shape&(1<<5) != 0
	ghost := bits&1 == 0

	el := &symbol.VariableElement{Box: box, UID: uid, Ghost: ghost, Attached: attached}

	sym := ns.Find(name)
	if sym != nil {
		if v, ok := sym.Owner.(*symbol.Variable); ok {
			el.Var = v
			if v.View != nil {
				el.Ghost = true
			} else if !ghost {
				v.View = view
				if attached {
					v.AsFlow = true
				}
			}
		}
	}
	view.Add(uid, el)
}

func parseValveRecord(view *symbol.View, uid int, fields []string) {
	box := symbol.Bounds{
		X:      intField(fields, 3),
		Y:      intField(fields, 4),
		Width:  intField(fields, 5),
		Height: intField(fields, 6),
	}
	attached := intField(fields, 7)&(1<<5) != 0
	view.Add(uid, &symbol.ValveElement{Box: box, UID: uid, Attached: attached})
}

func parseCommentRecord(view *symbol.View, uid int, fields []string) {
	box := symbol.Bounds{
		X:      intField(fields, 3),
		Y:      intField(fields, 4),
		Width:  intField(fields, 5),
		Height: intField(fields, 6),
	}
	view.Add(uid, &symbol.CommentElement{Box: box, UID: uid, Text: strField(fields, 2)})
}

func parseConnectorRecord(view *symbol.View, uid int, fields []string) {
	from := intField(fields, 2)
	to := intField(fields, 3)
	polarityCode := intField(fields, 6)

	var polarity byte
	switch polarityCode {
	case 'S', 's':
		polarity = '+'
	case 'O', 'o':
		polarity = '-'
	default:
		if polarityCode > 0 && polarityCode < 256 {
			polarity = byte(polarityCode)
		}
	}
	midX, midY, _ := parseConnectorMidpoint(fields)
	view.Add(uid, &symbol.ConnectorElement{UID: uid, From: from, To: to, Polarity: polarity, MidX: midX, MidY: midY})
}

// parseConnectorMidpoint pulls the arc control point out of the tail of a
// connector record, which looks like "1|(150,195)|"; comma-splitting the
// record cuts that pair across the last two fields, so the fields are
// rejoined and the pair is read from the last '(' onward
// (original_source Vensim/VensimView.cpp's VensimConnectorElement
// constructor reads it with sscanf("%d|(%d,%d)", &npoints, &_x, &_y)
// straight off the raw buffer, rather than through its usual comma-field
// reader, because the midpoint pair isn't itself comma-delimited from the
// point count that precedes it).
func parseConnectorMidpoint(fields []string) (x, y int, ok bool) {
	if len(fields) == 0 {
		return 0, 0, false
	}
	line := strings.Join(fields, ",")
	open := strings.LastIndexByte(line, '(')
	if open < 0 {
		return 0, 0, false
	}
	last := line[open:]
	open = 0
	comma := strings.IndexByte(last, ',')
	shut := strings.IndexByte(last, ')')
	if comma < open || shut < comma {
		return 0, 0, false
	}
	x, errX := strconv.Atoi(strings.TrimSpace(last[open+1 : comma]))
	y, errY := strconv.Atoi(strings.TrimSpace(last[comma+1 : shut]))
	if errX != nil || errY != nil {
		return 0, 0, false
	}
	return x, y, true
}
