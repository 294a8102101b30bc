package symbol

// ElementKind tags the four flavors of ViewElement a sketch can contain
// (spec.md §3 "View", grounded on VensimView.h's VensimViewElement
// hierarchy: VARIABLE, VALVE, COMMENT, CONNECTOR).
type ElementKind int

const (
	ElementVariable ElementKind = iota
	ElementValve
	ElementComment
	ElementConnector
)

// Bounds is the screen-space rectangle every view element carries.
type Bounds struct {
	X, Y, Width, Height int
}

// ViewElement is implemented by every node that can live on a sketch: a
// variable box, a flow valve, a free-floating comment, or a connector arc.
// As with Expr, this replaces the teacher domain's virtual-dispatch
// hierarchy with a tagged sum over concrete structs.
type ViewElement interface {
	Kind() ElementKind
	Bounds() Bounds
}

// VariableElement places a Variable on a view, possibly as a ghost (an
// alias placed for diagram readability that the typing pass must
// eventually attach to its real owner elsewhere in the sketch).
type VariableElement struct {
	Box Bounds
	UID int

	Var        *Variable
	Ghost      bool
	CrossLevel bool // ghost that reaches into a different model group
	Attached   bool // flow box already attached to a valve
}

func (e *VariableElement) Kind() ElementKind { return ElementVariable }
func (e *VariableElement) Bounds() Bounds    { return e.Box }

// ValveElement is the circle-on-a-pipe flow-rate control for a stock's
// inflow or outflow.
type ValveElement struct {
	Box Bounds
	UID int

	Attached bool
}

func (e *ValveElement) Kind() ElementKind { return ElementValve }
func (e *ValveElement) Bounds() Bounds    { return e.Box }

// CommentElement is free text placed on the sketch with no model meaning.
type CommentElement struct {
	Box  Bounds
	UID  int
	Text string
}

func (e *CommentElement) Kind() ElementKind { return ElementComment }
func (e *CommentElement) Bounds() Bounds    { return e.Box }

// ConnectorElement is a causal-link arrow or a pipe segment, referenced by
// the UIDs of its endpoints rather than by pointer, matching Vensim's own
// on-disk representation and the spec's explicit decision to keep UID
// references for anything serialized in view geometry (spec.md §3).
type ConnectorElement struct {
	Box  Bounds
	UID  int
	From int
	To   int

	// MidX, MidY is the arc's control point, the third point (alongside the
	// From/To element positions) the angle attribute is solved from
	// (spec.md §4.5 "angle attribute computed from a three-point arc
	// solution"). Zero when the sketch recorded a straight connector.
	MidX, MidY int

	// Polarity is the sketch's polarity character, with 'S'/'s' stored as
	// '+' and 'O'/'o' as '-'; 0 for a plain pipe/unmarked link.
	Polarity byte
}

func (e *ConnectorElement) Kind() ElementKind { return ElementConnector }
func (e *ConnectorElement) Bounds() Bounds    { return e.Box }

// Invalidate severs this connector by zeroing both endpoints, the
// convention the reconciliation pass uses to mark a link dead without
// compacting the element slice mid-iteration (spec.md §4.4(e)).
func (e *ConnectorElement) Invalidate() {
	e.From, e.To = 0, 0
}

// FromAlias reports whether this connector's source endpoint is itself an
// alias UID rather than a direct variable-element UID; callers resolve the
// real source by following the alias chain in the owning View.
func (e *ConnectorElement) FromAlias(v *View) (int, bool) {
	if ve, ok := v.ByUID[e.From].(*VariableElement); ok && ve.Ghost {
		return e.From, true
	}
	return 0, false
}

// View is one sketch page: a title, its elements, and the running UID
// counter used to mint new element identifiers (spec.md §3, grounded on
// VensimView).
type View struct {
	Title string

	Elements []ViewElement
	ByUID    map[int]ViewElement

	nextUID  int
	uidBase  int // offset added so UIDs stay unique across multiple views
}

// NewView returns an empty view whose UID minting starts at uidBase+1.
func NewView(title string, uidBase int) *View {
	return &View{
		Title:   title,
		ByUID:   make(map[int]ViewElement),
		nextUID: uidBase + 1,
		uidBase: uidBase,
	}
}

// NextUID mints and reserves the next UID for this view.
func (v *View) NextUID() int {
	uid := v.nextUID
	v.nextUID++
	return uid
}

// Add registers an element under uid, appending it to Elements.
func (v *View) Add(uid int, el ViewElement) {
	v.Elements = append(v.Elements, el)
	v.ByUID[uid] = el
}

// FindVariable returns the UID of the VariableElement already placed for
// vr at (x, y), or mints and adds a new one if none exists yet (spec.md
// §4.4(e) "FindVariable ... add if necessary - returns UID").
func (v *View) FindVariable(vr *Variable, x, y int) int {
	for uid, el := range v.ByUID {
		if ve, ok := el.(*VariableElement); ok && ve.Var == vr {
			return uid
		}
	}
	uid := v.NextUID()
	v.Add(uid, &VariableElement{Box: Bounds{X: x, Y: y}, UID: uid, Var: vr})
	return uid
}

// MaxX and MaxY report the furthest extent of any element's bounding box,
// used to lay out newly-synthesized elements (placeholders, ghost
// upgrades) past the existing sketch content (spec.md §4.4(e)).
func (v *View) MaxX(defaultVal int) int {
	max := defaultVal
	for _, el := range v.Elements {
		if b := el.Bounds(); b.X+b.Width > max {
			max = b.X + b.Width
		}
	}
	return max
}

func (v *View) MaxY(defaultVal int) int {
	max := defaultVal
	for _, el := range v.Elements {
		if b := el.Bounds(); b.Y+b.Height > max {
			max = b.Y + b.Height
		}
	}
	return max
}

// ModelGroup is a named Vensim "view group" (a fold-out subset of a view's
// variables), nestable via Owner, and - for module-mode emission -
// associated with the submodel it was promoted into (spec.md §4.4(e),
// grounded on Symbol.h's ModelGroup).
type ModelGroup struct {
	Name      string
	Owner     *ModelGroup
	Depth     int
	Variables []*Variable

	// Module names the submodel this group was promoted into by the
	// sector/module split (nil unless the conversion target is module
	// mode, spec.md §5 "Module mode").
	Module *string
}

// NewModelGroup creates a named group nested under owner (nil for a
// top-level group).
func NewModelGroup(name string, owner *ModelGroup) *ModelGroup {
	depth := 0
	if owner != nil {
		depth = owner.Depth + 1
	}
	return &ModelGroup{Name: name, Owner: owner, Depth: depth}
}
