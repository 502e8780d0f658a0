package bracket

type openEntry struct {
	typ        TypeID
	colorIndex int
	ref        Ref
}

// stackNode is an immutable stack cell. Pushing allocates a new head and
// popping returns the tail, so a stack can be shared by every line snapshot
// that saw it.
type stackNode struct {
	entry openEntry
	next  *stackNode
	size  int
}

func (n *stackNode) len() int {
	if n == nil {
		return 0
	}
	return n.size
}

func (n *stackNode) push(e openEntry) *stackNode {
	return &stackNode{entry: e, next: n, size: n.len() + 1}
}

func (n *stackNode) equal(o *stackNode) bool {
	for n != o {
		if n == nil || o == nil || n.entry != o.entry {
			return false
		}
		n, o = n.next, o.next
	}
	return true
}

// ColorIndexState is the open-bracket bookkeeping at a scan position. In
// Consecutive mode it holds a single slot shared by all bracket types, in
// Independent mode one slot per type.
type ColorIndexState struct {
	mode      ColorMode
	stacks    []*stackNode
	prevIndex []int
	prevColor []string
}

func NewColorIndexState(mode ColorMode, types int) ColorIndexState {
	slots := 1
	if mode == Independent {
		slots = types
	}
	s := ColorIndexState{
		mode:      mode,
		stacks:    make([]*stackNode, slots),
		prevIndex: make([]int, slots),
		prevColor: make([]string, slots),
	}
	for i := range s.prevIndex {
		s.prevIndex[i] = -1
	}
	return s
}

func (s ColorIndexState) slot(t TypeID) int {
	if s.mode == Independent {
		return int(t)
	}
	return 0
}

// Clone copies the per-slot headers. Stack cells are shared.
func (s ColorIndexState) Clone() ColorIndexState {
	return ColorIndexState{
		mode:      s.mode,
		stacks:    append([]*stackNode(nil), s.stacks...),
		prevIndex: append([]int(nil), s.prevIndex...),
		prevColor: append([]string(nil), s.prevColor...),
	}
}

// Depth is the length of the stack a bracket of type t is pushed onto.
func (s ColorIndexState) Depth(t TypeID) int {
	return s.stacks[s.slot(t)].len()
}

// OpenCount counts the unclosed open brackets of type t.
func (s ColorIndexState) OpenCount(t TypeID) int {
	if s.mode == Independent {
		return s.stacks[t].len()
	}
	n := 0
	for c := s.stacks[0]; c != nil; c = c.next {
		if c.entry.typ == t {
			n++
		}
	}
	return n
}

// PreviousIndex is the color index of the last open bracket on t's slot,
// or -1.
func (s ColorIndexState) PreviousIndex(t TypeID) int {
	return s.prevIndex[s.slot(t)]
}

// PreviousColor is the last color emitted on t's slot.
func (s ColorIndexState) PreviousColor(t TypeID) string {
	return s.prevColor[s.slot(t)]
}

// OpenRefs lists the unclosed open brackets, innermost first.
func (s ColorIndexState) OpenRefs() []Ref {
	var refs []Ref
	for _, st := range s.stacks {
		for c := st; c != nil; c = c.next {
			refs = append(refs, c.entry.ref)
		}
	}
	return refs
}

func (s ColorIndexState) Equal(o ColorIndexState) bool {
	if s.mode != o.mode || len(s.stacks) != len(o.stacks) {
		return false
	}
	for i := range s.stacks {
		if s.prevIndex[i] != o.prevIndex[i] || s.prevColor[i] != o.prevColor[i] {
			return false
		}
		if !s.stacks[i].equal(o.stacks[i]) {
			return false
		}
	}
	return true
}

// Policy assigns color indices to brackets. One policy serves both color
// modes; the mode only decides which slot of a ColorIndexState is used.
type Policy struct {
	types        []BracketType
	forceUnique  bool
	forceIterate bool
}

func NewPolicy(s *Settings) *Policy {
	return &Policy{
		types:        s.Types,
		forceUnique:  s.ForceUniqueOpeningColor,
		forceIterate: s.ForceIterationColorCycle,
	}
}

// AssignOpen picks the color of an open bracket of type t, pushes it onto
// t's stack and records it as the previous color.
func (p *Policy) AssignOpen(st *ColorIndexState, t TypeID, ref Ref) (int, string) {
	colors := p.types[t].Colors
	n := len(colors)
	slot := st.slot(t)

	var idx int
	if p.forceIterate {
		idx = (st.prevIndex[slot] + 1) % n
	} else {
		idx = st.stacks[slot].len() % n
	}
	if p.forceUnique && colors[idx] == st.prevColor[slot] {
		idx = (idx + 1) % n
	}

	st.stacks[slot] = st.stacks[slot].push(openEntry{typ: t, colorIndex: idx, ref: ref})
	st.prevIndex[slot] = idx
	st.prevColor[slot] = colors[idx]
	return idx, colors[idx]
}

// AssignClose resolves the color of a close bracket of type t. When the
// innermost open bracket on t's stack has the same type it is popped and
// its color and ref returned. Otherwise the bracket is an orphan and gets
// the orphan color; the stack is left untouched.
func (p *Policy) AssignClose(st *ColorIndexState, t TypeID) (color string, idx int, open Ref, paired bool) {
	slot := st.slot(t)
	top := st.stacks[slot]
	if top == nil || top.entry.typ != t {
		color = p.types[t].OrphanColor
		st.prevColor[slot] = color
		return color, -1, Ref{}, false
	}

	st.stacks[slot] = top.next
	color = p.types[t].Colors[top.entry.colorIndex]
	st.prevColor[slot] = color
	return color, top.entry.colorIndex, top.entry.ref, true
}
