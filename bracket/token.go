package bracket

// TypeID identifies a configured bracket type. It is the index of the type
// in Settings.Types and is resolved once when the settings are built.
type TypeID int

// BracketType is a configured open/close pair with its color cycle.
type BracketType struct {
	ID          TypeID
	Open        string
	Close       string
	Colors      []string
	OrphanColor string
}

// LineID is the identity of a cached line. Unlike a line index it does not
// change when lines are inserted or removed above the line.
type LineID uint64

// Ref addresses a bracket inside the bracket arena of a cached line.
// The zero Ref refers to nothing.
type Ref struct {
	Line  LineID
	Index int
}

func (r Ref) Valid() bool {
	return r.Line != 0
}

// Token is one scanned bracket occurrence.
type Token struct {
	Char  string
	Type  TypeID
	Open  bool
	Depth int
	Begin int
	End   int
	Line  LineID
}

// Bracket is a Token with its assigned color. Pair links an open bracket to
// its close bracket and back; the link is not an ownership edge, both
// brackets belong to their own line's arena.
type Bracket struct {
	Token
	ColorIndex int
	Color      string
	Orphan     bool
	Pair       Ref
}

type ColorRange struct {
	Color string
	Begin int
	End   int
}

type Position struct {
	Line      int
	Character int
}

func (p Position) Before(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Character < o.Character
}

type Range struct {
	Start Position
	End   Position
}

// Contains reports whether o lies within r.
func (r Range) Contains(o Range) bool {
	return !o.Start.Before(r.Start) && !r.End.Before(o.End)
}

func (r Range) Empty() bool {
	return r.Start == r.End
}
