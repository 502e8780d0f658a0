package bracket

import (
	"errors"
	"fmt"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("rainbow.bracket")

var (
	ErrInconsistentCache = errors.New("bracket cache is inconsistent")
	ErrLineOutOfRange    = errors.New("line out of range")
)

// ScanError reports a tokenizer failure on a line. The scan that hit it
// was abandoned and the previous results kept.
type ScanError struct {
	Line int
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan line %d: %v", e.Line, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// TextSource is the document text being colorized.
type TextSource interface {
	LineCount() int
	Line(i int) string
}

// Lines is a TextSource over a slice of lines.
type Lines []string

func (l Lines) LineCount() int { return len(l) }

func (l Lines) Line(i int) string { return l[i] }

// Document is the incremental line cache of one text document. It is not
// safe for concurrent use; the owning pipeline serializes access.
type Document struct {
	settings  *Settings
	policy    *Policy
	tokenizer Tokenizer
	source    TextSource

	lines []*LineResult
	// real is the number of leading scanned (non synthetic) lines.
	real int
	// scanned is the source line count seen by the last completed scan.
	scanned int
	nextID  LineID
	dirty   int
	retry   bool

	// links are the pairings found by the scan in progress.
	links    []link
	unclosed map[Ref]bool
}

// NewDocument validates settings and returns an empty cache for source.
// The whole document is dirty until the first Update. A nil tokenizer
// selects a PatternTokenizer built from settings.
func NewDocument(source TextSource, settings *Settings, tokenizer Tokenizer) (*Document, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if tokenizer == nil {
		t, err := NewPatternTokenizer(settings)
		if err != nil {
			return nil, err
		}
		tokenizer = t
	}
	return &Document{
		settings:  settings,
		policy:    NewPolicy(settings),
		tokenizer: tokenizer,
		source:    source,
		dirty:     0,
	}, nil
}

func (d *Document) Settings() *Settings {
	return d.settings
}

func (d *Document) initialState() LineState {
	return LineState{
		Rule:   d.tokenizer.InitialState(),
		Colors: NewColorIndexState(d.settings.Mode, len(d.settings.Types)),
	}
}

func (d *Document) newID() LineID {
	d.nextID++
	return d.nextID
}

// MarkDirty lowers the dirty-line watermark to line. The watermark only
// decreases until Update consumes it.
func (d *Document) MarkDirty(line int) {
	if line < 0 {
		line = 0
	}
	if d.dirty < 0 || line < d.dirty {
		d.dirty = line
	}
}

// DirtyLine returns the watermark, if any line is dirty.
func (d *Document) DirtyLine() (int, bool) {
	return d.dirty, d.dirty >= 0
}

// Update re-scans from the dirty-line watermark and resets it.
func (d *Document) Update() error {
	if d.dirty < 0 {
		return nil
	}
	line := d.dirty
	d.dirty = -1
	return d.OnEdit(line)
}

// OnEdit discards the cached results from lowest on and re-scans. After
// each re-scanned line whose end state matches the end state the same
// line had before the edit, and whose following lines are textually
// unchanged, the rest of the previous results is reattached as is.
func (d *Document) OnEdit(lowest int) error {
	n := d.source.LineCount()
	if lowest < 0 || d.retry {
		lowest = 0
	}
	lowest = min(lowest, d.real, n)

	previous, previousReal := d.lines, d.real
	d.links = d.links[:0]
	removed := d.lines[lowest:d.real]
	shift := n - d.scanned
	reuse := !d.retry

	d.lines = make([]*LineResult, lowest, max(n, lowest))
	copy(d.lines, previous[:lowest])

	state := d.initialState()
	if lowest > 0 {
		state = d.lines[lowest-1].End
	}

	scanned, reused := 0, 0
	for i := lowest; i < n; i++ {
		text := d.source.Line(i)

		var old *LineResult
		j := i - shift - lowest
		if reuse && j >= 0 && j < len(removed) {
			old = removed[j]
		}
		id := d.newID()
		if old != nil {
			id = old.ID
		}

		line, err := d.scanLine(id, text, state)
		if err != nil {
			d.lines, d.real = previous, previousReal
			d.links = d.links[:0]
			d.retry = true
			log.Warningf("scan abandoned at line %d: %s", i, err)
			return &ScanError{Line: i, Err: err}
		}
		d.lines = append(d.lines, line)
		scanned++

		if old != nil && line.End.Equal(old.End) && d.tailUnchanged(removed[j+1:], i+1) {
			d.adoptPairs(line.End.Colors.OpenRefs(), d.lines[lowest:], removed[:j+1])
			d.lines = append(d.lines, removed[j+1:]...)
			reused = len(removed) - j - 1
			break
		}
		state = line.End
	}

	d.applyLinks()
	d.real = len(d.lines)
	d.scanned = n
	d.retry = false
	d.collectUnclosed()
	log.Debugf("scanned %d lines from %d, reused %d", scanned, lowest, reused)
	return nil
}

// tailUnchanged reports whether rest holds exactly the text of the source
// lines from first on.
func (d *Document) tailUnchanged(rest []*LineResult, first int) bool {
	if len(rest) != d.source.LineCount()-first {
		return false
	}
	for k, l := range rest {
		if l.Text != d.source.Line(first+k) {
			return false
		}
	}
	return true
}

func (d *Document) collectUnclosed() {
	d.unclosed = nil
	if d.real == 0 {
		return
	}
	refs := d.lines[d.real-1].End.Colors.OpenRefs()
	if len(refs) == 0 {
		return
	}
	d.unclosed = make(map[Ref]bool, len(refs))
	for _, r := range refs {
		d.unclosed[r] = true
	}
}

// LineCount is the number of cached lines, synthetic ones included.
func (d *Document) LineCount() int {
	return len(d.lines)
}

// GetLine returns the cached result of line index. Lines past the cache
// are synthesized empty, each starting from the state of the line before.
func (d *Document) GetLine(index int) *LineResult {
	if index < 0 {
		return nil
	}
	for len(d.lines) <= index {
		state := d.initialState()
		if len(d.lines) > 0 {
			state = d.lines[len(d.lines)-1].End.Clone()
		}
		d.lines = append(d.lines, &LineResult{ID: d.newID(), End: state, synthetic: true})
	}
	return d.lines[index]
}

// Lines returns the scanned lines.
func (d *Document) Lines() []*LineResult {
	return d.lines[:d.real]
}

// LineRanges returns the color ranges of line i. Open brackets still
// unclosed at the end of the document are reported in their orphan color.
func (d *Document) LineRanges(i int) []ColorRange {
	if i < 0 || i >= d.real {
		return nil
	}
	line := d.lines[i]
	if len(d.unclosed) == 0 {
		return line.Ranges
	}
	var ranges []ColorRange
	for k, b := range line.Brackets {
		if b.Open && d.IsUnclosed(Ref{Line: line.ID, Index: k}) {
			if ranges == nil {
				ranges = append([]ColorRange(nil), line.Ranges...)
			}
			ranges[k].Color = d.settings.Types[b.Type].OrphanColor
		}
	}
	if ranges == nil {
		return line.Ranges
	}
	return ranges
}

// ColorRanges groups the bracket ranges of the whole document by color.
// Every color the settings can produce is present, with an empty list if
// no bracket uses it, so that stale highlights of that color get cleared.
func (d *Document) ColorRanges() map[string][]Range {
	out := make(map[string][]Range)
	for _, c := range d.settings.Colors() {
		out[c] = []Range{}
	}
	for i := 0; i < d.real; i++ {
		for _, r := range d.LineRanges(i) {
			out[r.Color] = append(out[r.Color], Range{
				Start: Position{Line: i, Character: r.Begin},
				End:   Position{Line: i, Character: r.End},
			})
		}
	}
	return out
}

// IsUnclosed reports whether the open bracket at ref has no partner in the
// whole document.
func (d *Document) IsUnclosed(ref Ref) bool {
	return d.unclosed[ref]
}

// lineIndexOf searches backwards from line from for the line with id.
func (d *Document) lineIndexOf(id LineID, from int) (int, bool) {
	if from >= len(d.lines) {
		from = len(d.lines) - 1
	}
	for i := from; i >= 0; i-- {
		if d.lines[i].ID == id {
			return i, true
		}
	}
	return 0, false
}
