package lsp

import (
	"fmt"
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/rainbow/bracket"
	"github.com/dhamidi/rainbow/config"
	"github.com/dhamidi/rainbow/language"
	"github.com/dhamidi/rainbow/pipeline"
)

// Document is an open text document. pipeline is nil while the
// configuration is invalid; the text is tracked regardless.
type Document struct {
	URI        protocol.DocumentUri
	LanguageID string
	Language   string
	text       *Text
	pipeline   *pipeline.Pipeline
}

// Workspace holds the open documents and the configuration they were
// built with. Text is written only under the write lock and, when the
// document has a pipeline, also under the pipeline lock.
type Workspace struct {
	mu        sync.RWMutex
	loader    *config.Loader
	cfg       config.Config
	cfgErr    error
	languages *language.Table
	docs      map[protocol.DocumentUri]*Document
	out       *notifier
}

func NewWorkspace(loader *config.Loader, out *notifier) *Workspace {
	return &Workspace{
		loader:    loader,
		cfg:       config.Defaults(),
		languages: language.Builtin(),
		docs:      make(map[protocol.DocumentUri]*Document),
		out:       out,
	}
}

// Reload reads the configuration again and rebuilds every open document's
// pipeline from scratch. On error the running pipelines are kept.
func (w *Workspace) Reload() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	cfg, err := w.loader.Load()
	if err != nil {
		w.cfgErr = err
		log.Errorf("configuration: %s", err)
		w.out.showError(err)
		return err
	}
	w.cfg = cfg
	w.cfgErr = nil
	w.languages = cfg.LanguageTable()
	log.Infof("configuration loaded, rebuilding %d documents", len(w.docs))

	for _, d := range w.docs {
		if d.pipeline != nil {
			d.pipeline.Close()
			d.pipeline = nil
		}
		w.attachLocked(d)
	}
	return nil
}

// SetOverrides replaces the client settings used by the next Reload.
func (w *Workspace) SetOverrides(settings any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.loader.SetOverrides(settings)
}

func (w *Workspace) ConfigFile() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.loader.ConfigFile()
}

// Open starts tracking a document. A configuration error leaves the
// document without decorations until the configuration is fixed.
func (w *Workspace) Open(uri protocol.DocumentUri, languageID, content string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if old, ok := w.docs[uri]; ok && old.pipeline != nil {
		old.pipeline.Close()
	}
	d := &Document{URI: uri, LanguageID: languageID, text: NewText(content)}
	w.docs[uri] = d
	log.Infof("opened %s", uri)
	return w.attachLocked(d)
}

func (w *Workspace) attachLocked(d *Document) error {
	if w.cfgErr != nil {
		return w.cfgErr
	}
	path, _ := uriToPath(d.URI)
	var lang *language.Language
	if l, ok := w.languages.Detect(d.LanguageID, path, d.text.String()); ok {
		lang = &l
		d.Language = l.Name
	}
	settings, err := w.cfg.Settings(lang)
	if err != nil {
		w.out.showError(err)
		return err
	}
	sink := &documentSink{uri: d.URI, text: d.text, out: w.out}
	p, err := pipeline.New(d.text, settings, nil, w.cfg.DecorationOptions(), sink)
	if err != nil {
		w.out.showError(err)
		return err
	}
	d.pipeline = p
	return nil
}

// Change applies content changes in order. Changes without a range
// replace the whole text.
func (w *Workspace) Change(uri protocol.DocumentUri, changes []any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	d, ok := w.docs[uri]
	if !ok {
		return fmt.Errorf("change of unknown document %s", uri)
	}
	lowest := -1
	for _, c := range changes {
		switch c := c.(type) {
		case protocol.TextDocumentContentChangeEvent:
			if c.Range == nil {
				lowest = 0
				continue
			}
			first := int(min(c.Range.Start.Line, c.Range.End.Line))
			if lowest < 0 || first < lowest {
				lowest = first
			}
		case protocol.TextDocumentContentChangeEventWhole:
			lowest = 0
		}
	}
	if lowest < 0 {
		return nil
	}

	apply := func() {
		for _, c := range changes {
			switch c := c.(type) {
			case protocol.TextDocumentContentChangeEvent:
				if c.Range == nil {
					d.text.Replace(c.Text)
				} else {
					d.text.Apply(*c.Range, c.Text)
				}
			case protocol.TextDocumentContentChangeEventWhole:
				d.text.Replace(c.Text)
			}
		}
	}
	if d.pipeline == nil {
		apply()
		return nil
	}
	d.pipeline.Edit(lowest, apply)
	return nil
}

func (w *Workspace) Close(uri protocol.DocumentUri) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if d, ok := w.docs[uri]; ok {
		if d.pipeline != nil {
			d.pipeline.Close()
		}
		delete(w.docs, uri)
		log.Infof("closed %s", uri)
	}
}

// Shutdown closes every document.
func (w *Workspace) Shutdown() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for uri, d := range w.docs {
		if d.pipeline != nil {
			d.pipeline.Close()
		}
		delete(w.docs, uri)
	}
}

func (w *Workspace) Get(uri protocol.DocumentUri) *Document {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.docs[uri]
}

// withDocument runs fn with the document's pipeline while no change can
// be applied to its text.
func (w *Workspace) withDocument(uri protocol.DocumentUri, fn func(d *Document)) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	d, ok := w.docs[uri]
	if !ok || d.pipeline == nil {
		return false
	}
	fn(d)
	return true
}

// Select moves the document's cursor or selection.
func (w *Workspace) Select(uri protocol.DocumentUri, sel protocol.Range) {
	w.withDocument(uri, func(d *Document) {
		d.pipeline.Select(d.text.RangeToRune(sel))
	})
}

func (w *Workspace) ExpandSelection(uri protocol.DocumentUri, sel protocol.Range) (*protocol.Range, error) {
	var out *protocol.Range
	w.withDocument(uri, func(d *Document) {
		if r, ok := d.pipeline.ExpandSelection(d.text.RangeToRune(sel)); ok {
			pr := d.text.RangeToProtocol(r)
			out = &pr
		}
	})
	return out, nil
}

func (w *Workspace) UndoSelection(uri protocol.DocumentUri) (*protocol.Range, error) {
	var out *protocol.Range
	w.withDocument(uri, func(d *Document) {
		if r, ok := d.pipeline.UndoSelection(); ok {
			pr := d.text.RangeToProtocol(r)
			out = &pr
		}
	})
	return out, nil
}

// ScopeResult describes the innermost bracket pair around a position.
type ScopeResult struct {
	Color    string         `json:"color"`
	Open     protocol.Range `json:"open"`
	Close    protocol.Range `json:"close"`
	Interior protocol.Range `json:"interior"`
}

func (w *Workspace) Scope(uri protocol.DocumentUri, pos protocol.Position) (*ScopeResult, error) {
	var out *ScopeResult
	w.withDocument(uri, func(d *Document) {
		d.pipeline.Query(func(doc *bracket.Document, _ bracket.TextSource) {
			sc, ok := doc.FindEnclosingScope(d.text.ToRune(pos))
			if !ok {
				return
			}
			out = &ScopeResult{
				Color:    sc.Open.Color,
				Open:     d.text.RangeToProtocol(sc.OpenRange()),
				Close:    d.text.RangeToProtocol(sc.CloseRange()),
				Interior: d.text.RangeToProtocol(sc.Interior()),
			}
		})
	})
	return out, nil
}

// SelectionRanges returns, per position, the chain of scope interiors and
// outer ranges from the innermost scope outward.
func (w *Workspace) SelectionRanges(uri protocol.DocumentUri, positions []protocol.Position) ([]protocol.SelectionRange, error) {
	out := make([]protocol.SelectionRange, len(positions))
	for i, p := range positions {
		out[i] = protocol.SelectionRange{Range: protocol.Range{Start: p, End: p}}
	}
	w.withDocument(uri, func(d *Document) {
		d.pipeline.Query(func(doc *bracket.Document, _ bracket.TextSource) {
			for i, p := range positions {
				var chain []bracket.Range
				pos := d.text.ToRune(p)
				for {
					sc, ok := doc.FindEnclosingScope(pos)
					if !ok {
						break
					}
					chain = append(chain, sc.Interior(), sc.Outer())
					pos = bracket.Position{Line: sc.OpenLine, Character: sc.Open.Begin}
				}
				if len(chain) == 0 {
					continue
				}
				var parent *protocol.SelectionRange
				for j := len(chain) - 1; j >= 0; j-- {
					parent = &protocol.SelectionRange{Range: d.text.RangeToProtocol(chain[j]), Parent: parent}
				}
				out[i] = *parent
			}
		})
	})
	return out, nil
}

// Highlights returns the bracket at pos and its partner. A bracket right
// before the cursor counts when none starts at it.
func (w *Workspace) Highlights(uri protocol.DocumentUri, pos protocol.Position) ([]protocol.DocumentHighlight, error) {
	var out []protocol.DocumentHighlight
	w.withDocument(uri, func(d *Document) {
		d.pipeline.Query(func(doc *bracket.Document, _ bracket.TextSource) {
			at := d.text.ToRune(pos)
			lines := doc.Lines()
			if at.Line >= len(lines) {
				return
			}
			line := lines[at.Line]
			idx := -1
			for i, b := range line.Brackets {
				if b.Begin <= at.Character && at.Character < b.End {
					idx = i
					break
				}
				if b.End == at.Character {
					idx = i
				}
			}
			if idx < 0 {
				return
			}
			b := line.Brackets[idx]
			partner, pline, ok := doc.Partner(bracket.Ref{Line: line.ID, Index: idx})
			if !ok {
				return
			}
			kind := protocol.DocumentHighlightKindText
			for _, r := range []bracket.Range{
				{Start: bracket.Position{Line: at.Line, Character: b.Begin}, End: bracket.Position{Line: at.Line, Character: b.End}},
				{Start: bracket.Position{Line: pline, Character: partner.Begin}, End: bracket.Position{Line: pline, Character: partner.End}},
			} {
				out = append(out, protocol.DocumentHighlight{Range: d.text.RangeToProtocol(r), Kind: &kind})
			}
		})
	})
	return out, nil
}

// FoldingRanges folds every bracket pair spanning more than one line, up
// to the line before the close bracket.
func (w *Workspace) FoldingRanges(uri protocol.DocumentUri) ([]protocol.FoldingRange, error) {
	var out []protocol.FoldingRange
	w.withDocument(uri, func(d *Document) {
		d.pipeline.Query(func(doc *bracket.Document, _ bracket.TextSource) {
			for _, sc := range doc.Pairs() {
				if sc.CloseLine-1 <= sc.OpenLine {
					continue
				}
				start := d.text.ToProtocol(bracket.Position{Line: sc.OpenLine, Character: sc.Open.End})
				out = append(out, protocol.FoldingRange{
					StartLine:      start.Line,
					StartCharacter: &start.Character,
					EndLine:        protocol.UInteger(sc.CloseLine - 1),
				})
			}
		})
	})
	return out, nil
}
