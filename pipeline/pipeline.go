// Package pipeline drives one document: it debounces edits into re-scans,
// recomputes the active scope after cursor moves and keeps the selection
// expansion history.
package pipeline

import (
	"context"
	"sync"

	"github.com/dhamidi/rainbow/bracket"
	"github.com/dhamidi/rainbow/decoration"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("rainbow.pipeline")

// Pipeline owns a document's bracket cache. Every entry point returns
// without waiting for a scan unless documented otherwise.
type Pipeline struct {
	mu       sync.Mutex
	doc      *bracket.Document
	text     bracket.TextSource
	settings *bracket.Settings
	opts     decoration.Options
	sink     decoration.Sink

	rescan Task
	scope  Task

	selection *bracket.Range
	history   []bracket.Range
	// expanded is the last selection produced by ExpandSelection.
	expanded *bracket.Range
	closed   bool
}

// New validates settings and schedules the first scan. On error nothing
// is created. A nil tokenizer selects the pattern tokenizer.
func New(text bracket.TextSource, settings *bracket.Settings, tokenizer bracket.Tokenizer, opts decoration.Options, sink decoration.Sink) (*Pipeline, error) {
	doc, err := bracket.NewDocument(text, settings, tokenizer)
	if err != nil {
		return nil, err
	}
	p := &Pipeline{
		doc:      doc,
		text:     text,
		settings: settings,
		opts:     opts,
		sink:     sink,
	}
	p.rescan.Schedule(0, p.runRescan)
	return p, nil
}

// Edit applies a text change and schedules a re-scan from lowest. apply
// runs under the pipeline lock, so no scan sees a half-applied edit.
// Edits within the debounce window collapse into one scan.
func (p *Pipeline) Edit(lowest int, apply func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if apply != nil {
		apply()
	}
	p.doc.MarkDirty(lowest)
	p.rescan.Schedule(p.settings.Timeout, p.runRescan)
}

// Select records the cursor or selection. The scope guides follow after
// the scope debounce window, or right after a pending re-scan.
func (p *Pipeline) Select(sel bracket.Range) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.selection = &sel
	if p.expanded == nil || *p.expanded != sel {
		p.history = nil
		p.expanded = nil
	}
	if p.rescan.Pending() {
		p.scope.Cancel()
		return
	}
	p.scope.Schedule(p.settings.ScopeTimeout, p.runScope)
}

func (p *Pipeline) runRescan(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ctx.Err() != nil || p.closed {
		return
	}
	p.updateLocked()
}

func (p *Pipeline) runScope(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ctx.Err() != nil || p.closed {
		return
	}
	if _, dirty := p.doc.DirtyLine(); dirty {
		// The re-scan already scheduled recomputes the scope.
		return
	}
	p.scopeLocked()
}

// updateLocked runs the pending scan, publishes the bracket colors and
// then the scope guides that depend on them.
func (p *Pipeline) updateLocked() {
	if _, dirty := p.doc.DirtyLine(); !dirty {
		return
	}
	if err := p.doc.Update(); err != nil {
		log.Warningf("%s", err)
		p.sink.ReportError(err)
		return
	}
	p.sink.SetBracketDecorations(decoration.BracketGroups(p.doc))
	if p.selection != nil {
		p.scope.Cancel()
		p.scopeLocked()
	}
}

func (p *Pipeline) scopeLocked() {
	if p.selection == nil {
		return
	}
	sc, ok := p.doc.FindEnclosingScope(p.selection.Start)
	if !ok {
		p.sink.SetScopeDecorations(decoration.ScopeDecorations{})
		return
	}
	p.sink.SetScopeDecorations(decoration.Scope(p.text, sc, p.opts))
}

// Flush runs a pending re-scan now and waits for it.
func (p *Pipeline) Flush() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.rescan.Cancel()
	p.updateLocked()
}

// Query runs fn against an up-to-date document.
func (p *Pipeline) Query(fn func(doc *bracket.Document, text bracket.TextSource)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, dirty := p.doc.DirtyLine(); dirty && !p.closed {
		p.rescan.Cancel()
		p.updateLocked()
	}
	fn(p.doc, p.text)
}

// ExpandSelection grows sel to the interior of the innermost scope that
// strictly contains it, or to the scope around that one when sel already
// is an interior. The previous selection is kept for UndoSelection.
func (p *Pipeline) ExpandSelection(sel bracket.Range) (bracket.Range, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, dirty := p.doc.DirtyLine(); dirty && !p.closed {
		p.rescan.Cancel()
		p.updateLocked()
	}

	if p.expanded == nil || *p.expanded != sel {
		p.history = nil
	}

	pos := sel.Start
	for {
		sc, ok := p.doc.FindEnclosingScope(pos)
		if !ok {
			return sel, false
		}
		in := sc.Interior()
		if in.Contains(sel) && in != sel {
			p.history = append(p.history, sel)
			p.expanded = &in
			p.selection = &in
			return in, true
		}
		pos = bracket.Position{Line: sc.OpenLine, Character: sc.Open.Begin}
	}
}

// UndoSelection returns the selection before the last expansion.
func (p *Pipeline) UndoSelection() (bracket.Range, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.history) == 0 {
		return bracket.Range{}, false
	}
	prev := p.history[len(p.history)-1]
	p.history = p.history[:len(p.history)-1]
	p.expanded = &prev
	p.selection = &prev
	return prev, true
}

// Close drops pending work. Later calls are ignored.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.rescan.Cancel()
	p.scope.Cancel()
}
