package lsp

import (
	"errors"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/rainbow/bracket"
	"github.com/dhamidi/rainbow/config"
	"github.com/dhamidi/rainbow/decoration"
)

const (
	MethodDecorations      = "rainbow/decorations"
	MethodScopeDecorations = "rainbow/scopeDecorations"
	MethodExpandSelection  = "rainbow/expandSelection"
	MethodUndoSelection    = "rainbow/undoSelection"
	MethodScope            = "rainbow/scope"

	methodShowMessage = "window/showMessage"
)

type ColorGroup struct {
	Color  string           `json:"color"`
	Ranges []protocol.Range `json:"ranges"`
}

// DecorationsParams is sent after every completed scan.
type DecorationsParams struct {
	URI    protocol.DocumentUri `json:"uri"`
	Groups []ColorGroup         `json:"groups"`
}

// ScopeDecorationsParams is sent when the active scope changes. An empty
// Color clears the guides.
type ScopeDecorationsParams struct {
	URI      protocol.DocumentUri `json:"uri"`
	Color    string               `json:"color,omitempty"`
	Brackets []protocol.Range     `json:"brackets"`
	Gutter   []protocol.UInteger  `json:"gutter"`
	Ruler    []protocol.UInteger  `json:"ruler"`
	Above    []protocol.Range     `json:"above"`
	Below    []protocol.Range     `json:"below"`
	Vertical []protocol.Range     `json:"vertical"`
}

// notifier sends notifications to the client and shows throttled error
// messages.
type notifier struct {
	mu       sync.Mutex
	notify   glsp.NotifyFunc
	throttle *config.Throttle
}

func newNotifier() *notifier {
	return &notifier{throttle: config.NewThrottle(config.ThrottleWindow)}
}

// bind remembers the connection's notify function for notifications
// sent outside of a request.
func (n *notifier) bind(notify glsp.NotifyFunc) {
	if notify == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notify = notify
}

func (n *notifier) send(method string, params any) {
	n.mu.Lock()
	notify := n.notify
	n.mu.Unlock()
	if notify == nil {
		return
	}
	notify(method, params)
}

func (n *notifier) showError(err error) {
	msg := err.Error()
	if !n.throttle.Allow(msg) {
		return
	}
	n.send(methodShowMessage, protocol.ShowMessageParams{
		Type:    protocol.MessageTypeError,
		Message: "rainbow: " + msg,
	})
}

// documentSink publishes the decorations of one document. It is only
// called under the document's pipeline lock, which also guards text.
type documentSink struct {
	uri  protocol.DocumentUri
	text *Text
	out  *notifier
}

func (s *documentSink) SetBracketDecorations(groups []decoration.ColorGroup) {
	params := DecorationsParams{URI: s.uri, Groups: make([]ColorGroup, len(groups))}
	for i, g := range groups {
		params.Groups[i] = ColorGroup{Color: g.Color, Ranges: s.ranges(g.Ranges)}
	}
	s.out.send(MethodDecorations, params)
}

func (s *documentSink) SetScopeDecorations(d decoration.ScopeDecorations) {
	s.out.send(MethodScopeDecorations, ScopeDecorationsParams{
		URI:      s.uri,
		Color:    d.Color,
		Brackets: s.ranges(d.Brackets),
		Gutter:   uintegers(d.Gutter),
		Ruler:    uintegers(d.Ruler),
		Above:    s.ranges(d.Above),
		Below:    s.ranges(d.Below),
		Vertical: s.ranges(d.Vertical),
	})
}

// ReportError logs scan failures; only configuration problems reach the
// user.
func (s *documentSink) ReportError(err error) {
	var cfgErr *config.Error
	if errors.As(err, &cfgErr) {
		s.out.showError(err)
		return
	}
	log.Warningf("%s: %s", s.uri, err)
}

func (s *documentSink) ranges(in []bracket.Range) []protocol.Range {
	out := make([]protocol.Range, len(in))
	for i, r := range in {
		out[i] = s.text.RangeToProtocol(r)
	}
	return out
}

func uintegers(in []int) []protocol.UInteger {
	out := make([]protocol.UInteger, len(in))
	for i, v := range in {
		out[i] = protocol.UInteger(v)
	}
	return out
}
