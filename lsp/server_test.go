package lsp

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/rainbow/config"
)

type session struct {
	t      *testing.T
	ls     *LSPServer
	client *client
}

func newSession(t *testing.T, settings string) *session {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rainbow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(settings), 0o644))
	s := &session{t: t, ls: NewLSPServer(config.NewLoader(path), "test"), client: &client{}}
	t.Cleanup(func() { s.ls.shutdown(nil) })
	return s
}

func (s *session) call(method string, params any) any {
	s.t.Helper()
	raw, err := json.Marshal(params)
	require.NoError(s.t, err)
	r, validMethod, validParams, err := s.ls.Handle(&glsp.Context{
		Method: method,
		Params: raw,
		Notify: s.client.notify,
	})
	require.True(s.t, validMethod, method)
	require.True(s.t, validParams, method)
	require.NoError(s.t, err)
	return r
}

func (s *session) initialize(options any) protocol.InitializeResult {
	s.t.Helper()
	r := s.call("initialize", map[string]any{
		"capabilities":          map[string]any{},
		"initializationOptions": options,
	})
	s.call("initialized", map[string]any{})
	return r.(protocol.InitializeResult)
}

func (s *session) open(uri, languageID, text string) {
	s.call("textDocument/didOpen", protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: languageID, Version: 1, Text: text},
	})
}

func TestServer_InitializeAdvertisesIncrementalSync(t *testing.T) {
	s := newSession(t, quickSettings)
	result := s.initialize(nil)

	opts, ok := result.Capabilities.TextDocumentSync.(*protocol.TextDocumentSyncOptions)
	require.True(t, ok)
	require.Equal(t, protocol.TextDocumentSyncKindIncremental, *opts.Change)
	require.Equal(t, lsName, result.ServerInfo.Name)
	require.NotNil(t, result.Capabilities.FoldingRangeProvider)
	require.NotNil(t, result.Capabilities.SelectionRangeProvider)
}

func TestServer_DecorationsAfterOpen(t *testing.T) {
	s := newSession(t, quickSettings)
	s.initialize(map[string]any{"rainbow": map[string]any{"timeout": 0}})
	s.open(goURI, "go", "// (\n[x]")

	s.client.waitFor(t, MethodDecorations, 1)
	colors := s.client.colors(t)
	require.Equal(t, []protocol.Range{at(1, 0), at(1, 2)}, colors["Gold"])
}

func TestServer_CustomRequests(t *testing.T) {
	s := newSession(t, quickSettings)
	s.initialize(nil)
	s.open(goURI, "go", "f(a, [b, c])")

	doc := protocol.TextDocumentIdentifier{URI: goURI}

	r := s.call(MethodExpandSelection, SelectionParams{TextDocument: doc, Selection: span(0, 7, 0, 7)})
	require.Equal(t, span(0, 6, 0, 10), *r.(*protocol.Range))

	r = s.call(MethodUndoSelection, DocumentParams{TextDocument: doc})
	require.Equal(t, span(0, 7, 0, 7), *r.(*protocol.Range))

	r = s.call(MethodScope, protocol.TextDocumentPositionParams{TextDocument: doc, Position: pos(0, 3)})
	sc := r.(*ScopeResult)
	require.Equal(t, "Gold", sc.Color)
	require.Equal(t, span(0, 2, 0, 11), sc.Interior)

	s.call(MethodSelectionChanged, SelectionParams{TextDocument: doc, Selection: span(0, 7, 0, 7)})
	s.client.waitFor(t, MethodScopeDecorations, 1)
	require.Equal(t, "Orchid", s.client.last(MethodScopeDecorations).(ScopeDecorationsParams).Color)
}

func TestServer_CustomRequestWithBadParams(t *testing.T) {
	s := newSession(t, quickSettings)
	s.initialize(nil)

	_, validMethod, validParams, err := s.ls.Handle(&glsp.Context{
		Method: MethodScope,
		Params: json.RawMessage(`[1, 2]`),
	})
	require.True(t, validMethod)
	require.False(t, validParams)
	require.Error(t, err)
}

func TestServer_DidChangeConfiguration(t *testing.T) {
	s := newSession(t, quickSettings)
	s.initialize(nil)
	s.open(goURI, "go", "()")
	s.client.waitFor(t, MethodDecorations, 1)

	s.call("workspace/didChangeConfiguration", protocol.DidChangeConfigurationParams{
		Settings: map[string]any{"color_mode": "nope"},
	})
	require.Equal(t, 1, s.client.count(methodShowMessage))
	msg := s.client.last(methodShowMessage).(protocol.ShowMessageParams)
	require.Contains(t, msg.Message, "color_mode")

	s.call("workspace/didChangeConfiguration", protocol.DidChangeConfigurationParams{
		Settings: map[string]any{"rainbow": map[string]any{"color_mode": "independent"}},
	})
	s.client.waitFor(t, MethodDecorations, 2)
}
