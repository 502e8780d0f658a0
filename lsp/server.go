// Package lsp serves bracket colors and scope guides over the Language
// Server Protocol.
package lsp

import (
	"encoding/json"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/rainbow/config"
)

const lsName = "rainbow"

// MethodSelectionChanged is sent by the client whenever the cursor or
// selection moves.
const MethodSelectionChanged = "rainbow/selectionChanged"

const watchDebounce = 200 * time.Millisecond

var log = commonlog.GetLogger("rainbow.lsp")

type LSPServer struct {
	workspace *Workspace
	handler   protocol.Handler
	server    *server.Server
	out       *notifier
	watcher   *config.FileWatcher
	stopWatch chan struct{}
	version   string
}

func NewLSPServer(loader *config.Loader, version string) *LSPServer {
	out := newNotifier()
	ls := &LSPServer{
		workspace: NewWorkspace(loader, out),
		out:       out,
		version:   version,
	}

	ls.handler = protocol.Handler{
		Initialize:                      ls.initialize,
		Initialized:                     ls.initialized,
		Shutdown:                        ls.shutdown,
		SetTrace:                        ls.setTrace,
		TextDocumentDidOpen:             ls.textDocumentDidOpen,
		TextDocumentDidChange:           ls.textDocumentDidChange,
		TextDocumentDidClose:            ls.textDocumentDidClose,
		TextDocumentSelectionRange:      ls.textDocumentSelectionRange,
		TextDocumentDocumentHighlight:   ls.textDocumentDocumentHighlight,
		TextDocumentFoldingRange:        ls.textDocumentFoldingRange,
		WorkspaceDidChangeConfiguration: ls.workspaceDidChangeConfiguration,
	}

	ls.server = server.NewServer(ls, lsName, false)

	return ls
}

func (ls *LSPServer) RunStdio() error {
	return ls.server.RunStdio()
}

// Handle serves the rainbow/ methods and passes everything else to the
// protocol handler.
func (ls *LSPServer) Handle(ctx *glsp.Context) (r any, validMethod bool, validParams bool, err error) {
	ls.out.bind(ctx.Notify)

	switch ctx.Method {
	case MethodSelectionChanged:
		var params SelectionParams
		if err := json.Unmarshal(ctx.Params, &params); err != nil {
			return nil, true, false, err
		}
		ls.workspace.Select(params.TextDocument.URI, params.Selection)
		return nil, true, true, nil

	case MethodExpandSelection:
		var params SelectionParams
		if err := json.Unmarshal(ctx.Params, &params); err != nil {
			return nil, true, false, err
		}
		r, err := ls.workspace.ExpandSelection(params.TextDocument.URI, params.Selection)
		return r, true, true, err

	case MethodUndoSelection:
		var params DocumentParams
		if err := json.Unmarshal(ctx.Params, &params); err != nil {
			return nil, true, false, err
		}
		r, err := ls.workspace.UndoSelection(params.TextDocument.URI)
		return r, true, true, err

	case MethodScope:
		var params protocol.TextDocumentPositionParams
		if err := json.Unmarshal(ctx.Params, &params); err != nil {
			return nil, true, false, err
		}
		r, err := ls.workspace.Scope(params.TextDocument.URI, params.Position)
		return r, true, true, err
	}

	return ls.handler.Handle(ctx)
}

type DocumentParams struct {
	TextDocument protocol.TextDocumentIdentifier `json:"textDocument"`
}

// SelectionParams carries a cursor or selection of a document.
type SelectionParams struct {
	TextDocument protocol.TextDocumentIdentifier `json:"textDocument"`
	Selection    protocol.Range                  `json:"selection"`
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	if params.InitializationOptions != nil {
		ls.workspace.SetOverrides(params.InitializationOptions)
	}
	// A broken configuration is reported to the user; the server still
	// starts so that it can pick up the fix.
	_ = ls.workspace.Reload()

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindIncremental),
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	path := ls.workspace.ConfigFile()
	if path == "" {
		return nil
	}
	w, err := config.NewFileWatcher(path, watchDebounce)
	if err != nil {
		log.Warningf("%s", err)
		return nil
	}
	changes, err := w.Start()
	if err != nil {
		log.Warningf("%s", err)
		w.Stop()
		return nil
	}
	ls.watcher = w
	ls.stopWatch = make(chan struct{})
	go ls.reloadOnChange(changes, ls.stopWatch)
	return nil
}

func (ls *LSPServer) reloadOnChange(changes <-chan struct{}, stop <-chan struct{}) {
	for {
		select {
		case <-changes:
			log.Infof("settings file changed")
			_ = ls.workspace.Reload()
		case <-stop:
			return
		}
	}
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	if ls.watcher != nil {
		close(ls.stopWatch)
		ls.watcher.Stop()
		ls.watcher = nil
	}
	ls.workspace.Shutdown()
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	// Configuration errors were already shown; the document waits for a
	// fixed configuration.
	_ = ls.workspace.Open(params.TextDocument.URI, params.TextDocument.LanguageID, params.TextDocument.Text)
	return nil
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	return ls.workspace.Change(params.TextDocument.URI, params.ContentChanges)
}

func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	ls.workspace.Close(params.TextDocument.URI)
	return nil
}

func (ls *LSPServer) textDocumentSelectionRange(ctx *glsp.Context, params *protocol.SelectionRangeParams) ([]protocol.SelectionRange, error) {
	return ls.workspace.SelectionRanges(params.TextDocument.URI, params.Positions)
}

func (ls *LSPServer) textDocumentDocumentHighlight(ctx *glsp.Context, params *protocol.DocumentHighlightParams) ([]protocol.DocumentHighlight, error) {
	return ls.workspace.Highlights(params.TextDocument.URI, params.Position)
}

func (ls *LSPServer) textDocumentFoldingRange(ctx *glsp.Context, params *protocol.FoldingRangeParams) ([]protocol.FoldingRange, error) {
	return ls.workspace.FoldingRanges(params.TextDocument.URI)
}

func (ls *LSPServer) workspaceDidChangeConfiguration(ctx *glsp.Context, params *protocol.DidChangeConfigurationParams) error {
	ls.workspace.SetOverrides(params.Settings)
	_ = ls.workspace.Reload()
	return nil
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
