// Package server exposes the compiler to editors over the Language
// Server Protocol: compile errors as diagnostics, operator help as
// hover text, the registry as completion.
//
// The server never owns a machine or a living Context. Every check
// compiles against a throwaway context with throwaway identities, so a
// misbehaving editor can never glitch a performance; the real engine
// hears about a program only when the performer applies it.
package server

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/codeblessmax/sound-garden-0x2/compiler"
	"github.com/codeblessmax/sound-garden-0x2/vm"

	_ "github.com/tliron/commonlog/simple"
)

const lspName = "sound-garden-lsp"

// LspServer checks garden program documents and serves registry
// metadata to LSP clients.
type LspServer struct {
	sampleRate int

	mu   sync.Mutex
	docs map[string]string // URI → full document content

	handler protocol.Handler
	server  *glspserver.Server
	version string
}

// NewLSP creates a language server that validates programs at the
// given sample rate.
func NewLSP(sampleRate int) *LspServer {
	s := &LspServer{
		sampleRate: sampleRate,
		docs:       make(map[string]string),
		version:    "0.1.0",
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion: s.textDocumentCompletion,
		TextDocumentHover:      s.textDocumentHover,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)

	return s
}

// Run starts the LSP server on stdio. Blocks until the client disconnects.
func (s *LspServer) Run() error {
	return s.server.RunStdio()
}

// --- LSP lifecycle handlers ---

func (s *LspServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	commonlog.NewInfoMessage(0, "sound-garden LSP initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{}
	capabilities.HoverProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *LspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *LspServer) shutdown(ctx *glsp.Context) error {
	return nil
}

func (s *LspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// --- Document synchronization ---

func (s *LspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	text := params.TextDocument.Text

	s.mu.Lock()
	s.docs[string(uri)] = text
	s.mu.Unlock()

	s.publishDiagnostics(ctx, uri, text)
	return nil
}

func (s *LspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	// With Full sync, the last change event contains the full text
	if len(params.ContentChanges) > 0 {
		last := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
			s.mu.Lock()
			s.docs[string(uri)] = whole.Text
			text := whole.Text
			s.mu.Unlock()

			s.publishDiagnostics(ctx, uri, text)
		}
	}
	return nil
}

func (s *LspServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	delete(s.docs, string(uri))
	s.mu.Unlock()

	// Clear diagnostics for the closed document
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

// --- Language features ---

func (s *LspServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	uri := params.TextDocument.URI
	pos := params.Position

	s.mu.Lock()
	text, ok := s.docs[string(uri)]
	s.mu.Unlock()

	if !ok {
		return nil, nil
	}

	prefix := tokenPrefixAt(text, pos)
	items := complete(prefix)
	if len(items) == 0 {
		return nil, nil
	}
	return items, nil
}

func (s *LspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	uri := params.TextDocument.URI
	pos := params.Position

	s.mu.Lock()
	text, ok := s.docs[string(uri)]
	s.mu.Unlock()

	if !ok {
		return nil, nil
	}

	word := tokenAt(text, pos)
	if word == "" {
		return nil, nil
	}
	return hover(word), nil
}

// complete returns registry names matching the typed prefix, grouped
// detail and help attached.
func complete(prefix string) []protocol.CompletionItem {
	var items []protocol.CompletionItem
	for _, g := range compiler.OpGroups() {
		for _, name := range g.Ops {
			if prefix != "" && !strings.HasPrefix(name, prefix) {
				continue
			}
			kind := protocol.CompletionItemKindFunction
			detail := g.Name
			nameCopy := name
			help, _ := vm.Help(name)
			items = append(items, protocol.CompletionItem{
				Label:         name,
				Kind:          &kind,
				Detail:        &detail,
				Documentation: help,
				InsertText:    &nameCopy,
			})
		}
	}
	return items
}

// hover renders the help line for the operator under the cursor. A
// :param suffix and a leading numeric form are both tolerated: hovering
// "sine:440" documents sine, hovering "0.5" documents nothing.
func hover(word string) *protocol.Hover {
	name := word
	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		name = name[:i]
	}
	help, ok := vm.Help(name)
	if !ok {
		return nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: fmt.Sprintf("**%s** — `%s`", name, help),
		},
	}
}

// --- Diagnostics ---

// publishDiagnostics checks the document and reports at most one
// diagnostic: the compiler stops at the first offending token, which
// is also where a performer's attention should go.
func (s *LspServer) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	diagnostics := check(text, s.sampleRate)

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// check compiles a document with throwaway identities and maps any
// compile error back onto the offending token's range. A valid
// document yields an empty (non-nil) slice, which clears stale
// diagnostics on the client.
func check(text string, sampleRate int) []protocol.Diagnostic {
	tokens := tokenize(text)
	ops := make([]compiler.TextOp, len(tokens))
	for i, tok := range tokens {
		ops[i] = compiler.NewTextOp(tok.text)
	}

	diagnostics := []protocol.Diagnostic{}
	if len(ops) == 0 {
		return diagnostics
	}

	_, err := compiler.Compile(ops, sampleRate, compiler.NewContext())
	if err == nil {
		return diagnostics
	}

	rng := protocol.Range{} // sequence-level errors point at the start
	if ce, ok := err.(*compiler.Error); ok && ce.Index >= 0 && ce.Index < len(tokens) {
		tok := tokens[ce.Index]
		rng = protocol.Range{
			Start: protocol.Position{Line: protocol.UInteger(tok.line), Character: protocol.UInteger(tok.start)},
			End:   protocol.Position{Line: protocol.UInteger(tok.line), Character: protocol.UInteger(tok.end)},
		}
	}

	severity := protocol.DiagnosticSeverityError
	source := "garden"
	return append(diagnostics, protocol.Diagnostic{
		Range:    rng,
		Severity: &severity,
		Source:   &source,
		Message:  err.Error(),
	})
}

func boolPtr(b bool) *bool {
	return &b
}
