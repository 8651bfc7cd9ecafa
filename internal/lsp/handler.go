package lsp

import (
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"frost/grammar"
)

// Semantic token types advertised in the server legend. Encoded token
// type indices point into this list.
var SemanticTokenTypes = []string{
	"namespace",
	"type",
	"typeParameter",
	"function",
	"variable",
	"parameter",
	"property",
	"keyword",
	"number",
	"operator",
}

// Semantic token modifiers advertised in the legend, applied as a bitmask.
var SemanticTokenModifiers = []string{
	"declaration",
	"definition",
	"readonly",
	"static",
	"deprecated",
	"abstract",
}

// completionKeywords is the fixed completion vocabulary: declaration and
// instruction keywords, operators, type names and literal keywords.
var completionKeywords = []string{
	"module", "attr", "method",
	"const", "getattr", "setattr", "tuple", "unpack", "call",
	"if", "else", "return", "yield",
	"add", "sub", "mul", "div", "eq", "ne", "lt", "le", "gt", "ge",
	"int", "float", "bool", "string", "tensor", "none",
	"true", "false", "grad",
}

// document is the live state for one open file
type document struct {
	text string
	file *grammar.File // nil while the text does not parse
}

// FrostHandler implements the language server handlers for .fst files.
// Document state comes from the client's notifications, never from disk,
// so unsaved editor buffers analyze correctly.
type FrostHandler struct {
	mu   sync.RWMutex
	docs map[protocol.DocumentUri]*document
}

// NewFrostHandler creates a handler with no open documents.
func NewFrostHandler() *FrostHandler {
	return &FrostHandler{docs: make(map[protocol.DocumentUri]*document)}
}

// Initialize answers the client's initialize request with the server's
// capabilities: full-text sync, keyword completion and full-document
// semantic tokens.
func (h *FrostHandler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
			CompletionProvider: &protocol.CompletionOptions{
				ResolveProvider: ptrBool(false),
			},
			SemanticTokensProvider: &protocol.SemanticTokensOptions{
				Legend: protocol.SemanticTokensLegend{
					TokenTypes:     SemanticTokenTypes,
					TokenModifiers: SemanticTokenModifiers,
				},
				Full: ptrBool(true),
			},
		},
	}, nil
}

// Initialized is called once the client finishes its handshake.
func (h *FrostHandler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

// Shutdown handles the shutdown request.
func (h *FrostHandler) Shutdown(ctx *glsp.Context) error {
	return nil
}

// SetTrace adjusts the protocol trace level.
func (h *FrostHandler) SetTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

// TextDocumentDidOpen stores the opened text and publishes its
// diagnostics.
func (h *FrostHandler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	h.updateDocument(ctx, params.TextDocument.URI, params.TextDocument.Text)
	return nil
}

// TextDocumentDidClose drops the document's state.
func (h *FrostHandler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	h.mu.Lock()
	delete(h.docs, params.TextDocument.URI)
	h.mu.Unlock()
	return nil
}

// TextDocumentDidChange replaces the document text and republishes
// diagnostics. The server advertises full sync, so every change event
// carries the whole document.
func (h *FrostHandler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	h.mu.RLock()
	doc := h.docs[params.TextDocument.URI]
	h.mu.RUnlock()

	text := ""
	if doc != nil {
		text = doc.text
	}
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			text = c.Text
		case protocol.TextDocumentContentChangeEvent:
			text = c.Text
		}
	}
	h.updateDocument(ctx, params.TextDocument.URI, text)
	return nil
}

// TextDocumentCompletion offers the fixed keyword vocabulary.
func (h *FrostHandler) TextDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	items := make([]protocol.CompletionItem, 0, len(completionKeywords))
	for _, kw := range completionKeywords {
		items = append(items, protocol.CompletionItem{
			Label: kw,
			Kind:  ptrCompletionKind(protocol.CompletionItemKindKeyword),
		})
	}
	return &protocol.CompletionList{
		IsIncomplete: false,
		Items:        items,
	}, nil
}

// TextDocumentSemanticTokensFull tokenizes the whole document, encoding
// tokens with the LSP delta compression.
func (h *FrostHandler) TextDocumentSemanticTokensFull(ctx *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	h.mu.RLock()
	doc := h.docs[params.TextDocument.URI]
	h.mu.RUnlock()

	if doc == nil || doc.file == nil {
		return &protocol.SemanticTokens{}, nil
	}

	tokens := collectSemanticTokens(doc.file)

	var data []uint32
	var prevLine, prevStart uint32
	for _, token := range tokens {
		deltaLine := token.Line - prevLine
		var deltaStart uint32
		if deltaLine == 0 {
			deltaStart = token.StartChar - prevStart
		} else {
			deltaStart = token.StartChar
		}
		data = append(data, deltaLine, deltaStart, token.Length, uint32(token.TokenType), uint32(token.TokenModifiers))
		prevLine = token.Line
		prevStart = token.StartChar
	}

	return &protocol.SemanticTokens{Data: data}, nil
}

// updateDocument reanalyzes one document and publishes the result.
func (h *FrostHandler) updateDocument(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	file, diagnostics := Analyze(string(uri), text)

	h.mu.Lock()
	h.docs[uri] = &document{text: text, file: file}
	h.mu.Unlock()

	publishDiagnostics(ctx, uri, diagnostics)
}

// publishDiagnostics always sends, even an empty list, so stale findings
// clear on the client.
func publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, diagnostics []protocol.Diagnostic) {
	if ctx == nil || ctx.Notify == nil {
		return
	}
	if diagnostics == nil {
		diagnostics = []protocol.Diagnostic{}
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func ptrBool(b bool) *bool {
	return &b
}

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func ptrString(s string) *string {
	return &s
}

func ptrCompletionKind(k protocol.CompletionItemKind) *protocol.CompletionItemKind {
	return &k
}
