// SPDX-License-Identifier: Apache-2.0
package main

import (
	"log"
	"os"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"
	"github.com/xyproto/env/v2"

	"frost/internal/lsp"
)

const lsName = "frost" // Name identifier for the language server

var (
	version = "0.0.1"        // Server version
	handler protocol.Handler // Protocol handler instance (wired up below)
)

func main() {
	// Editors talk over stdio, so logs must go elsewhere. FROST_LOG_FILE
	// gives them a sink; FROST_VERBOSE controls how chatty they are.
	verbosity := env.Int("FROST_VERBOSE", 1)
	if logFile := env.Str("FROST_LOG_FILE"); logFile != "" {
		commonlog.Configure(verbosity, &logFile)
	} else {
		commonlog.Configure(verbosity, nil)
	}

	frostHandler := lsp.NewFrostHandler()

	// Wire up the handler with specific LSP method implementations
	handler = protocol.Handler{
		Initialize:                     frostHandler.Initialize,
		Initialized:                    frostHandler.Initialized,
		Shutdown:                       frostHandler.Shutdown,
		SetTrace:                       frostHandler.SetTrace,
		TextDocumentDidOpen:            frostHandler.TextDocumentDidOpen,
		TextDocumentDidClose:           frostHandler.TextDocumentDidClose,
		TextDocumentDidChange:          frostHandler.TextDocumentDidChange,
		TextDocumentCompletion:         frostHandler.TextDocumentCompletion,
		TextDocumentSemanticTokensFull: frostHandler.TextDocumentSemanticTokensFull,
	}

	s := server.NewServer(&handler, lsName, false)

	log.Println("Starting frost LSP server...")

	// Serve over standard input/output, the transport editors expect.
	if err := s.RunStdio(); err != nil {
		log.Println("Error starting frost LSP server:", err)
		os.Exit(1)
	}
}
