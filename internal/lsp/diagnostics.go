package lsp

import (
	"github.com/alecthomas/participle/v2"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"frost/grammar"
	"frost/internal/build"
	"frost/internal/errors"
)

// Analyze parses and builds one document. It returns the parsed file
// (nil when the text does not parse) and the diagnostics to publish: a
// single parser diagnostic on syntax failure, otherwise the builder's
// findings.
func Analyze(name, text string) (*grammar.File, []protocol.Diagnostic) {
	file, err := grammar.ParseSource(name, text)
	if err != nil {
		return nil, parseErrorDiagnostics(err)
	}
	_, errs := build.Build(file)
	return file, ConvertBuildDiagnostics(errs)
}

// parseErrorDiagnostics converts a parse failure into one diagnostic at
// the failure position.
func parseErrorDiagnostics(err error) []protocol.Diagnostic {
	pe, ok := err.(participle.Error)
	if !ok {
		return []protocol.Diagnostic{{
			Severity: ptrSeverity(protocol.DiagnosticSeverityError),
			Source:   ptrString("frost-parser"),
			Message:  err.Error(),
		}}
	}

	pos := pe.Position()
	line := clampIndex(pos.Line)
	char := clampIndex(pos.Column)
	return []protocol.Diagnostic{{
		Range: protocol.Range{
			Start: protocol.Position{Line: line, Character: char},
			End:   protocol.Position{Line: line, Character: char + 1},
		},
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Source:   ptrString("frost-parser"),
		Message:  pe.Message(),
	}}
}

// ConvertBuildDiagnostics maps builder findings onto LSP diagnostics,
// carrying the code and caret span through.
func ConvertBuildDiagnostics(errs []errors.CompilerError) []protocol.Diagnostic {
	var diagnostics []protocol.Diagnostic
	for _, e := range errs {
		length := e.Length
		if length < 1 {
			length = 1
		}
		line := clampIndex(e.Position.Line)
		char := clampIndex(e.Position.Column)
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: line, Character: char},
				End:   protocol.Position{Line: line, Character: char + uint32(length)},
			},
			Severity: ptrSeverity(severityFor(e.Level)),
			Code:     &protocol.IntegerOrString{Value: e.Code},
			Source:   ptrString("frost-build"),
			Message:  e.Message,
		})
	}
	return diagnostics
}

func severityFor(level errors.ErrorLevel) protocol.DiagnosticSeverity {
	switch level {
	case errors.Warning:
		return protocol.DiagnosticSeverityWarning
	case errors.Note, errors.Help:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityError
	}
}

// clampIndex converts a 1-based source coordinate to the 0-based LSP
// form without underflowing on synthetic positions.
func clampIndex(n int) uint32 {
	if n <= 1 {
		return 0
	}
	return uint32(n - 1)
}
