package lsp

import (
	"go.bug.st/lsp"

	"github.com/rumdl-go/rumdl/pkg/config"
	"github.com/rumdl-go/rumdl/pkg/lint"
	"github.com/rumdl-go/rumdl/pkg/mdast"
)

// sourceName is reported as the protocol diagnostic's "source" field.
const sourceName = "rumdl"

// DocBaseURL is prefixed to a rule id to build codeDescription.href.
var DocBaseURL = "https://rumdl.dev/rules/"

func severityToLSP(sev config.Severity) DiagnosticSeverity {
	switch sev {
	case config.SeverityError:
		return SeverityError
	case config.SeverityInfo:
		return SeverityInformation
	default:
		return SeverityWarning
	}
}

// offsetToPosition converts a byte offset to a 0-based LSP position.
func offsetToPosition(file *mdast.FileSnapshot, offset int) lsp.Position {
	line, col := file.LineAt(offset)
	if line == 0 {
		return lsp.Position{}
	}
	return lsp.Position{Line: line - 1, Character: col - 1}
}

// ToRange converts a diagnostic's 1-based line/column span to a 0-based
// LSP range, clamping negative values produced by zero-width spans.
func ToRange(d *lint.Diagnostic) lsp.Range {
	startLine, startCol := d.StartLine-1, d.StartColumn-1
	endLine, endCol := d.EndLine-1, d.EndColumn-1
	if startLine < 0 {
		startLine = 0
	}
	if startCol < 0 {
		startCol = 0
	}
	if endLine < startLine {
		endLine = startLine
	}
	if endCol < 0 {
		endCol = startCol
	}
	return lsp.Range{
		Start: lsp.Position{Line: startLine, Character: startCol},
		End:   lsp.Position{Line: endLine, Character: endCol},
	}
}

// ToDiagnostic converts a rumdl diagnostic to its LSP wire form.
func ToDiagnostic(d *lint.Diagnostic) Diagnostic {
	return Diagnostic{
		Range:           ToRange(d),
		Severity:        severityToLSP(d.Severity),
		Code:            d.RuleID,
		CodeDescription: &CodeDescription{Href: DocBaseURL + d.RuleID},
		Source:          sourceName,
		Message:         d.Message,
	}
}

// ToDiagnostics converts a batch of diagnostics, preserving order.
func ToDiagnostics(diags []lint.Diagnostic) []Diagnostic {
	out := make([]Diagnostic, len(diags))
	for i := range diags {
		out[i] = ToDiagnostic(&diags[i])
	}
	return out
}
