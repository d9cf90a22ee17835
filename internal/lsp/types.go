// Package lsp maps rumdl's diagnostic stream onto the Language Server
// Protocol and runs a JSON-RPC server over stdio for editor integration.
//
// Position and range geometry (lsp.Position, lsp.Range) come from
// go.bug.st/lsp; its textedits package is not used. The
// surrounding protocol envelope below (Diagnostic, CodeAction, the request
// payloads) is hand-written against the LSP specification's JSON shape
// rather than copied from a vendored client library.
package lsp

import "go.bug.st/lsp"

// DiagnosticSeverity mirrors the LSP protocol's diagnostic severity levels.
type DiagnosticSeverity int

// Severity levels, per the LSP specification.
const (
	SeverityError       DiagnosticSeverity = 1
	SeverityWarning     DiagnosticSeverity = 2
	SeverityInformation DiagnosticSeverity = 3
	SeverityHint        DiagnosticSeverity = 4
)

// CodeDescription points at a rule's documentation.
type CodeDescription struct {
	Href string `json:"href"`
}

// Diagnostic is the wire form of a rumdl finding.
type Diagnostic struct {
	Range           lsp.Range        `json:"range"`
	Severity        DiagnosticSeverity `json:"severity,omitempty"`
	Code            string           `json:"code,omitempty"`
	CodeDescription *CodeDescription `json:"codeDescription,omitempty"`
	Source          string           `json:"source,omitempty"`
	Message         string           `json:"message"`
}

// TextEdit is a single replacement expressed in protocol positions.
type TextEdit struct {
	Range   lsp.Range `json:"range"`
	NewText string    `json:"newText"`
}

// WorkspaceEdit maps document URIs to the edits that should be applied.
type WorkspaceEdit struct {
	Changes map[string][]TextEdit `json:"changes"`
}

// CodeActionKind classifies a code action per the LSP spec.
type CodeActionKind string

// CodeActionQuickFix is the only kind rumdl currently produces.
const CodeActionQuickFix CodeActionKind = "quickfix"

// CodeAction is an editor-invokable fix, reflow, or suppression action.
type CodeAction struct {
	Title       string         `json:"title"`
	Kind        CodeActionKind `json:"kind,omitempty"`
	Diagnostics []Diagnostic   `json:"diagnostics,omitempty"`
	IsPreferred bool           `json:"isPreferred,omitempty"`
	Edit        *WorkspaceEdit `json:"edit,omitempty"`
}
