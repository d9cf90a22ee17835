package lsp

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/muesli/reflow/wordwrap"
	"go.bug.st/lsp"

	"github.com/rumdl-go/rumdl/pkg/fix"
	"github.com/rumdl-go/rumdl/pkg/lint"
	"github.com/rumdl-go/rumdl/pkg/mdast"
)

// lineLengthLimitPattern extracts the configured limit from a line-length
// message such as "Line length 92 exceeds maximum 80".
var lineLengthLimitPattern = regexp.MustCompile(`exceeds (?:maximum )?(\d+)`)

// disableLineCommentPattern detects an existing rumdl-disable-line comment.
var disableLineCommentPattern = regexp.MustCompile(`rumdl-disable-line\b`)

func editToLSP(file *mdast.FileSnapshot, e fix.TextEdit) TextEdit {
	return TextEdit{
		Range: lsp.Range{
			Start: offsetToPosition(file, e.StartOffset),
			End:   offsetToPosition(file, e.EndOffset),
		},
		NewText: e.NewText,
	}
}

// CodeActionsForDiagnostic builds the editor-invokable actions for a single
// diagnostic: a quick fix when the rule produced one, a paragraph reflow for
// line-length violations that didn't, and a line-disable action that is
// always offered unless the line already carries one.
func CodeActionsForDiagnostic(file *mdast.FileSnapshot, uri string, d *lint.Diagnostic) []CodeAction {
	diag := ToDiagnostic(d)
	var actions []CodeAction

	switch {
	case d.HasFix():
		edits := make([]TextEdit, len(d.FixEdits))
		for i, e := range d.FixEdits {
			edits[i] = editToLSP(file, e)
		}
		actions = append(actions, CodeAction{
			Title:       fmt.Sprintf("Fix: %s", d.Message),
			Kind:        CodeActionQuickFix,
			Diagnostics: []Diagnostic{diag},
			IsPreferred: true,
			Edit:        &WorkspaceEdit{Changes: map[string][]TextEdit{uri: edits}},
		})
	case d.RuleID == "MD013":
		if action, ok := reflowAction(file, uri, d, diag); ok {
			actions = append(actions, action)
		}
	}

	if d.RuleID != "" {
		if action, ok := ignoreLineAction(file, uri, d); ok {
			actions = append(actions, action)
		}
	}

	return actions
}

// reflowAction rewraps the violating line at the limit parsed from the
// diagnostic message. MD013 fires per source line rather than per logical
// paragraph, so the reflow is scoped to that line.
func reflowAction(file *mdast.FileSnapshot, uri string, d *lint.Diagnostic, diag Diagnostic) (CodeAction, bool) {
	m := lineLengthLimitPattern.FindStringSubmatch(d.Message)
	if m == nil {
		return CodeAction{}, false
	}
	limit, err := strconv.Atoi(m[1])
	if err != nil || limit <= 0 {
		return CodeAction{}, false
	}
	if d.StartLine < 1 || d.StartLine > len(file.Lines) {
		return CodeAction{}, false
	}

	lineInfo := file.Lines[d.StartLine-1]
	original := string(file.Content[lineInfo.StartOffset:lineInfo.NewlineStart])
	wrapped := strings.TrimRight(wordwrap.String(original, limit), "\n")

	edit := TextEdit{
		Range: lsp.Range{
			Start: lsp.Position{Line: d.StartLine - 1, Character: 0},
			End:   offsetToPosition(file, lineInfo.NewlineStart),
		},
		NewText: wrapped,
	}
	return CodeAction{
		Title:       "Reflow paragraph",
		Kind:        CodeActionQuickFix,
		Diagnostics: []Diagnostic{diag},
		Edit:        &WorkspaceEdit{Changes: map[string][]TextEdit{uri: {edit}}},
	}, true
}

// ignoreLineAction appends an inline disable comment for the diagnostic's
// rule, unless the line already carries one.
func ignoreLineAction(file *mdast.FileSnapshot, uri string, d *lint.Diagnostic) (CodeAction, bool) {
	if d.StartLine < 1 || d.StartLine > len(file.Lines) {
		return CodeAction{}, false
	}

	lineInfo := file.Lines[d.StartLine-1]
	lineText := file.Content[lineInfo.StartOffset:lineInfo.NewlineStart]
	if disableLineCommentPattern.Match(lineText) {
		return CodeAction{}, false
	}

	pos := offsetToPosition(file, lineInfo.NewlineStart)
	edit := TextEdit{
		Range:   lsp.Range{Start: pos, End: pos},
		NewText: fmt.Sprintf(" <!-- rumdl-disable-line %s -->", d.RuleID),
	}
	return CodeAction{
		Title: fmt.Sprintf("Ignore %s for this line", d.RuleID),
		Kind:  CodeActionQuickFix,
		Edit:  &WorkspaceEdit{Changes: map[string][]TextEdit{uri: {edit}}},
	}, true
}
