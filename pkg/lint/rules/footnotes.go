package rules

import (
	"fmt"

	"github.com/rumdl-go/rumdl/pkg/config"
	"github.com/rumdl-go/rumdl/pkg/lint"
)

// FootnoteValidationRule checks that footnote references resolve to exactly
// one definition: duplicate definitions are flagged on every occurrence
// after the first, and definitions with no referencing usage are flagged as
// orphans (MD066).
type FootnoteValidationRule struct {
	lint.BaseRule
}

// NewFootnoteValidationRule creates a new footnote validation rule.
func NewFootnoteValidationRule() *FootnoteValidationRule {
	return &FootnoteValidationRule{
		BaseRule: lint.NewBaseRule(
			"MD066",
			"footnote-validation",
			"Footnote references and definitions should be consistent",
			[]string{"footnotes"},
			false, // Not auto-fixable - requires a human decision about the duplicate/orphan content.
		),
	}
}

// Apply checks every footnote usage and definition for duplication and orphaning.
func (r *FootnoteValidationRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Root == nil || ctx.File == nil {
		return nil, nil
	}

	refCtx := ctx.RefContext()
	var diags []lint.Diagnostic

	for _, usage := range refCtx.FootnoteUsages {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}
		if usage.ResolvedDefinition == nil {
			diag := lint.NewDiagnosticAt(r.ID(), ctx.File.Path, usage.Position,
				fmt.Sprintf("Footnote reference [^%s] has no matching definition", usage.Label)).
				WithSeverity(config.SeverityWarning).
				WithSuggestion(fmt.Sprintf("Add a [^%s]: definition or remove the reference", usage.Label)).
				Build()
			diags = append(diags, diag)
		}
	}

	for _, def := range refCtx.AllFootnoteDefinitions {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}

		if def.IsDuplicate {
			first := refCtx.FootnoteDefinitions[def.NormalizedLabel]
			diag := lint.NewDiagnosticAt(r.ID(), ctx.File.Path, def.Position,
				fmt.Sprintf("Duplicate footnote definition [^%s] (first defined on line %d)", def.Label, first.LineNumber)).
				WithSeverity(config.SeverityWarning).
				WithSuggestion("Remove the duplicate definition or rename the label").
				Build()
			diags = append(diags, diag)
			continue
		}

		if def.UsageCount == 0 {
			diag := lint.NewDiagnosticAt(r.ID(), ctx.File.Path, def.Position,
				fmt.Sprintf("Footnote definition [^%s] is never referenced", def.Label)).
				WithSeverity(config.SeverityWarning).
				WithSuggestion("Remove the unused definition or add a reference").
				Build()
			diags = append(diags, diag)
		}
	}

	return diags, nil
}

// EmptyFootnoteDefinitionRule flags a footnote definition with no inline
// content unless a following line carries the continuation-paragraph indent
// (MD068).
type EmptyFootnoteDefinitionRule struct {
	lint.BaseRule
}

// NewEmptyFootnoteDefinitionRule creates a new empty-footnote-definition rule.
func NewEmptyFootnoteDefinitionRule() *EmptyFootnoteDefinitionRule {
	return &EmptyFootnoteDefinitionRule{
		BaseRule: lint.NewBaseRule(
			"MD068",
			"empty-footnote-definition",
			"Footnote definitions should not be empty",
			[]string{"footnotes"},
			false, // Not auto-fixable - the missing content must be authored by hand.
		),
	}
}

// Apply flags footnote definitions whose body is blank and uncontinued.
func (r *EmptyFootnoteDefinitionRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Root == nil || ctx.File == nil {
		return nil, nil
	}

	refCtx := ctx.RefContext()
	var diags []lint.Diagnostic

	for _, def := range refCtx.AllFootnoteDefinitions {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}
		if !def.EmptyWithoutContinuation {
			continue
		}

		diag := lint.NewDiagnosticAt(r.ID(), ctx.File.Path, def.Position,
			fmt.Sprintf("Footnote definition [^%s] is empty", def.Label)).
			WithSeverity(config.SeverityWarning).
			WithSuggestion("Add footnote text after the colon, or indent a continuation paragraph at least 4 columns past the definition's margin").
			Build()
		diags = append(diags, diag)
	}

	return diags, nil
}
