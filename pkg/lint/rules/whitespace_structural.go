package rules

import (
	"fmt"
	"regexp"

	"github.com/rumdl-go/rumdl/pkg/config"
	"github.com/rumdl-go/rumdl/pkg/fix"
	"github.com/rumdl-go/rumdl/pkg/lint"
	"github.com/rumdl-go/rumdl/pkg/mdast"
)

// MultipleSpacesRule flags runs of two or more interior spaces that aren't
// leading indent, trailing whitespace, or the separator right after a list,
// blockquote, footnote, reference, or task-checkbox marker.
type MultipleSpacesRule struct {
	lint.BaseRule
}

// NewMultipleSpacesRule creates a new multiple-spaces rule.
func NewMultipleSpacesRule() *MultipleSpacesRule {
	return &MultipleSpacesRule{
		BaseRule: lint.NewBaseRule(
			"MD064",
			"multiple-spaces",
			"Multiple consecutive spaces",
			[]string{"whitespace"},
			true,
		),
	}
}

var (
	md064LeadingWhitespace = regexp.MustCompile(`^[ \t]*`)
	md064TrailingSpaces    = regexp.MustCompile(`[ \t]+$`)
	md064RunSpaces         = regexp.MustCompile(`[ ]{2,}`)

	// md064MarkerPatterns are tried in order; the first match's length is the
	// skip prefix (indent plus marker plus the single separating space that
	// immediately follows it, which is not "interior" whitespace).
	md064MarkerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^[ \t]*(?:[-*+]|\d{1,9}[.)])[ \t]+\[[ xX]\][ \t]+`), // task checkbox
		regexp.MustCompile(`^[ \t]*(?:[-*+]|\d{1,9}[.)])[ \t]+`),               // list marker
		regexp.MustCompile(`^[ \t]*>+[ \t]*`),                                  // blockquote marker(s)
		regexp.MustCompile(`^[ \t]*\[\^[^\]]+\]:[ \t]+`),                       // footnote definition
		regexp.MustCompile(`^[ \t]*\[[^\]]+\]:[ \t]+`),                        // reference definition
	}
)

// Apply scans every non-code, non-table line for disallowed space runs.
func (r *MultipleSpacesRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.File == nil {
		return nil, nil
	}

	var diags []lint.Diagnostic

	for lineNum := 1; lineNum <= len(ctx.File.Lines); lineNum++ {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}

		if ctx.IsLineInCodeBlock(lineNum) || ctx.IsLineInTable(lineNum) {
			continue
		}

		content := lint.LineContent(ctx.File, lineNum)
		if len(content) == 0 {
			continue
		}
		line := string(content)

		skipEnd := 0
		for _, pat := range md064MarkerPatterns {
			if loc := pat.FindStringIndex(line); loc != nil {
				skipEnd = loc[1]
				break
			}
		}
		if skipEnd == 0 {
			skipEnd = len(md064LeadingWhitespace.FindString(line))
		}

		trailingStart := len(line)
		if loc := md064TrailingSpaces.FindStringIndex(line); loc != nil {
			trailingStart = loc[0]
		}
		if skipEnd >= trailingStart {
			continue
		}

		body := line[skipEnd:trailingStart]
		codeRanges := headingInlineCodeRegex.FindAllStringIndex(body, -1)

		lineInfo := ctx.File.Lines[lineNum-1]

		for _, m := range md064RunSpaces.FindAllStringIndex(body, -1) {
			if runOverlapsAny(m, codeRanges) {
				continue
			}

			start := skipEnd + m[0]
			end := skipEnd + m[1]

			builder := fix.NewEditBuilder()
			builder.ReplaceRange(lineInfo.StartOffset+start, lineInfo.StartOffset+end, " ")

			pos := mdast.SourcePosition{
				StartLine:   lineNum,
				StartColumn: start + 1,
				EndLine:     lineNum,
				EndColumn:   end + 1,
			}

			diag := lint.NewDiagnosticAt(r.ID(), ctx.File.Path, pos,
				fmt.Sprintf("Multiple consecutive spaces (%d)", end-start)).
				WithSeverity(config.SeverityWarning).
				WithSuggestion("Collapse to a single space").
				WithFix(builder).
				Build()
			diags = append(diags, diag)
		}
	}

	return diags, nil
}

func runOverlapsAny(run []int, ranges [][]int) bool {
	for _, rg := range ranges {
		if run[0] < rg[1] && run[1] > rg[0] {
			return true
		}
	}
	return false
}

// BlanksAroundHRRule requires a blank line immediately before and after a
// horizontal rule, unless the rule is the first or last line of the document.
type BlanksAroundHRRule struct {
	lint.BaseRule
}

// NewBlanksAroundHRRule creates a new blanks-around-hr rule.
func NewBlanksAroundHRRule() *BlanksAroundHRRule {
	return &BlanksAroundHRRule{
		BaseRule: lint.NewBaseRule(
			"MD065",
			"blanks-around-hr",
			"Blank lines around horizontal rules",
			[]string{"hr", "whitespace"},
			true,
		),
	}
}

var md065BlockquotePrefix = regexp.MustCompile(`^[ \t]*(?:>[ \t]?)+`)

// Apply checks every thematic-break token for surrounding blank lines.
//
// Setext heading underlines never reach here: the tokenizer emits a distinct
// token kind for them, so only genuine HRs carry mdast.TokThematicBreak.
func (r *BlanksAroundHRRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Root == nil || ctx.File == nil {
		return nil, nil
	}

	var diags []lint.Diagnostic

	for _, tok := range ctx.File.Tokens {
		if tok.Kind != mdast.TokThematicBreak {
			continue
		}
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}

		line, _ := ctx.File.LineAt(tok.StartOffset)
		if line == 0 {
			continue
		}

		prefix := md065BlockquotePrefix.FindString(string(lint.LineContent(ctx.File, line)))

		if line > 1 && !lint.IsBlankLine(ctx.File, line-1) {
			lineInfo := ctx.File.Lines[line-1]
			builder := fix.NewEditBuilder()
			builder.Insert(lineInfo.StartOffset, prefix+"\n")

			pos := mdast.SourcePosition{StartLine: line, StartColumn: 1, EndLine: line, EndColumn: 1}
			diag := lint.NewDiagnosticAt(r.ID(), ctx.File.Path, pos,
				"Missing blank line before horizontal rule").
				WithSeverity(config.SeverityWarning).
				WithSuggestion("Add a blank line before the horizontal rule").
				WithFix(builder).
				Build()
			diags = append(diags, diag)
		}

		if line < len(ctx.File.Lines) && !lint.IsBlankLine(ctx.File, line+1) {
			lineInfo := ctx.File.Lines[line-1]
			builder := fix.NewEditBuilder()
			builder.Insert(lineInfo.EndOffset, "\n"+prefix)

			pos := mdast.SourcePosition{StartLine: line, StartColumn: 1, EndLine: line, EndColumn: 1}
			diag := lint.NewDiagnosticAt(r.ID(), ctx.File.Path, pos,
				"Missing blank line after horizontal rule").
				WithSeverity(config.SeverityWarning).
				WithSuggestion("Add a blank line after the horizontal rule").
				WithFix(builder).
				Build()
			diags = append(diags, diag)
		}
	}

	return diags, nil
}
