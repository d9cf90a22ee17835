package rules

import (
	"fmt"
	"strings"

	"github.com/rumdl-go/rumdl/pkg/fix"
	"github.com/rumdl-go/rumdl/pkg/lint"
	"github.com/rumdl-go/rumdl/pkg/lintctx"
	"github.com/rumdl-go/rumdl/pkg/mdast"
)

// NestedFenceCollisionRule flags a fenced code block whose body contains a
// line that would have prematurely closed it: same indent rule, same fence
// character, a run at least as long as the opener's. This only matters for
// blocks without a real language tag (empty, "markdown", or "md"), since
// those are the ones likely to *contain* a literal fenced example rather
// than prose about one.
type NestedFenceCollisionRule struct {
	lint.BaseRule
}

// NewNestedFenceCollisionRule creates a new nested-fence-collision rule.
func NewNestedFenceCollisionRule() *NestedFenceCollisionRule {
	return &NestedFenceCollisionRule{
		BaseRule: lint.NewBaseRule(
			"MD070",
			"nested-fence-collision",
			"Fenced code block example collides with its own closing fence",
			[]string{"code"},
			true,
		),
	}
}

// collisionLanguages are the info-string values worth checking: blocks with
// any other declared language are assumed not to contain literal Markdown
// fence examples.
var collisionLanguages = map[string]bool{
	"":         true,
	"markdown": true,
	"md":       true,
}

// Apply checks every top-level fenced code block for a body line that
// collides with the opener's own fence length.
func (r *NestedFenceCollisionRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.File == nil {
		return nil, nil
	}

	lc := ctx.LintContext()
	raw := rawFileLines(ctx.File)

	var diags []lint.Diagnostic

	for _, block := range lc.FenceBlocks {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}

		if block.CloseLine == 0 {
			continue
		}

		info := strings.ToLower(firstField(block.InfoString))
		if !collisionLanguages[info] {
			continue
		}

		bodyStart := block.OpenLine + 1
		bodyEnd := block.CloseLine - 1
		if bodyStart > bodyEnd {
			continue
		}

		collisions := lintctx.FindFenceCollisions(raw, bodyStart, bodyEnd, block.Marker, block.OpenCount)
		if len(collisions) == 0 {
			continue
		}

		maxRun := block.OpenCount
		for _, c := range collisions {
			if c.Count > maxRun {
				maxRun = c.Count
			}
		}
		safeLength := maxRun + 1
		fenceStr := strings.Repeat(string(block.Marker), safeLength)

		pos := mdast.SourcePosition{
			StartLine:   block.OpenLine,
			StartColumn: 1,
			EndLine:     block.CloseLine,
			EndColumn:   1,
		}
		builder := lint.NewDiagnosticAtWithRegistry(r.ID(), ctx.File.Path, pos,
			fmt.Sprintf(
				"Fenced code block's example fence collides with its own closing fence (found a %d-character run inside the block)",
				maxRun,
			), ctx.Registry).
			WithSeverity(r.DefaultSeverity()).
			WithSuggestion(fmt.Sprintf("Widen both fences to %d backticks/tildes", safeLength))

		if edit, ok := replaceFenceLine(ctx.File, block.OpenLine, fenceStr, block.InfoString); ok {
			builder = builder.WithEdit(edit)
		}
		if edit, ok := replaceFenceLine(ctx.File, block.CloseLine, fenceStr, ""); ok {
			builder = builder.WithEdit(edit)
		}

		diags = append(diags, builder.Build())
	}

	return diags, nil
}

// firstField returns the first whitespace-delimited field of s, or "".
func firstField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// rawFileLines returns each physical line's content (no trailing newline),
// 0-indexed, matching the indexing lintctx.FindFenceCollisions expects.
func rawFileLines(file *mdast.FileSnapshot) []string {
	out := make([]string, len(file.Lines))
	for i, li := range file.Lines {
		out[i] = string(file.Content[li.StartOffset:li.NewlineStart])
	}
	return out
}

// replaceFenceLine rewrites the fence marker run on the given 1-based line
// to fenceStr, preserving the line's leading indent and appending info (if
// non-empty) after the marker. Returns ok=false if the line is out of range.
func replaceFenceLine(file *mdast.FileSnapshot, lineNum int, fenceStr, info string) (fix.TextEdit, bool) {
	if lineNum < 1 || lineNum > len(file.Lines) {
		return fix.TextEdit{}, false
	}
	li := file.Lines[lineNum-1]
	content := file.Content[li.StartOffset:li.NewlineStart]

	indentEnd := 0
	for indentEnd < len(content) && (content[indentEnd] == ' ' || content[indentEnd] == '\t') {
		indentEnd++
	}

	newLine := string(content[:indentEnd]) + fenceStr
	if info != "" {
		newLine += info
	}

	return fix.TextEdit{
		StartOffset: li.StartOffset,
		EndOffset:   li.NewlineStart,
		NewText:     newLine,
	}, true
}
