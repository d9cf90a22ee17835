package rules

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rumdl-go/rumdl/pkg/config"
	"github.com/rumdl-go/rumdl/pkg/fix"
	"github.com/rumdl-go/rumdl/pkg/lint"
	"github.com/rumdl-go/rumdl/pkg/mdast"
	"github.com/rumdl-go/rumdl/pkg/text/width"
)

// TablePipeStyleRule checks for consistent leading/trailing pipe style in tables.
type TablePipeStyleRule struct {
	lint.BaseRule
}

// NewTablePipeStyleRule creates a new table pipe style rule.
func NewTablePipeStyleRule() *TablePipeStyleRule {
	return &TablePipeStyleRule{
		BaseRule: lint.NewBaseRule(
			"MD055",
			"table-pipe-style",
			"Table pipe style should be consistent",
			[]string{"table"},
			false, // Not auto-fixable (complex).
		),
	}
}

// PipeStyle represents the pipe style of tables.
type PipeStyle string

const (
	// PipeStyleConsistent uses whatever style is first encountered.
	PipeStyleConsistent PipeStyle = "consistent"
	// PipeStyleLeadingAndTrailing requires pipes at both ends.
	PipeStyleLeadingAndTrailing PipeStyle = "leading_and_trailing"
	// PipeStyleLeadingOnly requires pipe at start only.
	PipeStyleLeadingOnly PipeStyle = "leading_only"
	// PipeStyleTrailingOnly requires pipe at end only.
	PipeStyleTrailingOnly PipeStyle = "trailing_only"
	// PipeStyleNoLeadingOrTrailing requires no pipes at ends.
	PipeStyleNoLeadingOrTrailing PipeStyle = "no_leading_or_trailing"
)

// Apply checks table pipe style consistency.
func (r *TablePipeStyleRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Root == nil || ctx.File == nil {
		return nil, nil
	}

	// Skip if not GFM flavor.
	if ctx.Config != nil && ctx.Config.Flavor != config.FlavorGFM {
		return nil, nil
	}

	configStyle := PipeStyle(ctx.OptionString("style", string(PipeStyleConsistent)))

	var diags []lint.Diagnostic
	var expectedStyle PipeStyle

	if configStyle != PipeStyleConsistent {
		expectedStyle = configStyle
	}

	// Find tables by looking for delimiter rows.
	lineNum := 1
	for lineNum <= len(ctx.File.Lines) {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}

		content := lint.LineContent(ctx.File, lineNum)
		if !isTableDelimiterRow(content) {
			lineNum++
			continue
		}

		// Found a table. Check all rows including header.
		tableStart := lineNum - 1 // Header row
		if tableStart < 1 {
			tableStart = lineNum
		}

		tableEnd := lineNum
		for tableEnd+1 <= len(ctx.File.Lines) {
			nextContent := lint.LineContent(ctx.File, tableEnd+1)
			if !isTableRow(nextContent) {
				break
			}
			tableEnd++
		}

		// Check all rows in the table
		for rowNum := tableStart; rowNum <= tableEnd; rowNum++ {
			rowContent := lint.LineContent(ctx.File, rowNum)
			trimmed := bytes.TrimSpace(rowContent)
			if len(trimmed) == 0 {
				continue
			}

			hasLeading := len(trimmed) > 0 && trimmed[0] == '|'
			hasTrailing := len(trimmed) > 0 && trimmed[len(trimmed)-1] == '|'

			var detectedStyle PipeStyle
			switch {
			case hasLeading && hasTrailing:
				detectedStyle = PipeStyleLeadingAndTrailing
			case hasLeading:
				detectedStyle = PipeStyleLeadingOnly
			case hasTrailing:
				detectedStyle = PipeStyleTrailingOnly
			default:
				detectedStyle = PipeStyleNoLeadingOrTrailing
			}

			// Set expected style from first row if consistent mode
			if expectedStyle == "" {
				expectedStyle = detectedStyle
				continue
			}

			// Check for style mismatch
			if detectedStyle != expectedStyle {
				pos := mdast.SourcePosition{
					StartLine:   rowNum,
					StartColumn: 1,
					EndLine:     rowNum,
					EndColumn:   len(rowContent),
				}
				diag := lint.NewDiagnosticAt(r.ID(), ctx.File.Path, pos,
					fmt.Sprintf("Table row pipe style '%s' does not match expected '%s'", detectedStyle, expectedStyle)).
					WithSeverity(config.SeverityWarning).
					WithSuggestion(fmt.Sprintf("Use %s pipe style for all table rows", expectedStyle)).
					Build()
				diags = append(diags, diag)
			}
		}

		lineNum = tableEnd + 1
	}

	return diags, nil
}

// TableColumnCountRule checks for consistent column counts in GFM tables.
type TableColumnCountRule struct {
	lint.BaseRule
}

// NewTableColumnCountRule creates a new table column count rule.
func NewTableColumnCountRule() *TableColumnCountRule {
	return &TableColumnCountRule{
		BaseRule: lint.NewBaseRule(
			"MD056",
			"table-column-count",
			"Table rows should have consistent column counts",
			[]string{"table"},
			false, // Not auto-fixable.
		),
	}
}

// DefaultEnabled returns true only for GFM flavor.
func (r *TableColumnCountRule) DefaultEnabled() bool {
	return true
}

// Apply checks table column consistency. Skipped if not GFM flavor.
func (r *TableColumnCountRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Root == nil || ctx.File == nil {
		return nil, nil
	}

	// Skip if not GFM flavor.
	if ctx.Config != nil && ctx.Config.Flavor != config.FlavorGFM {
		return nil, nil
	}

	var diags []lint.Diagnostic

	// Find table-like structures by looking for delimiter rows.
	for lineNum := 1; lineNum <= len(ctx.File.Lines); lineNum++ {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}

		content := lint.LineContent(ctx.File, lineNum)
		if !isTableDelimiterRow(content) {
			continue
		}

		// Found delimiter row, check header and data rows.
		delimColCount := countTableColumns(content)

		// Check header row (line before delimiter).
		if lineNum > 1 {
			headerContent := lint.LineContent(ctx.File, lineNum-1)
			if isTableRow(headerContent) {
				headerColCount := countTableColumns(headerContent)
				if headerColCount != delimColCount {
					pos := mdast.SourcePosition{
						StartLine:   lineNum - 1,
						StartColumn: 1,
						EndLine:     lineNum - 1,
						EndColumn:   len(headerContent),
					}
					diag := lint.NewDiagnosticAt(r.ID(), ctx.File.Path, pos,
						fmt.Sprintf("Table header has %d columns, delimiter has %d", headerColCount, delimColCount)).
						WithSeverity(config.SeverityWarning).
						WithSuggestion("Ensure all rows have the same number of columns").
						Build()
					diags = append(diags, diag)
				}
			}
		}

		// Check data rows (lines after delimiter).
		for dataLine := lineNum + 1; dataLine <= len(ctx.File.Lines); dataLine++ {
			dataContent := lint.LineContent(ctx.File, dataLine)
			if !isTableRow(dataContent) {
				break
			}

			dataColCount := countTableColumns(dataContent)
			if dataColCount != delimColCount {
				pos := mdast.SourcePosition{
					StartLine:   dataLine,
					StartColumn: 1,
					EndLine:     dataLine,
					EndColumn:   len(dataContent),
				}
				diag := lint.NewDiagnosticAt(r.ID(), ctx.File.Path, pos,
					fmt.Sprintf("Table row has %d columns, expected %d", dataColCount, delimColCount)).
					WithSeverity(config.SeverityWarning).
					WithSuggestion("Ensure all rows have the same number of columns").
					Build()
				diags = append(diags, diag)
			}
		}
	}

	return diags, nil
}

// TableAlignmentRule validates table delimiter row format.
type TableAlignmentRule struct {
	lint.BaseRule
}

// NewTableAlignmentRule creates a new table alignment rule.
func NewTableAlignmentRule() *TableAlignmentRule {
	return &TableAlignmentRule{
		BaseRule: lint.NewBaseRule(
			"MDL003",
			"table-alignment",
			"Table delimiter row should be properly formatted",
			[]string{"tables", "gfm"},
			true, // Auto-fixable.
		),
	}
}

// DefaultEnabled returns true only for GFM flavor.
func (r *TableAlignmentRule) DefaultEnabled() bool {
	return true
}

// Apply checks table delimiter row formatting.
func (r *TableAlignmentRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Root == nil || ctx.File == nil {
		return nil, nil
	}

	// Skip if not GFM flavor.
	if ctx.Config != nil && ctx.Config.Flavor != config.FlavorGFM {
		return nil, nil
	}

	minDashes := ctx.OptionInt("min_dashes", 3)

	var diags []lint.Diagnostic

	for lineNum := 1; lineNum <= len(ctx.File.Lines); lineNum++ {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}

		content := lint.LineContent(ctx.File, lineNum)
		if !isTableDelimiterRow(content) {
			continue
		}

		// Check each cell in the delimiter row.
		cells := splitTableCells(content)
		for _, cell := range cells {
			cell = bytes.TrimSpace(cell)
			if len(cell) == 0 {
				continue
			}

			// Count dashes.
			dashes := 0
			for _, ch := range cell {
				if ch == '-' {
					dashes++
				}
			}

			if dashes < minDashes {
				pos := mdast.SourcePosition{
					StartLine:   lineNum,
					StartColumn: 1,
					EndLine:     lineNum,
					EndColumn:   len(content),
				}

				// Build fix.
				builder := r.buildAlignmentFix(ctx.File, lineNum, minDashes)

				diagBuilder := lint.NewDiagnosticAt(r.ID(), ctx.File.Path, pos,
					fmt.Sprintf("Table delimiter has fewer than %d dashes", minDashes)).
					WithSeverity(config.SeverityWarning).
					WithSuggestion(fmt.Sprintf("Use at least %d dashes in delimiter cells", minDashes))

				if builder != nil {
					diagBuilder = diagBuilder.WithFix(builder)
				}

				diags = append(diags, diagBuilder.Build())
				break // One diagnostic per line.
			}
		}
	}

	return diags, nil
}

func (r *TableAlignmentRule) buildAlignmentFix(
	file *mdast.FileSnapshot,
	lineNum int,
	minDashes int,
) *fix.EditBuilder {
	if file == nil || lineNum < 1 || lineNum > len(file.Lines) {
		return nil
	}

	content := lint.LineContent(file, lineNum)
	cells := splitTableCells(content)

	newCells := make([]string, 0, len(cells))
	for _, cell := range cells {
		cell = bytes.TrimSpace(cell)
		if len(cell) == 0 {
			newCells = append(newCells, strings.Repeat("-", minDashes))
			continue
		}

		// Preserve alignment markers.
		leftAlign := cell[0] == ':'
		rightAlign := cell[len(cell)-1] == ':'

		dashes := strings.Repeat("-", minDashes)
		var newCell string
		switch {
		case leftAlign && rightAlign:
			newCell = ":" + dashes + ":"
		case leftAlign:
			newCell = ":" + dashes
		case rightAlign:
			newCell = dashes + ":"
		default:
			newCell = dashes
		}
		newCells = append(newCells, newCell)
	}

	newContent := "| " + strings.Join(newCells, " | ") + " |"
	line := file.Lines[lineNum-1]

	builder := fix.NewEditBuilder()
	builder.ReplaceRange(line.StartOffset, line.NewlineStart, newContent)

	return builder
}

// TableBlankLinesRule ensures blank lines around tables.
type TableBlankLinesRule struct {
	lint.BaseRule
}

// NewTableBlankLinesRule creates a new table blank lines rule.
func NewTableBlankLinesRule() *TableBlankLinesRule {
	return &TableBlankLinesRule{
		BaseRule: lint.NewBaseRule(
			"MD058",
			"blanks-around-tables",
			"Tables should be surrounded by blank lines",
			[]string{"table"},
			true, // Auto-fixable.
		),
	}
}

// DefaultEnabled returns true only for GFM flavor.
func (r *TableBlankLinesRule) DefaultEnabled() bool {
	return true
}

// DefaultSeverity returns info level for this rule.
func (r *TableBlankLinesRule) DefaultSeverity() config.Severity {
	return config.SeverityInfo
}

// Apply checks for blank lines around tables.
func (r *TableBlankLinesRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Root == nil || ctx.File == nil {
		return nil, nil
	}

	// Skip if not GFM flavor.
	if ctx.Config != nil && ctx.Config.Flavor != config.FlavorGFM {
		return nil, nil
	}

	var diags []lint.Diagnostic

	// Find tables by looking for delimiter rows.
	lineNum := 1
	for lineNum <= len(ctx.File.Lines) {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}

		content := lint.LineContent(ctx.File, lineNum)
		if !isTableDelimiterRow(content) {
			lineNum++
			continue
		}

		// Found a table. Determine its extent.
		tableStart := lineNum - 1 // Header row.
		if tableStart < 1 {
			tableStart = lineNum
		}

		tableEnd := lineNum
		for tableEnd+1 <= len(ctx.File.Lines) {
			nextContent := lint.LineContent(ctx.File, tableEnd+1)
			if !isTableRow(nextContent) {
				break
			}
			tableEnd++
		}

		// Check blank line before.
		if tableStart > 1 && !lint.IsBlankLine(ctx.File, tableStart-1) {
			pos := mdast.SourcePosition{
				StartLine:   tableStart,
				StartColumn: 1,
				EndLine:     tableStart,
				EndColumn:   1,
			}

			builder := fix.NewEditBuilder()
			line := ctx.File.Lines[tableStart-1]
			builder.Insert(line.StartOffset, "\n")

			diag := lint.NewDiagnosticAt(r.ID(), ctx.File.Path, pos,
				"Missing blank line before table").
				WithSeverity(config.SeverityInfo).
				WithSuggestion("Add a blank line before the table").
				WithFix(builder).
				Build()
			diags = append(diags, diag)
		}

		// Check blank line after.
		if tableEnd < len(ctx.File.Lines) && !lint.IsBlankLine(ctx.File, tableEnd+1) {
			pos := mdast.SourcePosition{
				StartLine:   tableEnd,
				StartColumn: 1,
				EndLine:     tableEnd,
				EndColumn:   1,
			}

			builder := fix.NewEditBuilder()
			line := ctx.File.Lines[tableEnd-1]
			builder.Insert(line.EndOffset, "\n")

			diag := lint.NewDiagnosticAt(r.ID(), ctx.File.Path, pos,
				"Missing blank line after table").
				WithSeverity(config.SeverityInfo).
				WithSuggestion("Add a blank line after the table").
				WithFix(builder).
				Build()
			diags = append(diags, diag)
		}

		lineNum = tableEnd + 1
	}

	return diags, nil
}

// isTableDelimiterRow checks if a line is a table delimiter row (| --- | --- |).
func isTableDelimiterRow(content []byte) bool {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 {
		return false
	}

	// Must contain pipes and dashes.
	hasPipe := bytes.Contains(trimmed, []byte("|"))
	hasDash := bytes.Contains(trimmed, []byte("-"))
	if !hasPipe || !hasDash {
		return false
	}

	// Check that it only contains valid delimiter characters.
	for _, ch := range trimmed {
		switch ch {
		case '|', '-', ':', ' ', '\t':
			continue
		default:
			return false
		}
	}

	return true
}

// isTableRow checks if a line looks like a table row.
func isTableRow(content []byte) bool {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 {
		return false
	}

	// Must start and end with pipe (or start/end with content and have pipes).
	return bytes.Contains(trimmed, []byte("|"))
}

// countTableColumns counts the number of columns in a table row.
func countTableColumns(content []byte) int {
	cells := splitTableCells(content)
	return len(cells)
}

// splitTableCells splits a table row into cells.
func splitTableCells(content []byte) [][]byte {
	trimmed := bytes.TrimSpace(content)

	// Remove leading and trailing pipes.
	if len(trimmed) > 0 && trimmed[0] == '|' {
		trimmed = trimmed[1:]
	}
	if len(trimmed) > 0 && trimmed[len(trimmed)-1] == '|' {
		trimmed = trimmed[:len(trimmed)-1]
	}

	if len(trimmed) == 0 {
		return nil
	}

	return bytes.Split(trimmed, []byte("|"))
}

// TableColumnStyleRule normalizes column spacing/alignment in GFM tables:
// aligned (space-padded for visual columns), compact (single space padding),
// tight (no padding), or any (detect the table's own style and reformat
// every row to match it consistently). A whole-table fix is attached to
// every diagnostic raised within a table so that accepting the fix on any
// one row reformats the entire table at once.
type TableColumnStyleRule struct {
	lint.BaseRule
}

// NewTableColumnStyleRule creates a new table column style rule.
func NewTableColumnStyleRule() *TableColumnStyleRule {
	return &TableColumnStyleRule{
		BaseRule: lint.NewBaseRule(
			"MD060",
			"table-column-style",
			"Table columns should be consistently aligned",
			[]string{"table"},
			true, // Auto-fixable: whole-table reformat.
		),
	}
}

// DefaultEnabled returns false - conservative opt-in, since reformatting
// every table in a document is a larger change than most style rules make.
func (r *TableColumnStyleRule) DefaultEnabled() bool {
	return false
}

// ColumnStyle represents the column spacing style of tables.
type ColumnStyle string

const (
	// ColumnStyleAny detects the table's existing style and normalizes to it.
	ColumnStyleAny ColumnStyle = "any"
	// ColumnStyleAligned pads columns with spaces for visual alignment.
	ColumnStyleAligned ColumnStyle = "aligned"
	// ColumnStyleCompact uses a single space of padding on each side.
	ColumnStyleCompact ColumnStyle = "compact"
	// ColumnStyleTight uses no padding; pipes sit directly against content.
	ColumnStyleTight ColumnStyle = "tight"
)

// md060ColumnAlignment is the per-column alignment used when padding cells
// for the "aligned" style.
type md060ColumnAlignment int

const (
	md060AlignLeft md060ColumnAlignment = iota
	md060AlignCenter
	md060AlignRight
)

func md060ParseAlignment(s string) md060ColumnAlignment {
	switch s {
	case "center":
		return md060AlignCenter
	case "right":
		return md060AlignRight
	default:
		return md060AlignLeft
	}
}

// md060UnlimitedWidth stands in for "no max-width guard".
const md060UnlimitedWidth = int(^uint(0) >> 1)

// md060MinCellWidth is GFM's minimum delimiter-row dash count, which forces
// every column to be at least this wide for visual alignment to line up.
const md060MinCellWidth = 3

// Apply normalizes table column spacing per the configured (or detected) style.
func (r *TableColumnStyleRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Root == nil || ctx.File == nil {
		return nil, nil
	}

	// Skip if not GFM flavor.
	if ctx.Config != nil && ctx.Config.Flavor != config.FlavorGFM {
		return nil, nil
	}

	style := ColumnStyle(ctx.OptionString("style", string(ColumnStyleAligned)))
	maxWidth := md060EffectiveMaxWidth(ctx)

	lc := ctx.LintContext()
	var diags []lint.Diagnostic

	for _, block := range lc.Tables {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}

		lineNums := append([]int{block.HeaderLine, block.DelimiterLine}, block.ContentLines...)

		original := make([]string, len(lineNums))
		for i, ln := range lineNums {
			original[i] = string(lint.LineContent(ctx.File, ln))
		}

		if md060HasUnsafeChars(original) {
			continue
		}

		formatted, autoCompacted, alignedWidth := md060FormatTable(original, style, maxWidth)
		if formatted == nil {
			continue
		}

		changed := false
		for i := range original {
			if original[i] != formatted[i] {
				changed = true
				break
			}
		}
		if !changed {
			continue
		}

		replacement := strings.Join(formatted, "\n")
		tableEdit, ok := md060WholeTableEdit(ctx.File, lineNums, replacement)
		if !ok {
			continue
		}

		for i, ln := range lineNums {
			if original[i] == formatted[i] {
				continue
			}

			var message string
			switch {
			case autoCompacted:
				message = fmt.Sprintf(
					"Table too wide for aligned formatting (%d chars > max-width: %d)", alignedWidth, maxWidth)
			case style == ColumnStyleAligned:
				message = "Table columns should be aligned"
			default:
				message = fmt.Sprintf("Table column style should be '%s'", style)
			}

			pos := mdast.SourcePosition{
				StartLine:   ln,
				StartColumn: 1,
				EndLine:     ln,
				EndColumn:   len(original[i]) + 1,
			}
			diag := lint.NewDiagnosticAt(r.ID(), ctx.File.Path, pos, message).
				WithSeverity(config.SeverityWarning).
				WithSuggestion(fmt.Sprintf("Reformat table to '%s' column style", style)).
				WithEdit(tableEdit).
				Build()
			diags = append(diags, diag)
		}
	}

	return diags, nil
}

// md060EffectiveMaxWidth resolves the max-width auto-compact threshold: an
// explicit option always wins; otherwise it inherits MD013's line-length,
// unless MD013 is disabled, has table checking turned off, or has no limit
// of its own, in which case there is no threshold at all.
func md060EffectiveMaxWidth(ctx *lint.RuleContext) int {
	if explicit := ctx.OptionInt("max_width", 0); explicit > 0 {
		return explicit
	}

	if ctx.Config == nil {
		return md060UnlimitedWidth
	}

	md013, configured := ctx.Config.Rules["MD013"]
	if configured && md013.Enabled != nil && !*md013.Enabled {
		return md060UnlimitedWidth
	}

	tablesOption := true
	lineLength := defaultMaxLineLength
	if configured && md013.Options != nil {
		if v, ok := md013.Options["tables"]; ok {
			if b, ok := v.(bool); ok {
				tablesOption = b
			}
		}
		if v, ok := md013.Options["max"]; ok {
			switch n := v.(type) {
			case int:
				lineLength = n
			case float64:
				lineLength = int(n)
			}
		}
	}

	if !tablesOption || lineLength == 0 {
		return md060UnlimitedWidth
	}

	return lineLength
}

// md060HasUnsafeChars reports whether any line contains a code point that
// makes display-width math unreliable (zero-width joiners/spaces, word
// joiners): such tables are left untouched rather than risk corrupting
// complex emoji or invisible-formatting sequences.
func md060HasUnsafeChars(lines []string) bool {
	for _, line := range lines {
		if width.UnsafeToAlign(line) {
			return true
		}
	}
	return false
}

// md060SplitCells splits a table row into trimmed cells on unescaped pipes,
// dropping a single empty leading/trailing cell from the table's outer pipes.
func md060SplitCells(line string) []string {
	trimmed := strings.TrimSpace(line)
	var cells []string
	var cur strings.Builder
	for i := 0; i < len(trimmed); i++ {
		c := trimmed[i]
		if c == '\\' && i+1 < len(trimmed) {
			cur.WriteByte(c)
			cur.WriteByte(trimmed[i+1])
			i++
			continue
		}
		if c == '|' {
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
			continue
		}
		cur.WriteByte(c)
	}
	cells = append(cells, strings.TrimSpace(cur.String()))

	if len(cells) > 0 && cells[0] == "" {
		cells = cells[1:]
	}
	if len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}

// md060IsDelimiterRow reports whether cells form a table delimiter row
// (each cell non-empty, containing only dashes/colons/whitespace with at
// least one dash).
func md060IsDelimiterRow(cells []string) bool {
	if len(cells) == 0 {
		return false
	}
	for _, cell := range cells {
		trimmed := strings.TrimSpace(cell)
		if trimmed == "" || !strings.Contains(trimmed, "-") {
			return false
		}
		for _, ch := range trimmed {
			if ch != '-' && ch != ':' && ch != ' ' && ch != '\t' {
				return false
			}
		}
	}
	return true
}

// md060ColumnWidths computes each column's display width as the max over
// every non-delimiter row, clamped to the GFM minimum of 3 (a delimiter
// cell needs at least 3 dashes) and widened further if the delimiter row's
// alignment colons need more room than the content does.
func md060ColumnWidths(lines []string) []int {
	var widths []int
	var delimiterCells []string

	for _, line := range lines {
		cells := md060SplitCells(line)
		if md060IsDelimiterRow(cells) {
			delimiterCells = cells
			continue
		}
		for i, cell := range cells {
			w := width.String(strings.TrimSpace(cell))
			if i >= len(widths) {
				widths = append(widths, w)
			} else if w > widths[i] {
				widths[i] = w
			}
		}
	}

	for i := range widths {
		if widths[i] < md060MinCellWidth {
			widths[i] = md060MinCellWidth
		}
	}

	for i, cell := range delimiterCells {
		if i >= len(widths) {
			break
		}
		trimmed := strings.TrimSpace(cell)
		colons := 0
		if strings.HasPrefix(trimmed, ":") {
			colons++
		}
		if strings.HasSuffix(trimmed, ":") {
			colons++
		}
		if need := md060MinCellWidth + colons; need > widths[i] {
			widths[i] = need
		}
	}

	return widths
}

// md060FormatAlignedRow pads each cell to its column's target width per the
// column's alignment, matching the delimiter row's own colon placement when
// the row being formatted is the delimiter itself.
func md060FormatAlignedRow(cells []string, widths []int, aligns []md060ColumnAlignment, isDelimiter bool) string {
	formatted := make([]string, len(cells))
	for i, cell := range cells {
		target := 0
		if i < len(widths) {
			target = widths[i]
		}

		if isDelimiter {
			trimmed := strings.TrimSpace(cell)
			left := strings.HasPrefix(trimmed, ":")
			right := strings.HasSuffix(trimmed, ":")
			dashes := target
			switch {
			case left && right:
				dashes = target - 2
			case left || right:
				dashes = target - 1
			}
			if dashes < md060MinCellWidth {
				dashes = md060MinCellWidth
			}
			run := strings.Repeat("-", dashes)
			switch {
			case left && right:
				formatted[i] = " :" + run + ": "
			case left:
				formatted[i] = " :" + run + " "
			case right:
				formatted[i] = " " + run + ": "
			default:
				formatted[i] = " " + run + " "
			}
			continue
		}

		trimmed := strings.TrimSpace(cell)
		padding := target - width.String(trimmed)
		if padding < 0 {
			padding = 0
		}

		align := md060AlignLeft
		if i < len(aligns) {
			align = aligns[i]
		}
		switch align {
		case md060AlignRight:
			formatted[i] = " " + strings.Repeat(" ", padding) + trimmed + " "
		case md060AlignCenter:
			left := padding / 2
			right := padding - left
			formatted[i] = " " + strings.Repeat(" ", left) + trimmed + strings.Repeat(" ", right) + " "
		default:
			formatted[i] = " " + trimmed + strings.Repeat(" ", padding) + " "
		}
	}
	return "|" + strings.Join(formatted, "|") + "|"
}

// md060FormatCompactRow pads every cell with exactly one space on each side.
func md060FormatCompactRow(cells []string) string {
	formatted := make([]string, len(cells))
	for i, cell := range cells {
		formatted[i] = " " + strings.TrimSpace(cell) + " "
	}
	return "|" + strings.Join(formatted, "|") + "|"
}

// md060FormatTightRow has no padding at all between pipes and content.
func md060FormatTightRow(cells []string) string {
	formatted := make([]string, len(cells))
	for i, cell := range cells {
		formatted[i] = strings.TrimSpace(cell)
	}
	return "|" + strings.Join(formatted, "|") + "|"
}

// md060DetectStyle inspects a table's existing rows and reports the style
// they already follow ("aligned", "compact", "tight"), or "" if the rows
// are inconsistent with each other (in which case "any" style falls back
// to leaving the table untouched).
func md060DetectStyle(lines []string) string {
	allTight, allCompact := true, true
	sawAny := false

	for _, line := range lines {
		rawCells := md060SplitCellsRaw(line)
		if md060IsDelimiterRow(rawCells) {
			continue
		}
		for _, cell := range rawCells {
			sawAny = true
			leading := len(cell) - len(strings.TrimLeft(cell, " "))
			trailing := len(cell) - len(strings.TrimRight(cell, " "))
			if leading != 0 || trailing != 0 {
				allTight = false
			}
			if leading != 1 || trailing != 1 {
				allCompact = false
			}
		}
		if !allTight && !allCompact {
			return "aligned"
		}
	}

	switch {
	case !sawAny:
		return ""
	case allTight:
		return "tight"
	case allCompact:
		return "compact"
	default:
		return "aligned"
	}
}

// md060SplitCellsRaw splits a table row into cells on unescaped pipes
// WITHOUT trimming each cell's internal whitespace, preserving the leading/
// trailing padding that md060DetectStyle needs to tell tight/compact/aligned
// rows apart. The row itself is still trimmed and stripped of its own outer
// pipe, matching md060SplitCells's framing.
func md060SplitCellsRaw(line string) []string {
	trimmed := strings.TrimSpace(line)
	trimmed = strings.TrimPrefix(trimmed, "|")
	trimmed = strings.TrimSuffix(trimmed, "|")

	var cells []string
	var cur strings.Builder
	for i := 0; i < len(trimmed); i++ {
		c := trimmed[i]
		if c == '\\' && i+1 < len(trimmed) {
			cur.WriteByte(c)
			cur.WriteByte(trimmed[i+1])
			i++
			continue
		}
		if c == '|' {
			cells = append(cells, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteByte(c)
	}
	cells = append(cells, cur.String())
	return cells
}

// md060FormatTable reformats one table's raw lines to style, returning the
// new lines, whether an auto-compact width guard kicked in, and (when it
// did) the aligned width that triggered it. Returns a nil slice if the
// table should be left untouched (unrecognized style, or "any" detection
// failed to find a consistent existing style).
func md060FormatTable(lines []string, style ColumnStyle, maxWidth int) ([]string, bool, int) {
	if len(lines) < 2 {
		return nil, false, 0
	}

	delimiterCells := md060SplitCells(lines[1])
	aligns := make([]md060ColumnAlignment, len(delimiterCells))
	for i, cell := range delimiterCells {
		trimmed := strings.TrimSpace(cell)
		left := strings.HasPrefix(trimmed, ":")
		right := strings.HasSuffix(trimmed, ":")
		switch {
		case left && right:
			aligns[i] = md060ParseAlignment("center")
		case right:
			aligns[i] = md060ParseAlignment("right")
		default:
			aligns[i] = md060ParseAlignment("left")
		}
	}

	resolvedStyle := style
	if style == ColumnStyleAny {
		detected := md060DetectStyle(lines)
		if detected == "" {
			return nil, false, 0
		}
		resolvedStyle = ColumnStyle(detected)
	}

	switch resolvedStyle {
	case ColumnStyleTight:
		out := make([]string, len(lines))
		for i, line := range lines {
			out[i] = md060FormatTightRow(md060SplitCells(line))
		}
		return out, false, 0

	case ColumnStyleCompact:
		out := make([]string, len(lines))
		for i, line := range lines {
			out[i] = md060FormatCompactRow(md060SplitCells(line))
		}
		return out, false, 0

	case ColumnStyleAligned:
		widths := md060ColumnWidths(lines)
		numColumns := len(widths)
		aligned := 1 + numColumns*3
		for _, w := range widths {
			aligned += w
		}

		if aligned > maxWidth {
			out := make([]string, len(lines))
			for i, line := range lines {
				out[i] = md060FormatCompactRow(md060SplitCells(line))
			}
			return out, true, aligned
		}

		out := make([]string, len(lines))
		for i, line := range lines {
			cells := md060SplitCells(line)
			out[i] = md060FormatAlignedRow(cells, widths, aligns, md060IsDelimiterRow(cells))
		}
		return out, false, 0

	default:
		return nil, false, 0
	}
}

// md060WholeTableEdit builds a single TextEdit replacing every line in
// lineNums (assumed contiguous and ascending) with replacement, so that
// accepting the fix on any one diagnostic in the table reformats it all
// at once.
func md060WholeTableEdit(file *mdast.FileSnapshot, lineNums []int, replacement string) (fix.TextEdit, bool) {
	if len(lineNums) == 0 || file == nil {
		return fix.TextEdit{}, false
	}
	first := lineNums[0]
	last := lineNums[len(lineNums)-1]
	if first < 1 || last > len(file.Lines) {
		return fix.TextEdit{}, false
	}

	start := file.Lines[first-1].StartOffset
	end := file.Lines[last-1].NewlineStart

	return fix.TextEdit{
		StartOffset: start,
		EndOffset:   end,
		NewText:     replacement,
	}, true
}
