package refs

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/rumdl-go/rumdl/pkg/mdast"
)

// FootnoteDefinition represents a footnote definition: [^label]: content.
type FootnoteDefinition struct {
	// Label is the footnote label as written in the source (without the caret).
	Label string

	// NormalizedLabel is the case-folded label used for matching.
	NormalizedLabel string

	// Content is the text following the colon, trimmed of surrounding whitespace.
	Content string

	// Position in source.
	Position mdast.SourcePosition

	// LineNumber for quick access (1-based).
	LineNumber int

	// IsDuplicate indicates this is a duplicate definition (not the first).
	IsDuplicate bool

	// UsageCount tracks how many times this definition is referenced.
	UsageCount int

	// EmptyWithoutContinuation is true when Content is blank and no following
	// line carries the ≥4-column continuation indent that would make an empty
	// body legitimate (a footnote whose text lives entirely in a follow-on
	// paragraph).
	EmptyWithoutContinuation bool
}

// FootnoteUsage represents a footnote reference: [^label].
type FootnoteUsage struct {
	// Label is the footnote label as written (without the caret).
	Label string

	// NormalizedLabel for matching against definitions.
	NormalizedLabel string

	// Position in source.
	Position mdast.SourcePosition

	// ResolvedDefinition points to the matching definition (if any).
	ResolvedDefinition *FootnoteDefinition
}

var (
	// footnoteDefPattern matches a footnote definition at the start of a line,
	// allowing the CommonMark-style up-to-3-space margin.
	footnoteDefPattern = regexp.MustCompile(`^(\s{0,3})\[\^([^\]]+)\]:(.*)$`)

	// footnoteRefPattern matches any [^label] occurrence, definition or usage.
	footnoteRefPattern = regexp.MustCompile(`\[\^([^\]]+)\]`)
)

// collectFootnotes scans the source for footnote definitions and references,
// independent of the AST since footnotes have no dedicated node kind.
func (c *collector) collectFootnotes() {
	if c.ctx.File == nil {
		return
	}

	codeBlockLines := c.buildCodeBlockLines()

	// defMarkerRanges maps a 1-based line number to the byte range of its
	// "[^label]:" marker, so the usage scan below can skip the definition's
	// own bracket rather than double-counting it as a reference.
	defMarkerRanges := make(map[int][2]int)

	for lineIdx, lineInfo := range c.ctx.File.Lines {
		lineNum := lineIdx + 1
		if codeBlockLines[lineNum] {
			continue
		}

		line := c.ctx.File.Content[lineInfo.StartOffset:lineInfo.NewlineStart]
		m := footnoteDefPattern.FindSubmatchIndex(line)
		if m == nil {
			continue
		}

		marginIndent := m[3] - m[2]
		label := string(line[m[4]:m[5]])
		normalized := NormalizeLabel(label)
		content := strings.TrimSpace(string(line[m[6]:m[7]]))

		def := &FootnoteDefinition{
			Label:           label,
			NormalizedLabel: normalized,
			Content:         content,
			LineNumber:      lineNum,
			Position: mdast.SourcePosition{
				StartLine: lineNum, EndLine: lineNum, StartColumn: 1,
			},
		}

		if content == "" {
			def.EmptyWithoutContinuation = !c.footnoteHasContinuation(lineIdx, marginIndent)
		}

		if _, exists := c.ctx.FootnoteDefinitions[normalized]; exists {
			def.IsDuplicate = true
		} else {
			c.ctx.FootnoteDefinitions[normalized] = def
		}
		c.ctx.AllFootnoteDefinitions = append(c.ctx.AllFootnoteDefinitions, def)

		// The bracket run spans from the '[' (two bytes before the label
		// start) through the ']' (one byte after the label end).
		defMarkerRanges[lineNum] = [2]int{m[4] - 2, m[5] + 1}
	}

	for lineIdx, lineInfo := range c.ctx.File.Lines {
		lineNum := lineIdx + 1
		if codeBlockLines[lineNum] {
			continue
		}

		line := c.ctx.File.Content[lineInfo.StartOffset:lineInfo.NewlineStart]
		defRange, hasDef := defMarkerRanges[lineNum]

		for _, loc := range footnoteRefPattern.FindAllSubmatchIndex(line, -1) {
			if hasDef && loc[0] == defRange[0] && loc[1] == defRange[1] {
				continue
			}

			label := string(line[loc[2]:loc[3]])
			normalized := NormalizeLabel(label)

			usage := &FootnoteUsage{
				Label:           label,
				NormalizedLabel: normalized,
				Position: mdast.SourcePosition{
					StartLine: lineNum, EndLine: lineNum,
					StartColumn: loc[0] + 1, EndColumn: loc[1] + 1,
				},
			}
			c.ctx.FootnoteUsages = append(c.ctx.FootnoteUsages, usage)
		}
	}

	for _, usage := range c.ctx.FootnoteUsages {
		if def, ok := c.ctx.FootnoteDefinitions[usage.NormalizedLabel]; ok {
			usage.ResolvedDefinition = def
			def.UsageCount++
		}
	}
}

// footnoteHasContinuation reports whether the first non-blank line after the
// definition at 0-based index defLineIdx is indented at least 4 columns past
// the definition's own margin - the convention for a footnote whose body is
// a following paragraph rather than inline text after the colon.
func (c *collector) footnoteHasContinuation(defLineIdx, marginIndent int) bool {
	lines := c.ctx.File.Lines
	required := marginIndent + 4

	for i := defLineIdx + 1; i < len(lines); i++ {
		content := c.ctx.File.Content[lines[i].StartOffset:lines[i].NewlineStart]
		if len(bytes.TrimSpace(content)) == 0 {
			continue
		}
		indent := 0
		for indent < len(content) && content[indent] == ' ' {
			indent++
		}
		return indent >= required
	}
	return false
}
