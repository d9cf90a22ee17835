package lintctx

// LineCount returns the number of physical lines classified.
func (c *Context) LineCount() int {
	return len(c.Lines)
}

// Line returns the LineInfo for a 1-based line number, or the zero value
// if out of range.
func (c *Context) Line(n int) LineInfo {
	if n < 1 || n > len(c.Lines) {
		return LineInfo{}
	}
	return c.Lines[n-1]
}

// InCodeBlock reports whether line n (1-based) is inside a fenced or
// indented code block.
func (c *Context) InCodeBlock(n int) bool {
	return c.Line(n).InCodeBlock
}

// ShouldSkipLine reports whether line n sits in a context rules normally
// should not fire prose-oriented checks against: code, front matter, or
// raw HTML. Individual rules that care about HTML comments/math can
// still opt back in by reading the specific flag they need.
func (c *Context) ShouldSkipLine(n int) bool {
	li := c.Line(n)
	return li.InCodeBlock || li.InFrontMatter || li.InHTMLBlock || li.InMathBlock
}

// ValidHeading pairs a HeadingInfo with its owning line number and full
// LineInfo, mirroring the reference model's filtered heading iteration.
type ValidHeading struct {
	LineNum int
	Heading *HeadingInfo
	Line    LineInfo
}

// ValidHeadings returns every CommonMark-compliant heading in the
// document (ATX headings missing the mandatory space after '#' are
// excluded — those are MD018's concern, not a general heading rule's).
func (c *Context) ValidHeadings() []ValidHeading {
	var out []ValidHeading
	for i, li := range c.Lines {
		if li.Heading != nil && li.Heading.IsValid {
			out = append(out, ValidHeading{LineNum: i + 1, Heading: li.Heading, Line: li})
		}
	}
	return out
}

// TableAt returns the TableBlock starting at the given 1-based header
// line, or false if none does.
func (c *Context) TableAt(headerLine int) (TableBlock, bool) {
	for _, t := range c.Tables {
		if t.HeaderLine == headerLine {
			return t, true
		}
	}
	return TableBlock{}, false
}

// TableContaining returns the TableBlock that owns the given 1-based
// line number, if any.
func (c *Context) TableContaining(line int) (TableBlock, bool) {
	for _, t := range c.Tables {
		if line >= t.StartLine && line <= t.EndLine {
			return t, true
		}
	}
	return TableBlock{}, false
}

// ResolvedReferenceDef looks up a reference id case-insensitively,
// mirroring CommonMark's case-folded reference matching.
func (c *Context) ResolvedReferenceDef(id string) (ReferenceDef, bool) {
	def, ok := c.ReferenceDefs[normalizeRefID(id)]
	return def, ok
}

func normalizeRefID(id string) string {
	out := make([]byte, len(id))
	for i := 0; i < len(id); i++ {
		b := id[i]
		if b >= 'A' && b <= 'Z' {
			b += 'a' - 'A'
		}
		out[i] = b
	}
	return string(out)
}
