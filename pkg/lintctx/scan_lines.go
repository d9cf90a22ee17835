package lintctx

import (
	"strconv"
	"strings"

	"github.com/rumdl-go/rumdl/pkg/mdast"
)

// fenceState tracks an open fenced code block: the marker character,
// how many repeats opened it, and the byte column it opened at (so the
// closing fence's own indent can be compared per CommonMark).
type fenceState struct {
	open   bool
	marker byte
	count  int
	indent int
}

// htmlBlockState tracks an open CommonMark HTML block/comment.
type htmlBlockState struct {
	open      bool
	isComment bool
}

// blockquoteDepth is recomputed per line rather than carried as a stack,
// since CommonMark blockquote nesting is determined purely by counting
// leading ">" markers (after up to 3 spaces of indent) on each line.

// scanLines performs the single-pass classification described by the
// document-model spec: front matter, fenced/indented code blocks, HTML
// blocks and comments, blockquote prefixes, flavor-specific containers,
// and per-line heading/list/blockquote payloads.
func scanLines(src []byte, flavor string) []LineInfo {
	raw := rawLines(src)
	n := len(raw)
	lines := make([]LineInfo, n)

	byteInfos := mdast.BuildLines(src)

	var fence fenceState
	var htmlBlock htmlBlockState
	inFrontMatter := false
	frontMatterClosed := false
	inMathBlock := false
	inAdmonition := false
	admonitionIndent := -1
	inContentTab := false
	contentTabIndent := -1
	inPymdownBlock := false
	inQuartoDiv := false
	quartoDivDepth := 0
	inDefinitionList := false

	for i, text := range raw {
		li := LineInfo{}
		if i < len(byteInfos) {
			li.ByteOffset = byteInfos[i].StartOffset
			li.ByteLen = byteInfos[i].NewlineStart - byteInfos[i].StartOffset
		}

		indentBytes, indentCols := visualIndent(text)
		li.Indent = indentBytes
		li.VisualIndent = indentCols
		trimmed := strings.TrimSpace(text)
		li.IsBlank = trimmed == ""

		// (S2) Front matter: the first line of the file being exactly "---"
		// opens a front-matter fence; the next line matching "---" or "..."
		// closes it.
		if i == 0 && !frontMatterClosed && trimmed == "---" {
			inFrontMatter = true
			li.InFrontMatter = true
			lines[i] = li
			continue
		}
		if inFrontMatter {
			li.InFrontMatter = true
			if trimmed == "---" || trimmed == "..." {
				inFrontMatter = false
				frontMatterClosed = true
			}
			lines[i] = li
			continue
		}

		// Fenced code blocks: a line opens a fence if 0-3 spaces of indent
		// are followed by >=3 of the same fence character; the fence closes
		// on a line whose own fence run (same indent rule, same character)
		// is at least as long as the opener's.
		if !fence.open {
			if marker, count, ok := matchFenceOpen(text); ok && indentCols <= 3 {
				fence = fenceState{open: true, marker: marker, count: count, indent: indentCols}
				li.InCodeBlock = true
				lines[i] = li
				continue
			}
		} else {
			li.InCodeBlock = true
			if marker, count, ok := matchFenceOpen(text); ok && marker == fence.marker && count >= fence.count && indentCols <= 3 {
				fence.open = false
			}
			lines[i] = li
			continue
		}

		// Indented code blocks: >=4 columns of indent, not blank, not a
		// continuation of an active list/blockquote paragraph. The scanner
		// here only handles the plain top-level case; rule-level logic
		// re-checks list/blockquote continuations using stripBlockquotePrefix
		// and the surrounding ListItem payload.
		if indentCols >= 4 && !li.IsBlank && !inAdmonition && !inContentTab {
			li.InCodeBlock = true
			lines[i] = li
			continue
		}

		// MkDocs admonitions: "!!! kind" or "??? kind" opens a block whose
		// body is indented at least 4 columns past the admonition marker.
		if inAdmonition {
			if li.IsBlank {
				li.InAdmonition = true
			} else if indentCols > admonitionIndent {
				li.InAdmonition = true
			} else {
				inAdmonition = false
			}
		}
		if !inAdmonition && isAdmonitionMarker(trimmed) {
			inAdmonition = true
			admonitionIndent = indentCols
			li.InAdmonition = true
		}

		// MkDocs content tabs: '=== "Label"' opens a block the same way.
		if inContentTab {
			if li.IsBlank {
				li.InContentTab = true
			} else if indentCols > contentTabIndent {
				li.InContentTab = true
			} else {
				inContentTab = false
			}
		}
		if !inContentTab && isContentTabMarker(trimmed) {
			inContentTab = true
			contentTabIndent = indentCols
			li.InContentTab = true
		}

		// PyMdown Blocks: "/// note" ... "///" delimited regions.
		if flavor == FlavorMkDocs {
			if strings.HasPrefix(trimmed, "///") {
				li.InPymdownBlock = true
				inPymdownBlock = !inPymdownBlock
			} else if inPymdownBlock {
				li.InPymdownBlock = true
			}
		}

		// Quarto/Pandoc divs: ::: opens, ::: (bare) closes; ":::{.class}"
		// or ":::  {.class}" opens a nested one.
		if strings.HasPrefix(trimmed, ":::") {
			li.IsDivMarker = true
			rest := strings.TrimSpace(trimmed[3:])
			if rest == "" && quartoDivDepth > 0 {
				quartoDivDepth--
			} else {
				quartoDivDepth++
			}
			li.InQuartoDiv = quartoDivDepth > 0
		} else if quartoDivDepth > 0 {
			li.InQuartoDiv = true
			inQuartoDiv = true
		} else {
			inQuartoDiv = false
		}
		_ = inQuartoDiv

		// Obsidian comments: %%...%% possibly spanning lines.
		if strings.Contains(trimmed, "%%") {
			li.InObsidianComment = strings.Count(trimmed, "%%")%2 == 1
		}

		// MDX ESM import/export lines.
		if flavor == FlavorMDX && (strings.HasPrefix(trimmed, "import ") || strings.HasPrefix(trimmed, "export ")) {
			li.InESMBlock = true
		}

		// MDX JSX expression braces and comments are detected per-line
		// rather than with a full brace-matching state machine.
		if flavor == FlavorMDX {
			if strings.Contains(trimmed, "{/*") {
				li.InMDXComment = true
			}
			if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
				li.InJSXExpression = true
			}
			if strings.HasPrefix(trimmed, "<") && !strings.HasPrefix(trimmed, "</") {
				tag := firstWord(trimmed[1:])
				if tag != "" && (tag[0] >= 'A' && tag[0] <= 'Z') {
					li.InJSXComponent = true
				}
			}
			if strings.HasPrefix(trimmed, "<>") || strings.HasPrefix(trimmed, "</>") {
				li.InJSXFragment = true
			}
		}

		// Math blocks: $$ ... $$ on their own lines.
		if trimmed == "$$" {
			inMathBlock = !inMathBlock
			li.InMathBlock = true
		} else if inMathBlock {
			li.InMathBlock = true
		}

		// HTML blocks/comments (CommonMark type-2 comment handling plus a
		// permissive type-6/7 fallback for bare block tags).
		if htmlBlock.open {
			li.InHTMLBlock = true
			li.InHTMLComment = htmlBlock.isComment
			if htmlBlock.isComment && strings.Contains(text, "-->") {
				htmlBlock.open = false
			} else if !htmlBlock.isComment && li.IsBlank {
				htmlBlock.open = false
			}
		} else if strings.HasPrefix(trimmed, "<!--") {
			li.InHTMLBlock = true
			li.InHTMLComment = true
			if !strings.Contains(trimmed, "-->") {
				htmlBlock = htmlBlockState{open: true, isComment: true}
			}
		} else if isHTMLBlockStart(trimmed) {
			li.InHTMLBlock = true
			if flavor == FlavorMkDocs && strings.Contains(trimmed, "markdown=") {
				li.InMkdocsHTMLMarkdown = true
			}
			htmlBlock = htmlBlockState{open: true}
		}

		// mkdocstrings autodoc blocks: "::: module.path" with no class list
		// (distinct from Quarto's ":::" handling above, recognized by the
		// leading "::: " + dotted identifier shape under the mkdocs flavor).
		if flavor == FlavorMkDocs && strings.HasPrefix(trimmed, ":::") && looksLikeDottedPath(strings.TrimSpace(trimmed[3:])) {
			li.InMkdocstrings = true
		}

		// Blockquote prefix stack.
		if bq := parseBlockquotePrefix(text); bq != nil {
			li.Blockquote = bq
		}

		// (S1) Horizontal rule vs. setext heading underline: a bare
		// "---"/"===" run immediately under a non-blank single-line
		// paragraph is a setext heading: retroactively mark the previous
		// line. Otherwise it is a thematic break.
		if !li.InCodeBlock && !li.InHTMLBlock && IsHorizontalRuleLine(text) {
			if i > 0 && isSetextCandidate(trimmed) && !lines[i-1].IsBlank && lines[i-1].Heading == nil &&
				!lines[i-1].InCodeBlock && lines[i-1].ListItem == nil {
				style := HeadingSetext1
				if trimmed[0] == '-' {
					style = HeadingSetext2
				}
				prevText := strings.TrimSpace(raw[i-1])
				lines[i-1].Heading = &HeadingInfo{
					Level:   setextLevel(style),
					Style:   style,
					Marker:  trimmed,
					Text:    prevText,
					RawText: prevText,
					IsValid: true,
				}
			} else {
				li.IsHorizontalRule = true
			}
		}

		// ATX heading.
		if !li.InCodeBlock && !li.InHTMLBlock && lines[i].Heading == nil {
			if h := parseATXHeading(text); h != nil {
				li.Heading = h
			}
		}

		// List item marker.
		if !li.InCodeBlock && !li.InHTMLBlock {
			if item := parseListItem(text); item != nil {
				li.ListItem = item
			}
		}

		// Definition list item: ": definition" following a term line.
		if strings.HasPrefix(trimmed, ": ") {
			li.InDefinitionList = true
			inDefinitionList = true
		} else if li.IsBlank {
			inDefinitionList = false
		}
		_ = inDefinitionList

		lines[i] = li
	}

	return lines
}

const (
	FlavorMkDocs = "mkdocs"
	FlavorMDX    = "mdx"
)

func matchFenceOpen(line string) (marker byte, count int, ok bool) {
	_, indentCols := visualIndent(line)
	if indentCols > 3 {
		return 0, 0, false
	}
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return 0, 0, false
	}
	marker = trimmed[0]
	if marker != '`' && marker != '~' {
		return 0, 0, false
	}
	i := 0
	for i < len(trimmed) && trimmed[i] == marker {
		i++
	}
	if i < 3 {
		return 0, 0, false
	}
	// Backtick fences may not contain a backtick later in the info string.
	if marker == '`' && strings.ContainsRune(trimmed[i:], '`') {
		return 0, 0, false
	}
	return marker, i, true
}

func isAdmonitionMarker(trimmed string) bool {
	if len(trimmed) < 3 {
		return false
	}
	prefix := trimmed[:3]
	return (prefix == "!!!" || prefix == "???") && !strings.HasPrefix(trimmed, "????")
}

func isContentTabMarker(trimmed string) bool {
	return strings.HasPrefix(trimmed, "=== ") && strings.Contains(trimmed, "\"")
}

func isHTMLBlockStart(trimmed string) bool {
	if !strings.HasPrefix(trimmed, "<") {
		return false
	}
	tag := firstWord(strings.TrimPrefix(trimmed, "<"))
	tag = strings.TrimSuffix(tag, ">")
	tag = strings.TrimPrefix(tag, "/")
	switch strings.ToLower(tag) {
	case "div", "p", "table", "pre", "script", "style", "section", "article",
		"header", "footer", "nav", "aside", "figure", "details", "summary":
		return true
	}
	return false
}

func looksLikeDottedPath(s string) bool {
	if s == "" {
		return false
	}
	return strings.Contains(s, ".") && !strings.Contains(s, " ") && !strings.HasPrefix(s, "{")
}

func firstWord(s string) string {
	s = strings.TrimSpace(s)
	for i, r := range s {
		if r == ' ' || r == '\t' || r == '>' || r == '/' {
			return s[:i]
		}
	}
	return s
}

func isSetextCandidate(underline string) bool {
	for _, c := range underline {
		if c != '-' && c != '=' {
			return false
		}
	}
	return true
}

func setextLevel(style HeadingStyle) int {
	if style == HeadingSetext1 {
		return 1
	}
	return 2
}

// parseATXHeading recognizes "#{1,6} text #*" and records invalidity
// ((L3)) for hashtag-like lines missing the mandatory space.
func parseATXHeading(line string) *HeadingInfo {
	trimmed := strings.TrimLeft(line, " ")
	indentBytes := len(line) - len(trimmed)
	if indentBytes > 3 || !strings.HasPrefix(trimmed, "#") {
		return nil
	}
	level := 0
	for level < len(trimmed) && trimmed[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return nil
	}
	rest := trimmed[level:]
	valid := rest == "" || strings.HasPrefix(rest, " ") || strings.HasPrefix(rest, "\t")
	text := strings.TrimSpace(rest)

	// Strip a trailing closing sequence of one or more '#' preceded by a
	// space, per CommonMark ATX heading rules.
	closing := ""
	hasClosing := false
	if text != "" {
		trimEnd := strings.TrimRight(text, "#")
		if trimEnd != text && (trimEnd == "" || strings.HasSuffix(trimEnd, " ")) {
			closing = text[len(trimEnd):]
			hasClosing = true
			text = strings.TrimSpace(trimEnd)
		}
	}

	customID := ""
	hasCustomID := false
	rawText := text
	if idx := strings.LastIndex(text, "{#"); idx >= 0 && strings.HasSuffix(text, "}") {
		customID = text[idx+2 : len(text)-1]
		hasCustomID = true
		text = strings.TrimSpace(text[:idx])
	}

	return &HeadingInfo{
		Level:         level,
		Style:         HeadingATX,
		Marker:        trimmed[:level],
		MarkerColumn:  indentBytes,
		ContentColumn: indentBytes + level + 1,
		Text:          text,
		CustomID:      customID,
		HasCustomID:   hasCustomID,
		RawText:       rawText,
		HasClosingSeq: hasClosing,
		ClosingSeq:    closing,
		IsValid:       valid,
	}
}

// parseListItem recognizes unordered ("-", "+", "*") and ordered
// ("1.", "1)") list markers followed by a space or end of line.
func parseListItem(line string) *ListItemInfo {
	trimmed := strings.TrimLeft(line, " ")
	indentBytes := len(line) - len(trimmed)
	if indentBytes > 3 {
		return nil
	}
	if trimmed == "" {
		return nil
	}

	if c := trimmed[0]; c == '-' || c == '+' || c == '*' {
		if len(trimmed) == 1 || trimmed[1] == ' ' || trimmed[1] == '\t' {
			if !IsHorizontalRuleLine(line) {
				content := strings.TrimLeft(trimmed[1:], " \t")
				return &ListItemInfo{
					Marker:        string(c),
					IsOrdered:     false,
					MarkerColumn:  indentBytes,
					ContentColumn: len(line) - len(content),
				}
			}
		}
		return nil
	}

	i := 0
	for i < len(trimmed) && trimmed[i] >= '0' && trimmed[i] <= '9' {
		i++
	}
	if i == 0 || i > 9 || i >= len(trimmed) {
		return nil
	}
	delim := trimmed[i]
	if delim != '.' && delim != ')' {
		return nil
	}
	if i+1 < len(trimmed) && trimmed[i+1] != ' ' && trimmed[i+1] != '\t' {
		return nil
	}
	num, _ := strconv.Atoi(trimmed[:i])
	content := ""
	if i+1 < len(trimmed) {
		content = strings.TrimLeft(trimmed[i+1:], " \t")
	}
	return &ListItemInfo{
		Marker:        trimmed[:i+1],
		IsOrdered:     true,
		Number:        num,
		MarkerColumn:  indentBytes,
		ContentColumn: len(line) - len(content),
	}
}

// parseBlockquotePrefix recognizes one or more "> " markers at the start
// of a line (after 0-3 spaces of indent) and returns the resulting nesting
// info, or nil if the line does not start a blockquote.
func parseBlockquotePrefix(line string) *BlockquoteInfo {
	indentBytes, indentCols := visualIndent(line)
	if indentCols > 3 {
		return nil
	}
	rest := line[indentBytes:]
	if !strings.HasPrefix(rest, ">") {
		return nil
	}

	nesting := 0
	prefix := ""
	i := 0
	noSpace := false
	multiSpace := false
	for i < len(rest) && rest[i] == '>' {
		nesting++
		i++
		prefix += ">"
		spaces := 0
		for i < len(rest) && rest[i] == ' ' {
			spaces++
			i++
		}
		prefix += strings.Repeat(" ", spaces)
		if spaces == 0 && i < len(rest) && rest[i] == '>' {
			noSpace = true
		} else if spaces > 1 {
			multiSpace = true
		}
	}
	content := rest[i:]

	return &BlockquoteInfo{
		NestingLevel:               nesting,
		Indent:                     line[:indentBytes],
		MarkerColumn:               indentBytes,
		Prefix:                     prefix,
		Content:                    content,
		HasNoSpaceAfterMarker:      noSpace,
		HasMultipleSpacesAfterMark: multiSpace,
		NeedsEmptyBlockquoteFix:    strings.TrimSpace(content) == "",
	}
}

// StripBlockquotePrefix returns the substring of line after its outermost
// blockquote marker stack, the same way rules that care about "content
// semantics inside a blockquote" are expected to obtain it.
func StripBlockquotePrefix(line string) string {
	bq := parseBlockquotePrefix(line)
	if bq == nil {
		return line
	}
	return bq.Content
}
