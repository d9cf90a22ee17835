package lintctx

import "strings"

// scanSpans is the second sweep described by the document-model spec: it
// walks the raw lines again, this time aware of in_code_block/in_html_*/
// front-matter, and extracts code spans, math spans, HTML tags, and
// emphasis spans. Links, images, and reference definitions are handled
// separately in scanLinksAndRefs because their resolution needs the full
// reference-definition table built first.
func scanSpans(ctx *Context) {
	raw := rawLines(ctx.Source)

	var openBackticks int
	var openStart int
	var openLine int
	var openCol int

	for i, text := range raw {
		li := ctx.Lines[i]
		if li.InCodeBlock || li.InFrontMatter {
			continue
		}

		col := 0
		for col < len(text) {
			c := text[col]

			if openBackticks > 0 {
				run := backtickRun(text, col)
				if c == '`' && run == openBackticks {
					ctx.CodeSpans = append(ctx.CodeSpans, CodeSpan{
						Line:          openLine,
						EndLine:       i + 1,
						StartCol:      openCol,
						EndCol:        col + run,
						ByteOffset:    openStart,
						ByteEnd:       li.ByteOffset + col + run,
						BacktickCount: openBackticks,
						Content:       spanContent(raw, openLine, openCol+openBackticks, i+1, col),
					})
					openBackticks = 0
					col += run
					continue
				}
				col++
				continue
			}

			switch c {
			case '`':
				run := backtickRun(text, col)
				openBackticks = run
				openStart = li.ByteOffset + col
				openLine = i + 1
				openCol = col
				col += run
			case '$':
				display := col+1 < len(text) && text[col+1] == '$'
				delimLen := 1
				if display {
					delimLen = 2
				}
				if end := findMathClose(text, col+delimLen, display); end >= 0 {
					ctx.MathSpans = append(ctx.MathSpans, MathSpan{
						Line:       i + 1,
						EndLine:    i + 1,
						StartCol:   col,
						EndCol:     end + delimLen,
						ByteOffset: li.ByteOffset + col,
						ByteEnd:    li.ByteOffset + end + delimLen,
						IsDisplay:  display,
						Content:    text[col+delimLen : end],
					})
					col = end + delimLen
				} else {
					col++
				}
			case '<':
				if tag, end, ok := parseHTMLTag(text, col); ok {
					ctx.HTMLTags = append(ctx.HTMLTags, HTMLTag{
						Line:        i + 1,
						StartCol:    col,
						EndCol:      end,
						ByteOffset:  li.ByteOffset + col,
						ByteEnd:     li.ByteOffset + end,
						TagName:     tag.name,
						IsClosing:   tag.closing,
						IsSelfClosing: tag.selfClosing,
						RawContent:  text[col:end],
					})
					col = end
				} else {
					col++
				}
			case '*', '_':
				run := markerRun(text, col, c)
				if end := findEmphasisClose(text, col+run, c, run); end >= 0 {
					ctx.Emphasis = append(ctx.Emphasis, EmphasisSpan{
						Line:        i + 1,
						StartCol:    col,
						EndCol:      end + run,
						ByteOffset:  li.ByteOffset + col,
						ByteEnd:     li.ByteOffset + end + run,
						Marker:      c,
						MarkerCount: run,
						Content:     text[col+run : end],
					})
					col = end + run
				} else {
					col++
				}
			default:
				col++
			}
		}
	}

	if openBackticks > 0 {
		// Unterminated code span: recorded with a zero-width end so rules
		// can still flag the dangling backtick run without panicking on a
		// malformed byte range.
		ctx.CodeSpans = append(ctx.CodeSpans, CodeSpan{
			Line:          openLine,
			EndLine:       openLine,
			StartCol:      openCol,
			EndCol:        openCol,
			ByteOffset:    openStart,
			ByteEnd:       openStart,
			BacktickCount: openBackticks,
		})
	}
}

func backtickRun(s string, start int) int {
	n := 0
	for start+n < len(s) && s[start+n] == '`' {
		n++
	}
	return n
}

func markerRun(s string, start int, c byte) int {
	n := 0
	for start+n < len(s) && s[start+n] == c {
		n++
	}
	if n > 3 {
		n = 3
	}
	return n
}

func findMathClose(s string, from int, display bool) int {
	want := "$"
	if display {
		want = "$$"
	}
	idx := strings.Index(s[from:], want)
	if idx < 0 {
		return -1
	}
	return from + idx
}

func findEmphasisClose(s string, from int, marker byte, run int) int {
	need := strings.Repeat(string(marker), run)
	idx := strings.Index(s[from:], need)
	if idx < 0 {
		return -1
	}
	return from + idx
}

// spanContent reconstructs the text between two positions that may span
// multiple physical lines, joining with "\n" the way the source does.
func spanContent(raw []string, startLine, startCol, endLine, endCol int) string {
	if startLine == endLine {
		if startLine-1 < 0 || startLine-1 >= len(raw) {
			return ""
		}
		line := raw[startLine-1]
		if startCol > len(line) || endCol > len(line) || startCol > endCol {
			return ""
		}
		return line[startCol:endCol]
	}
	var b strings.Builder
	for l := startLine; l <= endLine; l++ {
		if l-1 < 0 || l-1 >= len(raw) {
			continue
		}
		line := raw[l-1]
		switch l {
		case startLine:
			if startCol <= len(line) {
				b.WriteString(line[startCol:])
			}
		case endLine:
			if endCol <= len(line) {
				b.WriteString(line[:endCol])
			}
		default:
			b.WriteString(line)
		}
		if l != endLine {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

type htmlTagShape struct {
	name        string
	closing     bool
	selfClosing bool
}

// parseHTMLTag recognizes a single "<tag ...>" / "</tag>" / "<tag/>" run
// starting at col, returning its end column (exclusive) on success.
func parseHTMLTag(s string, col int) (htmlTagShape, int, bool) {
	if col >= len(s) || s[col] != '<' {
		return htmlTagShape{}, 0, false
	}
	end := strings.IndexByte(s[col:], '>')
	if end < 0 {
		return htmlTagShape{}, 0, false
	}
	end += col + 1
	body := s[col+1 : end-1]
	closing := strings.HasPrefix(body, "/")
	body = strings.TrimPrefix(body, "/")
	selfClosing := strings.HasSuffix(body, "/")
	body = strings.TrimSuffix(body, "/")
	name := firstWord(body)
	if name == "" || !isTagNameChar(name[0]) {
		return htmlTagShape{}, 0, false
	}
	return htmlTagShape{name: name, closing: closing, selfClosing: selfClosing}, end, true
}

func isTagNameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
