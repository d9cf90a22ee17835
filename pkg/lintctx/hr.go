package lintctx

import "strings"

// IsHorizontalRuleLine reports whether line (including its leading
// whitespace) is a CommonMark thematic break: 0-3 leading spaces (never a
// tab), then 3 or more of the same marker character from "-*_", with
// nothing but whitespace between occurrences.
func IsHorizontalRuleLine(line string) bool {
	leading := len(line) - len(strings.TrimLeft(line, " "))
	if leading > 3 || strings.HasPrefix(line, "\t") {
		return false
	}
	return IsHorizontalRuleContent(strings.TrimSpace(line))
}

// IsHorizontalRuleContent checks the thematic-break pattern against
// already-trimmed content; callers that need the leading-indent rule too
// should use IsHorizontalRuleLine instead.
func IsHorizontalRuleContent(trimmed string) bool {
	if len(trimmed) < 3 {
		return false
	}

	first := trimmed[0]
	if first != '-' && first != '*' && first != '_' {
		return false
	}

	count := 1
	for i := 1; i < len(trimmed); i++ {
		c := trimmed[i]
		switch {
		case c == first:
			count++
		case c == ' ' || c == '\t':
			// allowed separator, does not count toward the marker total
		default:
			return false
		}
	}
	return count >= 3
}

// visualIndent computes the CommonMark column width of leading whitespace,
// expanding tabs to the next multiple of 4.
func visualIndent(line string) (bytes int, cols int) {
	col := 0
	i := 0
	for i < len(line) {
		switch line[i] {
		case ' ':
			col++
		case '\t':
			col += 4 - (col % 4)
		default:
			return i, col
		}
		i++
	}
	return i, col
}
