// Package width provides the Unicode-aware display-width function shared by
// the line-length rule and the table formatter: CJK wide characters count as
// two columns, combining marks count as zero, and a handful of joiner/
// separator code points make a span unsafe to pad with spaces for visual
// alignment.
package width

import (
	"strings"

	"github.com/clipperhouse/displaywidth"
)

// String returns the terminal display width of s, honoring East-Asian-Width
// and combining-mark rules rather than counting bytes or runes.
func String(s string) int {
	return displaywidth.String(s)
}

// Bytes returns the terminal display width of b.
func Bytes(b []byte) int {
	return displaywidth.Bytes(b)
}

// Unsafe-to-align code points: callers that pad a span with spaces to force
// visual column alignment must not do so across these, since their own
// rendered width is terminal/font dependent.
const (
	zeroWidthJoiner    = '‍'
	zeroWidthSpace     = '​'
	zeroWidthNonJoiner = '‌'
	wordJoiner         = '⁠'
)

// UnsafeToAlign reports whether s contains a zero-width joiner, zero-width
// space, zero-width non-joiner, or word-joiner code point. Such spans must be
// preserved verbatim rather than padded for alignment, since their rendered
// width can't be reasoned about consistently.
func UnsafeToAlign(s string) bool {
	return strings.ContainsAny(s, string([]rune{
		zeroWidthJoiner, zeroWidthSpace, zeroWidthNonJoiner, wordJoiner,
	}))
}
