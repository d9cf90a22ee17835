package lintctx

import "strings"

// FenceBlock is one top-level fenced code block: opener line, its own
// marker/run length, info string, and the line that closed it (0 if the
// fence runs to end of file unclosed).
type FenceBlock struct {
	OpenLine   int
	CloseLine  int
	Marker     byte
	OpenCount  int
	InfoString string
}

// FindFenceBlocks scans raw source lines for top-level (<=3 columns of
// indent) fenced code blocks, pairing each opener with its closer using the
// same rule the document-model scanner uses: same marker, a run length at
// least as long as the opener's, indented <=3 columns. Shared by MD070
// (nested fence collision), which needs each block's own opener geometry to
// search its body for a premature-closing run.
func FindFenceBlocks(raw []string) []FenceBlock {
	var blocks []FenceBlock
	n := len(raw)

	for i := 0; i < n; i++ {
		marker, count, info, ok := matchFenceOpenInfo(raw[i])
		if !ok {
			continue
		}

		block := FenceBlock{OpenLine: i + 1, Marker: marker, OpenCount: count, InfoString: info}
		for j := i + 1; j < n; j++ {
			if cm, cc, _, cok := matchFenceOpenInfo(raw[j]); cok && cm == marker && cc >= count {
				block.CloseLine = j + 1
				i = j
				break
			}
		}
		blocks = append(blocks, block)
		if block.CloseLine == 0 {
			i = n
		}
	}

	return blocks
}

// matchFenceOpenInfo is matchFenceOpen plus the trimmed info string, needed
// by FindFenceBlocks to classify a block's language for MD070.
func matchFenceOpenInfo(line string) (marker byte, count int, info string, ok bool) {
	_, indentCols := visualIndent(line)
	if indentCols > 3 {
		return 0, 0, "", false
	}
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return 0, 0, "", false
	}
	marker = trimmed[0]
	if marker != '`' && marker != '~' {
		return 0, 0, "", false
	}
	i := 0
	for i < len(trimmed) && trimmed[i] == marker {
		i++
	}
	if i < 3 {
		return 0, 0, "", false
	}
	rest := strings.TrimSpace(trimmed[i:])
	if marker == '`' && strings.ContainsRune(rest, '`') {
		return 0, 0, "", false
	}
	return marker, i, rest, true
}

// FenceCollision is a line inside a fenced code block's body whose own
// run of the opener's fence character is long enough to prematurely
// close the block.
type FenceCollision struct {
	Line          int
	Marker        byte
	Count         int
	OpenerCount   int
}

// FindFenceCollisions scans one fenced code block's body (the content
// lines strictly between the opening and closing fence, 1-indexed,
// inclusive) for lines that would have terminated the block early: same
// indent rule, same fence character, run length >= the opener's.
//
// This is the shared detector MD070 (nested fence collision) is built on;
// a nested fence inside a larger fence is only safe when its own marker
// run is shorter than the enclosing fence's opener.
func FindFenceCollisions(raw []string, bodyStart, bodyEnd int, marker byte, openerCount int) []FenceCollision {
	var hits []FenceCollision
	for i := bodyStart; i <= bodyEnd && i-1 >= 0 && i-1 < len(raw); i++ {
		line := raw[i-1]
		_, indentCols := visualIndent(line)
		if indentCols > 3 {
			continue
		}
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" || trimmed[0] != marker {
			continue
		}
		count := 0
		for count < len(trimmed) && trimmed[count] == marker {
			count++
		}
		if count >= openerCount {
			hits = append(hits, FenceCollision{
				Line:        i,
				Marker:      marker,
				Count:       count,
				OpenerCount: openerCount,
			})
		}
	}
	return hits
}
