package lintctx

import "strings"

// FindTableBlocks is the shared table-geometry scanner: a header line with
// at least one unescaped pipe and one non-empty cell, followed by a
// delimiter row whose cells all match ":?-{1,}:?", followed by content
// rows until a blank line or a line without a pipe. At least six rules
// need this exact geometry, so it is computed once and shared rather than
// re-derived by each one.
func FindTableBlocks(lines []LineInfo, raw []string) []TableBlock {
	var blocks []TableBlock
	n := len(raw)

	for i := 0; i < n; i++ {
		if lines[i].InCodeBlock || lines[i].InFrontMatter || lines[i].IsBlank {
			continue
		}
		header := raw[i]
		if !hasUnescapedPipe(header) {
			continue
		}
		headerCells := splitTableCells(header)
		if !anyNonEmpty(headerCells) {
			continue
		}

		delimIdx := i + 1
		if delimIdx >= n {
			continue
		}
		delimLine := raw[delimIdx]
		delimCells := splitTableCells(delimLine)
		if len(delimCells) == 0 || !isDelimiterRow(delimCells) {
			continue
		}

		aligns := make([]string, len(delimCells))
		for j, cell := range delimCells {
			aligns[j] = cellAlignment(cell)
		}

		end := delimIdx
		var contentLines []int
		for j := delimIdx + 1; j < n; j++ {
			if lines[j].IsBlank || lines[j].InCodeBlock || !hasUnescapedPipe(raw[j]) {
				break
			}
			contentLines = append(contentLines, j+1)
			end = j
		}

		blocks = append(blocks, TableBlock{
			StartLine:        i + 1,
			EndLine:          end + 1,
			HeaderLine:       i + 1,
			DelimiterLine:    delimIdx + 1,
			ContentLines:     contentLines,
			ColumnAlignments: aligns,
			ColumnCount:      len(headerCells),
		})
		i = end
	}

	return blocks
}

func hasUnescapedPipe(line string) bool {
	for i := 0; i < len(line); i++ {
		if line[i] == '\\' {
			i++
			continue
		}
		if line[i] == '|' {
			return true
		}
	}
	return false
}

func anyNonEmpty(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return true
		}
	}
	return false
}

// splitTableCells splits a row on unescaped pipes, trims surrounding
// whitespace, and drops a single leading/trailing empty cell produced by
// a leading/trailing "|" (GFM table rows need not have outer pipes, but
// usually do).
func splitTableCells(line string) []string {
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

func isDelimiterRow(cells []string) bool {
	if len(cells) == 0 {
		return false
	}
	for _, cell := range cells {
		if !isDelimiterCell(cell) {
			return false
		}
	}
	return true
}

func isDelimiterCell(cell string) bool {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return false
	}
	i := 0
	if i < len(cell) && cell[i] == ':' {
		i++
	}
	dashes := 0
	for i < len(cell) && cell[i] == '-' {
		dashes++
		i++
	}
	if dashes == 0 {
		return false
	}
	if i < len(cell) && cell[i] == ':' {
		i++
	}
	return i == len(cell)
}

func cellAlignment(cell string) string {
	cell = strings.TrimSpace(cell)
	left := strings.HasPrefix(cell, ":")
	right := strings.HasSuffix(cell, ":")
	switch {
	case left && right:
		return "center"
	case right:
		return "right"
	case left:
		return "left"
	default:
		return "none"
	}
}

func findListBlocks(lines []LineInfo) []ListBlock {
	var blocks []ListBlock
	n := len(lines)
	for i := 0; i < n; i++ {
		if lines[i].ListItem == nil {
			continue
		}
		start := i
		item := lines[i].ListItem
		end := i
		var itemLines []int
		maxWidth := len(item.Marker) + 1
		for j := i; j < n; j++ {
			if lines[j].ListItem != nil {
				itemLines = append(itemLines, j+1)
				if w := len(lines[j].ListItem.Marker) + 1; w > maxWidth {
					maxWidth = w
				}
				end = j
			} else if lines[j].IsBlank {
				continue
			} else if lines[j].VisualIndent >= item.ContentColumn {
				end = j
				continue
			} else {
				break
			}
		}
		blocks = append(blocks, ListBlock{
			StartLine:      start + 1,
			EndLine:        end + 1,
			IsOrdered:      item.IsOrdered,
			Marker:         item.Marker,
			ItemLines:      itemLines,
			MaxMarkerWidth: maxWidth,
		})
		i = end
	}
	return blocks
}

func countChars(src []byte) CharFrequency {
	var f CharFrequency
	for _, b := range src {
		switch b {
		case '#':
			f.Hash++
		case '*':
			f.Asterisk++
		case '_':
			f.Underscore++
		case '-':
			f.Hyphen++
		case '+':
			f.Plus++
		case '>':
			f.GT++
		case '|':
			f.Pipe++
		case '[':
			f.Bracket++
		case '`':
			f.Backtick++
		case '<':
			f.LT++
		case '!':
			f.Exclamation++
		case '\n':
			f.Newline++
		}
	}
	return f
}
