package lintctx

import (
	"strings"
)

// scanLinksAndRefs extracts link/image occurrences (inline, reference,
// shortcut, collapsed, and autolink forms), bare URLs, link reference
// definitions, and footnote references/definitions. Reference definitions
// are collected first on each line since a reference-style link earlier
// in the same pass may resolve to a definition appearing later in the
// document.
func scanLinksAndRefs(ctx *Context) {
	raw := rawLines(ctx.Source)

	// First sub-pass: reference definitions and footnote definitions, both
	// of which only ever start a line.
	for i, text := range raw {
		li := ctx.Lines[i]
		if li.InCodeBlock || li.InFrontMatter || li.InHTMLBlock {
			continue
		}
		trimmed := strings.TrimLeft(text, " ")
		if len(text)-len(trimmed) > 3 {
			continue
		}

		if def, ok := parseFootnoteDef(trimmed, li.ByteOffset+(len(text)-len(trimmed))); ok {
			def.Line = i + 1
			ctx.FootnoteDefs[def.ID] = def
			continue
		}

		if def, ok := parseReferenceDef(trimmed, li.ByteOffset+(len(text)-len(trimmed))); ok {
			def.Line = i + 1
			ctx.ReferenceDefs[strings.ToLower(def.ID)] = def
		}
	}

	// Second sub-pass: inline occurrences of links, images, bare URLs, and
	// footnote references.
	for i, text := range raw {
		li := ctx.Lines[i]
		if li.InCodeBlock || li.InFrontMatter {
			continue
		}

		col := 0
		for col < len(text) {
			switch {
			case text[col] == '!' && col+1 < len(text) && text[col+1] == '[':
				if img, end, ok := parseBracketed(text, col+1, true); ok {
					img.Line = i + 1
					img.ByteOffset = li.ByteOffset + col
					img.ByteEnd = li.ByteOffset + end
					parsedImg := ParsedImage{
						Line:        img.Line,
						StartCol:    col,
						EndCol:      end,
						ByteOffset:  img.ByteOffset,
						ByteEnd:     img.ByteEnd,
						AltText:     img.text,
						URL:         img.url,
						IsReference: img.isReference,
						ReferenceID: img.referenceID,
						Type:        img.linkType,
					}
					ctx.Images = append(ctx.Images, parsedImg)
					if img.isReference {
						checkBrokenReference(ctx, img.referenceID, img.ByteOffset, img.ByteEnd)
					}
					col = end
					continue
				}
				col++
			case text[col] == '[':
				if strings.HasPrefix(text[col:], "[^") {
					if ref, end, ok := parseFootnoteRef(text, col); ok {
						ctx.FootnoteRefs = append(ctx.FootnoteRefs, FootnoteRef{
							ID:         ref,
							Line:       i + 1,
							ByteOffset: li.ByteOffset + col,
							ByteEnd:    li.ByteOffset + end,
						})
						col = end
						continue
					}
				}
				if link, end, ok := parseBracketed(text, col, false); ok {
					link.Line = i + 1
					link.ByteOffset = li.ByteOffset + col
					link.ByteEnd = li.ByteOffset + end
					parsedLink := ParsedLink{
						Line:        link.Line,
						StartCol:    col,
						EndCol:      end,
						ByteOffset:  link.ByteOffset,
						ByteEnd:     link.ByteEnd,
						Text:        link.text,
						URL:         link.url,
						IsReference: link.isReference,
						ReferenceID: link.referenceID,
						Type:        link.linkType,
					}
					ctx.Links = append(ctx.Links, parsedLink)
					if link.isReference {
						checkBrokenReference(ctx, link.referenceID, link.ByteOffset, link.ByteEnd)
					}
					col = end
					continue
				}
				col++
			case text[col] == '<':
				if url, end, ok := parseAutolink(text, col); ok {
					ctx.Links = append(ctx.Links, ParsedLink{
						Line:       i + 1,
						StartCol:   col,
						EndCol:     end,
						ByteOffset: li.ByteOffset + col,
						ByteEnd:    li.ByteOffset + end,
						Text:       url,
						URL:        url,
						Type:       LinkAutolink,
					})
					col = end
					continue
				}
				col++
			case looksLikeBareURLStart(text, col):
				url, end := scanBareURL(text, col)
				ctx.BareURLs = append(ctx.BareURLs, BareURL{
					Line:       i + 1,
					StartCol:   col,
					EndCol:     end,
					ByteOffset: li.ByteOffset + col,
					ByteEnd:    li.ByteOffset + end,
					URL:        url,
					URLType:    bareURLType(url),
				})
				col = end
			default:
				col++
			}
		}
	}
}

func checkBrokenReference(ctx *Context, id string, start, end int) {
	if id == "" {
		return
	}
	if _, ok := ctx.ReferenceDefs[strings.ToLower(id)]; !ok {
		ctx.BrokenLinks = append(ctx.BrokenLinks, BrokenLink{
			Reference:  id,
			ByteOffset: start,
			ByteEnd:    end,
		})
	}
}

type bracketResult struct {
	text        string
	url         string
	isReference bool
	referenceID string
	linkType    LinkType
	Line        int
	ByteOffset  int
	ByteEnd     int
}

// parseBracketed parses "[text](url)" / "[text][ref]" / "[text][]" /
// "[ref]" starting at col (which points at the opening '[' — for images,
// the caller has already stepped past the leading '!').
func parseBracketed(s string, col int, isImage bool) (bracketResult, int, bool) {
	if col >= len(s) || s[col] != '[' {
		return bracketResult{}, 0, false
	}
	closeBracket := matchBracket(s, col)
	if closeBracket < 0 {
		return bracketResult{}, 0, false
	}
	text := s[col+1 : closeBracket]
	rest := closeBracket + 1

	if rest < len(s) && s[rest] == '(' {
		closeParen := strings.IndexByte(s[rest:], ')')
		if closeParen < 0 {
			return bracketResult{}, 0, false
		}
		closeParen += rest
		url := strings.TrimSpace(s[rest+1 : closeParen])
		if idx := strings.IndexByte(url, ' '); idx >= 0 {
			url = url[:idx]
		}
		return bracketResult{text: text, url: url, linkType: LinkInline}, closeParen + 1, true
	}

	if rest < len(s) && s[rest] == '[' {
		closeRef := matchBracket(s, rest)
		if closeRef < 0 {
			return bracketResult{}, 0, false
		}
		refID := s[rest+1 : closeRef]
		if refID == "" {
			return bracketResult{text: text, referenceID: text, isReference: true, linkType: LinkCollapsed}, closeRef + 1, true
		}
		return bracketResult{text: text, referenceID: refID, isReference: true, linkType: LinkReference}, closeRef + 1, true
	}

	if !isImage {
		// Shortcut reference: "[text]" with no trailing "(" or "[]".
		return bracketResult{text: text, referenceID: text, isReference: true, linkType: LinkShortcut}, closeBracket + 1, true
	}
	return bracketResult{}, 0, false
}

func matchBracket(s string, openIdx int) int {
	depth := 0
	for i := openIdx; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		case '\\':
			i++
		}
	}
	return -1
}

func parseAutolink(s string, col int) (string, int, bool) {
	end := strings.IndexByte(s[col:], '>')
	if end < 0 {
		return "", 0, false
	}
	end += col
	body := s[col+1 : end]
	if strings.ContainsAny(body, " \t") || body == "" {
		return "", 0, false
	}
	if !strings.Contains(body, "://") && !strings.Contains(body, "@") {
		return "", 0, false
	}
	return body, end + 1, true
}

func looksLikeBareURLStart(s string, col int) bool {
	return strings.HasPrefix(s[col:], "http://") ||
		strings.HasPrefix(s[col:], "https://") ||
		strings.HasPrefix(s[col:], "ftp://")
}

func scanBareURL(s string, col int) (string, int) {
	end := col
	for end < len(s) {
		c := s[end]
		if c == ' ' || c == '\t' || c == '<' || c == '>' || c == ')' || c == ']' {
			break
		}
		end++
	}
	// Trailing punctuation commonly isn't part of the URL.
	for end > col && strings.ContainsRune(".,;:!?", rune(s[end-1])) {
		end--
	}
	return s[col:end], end
}

func bareURLType(url string) string {
	switch {
	case strings.HasPrefix(url, "https://"):
		return "https"
	case strings.HasPrefix(url, "http://"):
		return "http"
	case strings.HasPrefix(url, "ftp://"):
		return "ftp"
	default:
		return "other"
	}
}

// parseReferenceDef recognizes "[id]: url \"title\"" at the start of a
// (already left-trimmed) line.
func parseReferenceDef(trimmed string, byteOffset int) (ReferenceDef, bool) {
	if !strings.HasPrefix(trimmed, "[") {
		return ReferenceDef{}, false
	}
	closeBracket := matchBracket(trimmed, 0)
	if closeBracket < 0 || closeBracket+1 >= len(trimmed) || trimmed[closeBracket+1] != ':' {
		return ReferenceDef{}, false
	}
	id := trimmed[1:closeBracket]
	rest := strings.TrimSpace(trimmed[closeBracket+2:])
	if rest == "" {
		return ReferenceDef{}, false
	}

	urlEnd := strings.IndexAny(rest, " \t")
	url := rest
	titleStart := -1
	titleEnd := -1
	hasTitle := false
	title := ""
	if urlEnd >= 0 {
		url = rest[:urlEnd]
		remainder := strings.TrimSpace(rest[urlEnd:])
		if len(remainder) >= 2 {
			open, close := remainder[0], byte(0)
			switch open {
			case '"':
				close = '"'
			case '\'':
				close = '\''
			case '(':
				close = ')'
			}
			if close != 0 && strings.HasSuffix(remainder, string(close)) {
				title = remainder[1 : len(remainder)-1]
				hasTitle = true
				titleStart = byteOffset + len(trimmed) - len(rest) + urlEnd + strings.Index(rest[urlEnd:], remainder)
				titleEnd = titleStart + len(remainder)
			}
		}
	}
	url = strings.Trim(url, "<>")

	return ReferenceDef{
		ID:             id,
		URL:            url,
		Title:          title,
		HasTitle:       hasTitle,
		ByteOffset:     byteOffset,
		ByteEnd:        byteOffset + len(trimmed),
		TitleByteStart: titleStart,
		TitleByteEnd:   titleEnd,
		HasTitleBytes:  hasTitle,
	}, true
}

func parseFootnoteDef(trimmed string, byteOffset int) (FootnoteDef, bool) {
	if !strings.HasPrefix(trimmed, "[^") {
		return FootnoteDef{}, false
	}
	closeBracket := strings.IndexByte(trimmed, ']')
	if closeBracket < 0 || closeBracket+1 >= len(trimmed) || trimmed[closeBracket+1] != ':' {
		return FootnoteDef{}, false
	}
	id := trimmed[2:closeBracket]
	body := strings.TrimSpace(trimmed[closeBracket+2:])
	return FootnoteDef{
		ID:         id,
		ByteOffset: byteOffset,
		ByteEnd:    byteOffset + len(trimmed),
		IsEmpty:    body == "",
	}, true
}

func parseFootnoteRef(s string, col int) (string, int, bool) {
	if !strings.HasPrefix(s[col:], "[^") {
		return "", 0, false
	}
	end := strings.IndexByte(s[col:], ']')
	if end < 0 {
		return "", 0, false
	}
	end += col
	id := s[col+2 : end]
	if id == "" {
		return "", 0, false
	}
	return id, end + 1, true
}
