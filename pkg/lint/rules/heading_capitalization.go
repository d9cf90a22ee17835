package rules

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/rumdl-go/rumdl/pkg/config"
	"github.com/rumdl-go/rumdl/pkg/fix"
	"github.com/rumdl-go/rumdl/pkg/lint"
)

// HeadingCapStyle is the capitalization convention a heading must follow.
type HeadingCapStyle string

const (
	// HeadingCapTitleCase capitalizes every major word ("Getting Started Guide").
	HeadingCapTitleCase HeadingCapStyle = "title_case"
	// HeadingCapSentenceCase capitalizes only the first word ("Getting started guide").
	HeadingCapSentenceCase HeadingCapStyle = "sentence_case"
	// HeadingCapAllCaps upper-cases every word ("GETTING STARTED GUIDE").
	HeadingCapAllCaps HeadingCapStyle = "all_caps"
)

// HeadingCapitalizationRule enforces a consistent capitalization convention
// (title case, sentence case, or all caps) across heading text, while
// preserving inline code spans, link destinations, acronyms, and words with
// internal capitals (e.g. "GitHub", "macOS").
type HeadingCapitalizationRule struct {
	lint.BaseRule
}

// NewHeadingCapitalizationRule creates a new heading capitalization rule.
func NewHeadingCapitalizationRule() *HeadingCapitalizationRule {
	return &HeadingCapitalizationRule{
		BaseRule: lint.NewBaseRule(
			"MD063",
			"heading-capitalization",
			"Heading capitalization should follow a consistent style",
			[]string{"headings"},
			true,
		),
	}
}

// DefaultEnabled returns false - capitalization convention is a house-style
// choice, not a universal Markdown correctness rule.
func (r *HeadingCapitalizationRule) DefaultEnabled() bool {
	return false
}

// defaultLowercaseWords are articles, coordinating conjunctions, and short
// prepositions that title case leaves lowercase unless they open or close
// the heading.
var defaultLowercaseWords = map[string]bool{
	"a": true, "an": true, "the": true,
	"and": true, "but": true, "or": true, "nor": true, "for": true, "so": true, "yet": true,
	"as": true, "at": true, "by": true, "in": true, "into": true, "of": true, "off": true,
	"on": true, "onto": true, "per": true, "to": true, "up": true, "via": true, "vs": true,
	"with": true,
}

var (
	headingInlineCodeRegex = regexp.MustCompile("`+[^`]+`+")
	headingLinkRegex       = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)|\[([^\]]*)\]\[[^\]]*\]`)
	headingCustomIDRegex   = regexp.MustCompile(`\s*\{#[^}]+\}\s*$`)
)

// Apply checks every heading's text against the configured capitalization style.
func (r *HeadingCapitalizationRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Root == nil || ctx.File == nil {
		return nil, nil
	}

	style := HeadingCapStyle(ctx.OptionString("style", string(HeadingCapTitleCase)))
	ignoreWords := ctx.OptionStringSlice("ignore_words", nil)
	preserveCased := ctx.OptionBool("preserve_cased_words", true)
	lowercaseWords := defaultLowercaseWords
	if extra := ctx.OptionStringSlice("lowercase_words", nil); len(extra) > 0 {
		lowercaseWords = make(map[string]bool, len(defaultLowercaseWords)+len(extra))
		for k := range defaultLowercaseWords {
			lowercaseWords[k] = true
		}
		for _, w := range extra {
			lowercaseWords[strings.ToLower(w)] = true
		}
	}

	capper := &headingCapper{
		style:         style,
		ignoreWords:   ignoreWords,
		preserveCased: preserveCased,
		lowercase:     lowercaseWords,
	}

	var diags []lint.Diagnostic

	for _, heading := range lint.Headings(ctx.Root) {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}

		pos := heading.SourcePosition()
		if pos.StartLine < 1 || pos.StartLine > len(ctx.File.Lines) {
			continue
		}

		lineContent := lint.LineContent(ctx.File, pos.StartLine)
		prefix, text, suffix, ok := splitHeadingLine(lineContent)
		if !ok || strings.TrimSpace(text) == "" {
			continue
		}

		capitalized := capper.apply(text)
		if capitalized == text {
			continue
		}

		newLine := prefix + capitalized + suffix
		diag := lint.NewDiagnosticAt(r.ID(), ctx.File.Path, pos,
			fmt.Sprintf("Heading capitalization does not match configured style '%s'", style)).
			WithSeverity(config.SeverityWarning).
			WithSuggestion(fmt.Sprintf("Rewrite as: %s", strings.TrimSpace(capitalized))).
			WithEdit(fix.TextEdit{
				StartOffset: ctx.File.Lines[pos.StartLine-1].StartOffset,
				EndOffset:   ctx.File.Lines[pos.StartLine-1].NewlineStart,
				NewText:     newLine,
			}).
			Build()
		diags = append(diags, diag)
	}

	return diags, nil
}

// splitHeadingLine separates an ATX heading line into its leading marker
// (and space), its text content (stripped of a trailing closing-ATX run of
// #s), and its trailing content (the closing marker, if any). Setext
// headings have no marker on their own line, so prefix is "".
func splitHeadingLine(line []byte) (prefix, text, suffix string, ok bool) {
	trimmed := bytes.TrimLeft(line, " \t")
	if len(trimmed) == 0 || trimmed[0] != '#' {
		return "", string(bytes.TrimRight(line, " \t")), "", len(bytes.TrimSpace(line)) > 0
	}

	indent := len(line) - len(trimmed)
	i := 0
	for i < len(trimmed) && trimmed[i] == '#' {
		i++
	}
	rest := trimmed[i:]
	spaceLen := 0
	for spaceLen < len(rest) && (rest[spaceLen] == ' ' || rest[spaceLen] == '\t') {
		spaceLen++
	}

	prefix = string(line[:indent+i+spaceLen])
	body := bytes.TrimRight(rest[spaceLen:], " \t")

	// Closed ATX: strip a trailing run of #s (and the space before it).
	closeSuffix := ""
	trimmedBody := bytes.TrimRight(body, "#")
	if len(trimmedBody) < len(body) {
		trailing := bytes.TrimRight(bytes.TrimRight(body, "#"), " \t")
		closeSuffix = string(body[len(trailing):])
		body = trailing
	}

	return prefix, string(body), closeSuffix, true
}

// headingCapper applies one capitalization style to heading text, leaving
// inline code spans and link destinations untouched and preserving words
// that already carry meaningful casing (acronyms, "GitHub"-style words).
type headingCapper struct {
	style         HeadingCapStyle
	ignoreWords   []string
	preserveCased bool
	lowercase     map[string]bool
}

func (c *headingCapper) apply(text string) string {
	mainText, customID := text, ""
	if loc := headingCustomIDRegex.FindStringIndex(text); loc != nil {
		mainText, customID = text[:loc[0]], text[loc[0]:]
	}

	segments := c.parseSegments(mainText)

	firstTextIdx, lastTextIdx := -1, -1
	for i, seg := range segments {
		if seg.kind == headingSegText {
			if firstTextIdx == -1 {
				firstTextIdx = i
			}
			lastTextIdx = i
		}
	}

	var b strings.Builder
	for i, seg := range segments {
		switch seg.kind {
		case headingSegCode:
			b.WriteString(seg.raw)
		case headingSegLink:
			b.WriteString(c.applyToLink(seg.raw))
		default:
			b.WriteString(c.applyToText(seg.raw, i == firstTextIdx, i == lastTextIdx))
		}
	}
	b.WriteString(customID)
	return b.String()
}

type headingSegmentKind int

const (
	headingSegText headingSegmentKind = iota
	headingSegCode
	headingSegLink
)

type headingSegment struct {
	kind headingSegmentKind
	raw  string
}

// parseSegments splits text into Text/Code/Link runs, giving inline code the
// higher claim on any overlap with a link match (mirrors how a code span can
// contain literal brackets that aren't really a link).
func (c *headingCapper) parseSegments(text string) []headingSegment {
	type region struct {
		start, end int
		kind       headingSegmentKind
	}

	var regions []region
	for _, loc := range headingInlineCodeRegex.FindAllStringIndex(text, -1) {
		regions = append(regions, region{loc[0], loc[1], headingSegCode})
	}
	for _, loc := range headingLinkRegex.FindAllStringIndex(text, -1) {
		regions = append(regions, region{loc[0], loc[1], headingSegLink})
	}

	// Stable sort by start, code wins ties/overlaps since it was appended first.
	for i := 1; i < len(regions); i++ {
		for j := i; j > 0 && regions[j].start < regions[j-1].start; j-- {
			regions[j], regions[j-1] = regions[j-1], regions[j]
		}
	}

	var filtered []region
	for _, reg := range regions {
		overlaps := false
		for _, kept := range filtered {
			if reg.start < kept.end && reg.end > kept.start {
				overlaps = true
				break
			}
		}
		if !overlaps {
			filtered = append(filtered, reg)
		}
	}

	var segments []headingSegment
	last := 0
	for _, reg := range filtered {
		if reg.start > last {
			segments = append(segments, headingSegment{headingSegText, text[last:reg.start]})
		}
		segments = append(segments, headingSegment{reg.kind, text[reg.start:reg.end]})
		last = reg.end
	}
	if last < len(text) {
		segments = append(segments, headingSegment{headingSegText, text[last:]})
	}
	if len(segments) == 0 && text != "" {
		segments = append(segments, headingSegment{headingSegText, text})
	}
	return segments
}

// applyToLink rewrites a link's visible text (not its destination/reference)
// according to the configured style.
func (c *headingCapper) applyToLink(raw string) string {
	m := headingLinkRegex.FindStringSubmatchIndex(raw)
	if m == nil {
		return raw
	}
	// Group 1 is the inline-link text; group 2 is the reference-link text.
	var textStart, textEnd int
	switch {
	case m[2] != -1:
		textStart, textEnd = m[2], m[3]
	case m[4] != -1:
		textStart, textEnd = m[4], m[5]
	default:
		return raw
	}

	linkText := raw[textStart:textEnd]
	var capitalized string
	switch c.style {
	case HeadingCapSentenceCase:
		capitalized = strings.ToLower(linkText)
	case HeadingCapAllCaps:
		capitalized = c.applyAllCaps(linkText)
	default:
		capitalized = c.applyTitleCase(linkText, true, true)
	}

	return raw[:textStart] + capitalized + raw[textEnd:]
}

func (c *headingCapper) applyToText(text string, isFirstSeg, isLastSeg bool) string {
	switch c.style {
	case HeadingCapSentenceCase:
		return c.applySentenceCase(text, isFirstSeg)
	case HeadingCapAllCaps:
		return c.applyAllCaps(text)
	default:
		return c.applyTitleCase(text, isFirstSeg, isLastSeg)
	}
}

// applyTitleCase capitalizes each word, lowercasing minor words (articles,
// short prepositions/conjunctions) except when they open or close the
// heading, and preserving hyphenated compounds part by part.
func (c *headingCapper) applyTitleCase(text string, isFirstSeg, isLastSeg bool) string {
	return c.mapWordsPreservingSpace(text, func(word string, isFirst, isLast bool) string {
		if strings.Contains(word, "-") {
			return c.titleCaseHyphenated(word, isFirst, isLast)
		}
		return c.titleCaseWord(word, isFirst, isLast)
	}, isFirstSeg, isLastSeg)
}

func (c *headingCapper) titleCaseHyphenated(word string, isFirst, isLast bool) string {
	parts := strings.Split(word, "-")
	for i, p := range parts {
		parts[i] = c.titleCaseWord(p, isFirst && i == 0, isLast && i == len(parts)-1)
	}
	return strings.Join(parts, "-")
}

func (c *headingCapper) titleCaseWord(word string, isFirst, isLast bool) string {
	if word == "" {
		return word
	}
	if c.shouldPreserve(word) {
		return word
	}
	if isFirst || isLast {
		return capitalizeFirst(word)
	}
	if c.lowercase[strings.ToLower(word)] {
		return strings.ToLower(word)
	}
	return capitalizeFirst(word)
}

// applySentenceCase capitalizes only the first word of the first segment;
// every other word (in every segment) is lowercased unless preserved.
func (c *headingCapper) applySentenceCase(text string, isFirstSeg bool) string {
	firstWordDone := !isFirstSeg
	return c.mapWordsPreservingSpace(text, func(word string, isFirst, isLast bool) string {
		if !firstWordDone {
			firstWordDone = true
			if c.shouldPreserve(word) {
				return capitalizeFirstRunePreserveRest(word)
			}
			return capitalizeFirst(word)
		}
		if c.shouldPreserve(word) {
			return word
		}
		return strings.ToLower(word)
	}, isFirstSeg, true)
}

func (c *headingCapper) applyAllCaps(text string) string {
	return c.mapWordsPreservingSpace(text, func(word string, isFirst, isLast bool) string {
		if c.shouldPreserve(word) {
			return word
		}
		return strings.ToUpper(word)
	}, true, true)
}

// mapWordsPreservingSpace walks text word by word (split on whitespace),
// applying fn to each while copying the original whitespace runs verbatim.
func (c *headingCapper) mapWordsPreservingSpace(
	text string,
	fn func(word string, isFirst, isLast bool) string,
	isFirstSeg, isLastSeg bool,
) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}

	var b strings.Builder
	pos := 0
	for i, word := range words {
		idx := strings.Index(text[pos:], word)
		if idx < 0 {
			continue
		}
		start := pos + idx
		b.WriteString(text[pos:start])
		isFirst := isFirstSeg && i == 0
		isLast := isLastSeg && i == len(words)-1
		b.WriteString(fn(word, isFirst, isLast))
		pos = start + len(word)
	}
	b.WriteString(text[pos:])
	return b.String()
}

func (c *headingCapper) shouldPreserve(word string) bool {
	for _, w := range c.ignoreWords {
		if w == word {
			return true
		}
	}
	if !c.preserveCased {
		return false
	}
	return hasInternalCapitals(word) || isAllCapsAcronym(word)
}

// hasInternalCapitals reports mixed-case words like "GitHub" or "macOS":
// both an uppercase and a lowercase letter appear after the first rune.
func hasInternalCapitals(word string) bool {
	runes := []rune(word)
	if len(runes) < 2 {
		return false
	}
	hasUpper, hasLower := false, false
	for _, r := range runes[1:] {
		if r >= 'A' && r <= 'Z' {
			hasUpper = true
		}
		if r >= 'a' && r <= 'z' {
			hasLower = true
		}
	}
	return hasUpper && hasLower
}

// isAllCapsAcronym reports words with 2+ consecutive uppercase letters and
// no lowercase letters at all, like "API" or "HTTP2".
func isAllCapsAcronym(word string) bool {
	if len(word) < 2 {
		return false
	}
	run, maxRun := 0, 0
	for _, r := range word {
		switch {
		case r >= 'A' && r <= 'Z':
			run++
			if run > maxRun {
				maxRun = run
			}
		case r >= 'a' && r <= 'z':
			return false
		default:
			run = 0
		}
	}
	return maxRun >= 2
}

func capitalizeFirst(word string) string {
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	return strings.ToUpper(string(runes[0])) + strings.ToLower(string(runes[1:]))
}

func capitalizeFirstRunePreserveRest(word string) string {
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	return strings.ToUpper(string(runes[0])) + string(runes[1:])
}
