package lintctx

import "github.com/rumdl-go/rumdl/pkg/mdast"

// Context is the immutable document model built once per file. Every rule
// reads from it; nothing mutates it after Build returns.
type Context struct {
	Source []byte
	Flavor string

	Lines []LineInfo // one per physical line, 0-indexed (line N is Lines[N-1])

	CodeSpans   []CodeSpan
	MathSpans   []MathSpan
	Links       []ParsedLink
	Images      []ParsedImage
	BrokenLinks []BrokenLink
	BareURLs    []BareURL

	ReferenceDefs map[string]ReferenceDef // keyed by case-folded id
	FootnoteRefs  []FootnoteRef
	FootnoteDefs  map[string]FootnoteDef

	Tables      []TableBlock
	FenceBlocks []FenceBlock
	HTMLTags    []HTMLTag
	Emphasis    []EmphasisSpan
	Lists       []ListBlock
	CharFreq    CharFrequency
}

// Build runs the single classification pass described by the document
// model over file's content and returns the resulting Context. file's
// goldmark-backed AST (file.Root) is not required by the scanner — it
// works directly off source bytes, the same way the reference
// implementation's line-oriented model does — but rules may still cross
// reference file.Root for tree-shaped queries.
func Build(file *mdast.FileSnapshot, flavor string) *Context {
	src := file.Content
	ctx := &Context{
		Source:        src,
		Flavor:        flavor,
		ReferenceDefs: make(map[string]ReferenceDef),
		FootnoteDefs:  make(map[string]FootnoteDef),
	}

	raw := rawLines(src)

	ctx.Lines = scanLines(src, flavor)
	scanSpans(ctx)
	scanLinksAndRefs(ctx)
	ctx.Tables = FindTableBlocks(ctx.Lines, raw)
	ctx.FenceBlocks = FindFenceBlocks(raw)
	ctx.Lists = findListBlocks(ctx.Lines)
	ctx.CharFreq = countChars(src)

	return ctx
}

// rawLines splits source into its line contents (no trailing newline),
// matching the indexing BuildLines/LineInfo already use elsewhere.
func rawLines(src []byte) []string {
	infos := mdast.BuildLines(src)
	out := make([]string, len(infos))
	for i, li := range infos {
		out[i] = string(src[li.StartOffset:li.NewlineStart])
	}
	return out
}
