// Package perf provides the synthetic-corpus performance harness: document
// generation, per-rule timing, and a scaling report across document sizes.
package perf

import (
	"bytes"
	"fmt"
)

// GenerateDocument builds a synthetic Markdown document containing
// headings, paragraphs with links and emphasis, a list, a fenced code
// block, and a table per section, repeated until it has the requested
// number of sections. Exercising every rule category keeps the timing
// realistic instead of measuring a single construct in isolation.
func GenerateDocument(sections int) []byte {
	var buf bytes.Buffer
	buf.WriteString("# Synthetic benchmark document\n\n")

	for i := 0; i < sections; i++ {
		fmt.Fprintf(&buf, "## Section %d\n\n", i+1)
		fmt.Fprintf(&buf,
			"This is paragraph %d of a synthetic document generated for the "+
				"performance harness. It contains a [link](https://example.com/%d) "+
				"and **bold** and *emphasized* text to exercise the inline rules.\n\n",
			i+1, i+1)

		fmt.Fprintf(&buf, "- item one for section %d\n", i+1)
		fmt.Fprintf(&buf, "- item two for section %d\n", i+1)
		fmt.Fprintf(&buf, "- item three for section %d\n\n", i+1)

		buf.WriteString("```go\n")
		fmt.Fprintf(&buf, "func section%d() int {\n\treturn %d\n}\n", i+1, i+1)
		buf.WriteString("```\n\n")

		buf.WriteString("| Column A | Column B |\n")
		buf.WriteString("| --- | --- |\n")
		fmt.Fprintf(&buf, "| value %d | value %d |\n\n", i+1, i*2+1)
	}

	return buf.Bytes()
}

// Sizes returns the corpus sizes, in sections, the scaling report covers.
func Sizes() []int {
	return []int{10, 50, 200, 1000}
}
