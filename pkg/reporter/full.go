package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/rumdl-go/rumdl/internal/ui/pretty"
	"github.com/rumdl-go/rumdl/pkg/runner"
)

// FullReporter formats results as the most verbose text rendering: source
// context, fix suggestion, and fixability for every diagnostic, regardless
// of the --context/--summary flags a caller would otherwise need to combine
// to get the same detail out of TextReporter.
type FullReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewFullReporter creates a new full-detail reporter.
func NewFullReporter(opts Options) *FullReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &FullReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *FullReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil || len(result.Files) == 0 {
		fmt.Fprintln(r.bw, r.styles.Success.Render("No files to check."))
		return 0, nil
	}

	var total int
	for _, file := range result.Files {
		if file.Error != nil {
			fmt.Fprintf(r.bw, "%s: %s\n",
				r.styles.FilePath.Render(file.Path),
				r.styles.Error.Render(fmt.Sprintf("error: %v", file.Error)),
			)
			continue
		}

		if file.Result == nil || file.Result.FileResult == nil {
			continue
		}

		diagnostics := file.Result.Diagnostics
		if len(diagnostics) == 0 {
			continue
		}

		fmt.Fprintln(r.bw, r.styles.FormatFileHeader(file.Path, len(diagnostics)))

		for _, diag := range diagnostics {
			var sourceLine string
			if file.Result.Snapshot != nil {
				sourceLine = getSourceLine(file.Result.Snapshot, diag.StartLine)
			}

			fmt.Fprint(r.bw, r.styles.FormatDiagnosticWithFormat(&diag, true, sourceLine, r.opts.RuleFormat))

			if diag.Suggestion != "" {
				fmt.Fprintf(r.bw, "  suggestion: %s\n", diag.Suggestion)
			}
			if len(diag.FixEdits) > 0 {
				fmt.Fprintln(r.bw, "  fixable: yes")
			}

			total++
		}

		fmt.Fprintln(r.bw)
	}

	fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(result.Stats))

	return total, nil
}
