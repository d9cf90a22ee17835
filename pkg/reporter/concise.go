package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/rumdl-go/rumdl/pkg/config"
	"github.com/rumdl-go/rumdl/pkg/runner"
)

// ConciseReporter formats results as one line per diagnostic, grep-friendly
// and free of source context, blank lines, or per-file headers.
type ConciseReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewConciseReporter creates a new concise reporter.
func NewConciseReporter(opts Options) *ConciseReporter {
	return &ConciseReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *ConciseReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil {
		return 0, nil
	}

	var total int
	for _, file := range result.Files {
		if file.Error != nil {
			fmt.Fprintf(r.bw, "%s: error: %v\n", file.Path, file.Error)
			continue
		}
		if file.Result == nil || file.Result.FileResult == nil {
			continue
		}
		for _, diag := range file.Result.Diagnostics {
			ruleRef := formatRuleRef(diag.RuleID, diag.RuleName, r.opts.RuleFormat)
			fmt.Fprintf(r.bw, "%s:%d:%d: %s %s\n",
				file.Path, diag.StartLine, diag.StartColumn, ruleRef, diag.Message)
			total++
		}
	}

	return total, nil
}

// formatRuleRef renders a rule identifier per the configured RuleFormat,
// wrapped in brackets for inline display next to a diagnostic message.
func formatRuleRef(id, name string, format config.RuleFormat) string {
	switch format {
	case config.RuleFormatID:
		return "[" + id + "]"
	case config.RuleFormatCombined:
		return "[" + id + "/" + name + "]"
	case config.RuleFormatName:
		return "[" + name + "]"
	default:
		return "[" + name + "]"
	}
}
