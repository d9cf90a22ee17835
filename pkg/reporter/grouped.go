package reporter

import (
	"bufio"
	"context"
	"fmt"
	"sort"

	"github.com/rumdl-go/rumdl/pkg/lint"
	"github.com/rumdl-go/rumdl/pkg/runner"
)

// GroupedReporter formats results grouped by rule instead of by file, useful
// for spotting which checks are responsible for the bulk of the findings.
type GroupedReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewGroupedReporter creates a new grouped reporter.
func NewGroupedReporter(opts Options) *GroupedReporter {
	return &GroupedReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

type groupedDiag struct {
	path string
	diag lint.Diagnostic
}

// Report implements Reporter.
func (r *GroupedReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil {
		return 0, nil
	}

	byRule := make(map[string][]groupedDiag)
	var total int

	for _, file := range result.Files {
		if file.Result == nil || file.Result.FileResult == nil {
			continue
		}
		for _, diag := range file.Result.Diagnostics {
			byRule[diag.RuleID] = append(byRule[diag.RuleID], groupedDiag{path: file.Path, diag: diag})
			total++
		}
	}

	ruleIDs := make([]string, 0, len(byRule))
	for id := range byRule {
		ruleIDs = append(ruleIDs, id)
	}
	sort.Strings(ruleIDs)

	for _, id := range ruleIDs {
		diags := byRule[id]
		ruleRef := formatRuleRef(id, diags[0].diag.RuleName, r.opts.RuleFormat)
		fmt.Fprintf(r.bw, "%s (%d)\n", ruleRef, len(diags))
		for _, gd := range diags {
			fmt.Fprintf(r.bw, "  %s:%d:%d: %s\n", gd.path, gd.diag.StartLine, gd.diag.StartColumn, gd.diag.Message)
		}
		fmt.Fprintln(r.bw)
	}

	return total, nil
}
