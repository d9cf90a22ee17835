package reporter

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/rumdl-go/rumdl/pkg/config"
	"github.com/rumdl-go/rumdl/pkg/runner"
)

// AzureReporter formats results as Azure Pipelines logging commands
// (`##vso[task.logissue ...]`), surfaced as build warnings/errors in the
// Azure DevOps UI.
// See: https://learn.microsoft.com/en-us/azure/devops/pipelines/scripts/logging-commands
type AzureReporter struct {
	bw *bufio.Writer
}

// NewAzureReporter creates a new Azure Pipelines reporter.
func NewAzureReporter(opts Options) *AzureReporter {
	return &AzureReporter{bw: bufio.NewWriterSize(opts.Writer, bufWriterSize)}
}

// Report implements Reporter.
func (r *AzureReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
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
		if file.Result == nil || file.Result.FileResult == nil {
			continue
		}
		for _, diag := range file.Result.Diagnostics {
			fmt.Fprintf(r.bw, "##vso[task.logissue type=%s;sourcepath=%s;linenumber=%d;columnnumber=%d;code=%s]%s\n",
				azureIssueType(diag.Severity), file.Path, diag.StartLine, diag.StartColumn,
				diag.RuleID, azureEscape(diag.Message))
			total++
		}
	}

	return total, nil
}

func azureIssueType(severity config.Severity) string {
	switch severity {
	case config.SeverityError:
		return "error"
	default:
		return "warning"
	}
}

// azureEscape escapes the characters Azure logging commands treat as special.
func azureEscape(s string) string {
	s = strings.ReplaceAll(s, ";", "%3B")
	s = strings.ReplaceAll(s, "\r", "%0D")
	s = strings.ReplaceAll(s, "\n", "%0A")
	return s
}
