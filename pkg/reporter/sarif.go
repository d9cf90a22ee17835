package reporter

import (
	"context"
	"io"
	"sort"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"

	"github.com/rumdl-go/rumdl/pkg/config"
	"github.com/rumdl-go/rumdl/pkg/runner"
)

// Default SARIF tool information.
const (
	sarifToolName = "rumdl"
	sarifToolURI  = "https://github.com/rumdl-go/rumdl"
)

// SARIF severity levels.
const (
	sarifLevelError   = "error"
	sarifLevelWarning = "warning"
	sarifLevelNote    = "note"
)

// SARIFReporter formats results as SARIF (Static Analysis Results
// Interchange Format), consumed by GitHub Code Scanning, Azure DevOps,
// and other CI platforms.
type SARIFReporter struct {
	out io.Writer
}

// NewSARIFReporter creates a new SARIF reporter.
func NewSARIFReporter(opts Options) *SARIFReporter {
	return &SARIFReporter{out: opts.Writer}
}

// Report implements Reporter.
func (r *SARIFReporter) Report(_ context.Context, result *runner.Result) (int, error) {
	report := sarif.NewReport()
	run := sarif.NewRunWithInformationURI(sarifToolName, sarifToolURI)

	if result == nil {
		report.AddRun(run)
		return 0, report.PrettyWrite(r.out)
	}

	type ruleInfo struct {
		name    string
		message string
	}
	ruleSet := make(map[string]ruleInfo)
	var ruleIDs []string
	count := 0

	for _, file := range result.Files {
		if file.Result == nil || file.Result.FileResult == nil {
			continue
		}
		for _, diag := range file.Result.Diagnostics {
			if _, seen := ruleSet[diag.RuleID]; !seen {
				ruleSet[diag.RuleID] = ruleInfo{name: diag.RuleName, message: diag.Message}
				ruleIDs = append(ruleIDs, diag.RuleID)
			}
		}
	}
	sort.Strings(ruleIDs)

	for _, id := range ruleIDs {
		info := ruleSet[id]
		rule := run.AddRule(id)
		rule.WithShortDescription(sarif.NewMultiformatMessageString().WithText(info.name + ": " + info.message))
	}

	for _, file := range result.Files {
		if file.Result == nil || file.Result.FileResult == nil {
			continue
		}
		for _, diag := range file.Result.Diagnostics {
			sarifResult := sarif.NewRuleResult(diag.RuleID).
				WithMessage(sarif.NewTextMessage(diag.Message)).
				WithLevel(severityToSARIFLevel(diag.Severity))

			region := sarif.NewRegion().WithStartLine(diag.StartLine)
			if diag.StartColumn > 0 {
				region.WithStartColumn(diag.StartColumn)
			}
			if diag.EndLine > 0 {
				region.WithEndLine(diag.EndLine)
			}
			if diag.EndColumn > 0 {
				region.WithEndColumn(diag.EndColumn)
			}

			physicalLocation := sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewSimpleArtifactLocation(diag.FilePath)).
				WithRegion(region)

			sarifResult.WithLocations([]*sarif.Location{
				sarif.NewLocationWithPhysicalLocation(physicalLocation),
			})

			run.AddResult(sarifResult)
			count++
		}
	}

	report.AddRun(run)
	return count, report.PrettyWrite(r.out)
}

// severityToSARIFLevel converts rumdl severity to SARIF level.
func severityToSARIFLevel(severity config.Severity) string {
	switch severity {
	case config.SeverityError:
		return sarifLevelError
	case config.SeverityWarning:
		return sarifLevelWarning
	case config.SeverityInfo:
		return sarifLevelNote
	default:
		return sarifLevelWarning
	}
}
