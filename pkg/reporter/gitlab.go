package reporter

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rumdl-go/rumdl/pkg/config"
	"github.com/rumdl-go/rumdl/pkg/runner"
)

// gitlabIssue is a single entry in a GitLab Code Quality report.
// See: https://docs.gitlab.com/ee/ci/testing/code_quality.html#implement-a-custom-tool
type gitlabIssue struct {
	Description string              `json:"description"`
	CheckName   string              `json:"check_name"`
	Fingerprint string              `json:"fingerprint"`
	Severity    string              `json:"severity"`
	Location    gitlabIssueLocation `json:"location"`
}

type gitlabIssueLocation struct {
	Path  string         `json:"path"`
	Lines gitlabLineSpan `json:"lines"`
}

type gitlabLineSpan struct {
	Begin int `json:"begin"`
}

// GitLabReporter formats results as a GitLab Code Quality JSON report,
// consumed by GitLab's merge request widget.
type GitLabReporter struct {
	out io.Writer
}

// NewGitLabReporter creates a new GitLab Code Quality reporter.
func NewGitLabReporter(opts Options) *GitLabReporter {
	return &GitLabReporter{out: opts.Writer}
}

// Report implements Reporter.
func (r *GitLabReporter) Report(_ context.Context, result *runner.Result) (int, error) {
	issues := make([]gitlabIssue, 0)

	if result != nil {
		for _, file := range result.Files {
			if file.Result == nil || file.Result.FileResult == nil {
				continue
			}
			for _, diag := range file.Result.Diagnostics {
				issues = append(issues, gitlabIssue{
					Description: diag.Message,
					CheckName:   diag.RuleID,
					Fingerprint: gitlabFingerprint(file.Path, diag.RuleID, diag.StartLine, diag.Message),
					Severity:    gitlabSeverity(diag.Severity),
					Location: gitlabIssueLocation{
						Path:  file.Path,
						Lines: gitlabLineSpan{Begin: diag.StartLine},
					},
				})
			}
		}
	}

	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(issues); err != nil {
		return 0, fmt.Errorf("encode gitlab code quality report: %w", err)
	}

	return len(issues), nil
}

// gitlabFingerprint derives a stable identity for an issue so GitLab can
// track it as fixed/unfixed across commits without relying on ordering.
func gitlabFingerprint(path, ruleID string, line int, message string) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s:%s:%d:%s", path, ruleID, line, message))
	return hex.EncodeToString(sum[:])
}

func gitlabSeverity(severity config.Severity) string {
	switch severity {
	case config.SeverityError:
		return "major"
	case config.SeverityWarning:
		return "minor"
	case config.SeverityInfo:
		return "info"
	default:
		return "minor"
	}
}
