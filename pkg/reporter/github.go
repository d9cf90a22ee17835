package reporter

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/rumdl-go/rumdl/pkg/config"
	"github.com/rumdl-go/rumdl/pkg/runner"
)

// GitHubReporter formats results as GitHub Actions workflow commands
// (`::error file=...::message`), which GitHub Actions renders as inline
// annotations on the pull request diff.
// See: https://docs.github.com/en/actions/using-workflows/workflow-commands-for-github-actions
type GitHubReporter struct {
	bw *bufio.Writer
}

// NewGitHubReporter creates a new GitHub Actions annotation reporter.
func NewGitHubReporter(opts Options) *GitHubReporter {
	return &GitHubReporter{bw: bufio.NewWriterSize(opts.Writer, bufWriterSize)}
}

// Report implements Reporter.
func (r *GitHubReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
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
			fmt.Fprintf(r.bw, "::%s file=%s,line=%d,col=%d,title=%s::%s\n",
				githubCommandLevel(diag.Severity), file.Path, diag.StartLine, diag.StartColumn,
				diag.RuleID, githubEscape(diag.Message))
			total++
		}
	}

	return total, nil
}

func githubCommandLevel(severity config.Severity) string {
	switch severity {
	case config.SeverityError:
		return "error"
	case config.SeverityInfo:
		return "notice"
	case config.SeverityWarning:
		return "warning"
	default:
		return "warning"
	}
}

// githubEscape escapes the characters workflow commands treat as special.
func githubEscape(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	s = strings.ReplaceAll(s, "\n", "%0A")
	return s
}
