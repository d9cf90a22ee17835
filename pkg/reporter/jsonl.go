package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/rumdl-go/rumdl/pkg/runner"
)

// JSONLReporter formats results as newline-delimited JSON, one diagnostic
// object per line, for streaming consumption by log pipelines.
type JSONLReporter struct {
	opts Options
	bw   *bufio.Writer
}

// jsonlRecord is a single diagnostic, flattened with its file path.
type jsonlRecord struct {
	Path        string `json:"path"`
	RuleID      string `json:"ruleId"`
	RuleName    string `json:"ruleName"`
	Severity    string `json:"severity"`
	Message     string `json:"message"`
	StartLine   int    `json:"startLine"`
	StartColumn int    `json:"startColumn"`
	EndLine     int    `json:"endLine"`
	EndColumn   int    `json:"endColumn"`
	Fixable     bool   `json:"fixable"`
}

// NewJSONLReporter creates a new JSON Lines reporter.
func NewJSONLReporter(opts Options) *JSONLReporter {
	return &JSONLReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *JSONLReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil {
		return 0, nil
	}

	encoder := json.NewEncoder(r.bw)
	var total int

	for _, file := range result.Files {
		if file.Result == nil || file.Result.FileResult == nil {
			continue
		}
		for _, diag := range file.Result.Diagnostics {
			record := jsonlRecord{
				Path:        file.Path,
				RuleID:      diag.RuleID,
				RuleName:    diag.RuleName,
				Severity:    string(diag.Severity),
				Message:     diag.Message,
				StartLine:   diag.StartLine,
				StartColumn: diag.StartColumn,
				EndLine:     diag.EndLine,
				EndColumn:   diag.EndColumn,
				Fixable:     len(diag.FixEdits) > 0,
			}
			if err := encoder.Encode(record); err != nil {
				return total, fmt.Errorf("encode jsonl record: %w", err)
			}
			total++
		}
	}

	return total, nil
}
