package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/rumdl-go/rumdl/pkg/config"
	"github.com/rumdl-go/rumdl/pkg/runner"
)

// PylintReporter formats results in pylint's parseable text format
// (`path:line: [code, symbol] message`), recognized by editors and CI
// tools that already parse pylint output (e.g. GitLab's pylint-to-json
// converters, generic "problem matcher" configs).
type PylintReporter struct {
	bw *bufio.Writer
}

// NewPylintReporter creates a new pylint-format reporter.
func NewPylintReporter(opts Options) *PylintReporter {
	return &PylintReporter{bw: bufio.NewWriterSize(opts.Writer, bufWriterSize)}
}

// Report implements Reporter.
func (r *PylintReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
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
			fmt.Fprintf(r.bw, "%s:%d: [%s, %s] %s\n",
				file.Path, diag.StartLine, pylintCode(diag.Severity), diag.RuleName, diag.Message)
			total++
		}
	}

	return total, nil
}

// pylintCode maps severity onto pylint's single-letter message-type code:
// C(onvention), W(arning), E(rror), R(efactor), F(atal).
func pylintCode(severity config.Severity) string {
	switch severity {
	case config.SeverityError:
		return "E0001"
	case config.SeverityInfo:
		return "C0001"
	case config.SeverityWarning:
		return "W0001"
	default:
		return "W0001"
	}
}
