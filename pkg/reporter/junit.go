package reporter

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/rumdl-go/rumdl/pkg/runner"
)

// junitTestSuites is the root element of a JUnit XML report.
type junitTestSuites struct {
	XMLName xml.Name         `xml:"testsuites"`
	Suites  []junitTestSuite `xml:"testsuite"`
}

type junitTestSuite struct {
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	TestCases []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Failure   *junitFailure `xml:"failure,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Text    string `xml:",chardata"`
}

// JUnitReporter formats results as JUnit XML, one test suite per file and
// one test case per diagnostic, for CI systems that render JUnit reports.
type JUnitReporter struct {
	out io.Writer
}

// NewJUnitReporter creates a new JUnit reporter.
func NewJUnitReporter(opts Options) *JUnitReporter {
	return &JUnitReporter{out: opts.Writer}
}

// Report implements Reporter.
func (r *JUnitReporter) Report(_ context.Context, result *runner.Result) (int, error) {
	doc := junitTestSuites{}
	var total int

	if result != nil {
		for _, file := range result.Files {
			if file.Result == nil || file.Result.FileResult == nil {
				continue
			}

			suite := junitTestSuite{Name: file.Path}

			if len(file.Result.Diagnostics) == 0 {
				suite.Tests = 1
				suite.TestCases = []junitTestCase{{Name: "lint", ClassName: file.Path}}
			} else {
				suite.Tests = len(file.Result.Diagnostics)
				suite.Failures = len(file.Result.Diagnostics)
				for _, diag := range file.Result.Diagnostics {
					suite.TestCases = append(suite.TestCases, junitTestCase{
						Name:      fmt.Sprintf("%s:%d", diag.RuleID, diag.StartLine),
						ClassName: file.Path,
						Failure: &junitFailure{
							Message: diag.Message,
							Type:    diag.RuleID,
							Text:    fmt.Sprintf("%s:%d:%d: %s", file.Path, diag.StartLine, diag.StartColumn, diag.Message),
						},
					})
					total++
				}
			}

			doc.Suites = append(doc.Suites, suite)
		}
	}

	if _, err := io.WriteString(r.out, xml.Header); err != nil {
		return total, fmt.Errorf("write xml header: %w", err)
	}

	encoder := xml.NewEncoder(r.out)
	encoder.Indent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return total, fmt.Errorf("encode junit xml: %w", err)
	}
	if _, err := io.WriteString(r.out, "\n"); err != nil {
		return total, fmt.Errorf("write trailing newline: %w", err)
	}

	return total, nil
}
