package perf

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rumdl-go/rumdl/pkg/config"
	"github.com/rumdl-go/rumdl/pkg/lint"
	_ "github.com/rumdl-go/rumdl/pkg/lint/rules" // Register built-in rules
	goldmarkparser "github.com/rumdl-go/rumdl/pkg/parser/goldmark"
)

// SizeResult is one row of a scaling report: how long parsing and linting
// took for a corpus of the given size.
type SizeResult struct {
	Sections        int
	Bytes           int
	ParseDuration   time.Duration
	LintDuration    time.Duration
	DiagnosticCount int
}

// ScalingReport summarizes how engine cost grows with document size.
type ScalingReport struct {
	Results []SizeResult
}

// String renders the report as a tab-separated table.
func (r *ScalingReport) String() string {
	out := "sections\tbytes\tparse\tlint\tdiagnostics\n"
	for _, res := range r.Results {
		out += fmt.Sprintf("%d\t%d\t%s\t%s\t%d\n",
			res.Sections, res.Bytes, res.ParseDuration, res.LintDuration, res.DiagnosticCount)
	}
	return out
}

// RunScaling lints synthetically generated documents of increasing size and
// records parse/lint timing for each, backing the performance harness's
// scaling report.
func RunScaling(ctx context.Context, sectionCounts []int) (*ScalingReport, error) {
	parser := goldmarkparser.New("gfm")
	engine := lint.NewEngine(parser, lint.DefaultRegistry)
	cfg := config.NewConfig()

	report := &ScalingReport{}
	for _, n := range sectionCounts {
		content := GenerateDocument(n)

		parseStart := time.Now()
		if _, err := parser.Parse(ctx, "bench.md", content); err != nil {
			return nil, fmt.Errorf("parse corpus of %d sections: %w", n, err)
		}
		parseDuration := time.Since(parseStart)

		lintStart := time.Now()
		result, err := engine.LintFile(ctx, "bench.md", content, cfg)
		lintDuration := time.Since(lintStart)
		if err != nil {
			return nil, fmt.Errorf("lint corpus of %d sections: %w", n, err)
		}

		report.Results = append(report.Results, SizeResult{
			Sections:        n,
			Bytes:           len(content),
			ParseDuration:   parseDuration,
			LintDuration:    lintDuration,
			DiagnosticCount: result.IssueCount(),
		})
	}

	return report, nil
}

// RuleTiming is the cost of running a single rule against one document.
type RuleTiming struct {
	RuleID   string
	RuleName string
	Duration time.Duration
	Findings int
}

// RunPerRule times every registered rule individually against content,
// sorted slowest-first so a regression in one rule is easy to spot.
func RunPerRule(ctx context.Context, content []byte) ([]RuleTiming, error) {
	parser := goldmarkparser.New("gfm")
	snapshot, err := parser.Parse(ctx, "bench.md", content)
	if err != nil {
		return nil, fmt.Errorf("parse corpus: %w", err)
	}

	cfg := config.NewConfig()
	rules := lint.DefaultRegistry.Rules()
	timings := make([]RuleTiming, 0, len(rules))

	for _, rule := range rules {
		ruleCtx := lint.NewRuleContext(ctx, snapshot, cfg, &config.RuleConfig{})
		ruleCtx.Registry = lint.DefaultRegistry

		start := time.Now()
		diags, err := rule.Apply(ruleCtx)
		duration := time.Since(start)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", rule.ID(), err)
		}

		timings = append(timings, RuleTiming{
			RuleID:   rule.ID(),
			RuleName: rule.Name(),
			Duration: duration,
			Findings: len(diags),
		})
	}

	sort.Slice(timings, func(i, j int) bool { return timings[i].Duration > timings[j].Duration })
	return timings, nil
}
