package lint

import (
	"context"

	"github.com/rumdl-go/rumdl/pkg/config"
	"github.com/rumdl-go/rumdl/pkg/fix"
	"github.com/rumdl-go/rumdl/pkg/lint/refs"
	"github.com/rumdl-go/rumdl/pkg/lintctx"
	"github.com/rumdl-go/rumdl/pkg/mdast"
)

// RuleContext provides all context needed by a rule to perform linting.
//
// Design note: RuleContext stores context.Context as a field (Ctx) rather than
// passing it as a method parameter. This is acceptable because RuleContext is
// a short-lived parameter object created per-rule-invocation, not a long-lived
// struct. This design simplifies the Rule interface (single Apply method) while
// still providing cancellation support via the Cancelled() helper.
type RuleContext struct {
	// Ctx is the context for cancellation and timeouts.
	Ctx context.Context

	// File is the parsed FileSnapshot.
	File *mdast.FileSnapshot

	// Root is the AST root node (convenience alias for File.Root).
	Root *mdast.Node

	// Config is the resolved configuration.
	Config *config.Config

	// RuleConfig is the rule-specific configuration (may be nil).
	RuleConfig *config.RuleConfig

	// Builder accumulates text edits for auto-fix.
	Builder *fix.EditBuilder

	// Registry provides access to the rule registry for name lookups.
	Registry *Registry

	// refCtx is the cached reference context, lazily initialized.
	refCtx *refs.Context

	// lintCtx is the cached document model, lazily initialized.
	lintCtx *lintctx.Context
}

// NewRuleContext creates a RuleContext for the given file and configuration.
func NewRuleContext(
	ctx context.Context,
	file *mdast.FileSnapshot,
	cfg *config.Config,
	ruleCfg *config.RuleConfig,
) *RuleContext {
	var root *mdast.Node
	if file != nil {
		root = file.Root
	}

	return &RuleContext{
		Ctx:        ctx,
		File:       file,
		Root:       root,
		Config:     cfg,
		RuleConfig: ruleCfg,
		Builder:    fix.NewEditBuilder(),
	}
}

// Cancelled returns true if the context has been cancelled.
func (rc *RuleContext) Cancelled() bool {
	select {
	case <-rc.Ctx.Done():
		return true
	default:
		return false
	}
}

// Option returns a rule-specific option value, or the default if not set.
func (rc *RuleContext) Option(key string, defaultValue any) any {
	if rc.RuleConfig == nil || rc.RuleConfig.Options == nil {
		return defaultValue
	}
	if v, ok := rc.RuleConfig.Options[key]; ok {
		return v
	}
	return defaultValue
}

// OptionInt returns a rule-specific integer option, or the default.
func (rc *RuleContext) OptionInt(key string, defaultValue int) int {
	v := rc.Option(key, defaultValue)
	switch val := v.(type) {
	case int:
		return val
	case float64:
		return int(val)
	default:
		return defaultValue
	}
}

// OptionString returns a rule-specific string option, or the default.
func (rc *RuleContext) OptionString(key string, defaultValue string) string {
	v := rc.Option(key, defaultValue)
	if s, ok := v.(string); ok {
		return s
	}
	return defaultValue
}

// OptionBool returns a rule-specific boolean option, or the default.
func (rc *RuleContext) OptionBool(key string, defaultValue bool) bool {
	v := rc.Option(key, defaultValue)
	if b, ok := v.(bool); ok {
		return b
	}
	return defaultValue
}

// OptionStringSlice returns a rule-specific string slice option, or the default.
func (rc *RuleContext) OptionStringSlice(key string, defaultValue []string) []string {
	v := rc.Option(key, defaultValue)
	if slice, ok := v.([]string); ok {
		return slice
	}
	// Handle []interface{} from YAML/JSON parsing
	if iface, ok := v.([]interface{}); ok {
		result := make([]string, 0, len(iface))
		for _, item := range iface {
			if s, ok := item.(string); ok {
				result = append(result, s)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// Headings returns every heading node in document order.
func (rc *RuleContext) Headings() []*mdast.Node {
	return Headings(rc.Root)
}

// Lists returns every list node in document order.
func (rc *RuleContext) Lists() []*mdast.Node {
	return Lists(rc.Root)
}

// CodeBlocks returns every code block node (fenced or indented) in document order.
func (rc *RuleContext) CodeBlocks() []*mdast.Node {
	return CodeBlocks(rc.Root)
}

// Paragraphs returns every paragraph node in document order.
func (rc *RuleContext) Paragraphs() []*mdast.Node {
	return Paragraphs(rc.Root)
}

// HTMLBlocks returns every HTML block node in document order.
func (rc *RuleContext) HTMLBlocks() []*mdast.Node {
	return HTMLBlocks(rc.Root)
}

// HTMLInlines returns every inline HTML node in document order.
func (rc *RuleContext) HTMLInlines() []*mdast.Node {
	return HTMLInlines(rc.Root)
}

// EmphasisNodes returns every emphasis node in document order.
func (rc *RuleContext) EmphasisNodes() []*mdast.Node {
	return EmphasisNodes(rc.Root)
}

// StrongNodes returns every strong-emphasis node in document order.
func (rc *RuleContext) StrongNodes() []*mdast.Node {
	return StrongNodes(rc.Root)
}

// IsLineInCodeBlock returns true if lineNum falls within a fenced or indented
// code block.
func (rc *RuleContext) IsLineInCodeBlock(lineNum int) bool {
	return IsLineInCodeBlock(rc.File, rc.Root, lineNum)
}

// IsLineInTable returns true if lineNum falls within a GFM table block.
func (rc *RuleContext) IsLineInTable(lineNum int) bool {
	return IsLineInTable(rc.File, rc.Root, lineNum)
}

// LintContext returns the per-line classification and span inventories
// for this file, building them lazily on first use. Rules that need
// in_code_block/in_front_matter/table-geometry/reference-span data read
// from here instead of re-deriving it from the AST.
func (rc *RuleContext) LintContext() *lintctx.Context {
	if rc.lintCtx == nil {
		flavor := ""
		if rc.Config != nil {
			flavor = string(rc.Config.Flavor)
		}
		rc.lintCtx = lintctx.Build(rc.File, flavor)
	}
	return rc.lintCtx
}

// RefContext returns the reference context for this file, building it lazily.
// The reference context contains all link/image usages, reference definitions,
// and document anchors needed by reference-tracking rules (MD051-MD054).
func (rc *RuleContext) RefContext() *refs.Context {
	if rc.refCtx == nil {
		rc.refCtx = refs.Collect(rc.Root, rc.File)
	}
	return rc.refCtx
}
