// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otel

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

type levelRule struct {
	prefix   string
	severity log.Severity
}

// filteringProcessor drops records below the minimum severity configured
// for their logger name before handing them to inner.
//
// Logger names are matched by longest prefix, so configuring
// "github.com/z5labs/typedapi" also covers "github.com/z5labs/typedapi/rest".
// Loggers without a matching rule are not filtered.
type filteringProcessor struct {
	inner sdklog.Processor
	rules []levelRule
}

func newFilteringProcessor(inner sdklog.Processor, levels map[string]string) *filteringProcessor {
	rules := make([]levelRule, 0, len(levels))
	for name, level := range levels {
		rules = append(rules, levelRule{prefix: name, severity: parseLogLevel(level)})
	}
	slices.SortFunc(rules, func(a, b levelRule) int {
		return cmp.Compare(len(b.prefix), len(a.prefix))
	})

	return &filteringProcessor{
		inner: inner,
		rules: rules,
	}
}

// parseLogLevel maps a level name to its severity. Unknown names allow
// everything.
func parseLogLevel(level string) log.Severity {
	switch strings.ToLower(level) {
	case "info":
		return log.SeverityInfo
	case "warn", "warning":
		return log.SeverityWarn
	case "error":
		return log.SeverityError
	default:
		return log.SeverityDebug
	}
}

func (p *filteringProcessor) OnEmit(ctx context.Context, record *sdklog.Record) error {
	if !p.allowed(record) {
		return nil
	}
	return p.inner.OnEmit(ctx, record)
}

func (p *filteringProcessor) allowed(record *sdklog.Record) bool {
	threshold, ok := p.minimum(record.InstrumentationScope().Name)
	if !ok {
		return true
	}
	return record.Severity() >= threshold
}

func (p *filteringProcessor) minimum(name string) (log.Severity, bool) {
	for _, rule := range p.rules {
		if strings.HasPrefix(name, rule.prefix) {
			return rule.severity, true
		}
	}
	return 0, false
}

func (p *filteringProcessor) Shutdown(ctx context.Context) error {
	return p.inner.Shutdown(ctx)
}

func (p *filteringProcessor) ForceFlush(ctx context.Context) error {
	return p.inner.ForceFlush(ctx)
}
