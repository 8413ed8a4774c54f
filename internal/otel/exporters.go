// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otel

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/trace"
)

// noopSpanExporter drops every span.
type noopSpanExporter struct{}

func (noopSpanExporter) ExportSpans(context.Context, []trace.ReadOnlySpan) error { return nil }

func (noopSpanExporter) Shutdown(context.Context) error { return nil }

// noopMetricExporter drops every metric.
type noopMetricExporter struct{}

func (noopMetricExporter) Temporality(k metric.InstrumentKind) metricdata.Temporality {
	return metric.DefaultTemporalitySelector(k)
}

func (noopMetricExporter) Aggregation(k metric.InstrumentKind) metric.Aggregation {
	return metric.DefaultAggregationSelector(k)
}

func (noopMetricExporter) Export(context.Context, *metricdata.ResourceMetrics) error { return nil }

func (noopMetricExporter) ForceFlush(context.Context) error { return nil }

func (noopMetricExporter) Shutdown(context.Context) error { return nil }

// slogExporter writes log records to a [slog.Handler], which by default
// renders JSON lines on stdout.
type slogExporter struct {
	handler slog.Handler
}

// severity and slog levels are both spaced 4 apart, so only the origin differs.
const severityOffset = log.SeverityDebug - log.Severity(slog.LevelDebug)

func (e *slogExporter) Export(ctx context.Context, records []sdklog.Record) error {
	for _, record := range records {
		sr := slog.NewRecord(
			record.Timestamp(),
			slog.Level(record.Severity()-severityOffset),
			record.Body().AsString(),
			0,
		)

		if scope := record.InstrumentationScope(); scope.Name != "" {
			sr.AddAttrs(slog.String("logger", scope.Name))
		}

		record.WalkAttributes(func(kv log.KeyValue) bool {
			sr.AddAttrs(slog.Attr{Key: kv.Key, Value: slogValue(kv.Value)})
			return true
		})

		if record.TraceID().IsValid() {
			sr.AddAttrs(slog.Group(
				"otel",
				slog.String("trace_id", record.TraceID().String()),
				slog.String("span_id", record.SpanID().String()),
			))
		}

		err := e.handler.Handle(ctx, sr)
		if err != nil {
			return err
		}
	}
	return nil
}

func slogValue(v log.Value) slog.Value {
	switch v.Kind() {
	case log.KindBool:
		return slog.BoolValue(v.AsBool())
	case log.KindBytes:
		return slog.AnyValue(v.AsBytes())
	case log.KindFloat64:
		return slog.Float64Value(v.AsFloat64())
	case log.KindInt64:
		return slog.Int64Value(v.AsInt64())
	case log.KindString:
		return slog.StringValue(v.AsString())
	case log.KindMap:
		kvs := v.AsMap()
		attrs := make([]slog.Attr, 0, len(kvs))
		for _, kv := range kvs {
			attrs = append(attrs, slog.Attr{Key: kv.Key, Value: slogValue(kv.Value)})
		}
		return slog.GroupValue(attrs...)
	case log.KindSlice:
		vs := v.AsSlice()
		vals := make([]any, 0, len(vs))
		for _, el := range vs {
			vals = append(vals, slogValue(el).Any())
		}
		return slog.AnyValue(vals)
	default:
		return slog.StringValue(v.String())
	}
}

func (e *slogExporter) ForceFlush(context.Context) error { return nil }

func (e *slogExporter) Shutdown(context.Context) error { return nil }
