// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package otel installs the global OpenTelemetry providers used by
// typedapi services.
package otel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/z5labs/typedapi/concurrent"
	"github.com/z5labs/typedapi/config"
	"github.com/z5labs/typedapi/internal/detector"

	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ShutdownFunc flushes and stops everything started by [Initialize].
type ShutdownFunc func(context.Context) error

// Initialize installs global tracer, meter and logger providers built from
// cfg. The returned func must be called before the process exits so that
// buffered telemetry is flushed.
func Initialize(ctx context.Context, cfg config.OTel) (ShutdownFunc, error) {
	r, err := detectResource(ctx, cfg.Resource)
	if err != nil {
		return nil, err
	}

	s := &sdk{
		resource: r,
		conns:    concurrent.NewCache[string, *grpc.ClientConn](),
	}

	initers := []func(context.Context) error{
		func(ctx context.Context) error { return s.initTracing(ctx, cfg.Trace) },
		func(ctx context.Context) error { return s.initMetrics(ctx, cfg.Metric) },
		func(ctx context.Context) error { return s.initLogging(ctx, cfg.Log) },
	}
	for _, f := range initers {
		err := f(ctx)
		if err != nil {
			return nil, errors.Join(err, s.shutdown(ctx))
		}
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return s.shutdown, nil
}

type sdk struct {
	resource  *resource.Resource
	conns     *concurrent.Cache[string, *grpc.ClientConn]
	targets   []string
	shutdowns []ShutdownFunc
}

// shutdown stops the providers in reverse order of creation and then
// closes any shared gRPC connections.
func (s *sdk) shutdown(ctx context.Context) error {
	var errs []error
	for i := len(s.shutdowns) - 1; i >= 0; i-- {
		errs = append(errs, s.shutdowns[i](ctx))
	}
	s.shutdowns = nil

	for _, target := range s.targets {
		cc, ok := s.conns.Get(target)
		if !ok {
			continue
		}
		errs = append(errs, cc.Close())
	}
	s.targets = nil

	return errors.Join(errs...)
}

func (s *sdk) clientConn(cfg config.OTLP) (*grpc.ClientConn, error) {
	return s.conns.GetOr(cfg.Target, func() (*grpc.ClientConn, error) {
		cc, err := grpc.NewClient(
			cfg.Target,
			// TODO: support secure transport credentials
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		)
		if err != nil {
			return nil, err
		}
		s.targets = append(s.targets, cfg.Target)
		return cc, nil
	})
}

func detectResource(ctx context.Context, cfg config.Resource) (*resource.Resource, error) {
	return resource.Detect(
		ctx,
		detector.TelemetrySDK(),
		detector.Host(),
		detector.Process(),
		detector.ServiceName(cfg.ServiceName),
		detector.ServiceVersion(cfg.ServiceVersion),
	)
}

// UnknownOTLPConnTypeError is returned when an exporter names an OTLP
// transport other than grpc or http.
type UnknownOTLPConnTypeError struct {
	Type config.OTLPConnType
}

func (e UnknownOTLPConnTypeError) Error() string {
	return fmt.Sprintf("unknown otlp conn type: %q", e.Type)
}

type UnknownSpanProcessorTypeError struct {
	Type config.SpanProcessorType
}

func (e UnknownSpanProcessorTypeError) Error() string {
	return fmt.Sprintf("unknown span processor type: %q", e.Type)
}

type UnknownMetricReaderTypeError struct {
	Type config.MetricReaderType
}

func (e UnknownMetricReaderTypeError) Error() string {
	return fmt.Sprintf("unknown metric reader type: %q", e.Type)
}

type UnknownLogProcessorTypeError struct {
	Type config.LogProcessorType
}

func (e UnknownLogProcessorTypeError) Error() string {
	return fmt.Sprintf("unknown log processor type: %q", e.Type)
}

func (s *sdk) initTracing(ctx context.Context, cfg config.Trace) error {
	exp, err := s.spanExporter(ctx, cfg.Exporter)
	if err != nil {
		return err
	}

	var sp trace.SpanProcessor
	switch cfg.Processor.Type {
	case config.BatchSpanProcessorType:
		sp = trace.NewBatchSpanProcessor(
			exp,
			trace.WithBatchTimeout(cfg.Processor.Batch.ExportInterval),
			trace.WithMaxExportBatchSize(cfg.Processor.Batch.MaxSize),
		)
	default:
		return UnknownSpanProcessorTypeError{Type: cfg.Processor.Type}
	}

	tp := trace.NewTracerProvider(
		trace.WithSpanProcessor(sp),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(cfg.Sampling.Ratio))),
		trace.WithResource(s.resource),
	)
	otel.SetTracerProvider(tp)
	s.shutdowns = append(s.shutdowns, tp.Shutdown)
	return nil
}

func (s *sdk) spanExporter(ctx context.Context, cfg config.SpanExporter) (trace.SpanExporter, error) {
	if cfg.Type != config.OTLPSpanExporterType {
		return noopSpanExporter{}, nil
	}

	switch cfg.OTLP.Type {
	case config.OTLPGRPC:
		cc, err := s.clientConn(cfg.OTLP)
		if err != nil {
			return nil, err
		}
		return otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(cc))
	case config.OTLPHTTP:
		return otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(cfg.OTLP.Target))
	default:
		return nil, UnknownOTLPConnTypeError{Type: cfg.OTLP.Type}
	}
}

func (s *sdk) initMetrics(ctx context.Context, cfg config.Metric) error {
	exp, err := s.metricExporter(ctx, cfg.Exporter)
	if err != nil {
		return err
	}

	var r metric.Reader
	switch cfg.Reader.Type {
	case config.PeriodicReaderType:
		r = metric.NewPeriodicReader(
			exp,
			metric.WithInterval(cfg.Reader.Periodic.ExportInterval),
			metric.WithProducer(runtime.NewProducer()),
		)
	default:
		return UnknownMetricReaderTypeError{Type: cfg.Reader.Type}
	}

	mp := metric.NewMeterProvider(
		metric.WithReader(r),
		metric.WithResource(s.resource),
	)
	otel.SetMeterProvider(mp)
	s.shutdowns = append(s.shutdowns, mp.Shutdown)

	return runtime.Start(
		runtime.WithMeterProvider(mp),
		runtime.WithMinimumReadMemStatsInterval(time.Second),
	)
}

func (s *sdk) metricExporter(ctx context.Context, cfg config.MetricExporter) (metric.Exporter, error) {
	if cfg.Type != config.OTLPMetricExporterType {
		return noopMetricExporter{}, nil
	}

	switch cfg.OTLP.Type {
	case config.OTLPGRPC:
		cc, err := s.clientConn(cfg.OTLP)
		if err != nil {
			return nil, err
		}
		return otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithGRPCConn(cc))
	case config.OTLPHTTP:
		return otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpoint(cfg.OTLP.Target))
	default:
		return nil, UnknownOTLPConnTypeError{Type: cfg.OTLP.Type}
	}
}

func (s *sdk) initLogging(ctx context.Context, cfg config.Log) error {
	exp, err := s.logExporter(ctx, cfg.Exporter)
	if err != nil {
		return err
	}

	var lp log.Processor
	switch cfg.Processor.Type {
	case config.SimpleLogProcessorType:
		lp = log.NewSimpleProcessor(exp)
	case config.BatchLogProcessorType:
		lp = log.NewBatchProcessor(
			exp,
			log.WithExportInterval(cfg.Processor.Batch.ExportInterval),
			log.WithExportMaxBatchSize(cfg.Processor.Batch.MaxSize),
		)
	default:
		return UnknownLogProcessorTypeError{Type: cfg.Processor.Type}
	}

	provider := log.NewLoggerProvider(
		log.WithProcessor(newFilteringProcessor(lp, cfg.Levels)),
		log.WithResource(s.resource),
	)
	global.SetLoggerProvider(provider)
	s.shutdowns = append(s.shutdowns, provider.Shutdown)
	return nil
}

func (s *sdk) logExporter(ctx context.Context, cfg config.LogExporter) (log.Exporter, error) {
	if cfg.Type != config.OTLPLogExporterType {
		return &slogExporter{
			handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		}, nil
	}

	switch cfg.OTLP.Type {
	case config.OTLPGRPC:
		cc, err := s.clientConn(cfg.OTLP)
		if err != nil {
			return nil, err
		}
		return otlploggrpc.New(ctx, otlploggrpc.WithGRPCConn(cc))
	case config.OTLPHTTP:
		return otlploghttp.New(ctx, otlploghttp.WithEndpoint(cfg.OTLP.Target))
	default:
		return nil, UnknownOTLPConnTypeError{Type: cfg.OTLP.Type}
	}
}
