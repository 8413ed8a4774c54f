// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package typedapi provides shared logging and the runner used to start
// applications built with the rest package.
package typedapi

import (
	"context"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
)

// Logger returns a [slog.Logger] whose records are emitted through the
// global OpenTelemetry LoggerProvider.
func Logger(name string) *slog.Logger {
	return otelslog.NewLogger(name)
}

// LogHandler returns the [slog.Handler] backing [Logger].
func LogHandler(name string) slog.Handler {
	return otelslog.NewHandler(name)
}

// App is a long running process.
type App interface {
	Run(context.Context) error
}

// AppFunc is a func type of the [App] interface.
type AppFunc func(context.Context) error

// Run implements the [App] interface.
func (f AppFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Builder builds an [App] from its config.
type Builder[T any] interface {
	Build(context.Context, T) (App, error)
}

// BuilderFunc is a func type of the [Builder] interface.
type BuilderFunc[T any] func(context.Context, T) (App, error)

// Build implements the [Builder] interface.
func (f BuilderFunc[T]) Build(ctx context.Context, cfg T) (App, error) {
	return f(ctx, cfg)
}

// RunnerOptions are configurable parameters of a [Runner].
type RunnerOptions struct {
	errHandler ErrorHandler
}

// RunnerOption sets a value on [RunnerOptions].
type RunnerOption interface {
	ApplyRunnerOption(*RunnerOptions)
}

type runnerOptionFunc func(*RunnerOptions)

func (f runnerOptionFunc) ApplyRunnerOption(ro *RunnerOptions) {
	f(ro)
}

// ErrorHandler allows custom error handling logic to be defined
// for when the [Runner] encounters an error while building or running
// an [App].
type ErrorHandler interface {
	HandleError(error)
}

// ErrorHandlerFunc is a func type of the [ErrorHandler] interface.
type ErrorHandlerFunc func(error)

// HandleError implements the [ErrorHandler] inteface.
func (f ErrorHandlerFunc) HandleError(err error) {
	f(err)
}

// OnError registers the given [ErrorHandler] with the [Runner].
func OnError(eh ErrorHandler) RunnerOption {
	return runnerOptionFunc(func(ro *RunnerOptions) {
		ro.errHandler = eh
	})
}

// Runner orchestrates the building of an [App] and running it.
type Runner[T any] struct {
	builder    Builder[T]
	errHandler ErrorHandler
}

// NewRunner initializes a [Runner]. By default errors are logged as JSON
// to stdout since the OpenTelemetry pipeline may not be available.
func NewRunner[T any](builder Builder[T], opts ...RunnerOption) Runner[T] {
	ro := &RunnerOptions{
		errHandler: ErrorHandlerFunc(func(err error) {
			log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{}))
			log.Error("failed to run", slog.String("error", err.Error()))
		}),
	}
	for _, opt := range opts {
		opt.ApplyRunnerOption(ro)
	}
	return Runner[T]{
		builder:    builder,
		errHandler: ro.errHandler,
	}
}

// Run builds an [App], runs it, and handles any error
// returned from either of those steps.
func (r Runner[T]) Run(ctx context.Context, cfg T) error {
	app, err := r.builder.Build(ctx, cfg)
	if err != nil {
		r.errHandler.HandleError(err)
		return err
	}

	err = app.Run(ctx)
	if err == nil {
		return nil
	}
	r.errHandler.HandleError(err)
	return err
}
