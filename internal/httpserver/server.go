// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package httpserver runs an [http.Handler] until its context is done.
package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// AppOptions are the configurable parameters of an [App].
type AppOptions struct {
	errorLogHandler slog.Handler
	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration
}

// AppOption sets a value on [AppOptions].
type AppOption interface {
	ApplyAppOption(*AppOptions)
}

type appOptionFunc func(*AppOptions)

func (f appOptionFunc) ApplyAppOption(ao *AppOptions) {
	f(ao)
}

// ErrorLog receives the errors logged by the underlying [http.Server].
func ErrorLog(h slog.Handler) AppOption {
	return appOptionFunc(func(ao *AppOptions) {
		ao.errorLogHandler = h
	})
}

// ReadTimeout bounds reading an entire request, including its body.
func ReadTimeout(d time.Duration) AppOption {
	return appOptionFunc(func(ao *AppOptions) {
		ao.readTimeout = d
	})
}

// WriteTimeout bounds writing a response.
func WriteTimeout(d time.Duration) AppOption {
	return appOptionFunc(func(ao *AppOptions) {
		ao.writeTimeout = d
	})
}

// ShutdownTimeout bounds how long in-flight requests may take to finish
// once the context is done. Zero waits forever.
func ShutdownTimeout(d time.Duration) AppOption {
	return appOptionFunc(func(ao *AppOptions) {
		ao.shutdownTimeout = d
	})
}

// App serves HTTP on a listener.
type App struct {
	ls              net.Listener
	server          *http.Server
	shutdownTimeout time.Duration
}

// NewApp initializes a [App].
func NewApp(ls net.Listener, h http.Handler, opts ...AppOption) *App {
	ao := &AppOptions{
		errorLogHandler: slog.DiscardHandler,
	}
	for _, opt := range opts {
		opt.ApplyAppOption(ao)
	}

	return &App{
		ls: ls,
		server: &http.Server{
			Handler:      h,
			ReadTimeout:  ao.readTimeout,
			WriteTimeout: ao.writeTimeout,
			ErrorLog:     slog.NewLogLogger(ao.errorLogHandler, slog.LevelError),
		},
		shutdownTimeout: ao.shutdownTimeout,
	}
}

// Run serves until ctx is done and then gracefully shuts the server down.
func (a *App) Run(ctx context.Context) error {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return a.server.Serve(a.ls)
	})
	eg.Go(func() error {
		<-egCtx.Done()

		shutdownCtx := context.Background()
		if a.shutdownTimeout > 0 {
			var cancel context.CancelFunc
			shutdownCtx, cancel = context.WithTimeout(shutdownCtx, a.shutdownTimeout)
			defer cancel()
		}
		return a.server.Shutdown(shutdownCtx)
	})

	err := eg.Wait()
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
