// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	bedrockcfg "github.com/z5labs/bedrock/config"
	"github.com/z5labs/sdk-go/try"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/z5labs/typedapi"
	"github.com/z5labs/typedapi/config"
	"github.com/z5labs/typedapi/internal/httpserver"
	"github.com/z5labs/typedapi/internal/otel"
	"github.com/z5labs/typedapi/shape"
)

// DefaultConfig is applied before the config passed to [Run], so a custom
// config only needs the values it changes.
//
//go:embed default_config.yaml
var DefaultConfig []byte

// Configer is leveraged to constrain the custom config type into
// supporting specific initialization behaviour required by [Run].
type Configer interface {
	InitializeOTel(context.Context) (func(context.Context) error, error)
	Listener(context.Context) (net.Listener, error)
	RestConfig() Config
}

// Config is the default config which can be easily embedded into a
// more custom app specific config with `config:",squash"`.
type Config struct {
	OpenApi struct {
		Title   string `config:"title"`
		Version string `config:"version"`
	} `config:"openapi"`

	HTTP struct {
		Port            uint          `config:"port"`
		ReadTimeout     time.Duration `config:"read_timeout"`
		WriteTimeout    time.Duration `config:"write_timeout"`
		ShutdownTimeout time.Duration `config:"shutdown_timeout"`
	} `config:"http"`

	Parse struct {
		Errors shape.ErrorsMode `config:"errors"`
	} `config:"parse"`

	OTel config.OTel `config:"otel"`
}

// InitializeOTel implements the [Configer] interface.
func (c Config) InitializeOTel(ctx context.Context) (func(context.Context) error, error) {
	return otel.Initialize(ctx, c.OTel)
}

// Listener implements the [Configer] interface.
func (c Config) Listener(ctx context.Context) (net.Listener, error) {
	var lc net.ListenConfig
	return lc.Listen(ctx, "tcp", fmt.Sprintf(":%d", c.HTTP.Port))
}

// RestConfig implements the [Configer] interface.
func (c Config) RestConfig() Config {
	return c
}

// ReadConfig renders [DefaultConfig] and r as YAML templates and
// unmarshals them into T. Values from r override the defaults.
func ReadConfig[T any](ctx context.Context, r io.Reader) (T, error) {
	srcs := []bedrockcfg.Source{config.YAMLSource(bytes.NewReader(DefaultConfig))}

	b, err := io.ReadAll(r)
	if err != nil {
		var zero T
		return zero, err
	}
	if len(bytes.TrimSpace(b)) > 0 {
		srcs = append(srcs, config.YAMLSource(bytes.NewReader(b)))
	}
	return config.Read(ctx, config.FromSources[T](srcs...))
}

// Run begins by reading, parsing and unmarshaling your custom config into
// the type T. Then it calls f for the endpoints of your [Api] and serves
// them over HTTP until SIGINT or SIGTERM is received.
//
// Along the way the OTel SDK is initialized and shut down, panics while
// building are recovered and requests are traced by otelhttp. The context
// passed to f carries a [typedapi.HookRegistry] for cleanup which must run
// once the server has stopped.
func Run[T Configer](r io.Reader, f func(context.Context, T) ([]ApiOption, error), opts ...typedapi.RunnerOption) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	runner := typedapi.NewRunner(
		typedapi.BuilderFunc[io.Reader](func(ctx context.Context, r io.Reader) (typedapi.App, error) {
			cfg, err := ReadConfig[T](ctx, r)
			if err != nil {
				return nil, err
			}
			return build(ctx, cfg, f)
		}),
		opts...,
	)
	return runner.Run(ctx, r)
}

func build[T Configer](ctx context.Context, cfg T, f func(context.Context, T) ([]ApiOption, error)) (_ typedapi.App, err error) {
	hooks := &typedapi.HookRegistry{}
	shutdownOTel := func(context.Context) error { return nil }
	defer func() {
		if err == nil {
			return
		}
		err = errors.Join(err, hooks.Run(context.Background()))
		shutdownOTel(context.Background())
	}()
	defer try.Recover(&err)

	shutdown, err := cfg.InitializeOTel(ctx)
	if err != nil {
		return nil, err
	}
	shutdownOTel = shutdown

	apiOpts, err := f(typedapi.WithHooks(ctx, hooks), cfg)
	if err != nil {
		return nil, err
	}

	rc := cfg.RestConfig()
	api := NewApi(
		rc.OpenApi.Title,
		rc.OpenApi.Version,
		append([]ApiOption{ParseErrors(rc.Parse.Errors)}, apiOpts...)...,
	)

	ls, err := cfg.Listener(ctx)
	if err != nil {
		return nil, err
	}

	srv := httpserver.NewApp(
		ls,
		otelhttp.NewHandler(
			api,
			"rest",
			otelhttp.WithMessageEvents(otelhttp.ReadEvents, otelhttp.WriteEvents),
		),
		httpserver.ErrorLog(typedapi.LogHandler(instrumentationName)),
		httpserver.ReadTimeout(rc.HTTP.ReadTimeout),
		httpserver.WriteTimeout(rc.HTTP.WriteTimeout),
		httpserver.ShutdownTimeout(rc.HTTP.ShutdownTimeout),
	)

	app := typedapi.AppFunc(func(ctx context.Context) error {
		defer shutdownOTel(context.Background())
		return typedapi.WithPostRun(srv, hooks).Run(ctx)
	})
	return app, nil
}
