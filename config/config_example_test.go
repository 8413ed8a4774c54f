// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config_test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/z5labs/typedapi/config"
	"github.com/z5labs/typedapi/rest"
)

func Example() {
	os.Setenv("EXAMPLE_SHUTDOWN_TIMEOUT", "15s")
	defer os.Unsetenv("EXAMPLE_SHUTDOWN_TIMEOUT")

	port := config.MustOr(context.Background(), 8080, config.IntFromString(config.Env("EXAMPLE_HTTP_PORT")))
	timeout := config.Must(context.Background(), config.Default(
		10*time.Second,
		config.DurationFromString(config.Env("EXAMPLE_SHUTDOWN_TIMEOUT")),
	))

	fmt.Println(port)
	fmt.Println(timeout)
	// Output:
	// 8080
	// 15s
}

func ExampleYAMLSource() {
	type PetstoreConfig struct {
		Petstore struct {
			APIKey string `config:"api_key"`
			Limit  int    `config:"limit"`
		} `config:"petstore"`
	}

	os.Setenv("EXAMPLE_PETSTORE_API_KEY", "s3cr3t")
	defer os.Unsetenv("EXAMPLE_PETSTORE_API_KEY")

	cfg, _ := config.Read(context.Background(), config.FromSources[PetstoreConfig](
		config.YAMLSource(strings.NewReader(`petstore:
  api_key: {{ env "EXAMPLE_PETSTORE_API_KEY" | default "secret" }}
  limit: {{ env "EXAMPLE_PETSTORE_LIMIT" | default 20 }}
`)),
	))

	fmt.Println(cfg.Petstore.APIKey)
	fmt.Println(cfg.Petstore.Limit)
	// Output:
	// s3cr3t
	// 20
}

func ExampleFromSources() {
	os.Setenv("HTTP_PORT", "9090")
	os.Setenv("PARSE_ERRORS", "all")
	defer os.Unsetenv("HTTP_PORT")
	defer os.Unsetenv("PARSE_ERRORS")

	cfg, _ := rest.ReadConfig[rest.Config](context.Background(), strings.NewReader(`openapi:
  title: Pet Store
  version: v1.0.0
http:
  read_timeout: 5s
`))

	fmt.Println(cfg.OpenApi.Title, cfg.OpenApi.Version)
	fmt.Println(cfg.HTTP.Port, cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout)
	fmt.Println(cfg.Parse.Errors)
	// Output:
	// Pet Store v1.0.0
	// 9090 5s 30s
	// all
}
