// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"

	kinopenapi "github.com/getkin/kin-openapi/openapi3"
	"github.com/spf13/cobra"

	"github.com/z5labs/typedapi/example/petstore/app"
	"github.com/z5labs/typedapi/example/petstore/store"
	"github.com/z5labs/typedapi/rest"
)

//go:embed config.yaml
var configBytes []byte

func main() {
	err := newRootCommand().ExecuteContext(context.Background())
	if err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "petstore",
		Short:        "An example pet store API",
		SilenceUsage: true,
	}
	cmd.AddCommand(newServeCommand(), newOpenApiCommand())
	return cmd
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the pet store API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return rest.Run(bytes.NewReader(configBytes), app.Init)
		},
	}
}

func newOpenApiCommand() *cobra.Command {
	var validate bool

	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Print the OpenAPI document of the pet store API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printOpenApi(cmd.Context(), cmd.OutOrStdout(), validate)
		},
	}
	cmd.Flags().BoolVar(&validate, "validate", false, "validate the document before printing it")
	return cmd
}

func printOpenApi(ctx context.Context, w io.Writer, validate bool) error {
	cfg, err := rest.ReadConfig[app.Config](ctx, bytes.NewReader(configBytes))
	if err != nil {
		return err
	}

	api := rest.NewApi(
		cfg.OpenApi.Title,
		cfg.OpenApi.Version,
		app.Endpoints(store.NewInMemory(), cfg.Petstore.APIKey, nil)...,
	)

	b, err := json.MarshalIndent(api.OpenApi(), "", "  ")
	if err != nil {
		return err
	}

	if validate {
		doc, err := kinopenapi.NewLoader().LoadFromData(b)
		if err != nil {
			return fmt.Errorf("failed to load openapi document: %w", err)
		}
		err = doc.Validate(ctx)
		if err != nil {
			return fmt.Errorf("invalid openapi document: %w", err)
		}
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}
