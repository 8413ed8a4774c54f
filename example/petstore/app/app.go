// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package app

import (
	"context"

	"github.com/z5labs/typedapi"
	"github.com/z5labs/typedapi/example/petstore/endpoint"
	"github.com/z5labs/typedapi/example/petstore/store"
	"github.com/z5labs/typedapi/health"
	"github.com/z5labs/typedapi/rest"
)

type Config struct {
	rest.Config `config:",squash"`

	Petstore struct {
		APIKey string `config:"api_key"`
	} `config:"petstore"`
}

// Init returns the endpoints of the pet store backed by an in-memory store.
func Init(ctx context.Context, cfg Config) ([]rest.ApiOption, error) {
	ready := &health.Binary{}
	ready.MarkHealthy()

	if hooks, ok := typedapi.Hooks(ctx); ok {
		hooks.OnPostRun(func(context.Context) error {
			ready.MarkUnhealthy()
			return nil
		})
	}

	return Endpoints(store.NewInMemory(), cfg.Petstore.APIKey, ready), nil
}

// Endpoints registers every pet store endpoint against s. The store is
// reported ready while ready is healthy.
func Endpoints(s endpoint.Store, apiKey string, ready health.Monitor) []rest.ApiOption {
	auth := endpoint.APIKey(apiKey)

	opts := []rest.ApiOption{
		endpoint.AddPet(s, auth),
		endpoint.FindPet(s),
		endpoint.ListPets(s),
		endpoint.DeletePet(s, auth),
		endpoint.UploadImage(s, auth),
	}
	if ready != nil {
		opts = append(opts, rest.Readiness(health.Named("store", ready)))
	}
	return opts
}
