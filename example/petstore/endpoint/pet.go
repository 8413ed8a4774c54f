// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package endpoint declares the endpoints of the pet store.
package endpoint

import (
	"context"
	"crypto/subtle"
	"io"

	"github.com/z5labs/typedapi/example/petstore/store"
	"github.com/z5labs/typedapi/security"
	"github.com/z5labs/typedapi/shape"
)

// Store is everything the endpoints need from the pet store.
type Store interface {
	Add(ctx context.Context, name, tag string) store.Pet
	Get(ctx context.Context, id int64) (store.Pet, bool)
	Delete(ctx context.Context, id int64) bool
	List(ctx context.Context, limit int) []store.Pet
	SetImage(ctx context.Context, id int64, img io.Reader) error
}

var petShape = shape.Annotate(
	shape.StructOf(
		shape.Required("id", shape.Int(shape.Number())),
		shape.Required("name", shape.String()),
		shape.Optional("tag", shape.String()),
	),
	shape.Identifier("Pet"),
)

var petIDPath = shape.StructOf(
	shape.Required("id", shape.Annotate(shape.IntFromString(), shape.Description("The id of the pet"))),
)

type petID struct {
	ID int64 `json:"id"`
}

// APIKey guards the endpoints which change the store. Requests must send
// key in the X-Api-Key header.
func APIKey(key string) security.Scheme[any] {
	return security.Erase(security.MapEffect(
		security.APIKey("X-Api-Key", security.InHeader, security.Name("apiKey")),
		func(ctx context.Context, got string) (string, error) {
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				return "", &security.Error{Message: "Invalid API key"}
			}
			return got, nil
		},
	))
}
