// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package endpoint

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/z5labs/typedapi/rest"
	"github.com/z5labs/typedapi/security"
)

type findPetHandler struct {
	tracer trace.Tracer
	store  Store
}

// FindPet registers GET /pets/:id.
func FindPet(store Store) rest.ApiOption {
	h := &findPetHandler{
		tracer: otel.Tracer("endpoint"),
		store:  store,
	}

	e := rest.NewEndpoint(http.MethodGet, "findPet", "/pets/:id").
		WithSummary("Find a pet by id").
		WithTags("pets").
		WithRequestPath(petIDPath).
		WithResponseBody(petShape).
		AddResponse(rest.Response{Status: http.StatusNotFound, Description: "Pet not found"})

	return rest.Handle(e, h)
}

func (h *findPetHandler) Handle(ctx context.Context, req *rest.Request, _ security.Credentials) (any, error) {
	spanCtx, span := h.tracer.Start(ctx, "findPetHandler.Handle")
	defer span.End()

	path, err := rest.ParamsAs[petID](req.Path)
	if err != nil {
		return nil, err
	}

	pet, found := h.store.Get(spanCtx, path.ID)
	if !found {
		return nil, rest.Error(http.StatusNotFound, "Pet not found")
	}
	return pet, nil
}
