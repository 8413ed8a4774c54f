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

type deletePetHandler struct {
	tracer trace.Tracer
	store  Store
}

// DeletePet registers DELETE /pets/:id.
func DeletePet(store Store, auth security.Scheme[any]) rest.ApiOption {
	h := &deletePetHandler{
		tracer: otel.Tracer("endpoint"),
		store:  store,
	}

	e := rest.NewEndpoint(http.MethodDelete, "deletePet", "/pets/:id").
		WithSummary("Delete a pet").
		WithTags("pets").
		WithRequestPath(petIDPath).
		WithSecurity(map[string]security.Scheme[any]{"apiKey": auth}).
		WithResponseStatus(http.StatusNoContent).
		AddResponse(rest.Response{Status: http.StatusNotFound, Description: "Pet not found"})

	return rest.Handle(e, h)
}

func (h *deletePetHandler) Handle(ctx context.Context, req *rest.Request, _ security.Credentials) (any, error) {
	spanCtx, span := h.tracer.Start(ctx, "deletePetHandler.Handle")
	defer span.End()

	path, err := rest.ParamsAs[petID](req.Path)
	if err != nil {
		return nil, err
	}

	if !h.store.Delete(spanCtx, path.ID) {
		return nil, rest.Error(http.StatusNotFound, "Pet not found")
	}
	return nil, nil
}
