// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package endpoint

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/z5labs/typedapi"
	"github.com/z5labs/typedapi/rest"
	"github.com/z5labs/typedapi/security"
	"github.com/z5labs/typedapi/shape"
)

type NewPet struct {
	Name string `json:"name" required:"true" minLength:"1"`
	Tag  string `json:"tag,omitempty"`
}

type addPetHandler struct {
	tracer trace.Tracer
	log    *slog.Logger
	store  Store
}

// AddPet registers POST /pets. It responds 201 with the stored pet and
// its location.
func AddPet(store Store, auth security.Scheme[any]) rest.ApiOption {
	h := &addPetHandler{
		tracer: otel.Tracer("endpoint"),
		log:    typedapi.Logger("endpoint"),
		store:  store,
	}

	e := rest.NewEndpoint(http.MethodPost, "addPet", "/pets").
		WithSummary("Add a pet to the store").
		WithTags("pets").
		WithRequestBody(shape.MustReflect[NewPet]()).
		WithSecurity(map[string]security.Scheme[any]{"apiKey": auth}).
		WithResponseStatus(http.StatusCreated).
		WithResponseBody(petShape).
		WithResponseHeaders(shape.StructOf(shape.Required("location", shape.String())))

	return rest.Handle(e, h)
}

func (h *addPetHandler) Handle(ctx context.Context, req *rest.Request, _ security.Credentials) (any, error) {
	spanCtx, span := h.tracer.Start(ctx, "addPetHandler.Handle")
	defer span.End()

	body, err := rest.As[NewPet](req.Body)
	if err != nil {
		return nil, err
	}

	pet := h.store.Add(spanCtx, body.Name, body.Tag)
	h.log.InfoContext(spanCtx, "added pet", slog.Int64("pet_id", pet.ID))

	return rest.FullResponse{
		Status:  http.StatusCreated,
		Body:    pet,
		Headers: map[string]any{"location": "/pets/" + strconv.FormatInt(pet.ID, 10)},
	}, nil
}
