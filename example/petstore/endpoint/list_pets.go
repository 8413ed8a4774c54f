// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package endpoint

import (
	"context"
	"html/template"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/z5labs/typedapi/rest"
	"github.com/z5labs/typedapi/security"
	"github.com/z5labs/typedapi/shape"
)

var petsTemplate = template.Must(template.New("pets").Parse(
	`<ul>{{ range . }}<li id="pet-{{ .id }}">{{ .name }}</li>{{ end }}</ul>`,
))

type listPetsHandler struct {
	tracer trace.Tracer
	store  Store
}

// ListPets registers GET /pets. The list is rendered as JSON, YAML or an
// HTML fragment depending on the Accept header.
func ListPets(store Store) rest.ApiOption {
	h := &listPetsHandler{
		tracer: otel.Tracer("endpoint"),
		store:  store,
	}

	limit := shape.Max(shape.Min(shape.IntFromString(), 1), 100)

	e := rest.NewEndpoint(http.MethodGet, "listPets", "/pets").
		WithSummary("List pets").
		WithTags("pets").
		WithRequestQuery(shape.StructOf(shape.Optional("limit", limit))).
		WithResponseBody(shape.ArrayOf(petShape)).
		WithResponseRepresentations(rest.JSON(), rest.YAML(), rest.HTML(petsTemplate))

	return rest.Handle(e, h)
}

type listPetsQuery struct {
	Limit int `json:"limit"`
}

func (h *listPetsHandler) Handle(ctx context.Context, req *rest.Request, _ security.Credentials) (any, error) {
	spanCtx, span := h.tracer.Start(ctx, "listPetsHandler.Handle")
	defer span.End()

	q, err := rest.ParamsAs[listPetsQuery](req.Query)
	if err != nil {
		return nil, err
	}
	return h.store.List(spanCtx, q.Limit), nil
}
