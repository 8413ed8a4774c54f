// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package endpoint

import (
	"context"
	"errors"
	"net/http"

	"github.com/z5labs/sdk-go/try"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/z5labs/typedapi/example/petstore/store"
	"github.com/z5labs/typedapi/rest"
	"github.com/z5labs/typedapi/security"
	"github.com/z5labs/typedapi/shape"
)

type uploadImageHandler struct {
	tracer trace.Tracer
	store  Store
}

// UploadImage registers POST /pets/:id/image which accepts a multipart
// form with an "image" file.
func UploadImage(store Store, auth security.Scheme[any]) rest.ApiOption {
	h := &uploadImageHandler{
		tracer: otel.Tracer("endpoint"),
		store:  store,
	}

	e := rest.NewEndpoint(http.MethodPost, "uploadImage", "/pets/:id/image").
		WithSummary("Upload an image of a pet").
		WithTags("pets").
		WithRequestPath(petIDPath).
		WithRequestBody(shape.FormData()).
		WithSecurity(map[string]security.Scheme[any]{"apiKey": auth}).
		WithResponseStatus(http.StatusNoContent).
		AddResponse(rest.Response{Status: http.StatusNotFound, Description: "Pet not found"})

	return rest.Handle(e, h)
}

type uploadForm struct {
	Caption string `form:"caption"`
}

func (h *uploadImageHandler) Handle(ctx context.Context, req *rest.Request, _ security.Credentials) (_ any, err error) {
	spanCtx, span := h.tracer.Start(ctx, "uploadImageHandler.Handle")
	defer span.End()

	path, err := rest.ParamsAs[petID](req.Path)
	if err != nil {
		return nil, err
	}

	_, err = rest.FormAs[uploadForm](req)
	if err != nil {
		return nil, err
	}

	f, _, err := req.Raw.FormFile("image")
	if err != nil {
		return nil, &rest.ValidationError{Location: rest.LocationBody, Message: "image is missing"}
	}
	defer try.Close(&err, f)

	err = h.store.SetImage(spanCtx, path.ID, f)
	if errors.Is(err, store.ErrPetNotFound) {
		return nil, rest.Error(http.StatusNotFound, "Pet not found")
	}
	if err != nil {
		return nil, err
	}
	return nil, nil
}
