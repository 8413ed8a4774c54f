// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"maps"
	"slices"
	"strconv"

	"github.com/swaggest/openapi-go/openapi3"
	"github.com/z5labs/sdk-go/ptr"
	"gopkg.in/yaml.v3"

	"github.com/z5labs/typedapi/shape"
)

func schemaOf(s shape.Shape) *openapi3.SchemaOrRef {
	js := shape.JSONSchema(s)

	var sor openapi3.SchemaOrRef
	sor.FromJSONSchema(js.ToSchemaOrBool())
	return &sor
}

// parameters lists the fields of s as parameters located in in. Only
// the path parameters present in the route are documented for path.
func parameters(s shape.Shape, in openapi3.ParameterIn, route Path) []openapi3.ParameterOrRef {
	if s == nil {
		return nil
	}
	fields, err := shape.Fields(s)
	if err != nil {
		panic(err)
	}

	present := make(map[string]bool)
	for _, p := range route.Params() {
		present[p.Name] = true
	}

	var params []openapi3.ParameterOrRef
	for _, f := range fields {
		if in == openapi3.ParameterInPath && !present[f.Name] {
			continue
		}

		p := &openapi3.Parameter{
			Name:     f.Name,
			In:       in,
			Required: ptr.Ref(in == openapi3.ParameterInPath || !f.Optional),
			Schema:   schemaOf(f.Shape),
		}
		if d := f.Shape.Annotations().Description; d != "" {
			p.Description = ptr.Ref(d)
		}
		params = append(params, openapi3.ParameterOrRef{Parameter: p})
	}
	return params
}

// undeclaredPathParameters documents the parameters of a route whose
// endpoint has no path shape. Their values are passed through unchecked.
func undeclaredPathParameters(route Path) []openapi3.ParameterOrRef {
	var params []openapi3.ParameterOrRef
	for _, p := range route.Params() {
		params = append(params, openapi3.ParameterOrRef{
			Parameter: &openapi3.Parameter{
				Name:     p.Name,
				In:       openapi3.ParameterInPath,
				Required: ptr.Ref(true),
				Schema: &openapi3.SchemaOrRef{
					Schema: &openapi3.Schema{
						Type: ptr.Ref(openapi3.SchemaTypeString),
					},
				},
			},
		})
	}
	return params
}

func requestBody(s shape.Shape) *openapi3.RequestBodyOrRef {
	if s == nil {
		return nil
	}

	contentType := "application/json"
	schema := schemaOf(s)
	if s.Kind() == shape.KindFormData {
		contentType = "multipart/form-data"
		schema = &openapi3.SchemaOrRef{
			Schema: &openapi3.Schema{
				Type: ptr.Ref(openapi3.SchemaTypeObject),
			},
		}
	}

	return &openapi3.RequestBodyOrRef{
		RequestBody: &openapi3.RequestBody{
			Required: ptr.Ref(true),
			Content: map[string]openapi3.MediaType{
				contentType: {Schema: schema},
			},
		},
	}
}

func responseSpec(r Response) openapi3.ResponseOrRef {
	spec := &openapi3.Response{
		Description: r.description(),
	}

	if r.Body != nil {
		schema := schemaOf(r.Body)
		spec.Content = make(map[string]openapi3.MediaType, len(r.Representations))
		for _, rep := range r.Representations {
			spec.Content[rep.ContentType] = openapi3.MediaType{Schema: schema}
		}
	}

	if r.Headers != nil {
		fields, err := shape.Fields(r.Headers)
		if err != nil {
			panic(err)
		}
		spec.Headers = make(map[string]openapi3.HeaderOrRef, len(fields))
		for _, f := range fields {
			spec.Headers[f.Name] = openapi3.HeaderOrRef{
				Header: &openapi3.Header{
					Required: ptr.Ref(!f.Optional),
					Schema:   schemaOf(f.Shape),
				},
			}
		}
	}

	return openapi3.ResponseOrRef{Response: spec}
}

// addOperation documents every route variant of e in def.
func addOperation(def *openapi3.Spec, e Endpoint) error {
	names := slices.Sorted(maps.Keys(e.security))

	var reqs []map[string][]string
	for _, name := range names {
		s := e.security[name]
		for defName, scheme := range s.Definitions() {
			def.ComponentsEns().SecuritySchemesEns().WithMapOfSecuritySchemeOrRefValuesItem(
				defName,
				openapi3.SecuritySchemeOrRef{
					SecurityScheme: &scheme,
				},
			)
		}
		reqs = append(reqs, s.Requirements()...)
	}

	responses := make(map[string]openapi3.ResponseOrRef, len(e.responses))
	for _, r := range e.responses {
		responses[strconv.Itoa(r.Status)] = responseSpec(r)
	}

	for _, route := range e.path.Variants() {
		op := openapi3.Operation{
			ID:          ptr.Ref(e.id),
			Tags:        e.tags,
			RequestBody: requestBody(e.body),
			Responses: openapi3.Responses{
				MapOfResponseOrRefValues: responses,
			},
			Security: reqs,
		}
		if len(e.path.Variants()) > 1 {
			op.ID = ptr.Ref(e.id + "_" + strconv.Itoa(len(route.Params())))
		}
		if e.summary != "" {
			op.Summary = ptr.Ref(e.summary)
		}
		if e.description != "" {
			op.Description = ptr.Ref(e.description)
		}
		if e.deprecated {
			op.Deprecated = ptr.Ref(true)
		}

		if e.params != nil {
			op.Parameters = append(op.Parameters, parameters(e.params, openapi3.ParameterInPath, route)...)
		} else {
			op.Parameters = append(op.Parameters, undeclaredPathParameters(route)...)
		}
		op.Parameters = append(op.Parameters, parameters(e.query, openapi3.ParameterInQuery, route)...)
		op.Parameters = append(op.Parameters, parameters(e.headers, openapi3.ParameterInHeader, route)...)

		err := def.AddOperation(e.method, route.String(), op)
		if err != nil {
			return err
		}
	}
	return nil
}

// toYAML converts a JSON document to block style YAML preserving key order.
func toYAML(b []byte) ([]byte, error) {
	var node yaml.Node
	err := yaml.Unmarshal(b, &node)
	if err != nil {
		return nil, err
	}
	clearStyle(&node)
	return yaml.Marshal(&node)
}

func clearStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		clearStyle(c)
	}
}
