// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package security provides composable credential extraction rules for
// HTTP requests along with their OpenAPI security scheme descriptions.
package security

import (
	"context"
	"errors"
	"maps"
	"net/http"

	"github.com/swaggest/openapi-go/openapi3"
)

// Error is returned when a request does not carry valid credentials.
// It always results in a 401 Unauthorized response.
type Error struct {
	Message string
}

// Error implements the [error] interface.
func (e *Error) Error() string {
	return e.Message
}

func unauthorized(msg string) *Error {
	return &Error{Message: msg}
}

// Scheme extracts a credential of type T from a request.
type Scheme[T any] interface {
	// Parse extracts the credential. Failures are *[Error]s.
	Parse(context.Context, *http.Request) (T, error)

	// Definitions returns the OpenAPI security schemes keyed by name.
	Definitions() map[string]openapi3.SecurityScheme

	// Requirements returns the OpenAPI security requirements. Each map is
	// one alternative whose entries must all be satisfied.
	Requirements() []map[string][]string
}

type scheme[T any] struct {
	parse func(context.Context, *http.Request) (T, error)
	defs  map[string]openapi3.SecurityScheme
	reqs  []map[string][]string
}

func (s scheme[T]) Parse(ctx context.Context, r *http.Request) (T, error) {
	return s.parse(ctx, r)
}

func (s scheme[T]) Definitions() map[string]openapi3.SecurityScheme {
	return maps.Clone(s.defs)
}

func (s scheme[T]) Requirements() []map[string][]string {
	reqs := make([]map[string][]string, len(s.reqs))
	for i, req := range s.reqs {
		reqs[i] = maps.Clone(req)
	}
	return reqs
}

// Pair holds the credentials of two schemes combined with [And].
type Pair[A, B any] struct {
	First  A
	Second B
}

// And requires both a and b to succeed. In OpenAPI both schemes are
// listed in the same requirement.
func And[A, B any](a Scheme[A], b Scheme[B]) Scheme[Pair[A, B]] {
	defs := a.Definitions()
	maps.Copy(defs, b.Definitions())

	var reqs []map[string][]string
	for _, ra := range a.Requirements() {
		for _, rb := range b.Requirements() {
			req := maps.Clone(ra)
			maps.Copy(req, rb)
			reqs = append(reqs, req)
		}
	}

	return scheme[Pair[A, B]]{
		parse: func(ctx context.Context, r *http.Request) (Pair[A, B], error) {
			var p Pair[A, B]
			first, err := a.Parse(ctx, r)
			if err != nil {
				return p, err
			}
			second, err := b.Parse(ctx, r)
			if err != nil {
				return p, err
			}
			p.First = first
			p.Second = second
			return p, nil
		},
		defs: defs,
		reqs: reqs,
	}
}

// Or tries a first and falls back to b when a fails. In OpenAPI the
// requirements of both are listed as alternatives.
func Or[A, B any](a Scheme[A], b Scheme[B]) Scheme[any] {
	defs := a.Definitions()
	maps.Copy(defs, b.Definitions())

	return scheme[any]{
		parse: func(ctx context.Context, r *http.Request) (any, error) {
			first, err := a.Parse(ctx, r)
			if err == nil {
				return first, nil
			}
			second, err := b.Parse(ctx, r)
			if err != nil {
				return nil, err
			}
			return second, nil
		},
		defs: defs,
		reqs: append(a.Requirements(), b.Requirements()...),
	}
}

// Map transforms a successfully parsed credential.
func Map[A, B any](s Scheme[A], f func(A) B) Scheme[B] {
	return scheme[B]{
		parse: func(ctx context.Context, r *http.Request) (B, error) {
			a, err := s.Parse(ctx, r)
			if err != nil {
				var b B
				return b, err
			}
			return f(a), nil
		},
		defs: s.Definitions(),
		reqs: s.Requirements(),
	}
}

// MapEffect transforms a successfully parsed credential with a function
// which may fail, e.g. looking up the user owning a token. A failure of
// f is reported as an unauthorized [Error].
func MapEffect[A, B any](s Scheme[A], f func(context.Context, A) (B, error)) Scheme[B] {
	return scheme[B]{
		parse: func(ctx context.Context, r *http.Request) (B, error) {
			var zero B
			a, err := s.Parse(ctx, r)
			if err != nil {
				return zero, err
			}
			b, err := f(ctx, a)
			if err == nil {
				return b, nil
			}

			var serr *Error
			if errors.As(err, &serr) {
				return zero, serr
			}
			return zero, unauthorized(err.Error())
		},
		defs: s.Definitions(),
		reqs: s.Requirements(),
	}
}

// Erase hides the credential type of s.
func Erase[T any](s Scheme[T]) Scheme[any] {
	if s, ok := any(s).(Scheme[any]); ok {
		return s
	}
	return Map(s, func(t T) any { return t })
}
