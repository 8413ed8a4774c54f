// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package security

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/swaggest/openapi-go/openapi3"
	"github.com/z5labs/sdk-go/ptr"
)

// Options configures the concrete schemes.
type Options struct {
	name         string
	bearerFormat string
}

// Option sets a value on [Options].
type Option func(*Options)

// Name overrides the name the scheme is registered under in the OpenAPI
// components.
func Name(name string) Option {
	return func(o *Options) {
		o.name = name
	}
}

// BearerFormat documents the format of bearer tokens, e.g. "JWT".
func BearerFormat(format string) Option {
	return func(o *Options) {
		o.bearerFormat = format
	}
}

func newOptions(name string, opts []Option) *Options {
	o := &Options{name: name}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func authorization(r *http.Request, kind string) (string, error) {
	values := r.Header.Values("Authorization")
	if len(values) == 0 {
		return "", unauthorized("No authorization header")
	}

	parts := strings.Split(values[0], " ")
	if len(parts) != 2 {
		return "", unauthorized("Invalid authorization header")
	}
	if !strings.EqualFold(parts[0], kind) {
		return "", unauthorized("Expected " + strings.ToUpper(kind) + " authorization")
	}
	return parts[1], nil
}

// Bearer parses "Authorization: Bearer <token>" and returns the token.
// It is registered as "bearer" unless [Name] is given.
func Bearer(opts ...Option) Scheme[string] {
	o := newOptions("bearer", opts)

	def := openapi3.SecurityScheme{
		HTTPSecurityScheme: &openapi3.HTTPSecurityScheme{
			Scheme: "bearer",
		},
	}
	if o.bearerFormat != "" {
		def.HTTPSecurityScheme.BearerFormat = ptr.Ref(o.bearerFormat)
	}

	return scheme[string]{
		parse: func(_ context.Context, r *http.Request) (string, error) {
			return authorization(r, "bearer")
		},
		defs: map[string]openapi3.SecurityScheme{o.name: def},
		reqs: []map[string][]string{{o.name: {}}},
	}
}

// BasicCredentials are the decoded user and password of basic authorization.
type BasicCredentials struct {
	User string
	Pass string
}

// Basic parses "Authorization: Basic <base64 user:pass>".
// It is registered as "basic" unless [Name] is given.
func Basic(opts ...Option) Scheme[BasicCredentials] {
	o := newOptions("basic", opts)

	return scheme[BasicCredentials]{
		parse: func(_ context.Context, r *http.Request) (BasicCredentials, error) {
			var creds BasicCredentials
			token, err := authorization(r, "basic")
			if err != nil {
				return creds, err
			}

			b, err := base64.StdEncoding.DecodeString(token)
			if err != nil {
				return creds, unauthorized("Invalid base64 encoding of BASIC credentials")
			}

			parts := strings.Split(string(b), ":")
			if len(parts) != 2 {
				return creds, unauthorized("Invalid BASIC credentials, expected user:pass")
			}
			creds.User = parts[0]
			creds.Pass = parts[1]
			return creds, nil
		},
		defs: map[string]openapi3.SecurityScheme{
			o.name: {
				HTTPSecurityScheme: &openapi3.HTTPSecurityScheme{
					Scheme: "basic",
				},
			},
		},
		reqs: []map[string][]string{{o.name: {}}},
	}
}

// In is the location of an API key.
type In string

const (
	InHeader In = "header"
	InQuery  In = "query"
	InCookie In = "cookie"
)

// APIKey reads a single string from the named header, query parameter or
// cookie. It is registered under the key name unless [Name] is given.
func APIKey(key string, in In, opts ...Option) Scheme[string] {
	o := newOptions(key, opts)

	return scheme[string]{
		parse: func(_ context.Context, r *http.Request) (string, error) {
			var values []string
			switch in {
			case InHeader:
				values = r.Header.Values(key)
			case InQuery:
				values = r.URL.Query()[key]
			case InCookie:
				c, err := r.Cookie(key)
				if err == nil {
					values = []string{c.Value}
				}
			}

			switch {
			case len(values) == 0:
				return "", unauthorized(fmt.Sprintf("Missing API key %s in %s", key, in))
			case len(values) > 1 || values[0] == "":
				return "", unauthorized(fmt.Sprintf("Invalid API key %s in %s", key, in))
			}
			return values[0], nil
		},
		defs: map[string]openapi3.SecurityScheme{
			o.name: {
				APIKeySecurityScheme: &openapi3.APIKeySecurityScheme{
					Name: key,
					In:   openapi3.APIKeySecuritySchemeIn(in),
				},
			},
		},
		reqs: []map[string][]string{{o.name: {}}},
	}
}
