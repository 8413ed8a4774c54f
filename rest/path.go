// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"path"
	"strings"
)

// PathElement represents a component of a URL path.
// It can be either a static path segment or a named path parameter.
type PathElement interface {
	pathElement() string
}

// PathSegment is a static component of a URL path.
type PathSegment string

func (s PathSegment) pathElement() string {
	return string(s)
}

// PathParam is a named component of a URL path written as ":name", or
// ":name?" when the parameter may be omitted.
type PathParam struct {
	Name     string
	Optional bool
}

func (p PathParam) pathElement() string {
	return "{" + p.Name + "}"
}

// Path represents a URL path composed of static segments and parameters.
type Path []PathElement

// ParsePath splits a path pattern such as "/users/:id/posts/:postId?"
// into its elements.
func ParsePath(pattern string) Path {
	var p Path
	for _, seg := range strings.Split(strings.Trim(pattern, "/"), "/") {
		if seg == "" {
			continue
		}
		if name, ok := strings.CutPrefix(seg, ":"); ok {
			name, optional := strings.CutSuffix(name, "?")
			p = append(p, PathParam{Name: name, Optional: optional})
			continue
		}
		p = append(p, PathSegment(seg))
	}
	return p
}

// Params returns the parameters of the path in order.
func (p Path) Params() []PathParam {
	var params []PathParam
	for _, el := range p {
		if param, ok := el.(PathParam); ok {
			params = append(params, param)
		}
	}
	return params
}

// String converts the path to its string representation.
// Static segments are joined with slashes, and parameters are formatted as {name}.
func (p Path) String() string {
	ss := make([]string, len(p))
	for i, el := range p {
		ss[i] = el.pathElement()
	}
	return "/" + path.Join(ss...)
}

// Variants expands every optional parameter into a path with and one
// without it. A path with no optional parameters has itself as its only
// variant.
func (p Path) Variants() []Path {
	variants := []Path{{}}
	for _, el := range p {
		param, ok := el.(PathParam)
		if !ok || !param.Optional {
			for i := range variants {
				variants[i] = append(variants[i], el)
			}
			continue
		}

		n := len(variants)
		for i := range n {
			without := append(Path{}, variants[i]...)
			variants[i] = append(variants[i], el)
			variants = append(variants, without)
		}
	}
	return variants
}
