// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePath(t *testing.T) {
	t.Run("will parse static segments and parameters", func(t *testing.T) {
		p := ParsePath("/users/:id/posts/:postId?")

		assert.Equal(t, Path{
			PathSegment("users"),
			PathParam{Name: "id"},
			PathSegment("posts"),
			PathParam{Name: "postId", Optional: true},
		}, p)
		assert.Equal(t, []PathParam{
			{Name: "id"},
			{Name: "postId", Optional: true},
		}, p.Params())
	})

	t.Run("will ignore empty segments", func(t *testing.T) {
		p := ParsePath("//users//")
		assert.Equal(t, Path{PathSegment("users")}, p)
	})

	t.Run("will parse the root path", func(t *testing.T) {
		p := ParsePath("/")
		assert.Empty(t, p)
		assert.Equal(t, "/", p.String())
	})
}

func TestPath_String(t *testing.T) {
	testCases := []struct {
		Name     string
		Pattern  string
		Expected string
	}{
		{Name: "static path", Pattern: "/api/v1/users", Expected: "/api/v1/users"},
		{Name: "single parameter", Pattern: "/users/:id", Expected: "/users/{id}"},
		{Name: "multiple parameters", Pattern: "/users/:userId/posts/:postId", Expected: "/users/{userId}/posts/{postId}"},
		{Name: "no leading slash", Pattern: "users/:id", Expected: "/users/{id}"},
	}

	for _, testCase := range testCases {
		t.Run("will format a "+testCase.Name, func(t *testing.T) {
			assert.Equal(t, testCase.Expected, ParsePath(testCase.Pattern).String())
		})
	}
}

func TestPath_Variants(t *testing.T) {
	t.Run("will return the path itself", func(t *testing.T) {
		t.Run("if it has no optional parameters", func(t *testing.T) {
			variants := ParsePath("/users/:id").Variants()
			assert.Len(t, variants, 1)
			assert.Equal(t, "/users/{id}", variants[0].String())
		})
	})

	t.Run("will expand optional parameters", func(t *testing.T) {
		variants := ParsePath("/files/:dir?/:name?").Variants()

		var routes []string
		for _, v := range variants {
			routes = append(routes, v.String())
		}
		assert.ElementsMatch(t, []string{
			"/files/{dir}/{name}",
			"/files/{dir}",
			"/files/{name}",
			"/files",
		}, routes)
		assert.Equal(t, "/files/{dir}/{name}", routes[0])
	})
}
