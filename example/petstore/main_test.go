// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenApiCommand(t *testing.T) {
	t.Run("will print a valid openapi document", func(t *testing.T) {
		var out bytes.Buffer
		cmd := newRootCommand()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"openapi", "--validate"})

		require.NoError(t, cmd.ExecuteContext(context.Background()))

		var doc map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
		require.Equal(t, "3.0.3", doc["openapi"])

		paths, ok := doc["paths"].(map[string]any)
		require.True(t, ok)
		require.Contains(t, paths, "/pets")
		require.Contains(t, paths, "/pets/{id}")
		require.Contains(t, paths, "/pets/{id}/image")
	})
}
