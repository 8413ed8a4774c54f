// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package detector

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
)

func TestServiceName(t *testing.T) {
	t.Run("will use the configured name", func(t *testing.T) {
		r, err := resource.Detect(context.Background(), ServiceName("hello"), ServiceVersion("v1.0.0"))
		require.NoError(t, err)

		name, ok := r.Set().Value(semconv.ServiceNameKey)
		require.True(t, ok)
		require.Equal(t, "hello", name.AsString())

		version, ok := r.Set().Value(semconv.ServiceVersionKey)
		require.True(t, ok)
		require.Equal(t, "v1.0.0", version.AsString())
	})

	t.Run("will fall back to the executable name", func(t *testing.T) {
		t.Run("if no name is configured", func(t *testing.T) {
			r, err := resource.Detect(context.Background(), ServiceName(""))
			require.NoError(t, err)

			name, ok := r.Set().Value(semconv.ServiceNameKey)
			require.True(t, ok)
			require.True(t, strings.HasPrefix(name.AsString(), "unknown_service:"))
		})
	})
}

func TestProcess(t *testing.T) {
	t.Run("will describe the go runtime", func(t *testing.T) {
		r, err := resource.Detect(context.Background(), Process())
		require.NoError(t, err)

		name, ok := r.Set().Value(semconv.ProcessRuntimeNameKey)
		require.True(t, ok)
		require.Equal(t, "go", name.AsString())
	})
}
