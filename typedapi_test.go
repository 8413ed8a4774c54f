// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package typedapi

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunner_Run(t *testing.T) {
	t.Run("will call the error handler", func(t *testing.T) {
		t.Run("if the app fails to build", func(t *testing.T) {
			buildErr := errors.New("failed to build")

			var handled error
			r := NewRunner(
				BuilderFunc[string](func(ctx context.Context, cfg string) (App, error) {
					return nil, buildErr
				}),
				OnError(ErrorHandlerFunc(func(err error) {
					handled = err
				})),
			)

			err := r.Run(context.Background(), "cfg")
			assert.Equal(t, buildErr, err)
			assert.Equal(t, buildErr, handled)
		})

		t.Run("if the app fails to run", func(t *testing.T) {
			runErr := errors.New("failed to run")

			var handled error
			r := NewRunner(
				BuilderFunc[string](func(ctx context.Context, cfg string) (App, error) {
					return AppFunc(func(ctx context.Context) error {
						return runErr
					}), nil
				}),
				OnError(ErrorHandlerFunc(func(err error) {
					handled = err
				})),
			)

			err := r.Run(context.Background(), "cfg")
			assert.Equal(t, runErr, err)
			assert.Equal(t, runErr, handled)
		})
	})

	t.Run("will pass the config to the builder", func(t *testing.T) {
		var got string
		r := NewRunner(BuilderFunc[string](func(ctx context.Context, cfg string) (App, error) {
			got = cfg
			return AppFunc(func(ctx context.Context) error { return nil }), nil
		}))

		err := r.Run(context.Background(), "cfg")
		assert.NoError(t, err)
		assert.Equal(t, "cfg", got)
	})
}
