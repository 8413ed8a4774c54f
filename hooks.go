// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package typedapi

import (
	"context"
	"errors"
	"sync"
)

// HookFunc runs after an [App] completes.
type HookFunc func(context.Context) error

// HookRegistry collects post-run hooks while an [App] is being built.
type HookRegistry struct {
	mu    sync.Mutex
	hooks []HookFunc
}

// OnPostRun registers a hook. Hooks run in the order they are registered,
// and every hook runs even if the app or a previous hook failed.
func (r *HookRegistry) OnPostRun(hook HookFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.hooks = append(r.hooks, hook)
}

// Run executes every registered hook and joins their errors.
func (r *HookRegistry) Run(ctx context.Context) error {
	r.mu.Lock()
	hooks := r.hooks
	r.mu.Unlock()

	var errs error
	for _, hook := range hooks {
		if err := hook(ctx); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return errs
}

type hookRegistryKey struct{}

// WithHooks returns a copy of ctx carrying r.
func WithHooks(ctx context.Context, r *HookRegistry) context.Context {
	return context.WithValue(ctx, hookRegistryKey{}, r)
}

// Hooks returns the [HookRegistry] carried by ctx, if any.
func Hooks(ctx context.Context) (*HookRegistry, bool) {
	r, ok := ctx.Value(hookRegistryKey{}).(*HookRegistry)
	return r, ok
}

// WithPostRun wraps app so the hooks of r run once app returns. Errors
// from app and the hooks are joined.
func WithPostRun(app App, r *HookRegistry) App {
	return AppFunc(func(ctx context.Context) error {
		err := app.Run(ctx)
		return errors.Join(err, r.Run(context.WithoutCancel(ctx)))
	})
}
