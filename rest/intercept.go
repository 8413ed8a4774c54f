// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

// Interceptor wraps the [Handler] of an operation. It runs after the
// request has been validated and before the result is encoded, so it
// sees the decoded [Request] and the resolved credentials.
type Interceptor interface {
	Intercept(next Handler) Handler
}

// InterceptorFunc is a func type of the [Interceptor] interface.
type InterceptorFunc func(next Handler) Handler

// Intercept implements the [Interceptor] interface.
func (f InterceptorFunc) Intercept(next Handler) Handler {
	return f(next)
}

// Intercept registers an [Interceptor] for the operation. Interceptors
// run in the order they were added.
//
// Example:
//
//	requireAdmin := rest.InterceptorFunc(func(next rest.Handler) rest.Handler {
//	    return rest.HandlerFunc(func(ctx context.Context, req *rest.Request, creds security.Credentials) (any, error) {
//	        if _, ok := security.Get[string](creds, "admin"); !ok {
//	            return nil, rest.Error(http.StatusForbidden, "admin only")
//	        }
//	        return next.Handle(ctx, req, creds)
//	    })
//	})
//	rest.Handle(deleteUser, handler, rest.Intercept(requireAdmin))
func Intercept(i Interceptor) OperationOption {
	return func(oo *OperationOptions) {
		oo.interceptors = append(oo.interceptors, i)
	}
}

func intercept(h Handler, is []Interceptor) Handler {
	for i := len(is) - 1; i >= 0; i-- {
		h = is[i].Intercept(h)
	}
	return h
}

