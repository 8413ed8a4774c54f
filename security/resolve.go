// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package security

import (
	"context"
	"maps"
	"net/http"
	"slices"
)

// Outcome is the result of evaluating one of several schemes.
type Outcome struct {
	// Token is the parsed credential when Err is nil.
	Token any
	Err   error

	Scheme Scheme[any]
}

// Credentials maps scheme names to resolved credentials.
//
// When a single scheme is declared the value is the credential itself.
// When several are declared every value is an [Outcome].
type Credentials map[string]any

// Resolve evaluates the named schemes against r.
//
// Zero schemes resolve to empty credentials. A single scheme resolves to
// its credential or fails with its error. Several schemes are all
// evaluated and resolution succeeds if at least one of them succeeded.
func Resolve(ctx context.Context, r *http.Request, schemes map[string]Scheme[any]) (Credentials, error) {
	switch len(schemes) {
	case 0:
		return Credentials{}, nil
	case 1:
		for name, s := range schemes {
			cred, err := s.Parse(ctx, r)
			if err != nil {
				return nil, err
			}
			return Credentials{name: cred}, nil
		}
	}

	creds := make(Credentials, len(schemes))
	succeeded := false
	for _, name := range slices.Sorted(maps.Keys(schemes)) {
		s := schemes[name]
		token, err := s.Parse(ctx, r)
		creds[name] = Outcome{Token: token, Err: err, Scheme: s}
		succeeded = succeeded || err == nil
	}
	if !succeeded {
		return nil, unauthorized("Bad authorization header")
	}
	return creds, nil
}

// Successes returns the credentials which were resolved successfully,
// unwrapping [Outcome]s. It fails when there are none.
func (c Credentials) Successes() (map[string]any, error) {
	out := make(map[string]any, len(c))
	for name, v := range c {
		o, ok := v.(Outcome)
		if !ok {
			out[name] = v
			continue
		}
		if o.Err == nil {
			out[name] = o.Token
		}
	}
	if len(out) == 0 {
		return nil, unauthorized("Must provide at least one secure scheme credential")
	}
	return out, nil
}

// Get returns the credential resolved for name if it was resolved
// successfully and has type T.
func Get[T any](c Credentials, name string) (T, bool) {
	var zero T
	v, ok := c[name]
	if !ok {
		return zero, false
	}
	if o, isOutcome := v.(Outcome); isOutcome {
		if o.Err != nil {
			return zero, false
		}
		v = o.Token
	}
	t, ok := v.(T)
	return t, ok
}
