// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package config provides composable, typed configuration readers.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// ErrValueNotSet is returned by [Read] when a [Reader] yields no value.
var ErrValueNotSet = errors.New("config: value not set")

// Value is a possibly unset configuration value.
type Value[T any] struct {
	v   T
	set bool
}

// ValueOf returns a set [Value].
func ValueOf[T any](v T) Value[T] {
	return Value[T]{v: v, set: true}
}

// Value returns the value and whether it was set.
func (v Value[T]) Value() (T, bool) {
	return v.v, v.set
}

// Reader reads a configuration value.
type Reader[T any] interface {
	Read(context.Context) (Value[T], error)
}

// ReaderFunc is a func type of the [Reader] interface.
type ReaderFunc[T any] func(context.Context) (Value[T], error)

// Read implements the [Reader] interface.
func (f ReaderFunc[T]) Read(ctx context.Context) (Value[T], error) {
	return f(ctx)
}

// Read reads a value from r.
func Read[T any](ctx context.Context, r Reader[T]) (T, error) {
	val, err := r.Read(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	v, ok := val.Value()
	if !ok {
		return v, ErrValueNotSet
	}
	return v, nil
}

// Must reads a value from r and panics if it fails or is unset.
func Must[T any](ctx context.Context, r Reader[T]) T {
	v, err := Read(ctx, r)
	if err != nil {
		panic(err)
	}
	return v
}

// MustOr reads a value from r, falling back to def when it is unset.
// It panics if reading fails.
func MustOr[T any](ctx context.Context, def T, r Reader[T]) T {
	return Must(ctx, Default(def, r))
}

// EmptyReader never yields a value.
func EmptyReader[T any]() Reader[T] {
	return ReaderFunc[T](func(ctx context.Context) (Value[T], error) {
		return Value[T]{}, nil
	})
}

// Default yields def when r yields no value.
func Default[T any](def T, r Reader[T]) Reader[T] {
	return ReaderFunc[T](func(ctx context.Context) (Value[T], error) {
		val, err := r.Read(ctx)
		if err != nil {
			return val, err
		}
		if _, ok := val.Value(); ok {
			return val, nil
		}
		return ValueOf(def), nil
	})
}

// Or yields the value of the first reader which has one.
func Or[T any](rs ...Reader[T]) Reader[T] {
	return ReaderFunc[T](func(ctx context.Context) (Value[T], error) {
		for _, r := range rs {
			val, err := r.Read(ctx)
			if err != nil {
				return val, err
			}
			if _, ok := val.Value(); ok {
				return val, nil
			}
		}
		return Value[T]{}, nil
	})
}

// Map converts the value of r. Unset values are not passed to f.
func Map[A, B any](r Reader[A], f func(A) (B, error)) Reader[B] {
	return ReaderFunc[B](func(ctx context.Context) (Value[B], error) {
		val, err := r.Read(ctx)
		if err != nil {
			return Value[B]{}, err
		}
		a, ok := val.Value()
		if !ok {
			return Value[B]{}, nil
		}
		b, err := f(a)
		if err != nil {
			return Value[B]{}, err
		}
		return ValueOf(b), nil
	})
}

// Env reads an environment variable. Empty variables are unset.
func Env(name string) Reader[string] {
	return ReaderFunc[string](func(ctx context.Context) (Value[string], error) {
		v, ok := os.LookupEnv(name)
		if !ok || v == "" {
			return Value[string]{}, nil
		}
		return ValueOf(v), nil
	})
}

// ParseError is returned when a string value cannot be converted.
type ParseError struct {
	Value string
	Type  string
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("config: failed to parse %q as %s: %v", e.Value, e.Type, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

func parseWith[T any](r Reader[string], typ string, parse func(string) (T, error)) Reader[T] {
	return Map(r, func(s string) (T, error) {
		v, err := parse(s)
		if err != nil {
			return v, &ParseError{Value: s, Type: typ, Cause: err}
		}
		return v, nil
	})
}

// IntFromString parses the value of r as an int.
func IntFromString(r Reader[string]) Reader[int] {
	return parseWith(r, "int", strconv.Atoi)
}

// Int64FromString parses the value of r as an int64.
func Int64FromString(r Reader[string]) Reader[int64] {
	return parseWith(r, "int64", func(s string) (int64, error) {
		return strconv.ParseInt(s, 10, 64)
	})
}

// Float64FromString parses the value of r as a float64.
func Float64FromString(r Reader[string]) Reader[float64] {
	return parseWith(r, "float64", func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

// BoolFromString parses the value of r as a bool.
func BoolFromString(r Reader[string]) Reader[bool] {
	return parseWith(r, "bool", strconv.ParseBool)
}

// DurationFromString parses the value of r as a [time.Duration].
func DurationFromString(r Reader[string]) Reader[time.Duration] {
	return parseWith(r, "duration", time.ParseDuration)
}
