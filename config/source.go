// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"context"
	"io"
	"os"

	bedrockcfg "github.com/z5labs/bedrock/config"
)

// YAMLSource reads YAML which is first rendered as a Go template. Two
// template functions are available:
//   - env: the value of an environment variable, or nil when unset
//   - default: its first argument when the second is nil
//
// For example:
//
//	port: {{ env "HTTP_PORT" | default 8080 }}
func YAMLSource(r io.Reader) bedrockcfg.Source {
	return bedrockcfg.FromYaml(
		bedrockcfg.RenderTextTemplate(
			r,
			bedrockcfg.TemplateFunc("env", func(key string) any {
				v, ok := os.LookupEnv(key)
				if ok {
					return v
				}
				return nil
			}),
			bedrockcfg.TemplateFunc("default", func(def, v any) any {
				if v == nil {
					return def
				}
				return v
			}),
		),
	)
}

// FromSources unmarshals the values of srcs into T. Later sources override
// the values of earlier ones and fields are matched by their `config` tag.
func FromSources[T any](srcs ...bedrockcfg.Source) Reader[T] {
	return ReaderFunc[T](func(ctx context.Context) (Value[T], error) {
		m, err := bedrockcfg.Read(bedrockcfg.MultiSource(srcs...))
		if err != nil {
			return Value[T]{}, err
		}

		var v T
		err = m.Unmarshal(&v)
		if err != nil {
			return Value[T]{}, err
		}
		return ValueOf(v), nil
	})
}
