// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Representation renders an encoded response body as text of a given
// content type.
type Representation struct {
	ContentType string
	Stringify   func(any) ([]byte, error)
}

// JSON renders bodies as application/json.
func JSON() Representation {
	return Representation{
		ContentType: "application/json",
		Stringify: func(v any) ([]byte, error) {
			var buf bytes.Buffer
			enc := json.NewEncoder(&buf)
			enc.SetEscapeHTML(false)
			if err := enc.Encode(v); err != nil {
				return nil, err
			}
			return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
		},
	}
}

// PlainText renders string bodies as text/plain. Any other value is
// rendered as JSON.
func PlainText() Representation {
	js := JSON()
	return Representation{
		ContentType: "text/plain",
		Stringify: func(v any) ([]byte, error) {
			if s, ok := v.(string); ok {
				return []byte(s), nil
			}
			return js.Stringify(v)
		},
	}
}

// YAML renders bodies as application/yaml.
func YAML() Representation {
	return Representation{
		ContentType: "application/yaml",
		Stringify: func(v any) ([]byte, error) {
			b, err := yaml.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal yaml: %w", err)
			}
			return b, nil
		},
	}
}

func negotiate(accept []string, reps []Representation) Representation {
	if len(accept) == 1 {
		for _, rep := range reps {
			if rep.ContentType == accept[0] {
				return rep
			}
		}
	}
	return reps[0]
}
