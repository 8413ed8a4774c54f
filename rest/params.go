// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gorilla/schema"
)

// As converts a validated value, such as [Request.Body], into T by way of
// its JSON encoding.
func As[T any](v any) (T, error) {
	var t T
	b, err := json.Marshal(v)
	if err != nil {
		return t, err
	}
	err = json.Unmarshal(b, &t)
	return t, err
}

var paramsDecoder = newParamsDecoder()

func newParamsDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.SetAliasTag("json")
	dec.IgnoreUnknownKeys(true)
	return dec
}

// ParamsAs decodes a validated flat value, such as [Request.Query],
// [Request.Path] or [Request.Headers], into the struct T. Fields are
// matched by their json tag.
func ParamsAs[T any](v any) (T, error) {
	var t T
	m, ok := v.(map[string]any)
	if !ok && v != nil {
		return t, fmt.Errorf("expected an object but got %T", v)
	}

	values := make(map[string][]string, len(m))
	for k, el := range m {
		values[k] = paramValues(el)
	}
	err := paramsDecoder.Decode(&t, values)
	return t, err
}

func paramValues(v any) []string {
	switch v := v.(type) {
	case nil:
		return nil
	case string:
		return []string{v}
	case float64:
		return []string{strconv.FormatFloat(v, 'f', -1, 64)}
	case bool:
		return []string{strconv.FormatBool(v)}
	case []any:
		var out []string
		for _, el := range v {
			out = append(out, paramValues(el)...)
		}
		return out
	default:
		return []string{fmt.Sprint(v)}
	}
}
