// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package shape

import (
	"fmt"
	"math/big"
	"strconv"
)

// NumberFromString decodes strings such as "1.5" into numbers. Useful for
// query, path and header locations where every value is a string.
func NumberFromString() Transformation {
	return Transform(
		String(),
		Number(),
		func(v any) (any, error) {
			return strconv.ParseFloat(v.(string), 64)
		},
		func(v any) (any, error) {
			return strconv.FormatFloat(v.(float64), 'f', -1, 64), nil
		},
	)
}

// IntFromString decodes strings into integral numbers.
func IntFromString() Transformation {
	t := NumberFromString()
	t.to = Int(Number())
	return t
}

// BooleanFromString decodes "true" and "false".
func BooleanFromString() Transformation {
	return Transform(
		String(),
		Boolean(),
		func(v any) (any, error) {
			switch v.(string) {
			case "true":
				return true, nil
			case "false":
				return false, nil
			}
			return nil, fmt.Errorf("not a boolean: %q", v)
		},
		func(v any) (any, error) {
			return strconv.FormatBool(v.(bool)), nil
		},
	)
}

// BigIntFromString decodes base 10 strings into *big.Int values.
func BigIntFromString() Transformation {
	return Transform(
		String(),
		BigInt(),
		func(v any) (any, error) {
			n, ok := new(big.Int).SetString(v.(string), 10)
			if !ok {
				return nil, fmt.Errorf("not an integer: %q", v)
			}
			return n, nil
		},
		func(v any) (any, error) {
			return v.(*big.Int).String(), nil
		},
	)
}
