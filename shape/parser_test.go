// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package shape

import (
	"errors"
	"math/big"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecoder_Decode(t *testing.T) {
	t.Run("will drop undeclared properties", func(t *testing.T) {
		t.Run("if the value is an object with extra keys", func(t *testing.T) {
			s := StructOf(Required("name", String()))

			v, err := Decode(s, map[string]any{"name": "bob", "extra": true})
			require.NoError(t, err)
			assert.Equal(t, map[string]any{"name": "bob"}, v)
		})
	})

	t.Run("will accept absent optional fields", func(t *testing.T) {
		s := StructOf(
			Required("name", String()),
			Optional("age", Int(Number())),
		)

		v, err := Decode(s, map[string]any{"name": "bob"})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"name": "bob"}, v)
	})

	t.Run("will normalize go values", func(t *testing.T) {
		t.Run("if the value holds integers and typed maps", func(t *testing.T) {
			s := StructOf(
				Required("count", Int(Number())),
				Required("tags", ArrayOf(String())),
			)

			v, err := Decode(s, map[string]any{
				"count": 3,
				"tags":  []string{"a", "b"},
			})
			require.NoError(t, err)
			assert.Equal(t, map[string]any{
				"count": float64(3),
				"tags":  []any{"a", "b"},
			}, v)
		})

		t.Run("if the value is a struct with json tags", func(t *testing.T) {
			type greeting struct {
				Message string `json:"message"`
			}

			s := StructOf(Required("message", String()))

			v, err := Decode(s, &greeting{Message: "hello"})
			require.NoError(t, err)
			assert.Equal(t, map[string]any{"message": "hello"}, v)
		})
	})

	t.Run("will return the first matching union member", func(t *testing.T) {
		s := UnionOf(NumberFromString(), String())

		v, err := Decode(s, "12")
		require.NoError(t, err)
		assert.Equal(t, float64(12), v)

		v, err = Decode(s, "twelve")
		require.NoError(t, err)
		assert.Equal(t, "twelve", v)
	})

	t.Run("will accept extra tuple items", func(t *testing.T) {
		t.Run("if the tuple declares a rest shape", func(t *testing.T) {
			s := TupleOf(Elem(String())).WithRest(Number())

			v, err := Decode(s, []any{"a", 1, 2})
			require.NoError(t, err)
			assert.Equal(t, []any{"a", float64(1), float64(2)}, v)
		})
	})

	t.Run("will reject empty arrays", func(t *testing.T) {
		_, err := Decode(NonEmptyArrayOf(String()), []any{})
		require.Error(t, err)
		assert.Equal(t, "value[0] is missing", err.Error())
	})

	t.Run("will decode big integers", func(t *testing.T) {
		v, err := Decode(BigIntFromString(), "123456789012345678901234567890")
		require.NoError(t, err)

		expected, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
		assert.Equal(t, 0, expected.Cmp(v.(*big.Int)))
	})

	t.Run("will check constraints", func(t *testing.T) {
		testCases := []struct {
			Name  string
			Shape Shape
			Valid any
			Bad   any
		}{
			{Name: "max", Shape: Max(Number(), 10), Valid: 10, Bad: 11},
			{Name: "positive", Shape: Positive(Number()), Valid: 1, Bad: 0},
			{Name: "pattern", Shape: Pattern(String(), regexp.MustCompile(`^\d+$`)), Valid: "12", Bad: "a"},
			{Name: "max length", Shape: MaxLength(String(), 2), Valid: "ab", Bad: "abc"},
			{Name: "min items", Shape: MinItems(ArrayOf(Number()), 1), Valid: []any{1}, Bad: []any{}},
			{Name: "max items", Shape: MaxItems(ArrayOf(Number()), 1), Valid: []any{1}, Bad: []any{1, 2}},
			{Name: "rule", Shape: Rule(String(), "email"), Valid: "bob@example.com", Bad: "bob"},
			{
				Name: "filter",
				Shape: Filter(String(), "an even length string", func(v any) bool {
					return len(v.(string))%2 == 0
				}),
				Valid: "ab",
				Bad:   "abc",
			},
		}

		for _, testCase := range testCases {
			t.Run(testCase.Name, func(t *testing.T) {
				_, err := Decode(testCase.Shape, testCase.Valid)
				assert.NoError(t, err)

				_, err = Decode(testCase.Shape, testCase.Bad)
				assert.Error(t, err)
			})
		}
	})
}

func TestEncoder_Encode(t *testing.T) {
	t.Run("will encode through transformations", func(t *testing.T) {
		s := StructOf(Required("page", IntFromString()))

		v, err := Encode(s, map[string]any{"page": 2})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"page": "2"}, v)
	})

	t.Run("will check refinements before encoding", func(t *testing.T) {
		_, err := Encode(Int(Number()), 1.5)
		require.Error(t, err)
		assert.Equal(t, "value must be an integer, received 1.5", err.Error())
	})

	t.Run("will fail", func(t *testing.T) {
		t.Run("if the transformation is one way", func(t *testing.T) {
			s := Transform(String(), Number(), func(v any) (any, error) {
				return 1.0, nil
			}, nil)

			_, err := Encode(s, 1)
			require.Error(t, err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))

			iss, ok := perr.Issue.(TransformationIssue)
			require.True(t, ok)
			assert.ErrorIs(t, iss.Cause, ErrOneWayTransformation)
		})
	})
}

func TestStructOf(t *testing.T) {
	t.Run("will panic", func(t *testing.T) {
		t.Run("if a field name is repeated", func(t *testing.T) {
			assert.PanicsWithValue(t, DuplicateFieldError{Field: "a"}, func() {
				StructOf(Required("a", String()), Optional("a", Number()))
			})
		})
	})
}

func TestUnionOf(t *testing.T) {
	t.Run("will panic", func(t *testing.T) {
		t.Run("if no members are given", func(t *testing.T) {
			assert.PanicsWithValue(t, EmptyUnionError{}, func() {
				UnionOf()
			})
		})
	})
}
