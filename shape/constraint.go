// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package shape

import (
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// ConstraintKind identifies the predicate a [Constraint] checks.
type ConstraintKind int

const (
	ConstraintInteger ConstraintKind = iota
	ConstraintMin
	ConstraintMax
	ConstraintExclusiveMin
	ConstraintExclusiveMax
	ConstraintPattern
	ConstraintMinItems
	ConstraintMaxItems
	ConstraintMinLength
	ConstraintMaxLength
	ConstraintRule
	ConstraintPredicate
)

// Constraint is a named predicate over decoded values. Only the fields
// relevant to Kind are set.
type Constraint struct {
	Kind ConstraintKind

	// Bound is used by the numeric, length and item count kinds.
	Bound float64

	Pattern *regexp.Regexp

	// Tag is a go-playground/validator tag used by [ConstraintRule].
	Tag string

	// Name labels a [ConstraintPredicate] in error messages.
	Name string
	Test func(any) bool
}

var validate = validator.New()

// Check reports whether v satisfies the constraint.
func (c Constraint) Check(v any) bool {
	switch c.Kind {
	case ConstraintInteger:
		switch x := v.(type) {
		case *big.Int:
			return true
		case float64:
			return !math.IsInf(x, 0) && !math.IsNaN(x) && math.Trunc(x) == x
		}
		return false
	case ConstraintMin, ConstraintMax, ConstraintExclusiveMin, ConstraintExclusiveMax:
		f, ok := numeric(v)
		if !ok {
			return false
		}
		switch c.Kind {
		case ConstraintMin:
			return f >= c.Bound
		case ConstraintMax:
			return f <= c.Bound
		case ConstraintExclusiveMin:
			return f > c.Bound
		default:
			return f < c.Bound
		}
	case ConstraintPattern:
		s, ok := v.(string)
		return ok && c.Pattern != nil && c.Pattern.MatchString(s)
	case ConstraintMinItems, ConstraintMaxItems:
		items, ok := v.([]any)
		if !ok {
			return false
		}
		if c.Kind == ConstraintMinItems {
			return float64(len(items)) >= c.Bound
		}
		return float64(len(items)) <= c.Bound
	case ConstraintMinLength, ConstraintMaxLength:
		s, ok := v.(string)
		if !ok {
			return false
		}
		n := float64(utf8.RuneCountInString(s))
		if c.Kind == ConstraintMinLength {
			return n >= c.Bound
		}
		return n <= c.Bound
	case ConstraintRule:
		return validate.Var(v, c.Tag) == nil
	case ConstraintPredicate:
		return c.Test != nil && c.Test(v)
	}
	return false
}

// Label describes the values accepted by the constraint, e.g.
// "a number greater than or equal to 1".
func (c Constraint) Label() string {
	bound := strconv.FormatFloat(c.Bound, 'f', -1, 64)
	switch c.Kind {
	case ConstraintInteger:
		return "an integer"
	case ConstraintMin:
		return "a number greater than or equal to " + bound
	case ConstraintMax:
		return "a number less than or equal to " + bound
	case ConstraintExclusiveMin:
		return "a number greater than " + bound
	case ConstraintExclusiveMax:
		return "a number less than " + bound
	case ConstraintPattern:
		return fmt.Sprintf("a string matching the pattern %s", c.Pattern)
	case ConstraintMinItems:
		return fmt.Sprintf("an array of at least %s items", bound)
	case ConstraintMaxItems:
		return fmt.Sprintf("an array of at most %s items", bound)
	case ConstraintMinLength:
		return fmt.Sprintf("a string at least %s character(s) long", bound)
	case ConstraintMaxLength:
		return fmt.Sprintf("a string at most %s character(s) long", bound)
	case ConstraintRule:
		return fmt.Sprintf("a value satisfying %q", c.Tag)
	case ConstraintPredicate:
		return c.Name
	}
	return "a refined value"
}

func numeric(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case *big.Int:
		f, _ := new(big.Float).SetInt(x).Float64()
		return f, true
	}
	return 0, false
}

// Int refines s to integral numbers.
func Int(s Shape) Refinement {
	return Refine(s, Constraint{Kind: ConstraintInteger})
}

// Min refines s to numbers greater than or equal to n.
func Min(s Shape, n float64) Refinement {
	return Refine(s, Constraint{Kind: ConstraintMin, Bound: n})
}

// Max refines s to numbers less than or equal to n.
func Max(s Shape, n float64) Refinement {
	return Refine(s, Constraint{Kind: ConstraintMax, Bound: n})
}

// GreaterThan refines s to numbers strictly greater than n.
func GreaterThan(s Shape, n float64) Refinement {
	return Refine(s, Constraint{Kind: ConstraintExclusiveMin, Bound: n})
}

// LessThan refines s to numbers strictly less than n.
func LessThan(s Shape, n float64) Refinement {
	return Refine(s, Constraint{Kind: ConstraintExclusiveMax, Bound: n})
}

// Positive is shorthand for GreaterThan(s, 0).
func Positive(s Shape) Refinement {
	return GreaterThan(s, 0)
}

// Pattern refines s to strings matching re.
func Pattern(s Shape, re *regexp.Regexp) Refinement {
	return Refine(s, Constraint{Kind: ConstraintPattern, Pattern: re})
}

// MinLength refines s to strings of at least n characters.
func MinLength(s Shape, n int) Refinement {
	return Refine(s, Constraint{Kind: ConstraintMinLength, Bound: float64(n)})
}

// MaxLength refines s to strings of at most n characters.
func MaxLength(s Shape, n int) Refinement {
	return Refine(s, Constraint{Kind: ConstraintMaxLength, Bound: float64(n)})
}

// MinItems refines s to arrays of at least n items.
func MinItems(s Shape, n int) Refinement {
	return Refine(s, Constraint{Kind: ConstraintMinItems, Bound: float64(n)})
}

// MaxItems refines s to arrays of at most n items.
func MaxItems(s Shape, n int) Refinement {
	return Refine(s, Constraint{Kind: ConstraintMaxItems, Bound: float64(n)})
}

// Rule refines s with a go-playground/validator tag, for example "email"
// or "uuid4".
func Rule(s Shape, tag string) Refinement {
	return Refine(s, Constraint{Kind: ConstraintRule, Tag: tag})
}

// Filter refines s with an arbitrary predicate. The name is used as the
// expected label in error messages.
func Filter(s Shape, name string, test func(any) bool) Refinement {
	return Refine(s, Constraint{Kind: ConstraintPredicate, Name: name, Test: test})
}
