// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package shape

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"reflect"
)

type parseFunc func(any, *ParseOptions) (any, Issue)

type direction int

const (
	decoding direction = iota
	encoding
)

// ErrOneWayTransformation is the cause reported when encoding through a
// [Transformation] which was declared without an encode function.
var ErrOneWayTransformation = errors.New("transformation does not support encoding")

// Decoder validates untrusted values against a [Shape] and converts them
// into their decoded representation. A Decoder is compiled once and is
// safe for concurrent use.
type Decoder struct {
	shape Shape
	parse parseFunc
}

// NewDecoder compiles a [Decoder] for s.
func NewDecoder(s Shape) *Decoder {
	return &Decoder{
		shape: s,
		parse: compile(s, decoding),
	}
}

// Decode validates v. The returned error is always a *[ParseError].
func (d *Decoder) Decode(v any, opts ...ParseOption) (any, error) {
	return run(d.parse, v, opts)
}

// Encoder validates trusted values against a [Shape] and converts them
// into their encoded (wire) representation. An Encoder is compiled once
// and is safe for concurrent use.
type Encoder struct {
	shape Shape
	parse parseFunc
}

// NewEncoder compiles an [Encoder] for s.
func NewEncoder(s Shape) *Encoder {
	return &Encoder{
		shape: s,
		parse: compile(s, encoding),
	}
}

// Encode validates v. The returned error is always a *[ParseError].
func (e *Encoder) Encode(v any, opts ...ParseOption) (any, error) {
	return run(e.parse, v, opts)
}

// Decode is shorthand for NewDecoder(s).Decode(v, opts...).
func Decode(s Shape, v any, opts ...ParseOption) (any, error) {
	return NewDecoder(s).Decode(v, opts...)
}

// Encode is shorthand for NewEncoder(s).Encode(v, opts...).
func Encode(s Shape, v any, opts ...ParseOption) (any, error) {
	return NewEncoder(s).Encode(v, opts...)
}

func run(parse parseFunc, v any, opts []ParseOption) (any, error) {
	po := &ParseOptions{Errors: ErrorsFirst}
	for _, opt := range opts {
		opt(po)
	}

	out, iss := parse(normalize(v), po)
	if iss != nil {
		return nil, &ParseError{Issue: iss, Mode: po.Errors}
	}
	return out, nil
}

func compile(s Shape, dir direction) parseFunc {
	switch s := s.(type) {
	case Keyword:
		return compileKeyword(s)
	case Literal:
		return func(v any, _ *ParseOptions) (any, Issue) {
			if reflect.DeepEqual(v, s.value) {
				return v, nil
			}
			return nil, TypeIssue{Shape: s, Actual: v}
		}
	case Struct:
		return compileStruct(s, dir)
	case Union:
		return compileUnion(s, dir)
	case Tuple:
		return compileTuple(s, dir)
	case Refinement:
		return compileRefinement(s, dir)
	case Transformation:
		return compileTransformation(s, dir)
	}
	panic(fmt.Sprintf("shape: unsupported shape type %T", s))
}

func compileKeyword(k Keyword) parseFunc {
	var accept func(any) bool
	switch k.kind {
	case KindString:
		accept = func(v any) bool { _, ok := v.(string); return ok }
	case KindNumber:
		accept = func(v any) bool { _, ok := v.(float64); return ok }
	case KindBoolean:
		accept = func(v any) bool { _, ok := v.(bool); return ok }
	case KindBigInt:
		accept = func(v any) bool { _, ok := v.(*big.Int); return ok }
	case KindNull:
		accept = func(v any) bool { return v == nil }
	case KindNever:
		accept = func(any) bool { return false }
	default:
		accept = func(any) bool { return true }
	}

	return func(v any, _ *ParseOptions) (any, Issue) {
		if accept(v) {
			return v, nil
		}
		return nil, TypeIssue{Shape: k, Actual: v}
	}
}

func compileStruct(s Struct, dir direction) parseFunc {
	type field struct {
		Field
		parse parseFunc
	}
	fields := make([]field, len(s.fields))
	for i, f := range s.fields {
		fields[i] = field{Field: f, parse: compile(f.Shape, dir)}
	}

	return func(v any, po *ParseOptions) (any, Issue) {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, TypeIssue{Shape: s, Actual: v}
		}

		out := make(map[string]any, len(fields))
		var issues []Issue
		for _, f := range fields {
			fv, exists := m[f.Name]
			if !exists {
				if f.Optional {
					continue
				}
				issues = append(issues, PointerIssue{
					Path:   []Segment{Key(f.Name)},
					Actual: v,
					Issue:  MissingIssue{Shape: f.Shape},
				})
				if !po.all() {
					break
				}
				continue
			}

			decoded, iss := f.parse(fv, po)
			if iss != nil {
				issues = append(issues, PointerIssue{
					Path:   []Segment{Key(f.Name)},
					Actual: fv,
					Issue:  iss,
				})
				if !po.all() {
					break
				}
				continue
			}
			out[f.Name] = decoded
		}
		if len(issues) > 0 {
			return nil, CompositeIssue{Shape: s, Actual: v, Issues: issues}
		}
		return out, nil
	}
}

func compileUnion(u Union, dir direction) parseFunc {
	members := make([]parseFunc, len(u.members))
	for i, m := range u.members {
		members[i] = compile(m, dir)
	}

	return func(v any, po *ParseOptions) (any, Issue) {
		issues := make([]Issue, 0, len(members))
		for _, parse := range members {
			out, iss := parse(v, po)
			if iss == nil {
				return out, nil
			}
			issues = append(issues, iss)
		}
		return nil, CompositeIssue{Shape: u, Actual: v, Issues: issues}
	}
}

func compileTuple(t Tuple, dir direction) parseFunc {
	elements := make([]parseFunc, len(t.elements))
	for i, el := range t.elements {
		elements[i] = compile(el.Shape, dir)
	}
	var rest parseFunc
	if t.rest != nil {
		rest = compile(t.rest, dir)
	}

	return func(v any, po *ParseOptions) (any, Issue) {
		items, ok := v.([]any)
		if !ok {
			return nil, TypeIssue{Shape: t, Actual: v}
		}

		out := make([]any, 0, len(items))
		var issues []Issue
		fail := func(i int, actual any, iss Issue) bool {
			issues = append(issues, PointerIssue{
				Path:   []Segment{Index(i)},
				Actual: actual,
				Issue:  iss,
			})
			return !po.all()
		}

	elements:
		for i, parse := range elements {
			if i >= len(items) {
				if t.elements[i].Optional {
					break
				}
				if fail(i, nil, MissingIssue{Shape: t.elements[i].Shape}) {
					break elements
				}
				continue
			}

			decoded, iss := parse(items[i], po)
			if iss != nil {
				if fail(i, items[i], iss) {
					break elements
				}
				continue
			}
			out = append(out, decoded)
		}

		if len(issues) == 0 || po.all() {
			for i := len(elements); i < len(items); i++ {
				if rest == nil {
					if fail(i, items[i], UnexpectedIssue{Actual: items[i]}) {
						break
					}
					continue
				}

				decoded, iss := rest(items[i], po)
				if iss != nil {
					if fail(i, items[i], iss) {
						break
					}
					continue
				}
				out = append(out, decoded)
			}
		}

		if len(issues) > 0 {
			return nil, CompositeIssue{Shape: t, Actual: v, Issues: issues}
		}
		return out, nil
	}
}

func compileRefinement(r Refinement, dir direction) parseFunc {
	from := compile(r.from, dir)

	check := func(v any) Issue {
		if r.constraint.Check(v) {
			return nil
		}
		return RefinementIssue{Shape: r, Actual: v, Stage: RefinementPredicate}
	}

	if dir == encoding {
		return func(v any, po *ParseOptions) (any, Issue) {
			if iss := check(v); iss != nil {
				return nil, iss
			}
			out, iss := from(v, po)
			if iss != nil {
				return nil, RefinementIssue{Shape: r, Actual: v, Stage: RefinementFrom, Issue: iss}
			}
			return out, nil
		}
	}

	return func(v any, po *ParseOptions) (any, Issue) {
		out, iss := from(v, po)
		if iss != nil {
			return nil, RefinementIssue{Shape: r, Actual: v, Stage: RefinementFrom, Issue: iss}
		}
		if iss := check(out); iss != nil {
			return nil, iss
		}
		return out, nil
	}
}

func compileTransformation(t Transformation, dir direction) parseFunc {
	from := compile(t.from, dir)
	to := compile(t.to, dir)

	if dir == encoding {
		return func(v any, po *ParseOptions) (any, Issue) {
			b, iss := to(v, po)
			if iss != nil {
				return nil, TransformationIssue{Shape: t, Actual: v, Stage: TransformationType, Issue: iss}
			}
			if t.encode == nil {
				return nil, TransformationIssue{Shape: t, Actual: v, Stage: TransformationFunc, Cause: ErrOneWayTransformation}
			}
			a, err := t.encode(b)
			if err != nil {
				return nil, TransformationIssue{Shape: t, Actual: v, Stage: TransformationFunc, Cause: err}
			}
			out, iss := from(normalize(a), po)
			if iss != nil {
				return nil, TransformationIssue{Shape: t, Actual: v, Stage: TransformationEncoded, Issue: iss}
			}
			return out, nil
		}
	}

	return func(v any, po *ParseOptions) (any, Issue) {
		a, iss := from(v, po)
		if iss != nil {
			return nil, TransformationIssue{Shape: t, Actual: v, Stage: TransformationEncoded, Issue: iss}
		}
		b, err := t.decode(a)
		if err != nil {
			return nil, TransformationIssue{Shape: t, Actual: v, Stage: TransformationFunc, Cause: err}
		}
		out, iss := to(normalize(b), po)
		if iss != nil {
			return nil, TransformationIssue{Shape: t, Actual: v, Stage: TransformationType, Issue: iss}
		}
		return out, nil
	}
}

// normalize converts arbitrary Go values into the encoding/json
// representation: map[string]any, []any, float64, string, bool and nil.
// *big.Int values are kept as is.
func normalize(v any) any {
	switch x := v.(type) {
	case nil, string, bool, float64, *big.Int:
		return v
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalize(e)
		}
		return out
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return v
		}
		return f
	}
	if f, ok := toFloat(v); ok {
		return f
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = normalize(iter.Value().Interface())
		}
		return out
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = normalize(rv.Index(i).Interface())
		}
		return out
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return normalize(rv.Elem().Interface())
	case reflect.Struct:
		b, err := json.Marshal(v)
		if err != nil {
			return v
		}
		var out any
		if err := json.Unmarshal(b, &out); err != nil {
			return v
		}
		return out
	}
	return v
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return 0, false
}
