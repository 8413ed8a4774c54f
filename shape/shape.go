// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package shape provides introspectable descriptions of data shapes which
// can decode untrusted values, encode trusted ones and explain, in a single
// human readable message, why a value was rejected.
//
// # Overview
//
// A [Shape] is an immutable tree. Leaves are keywords ([String], [Number],
// [Boolean], [BigInt], [Null], [Unknown]) and [Literal] values. Composite
// nodes are [Struct], [Union] and [Tuple]. A [Refinement] narrows its base
// shape with a [Constraint] and a [Transformation] converts between an
// encoded (wire) shape and a decoded (domain) shape.
//
//	user := shape.StructOf(
//	    shape.Required("name", shape.String()),
//	    shape.Optional("age", shape.Int(shape.Number())),
//	)
//
//	v, err := shape.Decode(user, map[string]any{"name": 1})
//	// err.Error() == "name must be a string, received 1"
//
// # Values
//
// Decoded values use the same representation as encoding/json: objects are
// map[string]any, arrays are []any, numbers are float64. Big integers are
// represented as *big.Int.
package shape

import (
	"fmt"
	"slices"
)

// Kind identifies the kind of a [Shape] node.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBoolean
	KindBigInt
	KindNull
	KindUnknown
	KindNever
	KindIgnored
	KindFormData
	KindLiteral
	KindStruct
	KindUnion
	KindTuple
	KindRefinement
	KindTransformation
)

var kindNames = map[Kind]string{
	KindString:         "string",
	KindNumber:         "number",
	KindBoolean:        "boolean",
	KindBigInt:         "bigint",
	KindNull:           "null",
	KindUnknown:        "unknown",
	KindNever:          "never",
	KindIgnored:        "ignored",
	KindFormData:       "formdata",
	KindLiteral:        "literal",
	KindStruct:         "struct",
	KindUnion:          "union",
	KindTuple:          "tuple",
	KindRefinement:     "refinement",
	KindTransformation: "transformation",
}

// String implements the [fmt.Stringer] interface.
func (k Kind) String() string {
	s, ok := kindNames[k]
	if !ok {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return s
}

// Shape is a node of a data shape description.
//
// The set of implementations is closed; use a type switch over
// [Keyword], [Literal], [Struct], [Union], [Tuple], [Refinement]
// and [Transformation] to traverse a Shape.
type Shape interface {
	Kind() Kind
	Annotations() Annotations

	withAnnotations(Annotations) Shape
}

// Annotations are optional, non-functional metadata attached to a [Shape].
type Annotations struct {
	// Identifier is used as the human label of a shape when rendering
	// validation errors and as the OpenAPI title.
	Identifier string

	Title       string
	Description string

	// Message replaces the generated validation message whenever this
	// shape rejects a value.
	Message string

	// MissingMessage replaces the generated message when a struct field
	// or tuple element with this shape is missing.
	MissingMessage string

	Examples []any
}

// Annotation sets a value on [Annotations].
type Annotation func(*Annotations)

// Identifier sets [Annotations.Identifier].
func Identifier(s string) Annotation {
	return func(a *Annotations) {
		a.Identifier = s
	}
}

// Title sets [Annotations.Title].
func Title(s string) Annotation {
	return func(a *Annotations) {
		a.Title = s
	}
}

// Description sets [Annotations.Description].
func Description(s string) Annotation {
	return func(a *Annotations) {
		a.Description = s
	}
}

// Message sets [Annotations.Message].
func Message(s string) Annotation {
	return func(a *Annotations) {
		a.Message = s
	}
}

// MissingMessage sets [Annotations.MissingMessage].
func MissingMessage(s string) Annotation {
	return func(a *Annotations) {
		a.MissingMessage = s
	}
}

// Examples appends to [Annotations.Examples].
func Examples(vs ...any) Annotation {
	return func(a *Annotations) {
		a.Examples = append(slices.Clone(a.Examples), vs...)
	}
}

// Annotate returns a copy of s with the given annotations applied.
func Annotate[S Shape](s S, as ...Annotation) S {
	a := s.Annotations()
	for _, f := range as {
		f(&a)
	}
	return s.withAnnotations(a).(S)
}

type base struct {
	annotations Annotations
}

// Annotations implements the [Shape] interface.
func (b base) Annotations() Annotations {
	return b.annotations
}

// Keyword is a primitive leaf shape.
type Keyword struct {
	base
	kind Kind
}

// Kind implements the [Shape] interface.
func (k Keyword) Kind() Kind {
	return k.kind
}

func (k Keyword) withAnnotations(a Annotations) Shape {
	k.annotations = a
	return k
}

// String accepts any string.
func String() Keyword {
	return Keyword{kind: KindString}
}

// Number accepts any finite or infinite float64 (or any Go numeric value
// which is converted to float64).
func Number() Keyword {
	return Keyword{kind: KindNumber}
}

// Boolean accepts true and false.
func Boolean() Keyword {
	return Keyword{kind: KindBoolean}
}

// BigInt accepts *big.Int values.
func BigInt() Keyword {
	return Keyword{kind: KindBigInt}
}

// Null accepts only nil.
func Null() Keyword {
	return Keyword{kind: KindNull}
}

// Unknown accepts anything.
func Unknown() Keyword {
	return Keyword{kind: KindUnknown}
}

// Never rejects everything.
func Never() Keyword {
	return Keyword{kind: KindNever}
}

// Ignored marks a request location which is not constrained. Values are
// never inspected against it.
func Ignored() Keyword {
	return Keyword{kind: KindIgnored}
}

// FormData marks a request body which is read as multipart form data by
// the handler rather than decoded as JSON.
func FormData() Keyword {
	return Keyword{kind: KindFormData}
}

// IsIgnored reports whether s is nil or the [Ignored] marker.
func IsIgnored(s Shape) bool {
	return s == nil || s.Kind() == KindIgnored
}

// Literal accepts exactly one value.
type Literal struct {
	base
	value any
}

// LiteralOf returns a [Literal] for v. Numeric values are normalized to float64.
func LiteralOf(v any) Literal {
	if f, ok := toFloat(v); ok {
		v = f
	}
	return Literal{value: v}
}

// Literals returns a [Union] of [Literal]s, or a single [Literal] when
// only one value is given.
func Literals(vs ...any) Shape {
	if len(vs) == 1 {
		return LiteralOf(vs[0])
	}
	members := make([]Shape, len(vs))
	for i, v := range vs {
		members[i] = LiteralOf(v)
	}
	return UnionOf(members...)
}

// Kind implements the [Shape] interface.
func (Literal) Kind() Kind {
	return KindLiteral
}

// Value returns the literal value.
func (l Literal) Value() any {
	return l.value
}

func (l Literal) withAnnotations(a Annotations) Shape {
	l.annotations = a
	return l
}

// Field is a named member of a [Struct].
type Field struct {
	Name     string
	Shape    Shape
	Optional bool
}

// Required returns a required [Field].
func Required(name string, s Shape) Field {
	return Field{Name: name, Shape: s}
}

// Optional returns a [Field] which may be absent.
func Optional(name string, s Shape) Field {
	return Field{Name: name, Shape: s, Optional: true}
}

// DuplicateFieldError is raised when a [Struct] declares the same field twice.
type DuplicateFieldError struct {
	Field string
}

// Error implements the [error] interface.
func (e DuplicateFieldError) Error() string {
	return fmt.Sprintf("duplicate struct field: %q", e.Field)
}

// Struct accepts objects with the declared fields. Undeclared
// properties are dropped from decoded values.
type Struct struct {
	base
	fields []Field
}

// StructOf returns a [Struct] with the given fields.
// It panics with a [DuplicateFieldError] if a field name is repeated.
func StructOf(fields ...Field) Struct {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, exists := seen[f.Name]; exists {
			panic(DuplicateFieldError{Field: f.Name})
		}
		seen[f.Name] = struct{}{}
	}
	return Struct{fields: slices.Clone(fields)}
}

// Kind implements the [Shape] interface.
func (Struct) Kind() Kind {
	return KindStruct
}

// Fields returns a copy of the declared fields in declaration order.
func (s Struct) Fields() []Field {
	return slices.Clone(s.fields)
}

func (s Struct) withAnnotations(a Annotations) Shape {
	s.annotations = a
	return s
}

// EmptyUnionError is raised when a [Union] is declared without members.
type EmptyUnionError struct{}

// Error implements the [error] interface.
func (EmptyUnionError) Error() string {
	return "union must have at least one member"
}

// Union accepts a value matching any of its members. Members are
// tried in declaration order and the first success wins.
type Union struct {
	base
	members []Shape
}

// UnionOf returns a [Union] of the given members.
// It panics with an [EmptyUnionError] if no members are given.
func UnionOf(members ...Shape) Union {
	if len(members) == 0 {
		panic(EmptyUnionError{})
	}
	return Union{members: slices.Clone(members)}
}

// Kind implements the [Shape] interface.
func (Union) Kind() Kind {
	return KindUnion
}

// Members returns a copy of the union members.
func (u Union) Members() []Shape {
	return slices.Clone(u.members)
}

func (u Union) withAnnotations(a Annotations) Shape {
	u.annotations = a
	return u
}

// Element is a positional member of a [Tuple].
type Element struct {
	Shape    Shape
	Optional bool
}

// Elem returns a required [Element].
func Elem(s Shape) Element {
	return Element{Shape: s}
}

// OptionalElem returns an [Element] which may be absent. Optional
// elements must follow all required ones.
func OptionalElem(s Shape) Element {
	return Element{Shape: s, Optional: true}
}

// Tuple accepts arrays whose leading items match the declared elements
// and whose remaining items, if any, match the rest shape.
type Tuple struct {
	base
	elements []Element
	rest     Shape
}

// TupleOf returns a [Tuple] with the given elements and no rest.
func TupleOf(elements ...Element) Tuple {
	return Tuple{elements: slices.Clone(elements)}
}

// ArrayOf returns a [Tuple] of any length whose items all match item.
func ArrayOf(item Shape) Tuple {
	return Tuple{rest: item}
}

// NonEmptyArrayOf is like [ArrayOf] but requires at least one item.
func NonEmptyArrayOf(item Shape) Tuple {
	return Tuple{
		elements: []Element{Elem(item)},
		rest:     item,
	}
}

// WithRest returns a copy of t whose extra items must match rest.
func (t Tuple) WithRest(rest Shape) Tuple {
	t.elements = slices.Clone(t.elements)
	t.rest = rest
	return t
}

// Kind implements the [Shape] interface.
func (Tuple) Kind() Kind {
	return KindTuple
}

// Elements returns a copy of the positional elements.
func (t Tuple) Elements() []Element {
	return slices.Clone(t.elements)
}

// Rest returns the shape of variadic items or nil.
func (t Tuple) Rest() Shape {
	return t.rest
}

func (t Tuple) withAnnotations(a Annotations) Shape {
	t.annotations = a
	return t
}

// Refinement narrows a base shape with a [Constraint].
type Refinement struct {
	base
	from       Shape
	constraint Constraint
}

// Refine returns a [Refinement] of from.
func Refine(from Shape, c Constraint) Refinement {
	return Refinement{from: from, constraint: c}
}

// Kind implements the [Shape] interface.
func (Refinement) Kind() Kind {
	return KindRefinement
}

// From returns the refined shape.
func (r Refinement) From() Shape {
	return r.from
}

// Constraint returns the constraint applied to decoded values.
func (r Refinement) Constraint() Constraint {
	return r.constraint
}

func (r Refinement) withAnnotations(a Annotations) Shape {
	r.annotations = a
	return r
}

// TransformFunc converts a value between the two sides of a [Transformation].
type TransformFunc func(any) (any, error)

// Transformation decodes values of its from shape into values of its
// to shape and encodes them back.
type Transformation struct {
	base
	from   Shape
	to     Shape
	decode TransformFunc
	encode TransformFunc
}

// Transform returns a [Transformation]. A nil encode makes the
// transformation one-way: encoding through it always fails.
func Transform(from, to Shape, decode, encode TransformFunc) Transformation {
	return Transformation{
		from:   from,
		to:     to,
		decode: decode,
		encode: encode,
	}
}

// Kind implements the [Shape] interface.
func (Transformation) Kind() Kind {
	return KindTransformation
}

// From returns the encoded side.
func (t Transformation) From() Shape {
	return t.from
}

// To returns the decoded side.
func (t Transformation) To() Shape {
	return t.to
}

func (t Transformation) withAnnotations(a Annotations) Shape {
	t.annotations = a
	return t
}
