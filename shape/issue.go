// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package shape

import (
	"strconv"
)

// Issue is a node of the failure tree produced when a value does not
// conform to a [Shape]. The tree mirrors the shape: one node per struct
// field, tuple index, union member, refinement or transformation layer
// which rejected the value.
type Issue interface {
	issue()
}

// TypeIssue reports that Actual is not a value of Shape.
type TypeIssue struct {
	Shape  Shape
	Actual any
}

// MissingIssue reports a required struct field or tuple element which
// was absent.
type MissingIssue struct {
	Shape Shape
}

// UnexpectedIssue reports a tuple element which no element or rest
// shape accepts.
type UnexpectedIssue struct {
	Actual any
}

// PointerIssue locates a nested issue inside a struct or tuple.
type PointerIssue struct {
	Path   []Segment
	Actual any
	Issue  Issue
}

// CompositeIssue groups several issues raised by the same node, i.e. by
// the fields of a struct, the items of a tuple or the members of a union.
type CompositeIssue struct {
	Shape  Shape
	Actual any
	Issues []Issue
}

// RefinementStage identifies which part of a [Refinement] failed.
type RefinementStage int

const (
	// RefinementFrom means the base shape rejected the value.
	RefinementFrom RefinementStage = iota

	// RefinementPredicate means the constraint rejected the value.
	RefinementPredicate
)

// RefinementIssue reports a failure of a [Refinement].
type RefinementIssue struct {
	Shape  Refinement
	Actual any
	Stage  RefinementStage

	// Issue is set when Stage is [RefinementFrom].
	Issue Issue
}

// TransformationStage identifies which part of a [Transformation] failed.
type TransformationStage int

const (
	TransformationEncoded TransformationStage = iota
	TransformationFunc
	TransformationType
)

// TransformationIssue reports a failure of a [Transformation].
type TransformationIssue struct {
	Shape  Transformation
	Actual any
	Stage  TransformationStage

	// Issue is set for the [TransformationEncoded] and [TransformationType] stages.
	Issue Issue

	// Cause is set for the [TransformationFunc] stage.
	Cause error
}

func (TypeIssue) issue()           {}
func (MissingIssue) issue()        {}
func (UnexpectedIssue) issue()     {}
func (PointerIssue) issue()        {}
func (CompositeIssue) issue()      {}
func (RefinementIssue) issue()     {}
func (TransformationIssue) issue() {}

// Segment is one step of a position inside a value: either an object
// key or an array index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Key returns a [Segment] for an object key.
func Key(name string) Segment {
	return Segment{Key: name}
}

// Index returns a [Segment] for an array index.
func Index(i int) Segment {
	return Segment{Index: i, IsIndex: true}
}

// String implements the [fmt.Stringer] interface.
func (s Segment) String() string {
	if s.IsIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	return s.Key
}

// ErrorsMode selects how many failures are rendered by [Format].
type ErrorsMode string

const (
	// ErrorsFirst stops at the first failure and renders the single most
	// relevant message.
	ErrorsFirst ErrorsMode = "first"

	// ErrorsAll collects every failure and renders them comma separated.
	ErrorsAll ErrorsMode = "all"
)

// ParseOptions configures decoding and encoding.
type ParseOptions struct {
	Errors ErrorsMode
}

// ParseOption sets a value on [ParseOptions].
type ParseOption func(*ParseOptions)

// Errors configures the [ErrorsMode]. Unknown modes fall back to [ErrorsFirst].
func Errors(mode ErrorsMode) ParseOption {
	return func(po *ParseOptions) {
		po.Errors = mode
	}
}

func (po *ParseOptions) all() bool {
	return po.Errors == ErrorsAll
}

// ParseError is returned when a value does not conform to a [Shape].
// Its message is the formatted failure tree.
type ParseError struct {
	Issue Issue
	Mode  ErrorsMode
}

// Error implements the [error] interface.
func (e *ParseError) Error() string {
	return Format(e.Issue, e.Mode)
}
