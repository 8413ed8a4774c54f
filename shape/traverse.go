// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package shape

import (
	"fmt"
	"strings"
	"unicode"
)

// Unwrap strips [Refinement] and [Transformation] layers from s, returning
// the underlying structural shape and the constraints encountered from
// the outermost layer inwards. Transformations are unwrapped to their
// encoded side.
func Unwrap(s Shape) (Shape, []Constraint) {
	var cs []Constraint
	for {
		switch x := s.(type) {
		case Refinement:
			cs = append(cs, x.constraint)
			s = x.from
		case Transformation:
			s = x.from
		default:
			return s, cs
		}
	}
}

// NotAStructError is returned when fields are requested of a shape which
// is neither a [Struct] nor a [Union].
type NotAStructError struct {
	Kind Kind
}

// Error implements the [error] interface.
func (e NotAStructError) Error() string {
	return fmt.Sprintf("expected a struct or union shape but got: %s", e.Kind)
}

// InvalidFieldNameError is returned when a struct field name cannot be used
// as a parameter name.
type InvalidFieldNameError struct {
	Name string
}

// Error implements the [error] interface.
func (e InvalidFieldNameError) Error() string {
	return fmt.Sprintf("invalid field name: %q", e.Name)
}

// FieldInfo describes a field of a struct-like shape.
type FieldInfo struct {
	Name     string
	Optional bool
	Shape    Shape
}

// Fields lists the fields of a struct-like shape after unwrapping it.
//
// For a [Union] the result is the union of the member fields in first
// appearance order. A field is optional unless every member requires it.
func Fields(s Shape) ([]FieldInfo, error) {
	s, _ = Unwrap(s)
	switch s := s.(type) {
	case Struct:
		fields := make([]FieldInfo, 0, len(s.fields))
		for _, f := range s.fields {
			if !validFieldName(f.Name) {
				return nil, InvalidFieldNameError{Name: f.Name}
			}
			fields = append(fields, FieldInfo{
				Name:     f.Name,
				Optional: f.Optional,
				Shape:    f.Shape,
			})
		}
		return fields, nil
	case Union:
		var fields []FieldInfo
		index := make(map[string]int)
		required := make(map[string]int)
		for _, m := range s.members {
			mfs, err := Fields(m)
			if err != nil {
				return nil, err
			}
			for _, f := range mfs {
				if !f.Optional {
					required[f.Name]++
				}
				if _, ok := index[f.Name]; ok {
					continue
				}
				index[f.Name] = len(fields)
				fields = append(fields, f)
			}
		}
		for i := range fields {
			fields[i].Optional = required[fields[i].Name] != len(s.members)
		}
		return fields, nil
	}
	return nil, NotAStructError{Kind: s.Kind()}
}

func validFieldName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

// LowercaseFields returns a copy of a struct-like shape whose field names
// are lower-cased. Transformations are rewritten on their encoded side
// only. It fails if two fields collide once lower-cased.
func LowercaseFields(s Shape) (Shape, error) {
	switch x := s.(type) {
	case Struct:
		seen := make(map[string]struct{}, len(x.fields))
		fields := make([]Field, len(x.fields))
		for i, f := range x.fields {
			name := strings.ToLower(f.Name)
			if _, dup := seen[name]; dup {
				return nil, DuplicateFieldError{Field: name}
			}
			seen[name] = struct{}{}
			f.Name = name
			fields[i] = f
		}
		x.fields = fields
		return x, nil
	case Union:
		members := make([]Shape, len(x.members))
		for i, m := range x.members {
			lm, err := LowercaseFields(m)
			if err != nil {
				return nil, err
			}
			members[i] = lm
		}
		x.members = members
		return x, nil
	case Refinement:
		from, err := LowercaseFields(x.from)
		if err != nil {
			return nil, err
		}
		x.from = from
		return x, nil
	case Transformation:
		from, err := LowercaseFields(x.from)
		if err != nil {
			return nil, err
		}
		x.from = from
		return x, nil
	}
	return nil, NotAStructError{Kind: s.Kind()}
}
