// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package shape

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/swaggest/jsonschema-go"
	"github.com/z5labs/sdk-go/ptr"
)

// Reflect derives a [Shape] from the JSON schema of T, honoring json
// struct tags and the jsonschema-go tags (required, minimum, pattern, ...).
func Reflect[T any]() (Shape, error) {
	var t T
	var reflector jsonschema.Reflector

	schema, err := reflector.Reflect(t, jsonschema.InlineRefs)
	if err != nil {
		return nil, err
	}
	return FromJSONSchema(schema)
}

// MustReflect is like [Reflect] but panics on error.
func MustReflect[T any]() Shape {
	s, err := Reflect[T]()
	if err != nil {
		panic(err)
	}
	return s
}

// FromJSONSchema converts a JSON schema into a [Shape].
func FromJSONSchema(js jsonschema.Schema) (Shape, error) {
	s, err := fromJSONSchema(js)
	if err != nil {
		return nil, err
	}

	var as []Annotation
	if js.Title != nil {
		as = append(as, Title(*js.Title))
	}
	if js.Description != nil {
		as = append(as, Description(*js.Description))
	}
	if len(js.Examples) > 0 {
		as = append(as, Examples(js.Examples...))
	}
	if len(as) == 0 {
		return s, nil
	}
	return Annotate(s, as...), nil
}

func fromJSONSchema(js jsonschema.Schema) (Shape, error) {
	if js.Const != nil {
		return LiteralOf(*js.Const), nil
	}
	if len(js.Enum) > 0 {
		return Literals(js.Enum...), nil
	}
	if alts := append(slices.Clone(js.AnyOf), js.OneOf...); len(alts) > 0 {
		members := make([]Shape, 0, len(alts))
		for _, alt := range alts {
			m, err := fromSchemaOrBool(alt)
			if err != nil {
				return nil, err
			}
			members = append(members, m)
		}
		return UnionOf(members...), nil
	}

	if js.Type == nil {
		if len(js.Properties) > 0 {
			return fromSimpleType(js, jsonschema.Object)
		}
		return Unknown(), nil
	}
	if js.Type.SimpleTypes != nil {
		return fromSimpleType(js, *js.Type.SimpleTypes)
	}

	members := make([]Shape, 0, len(js.Type.SliceOfSimpleTypeValues))
	for _, st := range js.Type.SliceOfSimpleTypeValues {
		m, err := fromSimpleType(js, st)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	switch len(members) {
	case 0:
		return Unknown(), nil
	case 1:
		return members[0], nil
	}
	return UnionOf(members...), nil
}

func fromSchemaOrBool(sob jsonschema.SchemaOrBool) (Shape, error) {
	if sob.TypeObject != nil {
		return FromJSONSchema(*sob.TypeObject)
	}
	if sob.TypeBoolean != nil && !*sob.TypeBoolean {
		return Never(), nil
	}
	return Unknown(), nil
}

func fromSimpleType(js jsonschema.Schema, st jsonschema.SimpleType) (Shape, error) {
	switch st {
	case jsonschema.String:
		var s Shape = String()
		if js.MinLength > 0 {
			s = MinLength(s, int(js.MinLength))
		}
		if js.MaxLength != nil {
			s = MaxLength(s, int(*js.MaxLength))
		}
		if js.Pattern != nil {
			re, err := regexp.Compile(*js.Pattern)
			if err != nil {
				return nil, err
			}
			s = Pattern(s, re)
		}
		return s, nil
	case jsonschema.Integer, jsonschema.Number:
		var s Shape = Number()
		if st == jsonschema.Integer {
			s = Int(s)
		}
		if js.Minimum != nil {
			s = Min(s, *js.Minimum)
		}
		if js.Maximum != nil {
			s = Max(s, *js.Maximum)
		}
		if js.ExclusiveMinimum != nil {
			s = GreaterThan(s, *js.ExclusiveMinimum)
		}
		if js.ExclusiveMaximum != nil {
			s = LessThan(s, *js.ExclusiveMaximum)
		}
		return s, nil
	case jsonschema.Boolean:
		return Boolean(), nil
	case jsonschema.Null:
		return Null(), nil
	case jsonschema.Array:
		var item Shape = Unknown()
		if js.Items != nil && js.Items.SchemaOrBool != nil {
			var err error
			item, err = fromSchemaOrBool(*js.Items.SchemaOrBool)
			if err != nil {
				return nil, err
			}
		}
		var s Shape = ArrayOf(item)
		if js.MinItems > 0 {
			s = MinItems(s, int(js.MinItems))
		}
		if js.MaxItems != nil {
			s = MaxItems(s, int(*js.MaxItems))
		}
		return s, nil
	case jsonschema.Object:
		if len(js.Properties) == 0 {
			return Unknown(), nil
		}

		names := make([]string, 0, len(js.Properties))
		for name := range js.Properties {
			names = append(names, name)
		}
		slices.Sort(names)

		fields := make([]Field, 0, len(names))
		for _, name := range names {
			fs, err := fromSchemaOrBool(js.Properties[name])
			if err != nil {
				return nil, fmt.Errorf("property %s: %w", name, err)
			}
			fields = append(fields, Field{
				Name:     name,
				Shape:    fs,
				Optional: !slices.Contains(js.Required, name),
			})
		}
		return StructOf(fields...), nil
	}
	return Unknown(), nil
}

// JSONSchema describes the encoded side of s as a JSON schema.
func JSONSchema(s Shape) jsonschema.Schema {
	var js jsonschema.Schema
	a := s.Annotations()

	switch x := s.(type) {
	case Keyword:
		switch x.kind {
		case KindString:
			js.Type = simpleType(jsonschema.String)
		case KindNumber:
			js.Type = simpleType(jsonschema.Number)
		case KindBigInt:
			js.Type = simpleType(jsonschema.Integer)
		case KindBoolean:
			js.Type = simpleType(jsonschema.Boolean)
		case KindNull:
			js.Type = simpleType(jsonschema.Null)
		case KindNever:
			js.Not = &jsonschema.SchemaOrBool{TypeBoolean: ptr.Ref(true)}
		}
	case Literal:
		js.Enum = []any{x.value}
		js.Type = literalType(x.value)
	case Struct:
		js.Type = simpleType(jsonschema.Object)
		js.Properties = make(map[string]jsonschema.SchemaOrBool, len(x.fields))
		for _, f := range x.fields {
			js.Properties[f.Name] = schemaOrBool(f.Shape)
			if !f.Optional {
				js.Required = append(js.Required, f.Name)
			}
		}
	case Union:
		if values, ok := literalValues(x); ok {
			js.Enum = values
			break
		}
		for _, m := range x.members {
			js.AnyOf = append(js.AnyOf, schemaOrBool(m))
		}
	case Tuple:
		js.Type = simpleType(jsonschema.Array)
		items := tupleItems(x)
		if items != nil {
			item := schemaOrBool(items)
			js.Items = &jsonschema.Items{SchemaOrBool: &item}
		}
		for _, el := range x.elements {
			if !el.Optional {
				js.MinItems++
			}
		}
		if x.rest == nil {
			js.MaxItems = ptr.Ref(int64(len(x.elements)))
		}
	case Refinement:
		js = JSONSchema(x.from)
		applyConstraint(&js, x.constraint)
	case Transformation:
		js = JSONSchema(x.from)
	}

	switch {
	case a.Identifier != "":
		js.Title = ptr.Ref(a.Identifier)
	case a.Title != "":
		js.Title = ptr.Ref(a.Title)
	}
	if a.Description != "" {
		js.Description = ptr.Ref(a.Description)
	}
	if len(a.Examples) > 0 {
		js.Examples = slices.Clone(a.Examples)
	}
	return js
}

func schemaOrBool(s Shape) jsonschema.SchemaOrBool {
	js := JSONSchema(s)
	return js.ToSchemaOrBool()
}

func simpleType(st jsonschema.SimpleType) *jsonschema.Type {
	return &jsonschema.Type{SimpleTypes: &st}
}

func literalType(v any) *jsonschema.Type {
	switch v.(type) {
	case string:
		return simpleType(jsonschema.String)
	case float64:
		return simpleType(jsonschema.Number)
	case bool:
		return simpleType(jsonschema.Boolean)
	case nil:
		return simpleType(jsonschema.Null)
	}
	return nil
}

func literalValues(u Union) ([]any, bool) {
	values := make([]any, 0, len(u.members))
	for _, m := range u.members {
		l, ok := m.(Literal)
		if !ok {
			return nil, false
		}
		values = append(values, l.value)
	}
	return values, true
}

func tupleItems(t Tuple) Shape {
	var members []Shape
	for _, el := range t.elements {
		members = append(members, el.Shape)
	}
	if t.rest != nil {
		members = append(members, t.rest)
	}
	switch len(members) {
	case 0:
		return nil
	case 1:
		return members[0]
	}

	first := members[0]
	same := slices.IndexFunc(members[1:], func(m Shape) bool {
		return fmt.Sprintf("%#v", m) != fmt.Sprintf("%#v", first)
	}) == -1
	if same {
		return first
	}
	return UnionOf(members...)
}

var ruleFormats = map[string]string{
	"email":    "email",
	"uuid":     "uuid",
	"uuid4":    "uuid",
	"url":      "uri",
	"uri":      "uri",
	"ipv4":     "ipv4",
	"ipv6":     "ipv6",
	"hostname": "hostname",
	"datetime": "date-time",
}

func applyConstraint(js *jsonschema.Schema, c Constraint) {
	switch c.Kind {
	case ConstraintInteger:
		js.Type = simpleType(jsonschema.Integer)
	case ConstraintMin:
		js.Minimum = ptr.Ref(c.Bound)
	case ConstraintMax:
		js.Maximum = ptr.Ref(c.Bound)
	case ConstraintExclusiveMin:
		js.ExclusiveMinimum = ptr.Ref(c.Bound)
	case ConstraintExclusiveMax:
		js.ExclusiveMaximum = ptr.Ref(c.Bound)
	case ConstraintPattern:
		if c.Pattern != nil {
			js.Pattern = ptr.Ref(c.Pattern.String())
		}
	case ConstraintMinItems:
		js.MinItems = int64(c.Bound)
	case ConstraintMaxItems:
		js.MaxItems = ptr.Ref(int64(c.Bound))
	case ConstraintMinLength:
		js.MinLength = int64(c.Bound)
	case ConstraintMaxLength:
		js.MaxLength = ptr.Ref(int64(c.Bound))
	case ConstraintRule:
		if format, ok := ruleFormats[c.Tag]; ok {
			js.Format = ptr.Ref(format)
		}
	}
}
