// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package shape

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// LeafTag classifies a flattened failure.
type LeafTag int

const (
	Missing LeafTag = iota
	Unexpected
)

// Leaf is a single flattened failure extracted from an [Issue] tree.
type Leaf struct {
	Tag      LeafTag
	Position []Segment
	Expected []string
	Received any

	// Message, when set, replaces the generated text.
	Message string
}

// Flatten converts an issue tree into the list of its leaf failures in
// depth-first order.
func Flatten(iss Issue) []Leaf {
	return flatten(iss, nil, nil)
}

func flatten(iss Issue, pos []Segment, leaves []Leaf) []Leaf {
	if s, actual, ok := annotated(iss); ok {
		return append(leaves, Leaf{
			Tag:      Unexpected,
			Position: pos,
			Expected: []string{Label(s)},
			Received: actual,
			Message:  s.Annotations().Message,
		})
	}

	switch iss := iss.(type) {
	case TypeIssue:
		return append(leaves, Leaf{
			Tag:      Unexpected,
			Position: pos,
			Expected: []string{Label(iss.Shape)},
			Received: iss.Actual,
		})
	case MissingIssue:
		l := Leaf{Tag: Missing, Position: pos}
		if iss.Shape != nil {
			l.Message = iss.Shape.Annotations().MissingMessage
		}
		return append(leaves, l)
	case UnexpectedIssue:
		return append(leaves, Leaf{Tag: Unexpected, Position: pos, Received: iss.Actual})
	case PointerIssue:
		return flatten(iss.Issue, join(pos, iss.Path), leaves)
	case CompositeIssue:
		for _, child := range iss.Issues {
			leaves = flatten(child, pos, leaves)
		}
		return leaves
	case RefinementIssue:
		if iss.Stage == RefinementFrom && iss.Issue != nil {
			return flatten(iss.Issue, pos, leaves)
		}
		return append(leaves, Leaf{
			Tag:      Unexpected,
			Position: pos,
			Expected: []string{Label(iss.Shape)},
			Received: iss.Actual,
		})
	case TransformationIssue:
		if iss.Stage != TransformationFunc && iss.Issue != nil {
			return flatten(iss.Issue, pos, leaves)
		}
		return append(leaves, Leaf{
			Tag:      Unexpected,
			Position: pos,
			Expected: []string{Label(iss.Shape)},
			Received: iss.Actual,
		})
	}
	return leaves
}

// annotated reports whether the node raising iss carries a message
// annotation, in which case the whole subtree renders as that message.
func annotated(iss Issue) (Shape, any, bool) {
	var s Shape
	var actual any
	switch iss := iss.(type) {
	case TypeIssue:
		s, actual = iss.Shape, iss.Actual
	case CompositeIssue:
		s, actual = iss.Shape, iss.Actual
	case RefinementIssue:
		s, actual = iss.Shape, iss.Actual
	case TransformationIssue:
		s, actual = iss.Shape, iss.Actual
	default:
		return nil, nil, false
	}
	if s == nil || s.Annotations().Message == "" {
		return nil, nil, false
	}
	return s, actual, true
}

func join(a, b []Segment) []Segment {
	out := make([]Segment, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// Format renders an issue tree as a single human readable message.
//
// With [ErrorsAll] every leaf failure is rendered and joined with ", ".
// Otherwise, when several leaves exist, the most precise one is chosen:
// leaves are grouped by position and the group with the longest position
// wins, then the group with more members, then a group holding at least
// one unexpected value over a group of missing values only.
func Format(iss Issue, mode ErrorsMode) string {
	leaves := Flatten(iss)
	switch {
	case len(leaves) == 0:
		return fallback(iss)
	case len(leaves) == 1:
		return render(leaves[0])
	case mode == ErrorsAll:
		msgs := make([]string, len(leaves))
		for i, l := range leaves {
			msgs[i] = render(l)
		}
		return strings.Join(msgs, ", ")
	}
	return render(mostPrecise(leaves))
}

type leafGroup struct {
	position []Segment
	leaves   []Leaf
}

func (g *leafGroup) hasUnexpected() bool {
	return slices.ContainsFunc(g.leaves, func(l Leaf) bool {
		return l.Tag == Unexpected
	})
}

func mostPrecise(leaves []Leaf) Leaf {
	var groups []*leafGroup
	index := make(map[string]*leafGroup)
	for _, l := range leaves {
		key := position(l.Position)
		g, ok := index[key]
		if !ok {
			g = &leafGroup{position: l.Position}
			index[key] = g
			groups = append(groups, g)
		}
		g.leaves = append(g.leaves, l)
	}

	best := groups[0]
	for _, g := range groups[1:] {
		switch {
		case len(g.position) != len(best.position):
			if len(g.position) > len(best.position) {
				best = g
			}
		case len(g.leaves) != len(best.leaves):
			if len(g.leaves) > len(best.leaves) {
				best = g
			}
		case g.hasUnexpected() && !best.hasUnexpected():
			best = g
		}
	}

	var merged *Leaf
	for _, l := range best.leaves {
		if l.Tag != Unexpected {
			continue
		}
		if merged == nil {
			merged = &Leaf{
				Tag:      Unexpected,
				Position: l.Position,
				Received: l.Received,
				Message:  l.Message,
			}
		}
		for _, e := range l.Expected {
			if !slices.Contains(merged.Expected, e) {
				merged.Expected = append(merged.Expected, e)
			}
		}
	}
	if merged != nil {
		return *merged
	}
	return best.leaves[0]
}

func render(l Leaf) string {
	if l.Message != "" {
		return l.Message
	}

	pos := position(l.Position)
	if l.Tag == Missing {
		return pos + " is missing"
	}
	if len(l.Expected) == 0 {
		return pos + " is unexpected, received " + stringify(l.Received)
	}
	return pos + " must be " + strings.Join(l.Expected, " or ") + ", received " + stringify(l.Received)
}

func position(path []Segment) string {
	if len(path) == 0 {
		return "value"
	}

	var sb strings.Builder
	if path[0].IsIndex {
		sb.WriteString("value")
	}
	for i, seg := range path {
		if !seg.IsIndex && i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(seg.String())
	}
	return sb.String()
}

func stringify(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func fallback(iss Issue) (msg string) {
	defer func() {
		if r := recover(); r != nil {
			msg = fmt.Sprintf("Unexpected validation error: %T", iss)
		}
	}()
	return "Unexpected validation error: " + stringify(iss)
}

// Label returns the human label of s used as the expected value in
// error messages. Identifier, Title and Description annotations take
// precedence, in that order.
func Label(s Shape) string {
	a := s.Annotations()
	switch {
	case a.Identifier != "":
		return a.Identifier
	case a.Title != "":
		return a.Title
	case a.Description != "":
		return a.Description
	}

	switch s := s.(type) {
	case Keyword:
		switch s.kind {
		case KindString:
			return "a string"
		case KindNumber:
			return "a number"
		case KindBoolean:
			return "a boolean"
		case KindBigInt:
			return "a bigint"
		}
		return s.kind.String()
	case Literal:
		return stringify(s.value)
	case Struct:
		return "an object"
	case Tuple:
		return "an array"
	case Union:
		labels := make([]string, 0, len(s.members))
		for _, m := range s.members {
			l := Label(m)
			if !slices.Contains(labels, l) {
				labels = append(labels, l)
			}
		}
		return strings.Join(labels, " or ")
	case Refinement:
		return s.constraint.Label()
	case Transformation:
		return Label(s.to)
	}
	return s.Kind().String()
}
